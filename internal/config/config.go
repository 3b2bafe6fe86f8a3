// Package config parses and validates project configuration files
// (.pre-commit-config.yaml, .pre-commit-config.yml, prek.toml).
package config

// ProjectConfig is the parsed, not-yet-validated form of a project's
// configuration file.
type ProjectConfig struct {
	DefaultLanguageVersion map[string]string `yaml:"default_language_version,omitempty" toml:"default_language_version,omitempty"`
	CI                     map[string]any    `yaml:"ci,omitempty"                       toml:"ci,omitempty"`
	Files                  string            `yaml:"files,omitempty"                    toml:"files,omitempty"`
	Exclude                string            `yaml:"exclude,omitempty"                  toml:"exclude,omitempty"`
	MinimumPrekVersion     string            `yaml:"minimum_prek_version,omitempty"     toml:"minimum_prek_version,omitempty"`
	Repos                  []Repo            `yaml:"repos"                              toml:"repos"`
	DefaultStages          []string          `yaml:"default_stages,omitempty"           toml:"default_stages,omitempty"`
	DefaultInstallHookTypes []string         `yaml:"default_install_hook_types,omitempty" toml:"default_install_hook_types,omitempty"`
	FailFast               bool              `yaml:"fail_fast,omitempty"                toml:"fail_fast,omitempty"`
	Orphan                 bool              `yaml:"orphan,omitempty"                   toml:"orphan,omitempty"`

	// unknown carries top-level keys the schema doesn't recognize, for the
	// warning pass; populated by Load for both YAML and TOML files.
	unknown []string
}

// Repo is one `repos:` entry. Kind is inferred from the Repo field:
// "local", "meta", anything else is a remote URL.
type Repo struct {
	RepoURL string `yaml:"repo"           toml:"repo"`
	Rev     string `yaml:"rev,omitempty"  toml:"rev,omitempty"`
	Hooks   []Hook `yaml:"hooks"          toml:"hooks"`
}

// Kind classifies a Repo entry per spec §3's repo-reference variants.
type Kind int

const (
	KindRemote Kind = iota
	KindLocal
	KindMeta
)

func (r Repo) Kind() Kind {
	switch r.RepoURL {
	case "local":
		return KindLocal
	case "meta":
		return KindMeta
	default:
		return KindRemote
	}
}

// Hook is a manifest hook as it appears in a project config (override) or
// a hook-repo manifest (definition) — the same shape serves both, per
// spec §6.
type Hook struct {
	PassFilenames  *bool    `yaml:"pass_filenames,omitempty"  toml:"pass_filenames,omitempty"`
	ID             string   `yaml:"id"                        toml:"id"`
	Alias          string   `yaml:"alias,omitempty"            toml:"alias,omitempty"`
	Name           string   `yaml:"name,omitempty"             toml:"name,omitempty"`
	Entry          string   `yaml:"entry,omitempty"            toml:"entry,omitempty"`
	Language       string   `yaml:"language,omitempty"         toml:"language,omitempty"`
	Files          string   `yaml:"files,omitempty"            toml:"files,omitempty"`
	Exclude        string   `yaml:"exclude,omitempty"          toml:"exclude,omitempty"`
	LogFile        string   `yaml:"log_file,omitempty"         toml:"log_file,omitempty"`
	Description    string   `yaml:"description,omitempty"      toml:"description,omitempty"`
	LanguageVersion string  `yaml:"language_version,omitempty" toml:"language_version,omitempty"`
	MinimumPrekVersion string `yaml:"minimum_prek_version,omitempty" toml:"minimum_prek_version,omitempty"`
	Types          []string `yaml:"types,omitempty"            toml:"types,omitempty"`
	TypesOr        []string `yaml:"types_or,omitempty"          toml:"types_or,omitempty"`
	ExcludeTypes   []string `yaml:"exclude_types,omitempty"     toml:"exclude_types,omitempty"`
	AdditionalDeps []string `yaml:"additional_dependencies,omitempty" toml:"additional_dependencies,omitempty"`
	Args           []string `yaml:"args,omitempty"              toml:"args,omitempty"`
	Env            map[string]string `yaml:"env,omitempty"     toml:"env,omitempty"`
	Stages         []string `yaml:"stages,omitempty"            toml:"stages,omitempty"`
	AlwaysRun      bool     `yaml:"always_run,omitempty"        toml:"always_run,omitempty"`
	Verbose        bool     `yaml:"verbose,omitempty"           toml:"verbose,omitempty"`
	RequireSerial  bool     `yaml:"require_serial,omitempty"    toml:"require_serial,omitempty"`
	Priority       *int     `yaml:"priority,omitempty"          toml:"priority,omitempty"`
}

// FileName candidates, in ambiguity-resolution order (spec §4.4).
var FileNames = []string{"prek.toml", ".pre-commit-config.yaml", ".pre-commit-config.yml"}

// ManifestFileName is the hook-repo manifest file, spec §6.
const ManifestFileName = ".pre-commit-hooks.yaml"

// UnknownKeys returns top-level keys the loader saw but didn't recognize
// (only populated for YAML-sourced configs; see Load).
func (c *ProjectConfig) UnknownKeys() []string { return c.unknown }

// acceptedButIgnored are unknown-key names that are intentionally
// tolerated without a warning (spec §4.3).
var acceptedButIgnored = map[string]struct{}{
	"minimum_pre_commit_version": {},
	"ci":                         {},
}
