// Package hookmodel builds resolved hooks from manifest hooks, per-project
// overrides, and global defaults.
package hookmodel

import (
	"github.com/dlclark/regexp2"
)

// LanguageRequestKind distinguishes the four forms a `language_version`
// can take.
type LanguageRequestKind int

const (
	LanguageDefault LanguageRequestKind = iota
	LanguageSystem
	LanguageSpecific
	LanguageRange
)

// LanguageRequest is the parsed form of a hook's language_version field.
type LanguageRequest struct {
	Kind       LanguageRequestKind
	Constraint string // the raw semver/range text for Specific/Range
}

// Matches reports whether an installed version satisfies this request,
// used by the environment-reuse predicate (spec §3).
func (r LanguageRequest) Matches(installedVersion string) bool {
	switch r.Kind {
	case LanguageDefault, LanguageSystem:
		return true
	case LanguageSpecific, LanguageRange:
		c, err := newConstraint(r.Constraint)
		if err != nil {
			return r.Constraint == installedVersion
		}
		v, err := newVersion(installedVersion)
		if err != nil {
			return false
		}
		return c.Check(v)
	default:
		return false
	}
}

// Repo identifies the owning repo of a resolved hook, enough to compute
// its environment reuse key (spec §3).
type Repo struct {
	URL   string
	Rev   string
	Local bool
	Meta  bool
}

// FingerprintSeed returns the string appended to additional_dependencies
// when computing env_key_dependencies for remote hooks (spec §3).
func (r Repo) FingerprintSeed() string {
	if r.Local || r.Meta || r.URL == "" {
		return ""
	}
	return "<" + r.URL + "@" + r.Rev + ">"
}

// ResolvedHook is a manifest hook merged with project overrides and
// defaults — what actually runs. Immutable once built.
type ResolvedHook struct {
	FilesRegex   *regexp2.Regexp
	ExcludeRegex *regexp2.Regexp

	ID              string
	Alias           string
	Name            string
	Entry           string
	Language        string
	FilesPattern    string
	ExcludePattern  string
	LogFile         string
	LanguageVersion string

	ProjectRelPath string // owning project's RelPath, for scoping (spec §4.7)
	Repo           Repo

	Types          []string
	TypesOr        []string
	ExcludeTypes   []string
	AdditionalDeps []string
	Args           []string
	Stages         []string
	Env            map[string]string

	LangRequest LanguageRequest

	Priority      int
	Ordinal       int
	AlwaysRun     bool
	PassFilenames bool
	RequireSerial bool
	Verbose       bool
	FailFast      bool
	Orphan        bool
}

// EnvKeyDependencies is the reuse-predicate key from spec §3: additional
// dependencies plus, for remote hooks, the "<url>@<rev>" seed.
func (h *ResolvedHook) EnvKeyDependencies() []string {
	deps := append([]string{}, h.AdditionalDeps...)
	if seed := h.Repo.FingerprintSeed(); seed != "" {
		deps = append(deps, seed)
	}
	return deps
}

// languagesSupportingDeps is the closed set of languages that accept
// additional_dependencies (spec §3 invariant).
var languagesSupportingDeps = map[string]bool{
	"python": true, "node": true, "ruby": true, "golang": true,
	"rust": true, "lua": true, "perl": true, "dart": true,
	"r": true, "julia": true, "haskell": true, "dotnet": true,
	"coursier": true, "conda": true,
}

// languagesSupportingVersion is the closed set of languages with an
// installable, versioned toolchain (spec §3 invariant). golang is
// deliberately absent: only the pre-installed system toolchain is used
// (see envmanager/languages.Golang.SupportsVersion), so a
// language_version override would pass validation but silently do
// nothing.
var languagesSupportingVersion = map[string]bool{
	"python": true, "node": true, "ruby": true,
	"rust": true, "dotnet": true, "conda": true,
}

func SupportsAdditionalDependencies(lang string) bool { return languagesSupportingDeps[lang] }
func SupportsLanguageVersion(lang string) bool         { return languagesSupportingVersion[lang] }

// noEnvLanguages is the set of hook languages spec §4.6 says skip
// environment install entirely.
var noEnvLanguages = map[string]bool{
	"fail": true, "pygrep": true, "system": true, "script": true, "docker_image": true,
}

func NeedsNoEnvironment(lang string) bool { return noEnvLanguages[lang] }
