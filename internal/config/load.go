package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/prek-dev/prek/internal/errs"
)

// Warning is a single non-fatal issue surfaced on the warning channel
// (spec §7): unknown config keys, a mutable-looking rev, and so on.
type Warning struct {
	Path    string
	Message string
}

func (w Warning) String() string {
	if w.Path != "" {
		return fmt.Sprintf("%s: %s", w.Path, w.Message)
	}
	return w.Message
}

// Load reads and parses the project configuration at path (YAML or TOML,
// inferred from the extension) and returns any non-fatal warnings
// alongside it. yaml.v3 expands `<<:` merge keys natively during decode,
// so no separate pass is needed for that part of spec §4.3.
func Load(path string) (*ProjectConfig, []Warning, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from discovery, not unsanitized user input
	if err != nil {
		return nil, nil, &errs.Configuration{Path: path, Err: err}
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil, &errs.Configuration{Path: path, Err: fmt.Errorf("config file is empty")}
	}

	var (
		cfg      ProjectConfig
		warnings []Warning
	)

	if strings.HasSuffix(path, ".toml") {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, nil, &errs.Configuration{Path: path, Err: err}
		}
		var raw map[string]any
		if err := toml.Unmarshal(data, &raw); err == nil {
			for k := range raw {
				if _, ok := knownTopLevelKeys[k]; !ok {
					cfg.unknown = append(cfg.unknown, k)
				}
			}
			sort.Strings(cfg.unknown)
		}
	} else {
		var root yaml.Node
		if err := yaml.Unmarshal(data, &root); err != nil {
			return nil, nil, &errs.Configuration{Path: path, Err: err}
		}
		if err := root.Decode(&cfg); err != nil {
			return nil, nil, &errs.Configuration{Path: path, Err: err}
		}
		cfg.unknown = unknownTopLevelKeys(&root)
	}

	for _, k := range cfg.unknown {
		if _, ok := acceptedButIgnored[k]; ok {
			continue
		}
		warnings = append(warnings, Warning{Path: path, Message: fmt.Sprintf("unknown key %q", k)})
	}

	if warn := validateMutableRevs(cfg); warn != "" {
		warnings = append(warnings, Warning{Path: path, Message: warn})
	}

	return &cfg, warnings, nil
}

// knownTopLevelKeys mirrors the yaml tags on ProjectConfig.
var knownTopLevelKeys = map[string]struct{}{
	"default_language_version":   {},
	"ci":                         {},
	"files":                      {},
	"exclude":                    {},
	"minimum_pre_commit_version": {},
	"minimum_prek_version":       {},
	"repos":                      {},
	"default_stages":             {},
	"default_install_hook_types": {},
	"fail_fast":                  {},
	"orphan":                     {},
}

func unknownTopLevelKeys(root *yaml.Node) []string {
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil
	}
	mapping := root.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil
	}

	var unknown []string
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key := mapping.Content[i].Value
		if _, ok := knownTopLevelKeys[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	return unknown
}

// validateMutableRevs warns when a repo's rev looks mutable: neither a
// dotted version string nor pure hex (spec §4.3's "mutable-looking rev").
func validateMutableRevs(cfg ProjectConfig) string {
	for _, repo := range cfg.Repos {
		if repo.Kind() != KindRemote || repo.Rev == "" {
			continue
		}
		if looksMutable(repo.Rev) {
			return fmt.Sprintf("repo %s: rev %q looks mutable (not a tag or commit hash)", repo.RepoURL, repo.Rev)
		}
	}
	return ""
}

func looksMutable(rev string) bool {
	if strings.Contains(rev, ".") {
		return false
	}
	for _, r := range rev {
		isHex := (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
		if !isHex {
			return true
		}
	}
	return false
}

// LoadManifestHooks reads a hook-repo manifest (`.pre-commit-hooks.yaml`,
// spec §6): a bare top-level list of hook definitions, distinct from a
// project config's `repos:`-keyed shape.
func LoadManifestHooks(path string) ([]Hook, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is a store-managed clone path, not unsanitized user input
	if err != nil {
		return nil, &errs.Configuration{Path: path, Err: err}
	}
	var hooks []Hook
	if err := yaml.Unmarshal(data, &hooks); err != nil {
		return nil, &errs.Configuration{Path: path, Err: err}
	}
	return hooks, nil
}

// Discover resolves the ambiguity policy for a directory containing more
// than one candidate config file name (spec §4.4): the first name in
// FileNames order wins, and a warning names the rest.
func Discover(dir string) (path string, warnings []Warning, found bool) {
	var present []string
	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			present = append(present, name)
		}
	}
	if len(present) == 0 {
		return "", nil, false
	}
	if len(present) > 1 {
		warnings = append(warnings, Warning{
			Path:    dir,
			Message: fmt.Sprintf("multiple config files present (%s); using %s", strings.Join(present[1:], ", "), present[0]),
		})
	}
	return filepath.Join(dir, present[0]), warnings, true
}
