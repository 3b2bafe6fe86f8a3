package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/prek-dev/prek/internal/errs"
)

// markerFileName is the per-environment JSON marker (spec §6).
const markerFileName = ".prek-hook.json"

// InstallRecord is the persisted marker describing one installed
// environment, spec §6's literal shape.
type InstallRecord struct {
	Extra           map[string]string `json:"extra"`
	Language        string            `json:"language"`
	LanguageVersion string            `json:"language_version"`
	EnvPath         string            `json:"env_path"`
	Toolchain       string            `json:"toolchain"`
	Dependencies    []string          `json:"dependencies"`
}

// sortedDeps returns a copy of deps sorted, used both when writing a
// marker and when comparing against a hook's env_key_dependencies so
// order never matters (spec §8 scenario 5).
func sortedDeps(deps []string) []string {
	out := append([]string{}, deps...)
	sort.Strings(out)
	return out
}

// WriteMarker persists rec at <envPath>/.prek-hook.json. Dependencies are
// stored sorted.
func WriteMarker(envPath string, rec InstallRecord) error {
	rec.Dependencies = sortedDeps(rec.Dependencies)
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return &errs.Store{Err: err}
	}
	return os.WriteFile(filepath.Join(envPath, markerFileName), data, 0o600) //nolint:gosec // marker is not sensitive
}

// readMarker reads and parses the marker at envPath. A missing or
// malformed marker is treated as absent, not an error (spec §4.2 reuse
// search).
func readMarker(envPath string) (*InstallRecord, bool) {
	data, err := os.ReadFile(filepath.Join(envPath, markerFileName)) // #nosec G304 -- internally derived store path
	if err != nil {
		return nil, false
	}
	var rec InstallRecord
	if json.Unmarshal(data, &rec) != nil {
		return nil, false
	}
	return &rec, true
}

// LanguageVersionMatcher is implemented by hookmodel.LanguageRequest; kept
// as a narrow interface here so this package doesn't import hookmodel
// (which itself doesn't need to know about the store).
type LanguageVersionMatcher interface {
	Matches(installedVersion string) bool
}

// FindReusableEnv implements spec §4.2's reuse search: enumerate
// hooks/-prefixed entries for language, read each marker, return the
// first whose record satisfies the reuse predicate from spec §3.
//
//	E.language == H.language && E.dependencies == H.env_key_dependencies
//	&& H.language_version_request.matches(E.language_version)
func (s *Store) FindReusableEnv(language string, envKeyDeps []string, langReq LanguageVersionMatcher) (*InstallRecord, string, bool) {
	entries, err := os.ReadDir(s.HooksDir())
	if err != nil {
		return nil, "", false
	}

	wantDeps := sortedDeps(envKeyDeps)

	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), language+"-") {
			continue
		}
		envPath := filepath.Join(s.HooksDir(), e.Name())
		rec, ok := readMarker(envPath)
		if !ok {
			continue
		}
		if rec.Language != language {
			continue
		}
		if !equalStrings(sortedDeps(rec.Dependencies), wantDeps) {
			continue
		}
		if !langReq.Matches(rec.LanguageVersion) {
			continue
		}
		return rec, envPath, true
	}
	return nil, "", false
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// AllocateEnvDir creates a scratch directory under hooks/ for a new
// install, to be renamed to its final name only after the marker is
// written (spec §4.2: "a crashed install leaves no half-installed
// directory that can be matched by the reuse predicate").
func (s *Store) AllocateEnvDir(language string) (scratch string, final string, err error) {
	final = filepath.Join(s.HooksDir(), s.NewEnvDirName(language))
	// scratch is deliberately NOT prefixed with "<language>-": FindReusableEnv
	// filters on that prefix, and a half-installed directory must stay
	// invisible to the reuse search until the rename below makes it final.
	scratch = filepath.Join(s.HooksDir(), ".tmp-"+language+"-"+uuid8())
	if mkErr := os.MkdirAll(scratch, 0o750); mkErr != nil {
		return "", "", &errs.Store{Err: mkErr}
	}
	return scratch, final, nil
}

// FinalizeEnvDir writes the marker into scratch then renames it to
// final, making it visible to future reuse searches only after that
// rename succeeds.
func (s *Store) FinalizeEnvDir(scratch, final string, rec InstallRecord) error {
	if err := WriteMarker(scratch, rec); err != nil {
		return err
	}
	if err := renameRetrying(scratch, final); err != nil {
		return &errs.Store{Err: err}
	}
	return nil
}

// DeleteEnvDir removes a crashed/stale/unhealthy environment.
func (s *Store) DeleteEnvDir(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return &errs.Store{Err: err}
	}
	return nil
}
