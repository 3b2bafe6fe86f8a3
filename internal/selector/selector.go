// Package selector parses and resolves the hook/path selector grammar
// (spec §4.4 "Selector language and resolution", supplemented by
// original_source/crates/prek/src/workspace.rs's "." vs "./" distinction)
// used by positional run arguments and --skip/PREK_SKIP/SKIP.
package selector

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Selector is one parsed grammar atom: a bare hook-id, a project path
// (optionally recursive into descendant projects), or a path:hook-id
// pair.
type Selector struct {
	Raw string

	// HasPath is true for ".", "relative/path/", "." + ":hook-id", or
	// "relative/path:hook-id" — anything that names a project. False for
	// a bare "hook-id", which matches across every project.
	HasPath bool

	// Path is normalized, slash-separated, relative to the workspace
	// root, with no trailing slash; "" denotes the root project. Only
	// meaningful when HasPath is true.
	Path string

	// Recursive is true when the selector also matches descendant
	// projects under Path ("relative/path/", "./"); false for a bare
	// "." (root project only, non-recursive) and for any path:hook-id
	// form (a specific hook, never descendants).
	Recursive bool

	// HookID is the hook to match; empty means "every hook" at Path (or,
	// when !HasPath, every hook with this id across all projects — in
	// that case HookID holds the bare selector text itself).
	HookID string
}

// Parse lexes a single selector string. Path normalization against the
// workspace root happens separately in Resolve, since Parse has no
// notion of cwd.
func Parse(raw string) (Selector, error) {
	if raw == "" {
		return Selector{}, fmt.Errorf("empty selector")
	}

	if idx := strings.LastIndex(raw, ":"); idx >= 0 {
		pathPart, hookID := raw[:idx], raw[idx+1:]
		if hookID == "" {
			return Selector{}, fmt.Errorf("invalid selector %q: empty hook id after ':'", raw)
		}
		path := strings.TrimSuffix(pathPart, "/")
		return Selector{Raw: raw, HasPath: true, Path: path, HookID: hookID, Recursive: false}, nil
	}

	if raw == "." {
		return Selector{Raw: raw, HasPath: true, Path: ".", Recursive: false}, nil
	}

	if strings.HasSuffix(raw, "/") {
		path := strings.TrimSuffix(raw, "/")
		if path == "" {
			path = "."
		}
		return Selector{Raw: raw, HasPath: true, Path: path, Recursive: true}, nil
	}

	return Selector{Raw: raw, HasPath: false, HookID: raw}, nil
}

// Resolve parses raw selector strings and, for path-bearing selectors,
// normalizes Path against cwd and then the workspace root. A path that
// resolves outside the workspace root is an error (spec: "Invalid
// selector … path is outside the workspace root").
func Resolve(workspaceRoot, cwd string, raw []string) ([]Selector, error) {
	out := make([]Selector, 0, len(raw))
	for _, r := range raw {
		sel, err := Parse(r)
		if err != nil {
			return nil, err
		}
		if sel.HasPath {
			norm, err := normalizePath(workspaceRoot, cwd, sel.Path)
			if err != nil {
				return nil, fmt.Errorf("invalid selector %q: %w", r, err)
			}
			sel.Path = norm
		}
		out = append(out, sel)
	}
	return out, nil
}

func normalizePath(workspaceRoot, cwd, path string) (string, error) {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(cwd, path)
	}
	rel, err := filepath.Rel(workspaceRoot, abs)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if rel == "." {
		return "", nil
	}
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("path is outside the workspace root")
	}
	return rel, nil
}

// Target is one resolved hook, identified by its owning project's
// workspace-root-relative path ("" for the root project) and its id.
type Target struct {
	ProjectRelPath string
	HookID         string
	Alias          string
}

// matchesHookID reports whether id (a bare hook-id selector's text, or a
// path:hook-id selector's hook-id part) equals t's id or its alias (spec
// §4.4: "hook-id — matches any hook whose id or alias equals hook-id").
func matchesHookID(id string, t Target) bool {
	return id == t.HookID || (t.Alias != "" && id == t.Alias)
}

// Matches reports whether the selector selects t.
func (s Selector) Matches(t Target) bool {
	if !s.HasPath {
		return matchesHookID(s.HookID, t)
	}
	if !s.matchesPath(t.ProjectRelPath) {
		return false
	}
	if s.HookID == "" {
		return true
	}
	return matchesHookID(s.HookID, t)
}

func (s Selector) matchesPath(projectRelPath string) bool {
	if s.Path == "" || s.Path == "." {
		if s.Recursive {
			return true // "./" — root plus every descendant project
		}
		return projectRelPath == "" // "." — root project only
	}
	if s.Recursive {
		return projectRelPath == s.Path || strings.HasPrefix(projectRelPath, s.Path+"/")
	}
	return projectRelPath == s.Path
}

// Plan is the resolved include/skip selector sets for a run (spec §6:
// positional selectors plus --skip/PREK_SKIP/SKIP).
type Plan struct {
	Include []Selector
	Skip    []Selector
}

// Selects reports whether t survives the plan: not skipped, and (when
// Include is non-empty) matched by at least one include selector.
func (p Plan) Selects(t Target) bool {
	for _, s := range p.Skip {
		if s.Matches(t) {
			return false
		}
	}
	if len(p.Include) == 0 {
		return true
	}
	for _, s := range p.Include {
		if s.Matches(t) {
			return true
		}
	}
	return false
}

// Warnings returns one warning per include/skip selector that matched no
// target — non-fatal per spec §4.4 ("emits a warning but does not
// fail").
func (p Plan) Warnings(targets []Target) []string {
	var warnings []string
	for _, s := range p.Include {
		if !anyMatches(s, targets) {
			warnings = append(warnings, fmt.Sprintf("selector %q matched no hooks", s.Raw))
		}
	}
	for _, s := range p.Skip {
		if !anyMatches(s, targets) {
			warnings = append(warnings, fmt.Sprintf("skip selector %q matched no hooks", s.Raw))
		}
	}
	return warnings
}

// AllIncludesMissed reports whether Include is non-empty and none of its
// selectors matched any target — the "no hooks found after filtering"
// error condition.
func (p Plan) AllIncludesMissed(targets []Target) bool {
	if len(p.Include) == 0 {
		return false
	}
	for _, s := range p.Include {
		if anyMatches(s, targets) {
			return false
		}
	}
	return true
}

func anyMatches(s Selector, targets []Target) bool {
	for _, t := range targets {
		if s.Matches(t) {
			return true
		}
	}
	return false
}

// ResolveSkips merges --skip flags with the PREK_SKIP/SKIP environment
// variables per spec §6 precedence: --skip overrides both env vars,
// PREK_SKIP overrides SKIP. Env vars are comma-separated.
func ResolveSkips(flagSkips []string, prekSkipEnv, skipEnv string) []string {
	if len(flagSkips) > 0 {
		return flagSkips
	}
	if prekSkipEnv != "" {
		return splitComma(prekSkipEnv)
	}
	if skipEnv != "" {
		return splitComma(skipEnv)
	}
	return nil
}

func splitComma(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// BuildPlan is the convenience entrypoint: resolve positional and skip
// selectors (after skip-precedence merging) into a ready-to-use Plan.
func BuildPlan(workspaceRoot, cwd string, positionals, flagSkips []string, prekSkipEnv, skipEnv string) (Plan, error) {
	include, err := Resolve(workspaceRoot, cwd, positionals)
	if err != nil {
		return Plan{}, err
	}
	skip, err := Resolve(workspaceRoot, cwd, ResolveSkips(flagSkips, prekSkipEnv, skipEnv))
	if err != nil {
		return Plan{}, err
	}
	return Plan{Include: include, Skip: skip}, nil
}
