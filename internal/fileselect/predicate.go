package fileselect

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/prek-dev/prek/internal/hookmodel"
)

// ProjectScope is the subset of a project's attributes the per-hook
// predicate needs: its path prefix, orphan flag, and merged global
// files/exclude regex (spec §4.5's project-level defaults, distinct
// from the hook's own files/exclude).
type ProjectScope struct {
	RelPath      string // "" for the workspace root project
	Orphan       bool
	FilesRegex   *regexp2.Regexp
	ExcludeRegex *regexp2.Regexp
}

// owns reports whether f (workspace-root-relative) is inside this
// project's directory.
func (p ProjectScope) owns(f string) bool {
	if p.RelPath == "" {
		return true
	}
	return f == p.RelPath || strings.HasPrefix(f, p.RelPath+"/")
}

// HookFiles filters runWide down to hook's file set, applying every
// predicate in spec §4.7's "all of" list, and returns each surviving
// path rewritten relative to the owning project (spec: "filenames
// passed to the hook are relative to the project directory"). repoRoot
// is the absolute directory runWide's paths are relative to, needed to
// stat each file for its type tags.
func HookFiles(repoRoot string, runWide []string, hook *hookmodel.ResolvedHook, project ProjectScope, allProjects []ProjectScope) ([]string, error) {
	var out []string
	for _, f := range runWide {
		ok, err := matches(repoRoot, f, hook, project, allProjects)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, relativeToProject(f, project.RelPath))
		}
	}
	return out, nil
}

func matches(repoRoot, f string, hook *hookmodel.ResolvedHook, project ProjectScope, allProjects []ProjectScope) (bool, error) {
	if !project.owns(f) {
		return false, nil
	}

	if project.Orphan {
		// An orphan project's files are consumed exclusively by it: a
		// parent project (including the root) must not also match f
		// (spec §4.7, scenario: "app/ declared orphan: true... root hook
		// still receives exactly y.py, x.py is consumed").
		if !isDirectlyOwnedBy(f, project, allProjects) {
			return false, nil
		}
	} else if consumedByDescendantOrphan(f, project, allProjects) {
		return false, nil
	}

	if project.FilesRegex != nil {
		if m, err := regexMatches(project.FilesRegex, f); err != nil || !m {
			return false, err
		}
	}
	if project.ExcludeRegex != nil {
		if m, err := regexMatches(project.ExcludeRegex, f); err != nil {
			return false, err
		} else if m {
			return false, nil
		}
	}

	if hook.FilesRegex != nil {
		if m, err := regexMatches(hook.FilesRegex, f); err != nil || !m {
			return false, err
		}
	}
	if hook.ExcludeRegex != nil {
		if m, err := regexMatches(hook.ExcludeRegex, f); err != nil {
			return false, err
		} else if m {
			return false, nil
		}
	}

	tags := Compute(filepath.Join(repoRoot, f))
	if len(hook.Types) > 0 && !tags.HasAll(hook.Types) {
		return false, nil
	}
	if len(hook.TypesOr) > 0 && !tags.HasAny(hook.TypesOr) {
		return false, nil
	}
	if len(hook.ExcludeTypes) > 0 && tags.HasAny(hook.ExcludeTypes) {
		return false, nil
	}

	return true, nil
}

// isDirectlyOwnedBy reports f is inside project itself, not one of
// project's own orphan descendants (an orphan project only receives
// files directly under its own path prefix, nested orphans still carve
// their own files out of it).
func isDirectlyOwnedBy(f string, project ProjectScope, allProjects []ProjectScope) bool {
	return project.owns(f) && !consumedByDescendantOrphan(f, project, allProjects)
}

// consumedByDescendantOrphan reports whether f belongs to some orphan
// project nested under project, meaning project (an ancestor, e.g. the
// workspace root or an enclosing orphan project) must not also receive it.
func consumedByDescendantOrphan(f string, project ProjectScope, allProjects []ProjectScope) bool {
	for _, other := range allProjects {
		if !other.Orphan || other.RelPath == project.RelPath {
			continue
		}
		if !strings.HasPrefix(other.RelPath, project.RelPath) {
			continue
		}
		if other.RelPath != project.RelPath && other.owns(f) {
			return true
		}
	}
	return false
}

func regexMatches(re *regexp2.Regexp, s string) (bool, error) {
	m, err := re.MatchString(s)
	if err != nil {
		return false, err
	}
	return m, nil
}

func relativeToProject(f, projectRelPath string) string {
	if projectRelPath == "" {
		return f
	}
	rel := strings.TrimPrefix(f, projectRelPath+"/")
	if rel == f {
		return path.Base(f)
	}
	return rel
}
