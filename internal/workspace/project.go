// Package workspace discovers every nested project configuration under a
// git root, orders them, and caches the discovery between runs.
package workspace

import (
	"path/filepath"
	"strings"

	"github.com/prek-dev/prek/internal/config"
)

// Project is a single configuration file and the directory that contains
// it. Immutable once built by Discover.
type Project struct {
	Config       *config.ProjectConfig
	AbsPath      string // directory containing the config file
	ConfigPath   string // the config file itself
	RelPath      string // relative to the workspace root, slash-separated, no trailing slash
	Index        int    // dense index assigned by depth-then-lex ordering
	Depth        int
}

// IsRoot reports whether this project sits at the workspace root.
func (p *Project) IsRoot() bool { return p.RelPath == "" }

// relPath computes a prefix-free, slash-separated relative path and its
// depth (component count; root is depth 0).
func relPath(root, abs string) (string, int) {
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == "." {
		return "", 0
	}
	rel = filepath.ToSlash(rel)
	return rel, len(strings.Split(rel, "/"))
}

// Contains reports whether file (workspace-root-relative, slash
// separated) is inside this project's directory.
func (p *Project) Contains(fileRelToRoot string) bool {
	if p.RelPath == "" {
		return true
	}
	return fileRelToRoot == p.RelPath || strings.HasPrefix(fileRelToRoot, p.RelPath+"/")
}

// RelToProject rewrites a workspace-root-relative file path to be
// relative to this project's directory, per spec §4.7 "file arguments
// are relative to the project directory".
func (p *Project) RelToProject(fileRelToRoot string) string {
	if p.RelPath == "" {
		return fileRelToRoot
	}
	return strings.TrimPrefix(strings.TrimPrefix(fileRelToRoot, p.RelPath), "/")
}
