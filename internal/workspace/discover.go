package workspace

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/prek-dev/prek/internal/config"
	"github.com/prek-dev/prek/internal/errs"
)

// Workspace is the ordered set of projects discovered under a single
// root.
type Workspace struct {
	Root     string
	Projects []*Project
	Warnings []config.Warning
}

// ignoreFileName is the tool-specific ignore file consulted alongside
// .gitignore during the walk.
const ignoreFileName = ".prekignore"

// Discover walks the tree under root (the nearest ancestor of start that
// contains a config file — see FindWorkspaceRoot) looking for a config
// file in every directory, skipping submodules and ignored paths, and
// returns projects ordered per spec §4.4 step 4: descending depth, then
// lexicographic RelPath.
func Discover(root string, submodulePaths []string) (*Workspace, error) {
	submodules := make(map[string]struct{}, len(submodulePaths))
	for _, p := range submodulePaths {
		submodules[filepath.ToSlash(p)] = struct{}{}
	}

	matcher, err := loadIgnoreMatcher(root)
	if err != nil {
		return nil, err
	}

	type found struct {
		dir      string
		warnings []config.Warning
	}

	var (
		mu      sync.Mutex
		results []found
	)

	var g errgroup.Group
	g.SetLimit(8)

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		rel, _ := relPath(root, path)
		if rel != "" {
			if strings.HasPrefix(d.Name(), ".") && d.Name() != "." {
				return filepath.SkipDir
			}
			if _, skipped := submodules[rel]; skipped {
				return filepath.SkipDir
			}
			if ignored(matcher, root, path) {
				return filepath.SkipDir
			}
		}

		dir := path
		g.Go(func() error {
			cfgPath, warnings, ok := config.Discover(dir)
			if !ok {
				return nil
			}
			mu.Lock()
			results = append(results, found{dir: cfgPath, warnings: warnings})
			mu.Unlock()
			return nil
		})
		return nil
	})
	if err != nil {
		return nil, &errs.Discovery{Err: err}
	}
	if err := g.Wait(); err != nil {
		return nil, &errs.Discovery{Err: err}
	}

	ws := &Workspace{Root: root}
	for _, f := range results {
		cfg, loadWarnings, err := config.Load(f.dir)
		if err != nil {
			return nil, err
		}
		dir := filepath.Dir(f.dir)
		rel, depth := relPath(root, dir)
		ws.Projects = append(ws.Projects, &Project{
			Config:     cfg,
			AbsPath:    dir,
			ConfigPath: f.dir,
			RelPath:    rel,
			Depth:      depth,
		})
		ws.Warnings = append(ws.Warnings, f.warnings...)
		ws.Warnings = append(ws.Warnings, loadWarnings...)
	}

	sortProjects(ws.Projects)
	for i, p := range ws.Projects {
		p.Index = i
	}

	return ws, nil
}

// sortProjects applies spec §4.4 step 4: descending depth, lexicographic
// tiebreak on RelPath (so deeper projects run first, the root last).
func sortProjects(projects []*Project) {
	sort.SliceStable(projects, func(i, j int) bool {
		if projects[i].Depth != projects[j].Depth {
			return projects[i].Depth > projects[j].Depth
		}
		return projects[i].RelPath < projects[j].RelPath
	})
}

// loadIgnoreMatcher collects every .gitignore and .prekignore found
// under root into a single layered gitignore.Matcher (spec §4.4 step 3).
// Patterns are scoped to the directory that defines them via go-git's
// domain mechanism, so a nested .gitignore only ever affects paths under
// its own directory, matching git's own layering.
func loadIgnoreMatcher(root string) (gitignore.Matcher, error) {
	var patterns []gitignore.Pattern

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		rel, _ := relPath(root, path)
		if rel != "" && strings.HasPrefix(d.Name(), ".") && d.Name() != "." {
			return filepath.SkipDir
		}

		var domain []string
		if rel != "" {
			domain = strings.Split(rel, "/")
		}
		for _, name := range [...]string{".gitignore", ignoreFileName} {
			data, readErr := os.ReadFile(filepath.Join(path, name)) // #nosec G304 -- fixed filenames under a discovered dir
			if readErr != nil {
				continue
			}
			for _, line := range strings.Split(string(data), "\n") {
				line = strings.TrimRight(line, "\r")
				if line == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
					continue
				}
				patterns = append(patterns, gitignore.ParsePattern(line, domain))
			}
		}
		return nil
	})
	if err != nil {
		return nil, &errs.Discovery{Err: err}
	}
	return gitignore.NewMatcher(patterns), nil
}

// ignored reports whether path matches the accumulated .gitignore/
// .prekignore pattern set (spec §4.4 step 3).
func ignored(matcher gitignore.Matcher, root, path string) bool {
	rel, _ := relPath(root, path)
	if rel == "" {
		return false
	}
	return matcher.Match(strings.Split(rel, "/"), true)
}

// FindWorkspaceRoot ascends from start to the nearest ancestor containing
// a config file (spec §4.4 step 1), stopping at gitRoot.
func FindWorkspaceRoot(start, gitRoot string) (string, error) {
	dir := start
	for {
		if _, _, ok := config.Discover(dir); ok {
			return dir, nil
		}
		if dir == gitRoot {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", &errs.Discovery{Err: errMissingConfigFile}
}

var errMissingConfigFile = missingConfigFileError{}

type missingConfigFileError struct{}

func (missingConfigFileError) Error() string { return "no configuration file found under the git root" }
