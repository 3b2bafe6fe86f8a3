package fileselect

import (
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/prek-dev/prek/internal/errs"
	"github.com/prek-dev/prek/internal/gitx"
)

// Options carries the run-wide file-selection flags from spec §6/§4.7,
// already parsed by the CLI layer.
type Options struct {
	Files       []string
	LastCommit  bool
	FromRef     string
	ToRef       string
	AllFiles    bool
	Directories []string

	// CommitMsgFile is set for commit-msg/prepare-commit-msg stages (spec
	// §4.7 step 5): the run-wide set is just this one path.
	CommitMsgFile string
	// AlwaysRunStage is set for post-checkout/post-rewrite (step 6): the
	// run-wide set is empty, relying entirely on always_run hooks.
	AlwaysRunStage bool
}

// Warning mirrors the CLI-wide non-fatal warning channel (spec §6).
type Warning struct{ Message string }

// RunWideFiles computes the run-wide file set per spec §4.7's 8-step
// priority list, returning repo-root-relative, slash-separated paths.
func RunWideFiles(repo *gitx.Repository, opts Options) ([]string, []Warning, error) {
	var warnings []Warning

	files, err := selectByPriority(repo, opts, &warnings)
	if err != nil {
		return nil, warnings, err
	}

	if len(opts.Directories) > 0 {
		extra, err := filesUnderDirectories(repo, opts.Directories)
		if err != nil {
			return nil, warnings, err
		}
		files = union(files, extra)
	}

	files, err = removeUnmergedConflicts(repo, files)
	if err != nil {
		return nil, warnings, err
	}

	sort.Strings(files)
	return files, warnings, nil
}

func selectByPriority(repo *gitx.Repository, opts Options, warnings *[]Warning) ([]string, error) {
	switch {
	case len(opts.Files) > 0:
		return explicitFiles(opts.Files, warnings), nil

	case opts.LastCommit:
		parent, err := repo.ParentCommit("HEAD")
		if err != nil {
			return nil, &errs.Discovery{Err: fmt.Errorf("--last-commit: %w", err)}
		}
		return repo.DiffFiles(parent, "HEAD")

	case opts.FromRef != "" || opts.ToRef != "":
		from, to := opts.FromRef, opts.ToRef
		if to == "" {
			to = "HEAD"
		}
		return repo.DiffFiles(from, to)

	case opts.AllFiles:
		return repo.AllFiles()

	case opts.CommitMsgFile != "":
		return []string{opts.CommitMsgFile}, nil

	case opts.AlwaysRunStage:
		return nil, nil

	default:
		staged, err := repo.StagedFiles()
		if err != nil {
			return nil, err
		}
		intentToAdd, err := repo.IntentToAddFiles()
		if err != nil {
			return nil, err
		}
		return union(staged, intentToAdd), nil
	}
}

func explicitFiles(paths []string, warnings *[]Warning) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			*warnings = append(*warnings, Warning{Message: fmt.Sprintf("--files: %s does not exist", p)})
			continue
		}
		out = append(out, filepathToSlash(p))
	}
	return out
}

func filesUnderDirectories(repo *gitx.Repository, dirs []string) ([]string, error) {
	all, err := repo.AllFiles()
	if err != nil {
		return nil, err
	}
	var out []string
	for _, f := range all {
		for _, d := range dirs {
			d = strings.TrimSuffix(filepathToSlash(d), "/")
			if f == d || strings.HasPrefix(f, d+"/") {
				out = append(out, f)
				break
			}
		}
	}
	return out, nil
}

// removeUnmergedConflicts implements spec §4.7 step 8: strip files with
// unresolved merge conflicts from the set; if any conflicted file was
// actually present in the run-wide set, the run errors rather than
// silently continuing without it.
func removeUnmergedConflicts(repo *gitx.Repository, files []string) ([]string, error) {
	unmerged, err := repo.UnmergedPaths()
	if err != nil {
		return nil, err
	}
	if len(unmerged) == 0 {
		return files, nil
	}

	conflicted := make(map[string]struct{}, len(unmerged))
	for _, f := range unmerged {
		conflicted[f] = struct{}{}
	}

	out := make([]string, 0, len(files))
	var present []string
	for _, f := range files {
		if _, ok := conflicted[f]; ok {
			present = append(present, f)
			continue
		}
		out = append(out, f)
	}

	if len(present) > 0 {
		return nil, &errs.Discovery{Err: fmt.Errorf(
			"unresolved merge conflicts in %v; resolve them before running hooks", present)}
	}
	return out, nil
}

func union(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, f := range append(append([]string{}, a...), b...) {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

func filepathToSlash(p string) string {
	return path.Clean(strings.ReplaceAll(p, "\\", "/"))
}
