// Package gitx is the git adapter: it answers questions about the user's
// repository (refs, staged/unstaged/untracked files, merge state,
// submodules, worktree root) and never shells out for them — go-git reads
// the on-disk repository directly. Mutating operations that the rest of
// the tool needs (clone, checkout of a hook repo) live in internal/store,
// which does shell out, because go-git's porcelain clone can't express the
// shallow-then-full-fetch fallback the Store's clone protocol needs.
package gitx

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/prek-dev/prek/internal/errs"
)

// Repository is a handle on the user's repository, opened once per process
// and reused by every component that needs git state.
type Repository struct {
	repo *git.Repository
	// Root is the absolute path of the working-tree root (not .git).
	Root string
}

// Open finds the repository root ascending from start (empty means CWD)
// and opens it. Worktree/GIT_DIR overrides from the host environment are
// honored here and nowhere else (see ScrubForHooks / ScrubForClone).
func Open(start string) (*Repository, error) {
	root, err := FindRoot(start)
	if err != nil {
		return nil, err
	}

	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, &errs.Git{Summary: "open", Err: err}
	}

	return &Repository{repo: repo, Root: root}, nil
}

// FindRoot ascends from start until a .git entry (directory, or a
// worktree's gitdir-pointer file) is found.
func FindRoot(start string) (string, error) {
	path := start
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", &errs.Git{Summary: "getwd", Err: err}
		}
		path = wd
	}

	path, err := filepath.Abs(path)
	if err != nil {
		return "", &errs.Git{Summary: "abspath", Err: err}
	}

	if gitDirEnv := os.Getenv("GIT_WORK_TREE"); gitDirEnv != "" {
		return filepath.Abs(gitDirEnv)
	}

	for {
		gitDir := filepath.Join(path, ".git")
		if info, statErr := os.Stat(gitDir); statErr == nil {
			if info.IsDir() {
				return path, nil
			}
			if content, readErr := os.ReadFile(gitDir); readErr == nil { //nolint:gosec // repo-internal marker file
				if strings.HasPrefix(strings.TrimSpace(string(content)), "gitdir: ") {
					return path, nil
				}
			}
		}

		parent := filepath.Dir(path)
		if parent == path {
			return "", &errs.Git{Summary: "find-root", Err: fmt.Errorf("not a git repository (or any parent): %s", start)}
		}
		path = parent
	}
}

// FileStatus is the set of files a given git-state query produced, already
// deduplicated and path-normalized (slash-separated, repo-root-relative).
type FileStatus struct {
	Files []string
}

func (r *Repository) worktree() (*git.Worktree, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, &errs.Git{Summary: "worktree", Err: err}
	}
	return wt, nil
}

// StagedFiles returns files staged in the index (added, modified, copied,
// renamed — anything that will be part of the next commit).
func (r *Repository) StagedFiles() ([]string, error) {
	wt, err := r.worktree()
	if err != nil {
		return nil, err
	}
	status, err := wt.Status()
	if err != nil {
		return nil, &errs.Git{Summary: "status", Err: err}
	}

	var files []string
	for file, st := range status {
		switch st.Staging {
		case git.Added, git.Modified, git.Copied, git.Renamed:
			files = append(files, file)
		}
	}
	sort.Strings(files)
	return files, nil
}

// UnstagedFiles returns tracked files with working-tree modifications or
// deletions not yet staged; untracked files are not included (used by the
// working-tree guard to decide whether there is anything to stash).
func (r *Repository) UnstagedFiles() ([]string, error) {
	wt, err := r.worktree()
	if err != nil {
		return nil, err
	}
	status, err := wt.Status()
	if err != nil {
		return nil, &errs.Git{Summary: "status", Err: err}
	}

	var files []string
	for file, st := range status {
		if st.Worktree == git.Modified || st.Worktree == git.Deleted {
			files = append(files, file)
		}
	}
	sort.Strings(files)
	return files, nil
}

// UntrackedFiles returns files git doesn't know about at all.
func (r *Repository) UntrackedFiles() ([]string, error) {
	wt, err := r.worktree()
	if err != nil {
		return nil, err
	}
	status, err := wt.Status()
	if err != nil {
		return nil, &errs.Git{Summary: "status", Err: err}
	}

	var files []string
	for file, st := range status {
		if st.Worktree == git.Untracked {
			files = append(files, file)
		}
	}
	sort.Strings(files)
	return files, nil
}

// IntentToAddFiles returns files added with `git add -N` (tracked in the
// index but with no staged content yet).
func (r *Repository) IntentToAddFiles() ([]string, error) {
	wt, err := r.worktree()
	if err != nil {
		return nil, err
	}
	status, err := wt.Status()
	if err != nil {
		return nil, &errs.Git{Summary: "status", Err: err}
	}

	var files []string
	for file, st := range status {
		if st.Staging == git.UpdatedButUnmerged {
			continue
		}
		if st.Staging == git.Added && st.Worktree == git.Added {
			files = append(files, file)
		}
	}
	sort.Strings(files)
	return files, nil
}

// AllFiles returns every file git tracks (HEAD tree union with the index),
// equivalent to `git ls-files`.
func (r *Repository) AllFiles() ([]string, error) {
	wt, err := r.worktree()
	if err != nil {
		return nil, err
	}

	fileSet := make(map[string]struct{})

	status, err := wt.Status()
	if err == nil {
		for file, st := range status {
			if st.Staging != git.Untracked {
				fileSet[file] = struct{}{}
			}
		}
	}

	if head, headErr := r.repo.Head(); headErr == nil {
		if commit, commitErr := r.repo.CommitObject(head.Hash()); commitErr == nil {
			if tree, treeErr := commit.Tree(); treeErr == nil {
				_ = tree.Files().ForEach(func(f *object.File) error {
					fileSet[f.Name] = struct{}{}
					return nil
				})
			}
		}
	}

	files := make([]string, 0, len(fileSet))
	for f := range fileSet {
		files = append(files, f)
	}
	sort.Strings(files)
	return files, nil
}

// SubmodulePaths lists configured submodule working-tree paths so the
// workspace walk can skip them entirely.
func (r *Repository) SubmodulePaths() ([]string, error) {
	wt, err := r.worktree()
	if err != nil {
		return nil, err
	}
	subs, err := wt.Submodules()
	if err != nil {
		return nil, &errs.Git{Summary: "submodules", Err: err}
	}
	paths := make([]string, 0, len(subs))
	for _, s := range subs {
		paths = append(paths, s.Config().Path)
	}
	return paths, nil
}

// HasUnmergedPaths reports whether the index has unresolved merge
// conflicts.
func (r *Repository) HasUnmergedPaths() (bool, error) {
	paths, err := r.UnmergedPaths()
	if err != nil {
		return false, err
	}
	return len(paths) > 0, nil
}

// UnmergedPaths lists files the index still records as conflicted.
func (r *Repository) UnmergedPaths() ([]string, error) {
	wt, err := r.worktree()
	if err != nil {
		return nil, err
	}
	status, err := wt.Status()
	if err != nil {
		return nil, &errs.Git{Summary: "status", Err: err}
	}
	var files []string
	for file, st := range status {
		if st.Staging == git.UpdatedButUnmerged || st.Worktree == git.UpdatedButUnmerged {
			files = append(files, file)
		}
	}
	sort.Strings(files)
	return files, nil
}

// RefExists reports whether ref resolves to a commit.
func (r *Repository) RefExists(ref string) bool {
	_, err := r.resolve(ref)
	return err == nil
}

// ParentCommit returns the parent ref of ref (HEAD~1 semantics).
func (r *Repository) ParentCommit(ref string) (string, error) {
	hash, err := r.resolve(ref)
	if err != nil {
		return "", &errs.Git{Summary: "parent-commit", Err: err}
	}
	commit, err := r.repo.CommitObject(hash)
	if err != nil {
		return "", &errs.Git{Summary: "parent-commit", Err: err}
	}
	if len(commit.ParentHashes) == 0 {
		return "", &errs.Git{Summary: "parent-commit", Err: fmt.Errorf("%s has no parent", ref)}
	}
	return commit.ParentHashes[0].String(), nil
}

// DiffFiles returns the set of files that differ between two refs (the
// "to" side of each change, matching pre-commit's ACM filter).
func (r *Repository) DiffFiles(fromRef, toRef string) ([]string, error) {
	fromHash, err := r.resolve(fromRef)
	if err != nil {
		return nil, &errs.Git{Summary: "resolve " + fromRef, Err: err}
	}
	toHash, err := r.resolve(toRef)
	if err != nil {
		return nil, &errs.Git{Summary: "resolve " + toRef, Err: err}
	}

	fromTree, err := r.treeAt(fromHash)
	if err != nil {
		return nil, err
	}
	toTree, err := r.treeAt(toHash)
	if err != nil {
		return nil, err
	}

	changes, err := fromTree.Diff(toTree)
	if err != nil {
		return nil, &errs.Git{Summary: "diff", Err: err}
	}

	var files []string
	for _, c := range changes {
		if c.To.Name != "" {
			files = append(files, c.To.Name)
		}
	}
	sort.Strings(files)
	return files, nil
}

// AncestorsNotIn returns commit hashes reachable from ref but not from
// remoteRef, oldest first — used to bound pre-push's file diff when no
// explicit --from-ref/--to-ref was given.
func (r *Repository) AncestorsNotIn(ref, remoteRef string) ([]string, error) {
	head, err := r.resolve(ref)
	if err != nil {
		return nil, &errs.Git{Summary: "resolve " + ref, Err: err}
	}
	remote, err := r.resolve(remoteRef)
	if err != nil {
		// Remote ref unknown (new branch): every ancestor of ref qualifies.
		remote = plumbing.ZeroHash
	}

	seenRemote := map[plumbing.Hash]struct{}{}
	if remote != plumbing.ZeroHash {
		iter, err := r.repo.Log(&git.LogOptions{From: remote})
		if err == nil {
			_ = iter.ForEach(func(c *object.Commit) error {
				seenRemote[c.Hash] = struct{}{}
				return nil
			})
		}
	}

	var out []string
	iter, err := r.repo.Log(&git.LogOptions{From: head})
	if err != nil {
		return nil, &errs.Git{Summary: "log", Err: err}
	}
	_ = iter.ForEach(func(c *object.Commit) error {
		if _, ok := seenRemote[c.Hash]; !ok {
			out = append(out, c.Hash.String())
		}
		return nil
	})
	// Log walks newest first; reverse so the oldest commit comes first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (r *Repository) treeAt(hash plumbing.Hash) (*object.Tree, error) {
	commit, err := r.repo.CommitObject(hash)
	if err != nil {
		return nil, &errs.Git{Summary: "commit-object", Err: err}
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, &errs.Git{Summary: "tree", Err: err}
	}
	return tree, nil
}

func (r *Repository) resolve(ref string) (plumbing.Hash, error) {
	if h, err := r.repo.ResolveRevision(plumbing.Revision(ref)); err == nil {
		return *h, nil
	}
	if h := plumbing.NewHash(ref); !h.IsZero() {
		return h, nil
	}
	return plumbing.ZeroHash, fmt.Errorf("unable to resolve reference: %s", ref)
}
