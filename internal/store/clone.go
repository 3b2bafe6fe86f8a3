package store

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/prek-dev/prek/internal/errs"
	"github.com/prek-dev/prek/internal/gitx"
)

// marker file inside a completed clone, used to tell a finished clone
// from a crashed scratch directory.
const cloneMarkerFile = ".prek-clone-complete"

// CloneOrReuse ensures a hook repo identified by (url, rev, deps) is
// cloned at fingerprint's directory, returning its path. Two identical
// (url, rev) references from different projects share one clone (spec
// §4.2). The clone runs under a per-fingerprint lock so concurrent runs
// don't race on the same clone; the process-wide store lock is not taken.
func (s *Store) CloneOrReuse(ctx context.Context, url, rev string, additionalDeps []string) (string, error) {
	fp := Fingerprint(url, rev, additionalDeps)
	target := s.RepoPath(fp)

	if validClone(target, rev) {
		return target, nil
	}

	var result string
	err := s.WithRepoLock(fp, func() error {
		// Re-check inside the lock: another process may have finished
		// cloning while we waited (spec §4.2 "re-check ... If not, clone").
		if validClone(target, rev) {
			result = target
			return nil
		}

		scratch := target + ".tmp-" + uuid8()
		if err := cloneInto(ctx, scratch, url, rev); err != nil {
			_ = os.RemoveAll(scratch)
			return err
		}
		if err := os.WriteFile(filepath.Join(scratch, cloneMarkerFile), []byte(rev), 0o600); err != nil {
			_ = os.RemoveAll(scratch)
			return &errs.Store{Err: err}
		}
		if err := renameRetrying(scratch, target); err != nil {
			_ = os.RemoveAll(scratch)
			return &errs.Store{Err: err}
		}
		result = target
		return nil
	})
	if err != nil {
		return "", err
	}
	return result, nil
}

func validClone(dir, rev string) bool {
	marker := filepath.Join(dir, cloneMarkerFile)
	data, err := os.ReadFile(marker) // #nosec G304 -- internally derived store path
	if err != nil {
		return false
	}
	return string(data) == rev
}

// cloneInto performs the literal git invocation sequence from spec §4.2:
// git init -> git remote add -> git fetch --depth 1 <rev>, falling back to
// a full fetch, then git checkout FETCH_HEAD. It shells out directly
// (os/exec, not go-git) because go-git's porcelain clone doesn't expose
// this shallow-then-full-fetch fallback.
func cloneInto(ctx context.Context, dir, url, rev string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return &errs.Store{Err: err}
	}

	run := func(args ...string) error {
		cmd := exec.CommandContext(ctx, "git", args...) //nolint:gosec // args are fixed; url/rev come from validated config
		cmd.Dir = dir
		cmd.Env = gitx.ScrubForClone(os.Environ())
		out, err := cmd.CombinedOutput()
		if err != nil {
			return &errs.Git{Summary: "clone: git " + args[0], Stderr: string(out), Err: err}
		}
		return nil
	}

	if err := run("init"); err != nil {
		return err
	}
	if err := run("remote", "add", "origin", url); err != nil {
		return err
	}
	if err := run("fetch", "--depth", "1", "origin", rev); err != nil {
		// Host refused shallow fetch (e.g. dumb HTTP, shallow-disallowed
		// protocol): fall back to a full fetch, per spec §4.2.
		if err := run("fetch", "origin", rev); err != nil {
			return err
		}
	}
	return run("checkout", "FETCH_HEAD")
}

// CloneMetadataOnly clones with a blob-none partial filter, used by
// metadata-only consumers (auto-update, out of this core's scope) that
// need history/refs without blob contents.
func (s *Store) CloneMetadataOnly(ctx context.Context, dir, url string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return &errs.Store{Err: err}
	}
	cmd := exec.CommandContext(ctx, "git", "clone", "--filter=blob:none", url, dir) //nolint:gosec
	cmd.Env = gitx.ScrubForClone(os.Environ())
	if out, err := cmd.CombinedOutput(); err != nil {
		return &errs.Git{Summary: "clone --filter=blob:none", Stderr: string(out), Err: err}
	}
	return nil
}
