// Package guard implements the working-tree guard (spec §4.8): it
// stashes unstaged modifications out of the way before a run so hooks
// only see staged content, and restores them afterward on every exit
// path, including signals.
package guard

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/prek-dev/prek/internal/errs"
	"github.com/prek-dev/prek/internal/gitx"
	"github.com/prek-dev/prek/internal/store"
)

// Guard is a scoped acquisition (spec §9 "Cancellation with resource
// release"): Acquire stashes, and the returned release func (or the
// signal handler it installs) is the only way unstaged changes come
// back. Never leave a Guard un-released.
type Guard struct {
	repo      *gitx.Repository
	st        *store.Store
	patchPath string
	active    bool

	once      sync.Once
	sigCh     chan os.Signal
	sigDoneCh chan struct{}
}

// New constructs a Guard bound to repo/st but does not stash anything
// yet; call Acquire to do that.
func New(repo *gitx.Repository, st *store.Store) *Guard {
	return &Guard{repo: repo, st: st}
}

// Acquire detects unstaged modifications and, if any exist, stashes them
// (spec §4.8 steps 1-2): writes a patch file under store.patches/ and
// resets the working tree to staged content. It installs a
// SIGINT/SIGTERM handler that restores before re-raising, matching the
// "destructor + signal handler" shape from spec §9.
//
// The returned release func MUST be deferred by the caller; it is safe
// to call multiple times.
func (g *Guard) Acquire() (release func() error, err error) {
	unstaged, err := g.repo.UnstagedFiles()
	if err != nil {
		return nil, err
	}
	if len(unstaged) == 0 {
		return func() error { return nil }, nil
	}

	patchPath := g.st.NewPatchPath(time.Now())
	if err := g.writePatch(patchPath); err != nil {
		return nil, err
	}

	if err := g.checkoutStagedOnly(); err != nil {
		_ = os.Remove(patchPath)
		return nil, err
	}

	g.patchPath = patchPath
	g.active = true
	g.installSignalHandler()

	return g.release, nil
}

// release restores the patch exactly once, tearing down the signal
// handler first so a signal during restore doesn't re-enter it.
func (g *Guard) release() error {
	var err error
	g.once.Do(func() {
		g.stopSignalHandler()
		err = g.restore()
	})
	return err
}

func (g *Guard) restore() error {
	if !g.active {
		return nil
	}
	g.active = false

	if applyErr := g.applyPatch(g.patchPath); applyErr != nil {
		// Conflict-safe fallback: the working tree changed enough (e.g. a
		// formatter mutated the same lines) that a direct apply can't
		// land. Retry with a 3-way merge before giving up.
		if threeWayErr := g.applyPatchThreeWay(g.patchPath); threeWayErr != nil {
			return &errs.Git{Summary: "restore stash", Err: fmt.Errorf(
				"failed to reapply stashed changes from %s (direct: %v, 3-way: %v); "+
					"the patch file was left in place for manual recovery", g.patchPath, applyErr, threeWayErr)}
		}
	}

	return os.Remove(g.patchPath)
}

func (g *Guard) writePatch(path string) error {
	cmd := exec.Command("git", "diff", "--binary") //nolint:gosec
	cmd.Dir = g.repo.Root
	out, err := cmd.Output()
	if err != nil {
		return &errs.Git{Summary: "diff --binary", Err: err}
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return &errs.Store{Err: err}
	}
	return nil
}

func (g *Guard) checkoutStagedOnly() error {
	cmd := exec.Command("git", "checkout-index", "-a", "-f") //nolint:gosec
	cmd.Dir = g.repo.Root
	if out, err := cmd.CombinedOutput(); err != nil {
		return &errs.Git{Summary: "checkout-index -a -f", Stderr: string(out), Err: err}
	}
	return nil
}

func (g *Guard) applyPatch(path string) error {
	cmd := exec.Command("git", "apply", "--whitespace=nowarn", path) //nolint:gosec
	cmd.Dir = g.repo.Root
	if out, err := cmd.CombinedOutput(); err != nil {
		return &errs.Git{Summary: "apply", Stderr: string(out), Err: err}
	}
	return nil
}

func (g *Guard) applyPatchThreeWay(path string) error {
	cmd := exec.Command("git", "apply", "--whitespace=nowarn", "--3way", path) //nolint:gosec
	cmd.Dir = g.repo.Root
	if out, err := cmd.CombinedOutput(); err != nil {
		return &errs.Git{Summary: "apply --3way", Stderr: string(out), Err: err}
	}
	return nil
}

func (g *Guard) installSignalHandler() {
	g.sigCh = make(chan os.Signal, 1)
	g.sigDoneCh = make(chan struct{})
	signal.Notify(g.sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-g.sigCh:
			_ = g.release()
			os.Exit(errs.ExitInterrupted)
		case <-g.sigDoneCh:
		}
	}()
}

func (g *Guard) stopSignalHandler() {
	if g.sigCh == nil {
		return
	}
	signal.Stop(g.sigCh)
	close(g.sigDoneCh)
}

// MutatedDuringRun reports whether any of files changed on disk under
// root since before was captured, used to detect hook mutations after a
// run (spec §4.8's post-run check, complementing the C9 scheduler's
// per-process exit-code handling). root is the directory the hook ran
// in, i.e. the owning project's directory.
func MutatedDuringRun(root string, before map[string]string, files []string) ([]string, error) {
	var mutated []string
	for _, f := range files {
		after, err := fileDigest(root, f)
		if err != nil {
			continue // deleted by the hook: not a "mutation" this check covers
		}
		if before[f] != after {
			mutated = append(mutated, f)
		}
	}
	return mutated, nil
}

// SnapshotDigests captures a pre-run content digest for every file, used
// as the `before` argument to MutatedDuringRun.
func SnapshotDigests(repoRoot string, files []string) map[string]string {
	digests := make(map[string]string, len(files))
	for _, f := range files {
		if d, err := fileDigest(repoRoot, f); err == nil {
			digests[f] = d
		}
	}
	return digests
}

func fileDigest(repoRoot, relPath string) (string, error) {
	f, err := os.Open(filepath.Join(repoRoot, relPath)) //nolint:gosec
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// DiffWorktree returns the unified diff of uncommitted working-tree
// changes, used for --show-diff-on-failure (spec §4.8): called after the
// scheduler runs but before release/restore, it captures exactly the
// hook-induced changes, since any pre-existing unstaged edits were
// already stashed out of the way by Acquire.
func (g *Guard) DiffWorktree() (string, error) {
	cmd := exec.Command("git", "diff") //nolint:gosec
	cmd.Dir = g.repo.Root
	out, err := cmd.Output()
	if err != nil {
		return "", &errs.Git{Summary: "diff", Err: err}
	}
	return string(out), nil
}

// ContextDoneRelease is a convenience for callers that want the guard
// released as soon as ctx is canceled, in addition to the normal
// deferred release (belt-and-braces for long-running executors).
func ContextDoneRelease(ctx context.Context, release func() error) {
	go func() {
		<-ctx.Done()
		_ = release()
	}()
}
