package guard

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prek-dev/prek/internal/gitx"
	"github.com/prek-dev/prek/internal/store"
)

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
	)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
}

func setupTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	runGit(t, dir, "init", "-q")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "user.name", "test")

	tracked := filepath.Join(dir, "tracked.txt")
	require.NoError(t, os.WriteFile(tracked, []byte("original\n"), 0o644))
	runGit(t, dir, "add", "tracked.txt")
	runGit(t, dir, "commit", "-q", "-m", "initial")

	return dir
}

func openGuard(t *testing.T, dir string) (*Guard, *gitx.Repository) {
	t.Helper()
	repo, err := gitx.Open(dir)
	require.NoError(t, err)
	st, err := store.New(t.TempDir())
	require.NoError(t, err)
	return New(repo, st), repo
}

func TestAcquireNoopWhenNothingUnstaged(t *testing.T) {
	dir := setupTestRepo(t)
	g, _ := openGuard(t, dir)

	release, err := g.Acquire()
	require.NoError(t, err)
	require.NoError(t, release())
	require.False(t, g.active, "nothing was stashed")
}

func TestAcquireStashesAndReleaseRestores(t *testing.T) {
	dir := setupTestRepo(t)
	g, _ := openGuard(t, dir)

	tracked := filepath.Join(dir, "tracked.txt")
	require.NoError(t, os.WriteFile(tracked, []byte("unstaged edit\n"), 0o644))

	release, err := g.Acquire()
	require.NoError(t, err)
	require.True(t, g.active)

	// While acquired, the working tree must only reflect staged (HEAD)
	// content: the unstaged edit is stashed away.
	content, err := os.ReadFile(tracked)
	require.NoError(t, err)
	require.Equal(t, "original\n", string(content))

	require.NoError(t, release())

	restored, err := os.ReadFile(tracked)
	require.NoError(t, err)
	require.Equal(t, "unstaged edit\n", string(restored))

	_, err = os.Stat(g.patchPath)
	require.True(t, os.IsNotExist(err), "patch file is cleaned up after a successful restore")
}

func TestReleaseIsIdempotent(t *testing.T) {
	dir := setupTestRepo(t)
	g, _ := openGuard(t, dir)

	tracked := filepath.Join(dir, "tracked.txt")
	require.NoError(t, os.WriteFile(tracked, []byte("unstaged edit\n"), 0o644))

	release, err := g.Acquire()
	require.NoError(t, err)
	require.NoError(t, release())
	require.NoError(t, release(), "a second release call must be a no-op, not a re-restore")
}

func TestSnapshotAndMutatedDuringRun(t *testing.T) {
	dir := setupTestRepo(t)

	before := SnapshotDigests(dir, []string{"tracked.txt"})

	mutated, err := MutatedDuringRun(dir, before, []string{"tracked.txt"})
	require.NoError(t, err)
	require.Empty(t, mutated, "file untouched since snapshot")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "tracked.txt"), []byte("changed by hook\n"), 0o644))

	mutated, err = MutatedDuringRun(dir, before, []string{"tracked.txt"})
	require.NoError(t, err)
	require.Equal(t, []string{"tracked.txt"}, mutated)
}
