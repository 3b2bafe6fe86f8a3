package gitx

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
		)
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, out)
	}

	run("init")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("one\n"), 0o600))
	run("add", "a.txt")
	run("commit", "-m", "initial")

	return dir
}

func TestFindRoot(t *testing.T) {
	dir := initRepo(t)
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.MkdirAll(sub, 0o750))

	root, err := FindRoot(sub)
	require.NoError(t, err)
	require.Equal(t, dir, root)
}

func TestStagedAndUntrackedFiles(t *testing.T) {
	dir := initRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("two\n"), 0o600))

	repo, err := Open(dir)
	require.NoError(t, err)

	untracked, err := repo.UntrackedFiles()
	require.NoError(t, err)
	require.Contains(t, untracked, "b.txt")

	staged, err := repo.StagedFiles()
	require.NoError(t, err)
	require.Empty(t, staged)
}

func TestScrubForHooks(t *testing.T) {
	env := []string{"GIT_DIR=/x/.git", "GIT_WORK_TREE=/x", "PATH=/usr/bin", "GIT_SSH_COMMAND=ssh -i k"}
	scrubbed := ScrubForHooks(env)
	require.NotContains(t, scrubbed, "GIT_DIR=/x/.git")
	require.NotContains(t, scrubbed, "GIT_WORK_TREE=/x")
	require.Contains(t, scrubbed, "PATH=/usr/bin")
	require.Contains(t, scrubbed, "GIT_SSH_COMMAND=ssh -i k")
}
