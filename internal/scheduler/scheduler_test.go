package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prek-dev/prek/internal/config"
	"github.com/prek-dev/prek/internal/envmanager"
	"github.com/prek-dev/prek/internal/hookmodel"
	"github.com/prek-dev/prek/internal/store"
)

func buildHook(t *testing.T, id, entry string, args []string, priority int, failFast bool) *hookmodel.ResolvedHook {
	t.Helper()
	manifest := config.Hook{ID: id, Entry: entry, Language: "system", Args: args, Priority: &priority}
	defaults := hookmodel.ProjectDefaults{FailFast: failFast}
	rh, err := hookmodel.Build(manifest, config.Hook{}, defaults, "", hookmodel.Repo{}, priority)
	require.NoError(t, err)
	return rh
}

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	st, err := store.New(t.TempDir())
	require.NoError(t, err)
	return New(envmanager.NewManager(st))
}

func TestRunOrdersByPriorityAndReportsPassFail(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o644))

	sched := newTestScheduler(t)
	tasks := []Task{
		{Hook: buildHook(t, "ok", "true", nil, 10, false), Files: []string{"a.txt"}, ProjectDir: dir},
		{Hook: buildHook(t, "bad", "false", nil, 5, false), Files: []string{"a.txt"}, ProjectDir: dir},
	}

	results, err := sched.Run(context.Background(), tasks, Options{Concurrency: 2})
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "bad", results[0].HookID)
	require.Equal(t, "ok", results[1].HookID)

	byID := map[string]Result{}
	for _, r := range results {
		byID[r.HookID] = r
	}
	require.True(t, byID["ok"].Passed)
	require.False(t, byID["bad"].Passed)
	require.Equal(t, 1, byID["bad"].ExitCode)
}

func TestFailFastSkipsLaterPriorityGroup(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o644))

	sched := newTestScheduler(t)
	tasks := []Task{
		{Hook: buildHook(t, "first-fails", "false", nil, 1, true), Files: []string{"a.txt"}, ProjectDir: dir},
		{Hook: buildHook(t, "never-runs", "true", nil, 2, false), Files: []string{"a.txt"}, ProjectDir: dir},
	}

	results, err := sched.Run(context.Background(), tasks, Options{Concurrency: 2})
	require.NoError(t, err)

	byID := map[string]Result{}
	for _, r := range results {
		byID[r.HookID] = r
	}
	require.False(t, byID["first-fails"].Passed)
	require.True(t, byID["never-runs"].Skipped, "later priority group must not start after fail_fast")
}

func TestSkipsWhenNoFilesAndNotAlwaysRun(t *testing.T) {
	sched := newTestScheduler(t)
	tasks := []Task{
		{Hook: buildHook(t, "no-files", "true", nil, 0, false), Files: nil, ProjectDir: t.TempDir()},
	}

	results, err := sched.Run(context.Background(), tasks, Options{Concurrency: 1})
	require.NoError(t, err)
	require.True(t, results[0].Skipped)
	require.True(t, results[0].Passed)
}

func TestBatchFilesRespectsLimit(t *testing.T) {
	files := []string{"aaaa", "bbbb", "cccc", "dddd"}
	batches := batchFiles(files, 10)
	require.Len(t, batches, 2)
	require.Equal(t, []string{"aaaa", "bbbb"}, batches[0])
	require.Equal(t, []string{"cccc", "dddd"}, batches[1])
}

func TestResolveEnvExpandsPathPrepend(t *testing.T) {
	task := Task{Hook: buildHook(t, "x", "true", nil, 0, false)}
	env := resolveEnv([]string{"PATH_PREPEND=/fake/bin", "VIRTUAL_ENV=/fake/venv"}, task)

	var sawPath, sawVirtualEnv, sawPreCommit bool
	for _, kv := range env {
		switch {
		case len(kv) > 5 && kv[:5] == "PATH=":
			sawPath = true
			require.Contains(t, kv, "/fake/bin")
		case kv == "VIRTUAL_ENV=/fake/venv":
			sawVirtualEnv = true
		case kv == "PRE_COMMIT=1":
			sawPreCommit = true
		}
	}
	require.True(t, sawPath)
	require.True(t, sawVirtualEnv)
	require.True(t, sawPreCommit)
}
