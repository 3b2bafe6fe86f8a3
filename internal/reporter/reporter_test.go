package reporter

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/prek-dev/prek/internal/scheduler"
)

func TestReportPlainPassFail(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, "never", false, false, false)

	failed := r.Report([]scheduler.Result{
		{HookID: "ok", Name: "ok-hook", Priority: 1, Passed: true},
		{HookID: "bad", Name: "bad-hook", Priority: 1, Passed: false, ExitCode: 1},
	})

	require.True(t, failed)
	out := buf.String()
	require.Contains(t, out, "ok-hook")
	require.Contains(t, out, "Passed")
	require.Contains(t, out, "bad-hook")
	require.Contains(t, out, "Failed")
	require.Contains(t, out, "- hook id: bad")
	require.Contains(t, out, "- exit code: 1")
}

func TestReportSkippedHookPasses(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, "never", false, false, false)

	failed := r.Report([]scheduler.Result{
		{HookID: "noop", Name: "noop-hook", Priority: 1, Skipped: true, Passed: true},
	})

	require.False(t, failed)
	require.Contains(t, buf.String(), "Skipped")
}

func TestReportGroupsModifiedFilesUnderBracket(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, "never", false, false, false)

	failed := r.Report([]scheduler.Result{
		{HookID: "fmt1", Name: "fmt1", Priority: 1, Passed: true, FilesModified: true},
		{HookID: "fmt2", Name: "fmt2", Priority: 1, Passed: true, FilesModified: true},
	})

	require.True(t, failed)
	out := buf.String()
	require.Contains(t, out, "Files were modified by following hooks:")
	require.Contains(t, out, "┌ fmt1")
	require.Contains(t, out, "└ fmt2")
}

func TestReportGroupsByProjectInWorkspaceMode(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, "never", false, false, false)

	r.Report([]scheduler.Result{
		{HookID: "a", Name: "a", ProjectName: "svc-a", Priority: 1, Passed: true},
		{HookID: "b", Name: "b", ProjectName: "svc-b", Priority: 1, Passed: true},
	})

	out := buf.String()
	require.Contains(t, out, "Running hooks for svc-a:")
	require.Contains(t, out, "Running hooks for svc-b:")
}

func TestFormatDuration(t *testing.T) {
	require.Equal(t, "0s", formatDuration(2*time.Millisecond))
	require.Equal(t, "0.50s", formatDuration(500*time.Millisecond))
	require.Equal(t, "12.3s", formatDuration(12300*time.Millisecond))
	require.Equal(t, "1m5s", formatDuration(65*time.Second))
}

func TestDotsForNeverGoesNegative(t *testing.T) {
	longName := "a-very-long-hook-name-that-exceeds-the-status-column-width-by-itself-entirely"
	dots := dotsFor(longName, "Passed")
	require.GreaterOrEqual(t, len(dots), 1)
}
