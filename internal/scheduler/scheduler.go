// Package scheduler runs resolved hooks in priority groups with bounded
// concurrency, honoring require_serial and fail_fast (spec §4.9),
// grounded on the teacher's pkg/hook orchestrator/executor shape but
// rebuilt around golang.org/x/sync's errgroup+semaphore instead of the
// teacher's ad hoc WaitGroup+channel fan-in.
package scheduler

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"runtime"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/prek-dev/prek/internal/envmanager"
	"github.com/prek-dev/prek/internal/gitx"
	"github.com/prek-dev/prek/internal/guard"
	"github.com/prek-dev/prek/internal/hookmodel"
)

// argv limits from spec §4.9 step 3, conservative per platform.
const (
	argvLimitWindows = 32 * 1024
	argvLimitUnix    = 128 * 1024
)

// failSentinel is the argv[0] languages.Fail.ResolveCommand returns:
// the scheduler special-cases it instead of exec'ing a process.
const failSentinel = "__prek_fail__"

// Task is one resolved hook paired with the file set C7 selected for it.
// RepoCheckoutPath is the store's clone of the hook's own source (used
// only to install its environment); ProjectDir is the absolute path of
// the project being linted, where the hook process actually runs and
// against which Files are relative.
type Task struct {
	Hook             *hookmodel.ResolvedHook
	Files            []string
	RepoCheckoutPath string
	ProjectDir       string
	ProjectName      string
	TypeEnv          map[string]string // hook-type-specific env, e.g. PRE_COMMIT_REMOTE_NAME
}

// Result is what the reporter (C10) needs per hook.
type Result struct {
	HookID        string
	Name          string
	ProjectName   string
	Priority      int
	Ordinal       int
	Skipped       bool
	Passed        bool
	ExitCode      int
	Duration      time.Duration
	Output        string
	FilesModified bool
	Err           error
}

// Options configures a Run.
type Options struct {
	Concurrency int  // 0 defaults to runtime.NumCPU()
	FailFast    bool // run-global --fail-fast, ORed with each hook's own
}

// Scheduler executes tasks against a shared environment manager.
type Scheduler struct {
	manager *envmanager.Manager
}

func New(manager *envmanager.Manager) *Scheduler {
	return &Scheduler{manager: manager}
}

// Run groups tasks by priority (stable, ascending) and executes each
// group to completion before starting the next, subject to a global
// bounded-concurrency semaphore and fail_fast cancellation of later
// groups (spec §4.9).
func (s *Scheduler) Run(ctx context.Context, tasks []Task, opts Options) ([]Result, error) {
	ordered := append([]Task{}, tasks...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Hook.Priority < ordered[j].Hook.Priority
	})

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	sem := semaphore.NewWeighted(int64(concurrency))

	results := make([]Result, len(ordered))
	var cancelled atomic.Bool

	for _, group := range groupByPriority(ordered) {
		if cancelled.Load() {
			for _, idx := range group.indices {
				results[idx] = skippedResult(ordered[idx])
			}
			continue
		}

		var eg errgroup.Group

		for _, idx := range group.indices {
			task := ordered[idx]
			idx := idx

			weight := int64(1)
			if task.Hook.RequireSerial {
				weight = int64(concurrency)
			}
			if err := sem.Acquire(ctx, weight); err != nil {
				results[idx] = Result{HookID: task.Hook.ID, Name: task.Hook.Name, Err: ctx.Err()}
				continue
			}

			eg.Go(func() error {
				defer sem.Release(weight)

				// Writing results[idx] from multiple goroutines is safe: each
				// goroutine owns a distinct index, never shared.
				res := s.runOne(ctx, task)
				results[idx] = res

				if !res.Passed && !res.Skipped {
					if task.Hook.FailFast || opts.FailFast {
						cancelled.Store(true)
					}
				}
				return nil
			})
		}

		_ = eg.Wait()
	}

	return results, nil
}

type priorityGroup struct {
	priority int
	indices  []int
}

func groupByPriority(tasks []Task) []priorityGroup {
	var groups []priorityGroup
	for i, t := range tasks {
		if len(groups) == 0 || groups[len(groups)-1].priority != t.Hook.Priority {
			groups = append(groups, priorityGroup{priority: t.Hook.Priority})
		}
		groups[len(groups)-1].indices = append(groups[len(groups)-1].indices, i)
	}
	return groups
}

func skippedResult(t Task) Result {
	return Result{
		HookID:      t.Hook.ID,
		Name:        t.Hook.Name,
		ProjectName: t.ProjectName,
		Priority:    t.Hook.Priority,
		Ordinal:     t.Hook.Ordinal,
		Skipped:     true,
	}
}

// runOne performs the per-hook execution steps 2-7 of spec §4.9, plus
// the C8 mutation-detection check (spec §4.8).
func (s *Scheduler) runOne(ctx context.Context, task Task) Result {
	base := Result{
		HookID:      task.Hook.ID,
		Name:        task.Hook.Name,
		ProjectName: task.ProjectName,
		Priority:    task.Hook.Priority,
		Ordinal:     task.Hook.Ordinal,
	}

	if len(task.Files) == 0 && !task.Hook.AlwaysRun {
		base.Skipped = true
		base.Passed = true
		return base
	}

	start := time.Now()

	env, err := s.manager.Ensure(ctx, task.Hook, task.RepoCheckoutPath)
	if err != nil {
		base.Err = err
		base.Duration = time.Since(start)
		return base
	}

	if len(env.Argv) > 0 && env.Argv[0] == failSentinel {
		base.Duration = time.Since(start)
		base.ExitCode = 1
		base.Passed = false
		if len(env.Argv) > 1 {
			base.Output = env.Argv[1]
		}
		return base
	}

	var before map[string]string
	if len(task.Files) > 0 {
		before = guard.SnapshotDigests(task.ProjectDir, task.Files)
	}

	exitCode, output, execErr := s.execBatches(ctx, env, task)
	base.Duration = time.Since(start)
	base.ExitCode = exitCode
	base.Output = output

	if before != nil {
		mutated, mErr := guard.MutatedDuringRun(task.ProjectDir, before, task.Files)
		if mErr == nil && len(mutated) > 0 {
			base.FilesModified = true
		}
	}

	if execErr != nil && exitCode == 0 {
		base.ExitCode = 1
	}
	base.Passed = exitCode == 0 && !base.FilesModified

	if task.Hook.LogFile != "" {
		_ = writeLogFile(task.Hook.LogFile, base.Output)
	}

	return base
}

// execBatches partitions task.Files into argv-limit-safe batches (spec
// §4.9 step 3) and runs one subprocess per batch, unioning exit codes by
// max and concatenating output.
func (s *Scheduler) execBatches(ctx context.Context, env *envmanager.Result, task Task) (int, string, error) {
	argv := append([]string{}, env.Argv...)

	if !task.Hook.PassFilenames || len(task.Files) == 0 {
		code, out, err := s.execOne(ctx, argv, nil, env.ExtraEnv, task)
		return code, out, err
	}

	batches := batchFiles(task.Files, argvLimit())

	var outBuf bytes.Buffer
	maxCode := 0
	var firstErr error
	for _, batch := range batches {
		code, out, err := s.execOne(ctx, argv, batch, env.ExtraEnv, task)
		outBuf.WriteString(out)
		if code > maxCode {
			maxCode = code
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return maxCode, outBuf.String(), firstErr
}

func (s *Scheduler) execOne(ctx context.Context, argv, files, extraEnv []string, task Task) (int, string, error) {
	full := append(append([]string{}, argv...), files...)
	cmd := exec.CommandContext(ctx, full[0], full[1:]...) //nolint:gosec
	cmd.Dir = task.ProjectDir
	cmd.Env = resolveEnv(extraEnv, task)
	cmd.Stdin = nil

	out, err := cmd.CombinedOutput()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = 1
		}
	}
	return exitCode, string(out), err
}

// resolveEnv builds the child process environment: the host environment
// with the host git vars removed (gitx.ScrubForHooks), PRE_COMMIT=1 plus
// hook-type env (spec §4.9 step 4), then the plugin's extra vars,
// resolving the PATH_PREPEND sentinel into a single replacement PATH entry.
func resolveEnv(extraEnv []string, task Task) []string {
	env := gitx.ScrubForHooks(os.Environ())
	env = append(env, "PRE_COMMIT=1")
	for k, v := range task.TypeEnv {
		env = append(env, k+"="+v)
	}
	for k, v := range task.Hook.Env {
		env = append(env, k+"="+v)
	}

	for _, kv := range extraEnv {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if k == "PATH_PREPEND" {
			kept := env[:0]
			for _, e := range env {
				if !strings.HasPrefix(e, "PATH=") {
					kept = append(kept, e)
				}
			}
			env = append(kept, "PATH="+v+string(os.PathListSeparator)+os.Getenv("PATH"))
			continue
		}
		env = append(env, kv)
	}
	return env
}

func argvLimit() int {
	if runtime.GOOS == "windows" {
		return argvLimitWindows
	}
	return argvLimitUnix
}

// batchFiles partitions files into groups whose total length stays under
// limit characters, never splitting a single filename across batches.
func batchFiles(files []string, limit int) [][]string {
	var batches [][]string
	var current []string
	size := 0
	for _, f := range files {
		add := len(f) + 1
		if size+add > limit && len(current) > 0 {
			batches = append(batches, current)
			current = nil
			size = 0
		}
		current = append(current, f)
		size += add
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches
}

func writeLogFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644) //nolint:gosec
}
