package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/prek-dev/prek/internal/config"
	"github.com/prek-dev/prek/internal/errs"
	"github.com/prek-dev/prek/internal/fileselect"
	"github.com/prek-dev/prek/internal/guard"
	"github.com/prek-dev/prek/internal/hookmodel"
	"github.com/prek-dev/prek/internal/scheduler"
	"github.com/prek-dev/prek/internal/selector"
	"github.com/prek-dev/prek/internal/workspace"
)

// RunOptions is the `run` subcommand's full flag set (spec §6).
type RunOptions struct {
	Selectors []string
	Skip      []string
	PrekSkip  string // PREK_SKIP env var
	SkipEnv   string // SKIP env var

	AllFiles    bool
	Files       []string
	Directories []string
	FromRef     string
	ToRef       string
	LastCommit  bool

	HookStage string // e.g. "pre-commit", "pre-push", "commit-msg", "post-checkout"

	// CommitMsgFile is required when HookStage is commit-msg/prepare-commit-msg.
	CommitMsgFile string
	// PrePushRemoteName/PrePushRemoteURL feed PRE_COMMIT_REMOTE_NAME/URL
	// (spec §4.9 step 4) when HookStage is pre-push.
	PrePushRemoteName string
	PrePushRemoteURL  string

	Jobs              int
	FailFast          bool
	ShowDiffOnFailure bool
	DryRun            bool
}

// RunResult is everything the CLI layer needs to report and decide the
// process exit code.
type RunResult struct {
	Results  []scheduler.Result
	Warnings []string
	Diff     string // populated only when ShowDiffOnFailure and something failed/modified
}

// Run executes the full run pipeline: resolve hooks across every project
// in the workspace, filter by selectors and hook stage, compute file
// sets, guard the working tree, schedule, and collect results.
func Run(ctx context.Context, appCtx *Context, opts RunOptions) (*RunResult, error) {
	cwd, err := filepath.Abs(".")
	if err != nil {
		return nil, &errs.Discovery{Err: err}
	}

	plan, err := selector.BuildPlan(appCtx.Workspace.Root, cwd, opts.Selectors, opts.Skip, opts.PrekSkip, opts.SkipEnv)
	if err != nil {
		return nil, &errs.Discovery{Err: err}
	}

	hooks, repoPaths, projectOf, err := resolveHooks(ctx, appCtx, opts.HookStage)
	if err != nil {
		return nil, err
	}

	targets := make([]selector.Target, len(hooks))
	for i, h := range hooks {
		targets[i] = selector.Target{ProjectRelPath: h.ProjectRelPath, HookID: h.ID, Alias: h.Alias}
	}
	if plan.AllIncludesMissed(targets) {
		return nil, &errs.Discovery{Err: fmt.Errorf("no hooks found after filtering")}
	}

	var warnings []string
	warnings = append(warnings, plan.Warnings(targets)...)
	for _, w := range appCtx.Workspace.Warnings {
		warnings = append(warnings, w.String())
	}

	var selected []*hookmodel.ResolvedHook
	for i, h := range hooks {
		if plan.Selects(targets[i]) {
			selected = append(selected, h)
		}
	}

	runWideGitRel, fsWarnings, err := RunWideFiles(appCtx, opts)
	if err != nil {
		return nil, err
	}
	for _, w := range fsWarnings {
		warnings = append(warnings, w.Message)
	}
	runWide, err := rebaseToWorkspace(appCtx.Repo.Root, appCtx.Workspace.Root, runWideGitRel)
	if err != nil {
		return nil, err
	}

	scopes, err := projectScopes(appCtx.Workspace.Projects)
	if err != nil {
		return nil, err
	}

	g := guard.New(appCtx.Repo, appCtx.Store)
	release, err := g.Acquire()
	if err != nil {
		return nil, err
	}
	defer func() { _ = release() }()
	guard.ContextDoneRelease(ctx, release)

	tasks := make([]scheduler.Task, 0, len(selected))
	for _, h := range selected {
		p := projectOf[h]
		scope := scopeFor(scopes, h.ProjectRelPath)

		files, err := fileselect.HookFiles(appCtx.Workspace.Root, runWide, h, scope, scopes)
		if err != nil {
			return nil, err
		}

		tasks = append(tasks, scheduler.Task{
			Hook:             h,
			Files:            files,
			RepoCheckoutPath: repoPaths[h],
			ProjectDir:       p.AbsPath,
			ProjectName:      projectName(p),
			TypeEnv:          typeEnv(opts),
		})
	}

	if opts.DryRun {
		var results []scheduler.Result
		for _, t := range tasks {
			results = append(results, scheduler.Result{
				HookID:      t.Hook.ID,
				Name:        t.Hook.Name,
				ProjectName: t.ProjectName,
				Priority:    t.Hook.Priority,
				Ordinal:     t.Hook.Ordinal,
				Skipped:     true,
				Passed:      true,
			})
		}
		return &RunResult{Results: results, Warnings: warnings}, nil
	}

	sched := scheduler.New(appCtx.Manager)
	results, err := sched.Run(ctx, tasks, scheduler.Options{Concurrency: opts.Jobs, FailFast: opts.FailFast})
	if err != nil {
		return nil, err
	}

	var diff string
	if opts.ShowDiffOnFailure && anyFailedOrModified(results) {
		diff, _ = g.DiffWorktree()
	}

	return &RunResult{Results: results, Warnings: warnings, Diff: diff}, nil
}

func anyFailedOrModified(results []scheduler.Result) bool {
	for _, r := range results {
		if !r.Skipped && (!r.Passed || r.FilesModified) {
			return true
		}
	}
	return false
}

// RunWideFiles computes the run-wide file set (spec §4.7 steps 1-8),
// handling the commit-msg and always-run stage special cases before
// falling back to fileselect.RunWideFiles's git-state-driven priority
// list. Returned paths are relative to the git root, matching
// gitx.Repository's own convention.
func RunWideFiles(appCtx *Context, opts RunOptions) ([]string, []fileselect.Warning, error) {
	switch opts.HookStage {
	case "commit-msg", "prepare-commit-msg":
		if opts.CommitMsgFile == "" {
			return nil, nil, &errs.Configuration{Err: fmt.Errorf("--commit-msg-filename is required for stage %q", opts.HookStage)}
		}
		return []string{opts.CommitMsgFile}, nil, nil
	case "post-checkout", "post-rewrite":
		return nil, nil, nil
	}

	fsOpts := fileselect.Options{
		Files:       opts.Files,
		LastCommit:  opts.LastCommit,
		FromRef:     opts.FromRef,
		ToRef:       opts.ToRef,
		AllFiles:    opts.AllFiles,
		Directories: opts.Directories,
	}
	return fileselect.RunWideFiles(appCtx.Repo, fsOpts)
}

// rebaseToWorkspace rewrites git-root-relative paths to be relative to
// the workspace root instead: the two can differ when the workspace root
// is a strict subdirectory of the git root (a monorepo nested inside a
// larger git checkout). Files outside the workspace root are dropped —
// they belong to no project this run can see.
func rebaseToWorkspace(gitRoot, workspaceRoot string, gitRelFiles []string) ([]string, error) {
	offset, err := filepath.Rel(gitRoot, workspaceRoot)
	if err != nil {
		return nil, &errs.Discovery{Err: err}
	}
	offset = filepath.ToSlash(offset)
	if offset == "." || offset == "" {
		return gitRelFiles, nil
	}

	prefix := offset + "/"
	out := make([]string, 0, len(gitRelFiles))
	for _, f := range gitRelFiles {
		if f == offset {
			continue
		}
		if rest, ok := strings.CutPrefix(f, prefix); ok {
			out = append(out, rest)
		}
	}
	return out, nil
}

// resolveHooks builds every project's resolved hooks in workspace order
// (deeper first, then root — spec §4.9's scheduler input ordering),
// cloning remote hook repos as needed and recording each resolved hook's
// owning project and repo-checkout path for the scheduler.
func resolveHooks(ctx context.Context, appCtx *Context, stage string) (
	[]*hookmodel.ResolvedHook,
	map[*hookmodel.ResolvedHook]string,
	map[*hookmodel.ResolvedHook]*workspace.Project,
	error,
) {
	var hooks []*hookmodel.ResolvedHook
	repoPaths := make(map[*hookmodel.ResolvedHook]string)
	projectOf := make(map[*hookmodel.ResolvedHook]*workspace.Project)

	// a remote repo's clone is shared across every project that
	// references the same (url, rev): cache it for this run.
	cloneCache := make(map[string]string)

	for _, p := range appCtx.Workspace.Projects {
		defaults := hookmodel.ProjectDefaults{
			DefaultLanguageVersion: p.Config.DefaultLanguageVersion,
			DefaultStages:          p.Config.DefaultStages,
			Files:                  p.Config.Files,
			Exclude:                p.Config.Exclude,
			FailFast:               p.Config.FailFast,
			Orphan:                 p.Config.Orphan,
		}

		ordinal := 0
		for _, repoEntry := range p.Config.Repos {
			repoRef := hookmodel.Repo{
				URL:   repoEntry.RepoURL,
				Rev:   repoEntry.Rev,
				Local: repoEntry.Kind() == config.KindLocal,
				Meta:  repoEntry.Kind() == config.KindMeta,
			}

			var manifestHooks map[string]config.Hook
			var checkoutPath string

			if repoEntry.Kind() == config.KindRemote {
				key := repoEntry.RepoURL + "@" + repoEntry.Rev
				path, ok := cloneCache[key]
				if !ok {
					var deps []string
					for _, h := range repoEntry.Hooks {
						deps = append(deps, h.AdditionalDeps...)
					}
					cloned, err := appCtx.Store.CloneOrReuse(ctx, repoEntry.RepoURL, repoEntry.Rev, deps)
					if err != nil {
						return nil, nil, nil, err
					}
					cloneCache[key] = cloned
					path = cloned
				}
				checkoutPath = path

				manifestList, err := config.LoadManifestHooks(filepath.Join(path, config.ManifestFileName))
				if err != nil {
					return nil, nil, nil, err
				}
				manifestHooks = make(map[string]config.Hook, len(manifestList))
				for _, mh := range manifestList {
					manifestHooks[mh.ID] = mh
				}
			}

			for _, override := range repoEntry.Hooks {
				var manifest config.Hook
				if repoEntry.Kind() == config.KindRemote {
					mh, ok := manifestHooks[override.ID]
					if !ok {
						return nil, nil, nil, &errs.HookNotFound{ID: override.ID, Repo: repoEntry.RepoURL}
					}
					manifest = mh
				} else {
					manifest = override
				}

				rh, err := hookmodel.Build(manifest, override, defaults, p.RelPath, repoRef, ordinal)
				if err != nil {
					return nil, nil, nil, err
				}
				ordinal++

				if stage != "" && !matchesStage(rh, stage) {
					continue
				}

				hooks = append(hooks, rh)
				projectOf[rh] = p
				if checkoutPath != "" {
					repoPaths[rh] = checkoutPath
				}
			}
		}
	}

	return hooks, repoPaths, projectOf, nil
}

// matchesStage reports whether hook runs at stage; an empty Stages list
// means "every stage" (a hook with no stages configured at all is
// unrestricted, spec §3).
func matchesStage(hook *hookmodel.ResolvedHook, stage string) bool {
	if len(hook.Stages) == 0 {
		return true
	}
	for _, s := range hook.Stages {
		if s == stage {
			return true
		}
	}
	return false
}

func projectScopes(projects []*workspace.Project) ([]fileselect.ProjectScope, error) {
	scopes := make([]fileselect.ProjectScope, 0, len(projects))
	for _, p := range projects {
		filesRE, err := compileRegex(p.Config.Files)
		if err != nil {
			return nil, &errs.Configuration{Path: p.ConfigPath, Err: fmt.Errorf("invalid files regex: %w", err)}
		}
		excludeRE, err := compileRegex(p.Config.Exclude)
		if err != nil {
			return nil, &errs.Configuration{Path: p.ConfigPath, Err: fmt.Errorf("invalid exclude regex: %w", err)}
		}
		scopes = append(scopes, fileselect.ProjectScope{
			RelPath:      p.RelPath,
			Orphan:       p.Config.Orphan,
			FilesRegex:   filesRE,
			ExcludeRegex: excludeRE,
		})
	}
	return scopes, nil
}

func compileRegex(pattern string) (*regexp2.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	return regexp2.Compile(pattern, regexp2.None)
}

func scopeFor(scopes []fileselect.ProjectScope, relPath string) fileselect.ProjectScope {
	for _, s := range scopes {
		if s.RelPath == relPath {
			return s
		}
	}
	return fileselect.ProjectScope{RelPath: relPath}
}

func projectName(p *workspace.Project) string {
	if p == nil || p.IsRoot() {
		return ""
	}
	return p.RelPath
}

func typeEnv(opts RunOptions) map[string]string {
	if opts.HookStage != "pre-push" {
		return nil
	}
	env := map[string]string{}
	if opts.PrePushRemoteName != "" {
		env["PRE_COMMIT_REMOTE_NAME"] = opts.PrePushRemoteName
	}
	if opts.PrePushRemoteURL != "" {
		env["PRE_COMMIT_REMOTE_URL"] = opts.PrePushRemoteURL
	}
	return env
}
