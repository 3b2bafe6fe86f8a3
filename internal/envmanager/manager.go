package envmanager

import (
	"context"
	"fmt"

	"github.com/prek-dev/prek/internal/envmanager/languages"
	"github.com/prek-dev/prek/internal/errs"
	"github.com/prek-dev/prek/internal/hookmodel"
	"github.com/prek-dev/prek/internal/store"
)

// Manager centralizes environment reuse-search, toolchain resolution,
// and install for resolved hooks, grounded on the teacher's
// pkg/environment.Manager but built on this tool's content-fingerprint
// store instead of the teacher's SQLite-backed state manager.
type Manager struct {
	store    *store.Store
	registry *Registry
}

func NewManager(s *store.Store) *Manager {
	return &Manager{store: s, registry: NewRegistry()}
}

// Result is what a hook needs to run: the environment path (possibly
// empty for no-env languages) and the command-resolution outputs.
type Result struct {
	EnvPath  string
	Argv     []string
	ExtraEnv []string
}

// Ensure resolves hook's environment: reuse an existing install that
// satisfies the reuse predicate (spec §3), or build a new one, then
// resolves hook.Entry/Args into an executable command (spec §4.3).
// repoCheckoutPath is the store's on-disk clone of hook.Repo (empty for
// local/meta hooks, which run straight out of the project worktree).
func (m *Manager) Ensure(ctx context.Context, hook *hookmodel.ResolvedHook, repoCheckoutPath string) (*Result, error) {
	plugin, ok := m.registry.Get(hook.Language)
	if !ok {
		return nil, &errs.Toolchain{Language: hook.Language, Err: fmt.Errorf("unsupported language")}
	}

	if !plugin.NeedsEnvironment() {
		argv, env, err := plugin.ResolveCommand("", hook.Entry, hook.Args)
		if err != nil {
			return nil, &errs.Toolchain{Language: hook.Language, Err: err}
		}
		return &Result{Argv: argv, ExtraEnv: env}, nil
	}

	envPath, err := m.ensureInstalled(ctx, plugin, hook, repoCheckoutPath)
	if err != nil {
		return nil, err
	}

	argv, env, err := plugin.ResolveCommand(envPath, hook.Entry, hook.Args)
	if err != nil {
		return nil, &errs.Toolchain{Language: hook.Language, Err: err}
	}
	return &Result{EnvPath: envPath, Argv: argv, ExtraEnv: env}, nil
}

func (m *Manager) ensureInstalled(ctx context.Context, plugin languages.Plugin, hook *hookmodel.ResolvedHook, repoCheckoutPath string) (string, error) {
	envKeyDeps := hook.EnvKeyDependencies()

	if rec, path, ok := m.store.FindReusableEnv(hook.Language, envKeyDeps, hook.LangRequest); ok {
		if err := plugin.CheckHealth(ctx, path); err == nil {
			return path, nil
		}
		// Unhealthy reuse candidate: remove it and fall through to a
		// fresh install (spec §4.2 "an unhealthy environment is discarded
		// and rebuilt, never silently reused").
		_ = m.store.DeleteEnvDir(path)
		_ = rec
	}

	var result string
	lockKey := hook.Language + "-" + store.Fingerprint("", "", envKeyDeps)
	err := m.store.WithEnvLock(lockKey, func() error {
		// Re-check inside the lock: a concurrent run may have finished
		// installing the same environment while we waited.
		if rec, path, ok := m.store.FindReusableEnv(hook.Language, envKeyDeps, hook.LangRequest); ok {
			if err := plugin.CheckHealth(ctx, path); err == nil {
				result = path
				return nil
			}
			_ = m.store.DeleteEnvDir(path)
			_ = rec
		}

		toolchain, err := plugin.ResolveToolchain(ctx, languageVersionRequest(hook.LangRequest))
		if err != nil {
			return &errs.Toolchain{Language: hook.Language, Err: err}
		}

		scratch, final, err := m.store.AllocateEnvDir(hook.Language)
		if err != nil {
			return err
		}

		installErr := plugin.Install(ctx, languages.InstallRequest{
			EnvPath:        scratch,
			RepoPath:       repoCheckoutPath,
			LanguageVer:    hook.LanguageVersion,
			Toolchain:      toolchain,
			AdditionalDeps: hook.AdditionalDeps,
		})
		if installErr != nil {
			_ = m.store.DeleteEnvDir(scratch)
			return &errs.DependencyInstall{Language: hook.Language, Err: installErr}
		}

		rec := store.InstallRecord{
			Language:        hook.Language,
			LanguageVersion: installedVersionOf(ctx, plugin, toolchain),
			EnvPath:         final,
			Toolchain:       toolchain,
			Dependencies:    envKeyDeps,
		}
		if err := m.store.FinalizeEnvDir(scratch, final, rec); err != nil {
			_ = m.store.DeleteEnvDir(scratch)
			return err
		}
		result = final
		return nil
	})
	if err != nil {
		return "", err
	}
	return result, nil
}

// installedVersionOf records what language_version the reuse predicate
// (spec §3) compares against in the future: the toolchain's own reported
// version (e.g. "3.11.4"), never the hook's raw request text ("3.11" or
// ">=3.10") — a LanguageRange request can never parse as a concrete
// semver.Version, so recording the request itself would make
// LanguageRequest.Matches always fail at reuse time. Falls back to the
// toolchain path/identifier when the plugin doesn't expose a version
// (languages.Plugin.ToolchainVersion returning "" or erroring).
func installedVersionOf(ctx context.Context, plugin languages.Plugin, toolchain string) string {
	if v, err := plugin.ToolchainVersion(ctx, toolchain); err == nil && v != "" {
		return v
	}
	return toolchain
}

func languageVersionRequest(r hookmodel.LanguageRequest) languages.VersionRequest {
	return languages.VersionRequest{Kind: languages.VersionRequestKind(r.Kind), Constraint: r.Constraint}
}
