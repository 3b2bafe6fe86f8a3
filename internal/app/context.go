// Package app wires the shared components (C1-C11) into the single
// `run` operation the CLI surface exposes, grounded on the teacher's
// internal/commands.BaseCommand shared-context pattern — one struct
// built once at startup and threaded through every subcommand.
package app

import (
	"github.com/sirupsen/logrus"

	"github.com/prek-dev/prek/internal/config"
	"github.com/prek-dev/prek/internal/envmanager"
	"github.com/prek-dev/prek/internal/gitx"
	"github.com/prek-dev/prek/internal/logging"
	"github.com/prek-dev/prek/internal/store"
	"github.com/prek-dev/prek/internal/workspace"
)

// Context is the shared state every run needs: the opened repository,
// the process-wide store, the discovered workspace, and a logger.
type Context struct {
	Repo      *gitx.Repository
	Store     *store.Store
	Workspace *workspace.Workspace
	Manager   *envmanager.Manager
	Logger    *logrus.Logger
}

// New opens the repository rooted at cwd, resolves the process-wide
// store directory, discovers the workspace, and builds the shared
// environment manager (spec §4.1's startup sequence).
func New(cwd string, verbose bool, refresh bool) (*Context, error) {
	repo, err := gitx.Open(cwd)
	if err != nil {
		return nil, err
	}

	storeDir, err := store.Default()
	if err != nil {
		return nil, err
	}
	st, err := store.New(storeDir)
	if err != nil {
		return nil, err
	}

	ws, err := discoverWorkspace(repo, st, cwd, refresh)
	if err != nil {
		return nil, err
	}

	return &Context{
		Repo:      repo,
		Store:     st,
		Workspace: ws,
		Manager:   envmanager.NewManager(st),
		Logger:    logging.NewFromEnv(verbose),
	}, nil
}

// discoverWorkspace loads the cached discovery unless refresh is forced
// or the cache is stale, falling back to a fresh workspace.Discover
// (spec §4.4's caching note, --refresh flag from spec §6).
func discoverWorkspace(repo *gitx.Repository, st *store.Store, cwd string, refresh bool) (*workspace.Workspace, error) {
	root, err := workspace.FindWorkspaceRoot(cwd, repo.Root)
	if err != nil {
		return nil, err
	}

	if !refresh {
		if ws, ok := workspace.Load(st.CacheDir(), root); ok {
			if err := hydrateConfigs(ws); err != nil {
				return nil, err
			}
			return ws, nil
		}
	}

	submodules, err := repo.SubmodulePaths()
	if err != nil {
		return nil, err
	}

	ws, err := workspace.Discover(root, submodules)
	if err != nil {
		return nil, err
	}

	_ = workspace.Save(st.CacheDir(), ws)
	return ws, nil
}

// hydrateConfigs parses each project's config file: workspace.Load only
// proves the cached config-file set is still fresh by stat comparison, it
// doesn't carry the parsed contents (Config is nil on a cache hit).
func hydrateConfigs(ws *workspace.Workspace) error {
	for _, p := range ws.Projects {
		if p.Config != nil {
			continue
		}
		cfg, warnings, err := config.Load(p.ConfigPath)
		if err != nil {
			return err
		}
		p.Config = cfg
		ws.Warnings = append(ws.Warnings, warnings...)
	}
	return nil
}

// DiscoverConfigPath returns explicit and whether it is non-empty. Nothing
// in the run path calls it: project discovery is always used, and the
// CLI's --config value does not override it.
func DiscoverConfigPath(explicit string) (string, bool) {
	if explicit == "" {
		return "", false
	}
	return explicit, true
}
