package config

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/prek-dev/prek/internal/errs"
)

// ToolVersion is the running binary's own version, compared against
// minimum_prek_version.
var ToolVersion = "0.1.0"

// knownFileTypeTags is the closed set of file-type tags spec §3/§4.3
// recognizes (extension classes, mime classes, and a few structural
// tags); used to validate `types`/`types_or`/`exclude_types`.
var knownFileTypeTags = map[string]struct{}{
	"file": {}, "directory": {}, "symlink": {}, "socket": {}, "executable": {},
	"text": {}, "binary": {},
	"python": {}, "pyi": {}, "javascript": {}, "jsx": {}, "typescript": {}, "tsx": {},
	"go": {}, "rust": {}, "ruby": {}, "java": {}, "c": {}, "c++": {}, "c#": {},
	"shell": {}, "bash": {}, "zsh": {}, "yaml": {}, "json": {}, "toml": {}, "xml": {},
	"markdown": {}, "html": {}, "css": {}, "dockerfile": {}, "sql": {}, "proto": {},
}

// metaHookIDs is the closed set of built-in "meta" hook ids (spec §4.3).
var metaHookIDs = map[string]struct{}{
	"check-hooks-apply":     {},
	"check-useless-excludes": {},
	"identity":              {},
}

// Validate applies the rules in spec §4.3 to a fully-read config. Meta hook
// ids are checked against the fixed meta set. builtinHookIDs is consulted
// only for local hooks: when it is non-empty, a local hook may omit entry.
// Builtin repos are not a separate kind here, and no hook id is checked
// against builtinHookIDs.
func Validate(cfg *ProjectConfig, builtinHookIDs map[string]struct{}) error {
	if cfg.MinimumPrekVersion != "" {
		required, err := semver.NewVersion(cfg.MinimumPrekVersion)
		if err == nil {
			running, runErr := semver.NewVersion(ToolVersion)
			if runErr == nil && running.LessThan(required) {
				return &errs.Configuration{Err: fmt.Errorf(
					"config requires prek >= %s, running %s", cfg.MinimumPrekVersion, ToolVersion)}
			}
		}
	}

	for i, repo := range cfg.Repos {
		if err := validateRepo(i, repo, builtinHookIDs); err != nil {
			return err
		}
	}
	return nil
}

func validateRepo(i int, repo Repo, builtinHookIDs map[string]struct{}) error {
	kind := repo.Kind()

	if kind == KindRemote && repo.Rev == "" {
		return &errs.Configuration{Err: fmt.Errorf("repo %d (%s): rev is required for a remote repo", i, repo.RepoURL)}
	}
	if kind != KindRemote && repo.Rev != "" {
		return &errs.Configuration{Err: fmt.Errorf("repo %d (%s): rev is forbidden for %s repos", i, repo.RepoURL, repo.RepoURL)}
	}

	for j, hook := range repo.Hooks {
		if hook.ID == "" {
			return &errs.Configuration{Err: fmt.Errorf("repo %d, hook %d: id is required", i, j)}
		}

		if kind == KindMeta {
			if _, ok := metaHookIDs[hook.ID]; !ok {
				return &errs.Configuration{Err: fmt.Errorf("repo %d: %q is not a known meta hook id", i, hook.ID)}
			}
		}
		if kind == KindLocal && hook.Entry == "" && len(builtinHookIDs) == 0 {
			return &errs.Configuration{Err: fmt.Errorf("repo %d, hook %q: entry is required for local hooks", i, hook.ID)}
		}
		if (kind == KindMeta) && hook.Language != "" && hook.Language != "system" {
			return &errs.Configuration{Err: fmt.Errorf("repo %d, hook %q: language must be \"system\" for meta/builtin hooks", i, hook.ID)}
		}
		if kind == KindMeta && hook.Entry != "" {
			return &errs.Configuration{Err: fmt.Errorf("repo %d, hook %q: entry is forbidden for meta hooks", i, hook.ID)}
		}

		if err := validateTypeTags(i, hook); err != nil {
			return err
		}
	}
	return nil
}

func validateTypeTags(repoIdx int, hook Hook) error {
	all := append(append(append([]string{}, hook.Types...), hook.TypesOr...), hook.ExcludeTypes...)
	for _, t := range all {
		if _, ok := knownFileTypeTags[t]; !ok {
			return &errs.Configuration{Err: fmt.Errorf("repo %d, hook %q: unknown file type tag %q", repoIdx, hook.ID, t)}
		}
	}
	return nil
}
