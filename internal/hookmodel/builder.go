package hookmodel

import (
	"fmt"

	"dario.cat/mergo"
	"github.com/dlclark/regexp2"

	"github.com/prek-dev/prek/internal/config"
	"github.com/prek-dev/prek/internal/errs"
)

// ProjectDefaults is the subset of a project's merged defaults a hook
// build needs (spec §3 "Project" attributes).
type ProjectDefaults struct {
	DefaultLanguageVersion map[string]string
	DefaultStages          []string
	Files                  string
	Exclude                string
	FailFast               bool
	Orphan                 bool
}

// Build merges manifest (the hook definition from its source repo, or
// itself for local/meta/builtin hooks) with override (the per-project
// config entry for the same id) and defaults, per spec §4.5.
func Build(
	manifest config.Hook,
	override config.Hook,
	defaults ProjectDefaults,
	projectRelPath string,
	repo Repo,
	ordinal int,
) (*ResolvedHook, error) {
	merged := manifest
	// mergo.WithOverride: non-zero fields on override replace manifest's.
	if err := mergo.Merge(&merged, override, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("merging hook override for %q: %w", manifest.ID, err)
	}

	fillDefaults(&merged, defaults)

	if err := validateMerged(merged); err != nil {
		return nil, err
	}

	langReq := ParseLanguageRequest(merged.LanguageVersion)

	priority := ordinal
	if merged.Priority != nil {
		priority = *merged.Priority
	}

	filesRE, err := compileRegex(merged.Files)
	if err != nil {
		return nil, &errs.Configuration{Err: fmt.Errorf("hook %q: invalid files regex: %w", merged.ID, err)}
	}
	excludeRE, err := compileRegex(merged.Exclude)
	if err != nil {
		return nil, &errs.Configuration{Err: fmt.Errorf("hook %q: invalid exclude regex: %w", merged.ID, err)}
	}

	passFilenames := true
	if merged.PassFilenames != nil {
		passFilenames = *merged.PassFilenames
	}

	rh := &ResolvedHook{
		ID:              merged.ID,
		Alias:           merged.Alias,
		Name:            merged.Name,
		Entry:           merged.Entry,
		Language:        merged.Language,
		FilesPattern:    merged.Files,
		ExcludePattern:  merged.Exclude,
		LogFile:         merged.LogFile,
		LanguageVersion: merged.LanguageVersion,
		ProjectRelPath:  projectRelPath,
		Repo:            repo,
		Types:           orDefault(merged.Types, []string{"file"}),
		TypesOr:         merged.TypesOr,
		ExcludeTypes:    merged.ExcludeTypes,
		AdditionalDeps:  merged.AdditionalDeps,
		Args:            merged.Args,
		Stages:          orDefault(merged.Stages, defaults.DefaultStages),
		Env:             merged.Env,
		LangRequest:     langReq,
		Priority:        priority,
		Ordinal:         ordinal,
		AlwaysRun:       merged.AlwaysRun,
		PassFilenames:   passFilenames,
		RequireSerial:   merged.RequireSerial,
		Verbose:         merged.Verbose,
		FailFast:        defaults.FailFast,
		Orphan:          defaults.Orphan,
		FilesRegex:      filesRE,
		ExcludeRegex:    excludeRE,
	}

	if rh.Name == "" {
		rh.Name = rh.ID
	}
	if rh.LanguageVersion == "" {
		if v, ok := defaults.DefaultLanguageVersion[rh.Language]; ok {
			rh.LanguageVersion = v
			rh.LangRequest = ParseLanguageRequest(v)
		} else {
			rh.LanguageVersion = "default"
		}
	}

	return rh, nil
}

func fillDefaults(h *config.Hook, defaults ProjectDefaults) {
	if len(h.Stages) == 0 {
		h.Stages = defaults.DefaultStages
	}
}

func validateMerged(h config.Hook) error {
	if len(h.AdditionalDeps) > 0 && !SupportsAdditionalDependencies(h.Language) {
		return &errs.Configuration{Err: fmt.Errorf(
			"hook %q: additional_dependencies is not supported for language %q", h.ID, h.Language)}
	}
	if h.LanguageVersion != "" && h.LanguageVersion != "default" && !SupportsLanguageVersion(h.Language) {
		return &errs.Configuration{Err: fmt.Errorf(
			"hook %q: language_version is not supported for language %q", h.ID, h.Language)}
	}
	return nil
}

func orDefault(v, def []string) []string {
	if len(v) == 0 {
		return def
	}
	return v
}

func compileRegex(pattern string) (*regexp2.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	return regexp2.Compile(pattern, regexp2.None)
}
