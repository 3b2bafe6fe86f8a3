// Package languages implements one Plugin per hook language, grounded on
// the teacher's pkg/repository/languages/*.go and pkg/language.Base, but
// narrowed to the install/resolve/health cycle the envmanager needs.
package languages

import "context"

// InstallRequest carries everything a plugin needs to build one
// environment. Toolchain is already resolved to an absolute path (or
// empty when the language has none) by the time Install is called.
type InstallRequest struct {
	EnvPath        string
	RepoPath       string
	LanguageVer    string
	Toolchain      string
	AdditionalDeps []string
}

// VersionRequestKind mirrors hookmodel.LanguageRequestKind, duplicated
// here so this package stays free of a dependency on hookmodel.
type VersionRequestKind int

const (
	KindDefault VersionRequestKind = iota
	KindSystem
	KindSpecific
	KindRange
)

// VersionRequest is the subset of hookmodel.LanguageRequest a plugin
// needs to resolve a toolchain.
type VersionRequest struct {
	Kind       VersionRequestKind
	Constraint string
}

// Plugin implements one hook language's environment lifecycle.
type Plugin interface {
	// Name is the language identifier as it appears in hook manifests.
	Name() string

	// NeedsEnvironment reports whether this language installs anything at
	// all (spec §4.6's no-environment closed set returns false here).
	NeedsEnvironment() bool

	// SupportsDependencies reports whether additional_dependencies is
	// meaningful for this language (spec §3 invariant).
	SupportsDependencies() bool

	// SupportsVersion reports whether language_version selects between
	// installable toolchains for this language (spec §3 invariant).
	SupportsVersion() bool

	// ResolveToolchain finds (or downloads, for installable languages) the
	// interpreter/runtime satisfying req, returning an absolute path or
	// identifier to record in the install marker. For SupportsVersion
	// languages it must verify a KindSpecific/KindRange req against the
	// candidate's actual reported version and fail when none match.
	ResolveToolchain(ctx context.Context, req VersionRequest) (string, error)

	// ToolchainVersion reports the version string the resolved toolchain
	// actually identifies as (e.g. via `--version`), for recording in the
	// install marker so the reuse predicate can compare like-for-like
	// (spec §3). Returns "" when the language doesn't expose one.
	ToolchainVersion(ctx context.Context, toolchain string) (string, error)

	// Install builds the environment at req.EnvPath. Called only after
	// the reuse search has already missed; Install must not assume
	// req.EnvPath exists yet.
	Install(ctx context.Context, req InstallRequest) error

	// ResolveCommand turns a hook's entry + args into the argv to exec and
	// any extra environment variables the environment needs (spec §4.3's
	// per-language command resolution).
	ResolveCommand(envPath, entry string, args []string) (argv []string, extraEnv []string, err error)

	// CheckHealth verifies an existing environment is still usable,
	// invoked before trusting a reuse-search hit (spec §4.2).
	CheckHealth(ctx context.Context, envPath string) error
}
