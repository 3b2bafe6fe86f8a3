// Package errs defines the error kinds from the tool's error-handling
// design and the exit-code mapping that follows from them.
package errs

import "fmt"

// Exit codes from the CLI surface.
const (
	ExitSuccess     = 0
	ExitHooksFailed = 1
	ExitUsageError  = 2
	ExitInterrupted = 130
)

// Configuration wraps a bad-config error: malformed YAML/TOML, unknown
// tag, a minimum-version requirement the binary doesn't satisfy.
type Configuration struct {
	Path string
	Err  error
}

func (e *Configuration) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Path, e.Err)
	}
	return fmt.Sprintf("configuration error: %s", e.Err)
}

func (e *Configuration) Unwrap() error { return e.Err }

// Discovery wraps a workspace-discovery failure: no config found, or a
// selector path escaping the workspace root.
type Discovery struct {
	Err error
}

func (e *Discovery) Error() string { return fmt.Sprintf("discovery error: %s", e.Err) }
func (e *Discovery) Unwrap() error { return e.Err }

// Git wraps a git invocation failure; Stderr carries the verbatim text
// the subprocess printed, Summary names the invocation for context.
type Git struct {
	Summary string
	Stderr  string
	Err     error
}

func (e *Git) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("git %s: %s\n%s", e.Summary, e.Err, e.Stderr)
	}
	return fmt.Sprintf("git %s: %s", e.Summary, e.Err)
}

func (e *Git) Unwrap() error { return e.Err }

// Store wraps a clone or lock failure in the shared cache.
type Store struct {
	Err error
}

func (e *Store) Error() string { return fmt.Sprintf("store error: %s", e.Err) }
func (e *Store) Unwrap() error { return e.Err }

// Toolchain wraps a failure to resolve or download a language toolchain.
type Toolchain struct {
	Language string
	Err      error
}

func (e *Toolchain) Error() string {
	return fmt.Sprintf("toolchain error (%s): %s", e.Language, e.Err)
}

func (e *Toolchain) Unwrap() error { return e.Err }

// DependencyInstall wraps a failure of a language installer (pip, npm, …).
type DependencyInstall struct {
	Language string
	Err      error
}

func (e *DependencyInstall) Error() string {
	return fmt.Sprintf("dependency install failed (%s): %s", e.Language, e.Err)
}

func (e *DependencyInstall) Unwrap() error { return e.Err }

// HookNotFound reports a hook id referenced in config but absent from its
// manifest.
type HookNotFound struct {
	ID   string
	Repo string
}

func (e *HookNotFound) Error() string {
	return fmt.Sprintf("hook %q not found in repo %s", e.ID, e.Repo)
}

// HookExec reports a hook process that exited non-zero. It is surfaced by
// the reporter, never used to abort a run by itself.
type HookExec struct {
	HookID   string
	ExitCode int
}

func (e *HookExec) Error() string {
	return fmt.Sprintf("hook %q failed with exit code %d", e.HookID, e.ExitCode)
}

// ExitCode maps an error kind to the process exit code table in spec §6.
// Unrecognized errors default to ExitUsageError, matching the "abort with
// exit 2" fallback for fatal error categories.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	switch err.(type) {
	case *Configuration, *Discovery, *Git, *Store, *Toolchain, *DependencyInstall, *HookNotFound:
		return ExitUsageError
	default:
		return ExitUsageError
	}
}
