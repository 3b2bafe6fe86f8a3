package languages

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// base provides the shared no-environment/pass-through behavior the
// teacher's GenericLanguage gives system/script/fail: no dependency
// support, no installable version, and a directory-exists health check.
type base struct {
	name       string
	executable string // empty when the language has no runtime to probe
}

func (b base) Name() string               { return b.name }
func (b base) SupportsDependencies() bool { return false }
func (b base) SupportsVersion() bool      { return false }

// ResolveToolchain finds the single b.executable on PATH. For a
// KindSpecific/KindRange request (only possible when SupportsVersion()
// is true for this language — see hookmodel.SupportsLanguageVersion) it
// also verifies the executable's own reported version against the
// constraint, per spec §4.6, and fails rather than silently running
// whatever happens to be installed.
func (b base) ResolveToolchain(ctx context.Context, req VersionRequest) (string, error) {
	if b.executable == "" {
		return "", nil
	}
	path, err := exec.LookPath(b.executable)
	if err != nil {
		return "", fmt.Errorf("%s runtime not found in PATH: %w", b.executable, err)
	}
	if req.Kind != KindSpecific && req.Kind != KindRange {
		return path, nil
	}
	version, err := probeVersion(ctx, path, "--version")
	if err != nil {
		return "", fmt.Errorf("%s: %w", b.executable, err)
	}
	if !versionSatisfies(req, version) {
		return "", fmt.Errorf("%s %s does not satisfy language_version %q", b.executable, version, req.Constraint)
	}
	return path, nil
}

// ToolchainVersion reports b.executable's own "--version" output; "" for
// languages with no runtime to probe.
func (b base) ToolchainVersion(ctx context.Context, toolchain string) (string, error) {
	if b.executable == "" {
		return "", nil
	}
	return probeVersion(ctx, toolchain, "--version")
}

func (b base) CheckHealth(_ context.Context, envPath string) error {
	if _, err := os.Stat(envPath); err != nil {
		return fmt.Errorf("%s environment directory missing: %w", b.name, err)
	}
	if b.executable == "" {
		return nil
	}
	if _, err := exec.LookPath(b.executable); err != nil {
		return fmt.Errorf("%s runtime no longer available: %w", b.executable, err)
	}
	return nil
}

// resolveOnPath is the command resolution shared by languages whose
// entry is a plain executable the shell resolves itself: no interpreter
// prefix, no environment PATH prepend (spec §4.3, "system"/"script"/"fail").
func resolveOnPath(entry string, args []string) ([]string, []string, error) {
	return append([]string{entry}, args...), nil, nil
}

// mkdirEnv creates an empty environment directory, the minimal
// "environment" the teacher's GenericLanguage creates for consistency
// even when nothing needs installing.
func mkdirEnv(path string) error {
	if err := os.MkdirAll(path, 0o750); err != nil {
		return fmt.Errorf("creating environment directory %s: %w", path, err)
	}
	return nil
}

// binPath is the environment's bin directory (envPath/bin on every
// platform), used by plugins
// that prepend it to PATH when resolving commands.
func binPath(envPath string) string {
	return filepath.Join(envPath, "bin")
}

// versionPattern extracts the first dotted version number from a
// `--version`-style command's output, e.g. "Python 3.10.4" -> "3.10.4"
// or "v18.19.0" -> "18.19.0".
var versionPattern = regexp.MustCompile(`\d+\.\d+(\.\d+)?`)

// probeVersion runs "<path> <args...>" and extracts a semver-ish version
// number from its combined output, used by version-capable plugins to
// verify a toolchain candidate actually satisfies a language_version
// request (spec §4.6) instead of trusting whatever happens to be on PATH.
func probeVersion(ctx context.Context, path string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, path, args...).CombinedOutput() //nolint:gosec
	if err != nil {
		return "", fmt.Errorf("running %s %s: %w", path, strings.Join(args, " "), err)
	}
	v := versionPattern.FindString(string(out))
	if v == "" {
		return "", fmt.Errorf("could not parse a version number from %q", strings.TrimSpace(string(out)))
	}
	return v, nil
}

// versionSatisfies reports whether version (a concrete "X.Y.Z"-ish
// string resolved from a toolchain, never a request marker) satisfies
// req, mirroring hookmodel.LanguageRequest.Matches but kept local so
// this package doesn't import hookmodel.
func versionSatisfies(req VersionRequest, version string) bool {
	switch req.Kind {
	case KindDefault, KindSystem:
		return true
	case KindSpecific, KindRange:
		c, err := semver.NewConstraint(req.Constraint)
		if err != nil {
			return req.Constraint == version
		}
		v, err := semver.NewVersion(version)
		if err != nil {
			return false
		}
		return c.Check(v)
	default:
		return false
	}
}
