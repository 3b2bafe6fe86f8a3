package languages

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/Masterminds/semver/v3"
)

// Python installs hooks into a venv, grounded on the teacher's
// PythonLanguage (pkg/repository/languages/python.go): resolve an
// interpreter by name on PATH (no pyenv lookup), `python -m venv`, then
// pip install the repo and any additional_dependencies.
type Python struct{ base }

func NewPython() *Python { return &Python{base{name: "python", executable: "python3"}} }

func (p *Python) NeedsEnvironment() bool     { return true }
func (p *Python) SupportsDependencies() bool { return true }
func (p *Python) SupportsVersion() bool      { return true }

func (p *Python) possibleNames() []string { return []string{"python3", "python"} }

// versionedNames returns pythonX.Y-style binary names to probe for a
// pinned/ranged language_version, most-specific first: the exact
// major.minor named by req.Constraint when it parses as a version, then
// every other common minor, then the bare names as a last resort.
func (p *Python) versionedNames(req VersionRequest) []string {
	var names []string
	if v, err := semver.NewVersion(req.Constraint); err == nil {
		names = append(names, fmt.Sprintf("python%d.%d", v.Major(), v.Minor()))
	}
	for _, minor := range []int{13, 12, 11, 10, 9, 8, 7} {
		name := fmt.Sprintf("python3.%d", minor)
		if len(names) == 0 || names[0] != name {
			names = append(names, name)
		}
	}
	return append(names, p.possibleNames()...)
}

func (p *Python) ResolveToolchain(ctx context.Context, req VersionRequest) (string, error) {
	if req.Kind != KindSpecific && req.Kind != KindRange {
		for _, name := range p.possibleNames() {
			if path, err := exec.LookPath(name); err == nil {
				return path, nil
			}
		}
		return "", fmt.Errorf("no python interpreter found on PATH (tried %v)", p.possibleNames())
	}

	seen := make(map[string]bool)
	for _, name := range p.versionedNames(req) {
		path, err := exec.LookPath(name)
		if err != nil || seen[path] {
			continue
		}
		seen[path] = true
		version, err := probeVersion(ctx, path, "--version")
		if err != nil {
			continue
		}
		if versionSatisfies(req, version) {
			return path, nil
		}
	}
	return "", fmt.Errorf("no python interpreter on PATH satisfies language_version %q", req.Constraint)
}

// ToolchainVersion reports toolchain's actual reported version, recorded
// in the install marker so the reuse predicate compares like-for-like
// (spec §3) instead of the raw request text.
func (p *Python) ToolchainVersion(ctx context.Context, toolchain string) (string, error) {
	return probeVersion(ctx, toolchain, "--version")
}

func (p *Python) Install(ctx context.Context, req InstallRequest) error {
	if req.Toolchain == "" {
		return fmt.Errorf("python: no interpreter resolved")
	}
	cmd := exec.CommandContext(ctx, req.Toolchain, "-m", "venv", req.EnvPath) //nolint:gosec
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("python -m venv failed: %w\n%s", err, out)
	}

	pip := filepath.Join(binPath(req.EnvPath), "pip")
	if runtime.GOOS == "windows" {
		pip = filepath.Join(req.EnvPath, "Scripts", "pip.exe")
	}

	if req.RepoPath != "" {
		// Matches Python pre-commit's exact invocation shape.
		args := []string{"install", "--quiet", "--no-compile", "--no-warn-script-location", req.RepoPath}
		if out, err := exec.CommandContext(ctx, pip, args...).CombinedOutput(); err != nil { //nolint:gosec
			return fmt.Errorf("pip install %s failed: %w\n%s", req.RepoPath, err, out)
		}
	}

	for _, dep := range req.AdditionalDeps {
		args := []string{"install", "--quiet", "--no-compile", "--no-warn-script-location", dep}
		if out, err := exec.CommandContext(ctx, pip, args...).CombinedOutput(); err != nil { //nolint:gosec
			return fmt.Errorf("pip install %s failed: %w\n%s", dep, err, out)
		}
	}
	return nil
}

func (p *Python) CheckHealth(_ context.Context, envPath string) error {
	exe := filepath.Join(binPath(envPath), "python")
	if runtime.GOOS == "windows" {
		exe = filepath.Join(envPath, "Scripts", "python.exe")
	}
	if err := exec.Command(exe, "--version").Run(); err != nil { //nolint:gosec
		return fmt.Errorf("python venv health check failed: %w", err)
	}
	return nil
}

func (p *Python) ResolveCommand(envPath, entry string, args []string) ([]string, []string, error) {
	env := []string{"VIRTUAL_ENV=" + envPath, "PATH_PREPEND=" + binPath(envPath)}
	return append([]string{entry}, args...), env, nil
}
