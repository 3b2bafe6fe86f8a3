package languages

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Golang symlinks the system Go toolchain into the environment and, when
// additional_dependencies are given, go-installs them into the
// environment's GOBIN, grounded on the teacher's GoLanguage
// (pkg/repository/languages/golang.go).
type Golang struct{ base }

func NewGolang() *Golang { return &Golang{base{name: "golang", executable: "go"}} }

func (g *Golang) NeedsEnvironment() bool     { return true }
func (g *Golang) SupportsDependencies() bool { return true }
func (g *Golang) SupportsVersion() bool      { return false } // only the pre-installed system toolchain is used

func (g *Golang) ResolveToolchain(_ context.Context, _ VersionRequest) (string, error) {
	path, err := exec.LookPath("go")
	if err != nil {
		return "", fmt.Errorf("go runtime not found in PATH: %w", err)
	}
	return path, nil
}

func (g *Golang) Install(ctx context.Context, req InstallRequest) error {
	bin := binPath(req.EnvPath)
	if err := os.MkdirAll(bin, 0o750); err != nil {
		return fmt.Errorf("creating bin directory: %w", err)
	}
	if err := symlink(req.Toolchain, filepath.Join(bin, "go")); err != nil {
		return fmt.Errorf("symlinking go: %w", err)
	}
	if gofmt, err := exec.LookPath("gofmt"); err == nil {
		_ = symlink(gofmt, filepath.Join(bin, "gofmt")) // optional, best-effort
	}

	gocache := filepath.Join(req.EnvPath, "gocache")
	gopath := filepath.Join(req.EnvPath, "gopath")
	if err := os.MkdirAll(gocache, 0o750); err != nil {
		return err
	}
	if err := os.MkdirAll(gopath, 0o750); err != nil {
		return err
	}

	env := append(os.Environ(), "GOCACHE="+gocache, "GOPATH="+gopath, "GOBIN="+bin)

	if req.RepoPath != "" {
		cmd := exec.CommandContext(ctx, req.Toolchain, "install", "./...") //nolint:gosec
		cmd.Dir = req.RepoPath
		cmd.Env = env
		if out, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("go install ./... failed: %w\n%s", err, out)
		}
	}

	for _, dep := range req.AdditionalDeps {
		cmd := exec.CommandContext(ctx, req.Toolchain, "install", dep) //nolint:gosec
		cmd.Env = env
		if out, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("go install %s failed: %w\n%s", dep, err, out)
		}
	}
	return nil
}

// ToolchainVersion reports the go toolchain's version, recorded in the
// install marker even though SupportsVersion is false here: it's still
// useful context on the marker, and costs nothing extra to capture.
func (g *Golang) ToolchainVersion(ctx context.Context, toolchain string) (string, error) {
	return probeVersion(ctx, toolchain, "version")
}

func (g *Golang) CheckHealth(ctx context.Context, envPath string) error {
	goExe := filepath.Join(binPath(envPath), "go")
	cmd := exec.CommandContext(ctx, goExe, "version") //nolint:gosec
	cmd.Env = append(os.Environ(), "GOCACHE="+filepath.Join(envPath, "gocache"))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("go toolchain health check failed: %w", err)
	}
	return nil
}

func (g *Golang) ResolveCommand(envPath, entry string, args []string) ([]string, []string, error) {
	env := []string{
		"GOCACHE=" + filepath.Join(envPath, "gocache"),
		"GOPATH=" + filepath.Join(envPath, "gopath"),
		"PATH_PREPEND=" + binPath(envPath),
	}
	return append([]string{entry}, args...), env, nil
}

func symlink(target, link string) error {
	_ = os.Remove(link)
	return os.Symlink(target, link)
}
