package languages

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Node installs hooks into a self-contained node_modules tree under the
// environment directory, grounded on the teacher's NodeLanguage
// (pkg/repository/languages/node.go): the system npm runs `npm install`
// of the repo plus additional_dependencies into the environment; nothing
// is symlinked into it.
type Node struct{ base }

func NewNode() *Node { return &Node{base{name: "node", executable: "node"}} }

func (n *Node) NeedsEnvironment() bool     { return true }
func (n *Node) SupportsDependencies() bool { return true }
func (n *Node) SupportsVersion() bool      { return true }

func (n *Node) ResolveToolchain(ctx context.Context, req VersionRequest) (string, error) {
	if req.Kind != KindSpecific && req.Kind != KindRange {
		path, err := exec.LookPath("node")
		if err != nil {
			return "", fmt.Errorf("no node runtime found on PATH: %w", err)
		}
		return path, nil
	}

	for _, path := range n.candidatePaths() {
		version, err := probeVersion(ctx, path, "--version")
		if err != nil {
			continue
		}
		if versionSatisfies(req, version) {
			return path, nil
		}
	}
	return "", fmt.Errorf("no node runtime on PATH or under $NVM_DIR/versions/node satisfies language_version %q", req.Constraint)
}

// candidatePaths lists node binaries to probe for a pinned/ranged
// language_version: the PATH one, plus every version nvm has installed
// under $NVM_DIR, since node itself has no version-suffixed binary name
// the way python/pythonX.Y does.
func (n *Node) candidatePaths() []string {
	var paths []string
	if path, err := exec.LookPath("node"); err == nil {
		paths = append(paths, path)
	}
	if nvmDir := os.Getenv("NVM_DIR"); nvmDir != "" {
		versionsDir := filepath.Join(nvmDir, "versions", "node")
		entries, err := os.ReadDir(versionsDir)
		if err == nil {
			for _, e := range entries {
				if e.IsDir() {
					paths = append(paths, filepath.Join(versionsDir, e.Name(), "bin", "node"))
				}
			}
		}
	}
	return paths
}

// ToolchainVersion reports toolchain's actual reported version, recorded
// in the install marker so the reuse predicate compares like-for-like
// (spec §3) instead of the raw request text.
func (n *Node) ToolchainVersion(ctx context.Context, toolchain string) (string, error) {
	return probeVersion(ctx, toolchain, "--version")
}

func (n *Node) Install(ctx context.Context, req InstallRequest) error {
	nodeModules := filepath.Join(req.EnvPath, "lib", "node_modules")
	if err := os.MkdirAll(nodeModules, 0o750); err != nil {
		return fmt.Errorf("creating node_modules directory: %w", err)
	}

	npm, err := exec.LookPath("npm")
	if err != nil {
		return fmt.Errorf("no npm found on PATH: %w", err)
	}

	installDir := req.RepoPath
	if installDir == "" {
		installDir = req.EnvPath
	}

	pkgs := append([]string{}, req.AdditionalDeps...)
	if req.RepoPath != "" {
		pkgs = append(pkgs, req.RepoPath)
	}
	if len(pkgs) == 0 {
		return nil
	}

	args := append([]string{"install", "--include=dev", "--include=prod", "--prefix", req.EnvPath}, pkgs...)
	cmd := exec.CommandContext(ctx, npm, args...) //nolint:gosec
	cmd.Dir = installDir
	cmd.Env = append(os.Environ(), "NODE_PATH="+nodeModules)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("npm install failed: %w\n%s", err, out)
	}
	return nil
}

func (n *Node) CheckHealth(_ context.Context, envPath string) error {
	if _, err := os.Stat(envPath); err != nil {
		return fmt.Errorf("node environment directory missing: %w", err)
	}
	if _, err := exec.LookPath("node"); err != nil {
		return fmt.Errorf("node runtime no longer available: %w", err)
	}
	return nil
}

func (n *Node) ResolveCommand(envPath, entry string, args []string) ([]string, []string, error) {
	nodeModules := filepath.Join(envPath, "lib", "node_modules")
	binDir := filepath.Join(nodeModules, ".bin")
	env := []string{"NODE_PATH=" + nodeModules, "PATH_PREPEND=" + binDir}
	return append([]string{entry}, args...), env, nil
}
