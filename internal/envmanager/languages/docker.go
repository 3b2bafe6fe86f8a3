package languages

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
)

// Docker builds an image from a repo's Dockerfile and runs hooks through
// it, grounded on the teacher's DockerLanguage (pkg/repository/languages/docker.go).
type Docker struct{ base }

func NewDocker() *Docker { return &Docker{base{name: "docker", executable: "docker"}} }

func (d *Docker) NeedsEnvironment() bool { return true }

func (d *Docker) Install(ctx context.Context, req InstallRequest) error {
	if err := mkdirEnv(req.EnvPath); err != nil {
		return err
	}
	if req.RepoPath == "" {
		return fmt.Errorf("docker language requires a repo checkout to build")
	}
	tag := "prek-docker-" + filepath.Base(req.EnvPath)
	cmd := exec.CommandContext(ctx, "docker", "build", "-t", tag, req.RepoPath) //nolint:gosec
	cmd.Dir = req.RepoPath
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("docker build failed: %w\n%s", err, out)
	}
	return nil
}

func (d *Docker) CheckHealth(ctx context.Context, envPath string) error {
	if err := d.base.CheckHealth(ctx, envPath); err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, "docker", "info") //nolint:gosec
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("docker daemon is not accessible: %w", err)
	}
	return nil
}

func (d *Docker) ResolveCommand(envPath, entry string, args []string) ([]string, []string, error) {
	tag := "prek-docker-" + filepath.Base(envPath)
	argv := append([]string{"docker", "run", "--rm", "-v", "/:/src", "-w", "/src", tag, entry}, args...)
	return argv, nil, nil
}
