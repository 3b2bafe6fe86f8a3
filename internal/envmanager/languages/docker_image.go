package languages

import (
	"context"
	"fmt"
	"os/exec"
)

// DockerImage runs a hook in a pre-built image (no Dockerfile build
// step), grounded on the teacher's DockerImageLanguage
// (pkg/repository/languages/docker_image.go).
type DockerImage struct{ base }

func NewDockerImage() *DockerImage {
	return &DockerImage{base{name: "docker_image", executable: "docker"}}
}

func (d *DockerImage) NeedsEnvironment() bool { return false }

func (d *DockerImage) Install(_ context.Context, req InstallRequest) error {
	return mkdirEnv(req.EnvPath)
}

func (d *DockerImage) CheckHealth(ctx context.Context, envPath string) error {
	if err := d.base.CheckHealth(ctx, envPath); err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, "docker", "info") //nolint:gosec
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("docker daemon is not accessible: %w", err)
	}
	return nil
}

func (d *DockerImage) ResolveCommand(_, entry string, args []string) ([]string, []string, error) {
	return resolveOnPath(entry, args)
}
