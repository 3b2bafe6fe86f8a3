package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoadYAMLUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, ".pre-commit-config.yaml", `
repos:
  - repo: local
    hooks:
      - id: x
        entry: echo
        language: system
bogus_top_level: true
`)

	cfg, warnings, err := Load(p)
	require.NoError(t, err)
	require.Len(t, cfg.Repos, 1)
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0].Message, "bogus_top_level")
}

func TestLoadYAMLMergeKeys(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, ".pre-commit-config.yaml", `
defaults: &defaults
  language: system

repos:
  - repo: local
    hooks:
      - <<: *defaults
        id: x
        entry: echo
`)
	cfg, _, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, "system", cfg.Repos[0].Hooks[0].Language)
}

func TestValidateRequiresRevForRemote(t *testing.T) {
	cfg := &ProjectConfig{Repos: []Repo{{RepoURL: "https://example.com/repo", Hooks: []Hook{{ID: "x"}}}}}
	err := Validate(cfg, nil)
	require.Error(t, err)
}

func TestValidateRejectsRevOnLocal(t *testing.T) {
	cfg := &ProjectConfig{Repos: []Repo{{RepoURL: "local", Rev: "v1", Hooks: []Hook{{ID: "x", Entry: "echo"}}}}}
	err := Validate(cfg, nil)
	require.Error(t, err)
}

func TestDiscoverAmbiguity(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "prek.toml", "repos = []\n")
	writeFile(t, dir, ".pre-commit-config.yaml", "repos: []\n")

	path, warnings, found := Discover(dir)
	require.True(t, found)
	require.Equal(t, filepath.Join(dir, "prek.toml"), path)
	require.Len(t, warnings, 1)
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "prek.toml", `
fail_fast = true

[[repos]]
repo = "local"

[[repos.hooks]]
id = "x"
entry = "echo"
language = "system"
`)
	cfg, _, err := Load(p)
	require.NoError(t, err)
	require.True(t, cfg.FailFast)
	require.Equal(t, "echo", cfg.Repos[0].Hooks[0].Entry)
}
