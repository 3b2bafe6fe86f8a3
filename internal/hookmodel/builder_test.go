package hookmodel

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prek-dev/prek/internal/config"
)

func TestBuildAppliesOverrideAndDefaults(t *testing.T) {
	manifest := config.Hook{ID: "x", Name: "x", Entry: "echo", Language: "system"}
	override := config.Hook{ID: "x", Args: []string{"--fix"}}
	defaults := ProjectDefaults{DefaultStages: []string{"pre-commit"}}

	rh, err := Build(manifest, override, defaults, "", Repo{}, 3)
	require.NoError(t, err)
	require.Equal(t, []string{"--fix"}, rh.Args)
	require.Equal(t, []string{"pre-commit"}, rh.Stages)
	require.Equal(t, 3, rh.Priority)
	require.True(t, rh.PassFilenames)
}

func TestBuildRejectsDepsForUnsupportedLanguage(t *testing.T) {
	manifest := config.Hook{ID: "x", Entry: "echo", Language: "system", AdditionalDeps: []string{"foo"}}
	_, err := Build(manifest, config.Hook{}, ProjectDefaults{}, "", Repo{}, 0)
	require.Error(t, err)
}

func TestBuildExplicitPriorityWins(t *testing.T) {
	p := 42
	manifest := config.Hook{ID: "x", Entry: "echo", Language: "system", Priority: &p}
	rh, err := Build(manifest, config.Hook{}, ProjectDefaults{}, "", Repo{}, 3)
	require.NoError(t, err)
	require.Equal(t, 42, rh.Priority)
}

func TestEnvKeyDependenciesIncludesRepoSeedForRemote(t *testing.T) {
	manifest := config.Hook{ID: "x", Entry: "echo", Language: "python", AdditionalDeps: []string{"black"}}
	rh, err := Build(manifest, config.Hook{}, ProjectDefaults{}, "", Repo{URL: "https://example.com/r", Rev: "v1"}, 0)
	require.NoError(t, err)
	keys := rh.EnvKeyDependencies()
	require.Contains(t, keys, "black")
	require.Contains(t, keys, "<https://example.com/r@v1>")
}

func TestLanguageRequestMatches(t *testing.T) {
	req := ParseLanguageRequest("3.12")
	require.Equal(t, LanguageSpecific, req.Kind)
	require.True(t, req.Matches("3.12.0"))

	rangeReq := ParseLanguageRequest(">=1.20")
	require.Equal(t, LanguageRange, rangeReq.Kind)
	require.True(t, rangeReq.Matches("1.22.0"))
	require.False(t, rangeReq.Matches("1.10.0"))

	require.True(t, ParseLanguageRequest("default").Matches("anything"))
}
