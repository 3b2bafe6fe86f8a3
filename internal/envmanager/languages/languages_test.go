package languages

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSystemNeedsNoEnvironmentAndResolvesOnPath(t *testing.T) {
	sys := NewSystem()
	require.False(t, sys.NeedsEnvironment())

	dir := t.TempDir() + "/env"
	require.NoError(t, sys.Install(context.Background(), InstallRequest{EnvPath: dir}))
	require.DirExists(t, dir)

	argv, env, err := sys.ResolveCommand(dir, "echo", []string{"hi"})
	require.NoError(t, err)
	require.Equal(t, []string{"echo", "hi"}, argv)
	require.Nil(t, env)
}

func TestFailResolveCommandRequiresEntry(t *testing.T) {
	f := NewFail()
	_, _, err := f.ResolveCommand("", "", nil)
	require.Error(t, err)

	argv, _, err := f.ResolveCommand("", "do not commit TODOs", nil)
	require.NoError(t, err)
	require.Equal(t, []string{"__prek_fail__", "do not commit TODOs"}, argv)
}

func TestGenericPluginsCoverClosedLanguageSet(t *testing.T) {
	for _, name := range []string{"ruby", "rust", "lua", "perl", "dart", "r", "julia", "haskell", "dotnet", "conda", "coursier", "swift"} {
		g := NewGeneric(name)
		require.Equal(t, name, g.Name())
		require.True(t, g.NeedsEnvironment())
	}
	require.True(t, NewGeneric("ruby").SupportsDependencies())
	require.True(t, NewGeneric("ruby").SupportsVersion())
	require.True(t, NewGeneric("rust").SupportsVersion())
	require.False(t, NewGeneric("swift").SupportsDependencies())
}

func TestGolangResolveCommandSetsEnv(t *testing.T) {
	g := NewGolang()
	envPath := t.TempDir()
	argv, env, err := g.ResolveCommand(envPath, "golangci-lint", []string{"run"})
	require.NoError(t, err)
	require.Equal(t, []string{"golangci-lint", "run"}, argv)
	require.Len(t, env, 3)
}
