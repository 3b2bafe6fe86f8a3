package fileselect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prek-dev/prek/internal/config"
	"github.com/prek-dev/prek/internal/hookmodel"
)

func buildEchoHook(t *testing.T, projectRelPath string) *hookmodel.ResolvedHook {
	t.Helper()
	manifest := config.Hook{ID: "echo", Entry: "echo", Language: "system"}
	rh, err := hookmodel.Build(manifest, config.Hook{}, hookmodel.ProjectDefaults{}, projectRelPath, hookmodel.Repo{}, 0)
	require.NoError(t, err)
	return rh
}

func TestProjectScopeAndOrphanConsumption(t *testing.T) {
	runWide := []string{"app/x.py", "y.py"}

	root := ProjectScope{RelPath: ""}
	app := ProjectScope{RelPath: "app"}

	rootHook := buildEchoHook(t, "")
	appHook := buildEchoHook(t, "app")

	all := []ProjectScope{root, app}

	repoRoot := t.TempDir()

	rootFiles, err := HookFiles(repoRoot, runWide, rootHook, root, all)
	require.NoError(t, err)
	appFiles, err := HookFiles(repoRoot, runWide, appHook, app, all)
	require.NoError(t, err)

	require.ElementsMatch(t, []string{"y.py", "app/x.py"}, rootFiles, "without orphan, root receives both")
	require.ElementsMatch(t, []string{"x.py"}, appFiles, "app hook sees project-relative path")

	orphanApp := ProjectScope{RelPath: "app", Orphan: true}
	allOrphan := []ProjectScope{root, orphanApp}

	rootFilesOrphan, err := HookFiles(repoRoot, runWide, rootHook, root, allOrphan)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"y.py"}, rootFilesOrphan, "orphan app/ consumes app/x.py from root")
}

func TestHookFilesAppliesTypesAndExcludeRegex(t *testing.T) {
	manifest := config.Hook{ID: "echo", Entry: "echo", Language: "system", Exclude: "^vendor/"}
	hook, err := hookmodel.Build(manifest, config.Hook{}, hookmodel.ProjectDefaults{}, "", hookmodel.Repo{}, 0)
	require.NoError(t, err)
	hook.Types = []string{"python"}

	runWide := []string{"a.py", "b.go", "vendor/c.py"}
	root := ProjectScope{}

	out, err := HookFiles(t.TempDir(), runWide, hook, root, []ProjectScope{root})
	require.NoError(t, err)
	require.Equal(t, []string{"a.py"}, out, "b.go fails the python type filter, vendor/c.py is excluded by regex")
}

func TestComputeTagsDetectsExtensionAndText(t *testing.T) {
	dir := t.TempDir()
	pyFile := filepath.Join(dir, "a.py")
	require.NoError(t, os.WriteFile(pyFile, []byte("print(1)\n"), 0o644))

	tags := Compute(pyFile)
	require.True(t, tags.Has("python"))
	require.True(t, tags.Has("text"))
	require.True(t, tags.Has("file"))
}

func TestComputeTagsDetectsShebangAndExecutable(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "run")
	require.NoError(t, os.WriteFile(script, []byte("#!/usr/bin/env python3\nprint(1)\n"), 0o755))

	tags := Compute(script)
	require.True(t, tags.Has("python3"))
	require.True(t, tags.Has("executable"))
}

func TestComputeTagsDetectsDirectory(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))

	tags := Compute(sub)
	require.True(t, tags.Has("directory"))
	require.False(t, tags.Has("file"))
}
