package workspace

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte("repos: []\n"), 0o600))
}

func TestDiscoverOrdersDeeperFirst(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, filepath.Join(root, ".pre-commit-config.yaml"))
	writeConfig(t, filepath.Join(root, "app", ".pre-commit-config.yaml"))
	writeConfig(t, filepath.Join(root, "app", "nested", ".pre-commit-config.yaml"))

	ws, err := Discover(root, nil)
	require.NoError(t, err)
	require.Len(t, ws.Projects, 3)

	require.Equal(t, "app/nested", ws.Projects[0].RelPath)
	require.Equal(t, "app", ws.Projects[1].RelPath)
	require.Equal(t, "", ws.Projects[2].RelPath)
	require.True(t, ws.Projects[2].IsRoot())
}

func TestCacheRoundTripAndInvalidationOnMtime(t *testing.T) {
	root := t.TempDir()
	cfgPath := filepath.Join(root, ".pre-commit-config.yaml")
	writeConfig(t, cfgPath)

	ws, err := Discover(root, nil)
	require.NoError(t, err)

	cacheDir := t.TempDir()
	require.NoError(t, Save(cacheDir, ws))

	_, ok := Load(cacheDir, root)
	require.True(t, ok)

	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(cfgPath, future, future))

	_, ok = Load(cacheDir, root)
	require.False(t, ok)
}

func TestCacheExpiresAfterTTL(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, filepath.Join(root, ".pre-commit-config.yaml"))

	ws, err := Discover(root, nil)
	require.NoError(t, err)

	cacheDir := t.TempDir()
	old := now
	now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	err = Save(cacheDir, ws)
	now = old
	require.NoError(t, err)

	_, ok := Load(cacheDir, root)
	require.False(t, ok)
}
