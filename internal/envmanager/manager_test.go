package envmanager

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prek-dev/prek/internal/config"
	"github.com/prek-dev/prek/internal/hookmodel"
	"github.com/prek-dev/prek/internal/store"
)

func buildHook(t *testing.T, language, entry string) *hookmodel.ResolvedHook {
	t.Helper()
	manifest := config.Hook{ID: "x", Entry: entry, Language: language}
	rh, err := hookmodel.Build(manifest, config.Hook{}, hookmodel.ProjectDefaults{}, "", hookmodel.Repo{}, 0)
	require.NoError(t, err)
	return rh
}

func TestEnsureNoEnvLanguageSkipsStore(t *testing.T) {
	s, err := store.New(t.TempDir())
	require.NoError(t, err)
	m := NewManager(s)

	hook := buildHook(t, "system", "echo")
	res, err := m.Ensure(context.Background(), hook, "")
	require.NoError(t, err)
	require.Equal(t, "", res.EnvPath)
	require.Equal(t, []string{"echo"}, res.Argv)
}

func TestEnsureUnsupportedLanguageErrors(t *testing.T) {
	s, err := store.New(t.TempDir())
	require.NoError(t, err)
	m := NewManager(s)

	hook := buildHook(t, "system", "echo")
	hook.Language = "not-a-real-language"
	_, err = m.Ensure(context.Background(), hook, "")
	require.Error(t, err)
}
