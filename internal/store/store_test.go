package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFingerprintIsDeterministicAndDepOrderIndependent(t *testing.T) {
	a := Fingerprint("https://example.com/r", "v1", []string{"X", "Y"})
	b := Fingerprint("https://example.com/r", "v1", []string{"Y", "X"})
	require.Equal(t, a, b)
	require.Len(t, a, 32)
}

func TestFingerprintDiffersOnAnyComponent(t *testing.T) {
	base := Fingerprint("https://example.com/r", "v1", []string{"x"})
	require.NotEqual(t, base, Fingerprint("https://example.com/other", "v1", []string{"x"}))
	require.NotEqual(t, base, Fingerprint("https://example.com/r", "v2", []string{"x"}))
	require.NotEqual(t, base, Fingerprint("https://example.com/r", "v1", []string{"y"}))
}

func TestNewCreatesLayout(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)
	require.DirExists(t, s.ReposDir())
	require.DirExists(t, s.HooksDir())
	require.DirExists(t, s.PatchesDir())
	require.DirExists(t, s.CacheDir())
}

func TestWithStoreLockSerializes(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	var order []int
	done := make(chan struct{})
	go func() {
		_ = s.WithStoreLock(func() error {
			order = append(order, 1)
			return nil
		})
		done <- struct{}{}
	}()
	<-done
	require.NoError(t, s.WithStoreLock(func() error {
		order = append(order, 2)
		return nil
	}))
	require.Equal(t, []int{1, 2}, order)
}

type fixedMatcher struct{ ok bool }

func (f fixedMatcher) Matches(string) bool { return f.ok }

func TestFindReusableEnvMatchesOnLanguageDepsAndVersion(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	scratch, final, err := s.AllocateEnvDir("python")
	require.NoError(t, err)
	rec := InstallRecord{
		Language:        "python",
		LanguageVersion: "3.12.1",
		Toolchain:       "/fake/python3.12",
		Dependencies:    []string{"black", "flake8"},
	}
	require.NoError(t, s.FinalizeEnvDir(scratch, final, rec))

	got, path, ok := s.FindReusableEnv("python", []string{"flake8", "black"}, fixedMatcher{true})
	require.True(t, ok)
	require.Equal(t, final, path)
	require.Equal(t, []string{"black", "flake8"}, got.Dependencies)

	_, _, ok = s.FindReusableEnv("python", []string{"black"}, fixedMatcher{true})
	require.False(t, ok, "different dependency set must not match")

	_, _, ok = s.FindReusableEnv("python", []string{"flake8", "black"}, fixedMatcher{false})
	require.False(t, ok, "language_version mismatch must not match")

	_, _, ok = s.FindReusableEnv("node", []string{"flake8", "black"}, fixedMatcher{true})
	require.False(t, ok, "different language must not match")
}

func TestFinalizeEnvDirNotVisibleUntilRenamed(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	scratch, _, err := s.AllocateEnvDir("python")
	require.NoError(t, err)

	_, _, ok := s.FindReusableEnv("python", nil, fixedMatcher{true})
	require.False(t, ok, "scratch dir must not be visible to reuse search before finalize")

	require.NoError(t, WriteMarker(scratch, InstallRecord{Language: "python"}))
	_, _, ok = s.FindReusableEnv("python", nil, fixedMatcher{true})
	require.False(t, ok, "still under the .tmp- name, not yet renamed")
}
