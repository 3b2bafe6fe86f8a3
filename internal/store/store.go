// Package store implements the process-wide, file-lock-protected cache of
// cloned hook repositories and installed hook environments (spec §4.2).
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/prek-dev/prek/internal/errs"
)

// Store is a handle on the per-user cache directory. Construct with New;
// tests can point it at a temp dir.
type Store struct {
	Dir string
}

// Default resolves the store directory the way pre-commit/prek resolve it:
// PREK_HOME, then XDG_CACHE_HOME/prek, then $HOME/.cache/prek.
func Default() (string, error) {
	if home := os.Getenv("PREK_HOME"); home != "" {
		return home, nil
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "prek"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving store directory: %w", err)
	}
	return filepath.Join(home, ".cache", "prek"), nil
}

// New creates the fixed subdirectory layout under dir (spec §4.2).
func New(dir string) (*Store, error) {
	for _, sub := range []string{"repos", "hooks", "patches", "cache"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o750); err != nil {
			return nil, &errs.Store{Err: err}
		}
	}
	return &Store{Dir: dir}, nil
}

func (s *Store) ReposDir() string   { return filepath.Join(s.Dir, "repos") }
func (s *Store) HooksDir() string   { return filepath.Join(s.Dir, "hooks") }
func (s *Store) PatchesDir() string { return filepath.Join(s.Dir, "patches") }
func (s *Store) CacheDir() string   { return filepath.Join(s.Dir, "cache") }

// Fingerprint computes the repo fingerprint from spec §3:
// sha256(url || "\0" || rev || "\0" || sorted(deps).join("\0")),
// truncated to 32 hex chars.
func Fingerprint(url, rev string, additionalDeps []string) string {
	deps := append([]string{}, additionalDeps...)
	sort.Strings(deps)

	h := sha256.New()
	h.Write([]byte(url))
	h.Write([]byte{0})
	h.Write([]byte(rev))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(deps, "\x00")))

	return hex.EncodeToString(h.Sum(nil))[:32]
}

// RepoPath returns the directory a clone with this fingerprint lives (or
// would live) in.
func (s *Store) RepoPath(fingerprint string) string {
	return filepath.Join(s.ReposDir(), fingerprint)
}

// lockFile returns the advisory lock used to serialize a named
// operation (the global store.lock, or a per-fingerprint/per-env lock).
func (s *Store) lockFile(name string) *flock.Flock {
	return flock.New(filepath.Join(s.Dir, name+".lock"))
}

// WithStoreLock runs fn holding the process-wide store.lock (spec §4.2
// "cloning protocol" step 1).
func (s *Store) WithStoreLock(fn func() error) error {
	return withLock(s.lockFile("store"), fn)
}

// WithRepoLock serializes cloning of a single fingerprint across
// processes (spec §4.2 concurrency: "cloning a given repo is serialized
// by a per-fingerprint file lock").
func (s *Store) WithRepoLock(fingerprint string, fn func() error) error {
	return withLock(s.lockFile("repo-"+fingerprint), fn)
}

// WithEnvLock serializes installation into a single environment
// directory key (language + env-key-dependencies digest).
func (s *Store) WithEnvLock(envKey string, fn func() error) error {
	return withLock(s.lockFile("env-"+envKey), fn)
}

func withLock(l *flock.Flock, fn func() error) error {
	if err := l.Lock(); err != nil {
		return &errs.Store{Err: fmt.Errorf("acquiring lock %s: %w", l.Path(), err)}
	}
	defer func() { _ = l.Unlock() }()
	return fn()
}

// NewPatchPath generates the patch file path for a stash per spec §6:
// store/patches/<unix-seconds>-<pid>.patch, with a uuid suffix to avoid
// collisions between two runs started in the same second.
func (s *Store) NewPatchPath(now time.Time) string {
	name := fmt.Sprintf("%d-%d-%s.patch", now.Unix(), os.Getpid(), uuid.NewString()[:8])
	return filepath.Join(s.PatchesDir(), name)
}

// NewEnvDirName generates a hooks/<language>-<rand> name (spec §4.2); the
// directory is created as a temp name first and only renamed to this
// after the marker file is written (see envmanager.Manager.ensureInstalled).
func (s *Store) NewEnvDirName(language string) string {
	return language + "-" + uuid.NewString()
}
