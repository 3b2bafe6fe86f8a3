package workspace

import (
	"encoding/json"
	"hash/fnv"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// CacheSchemaVersion is the version stamped on every cache file written
// by this build; a mismatch is treated the same as a missing cache.
const CacheSchemaVersion = 1

// cacheTTL is the freshness window from spec §3: a cache older than this
// is never trusted, regardless of file-stat comparisons.
const cacheTTL = time.Hour

// CacheFile is the on-disk JSON shape at
// store/cache/prek/workspace/<hash> (spec §6).
type CacheFile struct {
	ConfigFiles  []CachedConfigFile `json:"config_files"`
	WorkspaceRoot string            `json:"workspace_root"`
	CreatedAt    time.Time          `json:"created_at"`
	Version      int                `json:"version"`
}

// CachedConfigFile records the stat fingerprint of one discovered config
// file at cache-write time.
type CachedConfigFile struct {
	Path     string    `json:"path"`
	Modified time.Time `json:"modified"`
	Size     int64     `json:"size"`
}

// pathFor returns the cache file path for a workspace root, keyed by a
// stable hash of the root so multiple workspaces don't collide (matching
// the external-interface shape "store/cache/prek/workspace/<hash>").
func pathFor(storeCacheDir, root string) string {
	return filepath.Join(storeCacheDir, "prek", "workspace", hashPath(root))
}

// Load reads and validates the cache for root. A cache miss (absent,
// wrong version, expired, stale stat) returns ok=false; callers should
// redo discovery and call Save.
func Load(storeCacheDir, root string) (ws *Workspace, ok bool) {
	data, err := os.ReadFile(pathFor(storeCacheDir, root)) // #nosec G304 -- internally derived cache path
	if err != nil {
		return nil, false
	}

	var cf CacheFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, false
	}
	if cf.Version != CacheSchemaVersion || cf.WorkspaceRoot != root {
		return nil, false
	}
	if time.Since(cf.CreatedAt) > cacheTTL {
		return nil, false
	}
	if _, err := os.Stat(root); err != nil {
		return nil, false
	}

	for _, f := range cf.ConfigFiles {
		info, err := os.Stat(f.Path)
		if err != nil {
			return nil, false
		}
		if !info.ModTime().Equal(f.Modified) || info.Size() != f.Size {
			return nil, false
		}
	}

	// The cache only proves freshness of the config-file set; rebuilding
	// Project objects still requires a (now guaranteed cheap, no-FS-walk)
	// reload of each config file.
	projects := make([]*Project, 0, len(cf.ConfigFiles))
	for _, f := range cf.ConfigFiles {
		dir := filepath.Dir(f.Path)
		rel, depth := relPath(root, dir)
		projects = append(projects, &Project{
			AbsPath:    dir,
			ConfigPath: f.Path,
			RelPath:    rel,
			Depth:      depth,
		})
	}
	sortProjects(projects)
	for i, p := range projects {
		p.Index = i
	}

	return &Workspace{Root: root, Projects: projects}, true
}

// Save persists ws's discovered config-file set.
func Save(storeCacheDir string, ws *Workspace) error {
	cf := CacheFile{
		Version:       CacheSchemaVersion,
		WorkspaceRoot: ws.Root,
		CreatedAt:     now(),
	}
	for _, p := range ws.Projects {
		info, err := os.Stat(p.ConfigPath)
		if err != nil {
			continue
		}
		cf.ConfigFiles = append(cf.ConfigFiles, CachedConfigFile{
			Path:     p.ConfigPath,
			Modified: info.ModTime(),
			Size:     info.Size(),
		})
	}

	path := pathFor(storeCacheDir, ws.Root)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cf, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// now is a seam so tests can avoid depending on wall-clock time; in
// production it is time.Now.
var now = func() time.Time { return time.Now() }

func hashPath(p string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(p))
	return strconv.FormatUint(h.Sum64(), 16)
}
