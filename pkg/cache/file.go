package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"
)

// FileCache stores artifacts as JSON entries under a directory, one
// subdirectory per artifact format:
//
//	<dir>/png/3f/9a1c….json
//	<dir>/svg/b0/77e2….json
//	<dir>/strike/…
//
// Entries record their key, format and timestamps, so the cache can be
// inspected and pruned per format. It backs the CLI's local cache.
type FileCache struct {
	dir string
	now func() time.Time
}

// NewFileCache creates a file cache rooted at dir, creating dir if needed.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir, now: time.Now}, nil
}

// Dir returns the root directory.
func (c *FileCache) Dir() string { return c.dir }

type fileEntry struct {
	Key       string    `json:"key"`
	Format    string    `json:"format"`
	StoredAt  time.Time `json:"stored_at"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
	Data      []byte    `json:"data"`
}

func (e fileEntry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// Get returns the artifact stored under key. Expired and unreadable entries
// are removed and reported as misses.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	entry, err := readEntry(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if errors.Is(err, errCorrupt) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if entry.Key != key || entry.expired(c.now()) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return entry.Data, true, nil
}

// Set stores data under key. The entry is written to a temporary file and
// renamed into place so readers never see a partial entry.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	now := c.now()
	entry := fileEntry{Key: key, Format: KeyFormat(key), StoredAt: now.UTC(), Data: data}
	if ttl > 0 {
		entry.ExpiresAt = now.Add(ttl).UTC()
	}
	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".entry-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Delete removes key. A missing entry is not an error.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Close implements Cache.
func (c *FileCache) Close() error { return nil }

// Filter selects entries for Prune. The zero Filter selects everything.
type Filter struct {
	// Formats limits pruning to these artifact formats; empty means all.
	Formats []string
	// ExpiredOnly keeps entries that have not expired yet.
	ExpiredOnly bool
}

// Prune deletes the entries selected by f and returns how many were removed.
// Unreadable entries in a selected format are always removed. Emptied
// subdirectories are removed; the root directory is kept.
func (c *FileCache) Prune(f Filter) (int, error) {
	removed := 0
	err := c.walk(f.Formats, func(path string, entry fileEntry, err error) {
		if f.ExpiredOnly && err == nil && !entry.expired(c.now()) {
			return
		}
		if os.Remove(path) == nil {
			removed++
		}
	})
	if err != nil {
		return removed, err
	}
	c.removeEmptyDirs()
	return removed, nil
}

// Usage summarizes the stored entries of one format.
type Usage struct {
	Format  string
	Entries int
	Expired int
	Bytes   int64
}

// Usage reports per-format totals sorted by format.
func (c *FileCache) Usage() ([]Usage, error) {
	byFormat := make(map[string]*Usage)
	err := c.walk(nil, func(path string, entry fileEntry, err error) {
		format := filepath.Base(filepath.Dir(filepath.Dir(path)))
		u, ok := byFormat[format]
		if !ok {
			u = &Usage{Format: format}
			byFormat[format] = u
		}
		u.Entries++
		if err != nil || entry.expired(c.now()) {
			u.Expired++
		}
		if info, statErr := os.Stat(path); statErr == nil {
			u.Bytes += info.Size()
		}
	})
	if err != nil {
		return nil, err
	}

	out := make([]Usage, 0, len(byFormat))
	for _, u := range byFormat {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Format < out[j].Format })
	return out, nil
}

// walk visits every entry file of the given formats (all when empty).
// A missing root is empty.
func (c *FileCache) walk(formats []string, visit func(path string, entry fileEntry, err error)) error {
	dirs, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, d := range dirs {
		if !d.IsDir() || (len(formats) > 0 && !slices.Contains(formats, d.Name())) {
			continue
		}
		root := filepath.Join(c.dir, d.Name())
		err := filepath.WalkDir(root, func(path string, de fs.DirEntry, err error) error {
			if err != nil || de.IsDir() || !strings.HasSuffix(path, ".json") {
				return nil
			}
			entry, readErr := readEntry(path)
			visit(path, entry, readErr)
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *FileCache) removeEmptyDirs() {
	var dirs []string
	_ = filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err == nil && d.IsDir() && path != c.dir {
			dirs = append(dirs, path)
		}
		return nil
	})
	// Deepest first; non-empty directories fail to remove and are kept.
	for i := len(dirs) - 1; i >= 0; i-- {
		_ = os.Remove(dirs[i])
	}
}

// path maps key to <dir>/<format>/<h[:2]>/<h[2:]>.json.
func (c *FileCache) path(key string) string {
	h := Hash([]byte(key))
	return filepath.Join(c.dir, KeyFormat(key), h[:2], h[2:]+".json")
}

var errCorrupt = errors.New("corrupt cache entry")

func readEntry(path string) (fileEntry, error) {
	var entry fileEntry
	b, err := os.ReadFile(path)
	if err != nil {
		return entry, err
	}
	if err := json.Unmarshal(b, &entry); err != nil {
		return entry, errCorrupt
	}
	return entry, nil
}

var _ Cache = (*FileCache)(nil)
