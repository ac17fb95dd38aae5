// Package persist keeps the durable mirror of oasis transforms: a single
// JSON snapshot on a hackpadfs filesystem (the OS on desktop, IndexedDB in
// the browser, memory in tests), written through a trailing debouncer.
package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"

	"github.com/hack-pad/hackpadfs"
	osfs "github.com/hack-pad/hackpadfs/os"

	"oasis-map/internal/layout"
)

// DefaultName is the snapshot file name inside the cache filesystem.
const DefaultName = "oasis-layout.json"

// Cache reads and writes the transform snapshot.
type Cache struct {
	fsys hackpadfs.FS
	name string
	log  *slog.Logger
}

// New returns a cache storing its snapshot as name inside fsys.
func New(fsys hackpadfs.FS, name string, log *slog.Logger) *Cache {
	if name == "" {
		name = DefaultName
	}
	if log == nil {
		log = slog.Default()
	}
	return &Cache{fsys: fsys, name: name, log: log}
}

// OpenDir returns a cache rooted at the OS directory dir, creating it.
func OpenDir(dir string, log *slog.Logger) (*Cache, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("persist: %s: %w", dir, err)
	}
	root := osfs.NewFS()
	p, err := root.FromOSPath(abs)
	if err != nil {
		return nil, fmt.Errorf("persist: %s: %w", dir, err)
	}
	if err := hackpadfs.MkdirAll(root, p, 0o755); err != nil {
		return nil, fmt.Errorf("persist: create %s: %w", dir, err)
	}
	sub, err := root.Sub(p)
	if err != nil {
		return nil, fmt.Errorf("persist: open %s: %w", dir, err)
	}
	return New(sub, DefaultName, log), nil
}

// Load reads the snapshot as a map keyed by id. A missing or unreadable
// snapshot is an empty cache; it is logged, never returned as an error, so
// scene construction always proceeds with default placements.
func (c *Cache) Load() map[string]layout.Placement {
	out := map[string]layout.Placement{}
	data, err := hackpadfs.ReadFile(c.fsys, c.name)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.log.Warn("persist: reading layout cache, starting empty", "file", c.name, "err", err)
		}
		return out
	}
	var entries []layout.Placement
	if err := json.Unmarshal(data, &entries); err != nil {
		c.log.Warn("persist: malformed layout cache, starting empty", "file", c.name, "err", err)
		return out
	}
	for _, p := range entries {
		if p.ID == "" {
			continue
		}
		out[p.ID] = p
	}
	return out
}

// Save writes entities as a full snapshot, replacing the previous one.
func (c *Cache) Save(entities []layout.Entity) error {
	entries := make([]layout.Placement, 0, len(entities))
	for _, e := range entities {
		entries = append(entries, e.Placement())
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("persist: encode: %w", err)
	}
	if dir := path.Dir(c.name); dir != "." {
		if err := hackpadfs.MkdirAll(c.fsys, dir, 0o755); err != nil {
			return fmt.Errorf("persist: %w", err)
		}
	}
	if err := hackpadfs.WriteFullFile(c.fsys, c.name, data, 0o644); err != nil {
		return fmt.Errorf("persist: write %s: %w", c.name, err)
	}
	return nil
}
