package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/devdiary/devdiary/internal/domain"
)

// unavailableMarker identifies cache entries written by older versions that
// cached failure fallbacks verbatim. PurgeBad removes them so classification
// can be re-attempted.
const unavailableMarker = "summary unavailable"

// FileCache implements port.ClassificationCache on a flat JSON file mapping
// commit hash to classification. The mutex keeps it safe under the
// serve-mode job runner; within one scan access is strictly sequential.
type FileCache struct {
	mu      sync.Mutex
	path    string
	entries map[string]domain.Classification
}

// NewFileCache opens (or initializes) the cache at path. A missing or
// corrupted backing file yields an empty cache, never an error. Entries
// carrying the unavailable marker are purged on load.
func NewFileCache(path string) *FileCache {
	c := &FileCache{
		path:    path,
		entries: loadEntries(path),
	}
	if n := c.purgeLocked(); n > 0 {
		slog.Info("purged stale cache entries", "count", n, "path", path)
		if err := c.saveLocked(); err != nil {
			slog.Warn("cache save after purge failed", "error", err)
		}
	}
	return c
}

// loadEntries reads the backing file, returning an empty mapping on any
// failure so the system always has a usable cache.
func loadEntries(path string) map[string]domain.Classification {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("cache unreadable, starting fresh", "path", path, "error", err)
		}
		return make(map[string]domain.Classification)
	}

	entries := make(map[string]domain.Classification)
	if err := json.Unmarshal(data, &entries); err != nil {
		slog.Warn("cache corrupted, starting fresh", "path", path, "error", err)
		return make(map[string]domain.Classification)
	}
	// A file holding the JSON literal null unmarshals cleanly into a nil map.
	if entries == nil {
		return make(map[string]domain.Classification)
	}
	return entries
}

// Get returns the cached classification for a hash, if present.
func (c *FileCache) Get(hash string) (domain.Classification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[hash]
	return entry, ok
}

// Put stores a classification and persists the whole mapping immediately.
func (c *FileCache) Put(hash string, entry domain.Classification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[hash] = entry
	return c.saveLocked()
}

// PurgeBad removes entries whose bullet carries the unavailable marker and
// persists the result. It returns the number of entries removed and is
// idempotent.
func (c *FileCache) PurgeBad() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.purgeLocked()
	if n > 0 {
		if err := c.saveLocked(); err != nil {
			slog.Warn("cache save after purge failed", "error", err)
		}
	}
	return n
}

func (c *FileCache) purgeLocked() int {
	n := 0
	for hash, entry := range c.entries {
		if strings.Contains(entry.Bullet, unavailableMarker) {
			delete(c.entries, hash)
			n++
		}
	}
	return n
}

// Len returns the number of cached classifications.
func (c *FileCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Path returns the backing file location.
func (c *FileCache) Path() string { return c.path }

func (c *FileCache) saveLocked() error {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cache dir: %w", err)
		}
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	return nil
}
