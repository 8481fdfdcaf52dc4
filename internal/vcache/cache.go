// Package vcache persists verification results as a flat JSON object
// keyed by a stable per-candidate content hash. It is what makes batch
// runs resumable: a crashed run loses at most the entries since the last
// flush, and a rerun only processes the delta.
package vcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"PodcastCurator/internal/domain"
	"PodcastCurator/internal/logging"
)

// Key derives the cache key from candidate content rather than list
// position, so inserting or removing unrelated upstream candidates
// cannot re-attribute a cached result.
func Key(candidate domain.Candidate) string {
	sum := sha256.Sum256([]byte(candidate.Title + "|" + candidate.Author + "|" + candidate.FeedURL))
	return hex.EncodeToString(sum[:8])
}

// Cache is a single-writer persisted mapping from candidate key to the
// last verification result. Mutations stay in memory until Flush.
type Cache struct {
	path   string
	logger *slog.Logger

	mu      sync.RWMutex
	entries map[string]domain.CacheEntry
}

// Load reads the cache file at path. A missing or corrupt file degrades
// to an empty cache with a warning; only a genuinely unreadable file is
// worth failing a run for, and even that is left to the first Flush.
func Load(path string, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = logging.Nop()
	}

	c := &Cache{
		path:    path,
		logger:  logger,
		entries: make(map[string]domain.CacheEntry),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("cannot read verification cache, starting empty",
				"path", path, "error", err)
		}
		return c
	}
	if len(data) == 0 {
		return c
	}

	var entries map[string]domain.CacheEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		logger.Warn("corrupt verification cache, starting empty",
			"path", path, "error", err)
		return c
	}

	c.entries = entries
	logger.Debug("loaded verification cache", "path", path, "entries", len(entries))
	return c
}

// Has reports whether a key was already verified.
func (c *Cache) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[key]
	return ok
}

// Get returns the cached entry for key.
func (c *Cache) Get(key string) (domain.CacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	return entry, ok
}

// Put records a new entry. An existing key is never silently
// overwritten; recomputation must go through Replace.
func (c *Cache) Put(key string, entry domain.CacheEntry) error {
	if key == "" {
		return errors.New("cache key cannot be empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		return fmt.Errorf("cache key %q already present", key)
	}
	c.entries[key] = entry
	return nil
}

// Replace explicitly overwrites (or inserts) an entry.
func (c *Cache) Replace(key string, entry domain.CacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Entries returns a copy of the mapping.
func (c *Cache) Entries() map[string]domain.CacheEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]domain.CacheEntry, len(c.entries))
	for k, v := range c.entries {
		out[k] = v
	}
	return out
}

// Flush rewrites the whole cache file atomically via a temp file and
// rename. A flush failure is a data-loss risk and must surface to the
// caller, never be swallowed.
func (c *Cache) Flush() error {
	c.mu.RLock()
	data, err := json.MarshalIndent(c.entries, "", "  ")
	count := len(c.entries)
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cache directory: %w", err)
		}
	}

	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp cache file: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp cache file: %w", err)
	}

	c.logger.Debug("flushed verification cache", "path", c.path, "entries", count)
	return nil
}
