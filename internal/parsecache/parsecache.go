// Package parsecache is the Parse Cache: a per-file fingerprint-keyed
// store of previously extracted ParseResults, persisted to disk with the
// same atomic-write, reset-on-corruption discipline as the Index cache.
package parsecache

import (
	"fmt"
	"sync"

	"github.com/nullpx/pypm/internal/cache"
	"github.com/nullpx/pypm/internal/domain"
)

// fileEntry is the on-disk shape of one cached ParseResult, keyed by the
// full (path, size, mtime) fingerprint -- no content hashing.
type fileEntry struct {
	Size         int64    `json:"size"`
	ModTimeNanos int64    `json:"mtime"`
	Runtime      []string `json:"runtime,omitempty"`
	Typing       []string `json:"typing,omitempty"`
	Dynamic      []string `json:"dynamic,omitempty"`
}

type onDisk struct {
	Version int                  `json:"version"`
	Entries map[string]fileEntry `json:"entries"`
}

const schemaVersion = 1

// Cache is a concurrency-safe, disk-backed Parse Cache. Zero value is not
// usable; construct with Load.
type Cache struct {
	mu      sync.Mutex
	path    string
	entries map[string]fileEntry
	dirty   bool
}

// Load reads the cache file at path, if present. A missing, corrupt, or
// schema-mismatched file results in an empty cache rather than an error.
func Load(path string) *Cache {
	c := &Cache{path: path, entries: make(map[string]fileEntry)}

	var disk onDisk
	ok, corrupt := cache.LoadJSON(path, &disk)
	if corrupt {
		return c // corrupt cache resets to empty
	}
	if ok && disk.Version == schemaVersion && disk.Entries != nil {
		c.entries = disk.Entries
	}
	return c
}

// Get looks up a previously parsed result by fingerprint.
func (c *Cache) Get(fp domain.FileFingerprint) (domain.ParseResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[fp.Path]
	if !ok || e.Size != fp.Size || e.ModTimeNanos != fp.ModTimeNanos {
		return domain.ParseResult{}, false
	}
	return domain.ParseResult{
		Runtime: toModuleNames(e.Runtime),
		Typing:  toModuleNames(e.Typing),
		Dynamic: toModuleNames(e.Dynamic),
	}, true
}

// Put stores a parsed result under its fingerprint.
func (c *Cache) Put(fp domain.FileFingerprint, result domain.ParseResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[fp.Path] = fileEntry{
		Size:         fp.Size,
		ModTimeNanos: fp.ModTimeNanos,
		Runtime:      toStrings(result.Runtime),
		Typing:       toStrings(result.Typing),
		Dynamic:      toStrings(result.Dynamic),
	}
	c.dirty = true
}

// Save persists the cache to disk atomically, if anything changed since
// Load. Called once, single-threaded, at process exit; never on cancel.
func (c *Cache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.dirty {
		return nil
	}
	disk := onDisk{Version: schemaVersion, Entries: c.entries}
	if err := cache.SaveAtomic(c.path, disk); err != nil {
		return fmt.Errorf("save parse cache: %w", err)
	}
	c.dirty = false
	return nil
}

func toStrings(names []domain.ModuleName) []string {
	if len(names) == 0 {
		return nil
	}
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = string(n)
	}
	return out
}

func toModuleNames(names []string) []domain.ModuleName {
	if len(names) == 0 {
		return nil
	}
	out := make([]domain.ModuleName, len(names))
	for i, n := range names {
		out[i] = domain.ModuleName(n)
	}
	return out
}
