package index

import (
	"sync"
	"time"

	"github.com/nullpx/pypm/internal/cache"
	"github.com/nullpx/pypm/internal/domain"
)

const (
	cacheSchemaVersion = 1
	ttlExists          = 7 * 24 * time.Hour
	ttlAbsent          = 1 * time.Hour
)

type onDisk struct {
	Version int                          `json:"version"`
	Entries map[string]domain.CacheEntry `json:"entries"`
}

// Cache is a concurrency-safe, disk-backed store of distribution-name
// existence answers, distinct from the Parse Cache: it is keyed by
// distribution name rather than file fingerprint, and entries expire
// on a TTL rather than on content change. Existence answers are
// trusted longer than absence answers, since a name's first publish
// is the only way "absent" ever becomes stale.
type Cache struct {
	mu      sync.Mutex
	path    string
	entries map[string]domain.CacheEntry
	dirty   bool
	now     func() time.Time
}

// Load reads the index cache file at path, if present. A missing,
// corrupt, or schema-mismatched file results in an empty cache.
func Load(path string) *Cache {
	c := &Cache{path: path, entries: make(map[string]domain.CacheEntry), now: time.Now}

	var disk onDisk
	ok, corrupt := cache.LoadJSON(path, &disk)
	if corrupt {
		return c
	}
	if ok && disk.Version == cacheSchemaVersion && disk.Entries != nil {
		c.entries = disk.Entries
	}
	return c
}

// Get returns the cached answer for name, if present and unexpired.
func (c *Cache) Get(name domain.DistributionName) (domain.CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[string(name)]
	if !ok || e.Expired(c.now()) {
		return domain.CacheEntry{}, false
	}
	e.Key = name
	return e, true
}

// Put records exists for name, fetched now, with the default TTL for
// that answer's polarity.
func (c *Cache) Put(name domain.DistributionName, exists bool) {
	ttl := ttlAbsent
	if exists {
		ttl = ttlExists
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[string(name)] = domain.CacheEntry{
		Key:        name,
		Exists:     exists,
		FetchedAt:  c.now().Unix(),
		TTLSeconds: int64(ttl.Seconds()),
	}
	c.dirty = true
}

// Save persists the cache to disk atomically, if anything changed
// since Load. Called once, single-threaded, at process exit.
func (c *Cache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.dirty {
		return nil
	}
	disk := onDisk{Version: cacheSchemaVersion, Entries: c.entries}
	if err := cache.SaveAtomic(c.path, disk); err != nil {
		return err
	}
	c.dirty = false
	return nil
}
