package sheetorm

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

type cacheEntry struct {
	rangeKey   string
	payload    [][]string
	insertedAt time.Time
}

// CachedStore wraps a Store with a time-bounded, size-bounded read cache.
// Entries are keyed by the exact range string requested. Any write-class
// call invalidates every cached entry for the written table, whatever the
// sub-range, since the store cannot know which cached reads a write affects.
//
// Eviction is by insertion order, not access order. There is no negative
// caching and no stampede protection: concurrent reads for an absent key
// each hit the backend.
type CachedStore struct {
	store   Store
	ttl     time.Duration
	maxSize int
	logger  *slog.Logger

	mu      sync.Mutex
	entries map[string]*cacheEntry
	order   []string
}

// NewCachedStore wraps store according to cfg. A nil cfg uses
// DefaultConfig; a zero or negative CacheTTL disables caching entirely.
func NewCachedStore(store Store, cfg *Config) *CachedStore {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	maxSize := cfg.MaxCacheSize
	if maxSize <= 0 {
		maxSize = DefaultMaxCacheSize
	}
	return &CachedStore{
		store:   store,
		ttl:     cfg.CacheTTL,
		maxSize: maxSize,
		logger:  logger,
		entries: make(map[string]*cacheEntry),
	}
}

// ReadRange serves a live cached entry when possible, otherwise reads from
// the backend and caches the result.
func (c *CachedStore) ReadRange(ctx context.Context, rng string) ([][]string, error) {
	if c.ttl > 0 {
		c.mu.Lock()
		if e, ok := c.entries[rng]; ok && time.Since(e.insertedAt) < c.ttl {
			payload := copyMatrix(e.payload)
			c.mu.Unlock()
			c.logger.Debug("cache hit", "range", rng)
			return payload, nil
		}
		c.mu.Unlock()
	}

	rows, err := c.store.ReadRange(ctx, rng)
	if err != nil {
		return nil, err
	}

	if c.ttl > 0 {
		c.mu.Lock()
		c.insert(rng, rows)
		c.mu.Unlock()
	}
	return rows, nil
}

// AppendRows writes through and invalidates the table's cached reads.
func (c *CachedStore) AppendRows(ctx context.Context, rng string, rows [][]string) error {
	err := c.store.AppendRows(ctx, rng, rows)
	c.invalidateTable(TableOfRange(rng))
	return err
}

// OverwriteRange writes through and invalidates the table's cached reads.
func (c *CachedStore) OverwriteRange(ctx context.Context, rng string, rows [][]string) error {
	err := c.store.OverwriteRange(ctx, rng, rows)
	c.invalidateTable(TableOfRange(rng))
	return err
}

// ClearRange writes through and invalidates the table's cached reads.
func (c *CachedStore) ClearRange(ctx context.Context, rng string) error {
	err := c.store.ClearRange(ctx, rng)
	c.invalidateTable(TableOfRange(rng))
	return err
}

// CreateTable writes through and invalidates the table's cached reads.
func (c *CachedStore) CreateTable(ctx context.Context, name string) error {
	err := c.store.CreateTable(ctx, name)
	c.invalidateTable(name)
	return err
}

// Size returns the number of live-or-expired entries currently held.
func (c *CachedStore) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// insert stores a payload under rng, evicting the oldest-inserted entry when
// the bound would be exceeded. Callers hold c.mu.
func (c *CachedStore) insert(rng string, rows [][]string) {
	if _, ok := c.entries[rng]; !ok {
		for len(c.entries) >= c.maxSize && len(c.order) > 0 {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
			c.logger.Debug("cache evict", "range", oldest)
		}
		c.order = append(c.order, rng)
	}
	c.entries[rng] = &cacheEntry{
		rangeKey:   rng,
		payload:    copyMatrix(rows),
		insertedAt: time.Now(),
	}
}

func (c *CachedStore) invalidateTable(table string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.order[:0]
	for _, key := range c.order {
		if TableOfRange(key) == table {
			delete(c.entries, key)
		} else {
			kept = append(kept, key)
		}
	}
	c.order = kept
	c.logger.Debug("cache invalidate", "table", table)
}

func copyMatrix(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = make([]string, len(row))
		copy(out[i], row)
	}
	return out
}
