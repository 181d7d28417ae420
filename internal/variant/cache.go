package variant

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Source resolves one HGVS expression. *Validator is the production source.
type Source interface {
	Validate(ctx context.Context, hgvs, transcript string) (*HgvsVariant, error)
}

// cached is one memoized outcome. Validation failures are memoized too so a
// malformed variant triggers at most one network call per process lifetime.
type cached struct {
	Variant *HgvsVariant `json:"variant,omitempty"`
	Err     string       `json:"err,omitempty"`
}

// Cache is a read-through cache in front of a Source: an in-memory LRU layer
// backed by an optional sqlite table that survives restarts.
type Cache struct {
	mu      sync.Mutex
	source  Source
	memory  *lru.Cache[string, cached]
	db      *sql.DB
	metrics *Metrics
}

const cacheSchema = `CREATE TABLE IF NOT EXISTS variant_cache (
	cache_key TEXT PRIMARY KEY,
	payload   TEXT NOT NULL
)`

// NewCache builds a cache of the given in-memory capacity. db may be nil for
// a purely in-memory cache; metrics may be nil.
func NewCache(source Source, capacity int, db *sql.DB, metrics *Metrics) (*Cache, error) {
	memory, err := lru.New[string, cached](capacity)
	if err != nil {
		return nil, fmt.Errorf("variant cache: %w", err)
	}
	if db != nil {
		if _, err := db.Exec(cacheSchema); err != nil {
			return nil, fmt.Errorf("variant cache schema: %w", err)
		}
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Cache{source: source, memory: memory, db: db, metrics: metrics}, nil
}

func cacheKey(hgvs, transcript string) string {
	return transcript + ":" + hgvs
}

// Validate returns the memoized outcome for the variant, calling the source
// at most once per distinct key.
func (c *Cache) Validate(ctx context.Context, hgvs, transcript string) (*HgvsVariant, error) {
	key := cacheKey(hgvs, transcript)
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.memory.Get(key); ok {
		c.metrics.Hits.Inc()
		return entry.result()
	}
	if entry, ok, err := c.load(ctx, key); err != nil {
		return nil, err
	} else if ok {
		c.metrics.Hits.Inc()
		c.memory.Add(key, entry)
		return entry.result()
	}

	c.metrics.Misses.Inc()
	variant, err := c.source.Validate(ctx, hgvs, transcript)
	entry := cached{Variant: variant}
	if err != nil {
		c.metrics.Failures.Inc()
		entry = cached{Err: err.Error()}
	}
	c.memory.Add(key, entry)
	if err := c.store(ctx, key, entry); err != nil {
		return nil, err
	}
	return entry.result()
}

func (e cached) result() (*HgvsVariant, error) {
	if e.Err != "" {
		return nil, errors.New(e.Err)
	}
	return e.Variant, nil
}

func (c *Cache) load(ctx context.Context, key string) (cached, bool, error) {
	if c.db == nil {
		return cached{}, false, nil
	}
	var payload string
	err := c.db.QueryRowContext(ctx, `SELECT payload FROM variant_cache WHERE cache_key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return cached{}, false, nil
	}
	if err != nil {
		return cached{}, false, fmt.Errorf("variant cache read: %w", err)
	}
	var entry cached
	if err := json.Unmarshal([]byte(payload), &entry); err != nil {
		return cached{}, false, fmt.Errorf("variant cache decode: %w", err)
	}
	return entry, true, nil
}

func (c *Cache) store(ctx context.Context, key string, entry cached) error {
	if c.db == nil {
		return nil
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("variant cache encode: %w", err)
	}
	if _, err := c.db.ExecContext(ctx,
		`INSERT INTO variant_cache (cache_key, payload) VALUES (?, ?)
		 ON CONFLICT (cache_key) DO UPDATE SET payload = excluded.payload`,
		key, string(payload)); err != nil {
		return fmt.Errorf("variant cache write: %w", err)
	}
	return nil
}
