// Package cache stores fully-ranked match result lists keyed by the
// normalized query, so repeated searches serve page slices without
// recomputing the pipeline.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/job-matcher/internal/types"
)

// reviewKeyLength bounds how much of the review text participates in the
// cache key. Texts differing only past this prefix share an entry.
const reviewKeyLength = 200

// Query is the normalized shape of one search for keying purposes.
type Query struct {
	Skills          []string
	Location        string
	Category        string
	Level           string
	ReviewText      string
	Method          string
	CheckSkills     bool
	CheckLocation   bool
	CheckExperience bool
}

// Key returns a stable digest of the query. Skill order and review-text
// case do not affect the key.
func (q Query) Key() string {
	skills := append([]string(nil), q.Skills...)
	for i, s := range skills {
		skills[i] = strings.ToLower(strings.TrimSpace(s))
	}
	sort.Strings(skills)

	review := strings.ToLower(q.ReviewText)
	if len(review) > reviewKeyLength {
		review = review[:reviewKeyLength]
	}

	parts := []string{
		strings.Join(skills, ","),
		strings.ToLower(q.Location),
		strings.ToLower(q.Category),
		strings.ToLower(q.Level),
		review,
		q.Method,
		strconv.FormatBool(q.CheckSkills),
		strconv.FormatBool(q.CheckLocation),
		strconv.FormatBool(q.CheckExperience),
	}
	sum := md5.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// Config holds the cache retention knobs.
type Config struct {
	// TTL is how long an entry may be served.
	TTL time.Duration
	// SweepInterval is how often the background sweep runs.
	SweepInterval time.Duration
	// Capacity is the entry count that triggers insertion-order eviction.
	Capacity int
	// EvictFraction is the share of oldest entries dropped on overflow.
	EvictFraction float64
}

// DefaultConfig returns the reference retention tuning.
func DefaultConfig() Config {
	return Config{
		TTL:           30 * time.Minute,
		SweepInterval: 5 * time.Minute,
		Capacity:      100,
		EvictFraction: 0.3,
	}
}

type entry struct {
	results    []types.MatchResult
	storedAt   time.Time
	lastAccess time.Time
	hits       int
}

// EntryInfo exposes an entry's bookkeeping for inspection.
type EntryInfo struct {
	StoredAt   time.Time
	LastAccess time.Time
	Hits       int
}

// Cache is a TTL-bounded result store. All methods are safe for concurrent
// use. Concurrent misses on the same key may compute redundantly; results
// are idempotent so the race is benign.
type Cache struct {
	cfg    Config
	logger *zap.Logger

	mu      sync.Mutex
	entries map[string]entry
	order   []string // insertion order, oldest first

	stopOnce sync.Once
	stop     chan struct{}
}

// New builds a cache. Start must be called for TTL sweeping to happen;
// without it entries still expire lazily on read.
func New(cfg Config, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = def.SweepInterval
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = def.Capacity
	}
	if cfg.EvictFraction <= 0 || cfg.EvictFraction > 1 {
		cfg.EvictFraction = def.EvictFraction
	}
	return &Cache{
		cfg:     cfg,
		logger:  logger,
		entries: make(map[string]entry),
		stop:    make(chan struct{}),
	}
}

// Start launches the background sweep. It returns immediately; the sweep
// stops when ctx is done or Stop is called.
func (c *Cache) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(c.cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if removed := c.sweep(time.Now()); removed > 0 {
					c.logger.Debug("cache sweep", zap.Int("removed", removed))
				}
			case <-ctx.Done():
				return
			case <-c.stop:
				return
			}
		}
	}()
}

// Stop terminates the background sweep. Safe to call more than once.
func (c *Cache) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// Get returns the full ranked list for a key, or false when absent or
// expired. Expired entries found on read are removed immediately.
func (c *Cache) Get(key string) ([]types.MatchResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Since(e.storedAt) > c.cfg.TTL {
		c.removeLocked(key)
		return nil, false
	}
	// Access bookkeeping; expiry stays anchored to storedAt.
	e.lastAccess = time.Now()
	e.hits++
	c.entries[key] = e
	return e.results, true
}

// Info reports an entry's bookkeeping without counting as an access.
func (c *Cache) Info(key string) (EntryInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return EntryInfo{}, false
	}
	return EntryInfo{StoredAt: e.storedAt, LastAccess: e.lastAccess, Hits: e.hits}, true
}

// Put stores the full ranked list for a key, evicting the oldest entries
// when the capacity bound is exceeded.
func (c *Cache) Put(key string, results []types.MatchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.removeOrderLocked(key)
	}
	now := time.Now()
	c.entries[key] = entry{results: results, storedAt: now, lastAccess: now}
	c.order = append(c.order, key)

	if len(c.entries) > c.cfg.Capacity {
		c.evictOldestLocked()
	}
}

// GetOrCompute serves a hit or runs compute and stores its result. The
// second return reports whether the result came from the cache.
func (c *Cache) GetOrCompute(ctx context.Context, key string, compute func(context.Context) ([]types.MatchResult, error)) ([]types.MatchResult, bool, error) {
	if results, ok := c.Get(key); ok {
		return results, true, nil
	}
	results, err := compute(ctx)
	if err != nil {
		return nil, false, err
	}
	c.Put(key, results)
	return results, false, nil
}

// Len reports the live entry count.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Page slices a ranked list for one page, copying the slice so callers can
// annotate per-request fields without mutating the cached entries. Pages
// are 1-based; out-of-range pages come back empty.
func Page(results []types.MatchResult, page, perPage int) []types.MatchResult {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		return nil
	}
	start := (page - 1) * perPage
	if start >= len(results) {
		return nil
	}
	end := start + perPage
	if end > len(results) {
		end = len(results)
	}
	out := make([]types.MatchResult, end-start)
	copy(out, results[start:end])
	return out
}

// sweep removes every entry older than the TTL and returns how many went.
func (c *Cache) sweep(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if now.Sub(e.storedAt) > c.cfg.TTL {
			c.removeLocked(key)
			removed++
		}
	}
	return removed
}

// evictOldestLocked drops the oldest EvictFraction of entries by insertion
// order, regardless of TTL.
func (c *Cache) evictOldestLocked() {
	n := int(float64(c.cfg.Capacity) * c.cfg.EvictFraction)
	if n < 1 {
		n = 1
	}
	if n > len(c.order) {
		n = len(c.order)
	}
	victims := append([]string(nil), c.order[:n]...)
	for _, key := range victims {
		c.removeLocked(key)
	}
	c.logger.Debug("cache capacity eviction", zap.Int("evicted", len(victims)))
}

func (c *Cache) removeLocked(key string) {
	delete(c.entries, key)
	c.removeOrderLocked(key)
}

func (c *Cache) removeOrderLocked(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
