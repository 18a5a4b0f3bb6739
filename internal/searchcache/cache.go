// Package searchcache memoizes vocabulary search results. Entries are keyed
// by the store generation, so a mutation makes every older entry
// unreachable even before the explicit flush completes.
package searchcache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/vocabulary"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/resilience"
)

const keyPrefix = "tagsearch:"

// Backend stores encoded results.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	FlushPrefix(ctx context.Context, prefix string) (int64, error)
}

// Observer receives hit and miss notifications.
type Observer interface {
	CacheHit()
	CacheMiss()
}

type Options struct {
	TTL time.Duration
	// Namespace separates instances sharing one backend; their generations
	// are unrelated.
	Namespace string
	// OpTimeout bounds each backend call; a slow backend is treated as a
	// miss.
	OpTimeout time.Duration
	Observer  Observer
}

type Cache struct {
	backend Backend
	opts    Options
	prefix  string
	group   singleflight.Group
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

func New(backend Backend, opts Options) *Cache {
	if opts.OpTimeout <= 0 {
		opts.OpTimeout = 250 * time.Millisecond
	}
	return &Cache{
		backend: backend,
		opts:    opts,
		prefix:  keyPrefix + opts.Namespace + ":",
		logger:  slog.Default().With("component", "search-cache"),
	}
}

// GetOrCompute returns cached matches for (query, limit, generation) or
// computes, stores and returns them. Concurrent identical misses share one
// computation. cached reports whether the result came from the backend.
func (c *Cache) GetOrCompute(
	ctx context.Context,
	query string,
	limit int,
	generation uint64,
	compute func() []vocabulary.Match,
) (matches []vocabulary.Match, cached bool) {
	key := c.buildKey(query, limit, generation)
	if m, ok := c.get(ctx, key); ok {
		return m, true
	}
	val, _, _ := c.group.Do(key, func() (any, error) {
		if m, ok := c.get(ctx, key); ok {
			return m, nil
		}
		m := compute()
		c.set(ctx, key, m)
		return m, nil
	})
	return val.([]vocabulary.Match), false
}

// Invalidate drops every entry of this namespace.
func (c *Cache) Invalidate(ctx context.Context) error {
	var deleted int64
	err := resilience.WithTimeout(ctx, 5*c.opts.OpTimeout, "cache flush", func(ctx context.Context) error {
		var err error
		deleted, err = c.backend.FlushPrefix(ctx, c.prefix)
		return err
	})
	if err != nil {
		return fmt.Errorf("invalidating search cache: %w", err)
	}
	c.logger.Debug("cache invalidated", "keys_deleted", deleted)
	return nil
}

func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *Cache) get(ctx context.Context, key string) ([]vocabulary.Match, bool) {
	var (
		data  []byte
		found bool
	)
	err := resilience.WithTimeout(ctx, c.opts.OpTimeout, "cache get", func(ctx context.Context) error {
		var err error
		data, found, err = c.backend.Get(ctx, key)
		return err
	})
	if err != nil {
		c.logger.Warn("cache get failed", "key", key, "error", err)
		c.miss()
		return nil, false
	}
	if !found {
		c.miss()
		return nil, false
	}
	var m []vocabulary.Match
	if err := json.Unmarshal(data, &m); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.miss()
		return nil, false
	}
	c.hits.Add(1)
	if c.opts.Observer != nil {
		c.opts.Observer.CacheHit()
	}
	return m, true
}

func (c *Cache) set(ctx context.Context, key string, m []vocabulary.Match) {
	data, err := json.Marshal(m)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	err = resilience.WithTimeout(ctx, c.opts.OpTimeout, "cache set", func(ctx context.Context) error {
		return c.backend.Set(ctx, key, data, c.opts.TTL)
	})
	if err != nil {
		c.logger.Warn("cache set failed", "key", key, "error", err)
	}
}

func (c *Cache) miss() {
	c.misses.Add(1)
	if c.opts.Observer != nil {
		c.opts.Observer.CacheMiss()
	}
}

func (c *Cache) buildKey(query string, limit int, generation uint64) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	raw := fmt.Sprintf("%s|limit=%d|gen=%d", normalized, limit, generation)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", c.prefix, hash[:16])
}
