package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/allegro/bigcache/v3"
	"go.uber.org/zap"
)

// Config defines prediction cache tuning.
type Config struct {
	Shards          int           `yaml:"shards"`
	TTL             time.Duration `yaml:"ttl"`
	MaxSizeMB       int           `yaml:"max_size_mb"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits        uint64 `json:"hits"`
	Misses      uint64 `json:"misses"`
	Sets        uint64 `json:"sets"`
	SharedWaits uint64 `json:"shared_waits"`
}

// PredictionCache memoizes expensive computations by key. Stored values
// are opaque serialized payloads held in a bigcache store; an in-flight
// registry guarantees a single computation per key under concurrent
// misses, with all concurrent callers sharing the one result.
type PredictionCache struct {
	logger *zap.Logger
	store  *bigcache.BigCache

	mu       sync.Mutex
	inflight map[string]*call

	hits        atomic.Uint64
	misses      atomic.Uint64
	sets        atomic.Uint64
	sharedWaits atomic.Uint64
}

// call is one in-flight computation shared by every concurrent caller of
// its key.
type call struct {
	done    chan struct{}
	payload []byte
	err     error
}

// New creates a prediction cache.
func New(logger *zap.Logger, cfg Config) (*PredictionCache, error) {
	if cfg.Shards == 0 {
		cfg.Shards = 64
	}
	if cfg.TTL == 0 {
		cfg.TTL = 15 * time.Minute
	}
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 64
	}
	if cfg.CleanupInterval == 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}

	store, err := bigcache.New(context.Background(), bigcache.Config{
		Shards:             cfg.Shards,
		LifeWindow:         cfg.TTL,
		CleanWindow:        cfg.CleanupInterval,
		MaxEntriesInWindow: 1000,
		MaxEntrySize:       4096,
		HardMaxCacheSize:   cfg.MaxSizeMB,
	})
	if err != nil {
		return nil, fmt.Errorf("creating cache store: %w", err)
	}

	return &PredictionCache{
		logger:   logger,
		store:    store,
		inflight: make(map[string]*call),
	}, nil
}

// GetOrCompute returns the cached payload for key, or runs compute exactly
// once per concurrent-miss group, caches a successful result and returns
// it. Failed computations are never cached. The second return reports a
// cache hit. Waiters abandoning on ctx cancellation leave the computation
// running; its result is still cached for later callers.
func (c *PredictionCache) GetOrCompute(ctx context.Context, key string, compute func() ([]byte, error)) ([]byte, bool, error) {
	if payload, err := c.store.Get(key); err == nil {
		c.hits.Add(1)
		return payload, true, nil
	}

	c.mu.Lock()
	if existing, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		c.sharedWaits.Add(1)
		return c.wait(ctx, existing)
	}
	cl := &call{done: make(chan struct{})}
	c.inflight[key] = cl
	c.mu.Unlock()
	c.misses.Add(1)

	go func() {
		defer close(cl.done)
		defer func() {
			if r := recover(); r != nil {
				cl.err = fmt.Errorf("cache compute panic: %v", r)
			}
			c.mu.Lock()
			delete(c.inflight, key)
			c.mu.Unlock()
			if cl.err == nil {
				if err := c.store.Set(key, cl.payload); err != nil {
					c.logger.Warn("failed to cache result", zap.String("key", key), zap.Error(err))
				} else {
					c.sets.Add(1)
				}
			}
		}()
		cl.payload, cl.err = compute()
	}()

	return c.wait(ctx, cl)
}

func (c *PredictionCache) wait(ctx context.Context, cl *call) ([]byte, bool, error) {
	select {
	case <-cl.done:
		return cl.payload, false, cl.err
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// Delete removes one key from the store.
func (c *PredictionCache) Delete(key string) {
	_ = c.store.Delete(key)
}

// Reset clears the store.
func (c *PredictionCache) Reset() error {
	return c.store.Reset()
}

// Stats returns a snapshot of the cache counters.
func (c *PredictionCache) Stats() Stats {
	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Sets:        c.sets.Load(),
		SharedWaits: c.sharedWaits.Load(),
	}
}

// Close releases the underlying store.
func (c *PredictionCache) Close() error {
	return c.store.Close()
}
