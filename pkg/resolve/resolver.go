// Package resolve orchestrates glyph resolution across the cache tiers:
// memory, failure ledger, disk, then network. Every failure mode degrades to
// "no image available"; the caller is expected to fall back to the glyph's
// textual form rather than abort rendering.
package resolve

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/glyphkit/glyphcache/pkg/cache"
	"github.com/glyphkit/glyphcache/pkg/fetch"
	"github.com/glyphkit/glyphcache/pkg/glyph"
)

// Fetcher retrieves glyph images from the network. Implemented by
// fetch.Fetcher; tests substitute counting or blocking fakes.
type Fetcher interface {
	Fetch(ctx context.Context, key glyph.Key) ([]byte, error)
}

// Resolver is the public entry point of the subsystem. It is safe for
// concurrent use; concurrent resolutions of the same key are coalesced so at
// most one fetch per key is in flight at a time.
type Resolver struct {
	memory    *cache.Memory
	failures  *cache.FailureLedger
	disk      *cache.Disk
	fetcher   Fetcher
	group     singleflight.Group
	failedTTL time.Duration
	now       func() time.Time
}

// New creates a resolver with a network fetcher built from cfg.
func New(cfg Config) *Resolver {
	cfg = cfg.withDefaults()
	return NewWithFetcher(cfg, fetch.New(cfg.Endpoints, cfg.Timeout))
}

// NewWithFetcher creates a resolver using the supplied fetcher. Useful for
// custom transports and for tests.
func NewWithFetcher(cfg Config, fetcher Fetcher) *Resolver {
	cfg = cfg.withDefaults()
	return &Resolver{
		memory:    cache.NewMemory(cfg.MemoryCapacity),
		failures:  cache.NewFailureLedger(cfg.FailureCapacity),
		disk:      cache.NewDisk(cfg.CacheDir),
		fetcher:   fetcher,
		failedTTL: cfg.FailedTTL,
		now:       time.Now,
	}
}

// Resolve returns the image bytes for the glyph sequence at the given size,
// or false when the glyph is unavailable. It never returns an error: cache
// misses fall through, disk corruption reads as a miss, and fetch exhaustion
// is memoized so repeat requests inside the failure window cost a single
// in-memory lookup instead of a network round trip.
func (r *Resolver) Resolve(ctx context.Context, seq string, size int) ([]byte, bool) {
	if seq == "" || size <= 0 {
		return nil, false
	}
	key := glyph.NewKey(seq, size)

	if data, ok := r.memory.Get(key); ok {
		return data, true
	}

	if r.failures.Suppressed(key, r.now(), r.failedTTL) {
		slog.Debug("glyph suppressed by recent failure", "key", key, "ttl", r.failedTTL)
		return nil, false
	}

	if data, ok := r.disk.Load(key); ok {
		r.memory.Put(key, data)
		r.failures.Clear(key)
		return data, true
	}

	data, err, _ := r.group.Do(key.String(), func() (any, error) {
		return r.fetchAndFill(ctx, key)
	})
	if err != nil {
		return nil, false
	}
	return data.([]byte), true
}

// fetchAndFill performs the network fetch and writes back to the caches. Runs
// once per key at a time under the singleflight group; coalesced callers
// share its outcome, including the failure path.
func (r *Resolver) fetchAndFill(ctx context.Context, key glyph.Key) ([]byte, error) {
	data, err := r.fetcher.Fetch(ctx, key)
	if err != nil {
		r.failures.RecordFailure(key, r.now())
		slog.Warn("glyph fetch failed", "key", key, "error", err)
		return nil, err
	}

	// Persistence is best-effort: a full disk or bad permissions must not
	// fail a resolution that already has the bytes.
	if err := r.disk.Store(key, data); err != nil {
		slog.Warn("glyph persist failed", "key", key, "error", err)
	}
	r.memory.Put(key, data)
	r.failures.Clear(key)
	return data, nil
}

// Prime inserts bytes for a glyph as if a fetch had succeeded: the entry is
// persisted, cached in memory, and any failure suppression for the key is
// lifted immediately. Used to warm the cache from a bundled asset set.
func (r *Resolver) Prime(seq string, size int, data []byte) error {
	key := glyph.NewKey(seq, size)
	if err := r.disk.Store(key, data); err != nil {
		return err
	}
	r.memory.Put(key, data)
	r.failures.Clear(key)
	return nil
}

// CacheDir returns the disk store directory in use.
func (r *Resolver) CacheDir() string {
	return r.disk.Dir()
}

// Cached enumerates the keys currently persisted on disk.
func (r *Resolver) Cached() ([]glyph.Key, error) {
	return r.disk.Scan()
}

// Evict removes a single entry from every tier, forcing the next resolution
// of key to fetch.
func (r *Resolver) Evict(key glyph.Key) error {
	r.failures.Clear(key)
	r.memory.Remove(key)
	return r.disk.Remove(key)
}
