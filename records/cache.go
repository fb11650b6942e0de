package records

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-dex-catalog/cache"
	"github.com/goliatone/go-dex-catalog/catalog"
	"github.com/goliatone/go-dex-catalog/upstream"
)

const (
	// DefaultFetchConcurrency bounds GetMany fan-out.
	DefaultFetchConcurrency = 12
	// DefaultFetchTimeout bounds a shared fetch once every caller has given up on it.
	DefaultFetchTimeout = 30 * time.Second
)

// Cache decorates an upstream.Source with read-through memoization.
type Cache struct {
	source       upstream.Source
	cache        cache.CacheService
	keys         cache.KeySerializer
	canonical    *xsync.MapOf[int, *catalog.Record]
	keyRegistry  *xsync.MapOf[string, int]
	concurrency  int
	fetchTimeout time.Duration
	logger       *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used for cache miss tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithFetchConcurrency bounds the number of concurrent fetches in GetMany.
func WithFetchConcurrency(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithFetchTimeout bounds how long a single upstream fetch may run.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.fetchTimeout = d
		}
	}
}

// New creates a Cache over source backed by cacheService.
func New(source upstream.Source, cacheService cache.CacheService, keySerializer cache.KeySerializer, opts ...Option) *Cache {
	c := &Cache{
		source:       source,
		cache:        cacheService,
		keys:         keySerializer,
		canonical:    xsync.NewMapOf[int, *catalog.Record](),
		keyRegistry:  xsync.NewMapOf[string, int](),
		concurrency:  DefaultFetchConcurrency,
		fetchTimeout: DefaultFetchTimeout,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the record for idOrName, fetching it on first use.
// Unknown ids and names fail with an upstream not found error.
func (c *Cache) Get(ctx context.Context, idOrName string) (*catalog.Record, error) {
	key := c.keys.SerializeKey(cache.NamespaceRecord, idOrName)

	return shared(ctx, c.fetchTimeout, func(ctx context.Context) (*catalog.Record, error) {
		rec, err := cache.GetOrFetch(ctx, c.cache, key, func(ctx context.Context) (*catalog.Record, error) {
			c.logger.Debug("record cache miss", "key", key)
			return c.source.Pokemon(ctx, idOrName)
		})
		if err != nil {
			return nil, err
		}
		return c.register(ctx, key, rec), nil
	})
}

// GetByID is Get for a numeric id.
func (c *Cache) GetByID(ctx context.Context, id int) (*catalog.Record, error) {
	return c.Get(ctx, strconv.Itoa(id))
}

// GetMany fetches ids concurrently and returns the records in the order of ids.
// The first failure cancels the remaining fetches and is returned.
func (c *Cache) GetMany(ctx context.Context, ids []int) ([]*catalog.Record, error) {
	out := make([]*catalog.Record, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, id := range ids {
		g.Go(func() error {
			rec, err := c.GetByID(gctx, id)
			if err != nil {
				return err
			}
			out[i] = rec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Species returns the descriptive entry for id, fetched lazily and memoized.
func (c *Cache) Species(ctx context.Context, id int) (*catalog.Species, error) {
	key := c.keys.SerializeKey(cache.NamespaceSpecies, id)
	return shared(ctx, c.fetchTimeout, func(ctx context.Context) (*catalog.Species, error) {
		return cache.GetOrFetch(ctx, c.cache, key, func(ctx context.Context) (*catalog.Species, error) {
			c.logger.Debug("species cache miss", "key", key)
			return c.source.Species(ctx, id)
		})
	})
}

// Peek returns a cached record without touching the network.
func (c *Cache) Peek(ctx context.Context, idOrName string) (*catalog.Record, bool) {
	return cache.Peek[*catalog.Record](ctx, c.cache, c.keys.SerializeKey(cache.NamespaceRecord, idOrName))
}

// Len reports the number of distinct records held.
func (c *Cache) Len() int {
	return c.canonical.Size()
}

// Keys returns every record key registered so far, sorted.
func (c *Cache) Keys() []string {
	keys := make([]string, 0, c.keyRegistry.Size())
	c.keyRegistry.Range(func(k string, _ int) bool {
		keys = append(keys, k)
		return true
	})
	sort.Strings(keys)
	return keys
}

// register pins rec as the single instance for its id and stores it under the
// requested key, the id key and the name key. If another fetch already pinned
// an instance for the same id, that instance wins and is returned.
func (c *Cache) register(ctx context.Context, requested string, rec *catalog.Record) *catalog.Record {
	if rec == nil {
		return nil
	}

	pinned, _ := c.canonical.LoadOrStore(rec.ID, rec)

	for _, key := range []string{
		requested,
		c.keys.SerializeKey(cache.NamespaceRecord, pinned.ID),
		c.keys.SerializeKey(cache.NamespaceRecord, pinned.Name),
	} {
		if _, seen := c.keyRegistry.LoadOrStore(key, pinned.ID); seen && key != requested {
			continue
		}
		if err := c.cache.Set(ctx, key, pinned); err != nil {
			c.logger.Warn("record cache alias failed", "key", key, "error", err)
		}
	}

	return pinned
}

// shared runs fetch on a context detached from the caller's cancellation,
// since concurrent misses on one key join whichever caller fetched first.
// The caller returns as soon as its own ctx is done while the fetch runs on
// to completion or timeout.
func shared[T any](ctx context.Context, timeout time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	type result struct {
		val T
		err error
	}

	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}

	done := make(chan result, 1)
	go func() {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		val, err := fetch(fctx)
		done <- result{val: val, err: err}
	}()

	select {
	case r := <-done:
		return r.val, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
