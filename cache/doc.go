// Package cache provides the read-through caching interface used by the record
// cache, plus key normalization.
//
// # Overview
//
// This package exports two interfaces and their default implementations:
//
//   - CacheService: a read-through cache with alias registration (Set)
//   - KeySerializer: builds stable keys from a namespace and arguments
//
// The default CacheService is backed by sturdyc (see internal/cacheinfra). It
// collapses concurrent misses for the same key into a single fetch, which is
// what keeps a page of concurrent record loads from issuing duplicate requests.
//
// # Basic Usage
//
//	svc, err := cache.NewCacheService(cache.DefaultConfig())
//	keys := cache.NewDefaultKeySerializer()
//	rec, err := cache.GetOrFetch(ctx, svc, keys.SerializeKey(cache.NamespaceRecord, "Pikachu"),
//		func(ctx context.Context) (*catalog.Record, error) {
//			return client.Pokemon(ctx, "pikachu")
//		})
//
// # Key Normalization
//
// Keys are lowercase and trimmed. Integer arguments use their decimal form, so
// SerializeKey(NamespaceRecord, 25) and SerializeKey(NamespaceRecord, "25")
// produce the same key.
//
// # Lifetime
//
// Records are immutable once fetched. DefaultConfig sizes the cache well above
// the catalog universe and uses a session-long TTL so entries are effectively
// never evicted while the process runs.
package cache
