// Package records memoizes catalog records fetched from the upstream source.
//
// A record is fetched at most once per cache lifetime and is then reachable
// under three keys: the lowercase form of the id-or-name it was requested
// with, its numeric id and its lowercase name. All three resolve to the same
// *catalog.Record pointer.
//
//	svc, _ := cache.NewCacheService(cache.DefaultConfig())
//	recs := records.New(upstream.New(""), svc, cache.NewDefaultKeySerializer())
//	a, _ := recs.Get(ctx, "Pikachu")
//	b, _ := recs.Get(ctx, "25") // no network call, a == b
//
// The cache is an explicit component: whoever builds it owns its lifetime
// (see pkg/di). There is no package level instance.
package records
