// Package resolver turns a catalog.FilterState into the ascending list of
// record ids that satisfy it.
//
// Category filtering is delegated to the upstream source (one call per
// resolve). Generation filtering is a range intersection. Text filtering
// needs record names, so candidates are fetched through the record cache in
// ascending id order until MatchCap matches are found.
package resolver

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-dex-catalog/catalog"
)

const (
	// DefaultMatchCap bounds the number of ids a name query can return.
	DefaultMatchCap = 200
	// DefaultFetchConcurrency is the size of each candidate fetch batch.
	DefaultFetchConcurrency = 8
)

// CategorySource lists the member ids of a category.
type CategorySource interface {
	TypeMembers(ctx context.Context, name string) ([]int, error)
}

// RecordGetter returns a record by numeric id, usually from the record cache.
type RecordGetter interface {
	GetByID(ctx context.Context, id int) (*catalog.Record, error)
}

// Options are the explicit knobs of the resolve contract.
type Options struct {
	// Universe is N in the default candidate range [1, N]. Category members
	// above it are dropped.
	Universe int `yaml:"universe"`
	// MatchCap stops a name query once this many matches are found. The
	// matches kept are always the lowest ids.
	MatchCap int `yaml:"match_cap"`
	// FetchConcurrency is how many candidates are fetched at once during a
	// name query.
	FetchConcurrency int `yaml:"fetch_concurrency"`

	Logger *slog.Logger `yaml:"-"`
}

// DefaultOptions returns the stock resolve parameters.
func DefaultOptions() Options {
	return Options{
		Universe:         catalog.DefaultUniverse,
		MatchCap:         DefaultMatchCap,
		FetchConcurrency: DefaultFetchConcurrency,
	}
}

func (o Options) withDefaults() Options {
	if o.Universe <= 0 {
		o.Universe = catalog.DefaultUniverse
	}
	if o.MatchCap <= 0 {
		o.MatchCap = DefaultMatchCap
	}
	if o.FetchConcurrency <= 0 {
		o.FetchConcurrency = DefaultFetchConcurrency
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Resolver resolves filter states against a category source and a record getter.
type Resolver struct {
	categories CategorySource
	records    RecordGetter
	opts       Options
}

// New creates a Resolver. Zero option fields take their defaults.
func New(categories CategorySource, records RecordGetter, opts Options) *Resolver {
	return &Resolver{
		categories: categories,
		records:    records,
		opts:       opts.withDefaults(),
	}
}

// Options returns the effective options.
func (r *Resolver) Options() Options { return r.opts }

// Resolve returns the strictly ascending ids matching state. Page fields are
// ignored. A failed category lookup fails the resolve; a failed fetch of an
// individual candidate during a name query only excludes that candidate.
func (r *Resolver) Resolve(ctx context.Context, state catalog.FilterState) ([]int, error) {
	candidates, err := r.baseSet(ctx, state.Category)
	if err != nil {
		return nil, err
	}

	candidates = intersectGeneration(candidates, state.Generation)

	query := state.NormalizedQuery()
	switch {
	case query == "":
		return candidates, nil
	case isDigits(query):
		return exactID(candidates, query), nil
	default:
		return r.matchNames(ctx, candidates, query)
	}
}

func (r *Resolver) baseSet(ctx context.Context, category string) ([]int, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		return catalog.Universe(r.opts.Universe).IDs(), nil
	}

	members, err := r.categories.TypeMembers(ctx, category)
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(members))
	for _, id := range members {
		if id >= 1 && id <= r.opts.Universe {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return slices.Compact(ids), nil
}

func intersectGeneration(ids []int, token string) []int {
	rng, ok := catalog.GenerationRange(strings.TrimSpace(token))
	if !ok {
		return ids
	}
	out := make([]int, 0, min(len(ids), rng.Len()))
	for _, id := range ids {
		if rng.Contains(id) {
			out = append(out, id)
		}
	}
	return out
}

func exactID(candidates []int, query string) []int {
	id, err := strconv.Atoi(query)
	if err != nil {
		return []int{}
	}
	if _, found := slices.BinarySearch(candidates, id); found {
		return []int{id}
	}
	return []int{}
}

// matchNames walks candidates in ascending batches. Each batch is fetched
// concurrently, then its matches are committed in id order so the result is
// the same as a sequential scan: the first MatchCap matching ids.
func (r *Resolver) matchNames(ctx context.Context, candidates []int, query string) ([]int, error) {
	matches := make([]int, 0)
	batch := r.opts.FetchConcurrency

	for start := 0; start < len(candidates) && len(matches) < r.opts.MatchCap; start += batch {
		chunk := candidates[start:min(start+batch, len(candidates))]
		hit := make([]bool, len(chunk))

		g, gctx := errgroup.WithContext(ctx)
		for i, id := range chunk {
			g.Go(func() error {
				rec, err := r.records.GetByID(gctx, id)
				if err != nil {
					if ctxErr := ctx.Err(); ctxErr != nil {
						return ctxErr
					}
					r.opts.Logger.Debug("resolver skipped candidate", "id", id, "error", err)
					return nil
				}
				hit[i] = rec != nil && strings.Contains(strings.ToLower(rec.Name), query)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		for i, ok := range hit {
			if !ok {
				continue
			}
			matches = append(matches, chunk[i])
			if len(matches) == r.opts.MatchCap {
				break
			}
		}
	}

	return matches, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
