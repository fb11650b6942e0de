package resolver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-dex-catalog/cache"
	"github.com/goliatone/go-dex-catalog/catalog"
	"github.com/goliatone/go-dex-catalog/pkg/testsupport"
	"github.com/goliatone/go-dex-catalog/records"
	"github.com/goliatone/go-dex-catalog/upstream"
)

// stubCategories answers TypeMembers from a fixed table
type stubCategories struct {
	mu      sync.Mutex
	calls   []string
	members map[string][]int
	err     error
}

func (s *stubCategories) TypeMembers(ctx context.Context, name string) ([]int, error) {
	s.mu.Lock()
	s.calls = append(s.calls, name)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	ids, ok := s.members[name]
	if !ok {
		return nil, errors.New("unknown category " + name)
	}
	return ids, nil
}

// stubRecords names every id "mon-<id>" unless overridden
type stubRecords struct {
	names map[int]string
	fail  map[int]bool
	calls atomic.Int64
}

func (s *stubRecords) GetByID(ctx context.Context, id int) (*catalog.Record, error) {
	s.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.fail[id] {
		return nil, fmt.Errorf("fetch %d failed", id)
	}
	name, ok := s.names[id]
	if !ok {
		name = fmt.Sprintf("mon-%d", id)
	}
	return &catalog.Record{ID: id, Name: name}, nil
}

func state(query, category, generation string) catalog.FilterState {
	s := catalog.NewFilterState(catalog.DefaultPageSize)
	s.Query = query
	s.Category = category
	s.Generation = generation
	return s
}

func assertStrictlyAscending(t *testing.T, ids []int) {
	t.Helper()
	for i := 1; i < len(ids); i++ {
		if ids[i] <= ids[i-1] {
			t.Fatalf("ids not strictly ascending at %d: %v", i, ids[max(0, i-3):min(len(ids), i+3)])
		}
	}
}

func TestResolve_EmptyStateIsUniverse(t *testing.T) {
	r := New(&stubCategories{}, &stubRecords{}, Options{Universe: 151})

	ids, err := r.Resolve(context.Background(), state("", "", ""))
	require.NoError(t, err)
	require.Len(t, ids, 151)
	assert.Equal(t, 1, ids[0])
	assert.Equal(t, 151, ids[150])
	assertStrictlyAscending(t, ids)
}

func TestResolve_FireGenerationOne(t *testing.T) {
	fire := []int{4, 5, 6, 37, 38, 58, 59, 77, 78, 126}
	cats := &stubCategories{members: map[string][]int{"fire": fire}}
	r := New(cats, &stubRecords{}, DefaultOptions())

	ids, err := r.Resolve(context.Background(), state("", "fire", "1"))
	require.NoError(t, err)

	if diff := cmp.Diff(fire, ids); diff != "" {
		t.Fatalf("resolved ids mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"fire"}, cats.calls, "category lookup should be a single call")
}

func TestResolve_CategoryDropsAlternateForms(t *testing.T) {
	cats := &stubCategories{members: map[string][]int{"fire": {10034, 6, 4, 4, 1026, 0, 155}}}
	r := New(cats, &stubRecords{}, DefaultOptions())

	ids, err := r.Resolve(context.Background(), state("", "Fire", ""))
	require.NoError(t, err)
	assert.Equal(t, []int{4, 6, 155}, ids)
}

func TestResolve_CategoryFailurePropagates(t *testing.T) {
	cats := &stubCategories{err: errors.New("upstream down")}
	r := New(cats, &stubRecords{}, DefaultOptions())

	_, err := r.Resolve(context.Background(), state("", "fire", ""))
	require.EqualError(t, err, "upstream down")
}

func TestResolve_GenerationContainment(t *testing.T) {
	recs := &stubRecords{}
	r := New(&stubCategories{}, recs, DefaultOptions())

	for _, token := range catalog.GenerationTokens() {
		t.Run("gen "+token, func(t *testing.T) {
			rng, _ := catalog.GenerationRange(token)
			ids, err := r.Resolve(context.Background(), state("", "", token))
			require.NoError(t, err)
			require.Len(t, ids, rng.Len())
			for _, id := range ids {
				if !rng.Contains(id) {
					t.Fatalf("id %d outside generation %s %v", id, token, rng)
				}
			}
			assertStrictlyAscending(t, ids)
		})
	}

	ids, err := r.Resolve(context.Background(), state("", "", "42"))
	require.NoError(t, err)
	assert.Len(t, ids, catalog.DefaultUniverse, "unknown token should be the full range")
	assert.Zero(t, recs.calls.Load())
}

func TestResolve_NumericQuery(t *testing.T) {
	cats := &stubCategories{members: map[string][]int{"electric": {25, 26, 81}}}
	recs := &stubRecords{}
	r := New(cats, recs, DefaultOptions())
	ctx := context.Background()

	tests := []struct {
		name string
		st   catalog.FilterState
		want []int
	}{
		{"present", state("25", "", ""), []int{25}},
		{"leading zeros", state("025", "", ""), []int{25}},
		{"outside universe", state("9999", "", ""), []int{}},
		{"outside generation", state("25", "", "2"), []int{}},
		{"inside category", state("81", "electric", ""), []int{81}},
		{"outside category", state("4", "electric", ""), []int{}},
		{"overflow", state("99999999999999999999999", "", ""), []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, err := r.Resolve(ctx, tt.st)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids)
			assert.LessOrEqual(t, len(ids), 1)
		})
	}
	assert.Zero(t, recs.calls.Load(), "numeric queries never fetch records")
}

func TestResolve_SubstringQuery(t *testing.T) {
	recs := &stubRecords{names: map[int]string{
		4: "charmander", 5: "charmeleon", 6: "charizard", 7: "squirtle",
	}}
	r := New(&stubCategories{}, recs, Options{Universe: 151, FetchConcurrency: 5})

	ids, err := r.Resolve(context.Background(), state("  CHAR ", "", ""))
	require.NoError(t, err)
	assert.Equal(t, []int{4, 5, 6}, ids)
}

func TestResolve_SubstringMatchesAreNamesContainingQuery(t *testing.T) {
	recs := &stubRecords{}
	r := New(&stubCategories{}, recs, Options{Universe: 300})

	for _, q := range []string{"mon-1", "-2", "99", "mon-30"} {
		if isDigits(q) {
			continue
		}
		ids, err := r.Resolve(context.Background(), state(q, "", ""))
		require.NoError(t, err)
		assertStrictlyAscending(t, ids)
		for _, id := range ids {
			assert.Contains(t, fmt.Sprintf("mon-%d", id), q)
		}
	}
}

func TestResolve_MatchCap(t *testing.T) {
	recs := &stubRecords{}
	r := New(&stubCategories{}, recs, Options{FetchConcurrency: 7})

	ids, err := r.Resolve(context.Background(), state("mon", "", ""))
	require.NoError(t, err)
	require.Len(t, ids, DefaultMatchCap)
	assert.Equal(t, 1, ids[0])
	assert.Equal(t, DefaultMatchCap, ids[len(ids)-1])
	// the last batch may overshoot by less than one batch
	assert.Less(t, recs.calls.Load(), int64(DefaultMatchCap+7))
}

func TestResolve_CustomMatchCap(t *testing.T) {
	r := New(&stubCategories{}, &stubRecords{}, Options{MatchCap: 3, FetchConcurrency: 10})

	ids, err := r.Resolve(context.Background(), state("mon-1", "", ""))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 10, 11}, ids)
}

func TestResolve_FailedCandidatesAreSkipped(t *testing.T) {
	recs := &stubRecords{
		names: map[int]string{4: "charmander", 5: "charmeleon", 6: "charizard"},
		fail:  map[int]bool{5: true, 100: true},
	}
	r := New(&stubCategories{}, recs, Options{Universe: 151})

	ids, err := r.Resolve(context.Background(), state("char", "", ""))
	require.NoError(t, err)
	assert.Equal(t, []int{4, 6}, ids)
}

func TestResolve_CanceledContext(t *testing.T) {
	r := New(&stubCategories{}, &stubRecords{}, DefaultOptions())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Resolve(ctx, state("mon", "", ""))
	require.ErrorIs(t, err, context.Canceled)
}

func TestResolve_AgainstFakeUpstream(t *testing.T) {
	fake := testsupport.NewFakeUpstream(t, testsupport.Kanto())
	client := upstream.New(fake.URL())
	svc, err := cache.NewCacheService(cache.DefaultConfig())
	require.NoError(t, err)
	recs := records.New(client, svc, cache.NewDefaultKeySerializer())
	r := New(client, recs, Options{Universe: 151})
	ctx := context.Background()

	ids, err := r.Resolve(ctx, state("char", "", ""))
	require.NoError(t, err)
	assert.Equal(t, []int{4, 5, 6}, ids)

	ids, err = r.Resolve(ctx, state("", "fire", "1"))
	require.NoError(t, err)
	assert.Equal(t, []int{4, 5, 6, 37, 38, 58, 59, 77, 78, 126}, ids)

	before := fake.Total()
	ids, err = r.Resolve(ctx, state("vulpix", "fire", ""))
	require.NoError(t, err)
	assert.Equal(t, []int{37}, ids)
	// one category call, every record already cached
	assert.Equal(t, before+1, fake.Total())

	_, err = r.Resolve(ctx, state("", "ghost", ""))
	assert.True(t, upstream.IsNotFound(err))
}
