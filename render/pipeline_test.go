package render

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/goliatone/go-dex-catalog/catalog"
)

// recordingPresenter keeps every presenter call in order
type recordingPresenter struct {
	mu      sync.Mutex
	events  []string
	pages   []View
	details []Detail
}

func (r *recordingPresenter) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingPresenter) ShowPage(v View) {
	r.mu.Lock()
	r.pages = append(r.pages, v)
	r.mu.Unlock()
	r.add(fmt.Sprintf("page:%s", v.State.Query))
}

func (r *recordingPresenter) ShowDetail(d Detail) {
	r.mu.Lock()
	r.details = append(r.details, d)
	r.mu.Unlock()
	r.add("detail:" + d.Record.Name)
}

func (r *recordingPresenter) Status(msg string) { r.add("status:" + msg) }
func (r *recordingPresenter) Clear()            { r.add("clear") }
func (r *recordingPresenter) Alert(msg string)  { r.add("alert:" + msg) }

func (r *recordingPresenter) getEvents() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// stubResolver returns ids per query; "slow" blocks until released
type stubResolver struct {
	ids         map[string][]int
	err         error
	entered     chan struct{}
	release     chan struct{}
	ignoreCtx   bool
	enteredOnce sync.Once
}

func (s *stubResolver) Resolve(ctx context.Context, state catalog.FilterState) ([]int, error) {
	if state.Query == "slow" {
		s.enteredOnce.Do(func() { close(s.entered) })
		if s.ignoreCtx {
			<-s.release
		} else {
			select {
			case <-s.release:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.ids[state.Query], nil
}

type stubRecords struct {
	fail    map[int]bool
	species map[int]*catalog.Species
}

func (s *stubRecords) record(id int) (*catalog.Record, error) {
	if s.fail[id] {
		return nil, fmt.Errorf("fetch %d failed", id)
	}
	return &catalog.Record{ID: id, Name: fmt.Sprintf("mon-%d", id)}, nil
}

func (s *stubRecords) Get(ctx context.Context, idOrName string) (*catalog.Record, error) {
	id, err := strconv.Atoi(idOrName)
	if err != nil {
		return nil, errors.New("not found")
	}
	return s.record(id)
}

func (s *stubRecords) GetMany(ctx context.Context, ids []int) ([]*catalog.Record, error) {
	out := make([]*catalog.Record, 0, len(ids))
	for _, id := range ids {
		r, err := s.record(id)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *stubRecords) Species(ctx context.Context, id int) (*catalog.Species, error) {
	if sp, ok := s.species[id]; ok {
		return sp, nil
	}
	return &catalog.Species{ID: id}, nil
}

type stubFavorites []int

func (f stubFavorites) Has(id int) bool {
	for _, v := range f {
		if v == id {
			return true
		}
	}
	return false
}

func (f stubFavorites) List() []int { return append([]int(nil), f...) }

type stubCategories []string

func (c stubCategories) Types(ctx context.Context) ([]string, error) { return c, nil }

func seq(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}

func newPipeline(res *stubResolver, recs *stubRecords, favs stubFavorites) (*Pipeline, *recordingPresenter) {
	pres := &recordingPresenter{}
	return New(res, recs, favs, stubCategories{"normal", "fire", "unknown", "shadow"}, pres, Options{}), pres
}

func TestRender_FireGenerationOneScenario(t *testing.T) {
	defer goleak.VerifyNone(t)

	fire := []int{4, 5, 6, 37, 38, 58, 59, 77, 78, 126}
	p, pres := newPipeline(&stubResolver{ids: map[string][]int{"": fire}}, &stubRecords{}, stubFavorites{37})

	st := catalog.NewFilterState(24)
	st.Category, st.Generation = "fire", "1"

	view, err := p.Render(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, fire, view.Page.IDs)
	assert.Equal(t, 10, view.Page.Total)
	assert.Equal(t, 1, view.Page.MaxPage)
	require.Len(t, view.Cards, 10)
	assert.True(t, view.Cards[3].Favorite)
	assert.False(t, view.Cards[0].Favorite)
	assert.NotEmpty(t, view.RenderID)
	assert.Equal(t, uint64(1), view.Generation)
	assert.Equal(t, []string{"page:"}, pres.getEvents())
}

func TestRender_ClampsPage(t *testing.T) {
	p, _ := newPipeline(&stubResolver{ids: map[string][]int{"x": seq(1, 30)}}, &stubRecords{}, nil)

	st := catalog.FilterState{Query: "x", Page: 9, PageSize: 24}
	view, err := p.Render(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, 2, view.State.Page)
	assert.Equal(t, seq(25, 30), view.Page.IDs)

	view, err = p.Render(context.Background(), catalog.FilterState{Query: "none"})
	require.NoError(t, err)
	assert.Equal(t, 1, view.State.Page)
	assert.Equal(t, catalog.DefaultPageSize, view.State.PageSize)
	assert.Empty(t, view.Cards)
	assert.Equal(t, 1, view.Page.MaxPage)
}

func TestRender_FailureClearsDisplay(t *testing.T) {
	defer goleak.VerifyNone(t)

	p, pres := newPipeline(
		&stubResolver{ids: map[string][]int{"": {1, 2, 3}}},
		&stubRecords{fail: map[int]bool{2: true}},
		nil,
	)

	_, err := p.Render(context.Background(), catalog.NewFilterState(24))
	require.Error(t, err)
	assert.Equal(t, []string{"status:" + StatusLoadFailed, "clear"}, pres.getEvents())
}

func TestRender_ResolverFailure(t *testing.T) {
	p, pres := newPipeline(&stubResolver{err: errors.New("category lookup failed")}, &stubRecords{}, nil)

	_, err := p.Render(context.Background(), catalog.NewFilterState(24))
	require.EqualError(t, err, "category lookup failed")
	assert.Equal(t, []string{"status:" + StatusLoadFailed, "clear"}, pres.getEvents())
}

func TestRender_NewerRenderCancelsOlder(t *testing.T) {
	defer goleak.VerifyNone(t)

	res := &stubResolver{
		ids:     map[string][]int{"fast": {25}},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	p, pres := newPipeline(res, &stubRecords{}, nil)

	errc := make(chan error, 1)
	go func() {
		_, err := p.Render(context.Background(), catalog.FilterState{Query: "slow", Page: 1, PageSize: 24})
		errc <- err
	}()
	<-res.entered

	view, err := p.Render(context.Background(), catalog.FilterState{Query: "fast", Page: 1, PageSize: 24})
	require.NoError(t, err)
	assert.Equal(t, []int{25}, view.Page.IDs)

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, ErrStale)
	case <-time.After(5 * time.Second):
		t.Fatal("superseded render was not canceled")
	}

	assert.Equal(t, []string{"page:fast"}, pres.getEvents())
	assert.Equal(t, uint64(2), p.Generation())
}

func TestRender_StaleResultIsDiscarded(t *testing.T) {
	defer goleak.VerifyNone(t)

	res := &stubResolver{
		ids:       map[string][]int{"fast": {25}, "slow": {1, 2, 3}},
		entered:   make(chan struct{}),
		release:   make(chan struct{}),
		ignoreCtx: true,
	}
	p, pres := newPipeline(res, &stubRecords{}, nil)

	errc := make(chan error, 1)
	go func() {
		_, err := p.Render(context.Background(), catalog.FilterState{Query: "slow", Page: 1, PageSize: 24})
		errc <- err
	}()
	<-res.entered

	_, err := p.Render(context.Background(), catalog.FilterState{Query: "fast", Page: 1, PageSize: 24})
	require.NoError(t, err)

	close(res.release)
	require.ErrorIs(t, <-errc, ErrStale)
	assert.Equal(t, []string{"page:fast"}, pres.getEvents(), "stale render must not reach the presenter")
}

func TestFavorites_CappedAndAscending(t *testing.T) {
	favs := stubFavorites(seq(1, 25))
	p, pres := newPipeline(&stubResolver{}, &stubRecords{}, favs)

	view, err := p.Favorites(context.Background())
	require.NoError(t, err)
	assert.True(t, view.Favorites)
	assert.Equal(t, 25, view.Page.Total)
	require.Len(t, view.Cards, DefaultFavoritesDisplayCap)
	assert.Equal(t, 1, view.Cards[0].Record.ID)
	assert.Equal(t, 20, view.Cards[19].Record.ID)
	for _, c := range view.Cards {
		assert.True(t, c.Favorite)
	}
	assert.Len(t, pres.getEvents(), 1)
}

func TestFavorites_Empty(t *testing.T) {
	p, _ := newPipeline(&stubResolver{}, &stubRecords{}, nil)
	view, err := p.Favorites(context.Background())
	require.NoError(t, err)
	assert.Empty(t, view.Cards)
	assert.Zero(t, view.Page.Total)
}

func TestDetail(t *testing.T) {
	recs := &stubRecords{species: map[int]*catalog.Species{
		25: {ID: 25, Description: "Electric mouse.", Genus: "Mouse Pokémon"},
	}}
	p, pres := newPipeline(&stubResolver{}, recs, stubFavorites{25})

	d, err := p.Detail(context.Background(), "25")
	require.NoError(t, err)
	assert.Equal(t, "Electric mouse.", d.Description())
	assert.True(t, d.Favorite)

	d, err = p.Detail(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, catalog.NoDescription, d.Description())

	assert.Equal(t, []string{"detail:mon-25", "detail:mon-7"}, pres.getEvents())
}

func TestDetail_FailureAlerts(t *testing.T) {
	p, pres := newPipeline(&stubResolver{}, &stubRecords{}, nil)

	_, err := p.Detail(context.Background(), "missingno")
	require.Error(t, err)
	assert.Equal(t, []string{"alert:" + AlertDetailFailed}, pres.getEvents())
}

func TestCategories_HidesEmptyTypes(t *testing.T) {
	p, _ := newPipeline(&stubResolver{}, &stubRecords{}, nil)
	got, err := p.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"normal", "fire"}, got)
}
