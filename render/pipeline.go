// Package render drives resolve, paginate, fetch and present for the card
// grid, the favorites grid and the detail entry.
//
// Each grid render takes a generation token. Starting a render cancels the one
// before it, and a render only reaches the Presenter if its token is still the
// latest when it finishes. Superseded renders return ErrStale.
package render

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/goliatone/go-dex-catalog/catalog"
	"github.com/goliatone/go-dex-catalog/pager"
)

const (
	// StatusLoadFailed is shown when a grid render fails.
	StatusLoadFailed = "Failed to load Pokémon."
	// AlertDetailFailed is shown when the detail entry cannot be loaded.
	AlertDetailFailed = "Failed to load Pokémon details."
	// DefaultFavoritesDisplayCap bounds how many favorites are fetched and shown.
	DefaultFavoritesDisplayCap = 20
)

// ErrStale is returned by a render that a newer render superseded.
var ErrStale = errors.New("render: superseded by a newer render")

// hiddenCategories have no members and never appear in the type filter.
var hiddenCategories = []string{"unknown", "shadow"}

// Resolver resolves a filter state to ascending ids.
type Resolver interface {
	Resolve(ctx context.Context, state catalog.FilterState) ([]int, error)
}

// Records is the record cache as seen by the pipeline.
type Records interface {
	Get(ctx context.Context, idOrName string) (*catalog.Record, error)
	GetMany(ctx context.Context, ids []int) ([]*catalog.Record, error)
	Species(ctx context.Context, id int) (*catalog.Species, error)
}

// Favorites is the read side of the favorites store.
type Favorites interface {
	Has(id int) bool
	List() []int
}

// Categories lists every category known upstream.
type Categories interface {
	Types(ctx context.Context) ([]string, error)
}

// Presenter turns pipeline results into visible output.
type Presenter interface {
	ShowPage(view View)
	ShowDetail(detail Detail)
	Status(msg string)
	Clear()
	Alert(msg string)
}

// Card is one record on a grid.
type Card struct {
	Record   *catalog.Record `json:"record"`
	Favorite bool            `json:"favorite"`
}

// View is a rendered grid.
type View struct {
	RenderID   string              `json:"render_id"`
	Generation uint64              `json:"generation"`
	State      catalog.FilterState `json:"state"`
	Page       pager.Page          `json:"page"`
	Cards      []Card              `json:"cards"`
	Favorites  bool                `json:"favorites"`
}

// Detail is the single-record entry.
type Detail struct {
	Record   *catalog.Record  `json:"record"`
	Species  *catalog.Species `json:"species"`
	Favorite bool             `json:"favorite"`
}

// Description is the species text or the placeholder.
func (d Detail) Description() string {
	if d.Species == nil || d.Species.Description == "" {
		return catalog.NoDescription
	}
	return d.Species.Description
}

// Options configures a Pipeline.
type Options struct {
	FavoritesDisplayCap int
	Logger              *slog.Logger
}

// Pipeline wires the resolver, record cache and favorites to a Presenter.
type Pipeline struct {
	resolver   Resolver
	records    Records
	favorites  Favorites
	categories Categories
	presenter  Presenter
	opts       Options
	logger     *slog.Logger

	generation atomic.Uint64

	mu     sync.Mutex
	cancel context.CancelFunc

	// applyMu serialises the token check with the Presenter call so a
	// superseded render cannot paint after a newer one.
	applyMu sync.Mutex
}

// New creates a Pipeline.
func New(resolver Resolver, records Records, favorites Favorites, categories Categories, presenter Presenter, opts Options) *Pipeline {
	if opts.FavoritesDisplayCap <= 0 {
		opts.FavoritesDisplayCap = DefaultFavoritesDisplayCap
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		resolver:   resolver,
		records:    records,
		favorites:  favorites,
		categories: categories,
		presenter:  presenter,
		opts:       opts,
		logger:     logger,
	}
}

// Generation returns the latest issued token.
func (p *Pipeline) Generation() uint64 { return p.generation.Load() }

// Render shows the page of state. The page is clamped into range first, so
// the returned View.State may differ from state. On failure the Presenter gets
// StatusLoadFailed and a cleared grid.
func (p *Pipeline) Render(ctx context.Context, state catalog.FilterState) (View, error) {
	return p.run(ctx, "page", func(ctx context.Context) (View, error) {
		return p.buildPage(ctx, state)
	})
}

// Favorites shows the favorites grid, ascending, capped at
// Options.FavoritesDisplayCap.
func (p *Pipeline) Favorites(ctx context.Context) (View, error) {
	return p.run(ctx, "favorites", p.buildFavorites)
}

// Detail loads a record with its species text. Failures are reported through
// Presenter.Alert.
func (p *Pipeline) Detail(ctx context.Context, idOrName string) (Detail, error) {
	rec, err := p.records.Get(ctx, idOrName)
	if err != nil {
		p.logger.Warn("detail load failed", "key", idOrName, "error", err)
		p.presenter.Alert(AlertDetailFailed)
		return Detail{}, err
	}

	species, err := p.records.Species(ctx, rec.ID)
	if err != nil {
		p.logger.Warn("species load failed", "id", rec.ID, "error", err)
		p.presenter.Alert(AlertDetailFailed)
		return Detail{}, err
	}

	d := Detail{Record: rec, Species: species, Favorite: p.favorites.Has(rec.ID)}
	p.presenter.ShowDetail(d)
	return d, nil
}

// Categories returns the selectable category names in upstream order.
func (p *Pipeline) Categories(ctx context.Context) ([]string, error) {
	all, err := p.categories.Types(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(all))
	for _, name := range all {
		if !slices.Contains(hiddenCategories, name) {
			out = append(out, name)
		}
	}
	return out, nil
}

func (p *Pipeline) run(ctx context.Context, kind string, build func(context.Context) (View, error)) (View, error) {
	token, rctx, done := p.begin(ctx)
	defer done()

	renderID := uuid.NewString()
	logger := p.logger.With("render_id", renderID, "generation", token, "kind", kind)
	logger.Debug("render started")

	view, err := build(rctx)
	view.RenderID = renderID
	view.Generation = token

	applied := p.apply(token, func() {
		if err != nil {
			p.presenter.Status(StatusLoadFailed)
			p.presenter.Clear()
			return
		}
		p.presenter.ShowPage(view)
	})
	if !applied {
		logger.Debug("render discarded as stale")
		return View{}, ErrStale
	}
	if err != nil {
		logger.Warn("render failed", "error", err)
		return View{}, err
	}

	logger.Debug("render applied", "cards", len(view.Cards), "total", view.Page.Total)
	return view, nil
}

func (p *Pipeline) begin(ctx context.Context) (uint64, context.Context, func()) {
	rctx, cancel := context.WithCancel(ctx)

	p.mu.Lock()
	token := p.generation.Add(1)
	if p.cancel != nil {
		// the token moved first, so the canceled render sees itself as stale
		p.cancel()
	}
	p.cancel = cancel
	p.mu.Unlock()

	return token, rctx, func() {
		cancel()
		p.mu.Lock()
		if p.generation.Load() == token {
			p.cancel = nil
		}
		p.mu.Unlock()
	}
}

func (p *Pipeline) apply(token uint64, fn func()) bool {
	p.applyMu.Lock()
	defer p.applyMu.Unlock()
	if p.generation.Load() != token {
		return false
	}
	fn()
	return true
}

func (p *Pipeline) buildPage(ctx context.Context, state catalog.FilterState) (View, error) {
	state = catalog.Reduce(state, catalog.Action{Kind: catalog.GoToPage, N: state.Page})

	ids, err := p.resolver.Resolve(ctx, state)
	if err != nil {
		return View{}, err
	}

	state = catalog.Reduce(state, catalog.Action{
		Kind: catalog.ClampPage,
		N:    pager.MaxPage(len(ids), state.PageSize),
	})
	page := pager.Paginate(ids, state.Page, state.PageSize)

	cards, err := p.cards(ctx, page.IDs)
	if err != nil {
		return View{}, err
	}
	return View{State: state, Page: page, Cards: cards}, nil
}

func (p *Pipeline) buildFavorites(ctx context.Context) (View, error) {
	all := p.favorites.List()
	ids := all
	if len(ids) > p.opts.FavoritesDisplayCap {
		ids = ids[:p.opts.FavoritesDisplayCap]
	}

	cards, err := p.cards(ctx, ids)
	if err != nil {
		return View{}, err
	}
	return View{
		Page: pager.Page{
			IDs:      ids,
			Total:    len(all),
			MaxPage:  1,
			Page:     1,
			PageSize: p.opts.FavoritesDisplayCap,
		},
		Cards:     cards,
		Favorites: true,
	}, nil
}

// cards fetches ids concurrently; any failure fails the whole batch.
func (p *Pipeline) cards(ctx context.Context, ids []int) ([]Card, error) {
	recs, err := p.records.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	cards := make([]Card, 0, len(recs))
	for _, rec := range recs {
		cards = append(cards, Card{Record: rec, Favorite: p.favorites.Has(rec.ID)})
	}
	return cards, nil
}
