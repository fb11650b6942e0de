package di

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/goliatone/go-dex-catalog/cache"
	"github.com/goliatone/go-dex-catalog/config"
	"github.com/goliatone/go-dex-catalog/favorites"
	"github.com/goliatone/go-dex-catalog/preferences"
	"github.com/goliatone/go-dex-catalog/records"
	"github.com/goliatone/go-dex-catalog/render"
	"github.com/goliatone/go-dex-catalog/resolver"
	"github.com/goliatone/go-dex-catalog/storage"
	"github.com/goliatone/go-dex-catalog/upstream"
)

// Container owns every long-lived component of a browsing session. The record
// cache lives exactly as long as the container.
type Container struct {
	config        config.Config
	logger        *slog.Logger
	cacheService  cache.CacheService
	keySerializer cache.KeySerializer
	client        *upstream.Client
	records       *records.Cache
	resolver      *resolver.Resolver
	kv            storage.KV
	favorites     *favorites.Store
	theme         *preferences.Theme
}

// Option customizes NewContainer.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	httpClient *http.Client
	kv         storage.KV
}

// WithLogger sets the logger handed to every component.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithHTTPClient replaces the upstream HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithStorage injects a KV instead of opening the configured driver.
func WithStorage(kv storage.KV) Option {
	return func(o *options) { o.kv = kv }
}

// NewContainer validates cfg and wires the components.
func NewContainer(ctx context.Context, cfg config.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	cacheService, err := cache.NewCacheService(cfg.Cache)
	if err != nil {
		return nil, err
	}
	keySerializer := cache.NewDefaultKeySerializer()

	clientOpts := []upstream.Option{
		upstream.WithLogger(o.logger),
		upstream.WithHTTPClient(o.httpClient),
	}
	if cfg.Upstream.Timeout > 0 {
		clientOpts = append(clientOpts, upstream.WithTimeout(cfg.Upstream.Timeout))
	}
	client := upstream.New(cfg.Upstream.BaseURL, clientOpts...)

	recs := records.New(client, cacheService, keySerializer,
		records.WithLogger(o.logger),
		records.WithFetchConcurrency(cfg.Resolver.FetchConcurrency),
		records.WithFetchTimeout(cfg.Upstream.Timeout),
	)

	kv := o.kv
	if kv == nil {
		kv, err = storage.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN)
		if err != nil {
			return nil, err
		}
	}

	favs, err := favorites.Load(ctx, kv, favorites.WithLogger(o.logger))
	if err != nil {
		closeKV(kv)
		return nil, err
	}

	return &Container{
		config:        cfg,
		logger:        o.logger,
		cacheService:  cacheService,
		keySerializer: keySerializer,
		client:        client,
		records:       recs,
		resolver:      resolver.New(client, recs, cfg.Resolver.ToResolverOptions(o.logger)),
		kv:            kv,
		favorites:     favs,
		theme:         preferences.NewTheme(kv),
	}, nil
}

// NewContainerWithDefaults wires the default configuration with in-memory storage.
func NewContainerWithDefaults(ctx context.Context) (*Container, error) {
	return NewContainer(ctx, config.Default(), WithStorage(storage.NewMemory()))
}

// Pipeline builds a render pipeline that presents through p.
func (c *Container) Pipeline(p render.Presenter) *render.Pipeline {
	return render.New(c.resolver, c.records, c.favorites, c.client, p, render.Options{
		FavoritesDisplayCap: c.config.Render.FavoritesDisplayCap,
		Logger:              c.logger,
	})
}

func (c *Container) CacheService() cache.CacheService   { return c.cacheService }
func (c *Container) KeySerializer() cache.KeySerializer { return c.keySerializer }
func (c *Container) Config() config.Config              { return c.config }
func (c *Container) Upstream() *upstream.Client         { return c.client }
func (c *Container) Records() *records.Cache            { return c.records }
func (c *Container) Resolver() *resolver.Resolver       { return c.resolver }
func (c *Container) Storage() storage.KV                { return c.kv }
func (c *Container) Favorites() *favorites.Store        { return c.favorites }
func (c *Container) Theme() *preferences.Theme          { return c.theme }
func (c *Container) Logger() *slog.Logger               { return c.logger }

// Close releases the storage backend.
func (c *Container) Close() error {
	if closer, ok := c.kv.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func closeKV(kv storage.KV) {
	if closer, ok := kv.(io.Closer); ok {
		_ = closer.Close()
	}
}
