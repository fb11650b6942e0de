// Package config loads the dex configuration from YAML with environment
// overrides.
package config

import (
	"errors"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-dex-catalog/cache"
	"github.com/goliatone/go-dex-catalog/catalog"
	"github.com/goliatone/go-dex-catalog/render"
	"github.com/goliatone/go-dex-catalog/resolver"
	"github.com/goliatone/go-dex-catalog/storage"
	"github.com/goliatone/go-dex-catalog/upstream"
)

// Environment overrides, applied after the file.
const (
	EnvBaseURL       = "DEX_API_BASE_URL"
	EnvStorageDriver = "DEX_STORAGE_DRIVER"
	EnvStorageDSN    = "DEX_STORAGE_DSN"
	EnvLogLevel      = "DEX_LOG_LEVEL"
	EnvPageSize      = "DEX_PAGE_SIZE"
)

type Config struct {
	Upstream Upstream     `yaml:"upstream"`
	Cache    cache.Config `yaml:"cache"`
	Resolver Resolver     `yaml:"resolver"`
	Pager    Pager        `yaml:"pager"`
	Render   Render       `yaml:"render"`
	Storage  Storage      `yaml:"storage"`
	Log      Log          `yaml:"log"`
}

type Upstream struct {
	BaseURL string `yaml:"base_url"`
	// Timeout of 0 means no timeout.
	Timeout time.Duration `yaml:"timeout"`
}

type Resolver struct {
	Universe         int `yaml:"universe"`
	MatchCap         int `yaml:"match_cap"`
	FetchConcurrency int `yaml:"fetch_concurrency"`
}

type Pager struct {
	PageSize int `yaml:"page_size"`
}

type Render struct {
	FavoritesDisplayCap int `yaml:"favorites_display_cap"`
	Columns             int `yaml:"columns"`
}

type Storage struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type Log struct {
	Level string `yaml:"level"`
}

// Default returns a Config that works without a file: public API, sqlite in
// the working directory, info logging.
func Default() Config {
	return Config{
		Upstream: Upstream{BaseURL: upstream.DefaultBaseURL},
		Cache:    cache.DefaultConfig(),
		Resolver: Resolver{
			Universe:         catalog.DefaultUniverse,
			MatchCap:         resolver.DefaultMatchCap,
			FetchConcurrency: resolver.DefaultFetchConcurrency,
		},
		Pager:   Pager{PageSize: catalog.DefaultPageSize},
		Render:  Render{FavoritesDisplayCap: render.DefaultFavoritesDisplayCap, Columns: 4},
		Storage: Storage{Driver: storage.DriverSQLite, DSN: "dex.db"},
		Log:     Log{Level: "info"},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, goerrors.Wrap(err, goerrors.CategoryBadInput, "read config file").
				WithMetadata(map[string]any{"path": path})
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, goerrors.Wrap(err, goerrors.CategoryBadInput, "parse config file").
				WithMetadata(map[string]any{"path": path})
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvBaseURL); ok && v != "" {
		c.Upstream.BaseURL = v
	}
	if v, ok := lookup(EnvStorageDriver); ok && v != "" {
		c.Storage.Driver = v
	}
	if v, ok := lookup(EnvStorageDSN); ok {
		c.Storage.DSN = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvPageSize); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return goerrors.New(EnvPageSize+" must be an integer", goerrors.CategoryValidation).
				WithMetadata(map[string]any{"value": v})
		}
		c.Pager.PageSize = n
	}
	return nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&c,
			validation.Field(&c.Upstream),
			validation.Field(&c.Resolver),
			validation.Field(&c.Pager),
			validation.Field(&c.Render),
			validation.Field(&c.Storage),
			validation.Field(&c.Log),
		)
	}, "invalid configuration"); err != nil {
		return err
	}

	if err := c.Cache.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid cache configuration")
	}
	return nil
}

func (u Upstream) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.BaseURL, validation.Required, validation.By(absoluteURL)),
		validation.Field(&u.Timeout, validation.Min(time.Duration(0))),
	)
}

func (r Resolver) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Universe, validation.Required, validation.Min(1)),
		validation.Field(&r.MatchCap, validation.Required, validation.Min(1)),
		validation.Field(&r.FetchConcurrency, validation.Required, validation.Min(1), validation.Max(64)),
	)
}

func (p Pager) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.PageSize, validation.Required, validation.Min(1), validation.Max(200)),
	)
}

func (r Render) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FavoritesDisplayCap, validation.Required, validation.Min(1)),
		validation.Field(&r.Columns, validation.Min(0), validation.Max(12)),
	)
}

func (s Storage) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Driver, validation.Required, validation.In(
			storage.DriverMemory, storage.DriverSQLite, "sqlite", storage.DriverPostgres, "pg",
		)),
		validation.Field(&s.DSN, validation.When(s.Driver != storage.DriverMemory, validation.Required)),
	)
}

func (l Log) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level, validation.By(func(any) error {
			_, err := ParseLevel(l.Level)
			return err
		})),
	)
}

// ToResolverOptions maps the resolver section.
func (r Resolver) ToResolverOptions(logger *slog.Logger) resolver.Options {
	return resolver.Options{
		Universe:         r.Universe,
		MatchCap:         r.MatchCap,
		FetchConcurrency: r.FetchConcurrency,
		Logger:           logger,
	}
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return slog.LevelInfo, errors.New("unknown log level " + s)
	}
	return lvl, nil
}

func absoluteURL(v any) error {
	s, _ := v.(string)
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("must be an absolute URL")
	}
	return nil
}
