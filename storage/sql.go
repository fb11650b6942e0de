package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// Supported drivers for Open.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Entry is one row of the key-value table.
type Entry struct {
	bun.BaseModel `bun:"table:dex_kv,alias:kv"`

	Name      string    `bun:"name,pk"`
	Value     string    `bun:"value,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// SQL stores entries in a single bun-managed table.
type SQL struct {
	db  *bun.DB
	now func() time.Time
}

// NewSQL wraps an open bun.DB. Call Migrate before first use.
func NewSQL(db *bun.DB) *SQL {
	return &SQL{db: db, now: time.Now}
}

// Open returns the KV for driver. "memory" ignores dsn; "sqlite3" and
// "postgres" open the database and create the table if needed.
func Open(ctx context.Context, driver, dsn string) (KV, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverSQLite, "sqlite":
		sqldb, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "open sqlite storage")
		}
		// sqlite allows a single writer
		sqldb.SetMaxOpenConns(1)
		return openSQL(ctx, bun.NewDB(sqldb, sqlitedialect.New()))
	case DriverPostgres, "pg":
		sqldb, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "open postgres storage")
		}
		return openSQL(ctx, bun.NewDB(sqldb, pgdialect.New()))
	default:
		return nil, goerrors.New("unsupported storage driver "+driver, goerrors.CategoryBadInput).
			WithTextCode("UNSUPPORTED_DRIVER").
			WithMetadata(map[string]any{"driver": driver})
	}
}

func openSQL(ctx context.Context, db *bun.DB) (KV, error) {
	s := NewSQL(db)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the key-value table if it does not exist.
func (s *SQL) Migrate(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*Entry)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "create storage table")
	}
	return nil
}

func (s *SQL) Get(ctx context.Context, key string) (string, bool, error) {
	var e Entry
	err := s.db.NewSelect().
		Model(&e).
		Where("? = ?", bun.Ident("name"), key).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, goerrors.Wrap(err, goerrors.CategoryInternal, "read storage key").
			WithMetadata(map[string]any{"key": key})
	}
	return e.Value, true, nil
}

func (s *SQL) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return errEmptyKey()
	}
	e := &Entry{Name: key, Value: value, UpdatedAt: s.now().UTC()}
	_, err := s.db.NewInsert().
		Model(e).
		On("CONFLICT (name) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "write storage key").
			WithMetadata(map[string]any{"key": key})
	}
	return nil
}

func (s *SQL) Delete(ctx context.Context, key string) error {
	_, err := s.db.NewDelete().
		Model((*Entry)(nil)).
		Where("? = ?", bun.Ident("name"), key).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "delete storage key").
			WithMetadata(map[string]any{"key": key})
	}
	return nil
}

// DB exposes the underlying handle.
func (s *SQL) DB() *bun.DB { return s.db }

// Close closes the database.
func (s *SQL) Close() error { return s.db.Close() }
