// Package storage is the durable key-value store behind favorites and
// preferences. Values are opaque strings; callers own the encoding.
package storage

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/puzpuzpuz/xsync/v3"
)

// KV is the storage contract. Get reports false for a missing key.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Memory is a process-local KV, used by tests and the "memory" driver.
type Memory struct {
	data *xsync.MapOf[string, string]
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{data: xsync.NewMapOf[string, string]()}
}

func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	v, ok := m.data.Load(key)
	return v, ok, nil
}

func (m *Memory) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return errEmptyKey()
	}
	m.data.Store(key, value)
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.data.Delete(key)
	return nil
}

// Len reports the number of stored keys.
func (m *Memory) Len() int { return m.data.Size() }

func errEmptyKey() error {
	return goerrors.New("storage key cannot be empty", goerrors.CategoryBadInput).
		WithTextCode("EMPTY_KEY")
}
