// Package favorites keeps the persisted set of favorite record ids.
//
// Reads are served from memory. Every mutation writes the whole set to the
// backing storage.KV as a JSON array under StorageKey before returning.
package favorites

import (
	"context"
	"encoding/json"
	"log/slog"
	"maps"
	"slices"
	"sync"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-dex-catalog/storage"
)

// StorageKey is where the set is persisted.
const StorageKey = "favorites"

// Store is a concurrency-safe set of ids mirrored to a storage.KV.
type Store struct {
	mu     sync.RWMutex
	ids    map[int]struct{}
	kv     storage.KV
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Load builds a Store from whatever kv holds. A missing or unreadable payload
// yields an empty set; only storage errors fail.
func Load(ctx context.Context, kv storage.KV, opts ...Option) (*Store, error) {
	s := &Store{
		ids:    make(map[int]struct{}),
		kv:     kv,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	raw, ok, err := kv.Get(ctx, StorageKey)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return s, nil
	}

	var ids []int
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		s.logger.Warn("favorites payload unreadable, starting empty", "error", err)
		return s, nil
	}
	for _, id := range ids {
		if id > 0 {
			s.ids[id] = struct{}{}
		}
	}
	return s, nil
}

// Add marks id as a favorite.
func (s *Store) Add(ctx context.Context, id int) error {
	if err := validID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(ctx, id)
}

// Remove unmarks id. Removing an absent id is not an error.
func (s *Store) Remove(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(ctx, id)
}

// Toggle flips id and reports whether it is now a favorite.
func (s *Store) Toggle(ctx context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[id]; ok {
		return false, s.removeLocked(ctx, id)
	}
	if err := validID(id); err != nil {
		return false, err
	}
	if err := s.addLocked(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) addLocked(ctx context.Context, id int) error {
	_, had := s.ids[id]
	s.ids[id] = struct{}{}
	if err := s.persist(ctx); err != nil {
		if !had {
			delete(s.ids, id)
		}
		return err
	}
	return nil
}

func (s *Store) removeLocked(ctx context.Context, id int) error {
	_, had := s.ids[id]
	delete(s.ids, id)
	if err := s.persist(ctx); err != nil {
		if had {
			s.ids[id] = struct{}{}
		}
		return err
	}
	return nil
}

// Clear empties the set.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.ids
	s.ids = make(map[int]struct{})
	if err := s.persist(ctx); err != nil {
		s.ids = prev
		return err
	}
	return nil
}

// Has reports whether id is a favorite.
func (s *Store) Has(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

// List returns the favorites in ascending id order.
func (s *Store) List() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sorted()
}

// Len reports the number of favorites.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

// persist must be called with mu held.
func (s *Store) persist(ctx context.Context) error {
	payload, err := json.Marshal(s.sorted())
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "encode favorites")
	}
	return s.kv.Set(ctx, StorageKey, string(payload))
}

func (s *Store) sorted() []int {
	ids := slices.AppendSeq(make([]int, 0, len(s.ids)), maps.Keys(s.ids))
	slices.Sort(ids)
	return ids
}

func validID(id int) error {
	if id > 0 {
		return nil
	}
	return goerrors.New("favorite id must be positive", goerrors.CategoryBadInput).
		WithTextCode("INVALID_ID").
		WithMetadata(map[string]any{"id": id})
}
