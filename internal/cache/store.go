package cache

import (
	"context"
	"sync"
	"time"

	"finanzas/internal/core"
	"finanzas/internal/store"
)

const (
	categoriesKey = "categories"
	usersKey      = "users"
)

// Store caches the category and user lists of the wrapped store. Writes
// through this Store invalidate the matching entry; transactions are never
// cached. Reads answered with a lenient fallback are not cached either.
type Store struct {
	store.Store
	categories *LRUCache[[]core.Category]
	users      *LRUCache[[]core.UserProfile]

	// mu guards the generations. A save bumps its generation, and a list only
	// fills the cache when no save finished while it was reading.
	mu            sync.Mutex
	categoriesGen uint64
	usersGen      uint64
}

// Ensure interface conformance
var _ store.Store = (*Store)(nil)

func NewStore(s store.Store, ttl time.Duration) *Store {
	return &Store{
		Store:      s,
		categories: NewLRUCache[[]core.Category](1, ttl),
		users:      NewLRUCache[[]core.UserProfile](1, ttl),
	}
}

// Register adds the store's caches to m for periodic cleanup.
func (s *Store) Register(m *Manager) {
	m.Register(s.categories)
	m.Register(s.users)
}

func (s *Store) ListCategories(ctx context.Context) ([]core.Category, error) {
	if cats, ok := s.categories.Get(categoriesKey); ok {
		return append([]core.Category(nil), cats...), nil
	}
	gen := s.generation(&s.categoriesGen)
	tracked, degraded := store.TrackDegraded(ctx)
	cats, err := s.Store.ListCategories(tracked)
	if err != nil {
		return nil, err
	}
	if degraded.Load() {
		store.MarkDegraded(ctx)
	}
	s.fill(&s.categoriesGen, gen, degraded.Load(), func() {
		s.categories.Set(categoriesKey, append([]core.Category(nil), cats...))
	})
	return cats, nil
}

func (s *Store) SaveCategory(ctx context.Context, c core.Category) (string, error) {
	defer s.invalidate(&s.categoriesGen, func() { s.categories.Delete(categoriesKey) })
	return s.Store.SaveCategory(ctx, c)
}

func (s *Store) ListUsers(ctx context.Context) ([]core.UserProfile, error) {
	if users, ok := s.users.Get(usersKey); ok {
		return append([]core.UserProfile(nil), users...), nil
	}
	gen := s.generation(&s.usersGen)
	tracked, degraded := store.TrackDegraded(ctx)
	users, err := s.Store.ListUsers(tracked)
	if err != nil {
		return nil, err
	}
	if degraded.Load() {
		store.MarkDegraded(ctx)
	}
	s.fill(&s.usersGen, gen, degraded.Load(), func() {
		s.users.Set(usersKey, append([]core.UserProfile(nil), users...))
	})
	return users, nil
}

func (s *Store) SaveUsers(ctx context.Context, users []core.UserProfile) error {
	defer s.invalidate(&s.usersGen, func() { s.users.Delete(usersKey) })
	return s.Store.SaveUsers(ctx, users)
}

func (s *Store) generation(gen *uint64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *gen
}

// fill runs set unless a save completed since seen was read or the read
// degraded.
func (s *Store) fill(gen *uint64, seen uint64, degraded bool, set func()) {
	if degraded {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if *gen == seen {
		set()
	}
}

func (s *Store) invalidate(gen *uint64, drop func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	*gen++
	drop()
}
