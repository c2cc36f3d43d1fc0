// Package local implements the persistence facade on a key-value store. Each
// collection is one JSON array under a fixed key; every write reads the whole
// array, changes it in memory and writes it back.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"finanzas/internal/core"
	"finanzas/internal/store"
	"finanzas/internal/store/kv"
)

const (
	TransactionsKey = "finanzas_pro_transactions"
	CategoriesKey   = "finanzas_pro_categories"
	UsersKey        = "finanzas_pro_users"
)

// Keys lists every key the adapter owns.
var Keys = []string{TransactionsKey, CategoriesKey, UsersKey}

type Store struct {
	kv    kv.Store
	newID func() string

	// mu serializes read-modify-write cycles within this process.
	mu sync.Mutex
}

// Ensure interface conformance
var _ store.Store = (*Store)(nil)

func New(backing kv.Store) *Store {
	return &Store{
		kv:    backing,
		newID: func() string { return uuid.NewString() },
	}
}

func (s *Store) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	txs, _, err := readBlob[core.Transaction](ctx, s.kv, TransactionsKey)
	return txs, err
}

func (s *Store) SaveTransaction(ctx context.Context, t core.Transaction) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, _, err := readBlob[core.Transaction](ctx, s.kv, TransactionsKey)
	if err != nil {
		return "", err
	}
	t.ID = s.newID()
	updated := append([]core.Transaction{t}, current...)
	if err := writeBlob(ctx, s.kv, TransactionsKey, updated); err != nil {
		return "", err
	}

	slog.InfoContext(ctx, "Transaction saved to local store",
		"id", t.ID,
		"title", t.Title,
		"amount", t.Amount,
		"type", t.Type)
	return t.ID, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, _, err := readBlob[core.Transaction](ctx, s.kv, TransactionsKey)
	if err != nil {
		return err
	}
	found := false
	for i := range current {
		if current[i].ID == t.ID {
			current[i] = t
			found = true
		}
	}
	if !found {
		return fmt.Errorf("update transaction %s: %w", t.ID, store.ErrNotFound)
	}
	return writeBlob(ctx, s.kv, TransactionsKey, current)
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, _, err := readBlob[core.Transaction](ctx, s.kv, TransactionsKey)
	if err != nil {
		return err
	}
	kept := current[:0]
	for _, t := range current {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(current) {
		slog.DebugContext(ctx, "Delete of unknown transaction ignored", "id", id)
		return nil
	}
	return writeBlob(ctx, s.kv, TransactionsKey, kept)
}

func (s *Store) ListCategories(ctx context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.categoriesLocked(ctx)
}

func (s *Store) SaveCategory(ctx context.Context, c core.Category) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.categoriesLocked(ctx)
	if err != nil {
		return "", err
	}
	c.ID = s.newID()
	if err := writeBlob(ctx, s.kv, CategoriesKey, append(current, c)); err != nil {
		return "", err
	}
	slog.InfoContext(ctx, "Category saved to local store", "id", c.ID, "name", c.Name)
	return c.ID, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]core.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, ok, err := readBlob[core.UserProfile](ctx, s.kv, UsersKey)
	if err != nil {
		return nil, err
	}
	if ok {
		return users, nil
	}
	users = core.DefaultUsers()
	if err := writeBlob(ctx, s.kv, UsersKey, users); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Seeded default users", "count", len(users))
	return users, nil
}

func (s *Store) SaveUsers(ctx context.Context, users []core.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if users == nil {
		users = []core.UserProfile{}
	}
	return writeBlob(ctx, s.kv, UsersKey, users)
}

// categoriesLocked seeds the defaults on first read. Caller holds s.mu.
func (s *Store) categoriesLocked(ctx context.Context) ([]core.Category, error) {
	cats, ok, err := readBlob[core.Category](ctx, s.kv, CategoriesKey)
	if err != nil {
		return nil, err
	}
	if ok {
		return cats, nil
	}
	cats = core.DefaultCategories()
	if err := writeBlob(ctx, s.kv, CategoriesKey, cats); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Seeded default categories", "count", len(cats))
	return cats, nil
}

// readBlob decodes the array stored under key. ok is false when the key has
// never been written; a missing key reads as an empty, non-nil slice.
func readBlob[T any](ctx context.Context, backing kv.Store, key string) ([]T, bool, error) {
	raw, ok, err := backing.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return []T{}, false, nil
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, true, fmt.Errorf("decode %s: %w", key, errors.Join(store.ErrCorrupt, err))
	}
	if out == nil {
		out = []T{}
	}
	return out, true, nil
}

func writeBlob[T any](ctx context.Context, backing kv.Store, key string, items []T) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := backing.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
