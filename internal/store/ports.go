// Package store defines the persistence ports shared by the local and remote
// adapters, and the error taxonomy callers use to tell "no data" apart from
// "store failed".
package store

import (
	"context"
	"errors"

	"finanzas/internal/core"
)

// Ports for outbound adapters.
type (
	TransactionStore interface {
		// ListTransactions returns every transaction, newest first.
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		// SaveTransaction creates a transaction and returns the identifier the
		// store assigned. Any ID on the input is ignored.
		SaveTransaction(ctx context.Context, t core.Transaction) (id string, err error)
		// UpdateTransaction overwrites the transaction with the same ID.
		UpdateTransaction(ctx context.Context, t core.Transaction) error
		// DeleteTransaction removes a transaction. Unknown IDs are not an error.
		DeleteTransaction(ctx context.Context, id string) error
	}

	CategoryStore interface {
		ListCategories(ctx context.Context) ([]core.Category, error)
		SaveCategory(ctx context.Context, c core.Category) (id string, err error)
	}

	UserStore interface {
		ListUsers(ctx context.Context) ([]core.UserProfile, error)
		// SaveUsers replaces profiles by ID; saving the same list twice is a no-op.
		SaveUsers(ctx context.Context, users []core.UserProfile) error
	}

	// Store is the full persistence facade.
	Store interface {
		TransactionStore
		CategoryStore
		UserStore
	}
)

var (
	// ErrUnavailable wraps transport, permission and connectivity failures.
	ErrUnavailable = errors.New("store unavailable")
	// ErrNotFound is returned when updating a transaction that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrCorrupt is returned when persisted data cannot be decoded.
	ErrCorrupt = errors.New("stored data is corrupt")
)

// FindTransaction scans the full list for id. It is the lookup the edit flow
// falls back to when it has no in-memory copy.
func FindTransaction(ctx context.Context, s TransactionStore, id string) (core.Transaction, error) {
	all, err := s.ListTransactions(ctx)
	if err != nil {
		return core.Transaction{}, err
	}
	for _, t := range all {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Transaction{}, ErrNotFound
}
