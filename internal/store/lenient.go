package store

import (
	"context"
	"log/slog"
	"sync/atomic"

	"finanzas/internal/core"
)

// LenientStore degrades read failures to "no data": an empty transaction
// list, or the default categories and users. Writes pass through unchanged.
// It reproduces the behaviour of the first version of the app and is only
// installed when LENIENT_READS is set.
type LenientStore struct {
	Store
}

type degradedKey struct{}

// TrackDegraded returns a context under which a LenientStore reports the
// reads it answered with a fallback. The flag is set once any read degrades.
func TrackDegraded(ctx context.Context) (context.Context, *atomic.Bool) {
	flag := &atomic.Bool{}
	return context.WithValue(ctx, degradedKey{}, flag), flag
}

// MarkDegraded sets the flag installed by TrackDegraded, if any.
func MarkDegraded(ctx context.Context) {
	if flag, ok := ctx.Value(degradedKey{}).(*atomic.Bool); ok {
		flag.Store(true)
	}
}

func Lenient(s Store) *LenientStore {
	return &LenientStore{Store: s}
}

func (l *LenientStore) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	txs, err := l.Store.ListTransactions(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Error fetching transactions, returning empty list", "error", err)
		MarkDegraded(ctx)
		return []core.Transaction{}, nil
	}
	return txs, nil
}

func (l *LenientStore) ListCategories(ctx context.Context) ([]core.Category, error) {
	cats, err := l.Store.ListCategories(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Error fetching categories, returning defaults", "error", err)
		MarkDegraded(ctx)
		return core.DefaultCategories(), nil
	}
	return cats, nil
}

func (l *LenientStore) ListUsers(ctx context.Context) ([]core.UserProfile, error) {
	users, err := l.Store.ListUsers(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Error fetching users, returning defaults", "error", err)
		MarkDegraded(ctx)
		return core.DefaultUsers(), nil
	}
	return users, nil
}
