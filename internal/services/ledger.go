package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	flog "finanzas/internal/log"
	"finanzas/internal/store"
)

// EventPublisher announces ledger changes; *amqp.Client implements it.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, kind amqp.EventKind, id string) error
}

// Ledger fronts the store: writes go to the store first and are then
// announced on the publisher, if any. A failed publish is logged and never
// fails the write.
type Ledger struct {
	store     store.Store
	publisher EventPublisher
	cleanup   func() error
}

// Ensure interface conformance
var _ store.Store = (*Ledger)(nil)

// NewLedger wires a store and an optional publisher. cleanup releases the
// store's resources on Close and may be nil.
func NewLedger(s store.Store, publisher EventPublisher, cleanup func() error) *Ledger {
	return &Ledger{
		store:     s,
		publisher: publisher,
		cleanup:   cleanup,
	}
}

func (l *Ledger) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return l.store.ListTransactions(ctx)
}

func (l *Ledger) SaveTransaction(ctx context.Context, t core.Transaction) (string, error) {
	id, err := l.store.SaveTransaction(ctx, t)
	if err != nil {
		return "", fmt.Errorf("save transaction: %w", err)
	}
	t.ID = id
	logWritten(ctx, flog.OpCreate, t)
	l.publish(ctx, amqp.TransactionCreated, id)
	return id, nil
}

func (l *Ledger) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	if err := l.store.UpdateTransaction(ctx, t); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	logWritten(ctx, flog.OpUpdate, t)
	l.publish(ctx, amqp.TransactionUpdated, t.ID)
	return nil
}

func (l *Ledger) DeleteTransaction(ctx context.Context, id string) error {
	if err := l.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	logWritten(ctx, flog.OpDelete, core.Transaction{ID: id})
	l.publish(ctx, amqp.TransactionDeleted, id)
	return nil
}

func (l *Ledger) ListCategories(ctx context.Context) ([]core.Category, error) {
	return l.store.ListCategories(ctx)
}

func (l *Ledger) SaveCategory(ctx context.Context, c core.Category) (string, error) {
	id, err := l.store.SaveCategory(ctx, c)
	if err != nil {
		return "", fmt.Errorf("save category: %w", err)
	}
	l.publish(ctx, amqp.CategoryCreated, id)
	return id, nil
}

func (l *Ledger) ListUsers(ctx context.Context) ([]core.UserProfile, error) {
	return l.store.ListUsers(ctx)
}

func (l *Ledger) SaveUsers(ctx context.Context, users []core.UserProfile) error {
	for _, u := range users {
		if err := u.Validate(); err != nil {
			return fmt.Errorf("save users: user %q: %w", u.ID, err)
		}
	}
	if err := l.store.SaveUsers(ctx, users); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	l.publish(ctx, amqp.UsersSaved, "")
	return nil
}

func logWritten(ctx context.Context, op string, t core.Transaction) {
	flog.NewStructuredLogger(flog.FromContext(ctx)).
		LogTransactionWritten(ctx, op, t.ID, t.Title, t.Amount, string(t.Type), t.CategoryName, t.CreatedBy)
}

func (l *Ledger) publish(ctx context.Context, kind amqp.EventKind, id string) {
	if l.publisher == nil {
		slog.DebugContext(ctx, "No event publisher configured, skipping event", "kind", kind, "id", id)
		return
	}
	if err := l.publisher.PublishTransactionEvent(ctx, kind, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"kind", kind,
			"id", id,
			"error", err)
	}
}

// Close releases the store and the publisher.
func (l *Ledger) Close() error {
	var errs []error

	if l.cleanup != nil {
		if err := l.cleanup(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}

	if c, ok := l.publisher.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger: %w", errors.Join(errs...))
	}

	return nil
}
