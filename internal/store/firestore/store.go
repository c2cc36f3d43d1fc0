// Package firestore implements the persistence facade on Cloud Firestore.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"
	fsapi "google.golang.org/api/firestore/v1"

	"finanzas/internal/core"
	"finanzas/internal/gauth"
	"finanzas/internal/store"
)

const (
	TransactionsCollection = "transactions"
	CategoriesCollection   = "categories"
	UsersCollection        = "users"

	DefaultDatabase = "(default)"
)

type Config struct {
	ProjectID   string
	Database    string
	Credentials gauth.Credentials
}

type Store struct {
	docs documents
}

// Ensure interface conformance
var _ store.Store = (*Store)(nil)

// New connects to the configured project. It does not touch the network
// beyond building the client.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("missing firestore project id")
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	opts, err := cfg.Credentials.ClientOptions(ctx, fsapi.DatastoreScope)
	if err != nil {
		return nil, fmt.Errorf("firestore credentials: %w", err)
	}
	docs, err := newRESTDocuments(ctx, cfg.ProjectID, cfg.Database, opts...)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Firestore store ready", "project", cfg.ProjectID, "database", cfg.Database)
	return &Store{docs: docs}, nil
}

func newWithDocuments(docs documents) *Store {
	return &Store{docs: docs}
}

func (s *Store) Close() error { return nil }

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(store.ErrUnavailable, err))
}

func corrupt(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(store.ErrCorrupt, err))
}

func listAll[T any](ctx context.Context, docs documents, collection, orderBy string) ([]T, error) {
	raw, err := docs.List(ctx, collection, orderBy)
	if err != nil {
		return nil, unavailable("list "+collection, err)
	}
	out := make([]T, 0, len(raw))
	for _, d := range raw {
		v, err := decode[T](d)
		if err != nil {
			return nil, corrupt("decode "+collection, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Store) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return listAll[core.Transaction](ctx, s.docs, TransactionsCollection, "date desc")
}

func (s *Store) SaveTransaction(ctx context.Context, t core.Transaction) (string, error) {
	t.ID = ""
	fields, err := encode(t)
	if err != nil {
		return "", fmt.Errorf("encode transaction: %w", err)
	}
	id, err := s.docs.Create(ctx, TransactionsCollection, fields)
	if err != nil {
		return "", unavailable("create transaction", err)
	}
	slog.InfoContext(ctx, "Transaction saved to Firestore",
		"id", id,
		"title", t.Title,
		"amount", t.Amount,
		"type", t.Type)
	return id, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	if t.ID == "" {
		return fmt.Errorf("update transaction: %w", store.ErrNotFound)
	}
	fields, err := encode(t)
	if err != nil {
		return fmt.Errorf("encode transaction: %w", err)
	}
	if err := s.docs.Set(ctx, TransactionsCollection, t.ID, fields, true); err != nil {
		if errors.Is(err, errDocumentMissing) {
			return fmt.Errorf("update transaction %s: %w", t.ID, store.ErrNotFound)
		}
		return unavailable("update transaction "+t.ID, err)
	}
	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.docs.Delete(ctx, TransactionsCollection, id); err != nil {
		return unavailable("delete transaction "+id, err)
	}
	return nil
}

// ListCategories reads an empty collection as the defaults without writing
// them.
func (s *Store) ListCategories(ctx context.Context) ([]core.Category, error) {
	cats, err := listAll[core.Category](ctx, s.docs, CategoriesCollection, "")
	if err != nil {
		return nil, err
	}
	if len(cats) == 0 {
		return core.DefaultCategories(), nil
	}
	return cats, nil
}

func (s *Store) SaveCategory(ctx context.Context, c core.Category) (string, error) {
	c.ID = ""
	fields, err := encode(c)
	if err != nil {
		return "", fmt.Errorf("encode category: %w", err)
	}
	id, err := s.docs.Create(ctx, CategoriesCollection, fields)
	if err != nil {
		return "", unavailable("create category", err)
	}
	slog.InfoContext(ctx, "Category saved to Firestore", "id", id, "name", c.Name)
	return id, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]core.UserProfile, error) {
	users, err := listAll[core.UserProfile](ctx, s.docs, UsersCollection, "")
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return core.DefaultUsers(), nil
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// SaveUsers writes every profile at its own ID, creating or overwriting.
func (s *Store) SaveUsers(ctx context.Context, users []core.UserProfile) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, u := range users {
		g.Go(func() error {
			if u.ID == "" {
				return errors.New("save users: profile without id")
			}
			fields, err := encode(u)
			if err != nil {
				return fmt.Errorf("encode user %s: %w", u.ID, err)
			}
			if err := s.docs.Set(gctx, UsersCollection, u.ID, fields, false); err != nil {
				return unavailable("save user "+u.ID, err)
			}
			return nil
		})
	}
	return g.Wait()
}
