package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"finanzas/internal/core"
	"finanzas/internal/store"
	"finanzas/internal/store/kv"
	"finanzas/internal/store/local"
)

func TestLRUCache_Eviction(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // a is now most recent
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("a = %v, %v", v, ok)
	}
	if c.Size() != 2 {
		t.Errorf("size = %d, want 2", c.Size())
	}
}

func TestLRUCache_TTL(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("k", "v")
	c.Set("j", "w")
	now = now.Add(2 * time.Minute)

	if _, ok := c.Get("k"); ok {
		t.Error("expired entry returned")
	}
	if n := c.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired = %d, want 1", n)
	}
	if c.Size() != 0 {
		t.Errorf("size = %d, want 0", c.Size())
	}
}

type countingStore struct {
	store.Store
	categoryReads int
	userReads     int
	fail          error
}

func (c *countingStore) ListCategories(ctx context.Context) ([]core.Category, error) {
	c.categoryReads++
	if c.fail != nil {
		return nil, c.fail
	}
	return c.Store.ListCategories(ctx)
}

func (c *countingStore) ListUsers(ctx context.Context) ([]core.UserProfile, error) {
	c.userReads++
	return c.Store.ListUsers(ctx)
}

func TestStore_CachesAndInvalidates(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{Store: local.New(kv.NewMemory())}
	s := NewStore(inner, time.Minute)

	for i := 0; i < 3; i++ {
		if _, err := s.ListCategories(ctx); err != nil {
			t.Fatalf("list: %v", err)
		}
	}
	if inner.categoryReads != 1 {
		t.Fatalf("expected 1 backing read, got %d", inner.categoryReads)
	}

	if _, err := s.SaveCategory(ctx, core.NewCustomCategory("Mascotas", "")); err != nil {
		t.Fatalf("save: %v", err)
	}
	cats, _ := s.ListCategories(ctx)
	if len(cats) != 6 || inner.categoryReads != 2 {
		t.Fatalf("expected fresh read after save, got %d cats and %d reads", len(cats), inner.categoryReads)
	}

	_, _ = s.ListUsers(ctx)
	_ = s.SaveUsers(ctx, core.DefaultUsers()[:1])
	users, _ := s.ListUsers(ctx)
	if len(users) != 1 || inner.userReads != 2 {
		t.Fatalf("expected invalidated users, got %d users and %d reads", len(users), inner.userReads)
	}
}

func TestStore_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{Store: local.New(kv.NewMemory()), fail: store.ErrUnavailable}
	s := NewStore(inner, time.Minute)

	if _, err := s.ListCategories(ctx); !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	inner.fail = nil
	if _, err := s.ListCategories(ctx); err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
}

// gatedStore blocks the first category read until release is closed.
type gatedStore struct {
	store.Store
	entered chan struct{}
	release chan struct{}
	once    bool
}

func (g *gatedStore) ListCategories(ctx context.Context) ([]core.Category, error) {
	cats, err := g.Store.ListCategories(ctx)
	if !g.once {
		g.once = true
		close(g.entered)
		<-g.release
	}
	return cats, err
}

func TestStore_SaveDuringMissDoesNotCacheStaleList(t *testing.T) {
	ctx := context.Background()
	inner := &gatedStore{
		Store:   local.New(kv.NewMemory()),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := NewStore(inner, time.Minute)

	done := make(chan []core.Category)
	go func() {
		cats, _ := s.ListCategories(ctx)
		done <- cats
	}()
	<-inner.entered

	id, err := s.SaveCategory(ctx, core.NewCustomCategory("Mascotas", ""))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	close(inner.release)
	if stale := <-done; len(stale) != 5 {
		t.Fatalf("in-flight read should see the old list, got %d", len(stale))
	}

	cats, err := s.ListCategories(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cats) != 6 || cats[5].ID != id {
		t.Fatalf("expected the saved category after the save, got %d categories", len(cats))
	}
}

func TestStore_LenientFallbackIsNotCached(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{Store: local.New(kv.NewMemory()), fail: store.ErrUnavailable}
	s := NewStore(store.Lenient(inner), time.Minute)

	cats, err := s.ListCategories(ctx)
	if err != nil || len(cats) != 5 {
		t.Fatalf("expected defaults from the lenient store, got %d %v", len(cats), err)
	}
	inner.fail = nil
	if _, err := s.ListCategories(ctx); err != nil {
		t.Fatalf("list: %v", err)
	}
	if inner.categoryReads != 2 {
		t.Fatalf("degraded read was cached: %d backing reads", inner.categoryReads)
	}
	_, _ = s.ListCategories(ctx)
	if inner.categoryReads != 2 {
		t.Fatalf("healthy read should be cached: %d backing reads", inner.categoryReads)
	}
}

func TestManager(t *testing.T) {
	c := NewLRUCache[int](4, time.Nanosecond)
	c.Set("x", 1)
	m := NewManager()
	m.Register(c)
	m.StartCleanup(time.Millisecond)
	deadline := time.Now().Add(time.Second)
	for c.Size() != 0 && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	m.Stop()
	if c.Size() != 0 {
		t.Fatal("manager did not clean expired entries")
	}
}
