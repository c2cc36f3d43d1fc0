package services

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"testing"
	"time"

	"finanzas/internal/core"
	"finanzas/internal/store"
)

func newTestEditor() (*Editor, store.Store) {
	s := newMemoryStore()
	e := NewEditor(s)
	e.now = func() time.Time { return time.Date(2024, 5, 9, 23, 30, 0, 0, time.Local) }
	return e, s
}

func TestNewDraftDefaults(t *testing.T) {
	e, _ := newTestEditor()
	form, err := e.NewDraft(context.Background())
	if err != nil {
		t.Fatalf("new draft: %v", err)
	}
	d := form.Draft
	if form.Mode != ModeCreate || d.ID != "" {
		t.Fatalf("expected create mode, got %s", form.Mode)
	}
	if d.Date != "2024-05-09" {
		t.Errorf("date = %s, want 2024-05-09", d.Date)
	}
	if d.CreatedBy != "Valeria" {
		t.Errorf("createdBy = %s, want first user", d.CreatedBy)
	}
	if d.PaymentMethod != core.PaymentCash || d.Type != core.Expense {
		t.Errorf("unexpected defaults: %+v", d)
	}
	if len(form.Categories) != 5 || len(form.Users) != 2 || len(form.PaymentMethods) != 4 {
		t.Errorf("unexpected choices: %d categories, %d users, %d methods",
			len(form.Categories), len(form.Users), len(form.PaymentMethods))
	}
}

func TestSubmitCreateScenario(t *testing.T) {
	ctx := context.Background()
	e, s := newTestEditor()

	out, err := e.Submit(ctx, Draft{
		Title: "Súper", Amount: "50", CategoryID: "cat_1",
		Date: "2024-05-09", Type: core.Expense, CreatedBy: "Valeria",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if out.Next != HomeRoute || out.ID == "" {
		t.Fatalf("unexpected outcome: %+v", out)
	}

	txs, _ := s.ListTransactions(ctx)
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}
	got := txs[0]
	if got.Amount != -50 || got.CategoryName != "Comida" || got.Icon != "restaurant" ||
		got.IconColor != "bg-orange-100 text-orange-500" || got.PaymentMethod != core.PaymentCash {
		t.Fatalf("unexpected stored transaction: %+v", got)
	}
	if core.ExpenseTotal(txs) != 50 || core.Balance(txs) != -50 {
		t.Fatalf("expense=%v balance=%v", core.ExpenseTotal(txs), core.Balance(txs))
	}
}

func TestEditScenario(t *testing.T) {
	ctx := context.Background()
	e, s := newTestEditor()
	out, _ := e.Submit(ctx, Draft{Title: "Súper", Amount: "50", CategoryID: "cat_1", Date: "2024-05-09", Type: core.Expense})

	// No in-memory copy: the editor scans the list.
	form, err := e.EditDraft(ctx, out.ID, nil)
	if err != nil {
		t.Fatalf("edit draft: %v", err)
	}
	if form.Mode != ModeEdit || form.Draft.Amount != "50" || form.Draft.Title != "Súper" {
		t.Fatalf("unexpected edit form: %+v", form.Draft)
	}

	d := form.Draft
	d.Amount = "75"
	if _, err := e.Submit(ctx, d); err != nil {
		t.Fatalf("submit edit: %v", err)
	}
	txs, _ := s.ListTransactions(ctx)
	if len(txs) != 1 || txs[0].Amount != -75 || txs[0].ID != out.ID {
		t.Fatalf("expected only the -75 entry, got %+v", txs)
	}
}

func TestEditDraftUsesKnownTransaction(t *testing.T) {
	e, _ := newTestEditor()
	known := core.Transaction{ID: "abc", Title: "Nómina", Amount: 1200, Type: core.Income, Date: "2024-05-01", CategoryID: "cat_4"}
	form, err := e.EditDraft(context.Background(), "abc", &known)
	if err != nil {
		t.Fatalf("edit draft: %v", err)
	}
	if form.Draft.Title != "Nómina" || form.Draft.PaymentMethod != core.PaymentCash {
		t.Fatalf("unexpected draft: %+v", form.Draft)
	}
}

func TestEditDraftMissing(t *testing.T) {
	e, _ := newTestEditor()
	if _, err := e.EditDraft(context.Background(), "nope", nil); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSubmitValidation(t *testing.T) {
	valid := Draft{Title: "x", Amount: "1", CategoryID: "cat_1", Date: "2024-01-01", Type: core.Expense}
	tests := []struct {
		name   string
		mutate func(*Draft)
		field  string
	}{
		{"missing amount", func(d *Draft) { d.Amount = "" }, "amount"},
		{"zero amount", func(d *Draft) { d.Amount = "0" }, "amount"},
		{"signed amount", func(d *Draft) { d.Amount = "-5" }, "amount"},
		{"missing title", func(d *Draft) { d.Title = "  " }, "title"},
		{"missing category", func(d *Draft) { d.CategoryID = "" }, "categoryId"},
		{"unknown category", func(d *Draft) { d.CategoryID = "cat_99" }, "categoryId"},
		{"bad date", func(d *Draft) { d.Date = "09/05/2024" }, "date"},
		{"bad type", func(d *Draft) { d.Type = "transfer" }, "type"},
		{"bad payment method", func(d *Draft) { d.PaymentMethod = "bitcoin" }, "paymentMethod"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, s := newTestEditor()
			d := valid
			tt.mutate(&d)
			_, err := e.Submit(context.Background(), d)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("field = %s, want %s", verr.Field, tt.field)
			}
			if txs, _ := s.ListTransactions(context.Background()); len(txs) != 0 {
				t.Errorf("nothing should be stored on validation failure")
			}
		})
	}
}

func TestBuildSignMatchesType(t *testing.T) {
	cats := core.DefaultCategories()
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		typ := core.Expense
		if r.Intn(2) == 0 {
			typ = core.Income
		}
		amount := strconv.FormatFloat(0.01+r.Float64()*1000, 'f', 2, 64)
		tx, err := Build(Draft{Title: "t", Amount: amount, CategoryID: cats[r.Intn(len(cats))].ID, Date: "2024-01-01", Type: typ}, cats)
		if err != nil {
			t.Fatalf("build %s %s: %v", amount, typ, err)
		}
		if (tx.Amount < 0) != (typ == core.Expense) {
			t.Fatalf("sign mismatch: amount %v type %s", tx.Amount, typ)
		}
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	ctx := context.Background()
	e, s := newTestEditor()
	out, _ := e.Submit(ctx, Draft{Title: "x", Amount: "1", CategoryID: "cat_1", Date: "2024-01-01", Type: core.Expense})

	if _, err := e.Delete(ctx, out.ID, false); !errors.Is(err, ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed, got %v", err)
	}
	if txs, _ := s.ListTransactions(ctx); len(txs) != 1 {
		t.Fatalf("unconfirmed delete must not remove anything")
	}

	res, err := e.Delete(ctx, out.ID, true)
	if err != nil || res.Next != HomeRoute {
		t.Fatalf("confirmed delete: %+v %v", res, err)
	}
	if txs, _ := s.ListTransactions(ctx); len(txs) != 0 {
		t.Fatalf("expected empty ledger after delete")
	}

	if _, err := e.Delete(ctx, "", true); err == nil {
		t.Fatal("delete in create mode must fail")
	}
}

func TestAddCategory(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEditor()

	c, err := e.AddCategory(ctx, " Mascotas ", "")
	if err != nil {
		t.Fatalf("add category: %v", err)
	}
	if c.ID == "" || c.Name != "Mascotas" || c.Icon != core.CustomCategoryIcon || c.Type != core.CategoryBoth {
		t.Fatalf("unexpected category: %+v", c)
	}

	// The new category is immediately usable from the form.
	if _, err := e.Submit(ctx, Draft{Title: "Pienso", Amount: "20", CategoryID: c.ID, Date: "2024-01-01", Type: core.Expense}); err != nil {
		t.Fatalf("submit with new category: %v", err)
	}

	if _, err := e.AddCategory(ctx, "", "pets"); err == nil {
		t.Fatal("expected error for empty name")
	}

	_, err = e.AddCategory(ctx, "Ocio", "no-such-icon")
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "icon" || !errors.Is(err, core.ErrUnknownIcon) {
		t.Fatalf("expected icon validation error, got %v", err)
	}
	if c, err := e.AddCategory(ctx, "Helados", "icecream"); err != nil || c.Icon != "icecream" {
		t.Fatalf("offered icon rejected: %+v %v", c, err)
	}
}
