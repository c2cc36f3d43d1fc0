package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"finanzas/internal/core"
	"finanzas/internal/store"
)

// HomeRoute is where every editor transition leads.
const HomeRoute = "/home"

type EditorMode string

const (
	ModeCreate EditorMode = "create"
	ModeEdit   EditorMode = "edit"
)

var (
	// ErrNotConfirmed is returned by Delete without an explicit confirmation.
	ErrNotConfirmed = errors.New("delete not confirmed")
	// ErrUnknownCategory means the draft names a category the store does not list.
	ErrUnknownCategory = errors.New("unknown category")
)

// ValidationError reports the form field that rejected a submission.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

// Draft holds the form fields as entered. Amount is the unsigned magnitude;
// the type decides the sign.
type Draft struct {
	ID            string               `json:"id,omitempty"`
	Title         string               `json:"title"`
	Amount        string               `json:"amount"`
	CategoryID    string               `json:"categoryId"`
	Date          string               `json:"date"`
	Type          core.TransactionType `json:"type"`
	PaymentMethod string               `json:"paymentMethod"`
	CreatedBy     string               `json:"createdBy"`
}

// Mode is derived from whether the draft is bound to an ID.
func (d Draft) Mode() EditorMode {
	if d.ID == "" {
		return ModeCreate
	}
	return ModeEdit
}

// Form is everything needed to render the editor.
type Form struct {
	Mode           EditorMode           `json:"mode"`
	Draft          Draft                `json:"draft"`
	Categories     []core.Category      `json:"categories"`
	Users          []core.UserProfile   `json:"users"`
	PaymentMethods []core.PaymentMethod `json:"paymentMethods"`
	Icons          []string             `json:"icons"`
}

// Outcome tells the caller where to go after a transition.
type Outcome struct {
	Next string `json:"next"`
	ID   string `json:"id,omitempty"`
}

// Editor implements the create/edit transaction flow on top of a store.
type Editor struct {
	store store.Store
	now   func() time.Time
}

func NewEditor(s store.Store) *Editor {
	return &Editor{store: s, now: time.Now}
}

// loadChoices fetches categories and users concurrently.
func (e *Editor) loadChoices(ctx context.Context) ([]core.Category, []core.UserProfile, error) {
	var (
		cats  []core.Category
		users []core.UserProfile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cats, err = e.store.ListCategories(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = e.store.ListUsers(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("load form choices: %w", err)
	}
	return cats, users, nil
}

func (e *Editor) form(d Draft, cats []core.Category, users []core.UserProfile) Form {
	return Form{
		Mode:           d.Mode(),
		Draft:          d,
		Categories:     cats,
		Users:          users,
		PaymentMethods: core.PaymentMethods,
		Icons:          core.CategoryIcons,
	}
}

// NewDraft opens the editor in Create mode: today's local date, the first
// household member, cash, expense. The category is left for the user.
func (e *Editor) NewDraft(ctx context.Context) (Form, error) {
	cats, users, err := e.loadChoices(ctx)
	if err != nil {
		return Form{}, err
	}
	d := Draft{
		Date:          core.Today(e.now()),
		Type:          core.Expense,
		PaymentMethod: core.DefaultPaymentMethod,
	}
	if len(users) > 0 {
		d.CreatedBy = users[0].Name
	}
	return e.form(d, cats, users), nil
}

// EditDraft opens the editor in Edit mode for id. known, when non-nil, is
// used as-is; otherwise the transaction is found by scanning the full list.
func (e *Editor) EditDraft(ctx context.Context, id string, known *core.Transaction) (Form, error) {
	cats, users, err := e.loadChoices(ctx)
	if err != nil {
		return Form{}, err
	}

	var t core.Transaction
	if known != nil && known.ID == id {
		t = *known
	} else {
		t, err = store.FindTransaction(ctx, e.store, id)
		if err != nil {
			return Form{}, fmt.Errorf("load transaction %s: %w", id, err)
		}
	}

	pm := t.PaymentMethod
	if pm == "" {
		pm = core.DefaultPaymentMethod
	}
	d := Draft{
		ID:            id,
		Title:         t.Title,
		Amount:        core.AbsString(t.Amount),
		CategoryID:    t.CategoryID,
		Date:          t.Date,
		Type:          t.Type,
		PaymentMethod: pm,
		CreatedBy:     t.CreatedBy,
	}
	return e.form(d, cats, users), nil
}

// Build turns a draft into the transaction to persist: signed amount and
// category name, icon and colour copied from the category.
func Build(d Draft, cats []core.Category) (core.Transaction, error) {
	if !d.Type.IsValid() {
		return core.Transaction{}, &ValidationError{Field: "type", Err: core.ErrInvalidType}
	}
	magnitude, err := core.ParseAmount(d.Amount)
	if err != nil {
		return core.Transaction{}, &ValidationError{Field: "amount", Err: err}
	}
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return core.Transaction{}, &ValidationError{Field: "title", Err: core.ErrEmptyTitle}
	}
	if d.CategoryID == "" {
		return core.Transaction{}, &ValidationError{Field: "categoryId", Err: core.ErrEmptyCategory}
	}
	var cat *core.Category
	for i := range cats {
		if cats[i].ID == d.CategoryID {
			cat = &cats[i]
			break
		}
	}
	if cat == nil {
		return core.Transaction{}, &ValidationError{Field: "categoryId", Err: ErrUnknownCategory}
	}

	pm := d.PaymentMethod
	if pm == "" {
		pm = core.DefaultPaymentMethod
	}
	t := core.Transaction{
		ID:            d.ID,
		Title:         title,
		CategoryID:    cat.ID,
		CategoryName:  cat.Name,
		Amount:        core.SignedAmount(magnitude, d.Type),
		Date:          strings.TrimSpace(d.Date),
		Type:          d.Type,
		Icon:          cat.Icon,
		IconColor:     cat.Color,
		PaymentMethod: pm,
		CreatedBy:     d.CreatedBy,
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, &ValidationError{Field: fieldFor(err), Err: err}
	}
	return t, nil
}

func fieldFor(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidDate):
		return "date"
	case errors.Is(err, core.ErrUnknownPayMethod):
		return "paymentMethod"
	case errors.Is(err, core.ErrInvalidAmount), errors.Is(err, core.ErrSignMismatch):
		return "amount"
	default:
		return "title"
	}
}

// Submit validates the draft and creates or updates the transaction
// depending on the mode.
func (e *Editor) Submit(ctx context.Context, d Draft) (Outcome, error) {
	cats, err := e.store.ListCategories(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("load categories: %w", err)
	}
	t, err := Build(d, cats)
	if err != nil {
		return Outcome{}, err
	}

	switch d.Mode() {
	case ModeEdit:
		if err := e.store.UpdateTransaction(ctx, t); err != nil {
			return Outcome{}, err
		}
		return Outcome{Next: HomeRoute, ID: t.ID}, nil
	default:
		id, err := e.store.SaveTransaction(ctx, t)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Next: HomeRoute, ID: id}, nil
	}
}

// Delete removes the transaction only when confirmed; otherwise nothing
// happens and ErrNotConfirmed is returned.
func (e *Editor) Delete(ctx context.Context, id string, confirmed bool) (Outcome, error) {
	if id == "" {
		return Outcome{}, &ValidationError{Field: "id", Err: errors.New("delete requires an existing transaction")}
	}
	if !confirmed {
		return Outcome{}, ErrNotConfirmed
	}
	if err := e.store.DeleteTransaction(ctx, id); err != nil {
		return Outcome{}, err
	}
	return Outcome{Next: HomeRoute, ID: id}, nil
}

// AddCategory creates a custom category applying to both types.
func (e *Editor) AddCategory(ctx context.Context, name, icon string) (core.Category, error) {
	icon = strings.TrimSpace(icon)
	if icon != "" && !core.IsCategoryIcon(icon) {
		return core.Category{}, &ValidationError{Field: "icon", Err: core.ErrUnknownIcon}
	}
	c := core.NewCustomCategory(strings.TrimSpace(name), icon)
	if err := c.Validate(); err != nil {
		return core.Category{}, &ValidationError{Field: "name", Err: err}
	}
	id, err := e.store.SaveCategory(ctx, c)
	if err != nil {
		return core.Category{}, err
	}
	c.ID = id
	return c, nil
}
