package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Expense TransactionType = "expense"
	Income  TransactionType = "income"

	CategoryExpense CategoryType = "expense"
	CategoryIncome  CategoryType = "income"
	CategoryBoth    CategoryType = "both"
)

// DateLayout is the ISO calendar date format used for Transaction.Date.
const DateLayout = "2006-01-02"

type (
	TransactionType string

	CategoryType string

	// Transaction is one ledger entry. Amount is signed: negative for
	// expenses, positive for income.
	Transaction struct {
		ID            string          `json:"id"`
		Title         string          `json:"title"`
		CategoryID    string          `json:"categoryId"`
		CategoryName  string          `json:"categoryName"`
		Amount        float64         `json:"amount"`
		Date          string          `json:"date"`
		Type          TransactionType `json:"type"`
		Icon          string          `json:"icon"`
		IconColor     string          `json:"iconColor"`
		PaymentMethod string          `json:"paymentMethod"`
		CreatedBy     string          `json:"createdBy"`
	}

	Category struct {
		ID    string       `json:"id"`
		Name  string       `json:"name"`
		Icon  string       `json:"icon"`
		Color string       `json:"color"`
		Type  CategoryType `json:"type"`
	}

	// UserProfile is a household member. Color is the avatar fill token,
	// TextColor the matching text token.
	UserProfile struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Color     string `json:"color"`
		TextColor string `json:"textColor"`
	}
)

var (
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrSignMismatch     = errors.New("amount sign does not match transaction type")
	ErrEmptyTitle       = errors.New("empty title")
	ErrEmptyCategory    = errors.New("empty category")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidCategory  = errors.New("invalid category type")
	ErrUnknownPayMethod = errors.New("unknown payment method")
	ErrUnknownIcon      = errors.New("unknown icon")
)

func (t TransactionType) IsValid() bool {
	return t == Expense || t == Income
}

func (t CategoryType) IsValid() bool {
	switch t {
	case CategoryExpense, CategoryIncome, CategoryBoth:
		return true
	default:
		return false
	}
}

// AppliesTo reports whether the category can tag transactions of type t.
func (c Category) AppliesTo(t TransactionType) bool {
	return c.Type == CategoryBoth || string(c.Type) == string(t)
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.Type.IsValid() {
		return ErrInvalidCategory
	}
	return nil
}

// Validate checks the record as the edit flow builds it, including the
// sign/type invariant. Stores never call it.
func (t Transaction) Validate() error {
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if t.Amount == 0 {
		return ErrInvalidAmount
	}
	if (t.Amount < 0) != (t.Type == Expense) {
		return ErrSignMismatch
	}
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if len(t.Title) > 200 {
		return errors.New("title too long (max 200 characters)")
	}
	if strings.TrimSpace(t.CategoryID) == "" {
		return ErrEmptyCategory
	}
	if _, err := ParseDate(t.Date); err != nil {
		return err
	}
	if t.PaymentMethod != "" && !IsPaymentMethod(t.PaymentMethod) {
		return ErrUnknownPayMethod
	}
	return nil
}

func (u UserProfile) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return errors.New("empty user id")
	}
	if strings.TrimSpace(u.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// WithColor sets the fill token and, when it belongs to the palette, the
// paired text token.
func (u UserProfile) WithColor(fill string) UserProfile {
	u.Color = fill
	for _, c := range Palette {
		if c.Fill == fill {
			u.TextColor = c.Text
			break
		}
	}
	return u
}

// ParseDate parses an ISO calendar date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// Today returns the current local date in DateLayout.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}
