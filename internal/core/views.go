package core

import "strings"

// TransactionFilter narrows a ledger listing; zero fields match everything.
type TransactionFilter struct {
	Type      TransactionType
	CreatedBy string
}

func (f TransactionFilter) Match(t Transaction) bool {
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.CreatedBy != "" && !strings.EqualFold(t.CreatedBy, f.CreatedBy) {
		return false
	}
	return true
}

// Filter keeps the order of txs.
func Filter(txs []Transaction, f TransactionFilter) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// CategoriesFor returns the categories usable for t, in store order.
func CategoriesFor(cats []Category, t TransactionType) []Category {
	out := make([]Category, 0, len(cats))
	for _, c := range cats {
		if c.AppliesTo(t) {
			out = append(out, c)
		}
	}
	return out
}

// HouseholdLabel joins member names for the home header, e.g.
// "Valeria y Andrés".
func HouseholdLabel(users []UserProfile) string {
	names := make([]string, 0, len(users))
	for _, u := range users {
		if n := strings.TrimSpace(u.Name); n != "" {
			names = append(names, n)
		}
	}
	return strings.Join(names, " y ")
}
