// Package core provides money parsing and handling utilities.
//
// Amounts are stored as float64 for compatibility with the persisted JSON
// and document formats; parsing and arithmetic go through decimals.
package core

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the ISO code used for display formatting.
const DefaultCurrency = money.EUR

// ParseAmount converts a user-entered magnitude to a positive decimal
// rounded half-up to two places.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. A leading
// sign is rejected: the transaction type carries the sign.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("12,345") -> 12.35, nil
//	ParseAmount("-3")     -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	d = d.Round(2)
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// SignedAmount applies the sign convention: expenses are negative, income
// positive, whatever the sign of the input.
func SignedAmount(magnitude decimal.Decimal, t TransactionType) float64 {
	abs := magnitude.Abs()
	if t == Expense {
		return abs.Neg().InexactFloat64()
	}
	return abs.InexactFloat64()
}

// FormatAmount renders an amount in the given currency, e.g. "-€50.00".
func FormatAmount(amount float64, currency string) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	minor := decimal.NewFromFloat(amount).Shift(2).Round(0).IntPart()
	return money.New(minor, currency).Display()
}

// AbsString renders the unsigned magnitude the edit form shows.
func AbsString(amount float64) string {
	return decimal.NewFromFloat(amount).Abs().String()
}
