package core

import (
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
)

// Summary holds the aggregate figures shown on the home screen.
type Summary struct {
	Balance      float64 `json:"balance"`
	Income       float64 `json:"income"`
	Expense      float64 `json:"expense"`
	Count        int     `json:"count"`
	IncomeCount  int     `json:"incomeCount"`
	ExpenseCount int     `json:"expenseCount"`
}

// CategoryAmount represents an expense total aggregated by category name.
type CategoryAmount struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// TrendPoint is one sample of the recent-activity chart.
type TrendPoint struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Balance is the signed sum of all amounts.
func Balance(txs []Transaction) float64 {
	sum := decimal.Zero
	for _, t := range txs {
		sum = sum.Add(decimal.NewFromFloat(t.Amount))
	}
	return sum.InexactFloat64()
}

// IncomeTotal sums the amounts of income transactions.
func IncomeTotal(txs []Transaction) float64 {
	sum := decimal.Zero
	for _, t := range txs {
		if t.Type == Income {
			sum = sum.Add(decimal.NewFromFloat(t.Amount))
		}
	}
	return sum.InexactFloat64()
}

// ExpenseTotal sums the absolute amounts of expense transactions.
func ExpenseTotal(txs []Transaction) float64 {
	sum := decimal.Zero
	for _, t := range txs {
		if t.Type == Expense {
			sum = sum.Add(decimal.NewFromFloat(t.Amount).Abs())
		}
	}
	return sum.InexactFloat64()
}

func Summarize(txs []Transaction) Summary {
	s := Summary{
		Balance: Balance(txs),
		Income:  IncomeTotal(txs),
		Expense: ExpenseTotal(txs),
		Count:   len(txs),
	}
	for _, t := range txs {
		switch t.Type {
		case Income:
			s.IncomeCount++
		case Expense:
			s.ExpenseCount++
		}
	}
	return s
}

// Recent returns at most n transactions from the head of a newest-first list.
func Recent(txs []Transaction, n int) []Transaction {
	if n < 0 {
		n = 0
	}
	if len(txs) < n {
		n = len(txs)
	}
	out := make([]Transaction, n)
	copy(out, txs[:n])
	return out
}

// Trend returns the absolute amounts of the n most recent transactions,
// oldest first. An empty ledger yields two zero points so a chart still has
// a line to draw.
func Trend(txs []Transaction, n int) []TrendPoint {
	recent := Recent(txs, n)
	if len(recent) == 0 {
		return []TrendPoint{{Name: "0"}, {Name: "1"}}
	}
	out := make([]TrendPoint, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		out = append(out, TrendPoint{
			Name:  strconv.Itoa(len(out)),
			Value: decimal.NewFromFloat(recent[i].Amount).Abs().InexactFloat64(),
		})
	}
	return out
}

// ByCategory aggregates expense totals per category name, largest first.
func ByCategory(txs []Transaction) []CategoryAmount {
	sums := map[string]decimal.Decimal{}
	for _, t := range txs {
		if t.Type != Expense {
			continue
		}
		name := t.CategoryName
		if name == "" {
			name = "(Sin categoría)"
		}
		sums[name] = sums[name].Add(decimal.NewFromFloat(t.Amount).Abs())
	}
	out := make([]CategoryAmount, 0, len(sums))
	for name, amt := range sums {
		out = append(out, CategoryAmount{Name: name, Amount: amt.InexactFloat64()})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Name < out[j].Name
	})
	return out
}
