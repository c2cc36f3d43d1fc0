// Package sheets defines the ledger export port and the row layout shared by
// its adapters.
package sheets

import (
	"context"

	"finanzas/internal/core"
)

// Ports for outbound adapters.
type (
	// LedgerExporter mirrors the full ledger somewhere else. Every call
	// replaces what the previous one wrote.
	LedgerExporter interface {
		Export(ctx context.Context, txs []core.Transaction) error
	}
)

// Header is the first row of an export.
var Header = []any{"Fecha", "Concepto", "Categoría", "Tipo", "Importe", "Método de pago", "Registrado por", "ID"}

// Rows lays out the header, one row per transaction in the given order, and
// a totals block.
func Rows(txs []core.Transaction) [][]any {
	rows := make([][]any, 0, len(txs)+5)
	rows = append(rows, Header)
	for _, t := range txs {
		rows = append(rows, []any{
			t.Date,
			t.Title,
			t.CategoryName,
			string(t.Type),
			t.Amount,
			t.PaymentMethod,
			t.CreatedBy,
			t.ID,
		})
	}
	sum := core.Summarize(txs)
	rows = append(rows,
		[]any{},
		[]any{"Ingresos", sum.Income},
		[]any{"Gastos", sum.Expense},
		[]any{"Balance", sum.Balance},
	)
	return rows
}
