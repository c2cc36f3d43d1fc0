// Package memory keeps exports in process, for local runs without Google
// credentials and for tests.
package memory

import (
	"context"
	"sync"

	"finanzas/internal/core"
	ports "finanzas/internal/sheets"
)

type Exporter struct {
	mu      sync.Mutex
	rows    [][]any
	exports int
}

// Ensure interface conformance
var _ ports.LedgerExporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{}
}

func (e *Exporter) Export(_ context.Context, txs []core.Transaction) error {
	rows := ports.Rows(txs)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rows = rows
	e.exports++
	return nil
}

// Rows returns the rows of the last export.
func (e *Exporter) Rows() [][]any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([][]any(nil), e.rows...)
}

// Exports counts completed exports.
func (e *Exporter) Exports() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exports
}
