package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finanzas/internal/amqp"
	"finanzas/internal/sheets"
	"finanzas/internal/store"
)

// ExportWorker mirrors the ledger to a LedgerExporter. Change events and the
// periodic tick only mark the mirror stale; Run performs at most one export
// per signal, so a burst of writes collapses into a single export.
type ExportWorker struct {
	ledger   store.TransactionStore
	exporter sheets.LedgerExporter
	interval time.Duration
	pending  chan struct{}
}

func NewExportWorker(ledger store.TransactionStore, exporter sheets.LedgerExporter, interval time.Duration) *ExportWorker {
	return &ExportWorker{
		ledger:   ledger,
		exporter: exporter,
		interval: interval,
		pending:  make(chan struct{}, 1),
	}
}

// HandleEvent is the AMQP consumer callback.
func (w *ExportWorker) HandleEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	slog.DebugContext(ctx, "Ledger change received",
		"kind", ev.Kind,
		"id", ev.ID,
		"timestamp", ev.Timestamp)
	w.markStale()
	return nil
}

func (w *ExportWorker) markStale() {
	select {
	case w.pending <- struct{}{}:
	default:
	}
}

// ExportNow reads the whole ledger and hands it to the exporter.
func (w *ExportWorker) ExportNow(ctx context.Context) error {
	start := time.Now()
	txs, err := w.ledger.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	if err := w.exporter.Export(ctx, txs); err != nil {
		return fmt.Errorf("export ledger: %w", err)
	}
	slog.InfoContext(ctx, "Ledger exported",
		"transactions", len(txs),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// Run exports once at startup, then on every change signal and every
// interval until ctx is cancelled. Export failures are logged and retried on
// the next signal.
func (w *ExportWorker) Run(ctx context.Context) error {
	if err := w.ExportNow(ctx); err != nil {
		slog.ErrorContext(ctx, "Startup export failed", "error", err)
	}

	var tick <-chan time.Time
	if w.interval > 0 {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.pending:
		case <-tick:
			slog.DebugContext(ctx, "Periodic export")
		}
		if err := w.ExportNow(ctx); err != nil {
			slog.ErrorContext(ctx, "Export failed", "error", err)
		}
	}
}
