package memory

import (
	"context"
	"testing"

	"finanzas/internal/core"
)

func TestExporterReplacesPreviousExport(t *testing.T) {
	ctx := context.Background()
	e := New()

	_ = e.Export(ctx, []core.Transaction{{ID: "a"}, {ID: "b"}})
	_ = e.Export(ctx, []core.Transaction{{ID: "c"}})

	if e.Exports() != 2 {
		t.Fatalf("exports = %d, want 2", e.Exports())
	}
	rows := e.Rows()
	if len(rows) != 1+1+4 || rows[1][7] != "c" {
		t.Fatalf("expected only the last ledger, got %v", rows)
	}
}
