package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	gsheet "google.golang.org/api/sheets/v4"

	"finanzas/internal/core"
	"finanzas/internal/gauth"
	ports "finanzas/internal/sheets"
)

const writeBatchSize = 500

// Config selects the target sheet and the credentials to reach it.
type Config struct {
	SpreadsheetID string
	SheetName     string
	Credentials   gauth.Credentials
}

// values is the part of the Sheets values API the exporter needs.
type values interface {
	Clear(ctx context.Context, spreadsheetID, rng string) error
	Update(ctx context.Context, spreadsheetID, rng string, rows [][]any) error
}

type Client struct {
	values        values
	spreadsheetID string
	sheetName     string
}

// Ensure interface conformance
var _ ports.LedgerExporter = (*Client)(nil)

func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.SpreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if cfg.SheetName == "" {
		return nil, errors.New("missing sheet name")
	}
	opts, err := cfg.Credentials.ClientOptions(ctx, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("sheets credentials: %w", err)
	}
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets exporter ready",
		"spreadsheet_id", cfg.SpreadsheetID,
		"sheet", cfg.SheetName)

	return &Client{
		values:        &restValues{svc: svc},
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
	}, nil
}

// Export clears the sheet and writes the ledger from A1 in batches.
func (c *Client) Export(ctx context.Context, txs []core.Transaction) error {
	if c.values == nil {
		return errors.New("sheets service not initialized")
	}

	if err := c.values.Clear(ctx, c.spreadsheetID, c.sheetName+"!A:Z"); err != nil {
		return fmt.Errorf("clear sheet %s: %w", c.sheetName, err)
	}

	rows := ports.Rows(txs)
	for i := 0; i < len(rows); i += writeBatchSize {
		end := min(i+writeBatchSize, len(rows))
		rng := fmt.Sprintf("%s!A%d", c.sheetName, i+1)
		if err := c.values.Update(ctx, c.spreadsheetID, rng, rows[i:end]); err != nil {
			return fmt.Errorf("write batch starting at row %d: %w", i+1, err)
		}
	}

	slog.InfoContext(ctx, "Ledger exported to Google Sheets",
		"sheet", c.sheetName,
		"transactions", len(txs),
		"rows", len(rows))
	return nil
}

type restValues struct {
	svc *gsheet.Service
}

func (r *restValues) Clear(ctx context.Context, spreadsheetID, rng string) error {
	_, err := r.svc.Spreadsheets.Values.Clear(spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

func (r *restValues) Update(ctx context.Context, spreadsheetID, rng string, rows [][]any) error {
	_, err := r.svc.Spreadsheets.Values.Update(spreadsheetID, rng, &gsheet.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	return err
}
