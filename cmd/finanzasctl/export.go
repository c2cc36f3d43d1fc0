package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"finanzas/internal/cli"
	"finanzas/internal/sheets"
	gsheet "finanzas/internal/sheets/google"
)

func exportCmd(a *app) *cobra.Command {
	var (
		toSheets bool
		out      string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the ledger as CSV or to the configured Google Sheet",
		Long: `Export writes the same rows the worker mirrors to Google Sheets: a header,
one row per movement and the income, expense and balance totals.

Without --sheets the rows are written as CSV.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ledger, err := a.store(cmd.Context())
			if err != nil {
				return err
			}
			txs, err := ledger.ListTransactions(cmd.Context())
			if err != nil {
				return err
			}

			if toSheets {
				if err := a.cfg.ValidateExport(); err != nil {
					return err
				}
				client, err := gsheet.New(cmd.Context(), gsheet.Config{
					SpreadsheetID: a.cfg.GoogleSpreadsheetID,
					SheetName:     a.cfg.GoogleSheetName,
					Credentials:   a.cfg.GoogleCredentials(),
				})
				if err != nil {
					return err
				}
				if err := client.Export(cmd.Context(), txs); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render(
					fmt.Sprintf("%d movimientos exportados a %s", len(txs), a.cfg.GoogleSheetName)))
				return nil
			}

			w := cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			return writeCSV(w, sheets.Rows(txs))
		},
	}
	cmd.Flags().BoolVar(&toSheets, "sheets", false, "push to GOOGLE_SPREADSHEET_ID instead of writing CSV")
	cmd.Flags().StringVar(&out, "out", "", "CSV file to write (default stdout)")
	return cmd
}

func writeCSV(w io.Writer, rows [][]any) error {
	cw := csv.NewWriter(w)
	for _, row := range rows {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = fmt.Sprint(v)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
