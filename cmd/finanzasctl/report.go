package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"finanzas/internal/report"
)

func reportCmd(a *app) *cobra.Command {
	var (
		format string
		style  string
		recent int
		out    string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a statement of the ledger",
		Long: `Render a statement with totals, spending per category, per member and
per month, and the latest movements.

Formats: terminal (styled, the default), markdown and html.`,
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
			users, err := ledger.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			r := report.Build(txs, users, recent, time.Now())
			if a.jsonOutput() {
				return a.emit(cmd.OutOrStdout(), r, nil)
			}

			rendered, err := r.Render(report.Format(format), style)
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), rendered)
				return err
			}
			if err := os.WriteFile(out, []byte(rendered), 0o644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(report.FormatTerminal), "terminal, markdown or html")
	cmd.Flags().StringVar(&style, "style", "dark", "terminal style (dark, light, notty)")
	cmd.Flags().IntVar(&recent, "recent", 10, "movements listed in the statement")
	cmd.Flags().StringVar(&out, "out", "", "write to this file instead of stdout")
	return cmd
}
