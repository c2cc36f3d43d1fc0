package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"finanzas/internal/cli"
	"finanzas/internal/ofx"
	"finanzas/internal/services"
)

type importResult struct {
	Files      int      `json:"files"`
	Parsed     int      `json:"parsed"`
	Imported   int      `json:"imported"`
	Duplicates int      `json:"duplicates"`
	Rejected   int      `json:"rejected"`
	IDs        []string `json:"ids,omitempty"`
}

func importCmd(a *app) *cobra.Command {
	var (
		expenseCat string
		incomeCat  string
		by         string
		dryRun     bool
	)
	cmd := &cobra.Command{
		Use:   "import <files...>",
		Short: "Import movements from OFX/QFX bank statements",
		Long: `Import movements from OFX or QFX statements exported by a bank.

Debits become expenses in --category, credits become income in
--income-category. Lines already in the ledger (same date, concept and
amount) are skipped, so overlapping statements can be imported twice.`,
		Example: `  finanzasctl import ~/Descargas/*.qfx --category Comida --by Valeria --dry-run`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := expandFiles(args)
			if err != nil {
				return err
			}

			parser := ofx.NewParser()
			var entries []ofx.Entry
			for _, path := range files {
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("open %s: %w", path, err)
				}
				parsed, err := parser.Parse(cmd.Context(), f)
				f.Close()
				if err != nil {
					return fmt.Errorf("%s: %w", filepath.Base(path), err)
				}
				entries = append(entries, parsed...)
			}

			ledger, err := a.store(cmd.Context())
			if err != nil {
				return err
			}
			existing, err := ledger.ListTransactions(cmd.Context())
			if err != nil {
				return err
			}
			cats, err := ledger.ListCategories(cmd.Context())
			if err != nil {
				return err
			}
			expenseID, err := resolveCategory(cats, expenseCat)
			if err != nil {
				return err
			}
			incomeID, err := resolveCategory(cats, incomeCat)
			if err != nil {
				return err
			}

			seen := make(map[string]bool, len(existing))
			for _, t := range existing {
				seen[ofx.Key(t.Date, t.Title, t.Amount)] = true
			}

			res := importResult{Files: len(files), Parsed: len(entries)}
			editor := services.NewEditor(ledger)
			bar := newBar(cmd.ErrOrStderr(), len(entries), a.jsonOutput())
			for _, e := range entries {
				_ = bar.Add(1)
				if seen[e.Key()] {
					res.Duplicates++
					continue
				}
				seen[e.Key()] = true

				catID := expenseID
				if e.Amount > 0 {
					catID = incomeID
				}
				d := e.Draft(catID, by)
				if dryRun {
					if _, err := services.Build(d, cats); err != nil {
						slog.WarnContext(cmd.Context(), "Statement line rejected", "fitid", e.FiTID, "error", err)
						res.Rejected++
						continue
					}
					res.Imported++
					continue
				}
				out, err := editor.Submit(cmd.Context(), d)
				if err != nil {
					slog.WarnContext(cmd.Context(), "Statement line rejected", "fitid", e.FiTID, "error", err)
					res.Rejected++
					continue
				}
				res.Imported++
				res.IDs = append(res.IDs, out.ID)
			}
			_ = bar.Finish()

			return a.emit(cmd.OutOrStdout(), res, func() error {
				verb := "Importados"
				if dryRun {
					verb = "Se importarían"
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render(fmt.Sprintf("%s %d de %d movimientos", verb, res.Imported, res.Parsed)))
				if res.Duplicates > 0 || res.Rejected > 0 {
					fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render(fmt.Sprintf("%d duplicados, %d rechazados", res.Duplicates, res.Rejected)))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&expenseCat, "category", "c", "cat_1", "category ID or name for debits")
	cmd.Flags().StringVar(&incomeCat, "income-category", "cat_4", "category ID or name for credits")
	cmd.Flags().StringVar(&by, "by", "", "member recording the movements")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate without saving")
	return cmd
}

// expandFiles resolves globs; a pattern that matches nothing must name an
// existing file.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, p := range patterns {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", p, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(p); err != nil {
				return nil, fmt.Errorf("no files match %s", p)
			}
			matches = []string{p}
		}
		files = append(files, matches...)
	}
	return files, nil
}

func newBar(w io.Writer, n int, quiet bool) *progressbar.ProgressBar {
	if quiet {
		w = io.Discard
	}
	return progressbar.NewOptions(n,
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Importando"),
		progressbar.OptionClearOnFinish(),
	)
}
