package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"finanzas/internal/cli"
	"finanzas/internal/core"
	"finanzas/internal/services"
)

func listCmd(a *app) *cobra.Command {
	var (
		typ   string
		by    string
		limit int
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List movements, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := core.TransactionFilter{Type: core.TransactionType(typ), CreatedBy: by}
			if filter.Type != "" && !filter.Type.IsValid() {
				return fmt.Errorf("invalid --type %q: must be income or expense", typ)
			}
			ledger, err := a.store(cmd.Context())
			if err != nil {
				return err
			}
			txs, err := ledger.ListTransactions(cmd.Context())
			if err != nil {
				return err
			}
			txs = core.Filter(txs, filter)
			if limit > 0 {
				txs = core.Recent(txs, limit)
			}
			return a.emit(cmd.OutOrStdout(), txs, func() error {
				if len(txs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render("Sin movimientos."))
					return nil
				}
				rows := make([][]string, 0, len(txs))
				for _, t := range txs {
					rows = append(rows, []string{
						t.ID, t.Date, t.Title, t.CategoryName, t.CreatedBy,
						cli.AmountStyle(t.Amount).Render(core.FormatAmount(t.Amount, "")),
					})
				}
				fmt.Fprint(cmd.OutOrStdout(), cli.Table(
					[]string{"ID", "Fecha", "Concepto", "Categoría", "Registrado por", "Importe"}, rows))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&typ, "type", "", "only income or expense")
	cmd.Flags().StringVar(&by, "by", "", "only movements recorded by this member")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n movements")
	return cmd
}

// draftFlags are the editor fields settable from the command line.
type draftFlags struct {
	title    string
	amount   string
	category string
	date     string
	typ      string
	payment  string
	by       string
}

func (f *draftFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "concept")
	cmd.Flags().StringVarP(&f.amount, "amount", "a", "", "unsigned amount, dot or comma decimals")
	cmd.Flags().StringVarP(&f.category, "category", "c", "", "category ID or name")
	cmd.Flags().StringVarP(&f.date, "date", "d", "", "date as YYYY-MM-DD")
	cmd.Flags().StringVarP(&f.typ, "type", "t", "", "income or expense")
	cmd.Flags().StringVarP(&f.payment, "payment", "p", "", "payment method ("+paymentIDs()+")")
	cmd.Flags().StringVar(&f.by, "by", "", "member recording the movement")
}

// apply overwrites the draft with every flag the user set.
func (f *draftFlags) apply(cmd *cobra.Command, d *services.Draft, cats []core.Category) error {
	set := cmd.Flags().Changed
	if set("title") {
		d.Title = f.title
	}
	if set("amount") {
		d.Amount = f.amount
	}
	if set("date") {
		d.Date = f.date
	}
	if set("type") {
		d.Type = core.TransactionType(strings.ToLower(f.typ))
	}
	if set("payment") {
		d.PaymentMethod = f.payment
	}
	if set("by") {
		d.CreatedBy = f.by
	}
	if set("category") {
		id, err := resolveCategory(cats, f.category)
		if err != nil {
			return err
		}
		d.CategoryID = id
	}
	return nil
}

func paymentIDs() string {
	ids := make([]string, 0, len(core.PaymentMethods))
	for _, pm := range core.PaymentMethods {
		ids = append(ids, pm.ID)
	}
	return strings.Join(ids, ", ")
}

// resolveCategory accepts an ID or a case-insensitive name.
func resolveCategory(cats []core.Category, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	for _, c := range cats {
		if c.ID == ref {
			return c.ID, nil
		}
	}
	for _, c := range cats {
		if strings.EqualFold(c.Name, ref) {
			return c.ID, nil
		}
	}
	return "", fmt.Errorf("category %q: %w", ref, services.ErrUnknownCategory)
}

func describeSubmitError(err error) error {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return fmt.Errorf("invalid %s: %w", verr.Field, verr.Err)
	}
	return err
}

func addCmd(a *app) *cobra.Command {
	var f draftFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new movement",
		Example: `  finanzasctl add --title "Súper" --amount 54,20 --category Comida --by Valeria
  finanzasctl add --type income --title Nómina --amount 2100 --category Salario`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ledger, err := a.store(cmd.Context())
			if err != nil {
				return err
			}
			editor := services.NewEditor(ledger)
			form, err := editor.NewDraft(cmd.Context())
			if err != nil {
				return err
			}
			d := form.Draft
			if err := f.apply(cmd, &d, form.Categories); err != nil {
				return err
			}
			out, err := editor.Submit(cmd.Context(), d)
			if err != nil {
				return describeSubmitError(err)
			}
			return a.emit(cmd.OutOrStdout(), out, func() error {
				fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render("Movimiento guardado: "+out.ID))
				return nil
			})
		},
	}
	f.register(cmd)
	return cmd
}

func editCmd(a *app) *cobra.Command {
	var f draftFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of an existing movement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, err := a.store(cmd.Context())
			if err != nil {
				return err
			}
			editor := services.NewEditor(ledger)
			form, err := editor.EditDraft(cmd.Context(), args[0], nil)
			if err != nil {
				return err
			}
			d := form.Draft
			if err := f.apply(cmd, &d, form.Categories); err != nil {
				return err
			}
			out, err := editor.Submit(cmd.Context(), d)
			if err != nil {
				return describeSubmitError(err)
			}
			return a.emit(cmd.OutOrStdout(), out, func() error {
				fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render("Movimiento actualizado: "+out.ID))
				return nil
			})
		},
	}
	f.register(cmd)
	return cmd
}

func deleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a movement (requires --yes)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, err := a.store(cmd.Context())
			if err != nil {
				return err
			}
			out, err := services.NewEditor(ledger).Delete(cmd.Context(), args[0], yes)
			if errors.Is(err, services.ErrNotConfirmed) {
				return fmt.Errorf("refusing to delete %s without --yes", args[0])
			}
			if err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), out, func() error {
				fmt.Fprintln(cmd.OutOrStdout(), cli.WarningStyle.Render("Movimiento eliminado: "+out.ID))
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the deletion")
	return cmd
}
