package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"finanzas/internal/cli"
	"finanzas/internal/core"
)

func summaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Balance, income and expense totals",
		Args:  cobra.NoArgs,
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
			sum := core.Summarize(txs)
			return a.emit(cmd.OutOrStdout(), sum, func() error {
				var b strings.Builder
				b.WriteString(cli.TitleStyle.Render("Finanzas de " + core.HouseholdLabel(users)))
				b.WriteString("\n")
				fmt.Fprintf(&b, "Balance   %s\n", cli.AmountStyle(sum.Balance).Render(core.FormatAmount(sum.Balance, "")))
				fmt.Fprintf(&b, "Ingresos  %s  %s\n", cli.IncomeStyle.Render(core.FormatAmount(sum.Income, "")),
					cli.SubtleStyle.Render(strconv.Itoa(sum.IncomeCount)+" movimientos"))
				fmt.Fprintf(&b, "Gastos    %s  %s", cli.ExpenseStyle.Render(core.FormatAmount(sum.Expense, "")),
					cli.SubtleStyle.Render(strconv.Itoa(sum.ExpenseCount)+" movimientos"))
				fmt.Fprintln(cmd.OutOrStdout(), cli.BoxStyle.Render(b.String()))
				return nil
			})
		},
	}
}

type budgetView struct {
	Balance    float64               `json:"balance"`
	Expense    float64               `json:"expense"`
	ByCategory []core.CategoryAmount `json:"byCategory"`
}

func budgetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "budget",
		Short: "Expense totals per category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ledger, err := a.store(cmd.Context())
			if err != nil {
				return err
			}
			txs, err := ledger.ListTransactions(cmd.Context())
			if err != nil {
				return err
			}
			view := budgetView{
				Balance:    core.Balance(txs),
				Expense:    core.ExpenseTotal(txs),
				ByCategory: core.ByCategory(txs),
			}
			return a.emit(cmd.OutOrStdout(), view, func() error {
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, cli.TitleStyle.Render("Presupuesto"))
				rows := make([][]string, 0, len(view.ByCategory))
				for _, c := range view.ByCategory {
					share := 0.0
					if view.Expense > 0 {
						share = c.Amount / view.Expense * 100
					}
					rows = append(rows, []string{c.Name, core.FormatAmount(c.Amount, ""), fmt.Sprintf("%.0f%%", share)})
				}
				fmt.Fprint(out, cli.Table([]string{"Categoría", "Gastado", "Peso"}, rows))
				fmt.Fprintf(out, "\nGasto total %s · balance %s\n",
					cli.ExpenseStyle.Render(core.FormatAmount(view.Expense, "")),
					cli.AmountStyle(view.Balance).Render(core.FormatAmount(view.Balance, "")))
				return nil
			})
		},
	}
}

type statusView struct {
	Mode     string `json:"mode"`
	Fallback bool   `json:"fallback"`
	Lenient  bool   `json:"lenient"`
	Remote   bool   `json:"remote"`
	Events   bool   `json:"events"`
}

func statusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which backend the ledger resolved to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.store(cmd.Context()); err != nil {
				return err
			}
			view := statusView{
				Mode:     a.res.Mode.String(),
				Fallback: a.res.Fallback,
				Lenient:  a.res.Lenient,
				Remote:   a.res.Mode.IsRemote(),
				Events:   a.cfg.AMQPURL != "",
			}
			return a.emit(cmd.OutOrStdout(), view, func() error {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Backend   %s\n", cli.BoldStyle.Render(view.Mode))
				if view.Fallback {
					fmt.Fprintln(out, cli.WarningStyle.Render("Firestore unavailable, using the local store"))
				}
				fmt.Fprintf(out, "Lenient   %t\nEvents    %t\n", view.Lenient, view.Events)
				return nil
			})
		},
	}
}
