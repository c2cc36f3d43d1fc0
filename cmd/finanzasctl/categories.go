package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"finanzas/internal/cli"
	"finanzas/internal/core"
	"finanzas/internal/services"
)

func categoriesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"cat"},
		Short:   "List or create categories",
	}

	var typ string
	list := &cobra.Command{
		Use:   "list",
		Short: "List categories, optionally those usable for one type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ledger, err := a.store(cmd.Context())
			if err != nil {
				return err
			}
			cats, err := ledger.ListCategories(cmd.Context())
			if err != nil {
				return err
			}
			if typ != "" {
				t := core.TransactionType(typ)
				if !t.IsValid() {
					return fmt.Errorf("invalid --type %q: must be income or expense", typ)
				}
				cats = core.CategoriesFor(cats, t)
			}
			return a.emit(cmd.OutOrStdout(), cats, func() error {
				rows := make([][]string, 0, len(cats))
				for _, c := range cats {
					rows = append(rows, []string{c.ID, c.Name, string(c.Type), c.Icon})
				}
				fmt.Fprint(cmd.OutOrStdout(), cli.Table([]string{"ID", "Nombre", "Tipo", "Icono"}, rows))
				return nil
			})
		},
	}
	list.Flags().StringVar(&typ, "type", "", "only categories usable for income or expense")

	var icon string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a category usable for both income and expense",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, err := a.store(cmd.Context())
			if err != nil {
				return err
			}
			c, err := services.NewEditor(ledger).AddCategory(cmd.Context(), strings.Join(args, " "), icon)
			if err != nil {
				return describeSubmitError(err)
			}
			return a.emit(cmd.OutOrStdout(), c, func() error {
				fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render(fmt.Sprintf("Categoría creada: %s (%s)", c.Name, c.ID)))
				return nil
			})
		},
	}
	add.Flags().StringVar(&icon, "icon", "", "icon name")

	cmd.AddCommand(list, add)
	return cmd
}
