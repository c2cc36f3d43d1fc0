package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"finanzas/internal/cli"
	"finanzas/internal/core"
	"finanzas/internal/store"
)

func usersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Show or rename household members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ledger, err := a.store(cmd.Context())
			if err != nil {
				return err
			}
			users, err := ledger.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), users, func() error {
				rows := make([][]string, 0, len(users))
				for _, u := range users {
					rows = append(rows, []string{u.ID, u.Name, colorName(u.Color)})
				}
				fmt.Fprint(cmd.OutOrStdout(), cli.Table([]string{"ID", "Nombre", "Color"}, rows))
				return nil
			})
		},
	}

	var color string
	rename := &cobra.Command{
		Use:   "set <id> <name>",
		Short: "Rename a member and optionally pick a palette colour",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, err := a.store(cmd.Context())
			if err != nil {
				return err
			}
			users, err := ledger.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			idx := -1
			for i := range users {
				if users[i].ID == args[0] {
					idx = i
				}
			}
			if idx < 0 {
				return fmt.Errorf("member %s: %w", args[0], store.ErrNotFound)
			}
			users[idx].Name = args[1]
			if color != "" {
				fill, ok := paletteFill(color)
				if !ok {
					return fmt.Errorf("unknown colour %q", color)
				}
				users[idx] = users[idx].WithColor(fill)
			}
			if err := users[idx].Validate(); err != nil {
				return err
			}
			if err := ledger.SaveUsers(cmd.Context(), users); err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), users[idx], func() error {
				fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render("Miembro actualizado: "+users[idx].Name))
				return nil
			})
		},
	}
	rename.Flags().StringVar(&color, "color", "", "palette colour name (Rosa, Azul, ...) or fill token")

	cmd.AddCommand(rename)
	return cmd
}

func paletteFill(ref string) (string, bool) {
	for _, c := range core.Palette {
		if c.Fill == ref || c.Name == ref {
			return c.Fill, true
		}
	}
	return "", false
}

func colorName(fill string) string {
	for _, c := range core.Palette {
		if c.Fill == fill {
			return c.Name
		}
	}
	return fill
}
