package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "finanzasctl",
		Short: "Household ledger from the terminal",
		Long: `finanzasctl reads and edits the same ledger the finanzas server uses.

Configuration comes from the usual environment variables (DATA_BACKEND,
SQLITE_DB_PATH, FIRESTORE_PROJECT_ID, ...), overridden by
$HOME/.config/finanzas/finanzas.yaml or FINANZAS_* variables.`,
		SilenceUsage:       true,
		PersistentPreRunE:  a.initConfig,
		PersistentPostRunE: a.close,
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.config/finanzas/finanzas.yaml)")
	root.PersistentFlags().String("backend", "", "data backend (auto, sqlite, memory, firestore)")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVarP(&a.output, "output", "o", "table", "output format (table, json)")
	root.PersistentFlags().StringVarP(&a.query, "query", "q", "", "JSONPath applied to the JSON output, e.g. '$[0].amount'")

	_ = a.v.BindPFlag("backend", root.PersistentFlags().Lookup("backend"))
	_ = a.v.BindPFlag("log_level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(
		listCmd(a),
		addCmd(a),
		editCmd(a),
		deleteCmd(a),
		summaryCmd(a),
		budgetCmd(a),
		categoriesCmd(a),
		usersCmd(a),
		statusCmd(a),
		importCmd(a),
		reportCmd(a),
		exportCmd(a),
	)
	return root
}
