package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"finanzas/internal/backend"
	"finanzas/internal/cli"
	"finanzas/internal/config"
	flog "finanzas/internal/log"
	"finanzas/internal/services"
)

// app carries what every subcommand shares. The ledger is opened lazily so
// commands that do not touch data never resolve a backend.
type app struct {
	cfgFile string
	output  string
	query   string

	v      *viper.Viper
	logger *slog.Logger
	cfg    *config.Config

	openLedger func(ctx context.Context, logger *slog.Logger, cfg *config.Config) (*services.Ledger, *backend.BackendResult, error)
	ledger     *services.Ledger
	res        *backend.BackendResult
}

func newApp() *app {
	return &app{
		v:          viper.New(),
		openLedger: cli.OpenLedger,
	}
}

// viperKeys maps config file keys and FINANZAS_* variables onto the fields
// the services read from the environment.
var viperKeys = map[string]func(*config.Config, *viper.Viper, string){
	"backend":            func(c *config.Config, v *viper.Viper, k string) { c.DataBackend = v.GetString(k) },
	"lenient":            func(c *config.Config, v *viper.Viper, k string) { c.LenientReads = v.GetBool(k) },
	"sqlite_path":        func(c *config.Config, v *viper.Viper, k string) { c.SQLiteDBPath = v.GetString(k) },
	"seed_dir":           func(c *config.Config, v *viper.Viper, k string) { c.DataDirectory = v.GetString(k) },
	"firestore.project":  func(c *config.Config, v *viper.Viper, k string) { c.FirestoreProjectID = v.GetString(k) },
	"firestore.database": func(c *config.Config, v *viper.Viper, k string) { c.FirestoreDatabase = v.GetString(k) },
	"google.credentials": func(c *config.Config, v *viper.Viper, k string) { c.GoogleServiceAccountFile = v.GetString(k) },
	"sheets.id":          func(c *config.Config, v *viper.Viper, k string) { c.GoogleSpreadsheetID = v.GetString(k) },
	"sheets.name":        func(c *config.Config, v *viper.Viper, k string) { c.GoogleSheetName = v.GetString(k) },
	"amqp.url":           func(c *config.Config, v *viper.Viper, k string) { c.AMQPURL = v.GetString(k) },
	"log_level":          func(c *config.Config, v *viper.Viper, k string) { c.LogLevel = v.GetString(k) },
}

func (a *app) initConfig(cmd *cobra.Command, _ []string) error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			a.v.AddConfigPath(filepath.Join(home, ".config", "finanzas"))
		}
		a.v.AddConfigPath(".")
		a.v.SetConfigName("finanzas")
		a.v.SetConfigType("yaml")
	}
	a.v.SetEnvPrefix("FINANZAS")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config: %w", err)
		}
	}

	cli.LoadEnvFile()
	cfg := config.Load()
	for key, apply := range viperKeys {
		if a.v.IsSet(key) {
			apply(cfg, a.v, key)
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	// Logs go to stderr so stdout stays parseable.
	lvl, err := flog.ParseLevel(cfg.LogLevel)
	l := flog.New(flog.Config{Level: lvl, Component: flog.ComponentApp, Output: cmd.ErrOrStderr()})
	flog.SetDefault(l)
	a.logger = l.Logger
	if err != nil {
		a.logger.Warn("Invalid log level, using info", "error", err)
	}
	return nil
}

func (a *app) store(ctx context.Context) (*services.Ledger, error) {
	if a.ledger != nil {
		return a.ledger, nil
	}
	ledger, res, err := a.openLedger(ctx, a.logger, a.cfg)
	if err != nil {
		return nil, err
	}
	a.ledger, a.res = ledger, res
	return ledger, nil
}

func (a *app) close(*cobra.Command, []string) error {
	if a.ledger == nil {
		return nil
	}
	err := a.ledger.Close()
	a.ledger = nil
	return err
}

func (a *app) jsonOutput() bool {
	return a.output == "json" || a.query != ""
}

// emit writes v as JSON when requested, narrowed by --query, and otherwise
// calls human to print it for people.
func (a *app) emit(w io.Writer, v any, human func() error) error {
	if !a.jsonOutput() {
		return human()
	}
	out := v
	if a.query != "" {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode output: %w", err)
		}
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("decode output: %w", err)
		}
		out, err = jsonpath.Get(a.query, doc)
		if err != nil {
			return fmt.Errorf("query %q: %w", a.query, err)
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
