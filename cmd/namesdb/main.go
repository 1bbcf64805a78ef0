// Command namesdb curates the names dataset: it moves names between a CSV
// file and the database, cleans and reassigns heritage tags, and serves the
// dataset directory over HTTP.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Eigenbraid/Dice/internal/config"
	"github.com/Eigenbraid/Dice/internal/core"
	"github.com/Eigenbraid/Dice/internal/logging"
	"github.com/Eigenbraid/Dice/internal/service"
	"github.com/Eigenbraid/Dice/internal/store"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load .env file if it exists; variables already set take precedence
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, core.FormatUserError(err))
		os.Exit(1)
	}

	if err := execute(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// execute runs the command line and prints a fatal error, if any, as a
// user-facing message with its support code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCmd()
	root.SetArgs(normalizeArgs(args))
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "✗ Error: %v\n  %s\n", err, core.FormatUserError(err))
	}
	return err
}

// normalizeArgs accepts the single-dash spelling of --reset.
func normalizeArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if a == "-reset" {
			a = "--reset"
		}
		out[i] = a
	}
	return out
}

// app carries configuration shared by every subcommand.
type app struct {
	cfg    *config.Config
	dsn    string
	driver string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "namesdb",
		Short:         "Curate the names dataset",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	root.PersistentFlags().StringVar(&a.dsn, "db", "", "database file or connection string (overrides NAMES_DB_DSN)")
	root.PersistentFlags().StringVar(&a.driver, "driver", "", "database driver: sqlite or pgx (overrides NAMES_DB_DRIVER)")

	root.AddCommand(
		a.bootstrapCmd(),
		a.importCmd(),
		a.exportCmd(),
		a.cleanCmd(),
		a.statsCmd(),
		a.serveCmd(),
	)
	return root
}

// load reads configuration, applies the global flags and sets up logging.
func (a *app) load() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.dsn != "" {
		cfg.Database.DSN = a.dsn
	}
	if a.driver != "" {
		cfg.Database.Driver = a.driver
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("configuration loaded", "config", cfg.String())

	a.cfg = cfg
	return nil
}

// openStore connects to the configured database.
func (a *app) openStore(ctx context.Context) (*store.Store, error) {
	driver, err := store.ParseDriver(a.cfg.Database.Driver)
	if err != nil {
		return nil, err
	}
	return store.Open(ctx, store.Options{
		Driver:       driver,
		DSN:          a.cfg.Database.DSN,
		MaxOpenConns: a.cfg.Database.MaxOpenConns,
		Logger:       slog.Default(),
	})
}

// withService opens the store, runs fn and closes the store.
func (a *app) withService(ctx context.Context, fn func(*service.Service) error) error {
	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	return fn(service.New(st, slog.Default()))
}

// fileArg returns the last positional argument, or the configured CSV.
func (a *app) fileArg(args []string) string {
	if len(args) > 0 {
		return args[len(args)-1]
	}
	return a.cfg.Data.CSV
}
