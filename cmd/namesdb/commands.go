package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/Eigenbraid/Dice/internal/core"
	"github.com/Eigenbraid/Dice/internal/heritage"
	"github.com/Eigenbraid/Dice/internal/service"
	"github.com/Eigenbraid/Dice/internal/web"
	"github.com/spf13/cobra"
)

// maxListedChanges caps the reassignments printed by clean.
const maxListedChanges = 30

var rule = strings.Repeat("=", 60)

func (a *app) bootstrapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Create the schema and seed reference data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			sum, err := st.Bootstrap(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Database ready (%s)\n", st.Driver())
			fmt.Fprintf(out, "  positions: %d, genders: %d, tag types: %d, tags: %d\n",
				sum.Positions, sum.Genders, sum.TagTypes, sum.Tags)
			fmt.Fprintf(out, "  names: %d, name tags: %d\n", sum.Names, sum.NameTags)
			return nil
		},
	}
}

func (a *app) importCmd() *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import names from a CSV file",
		Long: "Import names from a CSV file (default names.csv). Invalid rows are skipped and\n" +
			"reported; the rest are committed. -reset deletes every name first.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file := a.fileArg(args)
			out := cmd.OutOrStdout()

			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Import.Timeout)
			defer cancel()

			fmt.Fprintf(out, "Importing names from %s...\n", file)
			return a.withService(ctx, func(svc *service.Service) error {
				res, err := svc.ImportFile(ctx, file, service.ImportOptions{Reset: reset})
				if err != nil {
					return err
				}
				printImportReport(out, res)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "delete all names before importing (also -reset)")
	return cmd
}

func printImportReport(w io.Writer, res *service.ImportResult) {
	if res.ResetRemoved > 0 {
		fmt.Fprintf(w, "  Reset removed %d existing names.\n", res.ResetRemoved)
	}
	fmt.Fprintf(w, "\n%s\nImport complete!\n%s\n", rule, rule)
	fmt.Fprintf(w, "Loaded %d rows. %d successes. %d failures.\n", res.Total, res.Succeeded, res.Failed())
	if res.Failed() > 0 {
		fmt.Fprintln(w, "\nErrors:")
		for _, msg := range res.Messages() {
			fmt.Fprintf(w, "  * %s\n", msg)
		}
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Total names in database: %d\n", res.NamesInStore)
}

func (a *app) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Export every name to a CSV file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := a.fileArg(args)
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Exporting names to %s...\n", file)
			return a.withService(cmd.Context(), func(svc *service.Service) error {
				n, err := svc.ExportFile(cmd.Context(), file)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "✓ Exported %d names to %s\n", n, file)
				fmt.Fprintf(out, "  Format: %s (tags pipe-separated)\n", strings.Join(core.Columns, ", "))
				return nil
			})
		},
	}
}

func (a *app) cleanCmd() *cobra.Command {
	var (
		rulesPath string
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "clean [file]",
		Short: "Clean title tags and reassign default-heritage names",
		Long: "Set every title's tags to Default, then move names tagged with the default\n" +
			"heritage to the first heritage whose rule matches. The file is rewritten in place.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := a.fileArg(args)
			if rulesPath == "" {
				rulesPath = a.cfg.Data.Rules
			}

			rules := heritage.DefaultRules()
			if rulesPath != "" {
				var err error
				if rules, err = heritage.LoadRulesFile(rulesPath); err != nil {
					return err
				}
			}

			read := core.ReadRewritableFile
			if dryRun {
				read = core.ReadFile
			}
			rows, err := read(file)
			if err != nil {
				return err
			}

			rows = runClean(cmd.OutOrStdout(), rows, rules)
			if dryRun {
				fmt.Fprintln(cmd.OutOrStdout(), "\n(dry run, file not written)")
				return nil
			}

			if err := core.WriteFile(file, rows); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n✓ Saved cleaned CSV to %s\n", filepath.Clean(file))
			return nil
		},
	}

	cmd.Flags().StringVar(&rulesPath, "rules", "", "heritage rules YAML (default: embedded table, or NAMES_RULES)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report changes without writing the file")
	return cmd
}

// runClean applies title cleaning and heritage reassignment, printing each step.
func runClean(w io.Writer, rows []core.Row, rules *heritage.RuleSet) []core.Row {
	fmt.Fprintln(w, "=== Step 1: Clean Titles ===")
	rows, titleChanges := heritage.CleanTitles(rows)
	for _, c := range titleChanges {
		fmt.Fprintf(w, "Cleaning title: %s (was: %s)\n", c.Name, c.OldTags)
	}
	fmt.Fprintf(w, "\nCleaned %d title entries\n", len(titleChanges))

	fmt.Fprintln(w, "\n=== Step 2: Analyze Heritage Distribution (Before) ===")
	printDistribution(w, heritage.Distribution(rows))

	fmt.Fprintln(w, "\n=== Step 3: Reassign Names ===")
	for _, row := range rows {
		if conflicts := rules.Conflicts(row.Name); len(conflicts) > 1 && row.HasTag(rules.DefaultTag()) {
			slog.Debug("ambiguous heritage", "name", row.Name, "matches", conflicts, "chosen", conflicts[0])
		}
	}
	rows, changes := heritage.Reassign(rows, rules)
	fmt.Fprintf(w, "\n=== Reassigned %d Names ===\n", len(changes))
	for i, c := range changes {
		if i == maxListedChanges {
			fmt.Fprintf(w, "... and %d more\n", len(changes)-maxListedChanges)
			break
		}
		fmt.Fprintln(w, c.String())
	}

	fmt.Fprintln(w, "\n=== Step 4: Analyze Heritage Distribution (After) ===")
	printDistribution(w, heritage.Distribution(rows))
	return rows
}

func printDistribution(w io.Writer, counts []heritage.HeritageCount) {
	fmt.Fprintln(w, "\n=== Heritage Distribution ===")
	for _, c := range counts {
		fmt.Fprintf(w, "%-20s: %3d total (first: %3d, last: %3d, nickname: %3d)\n",
			c.Heritage, c.Total(), c.First, c.Last, c.Nickname)
	}
}

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats [file]",
		Short: "Show the heritage distribution of a CSV file or of the database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				rows, err := core.ReadFile(args[0])
				if err != nil {
					return err
				}
				printDistribution(cmd.OutOrStdout(), heritage.Distribution(rows))
				return nil
			}

			return a.withService(cmd.Context(), func(svc *service.Service) error {
				counts, err := svc.HeritageStats(cmd.Context())
				if err != nil {
					return err
				}
				printDistribution(cmd.OutOrStdout(), counts)
				return nil
			})
		},
	}
}

func (a *app) serveCmd() *cobra.Command {
	var (
		root string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dataset directory over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg.Server
			if root != "" {
				cfg.Root = root
			}
			if port != 0 {
				cfg.Port = port
			}

			stats, closeStats := a.statsSource(cmd.Context())
			defer closeStats()

			fmt.Fprintf(cmd.OutOrStdout(), "Server running at http://localhost:%d/\n", cfg.Port)
			return web.NewServer(cfg, stats).Start(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "directory to serve (overrides SERVER_ROOT)")
	cmd.Flags().IntVar(&port, "port", 0, "port to listen on (overrides SERVER_PORT)")
	return cmd
}

// statsSource opens the store backing /stats. When the database cannot be
// opened the server still serves files and /stats answers 404.
func (a *app) statsSource(ctx context.Context) (web.StatsSource, func()) {
	st, err := a.openStore(ctx)
	if err != nil {
		slog.Warn("database unavailable, /stats disabled", "error", err)
		return nil, func() {}
	}
	return service.New(st, slog.Default()), func() { st.Close() }
}
