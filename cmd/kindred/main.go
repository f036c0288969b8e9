// Command kindred processes obituary batches into a family graph and exports
// the result.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kindredgraph/kindred"
	"github.com/kindredgraph/kindred/reader"
)

var version = "0.1.0"

func main() {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "kindred",
		Short: "Obituary relationship extraction",
		Long: `Kindred extracts family relationships from obituary text and
resolves the mentioned names into a consistent family graph.

It ingests obituary batches (JSON or XLSX) and produces:
  - Resolved person records with stable ids
  - Typed relationship edges with a conflict-resolution audit trail
  - GEDCOM exports for genealogy software`,
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(processCmd())
	rootCmd.AddCommand(personsCmd())
	rootCmd.AddCommand(exportCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newEngine(cmd *cobra.Command) (kindred.Engine, error) {
	cfg := kindred.DefaultConfig()
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.DBPath = db
	}
	if patterns, _ := cmd.Flags().GetString("patterns"); patterns != "" {
		cfg.PatternPath = patterns
	}
	if factor, _ := cmd.Flags().GetInt("frequency-factor"); factor > 0 {
		cfg.FrequencyFactor = factor
	}
	return kindred.New(cfg)
}

func processCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process [batch-file]",
		Short: "Process an obituary batch",
		Long: `Process a batch of obituaries into a family graph.

The batch file is a JSON array or an XLSX sheet with columns
id, first_name, last_name, birth_date, death_date, url, text.

Example:
  kindred process obituaries.json --output result.json
  kindred process obituaries.xlsx --overrides fixes.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			overridePath, _ := cmd.Flags().GetString("overrides")

			subjects, err := loadBatch(args[0])
			if err != nil {
				return err
			}

			var overrides []kindred.Override
			if overridePath != "" {
				overrides, err = loadOverrides(overridePath)
				if err != nil {
					return err
				}
			}

			eng, err := newEngine(cmd)
			if err != nil {
				return err
			}
			defer eng.Close()

			res, err := eng.ProcessBatch(context.Background(), subjects, overrides)
			if err != nil {
				return err
			}

			fmt.Printf("Processed %d obituaries: %d persons, %d edges",
				len(subjects), len(res.Persons), len(res.Edges))
			if len(res.Discarded) > 0 {
				fmt.Printf(", %d discarded by conflict resolution", len(res.Discarded))
			}
			fmt.Println()

			if output != "" {
				return writeJSON(output, res)
			}
			return nil
		},
	}
	cmd.Flags().String("db", "", "path to the SQLite database")
	cmd.Flags().String("patterns", "", "path to a YAML pattern-table file")
	cmd.Flags().Int("frequency-factor", 0, "surname dominance factor for name correction")
	cmd.Flags().String("overrides", "", "path to a YAML override file")
	cmd.Flags().StringP("output", "o", "", "write the batch result as JSON")
	return cmd
}

func personsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "persons",
		Short: "List stored persons",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := newEngine(cmd)
			if err != nil {
				return err
			}
			defer eng.Close()

			persons, err := eng.Persons(context.Background())
			if err != nil {
				return err
			}
			for _, p := range persons {
				fmt.Printf("%s\t%s\n", p.ID, p.FullName())
			}
			return nil
		},
	}
	cmd.Flags().String("db", "", "path to the SQLite database")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [output-file]",
		Short: "Export the stored graph as GEDCOM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := newEngine(cmd)
			if err != nil {
				return err
			}
			defer eng.Close()

			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("creating %s: %w", args[0], err)
			}
			defer f.Close()

			if err := eng.ExportGEDCOM(context.Background(), f); err != nil {
				return err
			}
			fmt.Printf("GEDCOM written to %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().String("db", "", "path to the SQLite database")
	return cmd
}

func loadBatch(path string) ([]kindred.Subject, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return reader.LoadXLSX(path)
	default:
		return reader.LoadJSON(path)
	}
}

func loadOverrides(path string) ([]kindred.Override, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading overrides: %w", err)
	}
	var overrides []kindred.Override
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return nil, fmt.Errorf("parsing overrides: %w", err)
	}
	return overrides, nil
}

func writeJSON(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
