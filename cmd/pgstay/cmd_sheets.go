package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmynk/pgstay/internal/config"
	"github.com/mmynk/pgstay/internal/models"
	"github.com/mmynk/pgstay/internal/sheets"
)

var (
	initSeed  bool
	dumpTyped bool
)

// initCmd writes missing header rows
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write header rows to every empty sheet",
	Long: `Write the canonical header row to every sheet whose first row is empty.
Sheets that already have headers are left alone, so init is safe to rerun.

Each tab (` + strings.Join(models.SheetNames, ", ") + `) must already exist.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(config.Load(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.boot.InitializeSheets(cmd.Context(), initSeed)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "created:  %s\n", joinOrNone(report.Created))
		fmt.Fprintf(out, "existing: %s\n", joinOrNone(report.Existing))
		if initSeed {
			for _, name := range models.SheetNames {
				fmt.Fprintf(out, "seeded %s: %d\n", name, report.Seeded[name])
			}
		}
		return nil
	},
}

// resetCmd clears one sheet
var resetCmd = &cobra.Command{
	Use:       "reset <sheet>",
	Short:     "Clear every data row of a sheet, keeping its headers",
	Args:      cobra.ExactArgs(1),
	ValidArgs: models.SheetNames,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(config.Load(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.boot.ResetSheet(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "reset %s\n", args[0])
		return nil
	},
}

// checkCmd verifies credentials
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the spreadsheet can be read with the configured key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(config.Load(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		report := a.boot.CheckAccess(cmd.Context())
		if !report.OK {
			if sheets.IsUnauthorized(report.Err) {
				return fmt.Errorf("access denied: share the spreadsheet with link access and check the API key: %w", report.Err)
			}
			return report.Err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "spreadsheet: %s\n", report.Title)
		fmt.Fprintf(out, "missing tabs: %s\n", joinOrNone(report.Missing))
		return nil
	},
}

// dumpCmd prints a sheet as JSON
var dumpCmd = &cobra.Command{
	Use:   "dump <sheet>",
	Short: "Print a sheet as JSON",
	Long: `Print every row of a sheet as a JSON object keyed by header.

By default cell types are guessed from their text the way the dashboard
always did: "true"/"false" become booleans, numeric text becomes a number and
comma-separated text under a plural header becomes a list. --typed uses the
column types of the entity instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(config.Load(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		var schema *sheets.Schema
		if dumpTyped {
			table, ok := a.repo.Table(args[0])
			if !ok {
				return fmt.Errorf("--typed needs one of %s", strings.Join(models.SheetNames, ", "))
			}
			schema = table.Schema()
		}

		records, err := a.client.ReadRecords(cmd.Context(), args[0], schema)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	},
}

func init() {
	initCmd.Flags().BoolVar(&initSeed, "seed", false, "Fill empty sheets with demo data")
	dumpCmd.Flags().BoolVar(&dumpTyped, "typed", false, "Decode cells with the entity's column types")
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ", ")
}
