// =============================================================================
// Price Export - Export Command
// =============================================================================
//
// This file defines the 'export' command, which runs the whole pipeline.
//
// COMMAND USAGE:
//   price-export export [flags]
//
// FLAGS:
//   --dry-run       : Fetch and assemble, log the rows, write nothing
//   --format        : Output format, csv or xlsx (overrides output_format)
//   --keep-missing  : Keep products that were not found as placeholder rows
//
// PROCESSING PIPELINE:
//   1. Load configuration
//   2. Fetch every product (and its store quantities)
//   3. Back up the previous output
//   4. Write the new output
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/price-export/internal/exporter"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun assembles the catalog without writing output files.
var dryRun bool

// format overrides the configured output format.
var format string

// keepMissing keeps products that were not found as placeholder rows.
var keepMissing bool

// =============================================================================
// EXPORT COMMAND DEFINITION
// =============================================================================

// exportCmd represents the 'export' command.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Fetch product prices and inventory and write the export file",
	Long: `The export command fetches every configured product from the
product-information service, adds the on-hand quantity at every configured
store, and writes one row per product in configured order.

Products the service does not know are logged and left out, unless
keep_missing (or --keep-missing) is set.

If keep_backups is true, an existing output file is renamed to
prices_backup_<timestamp>.csv before the new file is written.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		defer logger.Sync()

		exp := exporter.New(cfg, nil, logger)
		exp.DryRun = dryRun
		exp.Format = format
		exp.KeepMissing = keepMissing

		result, err := exp.Run(cmd.Context())
		if err != nil {
			return err
		}

		if dryRun {
			fmt.Fprintf(cmd.OutOrStdout(), "Dry run: %d product(s) assembled, nothing written.\n", result.Catalog.Len())
			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), "New data available!")
		return nil
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the export command with the root command and sets up flags.
func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Fetch and assemble without writing output files",
	)

	exportCmd.Flags().StringVar(
		&format,
		"format",
		"",
		"Output format: csv or xlsx (default from output_format)",
	)

	exportCmd.Flags().BoolVar(
		&keepMissing,
		"keep-missing",
		false,
		"Keep products that were not found as placeholder rows",
	)
}
