// =============================================================================
// Price Export - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks the configuration
// without contacting the product-information service.
//
// COMMAND USAGE:
//   price-export validate [--config path]
//
// =============================================================================

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/price-export/internal/config"
)

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file without fetching anything",
	Long: `Load the configuration, apply defaults and environment overrides, check
the CSV settings, and print the resolved values. No request is sent.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		printSummary(cmd, cfg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func printSummary(cmd *cobra.Command, cfg *config.Config) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Configuration OK: %s\n", cfgFile)
	fmt.Fprintf(out, "  Destination:    %s\n", cfg.DestinationPath())
	fmt.Fprintf(out, "  Format:         %s\n", cfg.OutputFormat)
	fmt.Fprintf(out, "  Keep backups:   %t\n", cfg.Backups())
	fmt.Fprintf(out, "  Separator:      %q\n", cfg.Separator())
	fmt.Fprintf(out, "  Quote:          %q\n", cfg.Quote())
	fmt.Fprintf(out, "  API:            %s (timeout %s)\n", cfg.APIBaseURL, cfg.Timeout())
	fmt.Fprintf(out, "  Products (%d):  %s\n", len(cfg.ProductIDs), strings.Join(cfg.ProductIDs, ", "))
	if cfg.InventoryEnabled() {
		fmt.Fprintf(out, "  Stores (%d):    %s\n", len(cfg.StoreIDs), strings.Join(cfg.StoreIDs, ", "))
	} else {
		fmt.Fprintln(out, "  Stores:         none (inventory disabled)")
	}
}
