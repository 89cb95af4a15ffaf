// =============================================================================
// Price Export - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. All other commands
// are attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (price-export)
//   ├── exportCmd   (price-export export)
//   ├── validateCmd (price-export validate)
//   └── versionCmd  (price-export version)
//
// The root command owns the global flags (--config, --env-file, --verbose)
// and loads the optional .env file before any subcommand runs.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/price-export/internal/config"
	"github.com/ginjaninja78/price-export/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// envFile holds the path to an optional .env file.
var envFile string

// verbose enables debug logging when set to true.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "price-export",
	Short: "Price Export - Fetch product prices and inventory into a CSV file",
	Long: `Price Export reads a list of product and store identifiers, fetches each
product's prices and each store's on-hand quantity from the product-information
service, and writes the result to a delimited file.

Key Features:
  - Rows follow the configured product order
  - Unknown products are logged and skipped (or kept as placeholders)
  - The previous output is kept as a timestamped backup
  - Output is replaced atomically

Example Usage:
  price-export export                           # Fetch and write data/prices.csv
  price-export export --config ./my.yaml        # Use a custom configuration file
  price-export export --format xlsx             # Write an Excel workbook
  price-export validate                         # Check the configuration only`,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.LoadEnvFile(envFile)
	},

	SilenceUsage:  true,
	SilenceErrors: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. Any error is printed and the process exits
// with status 1.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultPath,
		"Path to the configuration file",
	)

	rootCmd.PersistentFlags().StringVar(
		&envFile,
		"env-file",
		".env",
		"Path to an optional .env file with PRICE_EXPORT_* overrides",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// loadConfig loads the configuration and builds the logger it asks for.
func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(cfg.LogLevel, verbose)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return cfg, logger, nil
}
