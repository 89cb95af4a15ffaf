// =============================================================================
// Price Export - Main Entry Point
// =============================================================================
//
// This is the main entry point for the price export CLI application.
// It initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   price-export export      - Fetch the configured products and write the file
//   price-export validate    - Validate the configuration file without fetching
//   price-export version     - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Configuration, remote client, assembly and writers
//   - pkg/           : Shared file and text utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/price-export/cmd"
)

// main is the entry point of the application.
func main() {
	cmd.Execute()
}
