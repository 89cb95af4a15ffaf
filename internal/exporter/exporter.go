// =============================================================================
// Price Export - Export Pipeline
// =============================================================================
//
// This module runs one export from a loaded configuration to a written file.
//
// PIPELINE:
//   1. Capture the run start (names the backup file)
//   2. Assemble the catalog from the remote service
//   3. Write the new output to a temporary file (CSV or XLSX)
//   4. Move the previous output aside (if backups are enabled) and rename the
//      new output into place
//
// Nothing is written when assembly fails, and the previous file is only
// rotated away once the new one is complete.
//
// =============================================================================

package exporter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ginjaninja78/price-export/internal/assembler"
	"github.com/ginjaninja78/price-export/internal/client"
	"github.com/ginjaninja78/price-export/internal/config"
	"github.com/ginjaninja78/price-export/internal/csvwriter"
	"github.com/ginjaninja78/price-export/internal/types"
	"github.com/ginjaninja78/price-export/internal/xlsxwriter"
	"github.com/ginjaninja78/price-export/pkg/utils"
)

// ErrExport wraps failures of the backup and write steps.
var ErrExport = errors.New("export error")

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of one run.
type Result struct {
	// RunID identifies the run in logs.
	RunID string

	// OutputFile is the written file. Empty on a dry run.
	OutputFile string

	// BackupFile is where the previous output was moved, if anywhere.
	BackupFile string

	// Catalog is the assembled catalog.
	Catalog *types.Catalog

	// Stats counts requested, found and missing products.
	Stats assembler.Stats

	// Elapsed is the wall time of the run.
	Elapsed time.Duration
}

// =============================================================================
// EXPORTER STRUCTURE
// =============================================================================

// Exporter runs the pipeline for one configuration.
type Exporter struct {
	cfg    *config.Config
	source assembler.CatalogSource
	logger *zap.Logger

	// Now returns the run start. Defaults to time.Now.
	Now func() time.Time

	// DryRun assembles the catalog but skips backup and write.
	DryRun bool

	// Format overrides cfg.OutputFormat when set.
	Format string

	// KeepMissing forces placeholder rows for products not found.
	KeepMissing bool
}

// New creates an Exporter. A nil source builds a remote client from cfg.
func New(cfg *config.Config, source assembler.CatalogSource, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if source == nil {
		source = client.New(cfg.APIBaseURL,
			client.WithTimeout(cfg.Timeout()),
			client.WithLogger(logger))
	}
	return &Exporter{
		cfg:    cfg,
		source: source,
		logger: logger,
		Now:    time.Now,
	}
}

// Run executes the pipeline.
func (e *Exporter) Run(ctx context.Context) (*Result, error) {
	started := time.Now()
	runStart := e.Now()
	result := &Result{RunID: uuid.NewString()}
	logger := e.logger.With(zap.String("run_id", result.RunID))

	format := e.cfg.OutputFormat
	if e.Format != "" {
		format = e.Format
	}
	if format != config.FormatCSV && format != config.FormatXLSX {
		return nil, fmt.Errorf("%w: unknown output format %q", ErrExport, format)
	}

	logger.Info("starting export",
		zap.Int("products", len(e.cfg.ProductIDs)),
		zap.Int("stores", len(e.cfg.StoreIDs)),
		zap.String("destination", e.cfg.DestinationPath()),
		zap.String("format", format))

	// =========================================================================
	// STEP 1: ASSEMBLE CATALOG
	// =========================================================================

	asm := assembler.New(e.source, logger)
	asm.KeepMissing = e.cfg.KeepMissing || e.KeepMissing

	catalog, stats, err := asm.Assemble(ctx, e.cfg.ProductIDs, e.cfg.StoreIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble catalog: %w", err)
	}
	result.Catalog = catalog
	result.Stats = stats

	logger.Info("catalog assembled",
		zap.Int("requested", stats.Requested),
		zap.Int("found", stats.Found),
		zap.Int("missing", stats.Missing))

	if e.DryRun {
		for _, record := range catalog.Records() {
			logger.Info("dry run row",
				zap.String("product_id", record.ID),
				zap.String("name", record.Name),
				zap.String("price", record.Price.StringFixed(csvwriter.MoneyPlaces)),
				zap.Any("quantities", record.Quantities))
		}
		result.Elapsed = time.Since(started)
		return result, nil
	}

	// =========================================================================
	// STEP 2: WRITE OUTPUT AND BACK UP PREVIOUS OUTPUT
	// =========================================================================

	fm := utils.NewFileManager(e.cfg.DestinationPath(), e.cfg.Backups(), runStart)
	if err := fm.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExport, err)
	}

	backup, err := fm.WriteAtomic(func(w io.Writer) error {
		if format == config.FormatXLSX {
			return xlsxwriter.WriteCatalog(w, catalog)
		}
		return csvwriter.WriteCatalog(w, catalog, e.cfg.Separator(), e.cfg.Quote())
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to write %s: %w", ErrExport, fm.Destination, err)
	}
	if backup != "" {
		logger.Info("previous output backed up", zap.String("backup", backup))
	}
	result.BackupFile = backup

	result.OutputFile = fm.Destination
	result.Elapsed = time.Since(started)

	logger.Info("export written",
		zap.String("output", result.OutputFile),
		zap.Int("rows", catalog.Len()),
		zap.Duration("elapsed", result.Elapsed))

	return result, nil
}
