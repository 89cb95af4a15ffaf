// =============================================================================
// Price Export - Catalog Assembler
// =============================================================================
//
// The assembler builds the in-memory catalog for one run:
//
//   for each product id (configured order):
//     fetch the product
//       not found -> drop it (or keep a placeholder, see KeepMissing)
//       found     -> fetch the quantity at every configured store
//     append the record
//
// Failures of individual lookups never abort the run. Transport errors do.
//
// =============================================================================

package assembler

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ginjaninja78/price-export/internal/client"
	"github.com/ginjaninja78/price-export/internal/types"
	"github.com/ginjaninja78/price-export/pkg/utils"
)

var hundred = decimal.NewFromInt(100)

// CatalogSource is the subset of the remote client the assembler needs.
type CatalogSource interface {
	FetchProduct(ctx context.Context, productID string) (*client.ProductAttributes, error)
	FetchStoreQuantity(ctx context.Context, storeID, productID string) (int, error)
}

// Assembler builds a Catalog from a CatalogSource.
type Assembler struct {
	source CatalogSource
	logger *zap.Logger

	// KeepMissing keeps products that could not be fetched as placeholder
	// records ("Not Found", zero prices and quantities).
	KeepMissing bool
}

// New creates an Assembler.
func New(source CatalogSource, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{source: source, logger: logger}
}

// Stats summarizes an assembly.
type Stats struct {
	Requested int
	Found     int
	Missing   int
}

// Assemble fetches every product in productIDs and, when storeIDs is not
// empty, its quantity at each store.
func (a *Assembler) Assemble(ctx context.Context, productIDs, storeIDs []string) (*types.Catalog, Stats, error) {
	catalog := types.NewCatalog(storeIDs)
	stats := Stats{Requested: len(productIDs)}

	for _, productID := range productIDs {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		attrs, err := a.source.FetchProduct(ctx, productID)
		if err != nil {
			if !errors.Is(err, client.ErrNotFound) {
				return nil, stats, fmt.Errorf("failed to fetch product %s: %w", productID, err)
			}
			stats.Missing++

			var statusErr *client.StatusError
			status := 0
			if errors.As(err, &statusErr) {
				status = statusErr.Status
			}

			if a.KeepMissing {
				a.logger.Warn("product not found, keeping placeholder",
					zap.String("product_id", productID),
					zap.Int("status", status))
				catalog.Add(Placeholder(productID, storeIDs))
			} else {
				a.logger.Warn("product not found, dropped from catalog",
					zap.String("product_id", productID),
					zap.Int("status", status))
			}
			continue
		}

		record := NewRecord(productID, attrs)
		for _, storeID := range storeIDs {
			qty, err := a.source.FetchStoreQuantity(ctx, storeID, productID)
			if err != nil {
				return nil, stats, fmt.Errorf("failed to fetch inventory of product %s at store %s: %w", productID, storeID, err)
			}
			record.Quantities[storeID] = qty
		}

		a.logger.Debug("assembled product",
			zap.String("product_id", productID),
			zap.String("name", record.Name),
			zap.Int("stores", len(storeIDs)))

		catalog.Add(record)
		stats.Found++
	}

	return catalog, stats, nil
}

// NewRecord converts fetched attributes into a ProductRecord.
func NewRecord(productID string, attrs *client.ProductAttributes) *types.ProductRecord {
	name := types.NotFoundName
	if attrs.Name != nil {
		name = *attrs.Name
	}
	return &types.ProductRecord{
		ID:            productID,
		Name:          utils.FoldASCII(name),
		Price:         CentsToAmount(attrs.PriceInCents),
		RegularPrice:  CentsToAmount(attrs.RegularPriceInCents),
		PackageVolume: attrs.PackageVolumeML,
		PricePerLitre: CentsToAmount(attrs.PricePerLiterCents),
		Quantities:    make(map[string]int),
	}
}

// Placeholder returns the record kept for a product that was not found.
func Placeholder(productID string, storeIDs []string) *types.ProductRecord {
	quantities := make(map[string]int, len(storeIDs))
	for _, storeID := range storeIDs {
		quantities[storeID] = 0
	}
	return &types.ProductRecord{
		ID:         productID,
		Name:       types.NotFoundName,
		Quantities: quantities,
	}
}

// CentsToAmount divides an integer cent amount by 100 without rounding.
func CentsToAmount(cents decimal.Decimal) decimal.Decimal {
	return cents.Div(hundred)
}
