// =============================================================================
// Price Export - Shared Types
// =============================================================================
//
// This package contains the catalog types shared by the assembler and the
// exporters. Keeping them here avoids import cycles between:
//   - assembler
//   - csvwriter
//   - xlsxwriter
//
// =============================================================================

package types

import (
	"github.com/shopspring/decimal"
)

// NotFoundName is the display name of a product the service did not name.
const NotFoundName = "Not Found"

// =============================================================================
// PRODUCT RECORD
// =============================================================================

// ProductRecord is one exported row: the product's attributes plus its
// on-hand quantity at each configured store.
type ProductRecord struct {
	// ID is the product identifier as configured.
	ID string

	// Name is the display name, already folded to ASCII.
	Name string

	// Price is the current price (cents / 100).
	Price decimal.Decimal

	// RegularPrice is the non-promotional price (cents / 100).
	RegularPrice decimal.Decimal

	// PackageVolume is the package size in milliliters, unscaled.
	PackageVolume decimal.Decimal

	// PricePerLitre is the price per litre (cents / 100).
	PricePerLitre decimal.Decimal

	// Quantities maps store identifier to on-hand quantity.
	Quantities map[string]int
}

// Quantity returns the on-hand quantity at storeID, 0 if it was never set.
func (r *ProductRecord) Quantity(storeID string) int {
	return r.Quantities[storeID]
}

// =============================================================================
// CATALOG
// =============================================================================

// Catalog is the ordered collection of records for one run.
type Catalog struct {
	// StoreIDs are the stores whose quantities every record carries,
	// in column order.
	StoreIDs []string

	records []*ProductRecord
	index   map[string]*ProductRecord
}

// NewCatalog creates an empty catalog for the given stores.
func NewCatalog(storeIDs []string) *Catalog {
	return &Catalog{
		StoreIDs: storeIDs,
		index:    make(map[string]*ProductRecord),
	}
}

// Add appends a record. Insertion order is output order.
func (c *Catalog) Add(record *ProductRecord) {
	c.records = append(c.records, record)
	if _, exists := c.index[record.ID]; !exists {
		c.index[record.ID] = record
	}
}

// Records returns the records in insertion order.
func (c *Catalog) Records() []*ProductRecord {
	return c.records
}

// Lookup returns the first record added for id.
func (c *Catalog) Lookup(id string) (*ProductRecord, bool) {
	r, ok := c.index[id]
	return r, ok
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	return len(c.records)
}
