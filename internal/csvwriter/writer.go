// =============================================================================
// Price Export - CSV Writer Module
// =============================================================================
//
// This module serializes a catalog as delimited text.
//
// FORMAT:
//   - One header row, then one row per product in catalog order
//   - Header: ProductID, ProductName, Price, RegularPrice, PackageVolume,
//     PricePerLitre, then QuantityAt<storeId> per configured store
//   - Text fields (the whole header, product id and name) are wrapped in the
//     quote character; a quote character inside a value is doubled
//   - Numeric fields are written bare
//   - Money has two decimals, package volume is written as received
//
// encoding/csv is not used for writing because it only quotes with '"' and
// only when a field needs it; this format quotes every text field with a
// configurable character.
//
// =============================================================================

package csvwriter

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/ginjaninja78/price-export/internal/types"
)

// BaseColumns are the fixed leading header cells.
var BaseColumns = []string{
	"ProductID",
	"ProductName",
	"Price",
	"RegularPrice",
	"PackageVolume",
	"PricePerLitre",
}

// QuantityColumnPrefix precedes the store id in inventory header cells.
const QuantityColumnPrefix = "QuantityAt"

// MoneyPlaces is the number of decimals written for currency fields.
const MoneyPlaces = 2

// Field is one cell. Numeric cells are never quoted.
type Field struct {
	Value   string
	Numeric bool
}

// Text returns a quoted cell.
func Text(s string) Field { return Field{Value: s} }

// Number returns a bare cell.
func Number(s string) Field { return Field{Value: s, Numeric: true} }

// Header returns the header cells for the given stores.
func Header(storeIDs []string) []string {
	columns := make([]string, 0, len(BaseColumns)+len(storeIDs))
	columns = append(columns, BaseColumns...)
	for _, storeID := range storeIDs {
		columns = append(columns, QuantityColumnPrefix+storeID)
	}
	return columns
}

// Row returns the cells of record, with quantities in storeIDs order.
func Row(record *types.ProductRecord, storeIDs []string) []Field {
	row := []Field{
		Text(record.ID),
		Text(record.Name),
		Number(record.Price.StringFixed(MoneyPlaces)),
		Number(record.RegularPrice.StringFixed(MoneyPlaces)),
		Number(record.PackageVolume.String()),
		Number(record.PricePerLitre.StringFixed(MoneyPlaces)),
	}
	for _, storeID := range storeIDs {
		row = append(row, Number(strconv.Itoa(record.Quantity(storeID))))
	}
	return row
}

// =============================================================================
// WRITER
// =============================================================================

// Writer writes rows with a configurable delimiter and quote character.
type Writer struct {
	// Comma is the field delimiter.
	Comma rune

	// Quote wraps every non-numeric field.
	Quote rune

	// UseCRLF ends lines with \r\n instead of \n.
	UseCRLF bool

	w *bufio.Writer
}

// NewWriter returns a Writer with ',' and '|' that writes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		Comma: ',',
		Quote: '|',
		w:     bufio.NewWriter(w),
	}
}

// Write writes a single row.
func (w *Writer) Write(row []Field) error {
	for i, field := range row {
		if i > 0 {
			if _, err := w.w.WriteRune(w.Comma); err != nil {
				return err
			}
		}
		if err := w.writeField(field); err != nil {
			return err
		}
	}
	if w.UseCRLF {
		_, err := w.w.WriteString("\r\n")
		return err
	}
	return w.w.WriteByte('\n')
}

// WriteHeader writes cells as a quoted text row.
func (w *Writer) WriteHeader(cells []string) error {
	row := make([]Field, len(cells))
	for i, c := range cells {
		row[i] = Text(c)
	}
	return w.Write(row)
}

// Flush writes any buffered data to the underlying io.Writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

func (w *Writer) writeField(field Field) error {
	if field.Numeric {
		_, err := w.w.WriteString(field.Value)
		return err
	}
	q := string(w.Quote)
	escaped := strings.ReplaceAll(field.Value, q, q+q)
	_, err := w.w.WriteString(q + escaped + q)
	return err
}

// =============================================================================
// CATALOG EXPORT
// =============================================================================

// WriteCatalog writes the header and every record of catalog.
func WriteCatalog(out io.Writer, catalog *types.Catalog, comma, quote rune) error {
	w := NewWriter(out)
	w.Comma = comma
	w.Quote = quote

	if err := w.WriteHeader(Header(catalog.StoreIDs)); err != nil {
		return err
	}
	for _, record := range catalog.Records() {
		if err := w.Write(Row(record, catalog.StoreIDs)); err != nil {
			return err
		}
	}
	return w.Flush()
}
