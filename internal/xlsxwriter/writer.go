// =============================================================================
// Price Export - XLSX Writer Module
// =============================================================================
//
// This module writes the catalog as an Excel workbook with a single sheet.
// The columns are the same as the CSV export. Money cells are numbers
// formatted with two decimals; id and name cells are text.
//
// =============================================================================

package xlsxwriter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/price-export/internal/csvwriter"
	"github.com/ginjaninja78/price-export/internal/types"
)

// SheetName is the name of the only sheet in the workbook.
const SheetName = "Prices"

// moneyNumFmt is excelize's built-in "0.00" format.
const moneyNumFmt = 2

// WriteCatalog writes catalog as an XLSX workbook to out.
func WriteCatalog(out io.Writer, catalog *types.Catalog) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: moneyNumFmt})
	if err != nil {
		return fmt.Errorf("failed to create money style: %w", err)
	}

	header := csvwriter.Header(catalog.StoreIDs)
	if err := setRow(f, 1, stringsToCells(header)); err != nil {
		return err
	}

	for i, record := range catalog.Records() {
		rowNum := i + 2
		if err := setRow(f, rowNum, recordCells(record, catalog.StoreIDs)); err != nil {
			return err
		}

		// Price, RegularPrice and PricePerLitre columns.
		for _, col := range []int{3, 4, 6} {
			cell, err := excelize.CoordinatesToCellName(col, rowNum)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(SheetName, cell, cell, moneyStyle); err != nil {
				return fmt.Errorf("failed to style %s: %w", cell, err)
			}
		}
	}

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func recordCells(record *types.ProductRecord, storeIDs []string) []interface{} {
	cells := []interface{}{
		record.ID,
		record.Name,
		record.Price.InexactFloat64(),
		record.RegularPrice.InexactFloat64(),
		volumeCell(record),
		record.PricePerLitre.InexactFloat64(),
	}
	for _, storeID := range storeIDs {
		cells = append(cells, record.Quantity(storeID))
	}
	return cells
}

// volumeCell keeps whole-milliliter volumes as integers.
func volumeCell(record *types.ProductRecord) interface{} {
	if record.PackageVolume.IsInteger() {
		if v, err := strconv.ParseInt(record.PackageVolume.String(), 10, 64); err == nil {
			return v
		}
	}
	return record.PackageVolume.InexactFloat64()
}

func stringsToCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

func setRow(f *excelize.File, rowNum int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", rowNum, err)
	}
	return nil
}
