package importer

import (
	"fmt"
	"io"

	"foodwaste/internal/core"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Waste"

// WriteXLSX writes entries as a workbook that ImportXLSX can read back.
func WriteXLSX(w io.Writer, entries []core.WasteEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, 0, len(Columns)+1)
	for _, c := range Columns {
		header = append(header, c)
	}
	header = append(header, "quantity_kg")
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, e := range entries {
		row := []any{
			e.FoodItem,
			string(e.Category),
			e.Quantity,
			e.Unit,
			e.Date.String(),
			string(e.Reason),
			e.Notes,
			e.QuantityKg,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
