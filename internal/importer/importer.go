// Package importer moves waste entries in and out of XLSX workbooks.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"foodwaste/internal/core"
	"foodwaste/internal/log"

	"github.com/xuri/excelize/v2"
)

// Columns is the default column order, also used as the header row.
var Columns = []string{"food_item", "category", "quantity", "unit", "date", "reason", "notes"}

var ErrEmptyWorkbook = errors.New("workbook has no rows")

// Adder stores one validated entry.
type Adder interface {
	AddEntry(ctx context.Context, in core.EntryInput) (string, error)
}

// RowError records why a spreadsheet row was not imported. Row is 1-based
// as shown by spreadsheet applications.
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type ImportResult struct {
	Imported int        `json:"imported"`
	IDs      []string   `json:"ids"`
	Failed   []RowError `json:"failed"`
}

// ImportXLSX adds every row of the first sheet through svc. Rows that fail
// validation are reported in the result and do not abort the import.
func ImportXLSX(ctx context.Context, r io.Reader, svc Adder) (ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return ImportResult{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ImportResult{}, ErrEmptyWorkbook
	}

	// Raw values keep date cells as serial numbers instead of a locale format.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return ImportResult{}, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return ImportResult{}, ErrEmptyWorkbook
	}

	index := defaultIndex()
	start := 0
	if len(rows[0]) > 0 && strings.EqualFold(strings.TrimSpace(rows[0][0]), "food_item") {
		index = headerIndex(rows[0])
		start = 1
	}

	result := ImportResult{Failed: []RowError{}}
	for i := start; i < len(rows); i++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		row := rows[i]
		if blank(row) {
			continue
		}
		in := rowInput(row, index)
		id, err := svc.AddEntry(ctx, in)
		if err != nil {
			result.Failed = append(result.Failed, RowError{Row: i + 1, Error: err.Error()})
			continue
		}
		result.Imported++
		result.IDs = append(result.IDs, id)
	}

	log.FromContext(ctx).WithComponent(log.ComponentImport).InfoContext(ctx, "Workbook imported",
		log.FieldOperation, log.OpImport, "sheet", sheets[0], "imported", result.Imported, "failed", len(result.Failed))
	return result, nil
}

func defaultIndex() map[string]int {
	idx := make(map[string]int, len(Columns))
	for i, c := range Columns {
		idx[c] = i
	}
	return idx
}

// headerIndex maps known column names to their position. Unknown header
// cells are ignored and missing columns read as empty.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(Columns))
	for _, c := range Columns {
		idx[c] = -1
	}
	for i, cell := range header {
		name := strings.ToLower(strings.TrimSpace(cell))
		if pos, ok := idx[name]; ok && pos < 0 {
			idx[name] = i
		}
	}
	return idx
}

func rowInput(row []string, index map[string]int) core.EntryInput {
	cell := func(name string) string {
		i := index[name]
		if i >= 0 && i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	return core.EntryInput{
		FoodItem: cell("food_item"),
		Category: cell("category"),
		Quantity: cell("quantity"),
		Unit:     cell("unit"),
		Date:     cellDate(cell("date")),
		Reason:   cell("reason"),
		Notes:    cell("notes"),
	}
}

// cellDate turns an Excel serial date into YYYY-MM-DD. Text dates pass
// through unchanged for validation.
func cellDate(v string) string {
	serial, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return v
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return v
	}
	return core.DateOf(t).String()
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
