package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"foodwaste/internal/core"
)

// headerRow is written to an empty sheet before the first entry.
var headerRow = []interface{}{
	"ID", "Date", "Food item", "Category", "Quantity", "Unit", "Quantity (kg)", "Reason", "Notes", "Logged at",
}

func entryRow(e core.WasteEntry) []interface{} {
	return []interface{}{
		e.ID,
		e.Date.String(),
		e.FoodItem,
		string(e.Category),
		strconv.FormatFloat(e.Quantity, 'f', -1, 64),
		e.Unit,
		fmt.Sprintf("%.3f", e.QuantityKg),
		string(e.Reason),
		e.Notes,
		e.EntryTimestamp.UTC().Format(time.RFC3339),
	}
}

// findRow returns the zero-based row index whose first cell equals id, or -1.
func findRow(values [][]interface{}, id string) int {
	id = strings.TrimSpace(id)
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == id {
			return i
		}
	}
	return -1
}

func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
