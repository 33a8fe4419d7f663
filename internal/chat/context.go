package chat

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"foodwaste/internal/core"
)

const recentEntryCount = 3

// WithDataContext prefixes query with a summary of entries for the hosted
// assistant. Without entries the query is returned unchanged.
func WithDataContext(query string, entries []core.WasteEntry) string {
	if len(entries) == 0 {
		return query
	}
	return DataContext(entries) + "\n\nUser question: " + query
}

// DataContext summarizes totals and the most recent entries.
func DataContext(entries []core.WasteEntry) string {
	stats := core.Summarize(entries)

	var b strings.Builder
	b.WriteString("Current Food Waste Statistics:\n")
	fmt.Fprintf(&b, "- Total Waste: %.2f kg\n", stats.TotalKg)
	fmt.Fprintf(&b, "- Average Daily Waste: %.2f kg\n", stats.AvgDailyKg)
	fmt.Fprintf(&b, "- Most Wasted Category: %s\n", stats.TopCategory)

	b.WriteString("\nMost Recent Entries:\n")
	for _, e := range recentEntries(entries, recentEntryCount) {
		fmt.Fprintf(&b, "- %s (%s): %s %s on %s\n",
			e.FoodItem, e.Category, strconv.FormatFloat(e.Quantity, 'f', -1, 64), e.Unit, e.Date.String())
	}
	return strings.TrimRight(b.String(), "\n")
}

// recentEntries returns up to n entries, newest date first. Entries on the
// same date keep their stored order.
func recentEntries(entries []core.WasteEntry, n int) []core.WasteEntry {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b core.WasteEntry) int {
		return cmp.Compare(b.Date.Unix(), a.Date.Unix())
	})
	return sorted[:min(n, len(sorted))]
}
