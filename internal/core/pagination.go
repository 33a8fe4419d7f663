package core

import (
	"cmp"
	"slices"
	"strings"
)

// Pagination defaults and limits for entry listings.
const (
	DefaultLimit     = 10
	MinLimit         = 1
	MaxLimit         = 100
	DefaultSortField = "date"
	SortOrderAsc     = "asc"
	SortOrderDesc    = "desc"
)

// PageRequest is the raw listing request. Out-of-range values are reset,
// never rejected.
type PageRequest struct {
	Limit  int
	Offset int
	Sort   string
	Order  string
}

// PageParams is a normalized PageRequest.
type PageParams struct {
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
	Sort   string `json:"sort"`
	Order  string `json:"order"`
}

// Page is one slice of the sorted entry collection.
type Page struct {
	Total   int          `json:"total"`
	Entries []WasteEntry `json:"entries"`
	PageParams
}

var entryComparators = map[string]func(a, b WasteEntry) int{
	"id":              func(a, b WasteEntry) int { return cmp.Compare(a.ID, b.ID) },
	"food_item":       func(a, b WasteEntry) int { return cmp.Compare(a.FoodItem, b.FoodItem) },
	"category":        func(a, b WasteEntry) int { return cmp.Compare(a.Category, b.Category) },
	"quantity":        func(a, b WasteEntry) int { return cmp.Compare(a.Quantity, b.Quantity) },
	"unit":            func(a, b WasteEntry) int { return cmp.Compare(a.Unit, b.Unit) },
	"quantity_kg":     func(a, b WasteEntry) int { return cmp.Compare(a.QuantityKg, b.QuantityKg) },
	"date":            func(a, b WasteEntry) int { return a.Date.Compare(b.Date.Time) },
	"reason":          func(a, b WasteEntry) int { return cmp.Compare(a.Reason, b.Reason) },
	"notes":           func(a, b WasteEntry) int { return cmp.Compare(a.Notes, b.Notes) },
	"entry_timestamp": func(a, b WasteEntry) int { return a.EntryTimestamp.Compare(b.EntryTimestamp) },
}

// IsValidSortField reports whether entries can be sorted by field.
func IsValidSortField(field string) bool {
	_, ok := entryComparators[field]
	return ok
}

// SortFields returns the sortable entry attributes.
func SortFields() []string {
	fields := make([]string, 0, len(entryComparators))
	for f := range entryComparators {
		fields = append(fields, f)
	}
	slices.Sort(fields)
	return fields
}

// NormalizePage clamps a request into valid parameters.
func NormalizePage(req PageRequest) PageParams {
	p := PageParams{
		Limit:  req.Limit,
		Offset: req.Offset,
		Sort:   strings.TrimSpace(req.Sort),
		Order:  SortOrderDesc,
	}
	if p.Limit < MinLimit || p.Limit > MaxLimit {
		p.Limit = DefaultLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	if !IsValidSortField(p.Sort) {
		p.Sort = DefaultSortField
	}
	if strings.EqualFold(strings.TrimSpace(req.Order), SortOrderAsc) {
		p.Order = SortOrderAsc
	}
	return p
}

// SortEntries returns a stably sorted copy of entries.
func SortEntries(entries []WasteEntry, field, order string) []WasteEntry {
	compare, ok := entryComparators[field]
	if !ok {
		compare = entryComparators[DefaultSortField]
	}
	out := slices.Clone(entries)
	if order == SortOrderAsc {
		slices.SortStableFunc(out, compare)
	} else {
		slices.SortStableFunc(out, func(a, b WasteEntry) int { return compare(b, a) })
	}
	return out
}

// Paginate sorts entries and cuts the requested window.
func Paginate(entries []WasteEntry, req PageRequest) Page {
	params := NormalizePage(req)
	sorted := SortEntries(entries, params.Sort, params.Order)

	start := min(params.Offset, len(sorted))
	end := min(start+params.Limit, len(sorted))
	return Page{
		Total:      len(entries),
		Entries:    sorted[start:end],
		PageParams: params,
	}
}
