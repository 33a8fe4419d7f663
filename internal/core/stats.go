package core

import (
	"sort"
	"time"
)

// NoTopCategory is reported when there is nothing to aggregate.
const NoTopCategory = "None"

// AggregateStats is derived on every query and never persisted.
type AggregateStats struct {
	TotalKg     float64            `json:"total_waste_kg"`
	AvgDailyKg  float64            `json:"avg_daily_waste_kg"`
	TopCategory string             `json:"most_wasted_category"`
	ByCategory  map[string]float64 `json:"waste_by_category"`
	ByReason    map[string]float64 `json:"waste_by_reason"`
	EntryCount  int                `json:"entry_count"`
}

// StatsEngine aggregates entries over a period. It holds no state besides
// the clock used to resolve "today".
type StatsEngine struct {
	now func() time.Time
}

func NewStatsEngine() *StatsEngine {
	return &StatsEngine{now: time.Now}
}

// WithClock returns a copy of the engine that reads time from now.
func (s *StatsEngine) WithClock(now func() time.Time) *StatsEngine {
	return &StatsEngine{now: now}
}

// Aggregate filters entries to p and summarizes the result.
func (s *StatsEngine) Aggregate(entries []WasteEntry, p Period) AggregateStats {
	return Summarize(FilterByPeriod(entries, p, s.now()))
}

// Summarize computes totals over entries without any filtering.
func Summarize(entries []WasteEntry) AggregateStats {
	stats := AggregateStats{
		TopCategory: NoTopCategory,
		ByCategory:  map[string]float64{},
		ByReason:    map[string]float64{},
		EntryCount:  len(entries),
	}
	if len(entries) == 0 {
		return stats
	}

	perDay := make(map[string]float64)
	for _, e := range entries {
		stats.TotalKg += e.QuantityKg
		stats.ByCategory[string(e.Category)] += e.QuantityKg
		stats.ByReason[string(e.Reason)] += e.QuantityKg
		perDay[e.Date.String()] += e.QuantityKg
	}

	var daySum float64
	for _, kg := range perDay {
		daySum += kg
	}
	stats.AvgDailyKg = daySum / float64(len(perDay))
	stats.TopCategory = TopCategory(stats.ByCategory)
	return stats
}

// TopCategory returns the key with the largest sum. Ties go to the first key
// in sorted order.
func TopCategory(byCategory map[string]float64) string {
	if len(byCategory) == 0 {
		return NoTopCategory
	}
	keys := make([]string, 0, len(byCategory))
	for k := range byCategory {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	top := keys[0]
	for _, k := range keys[1:] {
		if byCategory[k] > byCategory[top] {
			top = k
		}
	}
	return top
}
