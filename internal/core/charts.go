package core

import "sort"

// Point is one labelled value of a chart series.
type Point struct {
	Label string  `json:"label"`
	Kg    float64 `json:"kg"`
}

// ChartData groups the series rendered on the dashboard.
type ChartData struct {
	Period     string  `json:"period"`
	Daily      []Point `json:"daily"`
	ByCategory []Point `json:"by_category"`
	Monthly    []Point `json:"monthly"`
}

// BuildChartData computes every dashboard series from the same entries.
func BuildChartData(entries []WasteEntry, p Period) ChartData {
	return ChartData{
		Period:     p.String(),
		Daily:      DailySeries(entries),
		ByCategory: CategorySeries(entries),
		Monthly:    MonthlySeries(entries),
	}
}

// DailySeries sums kilograms per date, oldest first.
func DailySeries(entries []WasteEntry) []Point {
	return sortedByLabel(sumBy(entries, func(e WasteEntry) string { return e.Date.String() }))
}

// MonthlySeries sums kilograms per YYYY-MM, oldest first.
func MonthlySeries(entries []WasteEntry) []Point {
	return sortedByLabel(sumBy(entries, func(e WasteEntry) string { return e.Date.MonthKey() }))
}

// CategorySeries sums kilograms per category, heaviest first.
func CategorySeries(entries []WasteEntry) []Point {
	points := toPoints(sumBy(entries, func(e WasteEntry) string { return string(e.Category) }))
	sort.Slice(points, func(i, j int) bool {
		if points[i].Kg != points[j].Kg {
			return points[i].Kg > points[j].Kg
		}
		return points[i].Label < points[j].Label
	})
	return points
}

func sumBy(entries []WasteEntry, key func(WasteEntry) string) map[string]float64 {
	out := make(map[string]float64)
	for _, e := range entries {
		out[key(e)] += e.QuantityKg
	}
	return out
}

func toPoints(m map[string]float64) []Point {
	points := make([]Point, 0, len(m))
	for label, kg := range m {
		points = append(points, Point{Label: label, Kg: kg})
	}
	return points
}

func sortedByLabel(m map[string]float64) []Point {
	points := toPoints(m)
	sort.Slice(points, func(i, j int) bool { return points[i].Label < points[j].Label })
	return points
}
