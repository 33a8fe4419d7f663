package cli

import (
	"bytes"
	"strings"
	"testing"

	"foodwaste/internal/core"
)

func TestRenderEntries(t *testing.T) {
	var buf bytes.Buffer
	page := core.Page{
		Total: 3,
		Entries: []core.WasteEntry{
			{ID: "a1", FoodItem: "Kale", Category: core.CategoryVegetables, Quantity: 200, Unit: "g", QuantityKg: 0.2, Date: core.NewDate(2024, 6, 1), Reason: core.ReasonSpoiled},
		},
		PageParams: core.PageParams{Limit: 1, Offset: 1},
	}
	if err := RenderEntries(&buf, page); err != nil {
		t.Fatalf("RenderEntries: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Kale", "2024-06-01", "200 g", "0.20", "2-2 of 3"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderEntriesEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderEntries(&buf, core.Page{}); err != nil {
		t.Fatalf("RenderEntries: %v", err)
	}
	if !strings.Contains(buf.String(), "No entries logged.") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestRenderStats(t *testing.T) {
	var buf bytes.Buffer
	stats := core.AggregateStats{
		TotalKg:     3,
		AvgDailyKg:  1.5,
		TopCategory: "Fruits",
		ByCategory:  map[string]float64{"Fruits": 2, "Dairy": 1},
		ByReason:    map[string]float64{"Expired": 3},
		EntryCount:  2,
	}
	if err := RenderStats(&buf, "7days", stats); err != nil {
		t.Fatalf("RenderStats: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"3.00 kg", "1.50 kg", "Fruits", "By reason", "Expired"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	bars := out[strings.Index(out, "By category"):]
	if strings.Index(bars, "Fruits") > strings.Index(bars, "Dairy") {
		t.Errorf("bars not sorted by weight:\n%s", out)
	}
}

func TestRenderStatsEmptyPeriod(t *testing.T) {
	var buf bytes.Buffer
	stats := core.AggregateStats{TopCategory: core.NoTopCategory, ByCategory: map[string]float64{}, ByReason: map[string]float64{}}
	if err := RenderStats(&buf, "all", stats); err != nil {
		t.Fatalf("RenderStats: %v", err)
	}
	if strings.Contains(buf.String(), "By category") {
		t.Fatalf("empty stats should not draw bars:\n%s", buf.String())
	}
}
