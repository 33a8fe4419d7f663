package core

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestUnitConverterKnownUnits(t *testing.T) {
	conv := NewUnitConverter()
	cases := []struct {
		unit   string
		factor float64
	}{
		{"kg", 1},
		{"g", 0.001},
		{"mg", 1e-6},
		{"lb", 0.453592},
		{"lbs", 0.453592},
		{"oz", 0.0283495},
		{"ltr", 1},
		{"ml", 0.001},
		{"servings", 0.25},
		{"items", 0.15},
	}
	for _, tc := range cases {
		for _, q := range []float64{0.5, 1, 3, 1250} {
			if got := conv.ToKg(q, tc.unit); !almostEqual(got, q*tc.factor) {
				t.Errorf("ToKg(%v, %q) = %v, want %v", q, tc.unit, got, q*tc.factor)
			}
		}
		if !conv.Known(tc.unit) {
			t.Errorf("%q should be known", tc.unit)
		}
	}
}

func TestUnitConverterCaseInsensitive(t *testing.T) {
	conv := NewUnitConverter()
	for _, u := range []string{"KG", "Lbs", " OZ ", "Ml", "SERVINGS"} {
		if !conv.Known(u) {
			t.Errorf("%q should match case-insensitively", u)
		}
	}
	if got := conv.ToKg(2, "LB"); !almostEqual(got, 2*0.453592) {
		t.Fatalf("ToKg(2, LB) = %v", got)
	}
}

func TestUnitConverterUnknownUnitIsIdentity(t *testing.T) {
	conv := NewUnitConverter()
	for _, u := range []string{"bushel", "crate", ""} {
		if conv.Known(u) {
			t.Fatalf("%q should be unknown", u)
		}
		if got := conv.ToKg(4.2, u); got != 4.2 {
			t.Fatalf("ToKg(4.2, %q) = %v, want 4.2", u, got)
		}
	}
}

func TestUnitConverterOverrides(t *testing.T) {
	conv := NewUnitConverter(WithServingKg(0.3), WithItemKg(0.2), WithUnit("Crate", 12))
	if got := conv.ToKg(2, "servings"); !almostEqual(got, 0.6) {
		t.Fatalf("servings override = %v", got)
	}
	if got := conv.ToKg(5, "item"); !almostEqual(got, 1.0) {
		t.Fatalf("item override = %v", got)
	}
	if got := conv.ToKg(1, "crate"); got != 12 {
		t.Fatalf("custom unit = %v", got)
	}
	// the defaults of other converters are untouched
	if got := NewUnitConverter().ToKg(1, "servings"); got != DefaultServingKg {
		t.Fatalf("default servings = %v", got)
	}
}
