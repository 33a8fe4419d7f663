package core

import (
	"sort"
	"strings"
)

// Physical conversion factors, kilograms per unit.
const (
	KgPerKilogram   = 1.0
	KgPerGram       = 0.001
	KgPerMilligram  = 0.000001
	KgPerPound      = 0.453592
	KgPerOunce      = 0.0283495
	KgPerLitre      = 1.0 // water density
	KgPerMillilitre = 0.001
)

// Heuristic weights for count-based units. These are rough household
// averages, not physical conversions, and can be overridden per deployment.
const (
	DefaultServingKg = 0.25
	DefaultItemKg    = 0.15
)

// UnitConverter maps a quantity in some unit to kilograms. Unknown units are
// treated as already being kilograms.
type UnitConverter struct {
	factors map[string]float64
}

// UnitOption customizes a converter at construction time.
type UnitOption func(map[string]float64)

// WithServingKg overrides the weight of one serving.
func WithServingKg(kg float64) UnitOption {
	return func(f map[string]float64) {
		f["servings"] = kg
		f["serving"] = kg
	}
}

// WithItemKg overrides the weight of one item.
func WithItemKg(kg float64) UnitOption {
	return func(f map[string]float64) {
		f["items"] = kg
		f["item"] = kg
	}
}

// WithUnit adds or replaces a unit factor.
func WithUnit(unit string, kg float64) UnitOption {
	return func(f map[string]float64) {
		f[unitKey(unit)] = kg
	}
}

func NewUnitConverter(opts ...UnitOption) *UnitConverter {
	factors := map[string]float64{
		"kg":        KgPerKilogram,
		"kgs":       KgPerKilogram,
		"kilogram":  KgPerKilogram,
		"kilograms": KgPerKilogram,
		"g":         KgPerGram,
		"gram":      KgPerGram,
		"grams":     KgPerGram,
		"mg":        KgPerMilligram,
		"lb":        KgPerPound,
		"lbs":       KgPerPound,
		"pound":     KgPerPound,
		"pounds":    KgPerPound,
		"oz":        KgPerOunce,
		"ounce":     KgPerOunce,
		"ounces":    KgPerOunce,
		"ltr":       KgPerLitre,
		"l":         KgPerLitre,
		"litre":     KgPerLitre,
		"liter":     KgPerLitre,
		"ml":        KgPerMillilitre,
		"servings":  DefaultServingKg,
		"serving":   DefaultServingKg,
		"items":     DefaultItemKg,
		"item":      DefaultItemKg,
	}
	for _, opt := range opts {
		opt(factors)
	}
	return &UnitConverter{factors: factors}
}

// ToKg converts quantity to kilograms. Matching is case-insensitive.
func (c *UnitConverter) ToKg(quantity float64, unit string) float64 {
	return quantity * c.Factor(unit)
}

// Factor returns the kilograms per unit, 1 for unknown units.
func (c *UnitConverter) Factor(unit string) float64 {
	if f, ok := c.factors[unitKey(unit)]; ok {
		return f
	}
	return 1
}

// Known reports whether unit has an explicit factor.
func (c *UnitConverter) Known(unit string) bool {
	_, ok := c.factors[unitKey(unit)]
	return ok
}

// Units returns every known unit name, sorted.
func (c *UnitConverter) Units() []string {
	out := make([]string, 0, len(c.factors))
	for u := range c.factors {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

func unitKey(unit string) string {
	return foldString(strings.TrimSpace(unit))
}
