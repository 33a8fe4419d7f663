package core

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// DateLayout is the ISO calendar date format used at every boundary.
const DateLayout = "2006-01-02"

const (
	CategoryVegetables Category = "Vegetables"
	CategoryFruits     Category = "Fruits"
	CategoryDairy      Category = "Dairy"
	CategoryGrains     Category = "Grains"
	CategoryMeat       Category = "Meat"
	CategoryOthers     Category = "Others"
)

const (
	ReasonExpired    Reason = "Expired"
	ReasonSpoiled    Reason = "Spoiled"
	ReasonLeftover   Reason = "Leftover"
	ReasonOvercooked Reason = "Overcooked"
	ReasonOthers     Reason = "Others"
)

// Categories lists the accepted food categories in display order.
var Categories = []Category{
	CategoryVegetables, CategoryFruits, CategoryDairy, CategoryGrains, CategoryMeat, CategoryOthers,
}

// Reasons lists the accepted waste reasons in display order.
var Reasons = []Reason{
	ReasonExpired, ReasonSpoiled, ReasonLeftover, ReasonOvercooked, ReasonOthers,
}

type (
	Category string
	Reason   string

	// Date is a calendar day stored at midnight UTC.
	Date struct {
		time.Time
	}

	// WasteEntry is one recorded disposal event. QuantityKg is computed once
	// at insert time and never recomputed on read.
	WasteEntry struct {
		ID             string    `json:"id"`
		FoodItem       string    `json:"food_item"`
		Category       Category  `json:"category"`
		Quantity       float64   `json:"quantity"`
		Unit           string    `json:"unit"`
		QuantityKg     float64   `json:"quantity_kg"`
		Date           Date      `json:"date"`
		Reason         Reason    `json:"reason"`
		Notes          string    `json:"notes"`
		EntryTimestamp time.Time `json:"entry_timestamp"`
	}

	// EntryInput carries raw, unvalidated entry fields as received from a
	// form, JSON body, spreadsheet row or command line.
	EntryInput struct {
		FoodItem string
		Category string
		Quantity string
		Unit     string
		Date     string
		Reason   string
		Notes    string
	}
)

// foldString case-folds s. A Caser is stateful, so one is built per call.
func foldString(s string) string {
	return cases.Fold().String(s)
}

// ParseCategory matches s against the known categories ignoring case.
func ParseCategory(s string) (Category, error) {
	key := foldString(strings.TrimSpace(s))
	for _, c := range Categories {
		if foldString(string(c)) == key {
			return c, nil
		}
	}
	return "", &ValidationError{Field: "category", Message: fmt.Sprintf("unknown category %q", s)}
}

// ParseReason matches s against the known reasons ignoring case.
func ParseReason(s string) (Reason, error) {
	key := foldString(strings.TrimSpace(s))
	for _, r := range Reasons {
		if foldString(string(r)) == key {
			return r, nil
		}
	}
	return "", &ValidationError{Field: "reason", Message: fmt.Sprintf("unknown reason %q", s)}
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// MonthKey returns the YYYY-MM bucket of the date.
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return &ValidationError{Field: "date", Message: "date cannot be zero"}
	}
	return nil
}

// Validate checks the invariants of an already-built entry.
func (e WasteEntry) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(e.FoodItem) == "" {
		errs = append(errs, &ValidationError{Field: "food_item", Message: "food item cannot be empty"})
	}
	if _, err := ParseCategory(string(e.Category)); err != nil {
		errs = append(errs, err.(*ValidationError))
	}
	if e.Quantity <= 0 {
		errs = append(errs, &ValidationError{Field: "quantity", Message: "quantity must be positive"})
	}
	if strings.TrimSpace(e.Unit) == "" {
		errs = append(errs, &ValidationError{Field: "unit", Message: "unit cannot be empty"})
	}
	if err := e.Date.Validate(); err != nil {
		errs = append(errs, err.(*ValidationError))
	}
	if _, err := ParseReason(string(e.Reason)); err != nil {
		errs = append(errs, err.(*ValidationError))
	}
	return errs.OrNil()
}

// Build validates the raw input and produces an entry with its normalized
// weight. ID is left for the store to assign.
func (in EntryInput) Build(conv *UnitConverter, now time.Time) (WasteEntry, error) {
	required := []struct{ field, value string }{
		{"food_item", in.FoodItem},
		{"category", in.Category},
		{"quantity", in.Quantity},
		{"unit", in.Unit},
		{"date", in.Date},
		{"reason", in.Reason},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return WasteEntry{}, &ValidationError{Field: r.field, Message: "Missing required field: " + r.field}
		}
	}

	var errs ValidationErrors
	date, err := ParseDate(in.Date)
	if err != nil {
		errs = append(errs, &ValidationError{Field: "date", Message: "Invalid date format. Use YYYY-MM-DD"})
	}
	qty, err := strconv.ParseFloat(strings.TrimSpace(in.Quantity), 64)
	if err != nil || qty <= 0 || math.IsNaN(qty) || math.IsInf(qty, 0) {
		errs = append(errs, &ValidationError{Field: "quantity", Message: "quantity must be a positive number"})
	}
	cat, err := ParseCategory(in.Category)
	if err != nil {
		errs = append(errs, err.(*ValidationError))
	}
	reason, err := ParseReason(in.Reason)
	if err != nil {
		errs = append(errs, err.(*ValidationError))
	}
	if err := errs.OrNil(); err != nil {
		return WasteEntry{}, err
	}

	unit := strings.TrimSpace(in.Unit)
	return WasteEntry{
		FoodItem:       strings.TrimSpace(in.FoodItem),
		Category:       cat,
		Quantity:       qty,
		Unit:           unit,
		QuantityKg:     conv.ToKg(qty, unit),
		Date:           date,
		Reason:         reason,
		Notes:          strings.TrimSpace(in.Notes),
		EntryTimestamp: now.UTC(),
	}, nil
}
