package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"foodwaste/internal/core"
)

func TestParsePageRequest(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  core.PageRequest
	}{
		{
			name:  "all parameters",
			query: "limit=20&offset=5&sort=quantity_kg&order=ASC",
			want:  core.PageRequest{Limit: 20, Offset: 5, Sort: "quantity_kg", Order: "ASC"},
		},
		{
			name:  "sort_field alias",
			query: "sort_field=category",
			want:  core.PageRequest{Sort: "category"},
		},
		{
			name:  "garbage numbers",
			query: "limit=lots&offset=-5",
			want:  core.PageRequest{Offset: -5},
		},
		{
			name:  "empty",
			query: "",
			want:  core.PageRequest{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatal(err)
			}
			if got := ParsePageRequest(q); got != tt.want {
				t.Errorf("ParsePageRequest() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRequestBodyParser_JSON(t *testing.T) {
	body := `{"food_item": " apple ", "quantity": 0.5, "category": "Fruits", "notes": "a\u0001b"}`
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if !parser.IsJSON() {
		t.Error("Expected IsJSON() to be true")
	}

	in := parser.EntryInput()
	if in.FoodItem != "apple" {
		t.Errorf("FoodItem = %q, want 'apple'", in.FoodItem)
	}
	if in.Quantity != "0.5" {
		t.Errorf("Quantity = %q, want '0.5'", in.Quantity)
	}
	if in.Notes != "ab" {
		t.Errorf("Notes = %q, control characters must be stripped", in.Notes)
	}
	if in.Unit != "" {
		t.Errorf("Unit = %q, want empty", in.Unit)
	}
}

func TestRequestBodyParser_FormData(t *testing.T) {
	body := "food_item=brown+rice&quantity=2&unit=servings"
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if parser.IsJSON() {
		t.Error("Expected IsJSON() to be false for form data")
	}

	if got := parser.Get("food_item"); got != "brown rice" {
		t.Errorf("Get('food_item') = %q, want 'brown rice'", got)
	}
	if got := parser.Get("unit"); got != "servings" {
		t.Errorf("Get('unit') = %q", got)
	}
}

func TestRequestBodyParser_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(""))

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if val := parser.Get("nonexistent"); val != "" {
		t.Errorf("Get('nonexistent') = %q, want empty string", val)
	}
}

func TestRequestBodyParser_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"broken json", `{"food_item": `},
		{"too large", "notes=" + strings.Repeat("x", maxBodyBytes)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(tt.body))
			err := NewRequestBodyParser(req).Parse()
			if !errors.Is(err, core.ErrValidation) {
				t.Fatalf("Parse() error = %v, want validation error", err)
			}
		})
	}
}
