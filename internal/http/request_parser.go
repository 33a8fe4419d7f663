// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data:
// JSON or form bodies, listing parameters and entry fields.

package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"foodwaste/internal/core"
)

// maxBodyBytes bounds JSON and form bodies.
const maxBodyBytes = 1 << 20

// ParsePageRequest reads limit, offset, sort and order from query values.
// Unparseable numbers are passed on as zero and reset by normalization.
func ParsePageRequest(query url.Values) core.PageRequest {
	atoi := func(key string) int {
		n, err := strconv.Atoi(strings.TrimSpace(query.Get(key)))
		if err != nil {
			return 0
		}
		return n
	}
	sort := query.Get("sort")
	if sort == "" {
		sort = query.Get("sort_field")
	}
	return core.PageRequest{
		Limit:  atoi("limit"),
		Offset: atoi("offset"),
		Sort:   strings.TrimSpace(sort),
		Order:  strings.TrimSpace(query.Get("order")),
	}
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}

	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = &core.ValidationError{Field: "body", Message: "request body too large"}
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	// Try JSON first if content looks like JSON
	if p.body[0] == '{' || strings.HasPrefix(p.contentType, "application/json") {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = &core.ValidationError{Field: "body", Message: "invalid JSON body"}
			return p.err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	if p.err != nil {
		p.err = &core.ValidationError{Field: "body", Message: "invalid form body"}
	}
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// EntryInput collects the entry fields from the parsed body.
func (p *RequestBodyParser) EntryInput() core.EntryInput {
	return core.EntryInput{
		FoodItem: p.Get("food_item"),
		Category: p.Get("category"),
		Quantity: p.Get("quantity"),
		Unit:     p.Get("unit"),
		Date:     p.Get("date"),
		Reason:   p.Get("reason"),
		Notes:    p.Get("notes"),
	}
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
