package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"foodwaste/internal/core"
	"foodwaste/internal/log"
)

// errorBody is the JSON shape of every API error.
type errorBody struct {
	Error  string            `json:"error"`
	Type   string            `json:"type"`
	Fields map[string]string `json:"fields,omitempty"`
}

// classifyError maps a service error to a status code and error type.
func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrValidation):
		return http.StatusUnprocessableEntity, log.ErrorTypeValidation
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, log.ErrorTypeNotFound
	case errors.Is(err, core.ErrConfiguration):
		return http.StatusServiceUnavailable, log.ErrorTypeConfiguration
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, log.ErrorTypeTimeout
	default:
		return http.StatusInternalServerError, log.ErrorTypeInternal
	}
}

// publicMessage hides internal error details from clients.
func publicMessage(err error, status int) string {
	if status >= 500 && status != http.StatusServiceUnavailable {
		return "internal server error"
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

// writeError logs err and writes the matching JSON error body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, errType := classifyError(err)
	logger := log.FromContext(r.Context())
	if status >= 500 {
		logger.ErrorContext(r.Context(), "Request failed", log.FieldError, err, log.FieldErrorType, errType)
	} else {
		logger.DebugContext(r.Context(), "Request rejected", log.FieldError, err, log.FieldErrorType, errType)
	}

	body := errorBody{Error: publicMessage(err, status), Type: errType}
	var many core.ValidationErrors
	if errors.As(err, &many) {
		body.Fields = many.Fields()
	}
	var one *core.ValidationError
	if body.Fields == nil && errors.As(err, &one) {
		body.Fields = map[string]string{one.Field: one.Message}
	}
	writeJSON(w, status, body)
}

// writeHTMXError renders err as an HTML fragment for htmx swaps.
func writeHTMXError(w http.ResponseWriter, r *http.Request, err error) {
	status, _ := classifyError(err)
	if status >= 500 {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed", log.FieldError, err)
	}
	ErrorFragment(status, publicMessage(err, status)).Write(w)
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// sanitizeInput removes control characters except tab and newlines, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func formatKg(kg float64) string {
	return fmt.Sprintf("%.2f kg", kg)
}

var templateFuncs = template.FuncMap{
	"kg": formatKg,
	// pct scales v against top for bar widths, with a visible minimum.
	"pct": func(v, top float64) int {
		if top <= 0 || v <= 0 {
			return 0
		}
		p := int(v*100/top + 0.5)
		return min(max(p, 2), 100)
	},
}
