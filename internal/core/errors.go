package core

import (
	"errors"
	"strings"
)

var (
	ErrValidation              = errors.New("validation failed")
	ErrNotFound                = errors.New("entry not found")
	ErrConfiguration           = errors.New("configuration error")
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
)

// ValidationError describes a single bad or missing input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ValidationErrors aggregates every field problem found in one input.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) Unwrap() error {
	return ErrValidation
}

// Fields returns field name to message, first message wins.
func (v ValidationErrors) Fields() map[string]string {
	out := make(map[string]string, len(v))
	for _, e := range v {
		if _, ok := out[e.Field]; !ok {
			out[e.Field] = e.Message
		}
	}
	return out
}

// OrNil returns nil for an empty list so callers never see a typed nil.
func (v ValidationErrors) OrNil() error {
	if len(v) == 0 {
		return nil
	}
	if len(v) == 1 {
		return v[0]
	}
	return v
}

// ConfigurationError reports a missing or invalid external setting.
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return e.Setting + ": " + e.Reason
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}
