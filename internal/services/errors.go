package services

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound reports a product or maker id that resolves to nothing.
	ErrNotFound = errors.New("record not found")
	// ErrStorage reports a failed image write; the mutation it belonged
	// to is aborted and no product row is committed.
	ErrStorage = errors.New("image storage failed")
)

// FieldError is a single validation failure on a named input field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationErrors accumulates every violation of one submission; no
// failure short-circuits the rest.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, fe := range v {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ByField returns the first message recorded for a field, if any.
func (v ValidationErrors) ByField(field string) (string, bool) {
	for _, fe := range v {
		if fe.Field == field {
			return fe.Message, true
		}
	}
	return "", false
}
