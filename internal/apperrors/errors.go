package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is wrapped by repositories when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is wrapped by repositories when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
	// ErrPermissionDenied is returned when a policy rejects an authenticated actor.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrUnauthorized is returned when a policy rejects an anonymous actor.
	ErrUnauthorized = errors.New("authentication required")
)

// ValidationError carries field-level messages keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError with a single field message.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
