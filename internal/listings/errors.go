package listings

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrorInvalidInput = errors.New("invalid input")
	ErrorNotFound     = errors.New("listing not found")
)

// NotFoundError indica que no existe un listing con ese id.
type NotFoundError struct {
	ID int64
}

func (err *NotFoundError) Error() string {
	return fmt.Sprintf("listing not found: id %d", err.ID)
}

func (err *NotFoundError) Unwrap() error {
	return ErrorNotFound
}

// ValidationError junta los errores por campo (nombre JSON -> mensaje).
type ValidationError struct {
	Fields map[string]string
}

func (err *ValidationError) Error() string {
	if len(err.Fields) == 0 {
		return ErrorInvalidInput.Error()
	}

	names := make([]string, 0, len(err.Fields))
	for name := range err.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+err.Fields[name])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (err *ValidationError) Unwrap() error {
	return ErrorInvalidInput
}
