package settings

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingRequiredField is matched by MissingRequiredFieldError.
	ErrMissingRequiredField = errors.New("missing required field")
	// ErrSourceDegraded marks a source that could not initialise. The resolver
	// treats such a source as having contributed nothing.
	ErrSourceDegraded = errors.New("source degraded")
	// ErrInvalidRegistry is returned when a field declaration is rejected.
	ErrInvalidRegistry = errors.New("invalid field registry")
)

// MissingRequiredFieldError lists the required fields no source supplied.
type MissingRequiredFieldError struct {
	Fields []string
}

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingRequiredField, strings.Join(e.Fields, ", "))
}

// Field returns the first missing field in declaration order.
func (e *MissingRequiredFieldError) Field() string {
	if len(e.Fields) == 0 {
		return ""
	}
	return e.Fields[0]
}

func (e *MissingRequiredFieldError) Is(target error) bool {
	return target == ErrMissingRequiredField
}

// SourceError wraps a fatal error raised by a source.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
