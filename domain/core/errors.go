package core

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors - centralized error definitions
var (
	// Load-time errors
	ErrDataIntegrity = errors.New("data integrity violation")

	// Request errors, recoverable by re-prompting the caller
	ErrInvalidModelSpec   = errors.New("invalid model specification")
	ErrUnknownAttribute   = fmt.Errorf("%w: unknown attribute", ErrInvalidModelSpec)
	ErrNoIndependentVars  = fmt.Errorf("%w: no independent variables", ErrInvalidModelSpec)
	ErrUnderdetermined    = fmt.Errorf("%w: model underdetermined", ErrInvalidModelSpec)
	ErrGroupCount         = fmt.Errorf("%w: grouping column must have exactly two groups", ErrInvalidModelSpec)
	ErrDimensionMismatch  = errors.New("dimension mismatch")
	ErrInsufficientSample = errors.New("insufficient sample")
)

// Error constructors with context
func NewMissingColumnsError(columns []string) error {
	return fmt.Errorf("%w: missing required columns %s", ErrDataIntegrity, strings.Join(columns, ", "))
}

func NewUnknownAttributeError(name string) error {
	return fmt.Errorf("%w %q", ErrUnknownAttribute, name)
}

func NewUnderdeterminedError(rows, params int) error {
	return fmt.Errorf("%w: need at least %d rows, got %d", ErrUnderdetermined, params, rows)
}

func NewDimensionMismatchError(expected, actual int) error {
	return fmt.Errorf("%w: expected %d input values, got %d", ErrDimensionMismatch, expected, actual)
}

func NewInsufficientSampleError(sample string, min, actual int) error {
	return fmt.Errorf("%w: %s needs at least %d values, got %d", ErrInsufficientSample, sample, min, actual)
}

func NewGroupCountError(column string, groups int) error {
	return fmt.Errorf("%w: %s has %d distinct values", ErrGroupCount, column, groups)
}

// Error checking helpers
func IsDataIntegrityError(err error) bool {
	return errors.Is(err, ErrDataIntegrity)
}

func IsInvalidModelSpecError(err error) bool {
	return errors.Is(err, ErrInvalidModelSpec)
}

func IsDimensionMismatchError(err error) bool {
	return errors.Is(err, ErrDimensionMismatch)
}

func IsInsufficientSampleError(err error) bool {
	return errors.Is(err, ErrInsufficientSample)
}

// IsRecoverable reports whether the caller can correct the request and retry.
func IsRecoverable(err error) bool {
	return IsInvalidModelSpecError(err) ||
		IsDimensionMismatchError(err) ||
		IsInsufficientSampleError(err)
}
