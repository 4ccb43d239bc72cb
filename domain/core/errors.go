package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Structural misuse errors. These are programmer errors and are never
	// recovered locally.
	ErrNotFitted       = errors.New("transform used before fit")
	ErrShapeMismatch   = errors.New("matrix shape mismatch")
	ErrMissingFeature  = errors.New("expected feature column absent")
	ErrUnknownStrategy = errors.New("unknown encoding strategy")
	ErrUnknownColumn   = errors.New("column not declared in schema")

	// Data errors
	ErrEmptyDataset    = errors.New("dataset has no rows")
	ErrInvalidSchema   = errors.New("invalid schema")
	ErrInvalidAlpha    = errors.New("interpolation factor outside [0,1]")
	ErrNotFound        = errors.New("resource not found")
	ErrRunNotFound     = fmt.Errorf("%w: run", ErrNotFound)
	ErrCentroidMissing = fmt.Errorf("%w: centroid", ErrNotFound)
)

// Error constructors with context
func NewShapeError(what string, wantRows, wantCols, gotRows, gotCols int) error {
	return fmt.Errorf("%w: %s expected %dx%d, got %dx%d", ErrShapeMismatch, what, wantRows, wantCols, gotRows, gotCols)
}

func NewMissingFeatureError(feature string) error {
	return fmt.Errorf("%w: %q", ErrMissingFeature, feature)
}

func NewCentroidMissingError(paradigm string) error {
	return fmt.Errorf("%w for paradigm %q (no members in dataset)", ErrCentroidMissing, paradigm)
}

func NewSchemaError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidSchema, field, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsStructuralError reports errors caused by wrong call order or misaligned
// schemas rather than by data quality.
func IsStructuralError(err error) bool {
	return errors.Is(err, ErrNotFitted) ||
		errors.Is(err, ErrShapeMismatch) ||
		errors.Is(err, ErrMissingFeature) ||
		errors.Is(err, ErrUnknownStrategy) ||
		errors.Is(err, ErrUnknownColumn)
}
