package cardio

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInputRange = errors.New("invalid input range")
	ErrSchemaMismatch    = errors.New("schema mismatch")
	ErrModelLoadFailure  = errors.New("model load failure")
)

// RangeError reports a patient field outside its declared domain.
type RangeError struct {
	Field  string
	Value  interface{}
	Domain string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: %v not in %s", e.Field, e.Value, e.Domain)
}

func (e *RangeError) Unwrap() error {
	return ErrInvalidInputRange
}

// SchemaError reports encoder output that cannot be aligned with a model schema.
type SchemaError struct {
	reason string
}

func NewSchemaError(format string, args ...interface{}) *SchemaError {
	return &SchemaError{reason: fmt.Sprintf(format, args...)}
}

func (e *SchemaError) Error() string {
	return "schema mismatch: " + e.reason
}

func (e *SchemaError) Unwrap() error {
	return ErrSchemaMismatch
}

// LoadError wraps any failure to read or decode a model artifact.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load model %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() []error {
	return []error{ErrModelLoadFailure, e.Err}
}

func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInputRange)
}

func IsSchemaMismatch(err error) bool {
	return errors.Is(err, ErrSchemaMismatch)
}

func IsModelLoadFailure(err error) bool {
	return errors.Is(err, ErrModelLoadFailure)
}
