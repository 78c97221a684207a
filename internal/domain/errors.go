package domain

import "fmt"

// Error types for consistent error handling across the pipeline.
//
// Only value errors exist as Go errors: invalid Money construction and
// divide-by-zero. Parse warnings and failures travel as data on
// Provenance/ParseResult, never as errors.

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrDivideByZero indicates a monetary division by zero.
type ErrDivideByZero struct {
	Operation string
}

func (e *ErrDivideByZero) Error() string {
	return fmt.Sprintf("divide by zero in %s", e.Operation)
}
