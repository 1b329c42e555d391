// Package errors provides structured error types for the code generator.
//
// Errors are categorized by Phase (where the error occurred) and Kind
// (error category) and carry an optional field path and cause chain.
//
// Use the convenience constructors for common patterns:
//
//	err := errors.Overflow(errors.PhaseEmit, "block expression count", n, 255)
//	err := errors.OutOfBounds(errors.PhaseEmit, "function", 10, 5)
//
// All errors implement the standard error interface and support
// errors.Is/As.
package errors
