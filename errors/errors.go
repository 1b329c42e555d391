package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in code generation the error occurred
type Phase string

const (
	PhaseLayout   Phase = "layout"   // header layout planning
	PhaseEmit     Phase = "emit"     // byte emission and fixups
	PhaseManifest Phase = "manifest" // module description loading
	PhaseWrite    Phase = "write"    // final output flush
)

// Kind categorizes the error
type Kind string

const (
	KindOverflow    Kind = "overflow"      // value exceeds a fixed-width field
	KindOutOfBounds Kind = "out_of_bounds" // index outside the module's entities
	KindInvalidData Kind = "invalid_data"
	KindUnsupported Kind = "unsupported"
	KindWriteFailed Kind = "write_failed"
	KindNotFound    Kind = "not_found"
)

// Error is the structured error type used throughout the generator
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Convenience constructors for common error patterns

// Overflow creates an error for a value that does not fit a fixed-width
// binary field.
func Overflow(phase Phase, what string, value any, max uint64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Detail: fmt.Sprintf("%s %v exceeds maximum %d", what, value, max),
		Value:  value,
	}
}

// OutOfBounds creates an out of bounds index error
func OutOfBounds(phase Phase, what string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("%s index %d out of bounds (length %d)", what, index, length),
		Value:  index,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// Unsupported creates an unsupported construct error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// WriteFailed wraps an output stream failure. The encode itself cannot
// recover from it, but the host process decides what to do next.
func WriteFailed(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseWrite,
		Kind:   KindWriteFailed,
		Detail: detail,
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
