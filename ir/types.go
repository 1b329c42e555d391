package ir

import "fmt"

// Type is a value type in the prototype wasm type system.
type Type byte

const (
	TypeVoid Type = 0
	TypeI32  Type = 1
	TypeI64  Type = 2
	TypeF32  Type = 3
	TypeF64  Type = 4

	// NumTypes is the number of value types, for per-type count tables.
	NumTypes = 5
)

func (t Type) String() string {
	switch t {
	case TypeVoid:
		return "void"
	case TypeI32:
		return "i32"
	case TypeI64:
		return "i64"
	case TypeF32:
		return "f32"
	case TypeF64:
		return "f64"
	}
	return fmt.Sprintf("type(%d)", byte(t))
}

// ParseType parses a value type name ("i32", "f64", ...).
func ParseType(s string) (Type, bool) {
	switch s {
	case "void", "":
		return TypeVoid, true
	case "i32":
		return TypeI32, true
	case "i64":
		return TypeI64, true
	case "f32":
		return TypeF32, true
	case "f64":
		return TypeF64, true
	}
	return TypeVoid, false
}

// MemTypeCode returns the memory-type tag used in global header records.
// Void has no memory representation; ok is false for it and for any
// out-of-range type.
func (t Type) MemTypeCode() (code byte, ok bool) {
	switch t {
	case TypeI32:
		return 4, true
	case TypeI64:
		return 6, true
	case TypeF32:
		return 8, true
	case TypeF64:
		return 9, true
	}
	return 0, false
}
