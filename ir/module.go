package ir

// Module is the top-level compiled unit: globals, imports, functions and
// data segments, in declaration order. The generator reads it; it never
// mutates it.
type Module struct {
	Name string

	// MaxMemorySize is the configured linear memory limit in bytes.
	// The module header stores its ceiling log2.
	MaxMemorySize uint32

	Globals   []Global
	Imports   []Import
	Functions []Function
	Segments  []Segment
}

// Global is a module-level variable. Globals are headers only in the
// binary format and are never exported.
type Global struct {
	Name string
	Type Type
}

// Import is an externally provided function: a signature plus the name
// it is resolved by. Imports have no code body.
type Import struct {
	Name   string
	Args   []Type
	Result Type
}

// Function is a defined function. Locals holds the types of all locals
// with the arguments first; NumArgs says how many of them are arguments.
type Function struct {
	Name       string
	NumArgs    int
	Result     Type
	Locals     []Type
	Exported   bool
	ExportName string
	Body       []Expr
}

// ArgTypes returns the argument portion of Locals.
func (f *Function) ArgTypes() []Type {
	return f.Locals[:f.NumArgs]
}

// LocalCounts counts non-argument locals per value type.
func (f *Function) LocalCounts() [NumTypes]int {
	var counts [NumTypes]int
	for _, t := range f.Locals[f.NumArgs:] {
		counts[t]++
	}
	return counts
}

// Segment is a range of initial linear memory content loaded at a fixed
// address at module start.
type Segment struct {
	Address uint32
	Data    []byte
}

// SourceLocation identifies a position in driver input, carried by
// diagnostic callbacks.
type SourceLocation struct {
	Filename string
	Line     int
	Col      int
}
