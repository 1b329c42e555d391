package ir

// Expr is a node of a function body expression tree. The tree is built
// by a frontend and walked depth-first by the driver; code is emitted in
// prefix order, so every node's opcode precedes its children.
type Expr interface {
	isExpr()
}

// Nop emits the no-op opcode.
type Nop struct{}

// Block is an explicit expression block.
type Block struct {
	Exprs []Expr
}

// Loop is a looping block.
type Loop struct {
	Exprs []Expr
}

// Label is a named block; it encodes identically to Block, the label
// itself exists only for break-depth resolution in the frontend.
type Label struct {
	Name  string
	Exprs []Expr
}

// If is a conditional with an optional else arm.
type If struct {
	Cond Expr
	Then Expr
	Else Expr // nil when absent
}

// Binary applies a two-operand arithmetic opcode.
type Binary struct {
	Op   Opcode
	L, R Expr
}

// Unary applies a one-operand arithmetic opcode.
type Unary struct {
	Op Opcode
	X  Expr
}

// Compare applies a two-operand comparison opcode.
type Compare struct {
	Op   Opcode
	L, R Expr
}

// Convert applies a type-conversion opcode.
type Convert struct {
	Op Opcode
	X  Expr
}

// Call invokes a defined function by its index in Module.Functions.
type Call struct {
	Func int
	Args []Expr
}

// CallImport invokes an import by its index in Module.Imports.
type CallImport struct {
	Import int
	Args   []Expr
}

// Break exits Depth enclosing blocks.
type Break struct {
	Depth int
}

// Return returns from the function; Value is nil for void results.
type Return struct {
	Value Expr
}

// GetLocal reads a local by its source-order index (arguments first,
// then declared locals). The driver remaps it to the binary layout.
type GetLocal struct {
	Index int
}

// SetLocal writes a local by its source-order index.
type SetLocal struct {
	Index int
	Value Expr
}

// LoadGlobal reads a global by index.
type LoadGlobal struct {
	Index int
}

// StoreGlobal writes a global by index.
type StoreGlobal struct {
	Index int
	Value Expr
}

// Load reads linear memory. Access is the one-byte access mode the VM
// expects after the opcode.
type Load struct {
	Op     Opcode
	Access byte
	Addr   Expr
}

// Store writes linear memory.
type Store struct {
	Op     Opcode
	Access byte
	Addr   Expr
	Value  Expr
}

// Const is a literal of the given type; exactly one of the value fields
// is meaningful.
type Const struct {
	Type Type
	I32  int32
	I64  int64
	F32  float32
	F64  float64
}

func (Nop) isExpr() {}
func (Block) isExpr() {}
func (Loop) isExpr() {}
func (Label) isExpr() {}
func (If) isExpr() {}
func (Binary) isExpr() {}
func (Unary) isExpr() {}
func (Compare) isExpr() {}
func (Convert) isExpr() {}
func (Call) isExpr() {}
func (CallImport) isExpr() {}
func (Break) isExpr() {}
func (Return) isExpr() {}
func (GetLocal) isExpr() {}
func (SetLocal) isExpr() {}
func (LoadGlobal) isExpr() {}
func (StoreGlobal) isExpr() {}
func (Load) isExpr() {}
func (Store) isExpr() {}
func (Const) isExpr() {}
