package driver

import (
	"github.com/wippyai/wasm-codegen/gen"
	"github.com/wippyai/wasm-codegen/ir"
)

// Sink receives the ordered event stream produced by walking a module.
// Events come in a fixed grammar: module open, per-function code with
// nested block scopes, export marks, module close. Open events return a
// cookie the caller must hand back, unchanged, to the matching close
// event.
//
// gen.Encoder is the production implementation.
type Sink interface {
	BeginModule(m *ir.Module) error
	EndModule()

	BeginFunction(index int)
	EndFunction(index, numExprs int) error
	ExportFunction(index int)

	BeginBlock() gen.Cookie
	EndBlock(numExprs int, c gen.Cookie) error
	BeginLoop() gen.Cookie
	EndLoop(numExprs int, c gen.Cookie) error
	BeginLabel() gen.Cookie
	EndLabel(numExprs int, c gen.Cookie) error
	BeginIf() gen.Cookie
	EndIf(withElse bool, c gen.Cookie)

	Binary(op ir.Opcode)
	Unary(op ir.Opcode)
	Compare(op ir.Opcode)
	Convert(op ir.Opcode)
	Break(depth int) error
	Call(funcIndex int)
	CallImport(importIndex int)
	Return()
	Nop()
	GetLocal(index uint32)
	SetLocal(index uint32)
	LoadGlobal(index uint32)
	StoreGlobal(index uint32)
	Load(op ir.Opcode, access byte)
	Store(op ir.Opcode, access byte)
	ConstI32(v int32)
	ConstI64(v int64)
	ConstF32(v float32)
	ConstF64(v float64)

	// Diagnostics are pass-through: reporting never aborts emission.
	Error(loc ir.SourceLocation, msg string)
	AssertInvalidError(loc ir.SourceLocation, msg string)
}

var _ Sink = (*gen.Encoder)(nil)
