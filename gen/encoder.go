package gen

import (
	"io"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-codegen/errors"
	"github.com/wippyai/wasm-codegen/ir"
)

// Format constants fixed by the consuming VM.
const (
	// Linear memory is always exported in this format.
	defaultMemoryExport = 1

	// maxBlockExprs is the largest expression count a one-byte block
	// header can hold.
	maxBlockExprs = 255

	// maxBreakDepth is the largest nesting depth a one-byte break
	// operand can hold.
	maxBreakDepth = 255
)

// Cookie is an offset into the output buffer returned by an open event.
// The matching close event consumes it exactly once to apply a deferred
// patch; cookies are never stored past their close.
type Cookie uint32

// Encoder translates program-representation events into the
// position-dependent binary module format. One Encoder serves one
// encoding run at a time; concurrent encodes each need their own
// instance.
//
// The driver owns traversal. The encoder only reacts to events, so
// nesting depth is whatever the driver's call stack produces and no
// explicit scope stack exists here.
type Encoder struct {
	// Trace, when non-nil, receives an annotated hex line for every
	// write, in the style of xxd.
	Trace io.Writer

	buf Buffer
	mod *ir.Module

	// Offset of each function/segment header record, planned before
	// any code is emitted.
	funcHeaderOffsets    []uint32
	segmentHeaderOffsets []uint32

	// Expression-count placeholder of the current function's implicit
	// enclosing block.
	bodyCountOffset Cookie

	log *zap.Logger
}

// New creates an Encoder ready for one or more sequential encoding
// runs.
func New() *Encoder {
	return &Encoder{log: Logger()}
}

// Bytes returns the encoded module. Valid after EndModule and until the
// next BeginModule.
func (e *Encoder) Bytes() []byte {
	return e.buf.Bytes()
}

// WriteTo flushes the encoded module to w in a single write.
func (e *Encoder) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(e.buf.Bytes())
	if err != nil {
		return int64(n), errors.WriteFailed("flush encoded module", err)
	}
	return int64(n), nil
}

// BeginModule plans the header layout, resets the output buffer and
// emits the module header with every forward-referenced field holding
// its placeholder.
func (e *Encoder) BeginModule(m *ir.Module) error {
	if err := checkLimits(m); err != nil {
		return err
	}
	e.mod = m
	lay := planLayout(m)
	e.funcHeaderOffsets = lay.funcHeaderOffsets
	e.segmentHeaderOffsets = lay.segmentHeaderOffsets
	e.buf.Reset()
	e.emitModuleHeader(m)
	return nil
}

// checkLimits rejects modules whose entity counts or signatures exceed
// the fixed-width header fields.
func checkLimits(m *ir.Module) error {
	if len(m.Globals) > 0xffff {
		return errors.Overflow(errors.PhaseLayout, "global count", len(m.Globals), 0xffff)
	}
	if len(m.Imports)+len(m.Functions) > 0xffff {
		return errors.Overflow(errors.PhaseLayout, "function count", len(m.Imports)+len(m.Functions), 0xffff)
	}
	if len(m.Segments) > 0xffff {
		return errors.Overflow(errors.PhaseLayout, "segment count", len(m.Segments), 0xffff)
	}
	for i := range m.Globals {
		if _, ok := m.Globals[i].Type.MemTypeCode(); !ok {
			return errors.InvalidData(errors.PhaseLayout, []string{"globals"},
				"global "+m.Globals[i].Type.String()+" has no memory type")
		}
	}
	for i := range m.Imports {
		if len(m.Imports[i].Args) > 0xff {
			return errors.Overflow(errors.PhaseLayout, "import arg count", len(m.Imports[i].Args), 0xff)
		}
	}
	for i := range m.Functions {
		f := &m.Functions[i]
		if f.NumArgs > 0xff {
			return errors.Overflow(errors.PhaseLayout, "function arg count", f.NumArgs, 0xff)
		}
		for _, n := range f.LocalCounts() {
			if n > 0xffff {
				return errors.Overflow(errors.PhaseLayout, "local count", n, 0xffff)
			}
		}
	}
	return nil
}

func (e *Encoder) emitModuleHeader(m *ir.Module) {
	e.writeU8(memSizeLog2(m.MaxMemorySize), "mem size log 2")
	e.writeU8(defaultMemoryExport, "export mem")
	e.writeU16(uint16(len(m.Globals)), "num globals")
	e.writeU16(uint16(len(m.Imports)+len(m.Functions)), "num funcs")
	e.writeU16(uint16(len(m.Segments)), "num data segments")

	for i := range m.Globals {
		e.traceComment("global header %d", i)
		code, _ := m.Globals[i].Type.MemTypeCode()
		e.writeU32(0, "global name offset")
		e.writeU8(code, "global mem type")
		// Globals are never exported in this format.
		e.writeU8(0, "export global")
	}

	for i := range m.Imports {
		imp := &m.Imports[i]
		e.traceComment("import header %d", i)
		e.writeU8(uint8(len(imp.Args)), "import num args")
		e.writeU8(byte(imp.Result), "import result_type")
		for _, t := range imp.Args {
			e.writeU8(byte(t), "import arg type")
		}
		e.writeU32(0, "import name offset")
		e.writeU32(0, "import code start offset")
		e.writeU32(0, "import code end offset")
		e.writeU16(0, "num local i32")
		e.writeU16(0, "num local i64")
		e.writeU16(0, "num local f32")
		e.writeU16(0, "num local f64")
		e.writeU8(0, "export func")
		e.writeU8(1, "import external")
	}

	for i := range m.Functions {
		f := &m.Functions[i]
		e.traceComment("function header %d", i)
		e.writeU8(uint8(f.NumArgs), "func num args")
		e.writeU8(byte(f.Result), "func result type")
		for _, t := range f.ArgTypes() {
			e.writeU8(byte(t), "func arg type")
		}
		e.writeU32(0, "func name offset")
		e.writeU32(0, "func code start offset")
		e.writeU32(0, "func code end offset")

		counts := f.LocalCounts()
		e.writeU16(uint16(counts[ir.TypeI32]), "num local i32")
		e.writeU16(uint16(counts[ir.TypeI64]), "num local i64")
		e.writeU16(uint16(counts[ir.TypeF32]), "num local f32")
		e.writeU16(uint16(counts[ir.TypeF64]), "num local f64")
		e.writeU8(0, "export func")
		e.writeU8(0, "func external")
	}

	for i := range m.Segments {
		seg := &m.Segments[i]
		e.traceComment("segment header %d", i)
		e.writeU32(seg.Address, "segment address")
		e.writeU32(0, "segment data offset")
		e.writeU32(uint32(len(seg.Data)), "segment size")
		e.writeU8(1, "segment init")
	}
}

// EndModule emits the trailing region: each segment's raw data with its
// header's data-offset patched, then the name table of terminated
// strings for every import and every exported function, each patched
// into its header's name-offset field.
func (e *Encoder) EndModule() {
	m := e.mod
	for i := range m.Segments {
		e.traceComment("segment data %d", i)
		e.patchU32(e.segmentHeaderOffsets[i]+segmentDataFieldOffset,
			e.buf.Len(), "FIXUP segment data offset")
		e.writeSegmentData(m.Segments[i].Data, "segment data")
	}

	e.traceComment("names")
	offset := funcHeadersOffset(len(m.Globals))
	for i := range m.Imports {
		imp := &m.Imports[i]
		e.patchU32(offset+funcNameFieldOffset(len(imp.Args)),
			e.buf.Len(), "FIXUP import name offset")
		e.writeCString(imp.Name, "import name")
		offset += funcHeaderSize(len(imp.Args))
	}
	for i := range m.Functions {
		f := &m.Functions[i]
		if f.Exported {
			e.patchU32(offset+funcNameFieldOffset(f.NumArgs),
				e.buf.Len(), "FIXUP func name offset")
			e.writeCString(f.ExportName, "export name")
		}
		offset += funcHeaderSize(f.NumArgs)
	}
}

// BeginFunction patches the function's code-start field and opens the
// implicit enclosing block the VM requires around every function body.
func (e *Encoder) BeginFunction(index int) {
	f := &e.mod.Functions[index]
	e.traceComment("function data %d", index)
	e.patchU32(e.funcHeaderOffsets[index]+funcCodeStartFieldOffset(f.NumArgs),
		e.buf.Len(), "FIXUP func code start offset")
	e.writeOpcode(ir.OpBlock)
	e.bodyCountOffset = Cookie(e.buf.Len())
	e.writeU8(0, "toplevel block num expressions")
}

// EndFunction patches the implicit block's expression count and the
// function's code-end field.
func (e *Encoder) EndFunction(index, numExprs int) error {
	if numExprs > maxBlockExprs {
		return errors.Overflow(errors.PhaseEmit, "toplevel expression count", numExprs, maxBlockExprs)
	}
	f := &e.mod.Functions[index]
	e.patchU8(uint32(e.bodyCountOffset), uint8(numExprs),
		"FIXUP toplevel block num expressions")
	e.patchU32(e.funcHeaderOffsets[index]+funcCodeEndFieldOffset(f.NumArgs),
		e.buf.Len(), "FIXUP func code end offset")
	return nil
}

// ExportFunction patches the function's exported flag. No code bytes
// are emitted, so it may run in any order relative to code emission.
func (e *Encoder) ExportFunction(index int) {
	f := &e.mod.Functions[index]
	e.patchU8(e.funcHeaderOffsets[index]+funcExportedFieldOffset(f.NumArgs),
		1, "FIXUP func exported")
}

// beginCountedBlock emits an opcode followed by a one-byte expression
// count placeholder and returns the placeholder's offset as the cookie.
func (e *Encoder) beginCountedBlock(op ir.Opcode) Cookie {
	e.writeOpcode(op)
	c := Cookie(e.buf.Len())
	e.writeU8(0, "num expressions")
	return c
}

// endCountedBlock patches the placeholder opened by beginCountedBlock.
func (e *Encoder) endCountedBlock(numExprs int, c Cookie) error {
	if numExprs > maxBlockExprs {
		return errors.Overflow(errors.PhaseEmit, "block expression count", numExprs, maxBlockExprs)
	}
	e.patchU8(uint32(c), uint8(numExprs), "FIXUP num expressions")
	return nil
}

// BeginBlock opens an expression block.
func (e *Encoder) BeginBlock() Cookie {
	return e.beginCountedBlock(ir.OpBlock)
}

// EndBlock closes a block, patching its expression count.
func (e *Encoder) EndBlock(numExprs int, c Cookie) error {
	return e.endCountedBlock(numExprs, c)
}

// BeginLoop opens a loop block.
func (e *Encoder) BeginLoop() Cookie {
	return e.beginCountedBlock(ir.OpLoop)
}

// EndLoop closes a loop, patching its expression count.
func (e *Encoder) EndLoop(numExprs int, c Cookie) error {
	return e.endCountedBlock(numExprs, c)
}

// BeginLabel opens a labeled block. Labels exist only in the frontend;
// on the wire this is an ordinary block.
func (e *Encoder) BeginLabel() Cookie {
	return e.beginCountedBlock(ir.OpBlock)
}

// EndLabel closes a labeled block.
func (e *Encoder) EndLabel(numExprs int, c Cookie) error {
	return e.endCountedBlock(numExprs, c)
}

// BeginIf emits the if opcode and returns its own offset as the cookie:
// the close event rewrites the opcode in place when an else arm turns
// out to exist.
func (e *Encoder) BeginIf() Cookie {
	c := Cookie(e.buf.Len())
	e.writeOpcode(ir.OpIf)
	return c
}

// EndIf upgrades the opcode to the if-then-else variant when withElse
// is set; otherwise nothing needs patching.
func (e *Encoder) EndIf(withElse bool, c Cookie) {
	if withElse {
		e.patchU8(uint32(c), byte(ir.OpIfThen), "FIXUP "+ir.OpIfThen.String())
	}
}

// Binary emits a two-operand arithmetic opcode; operands follow.
func (e *Encoder) Binary(op ir.Opcode) {
	e.writeOpcode(op)
}

// Unary emits a one-operand arithmetic opcode.
func (e *Encoder) Unary(op ir.Opcode) {
	e.writeOpcode(op)
}

// Compare emits a comparison opcode.
func (e *Encoder) Compare(op ir.Opcode) {
	e.writeOpcode(op)
}

// Convert emits a type-conversion opcode.
func (e *Encoder) Convert(op ir.Opcode) {
	e.writeOpcode(op)
}

// Break emits a break with its one-byte nesting depth.
func (e *Encoder) Break(depth int) error {
	if depth > maxBreakDepth {
		return errors.Overflow(errors.PhaseEmit, "break depth", depth, maxBreakDepth)
	}
	e.writeOpcode(ir.OpBreak)
	e.writeU8(uint8(depth), "break depth")
	return nil
}

// Call emits a call to a defined function. Defined functions follow all
// imports in the index space, so the index is remapped by the import
// count.
func (e *Encoder) Call(funcIndex int) {
	e.writeOpcode(ir.OpCall)
	e.writeVarU32(uint32(len(e.mod.Imports)+funcIndex), "func index")
}

// CallImport emits a call to an import, which occupies the low index
// range unchanged.
func (e *Encoder) CallImport(importIndex int) {
	e.writeOpcode(ir.OpCall)
	e.writeVarU32(uint32(importIndex), "import index")
}

// Return emits the return opcode; the value expression, if any,
// follows.
func (e *Encoder) Return() {
	e.writeOpcode(ir.OpReturn)
}

// Nop emits the no-op opcode.
func (e *Encoder) Nop() {
	e.writeOpcode(ir.OpNop)
}

// GetLocal emits a local read with its remapped index.
func (e *Encoder) GetLocal(index uint32) {
	e.writeOpcode(ir.OpGetLocal)
	e.writeVarU32(index, "remapped local index")
}

// SetLocal emits a local write with its remapped index.
func (e *Encoder) SetLocal(index uint32) {
	e.writeOpcode(ir.OpSetLocal)
	e.writeVarU32(index, "remapped local index")
}

// LoadGlobal emits a global read.
func (e *Encoder) LoadGlobal(index uint32) {
	e.writeOpcode(ir.OpGetGlobal)
	e.writeVarU32(index, "global index")
}

// StoreGlobal emits a global write.
func (e *Encoder) StoreGlobal(index uint32) {
	e.writeOpcode(ir.OpSetGlobal)
	e.writeVarU32(index, "global index")
}

// Load emits a memory load with its access-mode byte.
func (e *Encoder) Load(op ir.Opcode, access byte) {
	e.writeOpcode(op)
	e.writeU8(access, "load access byte")
}

// Store emits a memory store with its access-mode byte.
func (e *Encoder) Store(op ir.Opcode, access byte) {
	e.writeOpcode(op)
	e.writeU8(access, "store access byte")
}

// ConstI32 emits a 32-bit integer constant. Values in [-128, 127) use
// the compact one-byte literal form; 127 itself takes the full form,
// matching the range the consuming VM accepts for the short literal.
func (e *Encoder) ConstI32(v int32) {
	if v >= -128 && v < 127 {
		e.writeOpcode(ir.OpI8Const)
		e.writeU8(uint8(v), "u8 literal")
	} else {
		e.writeOpcode(ir.OpI32Const)
		e.writeU32(uint32(v), "u32 literal")
	}
}

// ConstI64 emits a 64-bit integer constant.
func (e *Encoder) ConstI64(v int64) {
	e.writeOpcode(ir.OpI64Const)
	e.writeU64(uint64(v), "u64 literal")
}

// ConstF32 emits a 32-bit float constant.
func (e *Encoder) ConstF32(v float32) {
	e.writeOpcode(ir.OpF32Const)
	e.writeF32(v, "f32 literal")
}

// ConstF64 emits a 64-bit float constant.
func (e *Encoder) ConstF64(v float64) {
	e.writeOpcode(ir.OpF64Const)
	e.writeF64(v, "f64 literal")
}

// Error relays a driver-reported source error. Reporting never aborts
// encoding; the driver decides whether the output is kept.
func (e *Encoder) Error(loc ir.SourceLocation, msg string) {
	e.log.Error("parse error",
		zap.String("file", loc.Filename),
		zap.Int("line", loc.Line),
		zap.Int("col", loc.Col),
		zap.String("detail", msg))
}

// AssertInvalidError relays an expected-invalid diagnostic.
func (e *Encoder) AssertInvalidError(loc ir.SourceLocation, msg string) {
	e.log.Info("assert_invalid error",
		zap.String("file", loc.Filename),
		zap.Int("line", loc.Line),
		zap.Int("col", loc.Col),
		zap.String("detail", msg))
}
