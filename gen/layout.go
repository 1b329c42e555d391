package gen

import (
	"math/bits"

	"github.com/wippyai/wasm-codegen/ir"
)

// Binary layout of the module header region. Header records are fixed
// grammar but variable width: an import/function record grows by one
// byte per argument, so all offsets below are derived, not stored.
const (
	moduleHeaderSize  = 8
	globalHeaderSize  = 6
	segmentHeaderSize = 13

	// Field offset within a segment header record.
	segmentDataFieldOffset = 4
)

// funcHeaderSize is the byte size of one import/function header record.
func funcHeaderSize(numArgs int) uint32 {
	return uint32(24 + numArgs)
}

// funcSigSize is the size of the signature prefix (arg count, result
// type, one byte per arg) that precedes the fixed fields.
func funcSigSize(numArgs int) uint32 {
	return uint32(2 + numArgs)
}

// Field offsets within an import/function header record.
func funcNameFieldOffset(numArgs int) uint32      { return funcSigSize(numArgs) }
func funcCodeStartFieldOffset(numArgs int) uint32 { return funcSigSize(numArgs) + 4 }
func funcCodeEndFieldOffset(numArgs int) uint32   { return funcSigSize(numArgs) + 8 }
func funcExportedFieldOffset(numArgs int) uint32  { return funcSigSize(numArgs) + 20 }

// funcHeadersOffset is where import/function header records begin:
// right after the module header and the fixed-size global records.
func funcHeadersOffset(numGlobals int) uint32 {
	return moduleHeaderSize + uint32(numGlobals)*globalHeaderSize
}

// layout holds the precomputed offset of every function and segment
// header record. It must agree exactly with the bytes the header
// emitter writes; name-table and code placement depend on it.
type layout struct {
	funcHeaderOffsets    []uint32
	segmentHeaderOffsets []uint32
}

// planLayout walks globals, imports and functions in declaration order
// and records where each function/segment header will land. Imports are
// skipped over rather than recorded: they are headers only, with no
// code body to fix up later.
func planLayout(m *ir.Module) layout {
	offset := funcHeadersOffset(len(m.Globals))
	for i := range m.Imports {
		offset += funcHeaderSize(len(m.Imports[i].Args))
	}

	lay := layout{
		funcHeaderOffsets:    make([]uint32, len(m.Functions)),
		segmentHeaderOffsets: make([]uint32, len(m.Segments)),
	}
	for i := range m.Functions {
		lay.funcHeaderOffsets[i] = offset
		offset += funcHeaderSize(m.Functions[i].NumArgs)
	}
	for i := range m.Segments {
		lay.segmentHeaderOffsets[i] = offset
		offset += segmentHeaderSize
	}
	return lay
}

// memSizeLog2 returns the ceiling log2 of the configured maximum memory
// size, or 0 when no memory is configured.
func memSizeLog2(x uint32) uint8 {
	if x == 0 {
		return 0
	}
	return uint8(bits.Len32(x - 1))
}
