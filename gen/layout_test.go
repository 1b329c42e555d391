package gen

import (
	"testing"

	"github.com/wippyai/wasm-codegen/ir"
)

func TestFuncHeaderFieldOffsets(t *testing.T) {
	// One arg: signature is 3 bytes, fixed fields follow.
	if got := funcHeaderSize(1); got != 25 {
		t.Errorf("funcHeaderSize(1) = %d, want 25", got)
	}
	if got := funcNameFieldOffset(1); got != 3 {
		t.Errorf("name offset = %d, want 3", got)
	}
	if got := funcCodeStartFieldOffset(1); got != 7 {
		t.Errorf("code start offset = %d, want 7", got)
	}
	if got := funcCodeEndFieldOffset(1); got != 11 {
		t.Errorf("code end offset = %d, want 11", got)
	}
	if got := funcExportedFieldOffset(1); got != 23 {
		t.Errorf("exported offset = %d, want 23", got)
	}
}

func TestMemSizeLog2(t *testing.T) {
	tests := []struct {
		in   uint32
		want uint8
	}{
		{0, 0},
		{1, 0},
		{2, 1},
		{3, 2},
		{4, 2},
		{5, 3},
		{65536, 16},
		{65537, 17},
		{1 << 31, 31},
	}
	for _, tt := range tests {
		if got := memSizeLog2(tt.in); got != tt.want {
			t.Errorf("memSizeLog2(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

// The planner's arithmetic must agree exactly with the bytes the header
// emitter writes: the first post-header byte observed after emission
// has to land where the plan said the header region ends.
func TestLayoutMatchesEmittedHeaders(t *testing.T) {
	m := &ir.Module{
		Globals: []ir.Global{{Type: ir.TypeI32}, {Type: ir.TypeF64}},
		Imports: []ir.Import{
			{Name: "a", Args: []ir.Type{ir.TypeI32, ir.TypeI32, ir.TypeF64}, Result: ir.TypeI32},
			{Name: "b", Result: ir.TypeVoid},
		},
		Functions: []ir.Function{
			{NumArgs: 0, Result: ir.TypeVoid},
			{NumArgs: 2, Result: ir.TypeI32, Locals: []ir.Type{ir.TypeI32, ir.TypeI32, ir.TypeI64}},
			{NumArgs: 5, Result: ir.TypeF32, Locals: []ir.Type{ir.TypeF32, ir.TypeF32, ir.TypeF32, ir.TypeF32, ir.TypeF32}},
		},
		Segments: []ir.Segment{
			{Address: 0, Data: []byte{1}},
			{Address: 8, Data: []byte{2, 3}},
		},
	}

	lay := planLayout(m)

	e := New()
	if err := e.BeginModule(m); err != nil {
		t.Fatal(err)
	}

	wantEnd := lay.segmentHeaderOffsets[len(m.Segments)-1] + segmentHeaderSize
	if got := e.buf.Len(); got != wantEnd {
		t.Errorf("header region ends at %d, plan says %d", got, wantEnd)
	}

	// Function offsets follow the imports and advance by 24+numArgs.
	first := funcHeadersOffset(len(m.Globals)) + funcHeaderSize(3) + funcHeaderSize(0)
	want := []uint32{first, first + 24, first + 24 + 26}
	for i, off := range lay.funcHeaderOffsets {
		if off != want[i] {
			t.Errorf("funcHeaderOffsets[%d] = %d, want %d", i, off, want[i])
		}
	}

	segFirst := want[2] + funcHeaderSize(5)
	if lay.segmentHeaderOffsets[0] != segFirst || lay.segmentHeaderOffsets[1] != segFirst+segmentHeaderSize {
		t.Errorf("segment offsets = %v, want %d, %d",
			lay.segmentHeaderOffsets, segFirst, segFirst+segmentHeaderSize)
	}
}

func TestLayoutRecomputedPerRun(t *testing.T) {
	e := New()

	small := &ir.Module{Functions: []ir.Function{{NumArgs: 0}}}
	if err := e.BeginModule(small); err != nil {
		t.Fatal(err)
	}
	firstLen := e.buf.Len()

	big := &ir.Module{
		Globals:   []ir.Global{{Type: ir.TypeI32}},
		Functions: []ir.Function{{NumArgs: 2, Locals: []ir.Type{ir.TypeI32, ir.TypeI32}}},
	}
	if err := e.BeginModule(big); err != nil {
		t.Fatal(err)
	}
	if e.buf.Len() == firstLen {
		t.Error("second run reused the first run's layout")
	}
	if e.funcHeaderOffsets[0] != funcHeadersOffset(1) {
		t.Errorf("funcHeaderOffsets[0] = %d, want %d", e.funcHeaderOffsets[0], funcHeadersOffset(1))
	}
}
