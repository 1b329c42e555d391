package gen_test

import (
	"bytes"
	"encoding/binary"
	stderrors "errors"
	"testing"

	"github.com/wippyai/wasm-codegen/driver"
	"github.com/wippyai/wasm-codegen/errors"
	"github.com/wippyai/wasm-codegen/gen"
	"github.com/wippyai/wasm-codegen/ir"
)

// oneFunc is the smallest module that lets code events run.
func oneFunc() *ir.Module {
	return &ir.Module{Functions: []ir.Function{{NumArgs: 0, Result: ir.TypeVoid}}}
}

func beginCode(t *testing.T, m *ir.Module) *gen.Encoder {
	t.Helper()
	e := gen.New()
	if err := e.BeginModule(m); err != nil {
		t.Fatal(err)
	}
	e.BeginFunction(0)
	return e
}

// codeTail returns the bytes emitted after the implicit function block
// header.
func codeTail(e *gen.Encoder, m *ir.Module) []byte {
	headerEnd := 8 + 24*lenImports(m) + funcHeadersLen(m) + 2 // block opcode + count byte
	return e.Bytes()[headerEnd:]
}

func lenImports(m *ir.Module) int { return len(m.Imports) }

func funcHeadersLen(m *ir.Module) int {
	n := 0
	for i := range m.Functions {
		n += 24 + m.Functions[i].NumArgs
	}
	return n
}

func TestConstI32CompactBoundary(t *testing.T) {
	tests := []struct {
		value int32
		want  []byte
	}{
		{-128, []byte{byte(ir.OpI8Const), 0x80}},
		{-1, []byte{byte(ir.OpI8Const), 0xFF}},
		{0, []byte{byte(ir.OpI8Const), 0x00}},
		{126, []byte{byte(ir.OpI8Const), 0x7E}},
		// 127 would fit one byte but still takes the full form.
		{127, []byte{byte(ir.OpI32Const), 0x7F, 0x00, 0x00, 0x00}},
		{200, []byte{byte(ir.OpI32Const), 0xC8, 0x00, 0x00, 0x00}},
		{-129, []byte{byte(ir.OpI32Const), 0x7F, 0xFF, 0xFF, 0xFF}},
	}

	for _, tt := range tests {
		m := oneFunc()
		e := beginCode(t, m)
		e.ConstI32(tt.value)
		if got := codeTail(e, m); !bytes.Equal(got, tt.want) {
			t.Errorf("ConstI32(%d) = %x, want %x", tt.value, got, tt.want)
		}
	}
}

func TestConstFullWidthForms(t *testing.T) {
	m := oneFunc()
	e := beginCode(t, m)
	e.ConstI64(1)
	e.ConstF32(1.0)
	e.ConstF64(-2.5)

	want := []byte{
		byte(ir.OpI64Const), 1, 0, 0, 0, 0, 0, 0, 0,
		byte(ir.OpF32Const), 0x00, 0x00, 0x80, 0x3F,
		byte(ir.OpF64Const), 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x04, 0xC0,
	}
	if got := codeTail(e, m); !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestIfPatchedOnlyWithElse(t *testing.T) {
	m := oneFunc()
	e := beginCode(t, m)
	c := e.BeginIf()
	e.Nop()
	e.Nop()
	e.EndIf(false, c)

	if got := codeTail(e, m); got[0] != byte(ir.OpIf) {
		t.Errorf("if without else = %#x, want if opcode", got[0])
	}

	m = oneFunc()
	e = beginCode(t, m)
	c = e.BeginIf()
	e.Nop()
	e.Nop()
	e.Nop()
	e.EndIf(true, c)

	if got := codeTail(e, m); got[0] != byte(ir.OpIfThen) {
		t.Errorf("if with else = %#x, want if_then opcode", got[0])
	}
}

func TestBlockCookiePatching(t *testing.T) {
	m := oneFunc()
	e := beginCode(t, m)

	outer := e.BeginBlock()
	e.Nop()
	inner := e.BeginLoop()
	e.Nop()
	e.Nop()
	if err := e.EndLoop(2, inner); err != nil {
		t.Fatal(err)
	}
	if err := e.EndBlock(2, outer); err != nil {
		t.Fatal(err)
	}

	want := []byte{
		byte(ir.OpBlock), 2,
		byte(ir.OpNop),
		byte(ir.OpLoop), 2,
		byte(ir.OpNop),
		byte(ir.OpNop),
	}
	if got := codeTail(e, m); !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestBlockCountOverflow(t *testing.T) {
	m := oneFunc()
	e := beginCode(t, m)

	c := e.BeginBlock()
	err := e.EndBlock(256, c)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseEmit, Kind: errors.KindOverflow}) {
		t.Errorf("EndBlock(256) error = %v, want emit overflow", err)
	}

	if err := e.EndFunction(0, 256); !stderrors.Is(err, &errors.Error{Phase: errors.PhaseEmit, Kind: errors.KindOverflow}) {
		t.Errorf("EndFunction(256) error = %v, want emit overflow", err)
	}
}

func TestBreakDepth(t *testing.T) {
	m := oneFunc()
	e := beginCode(t, m)
	if err := e.Break(3); err != nil {
		t.Fatal(err)
	}
	want := []byte{byte(ir.OpBreak), 3}
	if got := codeTail(e, m); !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}

	if err := e.Break(256); !stderrors.Is(err, &errors.Error{Phase: errors.PhaseEmit, Kind: errors.KindOverflow}) {
		t.Errorf("Break(256) error = %v, want emit overflow", err)
	}
}

func TestCallRemapsPastImports(t *testing.T) {
	m := &ir.Module{
		Imports:   []ir.Import{{Name: "a"}, {Name: "b"}, {Name: "c"}},
		Functions: []ir.Function{{NumArgs: 0}},
	}
	e := beginCode(t, m)
	e.Call(0)
	e.CallImport(1)

	// Defined function 0 lands at index 3, after the three imports.
	want := []byte{byte(ir.OpCall), 3, byte(ir.OpCall), 1}
	tail := e.Bytes()[len(e.Bytes())-4:]
	if !bytes.Equal(tail, want) {
		t.Errorf("got %x, want %x", tail, want)
	}
}

func TestModuleLimitChecks(t *testing.T) {
	tooManyArgs := &ir.Module{Functions: []ir.Function{{
		NumArgs: 256,
		Locals:  make([]ir.Type, 256),
	}}}
	e := gen.New()
	if err := e.BeginModule(tooManyArgs); !stderrors.Is(err, &errors.Error{Phase: errors.PhaseLayout, Kind: errors.KindOverflow}) {
		t.Errorf("BeginModule error = %v, want layout overflow", err)
	}

	voidGlobal := &ir.Module{Globals: []ir.Global{{Type: ir.TypeVoid}}}
	if err := e.BeginModule(voidGlobal); !stderrors.Is(err, &errors.Error{Phase: errors.PhaseLayout, Kind: errors.KindInvalidData}) {
		t.Errorf("BeginModule error = %v, want invalid data", err)
	}
}

func u32At(t *testing.T, buf []byte, off uint32) uint32 {
	t.Helper()
	if int(off)+4 > len(buf) {
		t.Fatalf("offset %d past buffer end %d", off, len(buf))
	}
	return binary.LittleEndian.Uint32(buf[off:])
}

func TestNameTable(t *testing.T) {
	m := &ir.Module{
		Imports: []ir.Import{{Name: "foo", Result: ir.TypeI32}},
		Functions: []ir.Function{{
			NumArgs:    0,
			Result:     ir.TypeVoid,
			Exported:   true,
			ExportName: "bar",
		}},
	}
	e := gen.New()
	if err := driver.Walk(m, e); err != nil {
		t.Fatal(err)
	}
	buf := e.Bytes()

	// Name offsets live at fixed positions inside the records: the
	// import record starts at 8, the function record right after it.
	importName := u32At(t, buf, 8+2)
	funcName := u32At(t, buf, 8+24+2)

	if got := buf[importName : importName+4]; !bytes.Equal(got, []byte("foo\x00")) {
		t.Errorf("import name bytes = %q", got)
	}
	if got := buf[funcName : funcName+4]; !bytes.Equal(got, []byte("bar\x00")) {
		t.Errorf("export name bytes = %q", got)
	}
	if importName >= funcName {
		t.Errorf("name table out of declaration order: %d, %d", importName, funcName)
	}
}

func TestSegmentDataPlacement(t *testing.T) {
	m := &ir.Module{
		Segments: []ir.Segment{
			{Address: 0, Data: []byte("hi")},
			{Address: 16, Data: []byte{0xDE, 0xAD}},
		},
	}
	e := gen.New()
	if err := driver.Walk(m, e); err != nil {
		t.Fatal(err)
	}
	buf := e.Bytes()

	seg0 := uint32(8) // first segment header
	seg1 := seg0 + 13
	data0 := u32At(t, buf, seg0+4)
	data1 := u32At(t, buf, seg1+4)

	if got := buf[data0 : data0+2]; !bytes.Equal(got, []byte("hi")) {
		t.Errorf("segment 0 data = %x", got)
	}
	if got := buf[data1 : data1+2]; !bytes.Equal(got, []byte{0xDE, 0xAD}) {
		t.Errorf("segment 1 data = %x", got)
	}
	if data1 != data0+2 {
		t.Errorf("segment data not contiguous: %d, %d", data0, data1)
	}
	if u32At(t, buf, seg0+8) != 2 || u32At(t, buf, seg1+8) != 2 {
		t.Error("segment size fields wrong")
	}
}

// Encodes the scenario end to end and compares every byte: one import,
// one exported function whose body returns a compact constant.
func TestEncodeModuleExact(t *testing.T) {
	m := &ir.Module{
		Imports: []ir.Import{{Name: "foo", Result: ir.TypeI32}},
		Functions: []ir.Function{{
			NumArgs:    1,
			Result:     ir.TypeI32,
			Locals:     []ir.Type{ir.TypeI32, ir.TypeI64},
			Exported:   true,
			ExportName: "run",
			Body:       []ir.Expr{ir.Return{Value: ir.Const{Type: ir.TypeI32, I32: 5}}},
		}},
	}

	e := gen.New()
	if err := driver.Walk(m, e); err != nil {
		t.Fatal(err)
	}

	want := []byte{
		// module header
		0x00,       // mem size log 2
		0x01,       // export mem
		0x00, 0x00, // num globals
		0x02, 0x00, // num funcs (1 import + 1 defined)
		0x00, 0x00, // num data segments

		// import header (offset 8)
		0x00,                   // num args
		0x01,                   // result type i32
		0x3E, 0x00, 0x00, 0x00, // name offset -> "foo"
		0x00, 0x00, 0x00, 0x00, // code start
		0x00, 0x00, 0x00, 0x00, // code end
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // local counts
		0x00, // exported
		0x01, // external

		// function header (offset 32)
		0x01,                   // num args
		0x01,                   // result type i32
		0x01,                   // arg type i32
		0x42, 0x00, 0x00, 0x00, // name offset -> "run"
		0x39, 0x00, 0x00, 0x00, // code start (57)
		0x3E, 0x00, 0x00, 0x00, // code end (62)
		0x00, 0x00, // num local i32
		0x01, 0x00, // num local i64
		0x00, 0x00, // num local f32
		0x00, 0x00, // num local f64
		0x01, // exported
		0x00, // external

		// code (offset 57)
		byte(ir.OpBlock), 0x01, // implicit toplevel block, 1 expr
		byte(ir.OpReturn),
		byte(ir.OpI8Const), 0x05,

		// name table (offset 62)
		'f', 'o', 'o', 0x00,
		'r', 'u', 'n', 0x00,
	}

	if !bytes.Equal(e.Bytes(), want) {
		t.Errorf("encoded module mismatch\ngot  %x\nwant %x", e.Bytes(), want)
	}
}

// Every placeholder written during header emission must be gone by the
// time the run completes.
func TestPatchCompleteness(t *testing.T) {
	m := &ir.Module{
		MaxMemorySize: 65536,
		Globals:       []ir.Global{{Type: ir.TypeI32}},
		Imports:       []ir.Import{{Name: "log", Args: []ir.Type{ir.TypeI32}, Result: ir.TypeVoid}},
		Functions: []ir.Function{
			{
				NumArgs: 0, Result: ir.TypeVoid,
				Body: []ir.Expr{ir.Block{Exprs: []ir.Expr{ir.Nop{}}}},
			},
			{
				NumArgs: 0, Result: ir.TypeVoid,
				Exported: true, ExportName: "main",
				Body: []ir.Expr{ir.Nop{}},
			},
		},
		Segments: []ir.Segment{{Address: 4, Data: []byte{9}}},
	}

	e := gen.New()
	if err := driver.Walk(m, e); err != nil {
		t.Fatal(err)
	}
	buf := e.Bytes()

	// Function headers start after the global and import records.
	fh0 := uint32(8 + 6 + 25)
	fh1 := fh0 + 24

	for i, fh := range []uint32{fh0, fh1} {
		start := u32At(t, buf, fh+2+4)
		end := u32At(t, buf, fh+2+8)
		if start == 0 || end == 0 || end <= start {
			t.Errorf("func %d code bounds unpatched: [%d, %d)", i, start, end)
		}
		// First code byte is the implicit block with a patched count.
		if buf[start] != byte(ir.OpBlock) || buf[start+1] != 1 {
			t.Errorf("func %d code prefix = %x", i, buf[start:start+2])
		}
	}

	// The import takes one arg, so its signature spans three bytes.
	if u32At(t, buf, 8+6+3) == 0 {
		t.Error("import name offset unpatched")
	}
	segHeader := fh1 + 24
	if u32At(t, buf, segHeader+4) == 0 {
		t.Error("segment data offset unpatched")
	}
	if buf[fh1+2+20] != 1 {
		t.Error("exported flag unpatched")
	}
	if buf[fh0+2+20] != 0 {
		t.Error("unexported function flagged exported")
	}
}
