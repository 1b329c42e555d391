package gen

import (
	"strings"
	"testing"
)

func TestDumpMemorySingleLine(t *testing.T) {
	var sb strings.Builder
	dumpMemory(&sb, []byte{0x01, 0x02}, 0, false, "two bytes")

	want := "0000000: 0102 " + strings.Repeat("     ", 7) + "   ; two bytes\n"
	if sb.String() != want {
		t.Errorf("got  %q\nwant %q", sb.String(), want)
	}
}

func TestDumpMemoryOffsetAndChars(t *testing.T) {
	var sb strings.Builder
	dumpMemory(&sb, []byte("Hi\x00"), 0x20, true, "")

	got := sb.String()
	if !strings.HasPrefix(got, "0000020: 4869 00") {
		t.Errorf("offset/hex wrong: %q", got)
	}
	if !strings.Contains(got, " Hi.") {
		t.Errorf("printable column wrong: %q", got)
	}
}

func TestDumpMemoryDescOnLastLineOnly(t *testing.T) {
	var sb strings.Builder
	data := make([]byte, 20) // spills onto a second line
	dumpMemory(&sb, data, 0, false, "tail")

	lines := strings.Split(strings.TrimSuffix(sb.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("want 2 lines, got %d", len(lines))
	}
	if strings.Contains(lines[0], "tail") {
		t.Errorf("desc leaked onto first line: %q", lines[0])
	}
	if !strings.Contains(lines[1], "; tail") {
		t.Errorf("desc missing from last line: %q", lines[1])
	}
}

func TestDumpMemoryEmpty(t *testing.T) {
	var sb strings.Builder
	dumpMemory(&sb, nil, 0, true, "unused")
	if sb.String() != "" {
		t.Errorf("empty dump produced output: %q", sb.String())
	}
}

func TestTraceComment(t *testing.T) {
	e := New()
	var sb strings.Builder
	e.Trace = &sb
	e.traceComment("function header %d", 3)
	if sb.String() != "; function header 3\n" {
		t.Errorf("got %q", sb.String())
	}
}
