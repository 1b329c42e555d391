package gen

import (
	"fmt"
	"io"
)

// xxd-style listing parameters.
const (
	dumpOctetsPerLine  = 16
	dumpOctetsPerGroup = 2
)

// dumpMemory renders data as an annotated hex listing in the style of
// xxd: grouped hex octets with the buffer offset on the left, an
// optional printable-character column, and the description as a comment
// on the final line of the write.
func dumpMemory(w io.Writer, data []byte, offset uint32, printChars bool, desc string) {
	for line := 0; line < len(data); line += dumpOctetsPerLine {
		end := line + dumpOctetsPerLine
		fmt.Fprintf(w, "%07x: ", int(offset)+line)
		for i := line; i < end; i++ {
			if i < len(data) {
				fmt.Fprintf(w, "%02x", data[i])
			} else {
				io.WriteString(w, "  ")
			}
			if (i-line)%dumpOctetsPerGroup == dumpOctetsPerGroup-1 {
				io.WriteString(w, " ")
			}
		}
		io.WriteString(w, " ")
		if printChars {
			for i := line; i < end && i < len(data); i++ {
				c := data[i]
				if c < 0x20 || c > 0x7e {
					c = '.'
				}
				fmt.Fprintf(w, "%c", c)
			}
		}
		if end >= len(data) && desc != "" {
			fmt.Fprintf(w, "  ; %s", desc)
		}
		io.WriteString(w, "\n")
	}
}

// traceComment writes a standalone comment line into the trace listing.
func (e *Encoder) traceComment(format string, args ...any) {
	if e.Trace == nil {
		return
	}
	fmt.Fprintf(e.Trace, "; "+format+"\n", args...)
}

// Dump writes the full annotated hex listing of the encoded buffer,
// printable characters included. Purely observational; the buffer is
// not modified.
func (e *Encoder) Dump(w io.Writer) {
	dumpMemory(w, e.buf.Bytes(), 0, true, "")
}
