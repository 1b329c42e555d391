package gen

import (
	"encoding/binary"
	"math"

	"github.com/wippyai/wasm-codegen/ir"
)

// Primitive encoders. Every writer carries a short description that is
// consumed only by the trace listing; it is never parsed back. All
// multi-byte values are little-endian, the byte order of every target
// the prototype VM runs on.

// appendData appends p and traces the write when tracing is on.
func (e *Encoder) appendData(p []byte, desc string) uint32 {
	off := e.buf.Append(p)
	if e.Trace != nil {
		dumpMemory(e.Trace, p, off, false, desc)
	}
	return off
}

func (e *Encoder) writeU8(v uint8, desc string) {
	e.appendData([]byte{v}, desc)
}

func (e *Encoder) writeU16(v uint16, desc string) {
	var p [2]byte
	binary.LittleEndian.PutUint16(p[:], v)
	e.appendData(p[:], desc)
}

func (e *Encoder) writeU32(v uint32, desc string) {
	var p [4]byte
	binary.LittleEndian.PutUint32(p[:], v)
	e.appendData(p[:], desc)
}

func (e *Encoder) writeU64(v uint64, desc string) {
	var p [8]byte
	binary.LittleEndian.PutUint64(p[:], v)
	e.appendData(p[:], desc)
}

func (e *Encoder) writeF32(v float32, desc string) {
	var p [4]byte
	binary.LittleEndian.PutUint32(p[:], math.Float32bits(v))
	e.appendData(p[:], desc)
}

func (e *Encoder) writeF64(v float64, desc string) {
	var p [8]byte
	binary.LittleEndian.PutUint64(p[:], math.Float64bits(v))
	e.appendData(p[:], desc)
}

// writeVarU32 appends the unsigned LEB128 encoding of v: 7 payload bits
// per byte, low-order group first, continuation bit on all but the last
// byte. Five bytes cover the full 32-bit range.
func (e *Encoder) writeVarU32(v uint32, desc string) {
	var p [5]byte
	n := 0
	for {
		p[n] = byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			p[n] |= 0x80
		}
		n++
		if v == 0 {
			break
		}
	}
	e.appendData(p[:n], desc)
}

// writeCString appends the string bytes plus a NUL terminator.
func (e *Encoder) writeCString(s string, desc string) {
	p := make([]byte, len(s)+1)
	copy(p, s)
	e.appendData(p, desc)
}

// writeOpcode appends a single opcode byte, annotated with its symbolic
// name.
func (e *Encoder) writeOpcode(op ir.Opcode) {
	e.writeU8(byte(op), op.String())
}

// writeSegmentData appends raw segment content; the trace listing shows
// printable characters for it.
func (e *Encoder) writeSegmentData(data []byte, desc string) {
	off := e.buf.Append(data)
	if e.Trace != nil {
		dumpMemory(e.Trace, data, off, true, desc)
	}
}

func (e *Encoder) patchU8(offset uint32, v uint8, desc string) {
	p := []byte{v}
	e.buf.Patch(offset, p)
	if e.Trace != nil {
		dumpMemory(e.Trace, p, offset, false, desc)
	}
}

func (e *Encoder) patchU32(offset uint32, v uint32, desc string) {
	var p [4]byte
	binary.LittleEndian.PutUint32(p[:], v)
	e.buf.Patch(offset, p[:])
	if e.Trace != nil {
		dumpMemory(e.Trace, p[:], offset, false, desc)
	}
}
