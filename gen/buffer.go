package gen

import "fmt"

// initialBufferCapacity is the starting allocation for an encoding run.
// Growth doubles from here, so typical modules never reallocate.
const initialBufferCapacity = 64 * 1024

// Buffer is an append/patch byte store with capacity-doubling growth.
// Appends advance the size; patches overwrite previously appended bytes
// and never move the write position. A Buffer is owned by exactly one
// encoding run at a time and is not safe for concurrent use.
type Buffer struct {
	data []byte
}

// Reset truncates the buffer to zero length. Backing storage is kept so
// a later run can reuse it.
func (b *Buffer) Reset() {
	if b.data == nil {
		b.data = make([]byte, 0, initialBufferCapacity)
		return
	}
	b.data = b.data[:0]
}

// Len returns the current size in bytes.
func (b *Buffer) Len() uint32 {
	return uint32(len(b.data))
}

// Cap returns the current capacity in bytes.
func (b *Buffer) Cap() int {
	return cap(b.data)
}

// Bytes returns the encoded content. The slice aliases the buffer's
// storage and is valid until the next Reset.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Ensure guarantees capacity for at least n bytes, doubling until
// satisfied. Capacity never shrinks.
func (b *Buffer) Ensure(n int) {
	if n <= cap(b.data) {
		return
	}
	c := cap(b.data)
	if c == 0 {
		c = initialBufferCapacity
	}
	for c < n {
		c *= 2
	}
	grown := make([]byte, len(b.data), c)
	copy(grown, b.data)
	b.data = grown
}

// Append writes p at the end of the buffer and returns the offset of
// its first byte.
func (b *Buffer) Append(p []byte) uint32 {
	off := len(b.data)
	b.Ensure(off + len(p))
	b.data = b.data[:off+len(p)]
	copy(b.data[off:], p)
	return uint32(off)
}

// Patch overwrites len(p) bytes at offset. The whole range must already
// have been appended; patching outside it is an encoder bug.
func (b *Buffer) Patch(offset uint32, p []byte) {
	if int(offset)+len(p) > len(b.data) {
		panic(fmt.Sprintf("gen: patch of %d bytes at offset %d exceeds buffer size %d",
			len(p), offset, len(b.data)))
	}
	copy(b.data[offset:], p)
}
