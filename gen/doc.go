// Package gen emits the position-dependent binary module format
// consumed by the prototype VM.
//
// The encoder is a single-pass, event-driven byte-stream emitter. A
// driver walks the program representation depth-first and calls one
// Encoder method per event; the encoder never initiates traversal.
// Header records are laid out before any code is known, and every
// forward reference (code start/end offsets, name-table offsets,
// nested-block expression counts) is written as a placeholder and
// resolved later through a deferred patch.
//
// Open events that need a later patch return a Cookie, which is simply
// the placeholder's buffer offset. The matching close event consumes it
// exactly once. Because the driver's recursion mirrors block nesting,
// cookie scopes nest on the call stack and the encoder itself keeps no
// stack.
//
// # Typical use
//
//	enc := gen.New()
//	if err := driver.Walk(mod, enc); err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := enc.WriteTo(out); err != nil {
//	    log.Fatal(err)
//	}
//
// # Limitations
//
// All multi-byte fields are little-endian; the format has no
// byte-order abstraction. Output is fully buffered in memory before the
// single final write.
package gen
