// Package wasmcodegen is the code-generation backend of a small wasm
// compiler toolchain: it turns an already-parsed program representation
// into the compact, position-dependent binary module format the
// prototype VM loads.
//
// # Architecture Overview
//
// The library is organized into packages with distinct responsibilities:
//
//	wasmcodegen/        Root package documentation
//	├── ir/             Program representation: types, module entities,
//	│                   expression trees, opcode table
//	├── gen/            The encoder: growable output buffer, header
//	│                   layout planner, deferred-patch protocol, event
//	│                   sink, annotated dump
//	├── driver/         Depth-first walker feeding the encoder's event
//	│                   protocol
//	├── manifest/       YAML module descriptions for the CLI and tests
//	├── errors/         Structured error types
//	└── cmd/wasmgen/    CLI: encode, watch, interactive listing viewer
//
// # Quick Start
//
// Encode a module:
//
//	mod, err := manifest.Load("module.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	enc := gen.New()
//	if err := driver.Walk(mod, enc); err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("module.bin", enc.Bytes(), 0o644)
//
// # Binary Format
//
// The output is position-dependent: a fixed module header, then one
// header record per global, import, function and data segment, then
// function code, raw segment data and a name table. Header records
// contain forward references (code offsets, name offsets, export flags)
// that are written as placeholders and patched once the referenced
// content has been emitted.
//
// # Known Limitations
//
// All multi-byte fields are little-endian with no byte-order
// abstraction, and output is fully buffered in memory before the final
// write. Encoding is single-threaded; concurrent compilations must use
// one encoder instance per module.
package wasmcodegen
