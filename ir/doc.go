// Package ir holds the in-memory program representation consumed by the
// code generator: value types, module entities (globals, imports,
// functions, data segments), function body expression trees and the
// instruction opcode table.
//
// The representation is built by a frontend (or the manifest loader) and
// is read-only to everything downstream; the generator only inspects
// sizes and types to compute layout and emit bytes.
package ir
