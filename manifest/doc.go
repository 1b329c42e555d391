// Package manifest loads YAML module descriptions into the program
// representation. It is the input seam for the CLI and for end-to-end
// tests; a full frontend would build ir.Module directly.
//
// A manifest is one YAML document per module:
//
//	name: demo
//	memory: 65536
//	imports:
//	  - {name: print, args: [i32], result: void}
//	functions:
//	  - name: run
//	    export: run
//	    args: [i32]
//	    result: i32
//	    body:
//	      - op: return
//	        value: {op: i32.const, value: 5}
//	segments:
//	  - {address: 16, data: "68656c6c6f00"}
//
// Expression nodes name their opcode and carry the operand fields that
// opcode's class uses: args for operands and block bodies, addr/value
// for memory access, index for locals and globals.
package manifest
