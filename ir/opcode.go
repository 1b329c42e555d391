package ir

import "fmt"

// Opcode is a single-byte instruction code in the prototype binary
// instruction encoding.
type Opcode byte

// Control and structured opcodes.
const (
	OpNop      Opcode = 0x00
	OpIf       Opcode = 0x01
	OpIfThen   Opcode = 0x02
	OpBlock    Opcode = 0x03
	OpSwitch   Opcode = 0x04
	OpLoop     Opcode = 0x06
	OpContinue Opcode = 0x07
	OpBreak    Opcode = 0x08
	OpReturn   Opcode = 0x09
)

// Constants, variable access and calls.
const (
	OpI8Const      Opcode = 0x10
	OpI32Const     Opcode = 0x11
	OpI64Const     Opcode = 0x12
	OpF64Const     Opcode = 0x13
	OpF32Const     Opcode = 0x14
	OpGetLocal     Opcode = 0x15
	OpSetLocal     Opcode = 0x16
	OpGetGlobal    Opcode = 0x17
	OpSetGlobal    Opcode = 0x18
	OpCall         Opcode = 0x19
	OpCallIndirect Opcode = 0x1A
)

// Memory access.
const (
	OpI32Load  Opcode = 0x20
	OpI64Load  Opcode = 0x21
	OpF32Load  Opcode = 0x22
	OpF64Load  Opcode = 0x23
	OpI32Store Opcode = 0x30
	OpI64Store Opcode = 0x31
	OpF32Store Opcode = 0x32
	OpF64Store Opcode = 0x33
)

// i32 arithmetic, comparison and unary.
const (
	OpI32Add    Opcode = 0x40
	OpI32Sub    Opcode = 0x41
	OpI32Mul    Opcode = 0x42
	OpI32DivS   Opcode = 0x43
	OpI32DivU   Opcode = 0x44
	OpI32RemS   Opcode = 0x45
	OpI32RemU   Opcode = 0x46
	OpI32And    Opcode = 0x47
	OpI32Or     Opcode = 0x48
	OpI32Xor    Opcode = 0x49
	OpI32Shl    Opcode = 0x4A
	OpI32ShrU   Opcode = 0x4B
	OpI32ShrS   Opcode = 0x4C
	OpI32Eq     Opcode = 0x4D
	OpI32Ne     Opcode = 0x4E
	OpI32LtS    Opcode = 0x4F
	OpI32LtU    Opcode = 0x50
	OpI32LeS    Opcode = 0x51
	OpI32LeU    Opcode = 0x52
	OpI32GtS    Opcode = 0x53
	OpI32GtU    Opcode = 0x54
	OpI32GeS    Opcode = 0x55
	OpI32GeU    Opcode = 0x56
	OpI32Clz    Opcode = 0x57
	OpI32Ctz    Opcode = 0x58
	OpI32Popcnt Opcode = 0x59
)

// i64 arithmetic, comparison and unary.
const (
	OpI64Add    Opcode = 0x60
	OpI64Sub    Opcode = 0x61
	OpI64Mul    Opcode = 0x62
	OpI64DivS   Opcode = 0x63
	OpI64DivU   Opcode = 0x64
	OpI64RemS   Opcode = 0x65
	OpI64RemU   Opcode = 0x66
	OpI64And    Opcode = 0x67
	OpI64Or     Opcode = 0x68
	OpI64Xor    Opcode = 0x69
	OpI64Shl    Opcode = 0x6A
	OpI64ShrU   Opcode = 0x6B
	OpI64ShrS   Opcode = 0x6C
	OpI64Eq     Opcode = 0x6D
	OpI64Ne     Opcode = 0x6E
	OpI64LtS    Opcode = 0x6F
	OpI64LtU    Opcode = 0x70
	OpI64LeS    Opcode = 0x71
	OpI64LeU    Opcode = 0x72
	OpI64GtS    Opcode = 0x73
	OpI64GtU    Opcode = 0x74
	OpI64GeS    Opcode = 0x75
	OpI64GeU    Opcode = 0x76
	OpI64Clz    Opcode = 0x77
	OpI64Ctz    Opcode = 0x78
	OpI64Popcnt Opcode = 0x79
)

// f32 arithmetic, unary and comparison.
const (
	OpF32Add  Opcode = 0x80
	OpF32Sub  Opcode = 0x81
	OpF32Mul  Opcode = 0x82
	OpF32Div  Opcode = 0x83
	OpF32Min  Opcode = 0x84
	OpF32Max  Opcode = 0x85
	OpF32Abs  Opcode = 0x86
	OpF32Neg  Opcode = 0x87
	OpF32Sqrt Opcode = 0x88
	OpF32Eq   Opcode = 0x89
	OpF32Ne   Opcode = 0x8A
	OpF32Lt   Opcode = 0x8B
	OpF32Le   Opcode = 0x8C
	OpF32Gt   Opcode = 0x8D
	OpF32Ge   Opcode = 0x8E
)

// f64 arithmetic, unary and comparison.
const (
	OpF64Add  Opcode = 0x90
	OpF64Sub  Opcode = 0x91
	OpF64Mul  Opcode = 0x92
	OpF64Div  Opcode = 0x93
	OpF64Min  Opcode = 0x94
	OpF64Max  Opcode = 0x95
	OpF64Abs  Opcode = 0x96
	OpF64Neg  Opcode = 0x97
	OpF64Sqrt Opcode = 0x98
	OpF64Eq   Opcode = 0x99
	OpF64Ne   Opcode = 0x9A
	OpF64Lt   Opcode = 0x9B
	OpF64Le   Opcode = 0x9C
	OpF64Gt   Opcode = 0x9D
	OpF64Ge   Opcode = 0x9E
)

// Conversions.
const (
	OpI32WrapI64     Opcode = 0xA0
	OpI32TruncF32S   Opcode = 0xA1
	OpI32TruncF64S   Opcode = 0xA2
	OpI64ExtendI32S  Opcode = 0xA3
	OpI64ExtendI32U  Opcode = 0xA4
	OpI64TruncF32S   Opcode = 0xA5
	OpI64TruncF64S   Opcode = 0xA6
	OpF32ConvertI32S Opcode = 0xA7
	OpF32ConvertI32U Opcode = 0xA8
	OpF32DemoteF64   Opcode = 0xA9
	OpF64ConvertI32S Opcode = 0xAA
	OpF64ConvertI32U Opcode = 0xAB
	OpF64ConvertI64S Opcode = 0xAC
	OpF64PromoteF32  Opcode = 0xAD
)

// Class groups opcodes by their operand shape; the manifest loader uses
// it to pick the expression node kind for a named opcode.
type Class int

const (
	ClassControl Class = iota
	ClassConst
	ClassLocal
	ClassGlobal
	ClassCall
	ClassLoad
	ClassStore
	ClassBinary
	ClassCompare
	ClassUnary
	ClassConvert
)

type opInfo struct {
	name  string
	code  Opcode
	class Class
}

var opcodeTable = []opInfo{
	{"nop", OpNop, ClassControl},
	{"if", OpIf, ClassControl},
	{"if_then", OpIfThen, ClassControl},
	{"block", OpBlock, ClassControl},
	{"switch", OpSwitch, ClassControl},
	{"loop", OpLoop, ClassControl},
	{"continue", OpContinue, ClassControl},
	{"break", OpBreak, ClassControl},
	{"return", OpReturn, ClassControl},

	{"i8.const", OpI8Const, ClassConst},
	{"i32.const", OpI32Const, ClassConst},
	{"i64.const", OpI64Const, ClassConst},
	{"f64.const", OpF64Const, ClassConst},
	{"f32.const", OpF32Const, ClassConst},
	{"get_local", OpGetLocal, ClassLocal},
	{"set_local", OpSetLocal, ClassLocal},
	{"get_global", OpGetGlobal, ClassGlobal},
	{"set_global", OpSetGlobal, ClassGlobal},
	{"call", OpCall, ClassCall},
	{"call_indirect", OpCallIndirect, ClassCall},

	{"i32.load", OpI32Load, ClassLoad},
	{"i64.load", OpI64Load, ClassLoad},
	{"f32.load", OpF32Load, ClassLoad},
	{"f64.load", OpF64Load, ClassLoad},
	{"i32.store", OpI32Store, ClassStore},
	{"i64.store", OpI64Store, ClassStore},
	{"f32.store", OpF32Store, ClassStore},
	{"f64.store", OpF64Store, ClassStore},

	{"i32.add", OpI32Add, ClassBinary},
	{"i32.sub", OpI32Sub, ClassBinary},
	{"i32.mul", OpI32Mul, ClassBinary},
	{"i32.div_s", OpI32DivS, ClassBinary},
	{"i32.div_u", OpI32DivU, ClassBinary},
	{"i32.rem_s", OpI32RemS, ClassBinary},
	{"i32.rem_u", OpI32RemU, ClassBinary},
	{"i32.and", OpI32And, ClassBinary},
	{"i32.or", OpI32Or, ClassBinary},
	{"i32.xor", OpI32Xor, ClassBinary},
	{"i32.shl", OpI32Shl, ClassBinary},
	{"i32.shr_u", OpI32ShrU, ClassBinary},
	{"i32.shr_s", OpI32ShrS, ClassBinary},
	{"i32.eq", OpI32Eq, ClassCompare},
	{"i32.ne", OpI32Ne, ClassCompare},
	{"i32.lt_s", OpI32LtS, ClassCompare},
	{"i32.lt_u", OpI32LtU, ClassCompare},
	{"i32.le_s", OpI32LeS, ClassCompare},
	{"i32.le_u", OpI32LeU, ClassCompare},
	{"i32.gt_s", OpI32GtS, ClassCompare},
	{"i32.gt_u", OpI32GtU, ClassCompare},
	{"i32.ge_s", OpI32GeS, ClassCompare},
	{"i32.ge_u", OpI32GeU, ClassCompare},
	{"i32.clz", OpI32Clz, ClassUnary},
	{"i32.ctz", OpI32Ctz, ClassUnary},
	{"i32.popcnt", OpI32Popcnt, ClassUnary},

	{"i64.add", OpI64Add, ClassBinary},
	{"i64.sub", OpI64Sub, ClassBinary},
	{"i64.mul", OpI64Mul, ClassBinary},
	{"i64.div_s", OpI64DivS, ClassBinary},
	{"i64.div_u", OpI64DivU, ClassBinary},
	{"i64.rem_s", OpI64RemS, ClassBinary},
	{"i64.rem_u", OpI64RemU, ClassBinary},
	{"i64.and", OpI64And, ClassBinary},
	{"i64.or", OpI64Or, ClassBinary},
	{"i64.xor", OpI64Xor, ClassBinary},
	{"i64.shl", OpI64Shl, ClassBinary},
	{"i64.shr_u", OpI64ShrU, ClassBinary},
	{"i64.shr_s", OpI64ShrS, ClassBinary},
	{"i64.eq", OpI64Eq, ClassCompare},
	{"i64.ne", OpI64Ne, ClassCompare},
	{"i64.lt_s", OpI64LtS, ClassCompare},
	{"i64.lt_u", OpI64LtU, ClassCompare},
	{"i64.le_s", OpI64LeS, ClassCompare},
	{"i64.le_u", OpI64LeU, ClassCompare},
	{"i64.gt_s", OpI64GtS, ClassCompare},
	{"i64.gt_u", OpI64GtU, ClassCompare},
	{"i64.ge_s", OpI64GeS, ClassCompare},
	{"i64.ge_u", OpI64GeU, ClassCompare},
	{"i64.clz", OpI64Clz, ClassUnary},
	{"i64.ctz", OpI64Ctz, ClassUnary},
	{"i64.popcnt", OpI64Popcnt, ClassUnary},

	{"f32.add", OpF32Add, ClassBinary},
	{"f32.sub", OpF32Sub, ClassBinary},
	{"f32.mul", OpF32Mul, ClassBinary},
	{"f32.div", OpF32Div, ClassBinary},
	{"f32.min", OpF32Min, ClassBinary},
	{"f32.max", OpF32Max, ClassBinary},
	{"f32.abs", OpF32Abs, ClassUnary},
	{"f32.neg", OpF32Neg, ClassUnary},
	{"f32.sqrt", OpF32Sqrt, ClassUnary},
	{"f32.eq", OpF32Eq, ClassCompare},
	{"f32.ne", OpF32Ne, ClassCompare},
	{"f32.lt", OpF32Lt, ClassCompare},
	{"f32.le", OpF32Le, ClassCompare},
	{"f32.gt", OpF32Gt, ClassCompare},
	{"f32.ge", OpF32Ge, ClassCompare},

	{"f64.add", OpF64Add, ClassBinary},
	{"f64.sub", OpF64Sub, ClassBinary},
	{"f64.mul", OpF64Mul, ClassBinary},
	{"f64.div", OpF64Div, ClassBinary},
	{"f64.min", OpF64Min, ClassBinary},
	{"f64.max", OpF64Max, ClassBinary},
	{"f64.abs", OpF64Abs, ClassUnary},
	{"f64.neg", OpF64Neg, ClassUnary},
	{"f64.sqrt", OpF64Sqrt, ClassUnary},
	{"f64.eq", OpF64Eq, ClassCompare},
	{"f64.ne", OpF64Ne, ClassCompare},
	{"f64.lt", OpF64Lt, ClassCompare},
	{"f64.le", OpF64Le, ClassCompare},
	{"f64.gt", OpF64Gt, ClassCompare},
	{"f64.ge", OpF64Ge, ClassCompare},

	{"i32.wrap_i64", OpI32WrapI64, ClassConvert},
	{"i32.trunc_f32_s", OpI32TruncF32S, ClassConvert},
	{"i32.trunc_f64_s", OpI32TruncF64S, ClassConvert},
	{"i64.extend_i32_s", OpI64ExtendI32S, ClassConvert},
	{"i64.extend_i32_u", OpI64ExtendI32U, ClassConvert},
	{"i64.trunc_f32_s", OpI64TruncF32S, ClassConvert},
	{"i64.trunc_f64_s", OpI64TruncF64S, ClassConvert},
	{"f32.convert_i32_s", OpF32ConvertI32S, ClassConvert},
	{"f32.convert_i32_u", OpF32ConvertI32U, ClassConvert},
	{"f32.demote_f64", OpF32DemoteF64, ClassConvert},
	{"f64.convert_i32_s", OpF64ConvertI32S, ClassConvert},
	{"f64.convert_i32_u", OpF64ConvertI32U, ClassConvert},
	{"f64.convert_i64_s", OpF64ConvertI64S, ClassConvert},
	{"f64.promote_f32", OpF64PromoteF32, ClassConvert},
}

var (
	opsByName = make(map[string]opInfo, len(opcodeTable))
	opsByCode = make(map[Opcode]opInfo, len(opcodeTable))
)

func init() {
	for _, info := range opcodeTable {
		opsByName[info.name] = info
		opsByCode[info.code] = info
	}
}

func (op Opcode) String() string {
	if info, ok := opsByCode[op]; ok {
		return info.name
	}
	return fmt.Sprintf("opcode(0x%02x)", byte(op))
}

// LookupOpcode resolves an opcode by its symbolic name.
func LookupOpcode(name string) (Opcode, Class, bool) {
	info, ok := opsByName[name]
	return info.code, info.class, ok
}
