package manifest

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/wasm-codegen/errors"
	"github.com/wippyai/wasm-codegen/ir"
)

// moduleSpec is the YAML document shape.
type moduleSpec struct {
	Name      string        `yaml:"name"`
	Memory    uint32        `yaml:"memory"`
	Globals   []globalSpec  `yaml:"globals"`
	Imports   []importSpec  `yaml:"imports"`
	Functions []funcSpec    `yaml:"functions"`
	Segments  []segmentSpec `yaml:"segments"`
}

type globalSpec struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type importSpec struct {
	Name   string   `yaml:"name"`
	Args   []string `yaml:"args"`
	Result string   `yaml:"result"`
}

type funcSpec struct {
	Name   string     `yaml:"name"`
	Export string     `yaml:"export"`
	Args   []string   `yaml:"args"`
	Locals []string   `yaml:"locals"`
	Result string     `yaml:"result"`
	Body   []exprSpec `yaml:"body"`
}

type segmentSpec struct {
	Address uint32 `yaml:"address"`
	Data    string `yaml:"data"` // hex-encoded bytes
}

// exprSpec is one expression node: an op name plus whichever operand
// fields that op's class uses.
type exprSpec struct {
	Op     string     `yaml:"op"`
	Value  *yaml.Node `yaml:"value"` // const scalar, or a nested expression
	Args   []exprSpec `yaml:"args"`
	Addr   *exprSpec  `yaml:"addr"`
	Cond   *exprSpec  `yaml:"cond"`
	Then   *exprSpec  `yaml:"then"`
	Else   *exprSpec  `yaml:"else"`
	Index  int        `yaml:"index"`
	Func   int        `yaml:"func"`
	Import int        `yaml:"import"`
	Depth  int        `yaml:"depth"`
	Access int        `yaml:"access"`
	Label  string     `yaml:"label"`
}

// Load reads and decodes a single-module manifest file.
func Load(path string) (*ir.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseManifest, errors.KindInvalidData, err, "read manifest")
	}
	return Decode(data)
}

// Decode builds a module from one YAML document.
func Decode(data []byte) (*ir.Module, error) {
	var spec moduleSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, errors.Wrap(errors.PhaseManifest, errors.KindInvalidData, err, "parse manifest")
	}
	return buildModule(&spec)
}

// DecodeAll builds one module per document of a multi-document stream.
func DecodeAll(data []byte) ([]*ir.Module, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var mods []*ir.Module
	for {
		var spec moduleSpec
		if err := dec.Decode(&spec); err != nil {
			if err == io.EOF {
				return mods, nil
			}
			return nil, errors.Wrap(errors.PhaseManifest, errors.KindInvalidData, err, "parse manifest stream")
		}
		m, err := buildModule(&spec)
		if err != nil {
			return nil, err
		}
		mods = append(mods, m)
	}
}

func buildModule(spec *moduleSpec) (*ir.Module, error) {
	m := &ir.Module{
		Name:          spec.Name,
		MaxMemorySize: spec.Memory,
	}

	for i, g := range spec.Globals {
		t, err := parseType(g.Type, "globals", i)
		if err != nil {
			return nil, err
		}
		m.Globals = append(m.Globals, ir.Global{Name: g.Name, Type: t})
	}

	for i, imp := range spec.Imports {
		args, err := parseTypes(imp.Args, "imports", i)
		if err != nil {
			return nil, err
		}
		result, err := parseType(imp.Result, "imports", i)
		if err != nil {
			return nil, err
		}
		m.Imports = append(m.Imports, ir.Import{Name: imp.Name, Args: args, Result: result})
	}

	for i := range spec.Functions {
		f, err := buildFunction(&spec.Functions[i], i)
		if err != nil {
			return nil, err
		}
		m.Functions = append(m.Functions, f)
	}

	for i, seg := range spec.Segments {
		data, err := hex.DecodeString(strings.ReplaceAll(seg.Data, " ", ""))
		if err != nil {
			return nil, errors.InvalidData(errors.PhaseManifest,
				[]string{"segments", fmt.Sprint(i)}, "segment data is not valid hex")
		}
		m.Segments = append(m.Segments, ir.Segment{Address: seg.Address, Data: data})
	}

	return m, nil
}

func buildFunction(spec *funcSpec, index int) (ir.Function, error) {
	path := []string{"functions", fmt.Sprint(index)}

	args, err := parseTypes(spec.Args, "functions", index)
	if err != nil {
		return ir.Function{}, err
	}
	locals, err := parseTypes(spec.Locals, "functions", index)
	if err != nil {
		return ir.Function{}, err
	}
	result, err := parseType(spec.Result, "functions", index)
	if err != nil {
		return ir.Function{}, err
	}

	f := ir.Function{
		Name:       spec.Name,
		NumArgs:    len(args),
		Result:     result,
		Locals:     append(args, locals...),
		Exported:   spec.Export != "",
		ExportName: spec.Export,
	}
	for i := range spec.Body {
		expr, err := buildExpr(&spec.Body[i], append(path, "body", fmt.Sprint(i)))
		if err != nil {
			return ir.Function{}, err
		}
		f.Body = append(f.Body, expr)
	}
	return f, nil
}

func parseType(name, section string, index int) (ir.Type, error) {
	t, ok := ir.ParseType(name)
	if !ok {
		return 0, errors.InvalidData(errors.PhaseManifest,
			[]string{section, fmt.Sprint(index)}, "unknown type "+name)
	}
	return t, nil
}

func parseTypes(names []string, section string, index int) ([]ir.Type, error) {
	var types []ir.Type
	for _, name := range names {
		t, err := parseType(name, section, index)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}

func buildExpr(spec *exprSpec, path []string) (ir.Expr, error) {
	switch spec.Op {
	case "nop":
		return ir.Nop{}, nil
	case "block":
		exprs, err := buildExprs(spec.Args, path)
		if err != nil {
			return nil, err
		}
		return ir.Block{Exprs: exprs}, nil
	case "loop":
		exprs, err := buildExprs(spec.Args, path)
		if err != nil {
			return nil, err
		}
		return ir.Loop{Exprs: exprs}, nil
	case "label":
		exprs, err := buildExprs(spec.Args, path)
		if err != nil {
			return nil, err
		}
		return ir.Label{Name: spec.Label, Exprs: exprs}, nil
	case "if":
		if spec.Cond == nil || spec.Then == nil {
			return nil, errors.InvalidData(errors.PhaseManifest, path, "if needs cond and then")
		}
		cond, err := buildExpr(spec.Cond, append(path, "cond"))
		if err != nil {
			return nil, err
		}
		then, err := buildExpr(spec.Then, append(path, "then"))
		if err != nil {
			return nil, err
		}
		node := ir.If{Cond: cond, Then: then}
		if spec.Else != nil {
			if node.Else, err = buildExpr(spec.Else, append(path, "else")); err != nil {
				return nil, err
			}
		}
		return node, nil
	case "break":
		return ir.Break{Depth: spec.Depth}, nil
	case "return":
		value, err := nestedValue(spec, path)
		if err != nil {
			return nil, err
		}
		return ir.Return{Value: value}, nil
	case "call":
		args, err := buildExprs(spec.Args, path)
		if err != nil {
			return nil, err
		}
		return ir.Call{Func: spec.Func, Args: args}, nil
	case "call_import":
		args, err := buildExprs(spec.Args, path)
		if err != nil {
			return nil, err
		}
		return ir.CallImport{Import: spec.Import, Args: args}, nil
	}

	op, class, ok := ir.LookupOpcode(spec.Op)
	if !ok {
		return nil, errors.NotFound(errors.PhaseManifest, "opcode", spec.Op)
	}

	switch class {
	case ir.ClassConst:
		return buildConst(spec, op, path)

	case ir.ClassBinary, ir.ClassCompare:
		if len(spec.Args) != 2 {
			return nil, errors.InvalidData(errors.PhaseManifest, path, spec.Op+" needs two operands")
		}
		l, err := buildExpr(&spec.Args[0], append(path, "args", "0"))
		if err != nil {
			return nil, err
		}
		r, err := buildExpr(&spec.Args[1], append(path, "args", "1"))
		if err != nil {
			return nil, err
		}
		if class == ir.ClassBinary {
			return ir.Binary{Op: op, L: l, R: r}, nil
		}
		return ir.Compare{Op: op, L: l, R: r}, nil

	case ir.ClassUnary, ir.ClassConvert:
		if len(spec.Args) != 1 {
			return nil, errors.InvalidData(errors.PhaseManifest, path, spec.Op+" needs one operand")
		}
		x, err := buildExpr(&spec.Args[0], append(path, "args", "0"))
		if err != nil {
			return nil, err
		}
		if class == ir.ClassUnary {
			return ir.Unary{Op: op, X: x}, nil
		}
		return ir.Convert{Op: op, X: x}, nil

	case ir.ClassLoad:
		if spec.Addr == nil {
			return nil, errors.InvalidData(errors.PhaseManifest, path, spec.Op+" needs an addr")
		}
		addr, err := buildExpr(spec.Addr, append(path, "addr"))
		if err != nil {
			return nil, err
		}
		return ir.Load{Op: op, Access: byte(spec.Access), Addr: addr}, nil

	case ir.ClassStore:
		if spec.Addr == nil || spec.Value == nil {
			return nil, errors.InvalidData(errors.PhaseManifest, path, spec.Op+" needs addr and value")
		}
		addr, err := buildExpr(spec.Addr, append(path, "addr"))
		if err != nil {
			return nil, err
		}
		value, err := nestedValue(spec, path)
		if err != nil {
			return nil, err
		}
		return ir.Store{Op: op, Access: byte(spec.Access), Addr: addr, Value: value}, nil

	case ir.ClassLocal:
		if op == ir.OpGetLocal {
			return ir.GetLocal{Index: spec.Index}, nil
		}
		value, err := requiredValue(spec, path)
		if err != nil {
			return nil, err
		}
		return ir.SetLocal{Index: spec.Index, Value: value}, nil

	case ir.ClassGlobal:
		if op == ir.OpGetGlobal {
			return ir.LoadGlobal{Index: spec.Index}, nil
		}
		value, err := requiredValue(spec, path)
		if err != nil {
			return nil, err
		}
		return ir.StoreGlobal{Index: spec.Index, Value: value}, nil
	}

	return nil, errors.Unsupported(errors.PhaseManifest, spec.Op)
}

func buildExprs(specs []exprSpec, path []string) ([]ir.Expr, error) {
	var exprs []ir.Expr
	for i := range specs {
		e, err := buildExpr(&specs[i], append(path, "args", fmt.Sprint(i)))
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}

// nestedValue decodes the optional "value" field as a child expression.
func nestedValue(spec *exprSpec, path []string) (ir.Expr, error) {
	if spec.Value == nil {
		return nil, nil
	}
	var child exprSpec
	if err := spec.Value.Decode(&child); err != nil {
		return nil, errors.Wrap(errors.PhaseManifest, errors.KindInvalidData, err, "decode value expression")
	}
	return buildExpr(&child, append(path, "value"))
}

func requiredValue(spec *exprSpec, path []string) (ir.Expr, error) {
	value, err := nestedValue(spec, path)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, errors.InvalidData(errors.PhaseManifest, path, spec.Op+" needs a value")
	}
	return value, nil
}

// buildConst decodes a literal. The compact one-byte integer form is
// the encoder's decision, so i8.const is not accepted as input.
func buildConst(spec *exprSpec, op ir.Opcode, path []string) (ir.Expr, error) {
	if spec.Value == nil {
		return nil, errors.InvalidData(errors.PhaseManifest, path, spec.Op+" needs a value")
	}
	node := ir.Const{}
	var err error
	switch op {
	case ir.OpI32Const:
		node.Type = ir.TypeI32
		err = spec.Value.Decode(&node.I32)
	case ir.OpI64Const:
		node.Type = ir.TypeI64
		err = spec.Value.Decode(&node.I64)
	case ir.OpF32Const:
		node.Type = ir.TypeF32
		err = spec.Value.Decode(&node.F32)
	case ir.OpF64Const:
		node.Type = ir.TypeF64
		err = spec.Value.Decode(&node.F64)
	default:
		return nil, errors.Unsupported(errors.PhaseManifest, spec.Op)
	}
	if err != nil {
		return nil, errors.Wrap(errors.PhaseManifest, errors.KindInvalidData, err, "decode "+spec.Op+" literal")
	}
	return node, nil
}
