package driver

import (
	"github.com/wippyai/wasm-codegen/errors"
	"github.com/wippyai/wasm-codegen/ir"
)

// Walk drives a sink through the full event grammar for one module:
// module open, each function's body depth-first, export marks in
// declaration order, module close. Recursion here is what produces the
// sink's nested cookie scopes.
func Walk(m *ir.Module, s Sink) error {
	if err := s.BeginModule(m); err != nil {
		return err
	}
	for i := range m.Functions {
		f := &m.Functions[i]
		s.BeginFunction(i)
		w := walker{mod: m, fn: f, sink: s}
		for _, expr := range f.Body {
			if err := w.expr(expr); err != nil {
				return err
			}
		}
		if err := s.EndFunction(i, len(f.Body)); err != nil {
			return err
		}
	}
	for i := range m.Functions {
		if m.Functions[i].Exported {
			s.ExportFunction(i)
		}
	}
	s.EndModule()
	return nil
}

type walker struct {
	mod  *ir.Module
	fn   *ir.Function
	sink Sink
}

func (w walker) exprs(list []ir.Expr) error {
	for _, e := range list {
		if err := w.expr(e); err != nil {
			return err
		}
	}
	return nil
}

func (w walker) expr(e ir.Expr) error {
	switch n := e.(type) {
	case ir.Nop:
		w.sink.Nop()

	case ir.Block:
		c := w.sink.BeginBlock()
		if err := w.exprs(n.Exprs); err != nil {
			return err
		}
		return w.sink.EndBlock(len(n.Exprs), c)

	case ir.Loop:
		c := w.sink.BeginLoop()
		if err := w.exprs(n.Exprs); err != nil {
			return err
		}
		return w.sink.EndLoop(len(n.Exprs), c)

	case ir.Label:
		c := w.sink.BeginLabel()
		if err := w.exprs(n.Exprs); err != nil {
			return err
		}
		return w.sink.EndLabel(len(n.Exprs), c)

	case ir.If:
		c := w.sink.BeginIf()
		if err := w.expr(n.Cond); err != nil {
			return err
		}
		if err := w.expr(n.Then); err != nil {
			return err
		}
		if n.Else != nil {
			if err := w.expr(n.Else); err != nil {
				return err
			}
		}
		w.sink.EndIf(n.Else != nil, c)

	case ir.Binary:
		w.sink.Binary(n.Op)
		if err := w.expr(n.L); err != nil {
			return err
		}
		return w.expr(n.R)

	case ir.Unary:
		w.sink.Unary(n.Op)
		return w.expr(n.X)

	case ir.Compare:
		w.sink.Compare(n.Op)
		if err := w.expr(n.L); err != nil {
			return err
		}
		return w.expr(n.R)

	case ir.Convert:
		w.sink.Convert(n.Op)
		return w.expr(n.X)

	case ir.Call:
		if n.Func < 0 || n.Func >= len(w.mod.Functions) {
			return errors.OutOfBounds(errors.PhaseEmit, "function", n.Func, len(w.mod.Functions))
		}
		w.sink.Call(n.Func)
		return w.exprs(n.Args)

	case ir.CallImport:
		if n.Import < 0 || n.Import >= len(w.mod.Imports) {
			return errors.OutOfBounds(errors.PhaseEmit, "import", n.Import, len(w.mod.Imports))
		}
		w.sink.CallImport(n.Import)
		return w.exprs(n.Args)

	case ir.Break:
		return w.sink.Break(n.Depth)

	case ir.Return:
		w.sink.Return()
		if n.Value != nil {
			return w.expr(n.Value)
		}

	case ir.GetLocal:
		idx, err := remapLocal(w.fn, n.Index)
		if err != nil {
			return err
		}
		w.sink.GetLocal(idx)

	case ir.SetLocal:
		idx, err := remapLocal(w.fn, n.Index)
		if err != nil {
			return err
		}
		w.sink.SetLocal(idx)
		return w.expr(n.Value)

	case ir.LoadGlobal:
		if n.Index < 0 || n.Index >= len(w.mod.Globals) {
			return errors.OutOfBounds(errors.PhaseEmit, "global", n.Index, len(w.mod.Globals))
		}
		w.sink.LoadGlobal(uint32(n.Index))

	case ir.StoreGlobal:
		if n.Index < 0 || n.Index >= len(w.mod.Globals) {
			return errors.OutOfBounds(errors.PhaseEmit, "global", n.Index, len(w.mod.Globals))
		}
		w.sink.StoreGlobal(uint32(n.Index))
		return w.expr(n.Value)

	case ir.Load:
		w.sink.Load(n.Op, n.Access)
		return w.expr(n.Addr)

	case ir.Store:
		w.sink.Store(n.Op, n.Access)
		if err := w.expr(n.Addr); err != nil {
			return err
		}
		return w.expr(n.Value)

	case ir.Const:
		switch n.Type {
		case ir.TypeI32:
			w.sink.ConstI32(n.I32)
		case ir.TypeI64:
			w.sink.ConstI64(n.I64)
		case ir.TypeF32:
			w.sink.ConstF32(n.F32)
		case ir.TypeF64:
			w.sink.ConstF64(n.F64)
		default:
			return errors.InvalidData(errors.PhaseEmit, nil, "constant of type "+n.Type.String())
		}

	default:
		return errors.Unsupported(errors.PhaseEmit, "expression node")
	}
	return nil
}

// remapLocal maps a source-order local index (arguments first, then
// declared locals) to the VM's layout, which groups non-argument locals
// by type: [args][i32s][i64s][f32s][f64s].
func remapLocal(f *ir.Function, index int) (uint32, error) {
	if index < 0 || index >= len(f.Locals) {
		return 0, errors.OutOfBounds(errors.PhaseEmit, "local", index, len(f.Locals))
	}
	if index < f.NumArgs {
		return uint32(index), nil
	}

	t := f.Locals[index]
	remapped := f.NumArgs
	for _, u := range f.Locals[f.NumArgs:] {
		if u < t {
			remapped++
		}
	}
	for i := f.NumArgs; i < index; i++ {
		if f.Locals[i] == t {
			remapped++
		}
	}
	return uint32(remapped), nil
}
