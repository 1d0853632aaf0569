// Package tackygen lowers the analyzed AST to TACKY.
//
// Lowering assumes a well-typed tree: every inconsistency it meets is an
// internal error, never a user diagnostic.
package tackygen

import (
	"github.com/raymyers/tacky-cc/pkg/cabs"
	"github.com/raymyers/tacky-cc/pkg/consts"
	"github.com/raymyers/tacky-cc/pkg/ctypes"
	"github.com/raymyers/tacky-cc/pkg/diag"
	"github.com/raymyers/tacky-cc/pkg/symbols"
	"github.com/raymyers/tacky-cc/pkg/tacky"
	"github.com/raymyers/tacky-cc/pkg/unit"
)

// gen holds the state of lowering one function body.
type gen struct {
	ctx  *unit.Context
	syms *symbols.Table
	out  []tacky.Instruction
}

func (g *gen) emit(instrs ...tacky.Instruction) {
	g.out = append(g.out, instrs...)
}

// temp registers a fresh temporary of type t.
func (g *gen) temp(t ctypes.Type) tacky.Var {
	name := g.ctx.UniqueName("tmp")
	g.syms.AddLocal(name, t)
	return tacky.Var{Name: name}
}

// Lower translates prog into a TACKY program: function definitions in
// source order, then static variables and static constants in symbol
// table order.
func Lower(prog *cabs.Program, ctx *unit.Context) *tacky.Program {
	result := &tacky.Program{}
	for _, d := range prog.Decls {
		f, ok := d.(*cabs.FunDecl)
		if !ok || f.Body == nil {
			continue
		}
		result.TopLevels = append(result.TopLevels, lowerFunction(f, ctx))
	}

	var constants []tacky.TopLevel
	for _, entry := range ctx.Symbols.Entries() {
		switch attr := entry.Attrs.(type) {
		case symbols.StaticAttr:
			if v := staticVariable(entry, attr); v != nil {
				result.TopLevels = append(result.TopLevels, v)
			}
		case symbols.ConstantAttr:
			constants = append(constants, &tacky.StaticConstant{
				Name:      entry.Name,
				Alignment: ctypes.Alignof(entry.Type),
				Type:      entry.Type,
				Init:      attr.Init,
			})
		}
	}
	result.TopLevels = append(result.TopLevels, constants...)
	return result
}

func staticVariable(entry *symbols.Entry, attr symbols.StaticAttr) *tacky.StaticVariable {
	var init []consts.StaticInit
	switch i := attr.Init.(type) {
	case symbols.Initial:
		init = i.Items
	case symbols.Tentative:
		init = consts.AppendZero(nil, ctypes.Sizeof(entry.Type))
	case symbols.NoInitializer:
		return nil
	}
	return &tacky.StaticVariable{
		Name:      entry.Name,
		Global:    attr.Global,
		Alignment: ctypes.Alignof(entry.Type),
		Type:      entry.Type,
		Init:      init,
	}
}

func lowerFunction(f *cabs.FunDecl, ctx *unit.Context) *tacky.Function {
	g := &gen{ctx: ctx, syms: ctx.Symbols}
	attr, ok := g.syms.Get(f.Name).Attrs.(symbols.FunAttr)
	if !ok {
		panic(diag.Internal("tackygen: %s is not a function", f.Name))
	}
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Name
	}

	g.items(f.Body.Items)

	ret := f.Type.(ctypes.Tfunction).Return
	if ctypes.IsVoid(ret) {
		g.emit(tacky.Return{})
	} else {
		g.emit(tacky.Return{Value: tacky.Constant{Value: consts.Zero(ret)}})
	}
	return &tacky.Function{Name: f.Name, Global: attr.Global, Params: params, Body: g.out}
}

// stringConstant registers a read-only copy of a string literal.
func (g *gen) stringConstant(value []byte) tacky.Var {
	name := g.ctx.UniqueName("string")
	t := ctypes.Array(ctypes.Char(), int64(len(value))+1)
	g.syms.Set(name, t, symbols.ConstantAttr{Init: consts.StringInit{Value: value, NullTerminated: true}})
	return tacky.Var{Name: name}
}
