package tackygen

import (
	"encoding/binary"

	"github.com/raymyers/tacky-cc/pkg/cabs"
	"github.com/raymyers/tacky-cc/pkg/consts"
	"github.com/raymyers/tacky-cc/pkg/ctypes"
	"github.com/raymyers/tacky-cc/pkg/diag"
	"github.com/raymyers/tacky-cc/pkg/tacky"
)

func (g *gen) items(items []cabs.BlockItem) {
	for _, item := range items {
		switch it := item.(type) {
		case *cabs.VarDecl:
			g.localVar(it)
		case *cabs.FunDecl:
			// Block-scope declarations have no body and emit nothing.
		case cabs.Stmt:
			g.stmt(it)
		}
	}
}

// localVar initializes an automatic object. Static and extern locals are
// emitted as top-level items.
func (g *gen) localVar(v *cabs.VarDecl) {
	if v.Storage != cabs.StorageNone || v.Init == nil {
		return
	}
	if single, ok := v.Init.(*cabs.SingleInit); ok && !ctypes.IsArray(v.Type) {
		g.emit(tacky.Copy{Src: g.rvalue(single.Expr), Dst: tacky.Var{Name: v.Name}})
		return
	}
	g.initAt(v.Name, v.Type, v.Init, 0)
}

// initAt writes init into the object name starting at byte offset.
func (g *gen) initAt(name string, t ctypes.Type, init cabs.Initializer, offset int64) {
	switch init := init.(type) {
	case *cabs.SingleInit:
		if lit, ok := init.Expr.(*cabs.StringLiteral); ok && ctypes.IsArray(t) {
			g.initString(name, lit.Value, ctypes.Sizeof(t), offset)
			return
		}
		g.emit(tacky.CopyToOffset{Src: g.rvalue(init.Expr), Dst: name, Offset: offset})
	case *cabs.CompoundInit:
		elem := ctypes.Elem(t)
		size := ctypes.Sizeof(elem)
		for i, item := range init.Items {
			g.initAt(name, elem, item, offset+int64(i)*size)
		}
	default:
		panic(diag.Internal("tackygen: unknown initializer %T", init))
	}
}

// initString copies a string literal, zero padded to size bytes, in
// chunks of 8, 4 and 1 bytes.
func (g *gen) initString(name string, value []byte, size, offset int64) {
	buf := make([]byte, size)
	copy(buf, value)
	for i := int64(0); i < size; {
		var c consts.Const
		switch rest := size - i; {
		case rest >= 8:
			c = consts.ConstLong{Value: int64(binary.LittleEndian.Uint64(buf[i:]))}
		case rest >= 4:
			c = consts.ConstInt{Value: int32(binary.LittleEndian.Uint32(buf[i:]))}
		default:
			c = consts.ConstChar{Value: int8(buf[i])}
		}
		g.emit(tacky.CopyToOffset{Src: tacky.Constant{Value: c}, Dst: name, Offset: offset + i})
		i += ctypes.Sizeof(c.Type())
	}
}

func breakLabel(loop string) string    { return "break_" + loop }
func continueLabel(loop string) string { return "continue_" + loop }
func startLabel(loop string) string    { return "start_" + loop }

func (g *gen) stmt(s cabs.Stmt) {
	switch s := s.(type) {
	case *cabs.Return:
		if s.Expr == nil {
			g.emit(tacky.Return{})
			return
		}
		g.emit(tacky.Return{Value: g.rvalue(s.Expr)})
	case *cabs.ExprStmt:
		g.expr(s.Expr)
	case *cabs.If:
		g.ifStmt(s)
	case *cabs.Block:
		g.items(s.Items)
	case *cabs.While:
		g.emit(tacky.Label{Name: continueLabel(s.Label)})
		cond := g.rvalue(s.Cond)
		g.emit(tacky.JumpIfZero{Cond: cond, Target: breakLabel(s.Label)})
		g.stmt(s.Body)
		g.emit(
			tacky.Jump{Target: continueLabel(s.Label)},
			tacky.Label{Name: breakLabel(s.Label)})
	case *cabs.DoWhile:
		g.emit(tacky.Label{Name: startLabel(s.Label)})
		g.stmt(s.Body)
		g.emit(tacky.Label{Name: continueLabel(s.Label)})
		cond := g.rvalue(s.Cond)
		g.emit(
			tacky.JumpIfNotZero{Cond: cond, Target: startLabel(s.Label)},
			tacky.Label{Name: breakLabel(s.Label)})
	case *cabs.For:
		g.forStmt(s)
	case *cabs.Switch:
		g.switchStmt(s)
	case *cabs.Case:
		g.emit(tacky.Label{Name: s.Label})
		g.stmt(s.Body)
	case *cabs.Default:
		g.emit(tacky.Label{Name: s.Label})
		g.stmt(s.Body)
	case *cabs.Break:
		g.emit(tacky.Jump{Target: breakLabel(s.Label)})
	case *cabs.Continue:
		g.emit(tacky.Jump{Target: continueLabel(s.Label)})
	case *cabs.Null:
	default:
		panic(diag.Internal("tackygen: unknown statement %T", s))
	}
}

func (g *gen) ifStmt(s *cabs.If) {
	labels := g.ctx.Labels("if_else", "if_end")
	elseLabel, end := labels[0], labels[1]
	cond := g.rvalue(s.Cond)
	if s.Else == nil {
		g.emit(tacky.JumpIfZero{Cond: cond, Target: end})
		g.stmt(s.Then)
		g.emit(tacky.Label{Name: end})
		return
	}
	g.emit(tacky.JumpIfZero{Cond: cond, Target: elseLabel})
	g.stmt(s.Then)
	g.emit(tacky.Jump{Target: end}, tacky.Label{Name: elseLabel})
	g.stmt(s.Else)
	g.emit(tacky.Label{Name: end})
}

// forStmt runs the init clause once before the start label, so array
// initializers in it are not repeated per iteration.
func (g *gen) forStmt(s *cabs.For) {
	switch init := s.Init.(type) {
	case *cabs.ForInitDecl:
		for _, d := range init.Decls {
			g.localVar(d)
		}
	case *cabs.ForInitExpr:
		if init.Expr != nil {
			g.expr(init.Expr)
		}
	}
	g.emit(tacky.Label{Name: startLabel(s.Label)})
	if s.Cond != nil {
		cond := g.rvalue(s.Cond)
		g.emit(tacky.JumpIfZero{Cond: cond, Target: breakLabel(s.Label)})
	}
	g.stmt(s.Body)
	g.emit(tacky.Label{Name: continueLabel(s.Label)})
	if s.Post != nil {
		g.expr(s.Post)
	}
	g.emit(
		tacky.Jump{Target: startLabel(s.Label)},
		tacky.Label{Name: breakLabel(s.Label)})
}

// switchStmt compares the controlling value against each case in turn
// and falls back to the default label, or past the body.
func (g *gen) switchStmt(s *cabs.Switch) {
	v := g.rvalue(s.Expr)
	t := s.Expr.Annotation().Type
	fallback := breakLabel(s.Label)
	for _, c := range s.Cases {
		if c.IsDefault {
			fallback = c.Label
			continue
		}
		eq := g.temp(ctypes.Int())
		g.emit(
			tacky.Binary{Op: tacky.Equal, Src1: v, Src2: tacky.Constant{Value: consts.Convert(c.Value, t)}, Dst: eq},
			tacky.JumpIfNotZero{Cond: eq, Target: c.Label})
	}
	g.emit(tacky.Jump{Target: fallback})
	g.stmt(s.Body)
	g.emit(tacky.Label{Name: breakLabel(s.Label)})
}
