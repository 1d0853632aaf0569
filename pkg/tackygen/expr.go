package tackygen

import (
	"github.com/raymyers/tacky-cc/pkg/cabs"
	"github.com/raymyers/tacky-cc/pkg/consts"
	"github.com/raymyers/tacky-cc/pkg/ctypes"
	"github.com/raymyers/tacky-cc/pkg/diag"
	"github.com/raymyers/tacky-cc/pkg/tacky"
)

// result is what lowering an expression yields: a plain operand, or the
// address of an object that has not been loaded yet.
type result interface {
	implResult()
}

type plain struct {
	val tacky.Value // nil for void expressions
}

type deref struct {
	ptr tacky.Value
}

func (plain) implResult() {}
func (deref) implResult() {}

func typeOf(e cabs.Expr) ctypes.Type {
	return e.Annotation().Type
}

// rvalue lowers e and loads it when it designates an object behind a
// pointer.
func (g *gen) rvalue(e cabs.Expr) tacky.Value {
	switch r := g.expr(e).(type) {
	case plain:
		return r.val
	case deref:
		dst := g.temp(typeOf(e))
		g.emit(tacky.Load{Ptr: r.ptr, Dst: dst})
		return dst
	}
	panic(diag.Internal("tackygen: unknown result"))
}

// store writes v to the object lhs designates.
func (g *gen) store(lhs result, v tacky.Value) {
	switch lhs := lhs.(type) {
	case plain:
		g.emit(tacky.Copy{Src: v, Dst: lhs.val})
	case deref:
		g.emit(tacky.Store{Src: v, Ptr: lhs.ptr})
	}
}

// load reads the current value of the object lhs designates.
func (g *gen) load(lhs result, t ctypes.Type) tacky.Value {
	if d, ok := lhs.(deref); ok {
		dst := g.temp(t)
		g.emit(tacky.Load{Ptr: d.ptr, Dst: dst})
		return dst
	}
	return lhs.(plain).val
}

func (g *gen) expr(e cabs.Expr) result {
	switch e := e.(type) {
	case *cabs.Constant:
		return plain{tacky.Constant{Value: e.Value}}
	case *cabs.StringLiteral:
		return plain{g.stringConstant(e.Value)}
	case *cabs.Var:
		return plain{tacky.Var{Name: e.Name}}
	case *cabs.Unary:
		return plain{g.unary(e)}
	case *cabs.Binary:
		return plain{g.binary(e)}
	case *cabs.Assign:
		return plain{g.assign(e)}
	case *cabs.Conditional:
		return plain{g.conditional(e)}
	case *cabs.FunctionCall:
		return plain{g.call(e)}
	case *cabs.Cast:
		if ctypes.IsVoid(e.Target) {
			g.expr(e.Expr)
			return plain{}
		}
		return plain{g.convert(g.rvalue(e.Expr), typeOf(e.Expr), e.Target)}
	case *cabs.AddressOf:
		switch inner := g.expr(e.Expr).(type) {
		case plain:
			dst := g.temp(typeOf(e))
			g.emit(tacky.GetAddress{Src: inner.val, Dst: dst})
			return plain{dst}
		case deref:
			return plain{inner.ptr}
		}
	case *cabs.Decay:
		switch inner := g.expr(e.Expr).(type) {
		case plain:
			dst := g.temp(typeOf(e))
			g.emit(tacky.GetAddress{Src: inner.val, Dst: dst})
			return plain{dst}
		case deref:
			dst := g.temp(typeOf(e))
			g.emit(tacky.Copy{Src: inner.ptr, Dst: dst})
			return plain{dst}
		}
	case *cabs.Dereference:
		return deref{g.rvalue(e.Expr)}
	case *cabs.Subscript:
		return deref{g.subscript(e)}
	case *cabs.Prefix:
		return plain{g.incDec(e.Expr, e.Op, false)}
	case *cabs.Postfix:
		return plain{g.incDec(e.Expr, e.Op, true)}
	case *cabs.Sizeof:
		t := e.Operand
		if e.Expr != nil {
			t = typeOf(e.Expr)
		}
		return plain{tacky.Constant{Value: consts.ConstULong{Value: uint64(ctypes.Sizeof(t))}}}
	}
	panic(diag.Internal("tackygen: unknown expression %T", e))
}

// convert changes v from type from to type to. Constants are converted
// at compile time.
func (g *gen) convert(v tacky.Value, from, to ctypes.Type) tacky.Value {
	if ctypes.Equal(from, to) {
		return v
	}
	if c, ok := v.(tacky.Constant); ok && ctypes.IsArithmetic(to) {
		return tacky.Constant{Value: consts.Convert(c.Value, to)}
	}
	if c, ok := v.(tacky.Constant); ok && ctypes.IsPointer(to) {
		return tacky.Constant{Value: consts.Convert(c.Value, ctypes.ULong())}
	}

	dst := g.temp(to)
	fromSize, toSize := ctypes.Sizeof(from), ctypes.Sizeof(to)
	var op tacky.ConvertOp
	switch {
	case ctypes.IsDouble(to) && ctypes.IsSigned(from):
		op = tacky.IntToDouble
	case ctypes.IsDouble(to):
		op = tacky.UIntToDouble
	case ctypes.IsDouble(from) && ctypes.IsSigned(to):
		op = tacky.DoubleToInt
	case ctypes.IsDouble(from):
		op = tacky.DoubleToUInt
	case fromSize == toSize:
		g.emit(tacky.Copy{Src: v, Dst: dst})
		return dst
	case toSize < fromSize:
		op = tacky.Truncate
	case ctypes.IsSigned(from):
		op = tacky.SignExtend
	default:
		op = tacky.ZeroExtend
	}
	g.emit(tacky.Convert{Op: op, Src: v, Dst: dst})
	return dst
}

var unaryOps = map[cabs.UnaryOp]tacky.UnaryOp{
	cabs.OpNeg:    tacky.Negate,
	cabs.OpBitNot: tacky.Complement,
	cabs.OpNot:    tacky.Not,
}

func (g *gen) unary(e *cabs.Unary) tacky.Value {
	src := g.rvalue(e.Expr)
	if e.Op == cabs.OpPlus {
		return src
	}
	dst := g.temp(typeOf(e))
	g.emit(tacky.Unary{Op: unaryOps[e.Op], Src: src, Dst: dst})
	return dst
}

var binaryOps = map[cabs.BinaryOp]tacky.BinaryOp{
	cabs.OpAdd:    tacky.Add,
	cabs.OpSub:    tacky.Subtract,
	cabs.OpMul:    tacky.Multiply,
	cabs.OpDiv:    tacky.Divide,
	cabs.OpMod:    tacky.Remainder,
	cabs.OpBitAnd: tacky.BitAnd,
	cabs.OpBitOr:  tacky.BitOr,
	cabs.OpBitXor: tacky.BitXor,
	cabs.OpShl:    tacky.ShiftLeft,
	cabs.OpShr:    tacky.ShiftRight,
	cabs.OpEq:     tacky.Equal,
	cabs.OpNe:     tacky.NotEqual,
	cabs.OpLt:     tacky.LessThan,
	cabs.OpLe:     tacky.LessOrEqual,
	cabs.OpGt:     tacky.GreaterThan,
	cabs.OpGe:     tacky.GreaterOrEqual,
}

func (g *gen) binary(e *cabs.Binary) tacky.Value {
	switch e.Op {
	case cabs.OpAnd:
		return g.shortCircuit(e, "and_false", "and_end", true)
	case cabs.OpOr:
		return g.shortCircuit(e, "or_true", "or_end", false)
	}

	lt, rt := typeOf(e.Left), typeOf(e.Right)
	if !e.Op.IsComparison() && (ctypes.IsPointer(lt) || ctypes.IsPointer(rt)) {
		return g.pointerArith(e, lt, rt)
	}

	src1 := g.rvalue(e.Left)
	src2 := g.rvalue(e.Right)
	dst := g.temp(typeOf(e))
	g.emit(tacky.Binary{Op: binaryOps[e.Op], Src1: src1, Src2: src2, Dst: dst})
	return dst
}

// pointerArith lowers pointer plus or minus an integer to one AddPtr,
// and the difference of two pointers to a subtraction divided by the
// pointee size.
func (g *gen) pointerArith(e *cabs.Binary, lt, rt ctypes.Type) tacky.Value {
	left := g.rvalue(e.Left)
	right := g.rvalue(e.Right)
	switch {
	case e.Op == cabs.OpAdd && ctypes.IsPointer(lt):
		return g.addPtr(left, right, lt)
	case e.Op == cabs.OpAdd:
		return g.addPtr(right, left, rt)
	case ctypes.IsPointer(rt):
		diff := g.temp(ctypes.Long())
		g.emit(tacky.Binary{Op: tacky.Subtract, Src1: left, Src2: right, Dst: diff})
		dst := g.temp(ctypes.Long())
		size := consts.ConstLong{Value: ctypes.Sizeof(ctypes.Elem(lt))}
		g.emit(tacky.Binary{Op: tacky.Divide, Src1: diff, Src2: tacky.Constant{Value: size}, Dst: dst})
		return dst
	}
	return g.addPtr(left, g.negate(right, ctypes.Long()), lt)
}

func (g *gen) addPtr(ptr, index tacky.Value, t ctypes.Type) tacky.Value {
	dst := g.temp(t)
	g.emit(tacky.AddPtr{Ptr: ptr, Index: index, Scale: ctypes.Sizeof(ctypes.Elem(t)), Dst: dst})
	return dst
}

func (g *gen) negate(v tacky.Value, t ctypes.Type) tacky.Value {
	if c, ok := v.(tacky.Constant); ok {
		return tacky.Constant{Value: consts.FromInt64(-consts.Int64(c.Value), t)}
	}
	dst := g.temp(t)
	g.emit(tacky.Unary{Op: tacky.Negate, Src: v, Dst: dst})
	return dst
}

// shortCircuit lowers && (isAnd) and || to a diamond writing 0 or 1 to a
// single result temporary.
func (g *gen) shortCircuit(e *cabs.Binary, shortPrefix, endPrefix string, isAnd bool) tacky.Value {
	labels := g.ctx.Labels(shortPrefix, endPrefix)
	short, end := labels[0], labels[1]
	jump := func(v tacky.Value) tacky.Instruction {
		if isAnd {
			return tacky.JumpIfZero{Cond: v, Target: short}
		}
		return tacky.JumpIfNotZero{Cond: v, Target: short}
	}
	one := tacky.Constant{Value: consts.ConstInt{Value: 1}}
	zero := tacky.Constant{Value: consts.ConstInt{Value: 0}}
	fallthroughVal, shortVal := one, zero
	if !isAnd {
		fallthroughVal, shortVal = zero, one
	}

	dst := g.temp(ctypes.Int())
	g.emit(jump(g.rvalue(e.Left)))
	g.emit(jump(g.rvalue(e.Right)))
	g.emit(
		tacky.Copy{Src: fallthroughVal, Dst: dst},
		tacky.Jump{Target: end},
		tacky.Label{Name: short},
		tacky.Copy{Src: shortVal, Dst: dst},
		tacky.Label{Name: end})
	return dst
}

func (g *gen) conditional(e *cabs.Conditional) tacky.Value {
	labels := g.ctx.Labels("cond_else", "cond_end")
	elseLabel, end := labels[0], labels[1]
	cond := g.rvalue(e.Cond)
	g.emit(tacky.JumpIfZero{Cond: cond, Target: elseLabel})

	if ctypes.IsVoid(typeOf(e)) {
		g.expr(e.Then)
		g.emit(tacky.Jump{Target: end}, tacky.Label{Name: elseLabel})
		g.expr(e.Else)
		g.emit(tacky.Label{Name: end})
		return nil
	}
	dst := g.temp(typeOf(e))
	g.emit(tacky.Copy{Src: g.rvalue(e.Then), Dst: dst})
	g.emit(tacky.Jump{Target: end}, tacky.Label{Name: elseLabel})
	g.emit(tacky.Copy{Src: g.rvalue(e.Else), Dst: dst})
	g.emit(tacky.Label{Name: end})
	return dst
}

func (g *gen) call(e *cabs.FunctionCall) tacky.Value {
	args := make([]tacky.Value, len(e.Args))
	for i, a := range e.Args {
		args[i] = g.rvalue(a)
	}
	if ctypes.IsVoid(typeOf(e)) {
		g.emit(tacky.FunCall{Name: e.Name, Args: args})
		return nil
	}
	dst := g.temp(typeOf(e))
	g.emit(tacky.FunCall{Name: e.Name, Args: args, Dst: dst})
	return dst
}

// subscript returns the address of the selected element. Either operand
// may be the pointer.
func (g *gen) subscript(e *cabs.Subscript) tacky.Value {
	a := g.rvalue(e.Array)
	i := g.rvalue(e.Index)
	if ctypes.IsPointer(typeOf(e.Array)) {
		return g.addPtr(a, i, typeOf(e.Array))
	}
	return g.addPtr(i, a, typeOf(e.Index))
}

// assign evaluates the address of the left side once, then stores the
// new value through it. Compound forms compute in OpType and convert
// back.
func (g *gen) assign(e *cabs.Assign) tacky.Value {
	lhs := g.expr(e.Left)
	lt := typeOf(e.Left)
	if e.Op == cabs.AssignPlain {
		v := g.rvalue(e.Right)
		g.store(lhs, v)
		return v
	}

	cur := g.load(lhs, lt)
	rhs := g.rvalue(e.Right)
	var v tacky.Value
	op := e.Op.Binary()
	if ctypes.IsPointer(lt) {
		if op == cabs.OpSub {
			rhs = g.negate(rhs, ctypes.Long())
		}
		v = g.addPtr(cur, rhs, lt)
	} else {
		l := g.convert(cur, lt, e.OpType)
		res := g.temp(e.OpType)
		g.emit(tacky.Binary{Op: binaryOps[op], Src1: l, Src2: rhs, Dst: res})
		v = g.convert(res, e.OpType, lt)
	}
	g.store(lhs, v)
	return v
}

// incDec lowers ++ and --. Postfix forms yield the value before the
// update.
func (g *gen) incDec(operand cabs.Expr, op cabs.IncDec, postfix bool) tacky.Value {
	lhs := g.expr(operand)
	t := typeOf(operand)
	cur := g.load(lhs, t)

	old := cur
	if postfix {
		if _, isVar := lhs.(plain); isVar {
			old = g.temp(t)
			g.emit(tacky.Copy{Src: cur, Dst: old})
		}
	}

	var v tacky.Value
	if ctypes.IsPointer(t) {
		step := int64(1)
		if op == cabs.Dec {
			step = -1
		}
		v = g.addPtr(cur, tacky.Constant{Value: consts.ConstLong{Value: step}}, t)
	} else {
		pt := ctypes.Promote(t)
		binop := tacky.Add
		if op == cabs.Dec {
			binop = tacky.Subtract
		}
		one := consts.Convert(consts.ConstInt{Value: 1}, pt)
		l := g.convert(cur, t, pt)
		res := g.temp(pt)
		g.emit(tacky.Binary{Op: binop, Src1: l, Src2: tacky.Constant{Value: one}, Dst: res})
		v = g.convert(res, pt, t)
	}
	g.store(lhs, v)
	if postfix {
		return old
	}
	return v
}
