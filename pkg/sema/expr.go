package sema

import (
	"github.com/raymyers/tacky-cc/pkg/cabs"
	"github.com/raymyers/tacky-cc/pkg/consts"
	"github.com/raymyers/tacky-cc/pkg/ctypes"
	"github.com/raymyers/tacky-cc/pkg/diag"
	"github.com/raymyers/tacky-cc/pkg/symbols"
)

func typeOf(e cabs.Expr) ctypes.Type {
	return e.Annotation().Type
}

func annotate(e cabs.Expr, t ctypes.Type, lvalue bool) {
	a := e.Annotation()
	a.Type = t
	a.Lvalue = lvalue
}

// implicitCast converts e to t, inserting a conversion node only when the
// types differ.
func (c *checker) implicitCast(e cabs.Expr, t ctypes.Type) cabs.Expr {
	if ctypes.Equal(typeOf(e), t) {
		return e
	}
	cast := &cabs.Cast{Loc: newLoc(c.ctx, spanOf(e)), Target: t, Expr: e, Implicit: true}
	annotate(cast, t, false)
	return cast
}

// isNullPointerConstant reports whether e is an integer constant zero.
func isNullPointerConstant(e cabs.Expr) bool {
	k, ok := e.(*cabs.Constant)
	return ok && ctypes.IsInteger(k.Value.Type()) && consts.IsZero(k.Value)
}

// rvalue types e and applies array decay. Function designators are only
// valid as the callee of a call, which never reaches here.
func (c *checker) rvalue(e cabs.Expr) cabs.Expr {
	e = c.expr(e)
	switch t := typeOf(e).(type) {
	case ctypes.Tarray:
		d := &cabs.Decay{Loc: newLoc(c.ctx, spanOf(e)), Expr: e}
		annotate(d, ctypes.Pointer(t.Elem), false)
		return d
	case ctypes.Tfunction:
		fail(diag.Type(spanOf(e), "function designator cannot be used as a value"))
	}
	return e
}

// convertByAssignment converts e to t following the rules for
// assignment, argument passing, return and initialization.
func (c *checker) convertByAssignment(e cabs.Expr, t ctypes.Type) cabs.Expr {
	from := typeOf(e)
	switch {
	case ctypes.Equal(from, t):
		return e
	case ctypes.IsArithmetic(from) && ctypes.IsArithmetic(t):
		return c.implicitCast(e, t)
	case ctypes.IsPointer(t) && isNullPointerConstant(e):
		return c.implicitCast(e, t)
	case ctypes.IsVoidPointer(t) && ctypes.IsPointer(from):
		return c.implicitCast(e, t)
	case ctypes.IsVoidPointer(from) && ctypes.IsPointer(t):
		return c.implicitCast(e, t)
	}
	fail(diag.Type(spanOf(e), "cannot convert %s to %s", from, t))
	return nil
}

// commonPointerType is the type two pointer operands of == or ?: agree on.
func (c *checker) commonPointerType(a, b cabs.Expr, span diag.Span) ctypes.Type {
	ta, tb := typeOf(a), typeOf(b)
	switch {
	case ctypes.Equal(ta, tb):
		return ta
	case isNullPointerConstant(a):
		return tb
	case isNullPointerConstant(b):
		return ta
	case ctypes.IsVoidPointer(ta) && ctypes.IsPointer(tb), ctypes.IsVoidPointer(tb) && ctypes.IsPointer(ta):
		return ctypes.Pointer(ctypes.Void())
	}
	fail(diag.Type(span, "incompatible pointer types %s and %s", ta, tb))
	return nil
}

func (c *checker) expr(e cabs.Expr) cabs.Expr {
	switch e := e.(type) {
	case *cabs.Constant:
		annotate(e, e.Value.Type(), false)
	case *cabs.StringLiteral:
		annotate(e, ctypes.Array(ctypes.Char(), int64(len(e.Value))+1), true)
	case *cabs.Var:
		entry, ok := c.syms.Lookup(e.Name)
		if !ok {
			panic(diag.Internal("sema: %s resolved but never declared", e.Name))
		}
		annotate(e, entry.Type, !ctypes.IsFunction(entry.Type))
	case *cabs.Unary:
		c.unary(e)
	case *cabs.Binary:
		c.binary(e)
	case *cabs.Assign:
		c.assign(e)
	case *cabs.Conditional:
		c.conditional(e)
	case *cabs.FunctionCall:
		c.call(e)
	case *cabs.Cast:
		c.cast(e)
	case *cabs.AddressOf:
		inner := c.expr(e.Expr)
		if ctypes.IsFunction(typeOf(inner)) {
			fail(diag.Type(spanOf(e), "cannot take the address of a function"))
		}
		if !inner.Annotation().Lvalue {
			fail(diag.Type(spanOf(e), "cannot take the address of an rvalue"))
		}
		e.Expr = inner
		annotate(e, ctypes.Pointer(typeOf(inner)), false)
	case *cabs.Dereference:
		inner := c.rvalue(e.Expr)
		t := typeOf(inner)
		if !ctypes.IsPointer(t) {
			fail(diag.Type(spanOf(e), "cannot dereference non-pointer type %s", t))
		}
		if ctypes.IsVoidPointer(t) {
			fail(diag.Type(spanOf(e), "cannot dereference void pointer"))
		}
		e.Expr = inner
		annotate(e, ctypes.Elem(t), true)
	case *cabs.Subscript:
		c.subscript(e)
	case *cabs.Postfix:
		e.Expr = c.incDec(e.Expr, spanOf(e))
		annotate(e, typeOf(e.Expr), false)
	case *cabs.Prefix:
		e.Expr = c.incDec(e.Expr, spanOf(e))
		annotate(e, typeOf(e.Expr), false)
	case *cabs.Sizeof:
		c.sizeof(e)
	case *cabs.Decay:
	default:
		panic(diag.Internal("sema: unknown expression %T", e))
	}
	return e
}

func (c *checker) unary(e *cabs.Unary) {
	inner := c.rvalue(e.Expr)
	t := typeOf(inner)
	switch e.Op {
	case cabs.OpNot:
		if !ctypes.IsScalar(t) {
			fail(diag.Type(spanOf(e), "invalid operand to !: %s", t))
		}
		e.Expr = inner
		annotate(e, ctypes.Int(), false)
		return
	case cabs.OpBitNot:
		if !ctypes.IsInteger(t) {
			fail(diag.Type(spanOf(e), "invalid operand to ~: %s", t))
		}
	default:
		if !ctypes.IsArithmetic(t) {
			fail(diag.Type(spanOf(e), "invalid operand to unary %s: %s", e.Op, t))
		}
	}
	pt := ctypes.Promote(t)
	e.Expr = c.implicitCast(inner, pt)
	annotate(e, pt, false)
}

func (c *checker) binary(e *cabs.Binary) {
	l, r := c.rvalue(e.Left), c.rvalue(e.Right)
	lt, rt := typeOf(l), typeOf(r)
	span := spanOf(e)
	bad := func() {
		fail(diag.Type(span, "invalid operands to %s: %s and %s", e.Op, lt, rt))
	}

	switch {
	case e.Op == cabs.OpAnd || e.Op == cabs.OpOr:
		if !ctypes.IsScalar(lt) || !ctypes.IsScalar(rt) {
			bad()
		}
		e.Left, e.Right = l, r
		annotate(e, ctypes.Int(), false)
		return

	case e.Op.IsShift():
		if !ctypes.IsInteger(lt) || !ctypes.IsInteger(rt) {
			bad()
		}
		pt := ctypes.Promote(lt)
		e.Left, e.Right = c.implicitCast(l, pt), c.implicitCast(r, ctypes.Promote(rt))
		annotate(e, pt, false)
		return

	case ctypes.IsArithmetic(lt) && ctypes.IsArithmetic(rt):
		common := ctypes.CommonArithmetic(lt, rt)
		if (e.Op == cabs.OpMod || e.Op.IsBitwise()) && ctypes.IsDouble(common) {
			bad()
		}
		e.Left, e.Right = c.implicitCast(l, common), c.implicitCast(r, common)
		if e.Op.IsComparison() {
			annotate(e, ctypes.Int(), false)
		} else {
			annotate(e, common, false)
		}
		return
	}

	// At least one operand is a pointer.
	switch e.Op {
	case cabs.OpAdd:
		switch {
		case ctypes.IsPointerToComplete(lt) && ctypes.IsInteger(rt):
			e.Left, e.Right = l, c.implicitCast(r, ctypes.Long())
			annotate(e, lt, false)
		case ctypes.IsInteger(lt) && ctypes.IsPointerToComplete(rt):
			e.Left, e.Right = c.implicitCast(l, ctypes.Long()), r
			annotate(e, rt, false)
		default:
			bad()
		}
	case cabs.OpSub:
		switch {
		case ctypes.IsPointerToComplete(lt) && ctypes.IsInteger(rt):
			e.Left, e.Right = l, c.implicitCast(r, ctypes.Long())
			annotate(e, lt, false)
		case ctypes.IsPointerToComplete(lt) && ctypes.Equal(lt, rt):
			e.Left, e.Right = l, r
			annotate(e, ctypes.Long(), false)
		default:
			bad()
		}
	case cabs.OpEq, cabs.OpNe:
		if !ctypes.IsScalar(lt) || !ctypes.IsScalar(rt) || ctypes.IsDouble(lt) || ctypes.IsDouble(rt) {
			bad()
		}
		if !ctypes.IsPointer(lt) && !isNullPointerConstant(l) || !ctypes.IsPointer(rt) && !isNullPointerConstant(r) {
			bad()
		}
		common := c.commonPointerType(l, r, span)
		e.Left, e.Right = c.implicitCast(l, common), c.implicitCast(r, common)
		annotate(e, ctypes.Int(), false)
	case cabs.OpLt, cabs.OpLe, cabs.OpGt, cabs.OpGe:
		if !ctypes.IsPointer(lt) || !ctypes.IsPointer(rt) {
			bad()
		}
		common := c.commonPointerType(l, r, span)
		e.Left, e.Right = c.implicitCast(l, common), c.implicitCast(r, common)
		annotate(e, ctypes.Int(), false)
	default:
		bad()
	}
}

// assignable checks that e designates a modifiable lvalue.
func assignable(e cabs.Expr, span diag.Span) {
	if ctypes.IsArray(typeOf(e)) {
		fail(diag.Type(span, "array type %s is not assignable", typeOf(e)))
	}
	if !e.Annotation().Lvalue {
		fail(diag.Type(span, "expression is not assignable"))
	}
}

func (c *checker) assign(e *cabs.Assign) {
	span := spanOf(e)
	left := c.expr(e.Left)
	assignable(left, span)
	lt := typeOf(left)
	right := c.rvalue(e.Right)
	rt := typeOf(right)
	e.Left = left

	if e.Op == cabs.AssignPlain {
		e.Right = c.convertByAssignment(right, lt)
		annotate(e, lt, false)
		return
	}

	op := e.Op.Binary()
	bad := func() {
		fail(diag.Type(span, "invalid operands to %s: %s and %s", e.Op, lt, rt))
	}
	switch {
	case ctypes.IsPointer(lt):
		if (op != cabs.OpAdd && op != cabs.OpSub) || !ctypes.IsInteger(rt) || !ctypes.IsPointerToComplete(lt) {
			bad()
		}
		e.OpType = lt
		e.Right = c.implicitCast(right, ctypes.Long())
	case !ctypes.IsArithmetic(lt) || !ctypes.IsArithmetic(rt):
		bad()
	case op.IsShift():
		if !ctypes.IsInteger(lt) || !ctypes.IsInteger(rt) {
			bad()
		}
		e.OpType = ctypes.Promote(lt)
		e.Right = c.implicitCast(right, ctypes.Promote(rt))
	default:
		e.OpType = ctypes.CommonArithmetic(lt, rt)
		if (op == cabs.OpMod || op.IsBitwise()) && ctypes.IsDouble(e.OpType) {
			bad()
		}
		e.Right = c.implicitCast(right, e.OpType)
	}
	annotate(e, lt, false)
}

func (c *checker) conditional(e *cabs.Conditional) {
	e.Cond = c.condition(e.Cond)
	then, els := c.rvalue(e.Then), c.rvalue(e.Else)
	tt, et := typeOf(then), typeOf(els)
	var result ctypes.Type
	switch {
	case ctypes.IsVoid(tt) && ctypes.IsVoid(et):
		result = ctypes.Void()
	case ctypes.IsArithmetic(tt) && ctypes.IsArithmetic(et):
		result = ctypes.CommonArithmetic(tt, et)
	case ctypes.IsPointer(tt) || ctypes.IsPointer(et):
		result = c.commonPointerType(then, els, spanOf(e))
	default:
		fail(diag.Type(spanOf(e), "incompatible operand types %s and %s in conditional", tt, et))
	}
	e.Then, e.Else = c.implicitCast(then, result), c.implicitCast(els, result)
	annotate(e, result, false)
}

func (c *checker) call(e *cabs.FunctionCall) {
	entry, ok := c.syms.Lookup(e.Name)
	if !ok {
		panic(diag.Internal("sema: %s resolved but never declared", e.Name))
	}
	fn, isFun := entry.Type.(ctypes.Tfunction)
	if _, attrFun := entry.Attrs.(symbols.FunAttr); !isFun || !attrFun {
		fail(diag.Type(spanOf(e), "called object %s is not a function", e.Name))
	}
	if len(e.Args) != len(fn.Params) {
		fail(diag.Type(spanOf(e), "function %s expects %d arguments, got %d", e.Name, len(fn.Params), len(e.Args)))
	}
	for i, a := range e.Args {
		e.Args[i] = c.convertByAssignment(c.rvalue(a), fn.Params[i])
	}
	annotate(e, fn.Return, false)
}

func (c *checker) cast(e *cabs.Cast) {
	span := spanOf(e)
	switch {
	case ctypes.IsArray(e.Target):
		fail(diag.Type(span, "cannot cast to array type %s", e.Target))
	case ctypes.IsFunction(e.Target):
		fail(diag.Type(span, "cannot cast to function type %s", e.Target))
	}
	checkDerived(e.Target, span)
	inner := c.rvalue(e.Expr)
	from := typeOf(inner)
	switch {
	case ctypes.IsVoid(e.Target):
	case ctypes.IsVoid(from):
		fail(diag.Type(span, "cannot cast void expression to %s", e.Target))
	case ctypes.IsDouble(from) && ctypes.IsPointer(e.Target), ctypes.IsPointer(from) && ctypes.IsDouble(e.Target):
		fail(diag.Type(span, "cannot cast between %s and %s", from, e.Target))
	}
	e.Expr = inner
	annotate(e, e.Target, false)
}

func (c *checker) subscript(e *cabs.Subscript) {
	a, i := c.rvalue(e.Array), c.rvalue(e.Index)
	at, it := typeOf(a), typeOf(i)
	switch {
	case ctypes.IsPointerToComplete(at) && ctypes.IsInteger(it):
		e.Array, e.Index = a, c.implicitCast(i, ctypes.Long())
		annotate(e, ctypes.Elem(at), true)
	case ctypes.IsInteger(at) && ctypes.IsPointerToComplete(it):
		e.Array, e.Index = c.implicitCast(a, ctypes.Long()), i
		annotate(e, ctypes.Elem(it), true)
	default:
		fail(diag.Type(spanOf(e), "subscript requires a pointer to a complete type and an integer, got %s and %s", at, it))
	}
}

// incDec checks the operand of ++ or --.
func (c *checker) incDec(operand cabs.Expr, span diag.Span) cabs.Expr {
	e := c.expr(operand)
	assignable(e, span)
	t := typeOf(e)
	if !ctypes.IsArithmetic(t) && !ctypes.IsPointerToComplete(t) {
		fail(diag.Type(span, "cannot increment or decrement %s", t))
	}
	return e
}

func (c *checker) sizeof(e *cabs.Sizeof) {
	span := spanOf(e)
	t := e.Operand
	if e.Expr != nil {
		e.Expr = c.expr(e.Expr)
		t = typeOf(e.Expr)
	} else {
		checkDerived(t, span)
	}
	if !ctypes.IsComplete(t) {
		fail(diag.Type(span, "invalid application of sizeof to incomplete type %s", t))
	}
	annotate(e, ctypes.ULong(), false)
}
