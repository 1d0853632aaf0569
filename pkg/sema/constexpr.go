package sema

import (
	"math"

	"github.com/raymyers/tacky-cc/pkg/cabs"
	"github.com/raymyers/tacky-cc/pkg/consts"
	"github.com/raymyers/tacky-cc/pkg/ctypes"
)

// foldConstant evaluates an arithmetic constant expression. It works on
// both untyped and typed trees: implicit casts inserted by the checker
// are ordinary casts here. The second result is false when e is not
// constant or its value is undefined (division by zero, bad shift).
func foldConstant(e cabs.Expr) (consts.Const, bool) {
	switch e := e.(type) {
	case *cabs.Constant:
		return e.Value, true
	case *cabs.Cast:
		v, ok := foldConstant(e.Expr)
		if !ok || !ctypes.IsArithmetic(e.Target) {
			return nil, false
		}
		return consts.Convert(v, e.Target), true
	case *cabs.Unary:
		v, ok := foldConstant(e.Expr)
		if !ok {
			return nil, false
		}
		return foldUnary(e.Op, v)
	case *cabs.Binary:
		l, ok := foldConstant(e.Left)
		if !ok {
			return nil, false
		}
		r, ok := foldConstant(e.Right)
		if !ok {
			return nil, false
		}
		return foldBinary(e.Op, l, r)
	case *cabs.Conditional:
		c, ok := foldConstant(e.Cond)
		if !ok {
			return nil, false
		}
		t, ok := foldConstant(e.Then)
		if !ok {
			return nil, false
		}
		f, ok := foldConstant(e.Else)
		if !ok {
			return nil, false
		}
		common := ctypes.CommonArithmetic(t.Type(), f.Type())
		if consts.IsZero(c) {
			return consts.Convert(f, common), true
		}
		return consts.Convert(t, common), true
	case *cabs.Sizeof:
		t := sizeofOperand(e)
		if t == nil || !ctypes.IsComplete(t) {
			return nil, false
		}
		return consts.ConstULong{Value: uint64(ctypes.Sizeof(t))}, true
	}
	return nil, false
}

func boolConst(b bool) consts.Const {
	if b {
		return consts.ConstInt{Value: 1}
	}
	return consts.ConstInt{Value: 0}
}

func foldUnary(op cabs.UnaryOp, v consts.Const) (consts.Const, bool) {
	if op == cabs.OpNot {
		return boolConst(consts.IsZero(v)), true
	}
	t := ctypes.Promote(v.Type())
	v = consts.Convert(v, t)
	switch op {
	case cabs.OpPlus:
		return v, true
	case cabs.OpNeg:
		if d, ok := v.(consts.ConstDouble); ok {
			return consts.ConstDouble{Value: -d.Value}, true
		}
		return consts.FromInt64(-consts.Int64(v), t), true
	case cabs.OpBitNot:
		if ctypes.IsDouble(t) {
			return nil, false
		}
		return consts.FromInt64(^consts.Int64(v), t), true
	}
	return nil, false
}

func foldBinary(op cabs.BinaryOp, l, r consts.Const) (consts.Const, bool) {
	switch op {
	case cabs.OpAnd:
		return boolConst(!consts.IsZero(l) && !consts.IsZero(r)), true
	case cabs.OpOr:
		return boolConst(!consts.IsZero(l) || !consts.IsZero(r)), true
	case cabs.OpShl, cabs.OpShr:
		return foldShift(op, l, r)
	}
	t := ctypes.CommonArithmetic(l.Type(), r.Type())
	l, r = consts.Convert(l, t), consts.Convert(r, t)

	if ctypes.IsDouble(t) {
		return foldDouble(op, consts.Float64(l), consts.Float64(r))
	}
	if op.IsComparison() {
		return boolConst(compareInts(op, l, r, ctypes.IsSigned(t))), true
	}
	if ctypes.IsSigned(t) {
		a, b := consts.Int64(l), consts.Int64(r)
		var v int64
		switch op {
		case cabs.OpAdd:
			v = a + b
		case cabs.OpSub:
			v = a - b
		case cabs.OpMul:
			v = a * b
		case cabs.OpDiv, cabs.OpMod:
			if b == 0 || (b == -1 && a == math.MinInt64) {
				return nil, false
			}
			if op == cabs.OpDiv {
				v = a / b
			} else {
				v = a % b
			}
		case cabs.OpBitAnd:
			v = a & b
		case cabs.OpBitOr:
			v = a | b
		case cabs.OpBitXor:
			v = a ^ b
		default:
			return nil, false
		}
		return consts.FromInt64(v, t), true
	}
	a, b := uint64(consts.Int64(l)), uint64(consts.Int64(r))
	var v uint64
	switch op {
	case cabs.OpAdd:
		v = a + b
	case cabs.OpSub:
		v = a - b
	case cabs.OpMul:
		v = a * b
	case cabs.OpDiv, cabs.OpMod:
		if b == 0 {
			return nil, false
		}
		if op == cabs.OpDiv {
			v = a / b
		} else {
			v = a % b
		}
	case cabs.OpBitAnd:
		v = a & b
	case cabs.OpBitOr:
		v = a | b
	case cabs.OpBitXor:
		v = a ^ b
	default:
		return nil, false
	}
	return consts.FromInt64(int64(v), t), true
}

func compareInts(op cabs.BinaryOp, l, r consts.Const, signed bool) bool {
	if signed {
		a, b := consts.Int64(l), consts.Int64(r)
		switch op {
		case cabs.OpLt:
			return a < b
		case cabs.OpLe:
			return a <= b
		case cabs.OpGt:
			return a > b
		case cabs.OpGe:
			return a >= b
		case cabs.OpEq:
			return a == b
		}
		return a != b
	}
	a, b := uint64(consts.Int64(l)), uint64(consts.Int64(r))
	switch op {
	case cabs.OpLt:
		return a < b
	case cabs.OpLe:
		return a <= b
	case cabs.OpGt:
		return a > b
	case cabs.OpGe:
		return a >= b
	case cabs.OpEq:
		return a == b
	}
	return a != b
}

func foldDouble(op cabs.BinaryOp, a, b float64) (consts.Const, bool) {
	switch op {
	case cabs.OpAdd:
		return consts.ConstDouble{Value: a + b}, true
	case cabs.OpSub:
		return consts.ConstDouble{Value: a - b}, true
	case cabs.OpMul:
		return consts.ConstDouble{Value: a * b}, true
	case cabs.OpDiv:
		return consts.ConstDouble{Value: a / b}, true
	case cabs.OpLt:
		return boolConst(a < b), true
	case cabs.OpLe:
		return boolConst(a <= b), true
	case cabs.OpGt:
		return boolConst(a > b), true
	case cabs.OpGe:
		return boolConst(a >= b), true
	case cabs.OpEq:
		return boolConst(a == b), true
	case cabs.OpNe:
		return boolConst(a != b), true
	}
	return nil, false
}

func foldShift(op cabs.BinaryOp, l, r consts.Const) (consts.Const, bool) {
	t := ctypes.Promote(l.Type())
	if !ctypes.IsInteger(t) || !ctypes.IsInteger(r.Type()) {
		return nil, false
	}
	l = consts.Convert(l, t)
	n := consts.Int64(r)
	if n < 0 || n >= ctypes.Sizeof(t)*8 {
		return nil, false
	}
	if op == cabs.OpShl {
		return consts.FromInt64(consts.Int64(l)<<uint(n), t), true
	}
	if ctypes.IsSigned(t) {
		return consts.FromInt64(consts.Int64(l)>>uint(n), t), true
	}
	return consts.FromInt64(int64(uint64(consts.Int64(l))>>uint(n)), t), true
}

// sizeofOperand returns the type sizeof measures, or nil when an untyped
// operand expression is not itself a constant.
func sizeofOperand(e *cabs.Sizeof) ctypes.Type {
	if e.Expr == nil {
		return e.Operand
	}
	if t := e.Expr.Annotation().Type; t != nil {
		return t
	}
	if v, ok := foldConstant(e.Expr); ok {
		return v.Type()
	}
	return nil
}
