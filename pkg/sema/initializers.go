package sema

import (
	"github.com/raymyers/tacky-cc/pkg/cabs"
	"github.com/raymyers/tacky-cc/pkg/consts"
	"github.com/raymyers/tacky-cc/pkg/ctypes"
	"github.com/raymyers/tacky-cc/pkg/diag"
	"github.com/raymyers/tacky-cc/pkg/symbols"
)

// stringFor reports whether init is a string literal initializing the
// character array t.
func stringFor(t ctypes.Type, init cabs.Initializer) (*cabs.StringLiteral, bool) {
	single, ok := init.(*cabs.SingleInit)
	if !ok {
		return nil, false
	}
	lit, ok := single.Expr.(*cabs.StringLiteral)
	if !ok {
		return nil, false
	}
	arr, ok := t.(ctypes.Tarray)
	return lit, ok && ctypes.IsCharacter(arr.Elem)
}

func checkStringFits(lit *cabs.StringLiteral, arr ctypes.Tarray) {
	if int64(len(lit.Value)) > arr.Size {
		fail(diag.Type(spanOf(lit), "initializer string of length %d is too long for %s", len(lit.Value), arr))
	}
}

// autoInitializer types an automatic initializer against t. Scalars in
// braces are unwrapped and arrays are padded with explicit zeros, so
// lowering sees one initializer per scalar element.
func (c *checker) autoInitializer(t ctypes.Type, init cabs.Initializer) cabs.Initializer {
	if lit, ok := stringFor(t, init); ok {
		checkStringFits(lit, t.(ctypes.Tarray))
		c.expr(lit)
		single := init.(*cabs.SingleInit)
		single.Type = t
		return single
	}
	switch init := init.(type) {
	case *cabs.SingleInit:
		if ctypes.IsArray(t) {
			fail(diag.Type(spanOf(init), "array %s must be initialized with a brace-enclosed list", t))
		}
		init.Expr = c.convertByAssignment(c.rvalue(init.Expr), t)
		init.Type = t
		return init
	case *cabs.CompoundInit:
		arr, ok := t.(ctypes.Tarray)
		if !ok {
			if len(init.Items) != 1 {
				fail(diag.Type(spanOf(init), "compound initializer for scalar type %s", t))
			}
			if _, nested := init.Items[0].(*cabs.SingleInit); !nested {
				fail(diag.Type(spanOf(init), "compound initializer for scalar type %s", t))
			}
			return c.autoInitializer(t, init.Items[0])
		}
		if int64(len(init.Items)) > arr.Size {
			fail(diag.Type(spanOf(init), "excess elements in initializer for %s", t))
		}
		for i, item := range init.Items {
			init.Items[i] = c.autoInitializer(arr.Elem, item)
		}
		for n := int64(len(init.Items)); n < arr.Size; n++ {
			init.Items = append(init.Items, c.zeroInitializer(arr.Elem, spanOf(init)))
		}
		init.Type = t
		return init
	}
	panic(diag.Internal("sema: unknown initializer %T", init))
}

// zeroInitializer builds the explicit zero initializer of type t.
func (c *checker) zeroInitializer(t ctypes.Type, span diag.Span) cabs.Initializer {
	if arr, ok := t.(ctypes.Tarray); ok {
		ci := &cabs.CompoundInit{Loc: newLoc(c.ctx, span), Type: t}
		for n := int64(0); n < arr.Size; n++ {
			ci.Items = append(ci.Items, c.zeroInitializer(arr.Elem, span))
		}
		return ci
	}
	zero := &cabs.Constant{Loc: newLoc(c.ctx, span), Value: consts.Zero(t)}
	annotate(zero, t, false)
	return &cabs.SingleInit{Loc: newLoc(c.ctx, span), Expr: zero, Type: t}
}

// staticInitializer flattens the initializer of a static object into
// StaticInit items covering exactly sizeof(t) bytes.
func (c *checker) staticInitializer(t ctypes.Type, init cabs.Initializer) []consts.StaticInit {
	return c.staticItems(t, init, nil)
}

func (c *checker) staticItems(t ctypes.Type, init cabs.Initializer, items []consts.StaticInit) []consts.StaticInit {
	if lit, ok := stringFor(t, init); ok {
		arr := t.(ctypes.Tarray)
		checkStringFits(lit, arr)
		c.expr(lit)
		init.(*cabs.SingleInit).Type = t
		n := int64(len(lit.Value))
		items = append(items, consts.StringInit{Value: lit.Value, NullTerminated: arr.Size > n})
		return consts.AppendZero(items, arr.Size-n-1)
	}
	switch init := init.(type) {
	case *cabs.SingleInit:
		if ctypes.IsArray(t) {
			fail(diag.Type(spanOf(init), "array %s must be initialized with a brace-enclosed list", t))
		}
		init.Expr = c.convertByAssignment(c.rvalue(init.Expr), t)
		init.Type = t
		item := c.constantItem(init.Expr, t)
		if s, ok := item.(consts.ScalarInit); ok && consts.IsZero(s.Value) && !isNegativeZero(s.Value) {
			return consts.AppendZero(items, ctypes.Sizeof(t))
		}
		return append(items, item)
	case *cabs.CompoundInit:
		arr, ok := t.(ctypes.Tarray)
		if !ok {
			if len(init.Items) != 1 {
				fail(diag.Type(spanOf(init), "compound initializer for scalar type %s", t))
			}
			if _, nested := init.Items[0].(*cabs.SingleInit); !nested {
				fail(diag.Type(spanOf(init), "compound initializer for scalar type %s", t))
			}
			return c.staticItems(t, init.Items[0], items)
		}
		if int64(len(init.Items)) > arr.Size {
			fail(diag.Type(spanOf(init), "excess elements in initializer for %s", t))
		}
		for _, item := range init.Items {
			items = c.staticItems(arr.Elem, item, items)
		}
		init.Type = t
		missing := arr.Size - int64(len(init.Items))
		return consts.AppendZero(items, missing*ctypes.Sizeof(arr.Elem))
	}
	panic(diag.Internal("sema: unknown initializer %T", init))
}

func isNegativeZero(c consts.Const) bool {
	d, ok := c.(consts.ConstDouble)
	return ok && d.Value == 0 && 1/d.Value < 0
}

// stripPointerCasts removes conversions between pointer types, which do
// not change an address constant.
func stripPointerCasts(e cabs.Expr) cabs.Expr {
	for {
		cast, ok := e.(*cabs.Cast)
		if !ok || !ctypes.IsPointer(cast.Target) || !ctypes.IsPointer(typeOf(cast.Expr)) {
			return e
		}
		e = cast.Expr
	}
}

// constantItem evaluates a typed static initializer expression.
func (c *checker) constantItem(e cabs.Expr, t ctypes.Type) consts.StaticInit {
	if !ctypes.IsPointer(t) {
		v, ok := foldConstant(e)
		if !ok {
			fail(diag.Type(spanOf(e), "initializer element is not a compile-time constant (static_non_const_array)"))
		}
		return consts.ScalarInit{Value: consts.Convert(v, t)}
	}
	switch inner := stripPointerCasts(e).(type) {
	case *cabs.Cast:
		if v, ok := foldConstant(inner.Expr); ok && ctypes.IsInteger(v.Type()) && consts.IsZero(v) {
			return consts.ScalarInit{Value: consts.ConstULong{Value: 0}}
		}
	case *cabs.AddressOf:
		if v, ok := inner.Expr.(*cabs.Var); ok && c.syms.IsStatic(v.Name) {
			return consts.PointerInit{Name: v.Name}
		}
	case *cabs.Decay:
		switch arr := inner.Expr.(type) {
		case *cabs.Var:
			if c.syms.IsStatic(arr.Name) {
				return consts.PointerInit{Name: arr.Name}
			}
		case *cabs.StringLiteral:
			return consts.PointerInit{Name: c.stringConstant(arr.Value)}
		}
	}
	fail(diag.Type(spanOf(e), "initializer element is not a compile-time constant (static_non_const_array)"))
	return nil
}

// stringConstant registers a read-only null-terminated copy of value and
// returns its name.
func (c *checker) stringConstant(value []byte) string {
	name := c.ctx.UniqueName("string")
	t := ctypes.Array(ctypes.Char(), int64(len(value))+1)
	c.syms.Set(name, t, symbols.ConstantAttr{Init: consts.StringInit{Value: value, NullTerminated: true}})
	return name
}
