package sema

import (
	"github.com/raymyers/tacky-cc/pkg/cabs"
	"github.com/raymyers/tacky-cc/pkg/consts"
	"github.com/raymyers/tacky-cc/pkg/ctypes"
	"github.com/raymyers/tacky-cc/pkg/diag"
	"github.com/raymyers/tacky-cc/pkg/symbols"
	"github.com/raymyers/tacky-cc/pkg/unit"
)

// checker annotates expressions with types, inserts implicit conversions
// and fills the symbol table.
type checker struct {
	ctx     *unit.Context
	syms    *symbols.Table
	retType ctypes.Type
}

// TypeCheck annotates every expression of prog with its type and value
// category and records every declaration in ctx.Symbols.
func TypeCheck(prog *cabs.Program, ctx *unit.Context) error {
	c := &checker{ctx: ctx, syms: ctx.Symbols}
	return run(func() {
		for _, d := range prog.Decls {
			switch d := d.(type) {
			case *cabs.FunDecl:
				c.funDecl(d, false)
			case *cabs.VarDecl:
				c.fileVar(d)
			}
		}
	})
}

// checkObjectType rejects void objects and arrays of incomplete type
// anywhere inside t.
func checkObjectType(t ctypes.Type, span diag.Span, what string) {
	if ctypes.IsVoid(t) {
		fail(diag.Type(span, "%s declared with type void", what))
	}
	checkDerived(t, span)
}

func checkDerived(t ctypes.Type, span diag.Span) {
	switch t := t.(type) {
	case ctypes.Tarray:
		if !ctypes.IsComplete(t.Elem) {
			fail(diag.Type(span, "array has incomplete element type %s", t.Elem))
		}
		checkDerived(t.Elem, span)
	case ctypes.Tpointer:
		checkDerived(t.Elem, span)
	case ctypes.Tfunction:
		for _, p := range t.Params {
			checkDerived(p, span)
		}
		checkDerived(t.Return, span)
	}
}

// adjustParam turns an array parameter into a pointer to its element.
func adjustParam(t ctypes.Type) ctypes.Type {
	if arr, ok := t.(ctypes.Tarray); ok {
		return ctypes.Pointer(arr.Elem)
	}
	return t
}

func (c *checker) funDecl(f *cabs.FunDecl, blockScope bool) {
	span := spanOf(f)
	if blockScope {
		if f.Body != nil {
			fail(diag.Type(span, "nested function definition of %s", f.Name))
		}
		if f.Storage == cabs.StorageStatic {
			fail(diag.Type(span, "block-scope function %s cannot be static", f.Name))
		}
	}
	fn := f.Type.(ctypes.Tfunction)
	checkDerived(fn.Return, span)
	params := make([]ctypes.Type, len(f.Params))
	for i, p := range f.Params {
		checkObjectType(p.Type, p.Span, "parameter "+p.Name)
		params[i] = adjustParam(p.Type)
		f.Params[i].Type = params[i]
	}
	fn = ctypes.Function(params, fn.Return).(ctypes.Tfunction)
	f.Type = fn

	global := f.Storage != cabs.StorageStatic
	defined := f.Body != nil
	if prev, ok := c.syms.Lookup(f.Name); ok {
		attr, isFun := prev.Attrs.(symbols.FunAttr)
		if !isFun || !ctypes.Equal(prev.Type, fn) {
			fail(diag.Type(span, "conflicting types for %s", f.Name))
		}
		if attr.Defined && defined {
			fail(diag.Type(span, "redefinition of function %s", f.Name))
		}
		if attr.Global && f.Storage == cabs.StorageStatic {
			fail(diag.Name(diag.CodeLinkageConflict, span, "static declaration of %s follows non-static declaration", f.Name))
		}
		global = attr.Global
		defined = defined || attr.Defined
	}
	c.syms.Set(f.Name, fn, symbols.FunAttr{Defined: defined, Global: global})

	if f.Body == nil {
		return
	}
	for _, p := range f.Params {
		c.syms.AddLocal(p.Name, p.Type)
	}
	c.retType = fn.Return
	c.items(f.Body.Items)
	c.retType = nil
}

func (c *checker) fileVar(v *cabs.VarDecl) {
	span := spanOf(v)
	checkObjectType(v.Type, span, "variable "+v.Name)

	var init symbols.InitialValue
	switch {
	case v.Init != nil:
		init = symbols.Initial{Items: c.staticInitializer(v.Type, v.Init)}
	case v.Storage == cabs.StorageExtern:
		init = symbols.NoInitializer{}
	default:
		init = symbols.Tentative{}
	}
	global := v.Storage != cabs.StorageStatic

	if prev, ok := c.syms.Lookup(v.Name); ok {
		attr, isStatic := prev.Attrs.(symbols.StaticAttr)
		if !isStatic {
			fail(diag.Type(span, "%s redeclared as a different kind of symbol", v.Name))
		}
		if !ctypes.Equal(prev.Type, v.Type) {
			fail(diag.Type(span, "conflicting types for %s", v.Name))
		}
		if v.Storage == cabs.StorageExtern {
			global = attr.Global
		} else if attr.Global != global {
			fail(diag.Name(diag.CodeLinkageConflict, span, "conflicting linkage for %s", v.Name))
		}
		init = mergeInitial(attr.Init, init, v, span)
	}
	c.syms.Set(v.Name, v.Type, symbols.StaticAttr{Init: init, Global: global})
}

// mergeInitial combines two file-scope declarations of one object.
func mergeInitial(prev, next symbols.InitialValue, v *cabs.VarDecl, span diag.Span) symbols.InitialValue {
	_, prevInit := prev.(symbols.Initial)
	_, nextInit := next.(symbols.Initial)
	switch {
	case prevInit && nextInit:
		fail(diag.Type(span, "redefinition of %s", v.Name))
	case prevInit:
		return prev
	case nextInit:
		return next
	}
	if _, ok := prev.(symbols.Tentative); ok {
		return prev
	}
	return next
}

func (c *checker) localVar(v *cabs.VarDecl) {
	span := spanOf(v)
	checkObjectType(v.Type, span, "variable "+v.Name)
	switch v.Storage {
	case cabs.StorageExtern:
		if v.Init != nil {
			fail(diag.Type(span, "initializer on local extern declaration of %s", v.Name))
		}
		if prev, ok := c.syms.Lookup(v.Name); ok {
			if _, isStatic := prev.Attrs.(symbols.StaticAttr); !isStatic {
				fail(diag.Type(span, "%s redeclared as a different kind of symbol", v.Name))
			}
			if !ctypes.Equal(prev.Type, v.Type) {
				fail(diag.Type(span, "conflicting types for %s", v.Name))
			}
			return
		}
		c.syms.Set(v.Name, v.Type, symbols.StaticAttr{Init: symbols.NoInitializer{}, Global: true})
	case cabs.StorageStatic:
		var items []consts.StaticInit
		if v.Init != nil {
			items = c.staticInitializer(v.Type, v.Init)
		} else {
			items = consts.AppendZero(nil, ctypes.Sizeof(v.Type))
		}
		c.syms.Set(v.Name, v.Type, symbols.StaticAttr{Init: symbols.Initial{Items: items}})
	default:
		c.syms.AddLocal(v.Name, v.Type)
		if v.Init != nil {
			v.Init = c.autoInitializer(v.Type, v.Init)
		}
	}
}

func (c *checker) items(items []cabs.BlockItem) {
	for _, item := range items {
		switch it := item.(type) {
		case *cabs.VarDecl:
			c.localVar(it)
		case *cabs.FunDecl:
			c.funDecl(it, true)
		case cabs.Stmt:
			c.stmt(it)
		}
	}
}

// condition types a controlling expression, which must be scalar.
func (c *checker) condition(e cabs.Expr) cabs.Expr {
	e = c.rvalue(e)
	if !ctypes.IsScalar(typeOf(e)) {
		fail(diag.Type(spanOf(e), "controlling expression must have scalar type, not %s", typeOf(e)))
	}
	return e
}

func (c *checker) stmt(s cabs.Stmt) {
	switch s := s.(type) {
	case *cabs.Return:
		c.returnStmt(s)
	case *cabs.ExprStmt:
		s.Expr = c.rvalue(s.Expr)
	case *cabs.If:
		s.Cond = c.condition(s.Cond)
		c.stmt(s.Then)
		if s.Else != nil {
			c.stmt(s.Else)
		}
	case *cabs.Block:
		c.items(s.Items)
	case *cabs.While:
		s.Cond = c.condition(s.Cond)
		c.stmt(s.Body)
	case *cabs.DoWhile:
		c.stmt(s.Body)
		s.Cond = c.condition(s.Cond)
	case *cabs.For:
		switch init := s.Init.(type) {
		case *cabs.ForInitDecl:
			for _, d := range init.Decls {
				if d.Storage != cabs.StorageNone {
					fail(diag.Type(spanOf(d), "storage class not allowed in for loop initializer"))
				}
				c.localVar(d)
			}
		case *cabs.ForInitExpr:
			if init.Expr != nil {
				init.Expr = c.rvalue(init.Expr)
			}
		}
		if s.Cond != nil {
			s.Cond = c.condition(s.Cond)
		}
		if s.Post != nil {
			s.Post = c.rvalue(s.Post)
		}
		c.stmt(s.Body)
	case *cabs.Switch:
		c.switchStmt(s)
	case *cabs.Case:
		s.Value = c.rvalue(s.Value)
		c.stmt(s.Body)
	case *cabs.Default:
		c.stmt(s.Body)
	case *cabs.Break, *cabs.Continue, *cabs.Null:
	default:
		panic(diag.Internal("sema: unknown statement %T", s))
	}
}

func (c *checker) returnStmt(s *cabs.Return) {
	if s.Expr == nil {
		if !ctypes.IsVoid(c.retType) {
			fail(diag.Type(spanOf(s), "non-void function should return a value"))
		}
		return
	}
	if ctypes.IsVoid(c.retType) {
		fail(diag.Type(spanOf(s), "void function should not return a value"))
	}
	s.Expr = c.convertByAssignment(c.rvalue(s.Expr), c.retType)
}

// switchStmt promotes the controlling expression and converts every case
// value to its type, rejecting duplicates after conversion.
func (c *checker) switchStmt(s *cabs.Switch) {
	e := c.rvalue(s.Expr)
	if !ctypes.IsInteger(typeOf(e)) {
		fail(diag.Type(spanOf(e), "switch quantity must have integer type, not %s", typeOf(e)))
	}
	t := ctypes.Promote(typeOf(e))
	s.Expr = c.implicitCast(e, t)

	seen := make(map[int64]bool)
	for _, cs := range s.Cases {
		if cs.IsDefault {
			continue
		}
		if !ctypes.IsInteger(cs.Value.Type()) {
			fail(diag.Type(cs.Span, "case value must be an integer"))
		}
		cs.Value = consts.Convert(cs.Value, t)
		v := consts.Int64(cs.Value)
		if seen[v] {
			fail(diag.ControlFlow(diag.CodeDuplicateCase, cs.Span, "duplicate case value %s", cs.Value))
		}
		seen[v] = true
	}
	c.stmt(s.Body)
}
