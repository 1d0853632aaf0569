package sema

import (
	"github.com/raymyers/tacky-cc/pkg/cabs"
	"github.com/raymyers/tacky-cc/pkg/diag"
	"github.com/raymyers/tacky-cc/pkg/unit"
)

type scopeEntry struct {
	name    string
	linkage bool
}

// scope maps source names to internal names. Lookups fall through to
// the parent.
type scope struct {
	names  map[string]scopeEntry
	parent *scope
}

func newScope(parent *scope) *scope {
	return &scope{names: make(map[string]scopeEntry), parent: parent}
}

func (s *scope) lookup(name string) (scopeEntry, bool) {
	for ; s != nil; s = s.parent {
		if e, ok := s.names[name]; ok {
			return e, true
		}
	}
	return scopeEntry{}, false
}

type resolver struct {
	ctx *unit.Context
}

// Resolve renames every block-scope object to a fresh internal name and
// checks that every identifier refers to a visible declaration.
func Resolve(prog *cabs.Program, ctx *unit.Context) error {
	r := &resolver{ctx: ctx}
	return run(func() {
		file := newScope(nil)
		for _, d := range prog.Decls {
			switch d := d.(type) {
			case *cabs.FunDecl:
				r.funDecl(d, file)
			case *cabs.VarDecl:
				file.names[d.Name] = scopeEntry{name: d.Name, linkage: true}
				if d.Init != nil {
					r.initializer(d.Init, file)
				}
			}
		}
	})
}

func (r *resolver) funDecl(f *cabs.FunDecl, s *scope) {
	if prev, ok := s.names[f.Name]; ok && !prev.linkage {
		fail(diag.Name(diag.CodeLinkageConflict, spanOf(f), "%s redeclared as a function with linkage", f.Name))
	}
	s.names[f.Name] = scopeEntry{name: f.Name, linkage: true}

	inner := newScope(s)
	for i, p := range f.Params {
		if p.Name == "" {
			continue
		}
		if _, dup := inner.names[p.Name]; dup {
			fail(diag.Name(diag.CodeRedeclared, p.Span, "duplicate parameter %s", p.Name))
		}
		unique := r.ctx.UniqueName(p.Name)
		inner.names[p.Name] = scopeEntry{name: unique}
		f.Params[i].Name = unique
	}
	if f.Body != nil {
		r.items(f.Body.Items, inner)
	}
}

func (r *resolver) localVar(v *cabs.VarDecl, s *scope) {
	if prev, ok := s.names[v.Name]; ok {
		isExtern := v.Storage == cabs.StorageExtern
		switch {
		case prev.linkage != isExtern:
			fail(diag.Name(diag.CodeLinkageConflict, spanOf(v), "conflicting linkage for %s", v.Name))
		case !prev.linkage:
			fail(diag.Name(diag.CodeRedeclared, spanOf(v), "redeclaration of %s", v.Name))
		}
	}
	if v.Storage == cabs.StorageExtern {
		s.names[v.Name] = scopeEntry{name: v.Name, linkage: true}
		if v.Init != nil {
			r.initializer(v.Init, s)
		}
		return
	}
	unique := r.ctx.UniqueName(v.Name)
	s.names[v.Name] = scopeEntry{name: unique}
	v.Name = unique
	if v.Init != nil {
		r.initializer(v.Init, s)
	}
}

func (r *resolver) items(items []cabs.BlockItem, s *scope) {
	for _, item := range items {
		switch it := item.(type) {
		case *cabs.VarDecl:
			r.localVar(it, s)
		case *cabs.FunDecl:
			r.funDecl(it, s)
		case cabs.Stmt:
			r.stmt(it, s)
		}
	}
}

func (r *resolver) initializer(init cabs.Initializer, s *scope) {
	switch init := init.(type) {
	case *cabs.SingleInit:
		init.Expr = r.expr(init.Expr, s)
	case *cabs.CompoundInit:
		for _, item := range init.Items {
			r.initializer(item, s)
		}
	}
}

func (r *resolver) optExpr(e cabs.Expr, s *scope) cabs.Expr {
	if e == nil {
		return nil
	}
	return r.expr(e, s)
}

func (r *resolver) stmt(st cabs.Stmt, s *scope) {
	switch st := st.(type) {
	case *cabs.Return:
		st.Expr = r.optExpr(st.Expr, s)
	case *cabs.ExprStmt:
		st.Expr = r.expr(st.Expr, s)
	case *cabs.If:
		st.Cond = r.expr(st.Cond, s)
		r.stmt(st.Then, s)
		if st.Else != nil {
			r.stmt(st.Else, s)
		}
	case *cabs.Block:
		r.items(st.Items, newScope(s))
	case *cabs.While:
		st.Cond = r.expr(st.Cond, s)
		r.stmt(st.Body, s)
	case *cabs.DoWhile:
		r.stmt(st.Body, s)
		st.Cond = r.expr(st.Cond, s)
	case *cabs.For:
		inner := newScope(s)
		switch init := st.Init.(type) {
		case *cabs.ForInitDecl:
			for _, d := range init.Decls {
				r.localVar(d, inner)
			}
		case *cabs.ForInitExpr:
			init.Expr = r.optExpr(init.Expr, inner)
		}
		st.Cond = r.optExpr(st.Cond, inner)
		st.Post = r.optExpr(st.Post, inner)
		r.stmt(st.Body, inner)
	case *cabs.Switch:
		st.Expr = r.expr(st.Expr, s)
		r.stmt(st.Body, s)
	case *cabs.Case:
		st.Value = r.expr(st.Value, s)
		r.stmt(st.Body, s)
	case *cabs.Default:
		r.stmt(st.Body, s)
	case *cabs.Break, *cabs.Continue, *cabs.Null:
	default:
		panic(diag.Internal("sema: unknown statement %T", st))
	}
}

func (r *resolver) expr(e cabs.Expr, s *scope) cabs.Expr {
	switch e := e.(type) {
	case *cabs.Constant, *cabs.StringLiteral:
	case *cabs.Var:
		entry, ok := s.lookup(e.Name)
		if !ok {
			fail(diag.Name(diag.CodeUndeclared, spanOf(e), "undeclared identifier %s", e.Name))
		}
		e.Name = entry.name
	case *cabs.Unary:
		e.Expr = r.expr(e.Expr, s)
	case *cabs.Binary:
		e.Left = r.expr(e.Left, s)
		e.Right = r.expr(e.Right, s)
	case *cabs.Assign:
		e.Left = r.expr(e.Left, s)
		e.Right = r.expr(e.Right, s)
	case *cabs.Conditional:
		e.Cond = r.expr(e.Cond, s)
		e.Then = r.expr(e.Then, s)
		e.Else = r.expr(e.Else, s)
	case *cabs.FunctionCall:
		entry, ok := s.lookup(e.Name)
		if !ok {
			fail(diag.Name(diag.CodeUndeclared, spanOf(e), "undeclared function %s", e.Name))
		}
		e.Name = entry.name
		for i, a := range e.Args {
			e.Args[i] = r.expr(a, s)
		}
	case *cabs.Cast:
		e.Expr = r.expr(e.Expr, s)
	case *cabs.AddressOf:
		e.Expr = r.expr(e.Expr, s)
	case *cabs.Dereference:
		e.Expr = r.expr(e.Expr, s)
	case *cabs.Subscript:
		e.Array = r.expr(e.Array, s)
		e.Index = r.expr(e.Index, s)
	case *cabs.Postfix:
		e.Expr = r.expr(e.Expr, s)
	case *cabs.Prefix:
		e.Expr = r.expr(e.Expr, s)
	case *cabs.Sizeof:
		if e.Expr != nil {
			e.Expr = r.expr(e.Expr, s)
		}
	default:
		panic(diag.Internal("sema: unknown expression %T", e))
	}
	return e
}
