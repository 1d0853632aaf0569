package cabs

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/raymyers/tacky-cc/pkg/consts"
	"github.com/raymyers/tacky-cc/pkg/ctypes"
)

// Printer outputs the AST as an indented tree
type Printer struct {
	w io.Writer
}

// NewPrinter creates a new AST printer
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// tree is one printed line plus its children.
type tree struct {
	label    string
	children []*tree
}

func (t *tree) add(children ...*tree) *tree {
	for _, c := range children {
		if c != nil {
			t.children = append(t.children, c)
		}
	}
	return t
}

func leaf(format string, args ...any) *tree {
	return &tree{label: fmt.Sprintf(format, args...)}
}

// wrap returns a structural node such as "Body" holding the given children.
func wrap(label string, children ...*tree) *tree {
	return (&tree{label: label}).add(children...)
}

func tag(n Node, format string, args ...any) *tree {
	return &tree{label: fmt.Sprintf("<%d> ", n.Location().ID) + fmt.Sprintf(format, args...)}
}

// PrintProgram prints a complete program
func (p *Printer) PrintProgram(prog *Program) {
	root := &tree{label: "Program"}
	for _, d := range prog.Decls {
		root.add(declTree(d))
	}
	p.render(root, "", true, true)
}

// String renders prog with a Printer.
func String(prog *Program) string {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintProgram(prog)
	return buf.String()
}

func (p *Printer) render(t *tree, prefix string, last, root bool) {
	childPrefix := prefix
	if root {
		fmt.Fprintln(p.w, t.label)
	} else {
		edge, cont := "├── ", "│   "
		if last {
			edge, cont = "╰── ", "    "
		}
		fmt.Fprintln(p.w, prefix+edge+t.label)
		childPrefix = prefix + cont
	}
	for i, c := range t.children {
		p.render(c, childPrefix, i == len(t.children)-1, false)
	}
}

func storageTree(s StorageClass) *tree {
	switch s {
	case StorageStatic:
		return leaf("Static")
	case StorageExtern:
		return leaf("Extern")
	}
	return nil
}

func typeTree(t ctypes.Type) *tree {
	return wrap("Type", leaf("%s", t))
}

func declTree(d Declaration) *tree {
	switch d := d.(type) {
	case *FunDecl:
		return funTree(d)
	case *VarDecl:
		return varTree(d)
	}
	panic(fmt.Sprintf("cabs: unknown declaration %T", d))
}

func funTree(f *FunDecl) *tree {
	t := tag(f, "Function [%s]", f.Name)
	t.add(storageTree(f.Storage))
	if fn, ok := f.Type.(ctypes.Tfunction); ok {
		t.add(wrap("Returns", leaf("%s", fn.Return)))
	}
	if len(f.Params) > 0 {
		params := wrap("Parameters")
		for _, prm := range f.Params {
			params.add(wrap(fmt.Sprintf("Param [%s]", prm.Name), typeTree(prm.Type)))
		}
		t.add(params)
	}
	if f.Body != nil {
		body := wrap("Body")
		for _, item := range f.Body.Items {
			body.add(itemTree(item))
		}
		t.add(body)
	}
	return t
}

func varTree(v *VarDecl) *tree {
	t := tag(v, "VarDeclaration")
	t.add(leaf("Name [%s]", v.Name), typeTree(v.Type), storageTree(v.Storage))
	if v.Init != nil {
		t.add(wrap("Initializer", initTree(v.Init)))
	}
	return t
}

func initTree(i Initializer) *tree {
	switch i := i.(type) {
	case *SingleInit:
		return exprTree(i.Expr)
	case *CompoundInit:
		t := tag(i, "Compound")
		for _, item := range i.Items {
			t.add(initTree(item))
		}
		return t
	}
	panic(fmt.Sprintf("cabs: unknown initializer %T", i))
}

func itemTree(item BlockItem) *tree {
	if d, ok := item.(Declaration); ok {
		return declTree(d)
	}
	return stmtTree(item.(Stmt))
}

func labeled(n Node, name, label string) *tree {
	if label == "" {
		return tag(n, "%s", name)
	}
	return tag(n, "%s [%s]", name, label)
}

func stmtTree(s Stmt) *tree {
	switch s := s.(type) {
	case *Return:
		t := tag(s, "Return")
		if s.Expr != nil {
			t.add(exprTree(s.Expr))
		}
		return t
	case *ExprStmt:
		return exprTree(s.Expr)
	case *If:
		t := tag(s, "If")
		t.add(wrap("Condition", exprTree(s.Cond)), wrap("Then", stmtTree(s.Then)))
		if s.Else != nil {
			t.add(wrap("Else", stmtTree(s.Else)))
		}
		return t
	case *Block:
		t := tag(s, "Block")
		for _, item := range s.Items {
			t.add(itemTree(item))
		}
		return t
	case *While:
		return labeled(s, "While", s.Label).add(
			wrap("Condition", exprTree(s.Cond)),
			wrap("Body", stmtTree(s.Body)))
	case *DoWhile:
		return labeled(s, "DoWhile", s.Label).add(
			wrap("Body", stmtTree(s.Body)),
			wrap("Condition", exprTree(s.Cond)))
	case *For:
		t := labeled(s, "For", s.Label)
		t.add(forInitTree(s.Init))
		if s.Cond != nil {
			t.add(wrap("Condition", exprTree(s.Cond)))
		}
		if s.Post != nil {
			t.add(wrap("Post", exprTree(s.Post)))
		}
		return t.add(wrap("Body", stmtTree(s.Body)))
	case *Switch:
		return labeled(s, "Switch", s.Label).add(
			wrap("Expression", exprTree(s.Expr)),
			wrap("Body", stmtTree(s.Body)))
	case *Case:
		return labeled(s, "Case", s.Label).add(
			wrap("Value", exprTree(s.Value)),
			stmtTree(s.Body))
	case *Default:
		return labeled(s, "Default", s.Label).add(stmtTree(s.Body))
	case *Break:
		return labeled(s, "Break", s.Label)
	case *Continue:
		return labeled(s, "Continue", s.Label)
	case *Null:
		return tag(s, "Empty")
	}
	panic(fmt.Sprintf("cabs: unknown statement %T", s))
}

func forInitTree(init ForInit) *tree {
	switch init := init.(type) {
	case *ForInitDecl:
		t := wrap("Init")
		for _, d := range init.Decls {
			t.add(varTree(d))
		}
		return t
	case *ForInitExpr:
		if init.Expr == nil {
			return nil
		}
		return wrap("Init", exprTree(init.Expr))
	}
	return nil
}

// exprLabel appends the analyzer's type annotation when present.
func exprLabel(e Expr, format string, args ...any) *tree {
	t := tag(e, format, args...)
	if typ := e.Annotation().Type; typ != nil {
		t.label += " : " + typ.String()
	}
	return t
}

func exprTree(e Expr) *tree {
	switch e := e.(type) {
	case *Constant:
		return tag(e, "Constant %s [%s]", e.Value.Type(), constLiteral(e))
	case *StringLiteral:
		return exprLabel(e, "String [\"%s\"]", consts.EscapeBytes(e.Value))
	case *Var:
		return exprLabel(e, "Var [%s]", e.Name)
	case *Unary:
		return exprLabel(e, "Unary [%s]", e.Op).add(exprTree(e.Expr))
	case *Binary:
		return exprLabel(e, "Binary [%s]", e.Op).add(exprTree(e.Left), exprTree(e.Right))
	case *Assign:
		return exprLabel(e, "Assign [%s]", e.Op).add(exprTree(e.Left), exprTree(e.Right))
	case *Conditional:
		return exprLabel(e, "Conditional [?]").add(
			exprTree(e.Cond), exprTree(e.Then), exprTree(e.Else))
	case *FunctionCall:
		t := exprLabel(e, "FunctionCall [%s]", e.Name)
		for _, a := range e.Args {
			t.add(exprTree(a))
		}
		return t
	case *Cast:
		name := "Cast"
		if e.Implicit {
			name = "ImplicitCast"
		}
		return exprLabel(e, "%s [%s]", name, e.Target).add(exprTree(e.Expr))
	case *AddressOf:
		return exprLabel(e, "AddressOf").add(exprTree(e.Expr))
	case *Dereference:
		return exprLabel(e, "Dereference").add(exprTree(e.Expr))
	case *Subscript:
		return exprLabel(e, "Subscript").add(exprTree(e.Array), exprTree(e.Index))
	case *Postfix:
		return exprLabel(e, "Postfix [%s]", e.Op).add(exprTree(e.Expr))
	case *Prefix:
		return exprLabel(e, "Prefix [%s]", e.Op).add(exprTree(e.Expr))
	case *Sizeof:
		if e.Operand != nil {
			return exprLabel(e, "SizeOfType").add(typeTree(e.Operand))
		}
		return exprLabel(e, "SizeOfExpr").add(exprTree(e.Expr))
	case *Decay:
		return exprLabel(e, "Decay").add(exprTree(e.Expr))
	}
	panic(fmt.Sprintf("cabs: unknown expression %T", e))
}

// constLiteral prints a constant without its type suffix.
func constLiteral(c *Constant) string {
	return strings.TrimRight(c.Value.String(), "ULD")
}
