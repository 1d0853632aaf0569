package tacky

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Printer outputs TACKY in a readable three-address form
type Printer struct {
	w io.Writer
}

// NewPrinter creates a new TACKY printer
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// String renders prog with a Printer.
func String(prog *Program) string {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintProgram(prog)
	return buf.String()
}

// PrintProgram prints every top-level item, separated by blank lines
func (p *Printer) PrintProgram(prog *Program) {
	for i, t := range prog.TopLevels {
		if i > 0 {
			fmt.Fprintln(p.w)
		}
		switch t := t.(type) {
		case *Function:
			p.PrintFunction(t)
		case *StaticVariable:
			fmt.Fprintf(p.w, "%sstatic %s: %s align %d = {%s}\n",
				globalPrefix(t.Global), t.Name, t.Type, t.Alignment, joinInits(t))
		case *StaticConstant:
			fmt.Fprintf(p.w, "static constant %s: %s align %d = %s\n",
				t.Name, t.Type, t.Alignment, t.Init)
		}
	}
}

func globalPrefix(global bool) string {
	if global {
		return "global "
	}
	return ""
}

func joinInits(v *StaticVariable) string {
	parts := make([]string, len(v.Init))
	for i, it := range v.Init {
		parts[i] = it.String()
	}
	return strings.Join(parts, ", ")
}

// PrintFunction prints one function with its instructions indented and
// its labels flush left
func (p *Printer) PrintFunction(f *Function) {
	fmt.Fprintf(p.w, "%sfunction %s(%s) {\n", globalPrefix(f.Global), f.Name, strings.Join(f.Params, ", "))
	for _, instr := range f.Body {
		if l, ok := instr.(Label); ok {
			fmt.Fprintf(p.w, "%s:\n", l.Name)
			continue
		}
		fmt.Fprintf(p.w, "    %s\n", Format(instr))
	}
	fmt.Fprintln(p.w, "}")
}

func args(vals []Value) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}

// Format renders one instruction in three-address form.
func Format(instr Instruction) string {
	switch i := instr.(type) {
	case Return:
		if i.Value == nil {
			return "return"
		}
		return "return " + i.Value.String()
	case Convert:
		return fmt.Sprintf("%s = %s %s", i.Dst, convertSpellings[i.Op], i.Src)
	case Unary:
		return fmt.Sprintf("%s = %s%s", i.Dst, i.Op.Symbol(), i.Src)
	case Binary:
		return fmt.Sprintf("%s = %s %s %s", i.Dst, i.Src1, i.Op.Symbol(), i.Src2)
	case Copy:
		return fmt.Sprintf("%s = %s", i.Dst, i.Src)
	case GetAddress:
		return fmt.Sprintf("%s = &%s", i.Dst, i.Src)
	case Load:
		return fmt.Sprintf("%s = *%s", i.Dst, i.Ptr)
	case Store:
		return fmt.Sprintf("*%s = %s", i.Ptr, i.Src)
	case AddPtr:
		return fmt.Sprintf("%s = add_ptr(%s, %s, scale=%d)", i.Dst, i.Ptr, i.Index, i.Scale)
	case CopyToOffset:
		return fmt.Sprintf("%s[%d] = %s", i.Dst, i.Offset, i.Src)
	case CopyFromOffset:
		return fmt.Sprintf("%s = %s[%d]", i.Dst, i.Src, i.Offset)
	case Jump:
		return "jump " + i.Target
	case JumpIfZero:
		return fmt.Sprintf("jump_if_zero(%s, %s)", i.Cond, i.Target)
	case JumpIfNotZero:
		return fmt.Sprintf("jump_if_not_zero(%s, %s)", i.Cond, i.Target)
	case Label:
		return i.Name + ":"
	case FunCall:
		if i.Dst == nil {
			return fmt.Sprintf("%s(%s)", i.Name, args(i.Args))
		}
		return fmt.Sprintf("%s = %s(%s)", i.Dst, i.Name, args(i.Args))
	}
	panic(fmt.Sprintf("tacky: unknown instruction %T", instr))
}

// DebugValue renders an operand as Constant(...) or Var(...).
func DebugValue(v Value) string {
	switch v := v.(type) {
	case Constant:
		return "Constant(" + v.Value.String() + ")"
	case Var:
		return "Var(" + v.Name + ")"
	case nil:
		return "None"
	}
	panic(fmt.Sprintf("tacky: unknown value %T", v))
}

func debugArgs(vals []Value) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = DebugValue(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Debug renders one instruction as its constructor with named fields,
// e.g. Binary{Op: Add, Src1: Var(a), Src2: Constant(1), Dst: Var(tmp.0)}.
func Debug(instr Instruction) string {
	switch i := instr.(type) {
	case Return:
		return fmt.Sprintf("Return{Value: %s}", DebugValue(i.Value))
	case Convert:
		return fmt.Sprintf("%s{Src: %s, Dst: %s}", i.Op, DebugValue(i.Src), DebugValue(i.Dst))
	case Unary:
		return fmt.Sprintf("Unary{Op: %s, Src: %s, Dst: %s}", i.Op, DebugValue(i.Src), DebugValue(i.Dst))
	case Binary:
		return fmt.Sprintf("Binary{Op: %s, Src1: %s, Src2: %s, Dst: %s}",
			i.Op, DebugValue(i.Src1), DebugValue(i.Src2), DebugValue(i.Dst))
	case Copy:
		return fmt.Sprintf("Copy{Src: %s, Dst: %s}", DebugValue(i.Src), DebugValue(i.Dst))
	case GetAddress:
		return fmt.Sprintf("GetAddress{Src: %s, Dst: %s}", DebugValue(i.Src), DebugValue(i.Dst))
	case Load:
		return fmt.Sprintf("Load{Ptr: %s, Dst: %s}", DebugValue(i.Ptr), DebugValue(i.Dst))
	case Store:
		return fmt.Sprintf("Store{Src: %s, Ptr: %s}", DebugValue(i.Src), DebugValue(i.Ptr))
	case AddPtr:
		return fmt.Sprintf("AddPtr{Ptr: %s, Index: %s, Scale: %d, Dst: %s}",
			DebugValue(i.Ptr), DebugValue(i.Index), i.Scale, DebugValue(i.Dst))
	case CopyToOffset:
		return fmt.Sprintf("CopyToOffset{Src: %s, Dst: %s, Offset: %d}", DebugValue(i.Src), i.Dst, i.Offset)
	case CopyFromOffset:
		return fmt.Sprintf("CopyFromOffset{Src: %s, Offset: %d, Dst: %s}", i.Src, i.Offset, DebugValue(i.Dst))
	case Jump:
		return fmt.Sprintf("Jump{Target: %s}", i.Target)
	case JumpIfZero:
		return fmt.Sprintf("JumpIfZero{Cond: %s, Target: %s}", DebugValue(i.Cond), i.Target)
	case JumpIfNotZero:
		return fmt.Sprintf("JumpIfNotZero{Cond: %s, Target: %s}", DebugValue(i.Cond), i.Target)
	case Label:
		return fmt.Sprintf("Label{Name: %s}", i.Name)
	case FunCall:
		return fmt.Sprintf("FunCall{Name: %s, Args: %s, Dst: %s}", i.Name, debugArgs(i.Args), DebugValue(i.Dst))
	}
	panic(fmt.Sprintf("tacky: unknown instruction %T", instr))
}
