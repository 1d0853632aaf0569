// Package asmgen transforms TACKY to the assembly IR.
// Instruction lists carry over unchanged. Every automatic object and
// temporary a function touches gets a slot in its stack frame.
package asmgen

import (
	"github.com/raymyers/tacky-cc/pkg/asm"
	"github.com/raymyers/tacky-cc/pkg/ctypes"
	"github.com/raymyers/tacky-cc/pkg/diag"
	"github.com/raymyers/tacky-cc/pkg/symbols"
	"github.com/raymyers/tacky-cc/pkg/tacky"
)

// TransformProgram transforms a TACKY program to assembly, keeping the
// order of its top-level items
func TransformProgram(prog *tacky.Program, syms *symbols.Table) *asm.Program {
	result := &asm.Program{TopLevels: make([]asm.TopLevel, 0, len(prog.TopLevels))}
	for _, top := range prog.TopLevels {
		switch t := top.(type) {
		case *tacky.Function:
			result.TopLevels = append(result.TopLevels, transformFunction(t, syms))
		case *tacky.StaticVariable:
			result.TopLevels = append(result.TopLevels, &asm.StaticVariable{
				Name:      t.Name,
				Global:    t.Global,
				Alignment: t.Alignment,
				Init:      t.Init,
			})
		case *tacky.StaticConstant:
			result.TopLevels = append(result.TopLevels, &asm.StaticConstant{
				Name:      t.Name,
				Alignment: t.Alignment,
				Init:      t.Init,
			})
		default:
			panic(diag.Internal("asmgen: unknown top-level item %T", top))
		}
	}
	return result
}

func transformFunction(f *tacky.Function, syms *symbols.Table) *asm.Function {
	result := asm.NewFunction(f.Name, f.Global)
	result.Params = f.Params
	result.Append(f.Body...)
	result.Frame = ComputeFrame(f, syms)
	return result
}

// ComputeFrame lays out the automatic objects of f below the frame base.
// Parameters come first, then every other local in order of first use.
// Statics and functions live outside the frame.
func ComputeFrame(f *tacky.Function, syms *symbols.Table) asm.Frame {
	l := &layout{syms: syms, seen: make(map[string]bool)}
	for _, p := range f.Params {
		l.add(p)
	}
	for _, instr := range f.Body {
		for _, name := range names(instr) {
			l.add(name)
		}
	}
	return asm.Frame{Slots: l.slots, Size: alignUp(l.size, asm.StackAlignment)}
}

type layout struct {
	syms  *symbols.Table
	seen  map[string]bool
	slots []asm.Slot
	size  int64
}

func (l *layout) add(name string) {
	if l.seen[name] {
		return
	}
	l.seen[name] = true
	entry, ok := l.syms.Lookup(name)
	if !ok {
		panic(diag.Internal("asmgen: %s has no symbol", name))
	}
	if _, local := entry.Attrs.(symbols.LocalAttr); !local {
		return
	}
	size := ctypes.Sizeof(entry.Type)
	l.size = alignUp(l.size+size, ctypes.Alignof(entry.Type))
	l.slots = append(l.slots, asm.Slot{Name: name, Offset: -l.size, Size: size})
}

// alignUp rounds n up to a multiple of align (align > 0)
func alignUp(n, align int64) int64 {
	return (n + align - 1) / align * align
}

// names lists the variables an instruction reads or writes, in operand
// order.
func names(instr tacky.Instruction) []string {
	var out []string
	vars := func(vals ...tacky.Value) {
		for _, v := range vals {
			if v, ok := v.(tacky.Var); ok {
				out = append(out, v.Name)
			}
		}
	}
	switch i := instr.(type) {
	case tacky.Return:
		vars(i.Value)
	case tacky.Convert:
		vars(i.Src, i.Dst)
	case tacky.Unary:
		vars(i.Src, i.Dst)
	case tacky.Binary:
		vars(i.Src1, i.Src2, i.Dst)
	case tacky.Copy:
		vars(i.Src, i.Dst)
	case tacky.GetAddress:
		vars(i.Src, i.Dst)
	case tacky.Load:
		vars(i.Ptr, i.Dst)
	case tacky.Store:
		vars(i.Src, i.Ptr)
	case tacky.AddPtr:
		vars(i.Ptr, i.Index, i.Dst)
	case tacky.CopyToOffset:
		vars(i.Src)
		out = append(out, i.Dst)
	case tacky.CopyFromOffset:
		out = append(out, i.Src)
		vars(i.Dst)
	case tacky.JumpIfZero:
		vars(i.Cond)
	case tacky.JumpIfNotZero:
		vars(i.Cond)
	case tacky.FunCall:
		vars(i.Args...)
		vars(i.Dst)
	case tacky.Jump, tacky.Label:
	default:
		panic(diag.Internal("asmgen: unknown instruction %T", instr))
	}
	return out
}
