package asm

import (
	"bytes"
	"fmt"
	"io"

	"github.com/raymyers/tacky-cc/pkg/tacky"
)

// Printer outputs the assembly IR, one instruction per line in debug form
type Printer struct {
	w io.Writer
}

// NewPrinter creates a new assembly printer
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// String renders prog with a Printer.
func String(prog *Program) string {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintProgram(prog)
	return buf.String()
}

// PrintProgram outputs an entire program
func (p *Printer) PrintProgram(prog *Program) {
	for i, t := range prog.TopLevels {
		if i > 0 {
			fmt.Fprintln(p.w)
		}
		switch t := t.(type) {
		case *Function:
			p.printFunction(t)
		case *StaticVariable:
			fmt.Fprintf(p.w, "%s[%d] static %s =\n", globalPrefix(t.Global), t.Alignment, t.Name)
			for _, init := range t.Init {
				fmt.Fprintf(p.w, "    %s\n", init)
			}
		case *StaticConstant:
			fmt.Fprintf(p.w, "[%d] constant %s =\n", t.Alignment, t.Name)
			fmt.Fprintf(p.w, "    %s\n", t.Init)
		}
	}
}

func globalPrefix(global bool) string {
	if global {
		return "global "
	}
	return ""
}

func (p *Printer) printFunction(f *Function) {
	fmt.Fprintf(p.w, "%sfunction %s\n", globalPrefix(f.Global), f.Name)
	for _, instr := range f.Instructions {
		fmt.Fprintf(p.w, "    %s\n", tacky.Debug(instr))
	}
}

// PrintFrame outputs the stack slots of f, one per line.
func (p *Printer) PrintFrame(f *Function) {
	fmt.Fprintf(p.w, "frame %s size=%d\n", f.Name, f.Frame.Size)
	for _, s := range f.Frame.Slots {
		fmt.Fprintf(p.w, "    %s: %d(%d)\n", s.Name, s.Offset, s.Size)
	}
}
