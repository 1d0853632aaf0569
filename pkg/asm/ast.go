// Package asm defines the assembly representation.
// Instructions stay in their three-address form; this layer fixes
// linkage, alignment and the stack frame of every function.
package asm

import (
	"github.com/raymyers/tacky-cc/pkg/consts"
	"github.com/raymyers/tacky-cc/pkg/tacky"
)

// Instruction is one instruction of a function body.
type Instruction = tacky.Instruction

// TopLevel is a function, a static variable or a static constant.
type TopLevel interface {
	implTopLevel()
}

// Slot is the stack home of one automatic object or temporary.
// Offset is negative, relative to the frame base.
type Slot struct {
	Name   string
	Offset int64
	Size   int64
}

// Frame is the activation record of a function.
type Frame struct {
	Slots []Slot
	Size  int64 // rounded up to StackAlignment
}

// Lookup returns the slot holding name.
func (f *Frame) Lookup(name string) (Slot, bool) {
	for _, s := range f.Slots {
		if s.Name == name {
			return s, true
		}
	}
	return Slot{}, false
}

// StackAlignment is the alignment of every frame size.
const StackAlignment = 16

// Function represents an assembly function
type Function struct {
	Name         string
	Global       bool
	Params       []string
	Instructions []Instruction
	Frame        Frame
}

// StaticVariable represents a writable object with static storage.
type StaticVariable struct {
	Name      string
	Global    bool
	Alignment int64
	Init      []consts.StaticInit
}

// StaticConstant represents a read-only object, such as a string literal.
type StaticConstant struct {
	Name      string
	Alignment int64
	Init      consts.StaticInit
}

func (*Function) implTopLevel()       {}
func (*StaticVariable) implTopLevel() {}
func (*StaticConstant) implTopLevel() {}

// Program represents a complete assembly program
type Program struct {
	TopLevels []TopLevel
}

// NewFunction creates a new assembly function
func NewFunction(name string, global bool) *Function {
	return &Function{
		Name:         name,
		Global:       global,
		Instructions: make([]Instruction, 0),
	}
}

// Append adds instructions to the function
func (f *Function) Append(instrs ...Instruction) {
	f.Instructions = append(f.Instructions, instrs...)
}

// Functions returns the functions of the program in order.
func (p *Program) Functions() []*Function {
	var fns []*Function
	for _, top := range p.TopLevels {
		if f, ok := top.(*Function); ok {
			fns = append(fns, f)
		}
	}
	return fns
}
