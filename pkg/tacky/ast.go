// Package tacky defines TACKY, a flat three-address intermediate
// representation. Every operand is a constant or a named variable; the
// types of variables live in the translation unit's symbol table.
package tacky

import (
	"github.com/raymyers/tacky-cc/pkg/consts"
	"github.com/raymyers/tacky-cc/pkg/ctypes"
)

// Value is an instruction operand
type Value interface {
	implValue()
	String() string
}

// Constant is a typed literal operand
type Constant struct {
	Value consts.Const
}

// Var names a local, a temporary or a static object
type Var struct {
	Name string
}

func (Constant) implValue() {}
func (Var) implValue()      {}

func (c Constant) String() string { return c.Value.String() }
func (v Var) String() string      { return v.Name }

// UnaryOp is a unary arithmetic operator
type UnaryOp int

const (
	Complement UnaryOp = iota
	Negate
	Not
)

var unaryNames = []string{"Complement", "Negate", "Not"}
var unarySymbols = []string{"~", "-", "!"}

func (op UnaryOp) String() string { return unaryNames[op] }

// Symbol returns the C spelling of op.
func (op UnaryOp) Symbol() string { return unarySymbols[op] }

// BinaryOp is a binary arithmetic, bitwise or comparison operator. The
// operand types decide signed versus unsigned semantics.
type BinaryOp int

const (
	Add BinaryOp = iota
	Subtract
	Multiply
	Divide
	Remainder
	BitAnd
	BitOr
	BitXor
	ShiftLeft
	ShiftRight
	Equal
	NotEqual
	LessThan
	LessOrEqual
	GreaterThan
	GreaterOrEqual
)

var binaryNames = []string{
	"Add", "Sub", "Mult", "Div", "Rem", "BitAnd", "BitOr", "BitXor",
	"ShiftLeft", "ShiftRight", "Equal", "NotEqual", "LessThan", "LessOrEqual",
	"GreaterThan", "GreaterOrEqual",
}

var binarySymbols = []string{
	"+", "-", "*", "/", "%", "&", "|", "^", "<<", ">>", "==", "!=", "<", "<=", ">", ">=",
}

func (op BinaryOp) String() string { return binaryNames[op] }

// Symbol returns the C spelling of op.
func (op BinaryOp) Symbol() string { return binarySymbols[op] }

// Instruction is one TACKY instruction
type Instruction interface {
	implInstruction()
}

// Return leaves the function. Value is nil for void functions.
type Return struct {
	Value Value
}

// ConvertOp selects the conversion performed by a Convert instruction
type ConvertOp int

const (
	SignExtend ConvertOp = iota
	ZeroExtend
	Truncate
	DoubleToInt
	DoubleToUInt
	IntToDouble
	UIntToDouble
)

var convertNames = []string{"SignExtend", "ZeroExtend", "Truncate", "DoubleToInt", "DoubleToUInt", "IntToDouble", "UIntToDouble"}
var convertSpellings = []string{"sign_extend", "zero_extend", "truncate", "double_to_int", "double_to_uint", "int_to_double", "uint_to_double"}

func (op ConvertOp) String() string { return convertNames[op] }

// Convert changes the representation of Src into Dst's type
type Convert struct {
	Op  ConvertOp
	Src Value
	Dst Value
}

// Unary computes Dst = op Src
type Unary struct {
	Op  UnaryOp
	Src Value
	Dst Value
}

// Binary computes Dst = Src1 op Src2
type Binary struct {
	Op   BinaryOp
	Src1 Value
	Src2 Value
	Dst  Value
}

// Copy assigns Src to Dst
type Copy struct {
	Src Value
	Dst Value
}

// GetAddress stores the address of the object Src in Dst
type GetAddress struct {
	Src Value
	Dst Value
}

// Load reads the object Ptr points to
type Load struct {
	Ptr Value
	Dst Value
}

// Store writes Src to the object Ptr points to
type Store struct {
	Src Value
	Ptr Value
}

// AddPtr computes Dst = Ptr + Index*Scale, where Scale is the size of the
// pointee
type AddPtr struct {
	Ptr   Value
	Index Value
	Scale int64
	Dst   Value
}

// CopyToOffset writes Src at byte Offset inside the object Dst
type CopyToOffset struct {
	Src    Value
	Dst    string
	Offset int64
}

// CopyFromOffset reads the value at byte Offset inside the object Src
type CopyFromOffset struct {
	Src    string
	Offset int64
	Dst    Value
}

// Jump transfers control to Target
type Jump struct {
	Target string
}

// JumpIfZero transfers control to Target when Cond is zero
type JumpIfZero struct {
	Cond   Value
	Target string
}

// JumpIfNotZero transfers control to Target when Cond is not zero
type JumpIfNotZero struct {
	Cond   Value
	Target string
}

// Label marks a jump target
type Label struct {
	Name string
}

// FunCall calls Name. Dst is nil when the function returns void.
type FunCall struct {
	Name string
	Args []Value
	Dst  Value
}

func (Return) implInstruction()         {}
func (Convert) implInstruction()        {}
func (Unary) implInstruction()          {}
func (Binary) implInstruction()         {}
func (Copy) implInstruction()           {}
func (GetAddress) implInstruction()     {}
func (Load) implInstruction()           {}
func (Store) implInstruction()          {}
func (AddPtr) implInstruction()         {}
func (CopyToOffset) implInstruction()   {}
func (CopyFromOffset) implInstruction() {}
func (Jump) implInstruction()           {}
func (JumpIfZero) implInstruction()     {}
func (JumpIfNotZero) implInstruction()  {}
func (Label) implInstruction()          {}
func (FunCall) implInstruction()        {}

// TopLevel is a function or a static object
type TopLevel interface {
	implTopLevel()
}

// Function is a function definition with a flat instruction list
type Function struct {
	Name   string
	Global bool
	Params []string
	Body   []Instruction
}

// StaticVariable is an object with static storage duration
type StaticVariable struct {
	Name      string
	Global    bool
	Alignment int64
	Type      ctypes.Type
	Init      []consts.StaticInit
}

// StaticConstant is a read-only object such as a string literal
type StaticConstant struct {
	Name      string
	Alignment int64
	Type      ctypes.Type
	Init      consts.StaticInit
}

func (*Function) implTopLevel()       {}
func (*StaticVariable) implTopLevel() {}
func (*StaticConstant) implTopLevel() {}

// Program is a lowered translation unit: functions, then static
// variables, then static constants
type Program struct {
	TopLevels []TopLevel
}

// Functions returns the program's functions in order.
func (p *Program) Functions() []*Function {
	var out []*Function
	for _, t := range p.TopLevels {
		if f, ok := t.(*Function); ok {
			out = append(out, f)
		}
	}
	return out
}
