// Package cabs defines the abstract syntax tree for C. Nodes are built by
// the parser and annotated once by the semantic analyzer.
package cabs

import (
	"github.com/raymyers/tacky-cc/pkg/consts"
	"github.com/raymyers/tacky-cc/pkg/ctypes"
	"github.com/raymyers/tacky-cc/pkg/diag"
)

// Loc carries a node's unique id and source span.
type Loc struct {
	ID   int
	Span diag.Span
}

// Location returns the node's id and span.
func (l *Loc) Location() *Loc { return l }

// Typed is the annotation the analyzer attaches to every expression.
type Typed struct {
	Type   ctypes.Type
	Lvalue bool
}

// Annotation returns the expression's type annotation.
func (t *Typed) Annotation() *Typed { return t }

// Node is the base interface for all AST nodes
type Node interface {
	Location() *Loc
	implCabsNode()
}

// Expr is the interface for all expression nodes
type Expr interface {
	Node
	Annotation() *Typed
	implCabsExpr()
}

// Stmt is the interface for all statement nodes
type Stmt interface {
	BlockItem
	implCabsStmt()
}

// BlockItem is a statement or a declaration inside a block.
type BlockItem interface {
	Node
	implBlockItem()
}

// Declaration is a variable or function declaration.
type Declaration interface {
	BlockItem
	implDeclaration()
}

// Initializer is a scalar or brace-enclosed initializer.
type Initializer interface {
	Node
	InitType() ctypes.Type
	implInitializer()
}

// BinaryOp represents binary operators
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNe
	OpAnd // &&
	OpOr  // ||
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl // <<
	OpShr // >>
)

func (op BinaryOp) String() string {
	names := []string{"+", "-", "*", "/", "%", "<", "<=", ">", ">=", "==", "!=", "&&", "||", "&", "|", "^", "<<", ">>"}
	if int(op) < len(names) {
		return names[op]
	}
	return "?"
}

// IsComparison reports whether op yields an int truth value.
func (op BinaryOp) IsComparison() bool {
	switch op {
	case OpLt, OpLe, OpGt, OpGe, OpEq, OpNe:
		return true
	}
	return false
}

// IsBitwise reports whether op is &, | or ^.
func (op BinaryOp) IsBitwise() bool {
	return op == OpBitAnd || op == OpBitOr || op == OpBitXor
}

// IsShift reports whether op is << or >>.
func (op BinaryOp) IsShift() bool {
	return op == OpShl || op == OpShr
}

// UnaryOp represents unary operators
type UnaryOp int

const (
	OpNeg    UnaryOp = iota // -
	OpNot                   // !
	OpBitNot                // ~
	OpPlus                  // +
)

func (op UnaryOp) String() string {
	names := []string{"-", "!", "~", "+"}
	if int(op) < len(names) {
		return names[op]
	}
	return "?"
}

// AssignOp represents = and the compound assignment operators
type AssignOp int

const (
	AssignPlain AssignOp = iota
	AssignAdd
	AssignSub
	AssignMul
	AssignDiv
	AssignMod
	AssignBitAnd
	AssignBitOr
	AssignBitXor
	AssignShl
	AssignShr
)

func (op AssignOp) String() string {
	names := []string{"=", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<=", ">>="}
	if int(op) < len(names) {
		return names[op]
	}
	return "?"
}

// Binary returns the arithmetic operator of a compound assignment.
func (op AssignOp) Binary() BinaryOp {
	ops := []BinaryOp{OpAdd, OpAdd, OpSub, OpMul, OpDiv, OpMod, OpBitAnd, OpBitOr, OpBitXor, OpShl, OpShr}
	return ops[op]
}

// IncDec distinguishes ++ from --
type IncDec int

const (
	Inc IncDec = iota
	Dec
)

func (op IncDec) String() string {
	if op == Inc {
		return "++"
	}
	return "--"
}

// StorageClass is the optional storage class of a declaration
type StorageClass int

const (
	StorageNone StorageClass = iota
	StorageStatic
	StorageExtern
)

func (s StorageClass) String() string {
	switch s {
	case StorageStatic:
		return "static"
	case StorageExtern:
		return "extern"
	}
	return ""
}

// --- Expressions ---

// Constant represents an arithmetic literal
type Constant struct {
	Loc
	Typed
	Value consts.Const
}

// StringLiteral represents a (possibly concatenated) string literal
type StringLiteral struct {
	Loc
	Typed
	Value []byte
}

// Var represents an identifier expression
type Var struct {
	Loc
	Typed
	Name string
}

// Unary represents a unary arithmetic expression
type Unary struct {
	Loc
	Typed
	Op   UnaryOp
	Expr Expr
}

// Binary represents a binary expression
type Binary struct {
	Loc
	Typed
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// Assign represents plain and compound assignment. For compound forms
// OpType is the type the operation is carried out in.
type Assign struct {
	Loc
	Typed
	Op     AssignOp
	Left   Expr
	Right  Expr
	OpType ctypes.Type
}

// Conditional represents the ternary operator: cond ? then : else
type Conditional struct {
	Loc
	Typed
	Cond Expr
	Then Expr
	Else Expr
}

// FunctionCall represents a call of a named function
type FunctionCall struct {
	Loc
	Typed
	Name string
	Args []Expr
}

// Cast represents an explicit cast or, when Implicit, a conversion
// inserted by the analyzer
type Cast struct {
	Loc
	Typed
	Target   ctypes.Type
	Expr     Expr
	Implicit bool
}

// AddressOf represents &e
type AddressOf struct {
	Loc
	Typed
	Expr Expr
}

// Dereference represents *e
type Dereference struct {
	Loc
	Typed
	Expr Expr
}

// Subscript represents array subscript access: arr[idx]
type Subscript struct {
	Loc
	Typed
	Array Expr
	Index Expr
}

// Postfix represents e++ and e--
type Postfix struct {
	Loc
	Typed
	Op   IncDec
	Expr Expr
}

// Prefix represents ++e and --e
type Prefix struct {
	Loc
	Typed
	Op   IncDec
	Expr Expr
}

// Sizeof represents sizeof applied to an expression (Expr set) or to a
// type name (Operand set)
type Sizeof struct {
	Loc
	Typed
	Expr    Expr
	Operand ctypes.Type
}

// Decay marks the conversion of an array lvalue to a pointer to its first
// element. Only the analyzer creates it.
type Decay struct {
	Loc
	Typed
	Expr Expr
}

// --- Initializers ---

// SingleInit initializes with one expression
type SingleInit struct {
	Loc
	Expr Expr
	Type ctypes.Type
}

// CompoundInit is a brace-enclosed initializer list
type CompoundInit struct {
	Loc
	Items []Initializer
	Type  ctypes.Type
}

func (i *SingleInit) InitType() ctypes.Type   { return i.Type }
func (i *CompoundInit) InitType() ctypes.Type { return i.Type }

// --- Statements ---

// Return represents a return statement
type Return struct {
	Loc
	Expr Expr // nil for bare return
}

// ExprStmt represents an expression statement
type ExprStmt struct {
	Loc
	Expr Expr
}

// If represents if/else
type If struct {
	Loc
	Cond Expr
	Then Stmt
	Else Stmt // nil if absent
}

// Block represents a compound statement (block)
type Block struct {
	Loc
	Items []BlockItem
}

// While represents a while loop
type While struct {
	Loc
	Cond  Expr
	Body  Stmt
	Label string
}

// DoWhile represents a do/while loop
type DoWhile struct {
	Loc
	Body  Stmt
	Cond  Expr
	Label string
}

// ForInit is the first clause of a for loop
type ForInit interface {
	Node
	implForInit()
}

// ForInitDecl declares loop variables
type ForInitDecl struct {
	Loc
	Decls []*VarDecl
}

// ForInitExpr evaluates an optional expression
type ForInitExpr struct {
	Loc
	Expr Expr // may be nil
}

// For represents a for loop
type For struct {
	Loc
	Init  ForInit
	Cond  Expr // may be nil
	Post  Expr // may be nil
	Body  Stmt
	Label string
}

// CaseInfo records one case or default of a switch for lowering.
type CaseInfo struct {
	Value     consts.Const // nil for default
	Label     string
	IsDefault bool
	Span      diag.Span
}

// Switch represents a switch statement
type Switch struct {
	Loc
	Expr  Expr
	Body  Stmt
	Label string
	Cases []*CaseInfo
}

// Case represents a case label and the statement it labels
type Case struct {
	Loc
	Value Expr
	Body  Stmt
	Label string
}

// Default represents a default label and the statement it labels
type Default struct {
	Loc
	Body  Stmt
	Label string
}

// Break represents a break statement
type Break struct {
	Loc
	Label string
}

// Continue represents a continue statement
type Continue struct {
	Loc
	Label string
}

// Null represents the empty statement
type Null struct {
	Loc
}

// --- Declarations ---

// VarDecl represents a variable declaration
type VarDecl struct {
	Loc
	Name    string
	Type    ctypes.Type
	Storage StorageClass
	Init    Initializer // nil if absent
}

// Param represents a function parameter
type Param struct {
	Name string
	Type ctypes.Type
	Span diag.Span
}

// FunDecl represents a function declaration or definition
type FunDecl struct {
	Loc
	Name    string
	Params  []Param
	Type    ctypes.Type // always ctypes.Tfunction
	Storage StorageClass
	Body    *Block // nil for a declaration
}

// Program is a translation unit
type Program struct {
	Decls []Declaration
}

// Marker methods for interface implementation
func (*Constant) implCabsNode()      {}
func (*StringLiteral) implCabsNode() {}
func (*Var) implCabsNode()           {}
func (*Unary) implCabsNode()         {}
func (*Binary) implCabsNode()        {}
func (*Assign) implCabsNode()        {}
func (*Conditional) implCabsNode()   {}
func (*FunctionCall) implCabsNode()  {}
func (*Cast) implCabsNode()          {}
func (*AddressOf) implCabsNode()     {}
func (*Dereference) implCabsNode()   {}
func (*Subscript) implCabsNode()     {}
func (*Postfix) implCabsNode()       {}
func (*Prefix) implCabsNode()        {}
func (*Sizeof) implCabsNode()        {}
func (*Decay) implCabsNode()         {}

func (*Constant) implCabsExpr()      {}
func (*StringLiteral) implCabsExpr() {}
func (*Var) implCabsExpr()           {}
func (*Unary) implCabsExpr()         {}
func (*Binary) implCabsExpr()        {}
func (*Assign) implCabsExpr()        {}
func (*Conditional) implCabsExpr()   {}
func (*FunctionCall) implCabsExpr()  {}
func (*Cast) implCabsExpr()          {}
func (*AddressOf) implCabsExpr()     {}
func (*Dereference) implCabsExpr()   {}
func (*Subscript) implCabsExpr()     {}
func (*Postfix) implCabsExpr()       {}
func (*Prefix) implCabsExpr()        {}
func (*Sizeof) implCabsExpr()        {}
func (*Decay) implCabsExpr()         {}

func (*SingleInit) implCabsNode()      {}
func (*CompoundInit) implCabsNode()    {}
func (*SingleInit) implInitializer()   {}
func (*CompoundInit) implInitializer() {}

func (*Return) implCabsNode()   {}
func (*ExprStmt) implCabsNode() {}
func (*If) implCabsNode()       {}
func (*Block) implCabsNode()    {}
func (*While) implCabsNode()    {}
func (*DoWhile) implCabsNode()  {}
func (*For) implCabsNode()      {}
func (*Switch) implCabsNode()   {}
func (*Case) implCabsNode()     {}
func (*Default) implCabsNode()  {}
func (*Break) implCabsNode()    {}
func (*Continue) implCabsNode() {}
func (*Null) implCabsNode()     {}

func (*Return) implCabsStmt()   {}
func (*ExprStmt) implCabsStmt() {}
func (*If) implCabsStmt()       {}
func (*Block) implCabsStmt()    {}
func (*While) implCabsStmt()    {}
func (*DoWhile) implCabsStmt()  {}
func (*For) implCabsStmt()      {}
func (*Switch) implCabsStmt()   {}
func (*Case) implCabsStmt()     {}
func (*Default) implCabsStmt()  {}
func (*Break) implCabsStmt()    {}
func (*Continue) implCabsStmt() {}
func (*Null) implCabsStmt()     {}

func (*Return) implBlockItem()   {}
func (*ExprStmt) implBlockItem() {}
func (*If) implBlockItem()       {}
func (*Block) implBlockItem()    {}
func (*While) implBlockItem()    {}
func (*DoWhile) implBlockItem()  {}
func (*For) implBlockItem()      {}
func (*Switch) implBlockItem()   {}
func (*Case) implBlockItem()     {}
func (*Default) implBlockItem()  {}
func (*Break) implBlockItem()    {}
func (*Continue) implBlockItem() {}
func (*Null) implBlockItem()     {}

func (*ForInitDecl) implCabsNode() {}
func (*ForInitExpr) implCabsNode() {}
func (*ForInitDecl) implForInit()  {}
func (*ForInitExpr) implForInit()  {}

func (*VarDecl) implCabsNode()    {}
func (*FunDecl) implCabsNode()    {}
func (*VarDecl) implBlockItem()   {}
func (*FunDecl) implBlockItem()   {}
func (*VarDecl) implDeclaration() {}
func (*FunDecl) implDeclaration() {}
