// Package ctypes defines the C type system: scalars, pointers, arrays and
// function types, with their sizes and alignments on an LP64 target.
package ctypes

import (
	"fmt"
	"strings"
)

// Type is the interface for all C types
type Type interface {
	implType()
	String() string
}

// Signedness represents signed/unsigned for integer types
type Signedness int

const (
	Signed Signedness = iota
	Unsigned
)

func (s Signedness) String() string {
	if s == Signed {
		return "signed"
	}
	return "unsigned"
}

// Tvoid represents the void type
type Tvoid struct{}

// Tchar represents plain char, which behaves as signed.
type Tchar struct{}

// Tint represents the 1-byte (signed/unsigned char) and 4-byte integer types
type Tint struct {
	Size int64
	Sign Signedness
}

// Tlong represents the long type (64-bit)
type Tlong struct {
	Sign Signedness
}

// Tdouble represents the 64-bit floating point type
type Tdouble struct{}

// Tpointer represents pointer types
type Tpointer struct {
	Elem Type
}

// Tarray represents array types
type Tarray struct {
	Elem Type
	Size int64
}

// Tfunction represents function types
type Tfunction struct {
	Params []Type
	Return Type
}

// Marker methods for Type interface
func (Tvoid) implType()     {}
func (Tchar) implType()     {}
func (Tint) implType()      {}
func (Tlong) implType()     {}
func (Tdouble) implType()   {}
func (Tpointer) implType()  {}
func (Tarray) implType()    {}
func (Tfunction) implType() {}

// String methods render types the way the AST printer shows them.
func (Tvoid) String() string { return "Void" }
func (Tchar) String() string { return "Char" }

func (t Tint) String() string {
	switch {
	case t.Size == 1 && t.Sign == Signed:
		return "SChar"
	case t.Size == 1:
		return "UChar"
	case t.Sign == Unsigned:
		return "UInt"
	}
	return "Int"
}

func (t Tlong) String() string {
	if t.Sign == Unsigned {
		return "ULong"
	}
	return "Long"
}

func (Tdouble) String() string { return "Double" }

func (t Tpointer) String() string {
	return fmt.Sprintf("Pointer(%s)", t.Elem)
}

func (t Tarray) String() string {
	return fmt.Sprintf("Array(%d, %s)", t.Size, t.Elem)
}

func (t Tfunction) String() string {
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		params[i] = p.String()
	}
	return fmt.Sprintf("FunType(params=[%s], ret=%s)", strings.Join(params, ", "), t.Return)
}

// Common type constructors

// Char returns the plain char type
func Char() Type { return Tchar{} }

// SChar returns signed char
func SChar() Type { return Tint{Size: 1, Sign: Signed} }

// UChar returns unsigned char
func UChar() Type { return Tint{Size: 1, Sign: Unsigned} }

// Int returns a signed 32-bit int type
func Int() Type { return Tint{Size: 4, Sign: Signed} }

// UInt returns an unsigned 32-bit int type
func UInt() Type { return Tint{Size: 4, Sign: Unsigned} }

// Long returns a signed long type
func Long() Type { return Tlong{Sign: Signed} }

// ULong returns an unsigned long type
func ULong() Type { return Tlong{Sign: Unsigned} }

// Double returns a double (64-bit) type
func Double() Type { return Tdouble{} }

// Void returns the void type
func Void() Type { return Tvoid{} }

// Pointer returns a pointer to the given type
func Pointer(elem Type) Type { return Tpointer{Elem: elem} }

// Array returns an array type
func Array(elem Type, size int64) Type { return Tarray{Elem: elem, Size: size} }

// Function returns a function type
func Function(params []Type, ret Type) Type { return Tfunction{Params: params, Return: ret} }

// Equal checks if two types are equal
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch ta := a.(type) {
	case Tvoid:
		_, ok := b.(Tvoid)
		return ok
	case Tchar:
		_, ok := b.(Tchar)
		return ok
	case Tint:
		tb, ok := b.(Tint)
		return ok && ta.Size == tb.Size && ta.Sign == tb.Sign
	case Tlong:
		tb, ok := b.(Tlong)
		return ok && ta.Sign == tb.Sign
	case Tdouble:
		_, ok := b.(Tdouble)
		return ok
	case Tpointer:
		tb, ok := b.(Tpointer)
		return ok && Equal(ta.Elem, tb.Elem)
	case Tarray:
		tb, ok := b.(Tarray)
		return ok && ta.Size == tb.Size && Equal(ta.Elem, tb.Elem)
	case Tfunction:
		tb, ok := b.(Tfunction)
		if !ok || len(ta.Params) != len(tb.Params) {
			return false
		}
		if !Equal(ta.Return, tb.Return) {
			return false
		}
		for i, p := range ta.Params {
			if !Equal(p, tb.Params[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Sizeof returns the size in bytes of an object type. Void and function
// types have no size and report 0.
func Sizeof(t Type) int64 {
	switch t := t.(type) {
	case Tchar:
		return 1
	case Tint:
		return t.Size
	case Tlong, Tdouble, Tpointer:
		return 8
	case Tarray:
		return t.Size * Sizeof(t.Elem)
	}
	return 0
}

// Alignof returns the alignment in bytes of an object type.
func Alignof(t Type) int64 {
	if arr, ok := t.(Tarray); ok {
		return Alignof(arr.Elem)
	}
	return Sizeof(t)
}

// IsInteger reports whether t is one of the integer types.
func IsInteger(t Type) bool {
	switch t.(type) {
	case Tchar, Tint, Tlong:
		return true
	}
	return false
}

// IsArithmetic reports whether t is an integer or floating type.
func IsArithmetic(t Type) bool {
	_, isDouble := t.(Tdouble)
	return isDouble || IsInteger(t)
}

// IsCharacter reports whether t is char, signed char or unsigned char.
func IsCharacter(t Type) bool {
	switch t := t.(type) {
	case Tchar:
		return true
	case Tint:
		return t.Size == 1
	}
	return false
}

// IsPointer reports whether t is a pointer type.
func IsPointer(t Type) bool {
	_, ok := t.(Tpointer)
	return ok
}

// IsArray reports whether t is an array type.
func IsArray(t Type) bool {
	_, ok := t.(Tarray)
	return ok
}

// IsFunction reports whether t is a function type.
func IsFunction(t Type) bool {
	_, ok := t.(Tfunction)
	return ok
}

// IsVoid reports whether t is void.
func IsVoid(t Type) bool {
	_, ok := t.(Tvoid)
	return ok
}

// IsDouble reports whether t is double.
func IsDouble(t Type) bool {
	_, ok := t.(Tdouble)
	return ok
}

// IsScalar reports whether t is an arithmetic or pointer type.
func IsScalar(t Type) bool {
	return IsArithmetic(t) || IsPointer(t)
}

// IsVoidPointer reports whether t is void*.
func IsVoidPointer(t Type) bool {
	p, ok := t.(Tpointer)
	return ok && IsVoid(p.Elem)
}

// IsComplete reports whether t is a complete object type.
func IsComplete(t Type) bool {
	switch t := t.(type) {
	case Tvoid, Tfunction:
		return false
	case Tarray:
		return IsComplete(t.Elem)
	}
	return true
}

// IsPointerToComplete reports whether t points at a complete object type.
func IsPointerToComplete(t Type) bool {
	p, ok := t.(Tpointer)
	return ok && IsComplete(p.Elem)
}

// IsSigned reports whether an arithmetic type is signed. Pointers are
// treated as unsigned.
func IsSigned(t Type) bool {
	switch t := t.(type) {
	case Tchar, Tdouble:
		return true
	case Tint:
		return t.Sign == Signed
	case Tlong:
		return t.Sign == Signed
	}
	return false
}

// Elem returns the element type of an array or the pointee of a pointer.
func Elem(t Type) Type {
	switch t := t.(type) {
	case Tarray:
		return t.Elem
	case Tpointer:
		return t.Elem
	}
	return nil
}

// Promote applies the integer promotions: character types become int.
func Promote(t Type) Type {
	if IsCharacter(t) {
		return Int()
	}
	return t
}

// CommonArithmetic returns the type both operands of an arithmetic
// operator are converted to.
func CommonArithmetic(a, b Type) Type {
	a, b = Promote(a), Promote(b)
	if Equal(a, b) {
		return a
	}
	if IsDouble(a) || IsDouble(b) {
		return Double()
	}
	sa, sb := Sizeof(a), Sizeof(b)
	if IsSigned(a) == IsSigned(b) {
		if sa > sb {
			return a
		}
		return b
	}
	unsigned, signed := a, b
	if IsSigned(a) {
		unsigned, signed = b, a
	}
	if Sizeof(unsigned) >= Sizeof(signed) {
		return unsigned
	}
	// The signed type is strictly wider and can represent every value of
	// the unsigned one.
	return signed
}
