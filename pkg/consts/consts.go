// Package consts defines typed constant values and the static
// initializer items built from them.
package consts

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/raymyers/tacky-cc/pkg/ctypes"
)

// Const is a typed scalar constant.
type Const interface {
	implConst()
	Type() ctypes.Type
	String() string
}

// ConstChar is a plain (signed) char constant
type ConstChar struct{ Value int8 }

// ConstUChar is an unsigned char constant
type ConstUChar struct{ Value uint8 }

// ConstInt is an int constant
type ConstInt struct{ Value int32 }

// ConstUInt is an unsigned int constant
type ConstUInt struct{ Value uint32 }

// ConstLong is a long constant
type ConstLong struct{ Value int64 }

// ConstULong is an unsigned long constant
type ConstULong struct{ Value uint64 }

// ConstDouble is a double constant
type ConstDouble struct{ Value float64 }

func (ConstChar) implConst()   {}
func (ConstUChar) implConst()  {}
func (ConstInt) implConst()    {}
func (ConstUInt) implConst()   {}
func (ConstLong) implConst()   {}
func (ConstULong) implConst()  {}
func (ConstDouble) implConst() {}

func (ConstChar) Type() ctypes.Type   { return ctypes.Char() }
func (ConstUChar) Type() ctypes.Type  { return ctypes.UChar() }
func (ConstInt) Type() ctypes.Type    { return ctypes.Int() }
func (ConstUInt) Type() ctypes.Type   { return ctypes.UInt() }
func (ConstLong) Type() ctypes.Type   { return ctypes.Long() }
func (ConstULong) Type() ctypes.Type  { return ctypes.ULong() }
func (ConstDouble) Type() ctypes.Type { return ctypes.Double() }

func (c ConstChar) String() string   { return strconv.Itoa(int(c.Value)) }
func (c ConstUChar) String() string  { return strconv.Itoa(int(c.Value)) }
func (c ConstInt) String() string    { return strconv.FormatInt(int64(c.Value), 10) }
func (c ConstUInt) String() string   { return strconv.FormatUint(uint64(c.Value), 10) + "U" }
func (c ConstLong) String() string   { return strconv.FormatInt(c.Value, 10) + "L" }
func (c ConstULong) String() string  { return strconv.FormatUint(c.Value, 10) + "UL" }
func (c ConstDouble) String() string { return FormatDouble(c.Value) + "D" }

// FormatDouble renders v in signed scientific notation with a minimal
// exponent, e.g. +1.23e4.
func FormatDouble(v float64) string {
	s := strconv.FormatFloat(v, 'e', -1, 64)
	mant, exp, ok := strings.Cut(s, "e")
	if !ok {
		return s // Inf, NaN
	}
	if !strings.HasPrefix(mant, "-") {
		mant = "+" + mant
	}
	e, err := strconv.Atoi(exp)
	if err != nil {
		return s
	}
	return mant + "e" + strconv.Itoa(e)
}

// Int64 returns the constant's value as a signed 64-bit integer. Doubles
// truncate toward zero.
func Int64(c Const) int64 {
	switch c := c.(type) {
	case ConstChar:
		return int64(c.Value)
	case ConstUChar:
		return int64(c.Value)
	case ConstInt:
		return int64(c.Value)
	case ConstUInt:
		return int64(c.Value)
	case ConstLong:
		return c.Value
	case ConstULong:
		return int64(c.Value)
	case ConstDouble:
		return int64(c.Value)
	}
	return 0
}

// Float64 returns the constant's value as a double, honouring the
// signedness of the source type.
func Float64(c Const) float64 {
	switch c := c.(type) {
	case ConstDouble:
		return c.Value
	case ConstULong:
		return float64(c.Value)
	}
	return float64(Int64(c))
}

// IsZero reports whether c has the value zero.
func IsZero(c Const) bool {
	if d, ok := c.(ConstDouble); ok {
		return d.Value == 0
	}
	return Int64(c) == 0
}

// FromInt64 wraps v into a constant of integer type t with C's modular
// conversion rules. Pointer types are treated as unsigned long.
func FromInt64(v int64, t ctypes.Type) Const {
	switch t := t.(type) {
	case ctypes.Tchar:
		return ConstChar{Value: int8(v)}
	case ctypes.Tint:
		switch {
		case t.Size == 1 && t.Sign == ctypes.Signed:
			return ConstChar{Value: int8(v)}
		case t.Size == 1:
			return ConstUChar{Value: uint8(v)}
		case t.Sign == ctypes.Unsigned:
			return ConstUInt{Value: uint32(v)}
		}
		return ConstInt{Value: int32(v)}
	case ctypes.Tlong:
		if t.Sign == ctypes.Unsigned {
			return ConstULong{Value: uint64(v)}
		}
		return ConstLong{Value: v}
	case ctypes.Tdouble:
		return ConstDouble{Value: float64(v)}
	case ctypes.Tpointer:
		return ConstULong{Value: uint64(v)}
	}
	panic(fmt.Sprintf("consts: no constant of type %s", t))
}

// Convert converts c to type t.
func Convert(c Const, t ctypes.Type) Const {
	if ctypes.Equal(c.Type(), t) {
		return c
	}
	if ctypes.IsDouble(t) {
		return ConstDouble{Value: Float64(c)}
	}
	if d, ok := c.(ConstDouble); ok {
		if !ctypes.IsSigned(t) {
			return FromInt64(int64(uint64(d.Value)), t)
		}
		return FromInt64(int64(d.Value), t)
	}
	return FromInt64(Int64(c), t)
}

// Zero returns the zero constant of scalar type t.
func Zero(t ctypes.Type) Const {
	return FromInt64(0, t)
}

// StaticInit is one item of a flattened static initializer.
type StaticInit interface {
	implStaticInit()
	// Bytes returns the number of bytes the item covers.
	Bytes() int64
	String() string
}

// ScalarInit initializes one scalar with a typed constant.
type ScalarInit struct {
	Value Const
}

// ZeroInit covers a run of zeroed bytes.
type ZeroInit struct {
	Size int64
}

// StringInit stores the bytes of a string literal, optionally followed by
// a null terminator.
type StringInit struct {
	Value          []byte
	NullTerminated bool
}

// PointerInit stores the address of a static object.
type PointerInit struct {
	Name string
}

func (ScalarInit) implStaticInit()  {}
func (ZeroInit) implStaticInit()    {}
func (StringInit) implStaticInit()  {}
func (PointerInit) implStaticInit() {}

func (s ScalarInit) Bytes() int64 { return ctypes.Sizeof(s.Value.Type()) }
func (z ZeroInit) Bytes() int64   { return z.Size }
func (PointerInit) Bytes() int64  { return 8 }

func (s StringInit) Bytes() int64 {
	if s.NullTerminated {
		return int64(len(s.Value)) + 1
	}
	return int64(len(s.Value))
}

func (s ScalarInit) String() string  { return s.Value.String() }
func (z ZeroInit) String() string    { return fmt.Sprintf("Zero(%d)", z.Size) }
func (p PointerInit) String() string { return "&" + p.Name }

func (s StringInit) String() string {
	var b strings.Builder
	b.WriteByte('"')
	b.WriteString(EscapeBytes(s.Value))
	if s.NullTerminated {
		b.WriteString(`\0`)
	}
	b.WriteByte('"')
	return b.String()
}

// EscapeBytes renders bytes with C escapes for anything non-printable.
func EscapeBytes(value []byte) string {
	var b strings.Builder
	for _, c := range value {
		switch {
		case c == '"' || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\t':
			b.WriteString(`\t`)
		case c == 0:
			b.WriteString(`\0`)
		case c >= 0x20 && c < 0x7f:
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, `\x%02x`, c)
		}
	}
	return b.String()
}

// TotalBytes sums the sizes of a list of initializer items.
func TotalBytes(items []StaticInit) int64 {
	var n int64
	for _, it := range items {
		n += it.Bytes()
	}
	return n
}

// AppendZero appends a zero run, merging it with a trailing one.
func AppendZero(items []StaticInit, size int64) []StaticInit {
	if size <= 0 {
		return items
	}
	if n := len(items); n > 0 {
		if z, ok := items[n-1].(ZeroInit); ok {
			items[n-1] = ZeroInit{Size: z.Size + size}
			return items
		}
	}
	return append(items, ZeroInit{Size: size})
}
