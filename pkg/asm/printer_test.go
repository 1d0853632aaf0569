package asm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/raymyers/tacky-cc/pkg/consts"
	"github.com/raymyers/tacky-cc/pkg/tacky"
)

func TestPrintProgram(t *testing.T) {
	main := NewFunction("main", true)
	main.Append(
		tacky.Binary{Op: tacky.Add, Src1: tacky.Var{Name: "a.0"}, Src2: tacky.Constant{Value: consts.ConstInt{Value: 1}}, Dst: tacky.Var{Name: "tmp.1"}},
		tacky.Label{Name: "end"},
		tacky.Return{Value: tacky.Var{Name: "tmp.1"}},
	)
	helper := NewFunction("helper", false)
	helper.Append(tacky.Return{})

	prog := &Program{TopLevels: []TopLevel{
		main,
		helper,
		&StaticVariable{Name: "arr", Global: true, Alignment: 4, Init: []consts.StaticInit{
			consts.ScalarInit{Value: consts.ConstInt{Value: 1}},
			consts.ZeroInit{Size: 8},
		}},
		&StaticVariable{Name: "count.2", Alignment: 8, Init: []consts.StaticInit{
			consts.ScalarInit{Value: consts.ConstULong{Value: 3}},
		}},
		&StaticConstant{Name: "string.3", Alignment: 1, Init: consts.StringInit{Value: []byte("hi"), NullTerminated: true}},
	}}

	want := `global function main
    Binary{Op: Add, Src1: Var(a.0), Src2: Constant(1), Dst: Var(tmp.1)}
    Label{Name: end}
    Return{Value: Var(tmp.1)}

function helper
    Return{Value: None}

global [4] static arr =
    1
    Zero(8)

[8] static count.2 =
    3UL

[1] constant string.3 =
    "hi\0"
`
	assert.Equal(t, want, String(prog))
}

func TestPrintEmptyProgram(t *testing.T) {
	assert.Equal(t, "", String(&Program{}))
}

func TestPrintFrame(t *testing.T) {
	f := NewFunction("f", true)
	f.Frame = Frame{
		Slots: []Slot{{Name: "x.0", Offset: -4, Size: 4}, {Name: "tmp.1", Offset: -16, Size: 8}},
		Size:  16,
	}
	var buf bytes.Buffer
	NewPrinter(&buf).PrintFrame(f)
	assert.Equal(t, "frame f size=16\n    x.0: -4(4)\n    tmp.1: -16(8)\n", buf.String())
}

func TestFrameLookup(t *testing.T) {
	frame := Frame{Slots: []Slot{{Name: "x.0", Offset: -4, Size: 4}}}
	slot, ok := frame.Lookup("x.0")
	assert.True(t, ok)
	assert.Equal(t, int64(-4), slot.Offset)
	_, ok = frame.Lookup("y.1")
	assert.False(t, ok)
}

func TestFunctions(t *testing.T) {
	prog := &Program{TopLevels: []TopLevel{
		&StaticVariable{Name: "x"},
		NewFunction("a", true),
		&StaticConstant{Name: "string.0"},
		NewFunction("b", false),
	}}
	fns := prog.Functions()
	if assert.Len(t, fns, 2) {
		assert.Equal(t, "a", fns[0].Name)
		assert.Equal(t, "b", fns[1].Name)
	}
}
