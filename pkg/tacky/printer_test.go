package tacky

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/raymyers/tacky-cc/pkg/consts"
	"github.com/raymyers/tacky-cc/pkg/ctypes"
)

func intConst(v int32) Constant { return Constant{Value: consts.ConstInt{Value: v}} }

func TestPrintProgram(t *testing.T) {
	prog := &Program{TopLevels: []TopLevel{
		&Function{
			Name:   "add",
			Global: true,
			Params: []string{"a.0", "b.1"},
			Body: []Instruction{
				Binary{Op: Add, Src1: Var{"a.0"}, Src2: Var{"b.1"}, Dst: Var{"tmp.2"}},
				JumpIfZero{Cond: Var{"tmp.2"}, Target: "if_end_3"},
				Return{Value: intConst(1)},
				Label{Name: "if_end_3"},
				Return{Value: Var{"tmp.2"}},
			},
		},
		&StaticVariable{
			Name:      "counter",
			Alignment: 8,
			Type:      ctypes.Array(ctypes.Long(), 3),
			Init:      []consts.StaticInit{consts.ScalarInit{Value: consts.ConstLong{Value: 1}}, consts.ZeroInit{Size: 16}},
		},
		&StaticConstant{
			Name:      "string.4",
			Alignment: 1,
			Type:      ctypes.Array(ctypes.Char(), 3),
			Init:      consts.StringInit{Value: []byte("hi"), NullTerminated: true},
		},
	}}

	want := `global function add(a.0, b.1) {
    tmp.2 = a.0 + b.1
    jump_if_zero(tmp.2, if_end_3)
    return 1
if_end_3:
    return tmp.2
}

static counter: Array(3, Long) align 8 = {1L, Zero(16)}

static constant string.4: Array(3, Char) align 1 = "hi\0"
`
	assert.Equal(t, want, String(prog))
}

func TestFormat(t *testing.T) {
	tests := []struct {
		instr Instruction
		want  string
	}{
		{Return{}, "return"},
		{Convert{Op: SignExtend, Src: Var{"x"}, Dst: Var{"y"}}, "y = sign_extend x"},
		{Convert{Op: UIntToDouble, Src: Var{"x"}, Dst: Var{"y"}}, "y = uint_to_double x"},
		{Unary{Op: Negate, Src: Var{"x"}, Dst: Var{"y"}}, "y = -x"},
		{Unary{Op: Not, Src: Var{"x"}, Dst: Var{"y"}}, "y = !x"},
		{Copy{Src: Constant{Value: consts.ConstULong{Value: 4}}, Dst: Var{"y"}}, "y = 4UL"},
		{GetAddress{Src: Var{"arr"}, Dst: Var{"p"}}, "p = &arr"},
		{Load{Ptr: Var{"p"}, Dst: Var{"v"}}, "v = *p"},
		{Store{Src: intConst(100), Ptr: Var{"p"}}, "*p = 100"},
		{AddPtr{Ptr: Var{"p"}, Index: Constant{Value: consts.ConstLong{Value: 2}}, Scale: 4, Dst: Var{"q"}}, "q = add_ptr(p, 2L, scale=4)"},
		{CopyToOffset{Src: intConst(3), Dst: "arr.0", Offset: 8}, "arr.0[8] = 3"},
		{CopyFromOffset{Src: "arr.0", Offset: 8, Dst: Var{"v"}}, "v = arr.0[8]"},
		{Jump{Target: "start_loop_1"}, "jump start_loop_1"},
		{JumpIfNotZero{Cond: Var{"c"}, Target: "L"}, "jump_if_not_zero(c, L)"},
		{FunCall{Name: "f", Args: []Value{intConst(1), Var{"x"}}, Dst: Var{"r"}}, "r = f(1, x)"},
		{FunCall{Name: "g"}, "g()"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Format(tc.instr))
	}
}

func TestDebug(t *testing.T) {
	assert.Equal(t,
		"Binary{Op: Add, Src1: Var(a), Src2: Constant(1), Dst: Var(tmp.0)}",
		Debug(Binary{Op: Add, Src1: Var{"a"}, Src2: intConst(1), Dst: Var{"tmp.0"}}))
	assert.Equal(t, "Return{Value: None}", Debug(Return{}))
	assert.Equal(t, "SignExtend{Src: Var(x), Dst: Var(y)}", Debug(Convert{Op: SignExtend, Src: Var{"x"}, Dst: Var{"y"}}))
	assert.Equal(t,
		"FunCall{Name: malloc, Args: [Var(tmp.3)], Dst: Var(tmp.4)}",
		Debug(FunCall{Name: "malloc", Args: []Value{Var{"tmp.3"}}, Dst: Var{"tmp.4"}}))
	assert.Equal(t,
		"AddPtr{Ptr: Var(p), Index: Constant(2L), Scale: 4, Dst: Var(q)}",
		Debug(AddPtr{Ptr: Var{"p"}, Index: Constant{Value: consts.ConstLong{Value: 2}}, Scale: 4, Dst: Var{"q"}}))
}

func TestFunctions(t *testing.T) {
	f := &Function{Name: "main"}
	prog := &Program{TopLevels: []TopLevel{f, &StaticVariable{Name: "x"}}}
	assert.Equal(t, []*Function{f}, prog.Functions())
}
