package ctypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeStrings(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{Void(), "Void"},
		{Char(), "Char"},
		{SChar(), "SChar"},
		{UChar(), "UChar"},
		{Int(), "Int"},
		{UInt(), "UInt"},
		{Long(), "Long"},
		{ULong(), "ULong"},
		{Double(), "Double"},
		{Pointer(Int()), "Pointer(Int)"},
		{Array(Array(Int(), 4), 3), "Array(3, Array(4, Int))"},
		{Function([]Type{Int(), Pointer(Char())}, Void()), "FunType(params=[Int, Pointer(Char)], ret=Void)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.typ.String())
	}
}

func TestSizeofAndAlignof(t *testing.T) {
	tests := []struct {
		typ   Type
		size  int64
		align int64
	}{
		{Char(), 1, 1},
		{UChar(), 1, 1},
		{Int(), 4, 4},
		{UInt(), 4, 4},
		{Long(), 8, 8},
		{Double(), 8, 8},
		{Pointer(Char()), 8, 8},
		{Array(Int(), 3), 12, 4},
		{Array(Array(Char(), 5), 2), 10, 1},
		{Void(), 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.size, Sizeof(tt.typ), "sizeof %s", tt.typ)
		assert.Equal(t, tt.align, Alignof(tt.typ), "alignof %s", tt.typ)
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(Pointer(Array(Int(), 3)), Pointer(Array(Int(), 3))))
	assert.False(t, Equal(Pointer(Array(Int(), 3)), Pointer(Array(Int(), 4))))
	assert.False(t, Equal(Char(), SChar()))
	assert.False(t, Equal(Int(), UInt()))
	assert.True(t, Equal(Function([]Type{Int()}, Long()), Function([]Type{Int()}, Long())))
	assert.False(t, Equal(Function([]Type{Int()}, Long()), Function(nil, Long())))
	assert.False(t, Equal(Int(), nil))
}

func TestClassification(t *testing.T) {
	assert.True(t, IsCharacter(Char()))
	assert.True(t, IsCharacter(UChar()))
	assert.False(t, IsCharacter(Int()))
	assert.True(t, IsScalar(Pointer(Void())))
	assert.False(t, IsScalar(Array(Int(), 2)))
	assert.True(t, IsVoidPointer(Pointer(Void())))
	assert.False(t, IsComplete(Array(Void(), 2)))
	assert.True(t, IsSigned(Char()))
	assert.False(t, IsSigned(Pointer(Int())))
	assert.True(t, IsPointerToComplete(Pointer(Int())))
	assert.False(t, IsPointerToComplete(Pointer(Void())))
}

func TestCommonArithmetic(t *testing.T) {
	tests := []struct {
		a, b Type
		want Type
	}{
		{Char(), Char(), Int()},
		{UChar(), Int(), Int()},
		{Int(), Long(), Long()},
		{Int(), UInt(), UInt()},
		{UInt(), Long(), Long()},
		{Long(), ULong(), ULong()},
		{ULong(), Int(), ULong()},
		{Int(), Double(), Double()},
		{Char(), UInt(), UInt()},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CommonArithmetic(tt.a, tt.b), "%s, %s", tt.a, tt.b)
	}
}
