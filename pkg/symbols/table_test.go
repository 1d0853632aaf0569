package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raymyers/tacky-cc/pkg/consts"
	"github.com/raymyers/tacky-cc/pkg/ctypes"
)

func TestTableKeepsInsertionOrder(t *testing.T) {
	tab := NewTable()
	tab.Set("main", ctypes.Function(nil, ctypes.Int()), FunAttr{Defined: true, Global: true})
	tab.AddLocal("x.0", ctypes.Int())
	tab.Set("counter", ctypes.Long(), StaticAttr{Init: Tentative{}, Global: true})
	tab.Set("x.0", ctypes.Long(), LocalAttr{})

	var names []string
	for _, e := range tab.Entries() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"main", "x.0", "counter"}, names)
	assert.Equal(t, ctypes.Long(), tab.TypeOf("x.0"))
	assert.Equal(t, 3, tab.Len())
}

func TestIsStatic(t *testing.T) {
	tab := NewTable()
	tab.Set("s", ctypes.Int(), StaticAttr{Init: Initial{Items: []consts.StaticInit{consts.ScalarInit{Value: consts.ConstInt{Value: 3}}}}})
	tab.Set("string.0", ctypes.Array(ctypes.Char(), 3), ConstantAttr{Init: consts.StringInit{Value: []byte("hi"), NullTerminated: true}})
	tab.AddLocal("tmp.1", ctypes.Int())

	assert.True(t, tab.IsStatic("s"))
	assert.True(t, tab.IsStatic("string.0"))
	assert.False(t, tab.IsStatic("tmp.1"))
	assert.False(t, tab.IsStatic("missing"))
}

func TestGetPanicsOnMissing(t *testing.T) {
	tab := NewTable()
	_, ok := tab.Lookup("nope")
	require.False(t, ok)
	assert.Panics(t, func() { tab.Get("nope") })
}
