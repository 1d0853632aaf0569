package unit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNamesAreFresh(t *testing.T) {
	ctx := New()
	assert.Equal(t, "x.0", ctx.UniqueName("x"))
	assert.Equal(t, "loop_1", ctx.Label("loop"))
	assert.Equal(t, "tmp.2", ctx.UniqueName("tmp"))
}

func TestIDsAreMonotonic(t *testing.T) {
	ctx := New()
	assert.Equal(t, 0, ctx.LastID())
	a := ctx.NextID()
	b := ctx.NextID()
	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
	assert.Equal(t, 2, ctx.LastID())
	assert.NotNil(t, ctx.Symbols)
}

func TestLabelsShareCounter(t *testing.T) {
	ctx := New()
	ctx.UniqueName("a")
	assert.Equal(t, []string{"and_false_1", "and_end_1"}, ctx.Labels("and_false", "and_end"))
	assert.Equal(t, "tmp.2", ctx.UniqueName("tmp"))
}
