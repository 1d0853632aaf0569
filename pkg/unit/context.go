// Package unit holds the state shared by every pass over one translation
// unit: the node-id counter, the fresh-name counter and the symbol table.
package unit

import (
	"fmt"

	"github.com/raymyers/tacky-cc/pkg/symbols"
)

// Context is created before parsing and discarded after lowering.
type Context struct {
	Symbols *symbols.Table

	nextID   int
	nextName int
}

// New creates an empty translation unit context.
func New() *Context {
	return &Context{Symbols: symbols.NewTable()}
}

// NextID returns a fresh AST node id. Ids start at 1.
func (c *Context) NextID() int {
	c.nextID++
	return c.nextID
}

// LastID returns the most recently issued node id.
func (c *Context) LastID() int {
	return c.nextID
}

// UniqueName returns base suffixed with a fresh counter, e.g. "x.3".
func (c *Context) UniqueName(base string) string {
	n := c.nextName
	c.nextName++
	return fmt.Sprintf("%s.%d", base, n)
}

// Label returns a fresh label such as "loop_4".
func (c *Context) Label(prefix string) string {
	n := c.nextName
	c.nextName++
	return fmt.Sprintf("%s_%d", prefix, n)
}

// Labels returns one label per prefix, all sharing a single fresh counter
// value, e.g. "and_false_7" and "and_end_7".
func (c *Context) Labels(prefixes ...string) []string {
	n := c.nextName
	c.nextName++
	out := make([]string, len(prefixes))
	for i, p := range prefixes {
		out[i] = fmt.Sprintf("%s_%d", p, n)
	}
	return out
}
