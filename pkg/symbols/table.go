// Package symbols holds the translation unit's symbol table, keyed by the
// unique internal names produced during identifier resolution.
package symbols

import (
	"github.com/raymyers/tacky-cc/pkg/consts"
	"github.com/raymyers/tacky-cc/pkg/ctypes"
)

// Attrs describes how a symbol is stored.
type Attrs interface {
	implAttrs()
}

// FunAttr describes a function.
type FunAttr struct {
	Defined bool
	Global  bool
}

// StaticAttr describes an object with static storage duration.
type StaticAttr struct {
	Init   InitialValue
	Global bool
}

// ConstantAttr describes a synthesized read-only object such as a
// string literal.
type ConstantAttr struct {
	Init consts.StaticInit
}

// LocalAttr describes an automatic object or a temporary.
type LocalAttr struct{}

func (FunAttr) implAttrs()      {}
func (StaticAttr) implAttrs()   {}
func (ConstantAttr) implAttrs() {}
func (LocalAttr) implAttrs()    {}

// InitialValue is the initializer state of a static object.
type InitialValue interface {
	implInitialValue()
}

// Tentative marks a file-scope definition without an initializer.
type Tentative struct{}

// Initial holds a fully flattened initializer.
type Initial struct {
	Items []consts.StaticInit
}

// NoInitializer marks an extern declaration.
type NoInitializer struct{}

func (Tentative) implInitialValue()     {}
func (Initial) implInitialValue()       {}
func (NoInitializer) implInitialValue() {}

// Entry is one symbol table row.
type Entry struct {
	Name  string
	Type  ctypes.Type
	Attrs Attrs
}

// Table maps internal names to entries and remembers insertion order so
// that later passes iterate deterministically.
type Table struct {
	entries map[string]*Entry
	order   []string
}

// NewTable creates an empty symbol table.
func NewTable() *Table {
	return &Table{entries: make(map[string]*Entry)}
}

// Set adds or replaces the entry for name.
func (t *Table) Set(name string, typ ctypes.Type, attrs Attrs) {
	if e, ok := t.entries[name]; ok {
		e.Type = typ
		e.Attrs = attrs
		return
	}
	t.entries[name] = &Entry{Name: name, Type: typ, Attrs: attrs}
	t.order = append(t.order, name)
}

// AddLocal registers an automatic object or temporary.
func (t *Table) AddLocal(name string, typ ctypes.Type) {
	t.Set(name, typ, LocalAttr{})
}

// Lookup returns the entry for name.
func (t *Table) Lookup(name string) (*Entry, bool) {
	e, ok := t.entries[name]
	return e, ok
}

// Get returns the entry for name and panics if it is missing. Later passes
// only see names the analyzer has already registered.
func (t *Table) Get(name string) *Entry {
	e, ok := t.entries[name]
	if !ok {
		panic("symbols: no entry for " + name)
	}
	return e
}

// TypeOf returns the type of name.
func (t *Table) TypeOf(name string) ctypes.Type {
	return t.Get(name).Type
}

// IsStatic reports whether name has static storage (including constants).
func (t *Table) IsStatic(name string) bool {
	e, ok := t.entries[name]
	if !ok {
		return false
	}
	switch e.Attrs.(type) {
	case StaticAttr, ConstantAttr:
		return true
	}
	return false
}

// Entries returns all entries in insertion order.
func (t *Table) Entries() []*Entry {
	out := make([]*Entry, len(t.order))
	for i, name := range t.order {
		out[i] = t.entries[name]
	}
	return out
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.order)
}
