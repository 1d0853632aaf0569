// Package sema performs semantic analysis on the parsed AST: identifier
// resolution, loop and switch labeling, type checking and initializer
// normalization. The passes run in that order over one shared
// unit.Context and annotate the tree in place.
package sema

import (
	"github.com/raymyers/tacky-cc/pkg/cabs"
	"github.com/raymyers/tacky-cc/pkg/diag"
	"github.com/raymyers/tacky-cc/pkg/unit"
)

// bailout carries the first diagnostic of a pass up to Analyze.
type bailout struct {
	err *diag.Error
}

func fail(err *diag.Error) {
	panic(bailout{err})
}

// run executes one pass and converts its bailout into an error.
func run(pass func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			err = b.err
		}
	}()
	pass()
	return nil
}

// Analyze validates prog and annotates it for lowering. After a nil
// return every identifier is a unique internal name registered in
// ctx.Symbols and every expression carries a type.
func Analyze(prog *cabs.Program, ctx *unit.Context) error {
	if err := Resolve(prog, ctx); err != nil {
		return err
	}
	if err := Label(prog, ctx); err != nil {
		return err
	}
	return TypeCheck(prog, ctx)
}

func newLoc(ctx *unit.Context, span diag.Span) cabs.Loc {
	return cabs.Loc{ID: ctx.NextID(), Span: span}
}

func spanOf(n cabs.Node) diag.Span {
	return n.Location().Span
}
