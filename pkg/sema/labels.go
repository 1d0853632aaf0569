package sema

import (
	"fmt"

	"github.com/raymyers/tacky-cc/pkg/cabs"
	"github.com/raymyers/tacky-cc/pkg/diag"
	"github.com/raymyers/tacky-cc/pkg/unit"
)

// labelState is the innermost enclosing break target, continue target
// and switch.
type labelState struct {
	breakLabel    string
	continueLabel string
	sw            *cabs.Switch
}

type labeler struct {
	ctx *unit.Context
}

// Label gives every loop and switch a fresh label, binds break and
// continue to their targets and collects the cases of each switch.
func Label(prog *cabs.Program, ctx *unit.Context) error {
	l := &labeler{ctx: ctx}
	return run(func() {
		for _, d := range prog.Decls {
			if f, ok := d.(*cabs.FunDecl); ok && f.Body != nil {
				l.items(f.Body.Items, labelState{})
			}
		}
	})
}

func (l *labeler) items(items []cabs.BlockItem, st labelState) {
	for _, item := range items {
		switch it := item.(type) {
		case *cabs.FunDecl:
			if it.Body != nil {
				l.items(it.Body.Items, labelState{})
			}
		case cabs.Stmt:
			l.stmt(it, st)
		}
	}
}

func (l *labeler) stmt(s cabs.Stmt, st labelState) {
	switch s := s.(type) {
	case *cabs.If:
		l.stmt(s.Then, st)
		if s.Else != nil {
			l.stmt(s.Else, st)
		}
	case *cabs.Block:
		l.items(s.Items, st)
	case *cabs.While:
		s.Label = l.ctx.Label("loop")
		l.stmt(s.Body, labelState{breakLabel: s.Label, continueLabel: s.Label, sw: st.sw})
	case *cabs.DoWhile:
		s.Label = l.ctx.Label("loop")
		l.stmt(s.Body, labelState{breakLabel: s.Label, continueLabel: s.Label, sw: st.sw})
	case *cabs.For:
		s.Label = l.ctx.Label("loop")
		l.stmt(s.Body, labelState{breakLabel: s.Label, continueLabel: s.Label, sw: st.sw})
	case *cabs.Switch:
		s.Label = l.ctx.Label("loop")
		s.Cases = nil
		l.stmt(s.Body, labelState{breakLabel: s.Label, continueLabel: st.continueLabel, sw: s})
	case *cabs.Case:
		if st.sw == nil {
			fail(diag.ControlFlow(diag.CodeIllegalCaseDefault, spanOf(s), "case label not within a switch statement"))
		}
		value, ok := foldConstant(s.Value)
		if !ok {
			fail(diag.ControlFlow(diag.CodeNone, spanOf(s.Value), "case label is not an integer constant expression"))
		}
		s.Label = fmt.Sprintf("case_%s_%d", st.sw.Label, len(st.sw.Cases))
		st.sw.Cases = append(st.sw.Cases, &cabs.CaseInfo{Value: value, Label: s.Label, Span: spanOf(s.Value)})
		l.stmt(s.Body, st)
	case *cabs.Default:
		if st.sw == nil {
			fail(diag.ControlFlow(diag.CodeIllegalCaseDefault, spanOf(s), "default label not within a switch statement"))
		}
		for _, c := range st.sw.Cases {
			if c.IsDefault {
				fail(diag.ControlFlow(diag.CodeDuplicateCase, spanOf(s), "multiple default labels in one switch"))
			}
		}
		s.Label = "default_" + st.sw.Label
		st.sw.Cases = append(st.sw.Cases, &cabs.CaseInfo{Label: s.Label, IsDefault: true, Span: spanOf(s)})
		l.stmt(s.Body, st)
	case *cabs.Break:
		if st.breakLabel == "" {
			fail(diag.ControlFlow(diag.CodeBreakOutsideLoop, spanOf(s), "break statement not within loop or switch"))
		}
		s.Label = st.breakLabel
	case *cabs.Continue:
		if st.continueLabel == "" {
			fail(diag.ControlFlow(diag.CodeContinueOutsideLoop, spanOf(s), "continue statement not within a loop"))
		}
		s.Label = st.continueLabel
	}
}
