// Package diag defines source spans and the compiler's error kinds.
package diag

import (
	"fmt"

	"github.com/pkg/errors"
)

// Span locates a piece of source text. Start and End are byte offsets
// (End exclusive); Line and Col are 1-based and refer to Start.
type Span struct {
	Start int
	End   int
	Line  int
	Col   int
}

// To returns the span covering s through other.
func (s Span) To(other Span) Span {
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.Line, s.Col)
}

// Kind classifies a diagnostic.
type Kind int

const (
	KindParse Kind = iota
	KindName
	KindType
	KindControlFlow
	KindInternal
)

func (k Kind) String() string {
	names := []string{"parse error", "name error", "type error", "control flow error", "internal error"}
	if int(k) < len(names) {
		return names[k]
	}
	return "?"
}

// Code further distinguishes name and control flow errors.
type Code int

const (
	CodeNone Code = iota
	CodeUndeclared
	CodeRedeclared
	CodeLinkageConflict
	CodeIllegalCaseDefault
	CodeDuplicateCase
	CodeBreakOutsideLoop
	CodeContinueOutsideLoop
)

func (c Code) String() string {
	names := []string{
		"", "undeclared", "redeclared", "linkage_conflict",
		"case_outside_switch", "duplicate_case", "break_outside_loop", "continue_outside_loop",
	}
	if int(c) < len(names) {
		return names[c]
	}
	return "?"
}

// Error is a user-visible diagnostic.
type Error struct {
	Kind Kind
	Code Code
	Span Span
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Span, e.Kind, e.Msg)
}

// Parse reports a syntax error.
func Parse(span Span, format string, args ...any) *Error {
	return &Error{Kind: KindParse, Span: span, Msg: fmt.Sprintf(format, args...)}
}

// Name reports an identifier resolution failure.
func Name(code Code, span Span, format string, args ...any) *Error {
	return &Error{Kind: KindName, Code: code, Span: span, Msg: fmt.Sprintf(format, args...)}
}

// Type reports a type checking failure.
func Type(span Span, format string, args ...any) *Error {
	return &Error{Kind: KindType, Span: span, Msg: fmt.Sprintf(format, args...)}
}

// ControlFlow reports a misplaced break, continue, case or default.
func ControlFlow(code Code, span Span, format string, args ...any) *Error {
	return &Error{Kind: KindControlFlow, Code: code, Span: span, Msg: fmt.Sprintf(format, args...)}
}

// Internal builds an invariant violation. Callers panic with it; the
// wrapped error carries a stack trace.
func Internal(format string, args ...any) error {
	return errors.WithStack(&Error{Kind: KindInternal, Msg: fmt.Sprintf(format, args...)})
}

// Is reports whether err is a diagnostic of the given kind.
func Is(err error, kind Kind) bool {
	var d *Error
	return errors.As(err, &d) && d.Kind == kind
}
