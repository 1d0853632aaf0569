// Package compiler runs the compilation pipeline, stopping after a
// requested stage.
package compiler

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/raymyers/tacky-cc/pkg/asm"
	"github.com/raymyers/tacky-cc/pkg/asmgen"
	"github.com/raymyers/tacky-cc/pkg/cabs"
	"github.com/raymyers/tacky-cc/pkg/diag"
	"github.com/raymyers/tacky-cc/pkg/lexer"
	"github.com/raymyers/tacky-cc/pkg/parser"
	"github.com/raymyers/tacky-cc/pkg/sema"
	"github.com/raymyers/tacky-cc/pkg/symbols"
	"github.com/raymyers/tacky-cc/pkg/tacky"
	"github.com/raymyers/tacky-cc/pkg/tackygen"
	"github.com/raymyers/tacky-cc/pkg/unit"
)

// Stage names a point where the pipeline can stop.
type Stage int

const (
	Lex Stage = iota + 1
	Parse
	Validate
	Tacky
	Codegen
	Emit
)

var stageNames = map[Stage]string{
	Lex:      "lex",
	Parse:    "parse",
	Validate: "validate",
	Tacky:    "tacky",
	Codegen:  "codegen",
	Emit:     "emit",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Stages lists every stage in pipeline order.
func Stages() []Stage {
	return []Stage{Lex, Parse, Validate, Tacky, Codegen, Emit}
}

// Options selects where the pipeline stops and what it reports.
type Options struct {
	// Stop is the last stage to run. The zero value runs every stage.
	Stop Stage
	// Debug renders the artifact of the last stage into Result.Dump.
	Debug bool
	// OnStage, if set, is called after each stage completes.
	OnStage func(Stage)
}

// Result holds the artifacts of every completed stage.
type Result struct {
	Stage   Stage
	Tokens  []lexer.Token
	AST     *cabs.Program
	Tacky   *tacky.Program
	Asm     *asm.Program
	Symbols *symbols.Table
	Dump    string
}

// Compile runs source through the pipeline. User errors are *diag.Error
// values; internal errors are reported with KindInternal.
func Compile(source []byte, opts Options) (res *Result, err error) {
	stop := opts.Stop
	if stop == 0 {
		stop = Emit
	}
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, internalError(r)
		}
	}()

	ctx := unit.New()
	res = &Result{Symbols: ctx.Symbols}
	done := func(s Stage) bool {
		res.Stage = s
		if opts.OnStage != nil {
			opts.OnStage(s)
		}
		return s == stop
	}
	res.Tokens = lexer.Tokenize(string(source))
	if last := res.Tokens[len(res.Tokens)-1]; last.Type == lexer.TokenIllegal {
		return nil, diag.Parse(last.Span, "invalid token %q", last.Literal)
	}
	if done(Lex) {
		return finish(res, opts), nil
	}

	if res.AST, err = parser.New(lexer.NewTokenStream(res.Tokens), ctx).ParseProgram(); err != nil {
		return nil, err
	}
	if done(Parse) {
		return finish(res, opts), nil
	}

	if err = sema.Analyze(res.AST, ctx); err != nil {
		return nil, err
	}
	if done(Validate) {
		return finish(res, opts), nil
	}

	res.Tacky = tackygen.Lower(res.AST, ctx)
	if done(Tacky) {
		return finish(res, opts), nil
	}

	res.Asm = asmgen.TransformProgram(res.Tacky, ctx.Symbols)
	if done(Codegen) {
		return finish(res, opts), nil
	}
	done(Emit)
	return finish(res, opts), nil
}

func finish(res *Result, opts Options) *Result {
	if opts.Debug {
		res.Dump = Dump(res)
	}
	return res
}

// Dump renders the artifact of the last completed stage.
func Dump(res *Result) string {
	switch res.Stage {
	case Lex:
		return DumpTokens(res.Tokens)
	case Parse, Validate:
		return cabs.String(res.AST)
	case Tacky:
		return tacky.String(res.Tacky)
	case Codegen, Emit:
		return asm.String(res.Asm)
	}
	return ""
}

// DumpTokens renders one token per line with its position.
func DumpTokens(toks []lexer.Token) string {
	var b strings.Builder
	for _, tok := range toks {
		fmt.Fprintf(&b, "%s %s %q\n", tok.Span, tok.Type, tok.Literal)
	}
	return b.String()
}

func internalError(r any) error {
	if e, ok := r.(error); ok {
		var d *diag.Error
		if errors.As(e, &d) && d.Kind == diag.KindInternal {
			return e
		}
		return errors.WithStack(&diag.Error{Kind: diag.KindInternal, Msg: e.Error()})
	}
	return errors.WithStack(&diag.Error{Kind: diag.KindInternal, Msg: fmt.Sprint(r)})
}
