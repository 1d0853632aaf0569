package compiler

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raymyers/tacky-cc/pkg/cabs"
	"github.com/raymyers/tacky-cc/pkg/diag"
	"github.com/raymyers/tacky-cc/pkg/lexer"
	"github.com/raymyers/tacky-cc/pkg/parser"
	"github.com/raymyers/tacky-cc/pkg/unit"
)

const program = `
int twice(int x) { return x * 2; }
int main(void) {
    int arr[2] = {1, 2};
    return twice(arr[1]);
}
`

func TestStopsAfterEachStage(t *testing.T) {
	for _, stage := range Stages() {
		t.Run(stage.String(), func(t *testing.T) {
			res, err := Compile([]byte(program), Options{Stop: stage})
			require.NoError(t, err)
			assert.Equal(t, stage, res.Stage)
			assert.NotEmpty(t, res.Tokens)
			assert.Equal(t, stage >= Parse, res.AST != nil)
			assert.Equal(t, stage >= Tacky, res.Tacky != nil)
			assert.Equal(t, stage >= Codegen, res.Asm != nil)
			assert.Empty(t, res.Dump)
		})
	}
}

func TestZeroStopRunsEverything(t *testing.T) {
	res, err := Compile([]byte(program), Options{})
	require.NoError(t, err)
	assert.Equal(t, Emit, res.Stage)
	assert.Len(t, res.Asm.Functions(), 2)
}

func TestOnStageReportsProgress(t *testing.T) {
	var seen []Stage
	_, err := Compile([]byte(program), Options{Stop: Tacky, OnStage: func(s Stage) { seen = append(seen, s) }})
	require.NoError(t, err)
	assert.Equal(t, []Stage{Lex, Parse, Validate, Tacky}, seen)
}

func TestDebugDumps(t *testing.T) {
	tests := []struct {
		stage Stage
		want  string
	}{
		{Lex, `return "return"`},
		{Parse, "Function [twice]"},
		{Validate, "Function [twice]"},
		{Tacky, "global function twice(x.0) {"},
		{Codegen, "global function twice\n    Binary{Op: Mult"},
		{Emit, "Return{Value: Constant(0)}"},
	}
	for _, tc := range tests {
		t.Run(tc.stage.String(), func(t *testing.T) {
			res, err := Compile([]byte(program), Options{Stop: tc.stage, Debug: true})
			require.NoError(t, err)
			assert.Contains(t, res.Dump, tc.want)
			assert.Equal(t, Dump(res), res.Dump)
		})
	}
}

func TestValidateAnnotatesTypes(t *testing.T) {
	parsed, err := Compile([]byte(program), Options{Stop: Parse, Debug: true})
	require.NoError(t, err)
	validated, err := Compile([]byte(program), Options{Stop: Validate, Debug: true})
	require.NoError(t, err)
	assert.NotContains(t, parsed.Dump, " : Int")
	assert.Contains(t, validated.Dump, " : Int")
}

func TestErrorsByStage(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind diag.Kind
	}{
		{"illegal token", "int main(void) { return @; }", diag.KindParse},
		{"syntax", "int main(void) { return 0 }", diag.KindParse},
		{"undeclared", "int main(void) { return y; }", diag.KindName},
		{"type", "int main(void) { int x; return *x; }", diag.KindType},
		{"break outside loop", "int main(void) { break; }", diag.KindControlFlow},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Compile([]byte(tc.src), Options{})
			require.Error(t, err)
			assert.Nil(t, res)
			var d *diag.Error
			require.True(t, errors.As(err, &d), "%v", err)
			assert.Equal(t, tc.kind, d.Kind)
		})
	}
}

func TestLexStopReportsIllegalToken(t *testing.T) {
	_, err := Compile([]byte("int x = 1 @ 2;"), Options{Stop: Lex})
	require.Error(t, err)
	assert.True(t, diag.Is(err, diag.KindParse))
	assert.Contains(t, err.Error(), "invalid token")
}

func TestParseConsumesLexedTokens(t *testing.T) {
	res, err := Compile([]byte(program), Options{Stop: Parse, Debug: true})
	require.NoError(t, err)
	direct, err := parser.Parse(program, unit.New())
	require.NoError(t, err)
	assert.Equal(t, cabs.String(direct), res.Dump)
	assert.Equal(t, lexer.Tokenize(program), res.Tokens)
}

func TestLexStopSkipsParsing(t *testing.T) {
	res, err := Compile([]byte("int int int ;;"), Options{Stop: Lex})
	require.NoError(t, err)
	assert.Nil(t, res.AST)
}

func TestInternalErrorRecovered(t *testing.T) {
	err := internalError("boom")
	assert.True(t, diag.Is(err, diag.KindInternal))
	assert.Contains(t, err.Error(), "boom")

	orig := diag.Internal("lowering: %s", "bad")
	assert.Equal(t, orig, internalError(orig))

	wrapped := internalError(errors.New("index out of range"))
	assert.True(t, diag.Is(wrapped, diag.KindInternal))
}

func TestDumpTokens(t *testing.T) {
	toks := []lexer.Token{
		{Type: lexer.TokenIdent, Literal: "x", Span: diag.Span{Line: 1, Col: 5}},
		{Type: lexer.TokenEOF, Span: diag.Span{Line: 2, Col: 1}},
	}
	assert.Equal(t, "1:5 IDENT \"x\"\n2:1 EOF \"\"\n", DumpTokens(toks))
}

func TestStageNames(t *testing.T) {
	var names []string
	for _, s := range Stages() {
		names = append(names, s.String())
	}
	assert.Equal(t, []string{"lex", "parse", "validate", "tacky", "codegen", "emit"}, names)
	assert.Equal(t, "Stage(0)", Stage(0).String())
}
