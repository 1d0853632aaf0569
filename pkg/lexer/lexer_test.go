package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextToken(t *testing.T) {
	input := `int main(void) { return 42; }`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{TokenInt_, "int"},
		{TokenIdent, "main"},
		{TokenLParen, "("},
		{TokenVoid, "void"},
		{TokenRParen, ")"},
		{TokenLBrace, "{"},
		{TokenReturn, "return"},
		{TokenInt, "42"},
		{TokenSemicolon, ";"},
		{TokenRBrace, "}"},
		{TokenEOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestOperators(t *testing.T) {
	input := `+ - * / % = == != < <= > >= && || ! & | ^ ~ << >> ? :`

	expected := []TokenType{
		TokenPlus, TokenMinus, TokenStar, TokenSlash, TokenPercent,
		TokenAssign, TokenEq, TokenNe, TokenLt, TokenLe, TokenGt, TokenGe,
		TokenAnd, TokenOr, TokenNot, TokenAmpersand, TokenPipe, TokenCaret,
		TokenTilde, TokenShl, TokenShr, TokenQuestion, TokenColon, TokenEOF,
	}

	toks := Tokenize(input)
	require.Len(t, toks, len(expected))
	for i, want := range expected {
		assert.Equal(t, want, toks[i].Type, "token %d (%q)", i, toks[i].Literal)
	}
}

func TestCompoundAssignments(t *testing.T) {
	input := `+= -= *= /= %= &= |= ^= <<= >>= ++ --`
	expected := []TokenType{
		TokenPlusAssign, TokenMinusAssign, TokenStarAssign, TokenSlashAssign,
		TokenPercentAssign, TokenAndAssign, TokenOrAssign, TokenXorAssign,
		TokenShlAssign, TokenShrAssign, TokenIncrement, TokenDecrement, TokenEOF,
	}
	toks := Tokenize(input)
	require.Len(t, toks, len(expected))
	for i, want := range expected {
		assert.Equal(t, want, toks[i].Type, "token %d", i)
	}
}

func TestNumberLiterals(t *testing.T) {
	tests := []struct {
		input string
		typ   TokenType
	}{
		{"42", TokenInt},
		{"42u", TokenInt},
		{"42UL", TokenInt},
		{"42lu", TokenInt},
		{"42l", TokenInt},
		{"1.5", TokenFloat},
		{"1.", TokenFloat},
		{".5", TokenFloat},
		{"1e10", TokenFloat},
		{"2.5E-3", TokenFloat},
		{"123abc", TokenIllegal},
		{"1.2.3", TokenIllegal},
		{"1e", TokenIllegal},
		{"42uu", TokenIllegal},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok := New(tt.input).NextToken()
			assert.Equal(t, tt.typ, tok.Type)
			assert.Equal(t, tt.input, tok.Literal)
		})
	}
}

func TestCharAndStringLiterals(t *testing.T) {
	toks := Tokenize(`'a' '\n' "hi\"there" "x"`)
	require.Len(t, toks, 5)
	assert.Equal(t, TokenChar, toks[0].Type)
	assert.Equal(t, "a", toks[0].Literal)
	assert.Equal(t, TokenChar, toks[1].Type)
	assert.Equal(t, `\n`, toks[1].Literal)
	assert.Equal(t, TokenString, toks[2].Type)
	assert.Equal(t, `hi\"there`, toks[2].Literal)
	assert.Equal(t, []byte("hi\"there"), Unescape(toks[2].Literal))

	assert.Equal(t, TokenIllegal, New(`'ab'`).NextToken().Type)
	assert.Equal(t, TokenIllegal, New(`"unterminated`).NextToken().Type)
}

func TestComments(t *testing.T) {
	toks := Tokenize("int // line comment\n/* block\ncomment */ x")
	require.Len(t, toks, 3)
	assert.Equal(t, TokenInt_, toks[0].Type)
	assert.Equal(t, TokenIdent, toks[1].Type)
	assert.Equal(t, 3, toks[1].Span.Line)
	assert.Equal(t, 12, toks[1].Span.Col)
}

func TestSpans(t *testing.T) {
	toks := Tokenize("int x;\n  return")
	require.Len(t, toks, 5)
	assert.Equal(t, 0, toks[0].Span.Start)
	assert.Equal(t, 3, toks[0].Span.End)
	assert.Equal(t, 1, toks[0].Span.Col)
	assert.Equal(t, 5, toks[1].Span.Col)
	assert.Equal(t, 2, toks[3].Span.Line)
	assert.Equal(t, 3, toks[3].Span.Col)
}

func TestStreamLookahead(t *testing.T) {
	s := NewStream("a b c")
	assert.Equal(t, "a", s.Peek().Literal)
	assert.Equal(t, "c", s.PeekN(2).Literal)
	assert.Equal(t, "a", s.Next().Literal)
	assert.Equal(t, 1, s.Span().Col)
	assert.Equal(t, "b", s.Next().Literal)
	assert.Equal(t, "c", s.Next().Literal)
	assert.Equal(t, TokenEOF, s.Next().Type)
	assert.Equal(t, TokenEOF, s.Next().Type)
}

func TestTokenStreamReplaysTokens(t *testing.T) {
	toks := Tokenize("int x;")
	require.Len(t, toks, 4)
	s := NewTokenStream(toks)
	assert.Equal(t, "x", s.PeekN(1).Literal)
	assert.Equal(t, TokenEOF, s.PeekN(7).Type)
	for _, want := range toks {
		assert.Equal(t, want, s.Next())
	}
	assert.Equal(t, TokenEOF, s.Next().Type)
	assert.Equal(t, toks[3].Span, s.Span())

	assert.Equal(t, TokenEOF, NewTokenStream(nil).Next().Type)
}

func TestLookupIdent(t *testing.T) {
	assert.Equal(t, TokenSizeof, LookupIdent("sizeof"))
	assert.Equal(t, TokenChar_, LookupIdent("char"))
	assert.Equal(t, TokenIdent, LookupIdent("struct"))
}
