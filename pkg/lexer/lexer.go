// Package lexer tokenizes source for the parser.
package lexer

import (
	"unicode"

	"github.com/raymyers/tacky-cc/pkg/diag"
)

// Lexer tokenizes C source code
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // next reading position
	ch      byte // current character
	line    int
	column  int
}

// New creates a new Lexer for the given input
func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	l.column++

	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
}

func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) peekCharAt(n int) byte {
	if l.readPos+n >= len(l.input) {
		return 0
	}
	return l.input[l.readPos+n]
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()
	l.skipComments()
	l.skipWhitespace()

	start := diag.Span{Start: l.pos, Line: l.line, Col: l.column}
	tok := l.scan()
	start.End = l.pos
	if tok.Type == TokenEOF {
		start.End = start.Start
	}
	tok.Span = start
	return tok
}

func (l *Lexer) scan() Token {
	switch l.ch {
	case 0:
		if l.pos >= len(l.input) {
			return Token{Type: TokenEOF}
		}
		return l.single(TokenIllegal)
	case '+':
		return l.choose(TokenPlus, '+', TokenIncrement, '=', TokenPlusAssign)
	case '-':
		return l.choose(TokenMinus, '-', TokenDecrement, '=', TokenMinusAssign)
	case '*':
		return l.choose(TokenStar, '=', TokenStarAssign, 0, 0)
	case '/':
		return l.choose(TokenSlash, '=', TokenSlashAssign, 0, 0)
	case '%':
		return l.choose(TokenPercent, '=', TokenPercentAssign, 0, 0)
	case '=':
		return l.choose(TokenAssign, '=', TokenEq, 0, 0)
	case '!':
		return l.choose(TokenNot, '=', TokenNe, 0, 0)
	case '^':
		return l.choose(TokenCaret, '=', TokenXorAssign, 0, 0)
	case '&':
		return l.choose(TokenAmpersand, '&', TokenAnd, '=', TokenAndAssign)
	case '|':
		return l.choose(TokenPipe, '|', TokenOr, '=', TokenOrAssign)
	case '<':
		if l.peekChar() == '<' && l.peekCharAt(1) == '=' {
			return l.multi(TokenShlAssign, 3)
		}
		return l.choose(TokenLt, '<', TokenShl, '=', TokenLe)
	case '>':
		if l.peekChar() == '>' && l.peekCharAt(1) == '=' {
			return l.multi(TokenShrAssign, 3)
		}
		return l.choose(TokenGt, '>', TokenShr, '=', TokenGe)
	case '~':
		return l.single(TokenTilde)
	case '?':
		return l.single(TokenQuestion)
	case ':':
		return l.single(TokenColon)
	case '(':
		return l.single(TokenLParen)
	case ')':
		return l.single(TokenRParen)
	case '{':
		return l.single(TokenLBrace)
	case '}':
		return l.single(TokenRBrace)
	case '[':
		return l.single(TokenLBracket)
	case ']':
		return l.single(TokenRBracket)
	case ';':
		return l.single(TokenSemicolon)
	case ',':
		return l.single(TokenComma)
	case '"':
		return l.readString()
	case '\'':
		return l.readCharLiteral()
	case '.':
		if isDigit(l.peekChar()) {
			return l.readNumber()
		}
		return l.single(TokenIllegal)
	}
	if isLetter(l.ch) {
		lit := l.readIdentifier()
		return Token{Type: LookupIdent(lit), Literal: lit}
	}
	if isDigit(l.ch) {
		return l.readNumber()
	}
	return l.single(TokenIllegal)
}

func (l *Lexer) single(t TokenType) Token {
	lit := string(l.ch)
	l.readChar()
	return Token{Type: t, Literal: lit}
}

func (l *Lexer) multi(t TokenType, n int) Token {
	start := l.pos
	for i := 0; i < n; i++ {
		l.readChar()
	}
	return Token{Type: t, Literal: l.input[start:l.pos]}
}

// choose picks between a one-character token and up to two
// two-character alternatives keyed by the following character.
func (l *Lexer) choose(base TokenType, c1 byte, t1 TokenType, c2 byte, t2 TokenType) Token {
	next := l.peekChar()
	switch {
	case c1 != 0 && next == c1:
		return l.multi(t1, 2)
	case c2 != 0 && next == c2:
		return l.multi(t2, 2)
	}
	return l.single(base)
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' || l.ch == '\f' || l.ch == '\v' {
		l.readChar()
	}
}

func (l *Lexer) skipComments() {
	for l.ch == '/' {
		if l.peekChar() == '/' {
			// Single-line comment
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			l.skipWhitespace()
		} else if l.peekChar() == '*' {
			// Multi-line comment
			l.readChar() // consume /
			l.readChar() // consume *
			for {
				if l.ch == 0 {
					break
				}
				if l.ch == '*' && l.peekChar() == '/' {
					l.readChar() // consume *
					l.readChar() // consume /
					break
				}
				l.readChar()
			}
			l.skipWhitespace()
		} else {
			break
		}
	}
}

func (l *Lexer) readIdentifier() string {
	pos := l.pos
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[pos:l.pos]
}

// readNumber scans an integer or floating literal. Integer literals keep
// their u/l suffix in the literal text. A literal running straight into an
// identifier character or a '.' is illegal.
func (l *Lexer) readNumber() Token {
	pos := l.pos
	isFloat := false
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		isFloat = true
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		if !isDigit(l.ch) {
			return l.illegalFrom(pos)
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if !isFloat {
		l.readIntSuffix()
	}
	if isLetter(l.ch) || isDigit(l.ch) || l.ch == '.' {
		return l.illegalFrom(pos)
	}
	if isFloat {
		return Token{Type: TokenFloat, Literal: l.input[pos:l.pos]}
	}
	return Token{Type: TokenInt, Literal: l.input[pos:l.pos]}
}

func (l *Lexer) readIntSuffix() {
	isU := func(c byte) bool { return c == 'u' || c == 'U' }
	isL := func(c byte) bool { return c == 'l' || c == 'L' }
	switch {
	case isU(l.ch):
		l.readChar()
		if isL(l.ch) {
			l.readChar()
		}
	case isL(l.ch):
		l.readChar()
		if isU(l.ch) {
			l.readChar()
		}
	}
}

// illegalFrom consumes the rest of a malformed word and returns it as an
// illegal token.
func (l *Lexer) illegalFrom(pos int) Token {
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '.' {
		l.readChar()
	}
	return Token{Type: TokenIllegal, Literal: l.input[pos:l.pos]}
}

func (l *Lexer) readString() Token {
	l.readChar() // consume opening quote
	pos := l.pos
	for l.ch != '"' {
		if l.ch == 0 || l.ch == '\n' {
			return Token{Type: TokenIllegal, Literal: l.input[pos-1 : l.pos]}
		}
		if l.ch == '\\' {
			l.readChar() // skip escape char
		}
		l.readChar()
	}
	str := l.input[pos:l.pos]
	l.readChar() // consume closing quote
	return Token{Type: TokenString, Literal: str}
}

func (l *Lexer) readCharLiteral() Token {
	l.readChar() // consume opening quote
	pos := l.pos
	switch l.ch {
	case '\'', '\n', 0:
		return Token{Type: TokenIllegal, Literal: l.input[pos-1 : l.pos]}
	case '\\':
		l.readChar()
		if !isEscape(l.ch) {
			return Token{Type: TokenIllegal, Literal: l.input[pos-1 : l.pos]}
		}
	}
	l.readChar()
	if l.ch != '\'' {
		return Token{Type: TokenIllegal, Literal: l.input[pos-1 : l.pos]}
	}
	lit := l.input[pos:l.pos]
	l.readChar() // consume closing quote
	return Token{Type: TokenChar, Literal: lit}
}

func isLetter(ch byte) bool {
	return unicode.IsLetter(rune(ch)) || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isEscape(ch byte) bool {
	switch ch {
	case '\'', '"', '?', '\\', 'a', 'b', 'f', 'n', 'r', 't', 'v', '0':
		return true
	}
	return false
}

// Unescape decodes the escapes in the body of a character or string literal.
func Unescape(lit string) []byte {
	out := make([]byte, 0, len(lit))
	for i := 0; i < len(lit); i++ {
		c := lit[i]
		if c != '\\' || i+1 >= len(lit) {
			out = append(out, c)
			continue
		}
		i++
		switch lit[i] {
		case 'a':
			out = append(out, 7)
		case 'b':
			out = append(out, 8)
		case 'f':
			out = append(out, 12)
		case 'n':
			out = append(out, 10)
		case 'r':
			out = append(out, 13)
		case 't':
			out = append(out, 9)
		case 'v':
			out = append(out, 11)
		case '0':
			out = append(out, 0)
		default:
			out = append(out, lit[i])
		}
	}
	return out
}
