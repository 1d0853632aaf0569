package lexer

import "github.com/raymyers/tacky-cc/pkg/diag"

// TokenStream is the token source consumed by the parser.
type TokenStream interface {
	// Peek returns the next token without consuming it.
	Peek() Token
	// PeekN returns the token n positions ahead (PeekN(0) == Peek()).
	PeekN(n int) Token
	// Next consumes and returns the next token.
	Next() Token
	// Span returns the span of the most recently consumed token.
	Span() diag.Span
}

// Stream adapts a Lexer, or an already lexed token slice, to TokenStream
// with unbounded lookahead.
type Stream struct {
	l    *Lexer
	buf  []Token
	last diag.Span
}

// NewStream creates a token stream over the given source.
func NewStream(input string) *Stream {
	return &Stream{l: New(input)}
}

// NewTokenStream creates a stream over tokens produced by Tokenize. Reads
// past the end repeat the final token.
func NewTokenStream(toks []Token) *Stream {
	if len(toks) == 0 {
		toks = []Token{{Type: TokenEOF}}
	}
	return &Stream{buf: append([]Token(nil), toks...)}
}

func (s *Stream) fill(n int) {
	for len(s.buf) <= n {
		if s.l == nil {
			s.buf = append(s.buf, s.buf[len(s.buf)-1])
			continue
		}
		s.buf = append(s.buf, s.l.NextToken())
	}
}

func (s *Stream) Peek() Token {
	return s.PeekN(0)
}

func (s *Stream) PeekN(n int) Token {
	s.fill(n)
	return s.buf[n]
}

func (s *Stream) Next() Token {
	s.fill(0)
	tok := s.buf[0]
	if tok.Type != TokenEOF {
		s.buf = s.buf[1:]
	}
	s.last = tok.Span
	return tok
}

func (s *Stream) Span() diag.Span {
	return s.last
}

// Tokenize lexes the whole input. It stops after the first illegal token.
func Tokenize(input string) []Token {
	l := New(input)
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == TokenEOF || tok.Type == TokenIllegal {
			return toks
		}
	}
}
