// Package parser implements a recursive descent parser for C
package parser

import (
	"fmt"

	"github.com/raymyers/tacky-cc/pkg/cabs"
	"github.com/raymyers/tacky-cc/pkg/ctypes"
	"github.com/raymyers/tacky-cc/pkg/diag"
	"github.com/raymyers/tacky-cc/pkg/lexer"
	"github.com/raymyers/tacky-cc/pkg/unit"
)

// Parser parses C source code into a Cabs AST
type Parser struct {
	ts  lexer.TokenStream
	ctx *unit.Context
}

// bailout carries the first parse error up to ParseProgram.
type bailout struct {
	err *diag.Error
}

// New creates a new Parser reading from ts. Node ids come from ctx.
func New(ts lexer.TokenStream, ctx *unit.Context) *Parser {
	return &Parser{ts: ts, ctx: ctx}
}

// Parse lexes and parses a whole translation unit.
func Parse(source string, ctx *unit.Context) (*cabs.Program, error) {
	return New(lexer.NewStream(source), ctx).ParseProgram()
}

// ParseProgram parses declarations until end of input. It stops at the
// first error.
func (p *Parser) ParseProgram() (prog *cabs.Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			prog, err = nil, b.err
		}
	}()
	prog = &cabs.Program{}
	for !p.curTokenIs(lexer.TokenEOF) {
		prog.Decls = append(prog.Decls, p.parseDeclaration(false)...)
	}
	return prog, nil
}

func (p *Parser) fail(span diag.Span, format string, args ...any) {
	panic(bailout{diag.Parse(span, format, args...)})
}

// cur returns the current token. Illegal tokens are reported as soon as
// the parser looks at them.
func (p *Parser) cur() lexer.Token {
	tok := p.ts.Peek()
	if tok.Type == lexer.TokenIllegal {
		p.fail(tok.Span, "invalid token %q", tok.Literal)
	}
	return tok
}

func (p *Parser) peek() lexer.Token {
	p.cur()
	return p.ts.PeekN(1)
}

func (p *Parser) nextToken() lexer.Token {
	tok := p.cur()
	p.ts.Next()
	return tok
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.cur().Type == t
}

func (p *Parser) peekTokenIs(t lexer.TokenType) bool {
	return p.peek().Type == t
}

func (p *Parser) expect(t lexer.TokenType) lexer.Token {
	tok := p.cur()
	if tok.Type != t {
		p.fail(tok.Span, "expected %s, got %s", t, describe(tok))
	}
	p.ts.Next()
	return tok
}

func describe(tok lexer.Token) string {
	switch tok.Type {
	case lexer.TokenEOF:
		return "end of input"
	case lexer.TokenIdent, lexer.TokenInt, lexer.TokenFloat:
		return fmt.Sprintf("%q", tok.Literal)
	}
	return tok.Type.String()
}

func (p *Parser) loc(span diag.Span) cabs.Loc {
	return cabs.Loc{ID: p.ctx.NextID(), Span: span}
}

// specifiers is the result of parsing declaration specifiers.
type specifiers struct {
	base    ctypes.Type
	storage cabs.StorageClass
	span    diag.Span
}

// parseSpecifiers reads type keywords and storage classes in any order.
func (p *Parser) parseSpecifiers(allowStorage bool) specifiers {
	start := p.cur()
	var (
		seen    = make(map[lexer.TokenType]bool)
		nTypes  int
		storage cabs.StorageClass
	)
	for p.cur().Type.IsSpecifier() {
		tok := p.nextToken()
		switch tok.Type {
		case lexer.TokenStatic, lexer.TokenExtern:
			if !allowStorage {
				p.fail(tok.Span, "storage class not allowed here")
			}
			if storage != cabs.StorageNone {
				p.fail(tok.Span, "multiple storage classes in declaration")
			}
			storage = cabs.StorageStatic
			if tok.Type == lexer.TokenExtern {
				storage = cabs.StorageExtern
			}
			continue
		}
		if seen[tok.Type] {
			p.fail(tok.Span, "duplicate type specifier %s", tok.Type)
		}
		seen[tok.Type] = true
		nTypes++
	}
	if nTypes == 0 {
		p.fail(start.Span, "expected type specifier, got %s", describe(start))
	}
	base, msg := specifierType(seen, nTypes)
	if msg != "" {
		p.fail(start.Span, "%s", msg)
	}
	return specifiers{base: base, storage: storage, span: start.Span}
}

func specifierType(seen map[lexer.TokenType]bool, n int) (ctypes.Type, string) {
	switch {
	case seen[lexer.TokenVoid]:
		if n > 1 {
			return nil, "void cannot be combined with other type specifiers"
		}
		return ctypes.Void(), ""
	case seen[lexer.TokenDouble]:
		if n > 1 {
			return nil, "double cannot be combined with other type specifiers"
		}
		return ctypes.Double(), ""
	case seen[lexer.TokenSigned] && seen[lexer.TokenUnsigned]:
		return nil, "both signed and unsigned in type specifier"
	case seen[lexer.TokenChar_]:
		if seen[lexer.TokenLong] || seen[lexer.TokenInt_] {
			return nil, "invalid type specifier combination with char"
		}
		if seen[lexer.TokenSigned] {
			return ctypes.SChar(), ""
		}
		if seen[lexer.TokenUnsigned] {
			return ctypes.UChar(), ""
		}
		return ctypes.Char(), ""
	case seen[lexer.TokenLong]:
		if seen[lexer.TokenUnsigned] {
			return ctypes.ULong(), ""
		}
		return ctypes.Long(), ""
	case seen[lexer.TokenUnsigned]:
		return ctypes.UInt(), ""
	}
	return ctypes.Int(), ""
}

// parseDeclaration parses one declaration with any number of declarators.
// Block-scope function definitions are parsed here and rejected later.
func (p *Parser) parseDeclaration(forInit bool) []cabs.Declaration {
	spec := p.parseSpecifiers(true)
	var decls []cabs.Declaration
	for {
		d := p.parseDeclarator()
		name, span, typ, params := p.resolve(d, spec.base)
		if fn, ok := typ.(ctypes.Tfunction); ok {
			if forInit {
				p.fail(span, "function declaration in for loop initializer")
			}
			f := &cabs.FunDecl{Name: name, Params: params, Type: fn, Storage: spec.storage}
			if len(decls) == 0 && p.curTokenIs(lexer.TokenLBrace) {
				for _, prm := range params {
					if prm.Name == "" {
						p.fail(prm.Span, "parameter name omitted in definition of %s", name)
					}
				}
				f.Body = p.parseBlock()
				f.Loc = p.loc(span)
				return append(decls, f)
			}
			f.Loc = p.loc(span)
			decls = append(decls, f)
		} else {
			v := &cabs.VarDecl{Name: name, Type: typ, Storage: spec.storage}
			if p.curTokenIs(lexer.TokenAssign) {
				p.nextToken()
				v.Init = p.parseInitializer()
			}
			v.Loc = p.loc(span)
			decls = append(decls, v)
		}
		if !p.curTokenIs(lexer.TokenComma) {
			break
		}
		p.nextToken()
	}
	p.expect(lexer.TokenSemicolon)
	return decls
}

// parseInitializer parses an expression or a brace-enclosed list.
func (p *Parser) parseInitializer() cabs.Initializer {
	if !p.curTokenIs(lexer.TokenLBrace) {
		e := p.parseExpression()
		return &cabs.SingleInit{Loc: p.loc(e.Location().Span), Expr: e}
	}
	open := p.nextToken()
	if p.curTokenIs(lexer.TokenRBrace) {
		p.fail(p.cur().Span, "empty initializer list")
	}
	var items []cabs.Initializer
	for {
		items = append(items, p.parseInitializer())
		if !p.curTokenIs(lexer.TokenComma) {
			break
		}
		p.nextToken()
		if p.curTokenIs(lexer.TokenRBrace) {
			break
		}
	}
	p.expect(lexer.TokenRBrace)
	return &cabs.CompoundInit{Loc: p.loc(open.Span), Items: items}
}

// isTypeStart reports whether tok begins a type name inside parentheses.
func isTypeStart(tok lexer.Token) bool {
	return tok.Type.IsSpecifier()
}

// parseTypeName parses the type in a cast or sizeof.
func (p *Parser) parseTypeName() ctypes.Type {
	spec := p.parseSpecifiers(false)
	_, _, typ, _ := p.resolve(p.parseAbstractDeclarator(), spec.base)
	return typ
}
