package parser

import (
	"strconv"

	"github.com/raymyers/tacky-cc/pkg/cabs"
	"github.com/raymyers/tacky-cc/pkg/ctypes"
	"github.com/raymyers/tacky-cc/pkg/diag"
	"github.com/raymyers/tacky-cc/pkg/lexer"
)

// declarator is the syntactic shape of a declarator before it is applied
// to a base type.
type declarator interface {
	implDeclarator()
}

type identDecl struct {
	name string
	span diag.Span
}

// abstractDecl stands in for the missing identifier of a type name.
type abstractDecl struct{}

type pointerDecl struct {
	inner declarator
}

type arrayDecl struct {
	inner declarator
	size  int64
}

// parenDecl records a parenthesized declarator.
type parenDecl struct {
	inner declarator
}

type funDecl struct {
	inner  declarator
	params []paramDecl
	span   diag.Span
}

type paramDecl struct {
	base ctypes.Type
	decl declarator
	span diag.Span
}

func (identDecl) implDeclarator()    {}
func (abstractDecl) implDeclarator() {}
func (pointerDecl) implDeclarator()  {}
func (arrayDecl) implDeclarator()    {}
func (funDecl) implDeclarator()      {}
func (parenDecl) implDeclarator()    {}

// parseDeclarator parses
//
//	declarator := '*' declarator | direct-declarator
//	direct-declarator := (IDENT | '(' declarator ')') suffix*
//	suffix := '[' INT ']' | '(' param-list ')'
func (p *Parser) parseDeclarator() declarator {
	return p.parseDeclaratorOpt(false)
}

// parseParamDeclarator parses a parameter declarator, whose identifier
// may be omitted.
func (p *Parser) parseParamDeclarator() declarator {
	return p.parseDeclaratorOpt(true)
}

func (p *Parser) parseDeclaratorOpt(abstract bool) declarator {
	if p.curTokenIs(lexer.TokenStar) {
		p.nextToken()
		return pointerDecl{inner: p.parseDeclaratorOpt(abstract)}
	}
	var d declarator
	switch tok := p.cur(); {
	case tok.Type == lexer.TokenIdent:
		p.nextToken()
		d = identDecl{name: tok.Literal, span: tok.Span}
	case tok.Type == lexer.TokenLParen && !(abstract && p.startsParamList()):
		p.nextToken()
		d = parenDecl{inner: p.parseDeclaratorOpt(abstract)}
		p.expect(lexer.TokenRParen)
	case abstract:
		d = abstractDecl{}
	default:
		p.fail(tok.Span, "expected declarator, got %s", describe(tok))
	}
	for {
		switch {
		case p.curTokenIs(lexer.TokenLBracket):
			d = arrayDecl{inner: d, size: p.parseArraySize()}
		case p.curTokenIs(lexer.TokenLParen):
			open := p.cur().Span
			d = funDecl{inner: d, params: p.parseParams(), span: open}
		default:
			return d
		}
	}
}

// startsParamList reports whether the '(' at the current token opens a
// parameter list rather than a parenthesized declarator.
func (p *Parser) startsParamList() bool {
	next := p.peek()
	return next.Type == lexer.TokenRParen || isTypeStart(next)
}

// parseAbstractDeclarator parses the declarator of a type name, which
// has no identifier and no function suffixes.
func (p *Parser) parseAbstractDeclarator() declarator {
	if p.curTokenIs(lexer.TokenStar) {
		p.nextToken()
		return pointerDecl{inner: p.parseAbstractDeclarator()}
	}
	var d declarator = abstractDecl{}
	if p.curTokenIs(lexer.TokenLParen) {
		open := p.nextToken()
		d = p.parseAbstractDeclarator()
		if _, empty := d.(abstractDecl); empty {
			p.fail(open.Span, "expected abstract declarator")
		}
		p.expect(lexer.TokenRParen)
	}
	for p.curTokenIs(lexer.TokenLBracket) {
		d = arrayDecl{inner: d, size: p.parseArraySize()}
	}
	return d
}

// parseArraySize parses '[' INT ']'. Only positive integer literals are
// accepted as dimensions.
func (p *Parser) parseArraySize() int64 {
	p.expect(lexer.TokenLBracket)
	tok := p.cur()
	switch tok.Type {
	case lexer.TokenInt:
	case lexer.TokenFloat:
		p.fail(tok.Span, "array dimension must be an integer constant")
	case lexer.TokenMinus:
		p.fail(tok.Span, "array dimension must be positive")
	case lexer.TokenRBracket:
		p.fail(tok.Span, "array dimension is required")
	default:
		p.fail(tok.Span, "array dimension must be an integer constant, got %s", describe(tok))
	}
	p.nextToken()
	c := p.intConstant(tok)
	n := consts64(c)
	if n <= 0 {
		p.fail(tok.Span, "array dimension must be positive")
	}
	p.expect(lexer.TokenRBracket)
	return n
}

// parseParams parses '(' ('void' | param (',' param)*)? ')'.
func (p *Parser) parseParams() []paramDecl {
	p.expect(lexer.TokenLParen)
	params := []paramDecl{}
	if p.curTokenIs(lexer.TokenRParen) {
		p.nextToken()
		return params
	}
	if p.curTokenIs(lexer.TokenVoid) && p.peekTokenIs(lexer.TokenRParen) {
		p.nextToken()
		p.nextToken()
		return params
	}
	for {
		start := p.cur().Span
		spec := p.parseSpecifiers(false)
		params = append(params, paramDecl{base: spec.base, decl: p.parseParamDeclarator(), span: start})
		if !p.curTokenIs(lexer.TokenComma) {
			break
		}
		p.nextToken()
	}
	p.expect(lexer.TokenRParen)
	return params
}

// resolve applies a declarator to its base type, walking from the outside
// in so that the innermost derivation ends up outermost in the type.
func (p *Parser) resolve(d declarator, base ctypes.Type) (string, diag.Span, ctypes.Type, []cabs.Param) {
	switch d := d.(type) {
	case identDecl:
		return d.name, d.span, base, nil
	case abstractDecl:
		return "", diag.Span{}, base, nil
	case pointerDecl:
		return p.resolve(d.inner, ctypes.Pointer(base))
	case arrayDecl:
		return p.resolve(d.inner, ctypes.Array(base, d.size))
	case parenDecl:
		// int (f(void))[3] declares f returning a pointer to the array
		// type written after the parentheses.
		if _, fn := unparen(d.inner).(funDecl); fn && ctypes.IsArray(base) {
			base = ctypes.Pointer(base)
		}
		return p.resolve(d.inner, base)
	case funDecl:
		var ident identDecl
		switch inner := unparen(d.inner).(type) {
		case identDecl:
			ident = inner
		case abstractDecl:
			ident = identDecl{span: d.span}
		default:
			p.fail(d.span, "Can't apply additional derivations to a function type")
		}
		if ctypes.IsArray(base) {
			p.fail(ident.span, "function %s cannot return an array", ident.name)
		}
		var (
			params []cabs.Param
			types  []ctypes.Type
		)
		for _, pd := range d.params {
			name, span, typ, _ := p.resolve(pd.decl, pd.base)
			if name == "" {
				span = pd.span
			}
			if ctypes.IsFunction(typ) {
				p.fail(span, "parameter %s cannot have function type", paramLabel(name))
			}
			params = append(params, cabs.Param{Name: name, Type: typ, Span: span})
			types = append(types, typ)
		}
		return ident.name, ident.span, ctypes.Function(types, base), params
	}
	panic(diag.Internal("parser: unknown declarator %T", d))
}

func paramLabel(name string) string {
	if name == "" {
		return "(unnamed)"
	}
	return name
}

func unparen(d declarator) declarator {
	for {
		pd, ok := d.(parenDecl)
		if !ok {
			return d
		}
		d = pd.inner
	}
}

// intConstant types an integer literal by its value and suffix.
func (p *Parser) intConstant(tok lexer.Token) constInt {
	digits, unsigned, long := splitIntSuffix(tok.Literal)
	v, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		p.fail(tok.Span, "integer constant %s is too large", tok.Literal)
	}
	switch {
	case unsigned && long:
		return constInt{value: v, typ: ctypes.ULong()}
	case unsigned:
		if v <= 1<<32-1 {
			return constInt{value: v, typ: ctypes.UInt()}
		}
		return constInt{value: v, typ: ctypes.ULong()}
	}
	if v > 1<<63-1 {
		p.fail(tok.Span, "integer constant %s is too large for long", tok.Literal)
	}
	if !long && v <= 1<<31-1 {
		return constInt{value: v, typ: ctypes.Int()}
	}
	return constInt{value: v, typ: ctypes.Long()}
}

type constInt struct {
	value uint64
	typ   ctypes.Type
}

func consts64(c constInt) int64 {
	if c.value > 1<<63-1 {
		return -1
	}
	return int64(c.value)
}

func splitIntSuffix(lit string) (digits string, unsigned, long bool) {
	i := len(lit)
	for i > 0 {
		switch lit[i-1] {
		case 'u', 'U':
			unsigned = true
		case 'l', 'L':
			long = true
		default:
			return lit[:i], unsigned, long
		}
		i--
	}
	return lit[:i], unsigned, long
}
