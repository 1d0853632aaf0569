package parser

import (
	"errors"
	"strconv"

	"github.com/raymyers/tacky-cc/pkg/cabs"
	"github.com/raymyers/tacky-cc/pkg/consts"
	"github.com/raymyers/tacky-cc/pkg/ctypes"
	"github.com/raymyers/tacky-cc/pkg/lexer"
)

// Binary operator precedences, higher binds tighter
const (
	precLowest      = 0
	precAssign      = 1
	precConditional = 3
	precOr          = 5
	precAnd         = 10
	precBitOr       = 15
	precBitXor      = 20
	precBitAnd      = 25
	precEquality    = 30
	precRelational  = 35
	precShift       = 40
	precAdditive    = 45
	precMultiply    = 50
)

var binaryOps = map[lexer.TokenType]struct {
	prec int
	op   cabs.BinaryOp
}{
	lexer.TokenStar:      {precMultiply, cabs.OpMul},
	lexer.TokenSlash:     {precMultiply, cabs.OpDiv},
	lexer.TokenPercent:   {precMultiply, cabs.OpMod},
	lexer.TokenPlus:      {precAdditive, cabs.OpAdd},
	lexer.TokenMinus:     {precAdditive, cabs.OpSub},
	lexer.TokenShl:       {precShift, cabs.OpShl},
	lexer.TokenShr:       {precShift, cabs.OpShr},
	lexer.TokenLt:        {precRelational, cabs.OpLt},
	lexer.TokenLe:        {precRelational, cabs.OpLe},
	lexer.TokenGt:        {precRelational, cabs.OpGt},
	lexer.TokenGe:        {precRelational, cabs.OpGe},
	lexer.TokenEq:        {precEquality, cabs.OpEq},
	lexer.TokenNe:        {precEquality, cabs.OpNe},
	lexer.TokenAmpersand: {precBitAnd, cabs.OpBitAnd},
	lexer.TokenCaret:     {precBitXor, cabs.OpBitXor},
	lexer.TokenPipe:      {precBitOr, cabs.OpBitOr},
	lexer.TokenAnd:       {precAnd, cabs.OpAnd},
	lexer.TokenOr:        {precOr, cabs.OpOr},
}

var assignOps = map[lexer.TokenType]cabs.AssignOp{
	lexer.TokenAssign:        cabs.AssignPlain,
	lexer.TokenPlusAssign:    cabs.AssignAdd,
	lexer.TokenMinusAssign:   cabs.AssignSub,
	lexer.TokenStarAssign:    cabs.AssignMul,
	lexer.TokenSlashAssign:   cabs.AssignDiv,
	lexer.TokenPercentAssign: cabs.AssignMod,
	lexer.TokenAndAssign:     cabs.AssignBitAnd,
	lexer.TokenOrAssign:      cabs.AssignBitOr,
	lexer.TokenXorAssign:     cabs.AssignBitXor,
	lexer.TokenShlAssign:     cabs.AssignShl,
	lexer.TokenShrAssign:     cabs.AssignShr,
}

var unaryOps = map[lexer.TokenType]cabs.UnaryOp{
	lexer.TokenMinus: cabs.OpNeg,
	lexer.TokenPlus:  cabs.OpPlus,
	lexer.TokenNot:   cabs.OpNot,
	lexer.TokenTilde: cabs.OpBitNot,
}

func (p *Parser) parseExpression() cabs.Expr {
	return p.parseExpr(precLowest)
}

// parseExpr uses precedence climbing. Assignment and the conditional
// operator are right associative.
func (p *Parser) parseExpr(minPrec int) cabs.Expr {
	left := p.parseUnary()
	for {
		tok := p.cur()
		if op, ok := assignOps[tok.Type]; ok {
			if precAssign < minPrec {
				return left
			}
			p.nextToken()
			right := p.parseExpr(precAssign)
			left = &cabs.Assign{Loc: p.loc(tok.Span), Op: op, Left: left, Right: right}
			continue
		}
		if tok.Type == lexer.TokenQuestion {
			if precConditional < minPrec {
				return left
			}
			p.nextToken()
			then := p.parseExpr(precLowest)
			p.expect(lexer.TokenColon)
			els := p.parseExpr(precConditional)
			left = &cabs.Conditional{Loc: p.loc(tok.Span), Cond: left, Then: then, Else: els}
			continue
		}
		bin, ok := binaryOps[tok.Type]
		if !ok || bin.prec < minPrec {
			return left
		}
		p.nextToken()
		right := p.parseExpr(bin.prec + 1)
		left = &cabs.Binary{Loc: p.loc(tok.Span), Op: bin.op, Left: left, Right: right}
	}
}

// parseUnary parses prefix operators, casts and sizeof.
func (p *Parser) parseUnary() cabs.Expr {
	tok := p.cur()
	if op, ok := unaryOps[tok.Type]; ok {
		p.nextToken()
		e := p.parseUnary()
		return &cabs.Unary{Loc: p.loc(tok.Span), Op: op, Expr: e}
	}
	switch tok.Type {
	case lexer.TokenStar:
		p.nextToken()
		e := p.parseUnary()
		return &cabs.Dereference{Loc: p.loc(tok.Span), Expr: e}
	case lexer.TokenAmpersand:
		p.nextToken()
		e := p.parseUnary()
		return &cabs.AddressOf{Loc: p.loc(tok.Span), Expr: e}
	case lexer.TokenIncrement, lexer.TokenDecrement:
		p.nextToken()
		e := p.parseUnary()
		return &cabs.Prefix{Loc: p.loc(tok.Span), Op: incDec(tok.Type), Expr: e}
	case lexer.TokenSizeof:
		p.nextToken()
		if p.curTokenIs(lexer.TokenLParen) && isTypeStart(p.peek()) {
			p.nextToken()
			typ := p.parseTypeName()
			p.expect(lexer.TokenRParen)
			return &cabs.Sizeof{Loc: p.loc(tok.Span), Operand: typ}
		}
		e := p.parseUnary()
		return &cabs.Sizeof{Loc: p.loc(tok.Span), Expr: e}
	case lexer.TokenLParen:
		if isTypeStart(p.peek()) {
			p.nextToken()
			typ := p.parseTypeName()
			p.expect(lexer.TokenRParen)
			e := p.parseUnary()
			return &cabs.Cast{Loc: p.loc(tok.Span), Target: typ, Expr: e}
		}
	}
	return p.parsePostfix()
}

func incDec(t lexer.TokenType) cabs.IncDec {
	if t == lexer.TokenIncrement {
		return cabs.Inc
	}
	return cabs.Dec
}

// parsePostfix parses subscripts and postfix ++/-- after a primary.
func (p *Parser) parsePostfix() cabs.Expr {
	e := p.parsePrimary()
	for {
		tok := p.cur()
		switch tok.Type {
		case lexer.TokenLBracket:
			p.nextToken()
			idx := p.parseExpression()
			p.expect(lexer.TokenRBracket)
			e = &cabs.Subscript{Loc: p.loc(tok.Span), Array: e, Index: idx}
		case lexer.TokenIncrement, lexer.TokenDecrement:
			p.nextToken()
			e = &cabs.Postfix{Loc: p.loc(tok.Span), Op: incDec(tok.Type), Expr: e}
		default:
			return e
		}
	}
}

func (p *Parser) parsePrimary() cabs.Expr {
	tok := p.cur()
	switch tok.Type {
	case lexer.TokenInt:
		p.nextToken()
		c := p.intConstant(tok)
		return &cabs.Constant{Loc: p.loc(tok.Span), Value: intConst(c)}
	case lexer.TokenFloat:
		p.nextToken()
		v, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			p.fail(tok.Span, "malformed floating constant %s", tok.Literal)
		}
		return &cabs.Constant{Loc: p.loc(tok.Span), Value: consts.ConstDouble{Value: v}}
	case lexer.TokenChar:
		// plain char is signed, so bytes above 0x7f are negative
		p.nextToken()
		b := lexer.Unescape(tok.Literal)
		return &cabs.Constant{Loc: p.loc(tok.Span), Value: consts.ConstInt{Value: int32(int8(b[0]))}}
	case lexer.TokenString:
		var value []byte
		span := tok.Span
		for p.curTokenIs(lexer.TokenString) {
			s := p.nextToken()
			value = append(value, lexer.Unescape(s.Literal)...)
			span = span.To(s.Span)
		}
		return &cabs.StringLiteral{Loc: p.loc(span), Value: value}
	case lexer.TokenIdent:
		p.nextToken()
		if !p.curTokenIs(lexer.TokenLParen) {
			return &cabs.Var{Loc: p.loc(tok.Span), Name: tok.Literal}
		}
		p.nextToken()
		args := []cabs.Expr{}
		if !p.curTokenIs(lexer.TokenRParen) {
			for {
				args = append(args, p.parseExpression())
				if !p.curTokenIs(lexer.TokenComma) {
					break
				}
				p.nextToken()
			}
		}
		p.expect(lexer.TokenRParen)
		return &cabs.FunctionCall{Loc: p.loc(tok.Span), Name: tok.Literal, Args: args}
	case lexer.TokenLParen:
		p.nextToken()
		e := p.parseExpression()
		p.expect(lexer.TokenRParen)
		return e
	}
	p.fail(tok.Span, "expected expression, got %s", describe(tok))
	return nil
}

func intConst(c constInt) consts.Const {
	switch {
	case ctypes.Equal(c.typ, ctypes.Int()):
		return consts.ConstInt{Value: int32(c.value)}
	case ctypes.Equal(c.typ, ctypes.UInt()):
		return consts.ConstUInt{Value: uint32(c.value)}
	case ctypes.Equal(c.typ, ctypes.Long()):
		return consts.ConstLong{Value: int64(c.value)}
	}
	return consts.ConstULong{Value: c.value}
}
