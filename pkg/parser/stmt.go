package parser

import (
	"github.com/raymyers/tacky-cc/pkg/cabs"
	"github.com/raymyers/tacky-cc/pkg/lexer"
)

func (p *Parser) parseBlock() *cabs.Block {
	open := p.expect(lexer.TokenLBrace)
	block := &cabs.Block{Items: []cabs.BlockItem{}}
	for !p.curTokenIs(lexer.TokenRBrace) {
		if p.curTokenIs(lexer.TokenEOF) {
			p.fail(p.cur().Span, "expected }, got end of input")
		}
		if p.cur().Type.IsSpecifier() {
			for _, d := range p.parseDeclaration(false) {
				block.Items = append(block.Items, d)
			}
			continue
		}
		block.Items = append(block.Items, p.parseStatement())
	}
	p.nextToken()
	block.Loc = p.loc(open.Span)
	return block
}

func (p *Parser) parseStatement() cabs.Stmt {
	tok := p.cur()
	switch tok.Type {
	case lexer.TokenReturn:
		p.nextToken()
		s := &cabs.Return{}
		if !p.curTokenIs(lexer.TokenSemicolon) {
			s.Expr = p.parseExpression()
		}
		p.expect(lexer.TokenSemicolon)
		s.Loc = p.loc(tok.Span)
		return s
	case lexer.TokenIf:
		return p.parseIf()
	case lexer.TokenLBrace:
		return p.parseBlock()
	case lexer.TokenWhile:
		p.nextToken()
		p.expect(lexer.TokenLParen)
		cond := p.parseExpression()
		p.expect(lexer.TokenRParen)
		body := p.parseStatement()
		return &cabs.While{Loc: p.loc(tok.Span), Cond: cond, Body: body}
	case lexer.TokenDo:
		p.nextToken()
		body := p.parseStatement()
		p.expect(lexer.TokenWhile)
		p.expect(lexer.TokenLParen)
		cond := p.parseExpression()
		p.expect(lexer.TokenRParen)
		p.expect(lexer.TokenSemicolon)
		return &cabs.DoWhile{Loc: p.loc(tok.Span), Body: body, Cond: cond}
	case lexer.TokenFor:
		return p.parseFor()
	case lexer.TokenSwitch:
		p.nextToken()
		p.expect(lexer.TokenLParen)
		e := p.parseExpression()
		p.expect(lexer.TokenRParen)
		body := p.parseStatement()
		return &cabs.Switch{Loc: p.loc(tok.Span), Expr: e, Body: body}
	case lexer.TokenCase:
		p.nextToken()
		value := p.parseExpression()
		p.expect(lexer.TokenColon)
		body := p.parseStatement()
		return &cabs.Case{Loc: p.loc(tok.Span), Value: value, Body: body}
	case lexer.TokenDefault:
		p.nextToken()
		p.expect(lexer.TokenColon)
		body := p.parseStatement()
		return &cabs.Default{Loc: p.loc(tok.Span), Body: body}
	case lexer.TokenBreak:
		p.nextToken()
		p.expect(lexer.TokenSemicolon)
		return &cabs.Break{Loc: p.loc(tok.Span)}
	case lexer.TokenContinue:
		p.nextToken()
		p.expect(lexer.TokenSemicolon)
		return &cabs.Continue{Loc: p.loc(tok.Span)}
	case lexer.TokenSemicolon:
		p.nextToken()
		return &cabs.Null{Loc: p.loc(tok.Span)}
	}
	if tok.Type.IsSpecifier() {
		p.fail(tok.Span, "declaration is not allowed here")
	}
	e := p.parseExpression()
	p.expect(lexer.TokenSemicolon)
	return &cabs.ExprStmt{Loc: p.loc(tok.Span), Expr: e}
}

func (p *Parser) parseIf() cabs.Stmt {
	tok := p.expect(lexer.TokenIf)
	p.expect(lexer.TokenLParen)
	cond := p.parseExpression()
	p.expect(lexer.TokenRParen)
	s := &cabs.If{Cond: cond, Then: p.parseStatement()}
	if p.curTokenIs(lexer.TokenElse) {
		p.nextToken()
		s.Else = p.parseStatement()
	}
	s.Loc = p.loc(tok.Span)
	return s
}

func (p *Parser) parseFor() cabs.Stmt {
	tok := p.expect(lexer.TokenFor)
	p.expect(lexer.TokenLParen)
	var init cabs.ForInit
	if initTok := p.cur(); initTok.Type.IsSpecifier() {
		fi := &cabs.ForInitDecl{}
		for _, d := range p.parseDeclaration(true) {
			fi.Decls = append(fi.Decls, d.(*cabs.VarDecl))
		}
		fi.Loc = p.loc(initTok.Span)
		init = fi
	} else {
		fi := &cabs.ForInitExpr{}
		if !p.curTokenIs(lexer.TokenSemicolon) {
			fi.Expr = p.parseExpression()
		}
		p.expect(lexer.TokenSemicolon)
		fi.Loc = p.loc(initTok.Span)
		init = fi
	}
	s := &cabs.For{Init: init}
	if !p.curTokenIs(lexer.TokenSemicolon) {
		s.Cond = p.parseExpression()
	}
	p.expect(lexer.TokenSemicolon)
	if !p.curTokenIs(lexer.TokenRParen) {
		s.Post = p.parseExpression()
	}
	p.expect(lexer.TokenRParen)
	s.Body = p.parseStatement()
	s.Loc = p.loc(tok.Span)
	return s
}
