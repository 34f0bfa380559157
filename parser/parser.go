// Package parser implements a recursive-descent parser for formula text,
// following the fixed grammar:
//
//	expr        := comparison
//	comparison  := arith ( ( '=' | '<>' | '<' | '<=' | '>' | '>=' ) arith )?
//	arith       := term    ( ( '+' | '-' ) term )*
//	term        := factor  ( ( '*' | '/' ) factor )*
//	factor      := '(' expr ')' | function | ref-or-range | number | string
//	function    := IDENT '(' args ')'
package parser

import (
	"fmt"
	"strconv"

	"liveledger/ast"
	"liveledger/lexer"
	"liveledger/token"
)

// Parser turns formula text into an ast.Expr. One function per grammar
// level, mirroring the hand-written descent in the reference evaluator
// (parse_arithmetic_expression / parse_term / parse_factor).
type Parser struct {
	l *lexer.Lexer

	curToken  token.Token
	peekToken token.Token

	err error
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

// Parse consumes the whole input and returns the expression tree, or the
// first error encountered (malformed formula text — spec's "parse" error).
func (p *Parser) Parse() (ast.Expr, error) {
	expr := p.parseComparison()
	if p.err != nil {
		return nil, p.err
	}
	if p.curToken.Type != token.EOF {
		return nil, fmt.Errorf("unexpected token %q", p.curToken.Literal)
	}
	return expr, nil
}

func (p *Parser) parseComparison() ast.Expr {
	left := p.parseArith()
	if p.err != nil {
		return left
	}
	switch p.curToken.Type {
	case token.EQ, token.NOT_EQ, token.LT, token.LE, token.GT, token.GE:
		op := string(p.curToken.Type)
		p.nextToken()
		right := p.parseArith()
		return &ast.Binary{Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseArith() ast.Expr {
	left := p.parseTerm()
	for p.err == nil && (p.curToken.Type == token.PLUS || p.curToken.Type == token.MINUS) {
		op := string(p.curToken.Type)
		p.nextToken()
		right := p.parseTerm()
		left = &ast.Binary{Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseTerm() ast.Expr {
	left := p.parseFactor()
	for p.err == nil && (p.curToken.Type == token.ASTERISK || p.curToken.Type == token.SLASH) {
		op := string(p.curToken.Type)
		p.nextToken()
		right := p.parseFactor()
		left = &ast.Binary{Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseFactor() ast.Expr {
	switch p.curToken.Type {
	case token.LPAREN:
		p.nextToken()
		inner := p.parseComparison()
		if p.err != nil {
			return inner
		}
		if p.curToken.Type != token.RPAREN {
			p.fail("expected ')'")
			return inner
		}
		p.nextToken()
		return inner
	case token.NUMBER:
		v, err := strconv.ParseFloat(p.curToken.Literal, 64)
		if err != nil {
			p.fail("malformed number %q", p.curToken.Literal)
			return nil
		}
		p.nextToken()
		return &ast.Number{Value: v}
	case token.STRING:
		lit := p.curToken.Literal
		p.nextToken()
		return &ast.String{Value: lit}
	case token.MINUS:
		p.nextToken()
		operand := p.parseFactor()
		return &ast.Binary{Op: "-", Left: &ast.Number{Value: 0}, Right: operand}
	case token.REF:
		lit := p.curToken.Literal
		p.nextToken()
		if containsColon(lit) {
			return &ast.RangeRef{Text: lit}
		}
		return &ast.CellRef{Text: lit}
	case token.IDENT:
		return p.parseCall()
	default:
		p.fail("unexpected token %q", p.curToken.Literal)
		return nil
	}
}

func (p *Parser) parseCall() ast.Expr {
	name := p.curToken.Literal
	p.nextToken()
	if p.curToken.Type != token.LPAREN {
		p.fail("expected '(' after function name %q", name)
		return nil
	}
	p.nextToken()

	var args []ast.Expr
	if p.curToken.Type != token.RPAREN {
		args = append(args, p.parseComparison())
		for p.err == nil && p.curToken.Type == token.COMMA {
			p.nextToken()
			args = append(args, p.parseComparison())
		}
	}
	if p.err != nil {
		return nil
	}
	if p.curToken.Type != token.RPAREN {
		p.fail("expected ')' to close call to %q", name)
		return nil
	}
	p.nextToken()
	return &ast.Call{Name: name, Args: args}
}

func (p *Parser) fail(format string, args ...interface{}) {
	if p.err == nil {
		p.err = fmt.Errorf(format, args...)
	}
}

func containsColon(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			return true
		}
	}
	return false
}
