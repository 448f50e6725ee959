package parser

import (
	"strconv"

	"github.com/ontodsl/ontoc/ast"
	"github.com/ontodsl/ontoc/token"
)

// Operator precedence levels
const (
	LOWEST   = iota
	ADD_PREC // +, -
	MUL_PREC // *, /
)

// maxExprDepth bounds expression nesting so pathological input cannot
// exhaust the stack.
const maxExprDepth = 64

func precedence(tok token.Token) int {
	switch tok {
	case token.PLUS, token.MINUS:
		return ADD_PREC
	case token.ASTERISK, token.SLASH:
		return MUL_PREC
	default:
		return LOWEST
	}
}

// parseExpression implements precedence climbing over the two operator
// levels of the grammar: addition/subtraction below multiplication/division,
// with atoms at the bottom.
func (p *Parser) parseExpression(prec, depth int) ast.Expression {
	if depth > maxExprDepth {
		p.setErr(&ParseError{
			Pos:      p.current.Pos,
			Expected: "expression nested at most 64 levels deep",
			Found:    "deeper nesting",
		})
		return nil
	}

	left := p.parseAtom(depth)
	if left == nil {
		return nil
	}

	for p.err == nil && prec < precedence(p.current.Token) {
		op := p.current.Token
		pos := left.Pos()
		p.nextToken()
		right := p.parseExpression(precedence(op), depth+1)
		if right == nil {
			return nil
		}
		left = &ast.BinaryExpr{Position: pos, Left: left, Op: op, Right: right}
	}

	return left
}

// parseAtom parses the expression atoms: identifiers (possibly dotted),
// string literals, numeric literals, and single-argument function calls.
func (p *Parser) parseAtom(depth int) ast.Expression {
	switch p.current.Token {
	case token.IDENT:
		if p.peekIs(token.LPAREN) {
			return p.parseFunctionCall()
		}
		return p.parseIdentifier()
	case token.STRING:
		lit := &ast.StringLiteral{Position: p.current.Pos, Value: p.current.Value}
		p.nextToken()
		return lit
	case token.NUMBER:
		lit := &ast.NumberLiteral{Position: p.current.Pos, Text: p.current.Value}
		lit.Value, _ = strconv.ParseFloat(lit.Text, 64)
		p.nextToken()
		return lit
	default:
		p.setErr(&ParseError{
			Pos:      p.current.Pos,
			Expected: "expression",
			Found:    p.current.Token.String(),
		})
		return nil
	}
}

func (p *Parser) parseIdentifier() ast.Expression {
	ident := &ast.Identifier{
		Position: p.current.Pos,
		Parts:    []string{p.current.Value},
	}
	p.nextToken()
	if p.currentIs(token.DOT) {
		p.nextToken()
		ident.Parts = append(ident.Parts, p.expect(token.IDENT).Value)
	}
	return ident
}

func (p *Parser) parseFunctionCall() ast.Expression {
	call := &ast.FunctionCall{Position: p.current.Pos, Name: p.current.Value}
	p.nextToken()
	p.expect(token.LPAREN)
	call.Arg = p.expect(token.IDENT).Value
	p.expect(token.RPAREN)
	return call
}
