package latch

import (
	"github.com/isometry-app/isometry/pkg/types"
)

type parser struct {
	tokens []token
	pos    int
}

// Parse tokenizes and parses an expression into its AST. Syntax failures are
// reported as InvalidData naming the offending token.
func Parse(input string) (Expr, error) {
	tokens, err := tokenize(input)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, types.Invalidf("empty filter expression")
	}
	p := &parser{tokens: tokens}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.tokens) {
		return nil, types.Invalidf("unexpected token %q", p.tokens[p.pos].text)
	}
	return expr, nil
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

// expr := term (OR term)*
func (p *parser) parseExpr() (Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		t, ok := p.peek()
		if !ok || t.kind != tokenOr {
			return left, nil
		}
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &OrExpr{Left: left, Right: right}
	}
}

// term := factor (AND factor)*
func (p *parser) parseTerm() (Expr, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for {
		t, ok := p.peek()
		if !ok || t.kind != tokenAnd {
			return left, nil
		}
		p.pos++
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &AndExpr{Left: left, Right: right}
	}
}

// factor := NOT factor | '(' expr ')' | field ':' value
func (p *parser) parseFactor() (Expr, error) {
	t, ok := p.peek()
	if !ok {
		return nil, types.Invalidf("unexpected end of expression")
	}
	switch t.kind {
	case tokenNot:
		p.pos++
		inner, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &NotExpr{Expr: inner}, nil
	case tokenLParen:
		p.pos++
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		closing, ok := p.peek()
		if !ok || closing.kind != tokenRParen {
			return nil, types.Invalidf("missing closing parenthesis")
		}
		p.pos++
		return inner, nil
	case tokenField:
		p.pos++
		return &FieldValue{Field: t.field, Value: t.value}, nil
	case tokenIdent:
		p.pos++
		return &FieldValue{Field: t.text, Bare: true}, nil
	default:
		return nil, types.Invalidf("unexpected token %q", t.text)
	}
}
