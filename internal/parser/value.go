package parser

import (
	"github.com/oneil-lang/oneil/internal/ast"
	"github.com/oneil-lang/oneil/internal/diagnostics"
	"github.com/oneil-lang/oneil/internal/span"
	"github.com/oneil-lang/oneil/internal/token"
)

// parseParameterValue handles `value ::= expr | ('{' expr 'if' expr '}')+`
// (spec.md §4.2/§6). A leading '{' commits to the piecewise form;
// successive branches continue onto their own lines as long as the line
// immediately after a NEWLINE starts with another '{'.
func (p *Parser) parseParameterValue() ast.ParameterValue {
	if !p.curIs(token.LBRACE) {
		expr := p.parseExpr()
		if expr == nil {
			return nil
		}
		return &ast.SimpleValue{Expr: expr, SpanVal: expr.Span()}
	}

	first := p.parsePiecewiseBranch()
	if first == nil {
		return nil
	}
	branches := []ast.PiecewiseBranch{*first}
	for p.curIs(token.NEWLINE) && p.lex.PeekToken().Type == token.LBRACE {
		p.nextToken() // NEWLINE is never label text; safe, and peek already confirmed '{' follows
		br := p.parsePiecewiseBranch()
		if br == nil {
			break
		}
		branches = append(branches, *br)
	}
	return &ast.PiecewiseValue{
		Branches: branches,
		SpanVal:  span.Union(branches[0].SpanVal, branches[len(branches)-1].SpanVal),
	}
}

func (p *Parser) parsePiecewiseBranch() *ast.PiecewiseBranch {
	start := p.cur.Span // '{'
	p.nextToken()

	body := p.parseExpr()
	if body == nil {
		return nil
	}
	if !p.expect(token.IF, diagnostics.KindExpectedExpression, "expected 'if' in piecewise branch") {
		return nil
	}
	pred := p.parseExpr()
	if pred == nil {
		return nil
	}
	if !p.expect(token.RBRACE, diagnostics.KindUnclosedBrace, "expected '}' to close piecewise branch") {
		return nil
	}
	return &ast.PiecewiseBranch{Body: body, Predicate: pred, SpanVal: span.Union(start, p.cur.Span)}
}

// parseLimits handles `limits ::= '(' expr ',' expr ')' | '[' expr
// (',' expr)* ']'` (spec.md §6). The caller has already confirmed cur is
// '(' or '['.
func (p *Parser) parseLimits() ast.Limits {
	start := p.cur.Span

	if p.curIs(token.LPAREN) {
		p.nextToken()
		min := p.parseExpr()
		if min == nil {
			return &ast.DefaultLimits{SpanVal: start}
		}
		if !p.expect(token.COMMA, diagnostics.KindExpectedExpression, "expected ',' between continuous limit bounds") {
			return &ast.DefaultLimits{SpanVal: start}
		}
		max := p.parseExpr()
		if max == nil {
			return &ast.DefaultLimits{SpanVal: start}
		}
		p.expect(token.RPAREN, diagnostics.KindUnclosedParen, "expected ')' to close continuous limits")
		return &ast.ContinuousLimits{Min: min, Max: max, SpanVal: span.Union(start, p.cur.Span)}
	}

	// '['
	p.nextToken()
	var values []ast.Expr
	for !p.curIs(token.RBRACKET) && !p.curIs(token.EOF) {
		v := p.parseExpr()
		if v == nil {
			break
		}
		values = append(values, v)
		if p.curIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	p.expect(token.RBRACKET, diagnostics.KindUnclosedBracket, "expected ']' to close discrete limits")
	return &ast.DiscreteLimits{Values: values, SpanVal: span.Union(start, p.cur.Span)}
}

// parseUnitExpr handles `unit ::= unit-term (('*'|'/') unit-term)*` and
// `unit-term ::= ident ('^' number)? | '(' unit ')'` (spec.md §6). A
// parenthesized unit may itself carry a trailing `^number`, e.g. `(m/s)^2`,
// matching ast.UnitPower's doc comment even though the terse grammar line
// doesn't spell out that case explicitly.
func (p *Parser) parseUnitExpr() ast.UnitExpr {
	left := p.parseUnitTerm()
	if left == nil {
		return nil
	}
	for p.curIs(token.ASTERISK) || p.curIs(token.SLASH) {
		isDiv := p.curIs(token.SLASH)
		p.nextToken()
		right := p.parseUnitTerm()
		if right == nil {
			return left
		}
		if isDiv {
			left = &ast.UnitDivide{Left: left, Right: right, SpanVal: span.Union(left.Span(), right.Span())}
		} else {
			left = &ast.UnitMultiply{Left: left, Right: right, SpanVal: span.Union(left.Span(), right.Span())}
		}
	}
	return left
}

func (p *Parser) parseUnitTerm() ast.UnitExpr {
	switch p.cur.Type {
	case token.IDENT:
		start := p.cur.Span
		name := p.cur.Lexeme
		p.nextToken()
		exp := 1.0
		if p.curIs(token.CARET) {
			p.nextToken()
			n, ok := p.parseUnitExponent()
			if !ok {
				return &ast.UnitLeaf{Name: name, Exponent: 1, SpanVal: start}
			}
			exp = n
		}
		return &ast.UnitLeaf{Name: name, Exponent: exp, SpanVal: span.Union(start, p.cur.Span)}
	case token.LPAREN:
		start := p.cur.Span
		p.nextToken()
		inner := p.parseUnitExpr()
		if inner == nil {
			return nil
		}
		p.expect(token.RPAREN, diagnostics.KindUnclosedParen, "expected ')' to close unit expression")
		if p.curIs(token.CARET) {
			p.nextToken()
			n, ok := p.parseUnitExponent()
			if !ok {
				return inner
			}
			return &ast.UnitPower{Base: inner, Exponent: n, SpanVal: span.Union(start, p.cur.Span)}
		}
		return inner
	default:
		p.addError(diagnostics.New(diagnostics.KindExpectedUnit, "expected a unit", p.cur.Span))
		return nil
	}
}

// parseUnitExponent reads an optional sign followed by a number literal,
// the grammar's `number` in `unit-term ::= ident ('^' number)?`.
func (p *Parser) parseUnitExponent() (float64, bool) {
	neg := false
	if p.curIs(token.MINUS) {
		neg = true
		p.nextToken()
	}
	if !p.curIs(token.NUMBER) {
		p.addError(diagnostics.New(diagnostics.KindExpectedUnit, "expected a numeric unit exponent", p.cur.Span))
		return 0, false
	}
	n, _ := p.cur.Literal.(float64)
	p.nextToken()
	if neg {
		n = -n
	}
	return n, true
}
