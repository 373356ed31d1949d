package parser

import (
	"github.com/oneil-lang/oneil/internal/ast"
	"github.com/oneil-lang/oneil/internal/diagnostics"
	"github.com/oneil-lang/oneil/internal/span"
	"github.com/oneil-lang/oneil/internal/token"
)

// parseExpr parses one expression at the lowest precedence level
// (spec.md §4.2's Pratt-style cascade: or, and, comparison, min-max,
// additive, multiplicative, unary, power, primary). Unlike the teacher's
// expressions_core.go, which drives a single parseExpression(precedence)
// loop off prefix/infix function tables keyed by token.Type, Oneil's
// precedence chain is small and fixed, so it is written as a cascade of
// named methods — one per level, each calling the next-tighter level for
// its operands — which is the same shape the teacher uses for its own
// fixed low-precedence levels (assignment, ternary) before handing off
// to the table-driven core for the wide operator set. depth guards
// against runaway recursion on deeply nested parenthesized input,
// mirroring the teacher's MaxRecursionDepth circuit breaker.
func (p *Parser) parseExpr() ast.Expr {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > MaxRecursionDepth {
		p.addError(diagnostics.New(diagnostics.KindExpectedExpression,
			"expression nested too deeply", p.cur.Span))
		return nil
	}
	return p.parseOr()
}

func (p *Parser) parseOr() ast.Expr {
	left := p.parseAnd()
	if left == nil {
		return nil
	}
	for p.curIs(token.OR) {
		opSpan := p.cur.Span
		p.nextToken()
		right := p.parseAnd()
		if right == nil {
			return nil
		}
		left = &ast.BinaryOp{Kind: ast.OpOr, Left: left, Right: right, OpSpan: opSpan,
			SpanVal: span.Union(left.Span(), right.Span())}
	}
	return left
}

func (p *Parser) parseAnd() ast.Expr {
	left := p.parseComparison()
	if left == nil {
		return nil
	}
	for p.curIs(token.AND) {
		opSpan := p.cur.Span
		p.nextToken()
		right := p.parseComparison()
		if right == nil {
			return nil
		}
		left = &ast.BinaryOp{Kind: ast.OpAnd, Left: left, Right: right, OpSpan: opSpan,
			SpanVal: span.Union(left.Span(), right.Span())}
	}
	return left
}

var comparisonKinds = map[token.Type]ast.ComparisonOpKind{
	token.EQ_EQ:   ast.CmpEq,
	token.NOT_EQ:  ast.CmpNotEq,
	token.LT:      ast.CmpLt,
	token.LTE:     ast.CmpLe,
	token.GT:      ast.CmpGt,
	token.GTE:     ast.CmpGe,
}

// parseComparison parses a chained comparison `a op1 b op2 c ...`
// (spec.md §4.2/§4.7): any run of comparison operators at the same
// precedence level chains into one ComparisonOp rather than nesting.
func (p *Parser) parseComparison() ast.Expr {
	first := p.parseMinMax()
	if first == nil {
		return nil
	}
	kind, ok := comparisonKinds[p.cur.Type]
	if !ok {
		return first
	}
	var rest []ast.ComparisonPair
	last := first
	for ok {
		opSpan := p.cur.Span
		p.nextToken()
		operand := p.parseMinMax()
		if operand == nil {
			return nil
		}
		rest = append(rest, ast.ComparisonPair{Op: kind, Operand: operand, OpSpan: opSpan})
		last = operand
		kind, ok = comparisonKinds[p.cur.Type]
	}
	return &ast.ComparisonOp{First: first, Rest: rest, SpanVal: span.Union(first.Span(), last.Span())}
}

// parseMinMax handles the `|` min-max operator, the level between
// comparison and additive (spec.md §4.2 "`| |` (min-max)").
func (p *Parser) parseMinMax() ast.Expr {
	left := p.parseAdditive()
	if left == nil {
		return nil
	}
	for p.curIs(token.PIPE) {
		opSpan := p.cur.Span
		p.nextToken()
		right := p.parseAdditive()
		if right == nil {
			return nil
		}
		left = &ast.BinaryOp{Kind: ast.OpMinMax, Left: left, Right: right, OpSpan: opSpan,
			SpanVal: span.Union(left.Span(), right.Span())}
	}
	return left
}

func (p *Parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	if left == nil {
		return nil
	}
	for {
		var kind ast.BinaryOpKind
		switch p.cur.Type {
		case token.PLUS:
			kind = ast.OpAdd
		case token.MINUS:
			kind = ast.OpSub
		case token.MINUS_MINUS:
			kind = ast.OpEscapedSub
		default:
			return left
		}
		opSpan := p.cur.Span
		p.nextToken()
		right := p.parseMultiplicative()
		if right == nil {
			return nil
		}
		left = &ast.BinaryOp{Kind: kind, Left: left, Right: right, OpSpan: opSpan,
			SpanVal: span.Union(left.Span(), right.Span())}
	}
}

func (p *Parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	if left == nil {
		return nil
	}
	for {
		var kind ast.BinaryOpKind
		switch p.cur.Type {
		case token.ASTERISK:
			kind = ast.OpMul
		case token.SLASH:
			kind = ast.OpDiv
		case token.SLASH_SLASH:
			kind = ast.OpEscapedDiv
		case token.PERCENT:
			kind = ast.OpMod
		default:
			return left
		}
		opSpan := p.cur.Span
		p.nextToken()
		right := p.parseUnary()
		if right == nil {
			return nil
		}
		left = &ast.BinaryOp{Kind: kind, Left: left, Right: right, OpSpan: opSpan,
			SpanVal: span.Union(left.Span(), right.Span())}
	}
}

// parseUnary handles `-`, `!`/`not` prefix operators. The operand is
// parsed by parseUnary itself, so prefix operators can be stacked; once
// no prefix operator remains it falls through to parsePower, so power
// binds tighter than unary (spec.md §4.2: "`-2^2` is `-(2^2)`").
func (p *Parser) parseUnary() ast.Expr {
	start := p.cur.Span
	switch p.cur.Type {
	case token.MINUS:
		p.nextToken()
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		return &ast.UnaryOp{Kind: ast.UnaryNeg, Operand: operand, SpanVal: span.Union(start, operand.Span())}
	case token.NOT:
		p.nextToken()
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		return &ast.UnaryOp{Kind: ast.UnaryNot, Operand: operand, SpanVal: span.Union(start, operand.Span())}
	default:
		return p.parsePower()
	}
}

// parsePower handles `^`, right-associative and binding tighter than
// unary.
func (p *Parser) parsePower() ast.Expr {
	base := p.parsePrimary()
	if base == nil {
		return nil
	}
	if !p.curIs(token.CARET) {
		return base
	}
	opSpan := p.cur.Span
	p.nextToken()
	exp := p.parseUnary() // right-assoc: binds the whole rest of the power/unary chain
	if exp == nil {
		return nil
	}
	return &ast.BinaryOp{Kind: ast.OpPow, Left: base, Right: exp, OpSpan: opSpan,
		SpanVal: span.Union(base.Span(), exp.Span())}
}

// parsePrimary handles parenthesized expressions, function calls,
// (possibly dotted) variables, and literals.
func (p *Parser) parsePrimary() ast.Expr {
	switch p.cur.Type {
	case token.LPAREN:
		p.nextToken()
		inner := p.parseExpr()
		if inner == nil {
			return nil
		}
		if !p.expect(token.RPAREN, diagnostics.KindUnclosedParen, "expected ')' to close expression") {
			return nil
		}
		return inner
	case token.NUMBER:
		n, _ := p.cur.Literal.(float64)
		lit := &ast.Literal{Kind: ast.LitNumber, Number: n, SpanVal: p.cur.Span}
		p.nextToken()
		return lit
	case token.STRING:
		s, _ := p.cur.Literal.(string)
		lit := &ast.Literal{Kind: ast.LitString, String: s, SpanVal: p.cur.Span}
		p.nextToken()
		return lit
	case token.TRUE:
		lit := &ast.Literal{Kind: ast.LitBool, Bool: true, SpanVal: p.cur.Span}
		p.nextToken()
		return lit
	case token.FALSE:
		lit := &ast.Literal{Kind: ast.LitBool, Bool: false, SpanVal: p.cur.Span}
		p.nextToken()
		return lit
	case token.IDENT:
		return p.parseIdentOrCall()
	default:
		p.addError(diagnostics.New(diagnostics.KindExpectedExpression,
			"expected an expression", p.cur.Span))
		return nil
	}
}

func (p *Parser) parseIdentOrCall() ast.Expr {
	start := p.cur.Span
	name := p.cur.Lexeme
	p.nextToken()

	if p.curIs(token.LPAREN) {
		p.nextToken()
		var args []ast.Expr
		if !p.curIs(token.RPAREN) {
			for {
				arg := p.parseExpr()
				if arg == nil {
					break
				}
				args = append(args, arg)
				if p.curIs(token.COMMA) {
					p.nextToken()
					continue
				}
				break
			}
		}
		p.expect(token.RPAREN, diagnostics.KindExpectedExpression, "expected ')' to close function call")
		return &ast.FunctionCall{Name: name, NameSpan: start, Args: args, SpanVal: span.Union(start, p.cur.Span)}
	}

	parts := []string{name}
	for p.curIs(token.DOT) {
		p.nextToken()
		if !p.curIs(token.IDENT) {
			p.addError(diagnostics.New(diagnostics.KindExpectedExpression,
				"expected an identifier after '.'", p.cur.Span))
			break
		}
		parts = append(parts, p.cur.Lexeme)
		p.nextToken()
	}

	v := &ast.Variable{SpanVal: span.Union(start, p.cur.Span)}
	if len(parts) == 1 {
		v.Kind = ast.VarParameter
		v.Name = parts[0]
	} else {
		v.Kind = ast.VarExternal
		v.ModelPath = joinDotted(parts[:len(parts)-1])
		v.Name = parts[len(parts)-1]
	}
	return v
}

func joinDotted(parts []string) string {
	out := parts[0]
	for _, s := range parts[1:] {
		out += "." + s
	}
	return out
}
