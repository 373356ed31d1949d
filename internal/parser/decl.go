package parser

import (
	"github.com/oneil-lang/oneil/internal/ast"
	"github.com/oneil-lang/oneil/internal/diagnostics"
	"github.com/oneil-lang/oneil/internal/span"
	"github.com/oneil-lang/oneil/internal/token"
)

// parseUse handles both `use` forms (spec.md §4.2):
//
//	['ref'] 'use' path ('as' ident)? ('with' '{' inputs '}')?
//	'from' path 'use' ident ('as' ident)?
//
// A leading 'ref' keyword (or the 'from ... use IDENT' form, which always
// names a single peer rather than owning a submodel) marks the binding
// non-owning, matching the GLOSSARY's "Reference: a non-owning peer link"
// and spec.md §4.5's "ReferenceImport (non-owning, when 'ref' is used)".
//
// The caller (parseDecl) has already advanced cur onto the REF/USE/FROM
// keyword via an ordinary token fetch — none of those three are ever
// label text, so that fetch is safe.
func (p *Parser) parseUse() ast.Decl {
	start := p.cur.Span

	if p.curIs(token.REF) {
		p.nextToken()
		if !p.expect(token.USE, diagnostics.KindExpectedDeclaration, "expected 'use' after 'ref'") {
			p.skipToLineEnd()
			return nil
		}
		return p.finishUse(start, true)
	}

	if p.curIs(token.FROM) {
		return p.parseFromUse(start)
	}

	if !p.expect(token.USE, diagnostics.KindExpectedDeclaration, "expected 'use' or 'from'") {
		p.skipToLineEnd()
		return nil
	}
	return p.finishUse(start, false)
}

func (p *Parser) parsePath() []string {
	var parts []string
	if !p.curIs(token.IDENT) {
		p.addError(diagnostics.New(diagnostics.KindExpectedDeclaration,
			"expected a module path", p.cur.Span))
		return parts
	}
	parts = append(parts, p.cur.Lexeme)
	p.nextToken()
	for p.curIs(token.DOT) {
		p.nextToken()
		if !p.curIs(token.IDENT) {
			p.addError(diagnostics.New(diagnostics.KindExpectedDeclaration,
				"expected a path segment after '.'", p.cur.Span))
			break
		}
		parts = append(parts, p.cur.Lexeme)
		p.nextToken()
	}
	return parts
}

func (p *Parser) finishUse(start span.Span, ref bool) ast.Decl {
	pathStart := p.cur.Span
	path := p.parsePath()
	pathSpan := span.Union(pathStart, p.cur.Span)

	// path[0] names the file to load; any further dotted segments walk
	// into that model's own submodels rather than naming a nested file
	// path (spec.md §4.6 — a UseModel's model name and its subcomponent
	// chain are resolved in two separate passes).
	var modelPart []string
	var subPath []string
	if len(path) > 0 {
		modelPart = path[:1]
		subPath = path[1:]
	}

	d := &ast.UseModelDecl{PathParts: modelPart, SubPath: subPath, Ref: ref, PathSpan: pathSpan}

	if p.curIs(token.AS) {
		p.nextToken()
		d.AliasSpan = p.cur.Span
		if p.curIs(token.IDENT) {
			d.Alias = p.cur.Lexeme
			p.nextToken()
		} else {
			p.addError(diagnostics.New(diagnostics.KindExpectedDeclaration,
				"expected an identifier after 'as'", p.cur.Span))
		}
	}

	if p.curIs(token.WITH) {
		p.nextToken()
		d.Inputs = p.parseModelInputs()
	}

	d.SpanVal = span.Union(start, p.cur.Span)
	p.expectLineEnd(diagnostics.KindExpectedDeclaration, "expected end of line after 'use' declaration")
	return d
}

func (p *Parser) parseFromUse(start span.Span) ast.Decl {
	p.nextToken() // consume 'from'
	pathStart := p.cur.Span
	path := p.parsePath()
	pathSpan := span.Union(pathStart, p.cur.Span)

	if !p.expect(token.USE, diagnostics.KindExpectedDeclaration, "expected 'use' after path") {
		p.skipToLineEnd()
		return nil
	}

	var sub string
	if p.curIs(token.IDENT) {
		sub = p.cur.Lexeme
		p.nextToken()
	} else {
		p.addError(diagnostics.New(diagnostics.KindExpectedDeclaration,
			"expected an identifier after 'use'", p.cur.Span))
	}

	var modelPart, subPath []string
	if len(path) > 0 {
		modelPart = path[:1]
		subPath = append(subPath, path[1:]...)
	}
	subPath = append(subPath, sub)
	d := &ast.UseModelDecl{PathParts: modelPart, SubPath: subPath, Ref: true, PathSpan: pathSpan}
	if p.curIs(token.AS) {
		p.nextToken()
		d.AliasSpan = p.cur.Span
		if p.curIs(token.IDENT) {
			d.Alias = p.cur.Lexeme
			p.nextToken()
		} else {
			p.addError(diagnostics.New(diagnostics.KindExpectedDeclaration,
				"expected an identifier after 'as'", p.cur.Span))
		}
	}
	d.SpanVal = span.Union(start, p.cur.Span)
	p.expectLineEnd(diagnostics.KindExpectedDeclaration, "expected end of line after 'use' declaration")
	return d
}

func (p *Parser) parseModelInputs() []ast.ModelInput {
	if !p.expect(token.LBRACE, diagnostics.KindExpectedDeclaration, "expected '{' after 'with'") {
		return nil
	}
	var inputs []ast.ModelInput
	for p.curIs(token.NEWLINE) {
		p.nextToken()
	}
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if !p.curIs(token.IDENT) {
			p.addError(diagnostics.New(diagnostics.KindExpectedDeclaration,
				"expected an input name", p.cur.Span))
			break
		}
		name := p.cur.Lexeme
		p.nextToken()
		if !p.expect(token.ASSIGN, diagnostics.KindExpectedDeclaration, "expected '=' after input name") {
			break
		}
		val := p.parseExpr()
		if val == nil {
			break
		}
		inputs = append(inputs, ast.ModelInput{Name: name, Value: val})
		for p.curIs(token.NEWLINE) || p.curIs(token.COMMA) {
			p.nextToken()
		}
	}
	p.expect(token.RBRACE, diagnostics.KindExpectedDeclaration, "expected '}' to close 'with' block")
	return inputs
}

// parseParameter handles `['$'] ['*'|'**'] label ':' ident '=' value
// (':' unit)? end-of-line note?` (spec.md §4.2).
//
// dollarSeen tells us whether parseDecl already committed a DOLLAR token
// into cur (start is that token's span); when it's false, cur still holds
// whatever ended the previous declaration and start is instead the raw
// lexer location captured by the caller, because the label itself hasn't
// been tokenized yet.
//
// presetTrace carries a trace level already decided by parseDecl, for the
// case where it had to commit a leading '*'/'**' marker itself to check
// whether a 'test' keyword followed (disambiguating marked tests from
// marked parameters). When presetTrace is TraceNone, the marker hasn't
// been checked yet and this function reads the raw lexer cursor directly
// (lexer.AtAsterisk) rather than cur, so a label starting right after '$'
// or at the very top of the declaration is never run through ordinary
// tokenization before nextLabel scans it.
func (p *Parser) parseParameter(start span.Span, dollarSeen bool, presetTrace ast.TraceLevel) ast.Decl {
	performance := dollarSeen
	trace := presetTrace

	if trace == ast.TraceNone && p.lex.AtAsterisk() {
		p.cur = p.lexNext()
		switch p.cur.Type {
		case token.ASTERISK:
			trace = ast.TraceLevelTrace
		case token.POWER:
			trace = ast.TraceLevelDebug
		}
	}

	labelTok := p.nextLabel()
	labelSpan := labelTok.Span
	p.nextToken() // move past the label onto ':' — '*'/'**'/label are never tokenized past this point

	if !p.expect(token.COLON, diagnostics.KindExpectedDeclaration, "expected ':' after label") {
		p.skipToLineEnd()
		return nil
	}
	if !p.curIs(token.IDENT) {
		p.addError(diagnostics.New(diagnostics.KindInvalidIdentifier,
			"expected a parameter identifier", p.cur.Span))
		p.skipToLineEnd()
		return nil
	}
	name := p.cur.Lexeme
	nameSpan := p.cur.Span
	p.nextToken()

	if !p.expect(token.ASSIGN, diagnostics.KindExpectedParameter, "expected '=' after parameter identifier") {
		p.skipToLineEnd()
		return nil
	}

	value := p.parseParameterValue()
	if value == nil {
		p.skipToLineEnd()
		return nil
	}

	d := &ast.ParameterDecl{
		Label: labelTok.Lexeme, LabelSpan: labelSpan,
		Name: name, NameSpan: nameSpan,
		Value: value, Limits: &ast.DefaultLimits{SpanVal: p.cur.Span},
		Performance: performance, Trace: trace,
	}

	if p.curIs(token.COLON) {
		p.nextToken()
		unit := p.parseUnitExpr()
		if sv, ok := value.(*ast.SimpleValue); ok {
			sv.Unit = unit
		} else if pw, ok := value.(*ast.PiecewiseValue); ok {
			pw.Unit = unit
		}
	} else if p.curIs(token.LPAREN) || p.curIs(token.LBRACKET) {
		d.Limits = p.parseLimits()
	}

	// A unit may be followed by limits, or vice versa is not legal Oneil
	// syntax, but a unit followed immediately by limits is: re-check here
	// since parseUnitExpr above may have left cur on '(' or '['.
	if _, isDefault := d.Limits.(*ast.DefaultLimits); isDefault {
		if p.curIs(token.LPAREN) || p.curIs(token.LBRACKET) {
			d.Limits = p.parseLimits()
		}
	}

	d.SpanVal = span.Union(start, p.cur.Span)
	p.expectLineEnd(diagnostics.KindExpectedParameter, "expected end of line after parameter declaration")
	if p.curIs(token.NEWLINE) && p.peekConstructKind() == token.NOTE {
		p.advanceReal()
		d.Note = p.parseNote()
	}
	return d
}

// parseTest handles `['*'|'**'] 'test' ('{' ident (',' ident)* '}')? ':' expr`
// (spec.md §4.2). The caller (parseDecl) has already committed both the
// optional leading marker and the 'test' keyword into cur via ordinary
// token fetches, which is safe: neither is ever label text. trace and
// start carry what parseDecl determined about the (possibly absent)
// marker.
func (p *Parser) parseTest(trace ast.TraceLevel, start span.Span) ast.Decl {
	p.nextToken() // past 'test'

	var inputs []string
	if p.curIs(token.LBRACE) {
		p.nextToken()
		for {
			if !p.curIs(token.IDENT) {
				p.addError(diagnostics.New(diagnostics.KindExpectedTest,
					"expected an input parameter name", p.cur.Span))
				break
			}
			inputs = append(inputs, p.cur.Lexeme)
			p.nextToken()
			if p.curIs(token.COMMA) {
				p.nextToken()
				continue
			}
			break
		}
		p.expect(token.RBRACE, diagnostics.KindExpectedTest, "expected '}' to close test inputs")
	}

	if !p.expect(token.COLON, diagnostics.KindExpectedTest, "expected ':' before test expression") {
		p.skipToLineEnd()
		return nil
	}

	expr := p.parseExpr()
	if expr == nil {
		p.skipToLineEnd()
		return nil
	}

	d := &ast.TestDecl{Inputs: inputs, Trace: trace, Expr: expr, SpanVal: span.Union(start, p.cur.Span)}
	p.expectLineEnd(diagnostics.KindExpectedTest, "expected end of line after test declaration")
	return d
}

// skipBlankLines consumes NEWLINE tokens ordinarily; safe immediately
// after a successful expectLineEnd, which leaves cur sitting ON a
// NEWLINE/EOF rather than past it.
func (p *Parser) skipBlankLines() {
	for p.curIs(token.NEWLINE) {
		p.nextToken()
	}
}
