// Package parser implements the recursive-descent parser for Oneil
// source text (spec.md §4.2), producing an *ast.Model with spans and
// partial-result error recovery.
//
// Grounded on the teacher's internal/parser package: a cur/peek token
// pair advanced by nextToken, an errors slice accumulated rather than
// returned eagerly (processor.go's "errors are already added to the
// context" pattern). Expressions are parsed by a cascade of one method
// per precedence level (expr.go's parseExpr down to parsePrimary) rather
// than a prefix/infix dispatch table. Oneil's grammar has no statements, types, or traits, so the
// declaration-level grammar (parameter/test/use/import/section) is new
// content grounded directly on spec.md §4.2, written in the same
// cascading-descent style the teacher uses for its own binary-operator
// precedence chain. The one structural departure from the teacher's
// pure cur/peek model is declaration-boundary dispatch: a label may
// contain spaces (spec.md §4.1), so the parser must decide what
// construct is starting via lexer.PeekToken (non-destructive) before
// committing to ordinary tokenization.
package parser

import (
	"strings"

	"github.com/oneil-lang/oneil/internal/ast"
	"github.com/oneil-lang/oneil/internal/diagnostics"
	"github.com/oneil-lang/oneil/internal/lexer"
	"github.com/oneil-lang/oneil/internal/span"
	"github.com/oneil-lang/oneil/internal/token"
)

// MaxRecursionDepth guards against pathological expression nesting,
// matching the teacher's expressions_core.go recursion-depth circuit
// breaker.
const MaxRecursionDepth = 250

// Parser turns a token stream from one lexer into an *ast.Model.
type Parser struct {
	lex     *lexer.Lexer
	cur     token.Token
	peekTok *token.Token

	errs  []diagnostics.Cause
	depth int
}

// New creates a Parser reading from source. Unlike the teacher's parser,
// it does not prefetch a first token: the very first construct in a file
// may be a multi-word label, and prefetching via ordinary tokenization
// would silently truncate it (see lexer.ScanLabel's doc comment).
func New(source string) *Parser {
	return &Parser{lex: lexer.New(source)}
}

// Errors returns every diagnostic cause accumulated during parsing
// (lexer errors and grammar errors alike), in source order.
func (p *Parser) Errors() []diagnostics.Cause { return p.errs }

func (p *Parser) addError(cause diagnostics.Cause) { p.errs = append(p.errs, cause) }

// lexNext pulls the next token from the lexer, folding any lexical error
// into the parser's diagnostics and retrying so a single bad character
// never stalls the whole parse (spec.md §4.1 "first-failure diagnostic"
// refers to one NextToken call; the parser keeps going past it).
func (p *Parser) lexNext() token.Token {
	for {
		t, err := p.lex.NextToken()
		if err != nil {
			p.addError(err)
			continue
		}
		return t
	}
}

// advanceReal fetches the next real token into cur. Safe to call at any
// point where the following text is known NOT to be the start of a
// label — i.e. everywhere except a fresh declaration boundary.
func (p *Parser) advanceReal() {
	if p.peekTok != nil {
		p.cur = *p.peekTok
		p.peekTok = nil
		return
	}
	p.cur = p.lexNext()
}

// nextToken is advanceReal under the name the expression/value grammar
// uses, matching the teacher's naming.
func (p *Parser) nextToken() { p.advanceReal() }

// peek returns (and caches) the token after cur. Never call this right
// before a declaration boundary — see peekConstructKind.
func (p *Parser) peek() token.Token {
	if p.peekTok == nil {
		t := p.lexNext()
		p.peekTok = &t
	}
	return *p.peekTok
}

func (p *Parser) curIs(ty token.Type) bool  { return p.cur.Type == ty }
func (p *Parser) peekIs(ty token.Type) bool { return p.peek().Type == ty }

// expect consumes cur if it matches ty, reporting kind otherwise and
// leaving cur in place for the caller's recovery logic.
func (p *Parser) expect(ty token.Type, kind diagnostics.Kind, msg string) bool {
	if p.curIs(ty) {
		p.nextToken()
		return true
	}
	p.addError(diagnostics.New(kind, msg, p.cur.Span))
	return false
}

// expectLineEnd verifies cur is NEWLINE/EOF without advancing past it:
// the declaration-boundary loops (ParseModel/parseSection) are the only
// code allowed to step over a NEWLINE, since what follows it may be a
// label that must be scanned raw rather than ordinarily tokenized.
func (p *Parser) expectLineEnd(kind diagnostics.Kind, msg string) {
	if p.curIs(token.NEWLINE) || p.curIs(token.EOF) {
		return
	}
	p.addError(diagnostics.New(kind, msg, p.cur.Span))
	p.skipToLineEnd()
}

// nextLabel scans a label starting at the lexer's current cursor; callers
// must not have fetched a peek token first (see lexer.ScanLabel's doc
// comment on why labels can't flow through ordinary tokenization).
func (p *Parser) nextLabel() token.Token {
	t, err := p.lex.ScanLabel()
	if err != nil {
		p.addError(err)
	}
	p.cur = t
	return t
}

// skipToLineEnd consumes tokens up to (but not including) the next
// NEWLINE or EOF, resynchronizing after a malformed declaration so one
// bad line doesn't cascade into the rest of the file (spec.md §4.2
// "partial success is carried forward"). It deliberately stops at the
// NEWLINE rather than consuming it, leaving that step to the
// declaration-boundary loop.
func (p *Parser) skipToLineEnd() {
	for !p.curIs(token.NEWLINE) && !p.curIs(token.EOF) {
		p.nextToken()
	}
}

// peekConstructKind consumes any run of blank lines for real (safe: a
// NEWLINE is never a label), then reports the Type of whatever begins
// the next declaration without committing to ordinary tokenization for
// it. The caller dispatches on the returned type; for every recognized
// keyword/marker/note/EOF type the caller then calls p.advanceReal() to
// actually fetch it into cur. Anything else is a label start, and the
// lexer cursor is left exactly where it was so nextLabel can scan it.
func (p *Parser) peekConstructKind() token.Type {
	for {
		pk := p.lex.PeekToken()
		if pk.Type == token.NEWLINE {
			p.cur = p.lexNext()
			continue
		}
		return pk.Type
	}
}

// ParseModel parses an entire source file into an *ast.Model, collecting
// every declaration and section it can, even past individual failures.
func ParseModel(source string) (*ast.Model, []diagnostics.Cause) {
	p := New(source)
	startLoc := p.lex.Loc()

	m := &ast.Model{}

	kind := p.peekConstructKind()
	if kind == token.NOTE {
		p.advanceReal()
		m.Note = p.parseNote()
		kind = p.peekConstructKind()
	}

	for kind != token.EOF {
		if kind == token.SECTION {
			p.advanceReal()
			m.Sections = append(m.Sections, p.parseSection())
		} else if d := p.parseDecl(kind); d != nil {
			m.Decls = append(m.Decls, d)
		}
		kind = p.peekConstructKind()
	}

	m.SpanVal = span.Span{Start: startLoc, End: p.lex.Loc()}
	return m, p.errs
}

// parseNote converts a NOTE token into an *ast.Note. The lexer's single-
// and multi-line note scanners both leave the delimiter tildes out of
// the token's Literal/Lexeme for the multi-line case but in for the
// single-line case (lexer.go's scanNote/scanMultiLineNote), so a leading
// '~' is how this distinguishes the two forms.
func (p *Parser) parseNote() *ast.Note {
	lex := p.cur.Lexeme
	multiline := !strings.HasPrefix(lex, "~")
	text := lex
	if !multiline {
		text = strings.TrimPrefix(strings.TrimLeft(lex, "~"), " ")
	}
	n := &ast.Note{Text: text, SpanVal: p.cur.Span, Multiline: multiline}
	p.nextToken()
	return n
}

func (p *Parser) parseSection() *ast.Section {
	start := p.cur.Span // 'section' keyword, already fetched by caller
	label := p.nextLabel()
	p.advanceReal() // past label, onto whatever follows (':' is not used here; label stops at ':' only for parameters — sections end the line right after the label)
	sec := &ast.Section{Label: label.Lexeme}
	p.expectLineEnd(diagnostics.KindExpectedDeclaration, "expected end of line after section label")

	kind := p.peekConstructKind()
	if kind == token.NOTE {
		p.advanceReal()
		sec.Note = p.parseNote()
		kind = p.peekConstructKind()
	}
	for kind != token.EOF && kind != token.SECTION {
		if d := p.parseDecl(kind); d != nil {
			sec.Decls = append(sec.Decls, d)
		}
		kind = p.peekConstructKind()
	}
	sec.SpanVal = span.Union(start, p.cur.Span)
	return sec
}

// parseDecl dispatches on the already-peeked construct kind to one of
// import/use/parameter/test. kind came from peekConstructKind, so the
// lexer cursor has not moved for a label-start kind, and has not moved
// for anything else either — every branch below is responsible for its
// own first p.advanceReal().
//
// ASTERISK/POWER is ambiguous on its own: '*'/'**' precedes either a test
// ('* test: ...') or a trace-marked parameter ('* Label: name = ...'). The
// marker is never label text, so committing it with an ordinary token
// fetch is safe; a second non-destructive PeekToken then checks for the
// 'test' keyword without touching whatever (possibly a label) follows it
// in the parameter case.
func (p *Parser) parseDecl(kind token.Type) ast.Decl {
	switch kind {
	case token.IMPORT:
		p.advanceReal()
		return p.parseImport()
	case token.USE, token.FROM, token.REF:
		p.advanceReal()
		return p.parseUse()
	case token.TEST:
		p.advanceReal()
		return p.parseTest(ast.TraceNone, p.cur.Span)
	case token.ASTERISK, token.POWER:
		p.advanceReal()
		markerSpan := p.cur.Span
		trace := ast.TraceLevelTrace
		if kind == token.POWER {
			trace = ast.TraceLevelDebug
		}
		if p.lex.PeekToken().Type == token.TEST {
			p.advanceReal()
			return p.parseTest(trace, markerSpan)
		}
		return p.parseParameter(markerSpan, false, trace)
	case token.DOLLAR:
		p.advanceReal()
		return p.parseParameter(p.cur.Span, true, ast.TraceNone)
	case token.NOTE:
		// A note with nothing to attach to at this position; treat as a
		// standalone trailing note and skip it rather than erroring.
		p.advanceReal()
		p.parseNote()
		return nil
	default:
		loc := p.lex.Loc()
		return p.parseParameter(span.Span{Start: loc, End: loc}, false, ast.TraceNone)
	}
}

func (p *Parser) parseImport() ast.Decl {
	start := p.cur.Span // 'import' keyword
	p.nextToken()
	if !p.curIs(token.IDENT) {
		p.addError(diagnostics.New(diagnostics.KindExpectedDeclaration,
			"expected a module name after 'import'", p.cur.Span))
		p.skipToLineEnd()
		return nil
	}
	name := p.cur.Lexeme
	p.nextToken()
	d := &ast.ImportDecl{PythonPath: name, SpanVal: span.Union(start, p.cur.Span)}
	p.expectLineEnd(diagnostics.KindExpectedDeclaration, "expected end of line after import")
	return d
}
