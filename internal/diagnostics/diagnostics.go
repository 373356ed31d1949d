// Package diagnostics implements the unified diagnostic type described in
// spec.md §4.8/§7: one public error shape with a path, message, primary
// location, unattached notes/help, and secondary located notes.
//
// Grounded on mcgru-funxy/internal/diagnostics/diagnostics.go
// (DiagnosticError{Code,Phase,Args,Token,Hint}, a closed ErrorCode enum,
// and template-based message rendering) generalized to carry spec.md's
// richer note/help/secondary-location shape. The teacher's own
// internal/diagnostics package (referenced by the copied analyzer/parser
// code) is absent from this retrieval pack; mcgru-funxy is the earlier
// snapshot of the same project used to ground its replacement.
package diagnostics

import "github.com/oneil-lang/oneil/internal/span"

// Phase identifies which pipeline stage raised a diagnostic.
type Phase string

const (
	PhaseIO       Phase = "io"
	PhaseLexer    Phase = "lexer"
	PhaseParser   Phase = "parser"
	PhaseLoad     Phase = "load"
	PhaseResolve  Phase = "resolve"
	PhaseEvaluate Phase = "evaluate"
)

// Kind is the closed taxonomy of diagnosable error kinds from spec.md §7.
type Kind string

const (
	// I/O
	KindFileMissing    Kind = "file-missing"
	KindFileUnreadable Kind = "file-unreadable"

	// Parse (tokenizer)
	KindUnclosedString     Kind = "unclosed-string"
	KindUnclosedNote       Kind = "unclosed-note"
	KindInvalidDecimalPart Kind = "invalid-decimal-part"
	KindInvalidExponent    Kind = "invalid-exponent-part"
	KindUnexpectedChar     Kind = "unexpected-character"

	// Parse (grammar)
	KindExpectedDeclaration Kind = "expected-declaration"
	KindExpectedExpression  Kind = "expected-expression"
	KindExpectedParameter   Kind = "expected-parameter"
	KindExpectedTest        Kind = "expected-test"
	KindExpectedNote        Kind = "expected-note"
	KindExpectedUnit        Kind = "expected-unit"
	KindMissingOperand      Kind = "missing-operand"
	KindUnclosedParen       Kind = "unclosed-paren"
	KindUnclosedBrace       Kind = "unclosed-brace"
	KindUnclosedBracket     Kind = "unclosed-bracket"
	KindInvalidLabel        Kind = "invalid-label"
	KindInvalidIdentifier   Kind = "invalid-identifier"

	// Resolution (load)
	KindCircularDependency Kind = "circular-dependency"
	KindPythonImportFailed Kind = "python-import-failed"

	// Resolution (names)
	KindDuplicateImport    Kind = "duplicate-import"
	KindDuplicateSubmodel  Kind = "duplicate-submodel"
	KindDuplicateReference Kind = "duplicate-reference"
	KindDuplicateParameter Kind = "duplicate-parameter"
	KindDuplicateInput     Kind = "duplicate-input"
	KindUndefinedSubmodel  Kind = "undefined-submodel"
	KindUndefinedParameter Kind = "undefined-parameter"
	KindUndefinedReference Kind = "undefined-reference"
	KindModelHasError      Kind = "model-has-error"      // propagated, not user-facing
	KindParameterHasError  Kind = "parameter-has-error"  // propagated, not user-facing
	KindSubmodelResFailed  Kind = "submodel-resolution-failed"
	KindReferenceResFailed Kind = "reference-resolution-failed"

	// Resolution (parameters)
	KindParamCircularDependency Kind = "parameter-circular-dependency"

	// Evaluation (type)
	KindInvalidType   Kind = "invalid-type"
	KindTypeMismatch  Kind = "type-mismatch"

	// Evaluation (unit)
	KindUnitMismatch               Kind = "unit-mismatch"
	KindExponentHasUnits           Kind = "exponent-has-units"
	KindExponentIsInterval         Kind = "exponent-is-interval"
	KindParameterUnitMismatch      Kind = "parameter-unit-mismatch"
	KindParamUnitLimitMismatch     Kind = "parameter-unit-does-not-match-limit"
	KindDiscreteLimitUnitMismatch  Kind = "discrete-limit-unit-mismatch"

	// Evaluation (limits)
	KindValueOutsideLimits   Kind = "parameter-value-outside-limits"
	KindLimitCannotBeBoolean Kind = "limit-cannot-be-boolean"
	KindExpectedNumberLimit  Kind = "expected-number-limit"
	KindExpectedStringLimit  Kind = "expected-string-limit"
	KindDuplicateStringLimit Kind = "duplicate-string-limit"

	// Evaluation (piecewise)
	KindNoBranchMatch       Kind = "no-piecewise-branch-match"
	KindMultipleBranchMatch Kind = "multiple-piecewise-branches-match"
	KindInvalidIfExprType   Kind = "invalid-if-expression-type"

	// Evaluation (runtime)
	KindUnsupported Kind = "unsupported"
)

// propagatedKinds never reach the user; the original error was already
// reported at its source (spec.md §4.5/§7 propagation policy).
var propagatedKinds = map[Kind]bool{
	KindModelHasError:      true,
	KindParameterHasError:  true,
	KindSubmodelResFailed:  true,
	KindReferenceResFailed: true,
}

// IsPropagated reports whether diagnostics of this kind should be
// filtered from the user-facing diagnostic list.
func IsPropagated(k Kind) bool {
	return propagatedKinds[k]
}

// Basic is the default Cause implementation: a kind, a message, an
// optional primary span, and optional notes. Every stage that doesn't
// need a richer error shape (the lexer's tokenizer failures, the
// parser's grammar errors, the loader's file errors) embeds Basic rather
// than redeclaring the Cause methods.
type Basic struct {
	kind     Kind
	message  string
	location *span.Span
	notes    []Note
	srcNotes []SourceNote
}

// New builds a Basic cause with a primary location.
func New(kind Kind, message string, sp span.Span) Basic {
	s := sp
	return Basic{kind: kind, message: message, location: &s}
}

// NewWithoutLocation builds a Basic cause with no primary span, for
// errors that apply to a whole file rather than one position in it
// (spec.md §7's file-missing/file-unreadable kinds).
func NewWithoutLocation(kind Kind, message string) Basic {
	return Basic{kind: kind, message: message}
}

func (b Basic) Error() string               { return b.message }
func (b Basic) Kind() Kind                  { return b.kind }
func (b Basic) Context() []Note             { return b.notes }
func (b Basic) SourceContext() []SourceNote { return b.srcNotes }

func (b Basic) Location() (span.Span, bool) {
	if b.location == nil {
		return span.Span{}, false
	}
	return *b.location, true
}

// WithContext returns a copy of b with an unattached note appended.
func (b Basic) WithContext(message string, isHelp bool) Basic {
	b.notes = append(append([]Note{}, b.notes...), Note{IsHelp: isHelp, Message: message})
	return b
}

// WithSourceContext returns a copy of b with a located secondary note
// appended.
func (b Basic) WithSourceContext(message, path string, sp span.Span) Basic {
	b.srcNotes = append(append([]SourceNote{}, b.srcNotes...), SourceNote{Message: message, Path: path, Span: sp})
	return b
}

// Note is an unattached supporting note or help string (spec.md §4.8
// "primary-note context list").
type Note struct {
	IsHelp  bool
	Message string
}

// SourceNote is a secondary diagnostic-like note carrying its own
// location (spec.md §4.8 "secondary context_with_source list").
// internal/diagfmt renders it as a header line and a ` --> path:line:col`
// line only; no source snippet is printed for it.
type SourceNote struct {
	Message string
	Path    string
	Span    span.Span
}

// Cause is implemented by every per-stage internal error kind (lexer,
// parser, resolver, evaluator errors). It lets the core build rich,
// language-server-renderable diagnostics without the Diagnostic shape
// leaking into every producer (spec.md §4.8).
type Cause interface {
	error
	Kind() Kind
	// Location returns the primary span for this cause, if any.
	Location() (span.Span, bool)
	// Context returns unattached notes/help strings.
	Context() []Note
	// SourceContext returns secondary notes, each with its own location.
	SourceContext() []SourceNote
}

// Diagnostic is the single public error type spec.md §4.8 describes.
type Diagnostic struct {
	Path              string
	Phase             Phase
	Kind              Kind
	Message           string
	Location          *span.Span
	LineSource        string
	Context           []Note
	ContextWithSource []SourceNote
}

// SourceProvider supplies the raw line text for a path, used to render
// the underline context of a Diagnostic.
type SourceProvider interface {
	LineSource(path string, line int) string
}

// From builds a Diagnostic from a Cause, looking up line source text via
// the given provider (nil is fine if line text is unavailable).
func From(path string, phase Phase, cause Cause, src SourceProvider) Diagnostic {
	d := Diagnostic{
		Path:              path,
		Phase:             phase,
		Kind:              cause.Kind(),
		Message:           cause.Error(),
		Context:           cause.Context(),
		ContextWithSource: cause.SourceContext(),
	}
	if sp, ok := cause.Location(); ok {
		s := sp
		d.Location = &s
		if src != nil {
			d.LineSource = src.LineSource(path, sp.Start.Line)
		}
	}
	return d
}

// SortDiagnostics orders diagnostics stably by path then by primary
// offset, so a run's output is top-to-bottom per file (spec.md §4.8/§7).
func SortDiagnostics(diags []Diagnostic) {
	sortStable(diags, func(a, b Diagnostic) bool {
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		ao, bo := -1, -1
		if a.Location != nil {
			ao = a.Location.Start.Offset
		}
		if b.Location != nil {
			bo = b.Location.Start.Offset
		}
		return ao < bo
	})
}

// sortStable is a tiny indirection so this file has no sort import churn
// if callers want a different comparator shape later.
func sortStable(diags []Diagnostic, less func(a, b Diagnostic) bool) {
	// Insertion sort: diagnostic lists per run are small (hundreds at
	// most) and this keeps the sort trivially stable without importing
	// sort.Slice's closure-based comparator for such a small dataset.
	for i := 1; i < len(diags); i++ {
		j := i
		for j > 0 && less(diags[j], diags[j-1]) {
			diags[j], diags[j-1] = diags[j-1], diags[j]
			j--
		}
	}
}
