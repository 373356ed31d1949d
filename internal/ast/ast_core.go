// Package ast defines the syntax tree produced by internal/parser
// (spec.md §3). Every node carries a Span back to the source.
//
// Grounded on the teacher's internal/ast/ast_core.go: a closed Node
// interface family (Statement/Expression) with Accept(Visitor) double
// dispatch and each node embedding its defining token/span. Oneil's node
// set (Model/Decl/Parameter/Expr/Variable/UnitExpr) is new content built
// in the same shape; declarations use a Visitor for the recursive walks
// the resolver/evaluator perform, while leaf-shaped constructs (Limits,
// ParameterValue, UnitExpr) are plain closed tagged unions consumed via
// type switch, matching how the teacher treats its own leaf AST nodes
// (e.g. ast.Literal) without a dedicated visitor method per kind.
package ast

import "github.com/oneil-lang/oneil/internal/span"

// Node is the base interface for every syntax tree node.
type Node interface {
	Span() span.Span
}

// Decl is a top-level or section-level declaration.
type Decl interface {
	Node
	declNode()
}

// Visitor double-dispatches over the Decl union, mirroring the teacher's
// Accept(Visitor) pattern for its Statement union.
type Visitor interface {
	VisitImport(*ImportDecl)
	VisitUseModel(*UseModelDecl)
	VisitParameter(*ParameterDecl)
	VisitTest(*TestDecl)
}

// Note is a single- or multi-line comment attached to a model, section,
// or parameter (spec.md §3 Model/Parameter "note?").
type Note struct {
	Text     string
	SpanVal  span.Span
	Multiline bool
}

func (n *Note) Span() span.Span { return n.SpanVal }

// Section groups a label with its own declaration list (grammar:
// `section label end-of-line note? decl*`).
type Section struct {
	Label   string
	Note    *Note
	Decls   []Decl
	SpanVal span.Span
}

func (s *Section) Span() span.Span { return s.SpanVal }

// Model is the root node produced for one source file.
type Model struct {
	Note     *Note
	Decls    []Decl
	Sections []*Section
	SpanVal  span.Span
}

func (m *Model) Span() span.Span { return m.SpanVal }

// Accept walks every declaration in the model and its sections,
// depth-first, dispatching each to the visitor.
func (m *Model) Accept(v Visitor) {
	for _, d := range m.Decls {
		acceptDecl(d, v)
	}
	for _, s := range m.Sections {
		for _, d := range s.Decls {
			acceptDecl(d, v)
		}
	}
}

func acceptDecl(d Decl, v Visitor) {
	switch n := d.(type) {
	case *ImportDecl:
		v.VisitImport(n)
	case *UseModelDecl:
		v.VisitUseModel(n)
	case *ParameterDecl:
		v.VisitParameter(n)
	case *TestDecl:
		v.VisitTest(n)
	}
}

// ImportDecl is `import PYTHON_PATH` (spec.md grammar `import`).
type ImportDecl struct {
	PythonPath string
	SpanVal    span.Span
}

func (d *ImportDecl) Span() span.Span { return d.SpanVal }
func (*ImportDecl) declNode()         {}

// ModelInput is one `name = expr` pair inside a `use ... with { ... }`
// block, supplying an input value to the target model.
type ModelInput struct {
	Name  string
	Value Expr
}

// UseModelDecl binds a submodel (owning) or reference (non-owning, when
// Ref is true) via `use PATH [as ALIAS] [with {...}]` or
// `from PATH use IDENT [as ALIAS]` (spec.md grammar `use`).
type UseModelDecl struct {
	PathParts []string // the model file's name, e.g. ["wheel"]; always at most one segment
	SubPath   []string // `.SUB1.SUB2...` chain walking into that model's own submodels, if any
	Alias     string   // bound name; defaults to the last path segment
	Ref       bool      // true for `from PATH use IDENT` / explicit `ref`
	Inputs    []ModelInput
	SpanVal   span.Span
	PathSpan  span.Span
	AliasSpan span.Span
}

func (d *UseModelDecl) Span() span.Span { return d.SpanVal }
func (*UseModelDecl) declNode()         {}

// BoundName returns the name this declaration binds in the current
// model's namespace.
func (d *UseModelDecl) BoundName() string {
	if d.Alias != "" {
		return d.Alias
	}
	if len(d.SubPath) > 0 {
		return d.SubPath[len(d.SubPath)-1]
	}
	if len(d.PathParts) > 0 {
		return d.PathParts[len(d.PathParts)-1]
	}
	return ""
}

// TraceLevel is a parameter's or test's display verbosity (GLOSSARY).
type TraceLevel int

const (
	TraceNone TraceLevel = iota
	TraceLevelTrace
	TraceLevelDebug
)

// ParameterDecl is one `[$] [*|**] Label: ident = value [: unit]`
// declaration (spec.md grammar `parameter`).
type ParameterDecl struct {
	Label        string
	LabelSpan    span.Span
	Name         string
	NameSpan     span.Span
	Value        ParameterValue
	Limits       Limits
	Performance  bool
	Trace        TraceLevel
	Note         *Note
	SpanVal      span.Span
}

func (d *ParameterDecl) Span() span.Span { return d.SpanVal }
func (*ParameterDecl) declNode()         {}

// TestDecl is `[*|**] test [{inputs}]: expr` (spec.md grammar `test`).
type TestDecl struct {
	Inputs  []string
	Trace   TraceLevel
	Expr    Expr
	SpanVal span.Span
}

func (d *TestDecl) Span() span.Span { return d.SpanVal }
func (*TestDecl) declNode()         {}

// ParameterValue is `Simple(Expr, Unit?) | Piecewise([{expr,if-expr}], Unit?)`.
type ParameterValue interface {
	Node
	parameterValueNode()
}

// SimpleValue is a single expression with an optional declared unit.
type SimpleValue struct {
	Expr    Expr
	Unit    UnitExpr // nil if no unit was declared
	SpanVal span.Span
}

func (v *SimpleValue) Span() span.Span    { return v.SpanVal }
func (*SimpleValue) parameterValueNode() {}

// PiecewiseBranch is one `{expr if predicate}` clause.
type PiecewiseBranch struct {
	Body      Expr
	Predicate Expr
	SpanVal   span.Span
}

// PiecewiseValue is one or more branches sharing an optional unit.
type PiecewiseValue struct {
	Branches []PiecewiseBranch
	Unit     UnitExpr
	SpanVal  span.Span
}

func (v *PiecewiseValue) Span() span.Span    { return v.SpanVal }
func (*PiecewiseValue) parameterValueNode() {}

// Limits is `Default | Continuous{min,max} | Discrete{values}`.
type Limits interface {
	Node
	limitsNode()
}

// DefaultLimits means no explicit limits were declared.
type DefaultLimits struct{ SpanVal span.Span }

func (l *DefaultLimits) Span() span.Span { return l.SpanVal }
func (*DefaultLimits) limitsNode()       {}

// ContinuousLimits is `(min, max)`.
type ContinuousLimits struct {
	Min, Max Expr
	SpanVal  span.Span
}

func (l *ContinuousLimits) Span() span.Span { return l.SpanVal }
func (*ContinuousLimits) limitsNode()       {}

// DiscreteLimits is `[v1, v2, ...]`.
type DiscreteLimits struct {
	Values  []Expr
	SpanVal span.Span
}

func (l *DiscreteLimits) Span() span.Span { return l.SpanVal }
func (*DiscreteLimits) limitsNode()       {}
