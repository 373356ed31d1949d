package ast

import "github.com/oneil-lang/oneil/internal/span"

// Expr is the closed algebraic union spec.md §3 describes: BinaryOp,
// ComparisonOp, UnaryOp, FunctionCall, Variable, Literal.
type Expr interface {
	Node
	exprNode()
}

// BinaryOpKind enumerates the binary operators, including the two
// escaped forms whose semantics spec.md §9 leaves as an open question
// (resolved in DESIGN.md: identical arithmetic, no unit checks).
type BinaryOpKind int

const (
	OpAdd BinaryOpKind = iota
	OpSub
	OpEscapedSub
	OpMul
	OpDiv
	OpEscapedDiv
	OpMod
	OpPow
	OpAnd
	OpOr
	OpMinMax
)

// BinaryOp is a two-operand arithmetic/logical expression.
type BinaryOp struct {
	Kind    BinaryOpKind
	Left    Expr
	Right   Expr
	OpSpan  span.Span
	SpanVal span.Span
}

func (e *BinaryOp) Span() span.Span { return e.SpanVal }
func (*BinaryOp) exprNode()         {}

// ComparisonOpKind enumerates the comparison operators.
type ComparisonOpKind int

const (
	CmpEq ComparisonOpKind = iota
	CmpNotEq
	CmpLt
	CmpLe
	CmpGt
	CmpGe
)

// ComparisonPair is one `op operand` link in a chained comparison,
// e.g. in `a < b < c` the pairs are (Lt, b) and (Lt, c).
type ComparisonPair struct {
	Op      ComparisonOpKind
	Operand Expr
	OpSpan  span.Span
}

// ComparisonOp represents `a op1 b op2 c ...`, evaluated as the
// conjunction of adjacent pairs (spec.md §4.2/§4.7/§8).
type ComparisonOp struct {
	First   Expr
	Rest    []ComparisonPair
	SpanVal span.Span
}

func (e *ComparisonOp) Span() span.Span { return e.SpanVal }
func (*ComparisonOp) exprNode()         {}

// UnaryOpKind enumerates the unary operators.
type UnaryOpKind int

const (
	UnaryNeg UnaryOpKind = iota
	UnaryNot
)

// UnaryOp is a single-operand prefix expression.
type UnaryOp struct {
	Kind     UnaryOpKind
	Operand  Expr
	SpanVal  span.Span
}

func (e *UnaryOp) Span() span.Span { return e.SpanVal }
func (*UnaryOp) exprNode()         {}

// FunctionCall is `name(args...)`. Built-in functions are the only
// callable names (spec.md §1 Non-goals: "no user-defined function
// bodies").
type FunctionCall struct {
	Name     string
	NameSpan span.Span
	Args     []Expr
	SpanVal  span.Span
}

func (e *FunctionCall) Span() span.Span { return e.SpanVal }
func (*FunctionCall) exprNode()         {}

// VariableKind distinguishes a builtin, an in-model parameter reference,
// or a dotted external reference (spec.md §3 Variable union).
type VariableKind int

const (
	VarBuiltin VariableKind = iota
	VarParameter
	VarExternal
)

// Variable is a name reference. For VarExternal, ModelPath names the
// submodel/reference alias the dotted prefix resolved to (the parser
// produces the raw dotted Name; the resolver splits it into ModelPath +
// the trailing identifier once it knows which prefix is a bound model
// alias, per spec.md §3's "external dotted form after resolution").
type Variable struct {
	Kind      VariableKind
	Name      string // the trailing identifier
	ModelPath string // non-empty only when Kind == VarExternal
	SpanVal   span.Span
}

func (e *Variable) Span() span.Span { return e.SpanVal }
func (*Variable) exprNode()         {}

// LiteralKind distinguishes the literal forms a parser can produce
// directly (numbers and strings; booleans lex as keywords but surface
// here as literals too).
type LiteralKind int

const (
	LitNumber LiteralKind = iota
	LitString
	LitBool
)

// Literal is a constant value with no surrounding unit (a unit, if
// present, is attached by the enclosing ParameterValue/Limits, not by
// the literal itself).
type Literal struct {
	Kind    LiteralKind
	Number  float64
	String  string
	Bool    bool
	SpanVal span.Span
}

func (e *Literal) Span() span.Span { return e.SpanVal }
func (*Literal) exprNode()         {}
