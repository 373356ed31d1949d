package ast

import "github.com/oneil-lang/oneil/internal/span"

// UnitExpr is the syntax-level unit expression (spec.md §3): Multiply,
// Divide, Power over leaf Unit{name,exponent} nodes, or Unitless.
type UnitExpr interface {
	Node
	unitExprNode()
}

// UnitLeaf is a named unit with an integer/rational exponent from `^`,
// e.g. `m^2` or plain `m` (exponent 1).
type UnitLeaf struct {
	Name     string
	Exponent float64
	SpanVal  span.Span
}

func (u *UnitLeaf) Span() span.Span { return u.SpanVal }
func (*UnitLeaf) unitExprNode()     {}

// UnitUnitless is the explicit absence of a unit.
type UnitUnitless struct{ SpanVal span.Span }

func (u *UnitUnitless) Span() span.Span { return u.SpanVal }
func (*UnitUnitless) unitExprNode()     {}

// UnitMultiply is `a * b`.
type UnitMultiply struct {
	Left, Right UnitExpr
	SpanVal     span.Span
}

func (u *UnitMultiply) Span() span.Span { return u.SpanVal }
func (*UnitMultiply) unitExprNode()     {}

// UnitDivide is `a / b`.
type UnitDivide struct {
	Left, Right UnitExpr
	SpanVal     span.Span
}

func (u *UnitDivide) Span() span.Span { return u.SpanVal }
func (*UnitDivide) unitExprNode()     {}

// UnitPower is `base ^ exponent` applied to a parenthesized unit
// expression, e.g. `(m/s)^2`.
type UnitPower struct {
	Base     UnitExpr
	Exponent float64
	SpanVal  span.Span
}

func (u *UnitPower) Span() span.Span { return u.SpanVal }
func (*UnitPower) unitExprNode()     {}
