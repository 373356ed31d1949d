package numeric

import (
	"fmt"

	"github.com/oneil-lang/oneil/internal/units"
)

// ValueKind is the closed tag for Value (spec.md §3: "Value ∈
// {Boolean, String, Number, MeasuredNumber(Number, Unit)}").
type ValueKind int

const (
	KindBoolean ValueKind = iota
	KindString
	KindNumber
	KindMeasured
)

// Value is a tagged union over Boolean, String, Number, and
// MeasuredNumber(Number, Unit).
type Value struct {
	Kind   ValueKind
	Bool   bool
	Str    string
	Number Number
	Unit   units.Unit // only meaningful when Kind == KindMeasured
}

func Bool(b bool) Value   { return Value{Kind: KindBoolean, Bool: b} }
func Str(s string) Value  { return Value{Kind: KindString, Str: s} }
func Num(n Number) Value  { return Value{Kind: KindNumber, Number: n} }
func Measured(n Number, u units.Unit) Value {
	return Value{Kind: KindMeasured, Number: n, Unit: u}
}

// AsNumber extracts the Number out of a Number or MeasuredNumber value.
func (v Value) AsNumber() (Number, bool) {
	if v.Kind == KindNumber || v.Kind == KindMeasured {
		return v.Number, true
	}
	return Number{}, false
}

// AsUnit returns the value's unit, or Unitless for an unmeasured Number.
func (v Value) AsUnit() units.Unit {
	if v.Kind == KindMeasured {
		return v.Unit
	}
	return units.Unitless()
}

func (v Value) TypeName() string {
	switch v.Kind {
	case KindBoolean:
		return "boolean"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindMeasured:
		return "measured number"
	default:
		return "unknown"
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindBoolean:
		return fmt.Sprintf("%t", v.Bool)
	case KindString:
		return v.Str
	case KindNumber:
		return numberString(v.Number)
	case KindMeasured:
		return numberString(v.Number) + " " + v.Unit.Display.String()
	default:
		return "<invalid>"
	}
}

func numberString(n Number) string {
	if n.IsEmpty() {
		return "empty"
	}
	if n.IsScalar() {
		return floatStr(n.Min)
	}
	return "[" + floatStr(n.Min) + ", " + floatStr(n.Max) + "]"
}

func floatStr(f float64) string {
	return fmt.Sprintf("%g", f)
}
