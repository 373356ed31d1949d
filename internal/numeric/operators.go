package numeric

import (
	"fmt"

	"github.com/oneil-lang/oneil/internal/diagnostics"
	"github.com/oneil-lang/oneil/internal/units"
)

// BinaryEvalError is a span-agnostic operator failure (spec.md §4.7/§9:
// "the core arithmetic returns spanless errors... the evaluator wraps
// them with operand spans at the call site"). The evaluator converts
// this into a diagnostics.Cause once it knows the operand spans.
type BinaryEvalError struct {
	DiagKind diagnostics.Kind
	Message  string
	// ExpectedUnit/FoundUnit are populated for unit-mismatch errors so
	// the evaluator can render both sides without re-deriving them.
	ExpectedUnit *units.Unit
	FoundUnit    *units.Unit
}

func (e *BinaryEvalError) Error() string { return e.Message }

func errType(kind diagnostics.Kind, msg string) *BinaryEvalError {
	return &BinaryEvalError{DiagKind: kind, Message: msg}
}

func errUnit(expected, found units.Unit, msg string) *BinaryEvalError {
	return &BinaryEvalError{DiagKind: diagnostics.KindUnitMismatch, Message: msg, ExpectedUnit: &expected, FoundUnit: &found}
}

func requireNumeric(v Value) (Number, units.Unit, *BinaryEvalError) {
	n, ok := v.AsNumber()
	if !ok {
		return Number{}, units.Unit{}, errType(diagnostics.KindInvalidType,
			fmt.Sprintf("expected a number, got %s", v.TypeName()))
	}
	return n, v.AsUnit(), nil
}

// CheckedAdd is `+`: requires dimensionally-equal units (spec.md §4.3).
func CheckedAdd(l, r Value) (Value, *BinaryEvalError) {
	return additive(l, r, Add, true)
}

// CheckedSub is `-`: requires dimensionally-equal units.
func CheckedSub(l, r Value) (Value, *BinaryEvalError) {
	return additive(l, r, Sub, true)
}

// CheckedEscapedSub is `--`: identical arithmetic to Sub but bypasses the
// dimensional-equality check (spec.md §9 open question, resolved in
// DESIGN.md).
func CheckedEscapedSub(l, r Value) (Value, *BinaryEvalError) {
	return additive(l, r, Sub, false)
}

func additive(l, r Value, op func(Number, Number) Number, checkUnits bool) (Value, *BinaryEvalError) {
	ln, lu, err := requireNumeric(l)
	if err != nil {
		return Value{}, err
	}
	rn, ru, err := requireNumeric(r)
	if err != nil {
		return Value{}, err
	}
	if checkUnits && !lu.DimensionsMatch(ru) {
		return Value{}, errUnit(lu, ru, "mismatched units in arithmetic: expected "+lu.Display.String()+", found "+ru.Display.String())
	}
	result := op(ln, rn)
	if l.Kind == KindMeasured || r.Kind == KindMeasured {
		return Measured(result, lu), nil
	}
	return Num(result), nil
}

// CheckedMul is `*`: composes units, no dimensional check needed.
func CheckedMul(l, r Value) (Value, *BinaryEvalError) {
	ln, lu, err := requireNumeric(l)
	if err != nil {
		return Value{}, err
	}
	rn, ru, err := requireNumeric(r)
	if err != nil {
		return Value{}, err
	}
	return Measured(Mul(ln, rn), units.Mul(lu, ru)), nil
}

// CheckedDiv is `/`.
func CheckedDiv(l, r Value) (Value, *BinaryEvalError) {
	ln, lu, err := requireNumeric(l)
	if err != nil {
		return Value{}, err
	}
	rn, ru, err := requireNumeric(r)
	if err != nil {
		return Value{}, err
	}
	return Measured(Div(ln, rn), units.Div(lu, ru)), nil
}

// CheckedEscapedDiv reports Unsupported: spec.md §9 notes the escaped
// division semantics are not implemented in the original source and
// should surface as an error rather than a guess.
func CheckedEscapedDiv(l, r Value) (Value, *BinaryEvalError) {
	return Value{}, errType(diagnostics.KindUnsupported, "escaped division ('//') is not supported")
}

// CheckedMod is `%`: requires dimensionally-equal units, like + and -.
func CheckedMod(l, r Value) (Value, *BinaryEvalError) {
	return additive(l, r, Mod, true)
}

// CheckedPow is `^`: the exponent must be a scalar, dimensionless number
// (spec.md §4.3); an interval exponent reports ExponentIsInterval
// (spec.md §9's resolution of that open question), and a measured
// exponent reports ExponentHasUnits.
func CheckedPow(base, exp Value) (Value, *BinaryEvalError) {
	bn, bu, err := requireNumeric(base)
	if err != nil {
		return Value{}, err
	}
	en, _, err := requireNumeric(exp)
	if err != nil {
		return Value{}, err
	}
	if exp.Kind == KindMeasured && !exp.Unit.IsUnitless() {
		return Value{}, errType(diagnostics.KindExponentHasUnits, "exponent must be dimensionless")
	}
	if !en.IsScalar() {
		return Value{}, errType(diagnostics.KindExponentIsInterval, "exponent must be a scalar, not an interval")
	}
	return Measured(Pow(bn, en.Min), units.Pow(bu, en.Min)), nil
}

// CheckedMinMax is `|a b|`: requires dimensionally-equal units and
// returns the tightest enclosing interval (spec.md §3/§4.3).
func CheckedMinMax(l, r Value) (Value, *BinaryEvalError) {
	return additive(l, r, TightestEnclosing, true)
}

// comparisonResult builds the Boolean Value for a comparison, reporting
// an error rather than a silent false when the interval ordering is
// indeterminate (spec.md §4.4).
func comparisonResult(order Ordering, strictOK, nonStrictOK bool, opName string) (Value, *BinaryEvalError) {
	switch order {
	case OrderLess:
		return Bool(strictOK), nil
	case OrderGreaterOrEqual:
		return Bool(nonStrictOK), nil
	default:
		return Value{}, errType(diagnostics.KindInvalidType,
			fmt.Sprintf("comparison '%s' is indeterminate: operand intervals overlap without a strict order", opName))
	}
}

func compareNumeric(l, r Value) (Number, Number, units.Unit, units.Unit, *BinaryEvalError) {
	ln, lu, err := requireNumeric(l)
	if err != nil {
		return Number{}, Number{}, units.Unit{}, units.Unit{}, err
	}
	rn, ru, err := requireNumeric(r)
	if err != nil {
		return Number{}, Number{}, units.Unit{}, units.Unit{}, err
	}
	if !lu.DimensionsMatch(ru) {
		return Number{}, Number{}, units.Unit{}, units.Unit{}, errUnit(lu, ru,
			"mismatched units in comparison: expected "+lu.Display.String()+", found "+ru.Display.String())
	}
	return ln, rn, lu, ru, nil
}

// CheckedLt is `<`.
func CheckedLt(l, r Value) (Value, *BinaryEvalError) {
	ln, rn, _, _, err := compareNumeric(l, r)
	if err != nil {
		return Value{}, err
	}
	return comparisonResult(CompareLess(ln, rn), true, false, "<")
}

// CheckedLe is `<=`.
func CheckedLe(l, r Value) (Value, *BinaryEvalError) {
	ln, rn, _, _, err := compareNumeric(l, r)
	if err != nil {
		return Value{}, err
	}
	return comparisonResult(CompareLessEqual(ln, rn), true, false, "<=")
}

// CheckedGt is `>`: a > b iff b < a.
func CheckedGt(l, r Value) (Value, *BinaryEvalError) {
	return CheckedLt(r, l)
}

// CheckedGe is `>=`: a >= b iff b <= a.
func CheckedGe(l, r Value) (Value, *BinaryEvalError) {
	return CheckedLe(r, l)
}

// CheckedEq is `==`: for numbers requires matching units and exact
// bound equality (no tolerance; spec.md §9 "no tolerance is applied to
// user-observable comparisons"). Strings and booleans compare by value.
func CheckedEq(l, r Value) (Value, *BinaryEvalError) {
	if l.Kind != r.Kind {
		if (l.Kind == KindNumber || l.Kind == KindMeasured) && (r.Kind == KindNumber || r.Kind == KindMeasured) {
			// fall through to numeric comparison below
		} else {
			return Value{}, errType(diagnostics.KindTypeMismatch,
				fmt.Sprintf("cannot compare %s with %s", l.TypeName(), r.TypeName()))
		}
	}
	switch l.Kind {
	case KindBoolean:
		return Bool(l.Bool == r.Bool), nil
	case KindString:
		return Bool(l.Str == r.Str), nil
	default:
		ln, rn, _, _, err := compareNumeric(l, r)
		if err != nil {
			return Value{}, err
		}
		return Bool(Equal(ln, rn)), nil
	}
}

// CheckedNotEq is `!=`.
func CheckedNotEq(l, r Value) (Value, *BinaryEvalError) {
	v, err := CheckedEq(l, r)
	if err != nil {
		return Value{}, err
	}
	return Bool(!v.Bool), nil
}

func requireBool(v Value, which string) (bool, *BinaryEvalError) {
	if v.Kind != KindBoolean {
		return false, errType(diagnostics.KindInvalidType,
			fmt.Sprintf("expected a boolean %s operand, got %s", which, v.TypeName()))
	}
	return v.Bool, nil
}

// CheckedAnd is `and`.
func CheckedAnd(l, r Value) (Value, *BinaryEvalError) {
	lb, err := requireBool(l, "left")
	if err != nil {
		return Value{}, err
	}
	rb, err := requireBool(r, "right")
	if err != nil {
		return Value{}, err
	}
	return Bool(lb && rb), nil
}

// CheckedOr is `or`.
func CheckedOr(l, r Value) (Value, *BinaryEvalError) {
	lb, err := requireBool(l, "left")
	if err != nil {
		return Value{}, err
	}
	rb, err := requireBool(r, "right")
	if err != nil {
		return Value{}, err
	}
	return Bool(lb || rb), nil
}

// CheckedNot is unary `not`/`!`.
func CheckedNot(v Value) (Value, *BinaryEvalError) {
	b, err := requireBool(v, "")
	if err != nil {
		return Value{}, err
	}
	return Bool(!b), nil
}

// CheckedNeg is unary `-`.
func CheckedNeg(v Value) (Value, *BinaryEvalError) {
	n, u, err := requireNumeric(v)
	if err != nil {
		return Value{}, err
	}
	if v.Kind == KindMeasured {
		return Measured(Neg(n), u), nil
	}
	return Num(Neg(n)), nil
}
