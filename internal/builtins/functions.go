package builtins

import (
	"fmt"
	"math"

	"github.com/oneil-lang/oneil/internal/numeric"
)

// mathFunctionImpls pairs each functions.name seed row with its Go
// behavior; New fails loudly if a seeded row has no entry here, so the
// seed data and the implementation table can never drift apart silently.
var mathFunctionImpls = map[string]func(args []numeric.Value) (numeric.Value, error){
	"abs":   unaryMonotone(math.Abs, absInterval),
	"sqrt":  unaryUnitless(math.Sqrt, nonNegativeDomain),
	"floor": unaryRounding(math.Floor),
	"ceil":  unaryRounding(math.Ceil),
	"round": unaryRounding(math.Round),
	"log":   unaryUnitless(math.Log, positiveDomain),
	"log10": unaryUnitless(math.Log10, positiveDomain),
	"exp":   unaryUnitless(math.Exp, nil),
	"sin":   unaryUnitless(math.Sin, nil),
	"cos":   unaryUnitless(math.Cos, nil),
	"tan":   unaryUnitless(math.Tan, nil),
	"min":   binaryMinMax(math.Min),
	"max":   binaryMinMax(math.Max),
}

func requireUnitless(v numeric.Value) (numeric.Number, error) {
	n, ok := v.AsNumber()
	if !ok {
		return numeric.Number{}, fmt.Errorf("expected a number, got %s", v.TypeName())
	}
	if !v.AsUnit().IsUnitless() {
		return numeric.Number{}, fmt.Errorf("expected a dimensionless number, got %s", v.AsUnit().Display.String())
	}
	return n, nil
}

// unaryUnitless lifts a monotone scalar math.* function to Number by
// applying it to both bounds; domain checks it against the function's
// valid input range before evaluating, since the corner-based lift only
// holds where f is monotonic on the interval.
func unaryUnitless(f func(float64) float64, domain func(numeric.Number) error) func([]numeric.Value) (numeric.Value, error) {
	return func(args []numeric.Value) (numeric.Value, error) {
		n, err := requireUnitless(args[0])
		if err != nil {
			return numeric.Value{}, err
		}
		if domain != nil {
			if err := domain(n); err != nil {
				return numeric.Value{}, err
			}
		}
		if n.IsEmpty() {
			return numeric.Num(numeric.Empty), nil
		}
		lo, hi := f(n.Min), f(n.Max)
		if lo > hi {
			lo, hi = hi, lo
		}
		return numeric.Num(numeric.Interval(lo, hi)), nil
	}
}

func nonNegativeDomain(n numeric.Number) error {
	if n.IsEmpty() {
		return nil
	}
	if n.Min < 0 {
		return fmt.Errorf("sqrt: argument must be non-negative")
	}
	return nil
}

func positiveDomain(n numeric.Number) error {
	if n.IsEmpty() {
		return nil
	}
	if n.Min <= 0 {
		return fmt.Errorf("log: argument must be positive")
	}
	return nil
}

// unaryMonotone is like unaryUnitless but preserves the argument's unit
// (abs doesn't change dimension), via a custom interval lift since abs
// is not monotone across zero.
func unaryMonotone(scalarFn func(float64) float64, intervalFn func(numeric.Number) numeric.Number) func([]numeric.Value) (numeric.Value, error) {
	return func(args []numeric.Value) (numeric.Value, error) {
		n, ok := args[0].AsNumber()
		if !ok {
			return numeric.Value{}, fmt.Errorf("expected a number, got %s", args[0].TypeName())
		}
		u := args[0].AsUnit()
		result := intervalFn(n)
		if args[0].Kind == numeric.KindMeasured {
			return numeric.Measured(result, u), nil
		}
		return numeric.Num(result), nil
	}
}

func absInterval(n numeric.Number) numeric.Number {
	if n.IsEmpty() {
		return numeric.Empty
	}
	if n.IsScalar() {
		return numeric.Scalar(math.Abs(n.Min))
	}
	lo, hi := math.Abs(n.Min), math.Abs(n.Max)
	if lo > hi {
		lo, hi = hi, lo
	}
	min := lo
	if n.Min <= 0 && n.Max >= 0 {
		min = 0
	}
	return numeric.Interval(min, hi)
}

// unaryRounding applies a rounding function to both bounds, preserving
// the argument's unit (rounding doesn't change dimension).
func unaryRounding(f func(float64) float64) func([]numeric.Value) (numeric.Value, error) {
	return func(args []numeric.Value) (numeric.Value, error) {
		n, ok := args[0].AsNumber()
		if !ok {
			return numeric.Value{}, fmt.Errorf("expected a number, got %s", args[0].TypeName())
		}
		u := args[0].AsUnit()
		var result numeric.Number
		if n.IsEmpty() {
			result = numeric.Empty
		} else {
			result = numeric.Interval(f(n.Min), f(n.Max))
		}
		if args[0].Kind == numeric.KindMeasured {
			return numeric.Measured(result, u), nil
		}
		return numeric.Num(result), nil
	}
}

// binaryMinMax requires matching units (like CheckedMinMax) and applies
// the scalar min/max function to each corner.
func binaryMinMax(f func(a, b float64) float64) func([]numeric.Value) (numeric.Value, error) {
	return func(args []numeric.Value) (numeric.Value, error) {
		l, r := args[0], args[1]
		ln, ok := l.AsNumber()
		if !ok {
			return numeric.Value{}, fmt.Errorf("expected a number, got %s", l.TypeName())
		}
		rn, ok := r.AsNumber()
		if !ok {
			return numeric.Value{}, fmt.Errorf("expected a number, got %s", r.TypeName())
		}
		lu, ru := l.AsUnit(), r.AsUnit()
		if !lu.DimensionsMatch(ru) {
			return numeric.Value{}, fmt.Errorf("mismatched units: expected %s, found %s", lu.Display.String(), ru.Display.String())
		}
		if ln.IsEmpty() || rn.IsEmpty() {
			return numeric.Num(numeric.Empty), nil
		}
		result := numeric.Interval(f(ln.Min, rn.Min), f(ln.Max, rn.Max))
		if l.Kind == numeric.KindMeasured || r.Kind == numeric.KindMeasured {
			return numeric.Measured(result, lu), nil
		}
		return numeric.Num(result), nil
	}
}
