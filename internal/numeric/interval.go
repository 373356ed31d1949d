// Package numeric implements the scalar-or-interval numeric core of
// spec.md §3/§4.4/§8: Number (Scalar|Interval) with inclusion-preserving
// arithmetic, and Value (Boolean|String|Number|MeasuredNumber) with its
// checked, span-agnostic operators.
//
// Grounded on the teacher's internal/vm/bignum package: a closed
// numeric-kind union where every exported operator switches on kind
// before dispatching to a per-kind implementation, returning an error
// value instead of panicking on a domain violation.
package numeric

import "math"

// Number is either a Scalar or an Interval; a Scalar behaves as the
// degenerate interval [x,x] for comparison and containment (spec.md §3).
type Number struct {
	Min, Max float64 // Min == Max for a Scalar
	empty    bool    // sentinel for the empty interval/set (spec.md §3)
}

// Scalar constructs a degenerate interval [x,x].
func Scalar(x float64) Number { return Number{Min: x, Max: x} }

// Interval constructs [min,max]. Callers must ensure min <= max; use
// NewInterval to validate untrusted bounds.
func Interval(min, max float64) Number { return Number{Min: min, Max: max} }

// Empty is the sentinel empty interval (spec.md §3: "empty when the
// lattice operations produce the empty set").
var Empty = Number{empty: true}

// IsEmpty reports whether n is the empty sentinel.
func (n Number) IsEmpty() bool { return n.empty }

// IsScalar reports whether n has zero width.
func (n Number) IsScalar() bool { return !n.empty && n.Min == n.Max }

// Valid reports whether n is a well-formed interval: min <= max and
// neither bound is NaN (spec.md §3).
func (n Number) Valid() bool {
	if n.empty {
		return true
	}
	return n.Min <= n.Max && !math.IsNaN(n.Min) && !math.IsNaN(n.Max)
}

// Inside reports whether v (as a degenerate interval) is contained in n.
func (n Number) Inside(v Number) bool {
	if n.empty || v.empty {
		return false
	}
	return n.Min <= v.Min && v.Max <= n.Max
}

// Add returns n + m with the inclusion property.
func Add(n, m Number) Number {
	if n.empty || m.empty {
		return Empty
	}
	return Number{Min: n.Min + m.Min, Max: n.Max + m.Max}
}

// Sub returns n - m with the inclusion property.
func Sub(n, m Number) Number {
	if n.empty || m.empty {
		return Empty
	}
	return Number{Min: n.Min - m.Max, Max: n.Max - m.Min}
}

// Neg returns -n.
func Neg(n Number) Number {
	if n.empty {
		return Empty
	}
	return Number{Min: -n.Max, Max: -n.Min}
}

// Mul returns n * m with the inclusion property (full four-corner
// product, since either interval may straddle zero).
func Mul(n, m Number) Number {
	if n.empty || m.empty {
		return Empty
	}
	corners := [4]float64{n.Min * m.Min, n.Min * m.Max, n.Max * m.Min, n.Max * m.Max}
	return fromCorners(corners[:])
}

// Div returns n / m. A divisor interval containing zero produces Empty
// (spec.md §4.4: "the specification chooses empty"); 0/0 (both bounds of
// n and m are zero at the same point) is explicitly undefined and also
// yields Empty.
func Div(n, m Number) Number {
	if n.empty || m.empty {
		return Empty
	}
	if m.Min <= 0 && 0 <= m.Max {
		return Empty
	}
	corners := [4]float64{n.Min / m.Min, n.Min / m.Max, n.Max / m.Min, n.Max / m.Max}
	return fromCorners(corners[:])
}

func fromCorners(corners []float64) Number {
	min, max := corners[0], corners[0]
	for _, c := range corners[1:] {
		if c < min {
			min = c
		}
		if c > max {
			max = c
		}
	}
	return Number{Min: min, Max: max}
}

// Mod returns n % m using math.Mod, whose result takes the sign of the
// dividend; Oneil's `%` operator is only ever applied to dimensionless
// scalars in practice, but is defined here over intervals as the min and
// max of the remainder at the four corners, matching Mul/Div's
// corner-based shape.
func Mod(n, m Number) Number {
	if n.empty || m.empty {
		return Empty
	}
	if n.IsScalar() && m.IsScalar() {
		return Scalar(math.Mod(n.Min, m.Min))
	}
	corners := [4]float64{
		math.Mod(n.Min, m.Min), math.Mod(n.Min, m.Max),
		math.Mod(n.Max, m.Min), math.Mod(n.Max, m.Max),
	}
	return fromCorners(corners[:])
}

// Pow raises n to a scalar power exp, per spec.md §9's resolution of the
// open question ("forbid when the exponent is an interval"); callers
// check IsScalar(exp) before calling Pow.
func Pow(n Number, exp float64) Number {
	if n.empty {
		return Empty
	}
	if n.IsScalar() {
		return Scalar(math.Pow(n.Min, exp))
	}
	if exp == math.Trunc(exp) && exp >= 0 {
		// Integer exponent: monotonic on each sign-definite half, so
		// corner evaluation plus (for even exponents straddling zero) 0
		// is sufficient and exact.
		lo, hi := math.Pow(n.Min, exp), math.Pow(n.Max, exp)
		min, max := lo, hi
		if min > max {
			min, max = max, min
		}
		if int64(exp)%2 == 0 && n.Min <= 0 && n.Max >= 0 {
			min = 0
		}
		return Number{Min: min, Max: max}
	}
	// Fractional exponent: defined only for a non-negative base interval.
	if n.Min < 0 {
		return Empty
	}
	return Number{Min: math.Pow(n.Min, exp), Max: math.Pow(n.Max, exp)}
}

// Intersection returns the tightest interval contained in both n and m,
// or Empty if they do not overlap.
func Intersection(n, m Number) Number {
	if n.empty || m.empty {
		return Empty
	}
	min := math.Max(n.Min, m.Min)
	max := math.Min(n.Max, m.Max)
	if min > max {
		return Empty
	}
	return Number{Min: min, Max: max}
}

// TightestEnclosing returns the smallest interval containing both n and m.
func TightestEnclosing(n, m Number) Number {
	if n.empty {
		return m
	}
	if m.empty {
		return n
	}
	return Number{Min: math.Min(n.Min, m.Min), Max: math.Max(n.Max, m.Max)}
}

// Ordering is the pessimistic three-valued result of comparing two
// intervals (spec.md §4.4): intervals that overlap without one strictly
// preceding the other report Indeterminate rather than a silent false.
type Ordering int

const (
	OrderLess Ordering = iota
	OrderGreaterOrEqual
	OrderIndeterminate
)

// CompareLess reports whether n is unambiguously less than m.
func CompareLess(n, m Number) Ordering {
	switch {
	case n.Max < m.Min:
		return OrderLess
	case n.Min >= m.Max:
		return OrderGreaterOrEqual
	default:
		return OrderIndeterminate
	}
}

// CompareLessEqual reports whether n is unambiguously <= m.
func CompareLessEqual(n, m Number) Ordering {
	switch {
	case n.Max <= m.Min:
		return OrderLess
	case n.Min > m.Max:
		return OrderGreaterOrEqual
	default:
		return OrderIndeterminate
	}
}

// Equal reports exact bound equality (used only for Scalar(x)==Scalar(y);
// interval equality of non-degenerate intervals is intentionally not a
// user-observable comparison per spec.md §9).
func Equal(n, m Number) bool {
	return n.empty == m.empty && n.Min == m.Min && n.Max == m.Max
}
