package evaluator

import (
	"fmt"

	"github.com/oneil-lang/oneil/internal/ast"
	"github.com/oneil-lang/oneil/internal/units"
)

// evalUnitExpr resolves a declared unit expression against the builtin
// unit/prefix tables (spec.md §4.3). A nil UnitExpr (no unit declared)
// resolves to Unitless.
func (me *modelEval) evalUnitExpr(u ast.UnitExpr) (units.Unit, error) {
	switch n := u.(type) {
	case nil:
		return units.Unitless(), nil
	case *ast.UnitUnitless:
		return units.Unitless(), nil
	case *ast.UnitLeaf:
		base, ok := me.lookupUnitName(n.Name)
		if !ok {
			return units.Unit{}, fmt.Errorf("undefined unit %q", n.Name)
		}
		if n.Exponent == 1 {
			return base, nil
		}
		return units.Pow(base, n.Exponent), nil
	case *ast.UnitMultiply:
		l, err := me.evalUnitExpr(n.Left)
		if err != nil {
			return units.Unit{}, err
		}
		r, err := me.evalUnitExpr(n.Right)
		if err != nil {
			return units.Unit{}, err
		}
		return units.Mul(l, r), nil
	case *ast.UnitDivide:
		l, err := me.evalUnitExpr(n.Left)
		if err != nil {
			return units.Unit{}, err
		}
		r, err := me.evalUnitExpr(n.Right)
		if err != nil {
			return units.Unit{}, err
		}
		return units.Div(l, r), nil
	case *ast.UnitPower:
		base, err := me.evalUnitExpr(n.Base)
		if err != nil {
			return units.Unit{}, err
		}
		return units.Pow(base, n.Exponent), nil
	default:
		return units.Unit{}, fmt.Errorf("unknown unit expression")
	}
}

// lookupUnitName resolves a unit identifier, trying an exact builtin
// match first and falling back to an SI-prefix decomposition ("km" ->
// prefix "k" + unit "m") by splitting the name at every position and
// testing both halves against the registry — the seed data stores
// prefixes and units as independent tables, so this split-and-probe is
// the only way a name like "kilometer" or "cm" combines them generically
// without hardcoding the prefix set here.
func (me *modelEval) lookupUnitName(name string) (units.Unit, bool) {
	if u, ok := me.ev.builtins.LookupUnit(name); ok {
		return u, true
	}
	for i := 1; i < len(name); i++ {
		prefix, suffix := name[:i], name[i:]
		mult, ok := me.ev.builtins.LookupPrefix(prefix)
		if !ok {
			continue
		}
		base, ok := me.ev.builtins.LookupUnit(suffix)
		if !ok {
			continue
		}
		scaled := base
		scaled.Magnitude = base.Magnitude * mult
		scaled.Display = units.DisplayLeaf{Name: name, Exponent: 1}
		return scaled, true
	}
	return units.Unit{}, false
}
