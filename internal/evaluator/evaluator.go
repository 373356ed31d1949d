// Package evaluator implements spec.md §4.7: given a resolved
// model.Collection, compute every parameter's and test's value in
// dependency order, attach and check declared units, enforce limits, and
// select the single matching piecewise branch.
//
// Grounded on original_source/src-rs/oneil_eval/src/eval_parameter.rs and
// eval_expr.rs for the exact evaluation order (value, then unit
// attachment, then limits) and the teacher's internal/evaluator package
// for the overall struct/orchestration shape: a single Evaluator walking
// a dependency-ordered worklist, producing span-agnostic core errors
// (numeric.BinaryEvalError, mirrored in evalFailure) that get wrapped
// with source spans only once the call site is known (spec.md §4.7/§9).
package evaluator

import (
	"fmt"

	"github.com/oneil-lang/oneil/internal/ast"
	"github.com/oneil-lang/oneil/internal/builtins"
	"github.com/oneil-lang/oneil/internal/diagnostics"
	"github.com/oneil-lang/oneil/internal/model"
	"github.com/oneil-lang/oneil/internal/numeric"
	"github.com/oneil-lang/oneil/internal/span"
)

// Evaluator holds the shared state for one evaluation run: the resolved
// collection, the builtin lookup surface, and every model's result as it
// becomes available (so later models' external references can read
// earlier ones').
type Evaluator struct {
	collection *model.Collection
	builtins   builtins.Provider
	src        diagnostics.SourceProvider
	results    map[model.ModulePath]*ModelResult
	diags      []diagnostics.Diagnostic
}

// EvaluateAll evaluates every model in collection in submodel/reference
// dependency order and returns the combined result plus every diagnostic
// raised along the way (spec.md §4.7).
func EvaluateAll(collection *model.Collection, reg builtins.Provider, src diagnostics.SourceProvider) (*Result, []diagnostics.Diagnostic) {
	ev := &Evaluator{
		collection: collection,
		builtins:   reg,
		src:        src,
		results:    make(map[model.ModulePath]*ModelResult),
	}
	for _, path := range computeModelOrder(collection) {
		ev.evalModel(path)
	}

	diags := append([]diagnostics.Diagnostic{}, ev.diags...)
	diagnostics.SortDiagnostics(diags)
	return &Result{Models: ev.results}, diags
}

// modelEval carries the per-model evaluation context: the model being
// evaluated and its in-progress result, plus a back-reference to the
// shared Evaluator for builtin/cross-model lookups.
type modelEval struct {
	ev     *Evaluator
	path   model.ModulePath
	m      *model.Model
	result *ModelResult
}

func (ev *Evaluator) evalModel(path model.ModulePath) {
	m, ok := ev.collection.Get(path)
	if !ok {
		return
	}
	mr := &ModelResult{Path: path, Parameters: make(map[model.ParameterName]*ParameterResult, len(m.Parameters))}
	ev.results[path] = mr
	me := &modelEval{ev: ev, path: path, m: m, result: mr}

	if m.HasError {
		// Parameters still get placeholder (Failed) entries so external
		// references against a broken model resolve to a propagated
		// failure instead of a missing map entry.
		for name := range m.Parameters {
			mr.Parameters[name] = &ParameterResult{Name: name, Failed: true}
		}
		return
	}

	for _, name := range computeParameterOrder(m) {
		me.evalParameter(name)
	}
	for i, t := range m.Tests {
		me.evalTest(i, t)
	}
}

func (me *modelEval) addDiag(cause diagnostics.Cause) {
	me.ev.diags = append(me.ev.diags, diagnostics.From(me.path.String(), diagnostics.PhaseEvaluate, cause, me.ev.src))
}

// reportFailure turns a non-propagated evalFailure into a diagnostic;
// propagated failures (nil diag) are silently absorbed, since the
// originating error was already reported where it occurred.
func (me *modelEval) reportFailure(fail *evalFailure) {
	if fail == nil || fail.diag == nil {
		return
	}
	me.addDiag(fail.diag)
}

func (me *modelEval) evalParameter(name model.ParameterName) {
	p := me.m.Parameters[name]
	pr := &ParameterResult{Name: name}
	me.result.Parameters[name] = pr

	if p.Failed {
		pr.Failed = true
		return
	}

	val, fail := me.evalParameterValue(p.Decl.Value)
	if fail == nil {
		val, fail = me.applyDeclaredUnit(p.Decl, val)
	}
	if fail == nil {
		fail = me.checkLimits(p.Decl, val)
	}
	if fail != nil {
		me.reportFailure(fail)
		pr.Failed = true
		return
	}

	pr.Value = val
	if p.Decl.Trace == ast.TraceLevelDebug {
		pr.DebugDependencies = me.snapshotDependencies(p.Dependencies)
	}
}

func (me *modelEval) evalTest(index int, t model.Test) {
	tr := &TestResult{Index: index}
	me.result.Tests = append(me.result.Tests, tr)

	if t.Failed {
		tr.Failed = true
		return
	}

	val, fail := me.evalExpr(t.Decl.Expr)
	if fail != nil {
		me.reportFailure(fail)
		tr.Failed = true
		return
	}
	if val.Kind != numeric.KindBoolean {
		me.addDiag(diagnostics.New(diagnostics.KindInvalidType,
			"test expression must evaluate to a boolean, got "+val.TypeName(), t.Decl.Expr.Span()))
		tr.Failed = true
		return
	}

	tr.Passed = val.Bool
	if !val.Bool {
		tr.DebugDependencies = me.snapshotDependencies(t.Dependencies)
	}
}

func (me *modelEval) snapshotDependencies(deps map[model.ParameterName]span.Span) map[model.ParameterName]numeric.Value {
	snap := make(map[model.ParameterName]numeric.Value, len(deps))
	for name := range deps {
		if pr, ok := me.result.Parameters[name]; ok && !pr.Failed {
			snap[name] = pr.Value
		}
	}
	return snap
}

func (me *modelEval) evalParameterValue(v ast.ParameterValue) (numeric.Value, *evalFailure) {
	switch n := v.(type) {
	case *ast.SimpleValue:
		return me.evalExpr(n.Expr)
	case *ast.PiecewiseValue:
		return me.evalPiecewise(n)
	default:
		return numeric.Value{}, propagatedFailure()
	}
}

// evalPiecewise evaluates every branch's predicate and, whenever that
// predicate is a boolean (true or false), the branch's body as well, so
// every branch type-checks regardless
// of which one ends up matching (spec.md §4.7 "get_piecewise_result"),
// then resolves NoBranchMatch/MultipleBranchMatch/success in that
// priority order once the scan completes.
func (me *modelEval) evalPiecewise(n *ast.PiecewiseValue) (numeric.Value, *evalFailure) {
	var matched *numeric.Value
	matchCount := 0
	var firstFail *evalFailure

	for _, br := range n.Branches {
		predVal, fail := me.evalExpr(br.Predicate)
		if fail != nil {
			if firstFail == nil {
				firstFail = fail
			}
			continue
		}
		if predVal.Kind != numeric.KindBoolean {
			if firstFail == nil {
				firstFail = newFailure(diagnostics.KindInvalidIfExprType,
					fmt.Sprintf("piecewise predicate must be boolean, got %s", predVal.TypeName()), br.Predicate.Span())
			}
			continue
		}

		bodyVal, bodyFail := me.evalExpr(br.Body)
		if !predVal.Bool {
			if bodyFail != nil && firstFail == nil {
				firstFail = bodyFail
			}
			continue
		}

		matchCount++
		if bodyFail != nil {
			if firstFail == nil {
				firstFail = bodyFail
			}
			continue
		}
		v := bodyVal
		matched = &v
	}

	if firstFail != nil {
		return numeric.Value{}, firstFail
	}
	switch {
	case matchCount == 0:
		return numeric.Value{}, newFailure(diagnostics.KindNoBranchMatch,
			"no piecewise branch's predicate was true", n.SpanVal)
	case matchCount > 1:
		return numeric.Value{}, newFailure(diagnostics.KindMultipleBranchMatch,
			"multiple piecewise branches' predicates were true", n.SpanVal)
	default:
		return *matched, nil
	}
}

// applyDeclaredUnit attaches decl's declared unit (`: unit`, if any) to
// val: an unmeasured number is scaled onto the declared unit directly
// (the raw number is taken as already being in that unit, matching
// eval_parameter.rs's unit-attachment step), while an already-measured
// value must match dimensionally or reports ParameterUnitMismatch.
func (me *modelEval) applyDeclaredUnit(decl *ast.ParameterDecl, val numeric.Value) (numeric.Value, *evalFailure) {
	declExpr := declaredUnitExpr(decl.Value)
	if declExpr == nil {
		return val, nil
	}
	declUnit, err := me.evalUnitExpr(declExpr)
	if err != nil {
		return val, newFailure(diagnostics.KindExpectedUnit, err.Error(), decl.Value.Span())
	}

	switch val.Kind {
	case numeric.KindBoolean, numeric.KindString:
		return val, newFailure(diagnostics.KindParameterUnitMismatch,
			fmt.Sprintf("a %s value cannot have a unit", val.TypeName()), decl.Value.Span())
	case numeric.KindNumber:
		return numeric.Measured(val.Number, declUnit), nil
	case numeric.KindMeasured:
		if !val.Unit.DimensionsMatch(declUnit) {
			return val, newFailure(diagnostics.KindParameterUnitMismatch,
				"declared unit "+declUnit.Display.String()+" does not match computed unit "+val.Unit.Display.String(),
				decl.Value.Span())
		}
		return numeric.Measured(val.Number, declUnit), nil
	default:
		return val, nil
	}
}

func declaredUnitExpr(v ast.ParameterValue) ast.UnitExpr {
	switch n := v.(type) {
	case *ast.SimpleValue:
		return n.Unit
	case *ast.PiecewiseValue:
		return n.Unit
	default:
		return nil
	}
}

func (me *modelEval) checkLimits(decl *ast.ParameterDecl, val numeric.Value) *evalFailure {
	switch lim := decl.Limits.(type) {
	case *ast.ContinuousLimits:
		return me.checkContinuousLimits(lim, val)
	case *ast.DiscreteLimits:
		return me.checkDiscreteLimits(lim, val)
	default:
		return me.checkDefaultLimits(val, decl.Limits.Span())
	}
}

// checkDefaultLimits applies when no explicit limits clause was written:
// any string or boolean is accepted, and a number must be non-negative
// (spec.md §4.2's "no explicit limits" default).
func (me *modelEval) checkDefaultLimits(val numeric.Value, sp span.Span) *evalFailure {
	n, ok := val.AsNumber()
	if !ok || n.IsEmpty() {
		return nil
	}
	if n.Min < 0 {
		return newFailure(diagnostics.KindValueOutsideLimits,
			"parameter value must be non-negative", sp)
	}
	return nil
}

// checkContinuousLimits evaluates both bounds and requires the value to
// fall within [min, max] after converting every side to a common SI
// scale (raw number times the unit's magnitude) — dimension equality
// alone (as general arithmetic uses) isn't enough here, since a value
// declared in one unit (e.g. cm) must still satisfy limits declared in a
// dimensionally-equal but differently-scaled unit (e.g. m), per spec.md
// §4.2/§8's worked example.
func (me *modelEval) checkContinuousLimits(lim *ast.ContinuousLimits, val numeric.Value) *evalFailure {
	minVal, fail := me.evalExpr(lim.Min)
	if fail != nil {
		return fail
	}
	maxVal, fail := me.evalExpr(lim.Max)
	if fail != nil {
		return fail
	}

	valN, ok := val.AsNumber()
	if !ok {
		return newFailure(diagnostics.KindParamUnitLimitMismatch,
			"continuous limits require a numeric parameter value", lim.SpanVal)
	}
	minN, minOK := minVal.AsNumber()
	maxN, maxOK := maxVal.AsNumber()
	if !minOK || !maxOK {
		return newFailure(diagnostics.KindInvalidType, "continuous limit bounds must be numbers", lim.SpanVal)
	}

	valUnit, minUnit, maxUnit := val.AsUnit(), minVal.AsUnit(), maxVal.AsUnit()
	if !valUnit.DimensionsMatch(minUnit) || !valUnit.DimensionsMatch(maxUnit) {
		return newFailure(diagnostics.KindParamUnitLimitMismatch,
			"parameter unit does not match limit unit", lim.SpanVal)
	}

	scaledVal := numeric.Interval(valN.Min*valUnit.Magnitude, valN.Max*valUnit.Magnitude)
	bound := numeric.Interval(minN.Min*minUnit.Magnitude, maxN.Max*maxUnit.Magnitude)
	if !bound.Inside(scaledVal) {
		return newFailure(diagnostics.KindValueOutsideLimits,
			fmt.Sprintf("parameter value %s is outside limits (%s, %s)", val.String(), minVal.String(), maxVal.String()),
			lim.SpanVal)
	}
	return nil
}

// checkDiscreteLimits requires val to match the declared values' common
// type (all numbers sharing val's unit dimension, or all strings) and to
// be contained in at least one of them (spec.md §4.2/§4.7 "value.inside(v)
// for some listed v").
func (me *modelEval) checkDiscreteLimits(lim *ast.DiscreteLimits, val numeric.Value) *evalFailure {
	switch val.Kind {
	case numeric.KindNumber, numeric.KindMeasured:
		return me.checkDiscreteNumberLimits(lim, val)
	case numeric.KindString:
		return me.checkDiscreteStringLimits(lim, val)
	default:
		return newFailure(diagnostics.KindLimitCannotBeBoolean,
			"a boolean parameter cannot have discrete limits", lim.SpanVal)
	}
}

func (me *modelEval) checkDiscreteNumberLimits(lim *ast.DiscreteLimits, val numeric.Value) *evalFailure {
	valN, _ := val.AsNumber()
	valUnit := val.AsUnit()

	for _, ve := range lim.Values {
		v, fail := me.evalExpr(ve)
		if fail != nil {
			return fail
		}
		n, ok := v.AsNumber()
		if !ok {
			return newFailure(diagnostics.KindExpectedNumberLimit,
				fmt.Sprintf("discrete limit value must be a number, got %s", v.TypeName()), ve.Span())
		}
		if !valUnit.DimensionsMatch(v.AsUnit()) {
			return newFailure(diagnostics.KindDiscreteLimitUnitMismatch,
				"discrete limit unit does not match parameter unit", ve.Span())
		}
		scaled := numeric.Interval(n.Min*v.AsUnit().Magnitude, n.Max*v.AsUnit().Magnitude)
		scaledVal := numeric.Interval(valN.Min*valUnit.Magnitude, valN.Max*valUnit.Magnitude)
		if scaled.Inside(scaledVal) {
			return nil
		}
	}
	return newFailure(diagnostics.KindValueOutsideLimits,
		fmt.Sprintf("parameter value %s does not match any declared discrete value", val.String()), lim.SpanVal)
}

func (me *modelEval) checkDiscreteStringLimits(lim *ast.DiscreteLimits, val numeric.Value) *evalFailure {
	seen := make(map[string]bool, len(lim.Values))
	matched := false
	for _, ve := range lim.Values {
		v, fail := me.evalExpr(ve)
		if fail != nil {
			return fail
		}
		if v.Kind != numeric.KindString {
			return newFailure(diagnostics.KindExpectedStringLimit,
				fmt.Sprintf("discrete limit value must be a string, got %s", v.TypeName()), ve.Span())
		}
		if seen[v.Str] {
			return newFailure(diagnostics.KindDuplicateStringLimit,
				fmt.Sprintf("discrete string limit %q is declared multiple times", v.Str), ve.Span())
		}
		seen[v.Str] = true
		if v.Str == val.Str {
			matched = true
		}
	}
	if !matched {
		return newFailure(diagnostics.KindValueOutsideLimits,
			fmt.Sprintf("parameter value %q does not match any declared discrete value", val.Str), lim.SpanVal)
	}
	return nil
}
