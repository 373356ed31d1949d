package evaluator

import (
	"fmt"
	"strings"

	"github.com/oneil-lang/oneil/internal/ast"
	"github.com/oneil-lang/oneil/internal/diagnostics"
	"github.com/oneil-lang/oneil/internal/model"
	"github.com/oneil-lang/oneil/internal/numeric"
	"github.com/oneil-lang/oneil/internal/span"
)

// evalFailure carries an expression evaluation failure up to the
// enclosing parameter/test. A nil diag means the failure was already
// reported elsewhere (an upstream parameter/model/submodel is Failed)
// and must propagate silently (spec.md §4.5/§7 propagation policy).
type evalFailure struct {
	diag diagnostics.Cause
}

func propagatedFailure() *evalFailure { return &evalFailure{} }

func newFailure(kind diagnostics.Kind, msg string, sp span.Span) *evalFailure {
	return &evalFailure{diag: diagnostics.New(kind, msg, sp)}
}

// evalExpr evaluates e against the model's already-evaluated parameters,
// builtins, and external references, mirroring the resolver's walkExpr
// tree shape but producing a value instead of a dependency set.
func (me *modelEval) evalExpr(e ast.Expr) (numeric.Value, *evalFailure) {
	switch n := e.(type) {
	case *ast.Literal:
		switch n.Kind {
		case ast.LitNumber:
			return numeric.Num(numeric.Scalar(n.Number)), nil
		case ast.LitString:
			return numeric.Str(n.String), nil
		case ast.LitBool:
			return numeric.Bool(n.Bool), nil
		}
		return numeric.Value{}, propagatedFailure()
	case *ast.Variable:
		return me.evalVariable(n)
	case *ast.UnaryOp:
		return me.evalUnary(n)
	case *ast.BinaryOp:
		return me.evalBinary(n)
	case *ast.ComparisonOp:
		return me.evalComparison(n)
	case *ast.FunctionCall:
		return me.evalCall(n)
	default:
		return numeric.Value{}, propagatedFailure()
	}
}

func (me *modelEval) evalUnary(n *ast.UnaryOp) (numeric.Value, *evalFailure) {
	v, fail := me.evalExpr(n.Operand)
	if fail != nil {
		return numeric.Value{}, fail
	}
	var res numeric.Value
	var err *numeric.BinaryEvalError
	switch n.Kind {
	case ast.UnaryNeg:
		res, err = numeric.CheckedNeg(v)
	case ast.UnaryNot:
		res, err = numeric.CheckedNot(v)
	}
	if err != nil {
		return numeric.Value{}, newFailure(err.DiagKind, err.Message, n.Operand.Span())
	}
	return res, nil
}

func (me *modelEval) evalBinary(n *ast.BinaryOp) (numeric.Value, *evalFailure) {
	l, fail := me.evalExpr(n.Left)
	if fail != nil {
		return numeric.Value{}, fail
	}
	r, fail := me.evalExpr(n.Right)
	if fail != nil {
		return numeric.Value{}, fail
	}
	var res numeric.Value
	var err *numeric.BinaryEvalError
	switch n.Kind {
	case ast.OpAdd:
		res, err = numeric.CheckedAdd(l, r)
	case ast.OpSub:
		res, err = numeric.CheckedSub(l, r)
	case ast.OpEscapedSub:
		res, err = numeric.CheckedEscapedSub(l, r)
	case ast.OpMul:
		res, err = numeric.CheckedMul(l, r)
	case ast.OpDiv:
		res, err = numeric.CheckedDiv(l, r)
	case ast.OpEscapedDiv:
		res, err = numeric.CheckedEscapedDiv(l, r)
	case ast.OpMod:
		res, err = numeric.CheckedMod(l, r)
	case ast.OpPow:
		res, err = numeric.CheckedPow(l, r)
	case ast.OpAnd:
		res, err = numeric.CheckedAnd(l, r)
	case ast.OpOr:
		res, err = numeric.CheckedOr(l, r)
	case ast.OpMinMax:
		res, err = numeric.CheckedMinMax(l, r)
	}
	if err != nil {
		return numeric.Value{}, me.wrapBinaryErr(err, n.Left.Span(), n.Right.Span())
	}
	return res, nil
}

// wrapBinaryErr attaches operand spans to a span-agnostic core error: the
// right operand's span is primary, the left operand gets a secondary
// source-noted span when a unit mismatch makes both sides worth showing
// (spec.md §4.7/§9 "the evaluator wraps them with operand spans at the
// call site").
func (me *modelEval) wrapBinaryErr(err *numeric.BinaryEvalError, leftSpan, rightSpan span.Span) *evalFailure {
	d := diagnostics.New(err.DiagKind, err.Message, rightSpan)
	if err.ExpectedUnit != nil {
		d = d.WithSourceContext("left operand has unit "+err.ExpectedUnit.Display.String(), me.path.String(), leftSpan)
	}
	return &evalFailure{diag: d}
}

func (me *modelEval) evalComparison(n *ast.ComparisonOp) (numeric.Value, *evalFailure) {
	leftVal, fail := me.evalExpr(n.First)
	if fail != nil {
		return numeric.Value{}, fail
	}
	leftSpan := n.First.Span()

	for _, pair := range n.Rest {
		rightVal, fail := me.evalExpr(pair.Operand)
		if fail != nil {
			return numeric.Value{}, fail
		}
		v, err := compareOp(pair.Op, leftVal, rightVal)
		if err != nil {
			return numeric.Value{}, me.wrapBinaryErr(err, leftSpan, pair.Operand.Span())
		}
		if !v.Bool {
			return numeric.Bool(false), nil
		}
		leftVal = rightVal
		leftSpan = pair.Operand.Span()
	}
	return numeric.Bool(true), nil
}

func compareOp(op ast.ComparisonOpKind, l, r numeric.Value) (numeric.Value, *numeric.BinaryEvalError) {
	switch op {
	case ast.CmpEq:
		return numeric.CheckedEq(l, r)
	case ast.CmpNotEq:
		return numeric.CheckedNotEq(l, r)
	case ast.CmpLt:
		return numeric.CheckedLt(l, r)
	case ast.CmpLe:
		return numeric.CheckedLe(l, r)
	case ast.CmpGt:
		return numeric.CheckedGt(l, r)
	case ast.CmpGe:
		return numeric.CheckedGe(l, r)
	}
	return numeric.Value{}, nil
}

func (me *modelEval) evalCall(n *ast.FunctionCall) (numeric.Value, *evalFailure) {
	fn, ok := me.ev.builtins.LookupFunction(n.Name)
	if !ok {
		return numeric.Value{}, newFailure(diagnostics.KindUndefinedParameter,
			fmt.Sprintf("undefined function %q", n.Name), n.NameSpan)
	}
	if len(n.Args) < fn.MinArgs || len(n.Args) > fn.MaxArgs {
		return numeric.Value{}, newFailure(diagnostics.KindInvalidType,
			fmt.Sprintf("function %q expects between %d and %d argument(s), got %d", n.Name, fn.MinArgs, fn.MaxArgs, len(n.Args)),
			n.SpanVal)
	}
	args := make([]numeric.Value, len(n.Args))
	for i, a := range n.Args {
		v, fail := me.evalExpr(a)
		if fail != nil {
			return numeric.Value{}, fail
		}
		args[i] = v
	}
	res, err := fn.Call(args)
	if err != nil {
		return numeric.Value{}, newFailure(diagnostics.KindInvalidType, err.Error(), n.SpanVal)
	}
	return res, nil
}

func (me *modelEval) evalVariable(v *ast.Variable) (numeric.Value, *evalFailure) {
	if v.Kind == ast.VarExternal {
		return me.evalExternalVariable(v)
	}
	if pr, ok := me.result.Parameters[model.ParameterName(v.Name)]; ok {
		if pr.Failed {
			return numeric.Value{}, propagatedFailure()
		}
		return pr.Value, nil
	}
	if val, ok := me.ev.builtins.LookupVariable(v.Name); ok {
		return val, nil
	}
	// The resolver already reported undefined-parameter for any name that
	// reaches neither branch; nothing new to say here.
	return numeric.Value{}, propagatedFailure()
}

// evalExternalVariable walks the same dotted submodel/reference chain the
// resolver's resolveExternalVariable validated, but against already
// evaluated ModelResults instead of diagnosing.
func (me *modelEval) evalExternalVariable(v *ast.Variable) (numeric.Value, *evalFailure) {
	segs := strings.Split(v.ModelPath, ".")
	first := segs[0]

	var targetPath model.ModulePath
	if sub, ok := me.m.Submodels[model.SubmodelName(first)]; ok {
		if sub.Failed {
			return numeric.Value{}, propagatedFailure()
		}
		targetPath = sub.Path
	} else if ref, ok := me.m.References[model.ReferenceName(first)]; ok {
		if ref.Failed {
			return numeric.Value{}, propagatedFailure()
		}
		targetPath = ref.Path
	} else {
		return numeric.Value{}, propagatedFailure()
	}

	curPath := targetPath
	for _, seg := range segs[1:] {
		target, ok := me.ev.collection.Get(curPath)
		if !ok || target.HasError {
			return numeric.Value{}, propagatedFailure()
		}
		nested, ok := target.Submodels[model.SubmodelName(seg)]
		if !ok || nested.Failed {
			return numeric.Value{}, propagatedFailure()
		}
		curPath = nested.Path
	}

	targetResult, ok := me.ev.results[curPath]
	if !ok {
		return numeric.Value{}, propagatedFailure()
	}
	pr, ok := targetResult.Parameters[model.ParameterName(v.Name)]
	if !ok || pr.Failed {
		return numeric.Value{}, propagatedFailure()
	}
	return pr.Value, nil
}
