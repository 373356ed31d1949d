package resolver

import (
	"fmt"
	"strings"

	"github.com/oneil-lang/oneil/internal/ast"
	"github.com/oneil-lang/oneil/internal/diagnostics"
	"github.com/oneil-lang/oneil/internal/model"
	"github.com/oneil-lang/oneil/internal/span"
)

// resolveParameter resolves one parameter's value and limits expressions
// against (a) built-ins, (b) the model's other parameters, (c) dotted
// external references, computing its dependency set as it goes (spec.md
// §4.6 "Parameters").
func (r *Resolver) resolveParameter(path model.ModulePath, m *model.Model, decl *ast.ParameterDecl) {
	deps := make(map[model.ParameterName]span.Span)
	failed := false

	visit := func(v *ast.Variable) {
		if !r.resolveVariable(path, m, v, deps) {
			failed = true
		}
	}

	walkParameterValue(decl.Value, visit)
	walkLimits(decl.Limits, visit)

	name := model.ParameterName(decl.Name)
	m.Parameters[name] = model.Parameter{Name: name, Decl: decl, Dependencies: deps, Failed: failed}
	if failed {
		m.HasError = true
	}
}

// resolveTest resolves a test's predicate under the same rules as a
// parameter expression; its declared inputs must each name an existing
// parameter (spec.md §4.6 "Tests").
func (r *Resolver) resolveTest(path model.ModulePath, m *model.Model, decl *ast.TestDecl) {
	deps := make(map[model.ParameterName]span.Span)
	failed := false

	visit := func(v *ast.Variable) {
		if !r.resolveVariable(path, m, v, deps) {
			failed = true
		}
	}
	walkExpr(decl.Expr, visit)

	seen := make(map[string]bool, len(decl.Inputs))
	for _, in := range decl.Inputs {
		if seen[in] {
			r.addDiag(path, diagnostics.New(diagnostics.KindDuplicateInput,
				fmt.Sprintf("test input %q is declared multiple times", in), decl.SpanVal))
			continue
		}
		seen[in] = true
		if _, ok := m.Parameters[model.ParameterName(in)]; !ok && !r.builtins.IsBuiltin(in) {
			r.addDiag(path, diagnostics.New(diagnostics.KindUndefinedParameter,
				fmt.Sprintf("test input %q is not a defined parameter", in), decl.SpanVal))
			failed = true
		}
	}

	m.Tests = append(m.Tests, model.Test{Decl: decl, Dependencies: deps, Failed: failed})
}

// resolveVariable validates one variable reference, recording a
// dependency for an in-model parameter reference. It returns false if it
// emitted a diagnostic (fresh or propagated); the caller folds that into
// the enclosing parameter/test's own Failed status (spec.md §4.6's
// variable-resolution error taxonomy).
//
// Same-file propagation is simplified relative to the taxonomy's full
// generality: a parameter that references another, already-broken
// same-file parameter is not specially suppressed here (it resolves as
// an ordinary dependency, since the name does exist) — only cross-model
// references get the propagated ModelHasError/SubmodelResFailed/
// ReferenceResFailed/ParameterHasError markers, since those targets are
// always fully resolved (by resolveModel's recursion) before this model
// is. Decided in DESIGN.md's open-question-decisions.
func (r *Resolver) resolveVariable(path model.ModulePath, m *model.Model, v *ast.Variable, deps map[model.ParameterName]span.Span) bool {
	switch v.Kind {
	case ast.VarParameter:
		if r.builtins.IsBuiltin(v.Name) {
			return true
		}
		if _, ok := m.Parameters[model.ParameterName(v.Name)]; ok {
			deps[model.ParameterName(v.Name)] = v.SpanVal
			return true
		}
		r.addDiag(path, diagnostics.New(diagnostics.KindUndefinedParameter,
			fmt.Sprintf("undefined parameter %q", v.Name), v.SpanVal))
		return false
	case ast.VarExternal:
		return r.resolveExternalVariable(path, m, strings.Split(v.ModelPath, "."), v.Name, v.SpanVal)
	default:
		return true
	}
}

// resolveExternalVariable walks a dotted `a.b.name` expression reference:
// the first segment must be a submodel/reference bound in m, any further
// segments walk nested submodels of the target model, and the final
// segment names a parameter in whichever model the chain lands on.
func (r *Resolver) resolveExternalVariable(path model.ModulePath, m *model.Model, segs []string, paramName string, sp span.Span) bool {
	first := segs[0]
	var targetPath model.ModulePath
	var bindingFailed bool
	if sub, ok := m.Submodels[model.SubmodelName(first)]; ok {
		targetPath, bindingFailed = sub.Path, sub.Failed
	} else if ref, ok := m.References[model.ReferenceName(first)]; ok {
		targetPath, bindingFailed = ref.Path, ref.Failed
	} else {
		r.addDiag(path, diagnostics.New(diagnostics.KindUndefinedReference,
			fmt.Sprintf("undefined submodel or reference %q", first), sp))
		return false
	}
	if bindingFailed {
		r.addDiag(path, diagnostics.New(diagnostics.KindReferenceResFailed,
			fmt.Sprintf("%q has errors", first), sp))
		return false
	}

	curPath, curName := targetPath, first
	for _, seg := range segs[1:] {
		target, ok := r.collection.Get(curPath)
		if !ok || target.HasError {
			r.addDiag(path, diagnostics.New(diagnostics.KindModelHasError,
				fmt.Sprintf("%q has errors", curName), sp))
			return false
		}
		nested, ok := target.Submodels[model.SubmodelName(seg)]
		if !ok {
			r.addDiag(path, diagnostics.New(diagnostics.KindUndefinedSubmodel,
				fmt.Sprintf("submodel %q is not defined in %q", seg, curPath), sp))
			return false
		}
		if nested.Failed {
			r.addDiag(path, diagnostics.New(diagnostics.KindSubmodelResFailed,
				fmt.Sprintf("submodel %q has errors", seg), sp))
			return false
		}
		curPath, curName = nested.Path, seg
	}

	target, ok := r.collection.Get(curPath)
	if !ok || target.HasError {
		r.addDiag(path, diagnostics.New(diagnostics.KindModelHasError,
			fmt.Sprintf("%q has errors", curName), sp))
		return false
	}
	param, ok := target.Parameters[model.ParameterName(paramName)]
	if !ok {
		r.addDiag(path, diagnostics.New(diagnostics.KindUndefinedParameter,
			fmt.Sprintf("undefined parameter %q in %q", paramName, curPath), sp))
		return false
	}
	if param.Failed {
		r.addDiag(path, diagnostics.New(diagnostics.KindParameterHasError,
			fmt.Sprintf("parameter %q has errors", paramName), sp))
		return false
	}
	return true
}

// walkExpr visits every Variable leaf in e, depth-first.
func walkExpr(e ast.Expr, visit func(*ast.Variable)) {
	switch n := e.(type) {
	case nil:
		return
	case *ast.BinaryOp:
		walkExpr(n.Left, visit)
		walkExpr(n.Right, visit)
	case *ast.ComparisonOp:
		walkExpr(n.First, visit)
		for _, p := range n.Rest {
			walkExpr(p.Operand, visit)
		}
	case *ast.UnaryOp:
		walkExpr(n.Operand, visit)
	case *ast.FunctionCall:
		for _, a := range n.Args {
			walkExpr(a, visit)
		}
	case *ast.Variable:
		visit(n)
	case *ast.Literal:
		// no children
	}
}

// walkParameterValue visits every Variable leaf in a parameter's value:
// every piecewise branch's body and predicate are walked (spec.md §4.7
// requires every branch to type-check, so the resolver computes
// dependencies for all of them too, not just the one that ends up true).
func walkParameterValue(v ast.ParameterValue, visit func(*ast.Variable)) {
	switch n := v.(type) {
	case *ast.SimpleValue:
		walkExpr(n.Expr, visit)
	case *ast.PiecewiseValue:
		for _, b := range n.Branches {
			walkExpr(b.Body, visit)
			walkExpr(b.Predicate, visit)
		}
	}
}

func walkLimits(l ast.Limits, visit func(*ast.Variable)) {
	switch n := l.(type) {
	case *ast.ContinuousLimits:
		walkExpr(n.Min, visit)
		walkExpr(n.Max, visit)
	case *ast.DiscreteLimits:
		for _, v := range n.Values {
			walkExpr(v, visit)
		}
	}
}
