// Package symbols implements the offset -> definition resolver spec.md
// §4.9 describes: given a resolved model and a byte offset, return the
// first of parameter-definition, submodel-import name, reference-import
// name, parameter-reference, or external-reference whose span contains
// the offset, then follow the binding rules of §4.6 to its definition
// site. This component is pure and stateless — it never mutates the
// model.Collection it's handed.
//
// Grounded on the teacher's internal/symbols package (a Symbol{Name,
// Type, Kind, Span} table keyed by scope) plus cmd/lsp/handler_definition.go's
// span-containment walk over that table; Oneil has no separate symbol
// table to build ahead of time since model.Model's own maps
// (Parameters/Submodels/References) already serve that role, so this
// package walks them directly instead of pre-indexing.
package symbols

import (
	"strings"

	"github.com/oneil-lang/oneil/internal/ast"
	"github.com/oneil-lang/oneil/internal/model"
	"github.com/oneil-lang/oneil/internal/span"
)

// Kind distinguishes what sort of entity a Definition points at.
type Kind int

const (
	KindParameter Kind = iota
	KindSubmodel
	KindReference
)

// Definition is the resolved target of a symbol-at-offset lookup.
type Definition struct {
	Kind Kind
	Path model.ModulePath
	Span span.Span
}

// Lookup returns the definition of whatever symbol occupies offset in
// the model at path, or false if no tracked symbol's span contains it
// (e.g. the offset lands on a keyword, an operator, or whitespace).
func Lookup(col *model.Collection, path model.ModulePath, offset int) (Definition, bool) {
	m, ok := col.Get(path)
	if !ok {
		return Definition{}, false
	}

	// 1. Parameter definitions (the name in `Label: name = value`).
	for _, p := range m.Parameters {
		if p.Decl.NameSpan.Contains(offset) {
			return Definition{Kind: KindParameter, Path: path, Span: p.Decl.NameSpan}, true
		}
	}

	// 2 & 3. Submodel/reference import binding names.
	for _, sub := range m.Submodels {
		if useDeclNameSpan(sub.Decl).Contains(offset) {
			return targetDefinition(KindSubmodel, sub.Path), true
		}
	}
	for _, ref := range m.References {
		if useDeclNameSpan(ref.Decl).Contains(offset) {
			return targetDefinition(KindReference, ref.Path), true
		}
	}

	// 4 & 5. Variable occurrences inside parameter/test bodies.
	if def, ok := lookupInParameters(col, path, m, offset); ok {
		return def, true
	}
	if def, ok := lookupInTests(col, path, m, offset); ok {
		return def, true
	}

	return Definition{}, false
}

// useDeclNameSpan picks the span that represents the bound name written
// at the use site: the alias if one was written, else the path segment
// that supplies the default bound name (ast.UseModelDecl.BoundName).
func useDeclNameSpan(d *ast.UseModelDecl) span.Span {
	if d.AliasSpan != (span.Span{}) {
		return d.AliasSpan
	}
	return d.PathSpan
}

// targetDefinition points at the start of the target module file; a
// whole-file `use` has no single declaring node to land on, matching how
// an editor's "go to definition" for a module import jumps to line 1 of
// the imported file. The target may be unresolved (a failed binding);
// the caller still gets a Definition naming the path it would have
// pointed at.
func targetDefinition(kind Kind, target model.ModulePath) Definition {
	return Definition{Kind: kind, Path: target, Span: span.Span{}}
}

func lookupInParameters(col *model.Collection, path model.ModulePath, m *model.Model, offset int) (Definition, bool) {
	for _, p := range m.Parameters {
		if def, ok := lookupInParameterValue(col, path, m, p.Decl.Value, offset); ok {
			return def, true
		}
		if def, ok := lookupInLimits(col, path, m, p.Decl.Limits, offset); ok {
			return def, true
		}
	}
	return Definition{}, false
}

func lookupInTests(col *model.Collection, path model.ModulePath, m *model.Model, offset int) (Definition, bool) {
	for _, t := range m.Tests {
		if def, ok := lookupInExpr(col, path, m, t.Decl.Expr, offset); ok {
			return def, true
		}
	}
	return Definition{}, false
}

func lookupInParameterValue(col *model.Collection, path model.ModulePath, m *model.Model, v ast.ParameterValue, offset int) (Definition, bool) {
	switch n := v.(type) {
	case *ast.SimpleValue:
		return lookupInExpr(col, path, m, n.Expr, offset)
	case *ast.PiecewiseValue:
		for _, b := range n.Branches {
			if def, ok := lookupInExpr(col, path, m, b.Body, offset); ok {
				return def, true
			}
			if def, ok := lookupInExpr(col, path, m, b.Predicate, offset); ok {
				return def, true
			}
		}
	}
	return Definition{}, false
}

func lookupInLimits(col *model.Collection, path model.ModulePath, m *model.Model, l ast.Limits, offset int) (Definition, bool) {
	switch n := l.(type) {
	case *ast.ContinuousLimits:
		if def, ok := lookupInExpr(col, path, m, n.Min, offset); ok {
			return def, true
		}
		return lookupInExpr(col, path, m, n.Max, offset)
	case *ast.DiscreteLimits:
		for _, v := range n.Values {
			if def, ok := lookupInExpr(col, path, m, v, offset); ok {
				return def, true
			}
		}
	}
	return Definition{}, false
}

// lookupInExpr walks e depth-first looking for the Variable leaf whose
// span contains offset, then resolves it to a Definition.
func lookupInExpr(col *model.Collection, path model.ModulePath, m *model.Model, e ast.Expr, offset int) (Definition, bool) {
	switch n := e.(type) {
	case nil:
		return Definition{}, false
	case *ast.BinaryOp:
		if def, ok := lookupInExpr(col, path, m, n.Left, offset); ok {
			return def, true
		}
		return lookupInExpr(col, path, m, n.Right, offset)
	case *ast.ComparisonOp:
		if def, ok := lookupInExpr(col, path, m, n.First, offset); ok {
			return def, true
		}
		for _, p := range n.Rest {
			if def, ok := lookupInExpr(col, path, m, p.Operand, offset); ok {
				return def, true
			}
		}
	case *ast.UnaryOp:
		return lookupInExpr(col, path, m, n.Operand, offset)
	case *ast.FunctionCall:
		for _, a := range n.Args {
			if def, ok := lookupInExpr(col, path, m, a, offset); ok {
				return def, true
			}
		}
	case *ast.Variable:
		if n.SpanVal.Contains(offset) {
			return resolveVariableDefinition(col, path, m, n)
		}
	}
	return Definition{}, false
}

// resolveVariableDefinition follows §4.6's binding rules for the variable
// n from the vantage point of model m at path: an in-model parameter
// reference resolves to that parameter's name span in the same model; a
// dotted external reference walks the submodel/reference chain (exactly
// as internal/resolver.resolveExternalVariable does, but read-only —
// every binding here is already resolved, so there is nothing left to
// diagnose) down to the final parameter's name span in whichever model
// the chain lands on.
func resolveVariableDefinition(col *model.Collection, path model.ModulePath, m *model.Model, v *ast.Variable) (Definition, bool) {
	switch v.Kind {
	case ast.VarParameter:
		if p, ok := m.Parameters[model.ParameterName(v.Name)]; ok {
			return Definition{Kind: KindParameter, Path: path, Span: p.Decl.NameSpan}, true
		}
		return Definition{}, false
	case ast.VarExternal:
		segs := strings.Split(v.ModelPath, ".")
		return resolveExternalDefinition(col, m, segs, v.Name)
	default:
		return Definition{}, false
	}
}

func resolveExternalDefinition(col *model.Collection, m *model.Model, segs []string, paramName string) (Definition, bool) {
	if len(segs) == 0 {
		return Definition{}, false
	}
	first := segs[0]
	var targetPath model.ModulePath
	if sub, ok := m.Submodels[model.SubmodelName(first)]; ok {
		targetPath = sub.Path
	} else if ref, ok := m.References[model.ReferenceName(first)]; ok {
		targetPath = ref.Path
	} else {
		return Definition{}, false
	}

	curPath := targetPath
	for _, seg := range segs[1:] {
		target, ok := col.Get(curPath)
		if !ok {
			return Definition{}, false
		}
		nested, ok := target.Submodels[model.SubmodelName(seg)]
		if !ok {
			return Definition{}, false
		}
		curPath = nested.Path
	}

	target, ok := col.Get(curPath)
	if !ok {
		return Definition{}, false
	}
	param, ok := target.Parameters[model.ParameterName(paramName)]
	if !ok {
		return Definition{}, false
	}
	return Definition{Kind: KindParameter, Path: curPath, Span: param.Decl.NameSpan}, true
}
