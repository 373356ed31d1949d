package resolver

import (
	"fmt"

	"github.com/oneil-lang/oneil/internal/ast"
	"github.com/oneil-lang/oneil/internal/diagnostics"
	"github.com/oneil-lang/oneil/internal/model"
	"github.com/oneil-lang/oneil/internal/span"
)

// resolveUses binds each `use`/`from ... use` declaration to a
// SubmodelImport (owning) or ReferenceImport (non-owning, when Ref is
// set), per spec.md §4.6 "Submodels and references". The bound name's
// namespace is shared between submodels and references, matching
// ast.UseModelDecl.BoundName's "the current model's namespace" doc.
func (r *Resolver) resolveUses(path model.ModulePath, m *model.Model, uses []*ast.UseModelDecl) {
	bound := make(map[string]*ast.UseModelDecl, len(uses))
	for _, d := range uses {
		name := d.BoundName()
		if name == "" {
			continue // parser already reported a grammar error for this declaration
		}
		if orig, dup := bound[name]; dup {
			kind := diagnostics.KindDuplicateSubmodel
			if d.Ref {
				kind = diagnostics.KindDuplicateReference
			}
			r.addDiag(path, diagnostics.New(kind,
				fmt.Sprintf("%q is defined multiple times", name), aliasOrPathSpanOf(d)).
				WithSourceContext("first defined here", path.String(), aliasOrPathSpanOf(orig)))
			continue
		}
		bound[name] = d

		targetPath, cause := r.resolveUseTarget(path, d)
		failed := cause != nil
		if cause != nil {
			r.addDiag(path, cause)
			m.HasError = true
		}

		inputs := make(map[model.ParameterName]ast.Expr, len(d.Inputs))
		for _, in := range d.Inputs {
			inputs[model.ParameterName(in.Name)] = in.Value
		}

		if d.Ref {
			m.References[model.ReferenceName(name)] = model.Reference{
				Name: model.ReferenceName(name), Path: targetPath, Decl: d, Failed: failed,
			}
		} else {
			m.Submodels[model.SubmodelName(name)] = model.Submodel{
				Name: model.SubmodelName(name), Path: targetPath, Inputs: inputs, Decl: d, Failed: failed,
			}
		}
	}
}

// resolveUseTarget resolves d's target module path (PathParts[0], sibling
// to path) and walks any `.subcomponent` chain through already-resolved
// submodels, grounded on
// original_source/src-rs/oneil_module_loader/src/loader/resolver/submodel.rs's
// resolve_module_path: load one file, then walk N already-loaded
// submodels by name, never treat the chain as an N-segment file path.
func (r *Resolver) resolveUseTarget(path model.ModulePath, d *ast.UseModelDecl) (model.ModulePath, diagnostics.Cause) {
	if len(d.PathParts) == 0 {
		return "", nil
	}
	base := path.SiblingPath(d.PathParts[0])
	basePath, err := model.NewModulePath(base)
	if err != nil {
		return "", diagnostics.New(diagnostics.KindUndefinedSubmodel, err.Error(), d.PathSpan)
	}
	return r.walkSubPath(basePath, d.SubPath, "", d.PathSpan)
}

func (r *Resolver) walkSubPath(modPath model.ModulePath, subcomponents []string, parent string, refSpan span.Span) (model.ModulePath, diagnostics.Cause) {
	target := r.resolveModel(modPath)
	if target == nil {
		return "", diagnostics.New(diagnostics.KindUndefinedSubmodel,
			fmt.Sprintf("module %q could not be loaded", modPath), refSpan)
	}
	if target.HasError {
		return "", diagnostics.New(diagnostics.KindModelHasError,
			fmt.Sprintf("submodel %q has errors", modPath), refSpan)
	}
	if len(subcomponents) == 0 {
		return modPath, nil
	}

	name := model.SubmodelName(subcomponents[0])
	sub, ok := target.Submodels[name]
	if !ok {
		if parent != "" {
			return "", diagnostics.New(diagnostics.KindUndefinedSubmodel,
				fmt.Sprintf("submodel %q is not defined in submodel %q", name, parent), refSpan)
		}
		return "", diagnostics.New(diagnostics.KindUndefinedSubmodel,
			fmt.Sprintf("submodel %q is not defined in model %q", name, modPath), refSpan)
	}
	if sub.Failed {
		return "", diagnostics.New(diagnostics.KindSubmodelResFailed,
			fmt.Sprintf("submodel %q has errors", name), refSpan)
	}
	return r.walkSubPath(sub.Path, subcomponents[1:], string(name), refSpan)
}

// aliasOrPathSpanOf picks the span that best represents d for a
// duplicate-binding note: the alias if one was written, else the path.
func aliasOrPathSpanOf(d *ast.UseModelDecl) span.Span {
	if d.AliasSpan != (span.Span{}) {
		return d.AliasSpan
	}
	return d.PathSpan
}
