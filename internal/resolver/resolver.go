// Package resolver implements spec.md §4.6: given a parsed file and a
// lookup context for already-loaded models, bind python imports,
// submodels/references, parameters, and tests into a model.Model, and
// compute each parameter's dependency set.
//
// Grounded on the teacher's internal/analyzer package: a struct holding
// accumulated diagnostics plus an injected ModuleLoader-shaped
// capability (here, the already-loaded file set and the python/builtin
// capabilities), processed in explicit passes (imports, then
// submodels/references, then parameters, then tests) mirroring
// AnalyzeNaming/AnalyzeHeaders/AnalyzeInstances/AnalyzeBodies's ordered
// walker passes.
package resolver

import (
	"sort"

	"github.com/oneil-lang/oneil/internal/ast"
	"github.com/oneil-lang/oneil/internal/builtins"
	"github.com/oneil-lang/oneil/internal/diagnostics"
	"github.com/oneil-lang/oneil/internal/loader"
	"github.com/oneil-lang/oneil/internal/model"
)

// PythonValidator is the `validate_python_import` capability spec.md
// §4.5 describes. It never executes Python; see internal/pythonbridge
// for the default implementation.
type PythonValidator interface {
	ValidatePythonImport(path model.PythonPath) error
}

// Resolver binds every loaded file into a model.Collection, resolving
// dependencies (by path) before the files that use them so that a
// cross-model lookup never sees a partially-resolved target.
type Resolver struct {
	loaded     map[model.ModulePath]*loader.Parsed
	builtins   builtins.Provider
	python     PythonValidator
	collection *model.Collection
	resolving  map[model.ModulePath]bool
	diags      []diagnostics.Diagnostic
}

// ResolveAll resolves every file loader.LoadAll loaded, returning the
// resolved model.Collection and the diagnostics collected while doing
// so. python may be nil, in which case every python import is accepted
// without validation (used by tests that don't exercise that capability).
func ResolveAll(loaded map[model.ModulePath]*loader.Parsed, reg builtins.Provider, python PythonValidator) (*model.Collection, []diagnostics.Diagnostic) {
	r := &Resolver{
		loaded:     loaded,
		builtins:   reg,
		python:     python,
		collection: model.NewCollection(),
		resolving:  make(map[model.ModulePath]bool),
	}

	// Resolution order only matters for determinism of any diagnostic
	// that doesn't depend on one model resolving before another (the
	// actual dependency order is enforced by resolveModel's own
	// recursion); sorting paths keeps output stable across runs.
	paths := make([]model.ModulePath, 0, len(loaded))
	for p := range loaded {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })

	for _, p := range paths {
		r.resolveModel(p)
	}

	diags := append([]diagnostics.Diagnostic{}, r.diags...)
	diagnostics.SortDiagnostics(diags)
	return r.collection, diags
}

// resolveModel returns the resolved Model at path, resolving it (and
// recursively, everything it uses) on first visit. Returns nil if path
// was never loaded (a missing-file/circular-dependency diagnostic was
// already reported by the loader). If a resolver-level cycle is detected
// it returns a placeholder Model with HasError set instead of recursing;
// loader.LoadAll already rejects `use` cycles, so this guard only keeps
// resolveModel from looping forever.
func (r *Resolver) resolveModel(path model.ModulePath) *model.Model {
	if m, ok := r.collection.Get(path); ok {
		return m
	}
	parsed, ok := r.loaded[path]
	if !ok {
		return nil
	}
	if r.resolving[path] {
		m := model.NewModel(path)
		m.HasError = true
		r.collection.Add(m)
		return m
	}
	r.resolving[path] = true
	defer delete(r.resolving, path)

	m := model.NewModel(path)
	m.Note = parsed.AST.Note
	m.HasError = parsed.HasError

	decls := collectDecls(parsed.AST)

	r.resolveImports(path, m, decls.imports)
	r.resolveUses(path, m, decls.uses)

	names := make(map[string]bool, len(decls.params))
	for _, p := range decls.params {
		if names[p.Name] {
			r.addDiag(path, diagnostics.New(diagnostics.KindDuplicateParameter,
				"parameter \""+p.Name+"\" is defined multiple times", p.NameSpan))
			continue
		}
		names[p.Name] = true
	}

	for _, p := range decls.params {
		r.resolveParameter(path, m, p)
	}
	r.detectParameterCycles(path, m)

	for _, t := range decls.tests {
		r.resolveTest(path, m, t)
	}

	r.collection.Add(m)
	return m
}

func (r *Resolver) addDiag(path model.ModulePath, cause diagnostics.Cause) {
	var src diagnostics.SourceProvider
	if parsed, ok := r.loaded[path]; ok {
		src = fileSourceProvider{parsed}
	}
	r.diags = append(r.diags, diagnostics.From(path.String(), diagnostics.PhaseResolve, cause, src))
}

type fileSourceProvider struct{ p *loader.Parsed }

func (s fileSourceProvider) LineSource(_ string, line int) string { return s.p.SourceMap.LineSource(line) }

// declEntry is every declaration kind the resolver needs, gathered in
// one ast.Visitor walk across a model's top-level and section decls.
type declEntry struct {
	imports []*ast.ImportDecl
	uses    []*ast.UseModelDecl
	params  []*ast.ParameterDecl
	tests   []*ast.TestDecl
}

func (e *declEntry) VisitImport(d *ast.ImportDecl)       { e.imports = append(e.imports, d) }
func (e *declEntry) VisitUseModel(d *ast.UseModelDecl)    { e.uses = append(e.uses, d) }
func (e *declEntry) VisitParameter(d *ast.ParameterDecl) { e.params = append(e.params, d) }
func (e *declEntry) VisitTest(d *ast.TestDecl)           { e.tests = append(e.tests, d) }

func collectDecls(m *ast.Model) *declEntry {
	e := &declEntry{}
	m.Accept(e)
	return e
}
