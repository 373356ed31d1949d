package model

import (
	"github.com/oneil-lang/oneil/internal/ast"
	"github.com/oneil-lang/oneil/internal/span"
)

// Import is a resolved Python dependency: the literal path text plus the
// declaration site, kept for diagnostics once the loader checks the file
// exists (spec.md §4.5).
type Import struct {
	Path PythonPath
	Span span.Span
}

// Submodel is a resolved `use` declaration: the module it points at, the
// name it's bound to in this model, and any inputs supplied at the use
// site (spec.md §4.2 ast.UseModelDecl, resolved into a file reference).
type Submodel struct {
	Name   SubmodelName
	Path   ModulePath
	Inputs map[ParameterName]ast.Expr
	Decl   *ast.UseModelDecl

	// Failed marks a binding whose target path/subcomponent chain could
	// not be resolved (missing file, bad subcomponent, or an upstream
	// model-has-error); a reference to this name from an expression gets
	// a propagated marker instead of a second diagnostic (spec.md §4.6).
	Failed bool
}

// Reference is a resolved non-owning `ref use`/`from ... use` binding: a
// named pointer at another model by path, the same arena-handle shape as
// Submodel (GLOSSARY "Reference: a non-owning peer link... lets
// expressions name ref.p without duplicating evaluation") but never
// nested into the current model's own composition tree.
type Reference struct {
	Name ReferenceName
	Path ModulePath
	Decl *ast.UseModelDecl

	// Failed mirrors Submodel.Failed.
	Failed bool
}

// Parameter is a resolved parameter declaration together with the set of
// other parameter names its value expression depends on — precomputed by
// the resolver so the evaluator can build an evaluation order via a
// single dependency-graph walk (spec.md §4.6).
type Parameter struct {
	Name         ParameterName
	Decl         *ast.ParameterDecl
	Dependencies map[ParameterName]span.Span

	// Failed marks a parameter whose value/limits expressions reference
	// an undefined name, or something that is itself Failed; referencing
	// it elsewhere reports a propagated KindParameterHasError rather than
	// repeating the underlying error (spec.md §4.6).
	Failed bool
}

// Test is a resolved test declaration.
type Test struct {
	Decl         *ast.TestDecl
	Dependencies map[ParameterName]span.Span
	Failed       bool
}

// Model is one resolved `.on` file: its Python imports, submodel and
// reference bindings, parameters, and tests, keyed by name for the
// resolver and evaluator to look up in O(1).
type Model struct {
	Path        ModulePath
	Note        *ast.Note
	Imports     []Import
	Submodels   map[SubmodelName]Submodel
	References  map[ReferenceName]Reference
	Parameters  map[ParameterName]Parameter
	Tests       []Test

	// HasError marks a model whose own declarations failed to resolve;
	// downstream dependents get KindModelHasError instead of a cascade
	// of undefined-name errors (spec.md §4.5/§7 propagation policy).
	HasError bool
}

// NewModel returns an empty Model for path, ready for the resolver to
// populate.
func NewModel(path ModulePath) *Model {
	return &Model{
		Path:       path,
		Submodels:  make(map[SubmodelName]Submodel),
		References: make(map[ReferenceName]Reference),
		Parameters: make(map[ParameterName]Parameter),
	}
}

// Collection is the full set of models loaded for one run, keyed by path
// (spec.md §4.5 "ModuleGraph"). Top stays empty in a Collection built by
// resolver.ResolveAll, which never fills it in; a run's entry paths are
// reported on pkg/oneil's Result.Top instead.
type Collection struct {
	Models map[ModulePath]*Model
	Top    []ModulePath
}

// NewCollection returns an empty Collection.
func NewCollection() *Collection {
	return &Collection{Models: make(map[ModulePath]*Model)}
}

// Get returns the model at path, or nil if it hasn't been loaded.
func (c *Collection) Get(path ModulePath) (*Model, bool) {
	m, ok := c.Models[path]
	return m, ok
}

// Add registers m, overwriting any previous entry at the same path.
func (c *Collection) Add(m *Model) {
	c.Models[m.Path] = m
}

// Has reports whether path has already been loaded.
func (c *Collection) Has(path ModulePath) bool {
	_, ok := c.Models[path]
	return ok
}
