package evaluator

import (
	"sort"

	"github.com/oneil-lang/oneil/internal/model"
)

// computeModelOrder returns every model path in the collection in
// dependency order: a model's submodel/reference targets are visited
// (and so appear in the returned slice) before the model itself, via a
// post-order DFS over the edges the resolver already recorded. Sorting
// candidate paths/names before each DFS keeps the order deterministic
// across runs.
// ModelOrder exposes computeModelOrder for tooling (`oneil tree`) that
// wants to print the same dependency-ordered evaluation plan the
// evaluator itself follows, without duplicating the traversal.
func ModelOrder(collection *model.Collection) []model.ModulePath {
	return computeModelOrder(collection)
}

// ParameterOrder exposes computeParameterOrder for tooling (`oneil
// tree`) that wants to print one model's own evaluation plan.
func ParameterOrder(m *model.Model) []model.ParameterName {
	return computeParameterOrder(m)
}

func computeModelOrder(collection *model.Collection) []model.ModulePath {
	visited := make(map[model.ModulePath]bool, len(collection.Models))
	order := make([]model.ModulePath, 0, len(collection.Models))

	var visit func(path model.ModulePath)
	visit = func(path model.ModulePath) {
		if visited[path] {
			return
		}
		visited[path] = true
		m, ok := collection.Get(path)
		if !ok {
			return
		}
		for _, name := range sortedSubmodelNames(m) {
			sub := m.Submodels[name]
			if !sub.Failed {
				visit(sub.Path)
			}
		}
		for _, name := range sortedReferenceNames(m) {
			ref := m.References[name]
			if !ref.Failed {
				visit(ref.Path)
			}
		}
		order = append(order, path)
	}

	paths := make([]model.ModulePath, 0, len(collection.Models))
	for p := range collection.Models {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })
	for _, p := range paths {
		visit(p)
	}
	return order
}

func sortedSubmodelNames(m *model.Model) []model.SubmodelName {
	names := make([]model.SubmodelName, 0, len(m.Submodels))
	for n := range m.Submodels {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

func sortedReferenceNames(m *model.Model) []model.ReferenceName {
	names := make([]model.ReferenceName, 0, len(m.References))
	for n := range m.References {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// computeParameterOrder returns m's own parameters in dependency order: a
// parameter's dependencies are visited before the parameter itself, via
// post-order DFS over Parameter.Dependencies (already cycle-checked by
// the resolver). A name in Dependencies that isn't in m.Parameters is a
// builtin and contributes no ordering edge.
func computeParameterOrder(m *model.Model) []model.ParameterName {
	visited := make(map[model.ParameterName]bool, len(m.Parameters))
	order := make([]model.ParameterName, 0, len(m.Parameters))

	var visit func(name model.ParameterName)
	visit = func(name model.ParameterName) {
		if visited[name] {
			return
		}
		p, ok := m.Parameters[name]
		if !ok {
			return
		}
		visited[name] = true
		for _, dep := range sortedParamDeps(p) {
			visit(dep)
		}
		order = append(order, name)
	}

	names := make([]model.ParameterName, 0, len(m.Parameters))
	for n := range m.Parameters {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	for _, n := range names {
		visit(n)
	}
	return order
}

func sortedParamDeps(p model.Parameter) []model.ParameterName {
	deps := make([]model.ParameterName, 0, len(p.Dependencies))
	for d := range p.Dependencies {
		deps = append(deps, d)
	}
	sort.Slice(deps, func(i, j int) bool { return deps[i] < deps[j] })
	return deps
}
