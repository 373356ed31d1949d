package resolver

import (
	"sort"
	"strings"

	"github.com/oneil-lang/oneil/internal/diagnostics"
	"github.com/oneil-lang/oneil/internal/model"
	"github.com/oneil-lang/oneil/internal/span"
)

// detectParameterCycles walks each parameter's precomputed Dependencies
// map for a same-model cycle (spec.md §4.6 "parameter-level cycles"): a
// second traversal over the dependency graph the earlier resolveParameter
// pass already built, mirroring the file-level cycle guard in
// internal/loader but over parameter names instead of module paths.
//
// The diagnostic is emitted on the dependency edge that closes the cycle
// back onto a parameter already on the DFS stack — for `A: a = b + 1` /
// `B: b = a - 1`, that is b's reference to a, matching spec.md §8's
// "emitted on the parameter that closes the cycle (b)".
func (r *Resolver) detectParameterCycles(path model.ModulePath, m *model.Model) {
	const (
		white = iota
		gray
		black
	)
	color := make(map[model.ParameterName]int, len(m.Parameters))
	var stack []model.ParameterName

	var visit func(name model.ParameterName)
	visit = func(name model.ParameterName) {
		p, ok := m.Parameters[name]
		if !ok || color[name] == black {
			return
		}
		color[name] = gray
		stack = append(stack, name)

		deps := sortedDependencyNames(p.Dependencies)
		for _, dep := range deps {
			switch color[dep] {
			case gray:
				chain := cycleChain(stack, dep)
				r.addDiag(path, diagnostics.New(diagnostics.KindParamCircularDependency,
					"circular dependency: "+strings.Join(namesOf(chain), " -> "), p.Dependencies[dep]))
				cur := m.Parameters[name]
				cur.Failed = true
				m.Parameters[name] = cur
				m.HasError = true
			case white:
				visit(dep)
			}
		}

		stack = stack[:len(stack)-1]
		color[name] = black
	}

	names := make([]model.ParameterName, 0, len(m.Parameters))
	for name := range m.Parameters {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	for _, name := range names {
		if color[name] == white {
			visit(name)
		}
	}
}

func sortedDependencyNames(deps map[model.ParameterName]span.Span) []model.ParameterName {
	names := make([]model.ParameterName, 0, len(deps))
	for n := range deps {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// cycleChain returns the cycle from its first occurrence of closeAt on
// stack through closeAt again, e.g. stack=[a,b], closeAt=a -> [a, b, a].
func cycleChain(stack []model.ParameterName, closeAt model.ParameterName) []model.ParameterName {
	idx := 0
	for i, n := range stack {
		if n == closeAt {
			idx = i
			break
		}
	}
	chain := append([]model.ParameterName{}, stack[idx:]...)
	chain = append(chain, closeAt)
	return chain
}

func namesOf(chain []model.ParameterName) []string {
	out := make([]string, len(chain))
	for i, n := range chain {
		out[i] = n.String()
	}
	return out
}
