// Package oneil is the orchestration entry point: it glues
// internal/loader, internal/resolver, and internal/evaluator into the
// single synchronous pipeline spec.md's external interfaces run against
// (Parse -> Load -> Resolve -> Evaluate), exposing one call, Run, that
// every consumer (cmd/oneil, cmd/oneil-lsp, tests) drives.
//
// Grounded on the teacher's internal/pipeline.Pipeline.Run: a sequential
// stage chain that keeps going after a stage reports diagnostics so a
// caller gets every diagnostic the whole run produced in one pass,
// rather than stopping at the first broken file.
package oneil

import (
	"sort"

	"github.com/oneil-lang/oneil/internal/builtins"
	"github.com/oneil-lang/oneil/internal/diagnostics"
	"github.com/oneil-lang/oneil/internal/evaluator"
	"github.com/oneil-lang/oneil/internal/loader"
	"github.com/oneil-lang/oneil/internal/model"
	"github.com/oneil-lang/oneil/internal/resolver"
)

// Result is the outcome of one Run: the evaluated models plus which
// ModulePaths were the run's direct entry points, as opposed to files
// only reached transitively via `use` (spec.md §3 invariant 1's "top"
// set; `oneil eval` prints the parameters of the first of these).
type Result struct {
	*evaluator.Result
	Top []model.ModulePath

	// Collection is the fully resolved model set Run produced, exposed
	// for tooling (cmd/oneil-lsp's symbol-at-offset lookup) that needs
	// the resolved AST/dependency graph rather than just evaluated
	// values.
	Collection *model.Collection
}

// Options configures one Run. Files and Builtins are required; Python
// may be left nil, in which case every `.py` import is accepted without
// validation (the behavior internal/resolver.ResolveAll already defaults
// to when its own python argument is nil).
type Options struct {
	Files    loader.FileLoader
	Builtins builtins.Provider
	Python   resolver.PythonValidator
}

// Run executes the full pipeline over entryPaths and returns the
// evaluated Result plus every diagnostic raised across all three stages,
// sorted by internal/diagnostics.SortDiagnostics. A file that fails to
// load or resolve still allows the rest of the run to proceed — only the
// models reachable from it lose their evaluated values, matching the
// teacher pipeline's "continue on errors to collect diagnostics from all
// stages" comment.
func Run(entryPaths []string, opts Options) (*Result, []diagnostics.Diagnostic) {
	l := loader.New(opts.Files)
	loaded, top, loadDiags := l.LoadAll(entryPaths)
	src := loader.NewProvider(loaded)

	collection, resolveDiags := resolver.ResolveAll(loaded, opts.Builtins, opts.Python)

	evalResult, evalDiags := evaluator.EvaluateAll(collection, opts.Builtins, src)

	var diags []diagnostics.Diagnostic
	diags = append(diags, loadDiags...)
	diags = append(diags, resolveDiags...)
	diags = append(diags, evalDiags...)
	diags = filterPropagated(diags)
	diagnostics.SortDiagnostics(diags)

	sort.Slice(top, func(i, j int) bool { return top[i] < top[j] })
	return &Result{Result: evalResult, Top: top, Collection: collection}, diags
}

// filterPropagated drops the internal-only sentinel diagnostics
// (ModelHasError/ParameterHasError/etc.) that mark a downstream failure
// caused by an upstream one already reported elsewhere — spec.md §7's
// propagation policy, matching the teacher's pattern of internal-only
// sentinel errors that never reach the user-facing diagnostic type.
func filterPropagated(diags []diagnostics.Diagnostic) []diagnostics.Diagnostic {
	kept := diags[:0]
	for _, d := range diags {
		if diagnostics.IsPropagated(d.Kind) {
			continue
		}
		kept = append(kept, d)
	}
	return kept
}
