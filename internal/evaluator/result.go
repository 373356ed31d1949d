package evaluator

import (
	"github.com/oneil-lang/oneil/internal/model"
	"github.com/oneil-lang/oneil/internal/numeric"
)

// ParameterResult is one parameter's evaluated outcome within a model.
type ParameterResult struct {
	Name   model.ParameterName
	Value  numeric.Value
	Failed bool

	// DebugDependencies snapshots every dependency's value at the moment
	// this parameter was computed, populated only for Debug-trace
	// parameters (spec.md §4.7 "dependency-value capture").
	DebugDependencies map[model.ParameterName]numeric.Value
}

// TestResult is one test's evaluated outcome.
type TestResult struct {
	Index  int
	Passed bool
	Failed bool

	DebugDependencies map[model.ParameterName]numeric.Value
}

// ModelResult holds every parameter's and test's outcome for one model.
type ModelResult struct {
	Path       model.ModulePath
	Parameters map[model.ParameterName]*ParameterResult
	Tests      []*TestResult
}

// Result is the full evaluated output of one run: every model that was
// reachable from the loaded file set, keyed by path.
type Result struct {
	Models map[model.ModulePath]*ModelResult
}

// ForPath returns the evaluated outcome for path, if it was evaluated.
func (r *Result) ForPath(path model.ModulePath) (*ModelResult, bool) {
	mr, ok := r.Models[path]
	return mr, ok
}
