package evaluator_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oneil-lang/oneil/internal/builtins"
	"github.com/oneil-lang/oneil/internal/diagnostics"
	"github.com/oneil-lang/oneil/internal/evaluator"
	"github.com/oneil-lang/oneil/internal/loader"
	"github.com/oneil-lang/oneil/internal/model"
	"github.com/oneil-lang/oneil/internal/resolver"
)

// memFileLoader is an in-memory loader.FileLoader, mirroring
// internal/loader's own test fixture style.
type memFileLoader map[string]string

func (m memFileLoader) ReadFile(path string) (string, error) {
	src, ok := m[path]
	if !ok {
		return "", fmt.Errorf("file not found: %s", path)
	}
	return src, nil
}

// evaluate runs the full loader -> resolver -> evaluator pipeline over
// files, entered from entry, returning the evaluated result and every
// diagnostic raised along the way.
func evaluate(t *testing.T, files memFileLoader, entry string) (*evaluator.Result, []diagnostics.Diagnostic) {
	t.Helper()
	reg, err := builtins.New()
	require.NoError(t, err)

	l := loader.New(files)
	loaded, _, loadDiags := l.LoadAll([]string{entry})
	require.Empty(t, loadDiags)

	collection, resolveDiags := resolver.ResolveAll(loaded, reg, nil)
	require.Empty(t, resolveDiags)

	result, evalDiags := evaluator.EvaluateAll(collection, reg, nil)
	return result, evalDiags
}

func TestEvaluateAllSingleFileHappyPath(t *testing.T) {
	files := memFileLoader{
		"circle.on": "Radius: r = 5 : cm\nArea: a = pi * r ^ 2 : cm^2\n",
	}
	result, diags := evaluate(t, files, "circle.on")
	require.Empty(t, diags)

	mr, ok := result.ForPath(model.ModulePath("circle.on"))
	require.True(t, ok)

	a, ok := mr.Parameters[model.ParameterName("a")]
	require.True(t, ok)
	require.False(t, a.Failed)
	n, ok := a.Value.AsNumber()
	require.True(t, ok)
	require.InDelta(t, 78.53981633974483, n.Min, 1e-9)
}

func TestEvaluateAllSubmodelComposition(t *testing.T) {
	files := memFileLoader{
		"car.on":   "use wheel\n\nPrice: price = 100 + wheel.price\n",
		"wheel.on": "Price: price = 20\n",
	}
	result, diags := evaluate(t, files, "car.on")
	require.Empty(t, diags)

	mr, ok := result.ForPath(model.ModulePath("car.on"))
	require.True(t, ok)
	price := mr.Parameters[model.ParameterName("price")]
	require.False(t, price.Failed)
	n, _ := price.Value.AsNumber()
	require.Equal(t, 120.0, n.Min)
}

func TestEvaluateAllUnitMismatchReportsPrimaryAndSecondarySpans(t *testing.T) {
	files := memFileLoader{
		"m.on": "Length: l = 1 : m\nTime: t = 1 : s\nSum: s2 = l + t\n",
	}
	_, diags := evaluate(t, files, "m.on")
	require.NotEmpty(t, diags)

	var found diagnostics.Diagnostic
	ok := false
	for _, d := range diags {
		if d.Kind == diagnostics.KindUnitMismatch {
			found, ok = d, true
		}
	}
	require.True(t, ok, "expected a unit-mismatch diagnostic, got %v", diags)
	require.NotNil(t, found.Location)
	require.NotEmpty(t, found.ContextWithSource)
}

func TestEvaluateAllPiecewiseNoBranchMatch(t *testing.T) {
	files := memFileLoader{
		"p.on": "X: x = 5\nY: y = {1 if x < 0}\n",
	}
	_, diags := evaluate(t, files, "p.on")
	require.NotEmpty(t, diags)
	require.Equal(t, diagnostics.KindNoBranchMatch, diags[0].Kind)
}

func TestEvaluateAllPiecewiseSelectsMatchingBranch(t *testing.T) {
	files := memFileLoader{
		"p.on": "X: x = 5\nY: y = {1 if x < 0}\n{2 if x >= 0}\n",
	}
	result, diags := evaluate(t, files, "p.on")
	require.Empty(t, diags)

	mr, _ := result.ForPath(model.ModulePath("p.on"))
	y := mr.Parameters[model.ParameterName("y")]
	require.False(t, y.Failed)
	n, _ := y.Value.AsNumber()
	require.Equal(t, 2.0, n.Min)
}

func TestEvaluateAllChainedComparison(t *testing.T) {
	cases := []struct {
		x      string
		expect bool
	}{
		{"5", true},
		{"0", false},
		{"10", false},
	}
	for _, c := range cases {
		files := memFileLoader{
			"cmp.on": "X: x = " + c.x + "\ntest: 0 < x < 10\n",
		}
		result, diags := evaluate(t, files, "cmp.on")
		require.Empty(t, diags)
		mr, _ := result.ForPath(model.ModulePath("cmp.on"))
		require.Len(t, mr.Tests, 1)
		require.Equal(t, c.expect, mr.Tests[0].Passed, "x=%s", c.x)
	}
}

func TestEvaluateAllContinuousLimitsConvertMagnitude(t *testing.T) {
	files := memFileLoader{
		"limit.on": "Radius: r = 42 : cm\nMin: lo = 0 : m\nMax: hi = 1 : m\n" +
			"Radius2: r2 = r : cm (lo, hi)\n",
	}
	_, diags := evaluate(t, files, "limit.on")
	require.Empty(t, diags)
}

func TestEvaluateAllDiscreteLimitsRejectUnlistedValue(t *testing.T) {
	files := memFileLoader{
		"mode.on": "Mode: mode = 'off' ['on', 'standby']\n",
	}
	_, diags := evaluate(t, files, "mode.on")
	require.NotEmpty(t, diags)
	require.Equal(t, diagnostics.KindValueOutsideLimits, diags[0].Kind)
}

func TestEvaluateAllDebugTraceCapturesDependencies(t *testing.T) {
	files := memFileLoader{
		"trace.on": "X: x = 5\n** Y: y = x + 1\n",
	}
	result, diags := evaluate(t, files, "trace.on")
	require.Empty(t, diags)

	mr, _ := result.ForPath(model.ModulePath("trace.on"))
	y := mr.Parameters[model.ParameterName("y")]
	require.False(t, y.Failed)
	require.Contains(t, y.DebugDependencies, model.ParameterName("x"))
	n, _ := y.DebugDependencies[model.ParameterName("x")].AsNumber()
	require.Equal(t, 5.0, n.Min)
}

func TestEvaluateAllPropagatesFailureWithoutDuplicateDiagnostic(t *testing.T) {
	files := memFileLoader{
		"bad.on": "X: x = y + 1\nZ: z = x + 1\n",
	}
	// The undefined name is a resolve-time diagnostic, which the evaluate
	// helper rejects, so the pipeline is run here directly.
	reg, err := builtins.New()
	require.NoError(t, err)
	loaded, _, loadDiags := loader.New(files).LoadAll([]string{"bad.on"})
	require.Empty(t, loadDiags)
	collection, resolveDiags := resolver.ResolveAll(loaded, reg, nil)
	result, evalDiags := evaluator.EvaluateAll(collection, reg, nil)
	diags := append(resolveDiags, evalDiags...)

	undefinedCount := 0
	for _, d := range diags {
		if d.Kind == diagnostics.KindUndefinedParameter {
			undefinedCount++
		}
	}
	require.Equal(t, 1, undefinedCount, "expected exactly one undefined-parameter diagnostic, got %v", diags)

	mr, _ := result.ForPath(model.ModulePath("bad.on"))
	require.True(t, mr.Parameters[model.ParameterName("x")].Failed)
	require.True(t, mr.Parameters[model.ParameterName("z")].Failed)
}
