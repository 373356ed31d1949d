package oneil_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oneil-lang/oneil/internal/builtins"
	"github.com/oneil-lang/oneil/internal/diagnostics"
	"github.com/oneil-lang/oneil/internal/model"
	"github.com/oneil-lang/oneil/pkg/oneil"
)

// memFileLoader is an in-memory loader.FileLoader, mirroring
// internal/loader's and internal/evaluator's own test fixture style.
type memFileLoader map[string]string

func (m memFileLoader) ReadFile(path string) (string, error) {
	src, ok := m[path]
	if !ok {
		return "", fmt.Errorf("file not found: %s", path)
	}
	return src, nil
}

func TestRunSingleFileHappyPath(t *testing.T) {
	reg, err := builtins.New()
	require.NoError(t, err)

	files := memFileLoader{
		"circle.on": "Radius: r = 5 : cm\nArea: a = pi * r ^ 2 : cm^2\n",
	}
	result, diags := oneil.Run([]string{"circle.on"}, oneil.Options{Files: files, Builtins: reg})
	require.Empty(t, diags)
	require.Equal(t, []model.ModulePath{model.ModulePath("circle.on")}, result.Top)

	mr, ok := result.ForPath(model.ModulePath("circle.on"))
	require.True(t, ok)
	a, ok := mr.Parameters[model.ParameterName("a")]
	require.True(t, ok)
	require.False(t, a.Failed)
}

func TestRunSubmodelComposition(t *testing.T) {
	reg, err := builtins.New()
	require.NoError(t, err)

	files := memFileLoader{
		"car.on":   "use wheel\n\nPrice: price = 100 + wheel.price\n",
		"wheel.on": "Price: price = 20\n",
	}
	result, diags := oneil.Run([]string{"car.on"}, oneil.Options{Files: files, Builtins: reg})
	require.Empty(t, diags)

	// wheel.on is only reached transitively via `use`, so it's not a top path.
	require.Equal(t, []model.ModulePath{model.ModulePath("car.on")}, result.Top)

	mr, _ := result.ForPath(model.ModulePath("car.on"))
	price := mr.Parameters[model.ParameterName("price")]
	require.False(t, price.Failed)
	n, _ := price.Value.AsNumber()
	require.Equal(t, 120.0, n.Min)
}

func TestRunCollectsDiagnosticsAcrossAllStages(t *testing.T) {
	reg, err := builtins.New()
	require.NoError(t, err)

	// bad.on has an undefined-parameter resolve-time problem; missing.on
	// never exists, an io-phase problem. Both diagnostics should surface
	// from one Run call even though bad.on's failure happens downstream
	// of missing.on's.
	files := memFileLoader{
		"bad.on": "X: x = y + 1\n",
	}
	result, diags := oneil.Run([]string{"bad.on", "missing.on"}, oneil.Options{Files: files, Builtins: reg})

	var sawIO, sawUndefined bool
	for _, d := range diags {
		switch d.Phase {
		case diagnostics.PhaseIO:
			sawIO = true
		case diagnostics.PhaseResolve:
			if d.Kind == diagnostics.KindUndefinedParameter {
				sawUndefined = true
			}
		}
	}
	require.True(t, sawIO, "expected an io-phase diagnostic for the missing file, got %v", diags)
	require.True(t, sawUndefined, "expected an undefined-parameter diagnostic, got %v", diags)

	// Only the file that actually loaded becomes a top path.
	require.Equal(t, []model.ModulePath{model.ModulePath("bad.on")}, result.Top)
}
