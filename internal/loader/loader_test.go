package loader

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oneil-lang/oneil/internal/diagnostics"
	"github.com/oneil-lang/oneil/internal/model"
)

// memFileLoader is an in-memory FileLoader for tests, mirroring the
// teacher's in-process fixture style in tests/fuzz (no real filesystem
// access needed to exercise the recursion/cache/cycle logic).
type memFileLoader map[string]string

func (m memFileLoader) ReadFile(path string) (string, error) {
	src, ok := m[path]
	if !ok {
		return "", &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}
	return src, nil
}

func TestLoadAllFollowsUseDeclarations(t *testing.T) {
	files := memFileLoader{
		"car.on":  "use wheel\n\nPrice: price = 1 + wheel.price\n",
		"wheel.on": "Price: price = 20\n",
	}
	l := New(files)
	loaded, top, diags := l.LoadAll([]string{"car.on"})

	require.Empty(t, diags)
	require.Len(t, top, 1)
	require.Len(t, loaded, 2)
	require.Contains(t, loaded, model.ModulePath("car.on"))
	require.Contains(t, loaded, model.ModulePath("wheel.on"))
}

func TestLoadAllCachesSharedDependency(t *testing.T) {
	files := memFileLoader{
		"a.on":    "use shared\n\nX: x = shared.v\n",
		"b.on":    "use shared\n\nY: y = shared.v\n",
		"shared.on": "V: v = 1\n",
	}
	l := New(files)
	loaded, _, diags := l.LoadAll([]string{"a.on", "b.on"})

	require.Empty(t, diags)
	require.Len(t, loaded, 3)
}

func TestLoadAllReportsCircularDependency(t *testing.T) {
	files := memFileLoader{
		"a.on": "use b\n\nX: x = b.y\n",
		"b.on": "use a\n\nY: y = a.x\n",
	}
	l := New(files)
	_, _, diags := l.LoadAll([]string{"a.on"})

	require.NotEmpty(t, diags)
	found := false
	for _, d := range diags {
		if d.Kind == diagnostics.KindCircularDependency {
			found = true
		}
	}
	require.True(t, found, "expected a circular-dependency diagnostic, got %v", diags)
}

func TestLoadAllReportsMissingFile(t *testing.T) {
	l := New(memFileLoader{})
	_, top, diags := l.LoadAll([]string{"missing.on"})

	require.Empty(t, top)
	require.Len(t, diags, 1)
	require.Equal(t, diagnostics.KindFileMissing, diags[0].Kind)
}
