package symbols_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oneil-lang/oneil/internal/builtins"
	"github.com/oneil-lang/oneil/internal/loader"
	"github.com/oneil-lang/oneil/internal/model"
	"github.com/oneil-lang/oneil/internal/resolver"
	"github.com/oneil-lang/oneil/internal/symbols"
)

type memFileLoader map[string]string

func (m memFileLoader) ReadFile(path string) (string, error) {
	src, ok := m[path]
	if !ok {
		return "", fmt.Errorf("file not found: %s", path)
	}
	return src, nil
}

func resolveFixture(t *testing.T, files memFileLoader, entry string) *model.Collection {
	t.Helper()
	reg, err := builtins.New()
	require.NoError(t, err)
	l := loader.New(files)
	loaded, _, diags := l.LoadAll([]string{entry})
	require.Empty(t, diags)
	col, resolveDiags := resolver.ResolveAll(loaded, reg, nil)
	require.Empty(t, resolveDiags)
	return col
}

func TestLookupResolvesParameterReferenceToItsDefinition(t *testing.T) {
	src := "Radius: r = 5 : cm\nArea: a = r * r\n"
	col := resolveFixture(t, memFileLoader{"circle.on": src}, "circle.on")

	// Offset of the second `r` on the Area line (the reference, not the def).
	areaLine := strings.Index(src, "a = r * r")
	refOffset := areaLine + len("a = r * ") // land inside the trailing `r`

	def, ok := symbols.Lookup(col, model.ModulePath("circle.on"), refOffset)
	require.True(t, ok)
	require.Equal(t, symbols.KindParameter, def.Kind)
	require.Equal(t, model.ModulePath("circle.on"), def.Path)

	nameOffset := strings.Index(src, "r = 5") // the `r` in `Radius: r = 5`
	require.Equal(t, nameOffset, def.Span.Start.Offset)
}

func TestLookupResolvesExternalReferenceAcrossModels(t *testing.T) {
	files := memFileLoader{
		"car.on":   "use wheel\n\nFrontWheelRadius: frw = wheel.r\n",
		"wheel.on": "Radius: r = 0.3 : m\n",
	}
	col := resolveFixture(t, files, "car.on")

	carSrc := files["car.on"]
	refOffset := strings.Index(carSrc, "wheel.r") + len("wheel.")

	def, ok := symbols.Lookup(col, model.ModulePath("car.on"), refOffset)
	require.True(t, ok)
	require.Equal(t, symbols.KindParameter, def.Kind)
	require.Equal(t, model.ModulePath("wheel.on"), def.Path)

	wheelSrc := files["wheel.on"]
	require.Equal(t, strings.Index(wheelSrc, "r = 0.3"), def.Span.Start.Offset)
}

func TestLookupResolvesSubmodelImportName(t *testing.T) {
	files := memFileLoader{
		"car.on":   "use wheel\n\nFrontWheelRadius: frw = wheel.r\n",
		"wheel.on": "Radius: r = 0.3 : m\n",
	}
	col := resolveFixture(t, files, "car.on")

	carSrc := files["car.on"]
	offset := strings.Index(carSrc, "wheel\n") // the `use wheel` name itself

	def, ok := symbols.Lookup(col, model.ModulePath("car.on"), offset)
	require.True(t, ok)
	require.Equal(t, symbols.KindSubmodel, def.Kind)
	require.Equal(t, model.ModulePath("wheel.on"), def.Path)
}

func TestLookupMissesOnUnrecognizedOffset(t *testing.T) {
	col := resolveFixture(t, memFileLoader{"circle.on": "Radius: r = 5 : cm\n"}, "circle.on")
	_, ok := symbols.Lookup(col, model.ModulePath("circle.on"), 0)
	require.False(t, ok) // offset 0 lands on the label text, which isn't a tracked symbol
}
