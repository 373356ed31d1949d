package docstore_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oneil-lang/oneil/internal/builtins"
	"github.com/oneil-lang/oneil/internal/docstore"
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

func TestOpenAndGetRoundTrip(t *testing.T) {
	s := docstore.New()
	s.Open("circle.on", "Radius: r = 5 : cm\n", 1)

	doc, ok := s.Get("circle.on")
	require.True(t, ok)
	require.Equal(t, 1, doc.Version)
	require.Equal(t, "Radius: r = 5 : cm\n", doc.Text)
}

func TestApplyChangeRejectsOlderVersion(t *testing.T) {
	s := docstore.New()
	s.Open("circle.on", "Radius: r = 5 : cm\n", 5)

	err := s.ApplyChange("circle.on", "Radius: r = 6 : cm\n", 4)
	require.Error(t, err)

	doc, _ := s.Get("circle.on")
	require.Equal(t, 5, doc.Version)
	require.Equal(t, "Radius: r = 5 : cm\n", doc.Text)
}

func TestApplyChangeAcceptsEqualOrNewerVersion(t *testing.T) {
	s := docstore.New()
	s.Open("circle.on", "Radius: r = 5 : cm\n", 1)

	require.NoError(t, s.ApplyChange("circle.on", "Radius: r = 5 : cm\n", 1))
	require.NoError(t, s.ApplyChange("circle.on", "Radius: r = 7 : cm\n", 2))

	doc, _ := s.Get("circle.on")
	require.Equal(t, 2, doc.Version)
	require.Equal(t, "Radius: r = 7 : cm\n", doc.Text)
}

func TestApplyChangeFailsWhenNotOpen(t *testing.T) {
	s := docstore.New()
	err := s.ApplyChange("missing.on", "x\n", 1)
	require.Error(t, err)
}

func TestCloseRemovesDocument(t *testing.T) {
	s := docstore.New()
	s.Open("circle.on", "Radius: r = 5 : cm\n", 1)
	s.Close("circle.on")

	_, ok := s.Get("circle.on")
	require.False(t, ok)
}

func TestConcurrentReadsDoNotBlock(t *testing.T) {
	s := docstore.New()
	s.Open("circle.on", "Radius: r = 5 : cm\n", 1)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := s.Get("circle.on")
			require.True(t, ok)
		}()
	}
	wg.Wait()
}

func TestLookupDefinitionResolvesParameterReference(t *testing.T) {
	src := "Radius: r = 5 : cm\nArea: a = r * r\n"
	col := resolveFixture(t, memFileLoader{"circle.on": src}, "circle.on")

	s := docstore.New()
	s.Open("circle.on", src, 1)

	areaLine := strings.Index(src, "a = r * r")
	refByteOffset := areaLine + len("a = r * ")
	refLine := strings.Count(src[:areaLine], "\n")
	refCol := refByteOffset - (strings.LastIndex(src[:refByteOffset], "\n") + 1)

	result, err := s.LookupDefinition(context.Background(), col, "circle.on", refLine, refCol)
	require.NoError(t, err)
	require.True(t, result.Found)
	require.Equal(t, symbols.KindParameter, result.Definition.Kind)
	require.NotEmpty(t, result.RequestID)
}

func TestLookupDefinitionFailsWhenDocumentNotOpen(t *testing.T) {
	col := resolveFixture(t, memFileLoader{"circle.on": "Radius: r = 5 : cm\n"}, "circle.on")

	s := docstore.New()
	_, err := s.LookupDefinition(context.Background(), col, "circle.on", 0, 0)
	require.Error(t, err)
}

func TestConcurrentLookupDefinitionCollapsesViaSingleflight(t *testing.T) {
	src := "Radius: r = 5 : cm\nArea: a = r * r\n"
	col := resolveFixture(t, memFileLoader{"circle.on": src}, "circle.on")

	s := docstore.New()
	s.Open("circle.on", src, 1)

	areaLine := strings.Index(src, "a = r * r")
	refByteOffset := areaLine + len("a = r * ")
	refLine := strings.Count(src[:areaLine], "\n")
	refCol := refByteOffset - (strings.LastIndex(src[:refByteOffset], "\n") + 1)

	var wg sync.WaitGroup
	results := make([]docstore.LookupResult, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			r, err := s.LookupDefinition(context.Background(), col, "circle.on", refLine, refCol)
			require.NoError(t, err)
			results[idx] = r
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		require.True(t, r.Found)
		require.Equal(t, results[0].RequestID, r.RequestID)
	}
}
