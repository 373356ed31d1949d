package diagfmt_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oneil-lang/oneil/internal/diagfmt"
	"github.com/oneil-lang/oneil/internal/diagnostics"
	"github.com/oneil-lang/oneil/internal/span"
)

func TestRenderIncludesLocationAndUnderline(t *testing.T) {
	sp := span.Span{
		Start: span.Location{Offset: 4, Line: 1, Column: 5},
		End:   span.Location{Offset: 7, Line: 1, Column: 8},
	}
	diags := []diagnostics.Diagnostic{
		{
			Path:       "m.on",
			Phase:      diagnostics.PhaseEvaluate,
			Kind:       diagnostics.KindUnitMismatch,
			Message:    "cannot add m and s",
			Location:   &sp,
			LineSource: "x = a + b",
			Context:    []diagnostics.Note{{IsHelp: false, Message: "left has unit m"}},
		},
	}

	var buf bytes.Buffer
	diagfmt.Render(&buf, diags, diagfmt.ColorNever)
	out := buf.String()

	require.Contains(t, out, "unit-mismatch: cannot add m and s")
	require.Contains(t, out, "--> m.on:1:5")
	require.Contains(t, out, "x = a + b")
	require.Contains(t, out, "= note: left has unit m")
	require.Contains(t, out, "1 diagnostic")
}

func TestRenderNoDiagnosticsSummary(t *testing.T) {
	var buf bytes.Buffer
	diagfmt.Render(&buf, nil, diagfmt.ColorNever)
	require.Contains(t, buf.String(), "no diagnostics")
}

func TestRenderNeverEmitsColorCodes(t *testing.T) {
	sp := span.Span{Start: span.Location{Offset: 0, Line: 1, Column: 1}, End: span.Location{Offset: 1, Line: 1, Column: 2}}
	diags := []diagnostics.Diagnostic{
		{Path: "m.on", Kind: diagnostics.KindUndefinedParameter, Message: "undefined", Location: &sp, LineSource: "x"},
	}
	var buf bytes.Buffer
	diagfmt.Render(&buf, diags, diagfmt.ColorNever)
	require.NotContains(t, buf.String(), "\033[")
}
