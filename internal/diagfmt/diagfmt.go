// Package diagfmt renders diagnostics.Diagnostic to the exact textual
// format spec.md §6 specifies, for `cmd/oneil`'s human-facing output.
//
// Grounded on the teacher's internal/evaluator/builtins_term.go for color
// support detection (NO_COLOR convention, github.com/mattn/go-isatty
// terminal detection, ANSI wrap helpers) — adapted from a runtime
// `lib/term` builtin surface down to the one thing a CLI diagnostic
// renderer needs: whether to emit color codes at all, and a total-count
// summary line via github.com/dustin/go-humanize, mirroring how the
// teacher's CLI summarizes a run.
package diagfmt

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/oneil-lang/oneil/internal/diagnostics"
)

// ColorMode controls whether Render emits ANSI escapes.
type ColorMode int

const (
	// ColorAuto emits color only when w looks like a terminal and
	// NO_COLOR is unset, matching the teacher's detectColorLevel.
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

func shouldColor(w io.Writer, mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

const (
	ansiRed   = "\033[31m"
	ansiBold  = "\033[1m"
	ansiReset = "\033[0m"
	ansiCyan  = "\033[36m"
)

func wrap(color bool, code, s string) string {
	if !color {
		return s
	}
	return code + s + ansiReset
}

// Render writes every diagnostic in diags to w in spec.md §6's textual
// format, one after another, followed by a one-line summary. mode
// controls ANSI color use; ColorAuto detects w's terminal-ness.
func Render(w io.Writer, diags []diagnostics.Diagnostic, mode ColorMode) {
	color := shouldColor(w, mode)
	for _, d := range diags {
		renderOne(w, d, color)
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, summary(diags))
}

func renderOne(w io.Writer, d diagnostics.Diagnostic, color bool) {
	fmt.Fprintf(w, "%s: %s\n", wrap(color, ansiRed+ansiBold, string(d.Kind)), d.Message)
	if d.Location != nil {
		fmt.Fprintf(w, " --> %s:%d:%d\n", d.Path, d.Location.Start.Line, d.Location.Start.Column)
		length := d.Location.End.Offset - d.Location.Start.Offset
		renderSnippet(w, d.Location.Start.Line, d.Location.Start.Column, length, d.LineSource, color)
	}
	for _, n := range d.Context {
		label := "note"
		if n.IsHelp {
			label = "help"
		}
		fmt.Fprintf(w, "  = %s: %s\n", label, n.Message)
	}
	for _, sn := range d.ContextWithSource {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s: %s\n", sn.Message, d.Message)
		fmt.Fprintf(w, " --> %s:%d:%d\n", sn.Path, sn.Span.Start.Line, sn.Span.Start.Column)
	}
}

func renderSnippet(w io.Writer, line, col, length int, source string, color bool) {
	lineNo := fmt.Sprintf("%d", line)
	pad := strings.Repeat(" ", len(lineNo))
	fmt.Fprintf(w, "%s |\n", pad)
	fmt.Fprintf(w, "%s | %s\n", lineNo, source)
	underline := strings.Repeat(" ", max(col-1, 0)) + strings.Repeat("^", max(length, 1))
	fmt.Fprintf(w, "%s | %s\n", pad, wrap(color, ansiRed, underline))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// summary renders a one-line, go-humanize-backed total count of
// diagnostics ("N diagnostic(s)"); it does not break the count down by
// kind. This matches the teacher's preference for humanized counts in
// CLI summaries.
func summary(diags []diagnostics.Diagnostic) string {
	if len(diags) == 0 {
		return "no diagnostics"
	}
	return fmt.Sprintf("%s diagnostic%s", humanize.Comma(int64(len(diags))), plural(len(diags)))
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
