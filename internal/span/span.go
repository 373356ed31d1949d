// Package span implements source-location and byte-span tracking shared by
// every later stage of the pipeline: tokens, syntax nodes, resolved
// entities, and diagnostics all carry a Span back to the original source.
package span

import "fmt"

// Location is a single point in a source file: a byte offset plus its
// 1-indexed line and column, matching spec.md's (offset, line, column)
// triple.
type Location struct {
	Offset int
	Line   int
	Column int
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// Less orders two locations by byte offset.
func (l Location) Less(other Location) bool {
	return l.Offset < other.Offset
}

// Span covers the half-open byte range [Start.Offset, End.Offset).
//
// Multi-line spans are forbidden for error highlighting (spec.md §3); a
// Span used as a diagnostic's primary location is expected to have
// Start.Line == End.Line. Spans used purely for span-arithmetic (e.g. a
// parameter's full declaration) may cross lines.
type Span struct {
	Start Location
	End   Location
}

// Zero is the empty, unset span; nodes synthesized without real source
// positions (e.g. built-ins) carry this.
var Zero = Span{}

// Length returns the byte length of the span.
func (s Span) Length() int {
	return s.End.Offset - s.Start.Offset
}

// IsZero reports whether the span was never assigned a real position.
func (s Span) IsZero() bool {
	return s == Zero
}

// Contains reports whether offset falls within [Start, End).
func (s Span) Contains(offset int) bool {
	return offset >= s.Start.Offset && offset < s.End.Offset
}

// ContainsSpan reports whether s fully encloses other.
func (s Span) ContainsSpan(other Span) bool {
	return s.Start.Offset <= other.Start.Offset && other.End.Offset <= s.End.Offset
}

// SingleLine reports whether the span starts and ends on the same line.
func (s Span) SingleLine() bool {
	return s.Start.Line == s.End.Line
}

// Union returns the smallest span covering both s and other. Both spans
// must come from the same source; the result may span multiple lines
// even if the inputs are each single-line.
func Union(a, b Span) Span {
	if a.IsZero() {
		return b
	}
	if b.IsZero() {
		return a
	}
	start := a.Start
	if b.Start.Offset < start.Offset {
		start = b.Start
	}
	end := a.End
	if b.End.Offset > end.Offset {
		end = b.End
	}
	return Span{Start: start, End: end}
}

func (s Span) String() string {
	return fmt.Sprintf("%s-%s", s.Start, s.End)
}
