package span

import "sort"

// SourceMap maps byte offsets to (line, column) within one source file
// and back, amortizing the line-break scan to a single pass.
//
// Grounded on the line/column bookkeeping the teacher's lexer keeps inline
// (internal/lexer/lexer.go's l.line/l.column fields, advanced character by
// character); SourceMap instead precomputes line starts once so any later
// stage (parser error recovery, the symbol-at-offset resolver, the LSP
// UTF-16 offset translation) can go from an arbitrary offset to a Location
// without re-scanning the file.
type SourceMap struct {
	path        string
	lineStarts  []int // byte offset of the first byte of each line; lineStarts[0] == 0
	sourceLen   int
	sourceLines []string
}

// NewSourceMap builds a SourceMap for the given source text.
func NewSourceMap(path, source string) *SourceMap {
	sm := &SourceMap{path: path, sourceLen: len(source), lineStarts: []int{0}}
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			sm.lineStarts = append(sm.lineStarts, i+1)
		}
	}
	sm.sourceLines = splitLines(source)
	return sm
}

func splitLines(source string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			end := i
			if end > start && source[end-1] == '\r' {
				end--
			}
			lines = append(lines, source[start:end])
			start = i + 1
		}
	}
	lines = append(lines, source[start:])
	return lines
}

// Path returns the file path this map was built for.
func (sm *SourceMap) Path() string { return sm.path }

// Locate converts a byte offset into a Location. Offsets past the end of
// the source clamp to the final position.
func (sm *SourceMap) Locate(offset int) Location {
	if offset < 0 {
		offset = 0
	}
	if offset > sm.sourceLen {
		offset = sm.sourceLen
	}
	// lineStarts is sorted; find the last line start <= offset.
	i := sort.Search(len(sm.lineStarts), func(i int) bool {
		return sm.lineStarts[i] > offset
	})
	line := i // 1-indexed since lineStarts[0] corresponds to line 1
	lineStart := sm.lineStarts[i-1]
	return Location{Offset: offset, Line: line, Column: offset - lineStart + 1}
}

// Span builds a Span from a pair of byte offsets.
func (sm *SourceMap) Span(start, end int) Span {
	return Span{Start: sm.Locate(start), End: sm.Locate(end)}
}

// LineSource returns the raw text of the given 1-indexed line, used to
// render the underline context in a diagnostic.
func (sm *SourceMap) LineSource(line int) string {
	if line < 1 || line > len(sm.sourceLines) {
		return ""
	}
	return sm.sourceLines[line-1]
}

// LineCount returns the number of lines in the source.
func (sm *SourceMap) LineCount() int {
	return len(sm.sourceLines)
}

// OffsetForUTF16 converts a zero-based (line, UTF-16 character) position,
// as used by the Language Server Protocol, to a byte offset. This is the
// one piece of §6's "UTF-16 character offsets are converted to byte
// offsets via the document's line-offset cache" that lives in the core
// source map rather than in cmd/oneil-lsp, since it is pure span
// arithmetic with no transport dependency.
func (sm *SourceMap) OffsetForUTF16(line, utf16Char int) int {
	if line < 0 || line >= len(sm.sourceLines) {
		return sm.sourceLen
	}
	lineText := sm.sourceLines[line]
	byteOff := sm.lineStarts[line]
	units := 0
	for _, r := range lineText {
		if units >= utf16Char {
			break
		}
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
		byteOff += runeLen(r)
	}
	return byteOff
}

func runeLen(r rune) int {
	switch {
	case r < 0x80:
		return 1
	case r < 0x800:
		return 2
	case r < 0x10000:
		return 3
	default:
		return 4
	}
}
