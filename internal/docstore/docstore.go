// Package docstore implements the concurrent editor document store
// spec.md §5 describes: a reader/writer-lock-protected map from document
// URI to (text, version, line-offset cache). Reads never block other
// reads; writes (open, change, close) are serialized against each other
// and against reads. Applying a change requires its reported version to
// be >= the stored version.
//
// Grounded directly on spec.md §5's own wording (no single pack example
// repo has this exact shape — the teacher's cmd/lsp/handler_document.go
// guards its document map with a plain sync.RWMutex and no version
// check, which this package generalizes to spec.md's stricter
// monotonic-version requirement). golang.org/x/sync/singleflight
// collapses duplicate concurrent lookups for the same (URI, version,
// offset) key — common when an editor fires several near-simultaneous
// hover/definition requests right after a keystroke — and
// github.com/google/uuid stamps each resolved request with a
// correlation id for logs.
package docstore

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/oneil-lang/oneil/internal/model"
	"github.com/oneil-lang/oneil/internal/span"
	"github.com/oneil-lang/oneil/internal/symbols"
)

// Document is one open editor document's current state.
type Document struct {
	URI     string
	Text    string
	Version int
	Lines   *span.SourceMap
}

// Store is the RWMutex-guarded URI -> Document map spec.md §5 specifies.
type Store struct {
	mu    sync.RWMutex
	docs  map[string]*Document
	group singleflight.Group
}

// New returns an empty Store.
func New() *Store {
	return &Store{docs: make(map[string]*Document)}
}

// Open records a newly opened document, replacing any prior state for
// the same URI unconditionally (an `open` always wins, matching LSP's
// textDocument/didOpen semantics).
func (s *Store) Open(uri, text string, version int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[uri] = &Document{URI: uri, Text: text, Version: version, Lines: span.NewSourceMap(uri, text)}
}

// ApplyChange updates an already-open document's text, rejecting a
// change whose version regresses behind what's stored (spec.md §5:
// "strictly-increasing is required only across edits, not within a
// batch of changes for one version" — so equal versions are accepted,
// only a strictly older one is rejected).
func (s *Store) ApplyChange(uri, text string, version int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[uri]
	if !ok {
		return fmt.Errorf("docstore: %s is not open", uri)
	}
	if version < doc.Version {
		return fmt.Errorf("docstore: %s change version %d is older than stored version %d", uri, version, doc.Version)
	}
	s.docs[uri] = &Document{URI: uri, Text: text, Version: version, Lines: span.NewSourceMap(uri, text)}
	return nil
}

// Close drops a document from the store.
func (s *Store) Close(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, uri)
}

// Get returns the current state of an open document. The returned
// *Document must be treated as read-only by the caller; Store never
// hands out the same pointer after a subsequent Open/ApplyChange.
func (s *Store) Get(uri string) (*Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[uri]
	return doc, ok
}

// LookupResult is one symbol-at-position answer, stamped with a request
// id for log correlation.
type LookupResult struct {
	RequestID  string
	Definition symbols.Definition
	Found      bool
}

// LookupDefinition resolves the symbol at a zero-based (line, UTF-16
// character) position in uri against col, converting to a byte offset
// via the document's own line-offset cache (spec.md §6's "UTF-16
// character offsets are converted to byte offsets via the document's
// line-offset cache"). Duplicate concurrent calls for the same (uri,
// version, offset) collapse into a single internal/symbols.Lookup call.
func (s *Store) LookupDefinition(ctx context.Context, col *model.Collection, uri string, line, utf16Char int) (LookupResult, error) {
	doc, ok := s.Get(uri)
	if !ok {
		return LookupResult{}, fmt.Errorf("docstore: %s is not open", uri)
	}
	offset := doc.Lines.OffsetForUTF16(line, utf16Char)
	key := fmt.Sprintf("%s@%d:%d", uri, doc.Version, offset)

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		path, perr := model.NewModulePath(pathForURI(uri))
		if perr != nil {
			return nil, fmt.Errorf("docstore: %w", perr)
		}
		def, found := symbols.Lookup(col, path, offset)
		return LookupResult{RequestID: uuid.NewString(), Definition: def, Found: found}, nil
	})
	if err != nil {
		return LookupResult{}, err
	}
	return v.(LookupResult), nil
}

// pathForURI strips the file:// scheme an LSP client sends, matching the
// teacher's own handler_document.go's uriToPath.
func pathForURI(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}
