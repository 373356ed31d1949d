package main

import (
	"fmt"

	"github.com/oneil-lang/oneil/internal/diagnostics"
	"github.com/oneil-lang/oneil/internal/evaluator"
	"github.com/oneil-lang/oneil/internal/loader"
	"github.com/oneil-lang/oneil/internal/model"
	"github.com/oneil-lang/oneil/pkg/oneil"
)

// analysis is one document's cached pipeline output.
type analysis struct {
	Collection *model.Collection
	Eval       *evaluator.Result
}

// openDocOrOSLoader serves an open document's own text straight out of
// the store (so edits not yet saved to disk are seen) and falls back to
// the filesystem for every sibling `use`/`import` path, mirroring the
// teacher's handleDidOpen/handleDidChange re-analysis on every edit but
// generalized to Oneil's multi-file `use` graph instead of funxy's
// single-file analysis.
type openDocOrOSLoader struct {
	server *LanguageServer
}

func (s *LanguageServer) fileLoaderFor() loader.FileLoader {
	return openDocOrOSLoader{server: s}
}

func (l openDocOrOSLoader) ReadFile(path string) (string, error) {
	if doc, ok := l.server.docs.Get("file://" + path); ok {
		return doc.Text, nil
	}
	return loader.OSFileLoader{}.ReadFile(path)
}

func (s *LanguageServer) handleDidOpen(params DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.docs.Open(uri, params.TextDocument.Text, params.TextDocument.Version)
	return s.analyzeAndPublish(uri)
}

func (s *LanguageServer) handleDidChange(params DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	uri := params.TextDocument.URI
	text := params.ContentChanges[len(params.ContentChanges)-1].Text
	if err := s.docs.ApplyChange(uri, text, params.TextDocument.Version); err != nil {
		return fmt.Errorf("applying change to %s: %w", uri, err)
	}
	return s.analyzeAndPublish(uri)
}

func (s *LanguageServer) handleDidClose(params DidCloseTextDocumentParams) error {
	s.docs.Close(params.TextDocument.URI)

	s.analysesMu.Lock()
	delete(s.analyses, params.TextDocument.URI)
	s.analysesMu.Unlock()

	return s.sendNotification(NotificationMessage{
		Method: "textDocument/publishDiagnostics",
		Params: PublishDiagnosticsParams{URI: params.TextDocument.URI, Diagnostics: nil},
	})
}

// analyzeAndPublish re-runs the full load/resolve/evaluate pipeline for
// uri, caches the resolved model.Collection for later definition/hover
// lookups, and publishes its diagnostics.
func (s *LanguageServer) analyzeAndPublish(uri string) error {
	entry := uriToPath(uri)

	opts := oneil.Options{Files: s.fileLoaderFor(), Builtins: s.builtins, Python: s.python}
	result, diags := oneil.Run([]string{entry}, opts)

	a := &analysis{}
	if result != nil {
		a.Collection = result.Collection
		a.Eval = result.Result
	}
	s.analysesMu.Lock()
	s.analyses[uri] = a
	s.analysesMu.Unlock()

	return s.publishDiagnostics(uri, entry, diags)
}

func (s *LanguageServer) publishDiagnostics(uri, path string, diags []diagnostics.Diagnostic) error {
	lspDiags := make([]Diagnostic, 0, len(diags))
	for _, d := range diags {
		if d.Path != path {
			continue
		}
		lspDiags = append(lspDiags, toLSPDiagnostic(d))
	}
	return s.sendNotification(NotificationMessage{
		Method: "textDocument/publishDiagnostics",
		Params: PublishDiagnosticsParams{URI: uri, Diagnostics: lspDiags},
	})
}

func toLSPDiagnostic(d diagnostics.Diagnostic) Diagnostic {
	r := Range{}
	if d.Location != nil {
		r = Range{
			Start: Position{Line: d.Location.Start.Line - 1, Character: d.Location.Start.Column - 1},
			End:   Position{Line: d.Location.End.Line - 1, Character: d.Location.End.Column - 1},
		}
	}
	return Diagnostic{
		Range:    r,
		Severity: SeverityError,
		Code:     string(d.Kind),
		Message:  d.Message,
		Source:   "oneil",
	}
}
