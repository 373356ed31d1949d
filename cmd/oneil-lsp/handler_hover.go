package main

import (
	"context"
	"fmt"

	"github.com/oneil-lang/oneil/internal/model"
	"github.com/oneil-lang/oneil/internal/span"
	"github.com/oneil-lang/oneil/internal/symbols"
)

// handleHover resolves the symbol under the cursor the same way
// textDocument/definition does, then renders its evaluated value (for a
// parameter) as Markdown, matching the teacher's own hover surface of
// "show what the reference actually resolved to".
func (s *LanguageServer) handleHover(id interface{}, params HoverParams) error {
	uri := params.TextDocument.URI

	s.analysesMu.RLock()
	a := s.analyses[uri]
	s.analysesMu.RUnlock()

	if a == nil || a.Collection == nil {
		return s.sendResponse(ResponseMessage{ID: id, Result: nil})
	}

	result, err := s.docs.LookupDefinition(context.Background(), a.Collection, uri, params.Position.Line, params.Position.Character)
	if err != nil || !result.Found {
		return s.sendResponse(ResponseMessage{ID: id, Result: nil})
	}

	value := hoverText(a, result.Definition)
	if value == "" {
		return s.sendResponse(ResponseMessage{ID: id, Result: nil})
	}

	return s.sendResponse(ResponseMessage{
		ID:     id,
		Result: Hover{Contents: MarkupContent{Kind: "markdown", Value: value}},
	})
}

func hoverText(a *analysis, def symbols.Definition) string {
	switch def.Kind {
	case symbols.KindParameter:
		return parameterHoverText(a, def.Path, def.Span)
	case symbols.KindSubmodel:
		return fmt.Sprintf("submodel `%s`", def.Path)
	case symbols.KindReference:
		return fmt.Sprintf("reference `%s`", def.Path)
	default:
		return ""
	}
}

// parameterHoverText finds the parameter declared at nameSpan within
// path's model and renders its evaluated value. The Definition carries a
// span rather than a name, so the name is recovered by matching the
// declaration's own NameSpan — the same span Lookup used to build the
// Definition in the first place.
func parameterHoverText(a *analysis, path model.ModulePath, nameSpan span.Span) string {
	m, ok := a.Collection.Get(path)
	if !ok {
		return ""
	}
	var name model.ParameterName
	found := false
	for n, p := range m.Parameters {
		if p.Decl.NameSpan == nameSpan {
			name, found = n, true
			break
		}
	}
	if !found || a.Eval == nil {
		return ""
	}
	mr, ok := a.Eval.ForPath(path)
	if !ok {
		return ""
	}
	pr, ok := mr.Parameters[name]
	if !ok || pr.Failed {
		return fmt.Sprintf("`%s`", name)
	}
	return fmt.Sprintf("`%s` = %s", name, pr.Value.String())
}
