package main

import "context"

func (s *LanguageServer) handleDefinition(id interface{}, params DefinitionParams) error {
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

	def := result.Definition
	defURI := "file://" + def.Path.String()

	// A submodel/reference import name resolves to its target file
	// rather than a precise span within it; point at the file's start.
	location := Location{
		URI: defURI,
		Range: Range{
			Start: Position{Line: zeroFloor(def.Span.Start.Line - 1), Character: zeroFloor(def.Span.Start.Column - 1)},
			End:   Position{Line: zeroFloor(def.Span.End.Line - 1), Character: zeroFloor(def.Span.End.Column - 1)},
		},
	}
	return s.sendResponse(ResponseMessage{ID: id, Result: location})
}

func zeroFloor(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
