package main

// handleInitialize negotiates capabilities. Oneil resolves every `use`
// path relative to the importing file rather than a workspace root, so
// unlike the teacher's handler_lifecycle.go this has no workspace root
// to record from params.RootURI/RootPath.
func (s *LanguageServer) handleInitialize(id interface{}, params InitializeParams) error {
	result := InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync:   1, // full document sync
			HoverProvider:      true,
			DefinitionProvider: true,
		},
	}
	return s.sendResponse(ResponseMessage{ID: id, Result: result})
}
