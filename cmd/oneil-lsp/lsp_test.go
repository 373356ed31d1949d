package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oneil-lang/oneil/internal/builtins"
	"github.com/oneil-lang/oneil/internal/docstore"
	"github.com/oneil-lang/oneil/internal/pythonbridge"
)

func parseLSPOutput(t *testing.T, output string) string {
	t.Helper()
	parts := strings.SplitN(output, "\r\n\r\n", 2)
	require.Len(t, parts, 2, "malformed LSP frame: %q", output)
	return parts[1]
}

type noFiles struct{}

func (noFiles) ReadFile(path string) ([]byte, error) {
	return nil, errors.New("no sidecar in test fixture")
}

func setupServer(t *testing.T, uri, code string) (*LanguageServer, *bytes.Buffer) {
	t.Helper()
	reg, err := builtins.New()
	require.NoError(t, err)

	buf := new(bytes.Buffer)
	server := NewLanguageServer(buf, docstore.New(), reg, pythonbridge.New(noFiles{}))

	require.NoError(t, server.handleDidOpen(DidOpenTextDocumentParams{
		TextDocument: TextDocumentItem{URI: uri, LanguageID: "oneil", Version: 1, Text: code},
	}))
	buf.Reset()
	return server, buf
}

func decodeResponse(t *testing.T, buf *bytes.Buffer) ResponseMessage {
	t.Helper()
	body := parseLSPOutput(t, buf.String())
	var resp ResponseMessage
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	return resp
}

func TestHandleInitializeReturnsServerCapabilities(t *testing.T) {
	server, buf := setupServer(t, "file:///circle.on", "Radius: r = 5 : cm\n")

	require.NoError(t, server.handleInitialize(1, InitializeParams{}))
	resp := decodeResponse(t, buf)
	require.Nil(t, resp.Error)

	data, _ := json.Marshal(resp.Result)
	require.Contains(t, string(data), `"definitionProvider":true`)
}

func TestHandleDidOpenPublishesEmptyDiagnosticsForValidFile(t *testing.T) {
	buf := new(bytes.Buffer)
	reg, err := builtins.New()
	require.NoError(t, err)
	server := NewLanguageServer(buf, docstore.New(), reg, pythonbridge.New(noFiles{}))

	require.NoError(t, server.handleDidOpen(DidOpenTextDocumentParams{
		TextDocument: TextDocumentItem{URI: "file:///circle.on", Version: 1, Text: "Radius: r = 5 : cm\n"},
	}))

	body := parseLSPOutput(t, buf.String())
	var note NotificationMessage
	require.NoError(t, json.Unmarshal([]byte(body), &note))
	require.Equal(t, "textDocument/publishDiagnostics", note.Method)

	var published struct {
		Params PublishDiagnosticsParams `json:"params"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &published))
	require.Empty(t, published.Params.Diagnostics)
}

func TestHandleDefinitionResolvesParameterReference(t *testing.T) {
	src := "Radius: r = 5 : cm\nArea: a = r * r\n"
	server, buf := setupServer(t, "file:///circle.on", src)

	areaLine := strings.Index(src, "a = r * r")
	refByteOffset := areaLine + len("a = r * ")
	refLine := strings.Count(src[:areaLine], "\n")
	refCol := refByteOffset - (strings.LastIndex(src[:refByteOffset], "\n") + 1)

	require.NoError(t, server.handleDefinition(2, DefinitionParams{
		TextDocument: TextDocumentIdentifier{URI: "file:///circle.on"},
		Position:     Position{Line: refLine, Character: refCol},
	}))

	resp := decodeResponse(t, buf)
	require.Nil(t, resp.Error)

	data, _ := json.Marshal(resp.Result)
	require.Contains(t, string(data), "circle.on")
}

func TestHandleDefinitionReturnsNilForUnanalyzedDocument(t *testing.T) {
	buf := new(bytes.Buffer)
	reg, err := builtins.New()
	require.NoError(t, err)
	server := NewLanguageServer(buf, docstore.New(), reg, pythonbridge.New(noFiles{}))

	require.NoError(t, server.handleDefinition(3, DefinitionParams{
		TextDocument: TextDocumentIdentifier{URI: "file:///missing.on"},
		Position:     Position{Line: 0, Character: 0},
	}))

	resp := decodeResponse(t, buf)
	require.Nil(t, resp.Result)
}

func TestHandleDidCloseClearsCachedAnalysis(t *testing.T) {
	server, buf := setupServer(t, "file:///circle.on", "Radius: r = 5 : cm\n")

	require.NoError(t, server.handleDidClose(DidCloseTextDocumentParams{
		TextDocument: TextDocumentIdentifier{URI: "file:///circle.on"},
	}))
	buf.Reset()

	require.NoError(t, server.handleDefinition(4, DefinitionParams{
		TextDocument: TextDocumentIdentifier{URI: "file:///circle.on"},
		Position:     Position{Line: 0, Character: 8},
	}))
	resp := decodeResponse(t, buf)
	require.Nil(t, resp.Result)
}
