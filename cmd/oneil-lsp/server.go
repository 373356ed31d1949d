package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/oneil-lang/oneil/internal/builtins"
	"github.com/oneil-lang/oneil/internal/docstore"
	"github.com/oneil-lang/oneil/internal/pythonbridge"
)

// LanguageServer reads Content-Length-framed JSON-RPC messages from a
// reader and writes responses/notifications to writer, grounded on the
// teacher's cmd/lsp/server.go frame handling.
type LanguageServer struct {
	docs     *docstore.Store
	builtins builtins.Provider
	python   *pythonbridge.Bridge

	writer  io.Writer
	writeMu sync.Mutex

	// analyses caches the last pipeline run per URI so
	// textDocument/definition and textDocument/hover don't need to
	// re-run the pipeline on every request.
	analysesMu sync.RWMutex
	analyses   map[string]*analysis
}

func NewLanguageServer(writer io.Writer, docs *docstore.Store, reg builtins.Provider, python *pythonbridge.Bridge) *LanguageServer {
	return &LanguageServer{
		docs:     docs,
		builtins: reg,
		python:   python,
		writer:   writer,
		analyses: make(map[string]*analysis),
	}
}

func (s *LanguageServer) Start(stdin io.Reader) {
	reader := bufio.NewReader(stdin)

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				log.Printf("error reading header: %v", err)
			}
			return
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "Content-Length: ") {
			continue
		}

		n, err := strconv.Atoi(strings.TrimPrefix(line, "Content-Length: "))
		if err != nil {
			log.Printf("error parsing Content-Length: %v", err)
			continue
		}

		for {
			sep, err := reader.ReadString('\n')
			if err != nil {
				log.Printf("error reading header separator: %v", err)
				return
			}
			if strings.TrimRight(sep, "\r\n") == "" {
				break
			}
		}

		content := make([]byte, n)
		if _, err := io.ReadFull(reader, content); err != nil {
			log.Printf("error reading body: %v", err)
			return
		}

		if err := s.handleMessage(content); err != nil {
			log.Printf("error handling message: %v", err)
		}
	}
}

func (s *LanguageServer) handleMessage(content []byte) error {
	var base struct {
		ID     interface{} `json:"id,omitempty"`
		Method string      `json:"method"`
	}
	if err := json.Unmarshal(content, &base); err != nil {
		return fmt.Errorf("unmarshal message: %w", err)
	}

	if base.ID != nil {
		return s.handleRequest(base.ID, base.Method, content)
	}
	return s.handleNotification(base.Method, content)
}

func (s *LanguageServer) handleRequest(id interface{}, method string, content []byte) error {
	switch method {
	case "initialize":
		var params InitializeParams
		if err := unmarshalParams(content, &params); err != nil {
			return err
		}
		return s.handleInitialize(id, params)

	case "shutdown":
		return s.sendResponse(ResponseMessage{Jsonrpc: "2.0", ID: id, Result: nil})

	case "textDocument/definition":
		var params DefinitionParams
		if err := unmarshalParams(content, &params); err != nil {
			return err
		}
		return s.handleDefinition(id, params)

	case "textDocument/hover":
		var params HoverParams
		if err := unmarshalParams(content, &params); err != nil {
			return err
		}
		return s.handleHover(id, params)

	default:
		return s.sendResponse(ResponseMessage{
			Jsonrpc: "2.0",
			ID:      id,
			Error:   &Error{Code: -32601, Message: fmt.Sprintf("method not found: %s", method)},
		})
	}
}

func (s *LanguageServer) handleNotification(method string, content []byte) error {
	switch method {
	case "initialized":
		return nil

	case "textDocument/didOpen":
		var params DidOpenTextDocumentParams
		if err := unmarshalParams(content, &params); err != nil {
			return err
		}
		return s.handleDidOpen(params)

	case "textDocument/didChange":
		var params DidChangeTextDocumentParams
		if err := unmarshalParams(content, &params); err != nil {
			return err
		}
		return s.handleDidChange(params)

	case "textDocument/didClose":
		var params DidCloseTextDocumentParams
		if err := unmarshalParams(content, &params); err != nil {
			return err
		}
		return s.handleDidClose(params)

	case "exit":
		os.Exit(0)
		return nil

	default:
		return nil
	}
}

func unmarshalParams(content []byte, dst interface{}) error {
	var wrapper struct {
		Params json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal(content, &wrapper); err != nil {
		return err
	}
	if len(wrapper.Params) == 0 {
		return nil
	}
	return json.Unmarshal(wrapper.Params, dst)
}

func (s *LanguageServer) sendResponse(response ResponseMessage) error {
	response.Jsonrpc = "2.0"
	return s.sendMessage(response)
}

func (s *LanguageServer) sendNotification(notification NotificationMessage) error {
	notification.Jsonrpc = "2.0"
	return s.sendMessage(notification)
}

func (s *LanguageServer) sendMessage(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err = fmt.Fprintf(s.writer, "Content-Length: %d\r\n\r\n%s", len(data), data)
	return err
}

func uriToPath(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}
