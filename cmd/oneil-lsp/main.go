// Command oneil-lsp is the boundary-only Language Server Protocol
// front end spec.md §5/§6 describe: it reads JSON-RPC messages over
// stdin, tracks open documents in internal/docstore, re-runs
// pkg/oneil.Run on every change, publishes diagnostics, and answers
// textDocument/definition via internal/symbols.
//
// Grounded on the teacher's cmd/lsp: stdlib log redirected to stderr
// (stdout carries the protocol), one LanguageServer struct reading a
// Content-Length-framed stream.
package main

import (
	"log"
	"os"

	"github.com/oneil-lang/oneil/internal/builtins"
	"github.com/oneil-lang/oneil/internal/docstore"
	"github.com/oneil-lang/oneil/internal/pythonbridge"
)

func main() {
	log.SetFlags(0)
	log.SetOutput(os.Stderr)

	reg, err := builtins.New()
	if err != nil {
		log.Fatalf("loading builtins: %v", err)
	}

	server := NewLanguageServer(os.Stdout, docstore.New(), reg, pythonbridge.New(pythonbridge.OSFileReader{}))
	server.Start(os.Stdin)
}
