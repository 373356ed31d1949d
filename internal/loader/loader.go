// Package loader recursively discovers and parses every ".on" file
// reachable from a set of entry paths via `use`/`from ... use`
// declarations (spec.md §4.5).
//
// Grounded on the teacher's internal/modules/loader.go: a `processing`
// set for cycle detection plus a `loaded` cache, the same
// recursion-then-cache shape, adapted from "one package per directory"
// (several files merged into one Module) to "one file per module" since
// Oneil has no package/export concept — each `.on` file is its own unit.
// FileLoader is an injected capability, matching the teacher's
// BundleInterface/GlobalBundle injection pattern for swapping in an
// in-memory source during tests or the language server.
package loader

import (
	"os"
	"strings"

	"github.com/oneil-lang/oneil/internal/ast"
	"github.com/oneil-lang/oneil/internal/diagnostics"
	"github.com/oneil-lang/oneil/internal/model"
	"github.com/oneil-lang/oneil/internal/parser"
	"github.com/oneil-lang/oneil/internal/span"
)

// FileLoader is the capability loader.Loader reads model source through.
type FileLoader interface {
	ReadFile(path string) (string, error)
}

// OSFileLoader reads model source files from the local filesystem, the
// default FileLoader for `cmd/oneil`.
type OSFileLoader struct{}

func (OSFileLoader) ReadFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Parsed is one loaded-and-parsed ".on" file.
type Parsed struct {
	Path      model.ModulePath
	AST       *ast.Model
	Source    string
	SourceMap *span.SourceMap

	// HasError is true when parsing produced at least one diagnostic;
	// the resolver seeds model.Model.HasError from this so a file that
	// failed to parse cleanly still propagates as known-bad to its
	// dependents rather than cascading undefined-name noise (spec.md
	// §4.5's ModelHasError placeholder). Recursion into this file's own
	// `use` targets still happens (the recursive-descent parser recovers
	// per-declaration, so a parse error rarely invalidates every
	// declaration in the file) — a deliberate refinement over stopping
	// outright, kept in DESIGN.md.
	HasError bool
}

// Loader recursively loads ".on" files, caching each path so it is read
// and parsed at most once per run.
type Loader struct {
	files      FileLoader
	loaded     map[model.ModulePath]*Parsed
	processing map[model.ModulePath]bool
	stack      []model.ModulePath
	diags      []diagnostics.Diagnostic
}

// New creates a Loader backed by files.
func New(files FileLoader) *Loader {
	return &Loader{
		files:      files,
		loaded:     make(map[model.ModulePath]*Parsed),
		processing: make(map[model.ModulePath]bool),
	}
}

// LoadAll loads every entry path plus everything it transitively uses.
// It returns every file loaded (keyed by path), the entry paths that
// resolved to a real file (spec.md §4.5's "top" models — the ones whose
// diagnostics and results get reported even though nothing depends on
// them), and the diagnostics collected while loading.
func (l *Loader) LoadAll(entryPaths []string) (map[model.ModulePath]*Parsed, []model.ModulePath, []diagnostics.Diagnostic) {
	var top []model.ModulePath
	for _, p := range entryPaths {
		path, err := model.NewModulePath(p)
		if err != nil {
			l.diags = append(l.diags, diagnostics.From(p, diagnostics.PhaseIO,
				diagnostics.NewWithoutLocation(diagnostics.KindFileMissing, err.Error()), nil))
			continue
		}
		if l.load(path) != nil {
			top = append(top, path)
		}
	}
	diags := append([]diagnostics.Diagnostic{}, l.diags...)
	diagnostics.SortDiagnostics(diags)
	return l.loaded, top, diags
}

// load returns the Parsed file at path, loading and recursively
// resolving its dependencies if this is the first time path has been
// seen. Returns nil if the file could not be read or a cycle was
// detected reaching it; either failure has already appended a
// diagnostic.
func (l *Loader) load(path model.ModulePath) *Parsed {
	if p, ok := l.loaded[path]; ok {
		return p
	}
	if l.processing[path] {
		l.reportCycle(path)
		return nil
	}

	l.processing[path] = true
	l.stack = append(l.stack, path)
	defer func() {
		delete(l.processing, path)
		l.stack = l.stack[:len(l.stack)-1]
	}()

	source, err := l.files.ReadFile(path.String())
	if err != nil {
		kind := diagnostics.KindFileMissing
		if !os.IsNotExist(err) {
			kind = diagnostics.KindFileUnreadable
		}
		l.diags = append(l.diags, diagnostics.From(path.String(), diagnostics.PhaseIO,
			diagnostics.NewWithoutLocation(kind, err.Error()), nil))
		return nil
	}

	sm := span.NewSourceMap(path.String(), source)
	tree, causes := parser.ParseModel(source)
	src := fileSourceProvider{sm}
	for _, c := range causes {
		l.diags = append(l.diags, diagnostics.From(path.String(), diagnostics.PhaseParser, c, src))
	}

	parsed := &Parsed{Path: path, AST: tree, Source: source, SourceMap: sm, HasError: len(causes) > 0}
	l.loaded[path] = parsed

	l.loadDependencies(parsed)
	return parsed
}

// loadDependencies recursively loads every model a `use`/`from ... use`
// declaration in p names by PathParts, which is always at most one
// segment (spec.md §4.6: the `.SubPath` chain, if any, walks into the
// already-loaded target's own submodels rather than naming another
// file, so it plays no part in discovery).
func (l *Loader) loadDependencies(p *Parsed) {
	for _, d := range useDecls(p.AST) {
		if len(d.PathParts) == 0 {
			continue
		}
		sibling := p.Path.SiblingPath(strings.Join(d.PathParts, "/"))
		depPath, err := model.NewModulePath(sibling)
		if err != nil {
			l.diags = append(l.diags, diagnostics.From(p.Path.String(), diagnostics.PhaseLoad,
				diagnostics.New(diagnostics.KindUndefinedSubmodel, err.Error(), d.PathSpan),
				fileSourceProvider{p.SourceMap}))
			continue
		}
		l.load(depPath)
	}
}

func (l *Loader) reportCycle(path model.ModulePath) {
	chain := append(append([]model.ModulePath{}, l.stack...), path)
	names := make([]string, len(chain))
	for i, p := range chain {
		names[i] = p.String()
	}
	msg := "circular dependency: " + strings.Join(names, " -> ")
	reporter := l.stack[len(l.stack)-1]
	l.diags = append(l.diags, diagnostics.From(reporter.String(), diagnostics.PhaseLoad,
		diagnostics.NewWithoutLocation(diagnostics.KindCircularDependency, msg), nil))
}

// useCollector gathers every UseModelDecl in a model, including those
// nested in sections, via the ast.Visitor double dispatch.
type useCollector struct{ uses []*ast.UseModelDecl }

func (c *useCollector) VisitImport(*ast.ImportDecl)       {}
func (c *useCollector) VisitUseModel(u *ast.UseModelDecl) { c.uses = append(c.uses, u) }
func (c *useCollector) VisitParameter(*ast.ParameterDecl) {}
func (c *useCollector) VisitTest(*ast.TestDecl)           {}

func useDecls(m *ast.Model) []*ast.UseModelDecl {
	c := &useCollector{}
	m.Accept(c)
	return c.uses
}

// fileSourceProvider adapts one file's SourceMap to diagnostics.SourceProvider.
type fileSourceProvider struct{ sm *span.SourceMap }

func (s fileSourceProvider) LineSource(_ string, line int) string { return s.sm.LineSource(line) }

// Provider is a diagnostics.SourceProvider spanning every file a Loader
// parsed, keyed by path — used by the resolver and evaluator phases,
// whose diagnostics may point at spans in any loaded file.
type Provider struct {
	files map[model.ModulePath]*Parsed
}

// NewProvider builds a Provider over the result of LoadAll.
func NewProvider(files map[model.ModulePath]*Parsed) *Provider {
	return &Provider{files: files}
}

func (p *Provider) LineSource(path string, line int) string {
	mp, err := model.NewModulePath(path)
	if err != nil {
		return ""
	}
	f, ok := p.files[mp]
	if !ok {
		return ""
	}
	return f.SourceMap.LineSource(line)
}
