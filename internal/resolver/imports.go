package resolver

import (
	"fmt"

	"github.com/oneil-lang/oneil/internal/ast"
	"github.com/oneil-lang/oneil/internal/diagnostics"
	"github.com/oneil-lang/oneil/internal/model"
)

// resolveImports deduplicates by canonical path and validates each
// unique python import (spec.md §4.6 "Python imports").
func (r *Resolver) resolveImports(path model.ModulePath, m *model.Model, imports []*ast.ImportDecl) {
	seen := make(map[model.PythonPath]*ast.ImportDecl, len(imports))
	for _, imp := range imports {
		pp, err := model.NewPythonPath(imp.PythonPath)
		if err != nil {
			r.addDiag(path, diagnostics.New(diagnostics.KindPythonImportFailed, err.Error(), imp.SpanVal))
			m.HasError = true
			continue
		}
		if orig, dup := seen[pp]; dup {
			r.addDiag(path, diagnostics.New(diagnostics.KindDuplicateImport,
				fmt.Sprintf("python import %q is already imported", pp), imp.SpanVal).
				WithSourceContext("first imported here", path.String(), orig.SpanVal))
			continue
		}
		seen[pp] = imp

		if r.python != nil {
			if err := r.python.ValidatePythonImport(pp); err != nil {
				r.addDiag(path, diagnostics.New(diagnostics.KindPythonImportFailed, err.Error(), imp.SpanVal))
				m.HasError = true
				continue
			}
		}
		m.Imports = append(m.Imports, model.Import{Path: pp, Span: imp.SpanVal})
	}
}
