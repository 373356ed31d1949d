package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oneil-lang/oneil/internal/builtins"
	"github.com/oneil-lang/oneil/internal/diagfmt"
	"github.com/oneil-lang/oneil/internal/diagnostics"
	"github.com/oneil-lang/oneil/internal/evaluator"
	"github.com/oneil-lang/oneil/internal/loader"
	"github.com/oneil-lang/oneil/internal/model"
	"github.com/oneil-lang/oneil/internal/resolver"
)

var treeCmd = &cobra.Command{
	Use:   "tree <file>",
	Short: "Print the dependency-ordered evaluation plan for a model",
	Long: `Loads and resolves the model collection rooted at <file> and prints
the model and parameter evaluation order the evaluator itself follows:
each model path, then its parameter names with the names they depend
on (no source locations; no AST pretty-printing).`,
	Args: cobra.ExactArgs(1),
	RunE: runTree,
}

func runTree(cmd *cobra.Command, args []string) error {
	if err := checkPlugins(); err != nil {
		return err
	}

	reg, err := builtins.New()
	if err != nil {
		return fmt.Errorf("loading builtins: %w", err)
	}

	l := loader.New(loader.OSFileLoader{})
	loaded, _, loadDiags := l.LoadAll(args)
	collection, resolveDiags := resolver.ResolveAll(loaded, reg, pythonValidator())

	var diags []diagnostics.Diagnostic
	diags = append(diags, loadDiags...)
	diags = append(diags, resolveDiags...)
	diagnostics.SortDiagnostics(diags)
	diagfmt.Render(cmd.ErrOrStderr(), diags, colorMode())

	out := cmd.OutOrStdout()
	for _, path := range evaluator.ModelOrder(collection) {
		m, ok := collection.Get(path)
		if !ok {
			continue
		}
		fmt.Fprintf(out, "%s\n", path)
		for _, name := range evaluator.ParameterOrder(m) {
			p := m.Parameters[name]
			deps := dependencyNames(p)
			if len(deps) == 0 {
				fmt.Fprintf(out, "  %s\n", name)
			} else {
				fmt.Fprintf(out, "  %s <- %s\n", name, strings.Join(deps, ", "))
			}
		}
	}

	if len(diags) > 0 {
		os.Exit(1)
	}
	return nil
}

func dependencyNames(p model.Parameter) []string {
	names := make([]string, 0, len(p.Dependencies))
	for n := range p.Dependencies {
		names = append(names, n.String())
	}
	return names
}
