package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/oneil-lang/oneil/internal/builtins"
	"github.com/oneil-lang/oneil/internal/diagfmt"
	"github.com/oneil-lang/oneil/internal/evaluator"
	"github.com/oneil-lang/oneil/internal/loader"
	"github.com/oneil-lang/oneil/internal/model"
	"github.com/oneil-lang/oneil/pkg/oneil"
)

var (
	evalParam string
	evalDebug bool
)

var evalCmd = &cobra.Command{
	Use:   "eval <file>",
	Short: "Evaluate a model and print its resolved parameter values",
	Args:  cobra.ExactArgs(1),
	RunE:  runEval,
}

func init() {
	evalCmd.Flags().StringVar(&evalParam, "param", "", "only print this parameter (default: every parameter)")
	evalCmd.Flags().BoolVar(&evalDebug, "debug", false, "also print dependency snapshots captured for Debug-trace parameters")
}

func runEval(cmd *cobra.Command, args []string) error {
	if err := checkPlugins(); err != nil {
		return err
	}

	reg, err := builtins.New()
	if err != nil {
		return fmt.Errorf("loading builtins: %w", err)
	}

	entry := args[0]
	result, diags := oneil.Run([]string{entry}, oneil.Options{Files: loader.OSFileLoader{}, Builtins: reg, Python: pythonValidator()})
	diagfmt.Render(cmd.ErrOrStderr(), diags, colorMode())

	var path model.ModulePath
	if len(result.Top) > 0 {
		path = result.Top[0]
	}
	mr, ok := result.ForPath(path)
	if !ok {
		os.Exit(1)
		return nil
	}

	out := cmd.OutOrStdout()
	if evalParam != "" {
		pr, ok := mr.Parameters[model.ParameterName(evalParam)]
		if !ok {
			return fmt.Errorf("no such parameter %q", evalParam)
		}
		printParameter(out, model.ParameterName(evalParam), pr)
	} else {
		for name, pr := range mr.Parameters {
			printParameter(out, name, pr)
		}
	}

	if len(diags) > 0 {
		os.Exit(1)
	}
	return nil
}

func printParameter(out io.Writer, name model.ParameterName, pr *evaluator.ParameterResult) {
	if pr.Failed {
		fmt.Fprintf(out, "%s = <error>\n", name)
		return
	}
	fmt.Fprintf(out, "%s = %s\n", name, pr.Value.String())
	if evalDebug && len(pr.DebugDependencies) > 0 {
		for dep, v := range pr.DebugDependencies {
			fmt.Fprintf(out, "  %s = %s\n", dep, v.String())
		}
	}
}
