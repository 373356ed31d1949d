// Package cli wires pkg/oneil into the `oneil` command-line tool:
// `check`, `eval`, and `tree` subcommands sharing one root command.
//
// Grounded on
// santoshpalla27-Terraform-cost-estimation/cmd/cli/cmd/root.go's shape:
// one `rootCmd` with persistent flags, subcommands added in `init`, and
// an exported `Execute` that `cmd/oneil`'s thin `main` calls.
package cli

import (
	"github.com/spf13/cobra"
)

var noColor bool

var rootCmd = &cobra.Command{
	Use:   "oneil",
	Short: "Parse, resolve, and evaluate Oneil declarative models",
	Long: `oneil is the reference toolchain for the Oneil modeling language:
it tokenizes, parses, resolves multi-file model collections, and
evaluates parameters and tests with interval and unit-aware arithmetic.

Examples:
  oneil check rocket.on
  oneil eval rocket.on --param thrust
  oneil tree rocket.on`,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored diagnostic output")
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(treeCmd)
}

// Execute runs the CLI; its error is already reported to stderr by
// cobra's own usage machinery for flag/argument errors, so cmd/oneil's
// main just needs to turn a non-nil return into a non-zero exit code.
func Execute() error {
	return rootCmd.Execute()
}
