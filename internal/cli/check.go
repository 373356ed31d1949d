package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oneil-lang/oneil/internal/builtins"
	"github.com/oneil-lang/oneil/internal/diagfmt"
	"github.com/oneil-lang/oneil/internal/loader"
	"github.com/oneil-lang/oneil/pkg/oneil"
)

var checkCmd = &cobra.Command{
	Use:   "check <files...>",
	Short: "Load, resolve, and evaluate models, reporting every diagnostic",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	if err := checkPlugins(); err != nil {
		return err
	}

	reg, err := builtins.New()
	if err != nil {
		return fmt.Errorf("loading builtins: %w", err)
	}

	_, diags := oneil.Run(args, oneil.Options{Files: loader.OSFileLoader{}, Builtins: reg, Python: pythonValidator()})

	diagfmt.Render(cmd.OutOrStdout(), diags, colorMode())
	if len(diags) > 0 {
		os.Exit(1)
	}
	return nil
}
