// Command oneil is the CLI front end: `check`, `eval`, and `tree`
// subcommands over pkg/oneil.Run.
//
// Grounded on santoshpalla27-Terraform-cost-estimation/cmd/cli/cmd's
// cobra tree (root command wiring persistent flags, one file per
// subcommand, RunE returning a plain error) — the teacher's own
// pkg/cli predates cobra and hand-rolls flag parsing, so this adopts
// cobra from elsewhere in the pack instead, per the "enrich from the
// rest of the pack" rule.
package main

import (
	"os"

	"github.com/oneil-lang/oneil/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
