// Project-wide CLI plumbing shared by check/eval/tree: oneil.yaml
// discovery (internal/config), capability validation for user-supplied
// plugin packages (internal/plugincheck), and the Python-import
// validator (internal/pythonbridge) every subcommand wires into
// pkg/oneil.Options.
package cli

import (
	"fmt"
	"os"
	"sync"

	"github.com/oneil-lang/oneil/internal/config"
	"github.com/oneil-lang/oneil/internal/diagfmt"
	"github.com/oneil-lang/oneil/internal/plugincheck"
	"github.com/oneil-lang/oneil/internal/pythonbridge"
)

var (
	loaderPlugin   string
	builtinsPlugin string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&loaderPlugin, "loader-plugin", "",
		"import path of a package implementing loader.FileLoader; validated before the run starts but not itself loaded")
	rootCmd.PersistentFlags().StringVar(&builtinsPlugin, "builtins-plugin", "",
		"import path of a package implementing builtins.Provider; validated before the run starts but not itself loaded")
}

var (
	projectConfigOnce sync.Once
	projectConfig     *config.Config
)

// loadedProjectConfig finds and parses oneil.yaml once per process,
// walking up from the working directory (internal/config.Find).
func loadedProjectConfig() *config.Config {
	projectConfigOnce.Do(func() {
		dir, err := os.Getwd()
		if err != nil {
			return
		}
		path, err := config.Find(dir)
		if err != nil || path == "" {
			return
		}
		cfg, err := config.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			return
		}
		projectConfig = cfg
	})
	return projectConfig
}

// colorMode resolves the diagfmt color mode: the --no-color flag wins,
// then oneil.yaml's color setting, then auto-detection.
func colorMode() diagfmt.ColorMode {
	if noColor {
		return diagfmt.ColorNever
	}
	if cfg := loadedProjectConfig(); cfg != nil {
		switch cfg.Color {
		case config.ColorAlways:
			return diagfmt.ColorAlways
		case config.ColorNever:
			return diagfmt.ColorNever
		}
	}
	return diagfmt.ColorAuto
}

// checkPlugins validates --loader-plugin/--builtins-plugin, if given,
// before pkg/oneil.Run is invoked: a mismatched plugin package fails
// here with a static-analysis error instead of a confusing runtime
// panic deep in the pipeline (spec.md's FileLoader/builtins.Provider
// capabilities being user-pluggable).
func checkPlugins() error {
	if loaderPlugin != "" {
		if _, err := plugincheck.Check(loaderPlugin, plugincheck.FileLoaderCapability); err != nil {
			return fmt.Errorf("--loader-plugin: %w", err)
		}
	}
	if builtinsPlugin != "" {
		if _, err := plugincheck.Check(builtinsPlugin, plugincheck.BuiltinsProviderCapability); err != nil {
			return fmt.Errorf("--builtins-plugin: %w", err)
		}
	}
	return nil
}

// pythonValidator returns the Python-import validator every subcommand
// passes as oneil.Options.Python.
func pythonValidator() *pythonbridge.Bridge {
	return pythonbridge.New(pythonbridge.OSFileReader{})
}
