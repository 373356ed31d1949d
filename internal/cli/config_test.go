package cli

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oneil-lang/oneil/internal/diagfmt"
)

func TestColorModeDefaultsToAutoWithoutFlagOrConfig(t *testing.T) {
	noColor = false
	require.Equal(t, diagfmt.ColorAuto, colorMode())
}

func TestColorModeNoColorFlagWins(t *testing.T) {
	noColor = true
	defer func() { noColor = false }()
	require.Equal(t, diagfmt.ColorNever, colorMode())
}

func TestCheckPluginsAcceptsRealFileLoaderImplementation(t *testing.T) {
	loaderPlugin = "github.com/oneil-lang/oneil/internal/loader"
	defer func() { loaderPlugin = "" }()
	require.NoError(t, checkPlugins())
}

func TestCheckPluginsRejectsPackageWithNoMatchingType(t *testing.T) {
	loaderPlugin = "github.com/oneil-lang/oneil/internal/span"
	defer func() { loaderPlugin = "" }()
	require.Error(t, checkPlugins())
}
