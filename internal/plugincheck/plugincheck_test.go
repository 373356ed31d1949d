package plugincheck_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oneil-lang/oneil/internal/plugincheck"
)

// TestCheckFindsFileLoaderImplementation exercises Check against this
// module's own internal/loader package, whose OSFileLoader already
// implements loader.FileLoader — a real implementation of the capability
// being checked, rather than a hand-built fixture package.
func TestCheckFindsFileLoaderImplementation(t *testing.T) {
	result, err := plugincheck.Check("github.com/oneil-lang/oneil/internal/loader", plugincheck.FileLoaderCapability)
	require.NoError(t, err)
	require.Equal(t, "OSFileLoader", result.TypeName)
}

func TestCheckFailsForPackageWithNoMatchingType(t *testing.T) {
	_, err := plugincheck.Check("github.com/oneil-lang/oneil/internal/span", plugincheck.FileLoaderCapability)
	require.Error(t, err)
}
