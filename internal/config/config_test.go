package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oneil-lang/oneil/internal/config"
)

func TestParseAppliesDefaultColorMode(t *testing.T) {
	cfg, err := config.Parse([]byte("search_paths:\n  - ./lib\n"), "oneil.yaml")
	require.NoError(t, err)
	require.Equal(t, config.ColorAuto, cfg.Color)
	require.Equal(t, []string{"./lib"}, cfg.SearchPaths)
}

func TestParseResolvesUnitAliases(t *testing.T) {
	cfg, err := config.Parse([]byte("unit_aliases:\n  lb: pound\n"), "oneil.yaml")
	require.NoError(t, err)

	canonical, ok := cfg.ResolveUnitAlias("lb")
	require.True(t, ok)
	require.Equal(t, "pound", canonical)

	_, ok = cfg.ResolveUnitAlias("unknown")
	require.False(t, ok)
}

func TestParseRejectsSelfReferentialAlias(t *testing.T) {
	_, err := config.Parse([]byte("unit_aliases:\n  m: m\n"), "oneil.yaml")
	require.Error(t, err)
}

func TestParseRejectsUnknownColorMode(t *testing.T) {
	_, err := config.Parse([]byte("color: rainbow\n"), "oneil.yaml")
	require.Error(t, err)
}

func TestFindWalksUpToParentDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "oneil.yaml"), []byte("color: never\n"), 0o644))

	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found, err := config.Find(nested)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "oneil.yaml"), found)
}

func TestFindReturnsEmptyWhenNoConfigExists(t *testing.T) {
	dir := t.TempDir()
	found, err := config.Find(dir)
	require.NoError(t, err)
	require.Empty(t, found)
}
