// Package config loads a project's oneil.yaml: search-path roots for
// resolving bare `use`/`import` paths, a table of user-declared unit
// aliases, and a diagnostic color-mode override (spec.md §9
// "Supplemented features").
//
// Grounded on the teacher's internal/ext/config.go: yaml.Unmarshal into a
// tagged struct, a Load/Find-by-walking-up-parents pattern, and a
// validate-then-setDefaults construction pipeline. Library:
// gopkg.in/yaml.v3, matching the teacher's own choice.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ColorMode overrides the diagfmt TTY auto-detection for every run that
// loads this config, unless a CLI flag overrides it again.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// Config is the top-level shape of oneil.yaml.
type Config struct {
	// SearchPaths lists additional directories for resolving a
	// `use`/`import` path. Parse reads it as given; the loader does not
	// consult it.
	SearchPaths []string `yaml:"search_paths,omitempty"`

	// UnitAliases maps a user-chosen alias to a canonical unit name, e.g.
	// `"pound": "lb"`. Parse checks only that entries are non-empty and
	// not self-aliases, and ResolveUnitAlias looks them up; unit lookup
	// in the evaluator does not consult this map.
	UnitAliases map[string]string `yaml:"unit_aliases,omitempty"`

	// Color overrides automatic TTY detection in internal/diagfmt.
	// Defaults to ColorAuto when omitted; Parse rejects any value other
	// than auto, always or never.
	Color ColorMode `yaml:"color,omitempty"`
}

// Load reads and parses path as an oneil.yaml document.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses oneil.yaml content from bytes. path is used only in error
// messages.
func Parse(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// Find searches for oneil.yaml starting at dir and walking up to parent
// directories, mirroring the teacher's funxy.yaml/.gitignore-style
// search. Returns "" with a nil error if no config file is found.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "oneil.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		candidate = filepath.Join(dir, "oneil.yml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func (c *Config) validate(path string) error {
	for alias, canonical := range c.UnitAliases {
		if alias == "" {
			return fmt.Errorf("%s: unit_aliases: empty alias key", path)
		}
		if canonical == "" {
			return fmt.Errorf("%s: unit_aliases: alias %q has no target unit", path, alias)
		}
		if alias == canonical {
			return fmt.Errorf("%s: unit_aliases: alias %q aliases itself", path, alias)
		}
	}
	switch c.Color {
	case "", ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%s: color: unrecognized mode %q (want auto, always, or never)", path, c.Color)
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Color == "" {
		c.Color = ColorAuto
	}
}

// ResolveUnitAlias returns the canonical unit name alias maps to, if any.
func (c *Config) ResolveUnitAlias(alias string) (string, bool) {
	canonical, ok := c.UnitAliases[alias]
	return canonical, ok
}
