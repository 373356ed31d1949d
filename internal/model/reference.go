// Package model holds the resolved, file-path-aware identifiers that sit
// between the parsed ast.Model and the loader/resolver/evaluator stages:
// ModelPath/PythonPath (sibling-relative file references), and the
// nominal Identifier wrappers (SubmodelName, ReferenceName,
// ParameterName) the resolver uses to key its symbol tables.
//
// Grounded on _examples/original_source/src-rs/oneil_ir/src/reference.rs
// (Identifier/ModulePath/PythonPath), adapted from Rust's panicking
// extension-setters to Go's constructor-returns-error idiom matching the
// rest of this package's error handling.
package model

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// Identifier is an immutable string-based name for a variable, parameter,
// submodel, or other named entity.
type Identifier string

func (id Identifier) String() string { return string(id) }

// SubmodelName, ReferenceName, and ParameterName are nominal Identifier
// wrappers so the resolver's symbol tables can't mix up which namespace a
// key belongs to.
type (
	SubmodelName  Identifier
	ReferenceName Identifier
	ParameterName Identifier
)

func (n SubmodelName) String() string  { return string(n) }
func (n ReferenceName) String() string { return string(n) }
func (n ParameterName) String() string { return string(n) }

// ModulePath is the file system path to an Oneil module, always carrying
// the ".on" extension.
type ModulePath string

// NewModulePath returns p with a ".on" extension, erroring if p already
// names a different extension.
func NewModulePath(p string) (ModulePath, error) {
	if ext := filepath.Ext(p); ext != "" && ext != ".on" {
		return "", fmt.Errorf("module path %q must not have an extension other than .on", p)
	}
	return ModulePath(strings.TrimSuffix(p, ".on") + ".on"), nil
}

// String returns the path as written.
func (m ModulePath) String() string { return string(m) }

// SiblingPath resolves name relative to m's directory, without adding an
// extension (callers pass the result back through NewModulePath or
// NewPythonPath once they know which kind of sibling it is).
func (m ModulePath) SiblingPath(name string) string {
	dir := path.Dir(string(m))
	if dir == "." {
		return name
	}
	return path.Join(dir, name)
}

// PythonPath is the file system path to a Python module, always carrying
// the ".py" extension.
type PythonPath string

// NewPythonPath returns p with a ".py" extension, erroring if p already
// names a different extension.
func NewPythonPath(p string) (PythonPath, error) {
	if ext := filepath.Ext(p); ext != "" && ext != ".py" {
		return "", fmt.Errorf("python path %q must not have an extension other than .py", p)
	}
	return PythonPath(strings.TrimSuffix(p, ".py") + ".py"), nil
}

func (p PythonPath) String() string { return string(p) }
