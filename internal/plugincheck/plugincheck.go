// Package plugincheck validates that a user-supplied Go package, named by
// import path on the `cmd/oneil --loader-plugin=...`/`--builtins-plugin=...`
// flags, actually implements the capability interface the CLI is about
// to wire it in as (loader.FileLoader or builtins.Provider) before
// construction is attempted — so a mismatched plugin fails with a clear
// static-analysis error instead of a confusing runtime panic deep in the
// pipeline.
//
// Grounded on the teacher's internal/ext/inspector.go: a
// golang.org/x/tools/go/packages load (NeedTypes|NeedTypesInfo|NeedSyntax)
// followed by go/types inspection of the loaded package's exported
// declarations.
package plugincheck

import (
	"fmt"
	"go/types"
	"os"

	"golang.org/x/tools/go/packages"
)

// Capability names the interface a plugin package must implement.
type Capability struct {
	// Name is used only in error messages, e.g. "loader.FileLoader".
	Name string
	// Methods is the method set the exported type must satisfy, by name
	// and Go signature string as go/types would render it (e.g.
	// "func(path string) (string, error)").
	Methods map[string]string
}

// FileLoaderCapability describes loader.FileLoader's method set.
var FileLoaderCapability = Capability{
	Name: "loader.FileLoader",
	Methods: map[string]string{
		"ReadFile": "func(path string) (string, error)",
	},
}

// BuiltinsProviderCapability describes builtins.Provider's method set.
var BuiltinsProviderCapability = Capability{
	Name: "builtins.Provider",
	Methods: map[string]string{
		"LookupVariable": "func(name string) (numeric.Value, bool)",
		"LookupUnit":     "func(name string) (units.Unit, bool)",
		"LookupPrefix":   "func(name string) (float64, bool)",
		"LookupFunction": "func(name string) (builtins.Function, bool)",
		"IsBuiltin":      "func(name string) bool",
	},
}

// Result reports which exported type in the loaded package satisfies the
// requested capability.
type Result struct {
	PackagePath string
	TypeName    string
}

// Check loads pkgPath and reports the first exported, non-interface named
// type (in scope-name order) whose method set, or its pointer's method
// set, has a method of every name in cap.Methods. Only method names are
// compared: parameter and result types are not checked, and the
// signature strings in Methods are not used in the comparison.
func Check(pkgPath string, cap Capability) (*Result, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedTypes | packages.NeedTypesInfo | packages.NeedSyntax,
		Env:  append(os.Environ(), "GOWORK=off"),
	}

	pkgs, err := packages.Load(cfg, pkgPath)
	if err != nil {
		return nil, fmt.Errorf("loading package %s: %w", pkgPath, err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("package %s not found", pkgPath)
	}
	pkg := pkgs[0]
	if len(pkg.Errors) > 0 {
		return nil, fmt.Errorf("package %s has errors: %s", pkgPath, pkg.Errors[0].Msg)
	}

	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		obj := scope.Lookup(name)
		if !obj.Exported() {
			continue
		}
		tn, ok := obj.(*types.TypeName)
		if !ok {
			continue
		}
		if types.IsInterface(tn.Type()) {
			continue
		}
		if satisfiesCapability(tn.Type(), cap) {
			return &Result{PackagePath: pkgPath, TypeName: tn.Name()}, nil
		}
		// Pointer receivers are common for stateful plugins (e.g. a
		// cached FileLoader); check *T too.
		if satisfiesCapability(types.NewPointer(tn.Type()), cap) {
			return &Result{PackagePath: pkgPath, TypeName: tn.Name()}, nil
		}
	}

	return nil, fmt.Errorf("package %s declares no exported type implementing %s (need methods: %s)",
		pkgPath, cap.Name, methodNames(cap))
}

func satisfiesCapability(t types.Type, cap Capability) bool {
	mset := types.NewMethodSet(t)
	for name := range cap.Methods {
		if mset.Lookup(nil, name) == nil {
			return false
		}
	}
	return true
}

func methodNames(cap Capability) string {
	names := make([]string, 0, len(cap.Methods))
	for name := range cap.Methods {
		names = append(names, name)
	}
	return fmt.Sprint(names)
}
