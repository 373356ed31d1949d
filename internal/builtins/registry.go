// Package builtins implements the BuiltinRef capability spec.md §4.5
// describes: "the names and signatures of built-in variables and
// functions". The loader and resolver only need name/shape lookups; the
// evaluator additionally calls through Function.Call.
//
// Grounded on the teacher's internal/modules/virtual_packages_*.go
// registration pattern (a fixed table of name -> signature entries built
// once at loader construction) and the closure-based Builtin{Name, Fn}
// shape in internal/evaluator/builtins_std.go. Unlike the teacher, which
// builds its tables as Go literals, the unit/prefix/variable/function
// *signature* data here is seeded once into an embedded, in-memory
// modernc.org/sqlite database (go:embed'd seed.sql), queried at
// construction and never written to again (spec.md §9 "Global mutable
// state: none"); the function *bodies* are ordinary Go closures
// registered in functions.go and looked up by the same name column.
package builtins

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/oneil-lang/oneil/internal/numeric"
	"github.com/oneil-lang/oneil/internal/units"
)

//go:embed seed.sql
var seedSQL string

// Function is a built-in callable: a name, an inclusive argument-count
// range, and the Go implementation that evaluates it over already-
// checked numeric.Values.
type Function struct {
	Name           string
	MinArgs        int
	MaxArgs        int
	Doc            string
	Call           func(args []numeric.Value) (numeric.Value, error)
}

// Provider is the read-only lookup surface the loader, resolver, and
// evaluator depend on (spec.md §4.5 BuiltinRef).
type Provider interface {
	LookupVariable(name string) (numeric.Value, bool)
	LookupUnit(name string) (units.Unit, bool)
	LookupPrefix(name string) (float64, bool)
	LookupFunction(name string) (Function, bool)
	IsBuiltin(name string) bool
}

// Registry is the default Provider, backed by the embedded seed data.
type Registry struct {
	variables map[string]numeric.Value
	unitDefs  map[string]units.Unit
	prefixes  map[string]float64
	functions map[string]Function
}

// New builds a Registry by seeding an in-memory sqlite database from
// seed.sql and reading it back into lookup tables. The database
// connection is closed before New returns; nothing downstream ever
// queries sqlite directly, matching "queried at construction and never
// written to again".
func New() (*Registry, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("builtins: open seed db: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(seedSQL); err != nil {
		return nil, fmt.Errorf("builtins: seed db: %w", err)
	}

	r := &Registry{
		variables: make(map[string]numeric.Value),
		unitDefs:  make(map[string]units.Unit),
		prefixes:  make(map[string]float64),
		functions: make(map[string]Function),
	}

	if err := r.loadUnits(db); err != nil {
		return nil, err
	}
	if err := r.loadPrefixes(db); err != nil {
		return nil, err
	}
	if err := r.loadVariables(db); err != nil {
		return nil, err
	}
	if err := r.loadFunctions(db); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) loadUnits(db *sql.DB) error {
	rows, err := db.Query(`SELECT name, dimension, exponent, magnitude, is_db FROM units`)
	if err != nil {
		return fmt.Errorf("builtins: query units: %w", err)
	}
	defer rows.Close()

	dimByName := map[string]units.Dimension{
		"mass": units.Mass, "distance": units.Distance, "time": units.Time,
		"temperature": units.Temperature, "current": units.Current,
		"information": units.Information, "currency": units.Currency,
		"substance": units.Substance, "luminous_intensity": units.LuminousIntensity,
	}
	for rows.Next() {
		var name, dimension string
		var exponent, magnitude float64
		var isDB int
		if err := rows.Scan(&name, &dimension, &exponent, &magnitude, &isDB); err != nil {
			return fmt.Errorf("builtins: scan unit row: %w", err)
		}
		dim, ok := dimByName[dimension]
		if !ok {
			return fmt.Errorf("builtins: unknown dimension %q for unit %q", dimension, name)
		}
		u := units.Unit{
			Dimensions: map[units.Dimension]float64{},
			Magnitude:  magnitude,
			IsDB:       isDB != 0,
			Display:    units.DisplayLeaf{Name: name, Exponent: 1},
		}
		if exponent != 0 {
			u.Dimensions[dim] = exponent
		}
		r.unitDefs[name] = u
	}
	return rows.Err()
}

func (r *Registry) loadPrefixes(db *sql.DB) error {
	rows, err := db.Query(`SELECT name, multiplier FROM prefixes`)
	if err != nil {
		return fmt.Errorf("builtins: query prefixes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		var mult float64
		if err := rows.Scan(&name, &mult); err != nil {
			return fmt.Errorf("builtins: scan prefix row: %w", err)
		}
		r.prefixes[name] = mult
	}
	return rows.Err()
}

func (r *Registry) loadVariables(db *sql.DB) error {
	rows, err := db.Query(`SELECT name, value FROM variables`)
	if err != nil {
		return fmt.Errorf("builtins: query variables: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		var value float64
		if err := rows.Scan(&name, &value); err != nil {
			return fmt.Errorf("builtins: scan variable row: %w", err)
		}
		r.variables[name] = numeric.Num(numeric.Scalar(value))
	}
	return rows.Err()
}

func (r *Registry) loadFunctions(db *sql.DB) error {
	rows, err := db.Query(`SELECT name, min_args, max_args, doc FROM functions`)
	if err != nil {
		return fmt.Errorf("builtins: query functions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name, doc string
		var minArgs, maxArgs int
		if err := rows.Scan(&name, &minArgs, &maxArgs, &doc); err != nil {
			return fmt.Errorf("builtins: scan function row: %w", err)
		}
		impl, ok := mathFunctionImpls[name]
		if !ok {
			return fmt.Errorf("builtins: function %q has no registered implementation", name)
		}
		r.functions[name] = Function{Name: name, MinArgs: minArgs, MaxArgs: maxArgs, Doc: doc, Call: impl}
	}
	return rows.Err()
}

func (r *Registry) LookupVariable(name string) (numeric.Value, bool) {
	v, ok := r.variables[name]
	return v, ok
}

func (r *Registry) LookupUnit(name string) (units.Unit, bool) {
	u, ok := r.unitDefs[name]
	return u, ok
}

func (r *Registry) LookupPrefix(name string) (float64, bool) {
	p, ok := r.prefixes[name]
	return p, ok
}

func (r *Registry) LookupFunction(name string) (Function, bool) {
	f, ok := r.functions[name]
	return f, ok
}

// IsBuiltin reports whether name is any kind of built-in (variable or
// function); the resolver uses this to classify an otherwise-unresolved
// Variable as ast.VarBuiltin (spec.md §4.6).
func (r *Registry) IsBuiltin(name string) bool {
	if _, ok := r.variables[name]; ok {
		return true
	}
	_, ok := r.functions[name]
	return ok
}
