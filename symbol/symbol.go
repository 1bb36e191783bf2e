// Package symbol declares the symbolic inputs of an analysis target.
package symbol

import (
	"github.com/ajalab/concolic/expr"
	"github.com/pkg/errors"
)

// Decl declares a symbolic input variable.
type Decl struct {
	Name string
	Kind expr.Kind
	// Initial is the value of the variable in the first run.
	// The zero value of Kind is used when Initial is unset.
	Initial *expr.Value
}

// New returns a declaration of name with the zero value of k as its initial value.
func New(name string, k expr.Kind) Decl {
	return Decl{Name: name, Kind: k}
}

// WithInitial returns a copy of d whose initial value is v.
func (d Decl) WithInitial(v expr.Value) Decl {
	v = v.Convert(d.Kind)
	d.Initial = &v
	return d
}

// Var returns the symbolic variable of d.
func (d Decl) Var() *expr.Var {
	return expr.NewVar(d.Name, d.Kind)
}

func (d Decl) initial() expr.Value {
	if d.Initial != nil {
		return *d.Initial
	}
	return expr.Zero(d.Kind)
}

// Symbols is the list of symbolic inputs of a target.
type Symbols []Decl

// Validate checks that every name is declared at most once.
func (s Symbols) Validate() error {
	seen := make(map[string]struct{}, len(s))
	for _, d := range s {
		if d.Name == "" {
			return errors.New("symbol with an empty name")
		}
		if _, ok := seen[d.Name]; ok {
			return errors.Errorf("symbol %s is declared more than once", d.Name)
		}
		seen[d.Name] = struct{}{}
	}
	return nil
}

// Lookup returns the declaration of name.
func (s Symbols) Lookup(name string) (Decl, bool) {
	for _, d := range s {
		if d.Name == name {
			return d, true
		}
	}
	return Decl{}, false
}

// Template returns the valuation binding every input to its initial value.
func (s Symbols) Template() expr.Valuation {
	m := make(map[string]expr.Value, len(s))
	for _, d := range s {
		m[d.Name] = d.initial()
	}
	return expr.NewValuation(m)
}

// Complete returns v with every declared input that v leaves unbound set to
// its value in the template. Values of the wrong kind are converted.
func (s Symbols) Complete(v expr.Valuation) expr.Valuation {
	m := make(map[string]expr.Value, len(s))
	for _, d := range s {
		val, ok := v.Get(d.Name)
		if !ok {
			val = d.initial()
		}
		m[d.Name] = val.Convert(d.Kind)
	}
	return expr.NewValuation(m)
}

// Parse converts loosely typed values, e.g. decoded from YAML, into a valuation.
func (s Symbols) Parse(raw map[string]interface{}) (expr.Valuation, error) {
	m := make(map[string]expr.Value, len(raw))
	for name, x := range raw {
		d, ok := s.Lookup(name)
		if !ok {
			return expr.Valuation{}, errors.Errorf("unknown symbol: %s", name)
		}
		v, err := expr.FromInterface(d.Kind, x)
		if err != nil {
			return expr.Valuation{}, errors.Wrapf(err, "symbol %s", name)
		}
		m[name] = v
	}
	return s.Complete(expr.NewValuation(m)), nil
}
