package expr

import (
	"sort"
	"strings"
)

// Valuation maps variable names to concrete values. A Valuation is immutable:
// every method returning a Valuation returns a fresh copy.
type Valuation struct {
	m map[string]Value
}

// NewValuation returns a valuation holding a copy of m.
func NewValuation(m map[string]Value) Valuation {
	c := make(map[string]Value, len(m))
	for k, v := range m {
		c[k] = v
	}
	return Valuation{m: c}
}

// Get returns the value of the variable name.
func (v Valuation) Get(name string) (Value, bool) {
	val, ok := v.m[name]
	return val, ok
}

// Len returns the number of bound variables.
func (v Valuation) Len() int {
	return len(v.m)
}

// IsEmpty reports whether no variable is bound.
func (v Valuation) IsEmpty() bool {
	return len(v.m) == 0
}

// Names returns the bound variable names in sorted order.
func (v Valuation) Names() []string {
	names := make([]string, 0, len(v.m))
	for name := range v.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// With returns a copy of v in which name is bound to val.
func (v Valuation) With(name string, val Value) Valuation {
	c := NewValuation(v.m)
	c.m[name] = val
	return c
}

// Merge returns a copy of v overridden by the bindings of o.
func (v Valuation) Merge(o Valuation) Valuation {
	c := NewValuation(v.m)
	for k, val := range o.m {
		c.m[k] = val
	}
	return c
}

// Equal reports whether v and o bind the same names to equal values.
func (v Valuation) Equal(o Valuation) bool {
	if len(v.m) != len(o.m) {
		return false
	}
	for k, val := range v.m {
		w, ok := o.m[k]
		if !ok || !val.Equal(w) {
			return false
		}
	}
	return true
}

// Map returns a copy of the bindings.
func (v Valuation) Map() map[string]Value {
	c := make(map[string]Value, len(v.m))
	for k, val := range v.m {
		c[k] = val
	}
	return c
}

func (v Valuation) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, name := range v.Names() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(v.m[name].String())
	}
	b.WriteByte('}')
	return b.String()
}
