// Package targets is a registry of sample functions instrumented for concolic analysis.
package targets

import (
	"sort"

	"github.com/ajalab/concolic"
	"github.com/ajalab/concolic/expr"
	"github.com/ajalab/concolic/symbol"
)

var registry = make(map[string]*concolic.Target)

func register(name string, inputs symbol.Symbols, f func(r *concolic.Run)) {
	if _, ok := registry[name]; ok {
		panic("targets: duplicate target " + name)
	}
	registry[name] = &concolic.Target{Name: name, Inputs: inputs, Func: f}
}

// Lookup returns the target registered as name.
func Lookup(name string) (*concolic.Target, bool) {
	t, ok := registry[name]
	return t, ok
}

// Names returns the names of all targets in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func inputs(k expr.Kind, names ...string) symbol.Symbols {
	s := make(symbol.Symbols, len(names))
	for i, name := range names {
		s[i] = symbol.New(name, k)
	}
	return s
}
