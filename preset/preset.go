// Package preset provides ordered sequences of input valuations that are
// replayed once the exploration tree has nothing left to explore.
package preset

import (
	"io/ioutil"

	"github.com/ajalab/concolic/expr"
	"github.com/ajalab/concolic/symbol"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Source is an ordered sequence of valuations.
type Source interface {
	// Next returns the next valuation, or false when the sequence is over.
	Next() (expr.Valuation, bool)
}

// Slice is a Source backed by a slice.
type Slice struct {
	vs []expr.Valuation
	i  int
}

// NewSlice creates a Source yielding vs in order.
func NewSlice(vs ...expr.Valuation) *Slice {
	return &Slice{vs: vs}
}

// Next returns the next valuation.
func (s *Slice) Next() (expr.Valuation, bool) {
	if s.i >= len(s.vs) {
		return expr.Valuation{}, false
	}
	v := s.vs[s.i]
	s.i++
	return v, true
}

// Len returns the number of valuations not yet returned.
func (s *Slice) Len() int {
	return len(s.vs) - s.i
}

// file is the YAML layout of a preset file:
//
//	valuations:
//	  - {x: 1, y: -3}
//	  - {x: 5}
type file struct {
	Valuations []map[string]interface{} `yaml:"valuations"`
}

// Parse decodes a YAML preset document. Values are checked against the
// declared inputs; inputs left out take their initial values.
func Parse(data []byte, inputs symbol.Symbols) (*Slice, error) {
	var f file
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, errors.Wrap(err, "failed to decode preset")
	}
	vs := make([]expr.Valuation, len(f.Valuations))
	for i, raw := range f.Valuations {
		v, err := inputs.Parse(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "preset valuation %d", i)
		}
		vs[i] = v
	}
	return NewSlice(vs...), nil
}

// LoadFile reads a YAML preset file.
func LoadFile(path string, inputs symbol.Symbols) (*Slice, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read preset file %s", path)
	}
	return Parse(data, inputs)
}
