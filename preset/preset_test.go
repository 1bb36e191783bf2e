package preset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ajalab/concolic/expr"
	"github.com/ajalab/concolic/symbol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var inputs = symbol.Symbols{
	symbol.New("x", expr.Int32),
	symbol.New("b", expr.Bool),
}

func TestSlice(t *testing.T) {
	v := expr.NewValuation(map[string]expr.Value{"x": expr.IntValue(expr.Int32, 1)})
	s := NewSlice(v, v)
	assert.Equal(t, 2, s.Len())
	_, ok := s.Next()
	assert.True(t, ok)
	_, ok = s.Next()
	assert.True(t, ok)
	_, ok = s.Next()
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preset.yaml")
	doc := "valuations:\n  - {x: 5, b: true}\n  - {x: -3}\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	s, err := LoadFile(path, inputs)
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())

	v, _ := s.Next()
	x, _ := v.Get("x")
	b, _ := v.Get("b")
	assert.Equal(t, int64(5), x.Int())
	assert.True(t, b.Bool())

	v, _ = s.Next()
	b, ok := v.Get("b")
	require.True(t, ok, "missing inputs take their initial value")
	assert.False(t, b.Bool())
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		name string
		doc  string
	}{
		{"unknown input", "valuations:\n  - {z: 1}\n"},
		{"unknown field", "inputs:\n  - {x: 1}\n"},
		{"wrong type", "valuations:\n  - {b: 3}\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc), inputs)
			assert.Error(t, err)
		})
	}

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), inputs)
	assert.Error(t, err)
}
