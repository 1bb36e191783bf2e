package gentest

import (
	"bytes"
	"context"
	"go/parser"
	"go/token"
	"math"
	"testing"

	"github.com/ajalab/concolic"
	"github.com/ajalab/concolic/expr"
	"github.com/ajalab/concolic/finalize"
	"github.com/ajalab/concolic/symbol"
	"github.com/ajalab/concolic/targets"
	"github.com/ajalab/concolic/trace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const targetsPath = "github.com/ajalab/concolic/targets"

func generate(t *testing.T, g *Generator, paths []*trace.Path) string {
	var buf bytes.Buffer
	require.NoError(t, g.Write(&buf, paths))
	_, err := parser.ParseFile(token.NewFileSet(), "gen_test.go", buf.Bytes(), 0)
	require.NoError(t, err, buf.String())
	return buf.String()
}

func TestGenerateFromAnalysis(t *testing.T) {
	testCases := []struct {
		name     string
		contains []string
	}{
		{
			name: "FailOnFive",
			contains: []string{
				"package targets_test",
				"func TestFailOnFive(t *testing.T)",
				`targets.Lookup("FailOnFive")`,
				`{x: 5, exception: "AssertionError"}`,
				"{x: 0, post: map[string]interface{}{}}",
				`"x": tc.x`,
				`"github.com/ajalab/concolic/targets"`,
				`"github.com/stretchr/testify/require"`,
			},
		},
		{
			name: "SafeDivide",
			contains: []string{
				`{a: 0, b: 0, exception: "ArithmeticError"}`,
				`"ret": int32(`,
				`"a": tc.a, "b": tc.b`,
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			target, ok := targets.Lookup(tc.name)
			require.True(t, ok)
			res, err := concolic.Analyze(context.Background(), target, concolic.Config{})
			require.NoError(t, err)

			src := generate(t, New(targetsPath, target), finalize.Paths(res.Tree))
			for _, s := range tc.contains {
				assert.Contains(t, src, s)
			}
			assert.NotContains(t, src, `"math"`)
		})
	}
}

func TestGenerateValues(t *testing.T) {
	target := &concolic.Target{
		Name: "mixed_kinds",
		Inputs: symbol.Symbols{
			symbol.New("f", expr.Float64),
			symbol.New("exception", expr.Int32),
			symbol.New("b", expr.Bool),
			symbol.New("c", expr.Char),
		},
	}
	v := expr.NewValuation(map[string]expr.Value{
		"f":         expr.FloatValue(expr.Float64, math.NaN()),
		"exception": expr.IntValue(expr.Int32, -3),
		"b":         expr.BoolValue(true),
		"c":         expr.IntValue(expr.Char, 'A'),
	})
	post := trace.PostCondition{
		"ret":  expr.NewVar("f", expr.Float64),
		"code": expr.NewVar("exception", expr.Int32),
	}
	paths := []*trace.Path{
		trace.NewPath(nil, trace.Ok{Valuation: v, Post: post}),
		trace.NewPath(nil, trace.DontKnow{}),
		trace.NewPath(nil, trace.Unsatisfiable{}),
	}

	g := New(targetsPath, target)
	assert.Equal(t, "TestMixedKinds", g.TestName())

	src := generate(t, g, paths)
	assert.Regexp(t, `f\s+float64`, src)
	assert.Regexp(t, `in1\s+int32`, src)
	assert.Regexp(t, `c\s+uint16`, src)
	for _, s := range []string{
		"f: float64(math.NaN()), in1: -3, b: true, c: 65",
		`"code": int32(-3)`,
		`"ret": float64(math.NaN())`,
		`"exception": tc.in1`,
		`"math"`,
	} {
		assert.Contains(t, src, s)
	}
	assert.Equal(t, 1, bytes.Count([]byte(src), []byte("{f: ")), "only realized paths become test cases")
}

func TestGenerateEmpty(t *testing.T) {
	target, _ := targets.Lookup("BoolNot")
	src := generate(t, New(targetsPath, target), nil)
	assert.Contains(t, src, "func TestBoolNot(t *testing.T)")
	assert.Regexp(t, `a\s+bool`, src)
}
