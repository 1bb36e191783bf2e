package solver

import (
	"testing"

	"github.com/ajalab/concolic/expr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func i32(i int64) expr.Expr {
	return expr.Constant(expr.IntValue(expr.Int32, i))
}

func i8(i int64) expr.Expr {
	return expr.Constant(expr.IntValue(expr.Int8, i))
}

func TestNew(t *testing.T) {
	for _, name := range []string{"", "enum", "gini"} {
		s, err := New(name, Options{})
		require.NoError(t, err, name)
		assert.NotNil(t, s)
	}
	_, err := New("cvc5", Options{})
	assert.Error(t, err)
}

func TestOptionsMerge(t *testing.T) {
	o := DefaultOptions().Merge(Options{Name: "gini"})
	assert.Equal(t, "gini", o.Name)
	assert.Equal(t, DefaultOptions().MaxCandidates, o.MaxCandidates)
}

func TestEnumStack(t *testing.T) {
	x := expr.NewVar("x", expr.Int32)
	s := NewEnum(Options{})

	require.NoError(t, s.Push())
	require.NoError(t, s.Add(expr.Gt(x, i32(0))))
	res, v, err := s.Solve()
	require.NoError(t, err)
	require.Equal(t, Sat, res)
	xv, _ := v.Get("x")
	assert.Equal(t, int64(1), xv.Int())

	require.NoError(t, s.Push())
	require.NoError(t, s.Add(expr.Eq(x, i32(5))))
	res, v, err = s.Solve()
	require.NoError(t, err)
	require.Equal(t, Sat, res)
	xv, _ = v.Get("x")
	assert.Equal(t, int64(5), xv.Int())

	require.NoError(t, s.Pop(1))
	require.NoError(t, s.Push())
	require.NoError(t, s.Add(expr.Ne(x, i32(5))))
	res, v, err = s.Solve()
	require.NoError(t, err)
	require.Equal(t, Sat, res)
	xv, _ = v.Get("x")
	assert.Equal(t, int64(1), xv.Int())

	require.NoError(t, s.Pop(2))
	assert.ErrorIs(t, s.Pop(1), ErrStack)
}

func TestEnumNegativeBound(t *testing.T) {
	x := expr.NewVar("x", expr.Int32)
	s := NewEnum(Options{})
	require.NoError(t, s.Add(expr.Le(x, i32(-10))))
	res, v, err := s.Solve()
	require.NoError(t, err)
	require.Equal(t, Sat, res)
	xv, _ := v.Get("x")
	assert.Equal(t, int64(-10), xv.Int())
}

func TestEnumUnsat(t *testing.T) {
	testCases := []struct {
		name string
		c    expr.Expr
		want Result
	}{
		{
			name: "contradicting bounds",
			c: expr.And(
				expr.Gt(expr.NewVar("x", expr.Int32), i32(0)),
				expr.Lt(expr.NewVar("x", expr.Int32), i32(0))),
			want: Unsat,
		},
		{
			name: "full domain",
			c:    expr.Eq(expr.Mul(expr.NewVar("y", expr.Int8), i8(2)), i8(1)),
			want: Unsat,
		},
		{
			name: "incomplete search",
			c:    expr.Eq(expr.Mul(expr.NewVar("x", expr.Int32), i32(2)), i32(1)),
			want: DontKnow,
		},
		{
			name: "excluded singleton",
			c: expr.And(
				expr.Ne(expr.NewVar("x", expr.Int32), i32(1)),
				expr.Eq(expr.NewVar("x", expr.Int32), i32(1))),
			want: Unsat,
		},
		{
			name: "constant false",
			c:    expr.False,
			want: Unsat,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewEnum(Options{})
			require.NoError(t, s.Add(tc.c))
			res, _, err := s.Solve()
			require.NoError(t, err)
			assert.Equal(t, tc.want, res)
		})
	}
}

func TestEnumUndefined(t *testing.T) {
	x := expr.NewVar("x", expr.Int32)
	s := NewEnum(Options{})
	require.NoError(t, s.Add(expr.Eq(expr.Div(i32(10), x), i32(5))))
	res, v, err := s.Solve()
	require.NoError(t, err)
	require.Equal(t, Sat, res)
	xv, _ := v.Get("x")
	assert.Equal(t, int64(2), xv.Int())
}

func TestEnumRejectsNonBool(t *testing.T) {
	s := NewEnum(Options{})
	assert.Error(t, s.Add(expr.NewVar("x", expr.Int32)))
}

func TestGini(t *testing.T) {
	a := expr.NewVar("a", expr.Bool)
	b := expr.NewVar("b", expr.Bool)
	s := NewGini(Options{})

	require.NoError(t, s.Push())
	require.NoError(t, s.Add(expr.Or(a, b)))
	require.NoError(t, s.Push())
	require.NoError(t, s.Add(expr.Not(a)))

	res, v, err := s.Solve()
	require.NoError(t, err)
	require.Equal(t, Sat, res)
	av, _ := v.Get("a")
	bv, _ := v.Get("b")
	assert.False(t, av.Bool())
	assert.True(t, bv.Bool())

	require.NoError(t, s.Push())
	require.NoError(t, s.Add(expr.Not(b)))
	res, _, err = s.Solve()
	require.NoError(t, err)
	assert.Equal(t, Unsat, res)

	require.NoError(t, s.Pop(2))
	require.NoError(t, s.Add(expr.Eq(a, b)))
	res, v, err = s.Solve()
	require.NoError(t, err)
	require.Equal(t, Sat, res)
	av, _ = v.Get("a")
	bv, _ = v.Get("b")
	assert.True(t, av.Bool())
	assert.True(t, bv.Bool())
}

func TestGiniUnsupported(t *testing.T) {
	s := NewGini(Options{})
	err := s.Add(expr.Gt(expr.NewVar("x", expr.Int32), i32(0)))
	assert.ErrorIs(t, err, ErrUnsupported)
}
