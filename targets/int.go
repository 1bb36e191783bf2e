package targets

import (
	"github.com/ajalab/concolic"
	"github.com/ajalab/concolic/expr"
	"github.com/ajalab/concolic/value"
)

func init() {
	register("IntNotEqual", inputs(expr.Int64, "a"), IntNotEqual)
	register("Neg1", inputs(expr.Int64, "a"), Neg1)
	register("FailOnFive", inputs(expr.Int32, "x"), FailOnFive)
	register("UnsatAnd", inputs(expr.Int32, "x"), UnsatAnd)
	register("SafeDivide", inputs(expr.Int32, "a", "b"), SafeDivide)
	register("Clamp", inputs(expr.Int32, "x"), Clamp)
}

// IntNotEqual is a test case to check != operator.
func IntNotEqual(r *concolic.Run) {
	a := r.Input("a")
	r.Return(value.Bool(r.If(a.Ne(value.Int64(100)))))
}

// Neg1 is a test case to check integer negation.
func Neg1(r *concolic.Run) {
	a := r.Input("a")
	r.Return(value.Bool(r.If(a.Neg().Eq(value.Int64(5)))))
}

// FailOnFive fails for x == 5.
func FailOnFive(r *concolic.Run) {
	x := r.Input("x")
	if r.If(x.Gt(value.Int32(0))) {
		if r.If(x.Eq(value.Int32(5))) {
			r.Fail("AssertionError", "fail")
		}
	}
}

// UnsatAnd has a branch no input can take.
func UnsatAnd(r *concolic.Run) {
	x := r.Input("x")
	if r.If(x.Gt(value.Int32(0))) && r.If(x.Lt(value.Int32(0))) {
		r.Return(value.Int32(1))
		return
	}
	r.Return(value.Int32(2))
}

// SafeDivide divides a by b and fails with an ArithmeticError for b == 0.
func SafeDivide(r *concolic.Run) {
	a, b := r.Input("a"), r.Input("b")
	q := r.Div(a, b)
	if r.If(q.Gt(value.Int32(10))) {
		r.Return(value.Int32(10))
		return
	}
	r.Return(q)
}

// Clamp clamps x to [0, 100] and logs the result. The branches of the logging
// code are not explored.
func Clamp(r *concolic.Run) {
	x := r.Input("x")
	var ret value.Pair
	switch {
	case r.If(x.Lt(value.Int32(0))):
		ret = value.Int32(0)
	case r.If(x.Gt(value.Int32(100))):
		ret = value.Int32(100)
	default:
		ret = x
	}
	r.Suspend()
	if r.If(ret.Gt(value.Int32(50))) {
		r.Set("upper", value.Bool(true))
	}
	r.Resume()
	r.Return(ret)
}
