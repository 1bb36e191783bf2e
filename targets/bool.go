package targets

import (
	"github.com/ajalab/concolic"
	"github.com/ajalab/concolic/expr"
	"github.com/ajalab/concolic/value"
)

func init() {
	register("BoolNot", inputs(expr.Bool, "a"), BoolNot)
	register("BoolAnd", inputs(expr.Bool, "a", "b"), BoolAnd)
	register("BoolOr", inputs(expr.Bool, "a", "b"), BoolOr)
	register("Bool3", inputs(expr.Bool, "a", "b", "c"), Bool3)
}

// BoolNot is a test case to check NOT operation.
func BoolNot(r *concolic.Run) {
	a := r.Input("a")
	r.Return(value.Bool(r.If(a.Not())))
}

// BoolAnd is a test case to check AND operation.
func BoolAnd(r *concolic.Run) {
	a, b := r.Input("a"), r.Input("b")
	r.Return(value.Bool(r.If(a) && r.If(b)))
}

// BoolOr is a test case to check OR operation.
func BoolOr(r *concolic.Run) {
	a, b := r.Input("a"), r.Input("b")
	r.Return(value.Bool(r.If(a) || r.If(b)))
}

// Bool3 is a test case to check boolean operations
func Bool3(r *concolic.Run) {
	a, b, c := r.Input("a"), r.Input("b"), r.Input("c")
	r.Return(value.Bool(r.If(a) && r.If(b.Not()) && r.If(c)))
}
