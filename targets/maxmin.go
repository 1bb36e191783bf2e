package targets

import (
	"github.com/ajalab/concolic"
	"github.com/ajalab/concolic/expr"
)

func init() {
	register("Max2", inputs(expr.Int64, "a", "b"), Max2)
	register("Max3", inputs(expr.Int64, "a", "b", "c"), Max3)
	register("Min2", inputs(expr.Int64, "a", "b"), Min2)
	register("Min3", inputs(expr.Int64, "a", "b", "c"), Min3)
}

// Max2 returns the larger of a and b.
func Max2(r *concolic.Run) {
	a, b := r.Input("a"), r.Input("b")
	if r.If(a.Gt(b)) {
		r.Return(a)
		return
	}
	r.Return(b)
}

// Max3 returns the largest of a, b and c.
func Max3(r *concolic.Run) {
	a, b, c := r.Input("a"), r.Input("b"), r.Input("c")
	if r.If(a.Gt(b)) {
		if r.If(c.Gt(a)) {
			r.Return(c)
			return
		}
		r.Return(a)
		return
	}
	if r.If(c.Gt(b)) {
		r.Return(c)
		return
	}
	r.Return(b)
}

// Min2 returns the smaller of a and b.
func Min2(r *concolic.Run) {
	a, b := r.Input("a"), r.Input("b")
	if r.If(a.Le(b)) {
		r.Return(a)
		return
	}
	r.Return(b)
}

// Min3 returns the smallest of a, b and c.
func Min3(r *concolic.Run) {
	a, b, c := r.Input("a"), r.Input("b"), r.Input("c")
	if r.If(a.Le(b)) {
		if r.If(c.Le(a)) {
			r.Return(c)
			return
		}
		r.Return(a)
		return
	}
	if r.If(c.Le(b)) {
		r.Return(c)
		return
	}
	r.Return(b)
}
