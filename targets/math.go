package targets

import (
	"github.com/ajalab/concolic"
	"github.com/ajalab/concolic/expr"
	"github.com/ajalab/concolic/value"
)

func init() {
	register("QuadraticEq1", inputs(expr.Int32, "x"), QuadraticEq1)
	register("AddOverflow", inputs(expr.Int8, "n"), AddOverflow)
}

// QuadraticEq1 reports which solution of x^2 - 3x - 4 = 0 x is, if any.
func QuadraticEq1(r *concolic.Run) {
	x := r.Input("x")
	lhs := x.Mul(x).Sub(value.Int32(3).Mul(x)).Sub(value.Int32(4))
	if r.If(lhs.Eq(value.Int32(0))) {
		if r.If(x.Gt(value.Int32(0))) {
			r.Set("greater", value.Bool(true))
		} else {
			r.Set("greater", value.Bool(false))
		}
		return
	}
	r.Return(lhs)
}

// AddOverflow reports whether n + 1 wraps around.
func AddOverflow(r *concolic.Run) {
	n := r.Input("n")
	r.Return(value.Bool(r.If(n.Add(value.Int8(1)).Lt(n))))
}
