package targets

import (
	"github.com/ajalab/concolic"
	"github.com/ajalab/concolic/expr"
	"github.com/ajalab/concolic/value"
)

func init() {
	register("Sort2", inputs(expr.Int64, "a", "b"), Sort2)
	register("Sort3", inputs(expr.Int64, "a", "b", "c"), Sort3)
	register("ArrayIncreasing", inputs(expr.Int64, "x0", "x1", "x2", "x3", "x4"), ArrayIncreasing)
}

func setSorted(r *concolic.Run, x, y, z value.Pair) {
	r.Set("x", x)
	r.Set("y", y)
	r.Set("z", z)
}

// Sort2 sets x and y to a and b in increasing order.
func Sort2(r *concolic.Run) {
	a, b := r.Input("a"), r.Input("b")
	if r.If(a.Lt(b)) {
		r.Set("x", a)
		r.Set("y", b)
		return
	}
	r.Set("x", b)
	r.Set("y", a)
}

// Sort3 sets x, y and z to a, b and c in increasing order.
func Sort3(r *concolic.Run) {
	a, b, c := r.Input("a"), r.Input("b"), r.Input("c")
	if r.If(a.Lt(b)) {
		switch {
		case r.If(c.Lt(a)):
			setSorted(r, c, a, b)
		case r.If(c.Lt(b)):
			setSorted(r, a, c, b)
		default:
			setSorted(r, a, b, c)
		}
		return
	}
	switch {
	case r.If(c.Lt(b)):
		setSorted(r, c, b, a)
	case r.If(c.Lt(a)):
		setSorted(r, b, c, a)
	default:
		setSorted(r, b, a, c)
	}
}

// ArrayIncreasing reports whether x0, ..., x4 are strictly increasing.
func ArrayIncreasing(r *concolic.Run) {
	xs := []value.Pair{r.Input("x0"), r.Input("x1"), r.Input("x2"), r.Input("x3"), r.Input("x4")}
	i := 0
	for ; i < len(xs)-1; i++ {
		if r.If(xs[i].Ge(xs[i+1])) {
			break
		}
	}
	r.Return(value.Bool(i == len(xs)-1))
}
