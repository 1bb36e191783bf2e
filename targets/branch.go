package targets

import (
	"github.com/ajalab/concolic"
	"github.com/ajalab/concolic/expr"
	"github.com/ajalab/concolic/value"
)

func init() {
	register("BranchLessThan", inputs(expr.Int32, "x"), BranchLessThan)
	register("BranchAnd", inputs(expr.Int32, "x"), BranchAnd)
	register("BranchMultiple", inputs(expr.Int32, "x"), BranchMultiple)
	register("BranchPhi", inputs(expr.Int64, "x"), BranchPhi)
	register("BranchThreeVars", inputs(expr.Int32, "x", "y", "z"), BranchThreeVars)
	register("BranchSwitch", inputs(expr.Int64, "x"), BranchSwitch)
}

// BranchLessThan is a test case for checking < operator.
func BranchLessThan(r *concolic.Run) {
	x := r.Input("x")
	if r.If(x.Lt(value.Int32(5))) {
		r.Set("small", value.Bool(true))
	}
}

// BranchAnd is a test case for checking && condition.
func BranchAnd(r *concolic.Run) {
	x := r.Input("x")
	if r.If(value.Int32(0).Lt(x)) && r.If(x.Lt(value.Int32(5))) {
		r.Set("inRange", value.Bool(true))
	}
}

// BranchMultiple is a test case for checking consecutive if statements.
// The second condition re-checks a bound already implied by the first.
func BranchMultiple(r *concolic.Run) {
	x := r.Input("x")
	switch {
	case r.If(x.Lt(value.Int32(5))):
		r.Return(value.Int32(0))
	case r.If(value.Int32(5).Le(x)) && r.If(x.Lt(value.Int32(10))):
		r.Return(value.Int32(1))
	default:
		r.Return(value.Int32(2))
	}
}

// BranchPhi is a test case for a branch on a value that does not depend on the input.
func BranchPhi(r *concolic.Run) {
	x := r.Input("x")
	y := value.Int64(0)
	if r.If(x.Gt(value.Int64(5))) {
		y = value.Int64(1)
	}
	if r.If(y.Eq(value.Int64(1))) {
		r.Return(value.Bool(true))
		return
	}
	r.Return(value.Bool(false))
}

// BranchThreeVars is a test case for checking multiple arguments.
func BranchThreeVars(r *concolic.Run) {
	x, y, z := r.Input("x"), r.Input("y"), r.Input("z")
	if r.If(x.Add(y).Add(z).Gt(value.Int32(50))) {
		r.Return(value.Bool(true))
		return
	}
	r.Return(value.Bool(false))
}

// BranchSwitch is a test case for checking a switch statement.
func BranchSwitch(r *concolic.Run) {
	x := r.Input("x")
	r.Return(value.Int64(int64(r.Switch(x, 0, 1, 2))))
}
