// Package value pairs concrete primitive values with the symbolic
// expressions describing them.
package value

import (
	"fmt"

	"github.com/ajalab/concolic/expr"
)

// Pair is a concrete value together with its symbolic description.
// If no symbolic information is attached, the symbolic part is a constant
// wrapping the concrete value.
type Pair struct {
	concrete expr.Value
	symbolic expr.Expr
}

// Of returns a pair without symbolic information.
func Of(v expr.Value) Pair {
	return Pair{concrete: v, symbolic: expr.Constant(v)}
}

// New returns a pair of a concrete value and its symbolic description.
func New(concrete expr.Value, symbolic expr.Expr) Pair {
	if symbolic == nil {
		return Of(concrete)
	}
	if symbolic.Kind() != concrete.Kind() {
		panic(fmt.Sprintf("value: concrete %v and symbolic %v kinds differ", concrete.Kind(), symbolic.Kind()))
	}
	return Pair{concrete: concrete, symbolic: symbolic}
}

// Bool returns a constant boolean pair.
func Bool(b bool) Pair { return Of(expr.BoolValue(b)) }

// Int8 returns a constant int8 pair.
func Int8(i int8) Pair { return Of(expr.IntValue(expr.Int8, int64(i))) }

// Int16 returns a constant int16 pair.
func Int16(i int16) Pair { return Of(expr.IntValue(expr.Int16, int64(i))) }

// Int32 returns a constant int32 pair.
func Int32(i int32) Pair { return Of(expr.IntValue(expr.Int32, int64(i))) }

// Int64 returns a constant int64 pair.
func Int64(i int64) Pair { return Of(expr.IntValue(expr.Int64, i)) }

// Char returns a constant char pair.
func Char(c uint16) Pair { return Of(expr.IntValue(expr.Char, int64(c))) }

// Float32 returns a constant float32 pair.
func Float32(f float32) Pair { return Of(expr.FloatValue(expr.Float32, float64(f))) }

// Float64 returns a constant float64 pair.
func Float64(f float64) Pair { return Of(expr.FloatValue(expr.Float64, f)) }

// Concrete returns the concrete value.
func (p Pair) Concrete() expr.Value { return p.concrete }

// Symbolic returns the symbolic expression.
func (p Pair) Symbolic() expr.Expr {
	if p.symbolic == nil {
		return expr.Constant(p.concrete)
	}
	return p.symbolic
}

// Kind returns the primitive kind of the pair.
func (p Pair) Kind() expr.Kind { return p.concrete.Kind() }

// IsSymbolic reports whether the pair depends on a symbolic variable.
func (p Pair) IsSymbolic() bool {
	_, ok := p.Symbolic().(expr.Const)
	return !ok
}

// Consistent reports whether the symbolic part evaluates to the concrete part under v.
func (p Pair) Consistent(v expr.Valuation) bool {
	actual, err := p.Symbolic().Eval(v)
	return err == nil && actual.Equal(p.concrete)
}

func (p Pair) String() string {
	if !p.IsSymbolic() {
		return p.concrete.String()
	}
	return fmt.Sprintf("%v[%v]", p.concrete, p.symbolic)
}

func (p Pair) check(q Pair, op expr.Op) {
	if p.Kind() != q.Kind() {
		panic(fmt.Sprintf("value: mismatched kinds: %v %v %v", p.Kind(), op, q.Kind()))
	}
}

func (p Pair) apply(q Pair, op expr.Op, build func(x, y expr.Expr) expr.Expr) Pair {
	p.check(q, op)
	concrete, err := build(expr.Constant(p.concrete), expr.Constant(q.concrete)).Eval(expr.Valuation{})
	if err != nil {
		panic(fmt.Sprintf("value: %v %v %v: %v", p.concrete, op, q.concrete, err))
	}
	if !p.IsSymbolic() && !q.IsSymbolic() {
		return Of(concrete)
	}
	return Pair{concrete: concrete, symbolic: build(p.Symbolic(), q.Symbolic())}
}

// Add returns p + q.
func (p Pair) Add(q Pair) Pair { return p.apply(q, expr.OpAdd, expr.Add) }

// Sub returns p - q.
func (p Pair) Sub(q Pair) Pair { return p.apply(q, expr.OpSub, expr.Sub) }

// Mul returns p * q.
func (p Pair) Mul(q Pair) Pair { return p.apply(q, expr.OpMul, expr.Mul) }

// Quo returns p / q. Integer division by a concrete zero panics; hosts
// that want to explore the zero divisor use Run.Div instead.
func (p Pair) Quo(q Pair) Pair { return p.apply(q, expr.OpDiv, expr.Div) }

// Rem returns p % q.
func (p Pair) Rem(q Pair) Pair { return p.apply(q, expr.OpRem, expr.Rem) }

// And returns the bitwise (or, for booleans, non-short-circuit logical) and of p and q.
func (p Pair) And(q Pair) Pair { return p.apply(q, expr.OpBitAnd, expr.BitAnd) }

// Or returns the bitwise (or, for booleans, non-short-circuit logical) or of p and q.
func (p Pair) Or(q Pair) Pair { return p.apply(q, expr.OpBitOr, expr.BitOr) }

// Xor returns p ^ q.
func (p Pair) Xor(q Pair) Pair { return p.apply(q, expr.OpBitXor, expr.BitXor) }

// Shl returns p << q.
func (p Pair) Shl(q Pair) Pair { return p.apply(q, expr.OpShl, expr.Shl) }

// Shr returns p >> q.
func (p Pair) Shr(q Pair) Pair { return p.apply(q, expr.OpShr, expr.Shr) }

// Eq returns p == q.
func (p Pair) Eq(q Pair) Pair { return p.apply(q, expr.OpEq, expr.Eq) }

// Ne returns p != q.
func (p Pair) Ne(q Pair) Pair { return p.apply(q, expr.OpNe, expr.Ne) }

// Lt returns p < q.
func (p Pair) Lt(q Pair) Pair { return p.apply(q, expr.OpLt, expr.Lt) }

// Le returns p <= q.
func (p Pair) Le(q Pair) Pair { return p.apply(q, expr.OpLe, expr.Le) }

// Gt returns p > q.
func (p Pair) Gt(q Pair) Pair { return p.apply(q, expr.OpGt, expr.Gt) }

// Ge returns p >= q.
func (p Pair) Ge(q Pair) Pair { return p.apply(q, expr.OpGe, expr.Ge) }

// Neg returns -p.
func (p Pair) Neg() Pair {
	return p.unary(expr.Neg)
}

// Not returns the logical negation of a boolean pair.
func (p Pair) Not() Pair {
	if p.Kind() != expr.Bool {
		panic(fmt.Sprintf("value: ! applied to %v", p.Kind()))
	}
	return p.unary(expr.Not)
}

// Compl returns the bitwise complement ^p.
func (p Pair) Compl() Pair {
	return p.unary(expr.Compl)
}

// Convert converts p to kind k.
func (p Pair) Convert(k expr.Kind) Pair {
	return p.unary(func(x expr.Expr) expr.Expr { return expr.Convert(k, x) })
}

func (p Pair) unary(build func(expr.Expr) expr.Expr) Pair {
	concrete, err := build(expr.Constant(p.concrete)).Eval(expr.Valuation{})
	if err != nil {
		panic(fmt.Sprintf("value: %v", err))
	}
	if !p.IsSymbolic() {
		return Of(concrete)
	}
	return Pair{concrete: concrete, symbolic: build(p.Symbolic())}
}
