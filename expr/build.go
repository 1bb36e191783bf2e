package expr

import "fmt"

func binary(op Op, x, y Expr) Expr {
	if x.Kind() != y.Kind() {
		panic(fmt.Sprintf("mismatched kinds: %v %v %v", x.Kind(), op, y.Kind()))
	}
	b := &Binary{Op: op, X: x, Y: y}
	return fold(b)
}

// fold replaces an expression whose operands are all constant by its value.
func fold(e Expr) Expr {
	constant := true
	first := true
	Walk(e, func(sub Expr) bool {
		if first {
			first = false
			return true
		}
		if _, ok := sub.(*Var); ok {
			constant = false
		}
		return constant
	})
	if !constant {
		return e
	}
	v, err := e.Eval(Valuation{})
	if err != nil {
		return e
	}
	return Constant(v)
}

// Add returns x + y.
func Add(x, y Expr) Expr { return binary(OpAdd, x, y) }

// Sub returns x - y.
func Sub(x, y Expr) Expr { return binary(OpSub, x, y) }

// Mul returns x * y.
func Mul(x, y Expr) Expr { return binary(OpMul, x, y) }

// Div returns x / y.
func Div(x, y Expr) Expr { return binary(OpDiv, x, y) }

// Rem returns x % y.
func Rem(x, y Expr) Expr { return binary(OpRem, x, y) }

// BitAnd returns x & y.
func BitAnd(x, y Expr) Expr { return binary(OpBitAnd, x, y) }

// BitOr returns x | y.
func BitOr(x, y Expr) Expr { return binary(OpBitOr, x, y) }

// BitXor returns x ^ y.
func BitXor(x, y Expr) Expr { return binary(OpBitXor, x, y) }

// Shl returns x << y.
func Shl(x, y Expr) Expr { return binary(OpShl, x, y) }

// Shr returns x >> y.
func Shr(x, y Expr) Expr { return binary(OpShr, x, y) }

// Eq returns x == y.
func Eq(x, y Expr) Expr { return binary(OpEq, x, y) }

// Ne returns x != y.
func Ne(x, y Expr) Expr { return binary(OpNe, x, y) }

// Lt returns x < y.
func Lt(x, y Expr) Expr { return binary(OpLt, x, y) }

// Le returns x <= y.
func Le(x, y Expr) Expr { return binary(OpLe, x, y) }

// Gt returns x > y.
func Gt(x, y Expr) Expr { return binary(OpGt, x, y) }

// Ge returns x >= y.
func Ge(x, y Expr) Expr { return binary(OpGe, x, y) }

// Neg returns -x.
func Neg(x Expr) Expr { return fold(&Unary{Op: OpNeg, X: x}) }

// Compl returns ^x.
func Compl(x Expr) Expr { return fold(&Unary{Op: OpCompl, X: x}) }

// Convert returns x converted to kind k.
func Convert(k Kind, x Expr) Expr {
	if x.Kind() == k {
		return x
	}
	return fold(&Conversion{To: k, X: x})
}

// Not returns the negation of the boolean expression x.
// Comparisons are negated by flipping their operator.
func Not(x Expr) Expr {
	switch x := x.(type) {
	case Const:
		return Constant(BoolValue(!x.Value.Bool()))
	case *Unary:
		if x.Op == OpNot {
			return x.X
		}
	case *Binary:
		if x.Op.IsComparison() && !x.X.Kind().IsFloat() {
			return &Binary{Op: x.Op.Negate(), X: x.X, Y: x.Y}
		}
	}
	return &Unary{Op: OpNot, X: x}
}

// And returns the conjunction of args. Constant operands are simplified away.
func And(args ...Expr) Expr {
	return logic(OpAnd, args)
}

// Or returns the disjunction of args. Constant operands are simplified away.
func Or(args ...Expr) Expr {
	return logic(OpOr, args)
}

func logic(op Op, args []Expr) Expr {
	unit, zero := true, false
	if op == OpOr {
		unit, zero = false, true
	}
	var kept []Expr
	for _, arg := range args {
		if c, ok := arg.(Const); ok {
			if c.Value.Bool() == zero {
				return Constant(BoolValue(zero))
			}
			continue
		}
		if l, ok := arg.(*Logic); ok && l.Op == op {
			kept = append(kept, l.Args...)
			continue
		}
		kept = append(kept, arg)
	}
	switch len(kept) {
	case 0:
		return Constant(BoolValue(unit))
	case 1:
		return kept[0]
	}
	return &Logic{Op: op, Args: kept}
}
