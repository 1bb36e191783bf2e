// Package expr defines side-effect-free symbolic expressions over typed
// primitive variables, together with their concrete evaluation.
package expr

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ErrUndefined is returned when an expression has no defined value under a
// valuation, e.g. an integer division by zero.
var ErrUndefined = errors.New("undefined value")

// UnboundError reports a variable that has no value in a valuation.
type UnboundError struct {
	Name string
}

func (e UnboundError) Error() string {
	return fmt.Sprintf("unbound variable: %s", e.Name)
}

// Expr is a symbolic expression.
type Expr interface {
	// Kind returns the type of the expression.
	Kind() Kind
	// Eval evaluates the expression under the valuation v.
	Eval(v Valuation) (Value, error)
	String() string
}

// Op is an operator of a unary, binary or logical expression.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpRem
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
	OpNot
	OpNeg
	OpCompl
)

var opNames = [...]string{"+", "-", "*", "/", "%", "&", "|", "^", "<<", ">>", "==", "!=", "<", "<=", ">", ">=", "&&", "||", "!", "-", "^"}

func (op Op) String() string {
	return opNames[op]
}

// IsComparison reports whether op yields a boolean from two operands of the same kind.
func (op Op) IsComparison() bool {
	return op >= OpEq && op <= OpGe
}

// Negate returns the comparison operator whose result is the negation of op.
func (op Op) Negate() Op {
	switch op {
	case OpEq:
		return OpNe
	case OpNe:
		return OpEq
	case OpLt:
		return OpGe
	case OpLe:
		return OpGt
	case OpGt:
		return OpLe
	case OpGe:
		return OpLt
	}
	panic(fmt.Sprintf("operator %v has no negation", op))
}

// Var is a symbolic variable.
type Var struct {
	Name string
	Type Kind
}

// NewVar returns a variable named name of kind k.
func NewVar(name string, k Kind) *Var {
	return &Var{Name: name, Type: k}
}

func (x *Var) Kind() Kind { return x.Type }

func (x *Var) Eval(v Valuation) (Value, error) {
	val, ok := v.Get(x.Name)
	if !ok {
		return Value{}, UnboundError{Name: x.Name}
	}
	if val.Kind() != x.Type {
		return val.Convert(x.Type), nil
	}
	return val, nil
}

func (x *Var) String() string { return x.Name }

// Const is a constant expression.
type Const struct {
	Value Value
}

var (
	// True is the boolean constant true.
	True = Const{Value: BoolValue(true)}
	// False is the boolean constant false.
	False = Const{Value: BoolValue(false)}
)

// Constant returns a constant expression wrapping v.
func Constant(v Value) Const {
	return Const{Value: v}
}

func (c Const) Kind() Kind                      { return c.Value.Kind() }
func (c Const) Eval(_ Valuation) (Value, error) { return c.Value, nil }
func (c Const) String() string                  { return c.Value.String() }

// Unary is a negation, logical not or bitwise complement.
type Unary struct {
	Op Op
	X  Expr
}

func (u *Unary) Kind() Kind { return u.X.Kind() }

func (u *Unary) Eval(v Valuation) (Value, error) {
	x, err := u.X.Eval(v)
	if err != nil {
		return Value{}, err
	}
	return evalUnary(u.Op, x)
}

func (u *Unary) String() string {
	return fmt.Sprintf("%s(%s)", u.Op, u.X)
}

func evalUnary(op Op, x Value) (Value, error) {
	k := x.Kind()
	switch op {
	case OpNot:
		return BoolValue(!x.Bool()), nil
	case OpNeg:
		if k.IsFloat() {
			return FloatValue(k, -x.Float()), nil
		}
		return IntValue(k, -x.Int()), nil
	case OpCompl:
		if k.IsInteger() {
			return IntValue(k, ^x.Int()), nil
		}
	}
	return Value{}, errors.Errorf("operator %v is not defined on %v", op, k)
}

// Binary is an arithmetic, bitwise or comparison expression over two
// operands of the same kind.
type Binary struct {
	Op   Op
	X, Y Expr
}

func (b *Binary) Kind() Kind {
	if b.Op.IsComparison() {
		return Bool
	}
	return b.X.Kind()
}

func (b *Binary) Eval(v Valuation) (Value, error) {
	x, err := b.X.Eval(v)
	if err != nil {
		return Value{}, err
	}
	y, err := b.Y.Eval(v)
	if err != nil {
		return Value{}, err
	}
	return evalBinary(b.Op, x, y)
}

func (b *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", b.X, b.Op, b.Y)
}

func evalBinary(op Op, x, y Value) (Value, error) {
	k := x.Kind()
	if op.IsComparison() {
		return BoolValue(compare(op, x, y)), nil
	}
	if k.IsFloat() {
		a, b := x.Float(), y.Float()
		switch op {
		case OpAdd:
			return FloatValue(k, a+b), nil
		case OpSub:
			return FloatValue(k, a-b), nil
		case OpMul:
			return FloatValue(k, a*b), nil
		case OpDiv:
			return FloatValue(k, a/b), nil
		case OpRem:
			return FloatValue(k, math.Mod(a, b)), nil
		}
		return Value{}, errors.Errorf("operator %v is not defined on %v", op, k)
	}
	if k == Bool {
		a, b := x.Bool(), y.Bool()
		switch op {
		case OpBitAnd:
			return BoolValue(a && b), nil
		case OpBitOr:
			return BoolValue(a || b), nil
		case OpBitXor:
			return BoolValue(a != b), nil
		}
		return Value{}, errors.Errorf("operator %v is not defined on %v", op, k)
	}

	a, b := x.Int(), y.Int()
	switch op {
	case OpAdd:
		return IntValue(k, a+b), nil
	case OpSub:
		return IntValue(k, a-b), nil
	case OpMul:
		return IntValue(k, a*b), nil
	case OpDiv:
		if b == 0 {
			return Value{}, ErrUndefined
		}
		return IntValue(k, a/b), nil
	case OpRem:
		if b == 0 {
			return Value{}, ErrUndefined
		}
		return IntValue(k, a%b), nil
	case OpBitAnd:
		return IntValue(k, a&b), nil
	case OpBitOr:
		return IntValue(k, a|b), nil
	case OpBitXor:
		return IntValue(k, a^b), nil
	case OpShl:
		if b < 0 {
			return Value{}, ErrUndefined
		}
		if uint64(b) >= uint64(k.Bits()) {
			return IntValue(k, 0), nil
		}
		return IntValue(k, a<<uint(b)), nil
	case OpShr:
		if b < 0 {
			return Value{}, ErrUndefined
		}
		if uint64(b) >= uint64(k.Bits()) {
			b = int64(k.Bits()) - 1
			if k == Char {
				return IntValue(k, 0), nil
			}
		}
		return IntValue(k, a>>uint(b)), nil
	}
	return Value{}, errors.Errorf("operator %v is not defined on %v", op, k)
}

func compare(op Op, x, y Value) bool {
	if x.Kind().IsFloat() {
		a, b := x.Float(), y.Float()
		switch op {
		case OpEq:
			return a == b
		case OpNe:
			return a != b
		case OpLt:
			return a < b
		case OpLe:
			return a <= b
		case OpGt:
			return a > b
		}
		return a >= b
	}
	a, b := x.Int(), y.Int()
	switch op {
	case OpEq:
		return a == b
	case OpNe:
		return a != b
	case OpLt:
		return a < b
	case OpLe:
		return a <= b
	case OpGt:
		return a > b
	}
	return a >= b
}

// Logic is an n-ary conjunction or disjunction.
type Logic struct {
	Op   Op
	Args []Expr
}

func (l *Logic) Kind() Kind { return Bool }

func (l *Logic) Eval(v Valuation) (Value, error) {
	// Both connectives are evaluated strictly: an undefined operand makes the
	// whole formula undefined.
	result := l.Op == OpAnd
	for _, arg := range l.Args {
		x, err := arg.Eval(v)
		if err != nil {
			return Value{}, err
		}
		if l.Op == OpAnd {
			result = result && x.Bool()
		} else {
			result = result || x.Bool()
		}
	}
	return BoolValue(result), nil
}

func (l *Logic) String() string {
	args := make([]string, len(l.Args))
	for i, arg := range l.Args {
		args[i] = arg.String()
	}
	return "(" + strings.Join(args, " "+l.Op.String()+" ") + ")"
}

// Conversion converts an expression to another kind.
type Conversion struct {
	To Kind
	X  Expr
}

func (c *Conversion) Kind() Kind { return c.To }

func (c *Conversion) Eval(v Valuation) (Value, error) {
	x, err := c.X.Eval(v)
	if err != nil {
		return Value{}, err
	}
	return x.Convert(c.To), nil
}

func (c *Conversion) String() string {
	return fmt.Sprintf("%s(%s)", c.To, c.X)
}

// Walk traverses e in depth-first order. If fn returns false, the children
// of the visited node are skipped.
func Walk(e Expr, fn func(Expr) bool) {
	if !fn(e) {
		return
	}
	switch e := e.(type) {
	case *Unary:
		Walk(e.X, fn)
	case *Binary:
		Walk(e.X, fn)
		Walk(e.Y, fn)
	case *Logic:
		for _, arg := range e.Args {
			Walk(arg, fn)
		}
	case *Conversion:
		Walk(e.X, fn)
	}
}

// Vars returns the distinct variables occurring in es, sorted by name.
func Vars(es ...Expr) []*Var {
	seen := make(map[string]*Var)
	for _, e := range es {
		Walk(e, func(e Expr) bool {
			if x, ok := e.(*Var); ok {
				seen[x.Name] = x
			}
			return true
		})
	}
	vars := make([]*Var, 0, len(seen))
	for _, x := range seen {
		vars = append(vars, x)
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].Name < vars[j].Name })
	return vars
}

// Constants returns the integer constants occurring in es.
func Constants(es ...Expr) []Value {
	var consts []Value
	for _, e := range es {
		Walk(e, func(e Expr) bool {
			if c, ok := e.(Const); ok && c.Kind() != Bool {
				consts = append(consts, c.Value)
			}
			return true
		})
	}
	return consts
}

// IsTrue reports whether e evaluates to true under v. Evaluation errors are returned as is.
func IsTrue(e Expr, v Valuation) (bool, error) {
	x, err := e.Eval(v)
	if err != nil {
		return false, err
	}
	return x.Bool(), nil
}
