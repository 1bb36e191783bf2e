//go:build z3
// +build z3

package solver

import (
	"strconv"

	"github.com/ajalab/concolic/expr"
	"github.com/mitchellh/go-z3"
	"github.com/pkg/errors"
)

// Z3 is an SMT solver over booleans and integers backed by Z3.
//
// Integer variables are modelled as unbounded integers restricted to the
// range of their kind; wrap-around is not modelled. Frames are kept on the Go
// side and every Solve asserts the current stack into a fresh Z3 solver.
type Z3 struct {
	frames
	opts Options
	cfg  *z3.Config
	ctx  *z3.Context
}

// NewZ3 creates a Z3 solver.
func NewZ3(opts Options) (Context, error) {
	opts = DefaultOptions().Merge(opts)
	cfg := z3.NewConfig()
	if opts.Timeout > 0 {
		cfg.SetParamValue("timeout", strconv.FormatInt(opts.Timeout.Milliseconds(), 10))
	}
	return &Z3{opts: opts, cfg: cfg, ctx: z3.NewContext(cfg)}, nil
}

// Close releases the Z3 context.
func (s *Z3) Close() error {
	s.ctx.Close()
	s.cfg.Close()
	return nil
}

// Push opens a new frame.
func (s *Z3) Push() error {
	s.push()
	return nil
}

// Pop discards the n innermost frames.
func (s *Z3) Pop(n int) error {
	return s.pop(n)
}

// Add asserts constraints in the innermost frame.
func (s *Z3) Add(constraints ...expr.Expr) error {
	if err := checkBool(constraints); err != nil {
		return err
	}
	t := &z3Translator{ctx: s.ctx, vars: map[string]*z3.AST{}}
	for _, c := range constraints {
		if _, err := t.ast(c); err != nil {
			return err
		}
	}
	s.add(constraints...)
	return nil
}

// Solve checks the conjunction of all assertions.
func (s *Z3) Solve() (Result, expr.Valuation, error) {
	t := &z3Translator{ctx: s.ctx, vars: map[string]*z3.AST{}, kinds: map[string]expr.Kind{}}
	solver := s.ctx.NewSolver()
	defer solver.Close()

	for _, a := range s.assertions() {
		ast, err := t.ast(a)
		if err != nil {
			return DontKnow, expr.Valuation{}, err
		}
		solver.Assert(ast)
	}
	for _, r := range t.ranges {
		solver.Assert(r)
	}

	switch solver.Check() {
	case z3.True:
		model := solver.Model()
		defer model.Close()
		m := make(map[string]expr.Value, len(t.vars))
		assignments := model.Assignments()
		for name, k := range t.kinds {
			a, ok := assignments[name]
			if !ok {
				m[name] = expr.Zero(k)
				continue
			}
			if k == expr.Bool {
				m[name] = expr.BoolValue(a.String() == "true")
			} else {
				m[name] = expr.IntValue(k, int64(a.Int()))
			}
		}
		return Sat, expr.NewValuation(m), nil
	case z3.False:
		return Unsat, expr.Valuation{}, nil
	}
	return DontKnow, expr.Valuation{}, nil
}

type z3Translator struct {
	ctx    *z3.Context
	vars   map[string]*z3.AST
	kinds  map[string]expr.Kind
	ranges []*z3.AST
}

func (t *z3Translator) variable(x *expr.Var) (*z3.AST, error) {
	if v, ok := t.vars[x.Name]; ok {
		return v, nil
	}
	var v *z3.AST
	switch {
	case x.Type == expr.Bool:
		v = t.ctx.Const(t.ctx.Symbol(x.Name), t.ctx.BoolSort())
	case x.Type.IsInteger():
		v = t.ctx.Const(t.ctx.Symbol(x.Name), t.ctx.IntSort())
		if x.Type != expr.Int64 {
			t.ranges = append(t.ranges,
				v.Ge(t.ctx.Int(int(x.Type.Min()), t.ctx.IntSort())),
				v.Le(t.ctx.Int(int(x.Type.Max()), t.ctx.IntSort())))
		}
	default:
		return nil, errors.Wrapf(ErrUnsupported, "variable %s of kind %v", x.Name, x.Type)
	}
	t.vars[x.Name] = v
	if t.kinds != nil {
		t.kinds[x.Name] = x.Type
	}
	return v, nil
}

func (t *z3Translator) ast(e expr.Expr) (*z3.AST, error) {
	switch e := e.(type) {
	case expr.Const:
		switch k := e.Kind(); {
		case k == expr.Bool:
			if e.Value.Bool() {
				return t.ctx.True(), nil
			}
			return t.ctx.False(), nil
		case k.IsInteger():
			return t.ctx.Int(int(e.Value.Int()), t.ctx.IntSort()), nil
		}
	case *expr.Var:
		return t.variable(e)
	case *expr.Unary:
		x, err := t.ast(e.X)
		if err != nil {
			return nil, err
		}
		switch e.Op {
		case expr.OpNot:
			return x.Not(), nil
		case expr.OpNeg:
			if e.X.Kind().IsInteger() {
				return t.ctx.Int(0, t.ctx.IntSort()).Sub(x), nil
			}
		}
	case *expr.Logic:
		args := make([]*z3.AST, len(e.Args))
		for i, arg := range e.Args {
			a, err := t.ast(arg)
			if err != nil {
				return nil, err
			}
			args[i] = a
		}
		if e.Op == expr.OpAnd {
			return args[0].And(args[1:]...), nil
		}
		return args[0].Or(args[1:]...), nil
	case *expr.Binary:
		if e.X.Kind().IsFloat() {
			break
		}
		x, err := t.ast(e.X)
		if err != nil {
			return nil, err
		}
		y, err := t.ast(e.Y)
		if err != nil {
			return nil, err
		}
		switch e.Op {
		case expr.OpAdd:
			return x.Add(y), nil
		case expr.OpSub:
			return x.Sub(y), nil
		case expr.OpMul:
			return x.Mul(y), nil
		case expr.OpEq:
			return x.Eq(y), nil
		case expr.OpNe:
			return x.Eq(y).Not(), nil
		case expr.OpLt:
			return x.Lt(y), nil
		case expr.OpLe:
			return x.Le(y), nil
		case expr.OpGt:
			return x.Gt(y), nil
		case expr.OpGe:
			return x.Ge(y), nil
		case expr.OpBitAnd:
			if e.X.Kind() == expr.Bool {
				return x.And(y), nil
			}
		case expr.OpBitOr:
			if e.X.Kind() == expr.Bool {
				return x.Or(y), nil
			}
		case expr.OpBitXor:
			if e.X.Kind() == expr.Bool {
				return x.Xor(y), nil
			}
		}
	case *expr.Conversion:
		from := e.X.Kind()
		if e.To.IsInteger() && from.IsInteger() && e.To.Bits() > from.Bits() && (e.To != expr.Char || from == expr.Char) {
			return t.ast(e.X)
		}
	}
	return nil, errors.Wrapf(ErrUnsupported, "%v", e)
}
