package solver

import (
	"github.com/ajalab/concolic/expr"
	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
)

// Gini is a SAT solver for purely boolean constraints.
//
// Assertions are translated into an and-inverter circuit and solved under
// assumptions, so Push and Pop never touch the underlying solver.
type Gini struct {
	frames
	opts Options
}

// NewGini creates a boolean SAT solver.
func NewGini(opts Options) *Gini {
	return &Gini{opts: DefaultOptions().Merge(opts)}
}

// Push opens a new frame.
func (s *Gini) Push() error {
	s.push()
	return nil
}

// Pop discards the n innermost frames.
func (s *Gini) Pop(n int) error {
	return s.pop(n)
}

// Add asserts constraints in the innermost frame.
// Constraints over non-boolean variables are rejected with ErrUnsupported.
func (s *Gini) Add(constraints ...expr.Expr) error {
	if err := checkBool(constraints); err != nil {
		return err
	}
	for _, c := range constraints {
		if err := (&circuit{c: logic.NewC(), vars: map[string]z.Lit{}}).check(c); err != nil {
			return err
		}
	}
	s.add(constraints...)
	return nil
}

// Solve checks the conjunction of all assertions.
func (s *Gini) Solve() (Result, expr.Valuation, error) {
	cc := &circuit{c: logic.NewC(), vars: map[string]z.Lit{}}
	roots := make([]z.Lit, 0)
	for _, a := range s.assertions() {
		m, err := cc.lit(a)
		if err != nil {
			return DontKnow, expr.Valuation{}, err
		}
		roots = append(roots, m)
	}

	g := gini.New()
	cc.c.ToCnf(g)
	g.Assume(roots...)

	var res int
	if s.opts.Timeout > 0 {
		res = g.Try(s.opts.Timeout)
	} else {
		res = g.Solve()
	}
	switch res {
	case 1:
		m := make(map[string]expr.Value, len(cc.vars))
		for name, x := range cc.vars {
			m[name] = expr.BoolValue(g.Value(x))
		}
		return Sat, expr.NewValuation(m), nil
	case -1:
		return Unsat, expr.Valuation{}, nil
	}
	return DontKnow, expr.Valuation{}, nil
}

type circuit struct {
	c    *logic.C
	vars map[string]z.Lit
}

func (cc *circuit) check(e expr.Expr) error {
	_, err := cc.lit(e)
	return err
}

// lit returns the literal of the boolean expression e.
func (cc *circuit) lit(e expr.Expr) (z.Lit, error) {
	if e.Kind() != expr.Bool {
		return z.LitNull, errors.Wrapf(ErrUnsupported, "%v is not boolean", e)
	}
	switch e := e.(type) {
	case expr.Const:
		if e.Value.Bool() {
			return cc.c.T, nil
		}
		return cc.c.F, nil
	case *expr.Var:
		m, ok := cc.vars[e.Name]
		if !ok {
			m = cc.c.Lit()
			cc.vars[e.Name] = m
		}
		return m, nil
	case *expr.Unary:
		if e.Op != expr.OpNot {
			break
		}
		x, err := cc.lit(e.X)
		if err != nil {
			return z.LitNull, err
		}
		return x.Not(), nil
	case *expr.Logic:
		ms := make([]z.Lit, len(e.Args))
		for i, arg := range e.Args {
			m, err := cc.lit(arg)
			if err != nil {
				return z.LitNull, err
			}
			ms[i] = m
		}
		if e.Op == expr.OpAnd {
			return cc.c.Ands(ms...), nil
		}
		return cc.c.Ors(ms...), nil
	case *expr.Binary:
		if e.X.Kind() != expr.Bool {
			break
		}
		x, err := cc.lit(e.X)
		if err != nil {
			return z.LitNull, err
		}
		y, err := cc.lit(e.Y)
		if err != nil {
			return z.LitNull, err
		}
		switch e.Op {
		case expr.OpBitAnd:
			return cc.c.And(x, y), nil
		case expr.OpBitOr:
			return cc.c.Or(x, y), nil
		case expr.OpBitXor, expr.OpNe:
			return cc.c.Xor(x, y), nil
		case expr.OpEq:
			return cc.c.Xor(x, y).Not(), nil
		}
	}
	return z.LitNull, errors.Wrapf(ErrUnsupported, "%v", e)
}
