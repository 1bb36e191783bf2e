// Package concolic generates inputs for Go functions by concolic execution.
//
// A Target is a function instrumented through a Run: it reads its symbolic
// inputs with Input and reports every branch it takes with If, Switch, Div or
// Assert. Analyze runs the function repeatedly, each time with an input solved
// to take a branch no earlier run has taken.
package concolic

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/ajalab/concolic/explore"
	"github.com/ajalab/concolic/expr"
	"github.com/ajalab/concolic/log"
	"github.com/ajalab/concolic/preset"
	"github.com/ajalab/concolic/solver"
	"github.com/ajalab/concolic/symbol"
	"github.com/ajalab/concolic/trace"
	"github.com/ajalab/concolic/tree"
	"github.com/ajalab/concolic/value"
	"github.com/pkg/errors"
)

// Target is a function under analysis.
type Target struct {
	Name   string
	Inputs symbol.Symbols
	Func   func(r *Run)
	// Options override the exploration options of the analysis.
	Options explore.Options
}

// Config specifies the (optional) parameters of an analysis.
type Config struct {
	Explore explore.Options
	Solver  solver.Options
	// Termination is polled before every search for a new input.
	// The analysis ends with the exploration when it is nil.
	Termination explore.Termination
	// Preset is replayed once the exploration is exhausted.
	Preset preset.Source
	// PresetFile is loaded as the preset when Preset is nil.
	PresetFile string
	Observer   explore.Observer
}

// Result is the outcome of an analysis.
type Result struct {
	Target  string
	Tree    *tree.Tree
	Runs    int
	Elapsed time.Duration
	Stats   explore.Stats
	// Exhausted tells whether the analysis ended because nothing was left to explore.
	Exhausted bool
}

// Analyze explores target until the exploration is exhausted, the termination
// strategy stops it, or ctx is done.
//
// An error is returned for faults of the analysis itself, e.g. a branch that
// reports a different number of outcomes than in an earlier run. Failures of
// the target are not errors: they are recorded as trace.Error leaves.
func Analyze(ctx context.Context, target *Target, cfg Config) (*Result, error) {
	if err := target.Inputs.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid inputs of %s", target.Name)
	}
	sc, err := solver.New(cfg.Solver.Name, solver.DefaultOptions().Merge(cfg.Solver))
	if err != nil {
		return nil, err
	}
	source := cfg.Preset
	if source == nil && cfg.PresetFile != "" {
		if source, err = preset.LoadFile(cfg.PresetFile, target.Inputs); err != nil {
			return nil, err
		}
	}
	term := cfg.Termination
	if term == nil {
		term = explore.Never()
	}

	e, err := explore.New(explore.Config{
		Options:  cfg.Explore.Merge(target.Options),
		Solver:   sc,
		Template: target.Inputs.Template(),
		Preset:   source,
		Observer: cfg.Observer,
	})
	if err != nil {
		return nil, err
	}

	log.Info.Printf("analyzing %s", target.Name)
	start := time.Now()
	res := &Result{Target: target.Name, Tree: e.Tree()}
	v := e.Template()
	for {
		r := newRun(e, target.Inputs, v)
		result, aborted := r.execute(target.Func)
		res.Runs++
		if r.err != nil {
			res.Elapsed = time.Since(start)
			res.Stats = e.Stats()
			return res, errors.Wrapf(r.err, "analysis of %s failed in run %d", target.Name, res.Runs)
		}
		if aborted {
			e.Abort()
		} else if err := e.Finish(result); err != nil {
			res.Elapsed = time.Since(start)
			res.Stats = e.Stats()
			return res, err
		}
		log.Debug.Printf("run %d on %v: %v", res.Runs, v, result)

		if ctx.Err() != nil || term.Done(explore.Status{Runs: res.Runs, Elapsed: time.Since(start)}) {
			break
		}
		next, ok := e.FindNext()
		if !ok {
			res.Exhausted = true
			break
		}
		v = next
	}
	res.Elapsed = time.Since(start)
	res.Stats = e.Stats()
	log.Info.Printf("analyzed %s: %d runs in %v", target.Name, res.Runs, res.Elapsed)
	return res, nil
}

// Outcome is the concrete result of a single execution of a target.
type Outcome struct {
	// Exception is the kind of the failure that ended the run, empty if the run completed normally.
	Exception string
	Message   string
	// Post holds the final values of the result variables of a normal completion.
	Post map[string]interface{}
}

// Execute runs target once on input without exploring it. Inputs missing
// from input take their initial values.
func Execute(target *Target, input map[string]interface{}) (*Outcome, error) {
	if err := target.Inputs.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid inputs of %s", target.Name)
	}
	v, err := target.Inputs.Parse(input)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid input for %s", target.Name)
	}
	r := newRun(nil, target.Inputs, v)
	result, _ := r.execute(target.Func)
	if r.err != nil {
		return nil, errors.Wrapf(r.err, "execution of %s failed", target.Name)
	}

	switch result := result.(type) {
	case trace.Error:
		return &Outcome{Exception: result.ExceptionKind, Message: result.Message}, nil
	case trace.Ok:
		vals, err := result.Post.Eval(result.Valuation)
		if err != nil {
			return nil, err
		}
		post := make(map[string]interface{}, len(vals))
		for name, val := range vals {
			post[name] = val.Interface()
		}
		return &Outcome{Post: post}, nil
	}
	return nil, errors.Errorf("unexpected result %v", result)
}

// abortSignal unwinds a run that diverged from its expected path.
type abortSignal struct{}

// failure unwinds a run that failed.
type failure struct {
	kind string
	err  error
}

// Run is a single concrete execution of a target.
// Its methods must be called from the goroutine running the target.
type Run struct {
	engine    *explore.Engine
	inputs    symbol.Symbols
	valuation expr.Valuation
	post      trace.PostCondition
	err       error
}

func newRun(e *explore.Engine, inputs symbol.Symbols, v expr.Valuation) *Run {
	return &Run{
		engine:    e,
		inputs:    inputs,
		valuation: v,
		post:      make(trace.PostCondition),
	}
}

// Valuation returns the input of the run.
func (r *Run) Valuation() expr.Valuation {
	return r.valuation
}

func (r *Run) execute(f func(*Run)) (res trace.Result, aborted bool) {
	defer func() {
		p := recover()
		if p == nil {
			return
		}
		switch p := p.(type) {
		case abortSignal:
			aborted = true
		case *failure:
			res = trace.Error{
				Valuation:     r.valuation,
				ExceptionKind: p.kind,
				Message:       p.err.Error(),
				Trace:         fmt.Sprintf("%+v", p.err),
			}
		default:
			err := errors.Errorf("%v", p)
			res = trace.Error{
				Valuation:     r.valuation,
				ExceptionKind: fmt.Sprintf("panic(%T)", p),
				Message:       err.Error(),
				Trace:         fmt.Sprintf("%+v", err),
			}
		}
	}()
	f(r)
	return trace.Ok{Valuation: r.valuation, Post: r.post}, false
}

func (r *Run) abort(err error) {
	if err != nil {
		r.err = err
	}
	panic(abortSignal{})
}

// Input returns the symbolic input name.
func (r *Run) Input(name string) value.Pair {
	d, ok := r.inputs.Lookup(name)
	if !ok {
		r.abort(errors.Errorf("undeclared input %s", name))
	}
	v, ok := r.valuation.Get(name)
	if !ok {
		r.abort(errors.Errorf("input %s is unbound", name))
	}
	return value.New(v.Convert(d.Kind), d.Var())
}

func (r *Run) decide(id string, chosen int, constraints []expr.Expr) {
	if r.engine == nil {
		return
	}
	effect, err := r.engine.Decision(id, chosen, constraints)
	if err != nil {
		r.abort(err)
	}
	switch effect {
	case explore.Unexpected, explore.Inconclusive:
		r.abort(nil)
	}
}

func caller(skip int) string {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}

// If reports a two-way branch on cond and returns its concrete value.
// The branch is identified by the location of the call.
func (r *Run) If(cond value.Pair) bool {
	return r.Branch(caller(1), cond)
}

// Branch reports a two-way branch identified by id.
func (r *Run) Branch(id string, cond value.Pair) bool {
	if cond.Kind() != expr.Bool {
		r.abort(errors.Errorf("branch %s on a non-boolean %v", id, cond))
	}
	taken := cond.Concrete().Bool()
	if !cond.IsSymbolic() {
		return taken
	}
	chosen := 1
	if taken {
		chosen = 0
	}
	c := cond.Symbolic()
	r.decide(id, chosen, []expr.Expr{c, expr.Not(c)})
	return taken
}

// Switch reports an n-way branch on tag. It returns the index of the first
// case equal to tag, or len(cases) for the default case.
func (r *Run) Switch(tag value.Pair, cases ...int64) int {
	id := caller(1)
	consts := make([]expr.Value, len(cases))
	for i, c := range cases {
		consts[i] = expr.IntValue(expr.Int64, c).Convert(tag.Kind())
	}
	chosen := len(cases)
	for i, c := range consts {
		if tag.Concrete().Equal(c) {
			chosen = i
			break
		}
	}
	if !tag.IsSymbolic() {
		return chosen
	}
	t := tag.Symbolic()
	constraints := make([]expr.Expr, 0, len(cases)+1)
	var earlier []expr.Expr
	for _, c := range consts {
		k := expr.Constant(c)
		constraints = append(constraints, expr.And(append(append([]expr.Expr(nil), earlier...), expr.Eq(t, k))...))
		earlier = append(earlier, expr.Ne(t, k))
	}
	constraints = append(constraints, expr.And(earlier...))
	r.decide(id, chosen, constraints)
	return chosen
}

// Div returns x / y. An integer division by zero fails the run with an ArithmeticError.
func (r *Run) Div(x, y value.Pair) value.Pair {
	r.checkDivisor(caller(1), y)
	return x.Quo(y)
}

// Rem returns x % y. An integer division by zero fails the run with an ArithmeticError.
func (r *Run) Rem(x, y value.Pair) value.Pair {
	r.checkDivisor(caller(1), y)
	return x.Rem(y)
}

func (r *Run) checkDivisor(id string, y value.Pair) {
	if !y.Kind().IsInteger() {
		return
	}
	zero := y.Concrete().Int() == 0
	if y.IsSymbolic() {
		chosen := 1
		if zero {
			chosen = 0
		}
		c := expr.Eq(y.Symbolic(), expr.Constant(expr.Zero(y.Kind())))
		r.decide(id, chosen, []expr.Expr{c, expr.Not(c)})
	}
	if zero {
		r.Fail("ArithmeticError", "division by zero")
	}
}

// Assert fails the run with an AssertionError unless cond holds.
func (r *Run) Assert(cond value.Pair, msg string) {
	if !r.Branch(caller(1), cond) {
		r.Fail("AssertionError", msg)
	}
}

// Fail ends the run with a failure of the given kind.
func (r *Run) Fail(kind, msg string) {
	panic(&failure{kind: kind, err: errors.New(msg)})
}

// Return records p as the return value of the run.
func (r *Run) Return(p value.Pair) {
	r.Set("ret", p)
}

// Set records the final value of the result variable name.
func (r *Run) Set(name string, p value.Pair) {
	r.post[name] = p.Symbolic()
}

// Suspend stops exploring the decisions taken until Resume.
func (r *Run) Suspend() {
	if r.engine == nil {
		return
	}
	r.engine.SetExploring(false)
}

// Resume resumes exploring decisions.
func (r *Run) Resume() {
	if r.engine == nil {
		return
	}
	r.engine.SetExploring(true)
}
