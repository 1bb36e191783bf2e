// Package explore implements the concolic exploration engine.
//
// An Engine owns a decision tree and a solver. During a run, the host reports
// every decision it takes with Decision and the outcome of the run with Finish
// or Abort. Between runs, FindNext searches the tree for an unexplored
// alternative and asks the solver for an input that drives the next run there.
package explore

import (
	"fmt"
	"time"

	"github.com/ajalab/concolic/expr"
	"github.com/ajalab/concolic/log"
	"github.com/ajalab/concolic/preset"
	"github.com/ajalab/concolic/solver"
	"github.com/ajalab/concolic/trace"
	"github.com/ajalab/concolic/tree"
	"github.com/pkg/errors"
)

// Effect tells the host how to proceed after a decision.
type Effect int

const (
	// Normal means the run goes on.
	Normal Effect = iota
	// Unexpected means the run took another outcome than the one predicted
	// by the solved input. The run should be aborted.
	Unexpected
	// Inconclusive means the run entered a subtree that has been fully
	// explored already. The run should be aborted.
	Inconclusive
)

func (e Effect) String() string {
	switch e {
	case Normal:
		return "normal"
	case Unexpected:
		return "unexpected"
	case Inconclusive:
		return "inconclusive"
	}
	return fmt.Sprintf("Effect(%d)", int(e))
}

// Config holds the collaborators of an Engine.
type Config struct {
	Options Options
	// Solver must be exclusively owned by the engine.
	Solver solver.Context
	// Template binds every input to the value of the first run.
	// Solved valuations are merged over it.
	Template expr.Valuation
	// Strategy overrides the strategy named by Options.
	Strategy Strategy
	// Preset is replayed once the tree is exhausted. It may be nil.
	Preset   preset.Source
	Observer Observer
}

// Stats counts the events of an Engine.
type Stats struct {
	Decisions   int
	Divergences int
	Solves      int
	Valuations  int
	Replays     int
}

// Engine drives the exploration of one analysis target.
type Engine struct {
	opts     Options
	tree     *tree.Tree
	solver   solver.Context
	strategy Strategy
	preset   preset.Source
	observer Observer
	template expr.Valuation

	current       tree.NodeID
	currentTarget tree.NodeID
	// expected mirrors the solver stack: one frame per entry.
	expected []int
	// pushed records whether the frame of each entry was actually pushed.
	pushed []bool

	diverged  bool
	aborted   bool
	replay    bool
	exploring bool

	last  expr.Valuation
	stats Stats
}

// New creates an engine.
func New(cfg Config) (*Engine, error) {
	if cfg.Solver == nil {
		return nil, errors.New("engine requires a solver")
	}
	opts := DefaultOptions().Merge(cfg.Options)
	strategy := cfg.Strategy
	if strategy == nil {
		var err error
		strategy, err = NewStrategy(opts)
		if err != nil {
			return nil, err
		}
	}
	observer := cfg.Observer
	if observer == nil {
		observer = NopObserver{}
	}
	t := tree.New()
	return &Engine{
		opts:          opts,
		tree:          t,
		solver:        cfg.Solver,
		strategy:      strategy,
		preset:        cfg.Preset,
		observer:      observer,
		template:      cfg.Template,
		current:       t.Root(),
		currentTarget: t.Root(),
		exploring:     opts.IsExploring(),
		last:          cfg.Template,
	}, nil
}

// Tree returns the decision tree.
func (e *Engine) Tree() *tree.Tree {
	return e.tree
}

// Options returns the effective options.
func (e *Engine) Options() Options {
	return e.opts
}

// Stats returns the event counts.
func (e *Engine) Stats() Stats {
	return e.stats
}

// Template returns the valuation of the first run.
func (e *Engine) Template() expr.Valuation {
	return e.template
}

// ExpectedPath returns the outcome indices the current run is expected to take.
// Its length equals the number of frames on the solver stack.
func (e *Engine) ExpectedPath() []int {
	return append([]int(nil), e.expected...)
}

// Current returns the node reached by the current run.
func (e *Engine) Current() tree.NodeID {
	return e.current
}

// Exploring reports whether decisions are currently explored.
func (e *Engine) Exploring() bool {
	return e.exploring
}

// SetExploring suspends or resumes exploration. Decisions first recorded
// while exploration is suspended are closed as DontKnow.
func (e *Engine) SetExploring(exploring bool) {
	e.exploring = exploring
}

// Decision reports that the run took outcome chosen at the branching point branchID.
// constraints holds one mutually exclusive condition per outcome.
//
// The returned error is non-nil only for structural faults: an outcome out of
// range, or a decision whose shape differs from the one recorded earlier at the
// same node (*tree.InconsistencyError). The analysis of the target cannot continue
// after such an error.
func (e *Engine) Decision(branchID string, chosen int, constraints []expr.Expr) (Effect, error) {
	if e.diverged {
		return Inconclusive, nil
	}
	n := e.current
	depth := e.tree.Depth(n)
	if depth > e.opts.MaxDepth {
		return Normal, nil
	}
	if chosen < 0 || chosen >= len(constraints) {
		return Normal, errors.Errorf("decision %s: outcome %d out of %d", branchID, chosen, len(constraints))
	}
	created, err := e.tree.Record(n, branchID, constraints, e.exploring)
	if err != nil {
		log.Error.Printf("%v", err)
		return Normal, err
	}
	e.stats.Decisions++

	child := e.tree.GetChild(n, chosen)
	e.current = child

	effect := Normal
	switch {
	case !e.replay && e.tree.IsExhausted(child):
		effect = Inconclusive
	case depth < len(e.expected):
		if !e.replay && e.expected[depth] != chosen {
			effect = Unexpected
		}
	default:
		if created && e.exploring {
			e.strategy.Observe(e.tree, n, chosen)
		}
		e.pushFrame(constraints[chosen], chosen)
		e.currentTarget = child
	}
	if effect != Normal {
		e.diverged = true
		e.stats.Divergences++
		log.Debug.Printf("run diverged at %s (depth %d, outcome %d): %v", branchID, depth, chosen, effect)
	}
	e.observer.Decided(effect)
	return effect, nil
}

// Finish completes the run with r, which must be trace.Ok or trace.Error.
// A node that already holds a result keeps it.
func (e *Engine) Finish(r trace.Result) error {
	switch r.(type) {
	case trace.Ok, trace.Error:
	default:
		return errors.Errorf("run cannot finish with %v", r.Kind())
	}
	if e.tree.SetResult(e.current, r) {
		e.observer.Classified(r.Kind())
	}
	return nil
}

// Abort ends the run without a result. The node reached by the run is
// classified as DontKnow unless it has been visited before.
func (e *Engine) Abort() {
	e.aborted = true
}

// FindNext returns the input for the next run, or false when nothing is left
// to explore and no preset valuation remains.
func (e *Engine) FindNext() (expr.Valuation, bool) {
	e.closeRun()

	for {
		target, ok := e.strategy.Next(e.tree, e.currentTarget)
		if !ok {
			break
		}
		e.moveTo(target)

		alt := e.tree.IncAltDepth(target)
		if e.tree.Depth(target) > e.opts.MaxDepth || (e.opts.MaxAltDepth >= 0 && alt > e.opts.MaxAltDepth) {
			e.classify(target, trace.KindDontKnow)
			continue
		}

		v, ok := e.solve(target)
		if !ok {
			continue
		}
		e.last = v
		e.stats.Valuations++
		log.Debug.Printf("next input %v for path %v", v, e.expected)
		e.observer.Proposed(v, false)
		return v, true
	}

	log.Info.Printf("exploration exhausted after %d valuations (%d nodes)", e.stats.Valuations, e.tree.Len())
	return e.nextPreset()
}

// closeRun classifies the nodes left by the previous run and settles the
// accounting of their ancestors. The solver stack is left as it is: it
// mirrors the expected path, not the path the run actually took.
func (e *Engine) closeRun() {
	if e.diverged || e.aborted {
		e.classify(e.current, trace.KindDontKnow)
	}
	// A target the run never reached would be solved to the same input again.
	if e.currentTarget != e.current {
		e.classify(e.currentTarget, trace.KindDontKnow)
	}
	e.tree.Settle(e.current)
	e.tree.Settle(e.currentTarget)

	e.current = e.tree.Root()
	e.diverged = false
	e.aborted = false
	e.replay = false
	e.exploring = e.opts.IsExploring()
}

// classify closes a virgin node as DontKnow or Unsatisfiable.
func (e *Engine) classify(n tree.NodeID, kind trace.Kind) {
	var changed bool
	switch kind {
	case trace.KindUnsatisfiable:
		changed = e.tree.SetUnsatisfiable(n)
	default:
		changed = e.tree.SetDontKnow(n)
	}
	if changed {
		e.observer.Classified(kind)
		e.tree.Settle(n)
	}
}

func (e *Engine) solve(target tree.NodeID) (expr.Valuation, bool) {
	start := time.Now()
	res, v, err := e.solver.Solve()
	e.stats.Solves++
	if err != nil {
		log.Error.Printf("solver failed on path %v: %v", e.expected, err)
		res = solver.DontKnow
	}
	e.observer.Solved(res, time.Since(start))

	switch res {
	case solver.Unsat:
		e.classify(target, trace.KindUnsatisfiable)
		return expr.Valuation{}, false
	case solver.DontKnow:
		e.classify(target, trace.KindDontKnow)
		return expr.Valuation{}, false
	}

	v = e.template.Merge(v)
	if pred, ok := e.simulate(v); ok && pred != tree.None && pred != target && e.tree.IsExhausted(pred) {
		log.Debug.Printf("input %v leads to an exhausted node", v)
		e.classify(target, trace.KindDontKnow)
		return expr.Valuation{}, false
	}
	if v.Equal(e.last) {
		log.Debug.Printf("input %v repeats the previous one", v)
		e.classify(target, trace.KindDontKnow)
		return expr.Valuation{}, false
	}
	return v, true
}

// simulate predicts the node a run on v reaches in the recorded tree by
// evaluating the constraints of the decisions on its way. None stands for an
// unrealized child. It returns false if the prediction is not possible, e.g.
// when a constraint is undefined under v.
func (e *Engine) simulate(v expr.Valuation) (tree.NodeID, bool) {
	n := e.tree.Root()
	for {
		d, ok := e.tree.Decision(n)
		if !ok {
			return n, true
		}
		next := -1
		for i, c := range d.Constraints {
			holds, err := expr.IsTrue(c, v)
			if err != nil {
				return tree.None, false
			}
			if holds {
				next = i
				break
			}
		}
		if next < 0 {
			return tree.None, false
		}
		if n = d.Children[next]; n == tree.None {
			return tree.None, true
		}
	}
}

// moveTo makes the solver stack and the expected path describe the path to target.
// Frames shared with the current expected path are kept.
func (e *Engine) moveTo(target tree.NodeID) {
	path := e.tree.PathTo(target)
	k := 0
	for k < len(path) && k < len(e.expected) && path[k] == e.expected[k] {
		k++
	}
	e.popTo(k)
	ancestors := e.tree.Ancestors(target)
	for i := k; i < len(path); i++ {
		d, _ := e.tree.Decision(ancestors[i])
		e.pushFrame(d.Constraints[path[i]], path[i])
	}
	e.currentTarget = target
}

func (e *Engine) pushFrame(c expr.Expr, index int) {
	pushed := true
	if err := e.solver.Push(); err != nil {
		log.Error.Printf("failed to push a solver frame: %v", err)
		pushed = false
	} else if err := e.solver.Add(c); err != nil {
		log.Error.Printf("failed to add constraint %v: %v", c, err)
	}
	e.expected = append(e.expected, index)
	e.pushed = append(e.pushed, pushed)
}

func (e *Engine) popTo(k int) {
	n := 0
	for _, p := range e.pushed[k:] {
		if p {
			n++
		}
	}
	if n > 0 {
		if err := e.solver.Pop(n); err != nil {
			log.Error.Printf("failed to pop %d solver frames: %v", n, err)
		}
	}
	e.expected = e.expected[:k]
	e.pushed = e.pushed[:k]
}

func (e *Engine) nextPreset() (expr.Valuation, bool) {
	if e.preset == nil {
		return expr.Valuation{}, false
	}
	v, ok := e.preset.Next()
	if !ok {
		return expr.Valuation{}, false
	}
	e.popTo(0)
	e.currentTarget = e.tree.Root()
	e.replay = true
	v = e.template.Merge(v)
	e.last = v
	e.stats.Replays++
	log.Debug.Printf("replaying preset input %v", v)
	e.observer.Proposed(v, true)
	return v, true
}
