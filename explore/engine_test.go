package explore

import (
	"testing"

	"github.com/ajalab/concolic/expr"
	"github.com/ajalab/concolic/preset"
	"github.com/ajalab/concolic/solver"
	"github.com/ajalab/concolic/trace"
	"github.com/ajalab/concolic/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSolver tracks the number of outstanding frames.
type recordingSolver struct {
	solver.Context
	depth int
}

func (r *recordingSolver) Push() error {
	r.depth++
	return r.Context.Push()
}

func (r *recordingSolver) Pop(n int) error {
	r.depth -= n
	return r.Context.Pop(n)
}

// fixedSolver answers every query with the same result.
type fixedSolver struct {
	res   solver.Result
	v     expr.Valuation
	depth int
}

func (s *fixedSolver) Push() error            { s.depth++; return nil }
func (s *fixedSolver) Pop(n int) error        { s.depth -= n; return nil }
func (s *fixedSolver) Add(...expr.Expr) error { return nil }

func (s *fixedSolver) Solve() (solver.Result, expr.Valuation, error) {
	return s.res, s.v, nil
}

// host runs programs against an engine the way an instrumented target would.
type host struct {
	t       *testing.T
	e       *Engine
	v       expr.Valuation
	aborted bool
}

func (h *host) value(name string) expr.Value {
	v, ok := h.v.Get(name)
	require.True(h.t, ok, "unbound input %s", name)
	return v
}

// decide reports a two-way decision whose concrete outcome is taken.
func (h *host) decide(id string, taken bool, cond expr.Expr) bool {
	if h.aborted {
		return false
	}
	idx := 1
	if taken {
		idx = 0
	}
	eff, err := h.e.Decision(id, idx, []expr.Expr{cond, expr.Not(cond)})
	require.NoError(h.t, err)
	if eff != Normal {
		h.aborted = true
	}
	return taken
}

// branch reports a two-way decision taken by evaluating cond.
func (h *host) branch(id string, cond expr.Expr) bool {
	holds, err := expr.IsTrue(cond, h.v)
	require.NoError(h.t, err)
	return h.decide(id, holds, cond)
}

type program func(h *host) trace.Result

type outcome struct {
	v    expr.Valuation
	kind trace.Kind
}

func explore(t *testing.T, e *Engine, depth func() int, prog program) []outcome {
	var outcomes []outcome
	v := e.Template()
	for i := 0; i < 100; i++ {
		h := &host{t: t, e: e, v: v}
		r := prog(h)
		if h.aborted {
			e.Abort()
			outcomes = append(outcomes, outcome{v, trace.KindDontKnow})
		} else {
			require.NoError(t, e.Finish(r))
			outcomes = append(outcomes, outcome{v, r.Kind()})
		}
		require.Equal(t, len(e.ExpectedPath()), depth(), "solver frames and expected path diverge")

		next, ok := e.FindNext()
		require.Equal(t, len(e.ExpectedPath()), depth(), "solver frames and expected path diverge")
		if !ok {
			return outcomes
		}
		require.False(t, next.Equal(v), "valuation %v repeated", next)
		v = next
	}
	t.Fatal("exploration did not terminate")
	return nil
}

func newEngine(t *testing.T, inputs map[string]expr.Kind, opts Options) (*Engine, func() int) {
	m := make(map[string]expr.Value)
	for name, k := range inputs {
		m[name] = expr.Zero(k)
	}
	rs := &recordingSolver{Context: solver.NewEnum(solver.Options{})}
	e, err := New(Config{Options: opts, Solver: rs, Template: expr.NewValuation(m)})
	require.NoError(t, err)
	return e, func() int { return rs.depth }
}

func i32(i int64) expr.Expr {
	return expr.Constant(expr.IntValue(expr.Int32, i))
}

var (
	x = expr.NewVar("x", expr.Int32)
	y = expr.NewVar("y", expr.Int32)
	z = expr.NewVar("z", expr.Int32)
)

func failOnFive(h *host) trace.Result {
	if h.branch("pos", expr.Gt(x, i32(0))) {
		if h.branch("five", expr.Eq(x, i32(5))) {
			return trace.Error{Valuation: h.v, ExceptionKind: "AssertionError", Message: "fail"}
		}
		return trace.Ok{Valuation: h.v}
	}
	return trace.Ok{Valuation: h.v}
}

func threeBranches(h *host) trace.Result {
	for _, v := range []*expr.Var{x, y, z} {
		h.branch(v.Name, expr.Gt(v, i32(0)))
	}
	return trace.Ok{Valuation: h.v}
}

func TestFailOnFive(t *testing.T) {
	e, depth := newEngine(t, map[string]expr.Kind{"x": expr.Int32}, Options{})
	outcomes := explore(t, e, depth, failOnFive)

	require.Len(t, outcomes, 3)
	xs := make([]int64, len(outcomes))
	kinds := make([]trace.Kind, len(outcomes))
	for i, o := range outcomes {
		xv, _ := o.v.Get("x")
		xs[i] = xv.Int()
		kinds[i] = o.kind
	}
	assert.Equal(t, int64(0), xs[0])
	assert.Greater(t, xs[1], int64(0))
	assert.NotEqual(t, int64(5), xs[1])
	assert.Equal(t, int64(5), xs[2])
	assert.Equal(t, []trace.Kind{trace.KindOk, trace.KindOk, trace.KindError}, kinds)

	tr := e.Tree()
	assert.True(t, tr.IsExhausted(tr.Root()))
	assert.Empty(t, e.ExpectedPath())
}

func TestUnsatisfiableBranch(t *testing.T) {
	e, depth := newEngine(t, map[string]expr.Kind{"x": expr.Int32}, Options{})
	outcomes := explore(t, e, depth, func(h *host) trace.Result {
		h.branch("impossible", expr.And(expr.Gt(x, i32(0)), expr.Lt(x, i32(0))))
		return trace.Ok{Valuation: h.v}
	})

	require.Len(t, outcomes, 1)
	tr := e.Tree()
	assert.IsType(t, tree.Unsatisfiable{}, tr.Data(tr.Child(tr.Root(), 0)))
	assert.IsType(t, tree.Completed{}, tr.Data(tr.Child(tr.Root(), 1)))
	assert.True(t, tr.IsExhausted(tr.Root()))
}

func TestStrategies(t *testing.T) {
	testCases := []struct {
		strategy   string
		comparator string
	}{
		{"dfs", ""},
		{"priority", "shared-prefix"},
		{"priority", "shallow"},
		{"priority", "deep"},
	}
	for _, tc := range testCases {
		t.Run(tc.strategy+"/"+tc.comparator, func(t *testing.T) {
			inputs := map[string]expr.Kind{"x": expr.Int32, "y": expr.Int32, "z": expr.Int32}
			e, depth := newEngine(t, inputs, Options{Strategy: tc.strategy, Comparator: tc.comparator})
			outcomes := explore(t, e, depth, threeBranches)

			require.Len(t, outcomes, 8)
			seen := make(map[string]bool)
			for _, o := range outcomes {
				key := o.v.String()
				assert.False(t, seen[key], "valuation %s explored twice", key)
				seen[key] = true
			}
			assert.True(t, e.Tree().IsExhausted(e.Tree().Root()))
		})
	}
}

func TestMaxDepth(t *testing.T) {
	inputs := map[string]expr.Kind{}
	vars := make([]*expr.Var, 5)
	for i := range vars {
		vars[i] = expr.NewVar(string(rune('a'+i)), expr.Int32)
		inputs[vars[i].Name] = expr.Int32
	}
	e, depth := newEngine(t, inputs, Options{MaxDepth: 2})
	outcomes := explore(t, e, depth, func(h *host) trace.Result {
		for _, v := range vars {
			h.branch(v.Name, expr.Gt(v, i32(0)))
		}
		return trace.Ok{Valuation: h.v}
	})
	assert.Len(t, outcomes, 4)
	assert.False(t, e.Tree().IsOpen(e.Tree().Root()))
}

func TestMaxAltDepth(t *testing.T) {
	inputs := map[string]expr.Kind{"x": expr.Int32, "y": expr.Int32, "z": expr.Int32}
	e, depth := newEngine(t, inputs, Options{MaxAltDepth: 1})
	outcomes := explore(t, e, depth, threeBranches)
	assert.Len(t, outcomes, 4)
	assert.False(t, e.Tree().IsOpen(e.Tree().Root()))
}

func TestDivergence(t *testing.T) {
	e, depth := newEngine(t, map[string]expr.Kind{"x": expr.Int32}, Options{})
	// The reported constraint is weaker than the concrete condition.
	outcomes := explore(t, e, depth, func(h *host) trace.Result {
		h.decide("under-modeled", h.value("x").Int() > 20, expr.Gt(x, i32(10)))
		return trace.Ok{Valuation: h.v}
	})

	require.Len(t, outcomes, 2)
	assert.Equal(t, trace.KindDontKnow, outcomes[1].kind)
	assert.Equal(t, 1, e.Stats().Divergences)

	tr := e.Tree()
	assert.IsType(t, tree.DontKnow{}, tr.Data(tr.Child(tr.Root(), 0)))
	assert.False(t, tr.IsOpen(tr.Root()))
}

func TestDuplicateGuard(t *testing.T) {
	e, depth := newEngine(t, map[string]expr.Kind{"x": expr.Int32}, Options{})
	// The concrete run takes the second outcome although x == 0 satisfies the first.
	outcomes := explore(t, e, depth, func(h *host) trace.Result {
		h.decide("mismatch", false, expr.Ge(x, i32(0)))
		return trace.Ok{Valuation: h.v}
	})

	require.Len(t, outcomes, 1)
	tr := e.Tree()
	assert.IsType(t, tree.DontKnow{}, tr.Data(tr.Child(tr.Root(), 0)))
}

func TestSimulateExhausted(t *testing.T) {
	template := expr.NewValuation(map[string]expr.Value{"x": expr.IntValue(expr.Int32, 0)})
	fs := &fixedSolver{res: solver.Sat, v: expr.NewValuation(map[string]expr.Value{"x": expr.IntValue(expr.Int32, -7)})}
	e, err := New(Config{Solver: fs, Template: template})
	require.NoError(t, err)

	outcomes := explore(t, e, func() int { return fs.depth }, func(h *host) trace.Result {
		h.branch("pos", expr.Gt(x, i32(0)))
		return trace.Ok{Valuation: h.v}
	})

	require.Len(t, outcomes, 1)
	tr := e.Tree()
	assert.IsType(t, tree.DontKnow{}, tr.Data(tr.Child(tr.Root(), 0)))
}

func TestSolverDontKnow(t *testing.T) {
	fs := &fixedSolver{res: solver.DontKnow}
	e, err := New(Config{Solver: fs, Template: expr.NewValuation(map[string]expr.Value{"x": expr.IntValue(expr.Int32, 0)})})
	require.NoError(t, err)

	outcomes := explore(t, e, func() int { return fs.depth }, failOnFive)
	require.Len(t, outcomes, 1)
	tr := e.Tree()
	assert.IsType(t, tree.DontKnow{}, tr.Data(tr.Child(tr.Root(), 0)))
	assert.False(t, tr.IsExhausted(tr.Root()))
}

func TestPresetReplay(t *testing.T) {
	m := map[string]expr.Value{"x": expr.IntValue(expr.Int32, 7)}
	rs := &recordingSolver{Context: solver.NewEnum(solver.Options{})}
	e, err := New(Config{
		Solver:   rs,
		Template: expr.NewValuation(map[string]expr.Value{"x": expr.IntValue(expr.Int32, 0)}),
		Preset:   preset.NewSlice(expr.NewValuation(m)),
	})
	require.NoError(t, err)

	var nodes []int
	outcomes := explore(t, e, func() int { return rs.depth }, func(h *host) trace.Result {
		nodes = append(nodes, e.Tree().Len())
		return failOnFive(h)
	})

	require.Len(t, outcomes, 4)
	xv, _ := outcomes[3].v.Get("x")
	assert.Equal(t, int64(7), xv.Int())
	assert.Equal(t, trace.KindOk, outcomes[3].kind, "a replay of an explored path is not a divergence")
	assert.Equal(t, nodes[3], e.Tree().Len(), "replaying an explored path records nothing new")
	assert.Equal(t, 1, e.Stats().Replays)
}

func TestSuspendedExploration(t *testing.T) {
	e, depth := newEngine(t, map[string]expr.Kind{"x": expr.Int32, "y": expr.Int32}, Options{})
	outcomes := explore(t, e, depth, func(h *host) trace.Result {
		h.branch("x", expr.Gt(x, i32(0)))
		h.e.SetExploring(false)
		h.branch("y", expr.Gt(y, i32(0)))
		h.e.SetExploring(true)
		return trace.Ok{Valuation: h.v}
	})

	assert.Len(t, outcomes, 2)
	assert.True(t, e.Exploring())
	tr := e.Tree()
	d, ok := tr.Decision(tr.Child(tr.Root(), 1))
	require.True(t, ok)
	assert.Equal(t, 0, d.NumOpen)
	assert.IsType(t, tree.DontKnow{}, tr.Data(d.Children[0]))
	assert.IsType(t, tree.Completed{}, tr.Data(d.Children[1]))
}

func TestInconsistentDecision(t *testing.T) {
	e, _ := newEngine(t, map[string]expr.Kind{"x": expr.Int32}, Options{})
	cs := []expr.Expr{expr.Gt(x, i32(0)), expr.Le(x, i32(0))}

	_, err := e.Decision("a", 1, cs)
	require.NoError(t, err)
	require.NoError(t, e.Finish(trace.Ok{}))
	_, ok := e.FindNext()
	require.True(t, ok)

	_, err = e.Decision("b", 0, cs)
	var ie *tree.InconsistencyError
	assert.ErrorAs(t, err, &ie)

	_, err = e.Decision("a", 2, cs)
	assert.Error(t, err)
}

func TestFinishRejectsProvisionalResults(t *testing.T) {
	e, _ := newEngine(t, nil, Options{})
	assert.Error(t, e.Finish(trace.DontKnow{}))
	assert.NoError(t, e.Finish(trace.Ok{}))
	assert.NoError(t, e.Finish(trace.Error{}), "a second completion is ignored")
	assert.IsType(t, tree.Completed{}, e.Tree().Data(e.Tree().Root()))
	assert.Equal(t, trace.KindOk, e.Tree().Data(e.Tree().Root()).(tree.Completed).Result.Kind())
}

func TestNewErrors(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
	_, err = New(Config{Solver: solver.NewEnum(solver.Options{}), Options: Options{Strategy: "bfs"}})
	assert.Error(t, err)
	_, err = New(Config{Solver: solver.NewEnum(solver.Options{}), Options: Options{Strategy: "priority", Comparator: "random"}})
	assert.Error(t, err)
}
