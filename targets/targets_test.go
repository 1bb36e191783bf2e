package targets

import (
	"context"
	"testing"

	"github.com/ajalab/concolic"
	"github.com/ajalab/concolic/explore"
	"github.com/ajalab/concolic/expr"
	"github.com/ajalab/concolic/finalize"
	"github.com/ajalab/concolic/trace"
	"github.com/ajalab/concolic/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargets(t *testing.T) {
	testCases := []struct {
		name   string
		runs   int
		errors int
		unsat  int
	}{
		{"Max2", 2, 0, 0},
		{"Max3", 4, 0, 0},
		{"Min2", 2, 0, 0},
		{"Min3", 4, 0, 0},
		{"BranchLessThan", 2, 0, 0},
		{"BranchAnd", 3, 0, 0},
		{"BranchMultiple", 3, 0, 1},
		{"BranchPhi", 2, 0, 0},
		{"BranchThreeVars", 2, 0, 0},
		{"BranchSwitch", 4, 0, 0},
		{"BoolNot", 2, 0, 0},
		{"BoolAnd", 3, 0, 0},
		{"BoolOr", 3, 0, 0},
		{"Bool3", 4, 0, 0},
		{"IntNotEqual", 2, 0, 0},
		{"Neg1", 2, 0, 0},
		{"FailOnFive", 3, 1, 0},
		{"UnsatAnd", 2, 0, 1},
		{"SafeDivide", 3, 1, 0},
		{"Clamp", 3, 0, 0},
		{"Sort2", 2, 0, 0},
		{"Sort3", 6, 0, 0},
		{"ArrayIncreasing", 5, 0, 0},
		{"QuadraticEq1", 3, 0, 0},
		{"AddOverflow", 2, 0, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			target, ok := Lookup(tc.name)
			require.True(t, ok)

			res, err := concolic.Analyze(context.Background(), target, concolic.Config{})
			require.NoError(t, err)
			assert.True(t, res.Exhausted)
			assert.Equal(t, tc.runs, res.Runs)
			assert.Zero(t, res.Stats.Divergences)

			var errs, unsat int
			for _, p := range finalize.Paths(res.Tree) {
				switch p.Result().Kind() {
				case trace.KindError:
					errs++
				case trace.KindUnsatisfiable:
					unsat++
				}
			}
			assert.Equal(t, tc.errors, errs)
			assert.Equal(t, tc.unsat, unsat)
		})
	}
}

// Exactly one constraint of every decision on the path to a completed leaf
// holds under the valuation of the run that reached it: the one of the edge taken.
func TestDecisionsAreMutuallyExclusive(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			target, _ := Lookup(name)
			res, err := concolic.Analyze(context.Background(), target, concolic.Config{})
			require.NoError(t, err)

			tr := res.Tree
			leaves := 0
			for id := tree.NodeID(0); int(id) < tr.Len(); id++ {
				c, ok := tr.Data(id).(tree.Completed)
				if !ok {
					continue
				}
				leaves++
				var v expr.Valuation
				switch r := c.Result.(type) {
				case trace.Ok:
					v = r.Valuation
				case trace.Error:
					v = r.Valuation
				default:
					t.Fatalf("completed leaf %d has result %v", id, r)
				}

				path := tr.Ancestors(id)
				for i, n := range path[:len(path)-1] {
					d, ok := tr.Decision(n)
					require.True(t, ok)
					taken := tr.Index(path[i+1])
					var holds []int
					for j, constraint := range d.Constraints {
						ok, err := expr.IsTrue(constraint, v)
						require.NoError(t, err)
						if ok {
							holds = append(holds, j)
						}
					}
					assert.Equal(t, []int{taken}, holds, "decision %s under %v", d.BranchID, v)
				}
			}
			assert.NotZero(t, leaves)
		})
	}
}

func TestBoolTargetsWithGini(t *testing.T) {
	for _, name := range []string{"BoolNot", "BoolAnd", "BoolOr", "Bool3"} {
		t.Run(name, func(t *testing.T) {
			target, _ := Lookup(name)
			cfg := concolic.Config{}
			cfg.Solver.Name = "gini"
			res, err := concolic.Analyze(context.Background(), target, cfg)
			require.NoError(t, err)
			assert.True(t, res.Exhausted)
			assert.True(t, res.Tree.IsExhausted(res.Tree.Root()))
		})
	}
}

func TestPriorityStrategy(t *testing.T) {
	target, _ := Lookup("Max3")
	res, err := concolic.Analyze(context.Background(), target, concolic.Config{
		Explore: explore.Options{Strategy: "priority", Comparator: "shallow"},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Runs)
}

func TestNames(t *testing.T) {
	names := Names()
	assert.Contains(t, names, "FailOnFive")
	assert.IsIncreasing(t, names)
	_, ok := Lookup("Unknown")
	assert.False(t, ok)
}
