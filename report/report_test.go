package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/ajalab/concolic/expr"
	"github.com/ajalab/concolic/trace"
	"github.com/ajalab/concolic/tree"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(t *testing.T) *tree.Tree {
	x := expr.NewVar("x", expr.Int32)
	zero := expr.Constant(expr.IntValue(expr.Int32, 0))
	five := expr.Constant(expr.IntValue(expr.Int32, 5))
	at := func(i int64) expr.Valuation {
		return expr.NewValuation(map[string]expr.Value{"x": expr.IntValue(expr.Int32, i)})
	}

	tr := tree.New()
	_, err := tr.Record(tr.Root(), "pos", []expr.Expr{expr.Gt(x, zero), expr.Le(x, zero)}, true)
	require.NoError(t, err)
	pos := tr.GetChild(tr.Root(), 0)
	tr.SetResult(tr.GetChild(tr.Root(), 1), trace.Ok{Valuation: at(0), Post: trace.PostCondition{"ret": zero}})

	_, err = tr.Record(pos, "five", []expr.Expr{expr.Eq(x, five), expr.Ne(x, five)}, true)
	require.NoError(t, err)
	tr.SetResult(tr.GetChild(pos, 0), trace.Error{Valuation: at(5), ExceptionKind: "AssertionError", Message: "fail"})
	tr.SetResult(tr.GetChild(pos, 1), trace.Ok{Valuation: at(1), Post: trace.PostCondition{"ret": x}})
	return tr
}

func TestNew(t *testing.T) {
	r := New("FailOnFive", sample(t), 3, time.Second)

	_, err := uuid.Parse(r.ID)
	assert.NoError(t, err)
	assert.Equal(t, Summary{Ok: 2, Error: 1}, r.Summary)
	require.Len(t, r.Paths, 3)

	p := r.Paths[0]
	assert.Equal(t, "error", p.Result)
	assert.Equal(t, "AssertionError", p.Exception)
	assert.Equal(t, map[string]string{"x": "5"}, p.Inputs)
	assert.Equal(t, "((x > 0) && (x == 5))", p.Condition)
	assert.Equal(t, map[string]string{"ret": "x"}, r.Paths[1].Post)

	require.NotNil(t, r.Tree)
	assert.Equal(t, "pos", r.Tree.BranchID)
	assert.Equal(t, "five", r.Tree.Then.BranchID)
	assert.Equal(t, "ok {x=0} {ret := 0}", r.Tree.Else.Result)
}

func TestSummaryCountsUnsatisfiablePaths(t *testing.T) {
	x := expr.NewVar("x", expr.Int32)
	zero := expr.Constant(expr.IntValue(expr.Int32, 0))
	tr := tree.New()
	_, err := tr.Record(tr.Root(), "pos", []expr.Expr{expr.Gt(x, zero), expr.Le(x, zero)}, true)
	require.NoError(t, err)
	v := expr.NewValuation(map[string]expr.Value{"x": expr.IntValue(expr.Int32, 1)})
	tr.SetResult(tr.GetChild(tr.Root(), 0), trace.Ok{Valuation: v})
	tr.SetUnsatisfiable(tr.GetChild(tr.Root(), 1))

	r := New("UnsatAnd", tr, 1, time.Second)
	assert.Equal(t, Summary{Ok: 1, Unsatisfiable: 1}, r.Summary)
	require.Len(t, r.Paths, 2)
	assert.Equal(t, "unsatisfiable", r.Paths[1].Result)
}

func TestWriteJSON(t *testing.T) {
	r := New("FailOnFive", sample(t), 3, time.Second)
	var buf bytes.Buffer
	require.NoError(t, r.WriteJSON(&buf))

	var decoded Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, r.ID, decoded.ID)
	assert.Equal(t, r.Summary, decoded.Summary)
	assert.Equal(t, r.Tree, decoded.Tree)
	assert.Len(t, decoded.Paths, 3)
}

func TestWriteText(t *testing.T) {
	r := New("FailOnFive", sample(t), 3, time.Second)
	var buf bytes.Buffer
	require.NoError(t, r.WriteText(&buf))

	want := "" +
		"if (x > 0) [pos]\n" +
		"  if (x == 5) [five]\n" +
		"    error AssertionError: fail {x=5}\n" +
		"  else\n" +
		"    ok {x=1} {ret := x}\n" +
		"else\n" +
		"  ok {x=0} {ret := 0}\n"
	assert.Contains(t, buf.String(), "target FailOnFive ("+r.ID+")\n")
	assert.Contains(t, buf.String(), "ok: 2, error: 1, dont-know: 0, unsatisfiable: 0\n")
	assert.Contains(t, buf.String(), want)
}
