// Package finalize compacts the decision tree of an exploration into an
// immutable binary tree for reporting.
package finalize

import (
	"github.com/ajalab/concolic/expr"
	"github.com/ajalab/concolic/trace"
	"github.com/ajalab/concolic/tree"
)

// Node is a node of a finalized tree. It is either *Branch or *Leaf.
type Node interface {
	isNode()
}

// Branch is a two-way decision. Then is taken when Cond holds.
type Branch struct {
	BranchID string
	Cond     expr.Expr
	Then     Node
	Else     Node
}

// Leaf is the classification of a path: trace.Ok, trace.Error, trace.DontKnow
// or trace.Unsatisfiable.
type Leaf struct {
	Result trace.Result
}

func (*Branch) isNode() {}
func (*Leaf) isNode()   {}

var (
	dontKnow      = &Leaf{Result: trace.DontKnow{}}
	unsatisfiable = &Leaf{Result: trace.Unsatisfiable{}}
)

type alternative struct {
	cond expr.Expr
	node Node
}

// Finalize builds the finalized tree of t. It does not modify t.
//
// Unrealized and virgin nodes become DontKnow leaves. Unsatisfiable outcomes
// are pruned. A decision whose remaining outcomes are all DontKnow collapses
// to a single DontKnow leaf, and a decision with a single remaining outcome
// collapses to that outcome. Other decisions are rebuilt as right-nested
// branches, the last outcome forming the innermost else.
func Finalize(t *tree.Tree) Node {
	return finalize(t, t.Root())
}

func finalize(t *tree.Tree, id tree.NodeID) Node {
	if id == tree.None {
		return dontKnow
	}
	switch data := t.Data(id).(type) {
	case tree.Completed:
		return &Leaf{Result: data.Result}
	case tree.Unsatisfiable:
		return unsatisfiable
	case *tree.Decision:
		return finalizeDecision(t, data)
	}
	return dontKnow
}

func finalizeDecision(t *tree.Tree, d *tree.Decision) Node {
	var alts []alternative
	known := false
	for i, c := range d.Children {
		n := finalize(t, c)
		if IsUnsatisfiable(n) {
			continue
		}
		if !IsDontKnow(n) {
			known = true
		}
		alts = append(alts, alternative{cond: d.Constraints[i], node: n})
	}
	switch {
	case len(alts) == 0:
		return unsatisfiable
	case !known:
		return dontKnow
	case len(alts) == 1:
		return alts[0].node
	}

	last := alts[len(alts)-1].node
	for i := len(alts) - 2; i >= 0; i-- {
		last = &Branch{
			BranchID: d.BranchID,
			Cond:     alts[i].cond,
			Then:     alts[i].node,
			Else:     last,
		}
	}
	return last
}

// IsDontKnow reports whether n is a DontKnow leaf.
func IsDontKnow(n Node) bool {
	l, ok := n.(*Leaf)
	return ok && l.Result.Kind() == trace.KindDontKnow
}

// IsUnsatisfiable reports whether n is an Unsatisfiable leaf.
func IsUnsatisfiable(n Node) bool {
	l, ok := n.(*Leaf)
	return ok && l.Result.Kind() == trace.KindUnsatisfiable
}

// Paths returns a path for every realized leaf of t, in depth-first order.
// Virgin nodes are skipped.
func Paths(t *tree.Tree) []*trace.Path {
	var paths []*trace.Path
	var walk func(tree.NodeID)
	walk = func(id tree.NodeID) {
		var r trace.Result
		switch data := t.Data(id).(type) {
		case *tree.Decision:
			for _, c := range data.Children {
				if c != tree.None {
					walk(c)
				}
			}
			return
		case tree.Completed:
			r = data.Result
		case tree.DontKnow:
			r = trace.DontKnow{}
		case tree.Unsatisfiable:
			r = trace.Unsatisfiable{}
		default:
			return
		}
		paths = append(paths, trace.NewPath(t.Branches(id), r))
	}
	walk(t.Root())
	return paths
}
