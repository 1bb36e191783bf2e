package explore

import (
	"github.com/ajalab/concolic/tree"
)

// Strategy chooses the alternative targeted by the next run.
type Strategy interface {
	// Observe is called when a run records a new decision at node and takes
	// the outcome chosen. The other outcomes are the alternatives to explore.
	Observe(t *tree.Tree, node tree.NodeID, chosen int)
	// Next returns a virgin node to target next, given the node targeted by
	// the previous run. It returns false when nothing is left to explore.
	Next(t *tree.Tree, from tree.NodeID) (tree.NodeID, bool)
}

// DFS explores the tree depth-first, always taking the lowest open outcome.
// It backtracks from the previous target, so consecutive targets share the
// longest possible prefix.
type DFS struct{}

// Observe does nothing: DFS reads the open alternatives from the tree.
func (DFS) Observe(t *tree.Tree, node tree.NodeID, chosen int) {}

// Next ascends from the previous target to the first open ancestor and
// descends from there through the lowest open outcomes.
func (DFS) Next(t *tree.Tree, from tree.NodeID) (tree.NodeID, bool) {
	n := from
	for n != tree.None && !t.IsOpen(n) {
		n = t.Parent(n)
	}
	if n == tree.None {
		return tree.None, false
	}
	return descend(t, n)
}

// descend follows the lowest open outcomes from n down to a virgin node.
func descend(t *tree.Tree, n tree.NodeID) (tree.NodeID, bool) {
	for !t.IsVirgin(n) {
		i := t.NextOpenChild(n)
		if i < 0 {
			return tree.None, false
		}
		n = t.GetChild(n, i)
	}
	return n, true
}
