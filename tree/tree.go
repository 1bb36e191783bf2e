// Package tree implements the decision tree recorded by concolic exploration.
//
// Nodes live in an arena owned by a Tree and are referred to by NodeID.
// Children of a decision are realized lazily on first access.
package tree

import (
	"fmt"

	"github.com/ajalab/concolic/expr"
	"github.com/ajalab/concolic/trace"
	"github.com/pkg/errors"
)

// NodeID is a handle to a node of a Tree.
type NodeID int

// None is the NodeID of no node.
const None NodeID = -1

// Data is the state of a node.
// It is one of Virgin, *Decision, Completed, DontKnow or Unsatisfiable.
type Data interface {
	isData()
}

// Virgin is a node that has not been visited yet.
type Virgin struct{}

// Decision is a branching point with one child per outcome.
type Decision struct {
	BranchID string
	// Constraints are mutually exclusive conditions, one per outcome.
	Constraints []expr.Expr
	// Children has the same length as Constraints. Unrealized children are None.
	Children []NodeID
	// NumOpen is the number of children that have not been closed.
	NumOpen int
	// NumUnexhausted is the number of children that have not been exhausted.
	NumUnexhausted int
}

// Completed is a leaf reached by a run. Its result is trace.Ok or trace.Error.
type Completed struct {
	Result trace.Result
}

// DontKnow is a provisional leaf. It may be replaced by Completed when a run reaches it.
type DontKnow struct{}

// Unsatisfiable is a leaf whose path condition has no solution.
type Unsatisfiable struct{}

func (Virgin) isData()        {}
func (*Decision) isData()     {}
func (Completed) isData()     {}
func (DontKnow) isData()      {}
func (Unsatisfiable) isData() {}

// InconsistencyError is returned when a decision is recorded at a node that
// already holds a decision of a different shape.
type InconsistencyError struct {
	Node     NodeID
	BranchID string
	Arity    int
	GotID    string
	GotArity int
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("inconsistent decision at node %d: recorded %s/%d, got %s/%d",
		e.Node, e.BranchID, e.Arity, e.GotID, e.GotArity)
}

type node struct {
	parent   NodeID
	index    int
	depth    int
	altDepth int
	data     Data

	// closedReported and exhaustedReported guard the parent's counters.
	closedReported    bool
	exhaustedReported bool
}

// Tree is a decision tree. The zero value is not usable; use New.
type Tree struct {
	nodes []node
}

// New creates a tree consisting of a virgin root.
func New() *Tree {
	return &Tree{nodes: []node{{parent: None, data: Virgin{}}}}
}

// Root returns the root node.
func (t *Tree) Root() NodeID {
	return 0
}

// Len returns the number of realized nodes.
func (t *Tree) Len() int {
	return len(t.nodes)
}

func (t *Tree) node(id NodeID) *node {
	return &t.nodes[id]
}

// Data returns the state of id.
func (t *Tree) Data(id NodeID) Data {
	return t.node(id).data
}

// Parent returns the parent of id, or None for the root.
func (t *Tree) Parent(id NodeID) NodeID {
	return t.node(id).parent
}

// Index returns the outcome index of id within its parent.
func (t *Tree) Index(id NodeID) int {
	return t.node(id).index
}

// Depth returns the number of decisions above id.
func (t *Tree) Depth(id NodeID) int {
	return t.node(id).depth
}

// AltDepth returns the number of alternatives forced along the path to id.
func (t *Tree) AltDepth(id NodeID) int {
	return t.node(id).altDepth
}

// IncAltDepth increments the alternation depth of id and returns the new value.
func (t *Tree) IncAltDepth(id NodeID) int {
	n := t.node(id)
	n.altDepth++
	return n.altDepth
}

// Decision returns the decision record of id, if any.
func (t *Tree) Decision(id NodeID) (*Decision, bool) {
	d, ok := t.node(id).data.(*Decision)
	return d, ok
}

// IsVirgin reports whether id has not been visited.
func (t *Tree) IsVirgin(id NodeID) bool {
	_, ok := t.node(id).data.(Virgin)
	return ok
}

// IsOpen reports whether id still has something to explore.
func (t *Tree) IsOpen(id NodeID) bool {
	switch d := t.node(id).data.(type) {
	case Virgin:
		return true
	case *Decision:
		return d.NumOpen > 0
	}
	return false
}

// IsExhausted reports whether the subtree of id has been fully explored.
// A DontKnow leaf is closed but not exhausted.
func (t *Tree) IsExhausted(id NodeID) bool {
	switch d := t.node(id).data.(type) {
	case Completed, Unsatisfiable:
		return true
	case *Decision:
		return d.NumUnexhausted == 0
	}
	return false
}

// Record installs a decision at id or verifies the one already there.
// created reports whether a new record was installed on a virgin node.
//
// When exploring is false, or when id is a DontKnow leaf, every child is
// realized as DontKnow and the decision is closed immediately.
func (t *Tree) Record(id NodeID, branchID string, constraints []expr.Expr, exploring bool) (created bool, err error) {
	if len(constraints) == 0 {
		return false, errors.Errorf("decision %s at node %d has no outcomes", branchID, id)
	}
	switch d := t.node(id).data.(type) {
	case *Decision:
		if d.BranchID != branchID || len(d.Constraints) != len(constraints) {
			return false, &InconsistencyError{
				Node:     id,
				BranchID: d.BranchID,
				Arity:    len(d.Constraints),
				GotID:    branchID,
				GotArity: len(constraints),
			}
		}
		return false, nil
	case Virgin:
		t.install(id, branchID, constraints, !exploring)
		return true, nil
	case DontKnow:
		t.install(id, branchID, constraints, true)
		return false, nil
	default:
		return false, errors.Errorf("decision %s recorded at leaf node %d", branchID, id)
	}
}

func (t *Tree) install(id NodeID, branchID string, constraints []expr.Expr, closed bool) {
	n := len(constraints)
	d := &Decision{
		BranchID:       branchID,
		Constraints:    append([]expr.Expr(nil), constraints...),
		Children:       make([]NodeID, n),
		NumOpen:        n,
		NumUnexhausted: n,
	}
	for i := range d.Children {
		d.Children[i] = None
	}
	t.node(id).data = d
	if !closed {
		return
	}
	for i := range d.Children {
		c := t.GetChild(id, i)
		t.node(c).data = DontKnow{}
		t.node(c).closedReported = true
	}
	d.NumOpen = 0
}

// GetChild returns the i-th child of the decision at id, realizing it if needed.
func (t *Tree) GetChild(id NodeID, i int) NodeID {
	d, ok := t.Decision(id)
	if !ok {
		panic(fmt.Sprintf("tree: node %d has no decision", id))
	}
	if c := d.Children[i]; c != None {
		return c
	}
	parent := t.node(id)
	c := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, node{
		parent:   id,
		index:    i,
		depth:    parent.depth + 1,
		altDepth: parent.altDepth,
		data:     Virgin{},
	})
	d.Children[i] = c
	return c
}

// Child returns the i-th child of the decision at id without realizing it.
func (t *Tree) Child(id NodeID, i int) NodeID {
	d, ok := t.Decision(id)
	if !ok {
		return None
	}
	return d.Children[i]
}

// NextOpenChild returns the lowest outcome index of id whose child is
// unrealized, virgin, or open, or -1 if none remains.
func (t *Tree) NextOpenChild(id NodeID) int {
	d, ok := t.Decision(id)
	if !ok {
		return -1
	}
	for i, c := range d.Children {
		if c == None || t.IsOpen(c) {
			return i
		}
	}
	return -1
}

// SetResult completes id with r if id is virgin or DontKnow.
// It reports whether the result was set.
func (t *Tree) SetResult(id NodeID, r trace.Result) bool {
	switch t.node(id).data.(type) {
	case Virgin, DontKnow:
		t.node(id).data = Completed{Result: r}
		return true
	}
	return false
}

// SetDontKnow marks a virgin node as DontKnow. It reports whether the node changed.
func (t *Tree) SetDontKnow(id NodeID) bool {
	if !t.IsVirgin(id) {
		return false
	}
	t.node(id).data = DontKnow{}
	return true
}

// SetUnsatisfiable marks a virgin node as Unsatisfiable. It reports whether the node changed.
func (t *Tree) SetUnsatisfiable(id NodeID) bool {
	if !t.IsVirgin(id) {
		return false
	}
	t.node(id).data = Unsatisfiable{}
	return true
}

// Report propagates the closure and exhaustion of id to its parent's counters.
// Each child decrements each counter of its parent at most once.
// It reports whether any counter changed.
func (t *Tree) Report(id NodeID) bool {
	n := t.node(id)
	if n.parent == None {
		return false
	}
	d, ok := t.Decision(n.parent)
	if !ok {
		return false
	}
	changed := false
	if !n.closedReported && !t.IsOpen(id) {
		n.closedReported = true
		d.NumOpen--
		changed = true
	}
	if !n.exhaustedReported && t.IsExhausted(id) {
		n.exhaustedReported = true
		d.NumUnexhausted--
		changed = true
	}
	return changed
}

// Settle reports id and every ancestor of id, from the bottom up.
func (t *Tree) Settle(id NodeID) {
	for ; id != None; id = t.Parent(id) {
		t.Report(id)
	}
}

// PathTo returns the outcome indices from the root to id.
func (t *Tree) PathTo(id NodeID) []int {
	path := make([]int, t.Depth(id))
	for n := id; t.Parent(n) != None; n = t.Parent(n) {
		path[t.Depth(n)-1] = t.Index(n)
	}
	return path
}

// Ancestors returns the nodes from the root to id, both inclusive.
func (t *Tree) Ancestors(id NodeID) []NodeID {
	nodes := make([]NodeID, t.Depth(id)+1)
	for n := id; n != None; n = t.Parent(n) {
		nodes[t.Depth(n)] = n
	}
	return nodes
}

// Constraint returns the constraint on the edge from the parent of id to id.
func (t *Tree) Constraint(id NodeID) expr.Expr {
	p := t.Parent(id)
	if p == None {
		return expr.True
	}
	d, _ := t.Decision(p)
	return d.Constraints[t.Index(id)]
}

// Branches returns the branches taken from the root to id.
func (t *Tree) Branches(id NodeID) []trace.Branch {
	ancestors := t.Ancestors(id)
	branches := make([]trace.Branch, 0, len(ancestors)-1)
	for _, n := range ancestors[1:] {
		d, _ := t.Decision(t.Parent(n))
		branches = append(branches, trace.Branch{
			ID:         d.BranchID,
			Index:      t.Index(n),
			Constraint: d.Constraints[t.Index(n)],
		})
	}
	return branches
}
