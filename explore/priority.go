package explore

import (
	"container/heap"

	"github.com/ajalab/concolic/tree"
	"github.com/pkg/errors"
)

// Alternative is an outcome of a decision that a run did not take.
type Alternative struct {
	Node  tree.NodeID
	Index int
	// Path is the outcome indices from the root to the alternative, inclusive.
	Path []int
	seq  int
}

// Depth returns the depth of the node the alternative leads to.
func (a *Alternative) Depth() int {
	return len(a.Path)
}

// Less reports whether a should be explored before b.
// ref is the path of the previous target.
type Less func(a, b *Alternative, ref []int) bool

// ComparatorByName returns a comparator: "shared-prefix", "shallow" or "deep".
func ComparatorByName(name string) (Less, error) {
	switch name {
	case "", "shared-prefix":
		return SharedPrefix, nil
	case "shallow":
		return Shallow, nil
	case "deep":
		return Deep, nil
	}
	return nil, errors.Errorf("unknown comparator: %s", name)
}

// SharedPrefix prefers alternatives sharing a longer prefix with the previous target,
// which keeps the number of solver pops and pushes small. Ties go to the deeper
// alternative, then to the most recent.
func SharedPrefix(a, b *Alternative, ref []int) bool {
	pa, pb := sharedPrefix(a.Path, ref), sharedPrefix(b.Path, ref)
	if pa != pb {
		return pa > pb
	}
	if a.Depth() != b.Depth() {
		return a.Depth() > b.Depth()
	}
	return a.seq > b.seq
}

// Shallow prefers alternatives close to the root, oldest first.
func Shallow(a, b *Alternative, ref []int) bool {
	if a.Depth() != b.Depth() {
		return a.Depth() < b.Depth()
	}
	return a.seq < b.seq
}

// Deep prefers alternatives far from the root, newest first.
func Deep(a, b *Alternative, ref []int) bool {
	if a.Depth() != b.Depth() {
		return a.Depth() > b.Depth()
	}
	return a.seq > b.seq
}

func sharedPrefix(xs, ys []int) int {
	n := 0
	for n < len(xs) && n < len(ys) && xs[n] == ys[n] {
		n++
	}
	return n
}

type alternativeKey struct {
	node  tree.NodeID
	index int
}

// Priority keeps the alternatives not taken by the runs in a priority queue.
type Priority struct {
	queue altQueue
	seen  map[alternativeKey]struct{}
	seq   int
}

// NewPriority creates a priority strategy ordered by less.
func NewPriority(less Less) *Priority {
	return &Priority{
		queue: altQueue{less: less},
		seen:  make(map[alternativeKey]struct{}),
	}
}

// Len returns the number of pending alternatives.
func (p *Priority) Len() int {
	return p.queue.Len()
}

// Observe enqueues every outcome of node except chosen.
func (p *Priority) Observe(t *tree.Tree, node tree.NodeID, chosen int) {
	d, ok := t.Decision(node)
	if !ok {
		return
	}
	prefix := t.PathTo(node)
	for i := range d.Constraints {
		if i == chosen {
			continue
		}
		key := alternativeKey{node, i}
		if _, ok := p.seen[key]; ok {
			continue
		}
		p.seen[key] = struct{}{}
		path := make([]int, len(prefix)+1)
		copy(path, prefix)
		path[len(prefix)] = i
		p.seq++
		heap.Push(&p.queue, &Alternative{Node: node, Index: i, Path: path, seq: p.seq})
	}
}

// Next pops alternatives until one is still open. When the queue runs dry,
// the remaining open nodes are searched depth-first.
func (p *Priority) Next(t *tree.Tree, from tree.NodeID) (tree.NodeID, bool) {
	p.queue.ref = t.PathTo(from)
	heap.Init(&p.queue)
	for p.queue.Len() > 0 {
		a := heap.Pop(&p.queue).(*Alternative)
		c := t.Child(a.Node, a.Index)
		if c != tree.None && !t.IsOpen(c) {
			continue
		}
		if target, ok := descend(t, t.GetChild(a.Node, a.Index)); ok {
			return target, true
		}
	}
	return DFS{}.Next(t, t.Root())
}

type altQueue struct {
	items []*Alternative
	less  Less
	ref   []int
}

func (q altQueue) Len() int           { return len(q.items) }
func (q altQueue) Less(i, j int) bool { return q.less(q.items[i], q.items[j], q.ref) }
func (q altQueue) Swap(i, j int)      { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *altQueue) Push(x interface{}) {
	q.items = append(q.items, x.(*Alternative))
}

func (q *altQueue) Pop() interface{} {
	n := len(q.items)
	a := q.items[n-1]
	q.items[n-1] = nil
	q.items = q.items[:n-1]
	return a
}
