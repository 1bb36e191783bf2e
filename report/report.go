// Package report renders the outcome of an analysis as JSON or as an indented text tree.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ajalab/concolic/finalize"
	"github.com/ajalab/concolic/trace"
	"github.com/ajalab/concolic/tree"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Summary counts the leaves of a finalized tree per classification.
type Summary struct {
	Ok            int `json:"ok"`
	Error         int `json:"error"`
	DontKnow      int `json:"dont_know"`
	Unsatisfiable int `json:"unsatisfiable"`
}

func (s Summary) String() string {
	return fmt.Sprintf("ok: %d, error: %d, dont-know: %d, unsatisfiable: %d",
		s.Ok, s.Error, s.DontKnow, s.Unsatisfiable)
}

func (s *Summary) add(k trace.Kind) {
	switch k {
	case trace.KindOk:
		s.Ok++
	case trace.KindError:
		s.Error++
	case trace.KindDontKnow:
		s.DontKnow++
	case trace.KindUnsatisfiable:
		s.Unsatisfiable++
	}
}

// Path is the report of one explored path.
type Path struct {
	Condition string            `json:"condition"`
	Result    string            `json:"result"`
	Inputs    map[string]string `json:"inputs,omitempty"`
	Post      map[string]string `json:"post,omitempty"`
	Exception string            `json:"exception,omitempty"`
	Message   string            `json:"message,omitempty"`
}

// Node is the JSON form of a finalized tree node.
// Branches set BranchID, Cond, Then and Else; leaves set Result.
type Node struct {
	BranchID string `json:"branch,omitempty"`
	Cond     string `json:"cond,omitempty"`
	Then     *Node  `json:"then,omitempty"`
	Else     *Node  `json:"else,omitempty"`
	Result   string `json:"result,omitempty"`
}

// Report is the outcome of the analysis of one target.
type Report struct {
	ID      string        `json:"id"`
	Target  string        `json:"target"`
	Runs    int           `json:"runs"`
	Elapsed time.Duration `json:"elapsed_ns"`
	Summary Summary       `json:"summary"`
	Paths   []Path        `json:"paths"`
	Tree    *Node         `json:"tree"`

	root finalize.Node
}

// New builds the report of an analysis of target that explored t.
func New(target string, t *tree.Tree, runs int, elapsed time.Duration) *Report {
	root := finalize.Finalize(t)
	r := &Report{
		ID:      uuid.New().String(),
		Target:  target,
		Runs:    runs,
		Elapsed: elapsed,
		Tree:    convert(root),
		root:    root,
	}
	for _, p := range finalize.Paths(t) {
		r.Summary.add(p.Result().Kind())
		r.Paths = append(r.Paths, newPath(p))
	}
	return r
}

// Root returns the finalized tree.
func (r *Report) Root() finalize.Node {
	return r.root
}

func newPath(p *trace.Path) Path {
	rp := Path{
		Condition: p.Condition().String(),
		Result:    p.Result().Kind().String(),
	}
	if v, ok := p.Valuation(); ok {
		rp.Inputs = make(map[string]string, v.Len())
		for name, val := range v.Map() {
			rp.Inputs[name] = val.String()
		}
	}
	switch r := p.Result().(type) {
	case trace.Ok:
		if len(r.Post) > 0 {
			rp.Post = make(map[string]string, len(r.Post))
			for name, e := range r.Post {
				rp.Post[name] = e.String()
			}
		}
	case trace.Error:
		rp.Exception = r.ExceptionKind
		rp.Message = r.Message
	}
	return rp
}

func convert(n finalize.Node) *Node {
	switch n := n.(type) {
	case *finalize.Branch:
		return &Node{
			BranchID: n.BranchID,
			Cond:     n.Cond.String(),
			Then:     convert(n.Then),
			Else:     convert(n.Else),
		}
	case *finalize.Leaf:
		return &Node{Result: leafString(n)}
	}
	return nil
}

func leafString(l *finalize.Leaf) string {
	switch r := l.Result.(type) {
	case trace.Ok:
		if len(r.Post) == 0 {
			return fmt.Sprintf("ok %v", r.Valuation)
		}
		return fmt.Sprintf("ok %v %v", r.Valuation, r.Post)
	case trace.Error:
		return fmt.Sprintf("error %s: %s %v", r.ExceptionKind, r.Message, r.Valuation)
	}
	return l.Result.Kind().String()
}

// WriteJSON writes r as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(r), "failed to encode report")
}

// WriteText writes r as a header followed by the finalized tree.
func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "target %s (%s)\n", r.Target, r.ID)
	fmt.Fprintf(&b, "runs: %d, elapsed: %v\n", r.Runs, r.Elapsed)
	fmt.Fprintf(&b, "%v\n", r.Summary)
	writeNode(&b, r.root, "")
	_, err := io.WriteString(w, b.String())
	return errors.Wrap(err, "failed to write report")
}

func writeNode(b *strings.Builder, n finalize.Node, indent string) {
	switch n := n.(type) {
	case *finalize.Branch:
		fmt.Fprintf(b, "%sif %v [%s]\n", indent, n.Cond, n.BranchID)
		writeNode(b, n.Then, indent+"  ")
		fmt.Fprintf(b, "%selse\n", indent)
		writeNode(b, n.Else, indent+"  ")
	case *finalize.Leaf:
		fmt.Fprintf(b, "%s%s\n", indent, leafString(n))
	}
}
