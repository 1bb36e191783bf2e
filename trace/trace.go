// Package trace describes explored paths: the branches taken and the
// classification of the run that ended them.
package trace

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ajalab/concolic/expr"
	"github.com/pkg/errors"
)

// Kind classifies the end of a path.
type Kind int

const (
	// KindOk is a normal completion.
	KindOk Kind = iota
	// KindError is an observed failure.
	KindError
	// KindDontKnow is a provisional or uncertain outcome.
	KindDontKnow
	// KindUnsatisfiable marks a path whose condition has no solution.
	KindUnsatisfiable
)

func (k Kind) String() string {
	switch k {
	case KindOk:
		return "ok"
	case KindError:
		return "error"
	case KindDontKnow:
		return "dont-know"
	case KindUnsatisfiable:
		return "unsatisfiable"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Result is the classification of a path.
// It is one of Ok, Error, DontKnow or Unsatisfiable.
type Result interface {
	Kind() Kind
	isResult()
}

// Ok is a run that completed normally.
type Ok struct {
	Valuation expr.Valuation
	Post      PostCondition
}

// Error is a run that ended with an uncaught failure.
type Error struct {
	Valuation expr.Valuation
	// ExceptionKind names the failure, e.g. "AssertionError".
	ExceptionKind string
	Message       string
	// Trace is the stack trace at the point of failure.
	Trace string
}

// DontKnow is an outcome the exploration could not decide.
type DontKnow struct{}

// Unsatisfiable is a path proven infeasible.
type Unsatisfiable struct{}

func (Ok) Kind() Kind            { return KindOk }
func (Error) Kind() Kind         { return KindError }
func (DontKnow) Kind() Kind      { return KindDontKnow }
func (Unsatisfiable) Kind() Kind { return KindUnsatisfiable }

func (Ok) isResult()            {}
func (Error) isResult()         {}
func (DontKnow) isResult()      {}
func (Unsatisfiable) isResult() {}

func (r Ok) String() string {
	return fmt.Sprintf("ok %v %v", r.Valuation, r.Post)
}

func (r Error) String() string {
	return fmt.Sprintf("error %s(%s) %v", r.ExceptionKind, r.Message, r.Valuation)
}

func (DontKnow) String() string      { return "dont-know" }
func (Unsatisfiable) String() string { return "unsatisfiable" }

// PostCondition describes the final values of result variables (return
// values, mutated fields) along one completed path.
type PostCondition map[string]expr.Expr

// Names returns the described variables in sorted order.
func (p PostCondition) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Eval evaluates the described variables under v.
func (p PostCondition) Eval(v expr.Valuation) (map[string]expr.Value, error) {
	vals := make(map[string]expr.Value, len(p))
	for name, e := range p {
		val, err := e.Eval(v)
		if err != nil {
			return nil, errors.Wrapf(err, "post-condition of %s", name)
		}
		vals[name] = val
	}
	return vals, nil
}

func (p PostCondition) String() string {
	parts := make([]string, 0, len(p))
	for _, name := range p.Names() {
		parts = append(parts, fmt.Sprintf("%s := %v", name, p[name]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Path is a sequence of branches from the root of the exploration to a leaf,
// together with the classification of the leaf.
type Path struct {
	branches []Branch
	result   Result
}

// NewPath creates a new Path.
func NewPath(branches []Branch, result Result) *Path {
	bs := make([]Branch, len(branches))
	copy(bs, branches)
	return &Path{branches: bs, result: result}
}

// Branches returns the branches of the path.
func (p *Path) Branches() []Branch {
	return p.branches
}

// Result returns the classification of the path.
func (p *Path) Result() Result {
	return p.result
}

// NumBranches returns the number of branches.
func (p *Path) NumBranches() int {
	return len(p.branches)
}

// Condition returns the path condition, the conjunction of all branch constraints.
func (p *Path) Condition() expr.Expr {
	cs := make([]expr.Expr, len(p.branches))
	for i, b := range p.branches {
		cs[i] = b.Constraint
	}
	return expr.And(cs...)
}

// Valuation returns the valuation that drove the path, if the path was executed.
func (p *Path) Valuation() (expr.Valuation, bool) {
	switch r := p.result.(type) {
	case Ok:
		return r.Valuation, true
	case Error:
		return r.Valuation, true
	}
	return expr.Valuation{}, false
}

func (p *Path) String() string {
	return fmt.Sprintf("%v -> %v", p.Condition(), p.result)
}
