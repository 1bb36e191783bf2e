// Package solver provides constraint solvers with a scoped assertion stack.
package solver

import (
	"fmt"
	"strings"
	"time"

	"github.com/ajalab/concolic/expr"
	"github.com/pkg/errors"
)

// Result is the outcome of Solve.
type Result int

const (
	// Sat means the assertions have a model.
	Sat Result = iota
	// Unsat means the assertions have no model.
	Unsat
	// DontKnow means the solver could not decide.
	DontKnow
)

func (r Result) String() string {
	switch r {
	case Sat:
		return "sat"
	case Unsat:
		return "unsat"
	case DontKnow:
		return "dont-know"
	}
	return fmt.Sprintf("Result(%d)", int(r))
}

var (
	// ErrUnsupported is returned when a constraint is outside the theory of a solver.
	ErrUnsupported = errors.New("unsupported constraint")
	// ErrStack is returned when popping more frames than were pushed.
	ErrStack = errors.New("assertion stack underflow")
)

// Context is a solver with a LIFO stack of assertion frames.
type Context interface {
	// Push opens a new frame.
	Push() error
	// Pop discards the n innermost frames and their assertions.
	Pop(n int) error
	// Add asserts constraints in the innermost frame.
	Add(constraints ...expr.Expr) error
	// Solve checks the conjunction of all assertions.
	// The valuation is meaningful only when the result is Sat.
	Solve() (Result, expr.Valuation, error)
}

// Options configures a solver.
type Options struct {
	// Name selects the backend: "enum", "gini" or "z3".
	Name string `yaml:"name"`
	// MaxCandidates bounds the number of assignments tried by the enum backend.
	MaxCandidates int `yaml:"max_candidates"`
	// Timeout bounds a single Solve call. Zero means no limit.
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultOptions returns the default solver options.
func DefaultOptions() Options {
	return Options{
		Name:          "enum",
		MaxCandidates: 1 << 16,
	}
}

// Merge returns o overridden by the non-zero fields of override.
func (o Options) Merge(override Options) Options {
	if override.Name != "" {
		o.Name = override.Name
	}
	if override.MaxCandidates != 0 {
		o.MaxCandidates = override.MaxCandidates
	}
	if override.Timeout != 0 {
		o.Timeout = override.Timeout
	}
	return o
}

// New creates a solver by name.
func New(name string, opts Options) (Context, error) {
	switch strings.ToLower(name) {
	case "", "enum":
		return NewEnum(opts), nil
	case "gini":
		return NewGini(opts), nil
	case "z3":
		return NewZ3(opts)
	}
	return nil, errors.Errorf("unknown solver: %s", name)
}

// frames is the assertion stack shared by the backends.
type frames struct {
	base  []expr.Expr
	stack [][]expr.Expr
}

func (f *frames) push() {
	f.stack = append(f.stack, nil)
}

func (f *frames) pop(n int) error {
	if n < 0 || n > len(f.stack) {
		return errors.Wrapf(ErrStack, "pop %d of %d frames", n, len(f.stack))
	}
	f.stack = f.stack[:len(f.stack)-n]
	return nil
}

// add appends constraints to the innermost frame. Assertions made before
// any Push are never popped.
func (f *frames) add(cs ...expr.Expr) {
	if len(f.stack) == 0 {
		f.base = append(f.base, cs...)
		return
	}
	top := len(f.stack) - 1
	f.stack[top] = append(f.stack[top], cs...)
}

func (f *frames) depth() int {
	return len(f.stack)
}

func (f *frames) assertions() []expr.Expr {
	all := append([]expr.Expr(nil), f.base...)
	for _, frame := range f.stack {
		all = append(all, frame...)
	}
	return all
}

func checkBool(cs []expr.Expr) error {
	for _, c := range cs {
		if c == nil {
			return errors.New("nil constraint")
		}
		if c.Kind() != expr.Bool {
			return errors.Errorf("constraint %v has kind %v", c, c.Kind())
		}
	}
	return nil
}
