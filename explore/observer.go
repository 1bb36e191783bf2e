package explore

import (
	"time"

	"github.com/ajalab/concolic/expr"
	"github.com/ajalab/concolic/solver"
	"github.com/ajalab/concolic/trace"
)

// Observer is notified of the events of an Engine.
type Observer interface {
	// Decided is called for every decision reported by a run.
	Decided(effect Effect)
	// Solved is called after every solver query.
	Solved(res solver.Result, elapsed time.Duration)
	// Classified is called when a leaf receives its classification.
	Classified(kind trace.Kind)
	// Proposed is called for every valuation returned by FindNext.
	Proposed(v expr.Valuation, replay bool)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) Decided(Effect)                      {}
func (NopObserver) Solved(solver.Result, time.Duration) {}
func (NopObserver) Classified(trace.Kind)               {}
func (NopObserver) Proposed(expr.Valuation, bool)       {}
