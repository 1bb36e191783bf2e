package explore

import "time"

// Status is the progress of an analysis, polled by a Termination before each search.
type Status struct {
	// Runs is the number of completed runs.
	Runs int
	// Elapsed is the time since the analysis started.
	Elapsed time.Duration
}

// Termination decides when an analysis stops requesting new inputs.
type Termination interface {
	Done(s Status) bool
}

// TerminationFunc adapts a function to Termination.
type TerminationFunc func(s Status) bool

// Done calls f.
func (f TerminationFunc) Done(s Status) bool {
	return f(s)
}

// Never never stops the analysis; it ends when the tree is exhausted.
func Never() Termination {
	return TerminationFunc(func(Status) bool { return false })
}

// MaxRuns stops after n runs. Non-positive n means no limit.
func MaxRuns(n int) Termination {
	return TerminationFunc(func(s Status) bool { return n > 0 && s.Runs >= n })
}

// Timeout stops once d has elapsed. Non-positive d means no limit.
func Timeout(d time.Duration) Termination {
	return TerminationFunc(func(s Status) bool { return d > 0 && s.Elapsed >= d })
}

// Any stops as soon as one of ts does.
func Any(ts ...Termination) Termination {
	return TerminationFunc(func(s Status) bool {
		for _, t := range ts {
			if t.Done(s) {
				return true
			}
		}
		return false
	})
}
