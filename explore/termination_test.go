package explore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTermination(t *testing.T) {
	testCases := []struct {
		name string
		term Termination
		s    Status
		done bool
	}{
		{"never", Never(), Status{Runs: 1 << 20}, false},
		{"max runs not reached", MaxRuns(3), Status{Runs: 2}, false},
		{"max runs reached", MaxRuns(3), Status{Runs: 3}, true},
		{"max runs unlimited", MaxRuns(0), Status{Runs: 100}, false},
		{"timeout not reached", Timeout(time.Second), Status{Elapsed: time.Millisecond}, false},
		{"timeout reached", Timeout(time.Second), Status{Elapsed: 2 * time.Second}, true},
		{"any", Any(MaxRuns(10), Timeout(time.Second)), Status{Runs: 1, Elapsed: time.Minute}, true},
		{"any of none", Any(), Status{Runs: 10}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.done, tc.term.Done(tc.s))
		})
	}
}

func TestOptionsMerge(t *testing.T) {
	off := false
	o := DefaultOptions().Merge(Options{MaxDepth: 8, Strategy: "priority", Exploring: &off})
	assert.Equal(t, 8, o.MaxDepth)
	assert.Equal(t, -1, o.MaxAltDepth)
	assert.Equal(t, "priority", o.Strategy)
	assert.Equal(t, "shared-prefix", o.Comparator)
	assert.False(t, o.IsExploring())
	assert.NoError(t, o.Validate())

	off = true
	assert.False(t, o.IsExploring(), "merged options do not alias the override")

	assert.Error(t, DefaultOptions().Merge(Options{MaxDepth: -1}).Validate())
	assert.Error(t, DefaultOptions().Merge(Options{Strategy: "random"}).Validate())
}

func TestEffectString(t *testing.T) {
	assert.Equal(t, "normal", Normal.String())
	assert.Equal(t, "unexpected", Unexpected.String())
	assert.Equal(t, "inconclusive", Inconclusive.String())
	assert.Equal(t, "Effect(7)", Effect(7).String())
}
