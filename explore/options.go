package explore

import (
	"github.com/pkg/errors"
)

// Options specifies the (optional) parameters for exploration.
// Options are ignored when merged if a field has the zero value.
type Options struct {
	// MaxDepth is the maximum number of decisions recorded along a path.
	MaxDepth int `yaml:"max_depth"`
	// MaxAltDepth is the maximum number of alternatives forced along a path.
	// A negative value means unbounded.
	MaxAltDepth int `yaml:"max_alt_depth"`
	// Strategy is the name of the exploration strategy: "dfs" or "priority".
	Strategy string `yaml:"strategy"`
	// Comparator orders the pending alternatives of the priority strategy:
	// "shared-prefix", "shallow" or "deep".
	Comparator string `yaml:"comparator"`
	// Exploring tells whether decisions are explored from the start of each run.
	Exploring *bool `yaml:"exploring"`
}

var defaultOptions = Options{
	MaxDepth:    64,
	MaxAltDepth: -1,
	Strategy:    "dfs",
	Comparator:  "shared-prefix",
}

// DefaultOptions returns the default options.
func DefaultOptions() Options {
	o := defaultOptions
	exploring := true
	o.Exploring = &exploring
	return o
}

// Merge returns o overridden by the non-zero fields of override.
func (o Options) Merge(override Options) Options {
	if override.MaxDepth != 0 {
		o.MaxDepth = override.MaxDepth
	}
	if override.MaxAltDepth != 0 {
		o.MaxAltDepth = override.MaxAltDepth
	}
	if override.Strategy != "" {
		o.Strategy = override.Strategy
	}
	if override.Comparator != "" {
		o.Comparator = override.Comparator
	}
	if override.Exploring != nil {
		exploring := *override.Exploring
		o.Exploring = &exploring
	}
	return o
}

// IsExploring returns the initial exploring flag.
func (o Options) IsExploring() bool {
	return o.Exploring == nil || *o.Exploring
}

// Validate checks the options.
func (o Options) Validate() error {
	if o.MaxDepth < 0 {
		return errors.Errorf("max depth must not be negative: %d", o.MaxDepth)
	}
	if _, err := NewStrategy(o); err != nil {
		return err
	}
	return nil
}

// NewStrategy creates the strategy named by o.
func NewStrategy(o Options) (Strategy, error) {
	switch o.Strategy {
	case "", "dfs":
		return DFS{}, nil
	case "priority":
		less, err := ComparatorByName(o.Comparator)
		if err != nil {
			return nil, err
		}
		return NewPriority(less), nil
	}
	return nil, errors.Errorf("unknown strategy: %s", o.Strategy)
}
