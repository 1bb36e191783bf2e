// Package metrics exposes the events of an exploration as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/ajalab/concolic/explore"
	"github.com/ajalab/concolic/expr"
	"github.com/ajalab/concolic/solver"
	"github.com/ajalab/concolic/trace"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const namespace = "concolic"

// Collector counts the events of one engine. It implements both
// explore.Observer and prometheus.Collector.
type Collector struct {
	Inputs       *prometheus.CounterVec
	Decisions    *prometheus.CounterVec
	Solves       *prometheus.CounterVec
	Leaves       *prometheus.CounterVec
	SolveSeconds prometheus.Histogram
}

var _ explore.Observer = (*Collector)(nil)

// New creates a collector whose metrics carry the target label.
func New(target string) *Collector {
	labels := prometheus.Labels{"target": target}
	return &Collector{
		Inputs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "inputs_total",
			Help:        "Number of inputs proposed for a run, by source",
			ConstLabels: labels,
		}, []string{"source"}),
		Decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "decisions_total",
			Help:        "Number of decisions reported by runs, by effect",
			ConstLabels: labels,
		}, []string{"effect"}),
		Solves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "solver_queries_total",
			Help:        "Number of solver queries, by result",
			ConstLabels: labels,
		}, []string{"result"}),
		Leaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "leaves_total",
			Help:        "Number of classified leaves, by kind",
			ConstLabels: labels,
		}, []string{"kind"}),
		SolveSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "solver_query_duration_seconds",
			Help:        "Latency of solver queries",
			ConstLabels: labels,
			Buckets:     []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
	}
}

func (c *Collector) collectors() []prometheus.Collector {
	return []prometheus.Collector{c.Inputs, c.Decisions, c.Solves, c.Leaves, c.SolveSeconds}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range c.collectors() {
		m.Describe(ch)
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, m := range c.collectors() {
		m.Collect(ch)
	}
}

// Register registers c with reg.
func (c *Collector) Register(reg prometheus.Registerer) error {
	return errors.Wrap(reg.Register(c), "failed to register metrics")
}

func (c *Collector) Decided(effect explore.Effect) {
	c.Decisions.WithLabelValues(effect.String()).Inc()
}

func (c *Collector) Solved(res solver.Result, elapsed time.Duration) {
	c.Solves.WithLabelValues(res.String()).Inc()
	c.SolveSeconds.Observe(elapsed.Seconds())
}

func (c *Collector) Classified(kind trace.Kind) {
	c.Leaves.WithLabelValues(kind.String()).Inc()
}

func (c *Collector) Proposed(_ expr.Valuation, replay bool) {
	source := "solver"
	if replay {
		source = "preset"
	}
	c.Inputs.WithLabelValues(source).Inc()
}

// Totals gathers the counters of g and sums each family over its labels.
// Families of other types are skipped.
func Totals(g prometheus.Gatherer) (map[string]float64, error) {
	mfs, err := g.Gather()
	if err != nil {
		return nil, errors.Wrap(err, "failed to gather metrics")
	}
	totals := make(map[string]float64, len(mfs))
	for _, mf := range mfs {
		if mf.GetType() != dto.MetricType_COUNTER {
			continue
		}
		var sum float64
		for _, m := range mf.GetMetric() {
			sum += m.GetCounter().GetValue()
		}
		totals[mf.GetName()] = sum
	}
	return totals, nil
}
