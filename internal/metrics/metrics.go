// Package metrics counts optimizer work in a private Prometheus registry and
// writes it out in the node_exporter textfile format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the benchmark metrics. A nil *Recorder discards everything.
type Recorder struct {
	registry    *prometheus.Registry
	evaluations *prometheus.CounterVec
	runs        *prometheus.CounterVec
	seconds     *prometheus.HistogramVec
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "randopt_fitness_evaluations_total",
			Help: "Fitness function evaluations performed.",
		}, []string{"problem", "algorithm"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "randopt_optimizer_runs_total",
			Help: "Optimizer runs completed.",
		}, []string{"problem", "algorithm"}),
		seconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "randopt_optimizer_run_seconds",
			Help:    "Wall time of a single optimizer run.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"problem", "algorithm"}),
	}
	r.registry.MustRegister(r.evaluations, r.runs, r.seconds)
	return r
}

// ObserveRun records one finished optimizer run.
func (r *Recorder) ObserveRun(problem, algorithm string, evaluations int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.evaluations.WithLabelValues(problem, algorithm).Add(float64(evaluations))
	r.runs.WithLabelValues(problem, algorithm).Inc()
	r.seconds.WithLabelValues(problem, algorithm).Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry, e.g. for promhttp.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// WriteTextfile atomically writes all metrics to path.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
