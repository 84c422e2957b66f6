// Package metrics exports exploration progress as prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/forestbook1/sep-solver-sub001/internal/ports"
)

const namespace = "sepsolve"

const explorationSubsystem = "exploration"

// Recorder implements ports.ExplorationRecorder on a prometheus registry.
type Recorder struct {
	reg *prometheus.Registry

	StepsTotal      *prometheus.CounterVec
	SolutionsTotal  *prometheus.CounterVec
	ViolationsTotal *prometheus.CounterVec
	FailuresTotal   *prometheus.CounterVec
	StopsTotal      *prometheus.CounterVec

	StepDurationSeconds *prometheus.HistogramVec
}

var _ ports.ExplorationRecorder = (*Recorder)(nil)

// New registers the exploration metrics on a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Recorder{
		reg: reg,

		StepsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: explorationSubsystem,
				Name:      "steps_total",
				Help:      "Exploration steps by strategy and outcome",
			},
			[]string{"strategy", "outcome"},
		),

		SolutionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: explorationSubsystem,
				Name:      "solutions_total",
				Help:      "Valid candidates found by strategy",
			},
			[]string{"strategy"},
		),

		ViolationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: explorationSubsystem,
				Name:      "violations_total",
				Help:      "Constraint violations by constraint id",
			},
			[]string{"constraint"},
		),

		FailuresTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: explorationSubsystem,
				Name:      "failures_total",
				Help:      "Failed steps by stage",
			},
			[]string{"stage"},
		),

		StopsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: explorationSubsystem,
				Name:      "stops_total",
				Help:      "Finished explorations by stop reason",
			},
			[]string{"reason"},
		),

		StepDurationSeconds: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: explorationSubsystem,
				Name:      "step_duration_seconds",
				Help:      "Time spent generating, assigning and evaluating one candidate",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"strategy"},
		),
	}
}

func (r *Recorder) ObserveStep(strategy string, valid bool, took time.Duration) {
	outcome := "invalid"
	if valid {
		outcome = "valid"
		r.SolutionsTotal.WithLabelValues(strategy).Inc()
	}
	r.StepsTotal.WithLabelValues(strategy, outcome).Inc()
	r.StepDurationSeconds.WithLabelValues(strategy).Observe(took.Seconds())
}

func (r *Recorder) ObserveViolation(constraintID string) {
	r.ViolationsTotal.WithLabelValues(constraintID).Inc()
}

func (r *Recorder) ObserveFailure(stage string) {
	r.FailuresTotal.WithLabelValues(stage).Inc()
}

func (r *Recorder) ObserveStop(reason string) {
	r.StopsTotal.WithLabelValues(reason).Inc()
}

func (r *Recorder) Gatherer() prometheus.Gatherer { return r.reg }

// WriteTextfile dumps the current metrics in the node-exporter textfile
// format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}
