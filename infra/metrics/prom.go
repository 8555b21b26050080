package metrics

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/feasnet/core/metrics"
)

// PromSink records search activity in Prometheus metrics.
type PromSink struct {
	steps         *prometheus.CounterVec
	outcomes      *prometheus.CounterVec
	oracleRuns    *prometheus.CounterVec
	oracleLatency prometheus.Histogram
	infeasibility *prometheus.GaugeVec
}

// NewPromSink registers the search metrics on the provided registerer. If reg
// is nil, the default registerer is used. Already-registered collectors are
// reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	steps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "feasnet_search_steps_total",
		Help: "Total number of accepted search steps",
	}, []string{"trial_id", "cache_hit"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "feasnet_trial_generations_total",
		Help: "Trial generations by terminal status",
	}, []string{"status"})
	oracleRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "feasnet_oracle_runs_total",
		Help: "Simulation oracle invocations",
	}, []string{"failed"})
	oracleLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "feasnet_oracle_duration_seconds",
		Help:    "Simulation oracle run time",
		Buckets: prometheus.DefBuckets,
	})
	infeasibility := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "feasnet_rotations_below_zero",
		Help: "Remaining infeasible rotations per trial",
	}, []string{"trial_id"})

	collectors := []prometheus.Collector{steps, outcomes, oracleRuns, oracleLatency, infeasibility}
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			are, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				return nil, fmt.Errorf("register collector %d: %w", i, err)
			}
			switch existing := are.ExistingCollector.(type) {
			case *prometheus.CounterVec:
				switch i {
				case 0:
					steps = existing
				case 1:
					outcomes = existing
				case 2:
					oracleRuns = existing
				}
			case prometheus.Histogram:
				oracleLatency = existing
			case *prometheus.GaugeVec:
				infeasibility = existing
			}
		}
	}

	return &PromSink{
		steps:         steps,
		outcomes:      outcomes,
		oracleRuns:    oracleRuns,
		oracleLatency: oracleLatency,
		infeasibility: infeasibility,
	}, nil
}

// RecordSearchStep increments the step counter and updates the infeasibility
// gauge.
func (s *PromSink) RecordSearchStep(step coremetrics.SearchStep) error {
	s.steps.WithLabelValues(step.TrialID, strconv.FormatBool(step.CacheHit)).Inc()
	s.infeasibility.WithLabelValues(step.TrialID).Set(float64(step.RotationsBelowZero))
	return nil
}

// RecordTrialOutcome counts generations by terminal status.
func (s *PromSink) RecordTrialOutcome(outcome coremetrics.TrialOutcome) error {
	s.outcomes.WithLabelValues(outcome.Status).Inc()
	return nil
}

// RecordOracleRun counts oracle invocations and observes their latency.
func (s *PromSink) RecordOracleRun(run coremetrics.OracleRun) error {
	s.oracleRuns.WithLabelValues(strconv.FormatBool(run.Failed)).Inc()
	s.oracleLatency.Observe(run.Duration.Seconds())
	return nil
}
