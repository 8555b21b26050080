// Package metrics defines the observability records the search emits and the
// sink interfaces that consume them. Concrete sinks live under infra/metrics.
package metrics

import "time"

// SearchStep is a per-step observability record.
type SearchStep struct {
	TrialID            string
	Bias               float64
	Generation         int
	Step               int
	CacheHit           bool
	ElectrifiedCount   int
	SplitCount         int
	RotationsBelowZero int
	Time               time.Time
}

// TrialOutcome records the terminal state of one trial generation.
type TrialOutcome struct {
	TrialID    string
	Bias       float64
	Generation int
	Status     string
	Steps      int
	Time       time.Time
}

// OracleRun records one invocation of the simulation oracle.
type OracleRun struct {
	TrialID    string
	ScenarioID int64
	Duration   time.Duration
	Failed     bool
	Time       time.Time
}

// Sink records search steps for observability purposes.
type Sink interface {
	RecordSearchStep(step SearchStep) error
}

// TrialOutcomeRecorder records trial generation outcomes.
type TrialOutcomeRecorder interface {
	RecordTrialOutcome(outcome TrialOutcome) error
}

// OracleRunRecorder records oracle invocations.
type OracleRunRecorder interface {
	RecordOracleRun(run OracleRun) error
}

// NopSink ignores all records.
type NopSink struct{}

// RecordSearchStep implements Sink.
func (NopSink) RecordSearchStep(SearchStep) error { return nil }

// RecordTrialOutcome implements TrialOutcomeRecorder.
func (NopSink) RecordTrialOutcome(TrialOutcome) error { return nil }

// RecordOracleRun implements OracleRunRecorder.
func (NopSink) RecordOracleRun(OracleRun) error { return nil }
