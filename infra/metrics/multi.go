package metrics

import coremetrics "github.com/kilianp07/feasnet/core/metrics"

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordSearchStep forwards the step to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordSearchStep(step coremetrics.SearchStep) error {
	for _, s := range m.Sinks {
		if err := s.RecordSearchStep(step); err != nil {
			return err
		}
	}
	return nil
}

// RecordTrialOutcome forwards the outcome to sinks that record outcomes.
func (m *MultiSink) RecordTrialOutcome(outcome coremetrics.TrialOutcome) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.TrialOutcomeRecorder); ok {
			if err := rec.RecordTrialOutcome(outcome); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordOracleRun forwards the run to sinks that record oracle runs.
func (m *MultiSink) RecordOracleRun(run coremetrics.OracleRun) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.OracleRunRecorder); ok {
			if err := rec.RecordOracleRun(run); err != nil {
				return err
			}
		}
	}
	return nil
}
