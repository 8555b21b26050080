package metrics

import (
	"context"

	coremetrics "github.com/kilianp07/feasnet/core/metrics"
	"github.com/kilianp07/feasnet/core/search"
	"github.com/kilianp07/feasnet/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for
// search events. It stops when the context is canceled.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.Sink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				switch e := ev.(type) {
				case search.StepEvent:
					_ = sink.RecordSearchStep(coremetrics.SearchStep{
						TrialID:            e.TrialID,
						Bias:               e.Bias,
						Generation:         e.Generation,
						Step:               e.Step,
						CacheHit:           e.CacheHit,
						ElectrifiedCount:   e.Record.ElectrifiedStationCount,
						SplitCount:         e.Record.SplitRotationCount,
						RotationsBelowZero: e.Record.RotationsBelowZero,
						Time:               e.Time,
					})
				case search.GenerationDoneEvent:
					if r, ok := sink.(coremetrics.TrialOutcomeRecorder); ok {
						_ = r.RecordTrialOutcome(coremetrics.TrialOutcome{
							TrialID:    e.TrialID,
							Bias:       e.Bias,
							Generation: e.Generation,
							Status:     string(e.Status),
							Steps:      e.Steps,
							Time:       e.Time,
						})
					}
				case search.OracleEvent:
					if r, ok := sink.(coremetrics.OracleRunRecorder); ok {
						_ = r.RecordOracleRun(coremetrics.OracleRun{
							TrialID:    e.TrialID,
							ScenarioID: e.ScenarioID,
							Duration:   e.Duration,
							Failed:     e.Failed,
							Time:       e.Time,
						})
					}
				}
			}
		}
	}()
}
