// Package simulate defines the consumption simulator contract. The search
// treats the simulator as an opaque oracle: it never implements vehicle
// physics itself.
package simulate

import (
	"context"

	"github.com/kilianp07/feasnet/core/model"
)

// Outcome is the result of one oracle run over a scenario. Infeasible holds
// the driving events that ended below zero state of charge, sorted by
// ascending state of charge then event id.
type Outcome struct {
	Infeasible []model.DrivingEvent
}

// EventsBelowZero counts the infeasible driving events.
func (o Outcome) EventsBelowZero() int { return len(o.Infeasible) }

// RotationsBelowZero counts the distinct rotations with at least one
// infeasible driving event.
func (o Outcome) RotationsBelowZero() int {
	seen := make(map[int64]struct{}, len(o.Infeasible))
	for _, e := range o.Infeasible {
		seen[e.RotationID] = struct{}{}
	}
	return len(seen)
}

// Oracle runs the consumption simulation for a scenario. Implementations must
// be deterministic given the scenario's mutation state; the memoization cache
// relies on it.
type Oracle interface {
	Simulate(ctx context.Context, scenarioID int64) (Outcome, error)
}
