package search

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/kilianp07/feasnet/core/model"
	"github.com/kilianp07/feasnet/core/schedule"
)

// ElectrifyHeuristic selects the station where the infeasible rotations spend
// the most break time, the idea being that this is where a charger would be
// used the most.
type ElectrifyHeuristic struct {
	// Power is the per-charger power in kW applied when the station is
	// electrified.
	Power float64
}

// Select returns the station to electrify next. Stations in the exclude set
// (already electrified within this generation) accumulate no break time.
// ErrExhausted is returned when every candidate station's accumulated break
// time is zero.
//
// Iteration is deterministic: rotations ascending by id, trips in departure
// order; of the stations with maximal accumulated break time the one first
// encountered wins.
func (h ElectrifyHeuristic) Select(ctx context.Context, store schedule.Accessor, events []model.DrivingEvent, exclude *State) (int64, error) {
	rotationIDs := make(map[int64]struct{})
	for _, ev := range events {
		rotationIDs[ev.RotationID] = struct{}{}
	}
	ordered := make([]int64, 0, len(rotationIDs))
	for id := range rotationIDs {
		ordered = append(ordered, id)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	breakTime := make(map[int64]time.Duration)
	var encounter []int64

	for _, rotationID := range ordered {
		trips, err := store.RotationTrips(ctx, rotationID)
		if err != nil {
			return 0, fmt.Errorf("rotation %d trips: %w", rotationID, err)
		}
		// The arrival of the last trip is the depot; it is never a
		// candidate.
		for i := 0; i < len(trips)-1; i++ {
			stationID := trips[i].Route.ArrivalStationID
			if exclude != nil && exclude.Electrified(stationID) {
				continue
			}
			dwell := trips[i+1].Departure.Sub(trips[i].Arrival)
			if dwell < 0 {
				dwell = 0
			}
			if _, seen := breakTime[stationID]; !seen {
				encounter = append(encounter, stationID)
			}
			breakTime[stationID] += dwell
		}
	}

	var best int64
	var bestDwell time.Duration
	for _, stationID := range encounter {
		if breakTime[stationID] > bestDwell {
			best = stationID
			bestDwell = breakTime[stationID]
		}
	}
	if bestDwell == 0 {
		return 0, ErrExhausted
	}
	return best, nil
}

// Apply electrifies the station through the store.
func (h ElectrifyHeuristic) Apply(ctx context.Context, store schedule.Accessor, stationID int64) error {
	if err := store.ElectrifyStation(ctx, stationID, h.Power); err != nil {
		return fmt.Errorf("electrify station %d: %w", stationID, err)
	}
	return nil
}
