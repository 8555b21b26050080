package search

import (
	"context"
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/feasnet/core/model"
	"github.com/kilianp07/feasnet/core/schedule"
)

// SplitHeuristic splits the rotation carrying the most-negative driving event
// into two shorter rotations at its distance midpoint, bridging both halves
// to the depot with synthesized deadhead trips.
type SplitHeuristic struct {
	// DeadheadBreak is the gap between a rotation half and its synthesized
	// deadhead trip.
	DeadheadBreak time.Duration
}

// Select returns the rotation to split next: the one containing the event
// with the lowest state of charge. Events are already ordered by ascending
// state of charge then id, so the first event on a splittable rotation wins.
// Rotations with fewer than two trips cannot be split and are skipped.
// ErrExhausted is returned when no candidate remains.
func (h SplitHeuristic) Select(ctx context.Context, store schedule.Accessor, events []model.DrivingEvent) (int64, error) {
	skipped := make(map[int64]struct{})
	for _, ev := range events {
		if _, ok := skipped[ev.RotationID]; ok {
			continue
		}
		trips, err := store.RotationTrips(ctx, ev.RotationID)
		if err != nil {
			return 0, fmt.Errorf("rotation %d trips: %w", ev.RotationID, err)
		}
		if len(trips) < 2 {
			skipped[ev.RotationID] = struct{}{}
			continue
		}
		return ev.RotationID, nil
	}
	return 0, ErrExhausted
}

// Apply splits the rotation and returns the ids of the two successor
// rotations.
func (h SplitHeuristic) Apply(ctx context.Context, store schedule.Accessor, rotationID int64) (int64, int64, error) {
	trips, err := store.RotationTrips(ctx, rotationID)
	if err != nil {
		return 0, 0, fmt.Errorf("rotation %d trips: %w", rotationID, err)
	}
	if len(trips) < 2 {
		return 0, 0, fmt.Errorf("rotation %d: cannot split %d trips", rotationID, len(trips))
	}

	k := splitIndex(trips)
	first := trips[0]
	last := trips[len(trips)-1]

	// Half A keeps the leading trips and gains a deadhead back toward the
	// depot, shaped like the original closing trip.
	tripsA := make([]model.Trip, k, k+1)
	copy(tripsA, trips[:k])
	aStart := tripsA[len(tripsA)-1].Arrival.Add(h.DeadheadBreak)
	tripsA = append(tripsA, model.Trip{
		Route:     last.Route,
		Departure: aStart,
		Arrival:   aStart.Add(last.Duration()),
		Type:      model.TripDeadhead,
	})

	// Half B gains a leading deadhead out of the depot, shaped like the
	// original opening trip.
	tripsB := make([]model.Trip, 0, len(trips)-k+1)
	bEnd := trips[k].Departure.Add(-h.DeadheadBreak)
	tripsB = append(tripsB, model.Trip{
		Route:     first.Route,
		Departure: bEnd.Add(-first.Duration()),
		Arrival:   bEnd,
		Type:      model.TripDeadhead,
	})
	tripsB = append(tripsB, trips[k:]...)

	idA, idB, err := store.ReplaceRotation(ctx, rotationID, tripsA, tripsB)
	if err != nil {
		return 0, 0, fmt.Errorf("replace rotation %d: %w", rotationID, err)
	}
	return idA, idB, nil
}

// splitIndex returns the first trip index where the cumulative route distance
// exceeds half the rotation's total distance, clamped to a strictly interior
// index so both halves keep at least one original trip.
func splitIndex(trips []model.Trip) int {
	distances := make([]float64, len(trips))
	for i, t := range trips {
		distances[i] = t.Route.DistanceKm
	}
	floats.CumSum(distances, distances)
	total := distances[len(distances)-1]

	k := len(trips) - 1
	for i, cum := range distances {
		if cum > total/2 {
			k = i
			break
		}
	}
	if k < 1 {
		k = 1
	}
	if k > len(trips)-1 {
		k = len(trips) - 1
	}
	return k
}
