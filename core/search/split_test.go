package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kilianp07/feasnet/core/model"
)

func routedTrip(routeID, arrivalStation int64, distance float64, dep, arr time.Time) model.Trip {
	return model.Trip{
		Route: model.Route{
			ID:               routeID,
			DistanceKm:       distance,
			ArrivalStationID: arrivalStation,
		},
		Departure: dep,
		Arrival:   arr,
		Type:      model.TripPassenger,
	}
}

func TestSplitSelectLowestSoC(t *testing.T) {
	store := newMemStore()
	store.addRotation(1,
		routedTrip(1, 10, 10, at(7, 0), at(7, 30)),
		routedTrip(2, 99, 10, at(7, 40), at(8, 10)),
	)
	store.addRotation(2,
		routedTrip(3, 10, 10, at(7, 0), at(7, 30)),
		routedTrip(4, 99, 10, at(7, 40), at(8, 10)),
	)
	// Events arrive ordered by ascending state of charge; rotation 2 is worst.
	events := []model.DrivingEvent{
		{ID: 5, RotationID: 2, SoCEnd: -0.6},
		{ID: 3, RotationID: 1, SoCEnd: -0.1},
	}

	h := SplitHeuristic{DeadheadBreak: 5 * time.Minute}
	got, err := h.Select(context.Background(), store, events)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if got != 2 {
		t.Fatalf("selected rotation %d, want 2", got)
	}
}

func TestSplitSelectSkipsSingleTripRotations(t *testing.T) {
	store := newMemStore()
	store.addRotation(1, routedTrip(1, 99, 10, at(7, 0), at(7, 30)))
	store.addRotation(2,
		routedTrip(2, 10, 10, at(7, 0), at(7, 30)),
		routedTrip(3, 99, 10, at(7, 40), at(8, 10)),
	)
	events := []model.DrivingEvent{
		{ID: 1, RotationID: 1, SoCEnd: -0.9},
		{ID: 2, RotationID: 2, SoCEnd: -0.2},
	}

	h := SplitHeuristic{DeadheadBreak: 5 * time.Minute}
	got, err := h.Select(context.Background(), store, events)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if got != 2 {
		t.Fatalf("selected rotation %d, want 2", got)
	}
}

func TestSplitSelectExhausted(t *testing.T) {
	store := newMemStore()
	store.addRotation(1, routedTrip(1, 99, 10, at(7, 0), at(7, 30)))
	events := []model.DrivingEvent{{ID: 1, RotationID: 1, SoCEnd: -0.9}}

	h := SplitHeuristic{DeadheadBreak: 5 * time.Minute}
	if _, err := h.Select(context.Background(), store, events); !errors.Is(err, ErrExhausted) {
		t.Fatalf("err = %v, want ErrExhausted", err)
	}
	if _, err := h.Select(context.Background(), store, nil); !errors.Is(err, ErrExhausted) {
		t.Fatalf("err = %v, want ErrExhausted on no events", err)
	}
}

func TestSplitIndexMidpoint(t *testing.T) {
	cases := []struct {
		name      string
		distances []float64
		want      int
	}{
		{"even halves", []float64{10, 10, 10, 10}, 2},
		{"front heavy clamps interior", []float64{90, 10}, 1},
		{"back heavy", []float64{10, 90}, 1},
		{"long tail", []float64{5, 5, 5, 50}, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			trips := make([]model.Trip, len(tc.distances))
			for i, d := range tc.distances {
				trips[i] = routedTrip(int64(i+1), 99, d, at(7+i, 0), at(7+i, 30))
			}
			if got := splitIndex(trips); got != tc.want {
				t.Fatalf("splitIndex = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestSplitApplyBuildsDeadheads(t *testing.T) {
	store := newMemStore()
	first := routedTrip(1, 10, 10, at(7, 0), at(7, 30))
	middle := routedTrip(2, 11, 10, at(7, 40), at(8, 10))
	last := routedTrip(3, 99, 10, at(8, 20), at(8, 50))
	store.addRotation(1, first, middle, last)

	h := SplitHeuristic{DeadheadBreak: 5 * time.Minute}
	idA, idB, err := h.Apply(context.Background(), store, 1)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := store.RotationTrips(context.Background(), 1); err == nil {
		t.Fatal("original rotation must be gone")
	}

	tripsA, err := store.RotationTrips(context.Background(), idA)
	if err != nil {
		t.Fatalf("trips A: %v", err)
	}
	if len(tripsA) != 2 {
		t.Fatalf("half A has %d trips, want 2", len(tripsA))
	}
	dhA := tripsA[1]
	if dhA.Type != model.TripDeadhead {
		t.Fatal("half A must end with a deadhead")
	}
	if dhA.Route.ID != last.Route.ID {
		t.Fatalf("deadhead A route = %d, want the closing trip's route %d", dhA.Route.ID, last.Route.ID)
	}
	if want := first.Arrival.Add(5 * time.Minute); !dhA.Departure.Equal(want) {
		t.Fatalf("deadhead A departs %v, want %v", dhA.Departure, want)
	}
	if dhA.Duration() != last.Duration() {
		t.Fatalf("deadhead A duration = %v, want %v", dhA.Duration(), last.Duration())
	}

	tripsB, err := store.RotationTrips(context.Background(), idB)
	if err != nil {
		t.Fatalf("trips B: %v", err)
	}
	if len(tripsB) != 3 {
		t.Fatalf("half B has %d trips, want 3", len(tripsB))
	}
	dhB := tripsB[0]
	if dhB.Type != model.TripDeadhead {
		t.Fatal("half B must start with a deadhead")
	}
	if dhB.Route.ID != first.Route.ID {
		t.Fatalf("deadhead B route = %d, want the opening trip's route %d", dhB.Route.ID, first.Route.ID)
	}
	if want := middle.Departure.Add(-5 * time.Minute); !dhB.Arrival.Equal(want) {
		t.Fatalf("deadhead B arrives %v, want %v", dhB.Arrival, want)
	}
	if dhB.Duration() != first.Duration() {
		t.Fatalf("deadhead B duration = %v, want %v", dhB.Duration(), first.Duration())
	}
	// Both halves keep at least one original trip.
	if tripsA[0].Route.ID != first.Route.ID || tripsB[1].Route.ID != middle.Route.ID {
		t.Fatal("original trips must survive the split")
	}
}

func TestSplitApplyRejectsSingleTrip(t *testing.T) {
	store := newMemStore()
	store.addRotation(1, routedTrip(1, 99, 10, at(7, 0), at(7, 30)))
	h := SplitHeuristic{DeadheadBreak: 5 * time.Minute}
	if _, _, err := h.Apply(context.Background(), store, 1); err == nil {
		t.Fatal("expected error on single trip rotation")
	}
}
