// Package schedule defines the contract the search core uses to read and
// mutate the persistent rotation schedule. Implementations live under infra.
package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/kilianp07/feasnet/core/model"
)

// ErrRotationNotFound is returned when a rotation id does not resolve.
var ErrRotationNotFound = errors.New("rotation not found")

// ErrStationNotFound is returned when a station id does not resolve.
var ErrStationNotFound = errors.New("station not found")

// ErrScenarioNotFound is returned when a scenario id does not resolve.
var ErrScenarioNotFound = errors.New("scenario not found")

// NotFoundError wraps a sentinel with the offending id.
type NotFoundError struct {
	Kind error
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%v: id %d", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return e.Kind }

// Accessor is the schedule store contract consumed by the search core.
//
// Ordering guarantees matter for determinism: InfeasibleDrivingEvents returns
// events sorted by ascending state of charge, then ascending event id;
// ScenarioRotations returns rotations in ascending id order; RotationTrips
// returns trips in departure order.
type Accessor interface {
	// Scenarios lists all scenarios with their rotation counts.
	Scenarios(ctx context.Context) ([]model.ScenarioInfo, error)

	// CloneScenario creates an isolated deep copy of the scenario, including
	// rotations, trips, routes, stations and vehicle types, and returns the
	// new scenario id.
	CloneScenario(ctx context.Context, scenarioID int64) (int64, error)

	// DropScenario removes a scenario and everything belonging to it.
	DropScenario(ctx context.Context, scenarioID int64) error

	// ScenarioRotations returns all rotations of the scenario.
	ScenarioRotations(ctx context.Context, scenarioID int64) ([]model.Rotation, error)

	// RotationTrips returns the ordered trip sequence of the rotation.
	RotationTrips(ctx context.Context, rotationID int64) ([]model.Trip, error)

	// InfeasibleDrivingEvents returns the driving events of the scenario whose
	// state of charge ends below zero.
	InfeasibleDrivingEvents(ctx context.Context, scenarioID int64) ([]model.DrivingEvent, error)

	// ReplaceDrivingEvents atomically replaces the scenario's simulated
	// driving events with the given set.
	ReplaceDrivingEvents(ctx context.Context, scenarioID int64, events []model.DrivingEvent) error

	// Station returns the station with the given id.
	Station(ctx context.Context, stationID int64) (model.Station, error)

	// ElectrifyStation equips the station with opportunity charging at the
	// given per-charger power. Capacity is provisionally oversized; the real
	// sizing happens downstream.
	ElectrifyStation(ctx context.Context, stationID int64, power float64) error

	// VehicleType returns the vehicle type with the given id.
	VehicleType(ctx context.Context, vehicleTypeID int64) (model.VehicleType, error)

	// ReplaceRotation retires the rotation and persists the two given trip
	// sequences as successor rotations named after the original with "(A)"
	// and "(B)" suffixes. All writes of one replacement are atomic. The new
	// rotation ids are returned.
	ReplaceRotation(ctx context.Context, rotationID int64, tripsA, tripsB []model.Trip) (int64, int64, error)
}
