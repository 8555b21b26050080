package model

import "time"

// TripType distinguishes revenue service from empty repositioning trips.
type TripType int

const (
	// TripPassenger is a regular passenger service trip.
	TripPassenger TripType = iota
	// TripDeadhead is an empty repositioning trip, typically synthesized when
	// a rotation is split.
	TripDeadhead
)

// String returns a human readable trip type.
func (t TripType) String() string {
	switch t {
	case TripPassenger:
		return "passenger"
	case TripDeadhead:
		return "deadhead"
	default:
		return "unknown"
	}
}

// ChargeType describes how vehicles charge at a station.
type ChargeType string

const (
	// ChargeOpportunity marks stations where vehicles charge during service breaks.
	ChargeOpportunity ChargeType = "opportunity"
	// ChargeDepot marks stations where vehicles charge overnight at the depot.
	ChargeDepot ChargeType = "depot"
)

// VoltageLevel is the grid connection voltage level of a charging station.
type VoltageLevel string

const (
	// VoltageLV is a low voltage grid connection.
	VoltageLV VoltageLevel = "LV"
	// VoltageMV is a medium voltage grid connection.
	VoltageMV VoltageLevel = "MV"
)

// Scenario identifies one mutable schedule instance.
type Scenario struct {
	ID   int64
	Name string
}

// ScenarioInfo is a scenario together with its rotation count, used for listings.
type ScenarioInfo struct {
	Scenario
	RotationCount int
}

// Station is a point the schedule visits. Electrification attributes are only
// meaningful when Electrified is true.
type Station struct {
	ID              int64
	Name            string
	Electrified     bool
	ChargingPlaces  int
	PowerPerCharger float64 // kW
	TotalPower      float64 // kW
	ChargeType      ChargeType
	VoltageLevel    VoltageLevel
}

// Route connects two stations over a fixed distance.
type Route struct {
	ID                 int64
	Name               string
	DistanceKm         float64
	DepartureStationID int64
	ArrivalStationID   int64
}

// Trip is one leg of a rotation, at a fixed position in its trip sequence.
type Trip struct {
	ID         int64
	RotationID int64
	Route      Route
	Departure  time.Time
	Arrival    time.Time
	Type       TripType
}

// Duration returns the scheduled driving time of the trip.
func (t Trip) Duration() time.Duration {
	return t.Arrival.Sub(t.Departure)
}

// Rotation is one vehicle's ordered sequence of trips for a duty period.
type Rotation struct {
	ID                       int64
	ScenarioID               int64
	Name                     string
	VehicleTypeID            int64
	AllowOpportunityCharging bool
}

// VehicleType carries the battery parameters the consumption model needs.
type VehicleType struct {
	ID               int64
	Name             string
	BatteryKWh       float64
	ConsumptionKWhKm float64
}

// DrivingEvent is the simulated outcome of one driving trip. A negative SoCEnd
// means the vehicle would arrive below an empty battery, i.e. the trip is
// infeasible.
type DrivingEvent struct {
	ID               int64
	ScenarioID       int64
	RotationID       int64
	TripID           int64
	ArrivalStationID int64
	SoCEnd           float64
}

// Infeasible reports whether the trip ends below zero state of charge.
func (e DrivingEvent) Infeasible() bool { return e.SoCEnd < 0 }
