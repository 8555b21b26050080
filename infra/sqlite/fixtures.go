package sqlite

import (
	"context"
	"fmt"

	"github.com/kilianp07/feasnet/core/model"
)

// The builder methods below populate a schedule from scratch. They are used
// by importers and tests; the search core itself never creates base data.

// CreateScenario inserts a scenario and returns its id.
func (s *Store) CreateScenario(ctx context.Context, name string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO scenarios (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("create scenario: %w", err)
	}
	return res.LastInsertId()
}

// AddVehicleType inserts a vehicle type and returns its id.
func (s *Store) AddVehicleType(ctx context.Context, scenarioID int64, vt model.VehicleType) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
        INSERT INTO vehicle_types (scenario_id, name, battery_kwh, consumption_kwh_km)
        VALUES (?, ?, ?, ?)`, scenarioID, vt.Name, vt.BatteryKWh, vt.ConsumptionKWhKm)
	if err != nil {
		return 0, fmt.Errorf("add vehicle type: %w", err)
	}
	return res.LastInsertId()
}

// AddStation inserts a station and returns its id.
func (s *Store) AddStation(ctx context.Context, scenarioID int64, st model.Station) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
        INSERT INTO stations (scenario_id, name, electrified, charging_places, power_per_charger, total_power, charge_type, voltage_level)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		scenarioID, st.Name, st.Electrified, st.ChargingPlaces, st.PowerPerCharger,
		st.TotalPower, string(st.ChargeType), string(st.VoltageLevel))
	if err != nil {
		return 0, fmt.Errorf("add station: %w", err)
	}
	return res.LastInsertId()
}

// AddRoute inserts a route and returns its id.
func (s *Store) AddRoute(ctx context.Context, scenarioID int64, r model.Route) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
        INSERT INTO routes (scenario_id, name, distance_km, departure_station_id, arrival_station_id)
        VALUES (?, ?, ?, ?, ?)`,
		scenarioID, r.Name, r.DistanceKm, r.DepartureStationID, r.ArrivalStationID)
	if err != nil {
		return 0, fmt.Errorf("add route: %w", err)
	}
	return res.LastInsertId()
}

// AddRotation inserts a rotation and returns its id.
func (s *Store) AddRotation(ctx context.Context, r model.Rotation) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
        INSERT INTO rotations (scenario_id, name, vehicle_type_id, allow_opportunity_charging)
        VALUES (?, ?, ?, ?)`,
		r.ScenarioID, r.Name, r.VehicleTypeID, r.AllowOpportunityCharging)
	if err != nil {
		return 0, fmt.Errorf("add rotation: %w", err)
	}
	return res.LastInsertId()
}

// AddTrip inserts a trip and returns its id. The trip's route must already
// exist; only its id is stored.
func (s *Store) AddTrip(ctx context.Context, scenarioID int64, t model.Trip) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
        INSERT INTO trips (scenario_id, rotation_id, route_id, departure, arrival, trip_type)
        VALUES (?, ?, ?, ?, ?, ?)`,
		scenarioID, t.RotationID, t.Route.ID, t.Departure.Unix(), t.Arrival.Unix(), int(t.Type))
	if err != nil {
		return 0, fmt.Errorf("add trip: %w", err)
	}
	return res.LastInsertId()
}
