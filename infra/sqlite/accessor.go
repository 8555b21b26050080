package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/feasnet/core/model"
	"github.com/kilianp07/feasnet/core/schedule"
)

// Scenarios lists all scenarios with their rotation counts.
func (s *Store) Scenarios(ctx context.Context) ([]model.ScenarioInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT s.id, s.name, COUNT(r.id)
        FROM scenarios s LEFT JOIN rotations r ON r.scenario_id = s.id
        GROUP BY s.id ORDER BY s.id`)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var infos []model.ScenarioInfo
	for rows.Next() {
		var info model.ScenarioInfo
		if err := rows.Scan(&info.ID, &info.Name, &info.RotationCount); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// ScenarioRotations returns the scenario's rotations in ascending id order.
func (s *Store) ScenarioRotations(ctx context.Context, scenarioID int64) ([]model.Rotation, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, scenario_id, name, vehicle_type_id, allow_opportunity_charging
        FROM rotations WHERE scenario_id = ? ORDER BY id`, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("scenario %d rotations: %w", scenarioID, err)
	}
	defer func() { _ = rows.Close() }()
	var rotations []model.Rotation
	for rows.Next() {
		var r model.Rotation
		if err := rows.Scan(&r.ID, &r.ScenarioID, &r.Name, &r.VehicleTypeID, &r.AllowOpportunityCharging); err != nil {
			return nil, err
		}
		rotations = append(rotations, r)
	}
	return rotations, rows.Err()
}

// RotationTrips returns the ordered trip sequence of the rotation, with each
// trip's route resolved.
func (s *Store) RotationTrips(ctx context.Context, rotationID int64) ([]model.Trip, error) {
	var exists int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM rotations WHERE id = ?`, rotationID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &schedule.NotFoundError{Kind: schedule.ErrRotationNotFound, ID: rotationID}
	}
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT t.id, t.rotation_id, t.departure, t.arrival, t.trip_type,
               r.id, r.name, r.distance_km, r.departure_station_id, r.arrival_station_id
        FROM trips t JOIN routes r ON r.id = t.route_id
        WHERE t.rotation_id = ? ORDER BY t.departure, t.id`, rotationID)
	if err != nil {
		return nil, fmt.Errorf("rotation %d trips: %w", rotationID, err)
	}
	defer func() { _ = rows.Close() }()
	var trips []model.Trip
	for rows.Next() {
		var t model.Trip
		var dep, arr int64
		var tripType int
		if err := rows.Scan(&t.ID, &t.RotationID, &dep, &arr, &tripType,
			&t.Route.ID, &t.Route.Name, &t.Route.DistanceKm,
			&t.Route.DepartureStationID, &t.Route.ArrivalStationID); err != nil {
			return nil, err
		}
		t.Departure = time.Unix(dep, 0).UTC()
		t.Arrival = time.Unix(arr, 0).UTC()
		t.Type = model.TripType(tripType)
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

// InfeasibleDrivingEvents returns the scenario's driving events ending below
// zero state of charge, ordered by ascending state of charge then event id.
func (s *Store) InfeasibleDrivingEvents(ctx context.Context, scenarioID int64) ([]model.DrivingEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, scenario_id, rotation_id, trip_id, arrival_station_id, soc_end
        FROM events WHERE scenario_id = ? AND soc_end < 0
        ORDER BY soc_end, id`, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("scenario %d infeasible events: %w", scenarioID, err)
	}
	defer func() { _ = rows.Close() }()
	var events []model.DrivingEvent
	for rows.Next() {
		var e model.DrivingEvent
		if err := rows.Scan(&e.ID, &e.ScenarioID, &e.RotationID, &e.TripID, &e.ArrivalStationID, &e.SoCEnd); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// ReplaceDrivingEvents atomically replaces the scenario's simulated events.
func (s *Store) ReplaceDrivingEvents(ctx context.Context, scenarioID int64, events []model.DrivingEvent) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE scenario_id = ?`, scenarioID); err != nil {
			return fmt.Errorf("clear events: %w", err)
		}
		for _, e := range events {
			if _, err := tx.ExecContext(ctx, `
                INSERT INTO events (scenario_id, rotation_id, trip_id, arrival_station_id, soc_end)
                VALUES (?, ?, ?, ?, ?)`,
				scenarioID, e.RotationID, e.TripID, e.ArrivalStationID, e.SoCEnd); err != nil {
				return fmt.Errorf("insert event for trip %d: %w", e.TripID, err)
			}
		}
		return nil
	})
}

// Station returns the station with the given id.
func (s *Store) Station(ctx context.Context, stationID int64) (model.Station, error) {
	var st model.Station
	err := s.db.QueryRowContext(ctx, `
        SELECT id, name, electrified, charging_places, power_per_charger, total_power, charge_type, voltage_level
        FROM stations WHERE id = ?`, stationID).
		Scan(&st.ID, &st.Name, &st.Electrified, &st.ChargingPlaces, &st.PowerPerCharger,
			&st.TotalPower, (*string)(&st.ChargeType), (*string)(&st.VoltageLevel))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Station{}, &schedule.NotFoundError{Kind: schedule.ErrStationNotFound, ID: stationID}
	}
	if err != nil {
		return model.Station{}, err
	}
	return st, nil
}

// electrifiedPlaces is the provisional, oversized charger count assigned when
// a station is electrified. Real capacity sizing happens downstream.
const electrifiedPlaces = 100

// ElectrifyStation equips the station with opportunity charging.
func (s *Store) ElectrifyStation(ctx context.Context, stationID int64, power float64) error {
	res, err := s.db.ExecContext(ctx, `
        UPDATE stations SET electrified = 1, charging_places = ?, power_per_charger = ?,
               total_power = ?, charge_type = ?, voltage_level = ?
        WHERE id = ?`,
		electrifiedPlaces, power, electrifiedPlaces*power,
		string(model.ChargeOpportunity), string(model.VoltageMV), stationID)
	if err != nil {
		return fmt.Errorf("electrify station %d: %w", stationID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &schedule.NotFoundError{Kind: schedule.ErrStationNotFound, ID: stationID}
	}
	return nil
}

// VehicleType returns the vehicle type with the given id.
func (s *Store) VehicleType(ctx context.Context, vehicleTypeID int64) (model.VehicleType, error) {
	var vt model.VehicleType
	err := s.db.QueryRowContext(ctx, `
        SELECT id, name, battery_kwh, consumption_kwh_km FROM vehicle_types WHERE id = ?`, vehicleTypeID).
		Scan(&vt.ID, &vt.Name, &vt.BatteryKWh, &vt.ConsumptionKWhKm)
	if errors.Is(err, sql.ErrNoRows) {
		return model.VehicleType{}, fmt.Errorf("vehicle type %d not found", vehicleTypeID)
	}
	if err != nil {
		return model.VehicleType{}, err
	}
	return vt, nil
}

// ReplaceRotation retires the rotation and persists the two given trip
// sequences as its successors, inheriting vehicle type and opportunity
// charging flag. All writes happen in one transaction.
func (s *Store) ReplaceRotation(ctx context.Context, rotationID int64, tripsA, tripsB []model.Trip) (int64, int64, error) {
	var idA, idB int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var scenarioID, vehicleTypeID int64
		var name string
		var allowOpp bool
		err := tx.QueryRowContext(ctx, `
            SELECT scenario_id, name, vehicle_type_id, allow_opportunity_charging
            FROM rotations WHERE id = ?`, rotationID).
			Scan(&scenarioID, &name, &vehicleTypeID, &allowOpp)
		if errors.Is(err, sql.ErrNoRows) {
			return &schedule.NotFoundError{Kind: schedule.ErrRotationNotFound, ID: rotationID}
		}
		if err != nil {
			return err
		}

		insert := func(suffix string, trips []model.Trip) (int64, error) {
			res, err := tx.ExecContext(ctx, `
                INSERT INTO rotations (scenario_id, name, vehicle_type_id, allow_opportunity_charging)
                VALUES (?, ?, ?, ?)`, scenarioID, name+suffix, vehicleTypeID, allowOpp)
			if err != nil {
				return 0, err
			}
			id, err := res.LastInsertId()
			if err != nil {
				return 0, err
			}
			for _, t := range trips {
				if _, err := tx.ExecContext(ctx, `
                    INSERT INTO trips (scenario_id, rotation_id, route_id, departure, arrival, trip_type)
                    VALUES (?, ?, ?, ?, ?, ?)`,
					scenarioID, id, t.Route.ID, t.Departure.Unix(), t.Arrival.Unix(), int(t.Type)); err != nil {
					return 0, err
				}
			}
			return id, nil
		}

		if idA, err = insert(" (A)", tripsA); err != nil {
			return fmt.Errorf("insert rotation A: %w", err)
		}
		if idB, err = insert(" (B)", tripsB); err != nil {
			return fmt.Errorf("insert rotation B: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE rotation_id = ?`, rotationID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM trips WHERE rotation_id = ?`, rotationID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM rotations WHERE id = ?`, rotationID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return idA, idB, nil
}
