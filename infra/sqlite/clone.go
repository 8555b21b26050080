package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kilianp07/feasnet/core/schedule"
)

// CloneScenario deep-copies a scenario (vehicle types, stations, routes,
// rotations and trips) under a fresh scenario id and returns it. Simulated
// events are not copied; a clone starts unevaluated. The whole clone is one
// transaction.
func (s *Store) CloneScenario(ctx context.Context, scenarioID int64) (int64, error) {
	var cloneID int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var name string
		err := tx.QueryRowContext(ctx, `SELECT name FROM scenarios WHERE id = ?`, scenarioID).Scan(&name)
		if errors.Is(err, sql.ErrNoRows) {
			return &schedule.NotFoundError{Kind: schedule.ErrScenarioNotFound, ID: scenarioID}
		}
		if err != nil {
			return err
		}
		suffix := uuid.NewString()[:8]
		res, err := tx.ExecContext(ctx, `INSERT INTO scenarios (name) VALUES (?)`,
			fmt.Sprintf("%s (clone %s)", name, suffix))
		if err != nil {
			return err
		}
		if cloneID, err = res.LastInsertId(); err != nil {
			return err
		}

		vehicleTypes, err := copyRows(ctx, tx, cloneID, scenarioID,
			`SELECT id, name, battery_kwh, consumption_kwh_km FROM vehicle_types WHERE scenario_id = ? ORDER BY id`,
			`INSERT INTO vehicle_types (scenario_id, name, battery_kwh, consumption_kwh_km) VALUES (?, ?, ?, ?)`,
			nil)
		if err != nil {
			return fmt.Errorf("clone vehicle types: %w", err)
		}
		stations, err := copyRows(ctx, tx, cloneID, scenarioID,
			`SELECT id, name, electrified, charging_places, power_per_charger, total_power, charge_type, voltage_level
             FROM stations WHERE scenario_id = ? ORDER BY id`,
			`INSERT INTO stations (scenario_id, name, electrified, charging_places, power_per_charger, total_power, charge_type, voltage_level)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			nil)
		if err != nil {
			return fmt.Errorf("clone stations: %w", err)
		}
		routes, err := copyRows(ctx, tx, cloneID, scenarioID,
			`SELECT id, name, distance_km, departure_station_id, arrival_station_id FROM routes WHERE scenario_id = ? ORDER BY id`,
			`INSERT INTO routes (scenario_id, name, distance_km, departure_station_id, arrival_station_id) VALUES (?, ?, ?, ?, ?)`,
			map[int]map[int64]int64{2: stations, 3: stations})
		if err != nil {
			return fmt.Errorf("clone routes: %w", err)
		}
		rotations, err := copyRows(ctx, tx, cloneID, scenarioID,
			`SELECT id, name, vehicle_type_id, allow_opportunity_charging FROM rotations WHERE scenario_id = ? ORDER BY id`,
			`INSERT INTO rotations (scenario_id, name, vehicle_type_id, allow_opportunity_charging) VALUES (?, ?, ?, ?)`,
			map[int]map[int64]int64{1: vehicleTypes})
		if err != nil {
			return fmt.Errorf("clone rotations: %w", err)
		}
		if _, err := copyRows(ctx, tx, cloneID, scenarioID,
			`SELECT id, rotation_id, route_id, departure, arrival, trip_type FROM trips WHERE scenario_id = ? ORDER BY id`,
			`INSERT INTO trips (scenario_id, rotation_id, route_id, departure, arrival, trip_type) VALUES (?, ?, ?, ?, ?, ?)`,
			map[int]map[int64]int64{0: rotations, 1: routes}); err != nil {
			return fmt.Errorf("clone trips: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return cloneID, nil
}

// copyRows copies all rows of one table into the clone scenario. The select
// must yield the row id first; the insert takes the clone scenario id
// followed by the remaining columns. remaps maps 0-based positions of those
// remaining columns to old-id → new-id tables. The returned map translates
// old row ids to new ones.
func copyRows(ctx context.Context, tx *sql.Tx, cloneID, scenarioID int64, selectQ, insertQ string, remaps map[int]map[int64]int64) (map[int64]int64, error) {
	rows, err := tx.QueryContext(ctx, selectQ, scenarioID)
	if err != nil {
		return nil, err
	}
	type row struct {
		id   int64
		vals []any
	}
	var copied []row
	cols, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		return nil, err
	}
	n := len(cols) - 1
	for rows.Next() {
		r := row{vals: make([]any, n)}
		dest := make([]any, 0, n+1)
		dest = append(dest, &r.id)
		for i := range r.vals {
			dest = append(dest, &r.vals[i])
		}
		if err := rows.Scan(dest...); err != nil {
			_ = rows.Close()
			return nil, err
		}
		copied = append(copied, r)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	ids := make(map[int64]int64, len(copied))
	for _, r := range copied {
		for pos, remap := range remaps {
			old, ok := r.vals[pos].(int64)
			if !ok {
				return nil, fmt.Errorf("column %d: expected id, got %T", pos, r.vals[pos])
			}
			mapped, ok := remap[old]
			if !ok {
				return nil, fmt.Errorf("column %d: no clone mapping for id %d", pos, old)
			}
			r.vals[pos] = mapped
		}
		args := append([]any{cloneID}, r.vals...)
		res, err := tx.ExecContext(ctx, insertQ, args...)
		if err != nil {
			return nil, err
		}
		newID, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		ids[r.id] = newID
	}
	return ids, nil
}

// DropScenario removes the scenario and everything belonging to it. Children
// are deleted in dependency order so foreign keys stay satisfied throughout.
func (s *Store) DropScenario(ctx context.Context, scenarioID int64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"events", "trips", "rotations", "routes", "stations", "vehicle_types"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE scenario_id = ?`, scenarioID); err != nil {
				return fmt.Errorf("drop scenario %d: clear %s: %w", scenarioID, table, err)
			}
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM scenarios WHERE id = ?`, scenarioID)
		if err != nil {
			return fmt.Errorf("drop scenario %d: %w", scenarioID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return &schedule.NotFoundError{Kind: schedule.ErrScenarioNotFound, ID: scenarioID}
		}
		return nil
	})
}
