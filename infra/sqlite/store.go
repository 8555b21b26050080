// Package sqlite implements the schedule.Accessor contract on an embedded
// SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/feasnet/infra/logger"
)

// Store is a SQLite-backed schedule store implementing schedule.Accessor.
type Store struct {
	db  *sql.DB
	log logger.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS scenarios (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS vehicle_types (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    scenario_id INTEGER NOT NULL REFERENCES scenarios(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    battery_kwh REAL NOT NULL,
    consumption_kwh_km REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS stations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    scenario_id INTEGER NOT NULL REFERENCES scenarios(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    electrified INTEGER NOT NULL DEFAULT 0,
    charging_places INTEGER NOT NULL DEFAULT 0,
    power_per_charger REAL NOT NULL DEFAULT 0,
    total_power REAL NOT NULL DEFAULT 0,
    charge_type TEXT NOT NULL DEFAULT '',
    voltage_level TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS routes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    scenario_id INTEGER NOT NULL REFERENCES scenarios(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    distance_km REAL NOT NULL,
    departure_station_id INTEGER NOT NULL REFERENCES stations(id),
    arrival_station_id INTEGER NOT NULL REFERENCES stations(id)
);
CREATE TABLE IF NOT EXISTS rotations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    scenario_id INTEGER NOT NULL REFERENCES scenarios(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    vehicle_type_id INTEGER NOT NULL REFERENCES vehicle_types(id),
    allow_opportunity_charging INTEGER NOT NULL DEFAULT 1
);
CREATE TABLE IF NOT EXISTS trips (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    scenario_id INTEGER NOT NULL REFERENCES scenarios(id) ON DELETE CASCADE,
    rotation_id INTEGER NOT NULL REFERENCES rotations(id) ON DELETE CASCADE,
    route_id INTEGER NOT NULL REFERENCES routes(id),
    departure INTEGER NOT NULL,
    arrival INTEGER NOT NULL,
    trip_type INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    scenario_id INTEGER NOT NULL REFERENCES scenarios(id) ON DELETE CASCADE,
    rotation_id INTEGER NOT NULL,
    trip_id INTEGER NOT NULL,
    arrival_station_id INTEGER NOT NULL,
    soc_end REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_trips_rotation ON trips(rotation_id, departure);
CREATE INDEX IF NOT EXISTS idx_events_scenario ON events(scenario_id, soc_end);
CREATE INDEX IF NOT EXISTS idx_rotations_scenario ON rotations(scenario_id);
`

// New opens or creates the schedule database at dbPath.
func New(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// The accessor is shared by all trials; serialize writers on one
	// connection and let WAL keep readers fast.
	db.SetMaxOpenConns(1)
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma %s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return &Store{db: db, log: logger.New("sqlite-store")}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// inTx runs fn inside a transaction and rolls back on error.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			s.log.Errorf("rollback: %v", rerr)
		}
		return err
	}
	return tx.Commit()
}
