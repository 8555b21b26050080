package search

import (
	"context"
	"sync"

	"github.com/kilianp07/feasnet/core/model"
	"github.com/kilianp07/feasnet/core/schedule"
	"github.com/kilianp07/feasnet/core/simulate"
)

// memStore is an in-memory schedule.Accessor for exercising the search loop
// without a database.
type memStore struct {
	mu       sync.Mutex
	nextID   int64
	trips    map[int64][]model.Trip
	stations map[int64]model.Station

	clones   int
	dropped  []int64
	replaced []int64
}

func newMemStore() *memStore {
	return &memStore{
		nextID:   1000,
		trips:    make(map[int64][]model.Trip),
		stations: make(map[int64]model.Station),
	}
}

func (s *memStore) addRotation(id int64, trips ...model.Trip) {
	s.trips[id] = trips
}

func (s *memStore) Scenarios(context.Context) ([]model.ScenarioInfo, error) {
	return nil, nil
}

func (s *memStore) CloneScenario(_ context.Context, scenarioID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clones++
	return scenarioID + 1000, nil
}

func (s *memStore) DropScenario(_ context.Context, scenarioID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropped = append(s.dropped, scenarioID)
	return nil
}

func (s *memStore) ScenarioRotations(context.Context, int64) ([]model.Rotation, error) {
	return nil, nil
}

func (s *memStore) RotationTrips(_ context.Context, rotationID int64) ([]model.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	trips, ok := s.trips[rotationID]
	if !ok {
		return nil, &schedule.NotFoundError{Kind: schedule.ErrRotationNotFound, ID: rotationID}
	}
	return trips, nil
}

func (s *memStore) InfeasibleDrivingEvents(context.Context, int64) ([]model.DrivingEvent, error) {
	return nil, nil
}

func (s *memStore) ReplaceDrivingEvents(context.Context, int64, []model.DrivingEvent) error {
	return nil
}

func (s *memStore) Station(_ context.Context, stationID int64) (model.Station, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stations[stationID]
	if !ok {
		return model.Station{}, &schedule.NotFoundError{Kind: schedule.ErrStationNotFound, ID: stationID}
	}
	return st, nil
}

func (s *memStore) ElectrifyStation(_ context.Context, stationID int64, power float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stations[stationID]
	st.ID = stationID
	st.Electrified = true
	st.ChargingPlaces = 100
	st.PowerPerCharger = power
	st.TotalPower = 100 * power
	st.ChargeType = model.ChargeOpportunity
	st.VoltageLevel = model.VoltageMV
	s.stations[stationID] = st
	return nil
}

func (s *memStore) VehicleType(context.Context, int64) (model.VehicleType, error) {
	return model.VehicleType{}, nil
}

func (s *memStore) ReplaceRotation(_ context.Context, rotationID int64, tripsA, tripsB []model.Trip) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.trips[rotationID]; !ok {
		return 0, 0, &schedule.NotFoundError{Kind: schedule.ErrRotationNotFound, ID: rotationID}
	}
	idA := s.nextID
	idB := s.nextID + 1
	s.nextID += 2
	s.trips[idA] = tripsA
	s.trips[idB] = tripsB
	delete(s.trips, rotationID)
	s.replaced = append(s.replaced, rotationID)
	return idA, idB, nil
}

func (s *memStore) electrified(stationID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stations[stationID].Electrified
}

// funcOracle adapts a closure into a simulate.Oracle and counts invocations.
type funcOracle struct {
	mu    sync.Mutex
	calls int
	fn    func(ctx context.Context, scenarioID int64) (simulate.Outcome, error)
}

func (o *funcOracle) Simulate(ctx context.Context, scenarioID int64) (simulate.Outcome, error) {
	o.mu.Lock()
	o.calls++
	o.mu.Unlock()
	return o.fn(ctx, scenarioID)
}

func (o *funcOracle) callCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.calls
}
