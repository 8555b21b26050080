package search_test

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kilianp07/feasnet/core/model"
	"github.com/kilianp07/feasnet/core/search"
	"github.com/kilianp07/feasnet/core/simulate"
	"github.com/kilianp07/feasnet/infra/consumption"
	"github.com/kilianp07/feasnet/infra/logger"
	"github.com/kilianp07/feasnet/infra/sqlite"
)

// seedInfeasible builds one rotation depot -> s1 -> s2 -> depot with 20 km
// legs and 30 minute breaks. With a 100 kWh battery at 2 kWh/km the uncharged
// rotation ends at -0.2 state of charge; electrifying either break station
// makes it feasible.
func seedInfeasible(t *testing.T) (*sqlite.Store, int64, []int64) {
	t.Helper()
	ctx := context.Background()
	start := time.Date(2024, 3, 4, 7, 0, 0, 0, time.UTC)

	store, err := sqlite.New(filepath.Join(t.TempDir(), "schedule.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	scenarioID, err := store.CreateScenario(ctx, "base")
	require.NoError(t, err)

	vtID, err := store.AddVehicleType(ctx, scenarioID, model.VehicleType{
		Name: "standard", BatteryKWh: 100, ConsumptionKWhKm: 2,
	})
	require.NoError(t, err)

	var stations []int64
	for _, name := range []string{"depot", "s1", "s2"} {
		id, err := store.AddStation(ctx, scenarioID, model.Station{Name: name})
		require.NoError(t, err)
		stations = append(stations, id)
	}

	pairs := [][2]int64{
		{stations[0], stations[1]},
		{stations[1], stations[2]},
		{stations[2], stations[0]},
	}
	var routes []int64
	for _, p := range pairs {
		id, err := store.AddRoute(ctx, scenarioID, model.Route{
			Name: "leg", DistanceKm: 20,
			DepartureStationID: p[0], ArrivalStationID: p[1],
		})
		require.NoError(t, err)
		routes = append(routes, id)
	}

	rotationID, err := store.AddRotation(ctx, model.Rotation{
		ScenarioID: scenarioID, Name: "rot-1",
		VehicleTypeID: vtID, AllowOpportunityCharging: true,
	})
	require.NoError(t, err)

	for i, routeID := range routes {
		dep := start.Add(time.Duration(i) * time.Hour)
		_, err := store.AddTrip(ctx, scenarioID, model.Trip{
			RotationID: rotationID,
			Route:      model.Route{ID: routeID},
			Departure:  dep,
			Arrival:    dep.Add(30 * time.Minute),
			Type:       model.TripPassenger,
		})
		require.NoError(t, err)
	}

	return store, scenarioID, stations
}

func integrationConfig(generations int) search.Config {
	return search.Config{
		Paths:                1,
		Generations:          generations,
		MaxSteps:             10,
		PowerKW:              300,
		DeadheadBreakMinutes: 5,
		Objective:            search.ObjectiveRotations,
	}
}

// Every generation works on a freshly cloned scenario with remapped ids, so
// later generations must not see outcomes recorded against an earlier clone.
func TestTrialGenerationsOverClonedScenarios(t *testing.T) {
	store, scenarioID, stations := seedInfeasible(t)
	ctx := context.Background()

	trial, err := search.NewTrial("t", 1, store, consumption.New(store),
		integrationConfig(2), rand.New(rand.NewSource(1)), logger.NopLogger{}, nil)
	require.NoError(t, err)

	res := trial.Run(ctx, scenarioID)
	require.Len(t, res.Generations, 2)
	for i, gen := range res.Generations {
		require.Equalf(t, search.StatusFeasible, gen.Status, "generation %d: %s", i, gen.Error)
		require.Lenf(t, gen.Steps, 1, "generation %d", i)
		require.Equal(t, 1, gen.Steps[0].ElectrifiedStationCount)
		require.Zero(t, gen.Steps[0].RotationsBelowZero)
	}

	// The clones are gone and the base scenario was never mutated.
	infos, err := store.Scenarios(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	require.Equal(t, scenarioID, infos[0].ID)
	for _, stationID := range stations {
		st, err := store.Station(ctx, stationID)
		require.NoError(t, err)
		require.False(t, st.Electrified)
	}
}

// cancelingOracle cancels the run on its first invocation and then answers
// normally, as if the process had been interrupted mid generation.
type cancelingOracle struct {
	inner  simulate.Oracle
	cancel context.CancelFunc
	calls  int
}

func (o *cancelingOracle) Simulate(ctx context.Context, scenarioID int64) (simulate.Outcome, error) {
	o.calls++
	if o.calls == 1 {
		o.cancel()
	}
	return o.inner.Simulate(context.WithoutCancel(ctx), scenarioID)
}

func TestTrialDropsCloneWhenCanceled(t *testing.T) {
	store, scenarioID, _ := seedInfeasible(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	oracle := &cancelingOracle{inner: consumption.New(store), cancel: cancel}
	trial, err := search.NewTrial("t", 1, store, oracle,
		integrationConfig(1), rand.New(rand.NewSource(1)), logger.NopLogger{}, nil)
	require.NoError(t, err)

	res := trial.Run(ctx, scenarioID)
	require.Equal(t, search.StatusError, res.Generations[0].Status)

	// The working clone is removed even though the context is gone.
	infos, err := store.Scenarios(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 1)
	require.Equal(t, scenarioID, infos[0].ID)
}
