package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kilianp07/feasnet/core/model"
	"github.com/kilianp07/feasnet/core/schedule"
)

type fixture struct {
	store      *Store
	scenarioID int64
	vtID       int64
	stations   []int64 // depot, s1, s2
	routes     []int64 // depot->s1, s1->s2, s2->depot
	rotationID int64
	tripIDs    []int64
}

var t0 = time.Date(2024, 3, 4, 7, 0, 0, 0, time.UTC)

// seed builds one scenario with a single three trip rotation
// depot -> s1 -> s2 -> depot.
func seed(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()

	store, err := New(filepath.Join(t.TempDir(), "schedule.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	scenarioID, err := store.CreateScenario(ctx, "base")
	require.NoError(t, err)

	vtID, err := store.AddVehicleType(ctx, scenarioID, model.VehicleType{
		Name: "articulated", BatteryKWh: 300, ConsumptionKWhKm: 1.5,
	})
	require.NoError(t, err)

	var stations []int64
	for _, name := range []string{"depot", "s1", "s2"} {
		id, err := store.AddStation(ctx, scenarioID, model.Station{Name: name})
		require.NoError(t, err)
		stations = append(stations, id)
	}

	var routes []int64
	pairs := [][2]int64{
		{stations[0], stations[1]},
		{stations[1], stations[2]},
		{stations[2], stations[0]},
	}
	for i, p := range pairs {
		id, err := store.AddRoute(ctx, scenarioID, model.Route{
			Name: "route", DistanceKm: float64(10 * (i + 1)),
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

	var tripIDs []int64
	for i, routeID := range routes {
		dep := t0.Add(time.Duration(i) * time.Hour)
		id, err := store.AddTrip(ctx, scenarioID, model.Trip{
			RotationID: rotationID,
			Route:      model.Route{ID: routeID},
			Departure:  dep,
			Arrival:    dep.Add(30 * time.Minute),
			Type:       model.TripPassenger,
		})
		require.NoError(t, err)
		tripIDs = append(tripIDs, id)
	}

	return fixture{
		store: store, scenarioID: scenarioID, vtID: vtID,
		stations: stations, routes: routes,
		rotationID: rotationID, tripIDs: tripIDs,
	}
}

func TestScenariosListing(t *testing.T) {
	f := seed(t)
	ctx := context.Background()

	infos, err := f.store.Scenarios(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	require.Equal(t, "base", infos[0].Name)
	require.Equal(t, 1, infos[0].RotationCount)
}

func TestRotationTripsOrderedWithRoutes(t *testing.T) {
	f := seed(t)
	ctx := context.Background()

	trips, err := f.store.RotationTrips(ctx, f.rotationID)
	require.NoError(t, err)
	require.Len(t, trips, 3)
	for i := 1; i < len(trips); i++ {
		require.True(t, trips[i].Departure.After(trips[i-1].Departure))
	}
	require.Equal(t, f.stations[1], trips[0].Route.ArrivalStationID)
	require.Equal(t, 10.0, trips[0].Route.DistanceKm)

	_, err = f.store.RotationTrips(ctx, 9999)
	require.ErrorIs(t, err, schedule.ErrRotationNotFound)
}

func TestElectrifyStation(t *testing.T) {
	f := seed(t)
	ctx := context.Background()

	require.NoError(t, f.store.ElectrifyStation(ctx, f.stations[1], 450))

	st, err := f.store.Station(ctx, f.stations[1])
	require.NoError(t, err)
	require.True(t, st.Electrified)
	require.Equal(t, 100, st.ChargingPlaces)
	require.Equal(t, 450.0, st.PowerPerCharger)
	require.Equal(t, 45000.0, st.TotalPower)
	require.Equal(t, model.ChargeOpportunity, st.ChargeType)
	require.Equal(t, model.VoltageMV, st.VoltageLevel)

	err = f.store.ElectrifyStation(ctx, 9999, 450)
	require.ErrorIs(t, err, schedule.ErrStationNotFound)
}

func TestVehicleType(t *testing.T) {
	f := seed(t)
	ctx := context.Background()

	vt, err := f.store.VehicleType(ctx, f.vtID)
	require.NoError(t, err)
	require.Equal(t, 300.0, vt.BatteryKWh)
	require.Equal(t, 1.5, vt.ConsumptionKWhKm)

	_, err = f.store.VehicleType(ctx, 9999)
	require.Error(t, err)
}

func TestInfeasibleDrivingEventsOrdering(t *testing.T) {
	f := seed(t)
	ctx := context.Background()

	events := []model.DrivingEvent{
		{RotationID: f.rotationID, TripID: f.tripIDs[0], ArrivalStationID: f.stations[1], SoCEnd: -0.1},
		{RotationID: f.rotationID, TripID: f.tripIDs[1], ArrivalStationID: f.stations[2], SoCEnd: -0.5},
		{RotationID: f.rotationID, TripID: f.tripIDs[2], ArrivalStationID: f.stations[0], SoCEnd: 0.3},
	}
	require.NoError(t, f.store.ReplaceDrivingEvents(ctx, f.scenarioID, events))

	got, err := f.store.InfeasibleDrivingEvents(ctx, f.scenarioID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, -0.5, got[0].SoCEnd)
	require.Equal(t, -0.1, got[1].SoCEnd)

	// Replacing again clears the previous set.
	require.NoError(t, f.store.ReplaceDrivingEvents(ctx, f.scenarioID, nil))
	got, err = f.store.InfeasibleDrivingEvents(ctx, f.scenarioID)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestReplaceRotation(t *testing.T) {
	f := seed(t)
	ctx := context.Background()

	trips, err := f.store.RotationTrips(ctx, f.rotationID)
	require.NoError(t, err)
	require.NoError(t, f.store.ReplaceDrivingEvents(ctx, f.scenarioID, []model.DrivingEvent{
		{RotationID: f.rotationID, TripID: f.tripIDs[0], SoCEnd: -0.2},
	}))

	idA, idB, err := f.store.ReplaceRotation(ctx, f.rotationID, trips[:1], trips[1:])
	require.NoError(t, err)
	require.NotEqual(t, idA, idB)

	_, err = f.store.RotationTrips(ctx, f.rotationID)
	require.ErrorIs(t, err, schedule.ErrRotationNotFound)

	tripsA, err := f.store.RotationTrips(ctx, idA)
	require.NoError(t, err)
	require.Len(t, tripsA, 1)
	tripsB, err := f.store.RotationTrips(ctx, idB)
	require.NoError(t, err)
	require.Len(t, tripsB, 2)

	rotations, err := f.store.ScenarioRotations(ctx, f.scenarioID)
	require.NoError(t, err)
	require.Len(t, rotations, 2)
	require.True(t, strings.HasSuffix(rotations[0].Name, "(A)"))
	require.True(t, strings.HasSuffix(rotations[1].Name, "(B)"))
	for _, r := range rotations {
		require.Equal(t, f.vtID, r.VehicleTypeID)
		require.True(t, r.AllowOpportunityCharging)
	}

	// Stale events of the retired rotation are gone.
	events, err := f.store.InfeasibleDrivingEvents(ctx, f.scenarioID)
	require.NoError(t, err)
	require.Empty(t, events)

	_, _, err = f.store.ReplaceRotation(ctx, 9999, nil, nil)
	require.ErrorIs(t, err, schedule.ErrRotationNotFound)
}

func TestCloneScenarioIsolation(t *testing.T) {
	f := seed(t)
	ctx := context.Background()

	require.NoError(t, f.store.ReplaceDrivingEvents(ctx, f.scenarioID, []model.DrivingEvent{
		{RotationID: f.rotationID, TripID: f.tripIDs[0], SoCEnd: -0.2},
	}))

	cloneID, err := f.store.CloneScenario(ctx, f.scenarioID)
	require.NoError(t, err)
	require.NotEqual(t, f.scenarioID, cloneID)

	infos, err := f.store.Scenarios(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	require.Contains(t, infos[1].Name, "clone")
	require.Equal(t, 1, infos[1].RotationCount)

	// The clone starts unevaluated.
	events, err := f.store.InfeasibleDrivingEvents(ctx, cloneID)
	require.NoError(t, err)
	require.Empty(t, events)

	cloneRotations, err := f.store.ScenarioRotations(ctx, cloneID)
	require.NoError(t, err)
	require.Len(t, cloneRotations, 1)
	require.NotEqual(t, f.rotationID, cloneRotations[0].ID)

	cloneTrips, err := f.store.RotationTrips(ctx, cloneRotations[0].ID)
	require.NoError(t, err)
	require.Len(t, cloneTrips, 3)
	// Route references were remapped into the clone's own rows.
	for i, ct := range cloneTrips {
		require.NotEqual(t, f.routes[i], ct.Route.ID)
		require.Equal(t, float64(10*(i+1)), ct.Route.DistanceKm)
	}

	// Mutating the clone leaves the base untouched.
	require.NoError(t, f.store.ElectrifyStation(ctx, cloneTrips[0].Route.ArrivalStationID, 300))
	baseStation, err := f.store.Station(ctx, f.stations[1])
	require.NoError(t, err)
	require.False(t, baseStation.Electrified)

	_, err = f.store.CloneScenario(ctx, 9999)
	require.ErrorIs(t, err, schedule.ErrScenarioNotFound)
}

func TestDropScenario(t *testing.T) {
	f := seed(t)
	ctx := context.Background()

	cloneID, err := f.store.CloneScenario(ctx, f.scenarioID)
	require.NoError(t, err)
	require.NoError(t, f.store.DropScenario(ctx, cloneID))

	infos, err := f.store.Scenarios(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	require.Equal(t, f.scenarioID, infos[0].ID)

	var nf *schedule.NotFoundError
	err = f.store.DropScenario(ctx, cloneID)
	require.ErrorIs(t, err, schedule.ErrScenarioNotFound)
	require.True(t, errors.As(err, &nf))
}
