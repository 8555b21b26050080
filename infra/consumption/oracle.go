// Package consumption provides the default simulation oracle: a deterministic
// linear consumption model. Energy spent per trip is route distance times the
// vehicle type's consumption; energy gained is charging power times dwell
// time at electrified stations. Real vehicle physics stay out of scope; any
// richer simulator can replace this one behind the simulate.Oracle interface.
package consumption

import (
	"context"
	"fmt"

	"github.com/kilianp07/feasnet/core/model"
	"github.com/kilianp07/feasnet/core/schedule"
	"github.com/kilianp07/feasnet/core/simulate"
	"github.com/kilianp07/feasnet/infra/logger"
)

// Oracle simulates state of charge over every rotation of a scenario and
// persists the resulting driving events through the schedule store.
type Oracle struct {
	store schedule.Accessor
	log   logger.Logger
}

// New returns an oracle reading from and writing to the given store.
func New(store schedule.Accessor) *Oracle {
	return &Oracle{store: store, log: logger.New("consumption-oracle")}
}

// Simulate runs the consumption model over the scenario. The result depends
// only on the scenario's schedule and electrification state, never on
// processing order, so memoizing outcomes by mutation state is sound.
func (o *Oracle) Simulate(ctx context.Context, scenarioID int64) (simulate.Outcome, error) {
	rotations, err := o.store.ScenarioRotations(ctx, scenarioID)
	if err != nil {
		return simulate.Outcome{}, fmt.Errorf("scenario %d rotations: %w", scenarioID, err)
	}

	stations := make(map[int64]model.Station)
	station := func(id int64) (model.Station, error) {
		if st, ok := stations[id]; ok {
			return st, nil
		}
		st, err := o.store.Station(ctx, id)
		if err != nil {
			return model.Station{}, err
		}
		stations[id] = st
		return st, nil
	}

	var events []model.DrivingEvent
	for _, rotation := range rotations {
		vt, err := o.store.VehicleType(ctx, rotation.VehicleTypeID)
		if err != nil {
			return simulate.Outcome{}, fmt.Errorf("rotation %d: %w", rotation.ID, err)
		}
		if vt.BatteryKWh <= 0 {
			return simulate.Outcome{}, fmt.Errorf("vehicle type %d: battery capacity %g", vt.ID, vt.BatteryKWh)
		}
		trips, err := o.store.RotationTrips(ctx, rotation.ID)
		if err != nil {
			return simulate.Outcome{}, fmt.Errorf("rotation %d trips: %w", rotation.ID, err)
		}

		soc := 1.0
		for i, trip := range trips {
			if i > 0 && rotation.AllowOpportunityCharging {
				prev := trips[i-1]
				st, err := station(prev.Route.ArrivalStationID)
				if err != nil {
					return simulate.Outcome{}, fmt.Errorf("rotation %d: %w", rotation.ID, err)
				}
				if st.Electrified {
					if dwell := trip.Departure.Sub(prev.Arrival); dwell > 0 {
						soc += st.PowerPerCharger * dwell.Hours() / vt.BatteryKWh
						if soc > 1 {
							soc = 1
						}
					}
				}
			}
			soc -= trip.Route.DistanceKm * vt.ConsumptionKWhKm / vt.BatteryKWh
			events = append(events, model.DrivingEvent{
				ScenarioID:       scenarioID,
				RotationID:       rotation.ID,
				TripID:           trip.ID,
				ArrivalStationID: trip.Route.ArrivalStationID,
				SoCEnd:           soc,
			})
		}
	}

	if err := o.store.ReplaceDrivingEvents(ctx, scenarioID, events); err != nil {
		return simulate.Outcome{}, fmt.Errorf("persist events: %w", err)
	}
	infeasible, err := o.store.InfeasibleDrivingEvents(ctx, scenarioID)
	if err != nil {
		return simulate.Outcome{}, fmt.Errorf("read back events: %w", err)
	}
	o.log.Debugf("scenario %d: %d driving events, %d infeasible", scenarioID, len(events), len(infeasible))
	return simulate.Outcome{Infeasible: infeasible}, nil
}
