package search

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/kilianp07/feasnet/core/logger"
	"github.com/kilianp07/feasnet/core/model"
	"github.com/kilianp07/feasnet/core/schedule"
	"github.com/kilianp07/feasnet/core/simulate"
	"github.com/kilianp07/feasnet/internal/eventbus"
)

// Status is the terminal state of a trial generation.
type Status string

const (
	// StatusFeasible means the search drove the infeasibility score to zero.
	StatusFeasible Status = "feasible"
	// StatusExhausted means the chosen heuristic ran out of candidates, or
	// the step limit was reached, before feasibility.
	StatusExhausted Status = "exhausted"
	// StatusError means the oracle or the schedule store failed.
	StatusError Status = "error"
)

// GenerationResult holds the outcome and step history of one generation.
type GenerationResult struct {
	Generation int                `json:"generation"`
	Status     Status             `json:"status"`
	Error      string             `json:"error,omitempty"`
	Steps      []model.StepRecord `json:"steps"`
}

// TrialResult aggregates all generations of one trial.
type TrialResult struct {
	TrialID     string             `json:"trial_id"`
	Bias        float64            `json:"bias"`
	Generations []GenerationResult `json:"generations"`
}

// Records returns all step records of the trial in order.
func (r TrialResult) Records() []model.StepRecord {
	var recs []model.StepRecord
	for _, g := range r.Generations {
		recs = append(recs, g.Steps...)
	}
	return recs
}

// Trial is one independent sequential search loop. Each step draws a random
// value against the trial's bias, applies either the electrify or the split
// heuristic, and re-evaluates feasibility through the cache or the oracle.
type Trial struct {
	id     string
	bias   float64
	store  schedule.Accessor
	oracle simulate.Oracle
	cache  *ScoreCache
	cfg    Config
	rng    *rand.Rand
	log    logger.Logger
	bus    eventbus.EventBus
}

// NewTrial builds a trial. The random generator is owned by the trial and
// must not be shared; given the same seed the trial is reproducible. The bus
// may be nil.
func NewTrial(id string, bias float64, store schedule.Accessor, oracle simulate.Oracle, cfg Config, rng *rand.Rand, log logger.Logger, bus eventbus.EventBus) (*Trial, error) {
	if bias < 0 || bias > 1 {
		return nil, fmt.Errorf("%w: got %g", ErrBadBias, bias)
	}
	return &Trial{
		id:     id,
		bias:   bias,
		store:  store,
		oracle: oracle,
		cfg:    cfg,
		rng:    rng,
		log:    log,
		bus:    bus,
	}, nil
}

// Run executes all generations of the trial against fresh clones of the base
// scenario. Every clone is dropped again, whatever the generation outcome.
func (t *Trial) Run(ctx context.Context, baseScenarioID int64) TrialResult {
	result := TrialResult{TrialID: t.id, Bias: t.bias}
	for gen := 0; gen < t.cfg.Generations; gen++ {
		gr := t.runIsolated(ctx, gen, baseScenarioID)
		result.Generations = append(result.Generations, gr)
		t.publish(GenerationDoneEvent{
			TrialID:    t.id,
			Bias:       t.bias,
			Generation: gen,
			Status:     gr.Status,
			Steps:      len(gr.Steps),
			Error:      gr.Error,
			Time:       time.Now(),
		})
		t.log.Infof("trial %s bias %.2f generation %d finished %s after %d steps",
			t.id, t.bias, gen, gr.Status, len(gr.Steps))
	}
	return result
}

func (t *Trial) runIsolated(ctx context.Context, gen int, baseScenarioID int64) GenerationResult {
	// Cloning remaps station and rotation ids, so cached outcomes from an
	// earlier generation would carry ids that no longer exist. Each
	// generation therefore starts with an empty cache.
	t.cache = NewScoreCache()
	scenarioID, err := t.store.CloneScenario(ctx, baseScenarioID)
	if err != nil {
		return GenerationResult{
			Generation: gen,
			Status:     StatusError,
			Error:      fmt.Sprintf("clone scenario %d: %v", baseScenarioID, err),
		}
	}
	defer func() {
		// The clone must be dropped even when the run was canceled.
		if derr := t.store.DropScenario(context.WithoutCancel(ctx), scenarioID); derr != nil {
			t.log.Warnf("drop scenario %d: %v", scenarioID, derr)
		}
	}()
	return t.runGeneration(ctx, gen, scenarioID)
}

func (t *Trial) runGeneration(ctx context.Context, gen int, scenarioID int64) GenerationResult {
	res := GenerationResult{Generation: gen}
	state := NewState()
	electrify := ElectrifyHeuristic{Power: t.cfg.PowerKW}
	split := SplitHeuristic{DeadheadBreak: t.cfg.DeadheadBreak()}

	outcome, _, err := t.evaluate(ctx, scenarioID, state)
	if err != nil {
		res.Status = StatusError
		res.Error = err.Error()
		return res
	}
	if t.score(outcome) == 0 {
		res.Status = StatusFeasible
		return res
	}

	for step := 1; t.cfg.MaxSteps == 0 || step <= t.cfg.MaxSteps; step++ {
		if err := ctx.Err(); err != nil {
			res.Status = StatusError
			res.Error = err.Error()
			return res
		}

		if t.rng.Float64() < t.bias {
			stationID, serr := electrify.Select(ctx, t.store, outcome.Infeasible, state)
			if errors.Is(serr, ErrExhausted) {
				t.log.Warnf("trial %s: no station with usable break time left", t.id)
				res.Status = StatusExhausted
				return res
			}
			if serr != nil {
				res.Status = StatusError
				res.Error = serr.Error()
				return res
			}
			if aerr := electrify.Apply(ctx, t.store, stationID); aerr != nil {
				res.Status = StatusError
				res.Error = aerr.Error()
				return res
			}
			state.Electrify(stationID)
			t.log.Debugf("trial %s generation %d step %d: electrified station %d", t.id, gen, step, stationID)
		} else {
			rotationID, serr := split.Select(ctx, t.store, outcome.Infeasible)
			if errors.Is(serr, ErrExhausted) {
				t.log.Warnf("trial %s: no splittable rotation left", t.id)
				res.Status = StatusExhausted
				return res
			}
			if serr != nil {
				res.Status = StatusError
				res.Error = serr.Error()
				return res
			}
			idA, idB, aerr := split.Apply(ctx, t.store, rotationID)
			if aerr != nil {
				res.Status = StatusError
				res.Error = aerr.Error()
				return res
			}
			state.Split(rotationID)
			t.log.Debugf("trial %s generation %d step %d: split rotation %d into %d and %d", t.id, gen, step, rotationID, idA, idB)
		}

		var hit bool
		outcome, hit, err = t.evaluate(ctx, scenarioID, state)
		if err != nil {
			res.Status = StatusError
			res.Error = err.Error()
			return res
		}

		rec := model.StepRecord{
			ElectrifiedStationCount: len(state.ElectrifiedIDs()),
			ChargingStationIDs:      state.ElectrifiedIDs(),
			SplitRotationCount:      len(state.SplitIDs()),
			SplitRotationIDs:        state.SplitIDs(),
			RotationsBelowZero:      outcome.RotationsBelowZero(),
		}
		res.Steps = append(res.Steps, rec)
		t.publish(StepEvent{
			TrialID:    t.id,
			Bias:       t.bias,
			Generation: gen,
			Step:       step,
			CacheHit:   hit,
			Record:     rec,
			Time:       time.Now(),
		})

		if t.score(outcome) == 0 {
			res.Status = StatusFeasible
			return res
		}
	}

	t.log.Warnf("trial %s generation %d: step limit %d reached", t.id, gen, t.cfg.MaxSteps)
	res.Status = StatusExhausted
	return res
}

// evaluate returns the outcome for the state's canonical key, consulting the
// cache first. A hit skips the oracle entirely; the reported bool is true on
// a hit.
func (t *Trial) evaluate(ctx context.Context, scenarioID int64, state *State) (simulate.Outcome, bool, error) {
	key := state.Key()
	if cached, ok := t.cache.Lookup(key); ok {
		return cached, true, nil
	}
	outcome, err := t.simulate(ctx, scenarioID)
	if err != nil {
		return simulate.Outcome{}, false, err
	}
	return t.cache.Record(key, outcome), false, nil
}

func (t *Trial) simulate(ctx context.Context, scenarioID int64) (simulate.Outcome, error) {
	start := time.Now()
	outcome, err := t.oracle.Simulate(ctx, scenarioID)
	t.publish(OracleEvent{
		TrialID:    t.id,
		ScenarioID: scenarioID,
		Duration:   time.Since(start),
		Failed:     err != nil,
		Time:       time.Now(),
	})
	if err != nil {
		return simulate.Outcome{}, fmt.Errorf("simulate scenario %d: %w", scenarioID, err)
	}
	return outcome, nil
}

func (t *Trial) score(outcome simulate.Outcome) int {
	if t.cfg.Objective == ObjectiveEvents {
		return outcome.EventsBelowZero()
	}
	return outcome.RotationsBelowZero()
}

func (t *Trial) publish(e eventbus.Event) {
	if t.bus != nil {
		t.bus.Publish(e)
	}
}
