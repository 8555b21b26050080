package search

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/feasnet/core/logger"
	"github.com/kilianp07/feasnet/core/schedule"
	"github.com/kilianp07/feasnet/core/simulate"
	"github.com/kilianp07/feasnet/internal/eventbus"
)

// Orchestrator runs one trial per bias value concurrently. Trials never share
// mutable state: each works on its own scenario clones and owns its random
// generator and memoization cache. A failing trial is reported in its result
// and does not abort its siblings.
type Orchestrator struct {
	store  schedule.Accessor
	oracle simulate.Oracle
	cfg    Config
	log    logger.Logger
	bus    eventbus.EventBus
}

// NewOrchestrator validates the configuration and builds an orchestrator.
// The bus may be nil.
func NewOrchestrator(store schedule.Accessor, oracle simulate.Oracle, cfg Config, log logger.Logger, bus eventbus.EventBus) (*Orchestrator, error) {
	if store == nil {
		return nil, fmt.Errorf("schedule accessor is required")
	}
	if oracle == nil {
		return nil, fmt.Errorf("simulation oracle is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("search config: %w", err)
	}
	return &Orchestrator{store: store, oracle: oracle, cfg: cfg, log: log, bus: bus}, nil
}

// Run executes all trials against the base scenario and returns their
// histories, one result per bias value in ascending bias order.
func (o *Orchestrator) Run(ctx context.Context, scenarioID int64) ([]TrialResult, error) {
	biases := Biases(o.cfg.Paths)
	seed := o.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	o.log.Infof("starting %d trials on scenario %d (seed %d)", len(biases), scenarioID, seed)

	results := make([]TrialResult, len(biases))
	var wg sync.WaitGroup
	for i, bias := range biases {
		trial, err := NewTrial(
			uuid.NewString(),
			bias,
			o.store,
			o.oracle,
			o.cfg,
			rand.New(rand.NewSource(seed+int64(i))),
			o.log,
			o.bus,
		)
		if err != nil {
			// Biases from Biases() are always valid; this guards direct misuse.
			return nil, err
		}
		wg.Add(1)
		go func(i int, trial *Trial) {
			defer wg.Done()
			results[i] = trial.Run(ctx, scenarioID)
		}(i, trial)
	}
	wg.Wait()
	return results, nil
}
