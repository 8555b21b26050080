package search

import (
	"time"

	"github.com/kilianp07/feasnet/core/model"
)

// StepEvent is published on the event bus after each accepted search step.
type StepEvent struct {
	TrialID    string
	Bias       float64
	Generation int
	Step       int
	CacheHit   bool
	Record     model.StepRecord
	Time       time.Time
}

// GenerationDoneEvent is published when a trial generation reaches a terminal
// state.
type GenerationDoneEvent struct {
	TrialID    string
	Bias       float64
	Generation int
	Status     Status
	Steps      int
	Error      string
	Time       time.Time
}

// OracleEvent is published after each simulation oracle invocation.
type OracleEvent struct {
	TrialID    string
	ScenarioID int64
	Duration   time.Duration
	Failed     bool
	Time       time.Time
}
