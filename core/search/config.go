package search

import (
	"fmt"
	"time"
)

// Objective selects which infeasibility count the search minimizes.
type Objective string

const (
	// ObjectiveRotations counts rotations with at least one infeasible
	// driving event.
	ObjectiveRotations Objective = "rotations"
	// ObjectiveEvents counts infeasible driving events.
	ObjectiveEvents Objective = "events"
)

// Config holds the search parameters shared by all trials.
type Config struct {
	// Paths is the number of parallel trials; their biases are evenly spaced
	// across [0,1].
	Paths int `json:"paths"`
	// Generations is the number of independent restarts per trial, each from
	// a fresh clone of the base scenario.
	Generations int `json:"generations"`
	// MaxSteps bounds the number of accepted mutations per generation.
	// Zero means unbounded.
	MaxSteps int `json:"max_steps"`
	// PowerKW is the per-charger power applied when electrifying a station.
	PowerKW float64 `json:"power_kw"`
	// DeadheadBreakMinutes is the gap between a split rotation half and its
	// synthesized deadhead trip.
	DeadheadBreakMinutes int `json:"deadhead_break_minutes"`
	// Objective selects the minimized infeasibility count.
	Objective Objective `json:"objective"`
	// Seed makes the whole search reproducible. Zero derives a seed from the
	// wall clock.
	Seed int64 `json:"seed"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Paths == 0 {
		c.Paths = 5
	}
	if c.Generations == 0 {
		c.Generations = 1
	}
	if c.MaxSteps == 0 {
		c.MaxSteps = 100
	}
	if c.PowerKW == 0 {
		c.PowerKW = 300
	}
	if c.DeadheadBreakMinutes == 0 {
		c.DeadheadBreakMinutes = 5
	}
	if c.Objective == "" {
		c.Objective = ObjectiveRotations
	}
}

// Validate checks the parameters before any trial starts.
func (c Config) Validate() error {
	if c.Paths < 1 {
		return fmt.Errorf("paths must be at least 1, got %d", c.Paths)
	}
	if c.Generations < 1 {
		return fmt.Errorf("generations must be at least 1, got %d", c.Generations)
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("max_steps must not be negative, got %d", c.MaxSteps)
	}
	if c.PowerKW <= 0 {
		return fmt.Errorf("power_kw must be positive, got %g", c.PowerKW)
	}
	if c.DeadheadBreakMinutes <= 0 {
		return fmt.Errorf("deadhead_break_minutes must be positive, got %d", c.DeadheadBreakMinutes)
	}
	if c.Objective != ObjectiveRotations && c.Objective != ObjectiveEvents {
		return fmt.Errorf("unknown objective %q", c.Objective)
	}
	return nil
}

// DeadheadBreak returns the deadhead break as a duration.
func (c Config) DeadheadBreak() time.Duration {
	return time.Duration(c.DeadheadBreakMinutes) * time.Minute
}

// Biases returns n bias values evenly spaced across [0,1]. A single path uses
// the balanced bias 0.5.
func Biases(n int) []float64 {
	if n == 1 {
		return []float64{0.5}
	}
	biases := make([]float64, n)
	for i := range biases {
		biases[i] = float64(i) / float64(n-1)
	}
	return biases
}
