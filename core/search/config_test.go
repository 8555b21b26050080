package search

import (
	"testing"
	"time"
)

func TestConfigSetDefaults(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	if cfg.Paths != 5 || cfg.Generations != 1 || cfg.MaxSteps != 100 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.PowerKW != 300 || cfg.DeadheadBreakMinutes != 5 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Objective != ObjectiveRotations {
		t.Fatalf("objective = %q", cfg.Objective)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestConfigSetDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := Config{Paths: 2, PowerKW: 150, Objective: ObjectiveEvents}
	cfg.SetDefaults()
	if cfg.Paths != 2 || cfg.PowerKW != 150 || cfg.Objective != ObjectiveEvents {
		t.Fatalf("explicit values overwritten: %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	base := Config{
		Paths:                3,
		Generations:          1,
		MaxSteps:             10,
		PowerKW:              300,
		DeadheadBreakMinutes: 5,
		Objective:            ObjectiveRotations,
	}
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero paths", func(c *Config) { c.Paths = 0 }},
		{"zero generations", func(c *Config) { c.Generations = 0 }},
		{"negative steps", func(c *Config) { c.MaxSteps = -1 }},
		{"zero power", func(c *Config) { c.PowerKW = 0 }},
		{"zero break", func(c *Config) { c.DeadheadBreakMinutes = 0 }},
		{"bad objective", func(c *Config) { c.Objective = "distance" }},
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("base must validate: %v", err)
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestConfigDeadheadBreak(t *testing.T) {
	cfg := Config{DeadheadBreakMinutes: 7}
	if got := cfg.DeadheadBreak(); got != 7*time.Minute {
		t.Fatalf("deadhead break = %v", got)
	}
}

func TestBiases(t *testing.T) {
	if got := Biases(1); len(got) != 1 || got[0] != 0.5 {
		t.Fatalf("biases(1) = %v", got)
	}
	got := Biases(5)
	want := []float64{0, 0.25, 0.5, 0.75, 1}
	if len(got) != len(want) {
		t.Fatalf("biases(5) = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("biases(5)[%d] = %g, want %g", i, got[i], want[i])
		}
	}
}
