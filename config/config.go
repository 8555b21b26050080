package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/feasnet/core/metrics"
	"github.com/kilianp07/feasnet/core/search"
)

// Config aggregates every runtime setting of the service.
type Config struct {
	Database DatabaseConfig `json:"database"`
	Search   search.Config  `json:"search"`
	Logging  LoggingConfig  `json:"logging"`
	Metrics  metrics.Config `json:"metrics"`
	Results  ResultsConfig  `json:"results"`
}

// DatabaseConfig points at the schedule database.
type DatabaseConfig struct {
	// Path is the SQLite database file holding the schedule.
	Path string `json:"path"`
}

// Validate checks mandatory fields.
func (c DatabaseConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("database path is required")
	}
	return nil
}

// ResultsConfig controls the results file.
type ResultsConfig struct {
	// Path is where trial histories are written. An existing file is loaded
	// instead of re-running the search.
	Path string `json:"path"`
	// FrontierPath is where the frontier CSV is written.
	FrontierPath string `json:"frontier_path"`
}

// SetDefaults applies sane defaults.
func (c *ResultsConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "results.json"
	}
	if c.FrontierPath == "" {
		c.FrontierPath = "frontier.csv"
	}
}

// Load reads the configuration file at path, applies environment overrides
// with the FEASNET_ prefix, and validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("FEASNET_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "feasnet_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills unset fields on every sub-config.
func (c *Config) ApplyDefaults() {
	c.Search.SetDefaults()
	c.Logging.SetDefaults()
	c.Metrics.SetDefaults()
	c.Results.SetDefaults()
}

// Validate checks the whole configuration before any trial starts.
func (c *Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Search.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	return nil
}
