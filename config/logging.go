package config

import (
	"fmt"

	"github.com/kilianp07/feasnet/core/steplog"
)

// LoggingConfig defines settings for step-record storage and rotation.
type LoggingConfig struct {
	// Backend selects the step-log store type: "jsonl", "rotating" or "sqlite".
	Backend string `json:"backend"`
	// Path is the file location of the step-log store.
	Path string `json:"path"`
	// MaxSizeMB triggers rotation when the file exceeds this size in megabytes.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" {
		c.Path = "steps.log"
	}
	if c.MaxSizeMB == 0 {
		c.MaxSizeMB = 50
	}
}

// Validate checks mandatory fields.
func (c LoggingConfig) Validate() error {
	switch c.Backend {
	case "jsonl", "rotating", "sqlite":
	default:
		return fmt.Errorf("unknown step-log backend %s", c.Backend)
	}
	if c.Path == "" {
		return fmt.Errorf("step-log path is required")
	}
	return nil
}

// OpenStore builds the configured step-log store.
func (c LoggingConfig) OpenStore() (steplog.Store, error) {
	switch c.Backend {
	case "jsonl":
		return steplog.NewJSONLStore(c.Path)
	case "rotating":
		return steplog.NewRotatingJSONLStore(c.Path, c.MaxSizeMB, c.MaxBackups, c.MaxAgeDays)
	case "sqlite":
		return steplog.NewSQLiteStore(c.Path)
	default:
		return nil, fmt.Errorf("unknown step-log backend %s", c.Backend)
	}
}
