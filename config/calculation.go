package config

import (
	"fmt"
	"slices"

	"github.com/kilianp07/cakeday/core/cakeday"
	"github.com/kilianp07/cakeday/core/calendar"
	"github.com/kilianp07/cakeday/core/factory"
	"github.com/kilianp07/cakeday/core/pipeline"
	"github.com/kilianp07/cakeday/core/spill"

	_ "github.com/kilianp07/cakeday/infra/spill"
)

// CalendarConfig holds the fixed annual holidays.
type CalendarConfig struct {
	// Holidays are MM-DD dates, e.g. "12-25".
	Holidays []string `json:"holidays"`
}

// SetDefaults applies sane defaults.
func (c *CalendarConfig) SetDefaults() {
	if len(c.Holidays) == 0 {
		c.Holidays = slices.Clone(calendar.DefaultHolidays)
	}
}

// Validate checks every holiday parses.
func (c CalendarConfig) Validate() error {
	_, err := calendar.New(c.Holidays)
	return err
}

// EngineConfig bounds the rule engine.
type EngineConfig struct {
	MaxRounds int `json:"max_rounds"`
}

// SetDefaults applies sane defaults.
func (c *EngineConfig) SetDefaults() {
	if c.MaxRounds == 0 {
		c.MaxRounds = cakeday.DefaultMaxRounds
	}
}

// Validate checks mandatory fields.
func (c EngineConfig) Validate() error {
	if c.MaxRounds < 1 {
		return fmt.Errorf("max_rounds must be at least 1")
	}
	return nil
}

// BatchConfig controls in-memory sub-batching.
type BatchConfig struct {
	Ceiling int `json:"ceiling"`
	Workers int `json:"workers"`
}

// SetDefaults applies sane defaults.
func (c *BatchConfig) SetDefaults() {
	if c.Ceiling == 0 {
		c.Ceiling = cakeday.DefaultCeiling
	}
	if c.Workers == 0 {
		c.Workers = 1
	}
}

// Validate checks mandatory fields.
func (c BatchConfig) Validate() error {
	if c.Ceiling < 1 {
		return fmt.Errorf("ceiling must be at least 1")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	return nil
}

// PipelineConfig controls streaming chunks and final consolidation.
type PipelineConfig struct {
	ChunkSize           int  `json:"chunk_size"`
	ReconcileBoundaries bool `json:"reconcile_boundaries"`
}

// SetDefaults applies sane defaults.
func (c *PipelineConfig) SetDefaults() {
	if c.ChunkSize == 0 {
		c.ChunkSize = pipeline.DefaultChunkSize
	}
}

// Validate checks mandatory fields.
func (c PipelineConfig) Validate() error {
	if c.ChunkSize < 1 {
		return fmt.Errorf("chunk_size must be at least 1")
	}
	return nil
}

// SpillConfig selects the spill store backend.
type SpillConfig struct {
	// Type is "jsonl" or "sqlite".
	Type string `json:"type"`
	// Dir is where spill files are created. Empty means the OS temp dir.
	Dir string `json:"dir"`
}

// SetDefaults applies sane defaults.
func (c *SpillConfig) SetDefaults() {
	if c.Type == "" {
		c.Type = "jsonl"
	}
}

// Validate checks the backend type is registered.
func (c SpillConfig) Validate() error {
	if !spill.Has(c.Type) {
		return fmt.Errorf("unknown backend %s", c.Type)
	}
	return nil
}

// PipelineSettings assembles the pipeline configuration.
func (c Config) PipelineSettings() pipeline.Config {
	return pipeline.Config{
		ChunkSize:           c.Pipeline.ChunkSize,
		ReconcileBoundaries: c.Pipeline.ReconcileBoundaries,
		Spill: factory.ModuleConfig{
			Type: c.Spill.Type,
			Conf: map[string]any{"dir": c.Spill.Dir},
		},
	}
}
