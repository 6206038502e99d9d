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

	"github.com/kilianp07/cakeday/core/metrics"

	_ "github.com/kilianp07/cakeday/infra/metrics"
)

// EnvPrefix is the prefix of environment overrides. Nested keys are
// separated by a double underscore: CAKEDAY_BATCH__CEILING=500.
const EnvPrefix = "CAKEDAY_"

type Config struct {
	Calendar CalendarConfig `json:"calendar"`
	Engine   EngineConfig   `json:"engine"`
	Batch    BatchConfig    `json:"batch"`
	Pipeline PipelineConfig `json:"pipeline"`
	Spill    SpillConfig    `json:"spill"`
	Logging  LoggingConfig  `json:"logging"`
	Metrics  metrics.Config `json:"metrics"`
}

// Default returns a configuration with every section defaulted.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

// Load reads the file at path, applies environment overrides, defaults and
// validation. An empty path loads from the environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
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
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults defaults every section.
func (c *Config) SetDefaults() {
	c.Calendar.SetDefaults()
	c.Engine.SetDefaults()
	c.Batch.SetDefaults()
	c.Pipeline.SetDefaults()
	c.Spill.SetDefaults()
	c.Logging.SetDefaults()
	c.Metrics.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	validators := []struct {
		name string
		fn   func() error
	}{
		{"calendar", c.Calendar.Validate},
		{"engine", c.Engine.Validate},
		{"batch", c.Batch.Validate},
		{"pipeline", c.Pipeline.Validate},
		{"spill", c.Spill.Validate},
		{"logging", c.Logging.Validate},
		{"metrics", c.Metrics.Validate},
	}
	for _, v := range validators {
		if err := v.fn(); err != nil {
			return fmt.Errorf("%s: %w", v.name, err)
		}
	}
	return nil
}
