package metrics

import (
	"fmt"

	"github.com/kilianp07/cakeday/core/factory"
)

// Config defines settings for run metrics.
type Config struct {
	// Sinks selects the metrics sinks by type ("prometheus", "influx", "nop").
	Sinks []factory.ModuleConfig `json:"sinks"`
	// Textfile, when set, receives the Prometheus metrics in text format at
	// the end of a run, for node_exporter's textfile collector.
	Textfile string `json:"textfile"`
}

// SetDefaults enables the Prometheus sink when none is configured.
func (c *Config) SetDefaults() {
	if len(c.Sinks) == 0 {
		c.Sinks = []factory.ModuleConfig{{Type: "prometheus"}}
	}
}

// Validate checks every sink type is registered.
func (c Config) Validate() error {
	for _, s := range c.Sinks {
		if !HasSink(s.Type) {
			return fmt.Errorf("unknown sink %s", s.Type)
		}
	}
	return nil
}
