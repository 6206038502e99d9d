// Package spill provides the on-disk spill store backends: "jsonl" (default)
// and "sqlite". Importing the package registers both with core/spill.
package spill

import (
	"github.com/kilianp07/cakeday/core/factory"
	corespill "github.com/kilianp07/cakeday/core/spill"
)

// Config holds backend settings.
type Config struct {
	// Dir is the directory the spill file is created in.
	Dir string `json:"dir"`
}

func init() {
	mustRegister("jsonl", func(conf map[string]any) (corespill.Store, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewJSONLStore(c.Dir)
	})
	mustRegister("sqlite", func(conf map[string]any) (corespill.Store, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewSQLiteStore(c.Dir)
	})
}

func mustRegister(name string, f factory.Factory[corespill.Store]) {
	if err := corespill.Register(name, f); err != nil {
		panic(err)
	}
}
