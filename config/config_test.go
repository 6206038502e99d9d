package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `calendar:
  holidays: ["12-25", "07-14"]
engine:
  max_rounds: 8
batch:
  ceiling: 500
  workers: 4
pipeline:
  chunk_size: 50
  reconcile_boundaries: true
spill:
  type: sqlite
  dir: /tmp/spill
logging:
  level: debug
metrics:
  textfile: /var/lib/node_exporter/cakeday.prom
  sinks:
    - type: prometheus
    - type: influx
      conf:
        url: http://localhost:8086
        bucket: cakeday
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Metrics.Sinks, 2)

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"holidays", len(cfg.Calendar.Holidays), 2},
		{"max_rounds", cfg.Engine.MaxRounds, 8},
		{"ceiling", cfg.Batch.Ceiling, 500},
		{"workers", cfg.Batch.Workers, 4},
		{"chunk_size", cfg.Pipeline.ChunkSize, 50},
		{"reconcile", cfg.Pipeline.ReconcileBoundaries, true},
		{"spill.type", cfg.Spill.Type, "sqlite"},
		{"spill.dir", cfg.Spill.Dir, "/tmp/spill"},
		{"logging.level", cfg.Logging.Level, "debug"},
		{"metrics.textfile", cfg.Metrics.Textfile, "/var/lib/node_exporter/cakeday.prom"},
		{"metrics.influx", cfg.Metrics.Sinks[1].Type, "influx"},
		{"metrics.influx.bucket", cfg.Metrics.Sinks[1].Conf["bucket"], "cakeday"},
	}
	for _, c := range checks {
		assert.Equal(t, c.want, c.got, c.name)
	}
}

func TestLoadJSONAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "config.json", `{"batch": {"ceiling": 10}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Batch.Ceiling)
	assert.Equal(t, 1, cfg.Batch.Workers)
	assert.Equal(t, 5, cfg.Engine.MaxRounds)
	assert.Equal(t, 100, cfg.Pipeline.ChunkSize)
	assert.Equal(t, "jsonl", cfg.Spill.Type)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, []string{"12-25", "12-26", "01-01"}, cfg.Calendar.Holidays)
	require.Len(t, cfg.Metrics.Sinks, 1)
	assert.Equal(t, "prometheus", cfg.Metrics.Sinks[0].Type)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 2000, cfg.Batch.Ceiling)
	assert.False(t, cfg.Pipeline.ReconcileBoundaries)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "config.yaml", "batch:\n  ceiling: 300\n")
	t.Setenv("CAKEDAY_BATCH__CEILING", "700")
	t.Setenv("CAKEDAY_SPILL__TYPE", "sqlite")
	t.Setenv("CAKEDAY_PIPELINE__CHUNK_SIZE", "25")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 700, cfg.Batch.Ceiling)
	assert.Equal(t, "sqlite", cfg.Spill.Type)
	assert.Equal(t, 25, cfg.Pipeline.ChunkSize)
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv("CAKEDAY_LOGGING__LEVEL", "warn")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 2000, cfg.Batch.Ceiling)
}

func TestLoadUnsupportedFormat(t *testing.T) {
	path := writeConfig(t, "config.toml", "")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config format")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name string
		data string
		want string
	}{
		{"spill type", "spill:\n  type: redis\n", "spill: unknown backend redis"},
		{"holiday", "calendar:\n  holidays: [\"13-01\"]\n", "calendar: invalid holiday"},
		{"ceiling", "batch:\n  ceiling: -1\n", "batch: ceiling must be at least 1"},
		{"rounds", "engine:\n  max_rounds: -2\n", "engine: max_rounds must be at least 1"},
		{"chunk", "pipeline:\n  chunk_size: -5\n", "pipeline: chunk_size must be at least 1"},
		{"level", "logging:\n  level: loud\n", "logging: unknown level loud"},
		{"sink", "metrics:\n  sinks:\n    - type: statsd\n", "metrics: unknown sink statsd"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "config.yaml", tc.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestPipelineSettings(t *testing.T) {
	cfg := Default()
	cfg.Spill.Dir = "/tmp/x"
	pc := cfg.PipelineSettings()
	assert.Equal(t, 100, pc.ChunkSize)
	assert.Equal(t, "jsonl", pc.Spill.Type)
	assert.Equal(t, "/tmp/x", pc.Spill.Conf["dir"])
}
