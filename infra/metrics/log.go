package metrics

import (
	"github.com/kilianp07/cakeday/core/logger"
	coremetrics "github.com/kilianp07/cakeday/core/metrics"
)

// LogSink writes pipeline events as structured log lines.
type LogSink struct {
	log logger.Logger
}

// NewLogSink returns a LogSink writing to l.
func NewLogSink(l logger.Logger) *LogSink {
	return &LogSink{log: logger.OrNop(l)}
}

func (s *LogSink) RecordChunk(ev coremetrics.ChunkEvent) error {
	s.log.Debugw("chunk metrics", map[string]any{
		"persons":     ev.Persons,
		"cake_days":   ev.CakeDays,
		"rounds":      ev.Rounds,
		"converged":   ev.Converged,
		"duration_ms": ev.Duration.Milliseconds(),
	})
	return nil
}

func (s *LogSink) RecordRun(ev coremetrics.RunEvent) error {
	if ev.Failed {
		s.log.Warnf("run failed after %d chunks", ev.Chunks)
		return nil
	}
	s.log.Infow("run metrics", map[string]any{
		"persons":       ev.Persons,
		"chunks":        ev.Chunks,
		"cake_days":     ev.CakeDays,
		"small_cakes":   ev.SmallCakes,
		"large_cakes":   ev.LargeCakes,
		"non_converged": ev.NonConvergedRuns,
		"backend":       ev.Backend,
		"duration_ms":   ev.Duration.Milliseconds(),
		"peak_heap":     ev.PeakHeapBytes,
	})
	return nil
}
