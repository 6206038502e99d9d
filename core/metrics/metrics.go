package metrics

import "time"

// ChunkEvent describes one chunk handled by the streaming pipeline.
type ChunkEvent struct {
	Persons   int
	CakeDays  int
	Rounds    int
	Converged bool
	Duration  time.Duration
}

// RunEvent summarises a complete pipeline run.
type RunEvent struct {
	Persons          int
	Chunks           int
	CakeDays         int
	SmallCakes       int
	LargeCakes       int
	NonConvergedRuns int
	Backend          string
	Duration         time.Duration
	PeakHeapBytes    uint64
	Failed           bool
}

// MetricsSink records pipeline events for observability purposes.
type MetricsSink interface {
	RecordChunk(ev ChunkEvent) error
	RecordRun(ev RunEvent) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordChunk(ChunkEvent) error { return nil }
func (NopSink) RecordRun(RunEvent) error     { return nil }
