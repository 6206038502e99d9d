package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/cakeday/core/metrics"
)

// PromSink records pipeline events in Prometheus metrics.
type PromSink struct {
	gatherer     prometheus.Gatherer
	chunks       *prometheus.CounterVec
	persons      prometheus.Counter
	chunkLatency prometheus.Histogram
	rounds       prometheus.Histogram
	runs         *prometheus.CounterVec
	nonConverged prometheus.Counter
	cakeDays     *prometheus.GaugeVec
	runDuration  prometheus.Gauge
	peakHeap     prometheus.Gauge
}

// NewPromSink registers the metrics on a fresh registry.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.NewRegistry())
}

// NewPromSinkWithRegistry registers metrics on reg. A nil registry defaults
// to the global Prometheus registry.
func NewPromSinkWithRegistry(reg *prometheus.Registry) (*PromSink, error) {
	var registerer prometheus.Registerer = reg
	var gatherer prometheus.Gatherer = reg
	if reg == nil {
		registerer = prometheus.DefaultRegisterer
		gatherer = prometheus.DefaultGatherer
	}
	s := &PromSink{
		gatherer: gatherer,
		chunks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cakeday_chunks_total",
			Help: "Number of person chunks processed",
		}, []string{"converged"}),
		persons: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cakeday_persons_total",
			Help: "Number of person records processed",
		}),
		chunkLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cakeday_chunk_duration_seconds",
			Help:    "Time spent applying the cake day rules to one chunk",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		rounds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cakeday_rule_rounds",
			Help:    "Merge and postponement rounds needed per chunk",
			Buckets: prometheus.LinearBuckets(1, 1, 5),
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cakeday_runs_total",
			Help: "Number of pipeline runs",
		}, []string{"backend", "failed"}),
		nonConverged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cakeday_nonconverged_runs_total",
			Help: "Rule engine runs that hit the round ceiling without stabilising",
		}),
		cakeDays: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cakeday_last_run_cakes",
			Help: "Cake days and cakes produced by the last run",
		}, []string{"kind"}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cakeday_last_run_duration_seconds",
			Help: "Wall time of the last run",
		}),
		peakHeap: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cakeday_last_run_peak_heap_bytes",
			Help: "Largest heap size sampled during the last run",
		}),
	}
	var err error
	if s.chunks, err = register(registerer, s.chunks); err != nil {
		return nil, err
	}
	if s.persons, err = register(registerer, s.persons); err != nil {
		return nil, err
	}
	if s.chunkLatency, err = register(registerer, s.chunkLatency); err != nil {
		return nil, err
	}
	if s.rounds, err = register(registerer, s.rounds); err != nil {
		return nil, err
	}
	if s.runs, err = register(registerer, s.runs); err != nil {
		return nil, err
	}
	if s.nonConverged, err = register(registerer, s.nonConverged); err != nil {
		return nil, err
	}
	if s.cakeDays, err = register(registerer, s.cakeDays); err != nil {
		return nil, err
	}
	if s.runDuration, err = register(registerer, s.runDuration); err != nil {
		return nil, err
	}
	if s.peakHeap, err = register(registerer, s.peakHeap); err != nil {
		return nil, err
	}
	return s, nil
}

// register adds c to reg, reusing an identical collector that is already
// registered.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordChunk updates the per-chunk counters and histograms.
func (s *PromSink) RecordChunk(ev coremetrics.ChunkEvent) error {
	s.chunks.WithLabelValues(strconv.FormatBool(ev.Converged)).Inc()
	s.persons.Add(float64(ev.Persons))
	s.chunkLatency.Observe(ev.Duration.Seconds())
	s.rounds.Observe(float64(ev.Rounds))
	return nil
}

// RecordRun updates the run level metrics.
func (s *PromSink) RecordRun(ev coremetrics.RunEvent) error {
	s.runs.WithLabelValues(ev.Backend, strconv.FormatBool(ev.Failed)).Inc()
	s.nonConverged.Add(float64(ev.NonConvergedRuns))
	if ev.Failed {
		return nil
	}
	s.cakeDays.WithLabelValues("days").Set(float64(ev.CakeDays))
	s.cakeDays.WithLabelValues("small").Set(float64(ev.SmallCakes))
	s.cakeDays.WithLabelValues("large").Set(float64(ev.LargeCakes))
	s.runDuration.Set(ev.Duration.Seconds())
	s.peakHeap.Set(float64(ev.PeakHeapBytes))
	return nil
}

// WriteTextfile writes the current metrics to path in Prometheus text format.
func (s *PromSink) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, s.gatherer)
}
