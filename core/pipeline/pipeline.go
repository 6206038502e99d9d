// Package pipeline computes cake days for a person stream of unknown size
// with bounded memory. People are consumed in fixed-size chunks; each chunk
// goes through the cakeday Scheduler and its result is appended to a spill
// store. Once the stream is exhausted the spill records are regrouped by
// exact date into the final calendar.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"runtime"
	"time"

	"github.com/kilianp07/cakeday/core/cakeday"
	"github.com/kilianp07/cakeday/core/chunk"
	"github.com/kilianp07/cakeday/core/factory"
	"github.com/kilianp07/cakeday/core/logger"
	"github.com/kilianp07/cakeday/core/metrics"
	"github.com/kilianp07/cakeday/core/model"
	"github.com/kilianp07/cakeday/core/spill"
	"github.com/kilianp07/cakeday/internal/eventbus"
)

// DefaultChunkSize is the number of people handled per chunk.
const DefaultChunkSize = 100

// ErrNoRecords is returned when the source holds no person records.
var ErrNoRecords = errors.New("no valid person records found")

// Config controls chunking, final consolidation and the spill backend.
type Config struct {
	ChunkSize int `json:"chunk_size"`
	// ReconcileBoundaries re-applies the merge and postponement rules to the
	// consolidated result. When false, chunk results are only regrouped by
	// exact date, so adjacency between dates from different chunks is kept.
	ReconcileBoundaries bool                 `json:"reconcile_boundaries"`
	Spill               factory.ModuleConfig `json:"spill"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.Spill.Type == "" {
		c.Spill.Type = "jsonl"
	}
}

// Progress is published after every chunk.
type Progress struct {
	Chunk     int
	Persons   int
	Processed int
	CakeDays  int
	Converged bool
}

// Result is the outcome of a run.
type Result struct {
	// Days is sorted ascending by date.
	Days    []model.CakeDay
	Persons int
	Chunks  int
	// Converged is false if any rule engine run hit its round ceiling.
	Converged        bool
	NonConvergedRuns int
	SmallCakes       int
	LargeCakes       int
	Elapsed          time.Duration
	// PeakHeapBytes is the largest heap size sampled after each chunk and
	// after consolidation.
	PeakHeapBytes uint64
}

// Pipeline runs the streaming computation. A Pipeline may be reused, each
// Run owns its own spill store.
type Pipeline struct {
	scheduler *cakeday.Scheduler
	cfg       Config
	log       logger.Logger
	sink      metrics.MetricsSink
	progress  *eventbus.TypedBus[Progress]
	newStore  func() (spill.Store, error)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Pipeline) { p.log = logger.OrNop(l) }
}

// WithMetrics sets the metrics sink.
func WithMetrics(s metrics.MetricsSink) Option {
	return func(p *Pipeline) {
		if s != nil {
			p.sink = s
		}
	}
}

// WithProgress publishes a Progress event on bus after each chunk.
func WithProgress(bus *eventbus.TypedBus[Progress]) Option {
	return func(p *Pipeline) { p.progress = bus }
}

// WithStoreFactory overrides how the spill store is created.
func WithStoreFactory(f func() (spill.Store, error)) Option {
	return func(p *Pipeline) {
		if f != nil {
			p.newStore = f
		}
	}
}

// New returns a Pipeline. cfg is defaulted.
func New(s *cakeday.Scheduler, cfg Config, opts ...Option) *Pipeline {
	cfg.SetDefaults()
	p := &Pipeline{
		scheduler: s,
		cfg:       cfg,
		log:       logger.NopLogger{},
		sink:      metrics.NopSink{},
	}
	p.newStore = func() (spill.Store, error) { return spill.New(p.cfg.Spill) }
	for _, o := range opts {
		o(p)
	}
	return p
}

// Run consumes src and returns the consolidated cake days for year. Any
// failure aborts the run; the spill store is removed before Run returns,
// whatever the outcome.
func (p *Pipeline) Run(ctx context.Context, src iter.Seq2[model.Person, error], year int) (res Result, err error) {
	start := time.Now()
	res.Converged = true
	defer func() {
		res.Elapsed = time.Since(start)
		p.recordRun(res, err)
	}()

	store, err := p.newStore()
	if err != nil {
		return Result{}, err
	}
	p.log.Debugf("spill store created at %s", store.Path())
	defer func() {
		if rerr := store.Remove(); rerr != nil {
			p.log.Errorf("remove spill store %s: %v", store.Path(), rerr)
			if err == nil {
				err = rerr
			}
		}
	}()

	for persons, cerr := range chunk.Seq(src, p.cfg.ChunkSize) {
		if cerr != nil {
			return Result{}, fmt.Errorf("read persons: %w", cerr)
		}
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		chunkStart := time.Now()
		r, err := p.scheduler.Schedule(ctx, persons, year)
		if err != nil {
			return Result{}, fmt.Errorf("chunk %d: %w", res.Chunks+1, err)
		}
		if err := store.Append(ctx, spill.FromCakeDays(r.Days)); err != nil {
			return Result{}, fmt.Errorf("chunk %d: %w", res.Chunks+1, err)
		}
		res.Chunks++
		res.Persons += len(persons)
		if !r.Converged {
			res.Converged = false
			res.NonConvergedRuns++
			p.log.Warnf("chunk %d did not stabilise after %d rounds", res.Chunks, r.Rounds)
		}
		p.recordChunk(metrics.ChunkEvent{
			Persons:   len(persons),
			CakeDays:  len(r.Days),
			Rounds:    r.Rounds,
			Converged: r.Converged,
			Duration:  time.Since(chunkStart),
		})
		p.progress.Publish(Progress{
			Chunk:     res.Chunks,
			Persons:   len(persons),
			Processed: res.Persons,
			CakeDays:  len(r.Days),
			Converged: r.Converged,
		})
		res.PeakHeapBytes = max(res.PeakHeapBytes, heapInUse())
	}
	if res.Persons == 0 {
		return Result{}, ErrNoRecords
	}

	days, err := p.consolidate(ctx, store)
	if err != nil {
		return Result{}, err
	}
	if p.cfg.ReconcileBoundaries {
		st := p.scheduler.Engine().Stabilize(days)
		days = st.Days
		if !st.Converged {
			res.Converged = false
			res.NonConvergedRuns++
			p.log.Warnf("final reconciliation did not stabilise after %d rounds", st.Rounds)
		}
	}
	res.Days = days
	res.PeakHeapBytes = max(res.PeakHeapBytes, heapInUse())
	for _, d := range days {
		res.SmallCakes += d.SmallCakes
		res.LargeCakes += d.LargeCakes
	}
	p.log.Infow("pipeline finished", map[string]any{
		"persons": res.Persons, "chunks": res.Chunks, "cake_days": len(days), "converged": res.Converged,
	})
	return res, nil
}

// consolidate reads every spill record and groups them by exact date.
func (p *Pipeline) consolidate(ctx context.Context, store spill.Store) ([]model.CakeDay, error) {
	ix := cakeday.NewDateIndex(0)
	err := store.Scan(ctx, func(r spill.Record) error {
		d, err := r.Day()
		if err != nil {
			return err
		}
		ix.Add(d, r.Names...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("consolidate: %w", err)
	}
	return ix.CakeDays(), nil
}

func heapInUse() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapAlloc
}

func (p *Pipeline) recordChunk(ev metrics.ChunkEvent) {
	if err := p.sink.RecordChunk(ev); err != nil {
		p.log.Warnf("record chunk metrics: %v", err)
	}
}

func (p *Pipeline) recordRun(res Result, err error) {
	ev := metrics.RunEvent{
		Persons:          res.Persons,
		Chunks:           res.Chunks,
		CakeDays:         len(res.Days),
		SmallCakes:       res.SmallCakes,
		LargeCakes:       res.LargeCakes,
		NonConvergedRuns: res.NonConvergedRuns,
		Backend:          p.cfg.Spill.Type,
		Duration:         res.Elapsed,
		PeakHeapBytes:    res.PeakHeapBytes,
		Failed:           err != nil,
	}
	if rerr := p.sink.RecordRun(ev); rerr != nil {
		p.log.Warnf("record run metrics: %v", rerr)
	}
}
