package cakeday

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/cakeday/core/chunk"
	"github.com/kilianp07/cakeday/core/logger"
	"github.com/kilianp07/cakeday/core/model"
)

// DefaultCeiling is the largest number of people given to the Engine at once.
const DefaultCeiling = 2000

// Scheduler bounds the number of people the Engine processes in one go.
// Larger inputs are split into sub-batches whose results are regrouped by
// date and stabilised again, so groups split across sub-batches and
// adjacency between them are resolved.
type Scheduler struct {
	engine  *Engine
	ceiling int
	workers int
	log     logger.Logger
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithCeiling sets the sub-batch ceiling. Values below 1 are ignored.
func WithCeiling(n int) SchedulerOption {
	return func(s *Scheduler) {
		if n > 0 {
			s.ceiling = n
		}
	}
}

// WithWorkers sets how many sub-batches may be computed concurrently.
// Output does not depend on this value.
func WithWorkers(n int) SchedulerOption {
	return func(s *Scheduler) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithSchedulerLogger sets the scheduler logger.
func WithSchedulerLogger(l logger.Logger) SchedulerOption {
	return func(s *Scheduler) { s.log = logger.OrNop(l) }
}

// NewScheduler returns a Scheduler running engine.
func NewScheduler(engine *Engine, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{engine: engine, ceiling: DefaultCeiling, workers: 1, log: logger.NopLogger{}}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Engine returns the underlying rule engine.
func (s *Scheduler) Engine() *Engine { return s.engine }

// Schedule computes the stabilised cake days for persons in year. It only
// fails when ctx is cancelled.
func (s *Scheduler) Schedule(ctx context.Context, persons []model.Person, year int) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if !chunk.Exceeds(len(persons), s.ceiling) {
		return s.engine.Calculate(persons, year), nil
	}

	batches, err := chunk.Slice(persons, s.ceiling)
	if err != nil {
		return Result{}, err
	}
	s.log.Debugw("splitting persons into sub-batches", map[string]any{
		"persons": len(persons), "ceiling": s.ceiling, "batches": len(batches), "workers": s.workers,
	})

	results := make([]Result, len(batches))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, b := range batches {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.engine.Calculate(b, year)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("schedule sub-batches: %w", err)
	}

	converged := true
	var all []model.CakeDay
	for _, r := range results {
		converged = converged && r.Converged
		all = append(all, r.Days...)
	}
	final := s.engine.Stabilize(all)
	final.Converged = final.Converged && converged
	return final, nil
}
