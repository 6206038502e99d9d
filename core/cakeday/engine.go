package cakeday

import (
	"time"

	"github.com/kilianp07/cakeday/core/calendar"
	"github.com/kilianp07/cakeday/core/logger"
	"github.com/kilianp07/cakeday/core/model"
)

// DefaultMaxRounds bounds the fixed-point iteration.
const DefaultMaxRounds = 5

// Result is a stabilised cake day set.
type Result struct {
	// Days is sorted ascending by date.
	Days []model.CakeDay
	// Rounds is the number of merge and postponement rounds applied.
	Rounds int
	// Converged is false when the round ceiling was hit while the set was
	// still changing. Days then holds the last computed set.
	Converged bool
}

// Engine applies the cake day rules. It holds no per-call state and is safe
// for concurrent use.
type Engine struct {
	cal       *calendar.Calendar
	resolver  *Resolver
	maxRounds int
	log       logger.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithMaxRounds overrides the fixed-point ceiling. Values below 1 are ignored.
func WithMaxRounds(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxRounds = n
		}
	}
}

// WithEngineLogger sets the logger used to report non-convergence.
func WithEngineLogger(l logger.Logger) EngineOption {
	return func(e *Engine) { e.log = logger.OrNop(l) }
}

// NewEngine returns an Engine on the given calendar.
func NewEngine(cal *calendar.Calendar, opts ...EngineOption) *Engine {
	e := &Engine{
		cal:       cal,
		resolver:  NewResolver(cal),
		maxRounds: DefaultMaxRounds,
		log:       logger.NopLogger{},
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Calculate resolves every person to a candidate date for year, groups the
// candidates and stabilises the result.
func (e *Engine) Calculate(persons []model.Person, year int) Result {
	ix := NewDateIndex(len(persons))
	for _, p := range persons {
		ix.Add(e.resolver.Resolve(p, year), p.Name)
	}
	return e.Stabilize(ix.CakeDays())
}

// Stabilize applies the merge and postponement rules to already grouped cake
// days until a round leaves the set unchanged or the ceiling is reached.
// The input slice is not modified.
func (e *Engine) Stabilize(days []model.CakeDay) Result {
	cur := Consolidate(days)
	for round := 1; round <= e.maxRounds; round++ {
		before := fingerprint(cur)

		cur = e.mergeAdjacent(cur)
		sortByDate(cur)
		cur = e.postpone(cur)
		sortByDate(cur)
		cur = coalesce(cur)

		if fingerprint(cur) == before {
			return Result{Days: cur, Rounds: round, Converged: true}
		}
	}
	e.log.Warnf("cake day rules did not stabilise after %d rounds (%d cake days)", e.maxRounds, len(cur))
	return Result{Days: cur, Rounds: e.maxRounds, Converged: false}
}

// mergeAdjacent collapses each pair of cake days on consecutive working days
// into one large cake on the later day. Pairs are taken greedily from the
// left and never overlap. days must be sorted.
func (e *Engine) mergeAdjacent(days []model.CakeDay) []model.CakeDay {
	out := make([]model.CakeDay, 0, len(days))
	for i := 0; i < len(days); {
		if i+1 < len(days) && e.cal.AreConsecutive(days[i].Date, days[i+1].Date) {
			out = append(out, days[i].Merge(days[i+1], days[i+1].Date))
			i += 2
			continue
		}
		out = append(out, days[i])
		i++
	}
	return out
}

// postpone moves a cake day that falls on the working day after the last
// kept cake day to the next working day after its own date. days must be
// sorted.
func (e *Engine) postpone(days []model.CakeDay) []model.CakeDay {
	out := make([]model.CakeDay, 0, len(days))
	var last time.Time
	for i, d := range days {
		if i > 0 && d.Date.Equal(e.cal.NextWorkingDay(last)) {
			d = d.WithDate(e.cal.NextWorkingDay(d.Date))
		}
		out = append(out, d)
		last = d.Date
	}
	return out
}

// coalesce joins sorted entries that share a date, which happens when a
// postponed cake lands on an existing cake day.
func coalesce(days []model.CakeDay) []model.CakeDay {
	out := make([]model.CakeDay, 0, len(days))
	for _, d := range days {
		if n := len(out); n > 0 && out[n-1].Date.Equal(d.Date) {
			names := append(append([]string{}, out[n-1].Attendees...), d.Attendees...)
			out[n-1] = model.NewCakeDay(d.Date, names)
			continue
		}
		out = append(out, d)
	}
	return out
}
