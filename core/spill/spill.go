// Package spill defines the transient on-disk store that holds per-chunk
// cake day results while a streaming run is in progress. A store belongs to
// exactly one run, has a unique name and is removed when the run ends.
package spill

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/cakeday/core/factory"
	"github.com/kilianp07/cakeday/core/model"
)

// ErrSpillIO marks failures to create, write or read a spill store.
var ErrSpillIO = errors.New("spill store i/o")

// Record is one flattened cake day.
type Record struct {
	Date  string   `json:"date"`
	Small int      `json:"small"`
	Large int      `json:"large"`
	Names []string `json:"names"`
}

// FromCakeDays flattens cake days into records.
func FromCakeDays(days []model.CakeDay) []Record {
	out := make([]Record, len(days))
	for i, d := range days {
		out[i] = Record{
			Date:  d.Date.Format(model.DateLayout),
			Small: d.SmallCakes,
			Large: d.LargeCakes,
			Names: d.Attendees,
		}
	}
	return out
}

// Day parses the record date.
func (r Record) Day() (time.Time, error) {
	t, err := time.Parse(model.DateLayout, r.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad record date %q: %w", ErrSpillIO, r.Date, err)
	}
	return t, nil
}

// Store is an append-only record store scoped to one run.
type Store interface {
	// Append writes one chunk's records.
	Append(ctx context.Context, recs []Record) error
	// Scan calls fn for every record in append order. Iteration stops at the
	// first error returned by fn.
	Scan(ctx context.Context, fn func(Record) error) error
	// Path identifies the backing file.
	Path() string
	// Remove releases resources and deletes the backing file. It is safe to
	// call more than once.
	Remove() error
}

// IOError wraps err as a spill store failure for op.
func IOError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrSpillIO, op, err)
}

var registry = factory.NewRegistry[Store]()

// Register adds a store backend identified by name.
func Register(name string, f factory.Factory[Store]) error {
	return registry.Register(name, f)
}

// Backends lists the registered backend names.
func Backends() []string { return registry.Names() }

// Has reports whether a backend is registered under name.
func Has(name string) bool { return registry.Has(name) }

// New creates a fresh store from cfg.
func New(cfg factory.ModuleConfig) (Store, error) {
	st, err := registry.Create(cfg)
	if err != nil {
		return nil, IOError("create "+cfg.Type, err)
	}
	return st, nil
}
