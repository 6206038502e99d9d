package cakeday

import (
	"slices"
	"time"

	"github.com/kilianp07/cakeday/core/model"
)

// DateIndex accumulates attendee names per calendar day. Groups live in an
// arena in first-seen order and a day key maps to the group's slot. An index
// is owned by the function that builds it and is not shared.
type DateIndex struct {
	slots  map[int64]int
	groups []dateGroup
}

type dateGroup struct {
	date  time.Time
	names []string
}

// NewDateIndex returns an empty index sized for about n distinct days.
func NewDateIndex(n int) *DateIndex {
	return &DateIndex{slots: make(map[int64]int, n), groups: make([]dateGroup, 0, n)}
}

// Add appends names to the group for date's day.
func (ix *DateIndex) Add(date time.Time, names ...string) {
	key := model.DayKey(date)
	slot, ok := ix.slots[key]
	if !ok {
		slot = len(ix.groups)
		ix.slots[key] = slot
		ix.groups = append(ix.groups, dateGroup{date: model.Day(date)})
	}
	ix.groups[slot].names = append(ix.groups[slot].names, names...)
}

// CakeDays builds one CakeDay per non-empty group, sorted by date.
func (ix *DateIndex) CakeDays() []model.CakeDay {
	out := make([]model.CakeDay, 0, len(ix.groups))
	for _, g := range ix.groups {
		if len(g.names) == 0 {
			continue
		}
		out = append(out, model.NewCakeDay(g.date, g.names))
	}
	sortByDate(out)
	return out
}

// Consolidate regroups cake days strictly by exact date, concatenating
// attendees in input order and recomputing cake counts.
func Consolidate(days []model.CakeDay) []model.CakeDay {
	ix := NewDateIndex(len(days))
	for _, d := range days {
		ix.Add(d.Date, d.Attendees...)
	}
	return ix.CakeDays()
}

func sortByDate(days []model.CakeDay) {
	slices.SortStableFunc(days, func(a, b model.CakeDay) int {
		return a.Date.Compare(b.Date)
	})
}
