package cakeday

import (
	"time"

	"github.com/kilianp07/cakeday/core/calendar"
	"github.com/kilianp07/cakeday/core/model"
)

// Resolver maps a person to their candidate cake date for a year.
type Resolver struct {
	cal *calendar.Calendar
}

// NewResolver returns a Resolver using cal.
func NewResolver(cal *calendar.Calendar) *Resolver {
	return &Resolver{cal: cal}
}

// DayOff returns the day the person is excused from work: the birthday, or
// the next working day when the birthday is not a working day.
func (r *Resolver) DayOff(p model.Person, year int) time.Time {
	birthday := p.BirthdayIn(year)
	if r.cal.IsWorkingDay(birthday) {
		return birthday
	}
	return r.cal.NextWorkingDay(birthday)
}

// Resolve returns the first working day after the person's day off.
func (r *Resolver) Resolve(p model.Person, year int) time.Time {
	return r.cal.NextWorkingDay(r.DayOff(p, year))
}
