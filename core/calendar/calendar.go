// Package calendar answers working-day questions for the cake day rules.
// A working day is any weekday that is not one of a fixed set of annual
// holidays. Holidays never move to an observed day.
package calendar

import (
	"fmt"
	"time"

	"github.com/rickar/cal/v2"

	"github.com/kilianp07/cakeday/core/model"
)

// DefaultHolidays lists the fixed annual holidays as MM-DD.
var DefaultHolidays = []string{"12-25", "12-26", "01-01"}

// Calendar is a working-day calendar with a fixed weekend and fixed annual
// holidays. It is immutable and safe for concurrent use.
type Calendar struct {
	holidays []*cal.Holiday
}

// New builds a Calendar from MM-DD holiday strings. An empty list yields the
// default holidays.
func New(holidays []string) (*Calendar, error) {
	if len(holidays) == 0 {
		holidays = DefaultHolidays
	}
	c := &Calendar{holidays: make([]*cal.Holiday, 0, len(holidays))}
	for _, s := range holidays {
		h, err := parseHoliday(s)
		if err != nil {
			return nil, err
		}
		c.holidays = append(c.holidays, h)
	}
	return c, nil
}

// Default returns the calendar with Christmas Day, Boxing Day and New Year's Day.
func Default() *Calendar {
	c, err := New(DefaultHolidays)
	if err != nil {
		panic(err)
	}
	return c
}

func parseHoliday(s string) (*cal.Holiday, error) {
	t, err := time.Parse("01-02", s)
	if err != nil {
		return nil, fmt.Errorf("invalid holiday %q: expected MM-DD", s)
	}
	return &cal.Holiday{
		Name:  s,
		Month: t.Month(),
		Day:   t.Day(),
		Func:  cal.CalcDayOfMonth,
	}, nil
}

// IsWeekend reports whether date is a Saturday or Sunday.
func (c *Calendar) IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsHoliday reports whether date's month and day match a fixed holiday.
// A 02-29 holiday only matches in leap years.
func (c *Calendar) IsHoliday(date time.Time) bool {
	y, m, d := date.Date()
	for _, h := range c.holidays {
		actual, _ := h.Calc(y)
		if actual.IsZero() || actual.Month() != h.Month || actual.Day() != h.Day {
			continue
		}
		if actual.Month() == m && actual.Day() == d {
			return true
		}
	}
	return false
}

// IsWorkingDay reports whether date is neither a weekend day nor a holiday.
func (c *Calendar) IsWorkingDay(date time.Time) bool {
	return !c.IsWeekend(date) && !c.IsHoliday(date)
}

// NextWorkingDay returns the first working day strictly after date.
func (c *Calendar) NextWorkingDay(date time.Time) time.Time {
	next := model.Day(date).AddDate(0, 0, 1)
	for !c.IsWorkingDay(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// AreConsecutive reports whether b is the working day immediately after a.
func (c *Calendar) AreConsecutive(a, b time.Time) bool {
	return c.NextWorkingDay(a).Equal(model.Day(b))
}
