package model

import (
	"time"
)

// DateLayout is the layout used for dates in input records and exports.
const DateLayout = "2006-01-02"

// Person is an employee entitled to a birthday cake.
type Person struct {
	Name        string
	DateOfBirth time.Time
}

// BirthdayIn returns the person's birthday re-scoped to year. A 29 February
// birthday falls on 1 March in non-leap years.
func (p Person) BirthdayIn(year int) time.Time {
	return time.Date(year, p.DateOfBirth.Month(), p.DateOfBirth.Day(), 0, 0, 0, 0, time.UTC)
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayKey returns an integer key identifying the calendar day of t.
func DayKey(t time.Time) int64 {
	return Day(t).Unix() / 86400
}
