package model

import "time"

// CakeDay is a date on which cake is provided to one or more people.
// Exactly one of SmallCakes and LargeCakes is 1: a single attendee gets a
// small cake, two or more share a large one.
type CakeDay struct {
	Date       time.Time
	SmallCakes int
	LargeCakes int
	Attendees  []string
}

// NewCakeDay builds a CakeDay for the given attendees, deriving the cake
// counts from their number. The attendee slice is copied.
func NewCakeDay(date time.Time, attendees []string) CakeDay {
	names := make([]string, len(attendees))
	copy(names, attendees)
	cd := CakeDay{Date: Day(date), Attendees: names}
	if len(names) >= 2 {
		cd.LargeCakes = 1
	} else {
		cd.SmallCakes = 1
	}
	return cd
}

// WithDate returns a copy of the cake day moved to date. Counts and
// attendees are unchanged.
func (c CakeDay) WithDate(date time.Time) CakeDay {
	names := make([]string, len(c.Attendees))
	copy(names, c.Attendees)
	return CakeDay{Date: Day(date), SmallCakes: c.SmallCakes, LargeCakes: c.LargeCakes, Attendees: names}
}

// Merge combines c and other into a large cake on date. Attendees of c come
// first.
func (c CakeDay) Merge(other CakeDay, date time.Time) CakeDay {
	names := make([]string, 0, len(c.Attendees)+len(other.Attendees))
	names = append(names, c.Attendees...)
	names = append(names, other.Attendees...)
	return CakeDay{Date: Day(date), LargeCakes: 1, Attendees: names}
}

// TotalCakes returns the number of cakes bought on this day.
func (c CakeDay) TotalCakes() int { return c.SmallCakes + c.LargeCakes }

// IsLarge reports whether a large cake is bought.
func (c CakeDay) IsLarge() bool { return c.LargeCakes > 0 }
