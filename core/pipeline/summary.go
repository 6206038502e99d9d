package pipeline

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/cakeday/core/model"
)

// Summary holds descriptive statistics about a cake day calendar.
type Summary struct {
	CakeDays      int
	SmallCakes    int
	LargeCakes    int
	Attendees     int
	MeanAttendees float64
	StdAttendees  float64
	MaxAttendees  int
	First         string
	Last          string
}

// Summarize computes statistics over days, which must be sorted by date.
func Summarize(days []model.CakeDay) Summary {
	s := Summary{CakeDays: len(days)}
	if len(days) == 0 {
		return s
	}
	sizes := make([]float64, len(days))
	for i, d := range days {
		sizes[i] = float64(len(d.Attendees))
		s.SmallCakes += d.SmallCakes
		s.LargeCakes += d.LargeCakes
	}
	s.Attendees = int(floats.Sum(sizes))
	if len(sizes) > 1 {
		s.MeanAttendees, s.StdAttendees = stat.MeanStdDev(sizes, nil)
	} else {
		s.MeanAttendees = sizes[0]
	}
	s.MaxAttendees = int(floats.Max(sizes))
	s.First = days[0].Date.Format(model.DateLayout)
	s.Last = days[len(days)-1].Date.Format(model.DateLayout)
	return s
}
