package cakeday

import (
	"fmt"
	"math/rand"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/cakeday/core/calendar"
	"github.com/kilianp07/cakeday/core/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func person(name string, y int, m time.Month, d int) model.Person {
	return model.Person{Name: name, DateOfBirth: day(y, m, d)}
}

func newEngine(opts ...EngineOption) *Engine {
	return NewEngine(calendar.Default(), opts...)
}

// canonical renders a cake day set independently of attendee order.
func canonical(days []model.CakeDay) []string {
	out := make([]string, len(days))
	for i, d := range days {
		names := slices.Clone(d.Attendees)
		slices.Sort(names)
		out[i] = fmt.Sprintf("%s s=%d l=%d %v", d.Date.Format(model.DateLayout), d.SmallCakes, d.LargeCakes, names)
	}
	slices.Sort(out)
	return out
}

func randomPersons(r *rand.Rand, n int) []model.Person {
	out := make([]model.Person, n)
	for i := range out {
		dob := day(1980, 1, 1).AddDate(0, 0, r.Intn(366*20))
		out[i] = model.Person{Name: fmt.Sprintf("p%04d", i), DateOfBirth: dob}
	}
	return out
}

func assertCounts(t *testing.T, days []model.CakeDay) {
	t.Helper()
	for _, d := range days {
		require.NotEmpty(t, d.Attendees)
		assert.Equal(t, 1, d.SmallCakes+d.LargeCakes, d.Date)
		if len(d.Attendees) >= 2 {
			assert.Equal(t, 1, d.LargeCakes, d.Date)
		} else {
			assert.Equal(t, 1, d.SmallCakes, d.Date)
		}
	}
}

func assertNoAdjacency(t *testing.T, cal *calendar.Calendar, days []model.CakeDay) {
	t.Helper()
	dates := make(map[int64]bool, len(days))
	for _, d := range days {
		dates[model.DayKey(d.Date)] = true
	}
	for _, d := range days {
		next := cal.NextWorkingDay(d.Date)
		assert.False(t, dates[model.DayKey(next)], "cake on %s and %s", d.Date.Format(model.DateLayout), next.Format(model.DateLayout))
	}
}

func TestResolverWorkingDayBirthday(t *testing.T) {
	r := NewResolver(calendar.Default())
	p := person("Alice", 1990, 1, 15)
	assert.Equal(t, day(2024, 1, 15), r.DayOff(p, 2024))
	assert.Equal(t, day(2024, 1, 16), r.Resolve(p, 2024))
}

func TestResolverWeekendBirthday(t *testing.T) {
	r := NewResolver(calendar.Default())
	p := person("Bob", 1985, 6, 22) // Saturday in 2024
	assert.Equal(t, day(2024, 6, 24), r.DayOff(p, 2024))
	assert.Equal(t, day(2024, 6, 25), r.Resolve(p, 2024))
}

func TestResolverHolidayBirthday(t *testing.T) {
	r := NewResolver(calendar.Default())
	p := person("Noel", 1990, 12, 25)
	// Wed 25 and Thu 26 are holidays, day off is Fri 27, cake after the weekend.
	assert.Equal(t, day(2024, 12, 27), r.DayOff(p, 2024))
	assert.Equal(t, day(2024, 12, 30), r.Resolve(p, 2024))
}

func TestSinglePersonSmallCake(t *testing.T) {
	res := newEngine().Calculate([]model.Person{person("Alice", 1990, 1, 15)}, 2024)
	require.True(t, res.Converged)
	require.Len(t, res.Days, 1)
	assert.Equal(t, day(2024, 1, 16), res.Days[0].Date)
	assert.Equal(t, time.Tuesday, res.Days[0].Date.Weekday())
	assert.Equal(t, 1, res.Days[0].SmallCakes)
	assert.Equal(t, 0, res.Days[0].LargeCakes)
	assert.Equal(t, []string{"Alice"}, res.Days[0].Attendees)
}

func TestSameDateLargeCake(t *testing.T) {
	res := newEngine().Calculate([]model.Person{
		person("John", 1990, 1, 15),
		person("Jane", 1988, 1, 15),
	}, 2024)
	require.Len(t, res.Days, 1)
	assert.Equal(t, day(2024, 1, 16), res.Days[0].Date)
	assert.Equal(t, 0, res.Days[0].SmallCakes)
	assert.Equal(t, 1, res.Days[0].LargeCakes)
	assert.ElementsMatch(t, []string{"John", "Jane"}, res.Days[0].Attendees)
}

func TestConsecutiveDaysMergeOnLaterDay(t *testing.T) {
	// Candidates Mon 22 and Tue 23 January.
	res := newEngine().Calculate([]model.Person{
		person("E1", 1990, 1, 19),
		person("E2", 1990, 1, 22),
	}, 2024)
	require.Len(t, res.Days, 1)
	assert.Equal(t, day(2024, 1, 23), res.Days[0].Date)
	assert.Equal(t, 1, res.Days[0].LargeCakes)
	assert.ElementsMatch(t, []string{"E1", "E2"}, res.Days[0].Attendees)
}

func TestThreeConsecutiveDaysMergeThenPostpone(t *testing.T) {
	// Candidates Tue 16, Wed 17, Thu 18 January.
	res := newEngine().Calculate([]model.Person{
		person("A", 1990, 1, 15),
		person("B", 1990, 1, 16),
		person("C", 1990, 1, 17),
	}, 2024)
	require.True(t, res.Converged)
	assert.Equal(t, 2, res.Rounds)
	require.Len(t, res.Days, 2)

	assert.Equal(t, day(2024, 1, 17), res.Days[0].Date)
	assert.Equal(t, 1, res.Days[0].LargeCakes)
	assert.Equal(t, []string{"A", "B"}, res.Days[0].Attendees)

	assert.Equal(t, day(2024, 1, 19), res.Days[1].Date)
	assert.Equal(t, 1, res.Days[1].SmallCakes)
	assert.Equal(t, []string{"C"}, res.Days[1].Attendees)
}

func TestMergeAcrossWeekend(t *testing.T) {
	// Candidates Fri 19 and Mon 22 January are consecutive working days.
	res := newEngine().Calculate([]model.Person{
		person("F", 1990, 1, 18),
		person("M", 1990, 1, 19),
	}, 2024)
	require.Len(t, res.Days, 1)
	assert.Equal(t, day(2024, 1, 22), res.Days[0].Date)
	assert.Equal(t, []string{"F", "M"}, res.Days[0].Attendees)
}

func TestPostponementCascades(t *testing.T) {
	// Candidates Tue 16, Wed 17, Thu 18 and Mon 22 January.
	res := newEngine().Calculate([]model.Person{
		person("A", 1990, 1, 15),
		person("B", 1990, 1, 16),
		person("C", 1990, 1, 17),
		person("D", 1990, 1, 19),
	}, 2024)
	require.True(t, res.Converged)
	assertCounts(t, res.Days)
	assertNoAdjacency(t, calendar.Default(), res.Days)
}

func TestResultSortedByDate(t *testing.T) {
	res := newEngine().Calculate([]model.Person{
		person("Late", 1990, 11, 4),
		person("Early", 1990, 2, 5),
		person("Mid", 1990, 6, 10),
	}, 2024)
	require.Len(t, res.Days, 3)
	assert.True(t, slices.IsSortedFunc(res.Days, func(a, b model.CakeDay) int { return a.Date.Compare(b.Date) }))
}

func TestEmptyInput(t *testing.T) {
	res := newEngine().Calculate(nil, 2024)
	assert.Empty(t, res.Days)
	assert.True(t, res.Converged)
}

func TestNonConvergenceIsReported(t *testing.T) {
	res := newEngine(WithMaxRounds(1)).Calculate([]model.Person{
		person("A", 1990, 1, 15),
		person("B", 1990, 1, 16),
		person("C", 1990, 1, 17),
	}, 2024)
	assert.False(t, res.Converged)
	assert.Equal(t, 1, res.Rounds)
	require.Len(t, res.Days, 2)
}

func TestStabilizeGroupsDuplicateDates(t *testing.T) {
	in := []model.CakeDay{
		model.NewCakeDay(day(2024, 3, 5), []string{"A"}),
		model.NewCakeDay(day(2024, 3, 5), []string{"B"}),
	}
	res := newEngine().Stabilize(in)
	require.Len(t, res.Days, 1)
	assert.Equal(t, []string{"A", "B"}, res.Days[0].Attendees)
	assert.Equal(t, 1, res.Days[0].LargeCakes)
	assert.Len(t, in[0].Attendees, 1)
}

func TestDeterminism(t *testing.T) {
	persons := randomPersons(rand.New(rand.NewSource(7)), 300)
	e := newEngine()
	a := e.Calculate(persons, 2024)
	b := e.Calculate(persons, 2024)
	assert.Equal(t, a, b)
}

func TestOrderInvariance(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	persons := randomPersons(r, 150)
	e := newEngine()
	want := canonical(e.Calculate(persons, 2025).Days)
	for i := 0; i < 5; i++ {
		shuffled := slices.Clone(persons)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, canonical(e.Calculate(shuffled, 2025).Days))
	}
}

func TestStabilisedResultsHoldInvariants(t *testing.T) {
	cal := calendar.Default()
	e := NewEngine(cal)
	converged := 0
	for seed := int64(1); seed <= 20; seed++ {
		persons := randomPersons(rand.New(rand.NewSource(seed)), 40)
		res := e.Calculate(persons, 2024)
		assertCounts(t, res.Days)
		total := 0
		for _, d := range res.Days {
			total += len(d.Attendees)
		}
		assert.Equal(t, len(persons), total)
		if res.Converged {
			converged++
			assertNoAdjacency(t, cal, res.Days)
		}
	}
	assert.Positive(t, converged)
}

func TestFingerprintOrderIndependent(t *testing.T) {
	a := model.NewCakeDay(day(2024, 1, 16), []string{"A", "B"})
	b := model.NewCakeDay(day(2024, 1, 18), []string{"C"})
	swapped := model.NewCakeDay(day(2024, 1, 16), []string{"B", "A"})
	assert.Equal(t, fingerprint([]model.CakeDay{a, b}), fingerprint([]model.CakeDay{b, swapped}))
	assert.NotEqual(t, fingerprint([]model.CakeDay{a, b}), fingerprint([]model.CakeDay{a}))
	assert.NotEqual(t, fingerprint([]model.CakeDay{b}), fingerprint([]model.CakeDay{b.WithDate(day(2024, 1, 19))}))
}
