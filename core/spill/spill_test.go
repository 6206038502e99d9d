package spill

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/cakeday/core/model"
)

func TestFromCakeDays(t *testing.T) {
	days := []model.CakeDay{
		model.NewCakeDay(time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC), []string{"Alice"}),
		model.NewCakeDay(time.Date(2024, 1, 18, 0, 0, 0, 0, time.UTC), []string{"Bob", "Carol"}),
	}
	recs := FromCakeDays(days)
	require.Len(t, recs, 2)
	assert.Equal(t, Record{Date: "2024-01-16", Small: 1, Names: []string{"Alice"}}, recs[0])
	assert.Equal(t, Record{Date: "2024-01-18", Large: 1, Names: []string{"Bob", "Carol"}}, recs[1])

	d, err := recs[1].Day()
	require.NoError(t, err)
	assert.Equal(t, days[1].Date, d)
}

func TestRecordBadDay(t *testing.T) {
	_, err := Record{Date: "16/01/2024"}.Day()
	assert.ErrorIs(t, err, ErrSpillIO)
}

func TestIOError(t *testing.T) {
	cause := errors.New("disk full")
	err := IOError("append", cause)
	assert.ErrorIs(t, err, ErrSpillIO)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "append")
}
