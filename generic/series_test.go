package generic_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tjwilli6/Fitness/generic"
)

// =============================================================================
// SERIES
// =============================================================================

func TestSeries_AsOfTakesLatestOnOrBefore(t *testing.T) {
	s := generic.Series{
		sample(2023, time.January, 1, 180),
		sample(2023, time.January, 5, 179),
		sample(2023, time.January, 9, 177),
	}

	got, err := s.AsOf(day(2023, time.January, 7))
	require.NoError(t, err)
	assert.Equal(t, 179.0, got.Value)

	got, err = s.AsOf(day(2023, time.January, 9))
	require.NoError(t, err)
	assert.Equal(t, 177.0, got.Value, "the date itself is included")

	_, err = s.AsOf(day(2022, time.December, 31))
	assert.ErrorIs(t, err, generic.ErrNotFound)
}

func TestSeries_AsOfIgnoresTimeOfDayOnQueryDate(t *testing.T) {
	// GIVEN: A run late in the evening
	s := generic.Series{
		{At: generic.NewTimestamp(time.Date(2023, time.April, 2, 21, 30, 0, 0, time.UTC)), Value: 5},
	}

	// WHEN/THEN: Asking as of that calendar date finds it
	got, err := s.AsOf(day(2023, time.April, 2))
	require.NoError(t, err)
	assert.Equal(t, 5.0, got.Value)
}

func TestSeries_FilterAndPositive(t *testing.T) {
	s := generic.Series{
		sample(2023, time.January, 1, -1),
		sample(2023, time.January, 2, 0),
		sample(2023, time.January, 3, 180),
		sample(2023, time.February, 1, 178),
	}

	january := generic.Period{Start: day(2023, time.January, 1), End: day(2023, time.January, 31)}
	assert.Len(t, s.Filter(january), 3)
	assert.Equal(t, []float64{180, 178}, s.Positive().Values())
}

func TestSeries_Span(t *testing.T) {
	s := generic.Series{sample(2023, time.January, 1, 1), sample(2023, time.January, 15, 1)}
	assert.Equal(t, 14.0, s.Span())
	assert.Equal(t, 0.0, generic.Series{}.Span())
}

// =============================================================================
// PERIOD
// =============================================================================

func TestParsePeriod(t *testing.T) {
	t.Run("defaults when unset", func(t *testing.T) {
		p, err := generic.ParsePeriod("", "")
		require.NoError(t, err)
		assert.Equal(t, generic.EarliestDate, p.Start)
		assert.Equal(t, generic.LatestDate, p.End)
	})

	t.Run("explicit bounds", func(t *testing.T) {
		p, err := generic.ParsePeriod("2023-01-01", "2023-03-31")
		require.NoError(t, err)
		assert.True(t, p.Contains(day(2023, time.March, 31)))
		assert.False(t, p.Contains(day(2023, time.April, 1)))
	})

	t.Run("bad date string", func(t *testing.T) {
		_, err := generic.ParsePeriod("2023/01/01", "")
		assert.Error(t, err)
	})

	t.Run("inverted window", func(t *testing.T) {
		_, err := generic.ParsePeriod("2023-03-01", "2023-01-01")
		assert.ErrorIs(t, err, generic.ErrInvalidPeriod)
	})
}

func TestPeriod_Days(t *testing.T) {
	p := generic.Period{Start: day(2023, time.June, 10), End: day(2023, time.June, 12)}

	days := p.Days()
	require.Len(t, days, 3)
	assert.Equal(t, "2023-06-12", days[2].String())
}

// =============================================================================
// TIME POINT
// =============================================================================

func TestParseTimePoint(t *testing.T) {
	d, err := generic.ParseTimePoint("2023-06-10")
	require.NoError(t, err)
	assert.Equal(t, generic.GranularityDay, d.Granularity)
	assert.Equal(t, "2023-06-10", d.String())

	ts, err := generic.ParseTimePoint("2023-06-10T07:15:00")
	require.NoError(t, err)
	assert.Equal(t, generic.GranularitySecond, ts.Granularity)
	assert.Equal(t, "2023-06-10T07:15:00", ts.String())
	assert.True(t, ts.SameDay(d))
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 10, generic.DaysBetween(day(2023, time.January, 1), day(2023, time.January, 11)))
	assert.Equal(t, 1.5, generic.FractionalDaysBetween(
		day(2023, time.January, 1),
		generic.NewTimestamp(time.Date(2023, time.January, 2, 12, 0, 0, 0, time.UTC)),
	))
}
