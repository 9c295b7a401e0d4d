package generic_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tjwilli6/Fitness/generic"
)

func TestFitEndpoints_Slope(t *testing.T) {
	// GIVEN: 180 lbs on Jan 1 and 170 lbs on Jan 11
	s := generic.Series{
		sample(2023, time.January, 1, 180),
		sample(2023, time.January, 11, 170),
	}

	// WHEN: Fitting the endpoint trend
	trend, err := generic.FitEndpoints(s)
	require.NoError(t, err)

	// THEN: Exactly -1 lb/day
	assert.Equal(t, -1.0, trend.Slope)
	assert.Equal(t, 10.0, trend.Days)
}

func TestFitEndpoints_IgnoresInteriorSamples(t *testing.T) {
	s := generic.Series{
		sample(2023, time.January, 1, 180),
		sample(2023, time.January, 3, 195),
		sample(2023, time.January, 11, 170),
	}

	trend, err := generic.FitEndpoints(s)
	require.NoError(t, err)
	assert.Equal(t, -1.0, trend.Slope)
}

func TestFitEndpoints_InsufficientData(t *testing.T) {
	_, err := generic.FitEndpoints(generic.Series{sample(2023, time.January, 1, 180)})
	assert.ErrorIs(t, err, generic.ErrInsufficientData)

	_, err = generic.FitEndpoints(generic.Series{
		sample(2023, time.January, 1, 180),
		sample(2023, time.January, 1, 179),
	})
	assert.ErrorIs(t, err, generic.ErrInsufficientData, "same-day samples have no span")
}

func TestProjectValueAndDate(t *testing.T) {
	anchor := sample(2023, time.January, 11, 170)

	assert.Equal(t, 160.0, generic.ProjectValue(anchor, -1, day(2023, time.January, 21)))

	when, err := generic.ProjectDate(anchor, -1, 165)
	require.NoError(t, err)
	assert.Equal(t, "2023-01-16", when.String())

	when, err = generic.ProjectDate(anchor, -0.3, 169)
	require.NoError(t, err)
	assert.Equal(t, "2023-01-14", when.String(), "3.33 days rounds to 3")
}

func TestProjectDate_Flat(t *testing.T) {
	anchor := sample(2023, time.January, 11, 170)

	_, err := generic.ProjectDate(anchor, 0, 160)
	assert.ErrorIs(t, err, generic.ErrFlatTrend)

	when, err := generic.ProjectDate(anchor, 0, 170)
	require.NoError(t, err)
	assert.Equal(t, "2023-01-11", when.String(), "already there")
}
