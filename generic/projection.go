/*
projection.go - Linear trend and projection

PURPOSE:
  Answers "where is this metric heading?" from a series of samples. The
  trend is the straight line through the first and last sample, not a
  least-squares fit: with noisy daily weigh-ins the endpoints of a window
  are what the user compares by eye.

  Slope is in value units per day.

PROJECTION:
  Given an anchor (usually the latest sample as of today):
    value at date  = anchor.Value + slope * days(date - anchor.At)
    date for value = anchor.At + (value - anchor.Value) / slope days

EXAMPLE:
  trend, _ := FitEndpoints(Series{{Jan 1, 180}, {Jan 11, 170}})
  trend.Slope                        // -1.0
  ProjectValue(anchor, trend.Slope, Jan 21)   // 160 if anchor is {Jan 11, 170}
*/
package generic

import "math"

// =============================================================================
// TREND
// =============================================================================

// Trend is the line through the first and last sample of a series.
type Trend struct {
	First Sample
	Last  Sample
	Days  float64
	Slope float64
}

// FitEndpoints computes the endpoint trend of s.
// Needs two samples on different dates, otherwise ErrInsufficientData.
func FitEndpoints(s Series) (Trend, error) {
	if len(s) < 2 {
		return Trend{}, ErrInsufficientData
	}
	sorted := s.Sorted()
	first, last := sorted[0], sorted[len(sorted)-1]
	days := FractionalDaysBetween(first.At, last.At)
	if days <= 0 {
		return Trend{}, ErrInsufficientData
	}
	return Trend{
		First: first,
		Last:  last,
		Days:  days,
		Slope: (last.Value - first.Value) / days,
	}, nil
}

// =============================================================================
// PROJECTION
// =============================================================================

// ProjectValue extends a line with the given slope from anchor to date.
func ProjectValue(anchor Sample, slope float64, date TimePoint) float64 {
	return anchor.Value + slope*FractionalDaysBetween(anchor.At, date)
}

// ProjectDate inverts ProjectValue. The result is rounded to the nearest
// calendar day. A zero slope never reaches another value: ErrFlatTrend.
func ProjectDate(anchor Sample, slope float64, value float64) (TimePoint, error) {
	if value == anchor.Value {
		return anchor.At.Date(), nil
	}
	if slope == 0 || math.IsNaN(slope) {
		return TimePoint{}, ErrFlatTrend
	}
	days := (value - anchor.Value) / slope
	return anchor.At.Date().AddDays(int(math.Round(days))), nil
}
