package generic

import (
	"math"
	"time"
)

// =============================================================================
// TIME POINT - Calendar date (or timestamp) a sample is keyed on
// =============================================================================

type TimePoint struct {
	Time        time.Time
	Granularity Granularity
}

type Granularity int

const (
	GranularityDay Granularity = iota
	GranularitySecond
)

// DateLayout is the on-disk and query-string date format.
const DateLayout = "2006-01-02"

// TimestampLayout is used for samples that carry a time of day (runs).
const TimestampLayout = "2006-01-02T15:04:05"

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), Granularity: GranularityDay}
}

func NewTimestamp(t time.Time) TimePoint {
	t = t.UTC()
	return TimePoint{
		Time:        time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC),
		Granularity: GranularitySecond,
	}
}

// DateOf drops the time of day from t, keeping its calendar date.
func DateOf(t time.Time) TimePoint {
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

func Today() TimePoint {
	return DateOf(time.Now())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (TimePoint, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return TimePoint{}, err
	}
	return DateOf(t), nil
}

// ParseTimePoint accepts either YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS.
func ParseTimePoint(s string) (TimePoint, error) {
	if len(s) == len(DateLayout) {
		return ParseDate(s)
	}
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return TimePoint{}, err
	}
	return NewTimestamp(t), nil
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.Time.Before(other.Time) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.Time.Equal(other.Time) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.Time.After(other.Time) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return !tp.After(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return !tp.Before(other) }

// SameDay compares calendar dates only.
func (tp TimePoint) SameDay(other TimePoint) bool { return tp.Date().Equal(other.Date()) }

// Date returns the calendar date of tp with day granularity.
func (tp TimePoint) Date() TimePoint { return DateOf(tp.Time) }

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint {
	return TimePoint{Time: tp.Time.AddDate(0, 0, n), Granularity: tp.Granularity}
}

// AddFractionalDays shifts tp by a possibly fractional number of days. The
// result always has second granularity unless the shift is whole.
func (tp TimePoint) AddFractionalDays(days float64) TimePoint {
	whole := math.Trunc(days)
	if whole == days {
		return tp.AddDays(int(whole))
	}
	d := time.Duration(days * float64(24*time.Hour))
	return NewTimestamp(tp.Time.Add(d))
}

// Properties
func (tp TimePoint) Year() int         { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month { return tp.Time.Month() }
func (tp TimePoint) Day() int          { return tp.Time.Day() }
func (tp TimePoint) IsZero() bool      { return tp.Time.IsZero() }

func (tp TimePoint) String() string {
	switch tp.Granularity {
	case GranularityDay:
		return tp.Time.Format(DateLayout)
	default:
		return tp.Time.Format(TimestampLayout)
	}
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

// DaysBetween counts whole calendar days from one date to another.
func DaysBetween(from, to TimePoint) int {
	return int(math.Round(to.Date().Time.Sub(from.Date().Time).Hours() / 24))
}

// FractionalDaysBetween keeps the time of day, e.g. 1.5 for noon the next day.
func FractionalDaysBetween(from, to TimePoint) float64 {
	return to.Time.Sub(from.Time).Hours() / 24
}

func StartOfYear(year int) TimePoint { return NewTimePoint(year, time.January, 1) }
