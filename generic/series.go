package generic

import "sort"

// =============================================================================
// SERIES - Date-stamped samples of one metric
// =============================================================================

// Sample is one observation of a metric.
type Sample struct {
	At    TimePoint
	Value float64
}

// Series is an ordered run of samples, usually in log order.
type Series []Sample

// Filter keeps the samples whose date lies within p.
func (s Series) Filter(p Period) Series {
	out := make(Series, 0, len(s))
	for _, sm := range s {
		if p.Contains(sm.At) {
			out = append(out, sm)
		}
	}
	return out
}

// Positive drops sentinel and zero values.
func (s Series) Positive() Series {
	out := make(Series, 0, len(s))
	for _, sm := range s {
		if sm.Value > 0 {
			out = append(out, sm)
		}
	}
	return out
}

// AsOf returns the latest sample dated on or before the given date.
// Among samples on the same date, the one appearing last wins.
func (s Series) AsOf(date TimePoint) (Sample, error) {
	day := date.Date()
	var best Sample
	found := false
	for _, sm := range s {
		if sm.At.Date().After(day) {
			continue
		}
		if !found || sm.At.AfterOrEqual(best.At) {
			best, found = sm, true
		}
	}
	if !found {
		return Sample{}, ErrNotFound
	}
	return best, nil
}

// Sorted returns a copy ordered by time, keeping the relative order of ties.
func (s Series) Sorted() Series {
	out := append(Series(nil), s...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out
}

// Span is the number of (possibly fractional) days from the first to the
// last sample.
func (s Series) Span() float64 {
	if len(s) == 0 {
		return 0
	}
	return FractionalDaysBetween(s[0].At, s[len(s)-1].At)
}

// Values returns just the sample values.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, sm := range s {
		out[i] = sm.Value
	}
	return out
}
