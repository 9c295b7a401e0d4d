/*
binning.go - Fixed-width aggregation of irregular samples

PURPOSE:
  Reporting works on regular windows (weekly calories, monthly mileage) but
  the logs hold irregular samples. Binning partitions a series into windows
  and reduces each window to one value.

CENTERED BINS (BinByWidth):
  Centers sit at 0, w, 2w, ... days from the first sample, up to the first
  center at or past the last sample. Day-granularity series get midnight
  centers; timestamped series keep the first sample's time of day. Bin k covers
  [center_k - w/2, center_k + w/2], inclusive at BOTH ends, so a sample
  exactly on a boundary counts in both neighbours. With whole-day samples
  this only happens for even widths.

  Every bin in range is emitted, including empty ones:
    count = ceil(span / w) + 1

REDUCERS:
  ReduceSum:  total of the bin's values, 0 for an empty bin
  ReduceMean: average of the bin's values, NaN for an empty bin. NaN marks
              a gap; callers must not read it as zero.

COUNT BINS (BinByCount):
  n equal-width bins between the first and last sample, each sample counted
  exactly once (last bin closed on the right).

EXAMPLE:
  weight := Series{{Jan 1, 180}, {Jan 15, 178}}
  bins, _ := BinByWidth(weight, 7, ReduceSum)
  // centers Jan 1, Jan 8, Jan 15 -> values 180, 0, 178
*/
package generic

import (
	"fmt"
	"math"
	"strings"
)

// =============================================================================
// REDUCER
// =============================================================================

type Reducer int

const (
	ReduceSum Reducer = iota
	ReduceMean
)

func (r Reducer) String() string {
	if r == ReduceMean {
		return "mean"
	}
	return "sum"
}

// ParseReducer accepts "sum" or "mean"; empty means sum.
func ParseReducer(s string) (Reducer, error) {
	switch strings.ToLower(s) {
	case "", "sum":
		return ReduceSum, nil
	case "mean", "avg", "average":
		return ReduceMean, nil
	}
	return ReduceSum, fmt.Errorf("unknown reducer %q", s)
}

func (r Reducer) reduce(total float64, count int) float64 {
	if r == ReduceMean {
		if count == 0 {
			return math.NaN()
		}
		return total / float64(count)
	}
	return total
}

// =============================================================================
// BIN
// =============================================================================

// Bin is one aggregated window.
type Bin struct {
	Center TimePoint
	Start  TimePoint
	End    TimePoint
	Value  float64
	Count  int
}

// IsGap reports whether the bin had no samples.
func (b Bin) IsGap() bool { return b.Count == 0 }

// BinByWidth groups s into centered windows widthDays wide and reduces each one.
func BinByWidth(s Series, widthDays int, reducer Reducer) ([]Bin, error) {
	if widthDays < 1 {
		return nil, ErrInvalidBinWidth
	}
	if len(s) == 0 {
		return nil, nil
	}

	sorted := s.Sorted()
	origin := sorted[0].At
	w := float64(widthDays)
	half := w / 2
	n := int(math.Ceil(sorted.Span()/w)) + 1

	totals := make([]float64, n)
	counts := make([]int, n)
	for _, sm := range sorted {
		off := FractionalDaysBetween(origin, sm.At)
		k := int(math.Round(off / w))
		// neighbours may also claim a sample sitting on their edge
		for j := k - 1; j <= k+1; j++ {
			if j < 0 || j >= n {
				continue
			}
			if math.Abs(off-float64(j)*w) <= half {
				totals[j] += sm.Value
				counts[j]++
			}
		}
	}

	bins := make([]Bin, n)
	for k := range bins {
		center := origin.AddDays(k * widthDays)
		bins[k] = Bin{
			Center: center,
			Start:  center.AddFractionalDays(-half),
			End:    center.AddFractionalDays(half),
			Value:  reducer.reduce(totals[k], counts[k]),
			Count:  counts[k],
		}
	}
	return bins, nil
}

// BinByCount splits the range of s into n equal bins.
func BinByCount(s Series, n int, reducer Reducer) ([]Bin, error) {
	if n < 1 {
		return nil, ErrInvalidBinWidth
	}
	if len(s) == 0 {
		return nil, nil
	}

	sorted := s.Sorted()
	first := sorted[0].At
	lo, hi := 0.0, FractionalDaysBetween(first, sorted[len(sorted)-1].At)
	if hi == lo {
		// a single instant still gets a window a day wide
		lo, hi = -0.5, 0.5
	}
	width := (hi - lo) / float64(n)

	totals := make([]float64, n)
	counts := make([]int, n)
	for _, sm := range sorted {
		off := FractionalDaysBetween(first, sm.At)
		i := int(math.Floor((off - lo) / width))
		if i >= n {
			i = n - 1
		}
		if i < 0 {
			i = 0
		}
		totals[i] += sm.Value
		counts[i]++
	}

	bins := make([]Bin, n)
	for i := range bins {
		start := lo + float64(i)*width
		bins[i] = Bin{
			Center: first.AddFractionalDays(start + width/2),
			Start:  first.AddFractionalDays(start),
			End:    first.AddFractionalDays(start + width),
			Value:  reducer.reduce(totals[i], counts[i]),
			Count:  counts[i],
		}
	}
	return bins, nil
}
