package fitness

import (
	"context"
	"fmt"

	"github.com/tjwilli6/Fitness/generic"
)

// =============================================================================
// METRICS - Which column of which log a series is drawn from
// =============================================================================

type Metric string

const (
	MetricConsumed Metric = "consumed"
	MetricGoal     Metric = "goal"
	MetricNet      Metric = "net"
	MetricWeight   Metric = "weight"
	MetricDistance Metric = "distance"
	MetricElapsed  Metric = "elapsed"
)

// ParseMetric validates a metric name.
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(s); m {
	case MetricConsumed, MetricGoal, MetricNet, MetricWeight, MetricDistance, MetricElapsed:
		return m, nil
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

// Kind returns the log a metric lives in.
func (m Metric) Kind() Kind {
	switch m {
	case MetricWeight:
		return KindWeight
	case MetricDistance, MetricElapsed:
		return KindRuns
	default:
		return KindCalories
	}
}

// =============================================================================
// QUERY - Reads the logs into typed records and series
// =============================================================================

// Query reads the logs. Every call re-reads from storage.
type Query struct {
	Logs  Logs
	Clock func() generic.TimePoint
}

// Calories returns the calorie records dated within p, sentinels included.
func (q *Query) Calories(ctx context.Context, p generic.Period) ([]CalorieRecord, error) {
	all, err := q.Logs.Calories.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CalorieRecord, 0, len(all))
	for _, r := range all {
		if p.Contains(r.Date) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Weights returns the weight records dated within p.
func (q *Query) Weights(ctx context.Context, p generic.Period) ([]WeightRecord, error) {
	all, err := q.Logs.Weight.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]WeightRecord, 0, len(all))
	for _, r := range all {
		if p.Contains(r.Date) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Runs returns the runs whose start date is within p.
func (q *Query) Runs(ctx context.Context, p generic.Period) ([]RunRecord, error) {
	all, err := q.Logs.Runs.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]RunRecord, 0, len(all))
	for _, r := range all {
		if p.Contains(r.Start) {
			out = append(out, r)
		}
	}
	return out, nil
}

// =============================================================================
// AS-OF LOOKUPS
// =============================================================================

// CalorieAsOf returns the latest calorie record dated on or before date.
// Sentinel days are returned as-is: -1 means the provider had nothing.
func (q *Query) CalorieAsOf(ctx context.Context, date generic.TimePoint) (CalorieRecord, error) {
	all, err := q.Logs.Calories.ReadAll(ctx)
	if err != nil {
		return CalorieRecord{}, err
	}
	var best CalorieRecord
	found := false
	for _, r := range all {
		if r.Date.Date().After(date.Date()) {
			continue
		}
		if !found || r.Date.AfterOrEqual(best.Date) {
			best, found = r, true
		}
	}
	if !found {
		return CalorieRecord{}, generic.ErrNotFound
	}
	return best, nil
}

// WeightAsOf returns the latest positive weigh-in on or before date.
func (q *Query) WeightAsOf(ctx context.Context, date generic.TimePoint) (WeightRecord, error) {
	all, err := q.Logs.Weight.ReadAll(ctx)
	if err != nil {
		return WeightRecord{}, err
	}
	var best WeightRecord
	found := false
	for _, r := range all {
		if !r.Pounds.IsPositive() || r.Date.Date().After(date.Date()) {
			continue
		}
		if !found || r.Date.AfterOrEqual(best.Date) {
			best, found = r, true
		}
	}
	if !found {
		return WeightRecord{}, generic.ErrNotFound
	}
	return best, nil
}

// RunAsOf returns the latest run with positive distance on or before date.
func (q *Query) RunAsOf(ctx context.Context, date generic.TimePoint) (RunRecord, error) {
	all, err := q.Logs.Runs.ReadAll(ctx)
	if err != nil {
		return RunRecord{}, err
	}
	var best RunRecord
	found := false
	for _, r := range all {
		if r.Distance <= 0 || r.Start.Date().After(date.Date()) {
			continue
		}
		if !found || r.Start.AfterOrEqual(best.Start) {
			best, found = r, true
		}
	}
	if !found {
		return RunRecord{}, generic.ErrNotFound
	}
	return best, nil
}

// =============================================================================
// SERIES
// =============================================================================

// Series loads one metric within p as samples. Calorie sentinel days are
// dropped so they never count as -1 in a sum.
func (q *Query) Series(ctx context.Context, m Metric, p generic.Period) (generic.Series, error) {
	switch m.Kind() {
	case KindWeight:
		recs, err := q.Weights(ctx, p)
		if err != nil {
			return nil, err
		}
		return WeightSeries(recs), nil
	case KindRuns:
		recs, err := q.Runs(ctx, p)
		if err != nil {
			return nil, err
		}
		return RunSeries(recs, m), nil
	default:
		recs, err := q.Calories(ctx, p)
		if err != nil {
			return nil, err
		}
		return CalorieSeries(recs, m), nil
	}
}

// Binned loads a metric and bins it into windows widthDays wide.
func (q *Query) Binned(ctx context.Context, m Metric, p generic.Period, widthDays int, reducer generic.Reducer) ([]generic.Bin, error) {
	if widthDays < 1 {
		return nil, generic.ErrInvalidBinWidth
	}
	s, err := q.Series(ctx, m, p)
	if err != nil {
		return nil, err
	}
	return generic.BinByWidth(s, widthDays, reducer)
}

// BinnedByCount loads a metric and splits its range into n equal bins.
func (q *Query) BinnedByCount(ctx context.Context, m Metric, p generic.Period, n int, reducer generic.Reducer) ([]generic.Bin, error) {
	if n < 1 {
		return nil, generic.ErrInvalidBinWidth
	}
	s, err := q.Series(ctx, m, p)
	if err != nil {
		return nil, err
	}
	return generic.BinByCount(s, n, reducer)
}

// CalorieSeries converts records to samples of consumed, goal or net.
func CalorieSeries(recs []CalorieRecord, m Metric) generic.Series {
	out := make(generic.Series, 0, len(recs))
	for _, r := range recs {
		if !r.HasData() {
			continue
		}
		var v int
		switch m {
		case MetricGoal:
			v = r.Goal
		case MetricNet:
			v = r.Net()
		default:
			v = r.Consumed
		}
		out = append(out, generic.Sample{At: r.Date, Value: float64(v)})
	}
	return out
}

// WeightSeries converts weigh-ins to samples in pounds.
func WeightSeries(recs []WeightRecord) generic.Series {
	out := make(generic.Series, len(recs))
	for i, r := range recs {
		out[i] = generic.Sample{At: r.Date, Value: r.Pounds.InexactFloat64()}
	}
	return out
}

// RunSeries converts runs to samples of distance or elapsed seconds.
func RunSeries(recs []RunRecord, m Metric) generic.Series {
	out := make(generic.Series, len(recs))
	for i, r := range recs {
		v := r.Distance
		if m == MetricElapsed {
			v = r.ElapsedSeconds
		}
		out[i] = generic.Sample{At: r.Start, Value: v}
	}
	return out
}
