package fitness

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tjwilli6/Fitness/generic"
)

// =============================================================================
// BMI
// =============================================================================

// bmiFactor converts lb/in² to kg/m².
var bmiFactor = decimal.NewFromInt(703)

// BMI = 703 * weight / height².
func BMI(weightLbs, heightInches decimal.Decimal) (decimal.Decimal, error) {
	if !heightInches.IsPositive() {
		return decimal.Zero, fmt.Errorf("height must be positive, got %s", heightInches)
	}
	return bmiFactor.Mul(weightLbs).Div(heightInches.Mul(heightInches)), nil
}

// WeightFromBMI = bmi * height² / 703.
func WeightFromBMI(bmi, heightInches decimal.Decimal) decimal.Decimal {
	return bmi.Mul(heightInches).Mul(heightInches).Div(bmiFactor)
}

// =============================================================================
// WEIGHT TREND
// =============================================================================

// WeightSlope is the rate of change in lbs/day between the first and last
// positive weigh-in within p. Fewer than two usable samples yields
// ErrInsufficientData.
func (q *Query) WeightSlope(ctx context.Context, p generic.Period) (float64, error) {
	t, err := q.weightTrend(ctx, p)
	if err != nil {
		return 0, err
	}
	return t.Slope, nil
}

func (q *Query) weightTrend(ctx context.Context, p generic.Period) (generic.Trend, error) {
	recs, err := q.Weights(ctx, p)
	if err != nil {
		return generic.Trend{}, err
	}
	return generic.FitEndpoints(WeightSeries(recs).Positive())
}

// WeightTrend is a slope anchored at the latest weigh-in as of today.
type WeightTrend struct {
	Slope   float64 // lbs/day
	Current WeightRecord
	Trend   generic.Trend
}

// AsOf is the date of the anchoring weigh-in.
func (w WeightTrend) AsOf() generic.TimePoint { return w.Current.Date }

func (w WeightTrend) anchor() generic.Sample {
	return generic.Sample{At: w.Current.Date, Value: w.Current.Pounds.InexactFloat64()}
}

// ProjectedWeight = current + slope * (target - asOf).
func (w WeightTrend) ProjectedWeight(target generic.TimePoint) float64 {
	return generic.ProjectValue(w.anchor(), w.Slope, target)
}

// ProjectedDate = asOf + (target - current) / slope days.
// A flat trend never gets there: ErrFlatTrend.
func (w WeightTrend) ProjectedDate(targetLbs float64) (generic.TimePoint, error) {
	return generic.ProjectDate(w.anchor(), w.Slope, targetLbs)
}

// WeightTrend fits the slope over p and anchors it at the as-of-today weigh-in.
func (q *Query) WeightTrend(ctx context.Context, p generic.Period) (WeightTrend, error) {
	t, err := q.weightTrend(ctx, p)
	if err != nil {
		return WeightTrend{}, err
	}
	current, err := q.WeightAsOf(ctx, q.today())
	if err != nil {
		return WeightTrend{}, err
	}
	return WeightTrend{Slope: t.Slope, Current: current, Trend: t}, nil
}

// CurrentBMI uses the as-of-today weigh-in.
func (q *Query) CurrentBMI(ctx context.Context, heightInches float64) (decimal.Decimal, WeightRecord, error) {
	current, err := q.WeightAsOf(ctx, q.today())
	if err != nil {
		return decimal.Zero, WeightRecord{}, err
	}
	bmi, err := BMI(current.Pounds, decimal.NewFromFloat(heightInches))
	return bmi, current, err
}

func (q *Query) today() generic.TimePoint {
	if q.Clock == nil {
		return generic.Today()
	}
	return q.Clock()
}

// =============================================================================
// CALORIE AND RUN SUMMARIES
// =============================================================================

// CalorieSummary totals the days with data in a window.
type CalorieSummary struct {
	Days       int // days in the window with data
	NoDataDays int
	Consumed   int
	Goal       int
}

// Net is total goal minus total consumed.
func (s CalorieSummary) Net() int { return s.Goal - s.Consumed }

// SummarizeCalories folds records into a CalorieSummary.
func SummarizeCalories(recs []CalorieRecord) CalorieSummary {
	var s CalorieSummary
	for _, r := range recs {
		if !r.HasData() {
			s.NoDataDays++
			continue
		}
		s.Days++
		s.Consumed += r.Consumed
		s.Goal += r.Goal
	}
	return s
}

// RunSummary totals runs in a window.
type RunSummary struct {
	Count          int
	Distance       float64
	ElapsedSeconds float64
}

// Pace is elapsed seconds per unit distance over all runs.
func (s RunSummary) Pace() float64 {
	return RunRecord{Distance: s.Distance, ElapsedSeconds: s.ElapsedSeconds}.Pace()
}

// SummarizeRuns folds runs into a RunSummary.
func SummarizeRuns(recs []RunRecord) RunSummary {
	var s RunSummary
	for _, r := range recs {
		s.Count++
		s.Distance += r.Distance
		s.ElapsedSeconds += r.ElapsedSeconds
	}
	return s
}
