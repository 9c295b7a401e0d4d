package fitness_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tjwilli6/Fitness/fitness"
	"github.com/tjwilli6/Fitness/generic"
	"github.com/tjwilli6/Fitness/generic/store"
)

// =============================================================================
// FAKE PROVIDERS
// =============================================================================

var errRejected = errors.New("bad token")

type fakeCalories struct {
	days     map[string]fitness.DayTotals
	failDays map[string]bool
	failAuth bool
	calls    []string
}

func (f *fakeCalories) Name() string { return "fake-diary" }

func (f *fakeCalories) Authenticate(context.Context) error {
	if f.failAuth {
		return errRejected
	}
	return nil
}

func (f *fakeCalories) GetDay(_ context.Context, date generic.TimePoint) (fitness.DayTotals, error) {
	key := date.String()
	f.calls = append(f.calls, key)
	if f.failDays[key] {
		return fitness.DayTotals{}, errors.New("503 service unavailable")
	}
	t, ok := f.days[key]
	if !ok {
		return fitness.DayTotals{}, fitness.ErrNoData
	}
	return t, nil
}

type fakeWeight struct {
	records     []fitness.WeightRecord
	failAuth    bool
	lowerBounds []string
}

func (f *fakeWeight) Name() string { return "fake-scale" }

func (f *fakeWeight) Authenticate(context.Context) error {
	if f.failAuth {
		return errRejected
	}
	return nil
}

func (f *fakeWeight) GetMeasurements(_ context.Context, lowerBound generic.TimePoint) ([]fitness.WeightRecord, error) {
	f.lowerBounds = append(f.lowerBounds, lowerBound.String())
	var out []fitness.WeightRecord
	for _, r := range f.records {
		if !r.Date.Before(lowerBound) {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeActivities struct {
	earliest   time.Time
	activities []fitness.Activity
	afters     []time.Time
}

func (f *fakeActivities) Name() string                       { return "fake-activity" }
func (f *fakeActivities) Authenticate(context.Context) error { return nil }

func (f *fakeActivities) Earliest(context.Context) (time.Time, error) {
	return f.earliest, nil
}

func (f *fakeActivities) ActivitiesAfter(_ context.Context, t time.Time) ([]fitness.Activity, error) {
	f.afters = append(f.afters, t)
	var out []fitness.Activity
	for _, a := range f.activities {
		if a.Start.After(t) {
			out = append(out, a)
		}
	}
	return out, nil
}

// =============================================================================
// TEST HELPERS
// =============================================================================

func day(y int, m time.Month, d int) generic.TimePoint {
	return generic.NewTimePoint(y, m, d)
}

func lbs(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type harness struct {
	mem      *store.Memory
	tracker  *fitness.Tracker
	calories *fakeCalories
	weight   *fakeWeight
	acts     *fakeActivities
}

// newHarness builds a tracker on memory logs with today fixed.
func newHarness(today generic.TimePoint) *harness {
	h := &harness{
		mem:      store.NewMemory(),
		calories: &fakeCalories{days: map[string]fitness.DayTotals{}, failDays: map[string]bool{}},
		weight:   &fakeWeight{},
		acts:     &fakeActivities{},
	}
	logs := fitness.OpenLogs(h.mem.Log, fitness.DefaultLogNames())
	providers := fitness.Providers{Calories: h.calories, Weight: h.weight, Activities: h.acts}
	h.tracker = fitness.NewTracker(logs, providers, fitness.Config{
		HeightInches: 70,
		Clock:        func() generic.TimePoint { return today },
	})
	return h
}

// seed writes raw lines into a log, bypassing the codec.
func (h *harness) seed(t *testing.T, name string, lines ...string) {
	t.Helper()
	raw := h.mem.Log(name)
	for _, l := range lines {
		require.NoError(t, raw.Append(context.Background(), l))
	}
}

func (h *harness) lines(name string) []string {
	return h.mem.Lines(name)
}
