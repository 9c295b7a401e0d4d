/*
Package fitness keeps one person's fitness telemetry in local append-only
logs and derives reports from them.

PURPOSE:
  Three metrics are tracked, each in its own log:
  - calories: one record per calendar day (consumed, goal, provisional flag)
  - weight:   one record per measurement
  - runs:     one record per run activity

  Remote services are the source of truth. The logs are brought up to date
  at the start of every session (bootstrap.go, sync.go) and everything else
  reads them (query.go, metrics.go).

KEY CONCEPTS IN THIS FILE (types.go):
  - CalorieRecord: daily totals, with a Final/Provisional state tag
  - WeightRecord:  a dated weigh-in in pounds
  - RunRecord:     a timestamped run with distance and elapsed time
  - NoData (-1):   "the provider had nothing for this day", distinct from 0

SEE ALSO:
  - codec.go: On-disk row formats
  - sync.go:  The provisional-record correction
*/
package fitness

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tjwilli6/Fitness/generic"
)

// NoData is stored for consumed/goal when the provider returned nothing.
const NoData = -1

// Kind names one of the three logs.
type Kind string

const (
	KindCalories Kind = "calories"
	KindWeight   Kind = "weight"
	KindRuns     Kind = "runs"
)

// =============================================================================
// CALORIES
// =============================================================================

// RecordState tags whether a daily record can still change.
type RecordState int

const (
	// Final records were written after their day was over.
	Final RecordState = iota
	// Provisional records were written on their own day and may be incomplete.
	Provisional
)

func (s RecordState) String() string {
	if s == Provisional {
		return "provisional"
	}
	return "final"
}

// CalorieRecord is one day of intake against the day's goal.
type CalorieRecord struct {
	Date     generic.TimePoint
	Consumed int
	Goal     int
	State    RecordState
}

// IsProvisional reports whether the record was written while its date was today.
func (r CalorieRecord) IsProvisional() bool { return r.State == Provisional }

// HasData is false for sentinel days.
func (r CalorieRecord) HasData() bool { return r.Consumed != NoData && r.Goal != NoData }

// Net is goal minus consumed: positive means under goal.
func (r CalorieRecord) Net() int { return r.Goal - r.Consumed }

// DayTotals is what a calorie provider reports for one date.
type DayTotals struct {
	Consumed int
	Goal     int
}

// ErrInvalidTotals is returned by DayTotals.Validate for values below NoData.
var ErrInvalidTotals = errors.New("calorie totals below the no-data sentinel")

// Validate rejects totals the calorie log cannot store.
func (t DayTotals) Validate() error {
	if t.Consumed < NoData || t.Goal < NoData {
		return fmt.Errorf("%w: consumed=%d goal=%d", ErrInvalidTotals, t.Consumed, t.Goal)
	}
	return nil
}

// =============================================================================
// WEIGHT
// =============================================================================

// WeightRecord is one weigh-in.
type WeightRecord struct {
	Date   generic.TimePoint
	Pounds decimal.Decimal
}

// =============================================================================
// RUNS
// =============================================================================

// ActivityRun is the activity type kept in the run log.
const ActivityRun = "Run"

// Activity is one entry of an activity provider's history.
type Activity struct {
	Type           string
	Start          time.Time
	Distance       float64
	ElapsedSeconds float64
}

// RunRecord is one run.
type RunRecord struct {
	Start          generic.TimePoint
	Distance       float64
	ElapsedSeconds float64
}

// Pace is elapsed seconds per unit of distance, 0 for zero-distance runs.
func (r RunRecord) Pace() float64 {
	if r.Distance <= 0 {
		return 0
	}
	return r.ElapsedSeconds / r.Distance
}

func runFromActivity(a Activity) RunRecord {
	return RunRecord{
		Start:          generic.NewTimestamp(a.Start),
		Distance:       a.Distance,
		ElapsedSeconds: a.ElapsedSeconds,
	}
}
