/*
sync.go - Incremental synchronization of the local logs

PURPOSE:
  Brings logs that already hold data up to today. The calorie log drives
  the decision: its last record (date + provisional tag) is the cursor.

STATES (derived from the cursor each run, never persisted):
  NoLog             no calorie records; Bootstrapper runs instead
  UpToDate          last date is today (and no forced re-sync): nothing to do
  StaleFinal        last date < today, last record final:
                      fetch [last+1, today]
  StaleProvisional  last record provisional and either last date < today
                    or a re-sync is forced:
                      remove the last record, fetch [last, today]

  Today's record is always written provisional. It becomes final only when
  a later run re-fetches it on a day that is no longer today.

DENSITY:
  Every calendar day gets a calorie record. A day the provider has no totals
  for, or whose request fails, is written as (-1, -1).

WEIGHT AND RUNS:
  Fetched from the calorie cursor's last date + 1 day and appended as
  returned. These logs tolerate gaps.

FAILURE POLICY:
  - Authentication failure: abort before any change.
  - Failed calorie day: sentinel record, error noted in the report.
  - Failed weight/run fetch: that log is skipped, error noted.

ORDERING:
  Days are fetched and appended strictly in ascending order, one at a time.
  Each append assumes the previous day is already durable.

EXAMPLE:
  log ends 2023-06-10,1800,2000,1 and today is 2023-06-12
  -> remove 2023-06-10
  -> append 2023-06-10,...,0  2023-06-11,...,0  2023-06-12,...,1

SEE ALSO:
  - bootstrap.go: Fills empty logs
  - generic/ledger.go: RemoveLast semantics
*/
package fitness

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/tjwilli6/Fitness/generic"
)

// =============================================================================
// CURSOR AND STATE
// =============================================================================

type SyncState string

const (
	StateNoLog            SyncState = "no_log"
	StateUpToDate         SyncState = "up_to_date"
	StateStaleFinal       SyncState = "stale_final"
	StateStaleProvisional SyncState = "stale_provisional"
	// StateBootstrap marks reports produced by the Bootstrapper.
	StateBootstrap SyncState = "bootstrap"
)

// Cursor is derived from the last calorie record.
type Cursor struct {
	Present     bool
	LastDate    generic.TimePoint
	Provisional bool
}

// ReadCursor inspects the tail of the calorie log.
func ReadCursor(ctx context.Context, calories *generic.Log[CalorieRecord]) (Cursor, error) {
	last, ok, err := calories.Last(ctx)
	if err != nil {
		return Cursor{}, err
	}
	if !ok {
		return Cursor{}, nil
	}
	return Cursor{Present: true, LastDate: last.Date, Provisional: last.IsProvisional()}, nil
}

// State classifies the cursor against today.
func (c Cursor) State(today generic.TimePoint, force bool) SyncState {
	if !c.Present {
		return StateNoLog
	}
	last := c.LastDate.Date()
	today = today.Date()
	switch {
	case c.Provisional && (last.Before(today) || (last.Equal(today) && force)):
		return StateStaleProvisional
	case !last.Before(today):
		return StateUpToDate
	default:
		return StateStaleFinal
	}
}

// =============================================================================
// REPORT
// =============================================================================

// SyncOptions tune a single run.
type SyncOptions struct {
	// Force re-fetches today's provisional record even though its date is still today.
	Force bool
}

// SyncReport summarizes one bootstrap or sync run.
type SyncReport struct {
	RunID       string
	State       SyncState
	Today       generic.TimePoint
	Removed     *CalorieRecord
	Appended    map[Kind]int
	Errors      []string
	StartedAt   time.Time
	CompletedAt time.Time
	// Aborted is set when the run stopped before any change (authentication).
	Aborted bool
}

func newReport(state SyncState, today generic.TimePoint) *SyncReport {
	return &SyncReport{
		RunID:     uuid.New().String(),
		State:     state,
		Today:     today,
		Appended:  make(map[Kind]int),
		StartedAt: time.Now(),
	}
}

func (r *SyncReport) noteError(err error) {
	r.Errors = append(r.Errors, err.Error())
}

func (r *SyncReport) finish() *SyncReport {
	r.CompletedAt = time.Now()
	return r
}

// Status is completed, partial (some fetches failed) or failed (aborted).
func (r *SyncReport) Status() string {
	switch {
	case r.Aborted:
		return "failed"
	case len(r.Errors) > 0:
		return "partial"
	default:
		return "completed"
	}
}

// =============================================================================
// SYNC ENGINE
// =============================================================================

// ErrNotBootstrapped is returned by SyncEngine.Run on an empty calorie log.
var ErrNotBootstrapped = errors.New("calorie log is empty: bootstrap required")

// SyncEngine runs the incremental sync state machine.
type SyncEngine struct {
	Logs      Logs
	Providers Providers
	Clock     func() generic.TimePoint
}

// Run performs one sync pass.
func (e *SyncEngine) Run(ctx context.Context, opts SyncOptions) (*SyncReport, error) {
	today := e.Clock().Date()

	cursor, err := ReadCursor(ctx, e.Logs.Calories)
	if err != nil {
		return nil, err
	}
	state := cursor.State(today, opts.Force)
	report := newReport(state, today)

	switch state {
	case StateNoLog:
		return report.finish(), ErrNotBootstrapped
	case StateUpToDate:
		log.Printf("[Sync] Up to date (last record %s)", cursor.LastDate)
		return report.finish(), nil
	}

	if err := e.Providers.Authenticate(ctx); err != nil {
		report.Aborted = true
		report.noteError(err)
		log.Printf("[Sync] Aborted: %v", err)
		return report.finish(), err
	}

	from := cursor.LastDate.Date().AddDays(1)
	// without a calorie provider the provisional tail could not be re-fetched
	if state == StateStaleProvisional && e.Providers.Calories != nil {
		removed, err := e.Logs.Calories.RemoveLast(ctx)
		switch {
		case errors.Is(err, generic.ErrEmptyLog):
			// nothing to correct; fetch as if the tail were final
		case err != nil:
			return report.finish(), fmt.Errorf("remove provisional record: %w", err)
		default:
			report.Removed = &removed
			from = removed.Date.Date()
			log.Printf("[Sync] Removed provisional record for %s", removed.Date)
		}
	}

	if e.Providers.Calories != nil {
		n, err := appendCalorieDays(ctx, e.Logs.Calories, e.Providers.Calories, from, today, report)
		report.Appended[KindCalories] = n
		if err != nil {
			return report.finish(), err
		}
	}

	// weight and runs resume the day after the cursor
	since := cursor.LastDate.Date().AddDays(1)
	if e.Providers.Weight != nil {
		n, err := appendWeights(ctx, e.Logs.Weight, e.Providers.Weight, since, today)
		report.Appended[KindWeight] = n
		if err != nil {
			report.noteError(err)
			log.Printf("[Sync] Weight skipped: %v", err)
		}
	}
	if e.Providers.Activities != nil {
		n, err := appendRuns(ctx, e.Logs.Runs, e.Providers.Activities, since.Time)
		report.Appended[KindRuns] = n
		if err != nil {
			report.noteError(err)
			log.Printf("[Sync] Runs skipped: %v", err)
		}
	}

	log.Printf("[Sync] %s: %d calorie, %d weight, %d run records appended",
		state, report.Appended[KindCalories], report.Appended[KindWeight], report.Appended[KindRuns])
	return report.finish(), nil
}

// =============================================================================
// SHARED FETCH LOOPS (sync and bootstrap)
// =============================================================================

// appendCalorieDays fetches and appends one record per day in [from, today].
// Provider failures become sentinel records; only log write failures stop the loop.
func appendCalorieDays(
	ctx context.Context,
	calories *generic.Log[CalorieRecord],
	provider CalorieProvider,
	from, today generic.TimePoint,
	report *SyncReport,
) (int, error) {
	appended := 0
	for day := from.Date(); day.BeforeOrEqual(today); day = day.AddDays(1) {
		rec := CalorieRecord{Date: day, Consumed: NoData, Goal: NoData, State: Final}
		if day.Equal(today) {
			rec.State = Provisional
		}

		totals, err := provider.GetDay(ctx, day)
		if err == nil {
			err = totals.Validate()
		}
		switch {
		case err == nil:
			rec.Consumed, rec.Goal = totals.Consumed, totals.Goal
		case errors.Is(err, ErrNoData):
		default:
			report.noteError(&generic.ProviderError{Provider: provider.Name(), Op: "day " + day.String(), Err: err})
		}

		if err := calories.Append(ctx, rec); err != nil {
			return appended, err
		}
		appended++
	}
	return appended, nil
}

// appendWeights fetches measurements on or after since and appends them by date.
func appendWeights(
	ctx context.Context,
	weights *generic.Log[WeightRecord],
	provider WeightProvider,
	since, today generic.TimePoint,
) (int, error) {
	measured, err := provider.GetMeasurements(ctx, since)
	if err != nil {
		return 0, &generic.ProviderError{Provider: provider.Name(), Op: "measurements", Err: err}
	}

	keep := make([]WeightRecord, 0, len(measured))
	for _, m := range measured {
		d := m.Date.Date()
		if d.Before(since) || d.After(today) {
			continue
		}
		m.Date = d
		keep = append(keep, m)
	}
	sort.SliceStable(keep, func(i, j int) bool { return keep[i].Date.Before(keep[j].Date) })

	for i, m := range keep {
		if err := weights.Append(ctx, m); err != nil {
			return i, err
		}
	}
	return len(keep), nil
}

// appendRuns appends every Run activity after t, in provider order.
func appendRuns(
	ctx context.Context,
	runs *generic.Log[RunRecord],
	provider ActivityProvider,
	after time.Time,
) (int, error) {
	activities, err := provider.ActivitiesAfter(ctx, after)
	if err != nil {
		return 0, &generic.ProviderError{Provider: provider.Name(), Op: "activities", Err: err}
	}

	appended := 0
	for _, a := range activities {
		if a.Type != ActivityRun || a.Start.Before(after) {
			continue
		}
		if err := runs.Append(ctx, runFromActivity(a)); err != nil {
			return appended, err
		}
		appended++
	}
	return appended, nil
}
