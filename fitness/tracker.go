package fitness

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/tjwilli6/Fitness/generic"
)

// =============================================================================
// LOGS
// =============================================================================

// Default log names, matching the files the data directory has always used.
const (
	DefaultCalorieLog = "mfpcl.dat"
	DefaultWeightLog  = "mfpwt.dat"
	DefaultRunLog     = "st_rn.dat"
)

// Logs holds the three typed logs.
type Logs struct {
	Calories *generic.Log[CalorieRecord]
	Weight   *generic.Log[WeightRecord]
	Runs     *generic.Log[RunRecord]
}

// LogNames overrides the default log names.
type LogNames struct {
	Calories string
	Weight   string
	Runs     string
}

// DefaultLogNames returns the standard file names.
func DefaultLogNames() LogNames {
	return LogNames{Calories: DefaultCalorieLog, Weight: DefaultWeightLog, Runs: DefaultRunLog}
}

// Opener returns the LineStore for a log name. Every backend provides one
// (flatfile.Dir.Log, sqlite.Store.Log, store.Memory.Log).
type Opener func(name string) generic.LineStore

// OpenLogs builds the typed logs on a backend.
func OpenLogs(open Opener, names LogNames) Logs {
	return Logs{
		Calories: generic.NewLog[CalorieRecord](open(names.Calories), CalorieCodec{}, generic.OrderStrict),
		Weight:   generic.NewLog[WeightRecord](open(names.Weight), WeightCodec{}, generic.OrderNonDecreasing),
		// runs stay in provider order
		Runs: generic.NewLog[RunRecord](open(names.Runs), RunCodec{}, generic.OrderNone),
	}
}

// =============================================================================
// TRACKER - Session entry point
// =============================================================================

// ErrNoBootstrapDate is returned when the logs are empty and no start date
// was configured.
var ErrNoBootstrapDate = errors.New("logs are empty and no bootstrap start date is configured")

// Config is passed to the Tracker at construction.
type Config struct {
	// BootstrapStart is the first date fetched into empty logs.
	BootstrapStart generic.TimePoint
	// HeightInches feeds BMI.
	HeightInches float64
	// Clock returns today's date. Defaults to generic.Today.
	Clock func() generic.TimePoint
}

// Tracker ties logs, providers and configuration together.
type Tracker struct {
	Logs      Logs
	Providers Providers
	Config    Config

	Sync      *SyncEngine
	Bootstrap *Bootstrapper
	Query     *Query
}

func NewTracker(logs Logs, providers Providers, cfg Config) *Tracker {
	if cfg.Clock == nil {
		cfg.Clock = generic.Today
	}
	return &Tracker{
		Logs:      logs,
		Providers: providers,
		Config:    cfg,
		Sync:      &SyncEngine{Logs: logs, Providers: providers, Clock: cfg.Clock},
		Bootstrap: &Bootstrapper{Logs: logs, Providers: providers, Clock: cfg.Clock},
		Query:     &Query{Logs: logs, Clock: cfg.Clock},
	}
}

// Update brings the logs up to date: bootstrap when the calorie log is
// empty, incremental sync otherwise.
//
// Authentication failures leave the logs untouched and are returned; the
// caller reports them and carries on with whatever the logs already hold.
func (t *Tracker) Update(ctx context.Context, opts SyncOptions) (*SyncReport, error) {
	cursor, err := ReadCursor(ctx, t.Logs.Calories)
	if err != nil {
		return nil, err
	}
	if !cursor.Present {
		if t.Config.BootstrapStart.IsZero() {
			return nil, ErrNoBootstrapDate
		}
		log.Printf("[Bootstrap] Calorie log empty, bootstrapping from %s", t.Config.BootstrapStart)
		return t.Bootstrap.Run(ctx, t.Config.BootstrapStart)
	}
	return t.Sync.Run(ctx, opts)
}

// Height returns the configured height or an error if unset.
func (t *Tracker) Height() (float64, error) {
	if t.Config.HeightInches <= 0 {
		return 0, fmt.Errorf("height is not configured")
	}
	return t.Config.HeightInches, nil
}
