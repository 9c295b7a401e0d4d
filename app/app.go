/*
Package app assembles a Tracker from a Config.

STARTUP SEQUENCE:
  1. Open the storage backend (flat files, SQLite or memory)
  2. Build the typed logs on it
  3. Load credentials and build provider clients (fixture or HTTP)
  4. Construct the Tracker

The SQLite store, when open, also records every sync run.
*/
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/tjwilli6/Fitness/config"
	"github.com/tjwilli6/Fitness/fitness"
	"github.com/tjwilli6/Fitness/generic"
	"github.com/tjwilli6/Fitness/generic/store"
	"github.com/tjwilli6/Fitness/providers/fixture"
	"github.com/tjwilli6/Fitness/providers/remote"
	"github.com/tjwilli6/Fitness/store/flatfile"
	"github.com/tjwilli6/Fitness/store/sqlite"
)

// App is an opened tracker plus the resources behind it.
type App struct {
	Config  config.Config
	Tracker *fitness.Tracker
	// Audit is nil unless a SQLite database is open.
	Audit *sqlite.Store
}

// Open builds everything cfg describes.
func Open(cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{Config: cfg}
	var opener fitness.Opener
	switch cfg.Backend {
	case config.BackendSQLite:
		db, err := sqlite.New(cfg.SQLiteFile())
		if err != nil {
			return nil, err
		}
		a.Audit = db
		opener = db.Log
	case config.BackendMemory:
		opener = store.NewMemory().Log
	default:
		opener = flatfile.New(cfg.DataDir).Log
		if cfg.SQLitePath != "" {
			db, err := sqlite.New(cfg.SQLitePath)
			if err != nil {
				return nil, err
			}
			a.Audit = db
		}
	}

	providers, err := Providers(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	start, _ := cfg.BootstrapDate()
	a.Tracker = fitness.NewTracker(fitness.OpenLogs(opener, cfg.LogNames()), providers, fitness.Config{
		BootstrapStart: start,
		HeightInches:   cfg.HeightInches,
	})
	return a, nil
}

// Providers builds the provider clients cfg selects.
func Providers(cfg config.Config) (fitness.Providers, error) {
	if cfg.Providers.Fixture != "" {
		src, err := fixture.Load(cfg.Providers.Fixture)
		if err != nil {
			return fitness.Providers{}, err
		}
		return src.Providers(), nil
	}

	creds, err := config.FileCredentials{Path: cfg.CredentialsFile}.Load()
	if err != nil {
		return fitness.Providers{}, err
	}
	timeout, _ := cfg.Timeout()

	var p fitness.Providers
	if cfg.Providers.DiaryURL != "" {
		p.Calories = remote.NewDiaryClient(cfg.Providers.DiaryURL, creds.CalorieUser, creds.CalorieToken, timeout)
	}
	if cfg.Providers.ScaleURL != "" {
		p.Weight = remote.NewScaleClient(cfg.Providers.ScaleURL, creds.CalorieUser, creds.CalorieToken, timeout)
	}
	if cfg.Providers.ActivityURL != "" {
		p.Activities = remote.NewActivityClient(cfg.Providers.ActivityURL, creds.ActivityToken, timeout)
	}
	return p, nil
}

// Update runs bootstrap or sync and records the run when an audit store is open.
// Failures are logged and returned but never leave the logs half-bootstrapped.
func (a *App) Update(ctx context.Context, opts fitness.SyncOptions) (*fitness.SyncReport, error) {
	report, err := a.Tracker.Update(ctx, opts)
	if report != nil && a.Audit != nil {
		if aerr := a.Audit.SaveSyncRun(ctx, ToSyncRun(report)); aerr != nil {
			log.Printf("[Sync] Failed to record run %s: %v", report.RunID, aerr)
		}
	}
	return report, err
}

// ToSyncRun converts a report into an audit row.
func ToSyncRun(r *fitness.SyncReport) sqlite.SyncRun {
	run := sqlite.SyncRun{
		ID:               r.RunID,
		State:            string(r.State),
		Status:           r.Status(),
		Today:            r.Today.Time,
		AppendedCalories: r.Appended[fitness.KindCalories],
		AppendedWeight:   r.Appended[fitness.KindWeight],
		AppendedRuns:     r.Appended[fitness.KindRuns],
		Errors:           r.Errors,
		StartedAt:        r.StartedAt,
	}
	if r.Removed != nil {
		run.Removed = 1
	}
	if !r.CompletedAt.IsZero() {
		t := r.CompletedAt
		run.CompletedAt = &t
	}
	return run
}

// Close releases the SQLite handle if one is open.
func (a *App) Close() error {
	if a.Audit != nil {
		return a.Audit.Close()
	}
	return nil
}

// Today is the tracker's clock, exposed for callers that build windows.
func (a *App) Today() generic.TimePoint {
	return a.Tracker.Config.Clock()
}

// Describe is a one-line summary for startup logs.
func (a *App) Describe() string {
	return fmt.Sprintf("backend=%s data_dir=%s started=%s", a.Config.Backend, a.Config.DataDir, time.Now().Format(time.RFC3339))
}
