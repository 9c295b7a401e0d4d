/*
scheduler.go - Periodic sync scheduler

PURPOSE:
  Keeps the logs current while the server runs by invoking the same sync
  path as POST /api/sync on a fixed interval.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Syncs once immediately on start
  - Shares the handler's sync lock, so a manual sync and a tick never overlap
  - Every run is recorded in the audit trail when SQLite is open

CONFIGURATION:
  - CheckInterval: server.sync_interval (default: 1 hour)
  - Enabled: false when the interval is 0

USAGE:
  scheduler := NewSyncScheduler(handler, interval)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: TriggerSync endpoint (manual sync)
  - fitness/sync.go: SyncEngine
*/
package api

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/tjwilli6/Fitness/fitness"
)

// SyncScheduler runs a sync every CheckInterval.
type SyncScheduler struct {
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex

	// guards lastRun and lastReport; separate from mu so Stop can wait on a tick
	stateMu    sync.Mutex
	lastRun    time.Time
	lastReport *fitness.SyncReport
}

// NewSyncScheduler creates a new scheduler. A zero interval disables it.
func NewSyncScheduler(handler *Handler, interval time.Duration) *SyncScheduler {
	return &SyncScheduler{
		Handler:       handler,
		CheckInterval: interval,
		Enabled:       interval > 0,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (s *SyncScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	s.ticker = time.NewTicker(s.CheckInterval)
	s.wg.Add(1)

	go s.run()

	log.Printf("[Scheduler] Started with check interval: %v", s.CheckInterval)
}

// Stop stops the scheduler and waits for an in-flight sync.
func (s *SyncScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		s.ticker = nil
		log.Println("[Scheduler] Stopped")
	}
}

func (s *SyncScheduler) run() {
	defer s.wg.Done()

	// Run immediately on start
	s.RunNow()

	for {
		select {
		case <-s.ticker.C:
			s.RunNow()
		case <-s.stop:
			return
		}
	}
}

// RunNow performs one sync and returns its report (nil if skipped).
func (s *SyncScheduler) RunNow() *fitness.SyncReport {
	ctx := context.Background()
	log.Printf("[Scheduler] Syncing at %v", time.Now().Format(time.RFC3339))

	report, err := s.Handler.RunSync(ctx, fitness.SyncOptions{})
	switch {
	case errors.Is(err, errSyncRunning):
		log.Println("[Scheduler] Skipped: sync already running")
		return nil
	case err != nil:
		log.Printf("[Scheduler] Sync failed: %v", err)
	case report != nil:
		log.Printf("[Scheduler] Completed: state=%s status=%s", report.State, report.Status())
	}

	s.stateMu.Lock()
	s.lastRun = time.Now()
	s.lastReport = report
	s.stateMu.Unlock()
	return report
}

// LastReport returns the most recent scheduled run's report.
func (s *SyncScheduler) LastReport() (*fitness.SyncReport, time.Time) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.lastReport, s.lastRun
}

// GetNextRunTime returns when the next scheduled check will occur, or the
// zero time when the scheduler is disabled.
func (s *SyncScheduler) GetNextRunTime() time.Time {
	if !s.Enabled {
		return time.Time{}
	}
	_, last := s.LastReport()
	if last.IsZero() {
		return time.Now()
	}
	return last.Add(s.CheckInterval)
}
