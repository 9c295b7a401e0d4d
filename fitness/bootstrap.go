package fitness

import (
	"context"
	"fmt"
	"log"

	"github.com/tjwilli6/Fitness/generic"
)

// =============================================================================
// BOOTSTRAPPER - Seeds empty logs
// =============================================================================

// Bootstrapper fills empty logs from a start date through today.
//
// Calories: one record per day in [start, today], today provisional.
// Weight:   one fetch with lower bound start, appended by date.
// Runs:     one fetch after the provider's earliest instant, Run activities only.
//
// If any provider fails to authenticate nothing is written.
type Bootstrapper struct {
	Logs      Logs
	Providers Providers
	Clock     func() generic.TimePoint
}

// Run bootstraps every log that is still empty. Logs that already hold
// records are left alone.
func (b *Bootstrapper) Run(ctx context.Context, start generic.TimePoint) (*SyncReport, error) {
	today := b.Clock().Date()
	report := newReport(StateBootstrap, today)

	if start.Date().After(today) {
		return report.finish(), fmt.Errorf("bootstrap start %s is after today: %w", start, generic.ErrInvalidPeriod)
	}

	if err := b.Providers.Authenticate(ctx); err != nil {
		report.Aborted = true
		report.noteError(err)
		log.Printf("[Bootstrap] Skipped: %v", err)
		return report.finish(), err
	}

	if b.Providers.Calories != nil {
		if empty, err := isEmpty(ctx, b.Logs.Calories); err != nil {
			return report.finish(), err
		} else if empty {
			n, err := b.calories(ctx, start, today, report)
			report.Appended[KindCalories] = n
			if err != nil {
				return report.finish(), err
			}
		}
	}

	if b.Providers.Weight != nil {
		if empty, err := isEmpty(ctx, b.Logs.Weight); err != nil {
			return report.finish(), err
		} else if empty {
			n, err := appendWeights(ctx, b.Logs.Weight, b.Providers.Weight, start.Date(), today)
			report.Appended[KindWeight] = n
			if err != nil {
				report.noteError(err)
				log.Printf("[Bootstrap] Weight skipped: %v", err)
			}
		}
	}

	if b.Providers.Activities != nil {
		if empty, err := isEmpty(ctx, b.Logs.Runs); err != nil {
			return report.finish(), err
		} else if empty {
			n, err := b.runs(ctx)
			report.Appended[KindRuns] = n
			if err != nil {
				report.noteError(err)
				log.Printf("[Bootstrap] Runs skipped: %v", err)
			}
		}
	}

	log.Printf("[Bootstrap] From %s: %d calorie, %d weight, %d run records",
		start, report.Appended[KindCalories], report.Appended[KindWeight], report.Appended[KindRuns])
	return report.finish(), nil
}

// Calories seeds just the calorie log. Fails with ErrLogExists if it has records.
func (b *Bootstrapper) Calories(ctx context.Context, start generic.TimePoint) (int, error) {
	if b.Providers.Calories == nil {
		return 0, errNoProvider(KindCalories)
	}
	if err := b.precondition(ctx, b.Logs.Calories.Exists); err != nil {
		return 0, err
	}
	today := b.Clock().Date()
	report := newReport(StateBootstrap, today)
	return b.calories(ctx, start, today, report)
}

// Weight seeds just the weight log.
func (b *Bootstrapper) Weight(ctx context.Context, start generic.TimePoint) (int, error) {
	if b.Providers.Weight == nil {
		return 0, errNoProvider(KindWeight)
	}
	if err := b.precondition(ctx, b.Logs.Weight.Exists); err != nil {
		return 0, err
	}
	return appendWeights(ctx, b.Logs.Weight, b.Providers.Weight, start.Date(), b.Clock().Date())
}

// Runs seeds just the run log.
func (b *Bootstrapper) Runs(ctx context.Context) (int, error) {
	if b.Providers.Activities == nil {
		return 0, errNoProvider(KindRuns)
	}
	if err := b.precondition(ctx, b.Logs.Runs.Exists); err != nil {
		return 0, err
	}
	return b.runs(ctx)
}

func (b *Bootstrapper) calories(ctx context.Context, start, today generic.TimePoint, report *SyncReport) (int, error) {
	return appendCalorieDays(ctx, b.Logs.Calories, b.Providers.Calories, start, today, report)
}

func (b *Bootstrapper) runs(ctx context.Context) (int, error) {
	earliest, err := b.Providers.Activities.Earliest(ctx)
	if err != nil {
		return 0, &generic.ProviderError{Provider: b.Providers.Activities.Name(), Op: "earliest", Err: err}
	}
	return appendRuns(ctx, b.Logs.Runs, b.Providers.Activities, earliest)
}

func (b *Bootstrapper) precondition(ctx context.Context, exists func(context.Context) (bool, error)) error {
	ok, err := exists(ctx)
	if err != nil {
		return err
	}
	if ok {
		return generic.ErrLogExists
	}
	return nil
}

func isEmpty[R any](ctx context.Context, l *generic.Log[R]) (bool, error) {
	ok, err := l.Exists(ctx)
	return !ok, err
}

func errNoProvider(k Kind) error {
	return fmt.Errorf("no %s provider configured", k)
}
