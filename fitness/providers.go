package fitness

import (
	"context"
	"errors"
	"time"

	"github.com/tjwilli6/Fitness/generic"
)

// =============================================================================
// PROVIDERS - Remote sources of truth
// =============================================================================

// ErrNoData is returned by a CalorieProvider for a date with nothing logged.
// It is recovered locally as the NoData sentinel and never propagated.
var ErrNoData = errors.New("no data for date")

// Authenticator is implemented by every provider client. Authenticate is
// called once before any fetch; a failure aborts the whole run.
type Authenticator interface {
	Name() string
	Authenticate(ctx context.Context) error
}

// CalorieProvider reports daily intake and goal.
type CalorieProvider interface {
	Authenticator
	// GetDay returns the totals for date, or ErrNoData.
	GetDay(ctx context.Context, date generic.TimePoint) (DayTotals, error)
}

// WeightProvider reports weigh-ins.
type WeightProvider interface {
	Authenticator
	// GetMeasurements returns one record per measured date on or after lowerBound.
	// Order is not guaranteed.
	GetMeasurements(ctx context.Context, lowerBound generic.TimePoint) ([]WeightRecord, error)
}

// ActivityProvider reports the activity history.
type ActivityProvider interface {
	Authenticator
	// Earliest is the first instant the account can have data (e.g. creation).
	Earliest(ctx context.Context) (time.Time, error)
	// ActivitiesAfter returns every activity starting strictly after t.
	ActivitiesAfter(ctx context.Context, t time.Time) ([]Activity, error)
}

// Credentials are the secrets the provider clients need.
type Credentials struct {
	CalorieUser   string
	CalorieToken  string
	ActivityToken string
}

// CredentialStore loads credentials before a run.
type CredentialStore interface {
	Load() (Credentials, error)
}

// Providers bundles the three clients. Any of them may be nil, in which
// case that metric is not fetched.
type Providers struct {
	Calories   CalorieProvider
	Weight     WeightProvider
	Activities ActivityProvider
}

// Authenticate logs in to every configured provider and stops at the first failure.
func (p Providers) Authenticate(ctx context.Context) error {
	for _, a := range p.all() {
		if err := a.Authenticate(ctx); err != nil {
			return &generic.AuthError{Provider: a.Name(), Err: err}
		}
	}
	return nil
}

func (p Providers) all() []Authenticator {
	var out []Authenticator
	if p.Calories != nil {
		out = append(out, p.Calories)
	}
	if p.Weight != nil {
		out = append(out, p.Weight)
	}
	if p.Activities != nil {
		out = append(out, p.Activities)
	}
	return out
}
