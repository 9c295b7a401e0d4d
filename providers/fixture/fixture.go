/*
Package fixture serves provider data from a YAML file.

PURPOSE:
  Lets the tracker run without network access: demos, first-time setup,
  and tests of the whole pipeline. One Source implements all three
  provider interfaces.

FILE FORMAT:
  account_created: 2023-01-01T00:00:00Z
  fail_auth: false
  calories:
    "2023-06-10": {consumed: 1800, goal: 2000}
  weight:
    "2023-06-10": "180.4"
  activities:
    - {type: Run, start: 2023-06-10T07:00:00Z, distance: 5000, elapsed_seconds: 1500}

  Dates missing from calories report ErrNoData.
*/
package fixture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tjwilli6/Fitness/fitness"
	"github.com/tjwilli6/Fitness/generic"
	"gopkg.in/yaml.v3"
)

// ErrAuthRejected is what Authenticate returns when fail_auth is set.
var ErrAuthRejected = errors.New("fixture: credentials rejected")

// Scenario is the YAML document.
type Scenario struct {
	AccountCreated time.Time           `yaml:"account_created"`
	FailAuth       bool                `yaml:"fail_auth"`
	Calories       map[string]DayEntry `yaml:"calories"`
	Weight         map[string]string   `yaml:"weight"`
	Activities     []ActivityEntry     `yaml:"activities"`
}

type DayEntry struct {
	Consumed int `yaml:"consumed"`
	Goal     int `yaml:"goal"`
}

type ActivityEntry struct {
	Type           string    `yaml:"type"`
	Start          time.Time `yaml:"start"`
	Distance       float64   `yaml:"distance"`
	ElapsedSeconds float64   `yaml:"elapsed_seconds"`
}

// Source answers provider calls from a Scenario.
type Source struct {
	scenario Scenario
	weights  []fitness.WeightRecord
}

// Load reads a scenario file.
func Load(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a scenario document.
func Parse(data []byte) (*Source, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	return New(sc)
}

// New validates sc and builds a Source.
func New(sc Scenario) (*Source, error) {
	for date := range sc.Calories {
		if _, err := generic.ParseDate(date); err != nil {
			return nil, fmt.Errorf("calories: bad date %q: %w", date, err)
		}
	}
	weights := make([]fitness.WeightRecord, 0, len(sc.Weight))
	for date, lbs := range sc.Weight {
		d, err := generic.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("weight: bad date %q: %w", date, err)
		}
		v, err := decimal.NewFromString(lbs)
		if err != nil {
			return nil, fmt.Errorf("weight %s: %w", date, err)
		}
		weights = append(weights, fitness.WeightRecord{Date: d, Pounds: v})
	}
	sort.Slice(weights, func(i, j int) bool { return weights[i].Date.Before(weights[j].Date) })
	return &Source{scenario: sc, weights: weights}, nil
}

func (s *Source) Name() string { return "fixture" }

func (s *Source) Authenticate(_ context.Context) error {
	if s.scenario.FailAuth {
		return ErrAuthRejected
	}
	return nil
}

// GetDay implements fitness.CalorieProvider.
func (s *Source) GetDay(_ context.Context, date generic.TimePoint) (fitness.DayTotals, error) {
	e, ok := s.scenario.Calories[date.Date().String()]
	if !ok {
		return fitness.DayTotals{}, fitness.ErrNoData
	}
	return fitness.DayTotals{Consumed: e.Consumed, Goal: e.Goal}, nil
}

// GetMeasurements implements fitness.WeightProvider.
func (s *Source) GetMeasurements(_ context.Context, lowerBound generic.TimePoint) ([]fitness.WeightRecord, error) {
	var out []fitness.WeightRecord
	for _, w := range s.weights {
		if w.Date.AfterOrEqual(lowerBound.Date()) {
			out = append(out, w)
		}
	}
	return out, nil
}

// Earliest implements fitness.ActivityProvider.
func (s *Source) Earliest(_ context.Context) (time.Time, error) {
	if !s.scenario.AccountCreated.IsZero() {
		return s.scenario.AccountCreated, nil
	}
	var first time.Time
	for _, a := range s.scenario.Activities {
		if first.IsZero() || a.Start.Before(first) {
			first = a.Start
		}
	}
	// strictly-after semantics would otherwise drop the first activity
	return first.Add(-time.Second), nil
}

// ActivitiesAfter implements fitness.ActivityProvider.
func (s *Source) ActivitiesAfter(_ context.Context, t time.Time) ([]fitness.Activity, error) {
	var out []fitness.Activity
	for _, a := range s.scenario.Activities {
		if a.Start.After(t) {
			out = append(out, fitness.Activity{
				Type:           a.Type,
				Start:          a.Start,
				Distance:       a.Distance,
				ElapsedSeconds: a.ElapsedSeconds,
			})
		}
	}
	return out, nil
}

// Providers wires the source into all three provider slots.
func (s *Source) Providers() fitness.Providers {
	return fitness.Providers{Calories: s, Weight: s, Activities: s}
}
