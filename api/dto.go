/*
dto.go - Data Transfer Objects for API responses

PURPOSE:
  Defines the JSON structures for API communication, decoupled from the
  fitness package's record types.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Response: Complex response wrappers

EMPTY BINS:
  A mean over an empty bin is NaN, which JSON cannot carry. BinDTO.Value
  is a pointer and is null for those bins.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"math"
	"time"

	"github.com/tjwilli6/Fitness/fitness"
	"github.com/tjwilli6/Fitness/generic"
	"github.com/tjwilli6/Fitness/store/sqlite"
)

// =============================================================================
// RECORDS
// =============================================================================

type CalorieDTO struct {
	Date        string `json:"date"`
	Consumed    int    `json:"consumed"`
	Goal        int    `json:"goal"`
	Provisional bool   `json:"provisional"`
	HasData     bool   `json:"has_data"`
}

type WeightDTO struct {
	Date   string `json:"date"`
	Pounds string `json:"pounds"`
}

type RunDTO struct {
	Start          string  `json:"start"`
	Distance       float64 `json:"distance"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	Pace           float64 `json:"pace"`
}

type BinDTO struct {
	Center string   `json:"center"`
	Start  string   `json:"start"`
	End    string   `json:"end"`
	Value  *float64 `json:"value"`
	Count  int      `json:"count"`
}

type BinsResponse struct {
	Metric  string   `json:"metric"`
	Width   int      `json:"width_days,omitempty"`
	Count   int      `json:"bin_count,omitempty"`
	Reducer string   `json:"reducer"`
	Bins    []BinDTO `json:"bins"`
}

// =============================================================================
// DERIVED METRICS
// =============================================================================

type TrendDTO struct {
	SlopePerDay   float64 `json:"slope_lbs_per_day"`
	SlopePerWeek  float64 `json:"slope_lbs_per_week"`
	CurrentPounds string  `json:"current_pounds"`
	AsOf          string  `json:"as_of"`
	FirstDate     string  `json:"first_date"`
	LastDate      string  `json:"last_date"`
}

type ProjectionDTO struct {
	AsOf          string   `json:"as_of"`
	CurrentPounds string   `json:"current_pounds"`
	SlopePerDay   float64  `json:"slope_lbs_per_day"`
	TargetDate    string   `json:"target_date,omitempty"`
	TargetPounds  *float64 `json:"target_pounds,omitempty"`
}

type BMIDTO struct {
	Pounds       string  `json:"pounds"`
	HeightInches float64 `json:"height_inches"`
	BMI          string  `json:"bmi"`
}

type SummaryDTO struct {
	Start          string  `json:"start"`
	Stop           string  `json:"stop"`
	CalorieDays    int     `json:"calorie_days"`
	NoDataDays     int     `json:"no_data_days"`
	Consumed       int     `json:"consumed"`
	Goal           int     `json:"goal"`
	Net            int     `json:"net"`
	Runs           int     `json:"runs"`
	Distance       float64 `json:"distance"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	Pace           float64 `json:"pace"`
}

// =============================================================================
// SYNC
// =============================================================================

type SyncReportDTO struct {
	RunID       string         `json:"run_id"`
	State       string         `json:"state"`
	Status      string         `json:"status"`
	Today       string         `json:"today"`
	Removed     *CalorieDTO    `json:"removed,omitempty"`
	Appended    map[string]int `json:"appended"`
	Errors      []string       `json:"errors,omitempty"`
	StartedAt   string         `json:"started_at"`
	CompletedAt string         `json:"completed_at,omitempty"`
}

type SyncRunDTO struct {
	ID               string   `json:"id"`
	State            string   `json:"state"`
	Status           string   `json:"status"`
	Today            string   `json:"today"`
	Removed          int      `json:"removed"`
	AppendedCalories int      `json:"appended_calories"`
	AppendedWeight   int      `json:"appended_weight"`
	AppendedRuns     int      `json:"appended_runs"`
	Errors           []string `json:"errors,omitempty"`
	StartedAt        string   `json:"started_at"`
	CompletedAt      string   `json:"completed_at,omitempty"`
}

type ScheduleDTO struct {
	Enabled    bool   `json:"enabled"`
	Interval   string `json:"interval,omitempty"`
	LastRun    string `json:"last_run,omitempty"`
	LastStatus string `json:"last_status,omitempty"`
	NextRun    string `json:"next_run,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toCalorieDTO(r fitness.CalorieRecord) CalorieDTO {
	return CalorieDTO{
		Date:        r.Date.String(),
		Consumed:    r.Consumed,
		Goal:        r.Goal,
		Provisional: r.IsProvisional(),
		HasData:     r.HasData(),
	}
}

func toWeightDTO(r fitness.WeightRecord) WeightDTO {
	return WeightDTO{Date: r.Date.String(), Pounds: r.Pounds.String()}
}

func toRunDTO(r fitness.RunRecord) RunDTO {
	return RunDTO{
		Start:          r.Start.String(),
		Distance:       r.Distance,
		ElapsedSeconds: r.ElapsedSeconds,
		Pace:           r.Pace(),
	}
}

func toBinDTOs(bins []generic.Bin) []BinDTO {
	dtos := make([]BinDTO, len(bins))
	for i, b := range bins {
		dtos[i] = BinDTO{
			Center: b.Center.String(),
			Start:  b.Start.String(),
			End:    b.End.String(),
			Count:  b.Count,
		}
		if !math.IsNaN(b.Value) {
			v := b.Value
			dtos[i].Value = &v
		}
	}
	return dtos
}

func toSyncReportDTO(r *fitness.SyncReport) SyncReportDTO {
	dto := SyncReportDTO{
		RunID:     r.RunID,
		State:     string(r.State),
		Status:    r.Status(),
		Today:     r.Today.String(),
		Appended:  make(map[string]int),
		Errors:    r.Errors,
		StartedAt: r.StartedAt.Format(time.RFC3339),
	}
	for k, n := range r.Appended {
		dto.Appended[string(k)] = n
	}
	if r.Removed != nil {
		c := toCalorieDTO(*r.Removed)
		dto.Removed = &c
	}
	if !r.CompletedAt.IsZero() {
		dto.CompletedAt = r.CompletedAt.Format(time.RFC3339)
	}
	return dto
}

func toSyncRunDTO(r sqlite.SyncRun) SyncRunDTO {
	dto := SyncRunDTO{
		ID:               r.ID,
		State:            r.State,
		Status:           r.Status,
		Today:            r.Today.Format(generic.DateLayout),
		Removed:          r.Removed,
		AppendedCalories: r.AppendedCalories,
		AppendedWeight:   r.AppendedWeight,
		AppendedRuns:     r.AppendedRuns,
		Errors:           r.Errors,
		StartedAt:        r.StartedAt.Format(time.RFC3339),
	}
	if r.CompletedAt != nil {
		dto.CompletedAt = r.CompletedAt.Format(time.RFC3339)
	}
	return dto
}
