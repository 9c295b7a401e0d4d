/*
handlers.go - HTTP API handlers for the fitness tracker

PURPOSE:
  Exposes the logs and derived metrics as a read-only JSON API, plus one
  endpoint that triggers a sync. Handles HTTP request/response and JSON
  serialization; all computation lives in the fitness package.

ENDPOINTS:
  Records:
    GET    /api/calories                ?start=&stop=[&bin=|bins=&reduce=&metric=consumed|goal|net]
    GET    /api/calories/asof/{date}
    GET    /api/weight                  ?start=&stop=[&bin=|bins=&reduce=]
    GET    /api/weight/asof/{date}
    GET    /api/runs                    ?start=&stop=[&bin=|bins=&reduce=&metric=distance|elapsed]
    GET    /api/runs/asof/{date}

  Derived:
    GET    /api/weight/trend            ?start=&stop=
    GET    /api/weight/projection       ?date=YYYY-MM-DD | ?weight=lbs
    GET    /api/bmi                     [?weight=lbs]
    GET    /api/summary                 ?start=&stop=

  Sync:
    POST   /api/sync                    [?force=true]
    GET    /api/sync/runs               [?limit=N]
    GET    /api/sync/schedule

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Bad dates, bin widths, reducers, metrics
  - 404: Nothing at or before a date, too little data for a trend
  - 409: Sync already running
  - 422: Malformed log rows (the log needs repair)
  - 502: Provider authentication or call failures
  - 500: Internal errors

SEE ALSO:
  - dto.go: Response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/tjwilli6/Fitness/app"
	"github.com/tjwilli6/Fitness/fitness"
	"github.com/tjwilli6/Fitness/generic"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	App *app.App

	// Scheduler is set by `serve`; nil means no periodic sync.
	Scheduler *SyncScheduler

	// one sync at a time: the logs have a single writer
	syncMu sync.Mutex
}

// NewHandler creates a new handler around an opened app.
func NewHandler(a *app.App) *Handler {
	return &Handler{App: a}
}

func (h *Handler) query() *fitness.Query {
	return h.App.Tracker.Query
}

// RunSync performs one sync unless another is in flight.
func (h *Handler) RunSync(ctx context.Context, opts fitness.SyncOptions) (*fitness.SyncReport, error) {
	if !h.syncMu.TryLock() {
		return nil, errSyncRunning
	}
	defer h.syncMu.Unlock()
	return h.App.Update(ctx, opts)
}

var errSyncRunning = errors.New("a sync is already running")

// =============================================================================
// CALORIES
// =============================================================================

// ListCalories returns daily records, or bins when ?bin= is given.
// GET /api/calories
func (h *Handler) ListCalories(w http.ResponseWriter, r *http.Request) {
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}
	if wantsBins(r) {
		h.writeBins(w, r, period, fitness.MetricConsumed, fitness.MetricConsumed, fitness.MetricGoal, fitness.MetricNet)
		return
	}

	recs, err := h.query().Calories(r.Context(), period)
	if err != nil {
		writeDomainError(w, "Failed to read calorie log", err)
		return
	}
	dtos := make([]CalorieDTO, len(recs))
	for i, rec := range recs {
		dtos[i] = toCalorieDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCaloriesAsOf returns the latest calorie record on or before {date}.
// GET /api/calories/asof/{date}
func (h *Handler) GetCaloriesAsOf(w http.ResponseWriter, r *http.Request) {
	date, ok := parseDateParam(w, r)
	if !ok {
		return
	}
	rec, err := h.query().CalorieAsOf(r.Context(), date)
	if err != nil {
		writeDomainError(w, "No calorie record", err)
		return
	}
	writeJSON(w, http.StatusOK, toCalorieDTO(rec))
}

// =============================================================================
// WEIGHT
// =============================================================================

// ListWeight returns weigh-ins, or bins when ?bin= is given.
// GET /api/weight
func (h *Handler) ListWeight(w http.ResponseWriter, r *http.Request) {
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}
	if wantsBins(r) {
		h.writeBins(w, r, period, fitness.MetricWeight, fitness.MetricWeight)
		return
	}

	recs, err := h.query().Weights(r.Context(), period)
	if err != nil {
		writeDomainError(w, "Failed to read weight log", err)
		return
	}
	dtos := make([]WeightDTO, len(recs))
	for i, rec := range recs {
		dtos[i] = toWeightDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetWeightAsOf returns the latest weigh-in on or before {date}.
// GET /api/weight/asof/{date}
func (h *Handler) GetWeightAsOf(w http.ResponseWriter, r *http.Request) {
	date, ok := parseDateParam(w, r)
	if !ok {
		return
	}
	rec, err := h.query().WeightAsOf(r.Context(), date)
	if err != nil {
		writeDomainError(w, "No weight record", err)
		return
	}
	writeJSON(w, http.StatusOK, toWeightDTO(rec))
}

// GetWeightTrend returns the endpoint slope over the window.
// GET /api/weight/trend
func (h *Handler) GetWeightTrend(w http.ResponseWriter, r *http.Request) {
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}
	trend, err := h.query().WeightTrend(r.Context(), period)
	if err != nil {
		writeDomainError(w, "Cannot compute weight trend", err)
		return
	}
	writeJSON(w, http.StatusOK, TrendDTO{
		SlopePerDay:   trend.Slope,
		SlopePerWeek:  trend.Slope * 7,
		CurrentPounds: trend.Current.Pounds.String(),
		AsOf:          trend.AsOf().String(),
		FirstDate:     trend.Trend.First.At.String(),
		LastDate:      trend.Trend.Last.At.String(),
	})
}

// GetWeightProjection projects weight at ?date= or the date ?weight= is reached.
// GET /api/weight/projection
func (h *Handler) GetWeightProjection(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dateStr, weightStr := q.Get("date"), q.Get("weight")
	if (dateStr == "") == (weightStr == "") {
		writeError(w, http.StatusBadRequest, "Give exactly one of date or weight", nil)
		return
	}
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}

	trend, err := h.query().WeightTrend(r.Context(), period)
	if err != nil {
		writeDomainError(w, "Cannot compute weight trend", err)
		return
	}
	dto := ProjectionDTO{
		AsOf:          trend.AsOf().String(),
		CurrentPounds: trend.Current.Pounds.String(),
		SlopePerDay:   trend.Slope,
	}

	if dateStr != "" {
		target, err := generic.ParseDate(dateStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
			return
		}
		lbs := trend.ProjectedWeight(target)
		dto.TargetDate = target.String()
		dto.TargetPounds = &lbs
	} else {
		lbs, err := strconv.ParseFloat(weightStr, 64)
		if err != nil || lbs <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid weight", err)
			return
		}
		when, err := trend.ProjectedDate(lbs)
		if err != nil {
			writeDomainError(w, "Target weight is never reached", err)
			return
		}
		dto.TargetDate = when.String()
		dto.TargetPounds = &lbs
	}
	writeJSON(w, http.StatusOK, dto)
}

// GetBMI returns BMI for ?weight= or the latest weigh-in.
// GET /api/bmi
func (h *Handler) GetBMI(w http.ResponseWriter, r *http.Request) {
	height, err := h.App.Tracker.Height()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Height not configured", err)
		return
	}

	var lbs decimal.Decimal
	if s := r.URL.Query().Get("weight"); s != "" {
		lbs, err = decimal.NewFromString(s)
		if err != nil || !lbs.IsPositive() {
			writeError(w, http.StatusBadRequest, "Invalid weight", err)
			return
		}
	} else {
		rec, err := h.query().WeightAsOf(r.Context(), h.App.Today())
		if err != nil {
			writeDomainError(w, "No weight record", err)
			return
		}
		lbs = rec.Pounds
	}

	bmi, err := fitness.BMI(lbs, decimal.NewFromFloat(height))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Cannot compute BMI", err)
		return
	}
	writeJSON(w, http.StatusOK, BMIDTO{
		Pounds:       lbs.String(),
		HeightInches: height,
		BMI:          bmi.StringFixed(1),
	})
}

// =============================================================================
// RUNS
// =============================================================================

// ListRuns returns runs, or bins when ?bin= is given.
// GET /api/runs
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}
	if wantsBins(r) {
		h.writeBins(w, r, period, fitness.MetricDistance, fitness.MetricDistance, fitness.MetricElapsed)
		return
	}

	recs, err := h.query().Runs(r.Context(), period)
	if err != nil {
		writeDomainError(w, "Failed to read run log", err)
		return
	}
	dtos := make([]RunDTO, len(recs))
	for i, rec := range recs {
		dtos[i] = toRunDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetRunAsOf returns the latest run on or before {date}.
// GET /api/runs/asof/{date}
func (h *Handler) GetRunAsOf(w http.ResponseWriter, r *http.Request) {
	date, ok := parseDateParam(w, r)
	if !ok {
		return
	}
	rec, err := h.query().RunAsOf(r.Context(), date)
	if err != nil {
		writeDomainError(w, "No run record", err)
		return
	}
	writeJSON(w, http.StatusOK, toRunDTO(rec))
}

// =============================================================================
// SUMMARY
// =============================================================================

// GetSummary totals calories and runs over the window.
// GET /api/summary
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	cals, err := h.query().Calories(ctx, period)
	if err != nil {
		writeDomainError(w, "Failed to read calorie log", err)
		return
	}
	runs, err := h.query().Runs(ctx, period)
	if err != nil {
		writeDomainError(w, "Failed to read run log", err)
		return
	}

	cs := fitness.SummarizeCalories(cals)
	rs := fitness.SummarizeRuns(runs)
	writeJSON(w, http.StatusOK, SummaryDTO{
		Start:          period.Start.String(),
		Stop:           period.End.String(),
		CalorieDays:    cs.Days,
		NoDataDays:     cs.NoDataDays,
		Consumed:       cs.Consumed,
		Goal:           cs.Goal,
		Net:            cs.Net(),
		Runs:           rs.Count,
		Distance:       rs.Distance,
		ElapsedSeconds: rs.ElapsedSeconds,
		Pace:           rs.Pace(),
	})
}

// =============================================================================
// SYNC
// =============================================================================

// TriggerSync runs bootstrap or sync now.
// POST /api/sync
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))
	report, err := h.RunSync(r.Context(), fitness.SyncOptions{Force: force})
	if err != nil {
		if report != nil && report.Aborted {
			writeJSON(w, http.StatusBadGateway, toSyncReportDTO(report))
			return
		}
		writeDomainError(w, "Sync failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toSyncReportDTO(report))
}

// ListSyncRuns returns the audit trail, newest first.
// GET /api/sync/runs
func (h *Handler) ListSyncRuns(w http.ResponseWriter, r *http.Request) {
	if h.App.Audit == nil {
		writeJSON(w, http.StatusOK, []SyncRunDTO{})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := h.App.Audit.GetSyncRuns(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sync runs", err)
		return
	}
	dtos := make([]SyncRunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = toSyncRunDTO(run)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetSyncSchedule reports the periodic sync: interval, last and next run.
// GET /api/sync/schedule
func (h *Handler) GetSyncSchedule(w http.ResponseWriter, r *http.Request) {
	s := h.Scheduler
	if s == nil || !s.Enabled {
		writeJSON(w, http.StatusOK, ScheduleDTO{})
		return
	}
	dto := ScheduleDTO{
		Enabled:  true,
		Interval: s.CheckInterval.String(),
		NextRun:  s.GetNextRunTime().Format(time.RFC3339),
	}
	if report, at := s.LastReport(); !at.IsZero() {
		dto.LastRun = at.Format(time.RFC3339)
		if report != nil {
			dto.LastStatus = report.Status()
		}
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// HELPERS
// =============================================================================

func wantsBins(r *http.Request) bool {
	q := r.URL.Query()
	return q.Get("bin") != "" || q.Get("bins") != ""
}

// writeBins handles ?bin=|bins=&reduce=&metric= for a log whose allowed
// metrics are given. bin is a width in days; bins is a count.
func (h *Handler) writeBins(w http.ResponseWriter, r *http.Request, period generic.Period, def fitness.Metric, allowed ...fitness.Metric) {
	q := r.URL.Query()

	byCount := q.Get("bin") == ""
	param := "bin"
	if byCount {
		param = "bins"
	}
	size, err := strconv.Atoi(q.Get(param))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid "+param, err)
		return
	}
	reducer, err := generic.ParseReducer(q.Get("reduce"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid reducer", err)
		return
	}
	metric := def
	if s := q.Get("metric"); s != "" {
		metric, err = fitness.ParseMetric(s)
		if err != nil || !containsMetric(allowed, metric) {
			writeError(w, http.StatusBadRequest, "Invalid metric for this log", err)
			return
		}
	}

	var bins []generic.Bin
	resp := BinsResponse{Metric: string(metric), Reducer: reducer.String()}
	if byCount {
		bins, err = h.query().BinnedByCount(r.Context(), metric, period, size, reducer)
		resp.Count = size
	} else {
		bins, err = h.query().Binned(r.Context(), metric, period, size, reducer)
		resp.Width = size
	}
	if err != nil {
		writeDomainError(w, "Cannot bin series", err)
		return
	}
	resp.Bins = toBinDTOs(bins)
	writeJSON(w, http.StatusOK, resp)
}

func containsMetric(ms []fitness.Metric, m fitness.Metric) bool {
	for _, x := range ms {
		if x == m {
			return true
		}
	}
	return false
}

func parsePeriod(w http.ResponseWriter, r *http.Request) (generic.Period, bool) {
	q := r.URL.Query()
	p, err := generic.ParsePeriod(q.Get("start"), q.Get("stop"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start/stop (use YYYY-MM-DD)", err)
		return generic.Period{}, false
	}
	return p, true
}

func parseDateParam(w http.ResponseWriter, r *http.Request) (generic.TimePoint, bool) {
	d, err := generic.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return generic.TimePoint{}, false
	}
	return d, true
}

// writeDomainError picks the status for an error from the fitness stack.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, errSyncRunning):
		writeError(w, http.StatusConflict, message, err)
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	case generic.IsNotFound(err), errors.Is(err, generic.ErrFlatTrend):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, generic.ErrMalformedRow):
		writeError(w, http.StatusUnprocessableEntity, message, err)
	case errors.Is(err, generic.ErrAuthentication), errors.Is(err, generic.ErrProviderCall):
		writeError(w, http.StatusBadGateway, message, err)
	case errors.Is(err, fitness.ErrNoBootstrapDate), errors.Is(err, fitness.ErrNotBootstrapped):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
