/*
handlers_test.go - Tests for the HTTP API

Tests for:
- Record listing, as-of lookups and binning (including empty-bin nulls)
- Weight trend, projection and BMI
- Sync trigger, concurrent-sync rejection and the audit trail
- Status codes for bad input
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tjwilli6/Fitness/app"
	"github.com/tjwilli6/Fitness/config"
	"github.com/tjwilli6/Fitness/fitness"
	"github.com/tjwilli6/Fitness/generic"
	"github.com/tjwilli6/Fitness/generic/store"
	"github.com/tjwilli6/Fitness/providers/fixture"
	"github.com/tjwilli6/Fitness/store/sqlite"
)

// =============================================================================
// TEST SERVER
// =============================================================================

type testServer struct {
	handler *Handler
	router  http.Handler
	mem     *store.Memory
}

// newTestServer serves memory logs with today fixed at 2023-01-15 and
// provider data from a fixture document.
func newTestServer(t *testing.T, fixtureDoc string) *testServer {
	t.Helper()

	src, err := fixture.Parse([]byte(fixtureDoc))
	require.NoError(t, err)
	audit, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { audit.Close() })

	mem := store.NewMemory()
	today := generic.NewTimePoint(2023, time.January, 15)
	tracker := fitness.NewTracker(fitness.OpenLogs(mem.Log, fitness.DefaultLogNames()), src.Providers(), fitness.Config{
		HeightInches: 70,
		Clock:        func() generic.TimePoint { return today },
	})

	h := NewHandler(&app.App{Config: config.Default(), Tracker: tracker, Audit: audit})
	return &testServer{handler: h, router: NewRouter(h, nil), mem: mem}
}

func (s *testServer) seed(t *testing.T, name string, lines ...string) {
	t.Helper()
	for _, l := range lines {
		require.NoError(t, s.mem.Log(name).Append(context.Background(), l))
	}
}

func (s *testServer) do(t *testing.T, method, url string, out any) int {
	t.Helper()
	req := httptest.NewRequest(method, url, nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

func (s *testServer) seedDefaults(t *testing.T) {
	t.Helper()
	s.seed(t, fitness.DefaultCalorieLog,
		"2023-01-01,1800,2000,0",
		"2023-01-02,-1,-1,0",
		"2023-01-03,2200,2000,0",
		"2023-01-08,2000,2000,0",
	)
	s.seed(t, fitness.DefaultWeightLog, "2023-01-01,180", "2023-01-11,170")
	s.seed(t, fitness.DefaultRunLog, "2023-01-02T07:00:00,3,1500", "2023-01-09T07:00:00,5,2400")
}

// =============================================================================
// RECORDS
// =============================================================================

func TestListCalories_Window(t *testing.T) {
	s := newTestServer(t, "")
	s.seedDefaults(t)

	var got []CalorieDTO
	code := s.do(t, http.MethodGet, "/api/calories?start=2023-01-02&stop=2023-01-03", &got)

	assert.Equal(t, http.StatusOK, code)
	require.Len(t, got, 2)
	assert.False(t, got[0].HasData)
	assert.Equal(t, 2200, got[1].Consumed)
}

func TestListCalories_BinsWithEmptyBinAsNull(t *testing.T) {
	// GIVEN: Calorie days on 01-01, 01-03 and 01-08 (01-02 has no data)
	s := newTestServer(t, "")
	s.seedDefaults(t)

	// WHEN: Three-day mean bins
	var got BinsResponse
	code := s.do(t, http.MethodGet, "/api/calories?bin=3&reduce=mean", &got)

	// THEN: Centers 01-01, 01-04, 01-07, 01-10 and the last bin is a gap
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 3, got.Width)
	assert.Equal(t, "mean", got.Reducer)
	require.Len(t, got.Bins, 4)
	assert.Equal(t, "2023-01-01", got.Bins[0].Center)
	require.NotNil(t, got.Bins[0].Value)
	assert.Equal(t, 1800.0, *got.Bins[0].Value)
	require.NotNil(t, got.Bins[2].Value)
	assert.Equal(t, 2000.0, *got.Bins[2].Value)
	assert.Nil(t, got.Bins[3].Value)
	assert.Equal(t, 0, got.Bins[3].Count)
}

func TestListRuns_BinsByCount(t *testing.T) {
	s := newTestServer(t, "")
	s.seedDefaults(t)

	var got BinsResponse
	code := s.do(t, http.MethodGet, "/api/runs?bins=2&metric=distance", &got)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, got.Count)
	require.Len(t, got.Bins, 2)
	assert.Equal(t, 3.0, *got.Bins[0].Value)
	assert.Equal(t, 5.0, *got.Bins[1].Value)
}

func TestAsOf(t *testing.T) {
	s := newTestServer(t, "")
	s.seedDefaults(t)

	var w WeightDTO
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/weight/asof/2023-01-10", &w))
	assert.Equal(t, "2023-01-01", w.Date)
	assert.Equal(t, "180", w.Pounds)

	var r RunDTO
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/runs/asof/2023-01-05", &r))
	assert.Equal(t, "2023-01-02T07:00:00", r.Start)
	assert.Equal(t, 500.0, r.Pace)

	var e ErrorResponse
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/calories/asof/2022-12-31", &e))
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/calories/asof/12-31-2022", &e))
}

// =============================================================================
// DERIVED
// =============================================================================

func TestWeightTrendAndProjection(t *testing.T) {
	s := newTestServer(t, "")
	s.seedDefaults(t)

	var trend TrendDTO
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/weight/trend", &trend))
	assert.Equal(t, -1.0, trend.SlopePerDay)
	assert.Equal(t, -7.0, trend.SlopePerWeek)
	assert.Equal(t, "2023-01-11", trend.AsOf)

	var byWeight ProjectionDTO
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/weight/projection?weight=165", &byWeight))
	assert.Equal(t, "2023-01-16", byWeight.TargetDate)

	var byDate ProjectionDTO
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/weight/projection?date=2023-01-21", &byDate))
	require.NotNil(t, byDate.TargetPounds)
	assert.Equal(t, 160.0, *byDate.TargetPounds)

	var e ErrorResponse
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/weight/projection", &e))
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/weight/projection?date=2023-01-21&weight=160", &e))
}

func TestWeightTrend_NeedsTwoWeighIns(t *testing.T) {
	s := newTestServer(t, "")
	s.seed(t, fitness.DefaultWeightLog, "2023-01-01,180")

	var e ErrorResponse
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/weight/trend", &e))
}

func TestGetBMI(t *testing.T) {
	s := newTestServer(t, "")
	s.seedDefaults(t)

	var latest BMIDTO
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/bmi", &latest))
	assert.Equal(t, "170", latest.Pounds)
	assert.Equal(t, "24.4", latest.BMI)

	var given BMIDTO
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/bmi?weight=180", &given))
	assert.Equal(t, "25.8", given.BMI)
}

func TestGetSummary(t *testing.T) {
	s := newTestServer(t, "")
	s.seedDefaults(t)

	var got SummaryDTO
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/summary?start=2023-01-01&stop=2023-01-08", &got))
	assert.Equal(t, 3, got.CalorieDays)
	assert.Equal(t, 1, got.NoDataDays)
	assert.Equal(t, 6000, got.Consumed)
	assert.Equal(t, 1, got.Runs)
}

// =============================================================================
// BAD INPUT
// =============================================================================

func TestBadRequests(t *testing.T) {
	s := newTestServer(t, "")
	s.seedDefaults(t)

	for _, url := range []string{
		"/api/calories?start=yesterday",
		"/api/calories?start=2023-02-01&stop=2023-01-01",
		"/api/calories?bin=abc",
		"/api/calories?bin=0",
		"/api/calories?bin=7&reduce=median",
		"/api/calories?bin=7&metric=distance",
		"/api/weight/projection?weight=-5",
		"/api/bmi?weight=heavy",
	} {
		var e ErrorResponse
		assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, url, &e), url)
		assert.NotEmpty(t, e.Error, url)
	}
}

func TestMalformedLogIsUnprocessable(t *testing.T) {
	s := newTestServer(t, "")
	s.seed(t, fitness.DefaultWeightLog, "2023-01-01,180", "2023-01-02")

	var e ErrorResponse
	assert.Equal(t, http.StatusUnprocessableEntity, s.do(t, http.MethodGet, "/api/weight", &e))
}

// =============================================================================
// SYNC
// =============================================================================

const syncFixture = `
calories:
  "2023-01-15": {consumed: 500, goal: 2000}
weight:
  "2023-01-15": "169.5"
`

func TestTriggerSync_AppendsAndAudits(t *testing.T) {
	// GIVEN: A final record for yesterday
	s := newTestServer(t, syncFixture)
	s.seed(t, fitness.DefaultCalorieLog, "2023-01-14,1800,2000,0")

	// WHEN: A sync is triggered
	var report SyncReportDTO
	code := s.do(t, http.MethodPost, "/api/sync", &report)

	// THEN: Today is appended as provisional
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, string(fitness.StateStaleFinal), report.State)
	assert.Equal(t, "completed", report.Status)
	assert.Equal(t, 1, report.Appended[string(fitness.KindCalories)])
	assert.Equal(t, 1, report.Appended[string(fitness.KindWeight)])
	assert.Equal(t, []string{"2023-01-14,1800,2000,0", "2023-01-15,500,2000,1"}, s.mem.Lines(fitness.DefaultCalorieLog))

	// AND: The run is in the audit trail
	var runs []SyncRunDTO
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/sync/runs?limit=5", &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, report.RunID, runs[0].ID)
	assert.Equal(t, 1, runs[0].AppendedCalories)
}

func TestTriggerSync_RejectsConcurrentRun(t *testing.T) {
	s := newTestServer(t, syncFixture)
	s.seed(t, fitness.DefaultCalorieLog, "2023-01-14,1800,2000,0")

	s.handler.syncMu.Lock()
	defer s.handler.syncMu.Unlock()

	var e ErrorResponse
	assert.Equal(t, http.StatusConflict, s.do(t, http.MethodPost, "/api/sync", &e))
	assert.Len(t, s.mem.Lines(fitness.DefaultCalorieLog), 1)
}

func TestTriggerSync_AuthFailureIsBadGateway(t *testing.T) {
	s := newTestServer(t, "fail_auth: true\n")
	s.seed(t, fitness.DefaultCalorieLog, "2023-01-13,1800,2000,1")

	var report SyncReportDTO
	assert.Equal(t, http.StatusBadGateway, s.do(t, http.MethodPost, "/api/sync", &report))
	assert.Equal(t, "failed", report.Status)
	assert.Equal(t, []string{"2023-01-13,1800,2000,1"}, s.mem.Lines(fitness.DefaultCalorieLog))
}

func TestTriggerSync_EmptyLogWithoutStartDate(t *testing.T) {
	s := newTestServer(t, syncFixture)

	var e ErrorResponse
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/sync", &e))
	assert.Empty(t, s.mem.Lines(fitness.DefaultCalorieLog))
}
