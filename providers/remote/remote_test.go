package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tjwilli6/Fitness/fitness"
	"github.com/tjwilli6/Fitness/generic"
)

func newServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

// =============================================================================
// AUTH
// =============================================================================

func TestClient_SendsBearerToken(t *testing.T) {
	var got string
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	})

	c := NewDiaryClient(srv.URL, "tj", "secret", time.Second)
	require.NoError(t, c.Authenticate(context.Background()))
	assert.Equal(t, "Bearer secret", got)
}

func TestClient_UnauthorizedStatuses(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})

		err := NewScaleClient(srv.URL, "tj", "bad", time.Second).Authenticate(context.Background())
		assert.ErrorIs(t, err, ErrUnauthorized, "status %d", status)
	}
}

func TestClient_ServerErrorIsNotAuth(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	err := NewActivityClient(srv.URL, "tok", time.Second).Authenticate(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthorized)
	assert.Contains(t, err.Error(), "500")
}

func TestDiary_AuthenticateNeedsUser(t *testing.T) {
	c := NewDiaryClient("http://127.0.0.1:0", "", "tok", time.Second)
	assert.Error(t, c.Authenticate(context.Background()))
}

// =============================================================================
// DIARY
// =============================================================================

func TestDiary_GetDay(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/users/tj/diary/2023-06-10":
			w.Write([]byte(`{"totals": {"calories": 1800}, "goals": {"calories": 2000}}`))
		case "/api/v1/users/tj/diary/2023-06-11":
			w.Write([]byte(`{"totals": {}, "goals": {"calories": 2000}}`))
		case "/api/v1/users/tj/diary/2023-06-12":
			w.Write([]byte(`{"totals": {"calories": 700}}`))
		default:
			http.NotFound(w, r)
		}
	})
	c := NewDiaryClient(srv.URL, "tj", "tok", time.Second)
	ctx := context.Background()

	t.Run("totals and goal", func(t *testing.T) {
		got, err := c.GetDay(ctx, generic.NewTimePoint(2023, time.June, 10))
		require.NoError(t, err)
		assert.Equal(t, fitness.DayTotals{Consumed: 1800, Goal: 2000}, got)
	})

	t.Run("missing totals is no data", func(t *testing.T) {
		_, err := c.GetDay(ctx, generic.NewTimePoint(2023, time.June, 11))
		assert.ErrorIs(t, err, fitness.ErrNoData)
	})

	t.Run("missing goal", func(t *testing.T) {
		got, err := c.GetDay(ctx, generic.NewTimePoint(2023, time.June, 12))
		require.NoError(t, err)
		assert.Equal(t, fitness.NoData, got.Goal)
	})

	t.Run("404 is no data", func(t *testing.T) {
		_, err := c.GetDay(ctx, generic.NewTimePoint(2023, time.June, 13))
		assert.ErrorIs(t, err, fitness.ErrNoData)
	})
}

// =============================================================================
// SCALE
// =============================================================================

func TestScale_GetMeasurements(t *testing.T) {
	var from string
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/users/tj/measurements/weight", r.URL.Path)
		from = r.URL.Query().Get("from")
		w.Write([]byte(`{"measurements": {"2023-06-11": 180.4, "2023-06-10": 181.35}}`))
	})

	c := NewScaleClient(srv.URL, "tj", "tok", time.Second)
	got, err := c.GetMeasurements(context.Background(), generic.NewTimePoint(2023, time.June, 10))
	require.NoError(t, err)

	assert.Equal(t, "2023-06-10", from)
	require.Len(t, got, 2)
	byDate := map[string]string{}
	for _, r := range got {
		byDate[r.Date.String()] = r.Pounds.String()
	}
	assert.Equal(t, map[string]string{"2023-06-10": "181.35", "2023-06-11": "180.4"}, byDate)
}

func TestScale_BadDate(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"measurements": {"06/10/2023": 180}}`))
	})

	_, err := NewScaleClient(srv.URL, "tj", "tok", time.Second).
		GetMeasurements(context.Background(), generic.NewTimePoint(2023, time.June, 1))
	assert.Error(t, err)
}

// =============================================================================
// ACTIVITY
// =============================================================================

func TestActivity_Earliest(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 7, "created_at": "2019-04-02T10:00:00Z"}`))
	})

	got, err := NewActivityClient(srv.URL, "tok", time.Second).Earliest(context.Background())
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2019, time.April, 2, 10, 0, 0, 0, time.UTC)))
}

func TestActivity_PagesUntilShortPage(t *testing.T) {
	// GIVEN: One full page followed by a page of one
	var pages []string
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		pages = append(pages, q.Get("page"))
		assert.Equal(t, "1686355200", q.Get("after"))
		assert.Equal(t, strconv.Itoa(PageSize), q.Get("per_page"))

		n := 1
		if q.Get("page") == "1" {
			n = PageSize
		}
		w.Write([]byte("["))
		for i := 0; i < n; i++ {
			if i > 0 {
				w.Write([]byte(","))
			}
			w.Write([]byte(`{"type": "Run", "start_date": "2023-06-10T07:00:00Z", "distance": 5000, "elapsed_time": 1500}`))
		}
		w.Write([]byte("]"))
	})

	// WHEN
	after := time.Date(2023, time.June, 10, 0, 0, 0, 0, time.UTC)
	got, err := NewActivityClient(srv.URL, "tok", time.Second).ActivitiesAfter(context.Background(), after)

	// THEN
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, pages)
	assert.Len(t, got, PageSize+1)
	assert.Equal(t, "Run", got[0].Type)
	assert.Equal(t, 5000.0, got[0].Distance)
	assert.Equal(t, 1500.0, got[0].ElapsedSeconds)
}
