/*
Package remote implements the provider interfaces over HTTP/JSON.

CLIENTS:
  DiaryClient     calorie diary service   (fitness.CalorieProvider)
  ScaleClient     weight measurements     (fitness.WeightProvider)
  ActivityClient  activity history        (fitness.ActivityProvider)

ENDPOINTS:
  Diary:    GET {base}/api/v1/session
            GET {base}/api/v1/users/{user}/diary/{YYYY-MM-DD}
              -> {"totals": {"calories": 1800}, "goals": {"calories": 2000}}
              404 or missing totals = no data
  Scale:    GET {base}/api/v1/users/{user}/measurements/weight?from=YYYY-MM-DD
              -> {"measurements": {"2023-06-10": 180.4}}
  Activity: GET {base}/api/v3/athlete                -> {"id": 1, "created_at": RFC3339}
            GET {base}/api/v3/athlete/activities?after=<unix>&page=N&per_page=200
              -> [{"type": "Run", "start_date": RFC3339, "distance": 5000, "elapsed_time": 1500}]

AUTH:
  Bearer token on every request. 401/403 from the session endpoint is an
  authentication failure; anything else non-2xx is a call failure.

TIMEOUTS:
  Governed by the http.Client; the sync engine adds none of its own.
*/
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tjwilli6/Fitness/fitness"
	"github.com/tjwilli6/Fitness/generic"
)

// ErrUnauthorized is returned for 401/403 responses.
var ErrUnauthorized = errors.New("unauthorized")

// errNotFound marks a 404 so callers can map it to no-data.
var errNotFound = errors.New("not found")

type client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func newClient(baseURL, token string, timeout time.Duration) client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

func (c client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return errNotFound
	case resp.StatusCode/100 != 2:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("GET %s: decoding response: %w", path, err)
	}
	return nil
}

// =============================================================================
// DIARY (calories)
// =============================================================================

type DiaryClient struct {
	client
	User string
}

func NewDiaryClient(baseURL, user, token string, timeout time.Duration) *DiaryClient {
	return &DiaryClient{client: newClient(baseURL, token, timeout), User: user}
}

func (c *DiaryClient) Name() string { return "diary" }

func (c *DiaryClient) Authenticate(ctx context.Context) error {
	if c.User == "" {
		return fmt.Errorf("no diary user configured")
	}
	return c.getJSON(ctx, "/api/v1/session", nil, nil)
}

type diaryDay struct {
	Totals map[string]int `json:"totals"`
	Goals  map[string]int `json:"goals"`
}

func (c *DiaryClient) GetDay(ctx context.Context, date generic.TimePoint) (fitness.DayTotals, error) {
	var day diaryDay
	path := "/api/v1/users/" + url.PathEscape(c.User) + "/diary/" + date.Date().String()
	err := c.getJSON(ctx, path, nil, &day)
	if errors.Is(err, errNotFound) {
		return fitness.DayTotals{}, fitness.ErrNoData
	}
	if err != nil {
		return fitness.DayTotals{}, err
	}
	consumed, ok := day.Totals["calories"]
	if !ok {
		return fitness.DayTotals{}, fitness.ErrNoData
	}
	goal, ok := day.Goals["calories"]
	if !ok {
		goal = fitness.NoData
	}
	return fitness.DayTotals{Consumed: consumed, Goal: goal}, nil
}

// =============================================================================
// SCALE (weight)
// =============================================================================

type ScaleClient struct {
	client
	User string
}

func NewScaleClient(baseURL, user, token string, timeout time.Duration) *ScaleClient {
	return &ScaleClient{client: newClient(baseURL, token, timeout), User: user}
}

func (c *ScaleClient) Name() string { return "scale" }

func (c *ScaleClient) Authenticate(ctx context.Context) error {
	if c.User == "" {
		return fmt.Errorf("no scale user configured")
	}
	return c.getJSON(ctx, "/api/v1/session", nil, nil)
}

type measurementsResponse struct {
	Measurements map[string]decimal.Decimal `json:"measurements"`
}

func (c *ScaleClient) GetMeasurements(ctx context.Context, lowerBound generic.TimePoint) ([]fitness.WeightRecord, error) {
	var resp measurementsResponse
	path := "/api/v1/users/" + url.PathEscape(c.User) + "/measurements/weight"
	q := url.Values{"from": {lowerBound.Date().String()}}
	if err := c.getJSON(ctx, path, q, &resp); err != nil {
		return nil, err
	}

	out := make([]fitness.WeightRecord, 0, len(resp.Measurements))
	for date, lbs := range resp.Measurements {
		d, err := generic.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("measurement date %q: %w", date, err)
		}
		out = append(out, fitness.WeightRecord{Date: d, Pounds: lbs})
	}
	return out, nil
}

// =============================================================================
// ACTIVITY (runs)
// =============================================================================

// PageSize is the per_page value used when walking the activity history.
const PageSize = 200

type ActivityClient struct {
	client
}

func NewActivityClient(baseURL, token string, timeout time.Duration) *ActivityClient {
	return &ActivityClient{client: newClient(baseURL, token, timeout)}
}

func (c *ActivityClient) Name() string { return "activity" }

type athlete struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *ActivityClient) Authenticate(ctx context.Context) error {
	return c.getJSON(ctx, "/api/v3/athlete", nil, nil)
}

func (c *ActivityClient) Earliest(ctx context.Context) (time.Time, error) {
	var a athlete
	if err := c.getJSON(ctx, "/api/v3/athlete", nil, &a); err != nil {
		return time.Time{}, err
	}
	return a.CreatedAt, nil
}

type activity struct {
	Type        string    `json:"type"`
	StartDate   time.Time `json:"start_date"`
	Distance    float64   `json:"distance"`
	ElapsedTime float64   `json:"elapsed_time"`
}

// ActivitiesAfter pages through the history until an empty page.
func (c *ActivityClient) ActivitiesAfter(ctx context.Context, t time.Time) ([]fitness.Activity, error) {
	var out []fitness.Activity
	for page := 1; ; page++ {
		var batch []activity
		q := url.Values{
			"after":    {strconv.FormatInt(t.Unix(), 10)},
			"page":     {strconv.Itoa(page)},
			"per_page": {strconv.Itoa(PageSize)},
		}
		if err := c.getJSON(ctx, "/api/v3/athlete/activities", q, &batch); err != nil {
			return nil, err
		}
		for _, a := range batch {
			out = append(out, fitness.Activity{
				Type:           a.Type,
				Start:          a.StartDate,
				Distance:       a.Distance,
				ElapsedSeconds: a.ElapsedTime,
			})
		}
		if len(batch) < PageSize {
			return out, nil
		}
	}
}
