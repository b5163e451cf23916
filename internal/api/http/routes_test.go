package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-insights/internal/store"
	"github.com/i474232898/weather-insights/internal/weather"
)

type fakeService struct {
	err     error
	lastReq weather.EnhancedRequest
	calls   int
}

func (f *fakeService) Day(_ context.Context, city, date string) (weather.DayResult, error) {
	f.calls++
	if f.err != nil {
		return weather.DayResult{}, f.err
	}
	return weather.DayResult{City: weather.Coordinates{ResolvedName: city}, Date: date}, nil
}

func (f *fakeService) Recent(_ context.Context, city string) (weather.RecentResult, error) {
	f.calls++
	if f.err != nil {
		return weather.RecentResult{}, f.err
	}
	return weather.RecentResult{City: weather.Coordinates{ResolvedName: city}}, nil
}

func (f *fakeService) Enhanced(_ context.Context, req weather.EnhancedRequest) (weather.EnhancedResult, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return weather.EnhancedResult{}, f.err
	}
	return weather.EnhancedResult{
		City:        weather.Coordinates{ResolvedName: req.City},
		Insights:    []string{"Forecast temperature range this week: 18.0°C to 21.0°C"},
		DataSources: weather.DefaultDataSources,
	}, nil
}

func (f *fakeService) Insights(_ context.Context, city string) (weather.InsightsResult, error) {
	f.calls++
	if f.err != nil {
		return weather.InsightsResult{}, f.err
	}
	return weather.InsightsResult{City: weather.Coordinates{ResolvedName: city}, Insights: []string{}}, nil
}

type fakeDigests map[string][]store.Digest

func (f fakeDigests) Latest(city string) (store.Digest, error) {
	h, err := f.History(city)
	if err != nil {
		return store.Digest{}, err
	}
	return h[len(h)-1], nil
}

func (f fakeDigests) History(city string) ([]store.Digest, error) {
	h, ok := f[city]
	if !ok || len(h) == 0 {
		return nil, store.ErrNotFound
	}
	return h, nil
}

func newTestApp(svc WeatherService, digests DigestReader) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterRoutes(app, svc, digests)
	return app
}

func do(t *testing.T, app *fiber.App, target string) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	return resp.StatusCode, body
}

func TestEnhanced(t *testing.T) {
	svc := &fakeService{}
	app := newTestApp(svc, fakeDigests{})

	code, body := do(t, app, "/api/v1/weather/enhanced?city=Tokyo&days=3&date=2024-02-29")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, weather.EnhancedRequest{City: "Tokyo", Days: 3, Date: "2024-02-29"}, svc.lastReq)
	assert.Equal(t, "Tokyo", body["city"].(map[string]any)["name"])
	assert.NotEmpty(t, body["insights"])
}

func TestEnhanced_DefaultDays(t *testing.T) {
	svc := &fakeService{}
	app := newTestApp(svc, fakeDigests{})

	code, _ := do(t, app, "/api/v1/weather/enhanced?city=Tokyo")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 7, svc.lastReq.Days)
}

// TestEnhancedValidation verifies that bad input is rejected before the
// service is called.
func TestEnhancedValidation(t *testing.T) {
	targets := []string{
		"/api/v1/weather/enhanced",
		"/api/v1/weather/enhanced?city=%20%20",
		"/api/v1/weather/enhanced?city=Tokyo&days=0",
		"/api/v1/weather/enhanced?city=Tokyo&days=17",
		"/api/v1/weather/enhanced?city=Tokyo&days=week",
		"/api/v1/weather/enhanced?city=Tokyo&date=2024-13-01",
		"/api/v1/weather/enhanced?city=Tokyo&date=15/01/2024",
	}
	for _, target := range targets {
		t.Run(target, func(t *testing.T) {
			svc := &fakeService{}
			code, body := do(t, newTestApp(svc, fakeDigests{}), target)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, true, body["error"])
			assert.Zero(t, svc.calls)
		})
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("could not find coordinates for city %q: %w", "Atlantis", weather.ErrLocationNotFound), http.StatusNotFound},
		{fmt.Errorf("%w for Tokyo", weather.ErrNoData), http.StatusNotFound},
		{fmt.Errorf("%w: forecast: boom", weather.ErrUpstreamUnavailable), http.StatusBadGateway},
		{weather.ErrInvalidDate, http.StatusBadRequest},
		{fmt.Errorf("unexpected"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			app := newTestApp(&fakeService{err: tt.err}, fakeDigests{})
			for _, target := range []string{
				"/api/v1/weather?city=Tokyo",
				"/api/v1/weather/recent?city=Tokyo",
				"/api/v1/weather/enhanced?city=Tokyo",
				"/api/v1/weather/insights?city=Tokyo",
			} {
				code, body := do(t, app, target)
				assert.Equal(t, tt.code, code, target)
				assert.Equal(t, true, body["error"])
				assert.NotEmpty(t, body["message"])
			}
		})
	}
}

func TestDay(t *testing.T) {
	app := newTestApp(&fakeService{}, fakeDigests{})

	code, body := do(t, app, "/api/v1/weather?city=Paris&date=2024-01-15")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "2024-01-15", body["date"])

	code, _ = do(t, app, "/api/v1/weather?city=Paris&date=yesterday")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, app, "/api/v1/weather")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRecentAndInsights(t *testing.T) {
	app := newTestApp(&fakeService{}, fakeDigests{})

	code, body := do(t, app, "/api/v1/weather/recent?city=Lima")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Lima", body["city"].(map[string]any)["name"])

	code, body = do(t, app, "/api/v1/weather/insights?city=Lima")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{}, body["insights"])
}

func TestDigest(t *testing.T) {
	digests := fakeDigests{"Oslo": {
		{City: weather.Coordinates{ResolvedName: "Oslo"}, Insights: []string{"old"}},
		{City: weather.Coordinates{ResolvedName: "Oslo"}, Insights: []string{"a"}},
	}}
	app := newTestApp(&fakeService{}, digests)

	code, body := do(t, app, "/api/v1/weather/digest?city=Oslo")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{"a"}, body["insights"])

	code, body = do(t, app, "/api/v1/weather/digest?city=Bergen")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, store.ErrNotFound.Error(), body["message"])

	code, body = do(t, app, "/api/v1/weather/digest?city=Oslo&history=true")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Oslo", body["city"])
	require.Len(t, body["digests"], 2)
	assert.Equal(t, []any{"old"}, body["digests"].([]any)[0].(map[string]any)["insights"])

	code, _ = do(t, app, "/api/v1/weather/digest?city=Bergen&history=true")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, app, "/api/v1/weather/digest?city=Oslo&history=maybe")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHealthAndIndex(t *testing.T) {
	app := newTestApp(&fakeService{}, fakeDigests{})

	for _, target := range []string{"/health", "/api/health"} {
		code, body := do(t, app, target)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "ok", body["status"])
	}

	code, body := do(t, app, "/")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body["endpoints"], "/api/v1/weather/enhanced")
}
