package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-insights/internal/observability"
	"github.com/i474232898/weather-insights/internal/weather"
)

const (
	DefaultForecastURL  = "https://api.open-meteo.com/v1/forecast"
	DefaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"

	forecastDailyFields = "temperature_2m_max,temperature_2m_min,precipitation_sum," +
		"relative_humidity_2m_max,wind_speed_10m_max,uv_index_max"
	geocodingCandidates = 5
)

// OpenMeteoForecast implements weather.ForecastSource for the Open-Meteo daily forecast.
type OpenMeteoForecast struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	metrics *observability.Metrics
}

func NewOpenMeteoForecast(opts ClientOptions) *OpenMeteoForecast {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultForecastURL
	}
	return &OpenMeteoForecast{
		name:    "openmeteo-forecast",
		baseURL: opts.BaseURL,
		httpCfg: newHTTPClientConfig(opts),
		circuit: newCircuitBreaker("openmeteo-forecast"),
		metrics: opts.Metrics,
	}
}

func (p *OpenMeteoForecast) Name() string {
	return p.name
}

func (p *OpenMeteoForecast) FetchForecast(ctx context.Context, lat, lon float64, days int) (_ *weather.ForecastPayload, err error) {
	defer func(started time.Time) { p.metrics.ObserveUpstream(p.name, started, err) }(time.Now())

	body, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, func(req *resty.Request) (*resty.Response, error) {
		return req.SetQueryParams(map[string]string{
			"latitude":      formatCoord(lat),
			"longitude":     formatCoord(lon),
			"daily":         forecastDailyFields,
			"timezone":      "auto",
			"forecast_days": strconv.Itoa(days),
		}).Get(p.baseURL)
	})
	if err != nil {
		return nil, err
	}

	var payload weather.ForecastPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode forecast: %w", err)
	}
	return &payload, nil
}

// OpenMeteoGeocoder implements weather.Geocoder using the Open-Meteo geocoding API.
type OpenMeteoGeocoder struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	metrics *observability.Metrics
}

func NewOpenMeteoGeocoder(opts ClientOptions) *OpenMeteoGeocoder {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultGeocodingURL
	}
	return &OpenMeteoGeocoder{
		name:    "openmeteo-geocoding",
		baseURL: opts.BaseURL,
		httpCfg: newHTTPClientConfig(opts),
		circuit: newCircuitBreaker("openmeteo-geocoding"),
		metrics: opts.Metrics,
	}
}

// Resolve looks up several candidates for city and picks the best populated place.
func (g *OpenMeteoGeocoder) Resolve(ctx context.Context, city string) (_ weather.Coordinates, err error) {
	defer func(started time.Time) { g.metrics.ObserveUpstream(g.name, started, err) }(time.Now())

	city = strings.TrimSpace(city)
	if city == "" {
		return weather.Coordinates{}, weather.ErrLocationNotFound
	}

	body, err := doRequestWithResilience(ctx, g.httpCfg, g.circuit, func(req *resty.Request) (*resty.Response, error) {
		return req.SetQueryParams(map[string]string{
			"name":     city,
			"count":    strconv.Itoa(geocodingCandidates),
			"language": "en",
			"format":   "json",
		}).Get(g.baseURL)
	})
	if err != nil {
		return weather.Coordinates{}, err
	}

	var payload struct {
		Results []struct {
			Name        string  `json:"name"`
			Latitude    float64 `json:"latitude"`
			Longitude   float64 `json:"longitude"`
			Country     string  `json:"country"`
			Admin1      string  `json:"admin1"`
			FeatureCode string  `json:"feature_code"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return weather.Coordinates{}, fmt.Errorf("decode geocoding: %w", err)
	}

	candidates := make([]weather.GeocodeCandidate, 0, len(payload.Results))
	for _, r := range payload.Results {
		candidates = append(candidates, weather.GeocodeCandidate{
			Name:        r.Name,
			Latitude:    r.Latitude,
			Longitude:   r.Longitude,
			Country:     r.Country,
			Admin1:      r.Admin1,
			FeatureCode: r.FeatureCode,
		})
	}

	best, ok := weather.PickBestMatch(candidates)
	if !ok {
		return weather.Coordinates{}, weather.ErrLocationNotFound
	}
	return best.Coordinates(), nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
