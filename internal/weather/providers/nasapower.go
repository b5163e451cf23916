package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-insights/internal/observability"
	"github.com/i474232898/weather-insights/internal/weather"
)

const DefaultArchiveURL = "https://power.larc.nasa.gov/api/temporal/daily/point"

// NASAPowerArchive implements weather.ArchiveSource for the NASA POWER daily point API.
type NASAPowerArchive struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	metrics *observability.Metrics
}

func NewNASAPowerArchive(opts ClientOptions) *NASAPowerArchive {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultArchiveURL
	}
	return &NASAPowerArchive{
		name:    "nasa-power",
		baseURL: opts.BaseURL,
		httpCfg: newHTTPClientConfig(opts),
		circuit: newCircuitBreaker("nasa-power"),
		metrics: opts.Metrics,
	}
}

func (p *NASAPowerArchive) Name() string {
	return p.name
}

// FetchArchive requests the daily parameter tables between start and end,
// which the API takes as compact YYYYMMDD values.
func (p *NASAPowerArchive) FetchArchive(ctx context.Context, lat, lon float64, start, end time.Time) (_ *weather.ArchivePayload, err error) {
	defer func(started time.Time) { p.metrics.ObserveUpstream(p.name, started, err) }(time.Now())

	body, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, func(req *resty.Request) (*resty.Response, error) {
		return req.SetQueryParams(map[string]string{
			"parameters": strings.Join(weather.ArchiveParameters, ","),
			"community":  "RE",
			"longitude":  formatCoord(lon),
			"latitude":   formatCoord(lat),
			"start":      weather.FormatArchiveDate(start),
			"end":        weather.FormatArchiveDate(end),
			"format":     "JSON",
		}).Get(p.baseURL)
	})
	if err != nil {
		return nil, err
	}

	var payload weather.ArchivePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode archive: %w", err)
	}
	return &payload, nil
}
