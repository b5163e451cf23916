package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-insights/internal/common"
	"github.com/i474232898/weather-insights/internal/observability"
	"github.com/i474232898/weather-insights/internal/weather"
)

// zeroResultsMessage is the error text the geocoder package returns for a
// ZERO_RESULTS status.
const zeroResultsMessage = "No results found."

// GoogleGeocoder resolves cities with the Google Geocoding API. It is used as a
// fallback when the primary geocoder finds nothing.
type GoogleGeocoder struct {
	name    string
	timeout time.Duration
	metrics *observability.Metrics
	lookup  func(geocoder.Address) (geocoder.Location, error)
	reverse func(geocoder.Location) ([]geocoder.Address, error)
}

// NewGoogleGeocoder configures the geocoder package with apiKey. The package
// keeps the key globally, so only one key is supported per process. Each
// Resolve is bounded by timeout since the package's HTTP client has none.
func NewGoogleGeocoder(apiKey string, timeout time.Duration, metrics *observability.Metrics) *GoogleGeocoder {
	geocoder.ApiKey = apiKey
	return &GoogleGeocoder{
		name:    "google-geocoding",
		timeout: timeout,
		metrics: metrics,
		lookup:  geocoder.Geocoding,
		reverse: geocoder.GeocodingReverse,
	}
}

// Resolve geocodes city and fills country and region from a best-effort reverse lookup.
func (g *GoogleGeocoder) Resolve(ctx context.Context, city string) (_ weather.Coordinates, err error) {
	defer func(started time.Time) { g.metrics.ObserveUpstream(g.name, started, err) }(time.Now())

	city = strings.TrimSpace(city)
	if city == "" {
		return weather.Coordinates{}, weather.ErrLocationNotFound
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	type result struct {
		coords weather.Coordinates
		err    error
	}
	done := make(chan result, 1)

	// The geocoder package has no context support; abandon the call on cancellation.
	go func() {
		var loc geocoder.Location
		err := guard(func() (err error) {
			loc, err = g.lookup(geocoder.Address{City: city})
			return err
		})
		if err != nil {
			if common.HasAny(err.Error(), zeroResultsMessage) {
				err = weather.ErrLocationNotFound
			}
			done <- result{err: err}
			return
		}
		if loc.Latitude == 0 && loc.Longitude == 0 {
			done <- result{err: weather.ErrLocationNotFound}
			return
		}

		coords := weather.Coordinates{
			Latitude:     loc.Latitude,
			Longitude:    loc.Longitude,
			ResolvedName: city,
		}
		var addrs []geocoder.Address
		rerr := guard(func() (err error) {
			addrs, err = g.reverse(loc)
			return err
		})
		if rerr == nil && len(addrs) > 0 {
			coords.Country = addrs[0].Country
			coords.AdminRegion = addrs[0].State
			if addrs[0].City != "" {
				coords.ResolvedName = addrs[0].City
			}
		}
		done <- result{coords: coords}
	}()

	select {
	case <-ctx.Done():
		return weather.Coordinates{}, fmt.Errorf("google geocoding %q: %w", city, ctx.Err())
	case r := <-done:
		return r.coords, r.err
	}
}

// guard runs fn and converts a panic into an error. The geocoder package indexes
// into empty result lists for some statuses (OVER_DAILY_LIMIT among them).
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("google geocoding: %v", r)
		}
	}()
	return fn()
}

// ChainGeocoder tries each geocoder in order and returns the first match.
// Upstream failures do not stop the chain; the last one is reported if no
// geocoder succeeds.
type ChainGeocoder struct {
	geocoders []weather.Geocoder
}

func NewChainGeocoder(geocoders ...weather.Geocoder) *ChainGeocoder {
	return &ChainGeocoder{geocoders: geocoders}
}

func (c *ChainGeocoder) Resolve(ctx context.Context, city string) (weather.Coordinates, error) {
	lastErr := weather.ErrLocationNotFound
	for _, g := range c.geocoders {
		coords, err := g.Resolve(ctx, city)
		if err == nil {
			return coords, nil
		}
		if !errors.Is(err, weather.ErrLocationNotFound) {
			lastErr = err
		}
	}
	return weather.Coordinates{}, lastErr
}
