package weather

import (
	"context"
	"strings"
	"time"
)

// Geocoder resolves a city name to coordinates. Implementations return
// ErrLocationNotFound when no candidate matches.
type Geocoder interface {
	Resolve(ctx context.Context, city string) (Coordinates, error)
}

// ForecastSource abstracts the live short-range forecast provider.
type ForecastSource interface {
	Name() string
	FetchForecast(ctx context.Context, lat, lon float64, days int) (*ForecastPayload, error)
}

// ArchiveSource abstracts the long-range historical climate archive.
// Start and end are inclusive calendar days.
type ArchiveSource interface {
	Name() string
	FetchArchive(ctx context.Context, lat, lon float64, start, end time.Time) (*ArchivePayload, error)
}

// GeocodeCandidate is one match returned by a geocoding provider.
type GeocodeCandidate struct {
	Name        string
	Latitude    float64
	Longitude   float64
	Country     string
	Admin1      string
	FeatureCode string
}

// Coordinates converts the candidate to the request-scoped coordinates value.
func (c GeocodeCandidate) Coordinates() Coordinates {
	return Coordinates{
		Latitude:     c.Latitude,
		Longitude:    c.Longitude,
		ResolvedName: c.Name,
		Country:      c.Country,
		AdminRegion:  c.Admin1,
	}
}

// PickBestMatch prefers the first populated place (GeoNames PPL* feature codes)
// among ambiguous candidates, falling back to the first candidate.
func PickBestMatch(candidates []GeocodeCandidate) (GeocodeCandidate, bool) {
	if len(candidates) == 0 {
		return GeocodeCandidate{}, false
	}
	for _, c := range candidates {
		if strings.HasPrefix(c.FeatureCode, "PPL") {
			return c, true
		}
	}
	return candidates[0], true
}
