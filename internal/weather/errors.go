package weather

import "errors"

var (
	// ErrLocationNotFound is returned when a city cannot be geocoded.
	ErrLocationNotFound = errors.New("location not found")
	// ErrUpstreamUnavailable wraps failures of a required upstream call.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrNoData is returned when normalization leaves no usable day.
	ErrNoData = errors.New("no weather data available")
	// ErrMalformedPayload marks a provider payload without its expected structure.
	ErrMalformedPayload = errors.New("malformed provider payload")
	// ErrInvalidDate is returned for dates not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("invalid date format; use YYYY-MM-DD")
)
