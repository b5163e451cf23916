package store

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/i474232898/weather-insights/internal/weather"
)

var (
	// ErrNotFound is returned when no digest is available for a given city.
	ErrNotFound = errors.New("no insight digest for city")
)

// Digest is the derived insight bundle produced for a watched city on one run.
type Digest struct {
	ID          uuid.UUID                  `json:"id" yaml:"id"`
	City        weather.Coordinates        `json:"city" yaml:"city"`
	GeneratedAt time.Time                  `json:"generated_at" yaml:"generated_at"`
	Today       *weather.DailyRecord       `json:"today,omitempty" yaml:"today,omitempty"`
	Summary     *weather.HistoricalSummary `json:"historical_summary,omitempty" yaml:"historical_summary,omitempty"`
	Insights    []string                   `json:"insights" yaml:"insights"`
}

// NewDigest condenses an enhanced result into a digest stamped at now.
func NewDigest(result weather.EnhancedResult, now time.Time) Digest {
	d := Digest{
		ID:          uuid.New(),
		City:        result.City,
		GeneratedAt: now,
		Summary:     result.HistoricalSummary,
		Insights:    result.Insights,
	}
	if len(result.LiveForecast) > 0 {
		today := result.LiveForecast[0]
		d.Today = &today
	}
	return d
}

// DigestStore is a concurrency-safe in-memory store of recent digests per city.
type DigestStore struct {
	mu sync.RWMutex

	// key: normalized city name, value: digests oldest first
	data map[string][]Digest

	// retention configuration
	maxHistory int           // max number of digests per city
	maxAge     time.Duration // optional max age for digests

	clock clockwork.Clock
}

// NewDigestStore creates a new DigestStore with optional limits.
// If maxHistory or maxAge is <= 0, it is treated as unlimited.
func NewDigestStore(maxHistory int, maxAge time.Duration, clock clockwork.Clock) *DigestStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &DigestStore{
		data:       make(map[string][]Digest),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		clock:      clock,
	}
}

func key(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}

// Save appends a digest for city and enforces retention.
func (s *DigestStore) Save(city string, d Digest) {
	k := key(city)

	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.data[k], d)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(history) > s.maxHistory {
		history = history[len(history)-s.maxHistory:]
	}
	s.data[k] = s.pruneLocked(history)
}

// pruneLocked drops digests older than maxAge. The newest digest is always kept.
func (s *DigestStore) pruneLocked(history []Digest) []Digest {
	if s.maxAge <= 0 || len(history) == 0 {
		return history
	}
	cutoff := s.clock.Now().Add(-s.maxAge)
	i := 0
	for ; i < len(history)-1; i++ {
		if !history[i].GeneratedAt.Before(cutoff) {
			break
		}
	}
	return history[i:]
}

// Latest returns the most recent digest for city.
func (s *DigestStore) Latest(city string) (Digest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.data[key(city)]
	if len(history) == 0 {
		return Digest{}, ErrNotFound
	}
	return history[len(history)-1], nil
}

// History returns the stored digests for city, oldest first.
func (s *DigestStore) History(city string) ([]Digest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.data[key(city)]
	if len(history) == 0 {
		return nil, ErrNotFound
	}
	return append([]Digest(nil), history...), nil
}

// Len returns the total number of digests held across all cities.
func (s *DigestStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, h := range s.data {
		n += len(h)
	}
	return n
}
