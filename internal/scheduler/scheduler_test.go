package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-insights/internal/observability"
	"github.com/i474232898/weather-insights/internal/store"
	"github.com/i474232898/weather-insights/internal/weather"
)

type fakeEnhancer struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool
}

func (f *fakeEnhancer) Enhanced(ctx context.Context, req weather.EnhancedRequest) (weather.EnhancedResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req.City)
	f.mu.Unlock()

	if _, ok := ctx.Deadline(); !ok {
		return weather.EnhancedResult{}, errors.New("missing deadline")
	}
	if f.fail[req.City] {
		return weather.EnhancedResult{}, weather.ErrLocationNotFound
	}
	return weather.EnhancedResult{
		City:         weather.Coordinates{ResolvedName: req.City},
		LiveForecast: []weather.DailyRecord{{Date: "2024-06-10"}},
		Insights:     []string{"insight for " + req.City},
	}, nil
}

func TestRunOnce(t *testing.T) {
	enhancer := &fakeEnhancer{fail: map[string]bool{"Atlantis": true}}
	digests := store.NewDigestStore(10, 0, nil)
	metrics := observability.NewMetricsForTesting()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC))

	s := New([]string{"Paris", "Atlantis", "Tokyo"}, time.Hour, enhancer, digests,
		slog.New(slog.NewTextHandler(io.Discard, nil)), metrics)
	s.clock = clock

	stored := s.RunOnce(context.Background())
	assert.Equal(t, 2, stored)
	assert.ElementsMatch(t, []string{"Paris", "Atlantis", "Tokyo"}, enhancer.calls)

	d, err := digests.Latest("tokyo")
	require.NoError(t, err)
	assert.Equal(t, []string{"insight for Tokyo"}, d.Insights)
	assert.Equal(t, clock.Now(), d.GeneratedAt)

	_, err = digests.Latest("Atlantis")
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.DigestRuns.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.DigestRuns.WithLabelValues("error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.DigestsStored))
}

func TestStart_NoCities(t *testing.T) {
	s := New(nil, time.Hour, &fakeEnhancer{}, store.NewDigestStore(0, 0, nil), nil, nil)
	require.NoError(t, s.Start())
	s.Stop()
}
