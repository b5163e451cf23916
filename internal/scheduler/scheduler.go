package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/jonboulle/clockwork"

	"github.com/i474232898/weather-insights/internal/observability"
	"github.com/i474232898/weather-insights/internal/store"
	"github.com/i474232898/weather-insights/internal/weather"
)

// cityTimeout bounds one city's enhanced run, history fan-out included.
const cityTimeout = 2 * time.Minute

// Enhancer produces the enhanced bundle for a city.
type Enhancer interface {
	Enhanced(ctx context.Context, req weather.EnhancedRequest) (weather.EnhancedResult, error)
}

// Scheduler periodically builds insight digests for the watched cities.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   Enhancer
	store     *store.DigestStore
	cities    []string
	interval  time.Duration

	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a new Scheduler.
func New(cities []string, interval time.Duration, service Enhancer, digests *store.DigestStore, logger *slog.Logger, metrics *observability.Metrics) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		store:     digests,
		cities:    cities,
		interval:  interval,
		clock:     clockwork.NewRealClock(),
		logger:    logger.With("component", "digest-scheduler"),
		metrics:   metrics,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run happens immediately.
func (s *Scheduler) Start() error {
	if len(s.cities) == 0 {
		s.logger.Info("no watched cities configured; nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval < time.Minute {
		interval = time.Hour
	}

	_, err := s.scheduler.Every(interval).Do(func() {
		s.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("digest job scheduled", "interval", interval.String(), "cities", len(s.cities))
	return nil
}

// RunOnce builds a digest for every watched city concurrently and returns the
// number of digests stored. Failed cities are logged and skipped.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	s.logger.Info("running digest job")

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		stored int
	)
	for _, city := range s.cities {
		city := city
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(ctx, cityTimeout)
			defer cancel()

			result, err := s.service.Enhanced(ctx, weather.EnhancedRequest{City: city})
			if err != nil {
				s.logger.Warn("digest failed", "city", city, "error", err)
				s.metrics.DigestRun(err)
				return
			}

			s.store.Save(city, store.NewDigest(result, s.clock.Now()))
			s.metrics.DigestRun(nil)

			mu.Lock()
			stored++
			mu.Unlock()
		}()
	}
	wg.Wait()

	s.metrics.SetDigestsStored(s.store.Len())
	s.logger.Info("completed digest job", "stored", stored, "cities", len(s.cities))
	return stored
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
