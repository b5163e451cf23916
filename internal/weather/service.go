package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/i474232898/weather-insights/internal/observability"
)

// Options tunes the historical sampling and fan-out of a Service.
type Options struct {
	// HistoryYears is the look-back count for the enhanced workflow.
	HistoryYears int
	// InsightYears is the look-back count for the insights workflow.
	InsightYears int
	// WindowDays is the length of each historical window.
	WindowDays int
	// MaxConcurrentFetches caps in-flight archive requests per call.
	MaxConcurrentFetches int
	// ArchiveTimeout bounds each archive request.
	ArchiveTimeout time.Duration
	// DefaultForecastDays is used when a request does not name a day count.
	DefaultForecastDays int

	Clock   clockwork.Clock
	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// DefaultOptions returns the defaults used when a field is left zero.
func DefaultOptions() Options {
	return Options{
		HistoryYears:         10,
		InsightYears:         3,
		WindowDays:           7,
		MaxConcurrentFetches: 4,
		ArchiveTimeout:       30 * time.Second,
		DefaultForecastDays:  7,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.HistoryYears <= 0 {
		o.HistoryYears = d.HistoryYears
	}
	if o.InsightYears <= 0 {
		o.InsightYears = d.InsightYears
	}
	if o.WindowDays <= 0 {
		o.WindowDays = d.WindowDays
	}
	if o.MaxConcurrentFetches <= 0 {
		o.MaxConcurrentFetches = d.MaxConcurrentFetches
	}
	if o.ArchiveTimeout <= 0 {
		o.ArchiveTimeout = d.ArchiveTimeout
	}
	if o.DefaultForecastDays <= 0 {
		o.DefaultForecastDays = d.DefaultForecastDays
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Service combines geocoding, the live forecast and the historical archive into
// comparative results. It holds no request state and is safe for concurrent use.
type Service struct {
	geocoder Geocoder
	forecast ForecastSource
	archive  ArchiveSource
	opts     Options
	logger   *slog.Logger
}

// NewService creates a new Service.
func NewService(geocoder Geocoder, forecast ForecastSource, archive ArchiveSource, opts Options) *Service {
	opts = opts.withDefaults()
	return &Service{
		geocoder: geocoder,
		forecast: forecast,
		archive:  archive,
		opts:     opts,
		logger:   opts.Logger,
	}
}

// EnhancedRequest selects the city, forecast length and optional anchor date.
type EnhancedRequest struct {
	City string
	Days int
	Date string // YYYY-MM-DD; empty means today
}

// Enhanced returns the live forecast, the pooled same-season history from prior
// years, its summary and the derived insights. A failed or empty live forecast
// is fatal; historical windows that fail are dropped.
func (s *Service) Enhanced(ctx context.Context, req EnhancedRequest) (EnhancedResult, error) {
	anchor, err := s.anchor(req.Date)
	if err != nil {
		return EnhancedResult{}, err
	}
	days := req.Days
	if days <= 0 {
		days = s.opts.DefaultForecastDays
	}

	coords, err := s.resolve(ctx, req.City)
	if err != nil {
		return EnhancedResult{}, err
	}

	payload, live, err := s.liveForecast(ctx, coords, days)
	if err != nil {
		return EnhancedResult{}, err
	}

	historical := s.collectHistory(ctx, req.City, coords, BuildWindows(anchor, s.opts.HistoryYears, s.opts.WindowDays))
	summary := Summarize(historical)

	result := EnhancedResult{
		City:                 coords,
		LiveForecast:         live,
		HistoricalSummary:    summary,
		Insights:             s.insights(live, summary, len(historical)),
		Timezone:             payload.Timezone,
		TimezoneAbbreviation: payload.TimezoneAbbreviation,
		UTCOffsetSeconds:     payload.UTCOffsetSeconds,
		DataSources:          DefaultDataSources,
	}
	if len(historical) > 0 {
		result.HistoricalData = historical
	}
	return result, nil
}

// Insights compares today's forecast with InsightYears of same-season history,
// adding the stricter trend anomaly pass on top of the baseline comparison.
func (s *Service) Insights(ctx context.Context, city string) (InsightsResult, error) {
	today := Truncate(s.opts.Clock.Now())

	coords, err := s.resolve(ctx, city)
	if err != nil {
		return InsightsResult{}, err
	}

	_, live, err := s.liveForecast(ctx, coords, 1)
	if err != nil {
		return InsightsResult{}, err
	}

	historical := s.collectHistory(ctx, city, coords, BuildWindows(today, s.opts.InsightYears, s.opts.WindowDays))
	summary := Summarize(historical)

	result := InsightsResult{
		City:              coords,
		HistoricalAverage: summary,
		Insights:          s.insights(live, summary, len(historical)),
		AnalysisPeriod:    fmt.Sprintf("Comparing with %d years of NASA historical data", s.opts.InsightYears),
	}
	current := live[0]
	result.CurrentWeather = &current
	result.Insights = append(result.Insights, TrendAnomalies(current, summary)...)
	return result, nil
}

// Day returns the archived record for a single date (today when date is empty).
func (s *Service) Day(ctx context.Context, city, date string) (DayResult, error) {
	day, err := s.anchor(date)
	if err != nil {
		return DayResult{}, err
	}

	coords, err := s.resolve(ctx, city)
	if err != nil {
		return DayResult{}, err
	}

	records, err := s.archiveRange(ctx, coords, DateRange{Start: day, End: day})
	if err != nil {
		return DayResult{}, err
	}
	if len(records) == 0 {
		return DayResult{}, fmt.Errorf("%w for %s on %s", ErrNoData, city, day.Format(DateLayout))
	}

	return DayResult{
		City:    coords,
		Date:    day.Format(DateLayout),
		Weather: records[0],
	}, nil
}

// Recent returns the archived days of the last WindowDays, ending today.
func (s *Service) Recent(ctx context.Context, city string) (RecentResult, error) {
	end := Truncate(s.opts.Clock.Now())
	start := end.AddDate(0, 0, -(s.opts.WindowDays - 1))

	coords, err := s.resolve(ctx, city)
	if err != nil {
		return RecentResult{}, err
	}

	records, err := s.archiveRange(ctx, coords, DateRange{Start: start, End: end})
	if err != nil {
		return RecentResult{}, err
	}
	if len(records) == 0 {
		return RecentResult{}, fmt.Errorf("%w for %s", ErrNoData, city)
	}

	return RecentResult{City: coords, Forecast: records}, nil
}

// anchor parses date, or returns today's date when it is empty.
func (s *Service) anchor(date string) (time.Time, error) {
	if date == "" {
		return Truncate(s.opts.Clock.Now()), nil
	}
	return ParseDate(date)
}

func (s *Service) resolve(ctx context.Context, city string) (Coordinates, error) {
	coords, err := s.geocoder.Resolve(ctx, city)
	if err != nil {
		if errors.Is(err, ErrLocationNotFound) {
			return Coordinates{}, fmt.Errorf("could not find coordinates for city %q: %w", city, err)
		}
		return Coordinates{}, fmt.Errorf("%w: geocoding %q: %w", ErrUpstreamUnavailable, city, err)
	}
	return coords, nil
}

func (s *Service) liveForecast(ctx context.Context, coords Coordinates, days int) (*ForecastPayload, []DailyRecord, error) {
	payload, err := s.forecast.FetchForecast(ctx, coords.Latitude, coords.Longitude, days)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s forecast: %w", ErrUpstreamUnavailable, s.forecast.Name(), err)
	}
	live, err := payload.Normalize()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s forecast: %w", ErrUpstreamUnavailable, s.forecast.Name(), err)
	}
	if len(live) == 0 {
		return nil, nil, fmt.Errorf("%w: %s forecast has no usable days", ErrNoData, s.forecast.Name())
	}
	return payload, live, nil
}

// archiveRange fetches and normalizes one range where the archive is the only
// data source, so a failed fetch is fatal and a malformed payload means no data.
func (s *Service) archiveRange(ctx context.Context, coords Coordinates, r DateRange) ([]DailyRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.ArchiveTimeout)
	defer cancel()

	payload, err := s.archive.FetchArchive(ctx, coords.Latitude, coords.Longitude, r.Start, r.End)
	if err != nil {
		return nil, fmt.Errorf("%w: %s archive: %w", ErrUpstreamUnavailable, s.archive.Name(), err)
	}
	records, err := payload.Normalize()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoData, err)
	}
	return records, nil
}

// collectHistory fetches every window concurrently, at most MaxConcurrentFetches
// at a time, and pools the records in window order. Failed or empty windows are
// logged and skipped.
func (s *Service) collectHistory(ctx context.Context, city string, coords Coordinates, windows []DateRange) []DailyRecord {
	var (
		wg      sync.WaitGroup
		results = make([][]DailyRecord, len(windows))
		sem     = make(chan struct{}, s.opts.MaxConcurrentFetches)
	)

	for i, w := range windows {
		i, w := i, w
		wg.Add(1)
		go func() {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				s.opts.Metrics.HistoricalWindow("failed")
				return
			}

			results[i] = s.fetchWindow(ctx, city, coords, w)
		}()
	}
	wg.Wait()

	var pooled []DailyRecord
	for _, r := range results {
		pooled = append(pooled, r...)
	}
	return pooled
}

func (s *Service) fetchWindow(ctx context.Context, city string, coords Coordinates, w DateRange) []DailyRecord {
	ctx, cancel := context.WithTimeout(ctx, s.opts.ArchiveTimeout)
	defer cancel()

	start, end := w.Start.Format(DateLayout), w.End.Format(DateLayout)

	payload, err := s.archive.FetchArchive(ctx, coords.Latitude, coords.Longitude, w.Start, w.End)
	if err != nil {
		s.logger.Warn("historical window unavailable", "city", city, "start", start, "end", end, "error", err)
		s.opts.Metrics.HistoricalWindow("failed")
		return nil
	}

	records, err := payload.Normalize()
	if err != nil || len(records) == 0 {
		s.logger.Warn("historical window has no usable days", "city", city, "start", start, "end", end, "error", err)
		s.opts.Metrics.HistoricalWindow("empty")
		return nil
	}

	s.opts.Metrics.HistoricalWindow("ok")
	return records
}

func (s *Service) insights(live []DailyRecord, summary *HistoricalSummary, historicalCount int) []string {
	if summary != nil {
		s.opts.Metrics.Insights("historical")
	} else {
		s.opts.Metrics.Insights("forecast")
	}
	return GenerateInsights(live, summary, historicalCount)
}
