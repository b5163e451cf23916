package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/i474232898/weather-insights/internal/common"
	"github.com/i474232898/weather-insights/internal/weather/providers"
)

var validate = validator.New()

type AppConfig struct {
	Port      string `validate:"required,numeric"`
	LogLevel  string `validate:"oneof=debug info warn warning error"`
	LogFormat string `validate:"oneof=json text"`

	// Upstream endpoints and per-call timeouts.
	GeocodingURL     string        `validate:"required,url"`
	ForecastURL      string        `validate:"required,url"`
	ArchiveURL       string        `validate:"required,url"`
	GeocodingTimeout time.Duration `validate:"gt=0"`
	ForecastTimeout  time.Duration `validate:"gt=0"`
	ArchiveTimeout   time.Duration `validate:"gt=0"`

	// UpstreamMaxRetries applies to geocoding and the live forecast only.
	UpstreamMaxRetries int `validate:"gte=0,lte=10"`

	// Optional Google fallback geocoder.
	GoogleGeocoderAPIKey string

	// Historical sampling.
	HistoryYears         int `validate:"gte=1,lte=40"`
	HistoryWindowDays    int `validate:"gte=1,lte=31"`
	InsightYears         int `validate:"gte=1,lte=40"`
	MaxConcurrentFetches int `validate:"gte=1,lte=64"`

	// Digest job.
	DigestInterval time.Duration `validate:"gte=1m"`
	WatchCities    []string      `validate:"dive,required"`

	// In-memory digest retention.
	StoreMaxHistory int           `validate:"gte=0"` // digests per city (0 = unlimited)
	StoreMaxAge     time.Duration `validate:"gte=0"` // 0 = unlimited

	ShutdownTimeout time.Duration `validate:"gt=0"`
}

// watchlist is the layout of WATCHLIST_FILE.
type watchlist struct {
	Cities []string `yaml:"cities"`
}

// Load reads configuration from the environment (and an optional .env file)
// with sensible defaults, then validates it.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}
	cfg := &AppConfig{}
	var err error

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.LogFormat = getenvDefault("LOG_FORMAT", "json")

	cfg.GeocodingURL = getenvDefault("GEOCODING_URL", providers.DefaultGeocodingURL)
	cfg.ForecastURL = getenvDefault("FORECAST_URL", providers.DefaultForecastURL)
	cfg.ArchiveURL = getenvDefault("ARCHIVE_URL", providers.DefaultArchiveURL)

	if cfg.GeocodingTimeout, err = getenvDuration("GEOCODING_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.ForecastTimeout, err = getenvDuration("FORECAST_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.ArchiveTimeout, err = getenvDuration("ARCHIVE_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	cfg.UpstreamMaxRetries = getenvInt("UPSTREAM_MAX_RETRIES", 2)
	cfg.GoogleGeocoderAPIKey = os.Getenv("GOOGLE_GEOCODER_API_KEY")

	cfg.HistoryYears = getenvInt("HISTORY_YEARS", 10)
	cfg.HistoryWindowDays = getenvInt("HISTORY_WINDOW_DAYS", 7)
	cfg.InsightYears = getenvInt("INSIGHT_YEARS", 3)
	cfg.MaxConcurrentFetches = getenvInt("MAX_CONCURRENT_FETCHES", 4)

	if cfg.DigestInterval, err = getenvDuration("DIGEST_INTERVAL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.WatchCities, err = loadWatchCities(); err != nil {
		return nil, err
	}

	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 48) // two days of hourly digests
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", 48*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getenvDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadWatchCities merges WATCH_CITIES with the cities listed in WATCHLIST_FILE.
func loadWatchCities() ([]string, error) {
	list := os.Getenv("WATCH_CITIES")

	if path := os.Getenv("WATCHLIST_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read WATCHLIST_FILE: %w", err)
		}
		var wl watchlist
		if err := yaml.Unmarshal(data, &wl); err != nil {
			return nil, fmt.Errorf("parse WATCHLIST_FILE: %w", err)
		}
		for _, c := range wl.Cities {
			list += "," + c
		}
	}
	return common.SplitList(list), nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
