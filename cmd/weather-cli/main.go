package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/i474232898/weather-insights/internal/bootstrap"
	"github.com/i474232898/weather-insights/internal/cli"
	"github.com/i474232898/weather-insights/internal/config"
	"github.com/i474232898/weather-insights/internal/observability"
	"github.com/i474232898/weather-insights/internal/weather"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// Keep stdout for results; diagnostics go to stderr in text form.
	log := observability.NewLoggerTo(os.Stderr, cfg.LogLevel, "text")
	service := bootstrap.NewService(cfg, log, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.New(service).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, weather.ErrLocationNotFound), errors.Is(err, weather.ErrNoData):
		return 3
	case errors.Is(err, weather.ErrUpstreamUnavailable):
		return 4
	default:
		return 1
	}
}
