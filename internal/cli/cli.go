package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/i474232898/weather-insights/internal/weather"
)

// Service is the set of weather operations exposed on the command line.
type Service interface {
	Day(ctx context.Context, city, date string) (weather.DayResult, error)
	Recent(ctx context.Context, city string) (weather.RecentResult, error)
	Enhanced(ctx context.Context, req weather.EnhancedRequest) (weather.EnhancedResult, error)
	Insights(ctx context.Context, city string) (weather.InsightsResult, error)
}

// New builds the root command with one subcommand per operation.
func New(service Service) *cobra.Command {
	var output string

	root := &cobra.Command{
		Use:           "weather-cli",
		Short:         "Compare live forecasts with multi-year historical weather",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if output != "json" && output != "yaml" {
				return fmt.Errorf("unsupported output %q; use json or yaml", output)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&output, "output", "o", "json", "output format: json or yaml")

	emit := func(cmd *cobra.Command, v any) error {
		return render(cmd, output, v)
	}

	var (
		days int
		date string
	)
	enhanced := &cobra.Command{
		Use:   "enhanced <city>",
		Short: "Live forecast with same-season history from prior years",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 || days > 16 {
				return fmt.Errorf("--days must be between 1 and 16")
			}
			result, err := service.Enhanced(cmd.Context(), weather.EnhancedRequest{City: args[0], Days: days, Date: date})
			if err != nil {
				return err
			}
			return emit(cmd, result)
		},
	}
	enhanced.Flags().IntVar(&days, "days", 7, "forecast days (1-16)")
	enhanced.Flags().StringVar(&date, "date", "", "anchor date YYYY-MM-DD (default today)")

	insights := &cobra.Command{
		Use:   "insights <city>",
		Short: "Today's forecast against recent years",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := service.Insights(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return emit(cmd, result)
		},
	}

	var dayDate string
	day := &cobra.Command{
		Use:   "day <city>",
		Short: "Archived weather for one day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := service.Day(cmd.Context(), args[0], dayDate)
			if err != nil {
				return err
			}
			return emit(cmd, result)
		},
	}
	day.Flags().StringVar(&dayDate, "date", "", "date YYYY-MM-DD (default today)")

	recent := &cobra.Command{
		Use:   "recent <city>",
		Short: "Archived weather for the last week",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := service.Recent(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return emit(cmd, result)
		},
	}

	root.AddCommand(enhanced, insights, day, recent)
	return root
}

func render(cmd *cobra.Command, output string, v any) error {
	w := cmd.OutOrStdout()
	if output == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
