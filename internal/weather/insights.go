package weather

import (
	"fmt"
	"math"
)

// Deviation thresholds for the baseline comparison.
const (
	notableTempDiff     = 2.0  // °C
	notablePrecipDiff   = 1.0  // mm
	notableHumidityDiff = 10.0 // %
)

// Stricter thresholds for the trend anomaly pass.
const (
	anomalyTempDiff   = 3.0 // °C
	anomalyPrecipDiff = 2.0 // mm
)

// GenerateInsights compares today's live record against the historical summary
// built from historicalCount records. When no summary is available it describes
// the live window instead. The result is never nil; an empty live window yields
// an empty list.
func GenerateInsights(live []DailyRecord, summary *HistoricalSummary, historicalCount int) []string {
	insights := []string{}
	if len(live) == 0 {
		return insights
	}

	if summary == nil {
		return append(insights, forecastWindowInsights(live)...)
	}

	today := live[0]
	tempDiff := today.Temperature.Avg - summary.Temperature.Avg
	precipDiff := today.Precipitation - summary.Precipitation
	humidityDiff := today.Humidity - summary.Humidity

	insights = append(insights,
		fmt.Sprintf("Temperature today vs %d-day historical avg: %+.1f°C", historicalCount, tempDiff),
		fmt.Sprintf("Precipitation today vs historical avg: %+.1fmm", precipDiff),
		fmt.Sprintf("Humidity today vs historical avg: %+.1f%%", humidityDiff),
	)

	if math.Abs(tempDiff) > notableTempDiff {
		insights = append(insights, fmt.Sprintf("%s than average by %.1f°C",
			pick(tempDiff > 0, "Significantly warmer", "Significantly cooler"), math.Abs(tempDiff)))
	}
	if math.Abs(precipDiff) > notablePrecipDiff {
		insights = append(insights, fmt.Sprintf("%s than average by %.1fmm",
			pick(precipDiff > 0, "Notably wetter", "Notably drier"), math.Abs(precipDiff)))
	}
	if math.Abs(humidityDiff) > notableHumidityDiff {
		insights = append(insights, fmt.Sprintf("%s than average by %.1f%%",
			pick(humidityDiff > 0, "Much more humid", "Much less humid"), math.Abs(humidityDiff)))
	}
	return insights
}

// forecastWindowInsights summarizes the live window: temperature range, total
// precipitation and peak wind in km/h.
func forecastWindowInsights(live []DailyRecord) []string {
	lo, hi := live[0].Temperature.Avg, live[0].Temperature.Avg
	var totalPrecip, peakWind float64
	for i, d := range live {
		lo = math.Min(lo, d.Temperature.Avg)
		hi = math.Max(hi, d.Temperature.Avg)
		totalPrecip += d.Precipitation
		if i == 0 || d.WindSpeed > peakWind {
			peakWind = d.WindSpeed
		}
	}

	return []string{
		fmt.Sprintf("Forecast temperature range this week: %.1f°C to %.1f°C", lo, hi),
		fmt.Sprintf("Total expected precipitation over the period: %.1fmm", totalPrecip),
		fmt.Sprintf("Peak wind speed expected: %.0f km/h", peakWind*kmhPerMS),
	}
}

// TrendAnomalies flags large departures of today from the historical summary.
// It is an additional pass with stricter thresholds than GenerateInsights.
func TrendAnomalies(today DailyRecord, summary *HistoricalSummary) []string {
	if summary == nil {
		return nil
	}

	var anomalies []string
	if d := today.Temperature.Avg - summary.Temperature.Avg; math.Abs(d) > anomalyTempDiff {
		anomalies = append(anomalies, fmt.Sprintf("Significant temperature anomaly: %+.1f°C from historical average", d))
	}
	if d := today.Precipitation - summary.Precipitation; math.Abs(d) > anomalyPrecipDiff {
		anomalies = append(anomalies, fmt.Sprintf("Notable precipitation difference: %+.1fmm from historical average", d))
	}
	return anomalies
}

func pick(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}
