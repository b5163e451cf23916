package weather

import "math"

// Summarize reduces pooled historical records into mean/min/max statistics.
// NaN fields are skipped per series. It returns nil when no temperature value
// remains: an empty pool has no summary, which is not the same as a zero one.
func Summarize(records []DailyRecord) *HistoricalSummary {
	var temps, precips, humidities []float64
	for _, r := range records {
		if !math.IsNaN(r.Temperature.Avg) {
			temps = append(temps, r.Temperature.Avg)
		}
		if !math.IsNaN(r.Precipitation) {
			precips = append(precips, r.Precipitation)
		}
		if !math.IsNaN(r.Humidity) {
			humidities = append(humidities, r.Humidity)
		}
	}

	if len(temps) == 0 {
		return nil
	}

	lo, hi := temps[0], temps[0]
	for _, t := range temps[1:] {
		lo = math.Min(lo, t)
		hi = math.Max(hi, t)
	}

	return &HistoricalSummary{
		Temperature: Temperature{
			Avg: mean(temps),
			Max: hi,
			Min: lo,
		},
		Precipitation: mean(precips),
		Humidity:      mean(humidities),
	}
}

// mean returns the arithmetic mean, or 0 for an empty slice.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
