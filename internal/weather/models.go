package weather

import (
	"time"
)

// Condition is the qualitative label derived from precipitation and solar radiation.
type Condition string

const (
	ConditionRainy        Condition = "Rainy"
	ConditionLightRain    Condition = "Light Rain"
	ConditionCloudy       Condition = "Cloudy"
	ConditionSunny        Condition = "Sunny"
	ConditionPartlyCloudy Condition = "Partly Cloudy"
)

// DateLayout is the canonical date format used by every DailyRecord.
const DateLayout = "2006-01-02"

// Temperature holds daily temperature statistics in degrees Celsius.
type Temperature struct {
	Avg float64 `json:"avg" yaml:"avg"`
	Max float64 `json:"max" yaml:"max"`
	Min float64 `json:"min" yaml:"min"`
}

// AirQuality is either a placeholder, a PM2.5-derived reading, or an estimate.
// PM2_5, PM10 and Ozone are illustrative proxies scaled from the AQI, not
// measurements, unless stated otherwise by the producer.
type AirQuality struct {
	AQI    int     `json:"aqi" yaml:"aqi"`
	PM2_5  float64 `json:"pm2_5" yaml:"pm2_5"`
	PM10   float64 `json:"pm10" yaml:"pm10"`
	Ozone  float64 `json:"ozone" yaml:"ozone"`
	Status string  `json:"status" yaml:"status"`
}

// DailyRecord is the normalized one-day weather entity every component works on.
// A record never carries the archive's missing-data sentinel.
type DailyRecord struct {
	Date           string      `json:"date" yaml:"date"` // YYYY-MM-DD
	Temperature    Temperature `json:"temperature" yaml:"temperature"`
	Precipitation  float64     `json:"precipitation" yaml:"precipitation"` // mm
	Humidity       float64     `json:"humidity" yaml:"humidity"`           // percent
	WindSpeed      float64     `json:"wind_speed" yaml:"wind_speed"`       // m/s
	SolarRadiation float64     `json:"solar_radiation" yaml:"solar_radiation"`
	AirQuality     AirQuality  `json:"air_quality" yaml:"air_quality"`
	Condition      Condition   `json:"condition" yaml:"condition"`
}

// HistoricalSummary is the pooled mean/min/max view over historical records.
type HistoricalSummary struct {
	Temperature   Temperature `json:"temperature" yaml:"temperature"`
	Precipitation float64     `json:"precipitation" yaml:"precipitation"`
	Humidity      float64     `json:"humidity" yaml:"humidity"`
}

// Coordinates is the geocoded identity of a requested city.
type Coordinates struct {
	Latitude     float64 `json:"latitude" yaml:"latitude"`
	Longitude    float64 `json:"longitude" yaml:"longitude"`
	ResolvedName string  `json:"name" yaml:"name"`
	Country      string  `json:"country" yaml:"country"`
	AdminRegion  string  `json:"state" yaml:"state"`
}

// DateRange is an inclusive start/end pair of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// DataSources names the upstream providers for provenance display.
type DataSources struct {
	LiveWeather       string `json:"live_weather" yaml:"live_weather"`
	HistoricalClimate string `json:"historical_climate" yaml:"historical_climate"`
}

// DefaultDataSources is the attribution attached to every enhanced result.
var DefaultDataSources = DataSources{
	LiveWeather:       "Open-Meteo",
	HistoricalClimate: "NASA POWER (MERRA-2)",
}

// EnhancedResult bundles live forecast, pooled history and insights for one city.
// Insights is always a non-nil list.
type EnhancedResult struct {
	City                 Coordinates        `json:"city" yaml:"city"`
	LiveForecast         []DailyRecord      `json:"live_forecast" yaml:"live_forecast"`
	HistoricalData       []DailyRecord      `json:"historical_data" yaml:"historical_data"`
	HistoricalSummary    *HistoricalSummary `json:"historical_summary" yaml:"historical_summary"`
	Insights             []string           `json:"insights" yaml:"insights"`
	Timezone             string             `json:"timezone,omitempty" yaml:"timezone,omitempty"`
	TimezoneAbbreviation string             `json:"timezone_abbreviation,omitempty" yaml:"timezone_abbreviation,omitempty"`
	UTCOffsetSeconds     *int               `json:"utc_offset_seconds,omitempty" yaml:"utc_offset_seconds,omitempty"`
	DataSources          DataSources        `json:"data_sources" yaml:"data_sources"`
}

// InsightsResult is the output of the multi-year insight workflow.
type InsightsResult struct {
	City              Coordinates        `json:"city" yaml:"city"`
	CurrentWeather    *DailyRecord       `json:"current_weather" yaml:"current_weather"`
	HistoricalAverage *HistoricalSummary `json:"historical_average" yaml:"historical_average"`
	Insights          []string           `json:"insights" yaml:"insights"`
	AnalysisPeriod    string             `json:"analysis_period" yaml:"analysis_period"`
}

// DayResult is a single archived day for a city.
type DayResult struct {
	City    Coordinates `json:"city" yaml:"city"`
	Date    string      `json:"date" yaml:"date"`
	Weather DailyRecord `json:"weather" yaml:"weather"`
}

// RecentResult holds the most recent archived days for a city.
type RecentResult struct {
	City     Coordinates   `json:"city" yaml:"city"`
	Forecast []DailyRecord `json:"forecast" yaml:"forecast"`
}
