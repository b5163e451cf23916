package weather

import "math"

const (
	aqiBase = 50
	aqiMin  = 0
	aqiMax  = 300
)

// HistoricalAirQuality is attached to archive records, which carry no air quality data.
var HistoricalAirQuality = AirQuality{Status: "Not Available (Historical Data)"}

// EstimateAirQuality approximates an air quality reading from the UV index and
// relative humidity. The result is a heuristic, not a measurement: the pollutant
// fields are fixed fractions of the estimated AQI.
func EstimateAirQuality(uvIndex, humidity float64) AirQuality {
	aqi := aqiBase

	switch {
	case uvIndex > 8:
		aqi -= 20
	case uvIndex > 6:
		aqi -= 10
	case uvIndex < 3:
		aqi += 20
	}

	switch {
	case humidity > 80:
		aqi += 15
	case humidity < 30:
		aqi += 5
	}

	aqi = max(aqiMin, min(aqiMax, aqi))
	return airQualityFromAQI(aqi)
}

// MeasuredAirQuality builds a reading from a measured PM2.5 concentration (µg/m³).
// PM10 and ozone remain AQI-scaled proxies.
func MeasuredAirQuality(pm25 float64) AirQuality {
	aq := airQualityFromAQI(AQIFromPM25(pm25))
	aq.PM2_5 = round1(pm25)
	return aq
}

func airQualityFromAQI(aqi int) AirQuality {
	return AirQuality{
		AQI:    aqi,
		PM2_5:  round1(float64(aqi) * 0.4),
		PM10:   round1(float64(aqi) * 0.6),
		Ozone:  round1(float64(aqi) * 0.3),
		Status: AQIStatus(aqi),
	}
}

// AQIStatus returns the band label for an AQI value.
func AQIStatus(aqi int) string {
	switch {
	case aqi <= 50:
		return "Good"
	case aqi <= 100:
		return "Moderate"
	case aqi <= 150:
		return "Unhealthy for Sensitive Groups"
	case aqi <= 200:
		return "Unhealthy"
	case aqi <= 300:
		return "Very Unhealthy"
	default:
		return "Hazardous"
	}
}

// pm25Breakpoint is one segment of the EPA PM2.5 AQI table.
type pm25Breakpoint struct {
	concLow, concHigh float64
	aqiLow, aqiHigh   int
}

var pm25Breakpoints = []pm25Breakpoint{
	{0, 12, 0, 50},
	{12, 35.4, 50, 100},
	{35.4, 55.4, 100, 150},
	{55.4, 150.4, 150, 200},
	{150.4, 250.4, 200, 300},
	{250.4, 500.4, 300, 500},
}

// AQIFromPM25 converts a PM2.5 concentration to an AQI by linear interpolation
// within the EPA breakpoint segment that contains it, capped at the segment's top.
func AQIFromPM25(pm25 float64) int {
	if pm25 <= 0 {
		return 0
	}
	for _, bp := range pm25Breakpoints {
		if pm25 <= bp.concHigh {
			return interpolateAQI(pm25, bp)
		}
	}
	return interpolateAQI(pm25, pm25Breakpoints[len(pm25Breakpoints)-1])
}

func interpolateAQI(pm25 float64, bp pm25Breakpoint) int {
	span := float64(bp.aqiHigh - bp.aqiLow)
	v := float64(bp.aqiLow) + span*(pm25-bp.concLow)/(bp.concHigh-bp.concLow)
	return min(bp.aqiHigh, int(v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
