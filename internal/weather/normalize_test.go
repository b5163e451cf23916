package weather

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func archiveDay(values map[string]float64, date string, params map[string]map[string]float64) {
	for name, v := range values {
		if params[name] == nil {
			params[name] = map[string]float64{}
		}
		params[name][date] = v
	}
}

func fullDay(avg float64) map[string]float64 {
	return map[string]float64{
		ParamTempAvg:        avg,
		ParamTempMax:        avg + 4,
		ParamTempMin:        avg - 4,
		ParamPrecipitation:  0.2,
		ParamHumidity:       65,
		ParamWindSpeed:      3.5,
		ParamSolarRadiation: 22,
	}
}

func TestArchivePayload_Normalize(t *testing.T) {
	params := map[string]map[string]float64{}
	archiveDay(fullDay(12), "20240103", params)
	archiveDay(fullDay(10), "20240101", params)
	archiveDay(fullDay(11), "20240102", params)
	// Monthly aggregate keys are not days.
	params[ParamTempAvg]["202401"] = 11

	payload := &ArchivePayload{Properties: &ArchiveProperties{Parameter: params}}
	records, err := payload.Normalize()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "2024-01-01", records[0].Date)
	assert.Equal(t, "2024-01-02", records[1].Date)
	assert.Equal(t, "2024-01-03", records[2].Date)

	r := records[0]
	assert.Equal(t, Temperature{Avg: 10, Max: 14, Min: 6}, r.Temperature)
	assert.Equal(t, 0.2, r.Precipitation)
	assert.Equal(t, 65.0, r.Humidity)
	assert.Equal(t, 3.5, r.WindSpeed)
	assert.Equal(t, 22.0, r.SolarRadiation)
	assert.Equal(t, ConditionSunny, r.Condition)
	assert.Equal(t, HistoricalAirQuality, r.AirQuality)
	assert.Equal(t, "Not Available (Historical Data)", r.AirQuality.Status)
}

func TestArchivePayload_DropsDaysWithMissingValues(t *testing.T) {
	for _, name := range ArchiveParameters {
		t.Run(name, func(t *testing.T) {
			params := map[string]map[string]float64{}
			archiveDay(fullDay(10), "20240101", params)
			archiveDay(fullDay(11), "20240102", params)
			params[name]["20240101"] = MissingValue

			records, err := (&ArchivePayload{Properties: &ArchiveProperties{Parameter: params}}).Normalize()
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, "2024-01-02", records[0].Date)
		})
	}
}

func TestArchivePayload_DropsDaysWithAbsentParameter(t *testing.T) {
	params := map[string]map[string]float64{}
	archiveDay(fullDay(10), "20240101", params)
	delete(params[ParamWindSpeed], "20240101")

	records, err := (&ArchivePayload{Properties: &ArchiveProperties{Parameter: params}}).Normalize()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestArchivePayload_HeaderFillValue(t *testing.T) {
	raw := `{
		"header": {"fill_value": -99},
		"properties": {"parameter": {
			"T2M": {"20240101": 5, "20240102": -99},
			"T2M_MAX": {"20240101": 8, "20240102": 9},
			"T2M_MIN": {"20240101": 1, "20240102": 2},
			"PRECTOTCORR": {"20240101": 0, "20240102": 0},
			"RH2M": {"20240101": 70, "20240102": 71},
			"WS2M": {"20240101": 2, "20240102": 2},
			"ALLSKY_SFC_SW_DWN": {"20240101": 5, "20240102": 6}
		}}
	}`
	var payload ArchivePayload
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))

	records, err := payload.Normalize()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2024-01-01", records[0].Date)
	assert.Equal(t, ConditionCloudy, records[0].Condition)
}

func TestArchivePayload_Malformed(t *testing.T) {
	var nilPayload *ArchivePayload
	_, err := nilPayload.Normalize()
	assert.ErrorIs(t, err, ErrMalformedPayload)

	_, err = (&ArchivePayload{}).Normalize()
	assert.ErrorIs(t, err, ErrMalformedPayload)

	var payload ArchivePayload
	require.NoError(t, json.Unmarshal([]byte(`{"messages": ["bad request"]}`), &payload))
	_, err = payload.Normalize()
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestForecastPayload_Normalize(t *testing.T) {
	raw := `{
		"timezone": "Asia/Tokyo",
		"daily": {
			"time": ["2024-06-01", "2024-06-02"],
			"temperature_2m_max": [28.0, 24.0],
			"temperature_2m_min": [20.0, 18.0],
			"precipitation_sum": [0.0, 5.2],
			"relative_humidity_2m_max": [85, 95],
			"wind_speed_10m_max": [18.0, 36.0],
			"uv_index_max": [9.0, 2.0]
		}
	}`
	var payload ForecastPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))

	records, err := payload.Normalize()
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "2024-06-01", first.Date)
	assert.Equal(t, Temperature{Avg: 24, Max: 28, Min: 20}, first.Temperature)
	assert.Equal(t, 85.0, first.Humidity)
	assert.InDelta(t, 5.0, first.WindSpeed, 1e-9)
	assert.InDelta(t, 0.9, first.SolarRadiation, 1e-9)
	assert.Equal(t, ConditionCloudy, first.Condition)
	assert.Equal(t, EstimateAirQuality(9, 85), first.AirQuality)
	assert.Equal(t, 45, first.AirQuality.AQI)

	second := records[1]
	assert.Equal(t, ConditionRainy, second.Condition)
	assert.InDelta(t, 10.0, second.WindSpeed, 1e-9)
	assert.Equal(t, 85, second.AirQuality.AQI)
}

func TestForecastPayload_OptionalArraysDefaultToZero(t *testing.T) {
	raw := `{"daily": {
		"time": ["2024-06-01"],
		"temperature_2m_max": [20.0],
		"temperature_2m_min": [10.0],
		"precipitation_sum": [0.0]
	}}`
	var payload ForecastPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))

	records, err := payload.Normalize()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Zero(t, records[0].Humidity)
	assert.Zero(t, records[0].WindSpeed)
	assert.Zero(t, records[0].SolarRadiation)
	// uv 0 (<3) adds 20; humidity 0 (<30) adds 5.
	assert.Equal(t, 75, records[0].AirQuality.AQI)
	assert.Equal(t, ConditionPartlyCloudy, records[0].Condition)
}

func TestForecastPayload_MeasuredPM25(t *testing.T) {
	raw := `{"daily": {
		"time": ["2024-06-01", "2024-06-02"],
		"temperature_2m_max": [20.0, 20.0],
		"temperature_2m_min": [10.0, 10.0],
		"precipitation_sum": [0.0, 0.0],
		"uv_index_max": [5, 5],
		"pm2_5": [35.4, null]
	}}`
	var payload ForecastPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))

	records, err := payload.Normalize()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 100, records[0].AirQuality.AQI)
	assert.Equal(t, 35.4, records[0].AirQuality.PM2_5)
	assert.Equal(t, EstimateAirQuality(5, 0), records[1].AirQuality)
}

func TestForecastPayload_Malformed(t *testing.T) {
	_, err := (&ForecastPayload{}).Normalize()
	assert.ErrorIs(t, err, ErrMalformedPayload)

	short := &ForecastPayload{Daily: &ForecastDaily{
		Time:           []string{"2024-06-01", "2024-06-02"},
		TemperatureMax: Series{ptr(1.0)},
		TemperatureMin: Series{ptr(1.0), ptr(2.0)},
	}}
	_, err = short.Normalize()
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestNormalizersShareRawPayload(t *testing.T) {
	payloads := []RawPayload{&ArchivePayload{}, &ForecastPayload{}}
	for _, p := range payloads {
		_, err := p.Normalize()
		assert.ErrorIs(t, err, ErrMalformedPayload)
	}
}

func ptr(v float64) *float64 { return &v }
