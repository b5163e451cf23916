package weather

import (
	"sort"
	"time"
)

// RawPayload is a provider response that can be normalized into DailyRecords.
// Implementations return ErrMalformedPayload when the payload lacks its expected
// top-level structure, and an empty slice when it is well formed but holds no
// usable day.
type RawPayload interface {
	Normalize() ([]DailyRecord, error)
}

// MissingValue is the archive's default fill value for "no measurement".
const MissingValue = -999.0

// Archive parameter names requested from NASA POWER.
const (
	ParamTempAvg        = "T2M"
	ParamTempMax        = "T2M_MAX"
	ParamTempMin        = "T2M_MIN"
	ParamPrecipitation  = "PRECTOTCORR"
	ParamHumidity       = "RH2M"
	ParamWindSpeed      = "WS2M"
	ParamSolarRadiation = "ALLSKY_SFC_SW_DWN"
)

// ArchiveParameters lists every parameter a historical day needs.
var ArchiveParameters = []string{
	ParamTempAvg,
	ParamTempMax,
	ParamTempMin,
	ParamPrecipitation,
	ParamHumidity,
	ParamWindSpeed,
	ParamSolarRadiation,
}

const archiveDateLayout = "20060102"

// ArchivePayload is the daily point response of the historical archive. Values are
// keyed by parameter name and then by an 8-digit YYYYMMDD date.
type ArchivePayload struct {
	Header     *ArchiveHeader     `json:"header,omitempty"`
	Properties *ArchiveProperties `json:"properties"`
}

// ArchiveHeader carries the archive's declared fill value, when present.
type ArchiveHeader struct {
	FillValue *float64 `json:"fill_value,omitempty"`
}

// ArchiveProperties holds the parameter tables.
type ArchiveProperties struct {
	Parameter map[string]map[string]float64 `json:"parameter"`
}

func (p *ArchivePayload) sentinel() float64 {
	if p.Header != nil && p.Header.FillValue != nil {
		return *p.Header.FillValue
	}
	return MissingValue
}

// Normalize converts the archive tables into chronologically ordered records.
// A date is dropped entirely when any required parameter is absent or equals the
// fill value.
func (p *ArchivePayload) Normalize() ([]DailyRecord, error) {
	if p == nil || p.Properties == nil || p.Properties.Parameter == nil {
		return nil, ErrMalformedPayload
	}
	params := p.Properties.Parameter
	sentinel := p.sentinel()

	seen := make(map[string]struct{})
	var keys []string
	for _, series := range params {
		for k := range series {
			if _, ok := seen[k]; ok || !isArchiveDateKey(k) {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	records := make([]DailyRecord, 0, len(keys))
	for _, k := range keys {
		values := make(map[string]float64, len(ArchiveParameters))
		complete := true
		for _, name := range ArchiveParameters {
			v, ok := params[name][k]
			if !ok || v == sentinel {
				complete = false
				break
			}
			values[name] = v
		}
		if !complete {
			continue
		}

		date, _ := time.Parse(archiveDateLayout, k)
		rec := DailyRecord{
			Date: date.Format(DateLayout),
			Temperature: Temperature{
				Avg: values[ParamTempAvg],
				Max: values[ParamTempMax],
				Min: values[ParamTempMin],
			},
			Precipitation:  values[ParamPrecipitation],
			Humidity:       values[ParamHumidity],
			WindSpeed:      values[ParamWindSpeed],
			SolarRadiation: values[ParamSolarRadiation],
			AirQuality:     HistoricalAirQuality,
		}
		rec.Condition = Classify(rec.Precipitation, rec.SolarRadiation)
		records = append(records, rec)
	}
	return records, nil
}

// isArchiveDateKey reports whether k is an 8-digit key naming a real calendar day.
// Monthly and annual aggregates use shorter keys and are excluded.
func isArchiveDateKey(k string) bool {
	if len(k) != 8 {
		return false
	}
	for _, r := range k {
		if r < '0' || r > '9' {
			return false
		}
	}
	_, err := time.Parse(archiveDateLayout, k)
	return err == nil
}

// FormatArchiveDate renders a date in the compact form the archive expects.
func FormatArchiveDate(t time.Time) string {
	return t.Format(archiveDateLayout)
}

// Series is a provider array whose entries may be null.
type Series []*float64

// at returns the i-th value and whether it is present.
func (s Series) at(i int) (float64, bool) {
	if i >= len(s) || s[i] == nil {
		return 0, false
	}
	return *s[i], true
}

// orZero returns the i-th value, or zero when the entry or the whole series is missing.
func (s Series) orZero(i int) float64 {
	v, _ := s.at(i)
	return v
}

// ForecastPayload is the live forecast response: parallel arrays, one entry per day.
type ForecastPayload struct {
	Timezone             string         `json:"timezone"`
	TimezoneAbbreviation string         `json:"timezone_abbreviation"`
	UTCOffsetSeconds     *int           `json:"utc_offset_seconds"`
	Daily                *ForecastDaily `json:"daily"`
}

// ForecastDaily holds the daily arrays. Humidity, wind, UV and PM2.5 are optional.
type ForecastDaily struct {
	Time             []string `json:"time"`
	TemperatureMax   Series   `json:"temperature_2m_max"`
	TemperatureMin   Series   `json:"temperature_2m_min"`
	PrecipitationSum Series   `json:"precipitation_sum"`
	HumidityMax      Series   `json:"relative_humidity_2m_max"`
	WindSpeedMax     Series   `json:"wind_speed_10m_max"` // km/h
	UVIndexMax       Series   `json:"uv_index_max"`
	PM25             Series   `json:"pm2_5,omitempty"` // µg/m³
}

// Normalize converts the forecast arrays into records in provider order.
// Wind speed is converted from km/h to m/s, the UV index is scaled into the solar
// radiation proxy, and air quality is estimated unless a PM2.5 value is present.
// Days whose temperature or precipitation entries are null are skipped.
func (p *ForecastPayload) Normalize() ([]DailyRecord, error) {
	if p == nil || p.Daily == nil {
		return nil, ErrMalformedPayload
	}
	d := p.Daily
	n := len(d.Time)
	if len(d.TemperatureMax) < n || len(d.TemperatureMin) < n || len(d.PrecipitationSum) < n {
		return nil, ErrMalformedPayload
	}

	records := make([]DailyRecord, 0, n)
	for i := 0; i < n; i++ {
		tMax, okMax := d.TemperatureMax.at(i)
		tMin, okMin := d.TemperatureMin.at(i)
		precip, okPrecip := d.PrecipitationSum.at(i)
		if !okMax || !okMin || !okPrecip {
			continue
		}

		uv := d.UVIndexMax.orZero(i)
		humidity := d.HumidityMax.orZero(i)

		aq := EstimateAirQuality(uv, humidity)
		if pm25, ok := d.PM25.at(i); ok {
			aq = MeasuredAirQuality(pm25)
		}

		rec := DailyRecord{
			Date: d.Time[i],
			Temperature: Temperature{
				Avg: (tMax + tMin) / 2,
				Max: tMax,
				Min: tMin,
			},
			Precipitation:  precip,
			Humidity:       humidity,
			WindSpeed:      d.WindSpeedMax.orZero(i) / kmhPerMS,
			SolarRadiation: uv * uvToSolarFactor,
			AirQuality:     aq,
		}
		rec.Condition = Classify(rec.Precipitation, rec.SolarRadiation)
		records = append(records, rec)
	}
	return records, nil
}

const (
	kmhPerMS = 3.6
	// uvToSolarFactor scales a UV index into the solar radiation proxy used for
	// classification. It is an approximation with no physical calibration.
	uvToSolarFactor = 0.1
)
