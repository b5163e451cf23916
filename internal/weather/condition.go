package weather

// Classify maps daily precipitation (mm) and the solar radiation proxy to a
// Condition. Thresholds are checked in order and the first match wins. A zero
// value skips its branch, so a provider that omits a field is never labelled
// "Rainy" or "Cloudy" on the strength of that omission.
func Classify(precipitation, solarRadiation float64) Condition {
	switch {
	case precipitation != 0 && precipitation > 2.5:
		return ConditionRainy
	case precipitation != 0 && precipitation > 0.5:
		return ConditionLightRain
	case solarRadiation != 0 && solarRadiation < 10:
		return ConditionCloudy
	case solarRadiation != 0 && solarRadiation > 20:
		return ConditionSunny
	default:
		return ConditionPartlyCloudy
	}
}
