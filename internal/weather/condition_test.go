package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		precip float64
		solar  float64
		want   Condition
	}{
		{"heavy rain ignores sun", 3.0, 30, ConditionRainy},
		{"heavy rain without sun", 3.0, 0, ConditionRainy},
		{"light rain", 1.0, 25, ConditionLightRain},
		{"rain threshold is exclusive", 2.5, 25, ConditionLightRain},
		{"drizzle below light rain", 0.5, 25, ConditionSunny},
		{"low radiation", 0, 5, ConditionCloudy},
		{"high radiation", 0, 25, ConditionSunny},
		{"mid radiation", 0, 15, ConditionPartlyCloudy},
		{"zero radiation is not cloudy", 0, 0, ConditionPartlyCloudy},
		{"boundary ten", 0, 10, ConditionPartlyCloudy},
		{"boundary twenty", 0, 20, ConditionPartlyCloudy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.precip, tt.solar))
		})
	}
}
