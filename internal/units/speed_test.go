package units

import (
	"math"
	"testing"

	"roadhud-go/internal/models"
)

func TestConvertSpeed(t *testing.T) {
	tests := []struct {
		name     string
		speedMS  float64
		unit     models.SpeedUnit
		expected float64
	}{
		{"0 m/s metric", 0.0, models.SpeedUnitMetric, 0.0},
		{"1 m/s metric", 1.0, models.SpeedUnitMetric, 3.6},
		{"27 m/s metric", 27.0, models.SpeedUnitMetric, 97.2},

		{"0 m/s imperial", 0.0, models.SpeedUnitImperial, 0.0},
		{"1 m/s imperial", 1.0, models.SpeedUnitImperial, 2.2369362920544},
		{"27 m/s imperial", 27.0, models.SpeedUnitImperial, 60.3972799854688},

		// Unknown unit falls back to metric
		{"unknown unit", 10.0, models.SpeedUnit("nautical"), 36.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertSpeed(tt.speedMS, tt.unit)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("ConvertSpeed(%f, %s) = %f, want %f", tt.speedMS, tt.unit, result, tt.expected)
			}
		})
	}
}

func TestDisplaySpeed(t *testing.T) {
	tests := []struct {
		name     string
		speedMS  float64
		unit     models.SpeedUnit
		expected int
	}{
		{"27 m/s imperial rounds to 60", 27.0, models.SpeedUnitImperial, 60},
		{"27 m/s metric rounds to 97", 27.0, models.SpeedUnitMetric, 97},
		{"negative clamps to zero", -0.4, models.SpeedUnitMetric, 0},
		{"rounds up", 27.5, models.SpeedUnitImperial, 62}, // 61.5157... -> 62
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisplaySpeed(tt.speedMS, tt.unit); got != tt.expected {
				t.Errorf("DisplaySpeed(%f, %s) = %d, want %d", tt.speedMS, tt.unit, got, tt.expected)
			}
		})
	}
}
