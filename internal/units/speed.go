// Package units provides display conversion for internal m/s speeds
package units

import (
	"math"

	"roadhud-go/internal/models"
)

// Conversion factors from meters per second
const (
	MSToKPH = 3.6
	MSToMPH = 2.2369362920544
)

// ConvertSpeed converts an internal m/s speed to the display unit.
// All state-feed speeds are m/s; conversion happens only at render time.
func ConvertSpeed(speedMS float64, unit models.SpeedUnit) float64 {
	switch unit {
	case models.SpeedUnitImperial:
		return speedMS * MSToMPH
	case models.SpeedUnitMetric:
		return speedMS * MSToKPH
	default:
		return speedMS * MSToKPH
	}
}

// DisplaySpeed converts and rounds to the nearest whole display unit,
// clamped at zero so reverse creep never shows a negative readout
func DisplaySpeed(speedMS float64, unit models.SpeedUnit) int {
	return int(math.Round(math.Max(0, ConvertSpeed(speedMS, unit))))
}
