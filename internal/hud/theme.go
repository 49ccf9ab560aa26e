// Package hud composes the driver-assistance overlay onto live camera
// frames: lane geometry, lead markers, speed readouts, status theme, driver
// monitoring indicator and alert banners.
package hud

import (
	"image/color"

	"roadhud-go/internal/models"
)

func redColor(alpha uint8) color.RGBA   { return color.RGBA{R: 201, G: 34, B: 49, A: alpha} }
func whiteColor(alpha uint8) color.RGBA { return color.RGBA{R: 255, G: 255, B: 255, A: alpha} }
func blackColor(alpha uint8) color.RGBA { return color.RGBA{R: 0, G: 0, B: 0, A: alpha} }

var (
	engagedGreen   = color.RGBA{R: 23, G: 134, B: 68, A: 241}
	warningOrange  = color.RGBA{R: 218, G: 111, B: 37, A: 241}
	overrideGrey   = color.RGBA{R: 145, G: 155, B: 149, A: 241}
	disengagedBlue = color.RGBA{R: 23, G: 51, B: 73, A: 200}
	lockonGreen    = color.RGBA{R: 0, G: 255, B: 127, A: 255}
	leadGlow       = color.RGBA{R: 218, G: 202, B: 37, A: 255}
)

// ThemeColor maps every system status to its background theme color. There
// is no undefined fallthrough: unknown values render as disengaged.
func ThemeColor(s models.Status) color.RGBA {
	switch s {
	case models.StatusDisengaged:
		return disengagedBlue
	case models.StatusEngaged:
		return engagedGreen
	case models.StatusOverride:
		return overrideGrey
	case models.StatusWarning:
		return warningOrange
	case models.StatusAlert:
		return redColor(241)
	default:
		return disengagedBlue
	}
}

// AlertColor maps an alert severity to the banner background. Severity
// arbitration happens upstream; this is presentation only.
func AlertColor(s models.AlertSeverity) color.RGBA {
	switch s {
	case models.AlertSeverityWarning:
		return warningOrange
	case models.AlertSeverityCritical:
		return redColor(241)
	default:
		return color.RGBA{R: 21, G: 21, B: 21, A: 241}
	}
}

// scaleColor dims a color toward black by intensity 0..1. gocv primitives
// ignore the alpha channel, so fades are approximated by dimming.
func scaleColor(c color.RGBA, intensity float64) color.RGBA {
	if intensity >= 1 {
		return c
	}
	if intensity < 0 {
		intensity = 0
	}
	return color.RGBA{
		R: uint8(float64(c.R) * intensity),
		G: uint8(float64(c.G) * intensity),
		B: uint8(float64(c.B) * intensity),
		A: c.A,
	}
}
