package hud

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"roadhud-go/internal/models"
)

func TestDisplaySpeedText(t *testing.T) {
	tests := []struct {
		name      string
		unit      models.SpeedUnit
		speed     float64
		wantText  string
		wantLabel string
	}{
		{"imperial", models.SpeedUnitImperial, 27.0, "60", "mph"},
		{"metric", models.SpeedUnitMetric, 27.0, "97", "km/h"},
		{"zero", models.SpeedUnitMetric, 0, "0", "km/h"},
		{"negative clamps to zero", models.SpeedUnitMetric, -2.5, "0", "km/h"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDisplayState(&models.VehicleState{Speed: tt.speed, SpeedUnit: tt.unit})
			require.Equal(t, tt.wantText, d.SpeedText)
			require.Equal(t, tt.wantLabel, d.UnitLabel)
		})
	}
}

func TestSetSpeedText(t *testing.T) {
	tests := []struct {
		name          string
		cruiseEngaged bool
		setSpeed      float64
		wantCruiseSet bool
		wantText      string
	}{
		{"engaged with target", true, 30, true, "108"},
		{"engaged without target", true, 0, false, "-"},
		{"disengaged with stale target", false, 30, false, "-"},
		{"disengaged", false, 0, false, "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDisplayState(&models.VehicleState{
				CruiseEngaged: tt.cruiseEngaged,
				SetSpeed:      tt.setSpeed,
				SpeedUnit:     models.SpeedUnitMetric,
			})
			require.Equal(t, tt.wantCruiseSet, d.CruiseSet)
			require.Equal(t, tt.wantText, d.SetSpeedText)
		})
	}
}

func TestSpeedLimitPrecedence(t *testing.T) {
	tests := []struct {
		name      string
		eu, us    bool
		wantStyle LimitStyle
	}{
		{"neither", false, false, LimitNone},
		{"eu only", true, false, LimitEU},
		{"us only", false, true, LimitUS},
		{"both prefers eu", true, true, LimitEU},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDisplayState(&models.VehicleState{
				SpeedLimit:      27.78,
				HasEUSpeedLimit: tt.eu,
				HasUSSpeedLimit: tt.us,
				SpeedUnit:       models.SpeedUnitMetric,
			})
			require.Equal(t, tt.wantStyle, d.LimitStyle)
			if tt.wantStyle == LimitNone {
				require.Empty(t, d.LimitText)
			} else {
				require.Equal(t, "100", d.LimitText)
			}
		})
	}
}

func TestDMViewMapping(t *testing.T) {
	tests := []struct {
		name        string
		view        models.DMView
		wantVisible bool
		wantRight   bool
	}{
		{"hidden", models.DMViewHidden, false, false},
		{"unset hides", models.DMView(""), false, false},
		{"left", models.DMViewLeft, true, false},
		{"right mirrors", models.DMViewRight, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDisplayState(&models.VehicleState{DMView: tt.view, SpeedUnit: models.SpeedUnitMetric})
			require.Equal(t, tt.wantVisible, d.DMVisible)
			require.Equal(t, tt.wantRight, d.DMRight)
		})
	}
}

func TestAdvisoryColorPassthrough(t *testing.T) {
	d := NewDisplayState(&models.VehicleState{
		ShowAdvisory:  true,
		AdvisorySpeed: 12.5, // 45 km/h
		AdvisoryColor: "#ff8800",
		SpeedUnit:     models.SpeedUnitMetric,
	})
	require.True(t, d.ShowAdvisory)
	require.Equal(t, "45", d.AdvisoryText)
	require.Equal(t, color.RGBA{R: 0xff, G: 0x88, B: 0x00, A: 255}, d.AdvisoryColor)

	// A malformed color falls back instead of dropping the advisory
	d = NewDisplayState(&models.VehicleState{
		ShowAdvisory:  true,
		AdvisorySpeed: 12.5,
		AdvisoryColor: "bogus",
		SpeedUnit:     models.SpeedUnitMetric,
	})
	require.True(t, d.ShowAdvisory)
	require.Equal(t, lockonGreen, d.AdvisoryColor)

	d = NewDisplayState(&models.VehicleState{AdvisorySpeed: 12.5, SpeedUnit: models.SpeedUnitMetric})
	require.False(t, d.ShowAdvisory)
	require.Empty(t, d.AdvisoryText)
}

func TestThemeFollowsStatus(t *testing.T) {
	for _, st := range models.AllStatuses() {
		d := NewDisplayState(&models.VehicleState{Status: st, SpeedUnit: models.SpeedUnitMetric})
		require.Equal(t, ThemeColor(st), d.ThemeBG, "status %s", st)
	}
}

func TestAlertCarriedThrough(t *testing.T) {
	alert := models.Alert{Severity: models.AlertSeverityCritical, Text: "BRAKE", Size: models.AlertSizeFull}
	d := NewDisplayState(&models.VehicleState{Alert: alert, SpeedUnit: models.SpeedUnitMetric})
	require.Equal(t, alert, d.Alert)
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    color.RGBA
		wantErr bool
	}{
		{"with hash", "#00ff7f", color.RGBA{R: 0, G: 255, B: 127, A: 255}, false},
		{"without hash", "c92231", color.RGBA{R: 201, G: 34, B: 49, A: 255}, false},
		{"surrounding space", " #ffffff ", color.RGBA{R: 255, G: 255, B: 255, A: 255}, false},
		{"too short", "#fff", color.RGBA{}, true},
		{"not hex", "#zzzzzz", color.RGBA{}, true},
		{"empty", "", color.RGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseHexColor(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
