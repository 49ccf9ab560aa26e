package hud

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"roadhud-go/internal/models"
	"roadhud-go/internal/units"
)

// LimitStyle selects the speed limit signage variant
type LimitStyle int

const (
	LimitNone LimitStyle = iota
	LimitEU              // round red-ring sign
	LimitUS              // rectangular "SPEED LIMIT" sign
)

// DisplayState is everything the painter needs from one state snapshot,
// recomputed once per state update and immutable afterwards. Consolidating
// the readouts here means the paint path can never observe a partially
// updated mix of flags.
type DisplayState struct {
	SpeedText string
	UnitLabel string

	SetSpeedText string
	CruiseSet    bool
	Engageable   bool

	// When both region flags are set the EU sign wins; documented policy,
	// pending product confirmation
	LimitStyle LimitStyle
	LimitText  string

	Status  models.Status
	ThemeBG color.RGBA

	DMVisible bool
	DMRight   bool
	DMActive  bool

	ShowAdvisory  bool
	AdvisoryText  string
	AdvisoryColor color.RGBA

	Alert models.Alert
}

// NewDisplayState derives the display fields from a state snapshot
func NewDisplayState(s *models.VehicleState) DisplayState {
	d := DisplayState{
		SpeedText:  strconv.Itoa(units.DisplaySpeed(s.Speed, s.SpeedUnit)),
		UnitLabel:  s.SpeedUnit.Label(),
		Engageable: s.Engageable,
		Status:     s.Status,
		ThemeBG:    ThemeColor(s.Status),
		Alert:      s.Alert,
	}

	d.CruiseSet = s.CruiseEngaged && s.SetSpeed > 0
	if d.CruiseSet {
		d.SetSpeedText = strconv.Itoa(units.DisplaySpeed(s.SetSpeed, s.SpeedUnit))
	} else {
		d.SetSpeedText = "-"
	}

	switch {
	case s.HasEUSpeedLimit:
		d.LimitStyle = LimitEU
	case s.HasUSSpeedLimit:
		d.LimitStyle = LimitUS
	}
	if d.LimitStyle != LimitNone {
		d.LimitText = strconv.Itoa(units.DisplaySpeed(s.SpeedLimit, s.SpeedUnit))
	}

	// Unset/unknown view hides the indicator rather than defaulting to a side
	d.DMVisible = s.DMView == models.DMViewLeft || s.DMView == models.DMViewRight
	d.DMRight = s.DMView == models.DMViewRight
	d.DMActive = s.DMActive

	if s.ShowAdvisory {
		d.ShowAdvisory = true
		d.AdvisoryText = strconv.Itoa(units.DisplaySpeed(s.AdvisorySpeed, s.SpeedUnit))
		d.AdvisoryColor = lockonGreen
		if c, err := parseHexColor(s.AdvisoryColor); err == nil {
			d.AdvisoryColor = c
		}
	}

	return d
}

func parseHexColor(s string) (color.RGBA, error) {
	var c color.RGBA
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		s = s[1:]
	}
	if len(s) != 6 {
		return c, fmt.Errorf("invalid color length: %s", s)
	}
	r, err := strconv.ParseUint(s[0:2], 16, 8)
	if err != nil {
		return c, err
	}
	g, err := strconv.ParseUint(s[2:4], 16, 8)
	if err != nil {
		return c, err
	}
	b, err := strconv.ParseUint(s[4:6], 16, 8)
	if err != nil {
		return c, err
	}
	c = color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}
	return c, nil
}
