package models

import "time"

// Status represents the overall system engagement status driving the HUD color theme
type Status int

const (
	StatusDisengaged Status = iota
	StatusEngaged
	StatusOverride
	StatusWarning
	StatusAlert
)

// AllStatuses lists every valid status value
func AllStatuses() []Status {
	return []Status{StatusDisengaged, StatusEngaged, StatusOverride, StatusWarning, StatusAlert}
}

// String returns the string representation of Status
func (s Status) String() string {
	switch s {
	case StatusDisengaged:
		return "disengaged"
	case StatusEngaged:
		return "engaged"
	case StatusOverride:
		return "override"
	case StatusWarning:
		return "warning"
	case StatusAlert:
		return "alert"
	default:
		return "unknown"
	}
}

// IsValid checks if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusDisengaged, StatusEngaged, StatusOverride, StatusWarning, StatusAlert:
		return true
	default:
		return false
	}
}

// SpeedUnit represents the display unit for speed readouts
type SpeedUnit string

const (
	SpeedUnitMetric   SpeedUnit = "metric"
	SpeedUnitImperial SpeedUnit = "imperial"
)

// Label returns the unit text shown under the speed readout
func (u SpeedUnit) Label() string {
	if u == SpeedUnitImperial {
		return "mph"
	}
	return "km/h"
}

// IsValid checks if the speed unit is valid
func (u SpeedUnit) IsValid() bool {
	return u == SpeedUnitMetric || u == SpeedUnitImperial
}

// DMView represents where the driver monitoring indicator is displayed
type DMView string

const (
	DMViewHidden DMView = "hidden"
	DMViewLeft   DMView = "left"
	DMViewRight  DMView = "right" // right-hand-drive displays mirror the indicator
)

// IsValid checks if the DM view mode is valid
func (v DMView) IsValid() bool {
	switch v {
	case DMViewHidden, DMViewLeft, DMViewRight:
		return true
	default:
		return false
	}
}

// Vec3 is a vehicle-relative position: X forward, Y lateral (right positive), Z up, meters
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// LeadObject represents a tracked vehicle or obstacle ahead
type LeadObject struct {
	TrackID    int32   `json:"track_id"`
	DRel       float64 `json:"d_rel"`      // Forward distance, meters
	YRel       float64 `json:"y_rel"`      // Lateral offset, meters
	VRel       float64 `json:"v_rel"`      // Relative velocity, m/s (negative = closing)
	Confidence float64 `json:"confidence"` // Model probability 0.0-1.0
}

// Position returns the lead in vehicle-relative 3D coordinates
func (l LeadObject) Position() Vec3 {
	return Vec3{X: l.DRel, Y: l.YRel, Z: 0}
}

// LaneLine is an ordered boundary polyline with its model probability
type LaneLine struct {
	Points []Vec3  `json:"points"`
	Prob   float64 `json:"prob"`
}

// RoadEdge is an ordered edge polyline with its model standard deviation
type RoadEdge struct {
	Points []Vec3  `json:"points"`
	Std    float64 `json:"std"`
}

// VehicleState is the periodic state-feed snapshot consumed once per tick.
// Immutable after decode; the HUD pipeline never mutates a delivered snapshot.
type VehicleState struct {
	// Speeds are internal units (m/s); display conversion happens at render time
	Speed      float64 `json:"speed"`
	SetSpeed   float64 `json:"set_speed"`   // Cruise target; <= 0 means unset
	SpeedLimit float64 `json:"speed_limit"` // Posted limit; shown only when a flag below is set

	HasEUSpeedLimit bool `json:"has_eu_speed_limit"`
	HasUSSpeedLimit bool `json:"has_us_speed_limit"`
	CruiseEngaged   bool `json:"cruise_engaged"`
	Engageable      bool `json:"engageable"`

	SpeedUnit SpeedUnit `json:"speed_unit"`
	Status    Status    `json:"status"`

	DMActive bool   `json:"dm_active"`
	DMView   DMView `json:"dm_view"`

	Leads     []LeadObject `json:"leads,omitempty"`
	LaneLines []LaneLine   `json:"lane_lines,omitempty"`
	RoadEdges []RoadEdge   `json:"road_edges,omitempty"`

	// Speed advisory, upstream-computed; color is passed through as-is
	ShowAdvisory  bool    `json:"show_advisory"`
	AdvisorySpeed float64 `json:"advisory_speed"`
	AdvisoryColor string  `json:"advisory_color,omitempty"` // Hex color, e.g. "#00ff00"

	Alert Alert `json:"alert"`

	Timestamp time.Time `json:"timestamp"`
	Seq       uint64    `json:"seq"`
}

// PrimaryLead picks the lockon target: highest confidence wins, nearest breaks ties.
// Returns -1 when there are no leads.
func (s *VehicleState) PrimaryLead() int {
	best := -1
	for i, l := range s.Leads {
		if best == -1 {
			best = i
			continue
		}
		b := s.Leads[best]
		if l.Confidence > b.Confidence || (l.Confidence == b.Confidence && l.DRel < b.DRel) {
			best = i
		}
	}
	return best
}
