package models

import (
	"fmt"
	"time"
)

// AlertSeverity is an ordered priority level; higher values preempt lower ones.
// Arbitration happens upstream of the HUD - the renderer shows whatever is current.
type AlertSeverity int

const (
	AlertSeverityNormal AlertSeverity = iota
	AlertSeverityWarning
	AlertSeverityCritical
)

// String returns the string representation of AlertSeverity
func (s AlertSeverity) String() string {
	switch s {
	case AlertSeverityNormal:
		return "normal"
	case AlertSeverityWarning:
		return "warning"
	case AlertSeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// IsValid checks if the alert severity is valid
func (s AlertSeverity) IsValid() bool {
	switch s {
	case AlertSeverityNormal, AlertSeverityWarning, AlertSeverityCritical:
		return true
	default:
		return false
	}
}

// AlertSize is the banner size class
type AlertSize int

const (
	AlertSizeNone AlertSize = iota
	AlertSizeSmall
	AlertSizeMid
	AlertSizeFull
)

// String returns the string representation of AlertSize
func (s AlertSize) String() string {
	switch s {
	case AlertSizeNone:
		return "none"
	case AlertSizeSmall:
		return "small"
	case AlertSizeMid:
		return "mid"
	case AlertSizeFull:
		return "full"
	default:
		return "unknown"
	}
}

// Alert is the currently displayed alert. The zero value means "no alert".
type Alert struct {
	Severity AlertSeverity `json:"severity"`
	Text     string        `json:"text"`
	Text2    string        `json:"text2,omitempty"` // Secondary line, full-size banners only
	Size     AlertSize     `json:"size"`
}

// IsZero reports whether this is the empty/default "no alert" value
func (a Alert) IsZero() bool {
	return a == Alert{}
}

// AlertEvent is published on the bus when the displayed alert changes
type AlertEvent struct {
	EventID   string        `json:"event_id"`
	HUDID     string        `json:"hud_id"`
	Severity  AlertSeverity `json:"severity"`
	Text      string        `json:"text"`
	Text2     string        `json:"text2,omitempty"`
	Size      string        `json:"size"`
	FrameID   int64         `json:"frame_id"`
	Snapshot  string        `json:"snapshot_b64,omitempty"` // JPEG of the composed frame, base64
	Timestamp time.Time     `json:"timestamp"`
}

// AlertCooldownKey identifies an alert kind for publish rate limiting
type AlertCooldownKey struct {
	HUDID    string
	Severity AlertSeverity
	Text     string
}

// String returns the cooldown map key
func (k AlertCooldownKey) String() string {
	return fmt.Sprintf("%s|%s|%s", k.HUDID, k.Severity, k.Text)
}

// DrawTelemetry is the fire-and-forget per-frame stats message
type DrawTelemetry struct {
	HUDID      string    `json:"hud_id"`
	FrameID    int64     `json:"frame_id"`
	DrawTimeMS float64   `json:"draw_time_ms"`
	FPS        float64   `json:"fps"` // Smoothed draw rate
	CaptureFPS float64   `json:"capture_fps"`
	Skipped    bool      `json:"skipped"` // Overlay recompute throttled this frame
	Timestamp  time.Time `json:"timestamp"`
}

// MessagePublisher defines the interface for publishing messages to the bus
type MessagePublisher interface {
	Publish(subject string, data interface{}) error
}
