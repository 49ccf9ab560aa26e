package models

import "time"

// RawFrame represents a decoded frame from OpenCV
type RawFrame struct {
	SourceID   string
	Data       []byte
	Timestamp  time.Time
	FrameID    int64
	Width      int
	Height     int
	Format     string  // "BGR24"
	CaptureFPS float64 // Rolling capture rate measured at the source
}

// ComposedFrame is a frame after HUD overlay composition
type ComposedFrame struct {
	SourceID  string
	Data      []byte // BGR24 with overlays painted
	Timestamp time.Time
	FrameID   int64
	Width     int
	Height    int

	FPS        float64       // Smoothed draw rate at composition time
	DrawTime   time.Duration // Time spent in the overlay pass
	Offroad    bool          // Composition suppressed, camera passthrough
	HadOverlay bool          // Overlay geometry was recomputed this frame
}

// HUDStateResponse for the ops API
type HUDStateResponse struct {
	HUDID      string  `json:"hud_id"`
	Onroad     bool    `json:"onroad"`
	Status     string  `json:"status"`
	Speed      float64 `json:"speed"`
	SpeedUnit  string  `json:"speed_unit"`
	SetSpeed   float64 `json:"set_speed"`
	SpeedLimit float64 `json:"speed_limit"`
	LeadCount  int     `json:"lead_count"`
	AlertText  string  `json:"alert_text,omitempty"`
	AlertSize  string  `json:"alert_size"`
	DrawFPS    float64 `json:"draw_fps"`
	CaptureFPS float64 `json:"capture_fps"`
	FrameCount int64   `json:"frame_count"`
	LastFrame  string  `json:"last_frame_time,omitempty"`
}

// OverlayFlagsRequest for PUT flag updates - nil fields are left unchanged
type OverlayFlagsRequest struct {
	ShowLaneLines  *bool `json:"show_lane_lines,omitempty"`
	ShowRoadEdges  *bool `json:"show_road_edges,omitempty"`
	ShowLeads      *bool `json:"show_leads,omitempty"`
	ShowHUD        *bool `json:"show_hud,omitempty"`
	ShowDM         *bool `json:"show_dm,omitempty"`
	ShowScanner    *bool `json:"show_scanner,omitempty"`
	RenderEmpty    *bool `json:"render_empty_alerts,omitempty"`
	ShowDebugStats *bool `json:"show_debug_stats,omitempty"`
}

// OverlayFlagsResponse echoes the effective flag set
type OverlayFlagsResponse struct {
	ShowLaneLines  bool `json:"show_lane_lines"`
	ShowRoadEdges  bool `json:"show_road_edges"`
	ShowLeads      bool `json:"show_leads"`
	ShowHUD        bool `json:"show_hud"`
	ShowDM         bool `json:"show_dm"`
	ShowScanner    bool `json:"show_scanner"`
	RenderEmpty    bool `json:"render_empty_alerts"`
	ShowDebugStats bool `json:"show_debug_stats"`
}
