package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"roadhud-go/internal/container"
	"roadhud-go/internal/hud"
	"roadhud-go/internal/logging"
	"roadhud-go/internal/models"
)

// StateSource is the view of the onroad container the API needs
type StateSource interface {
	Snapshot() container.Snapshot
	UpdateFlags(flags hud.OverlayFlags)
}

// PreviewStreamer serves the MJPEG preview
type PreviewStreamer interface {
	StreamMJPEGHTTP(w http.ResponseWriter, r *http.Request)
	ViewerCount() int
}

// HUDHandler exposes HUD state and overlay controls
type HUDHandler struct {
	View    StateSource
	Preview PreviewStreamer
}

// NewHUDHandler creates a new HUD handler
func NewHUDHandler(view StateSource, preview PreviewStreamer) *HUDHandler {
	return &HUDHandler{View: view, Preview: preview}
}

// stateResponse maps a container snapshot onto the API shape
func stateResponse(snap container.Snapshot) models.HUDStateResponse {
	resp := models.HUDStateResponse{
		HUDID:      snap.HUDID,
		Onroad:     snap.Running && !snap.Offroad,
		Status:     "unknown",
		AlertSize:  models.AlertSizeNone.String(),
		DrawFPS:    snap.DrawFPS,
		CaptureFPS: snap.CaptureFPS,
		FrameCount: snap.FrameCount,
	}
	if !snap.LastFrameAt.IsZero() {
		resp.LastFrame = snap.LastFrameAt.UTC().Format("2006-01-02T15:04:05.000Z07:00")
	}
	if s := snap.State; s != nil {
		resp.Status = s.Status.String()
		resp.Speed = s.Speed
		resp.SpeedUnit = string(s.SpeedUnit)
		resp.SetSpeed = s.SetSpeed
		resp.SpeedLimit = s.SpeedLimit
		resp.LeadCount = len(s.Leads)
		resp.AlertText = s.Alert.Text
		resp.AlertSize = s.Alert.Size.String()
	}
	return resp
}

// flagsResponse exposes the overlay layer toggles
func flagsResponse(f hud.OverlayFlags) gin.H {
	return gin.H{
		"show_lane_lines":     f.ShowLaneLines,
		"show_road_edges":     f.ShowRoadEdges,
		"show_leads":          f.ShowLeads,
		"show_hud":            f.ShowHUD,
		"show_dm":             f.ShowDM,
		"show_scanner":        f.ShowScanner,
		"show_debug_stats":    f.ShowDebugStats,
		"render_empty_alerts": f.RenderEmptyAlerts,
	}
}

// @Summary Current HUD state
// @Description Get the live HUD state: engagement, speeds, leads, alert
// @Tags hud
// @Accept json
// @Produce json
// @Success 200 {object} models.HUDStateResponse
// @Router /hud/state [get]
func (h *HUDHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, stateResponse(h.View.Snapshot()))
}

// @Summary Overlay layer flags
// @Description Get the current overlay layer toggles
// @Tags hud
// @Accept json
// @Produce json
// @Success 200 {object} map[string]bool
// @Router /hud/flags [get]
func (h *HUDHandler) GetFlags(c *gin.Context) {
	c.JSON(http.StatusOK, flagsResponse(h.View.Snapshot().Flags))
}

// @Summary Update overlay layer flags
// @Description Patch overlay layer toggles; omitted fields are unchanged
// @Tags hud
// @Accept json
// @Produce json
// @Param flags body models.OverlayFlagsRequest true "Flags to change"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} map[string]string
// @Router /hud/flags [put]
func (h *HUDHandler) UpdateFlags(c *gin.Context) {
	var req models.OverlayFlagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid flags payload: " + err.Error()})
		return
	}

	flags := h.View.Snapshot().Flags
	applyFlagPatch(&flags, req)
	h.View.UpdateFlags(flags)

	logging.Info(c).Interface("flags", flagsResponse(flags)).Msg("Overlay flags updated")
	c.JSON(http.StatusOK, flagsResponse(flags))
}

func applyFlagPatch(flags *hud.OverlayFlags, req models.OverlayFlagsRequest) {
	if req.ShowLaneLines != nil {
		flags.ShowLaneLines = *req.ShowLaneLines
	}
	if req.ShowRoadEdges != nil {
		flags.ShowRoadEdges = *req.ShowRoadEdges
	}
	if req.ShowLeads != nil {
		flags.ShowLeads = *req.ShowLeads
	}
	if req.ShowHUD != nil {
		flags.ShowHUD = *req.ShowHUD
	}
	if req.ShowDM != nil {
		flags.ShowDM = *req.ShowDM
	}
	if req.ShowScanner != nil {
		flags.ShowScanner = *req.ShowScanner
	}
	if req.ShowDebugStats != nil {
		flags.ShowDebugStats = *req.ShowDebugStats
	}
	if req.RenderEmpty != nil {
		flags.RenderEmptyAlerts = *req.RenderEmpty
	}
}

// @Summary MJPEG preview stream
// @Description Stream the composed HUD output as multipart MJPEG
// @Tags hud
// @Produce mpfd
// @Success 200 {string} string "multipart/x-mixed-replace stream"
// @Failure 503 {object} map[string]string
// @Router /hud/preview [get]
func (h *HUDHandler) StreamPreview(c *gin.Context) {
	if h.Preview == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "preview not available"})
		return
	}
	h.Preview.StreamMJPEGHTTP(c.Writer, c.Request)
}
