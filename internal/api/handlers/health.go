package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"roadhud-go/internal/container"
)

// HealthHandler reports liveness and overall HUD condition
type HealthHandler struct {
	HUDID      string
	Version    string
	View       StateSource
	StaleAfter time.Duration
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(hudID, version string, view StateSource, staleAfter time.Duration) *HealthHandler {
	return &HealthHandler{
		HUDID:      hudID,
		Version:    version,
		View:       view,
		StaleAfter: staleAfter,
	}
}

type HealthResponse struct {
	Status string `json:"status" example:"healthy"`
	HUDID  string `json:"hud_id" example:"hud-1"`
	Reason string `json:"reason,omitempty" example:"no frames for 12s"`
}

type HUDInfoResponse struct {
	HUDID        string   `json:"hud_id" example:"hud-1"`
	Status       string   `json:"status" example:"running"`
	Version      string   `json:"version" example:"1.0.0"`
	Capabilities []string `json:"capabilities"`
}

// healthOf classifies the snapshot: a running view that has stopped
// receiving frames while onroad is degraded, not healthy
func (h *HealthHandler) healthOf(snap container.Snapshot) (string, string) {
	if !snap.Running {
		return "stopped", ""
	}
	if !snap.Offroad && !snap.LastFrameAt.IsZero() && h.StaleAfter > 0 {
		if age := time.Since(snap.LastFrameAt); age > h.StaleAfter {
			return "degraded", "no frames for " + age.Truncate(time.Second).String()
		}
	}
	return "healthy", ""
}

// @Summary Health check
// @Description Check if the HUD pipeline is healthy and painting frames
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	status, reason := h.healthOf(h.View.Snapshot())

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, HealthResponse{
		Status: status,
		HUDID:  h.HUDID,
		Reason: reason,
	})
}

// @Summary HUD information
// @Description Get basic HUD identity and capabilities
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} HUDInfoResponse
// @Router / [get]
func (h *HealthHandler) Info(c *gin.Context) {
	status := "running"
	if !h.View.Snapshot().Running {
		status = "stopped"
	}
	c.JSON(http.StatusOK, HUDInfoResponse{
		HUDID:   h.HUDID,
		Status:  status,
		Version: h.Version,
		Capabilities: []string{
			"overlay_rendering",
			"mjpeg_preview",
			"alert_clips",
		},
	})
}
