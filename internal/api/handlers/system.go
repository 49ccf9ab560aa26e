package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"roadhud-go/internal/services/statefeed"
)

// FeedStats reports state-feed counters
type FeedStats interface {
	Stats() statefeed.Stats
}

// StreamStats reports capture counters
type StreamStats interface {
	FrameCount() int64
	Reconnects() int64
}

// RecorderStats reports clip recorder status
type RecorderStats interface {
	Recording() bool
	ClipsWritten() int64
}

// BusStats reports message bus connectivity
type BusStats interface {
	IsConnected() bool
}

// TelemetryStats reports telemetry publish counters
type TelemetryStats interface {
	Stats() (published, throttled int64)
}

// SystemHandler aggregates process and subsystem statistics
type SystemHandler struct {
	HUDID     string
	StartedAt time.Time

	View      StateSource
	Preview   PreviewStreamer
	Feed      FeedStats
	Stream    StreamStats
	Recorder  RecorderStats
	Bus       BusStats
	Telemetry TelemetryStats
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(hudID string) *SystemHandler {
	return &SystemHandler{
		HUDID:     hudID,
		StartedAt: time.Now(),
	}
}

// @Summary Get system stats
// @Description Process statistics plus per-subsystem counters
// @Tags system
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /system/stats [get]
func (h *SystemHandler) GetStats(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	stats := gin.H{
		"hud_id":         h.HUDID,
		"uptime_seconds": int64(time.Since(h.StartedAt).Seconds()),
		"memory_mb":      m.Alloc / 1024 / 1024,
		"cpu_cores":      runtime.NumCPU(),
		"goroutines":     runtime.NumGoroutine(),
		"go_version":     runtime.Version(),
	}

	if h.View != nil {
		snap := h.View.Snapshot()
		stats["pipeline"] = gin.H{
			"running":     snap.Running,
			"onroad":      snap.Running && !snap.Offroad,
			"draw_fps":    snap.DrawFPS,
			"capture_fps": snap.CaptureFPS,
			"frame_count": snap.FrameCount,
		}
	}
	if h.Feed != nil {
		stats["state_feed"] = h.Feed.Stats()
	}
	if h.Stream != nil {
		stats["capture"] = gin.H{
			"frames":     h.Stream.FrameCount(),
			"reconnects": h.Stream.Reconnects(),
		}
	}
	if h.Preview != nil {
		stats["preview"] = gin.H{"viewers": h.Preview.ViewerCount()}
	}
	if h.Recorder != nil {
		stats["recorder"] = gin.H{
			"recording":     h.Recorder.Recording(),
			"clips_written": h.Recorder.ClipsWritten(),
		}
	}
	if h.Bus != nil {
		stats["nats_connected"] = h.Bus.IsConnected()
	}
	if h.Telemetry != nil {
		published, throttled := h.Telemetry.Stats()
		stats["telemetry"] = gin.H{
			"published": published,
			"throttled": throttled,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"stats":     stats,
		"timestamp": time.Now().Unix(),
	})
}
