package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"roadhud-go/internal/config"
)

// ClipsHandler serves alert-triggered clips from disk
type ClipsHandler struct {
	cfg *config.Config
}

// NewClipsHandler creates a new clips handler
func NewClipsHandler(cfg *config.Config) *ClipsHandler {
	return &ClipsHandler{cfg: cfg}
}

type ClipInfo struct {
	ClipID    string    `json:"clip_id"`
	FileSize  int64     `json:"file_size"`
	CreatedAt time.Time `json:"created_at"`
}

type ClipsResponse struct {
	HUDID      string     `json:"hud_id"`
	TotalClips int        `json:"total_clips"`
	TotalSize  int64      `json:"total_size_bytes"`
	Clips      []ClipInfo `json:"clips"`
}

func (h *ClipsHandler) listClips() ([]ClipInfo, error) {
	pattern := filepath.Join(h.cfg.VideoOutputDir, "clip_*.mp4")
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}

	clips := make([]ClipInfo, 0, len(paths))
	for _, path := range paths {
		stat, err := os.Stat(path)
		if err != nil {
			continue
		}
		clips = append(clips, ClipInfo{
			ClipID:    filepath.Base(path),
			FileSize:  stat.Size(),
			CreatedAt: stat.ModTime(),
		})
	}
	// Newest first
	sort.Slice(clips, func(i, j int) bool { return clips[i].CreatedAt.After(clips[j].CreatedAt) })
	return clips, nil
}

// @Summary List alert clips
// @Description List recorded alert clips, newest first
// @Tags clips
// @Produce json
// @Param limit query int false "Maximum number of clips to return (default: 50)"
// @Success 200 {object} ClipsResponse
// @Failure 500 {object} map[string]string
// @Router /clips [get]
func (h *ClipsHandler) ListClips(c *gin.Context) {
	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	clips, err := h.listClips()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list clips")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list clips"})
		return
	}

	var totalSize int64
	for _, clip := range clips {
		totalSize += clip.FileSize
	}

	total := len(clips)
	if len(clips) > limit {
		clips = clips[:limit]
	}

	c.JSON(http.StatusOK, ClipsResponse{
		HUDID:      h.cfg.HUDID,
		TotalClips: total,
		TotalSize:  totalSize,
		Clips:      clips,
	})
}

// @Summary Stream an alert clip
// @Description Stream a recorded clip file with range support
// @Tags clips
// @Produce application/octet-stream
// @Param clip_id path string true "Clip ID (filename)"
// @Success 200 {file} video/mp4
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /clips/{clip_id} [get]
func (h *ClipsHandler) StreamClip(c *gin.Context) {
	clipID := c.Param("clip_id")

	// Only serve files the recorder wrote
	if !strings.HasPrefix(clipID, "clip_") || !strings.HasSuffix(clipID, ".mp4") || strings.Contains(clipID, "..") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid clip ID format"})
		return
	}

	path := filepath.Join(h.cfg.VideoOutputDir, clipID)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Clip not found"})
		return
	}

	c.Header("Content-Type", "video/mp4")
	c.Header("Accept-Ranges", "bytes")
	c.Header("Cache-Control", "public, max-age=3600")
	c.File(path)
}
