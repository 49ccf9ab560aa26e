package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"roadhud-go/internal/container"
	"roadhud-go/internal/services/statefeed"
)

func TestGetStatsBareHandler(t *testing.T) {
	h := NewSystemHandler("hud-test")

	rec := perform(h.GetStats, http.MethodGet, "/system/stats", "/system/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool                   `json:"success"`
		Stats   map[string]interface{} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, "hud-test", resp.Stats["hud_id"])
	require.Contains(t, resp.Stats, "goroutines")
	require.Contains(t, resp.Stats, "go_version")

	// Unwired subsystems report nothing rather than zeros
	require.NotContains(t, resp.Stats, "pipeline")
	require.NotContains(t, resp.Stats, "state_feed")
	require.NotContains(t, resp.Stats, "capture")
	require.NotContains(t, resp.Stats, "recorder")
	require.NotContains(t, resp.Stats, "telemetry")
	require.NotContains(t, resp.Stats, "nats_connected")
}

func TestGetStatsFullyWired(t *testing.T) {
	h := NewSystemHandler("hud-test")
	h.View = &fakeView{snap: container.Snapshot{
		Running:    true,
		DrawFPS:    29.5,
		CaptureFPS: 30.0,
		FrameCount: 900,
	}}
	h.Preview = &fakePreview{viewers: 2}
	h.Feed = &fakeFeed{stats: statefeed.Stats{Received: 120, Rejected: 3}}
	h.Stream = &fakeStream{frames: 901, reconnects: 1}
	h.Recorder = &fakeRecorder{recording: true, clips: 4}
	h.Bus = &fakeBus{connected: true}
	h.Telemetry = &fakeTelemetry{published: 50, throttled: 7}

	rec := perform(h.GetStats, http.MethodGet, "/system/stats", "/system/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Stats map[string]json.RawMessage `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	var pipeline struct {
		Running    bool    `json:"running"`
		Onroad     bool    `json:"onroad"`
		DrawFPS    float64 `json:"draw_fps"`
		FrameCount int64   `json:"frame_count"`
	}
	require.NoError(t, json.Unmarshal(resp.Stats["pipeline"], &pipeline))
	require.True(t, pipeline.Running)
	require.True(t, pipeline.Onroad)
	require.InDelta(t, 29.5, pipeline.DrawFPS, 0.001)
	require.Equal(t, int64(900), pipeline.FrameCount)

	var feed statefeed.Stats
	require.NoError(t, json.Unmarshal(resp.Stats["state_feed"], &feed))
	require.Equal(t, int64(120), feed.Received)
	require.Equal(t, int64(3), feed.Rejected)

	var capture struct {
		Frames     int64 `json:"frames"`
		Reconnects int64 `json:"reconnects"`
	}
	require.NoError(t, json.Unmarshal(resp.Stats["capture"], &capture))
	require.Equal(t, int64(901), capture.Frames)
	require.Equal(t, int64(1), capture.Reconnects)

	var preview struct {
		Viewers int `json:"viewers"`
	}
	require.NoError(t, json.Unmarshal(resp.Stats["preview"], &preview))
	require.Equal(t, 2, preview.Viewers)

	var recorder struct {
		Recording    bool  `json:"recording"`
		ClipsWritten int64 `json:"clips_written"`
	}
	require.NoError(t, json.Unmarshal(resp.Stats["recorder"], &recorder))
	require.True(t, recorder.Recording)
	require.Equal(t, int64(4), recorder.ClipsWritten)

	var connected bool
	require.NoError(t, json.Unmarshal(resp.Stats["nats_connected"], &connected))
	require.True(t, connected)

	var telemetry struct {
		Published int64 `json:"published"`
		Throttled int64 `json:"throttled"`
	}
	require.NoError(t, json.Unmarshal(resp.Stats["telemetry"], &telemetry))
	require.Equal(t, int64(50), telemetry.Published)
	require.Equal(t, int64(7), telemetry.Throttled)
}
