package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"roadhud-go/internal/container"
	"roadhud-go/internal/hud"
	"roadhud-go/internal/models"
)

func TestStateResponseWithoutState(t *testing.T) {
	resp := stateResponse(container.Snapshot{
		HUDID:   "hud-test",
		Running: true,
		Offroad: true,
	})

	require.Equal(t, "hud-test", resp.HUDID)
	require.False(t, resp.Onroad)
	require.Equal(t, "unknown", resp.Status)
	require.Equal(t, "none", resp.AlertSize)
	require.Empty(t, resp.LastFrame)
}

func TestStateResponseWithState(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 30, 45, 0, time.UTC)
	resp := stateResponse(container.Snapshot{
		HUDID:       "hud-test",
		Running:     true,
		DrawFPS:     29.7,
		CaptureFPS:  30.1,
		FrameCount:  1234,
		LastFrameAt: ts,
		State: &models.VehicleState{
			Status:     models.StatusEngaged,
			Speed:      27.8,
			SpeedUnit:  models.SpeedUnitMetric,
			SetSpeed:   33.3,
			SpeedLimit: 27.8,
			Leads:      []models.LeadObject{{}, {}},
			Alert:      models.Alert{Text: "Check mirrors", Size: models.AlertSizeSmall},
		},
	})

	require.True(t, resp.Onroad)
	require.Equal(t, "engaged", resp.Status)
	require.InDelta(t, 27.8, resp.Speed, 0.001)
	require.Equal(t, "metric", resp.SpeedUnit)
	require.InDelta(t, 33.3, resp.SetSpeed, 0.001)
	require.Equal(t, 2, resp.LeadCount)
	require.Equal(t, "Check mirrors", resp.AlertText)
	require.Equal(t, "small", resp.AlertSize)
	require.Equal(t, int64(1234), resp.FrameCount)
	require.Equal(t, "2025-06-01T12:30:45.000Z", resp.LastFrame)
}

func TestGetStateEndpoint(t *testing.T) {
	view := &fakeView{snap: container.Snapshot{HUDID: "hud-test", Running: true}}
	h := NewHUDHandler(view, nil)

	rec := perform(h.GetState, http.MethodGet, "/hud/state", "/hud/state", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.HUDStateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "hud-test", resp.HUDID)
	require.True(t, resp.Onroad)
}

func TestGetFlagsEndpoint(t *testing.T) {
	view := &fakeView{snap: container.Snapshot{
		Flags: hud.OverlayFlags{ShowLaneLines: true, ShowHUD: true},
	}}
	h := NewHUDHandler(view, nil)

	rec := perform(h.GetFlags, http.MethodGet, "/hud/flags", "/hud/flags", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp["show_lane_lines"])
	require.True(t, resp["show_hud"])
	require.False(t, resp["show_leads"])
	require.False(t, resp["show_debug_stats"])
}

func TestUpdateFlagsPatchesOnlyProvidedFields(t *testing.T) {
	view := &fakeView{snap: container.Snapshot{
		Flags: hud.OverlayFlags{
			ShowLaneLines: true,
			ShowRoadEdges: true,
			ShowLeads:     true,
			ShowHUD:       true,
		},
	}}
	h := NewHUDHandler(view, nil)

	body := `{"show_lane_lines": false, "show_debug_stats": true}`
	rec := perform(h.UpdateFlags, http.MethodPut, "/hud/flags", "/hud/flags", body)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, view.updated, 1)
	got := view.updated[0]
	require.False(t, got.ShowLaneLines, "patched off")
	require.True(t, got.ShowDebugStats, "patched on")
	require.True(t, got.ShowRoadEdges, "untouched")
	require.True(t, got.ShowLeads, "untouched")
	require.True(t, got.ShowHUD, "untouched")

	var resp map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp["show_lane_lines"])
	require.True(t, resp["show_debug_stats"])
}

func TestUpdateFlagsRejectsBadPayload(t *testing.T) {
	view := &fakeView{}
	h := NewHUDHandler(view, nil)

	rec := perform(h.UpdateFlags, http.MethodPut, "/hud/flags", "/hud/flags", `{"show_hud": "yes"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, view.updated)
}

func TestApplyFlagPatch(t *testing.T) {
	on := true
	off := false

	flags := hud.OverlayFlags{ShowHUD: true, ShowScanner: true}
	applyFlagPatch(&flags, models.OverlayFlagsRequest{
		ShowScanner: &off,
		ShowDM:      &on,
		RenderEmpty: &on,
	})

	require.True(t, flags.ShowHUD, "absent fields unchanged")
	require.False(t, flags.ShowScanner)
	require.True(t, flags.ShowDM)
	require.True(t, flags.RenderEmptyAlerts)
}

func TestStreamPreviewUnavailable(t *testing.T) {
	h := NewHUDHandler(&fakeView{}, nil)

	rec := perform(h.StreamPreview, http.MethodGet, "/hud/preview", "/hud/preview", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStreamPreviewDelegates(t *testing.T) {
	preview := &fakePreview{}
	h := NewHUDHandler(&fakeView{}, preview)

	rec := perform(h.StreamPreview, http.MethodGet, "/hud/preview", "/hud/preview", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, preview.served)
	require.Contains(t, rec.Body.String(), "mjpeg-stream")
}
