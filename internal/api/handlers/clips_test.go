package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"roadhud-go/internal/config"
)

func clipsTestConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		HUDID:          "hud-test",
		VideoOutputDir: t.TempDir(),
	}
}

func writeClip(t *testing.T, dir, name string, size int, age time.Duration) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0644))
	mtime := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestListClipsEmpty(t *testing.T) {
	h := NewClipsHandler(clipsTestConfig(t))

	rec := perform(h.ListClips, http.MethodGet, "/clips", "/clips", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ClipsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "hud-test", resp.HUDID)
	require.Zero(t, resp.TotalClips)
	require.Empty(t, resp.Clips)
}

func TestListClipsNewestFirst(t *testing.T) {
	cfg := clipsTestConfig(t)
	writeClip(t, cfg.VideoOutputDir, "clip_old.mp4", 100, time.Hour)
	writeClip(t, cfg.VideoOutputDir, "clip_new.mp4", 200, time.Minute)
	// Files the recorder did not write are not listed
	require.NoError(t, os.WriteFile(filepath.Join(cfg.VideoOutputDir, "other.mp4"), []byte("x"), 0644))

	h := NewClipsHandler(cfg)
	rec := perform(h.ListClips, http.MethodGet, "/clips", "/clips", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ClipsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.TotalClips)
	require.Equal(t, int64(300), resp.TotalSize)
	require.Len(t, resp.Clips, 2)
	require.Equal(t, "clip_new.mp4", resp.Clips[0].ClipID)
	require.Equal(t, "clip_old.mp4", resp.Clips[1].ClipID)
}

func TestListClipsLimit(t *testing.T) {
	cfg := clipsTestConfig(t)
	for i, name := range []string{"clip_a.mp4", "clip_b.mp4", "clip_c.mp4"} {
		writeClip(t, cfg.VideoOutputDir, name, 10, time.Duration(i)*time.Minute)
	}

	h := NewClipsHandler(cfg)
	rec := perform(h.ListClips, http.MethodGet, "/clips", "/clips?limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ClipsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 3, resp.TotalClips, "total counts everything")
	require.Len(t, resp.Clips, 2, "page respects the limit")
}

func TestStreamClipRejectsBadIDs(t *testing.T) {
	h := NewClipsHandler(clipsTestConfig(t))

	for _, clipID := range []string{
		"notaclip.mp4",
		"clip_x.avi",
		"clip_..sneaky.mp4",
	} {
		rec := perform(h.StreamClip, http.MethodGet, "/clips/:clip_id", "/clips/"+clipID, "")
		require.Equal(t, http.StatusBadRequest, rec.Code, clipID)
	}
}

func TestStreamClipNotFound(t *testing.T) {
	h := NewClipsHandler(clipsTestConfig(t))

	rec := perform(h.StreamClip, http.MethodGet, "/clips/:clip_id", "/clips/clip_missing.mp4", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStreamClipServesFile(t *testing.T) {
	cfg := clipsTestConfig(t)
	content := []byte("fake mp4 payload")
	require.NoError(t, os.WriteFile(filepath.Join(cfg.VideoOutputDir, "clip_ok.mp4"), content, 0644))

	h := NewClipsHandler(cfg)
	rec := perform(h.StreamClip, http.MethodGet, "/clips/:clip_id", "/clips/clip_ok.mp4", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "video/mp4", rec.Header().Get("Content-Type"))
	require.Equal(t, "bytes", rec.Header().Get("Accept-Ranges"))
	require.Equal(t, content, rec.Body.Bytes())
}
