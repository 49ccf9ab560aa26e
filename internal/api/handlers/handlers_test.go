package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"roadhud-go/internal/container"
	"roadhud-go/internal/hud"
	"roadhud-go/internal/services/statefeed"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeView satisfies StateSource with a canned snapshot
type fakeView struct {
	mu      sync.Mutex
	snap    container.Snapshot
	updated []hud.OverlayFlags
}

func (v *fakeView) Snapshot() container.Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snap
}

func (v *fakeView) UpdateFlags(flags hud.OverlayFlags) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.snap.Flags = flags
	v.updated = append(v.updated, flags)
}

// fakePreview satisfies PreviewStreamer
type fakePreview struct {
	viewers int
	served  bool
}

func (p *fakePreview) StreamMJPEGHTTP(w http.ResponseWriter, r *http.Request) {
	p.served = true
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("mjpeg-stream"))
}

func (p *fakePreview) ViewerCount() int { return p.viewers }

type fakeFeed struct{ stats statefeed.Stats }

func (f *fakeFeed) Stats() statefeed.Stats { return f.stats }

type fakeStream struct{ frames, reconnects int64 }

func (s *fakeStream) FrameCount() int64 { return s.frames }
func (s *fakeStream) Reconnects() int64 { return s.reconnects }

type fakeRecorder struct {
	recording bool
	clips     int64
}

func (r *fakeRecorder) Recording() bool     { return r.recording }
func (r *fakeRecorder) ClipsWritten() int64 { return r.clips }

type fakeBus struct{ connected bool }

func (b *fakeBus) IsConnected() bool { return b.connected }

type fakeTelemetry struct{ published, throttled int64 }

func (t *fakeTelemetry) Stats() (int64, int64) { return t.published, t.throttled }

// perform runs a request against a single-route router and returns the recorder
func perform(handler gin.HandlerFunc, method, path, target, body string) *httptest.ResponseRecorder {
	r := gin.New()
	r.Handle(method, path, handler)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}
