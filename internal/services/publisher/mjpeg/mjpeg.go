// Package mjpeg serves the composed HUD output as a multipart MJPEG stream
// for browser preview.
package mjpeg

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"

	"roadhud-go/internal/config"
	"roadhud-go/internal/helpers"
	"roadhud-go/internal/models"
)

type encodeFunc func(frame *models.ComposedFrame, maxW, maxH, quality int) ([]byte, error)

// Publisher keeps the latest composed frame as JPEG and fans it out to any
// number of connected viewers
type Publisher struct {
	cfg     *config.Config
	encoder encodeFunc

	jpegMu     sync.RWMutex
	latestJPEG []byte
	lastEncode time.Time

	viewerMu sync.Mutex
	viewers  map[int64]chan struct{}
	nextID   int64
}

// NewPublisher creates a new MJPEG publisher
func NewPublisher(cfg *config.Config) (*Publisher, error) {
	return &Publisher{
		cfg:     cfg,
		encoder: helpers.EncodeFrameJPEG,
		viewers: make(map[int64]chan struct{}),
	}, nil
}

// PublishFrame encodes the frame for preview, rate-capped to PreviewFPS.
// Preview is best effort; encode failures never propagate to the paint
// pipeline.
func (p *Publisher) PublishFrame(frame *models.ComposedFrame) error {
	if p.cfg.PreviewFPS > 0 {
		interval := time.Second / time.Duration(p.cfg.PreviewFPS)
		p.jpegMu.RLock()
		skip := time.Since(p.lastEncode) < interval
		p.jpegMu.RUnlock()
		if skip {
			return nil
		}
	}

	jpegData, err := p.encoder(frame, 0, 0, p.cfg.PreviewQuality)
	if err != nil {
		log.Warn().Err(err).Int64("frame_id", frame.FrameID).Msg("Preview encode failed")
		return nil
	}

	p.jpegMu.Lock()
	p.latestJPEG = jpegData
	p.lastEncode = time.Now()
	p.jpegMu.Unlock()

	p.notifyViewers()
	return nil
}

// ViewerCount returns the number of connected preview streams
func (p *Publisher) ViewerCount() int {
	p.viewerMu.Lock()
	defer p.viewerMu.Unlock()
	return len(p.viewers)
}

func (p *Publisher) registerViewer() (int64, chan struct{}) {
	p.viewerMu.Lock()
	defer p.viewerMu.Unlock()
	p.nextID++
	id := p.nextID
	ch := make(chan struct{}, 5)
	p.viewers[id] = ch
	return id, ch
}

func (p *Publisher) unregisterViewer(id int64) {
	p.viewerMu.Lock()
	defer p.viewerMu.Unlock()
	delete(p.viewers, id)
}

func (p *Publisher) notifyViewers() {
	p.viewerMu.Lock()
	defer p.viewerMu.Unlock()
	for _, ch := range p.viewers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (p *Publisher) latest() []byte {
	p.jpegMu.RLock()
	defer p.jpegMu.RUnlock()
	return p.latestJPEG
}

// StreamMJPEGHTTP writes a multipart MJPEG stream until the client
// disconnects
func (p *Publisher) StreamMJPEGHTTP(w http.ResponseWriter, r *http.Request) {
	boundary := "frame"
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+boundary)
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	id, notify := p.registerViewer()
	defer p.unregisterViewer(id)

	log.Debug().Int64("viewer_id", id).Msg("Preview viewer connected")

	writePart := func(jpegData []byte) bool {
		if _, err := io.WriteString(w, "--"+boundary+"\r\n"); err != nil {
			return false
		}
		if _, err := io.WriteString(w, "Content-Type: image/jpeg\r\n"); err != nil {
			return false
		}
		if _, err := io.WriteString(w, fmt.Sprintf("Content-Length: %d\r\n\r\n", len(jpegData))); err != nil {
			return false
		}
		if _, err := w.Write(jpegData); err != nil {
			return false
		}
		if _, err := io.WriteString(w, "\r\n"); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	first := p.latest()
	if len(first) == 0 {
		first = p.placeholderJPEG()
	}
	if len(first) > 0 {
		if !writePart(first) {
			return
		}
	}

	// Keepalive re-sends the last frame so proxies do not drop idle streams
	keepalive := time.NewTicker(2 * time.Second)
	defer keepalive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Int64("viewer_id", id).Msg("Preview viewer disconnected")
			return
		case <-notify:
			if buf := p.latest(); len(buf) > 0 && !writePart(buf) {
				return
			}
		case <-keepalive.C:
			if buf := p.latest(); len(buf) > 0 && !writePart(buf) {
				return
			}
		}
	}
}

// placeholderJPEG renders a waiting card shown before the first frame
func (p *Publisher) placeholderJPEG() []byte {
	placeholder := gocv.NewMatWithSize(360, 640, gocv.MatTypeCV8UC3)
	defer placeholder.Close()

	placeholder.SetTo(gocv.Scalar{Val1: 64, Val2: 64, Val3: 64, Val4: 0})

	textColor := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	gocv.PutText(&placeholder, fmt.Sprintf("HUD: %s", p.cfg.HUDID),
		image.Pt(20, 180), gocv.FontHersheySimplex, 1.0, textColor, 2)
	gocv.PutText(&placeholder, "Waiting for video...",
		image.Pt(20, 220), gocv.FontHersheySimplex, 0.8, textColor, 2)

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, placeholder, []int{gocv.IMWriteJpegQuality, 90})
	if err != nil {
		return nil
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out
}

// Shutdown logs the publisher teardown
func (p *Publisher) Shutdown() {
	log.Info().Int("viewers", p.ViewerCount()).Msg("MJPEG publisher shutting down")
}
