// Package videostream reads frames from the road camera with OpenCV and
// feeds them to the HUD compositor. It owns reconnection: a dead source is
// reopened with jittered exponential backoff.
package videostream

import (
	"context"
	"fmt"
	"image"
	"math"
	"math/rand/v2"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"

	"roadhud-go/internal/config"
	"roadhud-go/internal/models"
)

// fpsWindowSize is the number of recent frame timestamps used for the
// rolling capture-rate estimate
const fpsWindowSize = 30

// Sink receives captured frames; satisfied by the onroad container
type Sink interface {
	SubmitFrame(frame *models.RawFrame)
}

// Service owns the OpenCV capture loop for a single video source
type Service struct {
	cfg  *config.Config
	sink Sink

	running int32
	cancel  context.CancelFunc
	done    chan struct{}

	frameCount   int64
	reconnects   int64
	recentFrames []time.Time
}

// NewService creates a new video stream service
func NewService(cfg *config.Config, sink Sink) *Service {
	return &Service{
		cfg:  cfg,
		sink: sink,
	}
}

// Start launches the capture loop. Returns an error if already running.
func (s *Service) Start() error {
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return fmt.Errorf("video stream already running")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx)

	log.Info().
		Str("source", s.cfg.VideoSource).
		Int("width", s.cfg.CaptureWidth).
		Int("height", s.cfg.CaptureHeight).
		Msg("🎥 Video stream started")
	return nil
}

// Stop cancels the capture loop and waits for it to exit
func (s *Service) Stop() {
	if !atomic.CompareAndSwapInt32(&s.running, 1, 0) {
		return
	}
	s.cancel()
	<-s.done
	log.Info().
		Int64("frames", atomic.LoadInt64(&s.frameCount)).
		Int64("reconnects", atomic.LoadInt64(&s.reconnects)).
		Msg("Video stream stopped")
}

// FrameCount returns the number of frames delivered so far
func (s *Service) FrameCount() int64 {
	return atomic.LoadInt64(&s.frameCount)
}

// Reconnects returns how many times the source had to be reopened
func (s *Service) Reconnects() int64 {
	return atomic.LoadInt64(&s.reconnects)
}

// run keeps the source open for as long as the service is running,
// reconnecting with backoff after failures
func (s *Service) run(ctx context.Context) {
	defer close(s.done)
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Video stream loop panicked")
		}
	}()

	attempt := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		err := s.captureLoop(ctx)
		if err == nil {
			// Clean shutdown
			return
		}

		attempt++
		atomic.AddInt64(&s.reconnects, 1)
		delay := s.backoffDelay(attempt)
		log.Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("retry_in", delay).
			Msg("Video source lost, reconnecting")

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

// captureLoop opens the source and reads frames until the context is
// cancelled or the source fails beyond recovery. A nil return means
// shutdown; an error triggers a reconnect.
func (s *Service) captureLoop(ctx context.Context) error {
	cap, err := s.openSource()
	if err != nil {
		return err
	}
	defer cap.Close()

	cap.Set(gocv.VideoCaptureFrameWidth, float64(s.cfg.CaptureWidth))
	cap.Set(gocv.VideoCaptureFrameHeight, float64(s.cfg.CaptureHeight))
	cap.Set(gocv.VideoCaptureBufferSize, 1)

	if !cap.IsOpened() {
		return fmt.Errorf("video source %s is not opened", s.cfg.VideoSource)
	}

	log.Info().
		Str("source", s.cfg.VideoSource).
		Float64("source_fps", cap.Get(gocv.VideoCaptureFPS)).
		Float64("source_width", cap.Get(gocv.VideoCaptureFrameWidth)).
		Float64("source_height", cap.Get(gocv.VideoCaptureFrameHeight)).
		Msg("Video source opened")

	img := gocv.NewMat()
	defer img.Close()

	consecutiveErrors := 0
	s.recentFrames = s.recentFrames[:0]

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if !cap.Read(&img) || img.Empty() {
			consecutiveErrors++
			if consecutiveErrors >= s.cfg.MaxConsecutiveErrors {
				return fmt.Errorf("%d consecutive read failures from %s", consecutiveErrors, s.cfg.VideoSource)
			}
			// Progressive delay before the next read attempt
			delay := time.Duration(consecutiveErrors*50) * time.Millisecond
			if delay > 2*time.Second {
				delay = 2 * time.Second
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(delay):
			}
			continue
		}
		consecutiveErrors = 0

		frame := s.buildFrame(&img)
		if frame == nil {
			continue
		}
		s.sink.SubmitFrame(frame)
	}
}

// buildFrame converts the Mat into a RawFrame at the configured output size
func (s *Service) buildFrame(img *gocv.Mat) *models.RawFrame {
	var data []byte
	if img.Cols() != s.cfg.CaptureWidth || img.Rows() != s.cfg.CaptureHeight {
		resized := gocv.NewMat()
		gocv.Resize(*img, &resized, image.Pt(s.cfg.CaptureWidth, s.cfg.CaptureHeight), 0, 0, gocv.InterpolationLinear)
		data = resized.ToBytes()
		resized.Close()
	} else {
		data = img.ToBytes()
	}
	if len(data) == 0 {
		return nil
	}

	id := atomic.AddInt64(&s.frameCount, 1)
	return &models.RawFrame{
		SourceID:   s.cfg.VideoSource,
		Data:       data,
		Timestamp:  time.Now(),
		FrameID:    id,
		Width:      s.cfg.CaptureWidth,
		Height:     s.cfg.CaptureHeight,
		Format:     "BGR24",
		CaptureFPS: s.measureFPS(),
	}
}

// measureFPS tracks a rolling window of frame timestamps. Only the capture
// goroutine touches the window.
func (s *Service) measureFPS() float64 {
	now := time.Now()
	s.recentFrames = append(s.recentFrames, now)
	if len(s.recentFrames) > fpsWindowSize {
		s.recentFrames = s.recentFrames[1:]
	}
	if len(s.recentFrames) < 2 {
		return 0
	}
	span := s.recentFrames[len(s.recentFrames)-1].Sub(s.recentFrames[0]).Seconds()
	if span <= 0 {
		return 0
	}
	return float64(len(s.recentFrames)-1) / span
}

// openSource opens a webcam by device index or a stream URL via FFmpeg
func (s *Service) openSource() (*gocv.VideoCapture, error) {
	if deviceID, err := strconv.Atoi(s.cfg.VideoSource); err == nil {
		cap, err := gocv.OpenVideoCapture(deviceID)
		if err != nil {
			return nil, fmt.Errorf("failed to open capture device %d: %w", deviceID, err)
		}
		return cap, nil
	}

	configureFFmpegOptions(s.cfg.CaptureTimeout)
	cap, err := gocv.OpenVideoCaptureWithAPI(s.cfg.VideoSource, gocv.VideoCaptureFFmpeg)
	if err != nil {
		return nil, fmt.Errorf("failed to open stream %s: %w", s.cfg.VideoSource, err)
	}
	return cap, nil
}

// backoffDelay computes a jittered exponential delay for reconnect attempts
func (s *Service) backoffDelay(attempt int) time.Duration {
	// Cap the exponent so the Duration conversion cannot overflow
	if attempt > 30 {
		attempt = 30
	}
	delay := time.Duration(math.Pow(2, float64(attempt))) * time.Second

	if delay < s.cfg.ReconnectBackoffMin {
		delay = s.cfg.ReconnectBackoffMin
	}
	if delay > s.cfg.ReconnectBackoffMax {
		delay = s.cfg.ReconnectBackoffMax
	}

	jitterPct := float64(s.cfg.ReconnectJitterPct) / 100.0
	jitter := time.Duration(float64(delay) * jitterPct * (rand.Float64()*2 - 1))
	return delay + jitter
}

// configureFFmpegOptions sets the capture options OpenCV's FFmpeg backend
// reads from the environment; low-latency settings for live streams
func configureFFmpegOptions(timeout time.Duration) {
	timeoutUS := strconv.FormatInt(timeout.Microseconds(), 10)
	options := []string{
		"rtsp_transport;tcp",
		"buffer_size;2097152",
		"max_delay;500000",
		"stimeout;" + timeoutUS,
		"rw_timeout;" + timeoutUS,
		"flags;low_delay",
		"fflags;nobuffer+flush_packets",
		"reconnect;1",
		"reconnect_at_eof;1",
		"reconnect_streamed;1",
		"reconnect_delay_max;2",
	}

	opts := ""
	for i, o := range options {
		if i > 0 {
			opts += "|"
		}
		opts += o
	}
	os.Setenv("OPENCV_FFMPEG_CAPTURE_OPTIONS", opts)
}
