package hud

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"roadhud-go/internal/filter"
	"roadhud-go/internal/projection"
)

// LifecycleOptions configures the frame lifecycle
type LifecycleOptions struct {
	Intrinsics  projection.Intrinsics
	Calibration projection.Calibration
	Zoom        float64

	FPSTimeConstant  float64 // seconds, smoothing for the draw-rate estimate
	NominalFrameTime float64 // seconds, expected inter-frame interval
	FPSThreshold     float64 // below this the overlay recompute is throttled
	SkipStride       int     // recompute every Nth frame while throttled
}

// FrameLifecycle owns graphics initialization, the cached frame transform
// and the fps-adaptive overlay throttle. The cached transform is the single
// authoritative source for projection; it is rebuilt whole on resize or
// calibration change, never patched.
type FrameLifecycle struct {
	opts  LifecycleOptions
	calib projection.Calibration

	transform    *projection.FrameTransform
	transformSeq uint64
	overlaySeq   uint64 // transformSeq at the last overlay recompute

	fpsFilter  *filter.FirstOrderFilter
	prevDrawT  time.Time
	frameCount int64
	skipCount  int
	slowWarned bool

	initialized bool
}

// NewFrameLifecycle creates the lifecycle; InitGraphics must succeed before
// the first frame
func NewFrameLifecycle(opts LifecycleOptions) *FrameLifecycle {
	f := filter.NewFirstOrderFilter(opts.FPSTimeConstant, opts.NominalFrameTime)
	if opts.NominalFrameTime > 0 {
		f.Reset(1.0 / opts.NominalFrameTime)
	}
	return &FrameLifecycle{
		opts:      opts,
		calib:     opts.Calibration,
		fpsFilter: f,
	}
}

// InitGraphics prepares the drawing state for the given surface size. It
// runs once; failure is fatal to the view and surfaced to the container,
// not retried here.
func (fl *FrameLifecycle) InitGraphics(width, height int) error {
	if fl.initialized {
		return nil
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid surface size %dx%d", width, height)
	}
	if fl.opts.Zoom <= 0 {
		return fmt.Errorf("invalid zoom factor %f", fl.opts.Zoom)
	}
	if fl.opts.Intrinsics.FocalX <= 0 || fl.opts.Intrinsics.FocalY <= 0 {
		return fmt.Errorf("invalid camera intrinsics %+v", fl.opts.Intrinsics)
	}
	fl.rebuild(width, height)
	fl.initialized = true
	log.Info().Int("width", width).Int("height", height).Float64("zoom", fl.opts.Zoom).Msg("🎨 Graphics surface initialized")
	return nil
}

// Initialized reports whether InitGraphics has succeeded
func (fl *FrameLifecycle) Initialized() bool {
	return fl.initialized
}

// Resize recomputes the cached frame transform for a new surface size
func (fl *FrameLifecycle) Resize(width, height int) {
	if !fl.initialized || width <= 0 || height <= 0 {
		return
	}
	fl.rebuild(width, height)
	log.Debug().Int("width", width).Int("height", height).Msg("Frame transform recomputed after resize")
}

// SetCalibration applies a live calibration update and recomputes the
// transform
func (fl *FrameLifecycle) SetCalibration(c projection.Calibration) {
	fl.calib = c
	if fl.initialized {
		w, h := fl.transform.Size()
		fl.rebuild(w, h)
		log.Debug().Float64("roll", c.Roll).Float64("pitch", c.Pitch).Float64("yaw", c.Yaw).Msg("Frame transform recomputed after calibration update")
	}
}

func (fl *FrameLifecycle) rebuild(width, height int) {
	fl.transform = projection.NewFrameTransform(fl.opts.Intrinsics, fl.calib, width, height, fl.opts.Zoom)
	fl.transformSeq++
}

// Transform returns the authoritative current transform; nil before
// InitGraphics
func (fl *FrameLifecycle) Transform() *projection.FrameTransform {
	return fl.transform
}

// BeginFrame feeds the inter-draw delta into the smoothed fps estimate.
// Returns the smoothed fps and the raw delta in seconds (zero on the first
// frame).
func (fl *FrameLifecycle) BeginFrame(now time.Time) (float64, float64) {
	fl.frameCount++
	if fl.prevDrawT.IsZero() {
		fl.prevDrawT = now
		return fl.fpsFilter.Value(), 0
	}
	dt := now.Sub(fl.prevDrawT).Seconds()
	fl.prevDrawT = now
	if dt <= 0 {
		return fl.fpsFilter.Value(), 0
	}

	fps := fl.fpsFilter.Update(1.0 / dt)
	if fps < fl.opts.FPSThreshold {
		if !fl.slowWarned {
			log.Warn().Float64("fps", fps).Msg("Slow frame rate, overlay recompute throttled")
			fl.slowWarned = true
		}
	} else {
		fl.slowWarned = false
	}
	return fps, dt
}

// ShouldRecomputeOverlay decides whether overlay geometry is rebuilt this
// frame. A transform change always forces a recompute - painting old
// geometry under a new transform is a correctness bug, not an optimization
// target. Below the fps threshold the recompute runs every SkipStride-th
// frame; camera frames themselves are never dropped.
func (fl *FrameLifecycle) ShouldRecomputeOverlay() bool {
	if fl.transformSeq != fl.overlaySeq {
		fl.overlaySeq = fl.transformSeq
		fl.skipCount = 0
		return true
	}
	if fl.fpsFilter.Value() >= fl.opts.FPSThreshold {
		fl.skipCount = 0
		return true
	}
	fl.skipCount++
	if fl.skipCount >= fl.opts.SkipStride {
		fl.skipCount = 0
		return true
	}
	return false
}

// FPS returns the current smoothed draw rate
func (fl *FrameLifecycle) FPS() float64 {
	return fl.fpsFilter.Value()
}

// FrameCount returns the number of frames begun so far
func (fl *FrameLifecycle) FrameCount() int64 {
	return fl.frameCount
}
