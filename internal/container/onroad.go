// Package container runs the onroad view: a single paint goroutine that
// owns all HUD state and consumes marshaled updates from the state feed,
// the video stream and the ops API.
package container

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"roadhud-go/internal/hud"
	"roadhud-go/internal/models"
	"roadhud-go/internal/projection"
)

// RunState represents the atomic run state of the onroad view
type RunState int32

const (
	StateStopped RunState = iota
	StateRunning
	StateStopping
)

func (s RunState) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// FrameSink receives composed frames
type FrameSink interface {
	PublishFrame(f *models.ComposedFrame) error
}

// MultiSink fans a composed frame out to several sinks
type MultiSink []FrameSink

// PublishFrame delivers to every sink; the last error wins
func (m MultiSink) PublishFrame(f *models.ComposedFrame) error {
	var last error
	for _, s := range m {
		if err := s.PublishFrame(f); err != nil {
			last = err
		}
	}
	return last
}

// TelemetrySink receives draw telemetry and alert events
type TelemetrySink interface {
	PublishDraw(t models.DrawTelemetry) error
	PublishAlert(a models.Alert, frame *models.ComposedFrame) error
}

// Options configures the onroad view
type Options struct {
	HUDID     string
	Lifecycle hud.LifecycleOptions
	Flags     hud.OverlayFlags

	// Lane lines below this probability are omitted from the scene
	MinLaneProb float64

	StateBuffer int
	FrameBuffer int

	Compositor Compositor
	Sink       FrameSink
	Telemetry  TelemetrySink

	Clock func() time.Time
}

type resizeEvent struct {
	width  int
	height int
}

// Snapshot is a read-only view of the container for the ops API
type Snapshot struct {
	HUDID       string
	Running     bool
	Offroad     bool
	DrawFPS     float64
	CaptureFPS  float64
	FrameCount  int64
	Flags       hud.OverlayFlags
	State       *models.VehicleState
	LastFrameAt time.Time
}

// Onroad is the onroad view container. All HUD state lives on its paint
// goroutine; the exported update methods only marshal events onto channels
// and never touch that state directly.
type Onroad struct {
	opts  Options
	clock func() time.Time

	// State management
	state   int32
	running int32

	// Shutdown synchronization
	shutdownDone chan struct{}
	stopCh       chan struct{}

	// Marshaled inputs
	states  chan *models.VehicleState
	frames  chan *models.RawFrame
	resizes chan resizeEvent
	calibs  chan projection.Calibration
	offroad chan bool
	flags   chan hud.OverlayFlags

	// Paint-goroutine-owned state
	lifecycle      *hud.FrameLifecycle
	renderer       *hud.OverlayRenderer
	alerts         *hud.AlertPresenter
	sceneGeom      hud.SceneGeometry
	disp           hud.DisplayState
	lastState      *models.VehicleState
	lastRaw        *models.RawFrame
	lastComposed   *models.ComposedFrame
	lastDrawMS     float64
	lastCaptureFPS float64
	lastFrameAt    time.Time
	offroadFlag    bool

	// Published snapshot for cross-goroutine readers
	snapMu sync.RWMutex
	snap   Snapshot

	errMu    sync.RWMutex
	fatalErr error
}

// NewOnroad creates the container; Start begins the paint goroutine
func NewOnroad(opts Options) *Onroad {
	if opts.StateBuffer <= 0 {
		opts.StateBuffer = 8
	}
	if opts.FrameBuffer <= 0 {
		opts.FrameBuffer = 4
	}
	if opts.Compositor == nil {
		opts.Compositor = NewMatCompositor()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	o := &Onroad{
		opts:      opts,
		clock:     clock,
		lifecycle: hud.NewFrameLifecycle(opts.Lifecycle),
		renderer:  hud.NewOverlayRenderer(opts.Flags),
		alerts:    hud.NewAlertPresenter(opts.Flags.RenderEmptyAlerts),
		sceneGeom: hud.SceneGeometry{Primary: -1},
	}
	o.setState(StateStopped)
	o.storeSnapshot()
	return o
}

func (o *Onroad) setState(s RunState) {
	atomic.StoreInt32(&o.state, int32(s))
}

func (o *Onroad) getState() RunState {
	return RunState(atomic.LoadInt32(&o.state))
}

func (o *Onroad) isRunning() bool {
	return atomic.LoadInt32(&o.running) == 1
}

// Start begins the paint goroutine
func (o *Onroad) Start() error {
	if !atomic.CompareAndSwapInt32(&o.state, int32(StateStopped), int32(StateRunning)) {
		return fmt.Errorf("hud %s cannot start from state %s", o.opts.HUDID, o.getState())
	}

	log.Info().Str("hud_id", o.opts.HUDID).Msg("Starting onroad view")

	atomic.StoreInt32(&o.running, 1)
	o.shutdownDone = make(chan struct{})
	o.stopCh = make(chan struct{})

	o.states = make(chan *models.VehicleState, o.opts.StateBuffer)
	o.frames = make(chan *models.RawFrame, o.opts.FrameBuffer)
	o.resizes = make(chan resizeEvent, 4)
	o.calibs = make(chan projection.Calibration, 4)
	o.offroad = make(chan bool, 4)
	o.flags = make(chan hud.OverlayFlags, 4)

	go o.run()
	return nil
}

// Stop shuts the paint goroutine down and waits for it
func (o *Onroad) Stop() error {
	if !atomic.CompareAndSwapInt32(&o.state, int32(StateRunning), int32(StateStopping)) {
		return fmt.Errorf("hud %s cannot stop from state %s", o.opts.HUDID, o.getState())
	}

	log.Info().Str("hud_id", o.opts.HUDID).Msg("Stopping onroad view")
	atomic.StoreInt32(&o.running, 0)

	func() {
		defer func() { _ = recover() }()
		close(o.stopCh)
	}()

	select {
	case <-o.shutdownDone:
	case <-time.After(5 * time.Second):
		log.Warn().Str("hud_id", o.opts.HUDID).Msg("Onroad view shutdown timeout")
	}

	// Input channels are left open: senders race Stop, and a send to an
	// abandoned buffered channel is harmless while a send to a closed one
	// panics.
	o.setState(StateStopped)
	o.storeSnapshot()
	return nil
}

// Done is closed when the paint goroutine exits, normally or fatally
func (o *Onroad) Done() <-chan struct{} {
	return o.shutdownDone
}

// Err returns the fatal error that stopped the view, if any
func (o *Onroad) Err() error {
	o.errMu.RLock()
	defer o.errMu.RUnlock()
	return o.fatalErr
}

// UpdateState delivers a new vehicle state snapshot. Non-blocking; when the
// buffer is full the snapshot is dropped because a fresher one is coming.
func (o *Onroad) UpdateState(s *models.VehicleState) {
	if !o.isRunning() || s == nil {
		return
	}
	select {
	case o.states <- s:
	default:
	}
}

// SubmitFrame delivers a camera frame for composition
func (o *Onroad) SubmitFrame(f *models.RawFrame) {
	if !o.isRunning() || f == nil {
		return
	}
	select {
	case o.frames <- f:
	default:
	}
}

// OffroadTransition switches the view between onroad and offroad
func (o *Onroad) OffroadTransition(offroad bool) {
	if !o.isRunning() {
		return
	}
	select {
	case o.offroad <- offroad:
	default:
	}
}

// Resize requests a frame transform rebuild for a new surface size
func (o *Onroad) Resize(width, height int) {
	if !o.isRunning() {
		return
	}
	select {
	case o.resizes <- resizeEvent{width: width, height: height}:
	default:
	}
}

// UpdateCalibration applies a live camera calibration update
func (o *Onroad) UpdateCalibration(c projection.Calibration) {
	if !o.isRunning() {
		return
	}
	select {
	case o.calibs <- c:
	default:
	}
}

// UpdateFlags replaces the overlay layer flags
func (o *Onroad) UpdateFlags(f hud.OverlayFlags) {
	if !o.isRunning() {
		return
	}
	select {
	case o.flags <- f:
	default:
	}
}

// Snapshot returns the current read-only view state
func (o *Onroad) Snapshot() Snapshot {
	o.snapMu.RLock()
	defer o.snapMu.RUnlock()
	return o.snap
}

// run is the paint goroutine. Every piece of HUD state is owned here.
func (o *Onroad) run() {
	defer func() {
		func() {
			defer func() { _ = recover() }()
			close(o.shutdownDone)
		}()
		if r := recover(); r != nil {
			log.Error().Str("hud_id", o.opts.HUDID).Interface("panic", r).Msg("Onroad view panic recovered")
			o.setFatal(fmt.Errorf("onroad view panic: %v", r))
		}
	}()

	log.Debug().Str("hud_id", o.opts.HUDID).Msg("Paint goroutine started")

	for o.isRunning() {
		select {
		case <-o.stopCh:
			return

		case s := <-o.states:
			// Snapshots supersede each other; only the latest matters
		DrainStates:
			for {
				select {
				case newer := <-o.states:
					s = newer
				default:
					break DrainStates
				}
			}
			o.applyState(s)

		case ev := <-o.resizes:
		DrainResizes:
			for {
				select {
				case newer := <-o.resizes:
					ev = newer
				default:
					break DrainResizes
				}
			}
			o.lifecycle.Resize(ev.width, ev.height)

		case c := <-o.calibs:
			o.lifecycle.SetCalibration(c)

		case off := <-o.offroad:
			o.applyOffroad(off)

		case f := <-o.flags:
			o.renderer.SetFlags(f)
			o.alerts.SetRenderEmpty(f.RenderEmptyAlerts)
			o.storeSnapshot()

		case frame := <-o.frames:
			drained := 0
		DrainFrames:
			for {
				select {
				case newer := <-o.frames:
					frame = newer
					drained++
				default:
					break DrainFrames
				}
			}
			if drained > 0 {
				log.Debug().
					Str("hud_id", o.opts.HUDID).
					Int("skipped_old_frames", drained).
					Int64("latest_frame_id", frame.FrameID).
					Msg("Painting latest available frame")
			}
			o.paint(frame)
		}
	}
}

// applyState installs a new vehicle state snapshot
func (o *Onroad) applyState(s *models.VehicleState) {
	if s == nil {
		return
	}
	var prevAlert models.Alert
	if o.lastState != nil {
		prevAlert = o.lastState.Alert
	}

	o.lastState = s
	o.disp = hud.NewDisplayState(s)
	o.alerts.SetAlert(s.Alert, hud.AlertColor(s.Alert.Severity))

	if o.opts.Telemetry != nil && !s.Alert.IsZero() && s.Alert != prevAlert {
		if err := o.opts.Telemetry.PublishAlert(s.Alert, o.lastComposed); err != nil {
			log.Warn().Err(err).Str("hud_id", o.opts.HUDID).Msg("Failed to publish alert event")
		}
	}

	// A changed alert repaints the held frame right away instead of waiting
	// out the camera interval. Routine state updates leave the repaint flag
	// for the next camera frame.
	if s.Alert != prevAlert && !o.offroadFlag && o.lastRaw != nil && len(o.frames) == 0 && o.alerts.ConsumeRepaint() {
		o.paint(o.lastRaw)
		return
	}
	o.storeSnapshot()
}

// applyOffroad handles the onroad/offroad transition, resetting per-drive
// state in both directions
func (o *Onroad) applyOffroad(offroad bool) {
	if offroad == o.offroadFlag {
		return
	}
	o.offroadFlag = offroad
	o.resetDrive()
	log.Info().Str("hud_id", o.opts.HUDID).Bool("offroad", offroad).Msg("Offroad transition")
	o.storeSnapshot()
}

func (o *Onroad) resetDrive() {
	o.lastState = nil
	o.lastComposed = nil
	o.disp = hud.DisplayState{}
	o.sceneGeom = hud.SceneGeometry{Primary: -1}
	o.alerts.SetAlert(models.Alert{}, hud.AlertColor(models.AlertSeverityNormal))
	o.alerts.ConsumeRepaint()
}

// paint composes one frame. Offroad frames pass through untouched so the
// preview stays live while parked.
func (o *Onroad) paint(frame *models.RawFrame) {
	if !o.lifecycle.Initialized() {
		if err := o.lifecycle.InitGraphics(frame.Width, frame.Height); err != nil {
			o.fail(fmt.Errorf("graphics init failed: %w", err))
			return
		}
	} else if w, h := o.lifecycle.Transform().Size(); w != frame.Width || h != frame.Height {
		// The capture renegotiated its size under us
		o.lifecycle.Resize(frame.Width, frame.Height)
	}

	now := o.clock()
	fps, dt := o.lifecycle.BeginFrame(now)
	o.renderer.Advance(dt)

	recomputed := false
	if !o.offroadFlag && o.lifecycle.ShouldRecomputeOverlay() {
		o.sceneGeom = hud.BuildScene(o.lifecycle.Transform(), o.lastState, o.opts.MinLaneProb)
		recomputed = true
	}

	stats := hud.DebugStats{
		DrawFPS:    fps,
		CaptureFPS: frame.CaptureFPS,
		DrawTimeMS: o.lastDrawMS,
		FrameID:    frame.FrameID,
		Skipped:    !recomputed,
	}

	start := o.clock()
	composed, err := o.opts.Compositor.Compose(frame, func(s hud.Surface) {
		if o.offroadFlag {
			return
		}
		o.renderer.Compose(s, o.disp, o.sceneGeom, stats)
		o.alerts.Render(s)
	})
	if err != nil {
		log.Warn().Err(err).Str("hud_id", o.opts.HUDID).Int64("frame_id", frame.FrameID).Msg("Frame composition failed")
		o.storeSnapshot()
		return
	}
	drawDur := o.clock().Sub(start)
	o.lastDrawMS = float64(drawDur.Microseconds()) / 1000.0

	composed.FPS = fps
	composed.DrawTime = drawDur
	composed.Offroad = o.offroadFlag
	composed.HadOverlay = recomputed
	o.lastRaw = frame
	o.lastComposed = composed
	o.lastCaptureFPS = frame.CaptureFPS
	o.lastFrameAt = now
	o.alerts.ConsumeRepaint()

	if o.opts.Sink != nil {
		if err := o.opts.Sink.PublishFrame(composed); err != nil {
			log.Warn().Err(err).Str("hud_id", o.opts.HUDID).Msg("Failed to publish composed frame")
		}
	}
	if o.opts.Telemetry != nil && !o.offroadFlag {
		t := models.DrawTelemetry{
			HUDID:      o.opts.HUDID,
			FrameID:    frame.FrameID,
			DrawTimeMS: o.lastDrawMS,
			FPS:        fps,
			CaptureFPS: frame.CaptureFPS,
			Skipped:    !recomputed,
			Timestamp:  now,
		}
		if err := o.opts.Telemetry.PublishDraw(t); err != nil {
			log.Warn().Err(err).Str("hud_id", o.opts.HUDID).Msg("Failed to publish draw telemetry")
		}
	}
	o.storeSnapshot()
}

// fail records a fatal error and stops the paint goroutine
func (o *Onroad) fail(err error) {
	log.Error().Err(err).Str("hud_id", o.opts.HUDID).Msg("Onroad view fatal error")
	o.setFatal(err)
	atomic.StoreInt32(&o.running, 0)
}

func (o *Onroad) setFatal(err error) {
	o.errMu.Lock()
	if o.fatalErr == nil {
		o.fatalErr = err
	}
	o.errMu.Unlock()
}

func (o *Onroad) storeSnapshot() {
	snap := Snapshot{
		HUDID:       o.opts.HUDID,
		Running:     o.getState() == StateRunning,
		Offroad:     o.offroadFlag,
		DrawFPS:     o.lifecycle.FPS(),
		CaptureFPS:  o.lastCaptureFPS,
		FrameCount:  o.lifecycle.FrameCount(),
		Flags:       o.renderer.Flags(),
		State:       o.lastState,
		LastFrameAt: o.lastFrameAt,
	}
	o.snapMu.Lock()
	o.snap = snap
	o.snapMu.Unlock()
}
