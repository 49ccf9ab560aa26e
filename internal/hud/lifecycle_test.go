package hud

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"roadhud-go/internal/models"
	"roadhud-go/internal/projection"
)

func testLifecycleOptions() LifecycleOptions {
	return LifecycleOptions{
		Intrinsics:       projection.Intrinsics{FocalX: 1000, FocalY: 1000, CenterX: 960, CenterY: 540},
		Zoom:             0.5,
		FPSTimeConstant:  0, // instant fps response keeps the throttle tests exact
		NominalFrameTime: 1.0 / 30,
		FPSThreshold:     20,
		SkipStride:       3,
	}
}

func TestInitGraphicsValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*LifecycleOptions)
		width   int
		height  int
		wantErr string
	}{
		{"zero width", func(o *LifecycleOptions) {}, 0, 1080, "invalid surface size"},
		{"negative height", func(o *LifecycleOptions) {}, 1920, -1, "invalid surface size"},
		{"zero zoom", func(o *LifecycleOptions) { o.Zoom = 0 }, 1920, 1080, "invalid zoom"},
		{"missing intrinsics", func(o *LifecycleOptions) { o.Intrinsics = projection.Intrinsics{} }, 1920, 1080, "invalid camera intrinsics"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testLifecycleOptions()
			tt.mutate(&opts)
			fl := NewFrameLifecycle(opts)

			err := fl.InitGraphics(tt.width, tt.height)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
			require.False(t, fl.Initialized())
			require.Nil(t, fl.Transform())
		})
	}

	fl := NewFrameLifecycle(testLifecycleOptions())
	require.NoError(t, fl.InitGraphics(1920, 1080))
	require.True(t, fl.Initialized())
	require.NotNil(t, fl.Transform())

	// Init is one-shot; a second call changes nothing
	before := fl.Transform()
	require.NoError(t, fl.InitGraphics(640, 480))
	require.Same(t, before, fl.Transform())
}

// After a resize, projections must come from the new transform immediately,
// even while the overlay recompute is throttled.
func TestResizeInvalidatesCachedTransform(t *testing.T) {
	opts := testLifecycleOptions()
	opts.FPSThreshold = 10000 // always throttled
	opts.SkipStride = 1000    // stride will not fire within this test
	fl := NewFrameLifecycle(opts)
	require.NoError(t, fl.InitGraphics(1920, 1080))

	require.True(t, fl.ShouldRecomputeOverlay(), "first frame computes the overlay")
	require.False(t, fl.ShouldRecomputeOverlay(), "throttle engaged")

	pt := models.Vec3{X: 20, Y: 2, Z: 0}
	pBig, ok := fl.Transform().Project(pt)
	require.True(t, ok)

	fl.Resize(960, 540)

	fresh := projection.NewFrameTransform(opts.Intrinsics, projection.Calibration{}, 960, 540, opts.Zoom)
	pWant, ok := fresh.Project(pt)
	require.True(t, ok)
	pGot, ok := fl.Transform().Project(pt)
	require.True(t, ok)

	require.Equal(t, pWant, pGot, "projection still using the pre-resize transform")
	require.NotEqual(t, pBig, pGot)

	require.True(t, fl.ShouldRecomputeOverlay(), "transform change overrides the throttle")
	require.False(t, fl.ShouldRecomputeOverlay())
}

func TestCalibrationUpdateRebuildsTransform(t *testing.T) {
	fl := NewFrameLifecycle(testLifecycleOptions())
	require.NoError(t, fl.InitGraphics(1920, 1080))
	fl.ShouldRecomputeOverlay()

	pt := models.Vec3{X: 30, Y: 0, Z: 0}
	pLevel, ok := fl.Transform().Project(pt)
	require.True(t, ok)

	fl.SetCalibration(projection.Calibration{Pitch: 0.05})
	pPitched, ok := fl.Transform().Project(pt)
	require.True(t, ok)
	require.NotEqual(t, pLevel.Y, pPitched.Y)
	require.True(t, fl.ShouldRecomputeOverlay())

	// Before init a calibration update is stored for later
	early := NewFrameLifecycle(testLifecycleOptions())
	early.SetCalibration(projection.Calibration{Pitch: 0.05})
	require.Nil(t, early.Transform())
	require.NoError(t, early.InitGraphics(1920, 1080))
	pEarly, ok := early.Transform().Project(pt)
	require.True(t, ok)
	require.InDelta(t, pPitched.Y, pEarly.Y, 1e-9)
}

func TestResizeBeforeInitIgnored(t *testing.T) {
	fl := NewFrameLifecycle(testLifecycleOptions())
	fl.Resize(960, 540)
	require.Nil(t, fl.Transform())
	require.False(t, fl.Initialized())
}

func TestOverlayThrottleStride(t *testing.T) {
	fl := NewFrameLifecycle(testLifecycleOptions())
	require.NoError(t, fl.InitGraphics(1920, 1080))
	require.True(t, fl.ShouldRecomputeOverlay())

	// Drive the smoothed fps to 5, well under the threshold of 20
	base := time.Unix(1700000000, 0)
	fl.BeginFrame(base)
	fps, dt := fl.BeginFrame(base.Add(200 * time.Millisecond))
	require.InDelta(t, 5.0, fps, 1e-9)
	require.InDelta(t, 0.2, dt, 1e-9)

	// Every third frame recomputes while throttled
	var got []bool
	for i := 0; i < 6; i++ {
		got = append(got, fl.ShouldRecomputeOverlay())
	}
	require.Equal(t, []bool{false, false, true, false, false, true}, got)
}

func TestOverlayNotThrottledAtSpeed(t *testing.T) {
	fl := NewFrameLifecycle(testLifecycleOptions())
	require.NoError(t, fl.InitGraphics(1920, 1080))

	base := time.Unix(1700000000, 0)
	now := base
	fl.BeginFrame(now)
	for i := 0; i < 10; i++ {
		now = now.Add(33 * time.Millisecond) // ~30 fps
		fl.BeginFrame(now)
		require.True(t, fl.ShouldRecomputeOverlay())
	}
}

func TestBeginFrameEdgeCases(t *testing.T) {
	fl := NewFrameLifecycle(testLifecycleOptions())
	require.NoError(t, fl.InitGraphics(1920, 1080))

	// First frame has no previous timestamp: delta is zero, fps stays at
	// the seeded nominal rate
	base := time.Unix(1700000000, 0)
	fps, dt := fl.BeginFrame(base)
	require.Zero(t, dt)
	require.InDelta(t, 30.0, fps, 1e-9)
	require.Equal(t, int64(1), fl.FrameCount())

	// A non-advancing clock does not poison the estimate
	fps, dt = fl.BeginFrame(base)
	require.Zero(t, dt)
	require.InDelta(t, 30.0, fps, 1e-9)

	fps, _ = fl.BeginFrame(base.Add(50 * time.Millisecond))
	require.InDelta(t, 20.0, fps, 1e-9)
	require.InDelta(t, fl.FPS(), fps, 1e-9)
	require.Equal(t, int64(3), fl.FrameCount())
}
