package container

import (
	"fmt"

	"gocv.io/x/gocv"

	"roadhud-go/internal/hud"
	"roadhud-go/internal/models"
)

// Compositor turns a raw camera frame plus a paint callback into a composed
// frame. Implementations own the pixel buffer; the callback only sees the
// drawing surface.
type Compositor interface {
	Compose(frame *models.RawFrame, paint func(hud.Surface)) (*models.ComposedFrame, error)
}

// MatCompositor paints onto an OpenCV Mat backed by the frame's BGR data
type MatCompositor struct{}

// NewMatCompositor creates the production compositor
func NewMatCompositor() *MatCompositor {
	return &MatCompositor{}
}

// Compose wraps the BGR frame data in a Mat, runs the paint callback and
// returns the composited bytes
func (c *MatCompositor) Compose(frame *models.RawFrame, paint func(hud.Surface)) (*models.ComposedFrame, error) {
	if frame == nil || len(frame.Data) == 0 {
		return nil, fmt.Errorf("empty frame")
	}
	if frame.Width <= 0 || frame.Height <= 0 {
		return nil, fmt.Errorf("frame has no dimensions: %dx%d", frame.Width, frame.Height)
	}
	if want := frame.Width * frame.Height * 3; len(frame.Data) != want {
		return nil, fmt.Errorf("frame data is %d bytes, want %d for %dx%d BGR", len(frame.Data), want, frame.Width, frame.Height)
	}

	mat, err := gocv.NewMatFromBytes(frame.Height, frame.Width, gocv.MatTypeCV8UC3, frame.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap frame data: %w", err)
	}
	defer mat.Close()

	paint(hud.NewMatSurface(&mat))

	data, err := mat.ToBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to read composed frame: %w", err)
	}

	return &models.ComposedFrame{
		SourceID:  frame.SourceID,
		Data:      data,
		Timestamp: frame.Timestamp,
		FrameID:   frame.FrameID,
		Width:     frame.Width,
		Height:    frame.Height,
	}, nil
}
