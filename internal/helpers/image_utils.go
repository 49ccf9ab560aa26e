// Package helpers holds image encoding utilities shared by the telemetry
// publisher, the MJPEG preview, and the clip recorder.
package helpers

import (
	"encoding/base64"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"roadhud-go/internal/models"
)

const (
	// JPEG quality bounds
	MinQuality     = 1
	MaxQuality     = 100
	DefaultQuality = 80
)

// ValidateFrame checks that a composed frame carries pixel data consistent
// with its declared dimensions (BGR24, 3 bytes per pixel)
func ValidateFrame(frame *models.ComposedFrame) error {
	if frame == nil {
		return fmt.Errorf("nil frame")
	}
	if len(frame.Data) == 0 {
		return fmt.Errorf("empty frame data")
	}
	if frame.Width <= 0 || frame.Height <= 0 {
		return fmt.Errorf("invalid frame dimensions %dx%d", frame.Width, frame.Height)
	}
	if expected := frame.Width * frame.Height * 3; len(frame.Data) != expected {
		return fmt.Errorf("frame data length %d does not match %dx%d BGR24 (want %d)",
			len(frame.Data), frame.Width, frame.Height, expected)
	}
	return nil
}

// fitWithin scales (w, h) down to fit inside (maxW, maxH) preserving aspect
// ratio. Never upscales; zero or negative caps mean unbounded.
func fitWithin(w, h, maxW, maxH int) (int, int) {
	if maxW <= 0 || maxH <= 0 {
		return w, h
	}
	scaleX := float64(maxW) / float64(w)
	scaleY := float64(maxH) / float64(h)
	scale := scaleX
	if scaleY < scaleX {
		scale = scaleY
	}
	if scale >= 1.0 {
		return w, h
	}
	nw := int(float64(w) * scale)
	nh := int(float64(h) * scale)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	return nw, nh
}

// clampQuality bounds a JPEG quality setting to the valid range
func clampQuality(q int) int {
	if q < MinQuality {
		return DefaultQuality
	}
	if q > MaxQuality {
		return MaxQuality
	}
	return q
}

// EncodeFrameJPEG encodes a BGR24 composed frame as JPEG, downscaling to fit
// within maxWidth x maxHeight when caps are set
func EncodeFrameJPEG(frame *models.ComposedFrame, maxWidth, maxHeight, quality int) ([]byte, error) {
	if err := ValidateFrame(frame); err != nil {
		return nil, err
	}

	mat, err := gocv.NewMatFromBytes(frame.Height, frame.Width, gocv.MatTypeCV8UC3, frame.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to create Mat from frame data: %w", err)
	}
	defer mat.Close()

	encodeMat := mat
	if nw, nh := fitWithin(frame.Width, frame.Height, maxWidth, maxHeight); nw != frame.Width || nh != frame.Height {
		resized := gocv.NewMat()
		defer resized.Close()
		gocv.Resize(mat, &resized, image.Pt(nw, nh), 0, 0, gocv.InterpolationArea)
		encodeMat = resized
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, encodeMat, []int{gocv.IMWriteJpegQuality, clampQuality(quality)})
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame as JPEG: %w", err)
	}
	defer buf.Close()

	// The buffer backs C memory; copy out before it is released
	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

// SnapshotB64 returns the frame as a base64 JPEG suitable for embedding in
// bus payloads
func SnapshotB64(frame *models.ComposedFrame, maxWidth, maxHeight, quality int) (string, error) {
	jpegData, err := EncodeFrameJPEG(frame, maxWidth, maxHeight, quality)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(jpegData), nil
}
