// Package projection converts vehicle-relative 3D positions and lane
// geometry into screen-space coordinates using the current frame transform.
package projection

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Intrinsics holds the camera focal and principal point parameters in pixels
type Intrinsics struct {
	FocalX  float64
	FocalY  float64
	CenterX float64
	CenterY float64
}

// Calibration is the live camera mounting correction, Euler angles in radians
type Calibration struct {
	Roll  float64
	Pitch float64
	Yaw   float64
}

// viewFromVehicle maps vehicle axes (X forward, Y right, Z up) onto camera
// view axes (x right, y down, z forward)
var viewFromVehicle = []float64{
	0, 1, 0,
	0, 0, -1,
	1, 0, 0,
}

// eulerRotation builds the ZYX rotation matrix for the calibration angles
func eulerRotation(c Calibration) *mat.Dense {
	sr, cr := math.Sincos(c.Roll)
	sp, cp := math.Sincos(c.Pitch)
	sy, cy := math.Sincos(c.Yaw)

	rx := mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, cr, -sr,
		0, sr, cr,
	})
	ry := mat.NewDense(3, 3, []float64{
		cp, 0, sp,
		0, 1, 0,
		-sp, 0, cp,
	})
	rz := mat.NewDense(3, 3, []float64{
		cy, -sy, 0,
		sy, cy, 0,
		0, 0, 1,
	})

	var zy, zyx mat.Dense
	zy.Mul(rz, ry)
	zyx.Mul(&zy, rx)
	return &zyx
}

// FrameTransform is the cached projection matrix plus the screen affine
// derived from the surface size. Instances are immutable; a resize or
// calibration change produces a new one (never a partial update), so a
// projection can never mix an old matrix with a new screen mapping.
type FrameTransform struct {
	ke [9]float64 // intrinsic * view-from-vehicle rotation, row major

	// Screen affine: screen = (image_plane - principal) * zoom + center
	zoom    float64
	offsetX float64
	offsetY float64

	width  int
	height int
}

// NewFrameTransform composes the full projection for the given camera
// parameters and surface size. Rebuilt whenever either changes.
func NewFrameTransform(intr Intrinsics, calib Calibration, width, height int, zoom float64) *FrameTransform {
	k := mat.NewDense(3, 3, []float64{
		intr.FocalX, 0, intr.CenterX,
		0, intr.FocalY, intr.CenterY,
		0, 0, 1,
	})
	view := mat.NewDense(3, 3, viewFromVehicle)

	var vr, ke mat.Dense
	vr.Mul(view, eulerRotation(calib))
	ke.Mul(k, &vr)

	t := &FrameTransform{
		zoom:    zoom,
		offsetX: float64(width)/2 - intr.CenterX*zoom,
		offsetY: float64(height)/2 - intr.CenterY*zoom,
		width:   width,
		height:  height,
	}
	copy(t.ke[:], ke.RawMatrix().Data)
	return t
}

// Size returns the surface dimensions this transform was built for
func (t *FrameTransform) Size() (int, int) {
	return t.width, t.height
}
