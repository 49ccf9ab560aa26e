package projection

import "roadhud-go/internal/models"

const (
	// Points may land slightly off-surface and still be worth keeping for
	// polyline continuity; beyond this margin they are discarded.
	clipMargin = 500.0

	// Depth below this is treated as behind the camera plane. Guards the
	// perspective divide so no NaN or garbage coordinate can escape.
	minDepth = 1e-6
)

// Point is a screen-space coordinate in pixels
type Point struct {
	X float64
	Y float64
}

// Project maps one vehicle-relative point to screen space. The second
// return is false when the point is behind the camera plane or outside the
// clip region; the returned point is only meaningful when it is true.
func (t *FrameTransform) Project(p models.Vec3) (Point, bool) {
	z := t.ke[6]*p.X + t.ke[7]*p.Y + t.ke[8]*p.Z
	if z < minDepth {
		return Point{}, false
	}

	u := (t.ke[0]*p.X + t.ke[1]*p.Y + t.ke[2]*p.Z) / z
	v := (t.ke[3]*p.X + t.ke[4]*p.Y + t.ke[5]*p.Z) / z

	out := Point{
		X: u*t.zoom + t.offsetX,
		Y: v*t.zoom + t.offsetY,
	}
	if out.X < -clipMargin || out.X > float64(t.width)+clipMargin ||
		out.Y < -clipMargin || out.Y > float64(t.height)+clipMargin {
		return Point{}, false
	}
	return out, true
}

// ProjectPolyline maps an ordered boundary sequence to a screen polyline,
// preserving order and dropping not-visible points. Nil and empty input
// yield an empty polyline.
func (t *FrameTransform) ProjectPolyline(points []models.Vec3) []Point {
	if len(points) == 0 {
		return nil
	}
	out := make([]Point, 0, len(points))
	for _, p := range points {
		if sp, ok := t.Project(p); ok {
			out = append(out, sp)
		}
	}
	return out
}

// ProjectLeads maps each lead to screen space, index-aligned with the
// input. Not-visible leads keep their slot with ok=false so the caller can
// still match leads to projections by index.
func (t *FrameTransform) ProjectLeads(leads []models.LeadObject) []ProjectedLead {
	if len(leads) == 0 {
		return nil
	}
	out := make([]ProjectedLead, len(leads))
	for i, l := range leads {
		p, ok := t.Project(l.Position())
		out[i] = ProjectedLead{Point: p, Visible: ok}
	}
	return out
}

// ProjectedLead is a lead's screen position with its visibility flag
type ProjectedLead struct {
	Point   Point
	Visible bool
}
