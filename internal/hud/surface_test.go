package hud

import (
	"image"
	"image/color"
)

// recordSurface captures draw calls for assertions without rasterizing.
// TextSize is a deterministic approximation so centering math is stable.
type recordSurface struct {
	W, H int
	Ops  []drawOp
}

type drawOp struct {
	Kind           string
	X1, Y1, X2, Y2 int
	Color          color.RGBA
	Text           string
	Count          int // point count or radius
}

func newRecordSurface(w, h int) *recordSurface {
	return &recordSurface{W: w, H: h}
}

func (r *recordSurface) Size() (int, int) { return r.W, r.H }

func (r *recordSurface) Line(p1, p2 image.Point, c color.RGBA, thickness int) {
	r.Ops = append(r.Ops, drawOp{Kind: "line", X1: p1.X, Y1: p1.Y, X2: p2.X, Y2: p2.Y, Color: c})
}

func (r *recordSurface) Polyline(pts []image.Point, c color.RGBA, thickness int) {
	op := drawOp{Kind: "polyline", Color: c, Count: len(pts)}
	if len(pts) > 0 {
		op.X1, op.Y1 = pts[0].X, pts[0].Y
	}
	r.Ops = append(r.Ops, op)
}

func (r *recordSurface) FillPoly(pts []image.Point, c color.RGBA) {
	op := drawOp{Kind: "fillpoly", Color: c, Count: len(pts)}
	for _, p := range pts {
		op.X1 += p.X
		op.Y1 += p.Y
	}
	if len(pts) > 0 {
		op.X1 /= len(pts) // centroid
		op.Y1 /= len(pts)
	}
	r.Ops = append(r.Ops, op)
}

func (r *recordSurface) FillRect(rect image.Rectangle, c color.RGBA) {
	r.Ops = append(r.Ops, drawOp{Kind: "fillrect", X1: rect.Min.X, Y1: rect.Min.Y, X2: rect.Max.X, Y2: rect.Max.Y, Color: c})
}

func (r *recordSurface) StrokeRect(rect image.Rectangle, c color.RGBA, thickness int) {
	r.Ops = append(r.Ops, drawOp{Kind: "strokerect", X1: rect.Min.X, Y1: rect.Min.Y, X2: rect.Max.X, Y2: rect.Max.Y, Color: c})
}

func (r *recordSurface) FillCircle(center image.Point, radius int, c color.RGBA) {
	r.Ops = append(r.Ops, drawOp{Kind: "fillcircle", X1: center.X, Y1: center.Y, Count: radius, Color: c})
}

func (r *recordSurface) StrokeCircle(center image.Point, radius int, c color.RGBA, thickness int) {
	r.Ops = append(r.Ops, drawOp{Kind: "strokecircle", X1: center.X, Y1: center.Y, Count: radius, Color: c})
}

func (r *recordSurface) Text(text string, org image.Point, scale float64, c color.RGBA, thickness int) {
	r.Ops = append(r.Ops, drawOp{Kind: "text", X1: org.X, Y1: org.Y, Text: text, Color: c})
}

func (r *recordSurface) TextSize(text string, scale float64, thickness int) (int, int) {
	return int(float64(len(text)) * 12 * scale), int(24 * scale)
}

func (r *recordSurface) ofKind(kind string) []drawOp {
	var out []drawOp
	for _, op := range r.Ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

func (r *recordSurface) hasText(text string) bool {
	for _, op := range r.Ops {
		if op.Kind == "text" && op.Text == text {
			return true
		}
	}
	return false
}
