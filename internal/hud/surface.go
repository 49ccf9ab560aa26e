package hud

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Surface is the minimal drawing capability the overlay needs from a
// graphics backend: lines, filled shapes, text and sizing. Keeping the
// renderer on this interface keeps it portable across backends and lets
// tests record draw calls instead of rasterizing.
type Surface interface {
	Size() (width, height int)
	Line(p1, p2 image.Point, c color.RGBA, thickness int)
	Polyline(pts []image.Point, c color.RGBA, thickness int)
	FillPoly(pts []image.Point, c color.RGBA)
	FillRect(r image.Rectangle, c color.RGBA)
	StrokeRect(r image.Rectangle, c color.RGBA, thickness int)
	FillCircle(center image.Point, radius int, c color.RGBA)
	StrokeCircle(center image.Point, radius int, c color.RGBA, thickness int)
	Text(text string, org image.Point, scale float64, c color.RGBA, thickness int)
	TextSize(text string, scale float64, thickness int) (width, height int)
}

// MatSurface draws onto a gocv Mat holding the decoded camera frame
type MatSurface struct {
	mat *gocv.Mat
}

// NewMatSurface wraps an existing BGR frame Mat. The caller keeps ownership
// of the Mat and its lifetime.
func NewMatSurface(mat *gocv.Mat) *MatSurface {
	return &MatSurface{mat: mat}
}

func (s *MatSurface) Size() (int, int) {
	return s.mat.Cols(), s.mat.Rows()
}

func (s *MatSurface) Line(p1, p2 image.Point, c color.RGBA, thickness int) {
	gocv.Line(s.mat, p1, p2, c, thickness)
}

func (s *MatSurface) Polyline(pts []image.Point, c color.RGBA, thickness int) {
	for i := 1; i < len(pts); i++ {
		gocv.Line(s.mat, pts[i-1], pts[i], c, thickness)
	}
}

func (s *MatSurface) FillPoly(pts []image.Point, c color.RGBA) {
	if len(pts) < 3 {
		return
	}
	pv := gocv.NewPointsVectorFromPoints([][]image.Point{pts})
	defer pv.Close()
	gocv.FillPoly(s.mat, pv, c)
}

func (s *MatSurface) FillRect(r image.Rectangle, c color.RGBA) {
	gocv.Rectangle(s.mat, r, c, -1)
}

func (s *MatSurface) StrokeRect(r image.Rectangle, c color.RGBA, thickness int) {
	gocv.Rectangle(s.mat, r, c, thickness)
}

func (s *MatSurface) FillCircle(center image.Point, radius int, c color.RGBA) {
	gocv.Circle(s.mat, center, radius, c, -1)
}

func (s *MatSurface) StrokeCircle(center image.Point, radius int, c color.RGBA, thickness int) {
	gocv.Circle(s.mat, center, radius, c, thickness)
}

func (s *MatSurface) Text(text string, org image.Point, scale float64, c color.RGBA, thickness int) {
	gocv.PutText(s.mat, text, org, gocv.FontHersheySimplex, scale, c, thickness)
}

func (s *MatSurface) TextSize(text string, scale float64, thickness int) (int, int) {
	sz := gocv.GetTextSize(text, gocv.FontHersheySimplex, scale, thickness)
	return sz.X, sz.Y
}
