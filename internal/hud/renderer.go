package hud

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// OverlayFlags gates the individual overlay layers at runtime.
// RenderEmptyAlerts is consumed by the alert presenter, not the renderer.
type OverlayFlags struct {
	ShowLaneLines     bool
	ShowRoadEdges     bool
	ShowLeads         bool
	ShowHUD           bool
	ShowDM            bool
	ShowScanner       bool
	ShowDebugStats    bool
	RenderEmptyAlerts bool
}

// DebugStats feeds the optional on-frame stats strip
type DebugStats struct {
	DrawFPS    float64
	CaptureFPS float64
	DrawTimeMS float64
	FrameID    int64
	Skipped    bool
}

// OverlayRenderer is the per-frame paint routine. It owns only presentation
// state (flags, animation clock); everything else arrives per call, so a
// frame with zero leads, zero lanes and no alert renders cleanly.
type OverlayRenderer struct {
	flags         OverlayFlags
	animationTime float64
}

// NewOverlayRenderer creates a renderer with the initial layer flags
func NewOverlayRenderer(flags OverlayFlags) *OverlayRenderer {
	return &OverlayRenderer{flags: flags}
}

// Flags returns the current layer flags
func (r *OverlayRenderer) Flags() OverlayFlags {
	return r.flags
}

// SetFlags replaces the layer flags. Called only from the paint goroutine.
func (r *OverlayRenderer) SetFlags(f OverlayFlags) {
	r.flags = f
}

// Advance moves the animation clock by dt seconds. Out-of-range deltas
// (first frame, clock jumps) are ignored rather than jerking the animation.
func (r *OverlayRenderer) Advance(dt float64) {
	if dt > 0 && dt < 1 {
		r.animationTime += dt
	}
}

// Compose paints all enabled overlay layers onto the surface
func (r *OverlayRenderer) Compose(s Surface, disp DisplayState, scene SceneGeometry, stats DebugStats) {
	if r.flags.ShowLaneLines {
		r.drawLaneLines(s, scene)
	}
	if r.flags.ShowRoadEdges {
		r.drawRoadEdges(s, scene)
	}
	if r.flags.ShowLeads {
		r.drawLeads(s, scene)
	}
	if r.flags.ShowHUD {
		r.drawHud(s, disp)
	}
	if disp.ShowAdvisory {
		r.drawAdvisory(s, disp)
	}
	if r.flags.ShowDM && disp.DMVisible {
		r.drawDriverMonitor(s, disp)
	}
	if r.flags.ShowScanner {
		r.drawScanner(s, disp)
	}
	if r.flags.ShowDebugStats {
		r.drawDebugStats(s, stats)
	}
}

func (r *OverlayRenderer) drawLaneLines(s Surface, scene SceneGeometry) {
	for _, ll := range scene.LaneLines {
		r.drawPolyline(s, ll, whiteColor(255), 4)
	}
}

func (r *OverlayRenderer) drawRoadEdges(s Surface, scene SceneGeometry) {
	for _, re := range scene.RoadEdges {
		r.drawPolyline(s, re, redColor(255), 4)
	}
}

func (r *OverlayRenderer) drawPolyline(s Surface, pl ScreenPolyline, c color.RGBA, thickness int) {
	pts := make([]image.Point, len(pl.Points))
	for i, p := range pl.Points {
		pts[i] = image.Pt(int(p.X), int(p.Y))
	}
	s.Polyline(pts, scaleColor(c, pl.Alpha), thickness)
}

func (r *OverlayRenderer) drawLeads(s Surface, scene SceneGeometry) {
	for i, lm := range scene.Leads {
		if !lm.Visible {
			continue
		}
		r.drawLead(s, lm, i == scene.Primary)
	}
}

// drawLead paints the chevron marker; the fill intensifies as the gap
// closes or the closing speed rises. The primary lead gets the lockon
// treatment on top.
func (r *OverlayRenderer) drawLead(s Surface, lm LeadMarker, primary bool) {
	w, h := s.Size()
	const speedBuff, leadBuff = 10.0, 40.0

	fill := 0.0
	if lm.Lead.DRel < leadBuff {
		fill = 1.0 - lm.Lead.DRel/leadBuff
		if lm.Lead.VRel < 0 {
			fill += -lm.Lead.VRel / speedBuff
		}
		fill = math.Min(fill, 1.0)
	}

	u := float64(h) / 1080
	sz := clamp((25*30)/(lm.Lead.DRel/3+30), 15, 30) * 2.35 * u
	x := clamp(lm.Point.X, 0, float64(w)-sz/2)
	y := math.Min(float64(h)-sz*0.6, lm.Point.Y)
	gxo, gyo := sz/5, sz/10

	glow := []image.Point{
		image.Pt(int(x+sz*1.35+gxo), int(y+sz+gyo)),
		image.Pt(int(x), int(y-gyo)),
		image.Pt(int(x-sz*1.35-gxo), int(y+sz+gyo)),
	}
	s.FillPoly(glow, leadGlow)

	chevron := []image.Point{
		image.Pt(int(x+sz*1.25), int(y+sz)),
		image.Pt(int(x), int(y)),
		image.Pt(int(x-sz*1.25), int(y+sz)),
	}
	s.FillPoly(chevron, scaleColor(redColor(255), fill))

	if primary {
		r.drawLockon(s, lm, x, y, sz)
	}
}

// drawLockon paints the animated scanner highlight on the primary lead:
// pulsing corner brackets, a rotating reticle and a distance label
func (r *OverlayRenderer) drawLockon(s Surface, lm LeadMarker, x, y, sz float64) {
	pulse := math.Sin(r.animationTime*4.0)*0.3 + 0.7
	col := scaleColor(lockonGreen, pulse)

	half := sz * 1.6
	box := image.Rect(int(x-half), int(y-half*0.6), int(x+half), int(y+sz+half*0.3))
	r.drawCornerBrackets(s, box, col, 3)
	r.drawCornerBrackets(s, box.Inset(int(half*0.25)), scaleColor(col, 0.6), 2)
	r.drawReticle(s, image.Pt(int(x), int(y+sz*0.5)), half*0.9, col)

	label := fmt.Sprintf("%.0fm", lm.Lead.DRel)
	s.Text(label, image.Pt(box.Min.X, box.Min.Y-8), 0.5, col, 1)
}

func (r *OverlayRenderer) drawCornerBrackets(s Surface, box image.Rectangle, c color.RGBA, thickness int) {
	cw := box.Dx() / 4
	ch := box.Dy() / 4

	s.Line(box.Min, image.Pt(box.Min.X+cw, box.Min.Y), c, thickness)
	s.Line(box.Min, image.Pt(box.Min.X, box.Min.Y+ch), c, thickness)

	s.Line(image.Pt(box.Max.X, box.Min.Y), image.Pt(box.Max.X-cw, box.Min.Y), c, thickness)
	s.Line(image.Pt(box.Max.X, box.Min.Y), image.Pt(box.Max.X, box.Min.Y+ch), c, thickness)

	s.Line(image.Pt(box.Min.X, box.Max.Y), image.Pt(box.Min.X+cw, box.Max.Y), c, thickness)
	s.Line(image.Pt(box.Min.X, box.Max.Y), image.Pt(box.Min.X, box.Max.Y-ch), c, thickness)

	s.Line(box.Max, image.Pt(box.Max.X-cw, box.Max.Y), c, thickness)
	s.Line(box.Max, image.Pt(box.Max.X, box.Max.Y-ch), c, thickness)
}

func (r *OverlayRenderer) drawReticle(s Surface, center image.Point, radius float64, c color.RGBA) {
	rotation := r.animationTime * 0.5
	for i := 0; i < 4; i++ {
		angle := rotation + float64(i)*math.Pi/2
		p1 := image.Pt(center.X+int(math.Cos(angle)*radius*0.8), center.Y+int(math.Sin(angle)*radius*0.8))
		p2 := image.Pt(center.X+int(math.Cos(angle)*radius), center.Y+int(math.Sin(angle)*radius))
		s.Line(p1, p2, c, 2)
	}
}

// drawHud paints the always-on readouts: set-speed box, speed limit sign,
// current speed and unit
func (r *OverlayRenderer) drawHud(s Surface, disp DisplayState) {
	w, h := s.Size()
	u := float64(h) / 1080
	margin := int(45 * u)

	// Set-speed box
	bw, bh := int(172*u), int(204*u)
	box := image.Rect(margin, margin, margin+bw, margin+bh)
	s.FillRect(box, blackColor(166))

	border, maxCol, setCol := whiteColor(75), whiteColor(110), whiteColor(115)
	if disp.CruiseSet {
		border, maxCol, setCol = whiteColor(200), whiteColor(200), whiteColor(255)
	}
	s.StrokeRect(box, border, maxi(int(6*u), 1))
	centerText(s, "MAX", image.Rect(box.Min.X, box.Min.Y, box.Max.X, box.Min.Y+bh*2/5), 0.8*u, maxCol, 2)
	centerText(s, disp.SetSpeedText, image.Rect(box.Min.X, box.Min.Y+bh*2/5, box.Max.X, box.Max.Y), 1.6*u, setCol, 3)

	// Speed limit sign, shown only when a region flag applies
	switch disp.LimitStyle {
	case LimitEU:
		radius := int(88 * u)
		c := image.Pt(margin+bw/2, box.Max.Y+margin+radius)
		s.FillCircle(c, radius, whiteColor(255))
		s.StrokeCircle(c, radius, redColor(255), maxi(int(16*u), 2))
		centerText(s, disp.LimitText,
			image.Rect(c.X-radius, c.Y-radius, c.X+radius, c.Y+radius), 1.5*u, blackColor(255), 3)
	case LimitUS:
		sw, sh := int(144*u), int(176*u)
		sign := image.Rect(margin+(bw-sw)/2, box.Max.Y+margin, margin+(bw-sw)/2+sw, box.Max.Y+margin+sh)
		s.FillRect(sign, whiteColor(255))
		s.StrokeRect(sign, blackColor(255), maxi(int(4*u), 1))
		centerText(s, "SPEED", image.Rect(sign.Min.X, sign.Min.Y, sign.Max.X, sign.Min.Y+sh/4), 0.5*u, blackColor(255), 1)
		centerText(s, "LIMIT", image.Rect(sign.Min.X, sign.Min.Y+sh/4, sign.Max.X, sign.Min.Y+sh/2), 0.5*u, blackColor(255), 1)
		centerText(s, disp.LimitText, image.Rect(sign.Min.X, sign.Min.Y+sh/2, sign.Max.X, sign.Max.Y), 1.3*u, blackColor(255), 3)
	}

	// Current speed, big and centered along the top
	centerText(s, disp.SpeedText, image.Rect(0, margin, w, margin+int(130*u)), 3.0*u, whiteColor(255), 6)
	centerText(s, disp.UnitLabel, image.Rect(0, margin+int(130*u), w, margin+int(190*u)), 0.9*u, whiteColor(200), 2)
}

// drawDriverMonitor paints the DM indicator, mirrored to the right edge on
// right-hand-drive displays
func (r *OverlayRenderer) drawDriverMonitor(s Surface, disp DisplayState) {
	w, h := s.Size()
	u := float64(h) / 1080
	radius := int(96 * u)
	margin := int(30 * u)

	cx := margin + radius
	if disp.DMRight {
		cx = w - margin - radius
	}
	center := image.Pt(cx, h-margin-radius)

	opacity := 0.2
	if disp.DMActive {
		opacity = 0.65
	}
	s.FillCircle(center, radius, blackColor(70))

	faceCol := scaleColor(whiteColor(255), opacity)
	headR := int(float64(radius) * 0.6)
	s.StrokeCircle(center, headR, faceCol, maxi(int(4*u), 2))
	eyeOff := headR / 3
	eyeR := maxi(headR/6, 1)
	s.FillCircle(image.Pt(center.X-eyeOff, center.Y-eyeOff/2), eyeR, faceCol)
	s.FillCircle(image.Pt(center.X+eyeOff, center.Y-eyeOff/2), eyeR, faceCol)
}

// drawAdvisory paints the upstream-computed speed advisory in its supplied
// color, top-right
func (r *OverlayRenderer) drawAdvisory(s Surface, disp DisplayState) {
	w, h := s.Size()
	u := float64(h) / 1080
	margin := int(45 * u)
	bw, bh := int(172*u), int(204*u)

	box := image.Rect(w-margin-bw, margin, w-margin, margin+bh)
	s.FillRect(box, blackColor(166))
	s.StrokeRect(box, disp.AdvisoryColor, maxi(int(10*u), 2))
	centerText(s, "TURN", image.Rect(box.Min.X, box.Min.Y, box.Max.X, box.Min.Y+bh*2/5), 0.8*u, whiteColor(200), 2)
	centerText(s, disp.AdvisoryText, image.Rect(box.Min.X, box.Min.Y+bh*2/5, box.Max.X, box.Max.Y), 1.6*u, whiteColor(255), 3)
}

// drawScanner paints the sweeping strip along the bottom in the theme color
func (r *OverlayRenderer) drawScanner(s Surface, disp DisplayState) {
	w, h := s.Size()
	u := float64(h) / 1080
	bandH := maxi(int(6*u), 2)
	y := h - bandH*3

	sweep := (math.Sin(r.animationTime*2.0) + 1) / 2
	bw := w / 8
	cx := int(sweep * float64(w-bw))

	col := disp.ThemeBG
	s.FillRect(image.Rect(cx, y, cx+bw, y+bandH), col)
	s.FillRect(image.Rect(maxi(cx-bw/2, 0), y, cx, y+bandH), scaleColor(col, 0.45))
	s.FillRect(image.Rect(cx+bw, y, mini(cx+bw+bw/2, w), y+bandH), scaleColor(col, 0.45))
}

func (r *OverlayRenderer) drawDebugStats(s Surface, stats DebugStats) {
	lines := make([]string, 0, 5)
	if stats.DrawFPS > 0 {
		lines = append(lines, fmt.Sprintf("Draw FPS: %.1f", stats.DrawFPS))
	} else {
		lines = append(lines, "Draw FPS: --.-")
	}
	if stats.CaptureFPS > 0 {
		lines = append(lines, fmt.Sprintf("Capture FPS: %.1f", stats.CaptureFPS))
	}
	lines = append(lines, fmt.Sprintf("Draw: %.1fms", stats.DrawTimeMS))
	lines = append(lines, fmt.Sprintf("Frame: #%d", stats.FrameID))
	if stats.Skipped {
		lines = append(lines, "Overlay: throttled")
	}

	const scale, thickness = 0.5, 1
	lineHeight, padding := 22, 8
	maxWidth := 0
	for _, line := range lines {
		tw, _ := s.TextSize(line, scale, thickness)
		if tw > maxWidth {
			maxWidth = tw
		}
	}
	_, h := s.Size()
	startY := h/2 - len(lines)*lineHeight/2
	s.FillRect(image.Rect(5, startY-padding, maxWidth+padding*2+5, startY+len(lines)*lineHeight+padding), blackColor(180))
	for i, line := range lines {
		s.Text(line, image.Pt(padding+5, startY+i*lineHeight+16), scale, whiteColor(255), thickness)
	}
}

// centerText draws text centered inside r; empty text is a valid no-glyph draw
func centerText(s Surface, text string, r image.Rectangle, scale float64, c color.RGBA, thickness int) {
	tw, th := s.TextSize(text, scale, thickness)
	org := image.Pt(r.Min.X+(r.Dx()-tw)/2, r.Min.Y+(r.Dy()+th)/2)
	s.Text(text, org, scale, c, thickness)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxi(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func mini(a, b int) int {
	if a < b {
		return a
	}
	return b
}
