package hud

import (
	"image"
	"image/color"

	"roadhud-go/internal/models"
)

// AlertPresenter owns the currently displayed alert. SetAlert replaces it
// unconditionally - severity arbitration is the upstream feed's job, this
// only renders whatever is current.
type AlertPresenter struct {
	alert models.Alert
	bg    color.RGBA

	// An alert with empty text still renders its banner when true. Matches
	// long-standing behavior; kept switchable until product confirms.
	renderEmpty bool

	dirty bool
}

// NewAlertPresenter creates a presenter; renderEmpty controls whether
// empty-text alerts still paint a banner
func NewAlertPresenter(renderEmpty bool) *AlertPresenter {
	return &AlertPresenter{renderEmpty: renderEmpty}
}

// SetAlert replaces the displayed alert and its background color and
// requests a repaint of the owning surface
func (p *AlertPresenter) SetAlert(a models.Alert, bg color.RGBA) {
	p.alert = a
	p.bg = bg
	p.dirty = true
}

// Current returns the displayed alert and its background color
func (p *AlertPresenter) Current() (models.Alert, color.RGBA) {
	return p.alert, p.bg
}

// SetRenderEmpty switches the empty-text banner behavior at runtime
func (p *AlertPresenter) SetRenderEmpty(v bool) {
	if v != p.renderEmpty {
		p.renderEmpty = v
		p.dirty = true
	}
}

// ConsumeRepaint reports and clears the pending repaint request
func (p *AlertPresenter) ConsumeRepaint() bool {
	d := p.dirty
	p.dirty = false
	return d
}

// Render paints the banner for the current alert. Size None renders
// nothing; rendering is a pure function of (alert, bg), so repeated calls
// with the same pair produce identical output.
func (p *AlertPresenter) Render(s Surface) {
	a := p.alert
	if a.Size == models.AlertSizeNone {
		return
	}
	if a.Text == "" && a.Text2 == "" && !p.renderEmpty {
		return
	}

	w, h := s.Size()
	margin := h / 27

	switch a.Size {
	case models.AlertSizeSmall:
		bh := h / 6
		r := image.Rect(margin, h-bh-margin, w-margin, h-margin)
		s.FillRect(r, p.bg)
		centerText(s, a.Text, r, 1.4, whiteColor(255), 2)

	case models.AlertSizeMid:
		bh := h / 3
		r := image.Rect(margin, h-bh-margin, w-margin, h-margin)
		s.FillRect(r, p.bg)
		centerText(s, a.Text, r, 2.0, whiteColor(255), 3)

	case models.AlertSizeFull:
		r := image.Rect(0, 0, w, h)
		s.FillRect(r, p.bg)
		upper := image.Rect(0, 0, w, h*2/3)
		centerText(s, a.Text, upper, 2.6, whiteColor(255), 4)
		if a.Text2 != "" {
			lower := image.Rect(0, h/2, w, h)
			centerText(s, a.Text2, lower, 1.6, whiteColor(255), 2)
		}
	}
}
