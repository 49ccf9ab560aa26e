// Package filter provides the first-order low-pass smoothing used for
// display-quality signals such as the draw-rate estimate.
package filter

// FirstOrderFilter is a first-order exponential filter:
//
//	filtered += alpha * (raw - filtered)
//
// alpha is derived from the configured time constant and the nominal sample
// interval. The first sample initializes the state directly so there is no
// ramp-up bias. Update is allocation-free and deterministic for a given
// input sequence.
type FirstOrderFilter struct {
	x           float64
	alpha       float64
	dt          float64
	initialized bool
}

// NewFirstOrderFilter creates a filter with time constant rc and nominal
// sample interval dt, both in seconds
func NewFirstOrderFilter(rc, dt float64) *FirstOrderFilter {
	f := &FirstOrderFilter{dt: dt}
	f.SetTimeConstant(rc)
	return f
}

// SetTimeConstant recomputes alpha for a new time constant without
// disturbing the current filtered value
func (f *FirstOrderFilter) SetTimeConstant(rc float64) {
	f.alpha = f.dt / (rc + f.dt)
}

// Update feeds one raw sample and returns the filtered value
func (f *FirstOrderFilter) Update(raw float64) float64 {
	if !f.initialized {
		f.initialized = true
		f.x = raw
		return f.x
	}
	f.x += f.alpha * (raw - f.x)
	return f.x
}

// Value returns the current filtered value without updating
func (f *FirstOrderFilter) Value() float64 {
	return f.x
}

// Reset reinitializes the filter to x; the next Update smooths from there
func (f *FirstOrderFilter) Reset(x float64) {
	f.x = x
	f.initialized = true
}
