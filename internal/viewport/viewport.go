// Package viewport maps between screen pixels and page content coordinates
// under pan and zoom.
package viewport

import "math"

const (
	// DefaultMinScale and DefaultMaxScale bound the zoom level.
	DefaultMinScale = 0.1
	DefaultMaxScale = 10.0

	// WheelStep is applied per wheel notch.
	WheelStep = 1.05
	// ButtonStep is applied by ZoomIn and ZoomOut.
	ButtonStep = 1.15
)

// Viewport is the affine transform screen = content*Scale + Offset.
type Viewport struct {
	Scale   float64
	OffsetX float64
	OffsetY float64

	MinScale float64
	MaxScale float64
}

// New returns an identity viewport with the default zoom bounds.
func New() *Viewport {
	return &Viewport{Scale: 1, MinScale: DefaultMinScale, MaxScale: DefaultMaxScale}
}

// WithBounds returns an identity viewport with custom zoom bounds. Invalid
// bounds fall back to the defaults.
func WithBounds(minScale, maxScale float64) *Viewport {
	v := New()
	if minScale > 0 && maxScale >= minScale {
		v.MinScale = minScale
		v.MaxScale = maxScale
	}
	return v
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// ToContent converts a screen position to content space. ok is false when
// the position is not a usable pointer position.
func (v *Viewport) ToContent(sx, sy float64) (x, y float64, ok bool) {
	if !finite(sx) || !finite(sy) || v.Scale <= 0 {
		return 0, 0, false
	}
	return (sx - v.OffsetX) / v.Scale, (sy - v.OffsetY) / v.Scale, true
}

// ToScreen converts a content position to screen space.
func (v *Viewport) ToScreen(x, y float64) (sx, sy float64) {
	return x*v.Scale + v.OffsetX, y*v.Scale + v.OffsetY
}

func (v *Viewport) clamp(s float64) float64 {
	lo, hi := v.MinScale, v.MaxScale
	if lo <= 0 {
		lo = DefaultMinScale
	}
	if hi < lo {
		hi = DefaultMaxScale
	}
	return math.Min(math.Max(s, lo), hi)
}

// ZoomAround multiplies the scale by factor while keeping the content point
// under the anchor pixel in place. The resulting scale is clamped to the
// viewport bounds; non-positive or non-finite factors are ignored.
func (v *Viewport) ZoomAround(px, py, factor float64) {
	if !(factor > 0) || !finite(factor) || !finite(px) || !finite(py) {
		return
	}
	cx, cy, ok := v.ToContent(px, py)
	if !ok {
		return
	}
	scale := v.clamp(v.Scale * factor)
	if scale == v.Scale {
		return
	}
	v.Scale = scale
	v.OffsetX = px - cx*scale
	v.OffsetY = py - cy*scale
}

// Wheel zooms around the pointer by one wheel notch. A positive deltaY
// (scrolling down) zooms out.
func (v *Viewport) Wheel(px, py, deltaY float64) {
	switch {
	case deltaY > 0:
		v.ZoomAround(px, py, 1/WheelStep)
	case deltaY < 0:
		v.ZoomAround(px, py, WheelStep)
	}
}

// ZoomIn zooms one step around the centre of a stage of the given size.
func (v *Viewport) ZoomIn(stageW, stageH float64) {
	v.ZoomAround(stageW/2, stageH/2, ButtonStep)
}

// ZoomOut zooms one step out around the centre of the stage.
func (v *Viewport) ZoomOut(stageW, stageH float64) {
	v.ZoomAround(stageW/2, stageH/2, 1/ButtonStep)
}

// PanBy translates the view by a screen-space delta.
func (v *Viewport) PanBy(dx, dy float64) {
	if !finite(dx) || !finite(dy) {
		return
	}
	v.OffsetX += dx
	v.OffsetY += dy
}

// Reset restores scale 1 and a zero offset.
func (v *Viewport) Reset() {
	v.Scale = 1
	v.OffsetX = 0
	v.OffsetY = 0
}
