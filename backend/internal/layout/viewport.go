package layout

import "math"

// Zoom limits
const (
	MinScale = 0.2
	MaxScale = 3.0

	wheelZoomIn   = 1.1
	wheelZoomOut  = 0.9
	buttonZoomIn  = 1.2
	buttonZoomOut = 0.8
)

// Viewport maps world coordinates onto the canvas. Scaling happens around
// the canvas centre and the translation is applied after it:
//
//	screen = (world - centre) * Scale + centre + (X, Y)
type Viewport struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Scale  float64 `json:"scale"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewViewport returns the identity transform for a canvas
func NewViewport(width, height float64) Viewport {
	return Viewport{Scale: 1, Width: width, Height: height}
}

func (v Viewport) center() Position {
	return Position{X: v.Width / 2, Y: v.Height / 2}
}

// ToScreen converts a world position to canvas pixels
func (v Viewport) ToScreen(world Position) Position {
	c := v.center()
	return world.Sub(c).Scale(v.Scale).Add(c).Add(Position{X: v.X, Y: v.Y})
}

// ToWorld converts canvas pixels to a world position
func (v Viewport) ToWorld(screen Position) Position {
	c := v.center()
	return screen.Sub(Position{X: v.X, Y: v.Y}).Sub(c).Scale(1 / v.Scale).Add(c)
}

// Pan shifts the view by a screen delta
func (v *Viewport) Pan(dx, dy float64) {
	v.X += dx
	v.Y += dy
}

// Zoom multiplies the scale, clamped to [MinScale, MaxScale]
func (v *Viewport) Zoom(factor float64) {
	v.Scale = math.Min(math.Max(v.Scale*factor, MinScale), MaxScale)
}

// Reset restores the identity transform
func (v *Viewport) Reset() {
	v.X, v.Y, v.Scale = 0, 0, 1
}

// CenterOn pans so that world lands on the canvas centre at the current scale
func (v *Viewport) CenterOn(world Position) {
	d := v.center().Sub(world).Scale(v.Scale)
	v.X, v.Y = d.X, d.Y
}

// Resize changes the canvas size, keeping pan and zoom
func (v *Viewport) Resize(width, height float64) {
	v.Width, v.Height = width, height
}
