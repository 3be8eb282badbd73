// Package geometry defines the coordinate model for signature field placement.
//
// All stored geometry is expressed in document points (1/72 inch), with the
// origin at the top-left corner of the page and y increasing downward. Screen
// pixels exist only as a projection at the render and pointer-capture
// boundary; a Scale value is the single bridge between the two spaces.
package geometry

import "math"

// PageSize represents fixed page dimensions in document points.
type PageSize struct {
	Width  float64
	Height float64
}

// Standard page sizes in points.
var (
	Letter = PageSize{612, 792}
	Legal  = PageSize{612, 1008}
	A4     = PageSize{595, 842}
)

// Contains returns true if the rectangle lies fully within the page.
func (p PageSize) Contains(r Rect) bool {
	return r.X >= 0 && r.Y >= 0 && r.Right() <= p.Width && r.Bottom() <= p.Height
}

// Point is a position in document points, origin top-left, y down.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// IsFinite returns true if both coordinates are finite numbers.
func (p Point) IsFinite() bool {
	return isFinite(p.X) && isFinite(p.Y)
}

// Sub returns p - other.
func (p Point) Sub(other Point) Point {
	return Point{p.X - other.X, p.Y - other.Y}
}

// Add returns p + other.
func (p Point) Add(other Point) Point {
	return Point{p.X + other.X, p.Y + other.Y}
}

// PixelPoint is a position in screen pixels. It is deliberately a distinct
// type from Point so pixel values cannot be passed where document points are
// expected without going through a Scale.
type PixelPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// IsFinite returns true if both coordinates are finite numbers.
func (p PixelPoint) IsFinite() bool {
	return isFinite(p.X) && isFinite(p.Y)
}

// Rect is an axis-aligned rectangle in document points, anchored at its
// top-left corner.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the right edge X coordinate.
func (r Rect) Right() float64 {
	return r.X + r.Width
}

// Bottom returns the bottom edge Y coordinate (y increases downward).
func (r Rect) Bottom() float64 {
	return r.Y + r.Height
}

// TopLeft returns the anchor corner.
func (r Rect) TopLeft() Point {
	return Point{r.X, r.Y}
}

// Intersects returns true if the rectangles overlap.
func (r Rect) Intersects(other Rect) bool {
	return r.X < other.Right() && r.Right() > other.X &&
		r.Y < other.Bottom() && r.Bottom() > other.Y
}

// IsFinite returns true if every component is a finite number.
func (r Rect) IsFinite() bool {
	return isFinite(r.X) && isFinite(r.Y) && isFinite(r.Width) && isFinite(r.Height)
}

// ClampInto returns the rectangle translated so that it lies within the page.
// The size is preserved; a rectangle larger than the page is pinned to the
// origin on the overflowing axis.
func (r Rect) ClampInto(page PageSize) Rect {
	r.X = clamp(r.X, 0, math.Max(0, page.Width-r.Width))
	r.Y = clamp(r.Y, 0, math.Max(0, page.Height-r.Height))
	return r
}

// Scale is the runtime ratio between on-screen pixels and document points for
// the currently displayed page. The zero value is invalid; conversions through
// an invalid scale report failure so callers can fall back to last-known-good
// geometry instead of letting NaN coordinates reach stored state.
type Scale struct {
	factor float64
}

// NewScale derives a scale from the rendered on-screen page width and the
// document page width. It must be recomputed whenever the viewport or zoom
// changes. A non-positive or non-finite input yields an invalid scale.
func NewScale(renderedWidthPx, pageWidthPt float64) Scale {
	if !isFinite(renderedWidthPx) || !isFinite(pageWidthPt) ||
		renderedWidthPx <= 0 || pageWidthPt <= 0 {
		return Scale{}
	}
	return Scale{factor: renderedWidthPx / pageWidthPt}
}

// ScaleOf builds a scale directly from a pixels-per-point factor.
func ScaleOf(factor float64) Scale {
	if !isFinite(factor) || factor <= 0 {
		return Scale{}
	}
	return Scale{factor: factor}
}

// Valid reports whether the scale can convert between spaces.
func (s Scale) Valid() bool {
	return s.factor > 0
}

// Factor returns the pixels-per-point ratio, or 0 for an invalid scale.
func (s Scale) Factor() float64 {
	return s.factor
}

// ToScreen projects a document point into screen pixels.
func (s Scale) ToScreen(p Point) PixelPoint {
	return PixelPoint{X: p.X * s.factor, Y: p.Y * s.factor}
}

// ToDocument projects a screen pixel position into document points. It
// returns ok=false if the scale is invalid or the input is not finite.
func (s Scale) ToDocument(p PixelPoint) (Point, bool) {
	if !s.Valid() || !p.IsFinite() {
		return Point{}, false
	}
	return Point{X: p.X / s.factor, Y: p.Y / s.factor}, true
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

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
