// Package geometry computes where a video frame lands on screen: aspect
// ratio, view-mode zoom and stretch, the destination rectangle inside the
// view window, clipping, and the rotated corner coordinates of the quad.
package geometry

import "math"

// Point is a screen-space coordinate.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle given by its top-left (X1, Y1) and
// bottom-right (X2, Y2) corners.
type Rect struct {
	X1, Y1, X2, Y2 float64
}

// NewRect returns the rectangle at (x, y) with the given size.
func NewRect(x, y, width, height float64) Rect {
	return Rect{X1: x, Y1: y, X2: x + width, Y2: y + height}
}

// Width returns X2 - X1.
func (r Rect) Width() float64 { return r.X2 - r.X1 }

// Height returns Y2 - Y1.
func (r Rect) Height() float64 { return r.Y2 - r.Y1 }

// IsEmpty reports whether the rectangle has no area.
func (r Rect) IsEmpty() bool { return r.Width() <= 0 || r.Height() <= 0 }

// Intersect clamps every edge of r into o.
func (r Rect) Intersect(o Rect) Rect {
	return Rect{
		X1: clamp(r.X1, o.X1, o.X2),
		Y1: clamp(r.Y1, o.Y1, o.Y2),
		X2: clamp(r.X2, o.X1, o.X2),
		Y2: clamp(r.Y2, o.Y1, o.Y2),
	}
}

// Corners returns the corners in draw order: top-left, top-right,
// bottom-right, bottom-left.
func (r Rect) Corners() [4]Point {
	return [4]Point{
		{r.X1, r.Y1},
		{r.X2, r.Y1},
		{r.X2, r.Y2},
		{r.X1, r.Y2},
	}
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

// roundInt rounds half up to the nearest integer pixel.
func roundInt(v float64) float64 {
	return math.Floor(v + 0.5)
}
