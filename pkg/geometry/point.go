package geometry

import (
	"fmt"
	"math"
)

// Epsilon is the default tolerance used by [Point.Equals].
const Epsilon = 1e-9

// Point is a position in canvas coordinates.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p−q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p multiplied by k.
func (p Point) Scale(k float64) Point { return Point{p.X * k, p.Y * k} }

// Midpoint returns the point halfway between p and q.
func (p Point) Midpoint(q Point) Point {
	return Point{(p.X + q.X) / 2, (p.Y + q.Y) / 2}
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Equals reports whether p and q differ by at most eps on both axes.
func (p Point) Equals(q Point, eps float64) bool {
	return math.Abs(p.X-q.X) <= eps && math.Abs(p.Y-q.Y) <= eps
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Rect is an axis-aligned box anchored at its top-left corner.
type Rect struct {
	Min    Point
	Width  float64
	Height float64
}

// Center returns the centre of r.
func (r Rect) Center() Point {
	return Point{r.Min.X + r.Width/2, r.Min.Y + r.Height/2}
}

// Left returns the midpoint of the left edge, where incoming connectors attach.
func (r Rect) Left() Point {
	return Point{r.Min.X, r.Min.Y + r.Height/2}
}

// Right returns the midpoint of the right edge, where outgoing connectors attach.
func (r Rect) Right() Point {
	return Point{r.Min.X + r.Width, r.Min.Y + r.Height/2}
}

// Top returns the midpoint of the top edge, where incoming connectors attach
// in a downward map.
func (r Rect) Top() Point {
	return Point{r.Min.X + r.Width/2, r.Min.Y}
}

// Bottom returns the midpoint of the bottom edge.
func (r Rect) Bottom() Point {
	return Point{r.Min.X + r.Width/2, r.Min.Y + r.Height}
}

// Max returns the bottom-right corner of r.
func (r Rect) Max() Point {
	return Point{r.Min.X + r.Width, r.Min.Y + r.Height}
}

// Overlaps reports whether r and o share any interior area.
func (r Rect) Overlaps(o Rect) bool {
	rm, om := r.Max(), o.Max()
	return r.Min.X < om.X && o.Min.X < rm.X && r.Min.Y < om.Y && o.Min.Y < rm.Y
}
