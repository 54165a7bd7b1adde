package geometry

import "fmt"

// Curve is a quadratic Bézier connector.
type Curve struct {
	P0 Point // source anchor
	P1 Point // control point
	P2 Point // target anchor
}

// DefaultControl returns the control point used when none is stored: the
// midpoint of the two anchors.
func DefaultControl(p0, p2 Point) Point {
	return p0.Midpoint(p2)
}

// NewCurve builds a curve between p0 and p2. A nil cp selects [DefaultControl].
func NewCurve(p0, p2 Point, cp *Point) Curve {
	c := Curve{P0: p0, P2: p2, P1: DefaultControl(p0, p2)}
	if cp != nil {
		c.P1 = *cp
	}
	return c
}

// At evaluates the curve at parameter t in [0,1].
func (c Curve) At(t float64) Point {
	u := 1 - t
	return c.P0.Scale(u * u).Add(c.P1.Scale(2 * u * t)).Add(c.P2.Scale(t * t))
}

// Midpoint returns the on-curve point at t=0.5, where the drag handle sits.
func (c Curve) Midpoint() Point {
	return c.P0.Scale(0.25).Add(c.P1.Scale(0.5)).Add(c.P2.Scale(0.25))
}

// ControlForMidpoint returns the control point whose curve passes through m
// at t=0.5. It is the exact inverse of [Curve.Midpoint].
func ControlForMidpoint(p0, p2, m Point) Point {
	return m.Scale(2).Sub(p0.Scale(0.5)).Sub(p2.Scale(0.5))
}

// WithMidpoint returns a copy of c reshaped so its midpoint is m.
func (c Curve) WithMidpoint(m Point) Curve {
	c.P1 = ControlForMidpoint(c.P0, c.P2, m)
	return c
}

// Path returns SVG path data for the curve.
func (c Curve) Path() string {
	return fmt.Sprintf("M %s %s Q %s %s %s %s",
		num(c.P0.X), num(c.P0.Y), num(c.P1.X), num(c.P1.Y), num(c.P2.X), num(c.P2.Y))
}

func num(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
