package geometry

import (
	"math"
	"testing"
)

func TestNewCurve_DefaultControl(t *testing.T) {
	p0, p2 := Pt(0, 0), Pt(100, 40)
	c := NewCurve(p0, p2, nil)

	if want := Pt(50, 20); c.P1 != want {
		t.Errorf("P1 = %v, want %v", c.P1, want)
	}
	// A default curve is a straight line, so its midpoint is the anchor midpoint.
	if got := c.Midpoint(); !got.Equals(Pt(50, 20), Epsilon) {
		t.Errorf("Midpoint() = %v, want (50, 20)", got)
	}
}

func TestNewCurve_ExplicitControl(t *testing.T) {
	cp := Pt(10, 90)
	c := NewCurve(Pt(0, 0), Pt(100, 0), &cp)

	if c.P1 != cp {
		t.Errorf("P1 = %v, want %v", c.P1, cp)
	}
	if got, want := c.Midpoint(), Pt(30, 45); !got.Equals(want, Epsilon) {
		t.Errorf("Midpoint() = %v, want %v", got, want)
	}
}

func TestMidpointMatchesAt(t *testing.T) {
	c := Curve{P0: Pt(3, -7), P1: Pt(120.5, 44), P2: Pt(-60, 18)}
	if got, want := c.Midpoint(), c.At(0.5); !got.Equals(want, 1e-12) {
		t.Errorf("Midpoint() = %v, At(0.5) = %v", got, want)
	}
	if got := c.At(0); got != c.P0 {
		t.Errorf("At(0) = %v, want %v", got, c.P0)
	}
	if got := c.At(1); !got.Equals(c.P2, 1e-12) {
		t.Errorf("At(1) = %v, want %v", got, c.P2)
	}
}

func TestControlForMidpoint_RoundTrip(t *testing.T) {
	tests := []struct {
		name       string
		p0, p2, m Point
	}{
		{"horizontal", Pt(0, 0), Pt(200, 0), Pt(100, 80)},
		{"negative", Pt(-50, -50), Pt(-300, 120), Pt(-10, 400)},
		{"coincident anchors", Pt(10, 10), Pt(10, 10), Pt(42, -3)},
		{"large", Pt(1e6, 2e6), Pt(-3e6, 5e5), Pt(1234.5678, -98765.4321)},
		{"fractional", Pt(0.1, 0.2), Pt(0.3, 0.7), Pt(0.15, 0.9)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cp := ControlForMidpoint(tt.p0, tt.p2, tt.m)
			got := NewCurve(tt.p0, tt.p2, &cp).Midpoint()
			tol := 1e-9 * math.Max(1, math.Max(math.Abs(tt.m.X), math.Abs(tt.m.Y)))
			if !got.Equals(tt.m, tol) {
				t.Errorf("Midpoint() = %v, want %v", got, tt.m)
			}
		})
	}
}

func TestControlForMidpoint_Formula(t *testing.T) {
	got := ControlForMidpoint(Pt(0, 0), Pt(100, 0), Pt(50, 50))
	if want := Pt(50, 100); !got.Equals(want, Epsilon) {
		t.Errorf("ControlForMidpoint() = %v, want %v", got, want)
	}
}

func TestWithMidpoint(t *testing.T) {
	c := NewCurve(Pt(0, 0), Pt(100, 100), nil).WithMidpoint(Pt(20, 80))
	if got := c.Midpoint(); !got.Equals(Pt(20, 80), Epsilon) {
		t.Errorf("Midpoint() = %v, want (20, 80)", got)
	}
}

func TestPath(t *testing.T) {
	c := Curve{P0: Pt(0, 0), P1: Pt(50, 25.5), P2: Pt(100, 0)}
	want := "M 0.00 0.00 Q 50.00 25.50 100.00 0.00"
	if got := c.Path(); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestRectAnchors(t *testing.T) {
	r := Rect{Min: Pt(10, 20), Width: 280, Height: 120}

	if got, want := r.Right(), Pt(290, 80); got != want {
		t.Errorf("Right() = %v, want %v", got, want)
	}
	if got, want := r.Left(), Pt(10, 80); got != want {
		t.Errorf("Left() = %v, want %v", got, want)
	}
	if got, want := r.Center(), Pt(150, 80); got != want {
		t.Errorf("Center() = %v, want %v", got, want)
	}
	if got, want := r.Top(), Pt(150, 20); got != want {
		t.Errorf("Top() = %v, want %v", got, want)
	}
	if got, want := r.Bottom(), Pt(150, 140); got != want {
		t.Errorf("Bottom() = %v, want %v", got, want)
	}
}

func TestRectOverlaps(t *testing.T) {
	a := Rect{Min: Pt(0, 0), Width: 100, Height: 100}
	tests := []struct {
		name string
		b    Rect
		want bool
	}{
		{"inside", Rect{Min: Pt(10, 10), Width: 10, Height: 10}, true},
		{"touching edge", Rect{Min: Pt(100, 0), Width: 10, Height: 10}, false},
		{"apart", Rect{Min: Pt(200, 200), Width: 10, Height: 10}, false},
		{"partial", Rect{Min: Pt(90, 90), Width: 50, Height: 50}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Overlaps(tt.b); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPointIsFinite(t *testing.T) {
	if !Pt(1, 2).IsFinite() {
		t.Error("IsFinite() = false, want true")
	}
	if Pt(math.NaN(), 0).IsFinite() {
		t.Error("IsFinite(NaN) = true, want false")
	}
	if Pt(0, math.Inf(1)).IsFinite() {
		t.Error("IsFinite(Inf) = true, want false")
	}
}
