package geometry

// Drag is the local state of a connector-handle gesture. It is created on
// drag start, updated on every pointer move and either committed or
// cancelled on release.
type Drag struct {
	p0, p2  Point
	start   Point
	current Point
	moved   bool
	done    bool
}

// BeginDrag starts a gesture on the connector from p0 to p2 whose stored
// control point is cp (nil for the default).
func BeginDrag(p0, p2 Point, cp *Point) *Drag {
	c := NewCurve(p0, p2, cp)
	return &Drag{p0: p0, p2: p2, start: c.P1, current: c.P1}
}

// Move recomputes the local control point so the handle follows m.
// Calls after Commit or Cancel are ignored.
func (d *Drag) Move(m Point) {
	if d.done {
		return
	}
	d.current = ControlForMidpoint(d.p0, d.p2, m)
	d.moved = true
}

// Curve returns the curve to render while the drag is in flight.
func (d *Drag) Curve() Curve {
	return Curve{P0: d.p0, P1: d.current, P2: d.p2}
}

// Moved reports whether Move was called at least once.
func (d *Drag) Moved() bool { return d.moved }

// Commit ends the gesture and returns the control point to store.
// The value is always explicit, even when the handle never moved or was
// dropped on the default position.
func (d *Drag) Commit() Point {
	d.done = true
	return d.current
}

// Cancel ends the gesture and returns the control point it started from.
func (d *Drag) Cancel() Point {
	d.done = true
	d.current = d.start
	return d.start
}
