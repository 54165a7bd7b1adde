// Package geometry provides the plane geometry behind curved mind-map
// connectors.
//
// # Curves
//
// Every connector is drawn as a quadratic Bézier [Curve] from a source anchor
// P0 through a control point P1 to a target anchor P2. When no control point
// has been stored, P1 is the midpoint of P0 and P2 and the curve is a straight
// line.
//
// The handle a user drags sits on the curve itself at t=0.5:
//
//	M = 0.25·P0 + 0.5·P1 + 0.25·P2
//
// Dragging the handle to M' solves for the new control point exactly:
//
//	P1' = 2·M' − 0.5·P0 − 0.5·P2
//
// # Drag Sessions
//
// A [Drag] holds the uncommitted control point while a gesture is in flight.
// Nothing outside the drag sees the value until [Drag.Commit] returns it:
//
//	d := geometry.BeginDrag(p0, p2, edge.ControlPoint)
//	d.Move(pointer)           // re-render with d.Curve()
//	cp := d.Commit()          // write cp into the edge record
//
// Stored control points are absolute coordinates. Moving or resizing an
// endpoint node never recomputes them.
package geometry
