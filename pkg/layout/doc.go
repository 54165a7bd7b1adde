// Package layout computes deterministic positions for mind-map topologies.
//
// # Algorithm
//
// [Compute] performs a tidy tree layout in the spirit of ELK's mr-tree:
//
//  1. Build a spanning forest by breadth-first search. The topology root
//     seeds the first tree; every node without a parent, then every node
//     still unvisited, seeds another. Back edges and cross edges are
//     ignored, so cycles and multi-parent nodes never fail.
//  2. Assign each node to the layer given by its tree depth. Layer k starts
//     after the widest box of layer k-1 plus [Options.LayerSpacing].
//  3. Place subtrees along the cross axis in post-order. Leaves stack with
//     [Options.NodeSpacing] between boxes and a parent is centred on the
//     span of its children. Separate trees stack the same way.
//
// Output positions are the top-left corners of each node's box. The same
// topology and sizes always produce the same positions.
//
// # Sizes
//
// Callers pass a size per node id. Missing entries fall back to
// [DefaultSize] for the node's kind: the root gets a larger card than
// primary and secondary topics.
//
// # Failure
//
// [Apply] never fails. When [Compute] returns an error (or panics) it logs
// the problem and returns each node's previous position, or the origin for
// nodes that had none.
package layout
