// Package graph provides the interactive mind-map graph and its
// serialization format.
//
// The interactive graph is what a user sees and edits: topics with canvas
// positions and optional manual sizes, joined by curved connectors with
// optional control points. It is the model persisted in every map version.
//
// # Architecture
//
//   - pkg/topology.Topology: position-free structure from generation or parsing
//   - [Graph]: positioned, editable model (this package)
//   - pkg/canvas: owns a Graph and reconciles it with new topologies
//
// Use [Build] to turn a laid-out topology into a fresh Graph, and
// [Graph.Topology] to project a Graph back to its structure.
//
// # Core Types
//
//   - [Node]: topic with Position, optional Size and presentation Data
//   - [Edge]: connector with optional ControlPoint
//   - [Graph]: ordered node and edge lists
//
// A nil Size means "use the layout default for this kind". A nil
// ControlPoint means "bend through the midpoint of the anchors". Both are
// set only by explicit user actions or by restoring a saved version.
//
// # Serialization
//
// Graphs use a node-link JSON format:
//
//	{
//	  "nodes": [{"id": "central", "kind": "root", "label": "Jazz", "position": {"x": 0, "y": 60}}],
//	  "edges": [{"id": "edge-0", "source": "central", "target": "bebop_1", "controlPoint": {"x": 400, "y": 10}}]
//	}
//
// Common operations:
//
//	g, _ := graph.ReadFile("map.json")
//	graph.WriteFile(g, "copy.json")
//	data, _ := graph.Marshal(g)
//
// # Edits
//
// Edit methods such as [Graph.AddNode] and [Graph.RemoveNode] mutate the
// receiver in place and keep the edge invariant: every edge endpoint names an
// existing node. Callers that need atomic updates edit a [Graph.Clone] and
// swap it in on success.
//
// # Concurrency
//
// A Graph is not safe for concurrent writes.
package graph
