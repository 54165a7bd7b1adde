// Package topology defines the position-free mind-map graph and the two
// adapters that produce it.
//
// # Overview
//
// A [Topology] is a rooted tree of [Node] values joined by [Edge] values.
// It carries no coordinates; layout and interaction state live elsewhere.
// Two independent adapters converge on this one type:
//
//   - [Parse] reads the indentation-based mindmap syntax
//   - [Normalize] converts a structured [Spec] from the generation service
//
// # Graph Syntax
//
// The syntax is the mermaid mindmap dialect:
//
//	mindmap
//	  root((Python Programming))
//	    Data Types
//	      Built-in Types
//	    Functions
//
// Nesting uses two spaces per level. Shape wrappers such as ((x)), (x), [x],
// {x} and )x( are stripped from labels. The first content line is always the
// root and receives the id [RootID]; every other id is a slug of its label
// suffixed with its line index, so duplicate labels never collide.
//
// [Format] writes a topology back to the syntax. Parsing the formatted text
// yields the same node count and tree shape.
//
// # Specifications
//
// A [Spec] is the abstract specification exchanged with the generation
// service. Its nodes carry a free-form type (central, primary, secondary)
// and its edges carry no identity, so [Normalize] numbers them edge-0,
// edge-1 and so on. [Changes] summarises the structural difference between
// two specifications.
package topology
