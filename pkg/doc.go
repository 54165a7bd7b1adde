// Package pkg provides the core libraries for AnyMaps mind-map synthesis.
//
// # Overview
//
// AnyMaps turns a prompt, pasted notes or a sketch into a mind map, lays it
// out as a tidy tree and keeps it editable: follow-up prompts merge into the
// current map without losing manual sizes, edge curves or node data. The pkg
// directory is organized into four areas:
//
//  1. Model - mermaid syntax, specifications and positioned graphs
//  2. Layout - tree placement and edge geometry
//  3. Canvas - the editing session and its generation pipeline
//  4. Infrastructure - generator client, caching, storage, rendering, serving
//
// # Architecture
//
// The typical data flow through AnyMaps:
//
//	Prompt (+ optional sketch)
//	         ↓
//	    [generate] (remote service or offline generator)
//	         ↓
//	    [topology] (parse mermaid, normalize the specification)
//	         ↓
//	    [layout] (tree positions)
//	         ↓
//	    [graph] (positioned nodes and edges)
//	         ↓
//	    [store] / [render] (versions, SVG/PNG/PDF/DOT/mermaid)
//
// [canvas] drives the whole flow for one open map and applies manual edits.
//
// # Quick Start
//
// Lay out and render mermaid syntax without a generator:
//
//	t, _ := topology.Parse(topology.CleanSyntax(src))
//	pos, _ := layout.Compute(t, layout.Sizes(t, nil), layout.Options{})
//	g := graph.Build(t, pos, nil)
//	svg, _ := render.Render(ctx, g, render.Options{Format: render.FormatSVG})
//
// Generate, edit and save a map:
//
//	sess, _ := canvas.New(generate.NewOffline(), store.NewMemoryStore(), canvas.Options{Owner: "ada"})
//	_ = sess.Generate(ctx, "History of jazz", "")
//	_ = sess.Enhance(ctx, "add key musicians", "expand")
//	_, _ = sess.Save(ctx, false)
//
// # Main Packages
//
// [topology] - Mermaid mind-map parsing and formatting, the specification
// exchanged with the generation service, and normalization of a
// specification into a single-rooted tree.
//
// [layout] - Tidy-tree placement in two directions, with node sizing and
// sibling spacing. [geometry] holds the edge handle and curve math.
//
// [graph] - The positioned node-link graph, its JSON form and merging of an
// enhanced map into an edited one.
//
// [canvas] - The editing session: generate, enhance, add, edit, connect,
// move, resize, save and load, with a status machine and chat log.
//
// [generate] - The generation service client (retries, circuit breaker,
// response cache) and the deterministic offline generator.
//
// [store] - Map and version persistence. File and memory stores live in the
// package; Redis and MongoDB backends live in subpackages.
//
// [render] - SVG, PNG, PDF, DOT and mermaid output, natively or through
// Graphviz.
//
// [server] - The HTTP API that exposes canvas sessions.
//
// [config] - Layered configuration from files, environment and flags.
//
// [cache], [errors], [httputil], [observability] and [buildinfo] provide
// the shared infrastructure.
//
// # Testing
//
// Run tests:
//
//	go test ./...               # All tests
//	go test ./pkg/canvas/...    # Specific package
//	go test -run Example ./...  # Examples only
//
// Redis and MongoDB tests need ANYMAPS_TEST_REDIS and
// ANYMAPS_TEST_MONGO and are skipped otherwise.
//
// [topology]: https://pkg.go.dev/github.com/kobex777/anymaps/pkg/topology
// [layout]: https://pkg.go.dev/github.com/kobex777/anymaps/pkg/layout
// [geometry]: https://pkg.go.dev/github.com/kobex777/anymaps/pkg/geometry
// [graph]: https://pkg.go.dev/github.com/kobex777/anymaps/pkg/graph
// [canvas]: https://pkg.go.dev/github.com/kobex777/anymaps/pkg/canvas
// [generate]: https://pkg.go.dev/github.com/kobex777/anymaps/pkg/generate
// [store]: https://pkg.go.dev/github.com/kobex777/anymaps/pkg/store
// [render]: https://pkg.go.dev/github.com/kobex777/anymaps/pkg/render
// [server]: https://pkg.go.dev/github.com/kobex777/anymaps/pkg/server
// [config]: https://pkg.go.dev/github.com/kobex777/anymaps/pkg/config
// [cache]: https://pkg.go.dev/github.com/kobex777/anymaps/pkg/cache
// [errors]: https://pkg.go.dev/github.com/kobex777/anymaps/pkg/errors
// [httputil]: https://pkg.go.dev/github.com/kobex777/anymaps/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/kobex777/anymaps/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/kobex777/anymaps/pkg/buildinfo
package pkg
