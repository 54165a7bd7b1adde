// Package canvas keeps an interactive mind map consistent with the
// generation service and the persistence layer.
//
// A [Session] owns one open map: the positioned [graph.Graph], the chat log
// that produced it, the abstract specification and graph syntax it came
// from, and the map id it is saved under. Every operation is serialised by
// the session; there are no package-level globals.
//
// # Pipeline
//
// [Session.Generate] walks the status machine
//
//	idle → planning → building → structuring → ready
//
// calling the [generate.Generator], normalizing its specification (or parsing
// its graph syntax), laying the result out and saving it silently.
// [Session.Enhance] does the same through the enhancing state and reconciles
// the answer with the current canvas using [Merge], so node sizes, node data
// and edge control points survive. Any failure moves the session to the
// error state, appends an error chat entry and leaves the graph untouched.
//
// # Manual edits
//
// Node and edge edits (add, edit, delete, connect, reconnect, disconnect,
// resize, move, control point drags) never trigger a relayout. Each one is
// followed by a silent save dispatched with [Session.SaveAsync]; call
// [Session.Wait] to collect them.
//
// # Usage
//
//	s, err := canvas.New(gen, st, canvas.Options{Owner: "me"})
//	if err != nil {
//	    return err
//	}
//	if err := s.Generate(ctx, "history of jazz", ""); err != nil {
//	    fmt.Println(errors.UserMessage(err))
//	}
//	g := s.Graph()
package canvas
