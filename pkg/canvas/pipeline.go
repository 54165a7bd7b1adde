package canvas

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	errs "github.com/kobex777/anymaps/pkg/errors"
	"github.com/kobex777/anymaps/pkg/generate"
	"github.com/kobex777/anymaps/pkg/graph"
	"github.com/kobex777/anymaps/pkg/layout"
	"github.com/kobex777/anymaps/pkg/observability"
	"github.com/kobex777/anymaps/pkg/store"
	"github.com/kobex777/anymaps/pkg/topology"
)

// Assistant messages.
const (
	enhancedFallback = "Map updated successfully."
	saveFailed       = "Error: Could not save your map. Please try again."
)

// EnhanceSuggestions follow every successful enhancement.
var EnhanceSuggestions = []string{"Add more details", "Refine labels"}

// =============================================================================
// Generate
// =============================================================================

// Generate replaces the map with a freshly generated one. imageBase64 is an
// optional sketch forwarded to the generator.
//
// On failure the session moves to [StatusError], an error chat entry is
// appended, the graph is left untouched and a GENERATION_ERROR is returned.
func (s *Session) Generate(ctx context.Context, prompt, imageBase64 string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generate(ctx, prompt, imageBase64)
}

func (s *Session) generate(ctx context.Context, prompt, imageBase64 string) error {
	if err := errs.ValidatePrompt(prompt); err != nil {
		return err
	}
	s.say(store.RoleUser, prompt)
	s.setStatus(ctx, StatusPlanning)

	res, err := s.callGenerator(ctx, "generate", s.opts.GenerateTimeout, func(ctx context.Context) (*generate.Result, error) {
		return s.gen.Generate(ctx, generate.Request{Prompt: prompt, ImageBase64: imageBase64})
	})
	if err != nil {
		return s.fail(ctx, err)
	}

	s.setStatus(ctx, StatusBuilding)
	t, spec, err := structure(res)
	if err != nil {
		return s.fail(ctx, err)
	}

	s.setStatus(ctx, StatusStructuring)
	pos := s.layout(ctx, t, nil, nil)
	g := graph.Build(t, pos, spec)
	g.Direction = s.opts.Layout.Direction

	s.graph = g
	s.spec = spec
	s.syntax = syntaxOf(res.Syntax, t)
	s.title = titleOf(spec)
	s.setStatus(ctx, StatusReady)
	s.opts.Logger.Info("generated map", "title", s.title, "nodes", len(g.Nodes), "edges", len(g.Edges))

	s.saveSilently(ctx)
	return nil
}

// =============================================================================
// Enhance
// =============================================================================

// Enhance asks the generator to change the current map and merges the answer
// into the canvas. mode is one of expand, refine, focus or simplify; empty
// selects expand. Without a current specification Enhance generates a new
// map from prompt instead.
func (s *Session) Enhance(ctx context.Context, prompt, mode string) error {
	m, err := generate.ParseMode(mode)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.spec == nil {
		s.opts.Logger.Debug("no current map, generating instead")
		return s.generate(ctx, prompt, "")
	}
	if err := errs.ValidatePrompt(prompt); err != nil {
		return err
	}
	s.say(store.RoleUser, prompt)
	s.setStatus(ctx, StatusEnhancing)

	current := s.spec.Clone()
	res, err := s.callGenerator(ctx, "enhance", s.opts.EnhanceTimeout, func(ctx context.Context) (*generate.Result, error) {
		return s.gen.Enhance(ctx, generate.EnhanceRequest{Current: current, Prompt: prompt, Mode: m})
	})
	if err != nil {
		return s.fail(ctx, err)
	}

	s.setStatus(ctx, StatusStructuring)
	t, spec, err := structure(res)
	if err != nil {
		return s.fail(ctx, err)
	}
	start := time.Now()
	g := Merge(s.graph, t, spec, s.opts.Layout)
	observability.Pipeline().OnLayoutComplete(ctx, len(g.Nodes), time.Since(start), nil)

	summary := res.ChangesSummary
	if summary == "" {
		summary = topology.Changes(s.spec, spec)
	}
	if summary == "" {
		summary = enhancedFallback
	}

	s.graph = g
	s.spec = spec
	s.syntax = syntaxOf(res.Syntax, t)
	s.title = titleOf(spec)
	s.setStatus(ctx, StatusReady)
	s.opts.Logger.Info("enhanced map", "mode", m, "nodes", len(g.Nodes), "summary", summary)

	s.saveSilently(ctx)
	s.say(store.RoleAssistant, "Enhanced & Saved! "+summary, EnhanceSuggestions...)
	return nil
}

// =============================================================================
// Merge
// =============================================================================

// Merge reconciles an existing graph with a new topology and returns the
// result. old is not modified.
//
// Every node gets a fresh layout position. Nodes that persist by id keep
// their manual size, which also feeds the layout as a size hint, and their
// presentation data. Edges that persist by (source, target) keep their
// control point; when old has several edges between one pair only the first
// is matched. Anything absent from t is dropped.
func Merge(old graph.Graph, t *topology.Topology, spec *topology.Spec, opts layout.Options) graph.Graph {
	hints := make(map[string]layout.Size)
	for id, sz := range old.ManualSizes() {
		if t.Node(id) != nil {
			hints[id] = sz
		}
	}
	pos := layout.Apply(t, layout.Sizes(t, hints), old.Positions(), opts)
	g := graph.Build(t, pos, spec)
	g.Direction = opts.Direction

	for i := range g.Nodes {
		prev := old.Node(g.Nodes[i].ID)
		if prev == nil {
			continue
		}
		if prev.Size != nil {
			sz := *prev.Size
			g.Nodes[i].Size = &sz
		}
		g.Nodes[i].Data = maps.Clone(prev.Data)
	}
	for i := range g.Edges {
		prev := old.EdgeByPair(g.Edges[i].Source, g.Edges[i].Target)
		if prev == nil || prev.ControlPoint == nil {
			continue
		}
		cp := *prev.ControlPoint
		g.Edges[i].ControlPoint = &cp
	}
	return g
}

// =============================================================================
// Helpers
// =============================================================================

// callGenerator runs one generator call under its timeout and reports it.
func (s *Session) callGenerator(ctx context.Context, kind string, timeout time.Duration, call func(context.Context) (*generate.Result, error)) (*generate.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	res, err := call(ctx)
	if err == nil && res.NodeCount() == 0 && res.Syntax == "" {
		err = errs.New(errs.ErrCodeGeneration, "the generator returned an empty map")
	}
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) && !errs.Is(err, errs.ErrCodeTimeout) {
		err = errs.Wrap(errs.ErrCodeTimeout, err, "%s timed out after %s", kind, timeout)
	}
	observability.Pipeline().OnGenerateComplete(ctx, kind, res.NodeCount(), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	s.opts.Logger.Debug("generator answered", "kind", kind, "nodes", res.NodeCount(), "duration", time.Since(start))
	return res, nil
}

// fail records a pipeline failure and returns it as a GENERATION_ERROR.
func (s *Session) fail(ctx context.Context, err error) error {
	msg := generationMessage(err)
	if !errs.IsGeneration(err) {
		err = errs.Wrap(errs.ErrCodeGeneration, err, "%s", msg)
	}
	s.setStatus(ctx, StatusError)
	s.say(store.RoleAssistant, fmt.Sprintf("Error: %s. Please try again.", msg))
	s.opts.Logger.Error("map generation failed", "err", err)
	return err
}

func generationMessage(err error) string {
	switch {
	case errs.Is(err, errs.ErrCodeTimeout):
		return "the generation service timed out"
	case errs.IsParse(err):
		return "the generated map could not be read"
	default:
		return errs.UserMessage(err)
	}
}

// layout positions t, falling back to prev when the layout fails.
func (s *Session) layout(ctx context.Context, t *topology.Topology, hints map[string]layout.Size, prev layout.Positions) layout.Positions {
	start := time.Now()
	pos := layout.Apply(t, layout.Sizes(t, hints), prev, s.opts.Layout)
	observability.Pipeline().OnLayoutComplete(ctx, len(t.Nodes), time.Since(start), nil)
	return pos
}

// structure turns a generator answer into a topology and the specification
// that describes it. A missing specification is rebuilt from the syntax.
func structure(res *generate.Result) (*topology.Topology, *topology.Spec, error) {
	if res.Spec != nil {
		t := topology.Normalize(res.Spec)
		if len(t.Nodes) == 0 {
			return nil, nil, errs.New(errs.ErrCodeGeneration, "the generated map has no topics")
		}
		return t, res.Spec.Clone(), nil
	}
	t, err := topology.Parse(res.Syntax)
	if err != nil {
		return nil, nil, err
	}
	return t, topology.FromTopology(t, ""), nil
}

func syntaxOf(syntax string, t *topology.Topology) string {
	if syntax != "" {
		return syntax
	}
	return topology.Format(t)
}

func titleOf(spec *topology.Spec) string {
	if spec != nil && spec.Title != "" {
		return spec.Title
	}
	return DefaultTitle
}
