package layout

import (
	"math"
	"time"

	errs "github.com/kobex777/anymaps/pkg/errors"
	"github.com/kobex777/anymaps/pkg/geometry"
	"github.com/kobex777/anymaps/pkg/topology"
)

// Positions maps node ids to the top-left corner of their box.
type Positions map[string]geometry.Point

// Compute lays out t and returns a position for every node.
//
// sizes supplies the box of each node; nodes without an entry use
// [DefaultSize]. Edges that reference unknown nodes are ignored. Errors are
// LAYOUT_ERROR coded.
func Compute(t *topology.Topology, sizes map[string]Size, opts Options) (Positions, error) {
	if t == nil {
		return nil, errs.New(errs.ErrCodeLayout, "nil topology")
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeLayout, err, "layout options")
	}

	start := time.Now()
	f, err := buildForest(t, sizes)
	if err != nil {
		return nil, err
	}

	p := placer{forest: f, opts: opts, cross: make([]float64, len(f.ids))}
	p.layers()

	cursor := 0.0
	for i, root := range f.roots {
		if i > 0 {
			cursor += opts.NodeSpacing
		}
		cursor = p.place(root, cursor)
	}

	out := make(Positions, len(f.ids))
	for i, id := range f.ids {
		along, across := p.main[f.depth[i]], p.cross[i]
		if opts.Direction == DirectionDown {
			out[id] = geometry.Pt(across, along)
		} else {
			out[id] = geometry.Pt(along, across)
		}
		if !out[id].IsFinite() {
			return nil, errs.New(errs.ErrCodeLayout, "non-finite position for node %q", id)
		}
	}

	opts.Logger.Debug("computed layout", "nodes", len(f.ids), "trees", len(f.roots), "duration", time.Since(start))
	return out, nil
}

// Apply runs [Compute] and falls back to prev on failure, so callers always
// get a position for every node: the previous one, or the origin.
func Apply(t *topology.Topology, sizes map[string]Size, prev Positions, opts Options) (out Positions) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		opts = Options{}
		_ = opts.ValidateAndSetDefaults()
	}

	defer func() {
		if r := recover(); r != nil {
			opts.Logger.Error("layout panicked, keeping previous positions", "panic", r)
			out = fallback(t, prev)
		}
	}()

	pos, err := Compute(t, sizes, opts)
	if err != nil {
		opts.Logger.Warn("layout failed, keeping previous positions", "err", err)
		return fallback(t, prev)
	}
	return pos
}

func fallback(t *topology.Topology, prev Positions) Positions {
	out := make(Positions)
	if t == nil {
		return out
	}
	for _, n := range t.Nodes {
		out[n.ID] = prev[n.ID]
	}
	return out
}

// Levels returns the breadth-first distance of every node from the root.
// The root is level 0; nodes the root cannot reach get -1.
func Levels(t *topology.Topology) map[string]int {
	levels := make(map[string]int, len(t.Nodes))
	for _, n := range t.Nodes {
		levels[n.ID] = -1
	}
	root := t.Root()
	if root == nil {
		return levels
	}

	children := make(map[string][]string, len(t.Nodes))
	for _, e := range t.Edges {
		children[e.Source] = append(children[e.Source], e.Target)
	}

	levels[root.ID] = 0
	queue := []string{root.ID}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, c := range children[curr] {
			if lvl, ok := levels[c]; ok && lvl < 0 {
				levels[c] = levels[curr] + 1
				queue = append(queue, c)
			}
		}
	}
	return levels
}

// Bounds returns the rectangle enclosing every positioned box.
func Bounds(pos Positions, sizes map[string]Size) geometry.Rect {
	if len(pos) == 0 {
		return geometry.Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for id, p := range pos {
		s, ok := sizes[id]
		if !ok {
			s = UnmeasuredSize
		}
		minX, minY = math.Min(minX, p.X), math.Min(minY, p.Y)
		maxX, maxY = math.Max(maxX, p.X+s.Width), math.Max(maxY, p.Y+s.Height)
	}
	return geometry.Rect{Min: geometry.Pt(minX, minY), Width: maxX - minX, Height: maxY - minY}
}

// Sizes resolves the box of every node in t, preferring explicit entries.
func Sizes(t *topology.Topology, explicit map[string]Size) map[string]Size {
	out := make(map[string]Size, len(t.Nodes))
	for _, n := range t.Nodes {
		if s, ok := explicit[n.ID]; ok && s.Valid() {
			out[n.ID] = s
		} else {
			out[n.ID] = DefaultSize(n.Kind)
		}
	}
	return out
}

func checkSize(id string, s Size) error {
	if !s.Valid() || math.IsInf(s.Width, 0) || math.IsInf(s.Height, 0) {
		return errs.New(errs.ErrCodeLayout, "invalid size %gx%g for node %q", s.Width, s.Height, id)
	}
	return nil
}
