package layout

import (
	errs "github.com/kobex777/anymaps/pkg/errors"
	"github.com/kobex777/anymaps/pkg/topology"
)

// forest is the spanning forest of a topology, indexed by node position.
type forest struct {
	ids      []string
	sizes    []Size
	children [][]int
	depth    []int
	roots    []int
}

// buildForest selects one tree parent per node by breadth-first search.
// Seeds are the topology root, then parentless nodes, then any node still
// unvisited, each in node order.
func buildForest(t *topology.Topology, sizes map[string]Size) (*forest, error) {
	n := len(t.Nodes)
	f := &forest{
		ids:      make([]string, n),
		sizes:    make([]Size, n),
		children: make([][]int, n),
		depth:    make([]int, n),
	}

	index := make(map[string]int, n)
	for i, node := range t.Nodes {
		if _, dup := index[node.ID]; dup {
			return nil, errs.New(errs.ErrCodeLayout, "duplicate node id %q", node.ID)
		}
		index[node.ID] = i
		f.ids[i] = node.ID
		s, ok := sizes[node.ID]
		if !ok {
			s = DefaultSize(node.Kind)
		}
		if err := checkSize(node.ID, s); err != nil {
			return nil, err
		}
		f.sizes[i] = s
	}

	adj := make([][]int, n)
	inDegree := make([]int, n)
	for _, e := range t.Edges {
		src, ok1 := index[e.Source]
		dst, ok2 := index[e.Target]
		if !ok1 || !ok2 || src == dst {
			continue
		}
		adj[src] = append(adj[src], dst)
		inDegree[dst]++
	}

	visited := make([]bool, n)
	grow := func(seed int) {
		visited[seed] = true
		f.roots = append(f.roots, seed)
		queue := []int{seed}
		for len(queue) > 0 {
			curr := queue[0]
			queue = queue[1:]
			for _, c := range adj[curr] {
				if visited[c] {
					continue
				}
				visited[c] = true
				f.depth[c] = f.depth[curr] + 1
				f.children[curr] = append(f.children[curr], c)
				queue = append(queue, c)
			}
		}
	}

	if root := t.Root(); root != nil {
		grow(index[root.ID])
	}
	for i := range n {
		if !visited[i] && inDegree[i] == 0 {
			grow(i)
		}
	}
	for i := range n {
		if !visited[i] {
			grow(i)
		}
	}
	return f, nil
}

// placer assigns main-axis layer offsets and cross-axis positions.
type placer struct {
	forest *forest
	opts   Options
	main   []float64 // offset per depth
	cross  []float64 // top (or left) per node
}

func (p *placer) mainSize(i int) float64 {
	if p.opts.Direction == DirectionDown {
		return p.forest.sizes[i].Height
	}
	return p.forest.sizes[i].Width
}

func (p *placer) crossSize(i int) float64 {
	if p.opts.Direction == DirectionDown {
		return p.forest.sizes[i].Width
	}
	return p.forest.sizes[i].Height
}

// layers computes the main-axis offset of every depth from the widest box
// in the previous depth.
func (p *placer) layers() {
	maxDepth := 0
	for _, d := range p.forest.depth {
		maxDepth = max(maxDepth, d)
	}
	extent := make([]float64, maxDepth+1)
	for i, d := range p.forest.depth {
		extent[d] = max(extent[d], p.mainSize(i))
	}
	p.main = make([]float64, maxDepth+1)
	for d := 1; d <= maxDepth; d++ {
		p.main[d] = p.main[d-1] + extent[d-1] + p.opts.LayerSpacing
	}
}

// place positions the subtree rooted at i starting at cross offset top and
// returns the cross offset just past the subtree.
func (p *placer) place(i int, top float64) float64 {
	kids := p.forest.children[i]
	size := p.crossSize(i)
	if len(kids) == 0 {
		p.cross[i] = top
		return top + size
	}

	cursor := top
	for k, c := range kids {
		if k > 0 {
			cursor += p.opts.NodeSpacing
		}
		cursor = p.place(c, cursor)
	}

	first, last := kids[0], kids[len(kids)-1]
	center := (p.cross[first] + p.crossSize(first)/2 + p.cross[last] + p.crossSize(last)/2) / 2
	p.cross[i] = center - size/2

	if p.cross[i] < top {
		shift := top - p.cross[i]
		p.shift(i, shift)
		cursor += shift
	}
	return max(cursor, p.cross[i]+size)
}

func (p *placer) shift(i int, d float64) {
	p.cross[i] += d
	for _, c := range p.forest.children[i] {
		p.shift(c, d)
	}
}
