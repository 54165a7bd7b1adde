package topology

import "strings"

// Format writes t as mindmap syntax. The root is written as root((label));
// labels that would otherwise be altered by shape stripping are wrapped in
// square brackets. Nodes unreachable from the root are written as extra
// branches under it so no node is lost.
func Format(t *Topology) string {
	var b strings.Builder
	b.WriteString(declaration)
	b.WriteByte('\n')
	if len(t.Nodes) == 0 {
		return b.String()
	}

	root := t.Root()
	if root == nil {
		root = &t.Nodes[0]
	}

	children := make(map[string][]string, len(t.Nodes))
	for _, e := range t.Edges {
		children[e.Source] = append(children[e.Source], e.Target)
	}

	visited := make(map[string]bool, len(t.Nodes))
	var walk func(id string, depth int)
	walk = func(id string, depth int) {
		if visited[id] {
			return
		}
		visited[id] = true
		n := t.Node(id)
		if n == nil {
			return
		}
		indent := strings.Repeat(" ", (depth+1)*indentWidth)
		b.WriteString(indent)
		if depth == 0 {
			b.WriteString("root((" + oneLine(n.Label, n.ID) + "))")
		} else {
			b.WriteString(formatLabel(oneLine(n.Label, n.ID)))
		}
		b.WriteByte('\n')
		if n.Icon != "" {
			b.WriteString(indent + "  ::icon(" + n.Icon + ")\n")
		}
		for _, c := range children[id] {
			walk(c, depth+1)
		}
	}

	walk(root.ID, 0)
	for _, n := range t.Nodes {
		if !visited[n.ID] {
			walk(n.ID, 1)
		}
	}
	return b.String()
}

func formatLabel(label string) string {
	if cleanLabel(label) == label && !strings.HasPrefix(label, "::") {
		return label
	}
	return "[" + label + "]"
}

func oneLine(label, fallback string) string {
	label = strings.TrimSpace(strings.Join(strings.Fields(label), " "))
	if label == "" {
		return fallback
	}
	return label
}

// CleanSyntax strips Markdown code fences and a leading mermaid info string
// from generated syntax.
func CleanSyntax(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		parts := strings.Split(s, "```")
		if len(parts) > 1 {
			s = parts[1]
		}
		s = strings.TrimPrefix(s, "mermaid")
	}
	return strings.TrimSpace(s)
}
