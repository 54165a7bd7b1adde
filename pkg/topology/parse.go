package topology

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	errs "github.com/kobex777/anymaps/pkg/errors"
)

const (
	declaration = "mindmap"
	indentWidth = 2
	maxSlugLen  = 20
)

// shapes lists label wrappers in match priority order.
var shapes = []struct {
	open, close string
	notPrefix   string
}{
	{open: "((", close: "))"},
	{open: "(", close: ")", notPrefix: "(("},
	{open: "[", close: "]"},
	{open: "{", close: "}"},
	{open: ")", close: "("},
}

var (
	slugPattern  = regexp.MustCompile(`[^a-z0-9]+`)
	shapeIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+`)
	iconRegex    = regexp.MustCompile(`^::icon\((.*)\)$`)
)

// Parse converts mindmap syntax into a Topology.
//
// It returns a PARSE_ERROR when the text has no mindmap declaration or
// nothing follows it. Lines whose label is empty after shape stripping are
// skipped, so a non-nil result may still hold zero nodes; see [IsValid].
func Parse(text string) (*Topology, error) {
	lines := contentLines(text)

	start := -1
	for i, line := range lines {
		if strings.ToLower(strings.TrimSpace(line)) == declaration {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, errs.New(errs.ErrCodeParse, "missing %q declaration", declaration)
	}
	body := lines[start+1:]
	if len(body) == 0 {
		return nil, errs.New(errs.ErrCodeParse, "no content after %q declaration", declaration)
	}

	type frame struct {
		id    string
		level int
	}
	var (
		base  = indentLevel(body[0])
		stack []frame
		t     = &Topology{}
	)

	for i, line := range body {
		trimmed := strings.TrimSpace(line)
		if m := iconRegex.FindStringSubmatch(trimmed); m != nil {
			if n := len(t.Nodes); n > 0 {
				t.Nodes[n-1].Icon = strings.TrimSpace(m[1])
			}
			continue
		}
		if strings.HasPrefix(trimmed, ":::") {
			continue
		}

		label := cleanLabel(trimmed)
		if label == "" {
			continue
		}

		level := indentLevel(line)
		for len(stack) > 0 && stack[len(stack)-1].level >= level {
			stack = stack[:len(stack)-1]
		}

		if len(t.Nodes) == 0 {
			t.Nodes = append(t.Nodes, Node{ID: RootID, Label: label, Kind: KindRoot})
			stack = append(stack, frame{RootID, level})
			continue
		}

		id := slugID(label, i)
		parent := RootID
		if len(stack) > 0 {
			parent = stack[len(stack)-1].id
		}
		t.Nodes = append(t.Nodes, Node{ID: id, Label: label, Kind: KindForDepth(max(level-base, 1))})
		t.Edges = append(t.Edges, Edge{
			ID:     "edge_" + strconv.Itoa(len(t.Edges)),
			Source: parent,
			Target: id,
		})
		stack = append(stack, frame{id, level})
	}
	return t, nil
}

// IsValid reports whether text parses into at least one node.
func IsValid(text string) bool {
	t, err := Parse(text)
	return err == nil && len(t.Nodes) > 0
}

// contentLines splits text into right-trimmed lines and drops blank ones.
func contentLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// indentLevel counts leading whitespace in units of two spaces; a tab
// counts as one unit.
func indentLevel(line string) int {
	width := 0
	for _, r := range line {
		switch r {
		case ' ':
			width++
		case '\t':
			width += indentWidth
		default:
			return width / indentWidth
		}
	}
	return width / indentWidth
}

// cleanLabel strips shape wrappers and an optional shape id prefix such as
// root((...)) or a1[...].
func cleanLabel(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.EqualFold(s, "root") {
		return "Root"
	}
	if inner, ok := stripShape(s); ok {
		return strings.TrimSpace(inner)
	}
	if prefix := shapeIDRegex.FindString(s); prefix != "" && prefix != s {
		if inner, ok := stripShape(s[len(prefix):]); ok {
			return strings.TrimSpace(inner)
		}
	}
	return s
}

func stripShape(s string) (string, bool) {
	for _, sh := range shapes {
		if len(s) < len(sh.open)+len(sh.close) {
			continue
		}
		if sh.notPrefix != "" && strings.HasPrefix(s, sh.notPrefix) {
			continue
		}
		if strings.HasPrefix(s, sh.open) && strings.HasSuffix(s, sh.close) {
			return s[len(sh.open) : len(s)-len(sh.close)], true
		}
	}
	return "", false
}

// slugID derives a stable node id from a label and its line index.
func slugID(label string, index int) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(label), "_")
	slug = strings.Trim(slug, "_")
	if len(slug) > maxSlugLen {
		slug = slug[:maxSlugLen]
	}
	if slug == "" {
		return fmt.Sprintf("node_%d", index)
	}
	return fmt.Sprintf("%s_%d", slug, index)
}
