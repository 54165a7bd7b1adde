package generate

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"

	errs "github.com/kobex777/anymaps/pkg/errors"
	"github.com/kobex777/anymaps/pkg/topology"
)

// Offline is a deterministic Generator that needs no network. It builds a
// fixed outline around the prompt's topic and applies enhancement modes as
// structural edits, so the same inputs always give the same map.
type Offline struct{}

// NewOffline creates an offline generator.
func NewOffline() *Offline { return &Offline{} }

// outline is the branch skeleton of every offline map.
var outline = []struct {
	label    string
	children []string
}{
	{"Overview", []string{"Definition", "Scope"}},
	{"Key Concepts", []string{"Core Ideas", "Terminology"}},
	{"Applications", []string{"Use Cases", "Examples"}},
	{"Challenges", []string{"Limitations", "Open Questions"}},
}

const maxTopicLength = 60

// Generate builds an outline map for the prompt's topic. Images are ignored.
func (o *Offline) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := errs.ValidatePrompt(req.Prompt); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeGeneration, err, "generate")
	}

	topic := topicOf(req.Prompt)
	s := &topology.Spec{
		Title:        topic,
		CentralTopic: topic,
		Summary:      "Outline of " + topic,
		Nodes:        []topology.NodeSpec{{ID: topology.RootID, Label: topic, Type: topology.TypeCentral}},
	}
	ids := newIDSet(s)
	for _, branch := range outline {
		bid := ids.add(branch.label)
		s.Nodes = append(s.Nodes, topology.NodeSpec{ID: bid, Label: branch.label, Type: topology.TypePrimary})
		s.Edges = append(s.Edges, topology.EdgeSpec{Source: topology.RootID, Target: bid, Style: topology.StyleSolid})
		for _, c := range branch.children {
			cid := ids.add(branch.label + " " + c)
			s.Nodes = append(s.Nodes, topology.NodeSpec{ID: cid, Label: c, Type: topology.TypeSecondary})
			s.Edges = append(s.Edges, topology.EdgeSpec{Source: bid, Target: cid, Style: topology.StyleSolid})
		}
	}
	return &Result{Spec: s, Syntax: topology.Format(topology.Normalize(s))}, nil
}

// Enhance applies mode to a copy of req.Current.
//
//   - expand: adds prompt keywords as children of the focus node
//   - refine: normalises label case and fills missing descriptions
//   - focus: elaborates the focus node and each of its children
//   - simplify: removes leaf nodes below the primary level
//
// The focus node is the first node whose label occurs in the prompt,
// else the first primary node, else the root.
func (o *Offline) Enhance(ctx context.Context, req EnhanceRequest) (*Result, error) {
	if req.Current == nil || len(req.Current.Nodes) == 0 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "enhance requires a current spec")
	}
	if err := errs.ValidatePrompt(req.Prompt); err != nil {
		return nil, err
	}
	mode, err := ParseMode(string(req.Mode))
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeGeneration, err, "enhance")
	}

	s := req.Current.Clone()
	ids := newIDSet(s)
	focus := focusNode(s, req.Prompt)
	summary := ""

	switch mode {
	case ModeExpand:
		words := keywords(req.Prompt, 2, labelSet(s))
		if len(words) == 0 {
			words = []string{"Details", "Related Topics"}
		}
		for _, w := range words {
			addChild(s, ids, focus, w)
		}
	case ModeRefine:
		n := refine(s)
		summary = fmt.Sprintf("Refined %d node(s)", n)
	case ModeFocus:
		for _, c := range childrenOf(s, focus) {
			addChild(s, ids, c, "Details")
		}
		for _, w := range append(keywords(req.Prompt, 1, labelSet(s)), "Deep Dive") {
			addChild(s, ids, focus, w)
		}
	case ModeSimplify:
		simplify(s)
	}

	if summary == "" {
		summary = topology.Changes(req.Current, s)
	}
	return &Result{Spec: s, Syntax: topology.Format(topology.Normalize(s)), ChangesSummary: summary}, nil
}

// =============================================================================
// Helpers
// =============================================================================

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

type idSet map[string]bool

func newIDSet(s *topology.Spec) idSet {
	ids := make(idSet, len(s.Nodes))
	for _, n := range s.Nodes {
		ids[n.ID] = true
	}
	return ids
}

// add reserves and returns a unique slug id for label.
func (ids idSet) add(label string) string {
	base := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(label), "_"), "_")
	if base == "" {
		base = "node"
	}
	id := base
	for i := 2; ids[id]; i++ {
		id = fmt.Sprintf("%s_%d", base, i)
	}
	ids[id] = true
	return id
}

func topicOf(prompt string) string {
	topic := strings.Join(strings.Fields(prompt), " ")
	topic = strings.TrimRight(topic, ".?!")
	if r := []rune(topic); len(r) > maxTopicLength {
		topic = strings.TrimSpace(string(r[:maxTopicLength]))
	}
	return titleCase(topic)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

var stopWords = map[string]bool{
	"about": true, "add": true, "more": true, "with": true, "that": true, "this": true,
	"from": true, "into": true, "please": true, "some": true, "show": true, "make": true,
	"expand": true, "refine": true, "focus": true, "simplify": true, "details": true,
}

// keywords returns up to n distinct title-cased words of four or more
// letters from prompt, in order of appearance. Words in exclude are skipped.
func keywords(prompt string, n int, exclude map[string]bool) []string {
	var out []string
	seen := map[string]bool{}
	for _, w := range strings.FieldsFunc(strings.ToLower(prompt), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len([]rune(w)) < 4 || stopWords[w] || seen[w] || exclude[w] {
			continue
		}
		seen[w] = true
		out = append(out, titleCase(w))
		if len(out) == n {
			break
		}
	}
	return out
}

// labelSet returns the lowercased labels of every node in s.
func labelSet(s *topology.Spec) map[string]bool {
	set := make(map[string]bool, len(s.Nodes))
	for _, n := range s.Nodes {
		set[strings.ToLower(n.Label)] = true
	}
	return set
}

func focusNode(s *topology.Spec, prompt string) string {
	p := strings.ToLower(prompt)
	for _, n := range s.Nodes {
		if n.Type != topology.TypeCentral && n.Label != "" && strings.Contains(p, strings.ToLower(n.Label)) {
			return n.ID
		}
	}
	for _, n := range s.Nodes {
		if n.Type == topology.TypePrimary {
			return n.ID
		}
	}
	for _, n := range s.Nodes {
		if n.Type == topology.TypeCentral {
			return n.ID
		}
	}
	return s.Nodes[0].ID
}

func childrenOf(s *topology.Spec, id string) []string {
	var out []string
	for _, e := range s.Edges {
		if e.Source == id {
			out = append(out, e.Target)
		}
	}
	return out
}

func nodeType(s *topology.Spec, id string) string {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n.Type
		}
	}
	return topology.TypeDefault
}

func addChild(s *topology.Spec, ids idSet, parent, label string) {
	typ := topology.TypeSecondary
	if nodeType(s, parent) == topology.TypeCentral {
		typ = topology.TypePrimary
	}
	id := ids.add(label)
	s.Nodes = append(s.Nodes, topology.NodeSpec{ID: id, Label: label, Type: typ})
	s.Edges = append(s.Edges, topology.EdgeSpec{Source: parent, Target: id, Style: topology.StyleSolid})
}

// refine title-cases labels and fills empty descriptions. It returns the
// number of nodes changed.
func refine(s *topology.Spec) int {
	root := ""
	for _, n := range s.Nodes {
		if n.Type == topology.TypeCentral {
			root = n.Label
		}
	}
	changed := 0
	for i := range s.Nodes {
		n := &s.Nodes[i]
		before := *n
		n.Label = titleCase(n.Label)
		if n.Description == "" && n.Type != topology.TypeCentral && root != "" {
			n.Description = n.Label + " in the context of " + root
		}
		if *n != before {
			changed++
		}
	}
	return changed
}

// simplify removes secondary leaves and their edges.
func simplify(s *topology.Spec) {
	hasChildren := map[string]bool{}
	for _, e := range s.Edges {
		hasChildren[e.Source] = true
	}
	drop := map[string]bool{}
	for _, n := range s.Nodes {
		if n.Type != topology.TypeCentral && n.Type != topology.TypePrimary && !hasChildren[n.ID] {
			drop[n.ID] = true
		}
	}
	s.Nodes = slices.DeleteFunc(s.Nodes, func(n topology.NodeSpec) bool { return drop[n.ID] })
	s.Edges = slices.DeleteFunc(s.Edges, func(e topology.EdgeSpec) bool { return drop[e.Source] || drop[e.Target] })
}

var _ Generator = (*Offline)(nil)
