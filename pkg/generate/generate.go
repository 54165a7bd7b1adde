// Package generate bridges the map pipeline to a generation service.
//
// A [Generator] turns a prompt into an abstract specification (and usually
// the equivalent graph syntax), or enhances an existing specification.
//
// # Implementations
//
//   - [Client]: HTTP client for the generation service, with retry, a
//     circuit breaker, response validation and an optional response cache
//   - [Offline]: deterministic local generator for offline use and tests
//
// # Usage
//
//	c, err := generate.NewClient(generate.ClientOptions{BaseURL: "http://localhost:8000"})
//	res, err := c.Generate(ctx, generate.Request{Prompt: "History of jazz"})
//	topo := topology.Normalize(res.Spec)
package generate

import (
	"context"
	"strings"

	errs "github.com/kobex777/anymaps/pkg/errors"
	"github.com/kobex777/anymaps/pkg/topology"
)

// Mode selects how an enhancement changes a map.
type Mode string

// Enhancement modes.
const (
	ModeExpand   Mode = "expand"
	ModeRefine   Mode = "refine"
	ModeFocus    Mode = "focus"
	ModeSimplify Mode = "simplify"
)

// Modes lists every supported enhancement mode.
var Modes = []Mode{ModeExpand, ModeRefine, ModeFocus, ModeSimplify}

// ParseMode parses a mode name. An empty name selects [ModeExpand].
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ModeExpand, nil
	}
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", errs.New(errs.ErrCodeInvalidInput, "unknown enhance mode %q (want expand, refine, focus or simplify)", s)
}

// Request asks for a new map.
type Request struct {
	Prompt      string `json:"prompt"`
	ImageBase64 string `json:"image_base64,omitempty"`
}

// EnhanceRequest asks for changes to an existing specification.
type EnhanceRequest struct {
	Current *topology.Spec `json:"current_spec"`
	Prompt  string         `json:"prompt"`
	Mode    Mode           `json:"mode"`
}

// Result is a generation service answer. Spec may be nil when the service
// returned syntax only.
type Result struct {
	Spec           *topology.Spec `json:"spec,omitempty"`
	Syntax         string         `json:"syntax,omitempty"`
	ChangesSummary string         `json:"changes_summary,omitempty"`
}

// NodeCount returns the number of nodes in the result's spec.
func (r *Result) NodeCount() int {
	if r == nil || r.Spec == nil {
		return 0
	}
	return len(r.Spec.Nodes)
}

// Generator produces and enhances map specifications.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Result, error)
	Enhance(ctx context.Context, req EnhanceRequest) (*Result, error)
}
