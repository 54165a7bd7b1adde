package layout

import (
	"io"

	"github.com/charmbracelet/log"

	errs "github.com/kobex777/anymaps/pkg/errors"
	"github.com/kobex777/anymaps/pkg/topology"
)

// Direction is the axis along which tree depth grows.
type Direction string

// Supported directions.
const (
	DirectionRight Direction = "right"
	DirectionDown  Direction = "down"
)

const (
	// DefaultNodeSpacing is the gap between sibling boxes.
	DefaultNodeSpacing = 80.0

	// DefaultLayerSpacing is the gap between depth layers.
	DefaultLayerSpacing = 100.0

	// DefaultDirection grows the tree to the right of the root.
	DefaultDirection = DirectionRight
)

// Size is a node's box in canvas units.
type Size struct {
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// Default node sizes.
var (
	RootSize       = Size{Width: 350, Height: 200}
	TopicSize      = Size{Width: 280, Height: 120}
	UnmeasuredSize = Size{Width: 200, Height: 100}
)

// DefaultSize returns the layout footprint for a node of kind k.
func DefaultSize(k topology.Kind) Size {
	switch k {
	case topology.KindRoot:
		return RootSize
	case topology.KindPrimary, topology.KindSecondary:
		return TopicSize
	default:
		return UnmeasuredSize
	}
}

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// Options configures the layout.
type Options struct {
	Direction    Direction   `json:"direction,omitempty"`
	NodeSpacing  float64     `json:"node_spacing,omitempty"`
	LayerSpacing float64     `json:"layer_spacing,omitempty"`
	Logger       *log.Logger `json:"-"`

	validated bool
}

// ValidateAndSetDefaults fills zero fields with defaults and rejects
// unusable values. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Direction == "" {
		o.Direction = DefaultDirection
	}
	if o.Direction != DirectionRight && o.Direction != DirectionDown {
		return errs.New(errs.ErrCodeInvalidInput, "invalid layout direction: %q (must be right or down)", o.Direction)
	}
	if o.NodeSpacing == 0 {
		o.NodeSpacing = DefaultNodeSpacing
	}
	if o.LayerSpacing == 0 {
		o.LayerSpacing = DefaultLayerSpacing
	}
	if o.NodeSpacing < 0 || o.LayerSpacing < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "layout spacing must not be negative")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}
