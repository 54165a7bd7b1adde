package topology

import "slices"

// Node types used by the generation service.
const (
	TypeCentral   = "central"
	TypePrimary   = "primary"
	TypeSecondary = "secondary"
	TypeDefault   = "default"
)

// Edge styles used by the generation service.
const (
	StyleSolid  = "solid"
	StyleDashed = "dashed"
	StyleDotted = "dotted"
)

// Spec is the abstract specification produced by the generation service.
// Field names follow its JSON wire form.
type Spec struct {
	Title        string     `json:"title" bson:"title" validate:"required"`
	CentralTopic string     `json:"central_topic" bson:"central_topic"`
	Nodes        []NodeSpec `json:"nodes" bson:"nodes" validate:"required,min=1,dive"`
	Edges        []EdgeSpec `json:"edges" bson:"edges" validate:"dive"`
	Summary      string     `json:"summary,omitempty" bson:"summary,omitempty"`
}

// NodeSpec is a typed node in a [Spec].
type NodeSpec struct {
	ID          string `json:"id" bson:"id" validate:"required"`
	Label       string `json:"label" bson:"label" validate:"required"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
	Type        string `json:"type" bson:"type"`
	Icon        string `json:"icon,omitempty" bson:"icon,omitempty"`
}

// EdgeSpec is an untyped parent/child pair in a [Spec].
type EdgeSpec struct {
	Source string `json:"source" bson:"source" validate:"required"`
	Target string `json:"target" bson:"target" validate:"required"`
	Label  string `json:"label,omitempty" bson:"label,omitempty"`
	Style  string `json:"style,omitempty" bson:"style,omitempty"`
}

// Clone returns a deep copy of s. A nil spec clones to nil.
func (s *Spec) Clone() *Spec {
	if s == nil {
		return nil
	}
	c := *s
	c.Nodes = slices.Clone(s.Nodes)
	c.Edges = slices.Clone(s.Edges)
	return &c
}

// StyleOf returns the style of the first edge from source to target, or
// solid when there is none.
func (s *Spec) StyleOf(source, target string) string {
	if s == nil {
		return StyleSolid
	}
	for _, e := range s.Edges {
		if e.Source == source && e.Target == target && e.Style != "" {
			return e.Style
		}
	}
	return StyleSolid
}

// KindForType maps a generation-service node type onto a [Kind].
func KindForType(typ string) Kind {
	switch typ {
	case TypeCentral:
		return KindRoot
	case TypePrimary:
		return KindPrimary
	default:
		return KindSecondary
	}
}

// TypeForKind is the inverse of [KindForType].
func TypeForKind(k Kind) string {
	switch k {
	case KindRoot:
		return TypeCentral
	case KindPrimary:
		return TypePrimary
	default:
		return TypeSecondary
	}
}
