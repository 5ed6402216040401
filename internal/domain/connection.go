package domain

import "time"

// ConnectionStyle is the visual style tag carried on a connection.
type ConnectionStyle string

const (
	ConnectionStyleSolid  ConnectionStyle = "solid"
	ConnectionStyleDashed ConnectionStyle = "dashed"
	ConnectionStyleDotted ConnectionStyle = "dotted"
)

// Anchor names a connection point on a block's edge. Empty means the
// renderer picks the nearest side.
type Anchor string

const (
	AnchorAuto   Anchor = ""
	AnchorTop    Anchor = "top"
	AnchorBottom Anchor = "bottom"
	AnchorLeft   Anchor = "left"
	AnchorRight  Anchor = "right"
)

// Valid reports whether a is a known anchor name.
func (a Anchor) Valid() bool {
	switch a {
	case AnchorAuto, AnchorTop, AnchorBottom, AnchorLeft, AnchorRight:
		return true
	}
	return false
}

// Connection is a directed reference between two blocks. It is a weak
// reference pair: both endpoints must exist when it is created, and it
// is removed in the same commit that removes either endpoint.
type Connection struct {
	ID           string          `json:"id"`
	SourceID     string          `json:"sourceId"`
	TargetID     string          `json:"targetId"`
	Label        string          `json:"label"`
	Style        ConnectionStyle `json:"style"`
	SourceAnchor Anchor          `json:"sourceAnchor"`
	TargetAnchor Anchor          `json:"targetAnchor"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// ConnectionMeta is the optional metadata supplied when connecting.
type ConnectionMeta struct {
	Label        string          `json:"label"`
	Style        ConnectionStyle `json:"style"`
	SourceAnchor Anchor          `json:"sourceAnchor"`
	TargetAnchor Anchor          `json:"targetAnchor"`
}

// ConnectionPolicy controls which edges the connection store accepts.
type ConnectionPolicy struct {
	AllowSelfLoop      bool `json:"allowSelfLoop"`
	AllowParallelEdges bool `json:"allowParallelEdges"`
}
