package types

import (
	"time"
)

// EdgeType classifies the relationship an Edge expresses.
type EdgeType string

const (
	// EdgeTypeLink is an explicit user-created link between two nodes.
	EdgeTypeLink EdgeType = "LINK"
	// EdgeTypeNest is a parent→child hierarchy edge. A NEST edge set is
	// expected to form a forest; traversal bounds depth defensively rather
	// than detecting cycles.
	EdgeTypeNest EdgeType = "NEST"
	// EdgeTypeSequence is a member of an ordered chain, positioned by
	// SequenceOrder.
	EdgeTypeSequence EdgeType = "SEQUENCE"
	// EdgeTypeAffinity is a computed similarity relationship.
	EdgeTypeAffinity EdgeType = "AFFINITY"
)

// ValidEdgeType reports whether t is one of the known edge types.
func ValidEdgeType(t EdgeType) bool {
	switch t {
	case EdgeTypeLink, EdgeTypeNest, EdgeTypeSequence, EdgeTypeAffinity:
		return true
	}
	return false
}

// Edge represents a typed, optionally-directed relationship between two node
// ids. Endpoints are not validated against the node store; dangling edges are
// passed through silently.
type Edge struct {
	ID       string   `json:"id" mapstructure:"id"`
	EdgeType EdgeType `json:"edge_type" mapstructure:"edge_type"`
	SourceID string   `json:"source_id" mapstructure:"source_id"`
	TargetID string   `json:"target_id" mapstructure:"target_id"`
	Label    *string  `json:"label,omitempty" mapstructure:"label"`
	Weight   float64  `json:"weight" mapstructure:"weight"`
	Directed bool     `json:"directed" mapstructure:"directed"`

	// SequenceOrder is meaningful only for SEQUENCE edges.
	SequenceOrder *int `json:"sequence_order,omitempty" mapstructure:"sequence_order"`

	// Communication metadata.
	Channel   *string    `json:"channel,omitempty" mapstructure:"channel"`
	Timestamp *time.Time `json:"timestamp,omitempty" mapstructure:"timestamp"`
	Subject   *string    `json:"subject,omitempty" mapstructure:"subject"`

	CreatedAt   time.Time `json:"created_at" mapstructure:"created_at"`
	SyncVersion int64     `json:"sync_version" mapstructure:"sync_version"`
}

// Validate checks the Edge's intrinsic invariants.
func (e *Edge) Validate() error {
	if !ValidEdgeType(e.EdgeType) {
		return Invalidf("unknown edge type %q", e.EdgeType)
	}
	if e.SourceID == "" {
		return Invalidf("source_id cannot be empty")
	}
	if e.TargetID == "" {
		return Invalidf("target_id cannot be empty")
	}
	return nil
}

// Clone returns a deep copy of the edge.
func (e *Edge) Clone() *Edge {
	c := *e
	c.Label = cloneString(e.Label)
	if e.SequenceOrder != nil {
		v := *e.SequenceOrder
		c.SequenceOrder = &v
	}
	c.Channel = cloneString(e.Channel)
	c.Timestamp = cloneTime(e.Timestamp)
	c.Subject = cloneString(e.Subject)
	return &c
}

// Subgraph is the result of a bounded neighborhood extraction: the node ids
// reachable from the center within Depth hops plus the induced edge set.
type Subgraph struct {
	CenterNodeID string   `json:"center_node_id"`
	NodeIDs      []string `json:"node_ids"`
	Edges        []*Edge  `json:"edges"`
	Depth        int      `json:"depth"`
}
