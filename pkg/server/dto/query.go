package dto

import "github.com/isometry-app/isometry/pkg/types"

// QueryRequest carries a LATCH expression or a preset name, plus pagination.
// Exactly one of Expression and Preset should be set; Expression wins when
// both are.
type QueryRequest struct {
	Expression string `json:"expression"`
	Preset     string `json:"preset"`
	Offset     int    `json:"offset"`
	Limit      int    `json:"limit"`
}

// QueryResponse returns the matching nodes and the echo of the pagination
// actually applied.
type QueryResponse struct {
	Nodes  []*types.Node `json:"nodes"`
	Count  int           `json:"count"`
	Offset int           `json:"offset"`
	Limit  int           `json:"limit"`
}

// NeighborsResponse lists the ids adjacent to a node.
type NeighborsResponse struct {
	NodeID    string   `json:"node_id"`
	Neighbors []string `json:"neighbors"`
}
