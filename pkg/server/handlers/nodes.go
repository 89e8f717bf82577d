package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/isometry-app/isometry"
	"github.com/isometry-app/isometry/pkg/graph"
	"github.com/isometry-app/isometry/pkg/server/dto"
	"github.com/isometry-app/isometry/pkg/types"
)

// NodesHandler handles node lifecycle requests
type NodesHandler struct {
	client *isometry.Client
}

// NewNodesHandler creates a new nodes handler
func NewNodesHandler(client *isometry.Client) *NodesHandler {
	return &NodesHandler{client: client}
}

// Create handles POST /api/v1/nodes
func (h *NodesHandler) Create(c *gin.Context) {
	var node types.Node
	if err := c.ShouldBindJSON(&node); err != nil {
		writeError(c, types.Invalidf("decode node: %v", err))
		return
	}
	created, err := h.client.Nodes().CreateNode(c.Request.Context(), &node)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Get handles GET /api/v1/nodes/:id
func (h *NodesHandler) Get(c *gin.Context) {
	node, err := h.client.Store().GetNode(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, node)
}

// Update handles PUT /api/v1/nodes/:id
func (h *NodesHandler) Update(c *gin.Context) {
	var node types.Node
	if err := c.ShouldBindJSON(&node); err != nil {
		writeError(c, types.Invalidf("decode node: %v", err))
		return
	}
	node.ID = c.Param("id")
	updated, err := h.client.Nodes().UpdateNode(c.Request.Context(), &node)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/v1/nodes/:id
func (h *NodesHandler) Delete(c *gin.Context) {
	cascade := c.Query("cascade") == "true"
	err := h.client.Nodes().DeleteNode(c.Request.Context(), c.Param("id"), cascade)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.StatusResponse{Status: "deleted"})
}

// Duplicate handles POST /api/v1/nodes/:id/duplicate
func (h *NodesHandler) Duplicate(c *gin.Context) {
	dup, err := h.client.Nodes().DuplicateNode(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dup)
}

// Neighbors handles GET /api/v1/nodes/:id/neighbors
func (h *NodesHandler) Neighbors(c *gin.Context) {
	var edgeType *types.EdgeType
	if raw := c.Query("edge_type"); raw != "" {
		et := types.EdgeType(raw)
		if !types.ValidEdgeType(et) {
			writeError(c, types.Invalidf("unknown edge type %q", raw))
			return
		}
		edgeType = &et
	}
	direction := graph.DirectionBoth
	switch c.Query("direction") {
	case "", "both":
	case "outgoing":
		direction = graph.DirectionOutgoing
	case "incoming":
		direction = graph.DirectionIncoming
	default:
		writeError(c, types.Invalidf("unknown direction %q", c.Query("direction")))
		return
	}

	id := c.Param("id")
	neighbors, err := h.client.Traversal().GetNeighbors(c.Request.Context(), id, edgeType, direction)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NeighborsResponse{NodeID: id, Neighbors: neighbors})
}

// Attention handles GET /api/v1/nodes/attention
func (h *NodesHandler) Attention(c *gin.Context) {
	nodes, err := h.client.Nodes().GetNodesNeedingAttention(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, nodes)
}

// Stats handles GET /api/v1/stats
func (h *NodesHandler) Stats(c *gin.Context) {
	stats, err := h.client.Nodes().GetNodeStatistics(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// List handles GET /api/v1/nodes
func (h *NodesHandler) List(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	nodes, err := h.client.Store().GetAllNodes(c.Request.Context(), limit, offset, false)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, nodes)
}
