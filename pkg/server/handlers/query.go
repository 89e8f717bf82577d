package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/isometry-app/isometry"
	"github.com/isometry-app/isometry/pkg/latch"
	"github.com/isometry-app/isometry/pkg/server/dto"
	"github.com/isometry-app/isometry/pkg/types"
)

// QueryHandler handles filter compilation and execution requests
type QueryHandler struct {
	client *isometry.Client
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(client *isometry.Client) *QueryHandler {
	return &QueryHandler{client: client}
}

// Query handles POST /api/v1/query
func (h *QueryHandler) Query(c *gin.Context) {
	var req dto.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, types.Invalidf("decode query: %v", err))
		return
	}

	ctx := c.Request.Context()
	var (
		nodes []*types.Node
		err   error
	)
	switch {
	case req.Expression != "":
		nodes, err = h.client.Query(ctx, req.Expression, req.Offset, req.Limit)
	case req.Preset != "":
		nodes, err = h.client.QueryPreset(ctx, req.Preset, req.Offset, req.Limit)
	default:
		nodes, err = h.client.Query(ctx, "", req.Offset, req.Limit)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	if nodes == nil {
		nodes = []*types.Node{}
	}
	c.JSON(http.StatusOK, dto.QueryResponse{
		Nodes:  nodes,
		Count:  len(nodes),
		Offset: req.Offset,
		Limit:  req.Limit,
	})
}

// Schema handles GET /api/v1/schema
func (h *QueryHandler) Schema(c *gin.Context) {
	c.JSON(http.StatusOK, latch.Schema())
}

// Presets handles GET /api/v1/presets: built-in preset names plus every
// stored preset.
func (h *QueryHandler) Presets(c *gin.Context) {
	stored, err := h.client.Presets().List()
	if err != nil {
		writeError(c, err)
		return
	}
	if stored == nil {
		stored = []*types.FilterPreset{}
	}
	c.JSON(http.StatusOK, gin.H{
		"builtin": latch.PresetNames(),
		"stored":  stored,
	})
}

// SavePreset handles PUT /api/v1/presets/:name
func (h *QueryHandler) SavePreset(c *gin.Context) {
	var req struct {
		Description string `json:"description"`
		Expression  string `json:"expression"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, types.Invalidf("decode preset: %v", err))
		return
	}
	filter, err := latch.Compile(req.Expression)
	if err != nil {
		writeError(c, err)
		return
	}
	preset := &types.FilterPreset{
		Name:        c.Param("name"),
		Description: req.Description,
		Filter:      *filter,
	}
	if err := h.client.Presets().Save(preset); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, preset)
}

// DeletePreset handles DELETE /api/v1/presets/:name
func (h *QueryHandler) DeletePreset(c *gin.Context) {
	if err := h.client.Presets().Delete(c.Param("name")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.StatusResponse{Status: "deleted"})
}
