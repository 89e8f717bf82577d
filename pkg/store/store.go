// Package store provides persistence for Isometry nodes and edges. Two
// backends exist: a SQLite-backed store (the transactional engine used by the
// application) and an in-memory store with identical semantics for tests and
// embedding.
//
// Mutating operations on a store instance are serialized relative to each
// other; independent reads may execute concurrently. Store-level failures are
// wrapped and passed through to callers unmodified; they are never retried
// here.
package store

import (
	"context"
	"time"

	"github.com/isometry-app/isometry/pkg/types"
)

// DateField names a node timestamp column usable in range queries.
type DateField string

const (
	DateCreatedAt   DateField = "created_at"
	DateModifiedAt  DateField = "modified_at"
	DateDueAt       DateField = "due_at"
	DateCompletedAt DateField = "completed_at"
	DateEventStart  DateField = "event_start"
	DateEventEnd    DateField = "event_end"
)

// ValidDateField reports whether f names a known node timestamp column.
func ValidDateField(f DateField) bool {
	switch f {
	case DateCreatedAt, DateModifiedAt, DateDueAt, DateCompletedAt, DateEventStart, DateEventEnd:
		return true
	}
	return false
}

// NodeStore provides CRUD and domain read queries over nodes. DeleteNode is a
// soft delete: the row survives with deleted_at set and is excluded from reads
// unless includeDeleted is requested.
type NodeStore interface {
	CreateNode(ctx context.Context, node *types.Node) error
	GetNode(ctx context.Context, id string) (*types.Node, error)

	// UpdateNode replaces the stored record only if its version still equals
	// expectedVersion, as a single compare-and-swap. A stale expectedVersion
	// fails with ErrConflict; a missing or soft-deleted node with ErrNotFound.
	UpdateNode(ctx context.Context, node *types.Node, expectedVersion int64) error
	DeleteNode(ctx context.Context, id string) error

	// GetAllNodes returns nodes ordered by creation time. A limit <= 0 means
	// no limit.
	GetAllNodes(ctx context.Context, limit, offset int, includeDeleted bool) ([]*types.Node, error)
	CountNodes(ctx context.Context, includeDeleted bool) (int, error)

	GetNodesByDateRange(ctx context.Context, field DateField, start, end time.Time) ([]*types.Node, error)
	GetNodesWithLocation(ctx context.Context) ([]*types.Node, error)

	// SearchNodes performs substring matching over name, content and summary.
	SearchNodes(ctx context.Context, text string) ([]*types.Node, error)
}

// EdgeStore provides CRUD and adjacency queries over edges. Edge deletion is
// physical. The optional edgeType on adjacency queries restricts results to a
// single edge type.
type EdgeStore interface {
	CreateEdge(ctx context.Context, edge *types.Edge) error
	GetEdge(ctx context.Context, id string) (*types.Edge, error)
	UpdateEdge(ctx context.Context, edge *types.Edge) error
	DeleteEdge(ctx context.Context, id string) error

	GetAllEdges(ctx context.Context, limit, offset int) ([]*types.Edge, error)
	CountEdges(ctx context.Context) (int, error)

	GetEdgesByType(ctx context.Context, edgeType types.EdgeType) ([]*types.Edge, error)
	GetOutgoingEdges(ctx context.Context, nodeID string, edgeType *types.EdgeType) ([]*types.Edge, error)
	GetIncomingEdges(ctx context.Context, nodeID string, edgeType *types.EdgeType) ([]*types.Edge, error)
	GetConnectedEdges(ctx context.Context, nodeID string, edgeType *types.EdgeType) ([]*types.Edge, error)
}

// Store combines node and edge persistence behind one handle.
type Store interface {
	NodeStore
	EdgeStore
}
