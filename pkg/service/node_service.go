// Package service orchestrates validated node lifecycle operations on top of
// the node store, with optimistic concurrency and simple derived statistics.
// An edge store may be attached for cascading relationship cleanup; without
// one, cascading deletes fail with ErrDependencyMissing.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/isometry-app/isometry/pkg/store"
	"github.com/isometry-app/isometry/pkg/types"
)

// NodeService provides validated create/update/delete plus derived queries.
// Mutations rely on the store's single-writer guarantee; the store's
// version compare-and-swap is the sole cross-operation consistency
// mechanism, so callers must re-fetch before retrying a failed update.
type NodeService struct {
	nodes store.NodeStore
	edges store.EdgeStore // optional, for cascading cleanup
	now   func() time.Time
	log   *slog.Logger
}

// Option configures a NodeService.
type Option func(*NodeService)

// WithEdgeStore attaches the edge collaborator used by cascading deletes.
func WithEdgeStore(edges store.EdgeStore) Option {
	return func(s *NodeService) { s.edges = edges }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *NodeService) { s.now = now }
}

// WithLogger overrides the default logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *NodeService) { s.log = log }
}

// NewNodeService creates a service over the given node store.
func NewNodeService(nodes store.NodeStore, opts ...Option) *NodeService {
	s := &NodeService{
		nodes: nodes,
		now:   time.Now,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateNode validates and persists a new node. On success the node carries
// created_at=modified_at=now and version=sync_version=1. A due date in the
// past is rejected on first creation (it is allowed on later updates).
func (s *NodeService) CreateNode(ctx context.Context, node *types.Node) (*types.Node, error) {
	now := s.now()
	if err := node.Validate(); err != nil {
		return nil, err
	}
	if node.DueAt != nil && node.DueAt.Before(now) {
		return nil, types.Invalidf("due date %v is in the past", *node.DueAt)
	}

	created := node.Clone()
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	created.CreatedAt = now
	created.ModifiedAt = now
	created.DeletedAt = nil
	created.Version = 1
	created.SyncVersion = 1

	if err := s.nodes.CreateNode(ctx, created); err != nil {
		return nil, err
	}
	s.log.Debug("node created", "id", created.ID, "type", created.NodeType)
	return created, nil
}

// UpdateNode replaces a node's contents under optimistic concurrency: the
// caller's version must equal the stored version or the update fails with
// ErrConflict. The write is a compare-and-swap in the store, so of two
// concurrent updates carrying the same version exactly one succeeds.
// Version and sync_version always increment from the stored record's values,
// never the caller's.
func (s *NodeService) UpdateNode(ctx context.Context, node *types.Node) (*types.Node, error) {
	existing, err := s.nodes.GetNode(ctx, node.ID)
	if err != nil {
		return nil, err
	}
	if node.Version != existing.Version {
		return nil, fmt.Errorf("%w: node %s version %d, expected %d",
			types.ErrConflict, node.ID, node.Version, existing.Version)
	}
	if err := node.Validate(); err != nil {
		return nil, err
	}

	updated := node.Clone()
	updated.CreatedAt = existing.CreatedAt
	updated.ModifiedAt = s.now()
	updated.Version = existing.Version + 1
	updated.SyncVersion = existing.SyncVersion + 1

	if err := s.nodes.UpdateNode(ctx, updated, existing.Version); err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteNode soft-deletes a node. When deleteRelationships is set, every edge
// touching the node is removed first; that requires the edge collaborator.
func (s *NodeService) DeleteNode(ctx context.Context, id string, deleteRelationships bool) error {
	if _, err := s.nodes.GetNode(ctx, id); err != nil {
		return err
	}
	if deleteRelationships {
		if s.edges == nil {
			return fmt.Errorf("%w: edge store required for cascading delete", types.ErrDependencyMissing)
		}
		edges, err := s.edges.GetConnectedEdges(ctx, id, nil)
		if err != nil {
			return err
		}
		for _, e := range edges {
			if err := s.edges.DeleteEdge(ctx, e.ID); err != nil && !types.IsNotFound(err) {
				return err
			}
		}
		s.log.Debug("node relationships removed", "id", id, "edges", len(edges))
	}
	return s.nodes.DeleteNode(ctx, id)
}

// DuplicateNode clones a node under a new id with fresh timestamps, cleared
// completion and deletion state, versions reset to 1, and provenance pointing
// at the original.
func (s *NodeService) DuplicateNode(ctx context.Context, id string) (*types.Node, error) {
	original, err := s.nodes.GetNode(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	dup := original.Clone()
	dup.ID = uuid.NewString()
	dup.CreatedAt = now
	dup.ModifiedAt = now
	dup.CompletedAt = nil
	dup.DeletedAt = nil
	dup.Version = 1
	dup.SyncVersion = 1
	dup.Source = types.StringPtr("duplicate")
	dup.SourceID = types.StringPtr(original.ID)

	if err := s.nodes.CreateNode(ctx, dup); err != nil {
		return nil, err
	}
	return dup, nil
}

// ArchiveOldNodes soft-deletes every non-deleted node created before the
// cutoff and, when nodeTypes is non-empty, matching one of the given types.
// It returns the number of nodes archived.
func (s *NodeService) ArchiveOldNodes(ctx context.Context, olderThan time.Time, nodeTypes []string) (int, error) {
	nodes, err := s.nodes.GetAllNodes(ctx, 0, 0, false)
	if err != nil {
		return 0, err
	}
	typeSet := make(map[string]struct{}, len(nodeTypes))
	for _, t := range nodeTypes {
		typeSet[t] = struct{}{}
	}

	archived := 0
	for _, n := range nodes {
		if !n.CreatedAt.Before(olderThan) {
			continue
		}
		if len(typeSet) > 0 {
			if _, ok := typeSet[n.NodeType]; !ok {
				continue
			}
		}
		if err := s.nodes.DeleteNode(ctx, n.ID); err != nil {
			return archived, err
		}
		archived++
	}
	s.log.Info("archived old nodes", "count", archived, "older_than", olderThan)
	return archived, nil
}

// GetNodesNeedingAttention returns nodes that are overdue, have priority >= 8,
// or have importance >= 8 with no due date.
func (s *NodeService) GetNodesNeedingAttention(ctx context.Context) ([]*types.Node, error) {
	nodes, err := s.nodes.GetAllNodes(ctx, 0, 0, false)
	if err != nil {
		return nil, err
	}
	now := s.now()
	var out []*types.Node
	for _, n := range nodes {
		switch {
		case n.IsOverdue(now):
			out = append(out, n)
		case n.Priority >= 8:
			out = append(out, n)
		case n.Importance >= 8 && n.DueAt == nil:
			out = append(out, n)
		}
	}
	return out, nil
}

// SearchOptions narrows AdvancedSearch results. All filters apply client-side
// after the initial text search (or unfiltered fetch when Query is empty).
type SearchOptions struct {
	Query         string
	NodeTypes     []string
	Tags          []string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	MinPriority   *int
}

// AdvancedSearch combines text search with structured post-filters: node type
// membership, tag intersection (non-empty overlap), creation-date range, and
// minimum priority.
func (s *NodeService) AdvancedSearch(ctx context.Context, opts SearchOptions) ([]*types.Node, error) {
	var (
		nodes []*types.Node
		err   error
	)
	if opts.Query != "" {
		nodes, err = s.nodes.SearchNodes(ctx, opts.Query)
	} else {
		nodes, err = s.nodes.GetAllNodes(ctx, 0, 0, false)
	}
	if err != nil {
		return nil, err
	}

	typeSet := make(map[string]struct{}, len(opts.NodeTypes))
	for _, t := range opts.NodeTypes {
		typeSet[t] = struct{}{}
	}

	var out []*types.Node
	for _, n := range nodes {
		if len(typeSet) > 0 {
			if _, ok := typeSet[n.NodeType]; !ok {
				continue
			}
		}
		if len(opts.Tags) > 0 && !tagsOverlap(n.Tags, opts.Tags) {
			continue
		}
		if opts.CreatedAfter != nil && n.CreatedAt.Before(*opts.CreatedAfter) {
			continue
		}
		if opts.CreatedBefore != nil && n.CreatedAt.After(*opts.CreatedBefore) {
			continue
		}
		if opts.MinPriority != nil && n.Priority < *opts.MinPriority {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func tagsOverlap(have, want []string) bool {
	set := make(map[string]struct{}, len(have))
	for _, t := range have {
		set[t] = struct{}{}
	}
	for _, t := range want {
		if _, ok := set[t]; ok {
			return true
		}
	}
	return false
}

// Statistics aggregates node counts plus a per-type histogram.
type Statistics struct {
	Total        int            `json:"total"`
	Deleted      int            `json:"deleted"`
	WithLocation int            `json:"with_location"`
	Overdue      int            `json:"overdue"`
	Completed    int            `json:"completed"`
	ByType       map[string]int `json:"by_type"`
}

// GetNodeStatistics computes aggregate counts over all nodes, including
// soft-deleted ones for the Deleted counter. The per-type histogram covers
// non-deleted nodes only.
func (s *NodeService) GetNodeStatistics(ctx context.Context) (*Statistics, error) {
	nodes, err := s.nodes.GetAllNodes(ctx, 0, 0, true)
	if err != nil {
		return nil, err
	}
	now := s.now()
	stats := &Statistics{ByType: make(map[string]int)}
	for _, n := range nodes {
		stats.Total++
		if n.IsDeleted() {
			stats.Deleted++
			continue
		}
		stats.ByType[n.NodeType]++
		if n.Latitude != nil && n.Longitude != nil {
			stats.WithLocation++
		}
		if n.IsOverdue(now) {
			stats.Overdue++
		}
		if n.CompletedAt != nil {
			stats.Completed++
		}
	}
	return stats, nil
}
