package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/isometry-app/isometry/pkg/types"
)

// MemoryStore implements Store with in-process maps. It mirrors the SQLite
// backend's semantics (soft node deletion, ordering, substring search) and is
// used by tests and by callers embedding the core without a database file.
type MemoryStore struct {
	mu    sync.RWMutex
	nodes map[string]*types.Node
	edges map[string]*types.Edge
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes: make(map[string]*types.Node),
		edges: make(map[string]*types.Edge),
	}
}

func (s *MemoryStore) CreateNode(ctx context.Context, node *types.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[node.ID]; ok {
		return types.Invalidf("node %s already exists", node.ID)
	}
	s.nodes[node.ID] = node.Clone()
	return nil
}

func (s *MemoryStore) GetNode(ctx context.Context, id string) (*types.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	node, ok := s.nodes[id]
	if !ok || node.IsDeleted() {
		return nil, types.NotFoundf("node %s", id)
	}
	return node.Clone(), nil
}

// UpdateNode is a compare-and-swap under the write lock, mirroring the SQLite
// backend's conditional write.
func (s *MemoryStore) UpdateNode(ctx context.Context, node *types.Node, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.nodes[node.ID]
	if !ok || existing.IsDeleted() {
		return types.NotFoundf("node %s", node.ID)
	}
	if existing.Version != expectedVersion {
		return fmt.Errorf("%w: node %s version %d, expected %d",
			types.ErrConflict, node.ID, expectedVersion, existing.Version)
	}
	s.nodes[node.ID] = node.Clone()
	return nil
}

func (s *MemoryStore) DeleteNode(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	node, ok := s.nodes[id]
	if !ok || node.IsDeleted() {
		return types.NotFoundf("node %s", id)
	}
	now := time.Now()
	node.DeletedAt = &now
	return nil
}

func (s *MemoryStore) GetAllNodes(ctx context.Context, limit, offset int, includeDeleted bool) ([]*types.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	nodes := s.collectNodes(func(n *types.Node) bool {
		return includeDeleted || !n.IsDeleted()
	})
	return paginateNodes(nodes, limit, offset), nil
}

func (s *MemoryStore) CountNodes(ctx context.Context, includeDeleted bool) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, n := range s.nodes {
		if includeDeleted || !n.IsDeleted() {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) GetNodesByDateRange(ctx context.Context, field DateField, start, end time.Time) ([]*types.Node, error) {
	if !ValidDateField(field) {
		return nil, types.Invalidf("unknown date field %q", field)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	nodes := s.collectNodes(func(n *types.Node) bool {
		if n.IsDeleted() {
			return false
		}
		t := nodeDate(n, field)
		return t != nil && !t.Before(start) && !t.After(end)
	})
	return nodes, nil
}

func nodeDate(n *types.Node, field DateField) *time.Time {
	switch field {
	case DateCreatedAt:
		return &n.CreatedAt
	case DateModifiedAt:
		return &n.ModifiedAt
	case DateDueAt:
		return n.DueAt
	case DateCompletedAt:
		return n.CompletedAt
	case DateEventStart:
		return n.EventStart
	case DateEventEnd:
		return n.EventEnd
	}
	return nil
}

func (s *MemoryStore) GetNodesWithLocation(ctx context.Context) ([]*types.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectNodes(func(n *types.Node) bool {
		return !n.IsDeleted() && n.Latitude != nil && n.Longitude != nil
	}), nil
}

func (s *MemoryStore) SearchNodes(ctx context.Context, text string) ([]*types.Node, error) {
	needle := strings.ToLower(text)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectNodes(func(n *types.Node) bool {
		if n.IsDeleted() {
			return false
		}
		if strings.Contains(strings.ToLower(n.Name), needle) {
			return true
		}
		if n.Content != nil && strings.Contains(strings.ToLower(*n.Content), needle) {
			return true
		}
		return n.Summary != nil && strings.Contains(strings.ToLower(*n.Summary), needle)
	}), nil
}

// collectNodes returns clones of matching nodes ordered by creation time then
// id, matching the SQLite backend. Caller must hold at least a read lock.
func (s *MemoryStore) collectNodes(match func(*types.Node) bool) []*types.Node {
	var nodes []*types.Node
	for _, n := range s.nodes {
		if match(n) {
			nodes = append(nodes, n.Clone())
		}
	}
	sort.Slice(nodes, func(i, j int) bool {
		if !nodes[i].CreatedAt.Equal(nodes[j].CreatedAt) {
			return nodes[i].CreatedAt.Before(nodes[j].CreatedAt)
		}
		return nodes[i].ID < nodes[j].ID
	})
	return nodes
}

func paginateNodes(nodes []*types.Node, limit, offset int) []*types.Node {
	if offset > 0 {
		if offset >= len(nodes) {
			return nil
		}
		nodes = nodes[offset:]
	}
	if limit > 0 && limit < len(nodes) {
		nodes = nodes[:limit]
	}
	return nodes
}

func (s *MemoryStore) CreateEdge(ctx context.Context, edge *types.Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.edges[edge.ID]; ok {
		return types.Invalidf("edge %s already exists", edge.ID)
	}
	s.edges[edge.ID] = edge.Clone()
	return nil
}

func (s *MemoryStore) GetEdge(ctx context.Context, id string) (*types.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	edge, ok := s.edges[id]
	if !ok {
		return nil, types.NotFoundf("edge %s", id)
	}
	return edge.Clone(), nil
}

func (s *MemoryStore) UpdateEdge(ctx context.Context, edge *types.Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.edges[edge.ID]; !ok {
		return types.NotFoundf("edge %s", edge.ID)
	}
	s.edges[edge.ID] = edge.Clone()
	return nil
}

func (s *MemoryStore) DeleteEdge(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.edges[id]; !ok {
		return types.NotFoundf("edge %s", id)
	}
	delete(s.edges, id)
	return nil
}

func (s *MemoryStore) GetAllEdges(ctx context.Context, limit, offset int) ([]*types.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	edges := s.collectEdges(func(*types.Edge) bool { return true })
	if offset > 0 {
		if offset >= len(edges) {
			return nil, nil
		}
		edges = edges[offset:]
	}
	if limit > 0 && limit < len(edges) {
		edges = edges[:limit]
	}
	return edges, nil
}

func (s *MemoryStore) CountEdges(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.edges), nil
}

func (s *MemoryStore) GetEdgesByType(ctx context.Context, edgeType types.EdgeType) ([]*types.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectEdges(func(e *types.Edge) bool { return e.EdgeType == edgeType }), nil
}

func (s *MemoryStore) GetOutgoingEdges(ctx context.Context, nodeID string, edgeType *types.EdgeType) ([]*types.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectEdges(func(e *types.Edge) bool {
		return e.SourceID == nodeID && (edgeType == nil || e.EdgeType == *edgeType)
	}), nil
}

func (s *MemoryStore) GetIncomingEdges(ctx context.Context, nodeID string, edgeType *types.EdgeType) ([]*types.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectEdges(func(e *types.Edge) bool {
		return e.TargetID == nodeID && (edgeType == nil || e.EdgeType == *edgeType)
	}), nil
}

func (s *MemoryStore) GetConnectedEdges(ctx context.Context, nodeID string, edgeType *types.EdgeType) ([]*types.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectEdges(func(e *types.Edge) bool {
		if e.SourceID != nodeID && e.TargetID != nodeID {
			return false
		}
		return edgeType == nil || e.EdgeType == *edgeType
	}), nil
}

func (s *MemoryStore) collectEdges(match func(*types.Edge) bool) []*types.Edge {
	var edges []*types.Edge
	for _, e := range s.edges {
		if match(e) {
			edges = append(edges, e.Clone())
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if !edges[i].CreatedAt.Equal(edges[j].CreatedAt) {
			return edges[i].CreatedAt.Before(edges[j].CreatedAt)
		}
		return edges[i].ID < edges[j].ID
	})
	return edges
}
