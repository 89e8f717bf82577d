// Package graph implements the traversal engine over the edge store: neighbor
// lookup, bounded-depth reachability, shortest path, induced-subgraph
// extraction, connected components, ordered-sequence walking, and NEST
// hierarchy navigation.
//
// The engine operates only on edge records; node existence is assumed, not
// re-verified per call. Queries over nonexistent ids degrade to empty results
// rather than errors — reachability absence is data, not failure. The caller
// supplied depth bounds are the only guard against non-forest-shaped edge
// sets; every loop also checks ctx so a caller deadline can cancel long scans.
package graph

import (
	"context"
	"sort"

	"github.com/isometry-app/isometry/pkg/store"
	"github.com/isometry-app/isometry/pkg/types"
)

// Direction selects which edge orientation a traversal follows.
type Direction string

const (
	DirectionOutgoing Direction = "outgoing"
	DirectionIncoming Direction = "incoming"
	DirectionBoth     Direction = "both"
)

// Traversal answers structural questions against an edge store.
type Traversal struct {
	edges store.EdgeStore
}

// NewTraversal returns a traversal engine over the given edge store.
func NewTraversal(edges store.EdgeStore) *Traversal {
	return &Traversal{edges: edges}
}

// adjacentIDs returns the ids adjacent to nodeID in the given direction,
// optionally restricted to one edge type. Results are deduplicated.
func (t *Traversal) adjacentIDs(ctx context.Context, nodeID string, edgeType *types.EdgeType, direction Direction) (map[string]struct{}, error) {
	ids := make(map[string]struct{})
	if direction == DirectionOutgoing || direction == DirectionBoth {
		edges, err := t.edges.GetOutgoingEdges(ctx, nodeID, edgeType)
		if err != nil {
			return nil, err
		}
		for _, e := range edges {
			ids[e.TargetID] = struct{}{}
		}
	}
	if direction == DirectionIncoming || direction == DirectionBoth {
		edges, err := t.edges.GetIncomingEdges(ctx, nodeID, edgeType)
		if err != nil {
			return nil, err
		}
		for _, e := range edges {
			ids[e.SourceID] = struct{}{}
		}
	}
	return ids, nil
}

// GetNeighbors returns the deduplicated set of node ids adjacent to nodeID,
// sorted for determinism.
func (t *Traversal) GetNeighbors(ctx context.Context, nodeID string, edgeType *types.EdgeType, direction Direction) ([]string, error) {
	ids, err := t.adjacentIDs(ctx, nodeID, edgeType, direction)
	if err != nil {
		return nil, err
	}
	return sortedIDs(ids), nil
}

// GetNodesAtDistance returns the node ids exactly distance hops away from
// sourceID: BFS levels 0..distance with only the final level reported. Nodes
// already seen at an earlier level are not re-reported.
func (t *Traversal) GetNodesAtDistance(ctx context.Context, sourceID string, distance int, edgeType *types.EdgeType, direction Direction) ([]string, error) {
	if distance < 0 {
		return nil, nil
	}
	if distance == 0 {
		return []string{sourceID}, nil
	}

	visited := map[string]struct{}{sourceID: {}}
	frontier := []string{sourceID}
	for level := 0; level < distance; level++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next := make(map[string]struct{})
		for _, id := range frontier {
			adjacent, err := t.adjacentIDs(ctx, id, edgeType, direction)
			if err != nil {
				return nil, err
			}
			for a := range adjacent {
				if _, seen := visited[a]; !seen {
					next[a] = struct{}{}
				}
			}
		}
		frontier = sortedIDs(next)
		for id := range next {
			visited[id] = struct{}{}
		}
		if len(frontier) == 0 {
			return nil, nil
		}
	}
	return frontier, nil
}

// FindShortestPath explores outgoing paths depth-first up to maxDistance hops,
// never revisiting a node already on the current branch's path. Among all
// paths reaching targetID it returns the one found at the smallest depth, ties
// broken by discovery order. An empty slice means no path within maxDistance.
func (t *Traversal) FindShortestPath(ctx context.Context, sourceID, targetID string, edgeType *types.EdgeType, maxDistance int) ([]string, error) {
	if maxDistance <= 0 {
		return nil, nil
	}
	if sourceID == targetID {
		return []string{sourceID}, nil
	}

	var best []string
	path := []string{sourceID}
	onPath := map[string]struct{}{sourceID: {}}

	var walk func() error
	walk = func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		depth := len(path) - 1
		if depth >= maxDistance {
			return nil
		}
		// Prune branches that cannot improve on the best path found so far.
		if best != nil && depth+1 >= len(best) {
			return nil
		}
		adjacent, err := t.adjacentIDs(ctx, path[len(path)-1], edgeType, DirectionOutgoing)
		if err != nil {
			return err
		}
		for _, next := range sortedIDs(adjacent) {
			if _, cycle := onPath[next]; cycle {
				continue
			}
			if next == targetID {
				candidate := append(append([]string{}, path...), next)
				if best == nil || len(candidate) < len(best) {
					best = candidate
				}
				continue
			}
			path = append(path, next)
			onPath[next] = struct{}{}
			if err := walk(); err != nil {
				return err
			}
			delete(onPath, next)
			path = path[:len(path)-1]
		}
		return nil
	}
	if err := walk(); err != nil {
		return nil, err
	}
	if best == nil {
		return nil, nil
	}
	return best, nil
}

// ExtractSubgraph returns the nodes reachable from centerID within depth hops
// plus the induced edge set: every stored edge (matching the optional type
// filter) whose endpoints both lie in the reachable set. An isolated center
// yields a subgraph containing only itself.
func (t *Traversal) ExtractSubgraph(ctx context.Context, centerID string, depth int, edgeType *types.EdgeType, direction Direction) (*types.Subgraph, error) {
	reachable := map[string]struct{}{centerID: {}}
	frontier := []string{centerID}
	for level := 0; level < depth && len(frontier) > 0; level++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next := make(map[string]struct{})
		for _, id := range frontier {
			adjacent, err := t.adjacentIDs(ctx, id, edgeType, direction)
			if err != nil {
				return nil, err
			}
			for a := range adjacent {
				if _, seen := reachable[a]; !seen {
					next[a] = struct{}{}
					reachable[a] = struct{}{}
				}
			}
		}
		frontier = sortedIDs(next)
	}

	var induced []*types.Edge
	if len(reachable) > 1 {
		all, err := t.matchingEdges(ctx, edgeType)
		if err != nil {
			return nil, err
		}
		for _, e := range all {
			_, src := reachable[e.SourceID]
			_, dst := reachable[e.TargetID]
			if src && dst {
				induced = append(induced, e)
			}
		}
	}
	if induced == nil {
		induced = []*types.Edge{}
	}
	return &types.Subgraph{
		CenterNodeID: centerID,
		NodeIDs:      sortedIDs(reachable),
		Edges:        induced,
		Depth:        depth,
	}, nil
}

// FindConnectedComponents partitions the nodes touched by matching edges into
// undirected connected components, treating every edge as bidirectional for
// this query only. Components smaller than minSize are dropped; a node with no
// matching edges is not a component member. Each component's ids are sorted
// and components are ordered by their smallest member.
func (t *Traversal) FindConnectedComponents(ctx context.Context, edgeType *types.EdgeType, minSize int) ([][]string, error) {
	edges, err := t.matchingEdges(ctx, edgeType)
	if err != nil {
		return nil, err
	}

	parent := make(map[string]string)
	var find func(string) string
	find = func(id string) string {
		if parent[id] != id {
			parent[id] = find(parent[id])
		}
		return parent[id]
	}
	union := func(a, b string) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}
	for _, e := range edges {
		if _, ok := parent[e.SourceID]; !ok {
			parent[e.SourceID] = e.SourceID
		}
		if _, ok := parent[e.TargetID]; !ok {
			parent[e.TargetID] = e.TargetID
		}
		union(e.SourceID, e.TargetID)
	}

	groups := make(map[string][]string)
	for id := range parent {
		root := find(id)
		groups[root] = append(groups[root], id)
	}

	var components [][]string
	for _, members := range groups {
		if len(members) < minSize {
			continue
		}
		sort.Strings(members)
		components = append(components, members)
	}
	sort.Slice(components, func(i, j int) bool {
		return components[i][0] < components[j][0]
	})
	return components, nil
}

func (t *Traversal) matchingEdges(ctx context.Context, edgeType *types.EdgeType) ([]*types.Edge, error) {
	if edgeType != nil {
		return t.edges.GetEdgesByType(ctx, *edgeType)
	}
	return t.edges.GetAllEdges(ctx, 0, 0)
}

func sortedIDs(ids map[string]struct{}) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
