package graph

import (
	"context"

	"github.com/isometry-app/isometry/pkg/types"
)

func nestType() types.EdgeType { return types.EdgeTypeNest }

// Hierarchy operations navigate NEST (parent→child) edges only. NEST edge
// sets are expected to form a forest; descendant walks are depth-bounded and
// ancestor walks keep a visited set so a malformed cycle still terminates.

// GetChildren returns the direct children of parentID, sorted.
func (t *Traversal) GetChildren(ctx context.Context, parentID string) ([]string, error) {
	nest := nestType()
	edges, err := t.edges.GetOutgoingEdges(ctx, parentID, &nest)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]struct{}, len(edges))
	for _, e := range edges {
		ids[e.TargetID] = struct{}{}
	}
	return sortedIDs(ids), nil
}

// GetParent returns childID's parent, or "" if it has none. A node is assumed
// to have at most one parent; when several NEST edges point at the child only
// the first (store order) is consulted.
func (t *Traversal) GetParent(ctx context.Context, childID string) (string, error) {
	nest := nestType()
	edges, err := t.edges.GetIncomingEdges(ctx, childID, &nest)
	if err != nil {
		return "", err
	}
	if len(edges) == 0 {
		return "", nil
	}
	return edges[0].SourceID, nil
}

// GetDescendants returns all nodes below ancestorID within maxDepth levels,
// sorted.
func (t *Traversal) GetDescendants(ctx context.Context, ancestorID string, maxDepth int) ([]string, error) {
	nest := nestType()
	descendants := make(map[string]struct{})
	frontier := []string{ancestorID}
	for level := 0; level < maxDepth && len(frontier) > 0; level++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next := make(map[string]struct{})
		for _, id := range frontier {
			edges, err := t.edges.GetOutgoingEdges(ctx, id, &nest)
			if err != nil {
				return nil, err
			}
			for _, e := range edges {
				if _, seen := descendants[e.TargetID]; !seen && e.TargetID != ancestorID {
					next[e.TargetID] = struct{}{}
					descendants[e.TargetID] = struct{}{}
				}
			}
		}
		frontier = sortedIDs(next)
	}
	return sortedIDs(descendants), nil
}

// GetAncestors returns the chain of ancestors above descendantID, nearest
// first. The walk is unbounded and relies on the forest invariant; a revisited
// node ends the walk.
func (t *Traversal) GetAncestors(ctx context.Context, descendantID string) ([]string, error) {
	var ancestors []string
	visited := map[string]struct{}{descendantID: {}}
	current := descendantID
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		parent, err := t.GetParent(ctx, current)
		if err != nil {
			return nil, err
		}
		if parent == "" {
			break
		}
		if _, seen := visited[parent]; seen {
			break
		}
		ancestors = append(ancestors, parent)
		visited[parent] = struct{}{}
		current = parent
	}
	return ancestors, nil
}

// GetRootNodes returns the nodes participating in NEST edges that never appear
// as a NEST target, sorted.
func (t *Traversal) GetRootNodes(ctx context.Context) ([]string, error) {
	sources, targets, err := t.nestEndpoints(ctx)
	if err != nil {
		return nil, err
	}
	roots := make(map[string]struct{})
	for id := range sources {
		if _, ok := targets[id]; !ok {
			roots[id] = struct{}{}
		}
	}
	return sortedIDs(roots), nil
}

// GetLeafNodes returns the nodes participating in NEST edges that never appear
// as a NEST source, sorted.
func (t *Traversal) GetLeafNodes(ctx context.Context) ([]string, error) {
	sources, targets, err := t.nestEndpoints(ctx)
	if err != nil {
		return nil, err
	}
	leaves := make(map[string]struct{})
	for id := range targets {
		if _, ok := sources[id]; !ok {
			leaves[id] = struct{}{}
		}
	}
	return sortedIDs(leaves), nil
}

func (t *Traversal) nestEndpoints(ctx context.Context) (sources, targets map[string]struct{}, err error) {
	nest := nestType()
	edges, err := t.edges.GetEdgesByType(ctx, nest)
	if err != nil {
		return nil, nil, err
	}
	sources = make(map[string]struct{})
	targets = make(map[string]struct{})
	for _, e := range edges {
		sources[e.SourceID] = struct{}{}
		targets[e.TargetID] = struct{}{}
	}
	return sources, targets, nil
}
