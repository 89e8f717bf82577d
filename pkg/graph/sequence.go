package graph

import (
	"context"
	"sort"

	"github.com/isometry-app/isometry/pkg/types"
)

// GetSequence walks SEQUENCE edges from startID, at each hop following the
// outgoing edge with the lowest sequence_order (edges without an order sort
// last, ties break on target id). The walk stops after maxLength hops, at a
// dead end, or when a node would repeat.
func (t *Traversal) GetSequence(ctx context.Context, startID string, maxLength int) ([]string, error) {
	if maxLength < 0 {
		return nil, nil
	}
	seq := types.EdgeTypeSequence
	chain := []string{startID}
	visited := map[string]struct{}{startID: {}}
	current := startID

	for hop := 0; hop < maxLength; hop++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		edges, err := t.edges.GetOutgoingEdges(ctx, current, &seq)
		if err != nil {
			return nil, err
		}
		if len(edges) == 0 {
			break
		}
		sort.Slice(edges, func(i, j int) bool {
			oi, oj := edges[i].SequenceOrder, edges[j].SequenceOrder
			switch {
			case oi != nil && oj != nil && *oi != *oj:
				return *oi < *oj
			case oi != nil && oj == nil:
				return true
			case oi == nil && oj != nil:
				return false
			}
			return edges[i].TargetID < edges[j].TargetID
		})
		next := edges[0].TargetID
		if _, seen := visited[next]; seen {
			break
		}
		chain = append(chain, next)
		visited[next] = struct{}{}
		current = next
	}
	return chain, nil
}

// GetAllSequences finds every SEQUENCE chain whose start node has no incoming
// SEQUENCE edge (a true chain head) and returns the chains containing at least
// minLength nodes, ordered by head id.
func (t *Traversal) GetAllSequences(ctx context.Context, minLength int) ([][]string, error) {
	edges, err := t.edges.GetEdgesByType(ctx, types.EdgeTypeSequence)
	if err != nil {
		return nil, err
	}
	if len(edges) == 0 {
		return nil, nil
	}

	sources := make(map[string]struct{})
	targets := make(map[string]struct{})
	for _, e := range edges {
		sources[e.SourceID] = struct{}{}
		targets[e.TargetID] = struct{}{}
	}
	var heads []string
	for id := range sources {
		if _, ok := targets[id]; !ok {
			heads = append(heads, id)
		}
	}
	sort.Strings(heads)

	// A chain can never be longer than the number of sequence edges plus one.
	maxHops := len(edges)
	var chains [][]string
	for _, head := range heads {
		chain, err := t.GetSequence(ctx, head, maxHops)
		if err != nil {
			return nil, err
		}
		if len(chain) >= minLength {
			chains = append(chains, chain)
		}
	}
	return chains, nil
}
