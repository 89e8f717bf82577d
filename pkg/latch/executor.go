package latch

import (
	"context"

	"github.com/isometry-app/isometry/pkg/types"
)

// NodeQuerier executes a generated fragment against the node table. The
// SQLite store satisfies this interface.
type NodeQuerier interface {
	QueryNodes(ctx context.Context, where string, params []any) ([]*types.Node, error)
}

// Execute runs a compiled filter against the store and applies offset-then-
// limit client-side. A nil filter matches every non-deleted node.
func Execute(ctx context.Context, q NodeQuerier, filter *types.CompiledFilter, offset, limit int) ([]*types.Node, error) {
	where := softDeleteFilter
	params := []any{}
	if filter != nil {
		where = filter.WhereClause
		params = filter.Parameters
	}
	nodes, err := q.QueryNodes(ctx, where, params)
	if err != nil {
		return nil, err
	}
	if offset > 0 {
		if offset >= len(nodes) {
			return nil, nil
		}
		nodes = nodes[offset:]
	}
	if limit > 0 && limit < len(nodes) {
		nodes = nodes[:limit]
	}
	return nodes, nil
}
