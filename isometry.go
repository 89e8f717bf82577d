package isometry

import (
	"context"
	"fmt"
	"time"

	"github.com/isometry-app/isometry/pkg/config"
	"github.com/isometry-app/isometry/pkg/graph"
	"github.com/isometry-app/isometry/pkg/latch"
	"github.com/isometry-app/isometry/pkg/presets"
	"github.com/isometry-app/isometry/pkg/service"
	"github.com/isometry-app/isometry/pkg/store"
	"github.com/isometry-app/isometry/pkg/types"
)

// Client wires the stores, the node service, the traversal engine, and the
// filter preset store into one handle. It is safe for concurrent use.
type Client struct {
	store     *store.SQLiteStore
	nodes     *service.NodeService
	traversal *graph.Traversal
	presets   *presets.Store
}

// Open creates a Client from configuration: the SQLite store at
// cfg.Database.Path, the preset store at cfg.Presets.Dir, and the optional
// preset seed file.
func Open(cfg *config.Config) (*Client, error) {
	db, err := store.OpenSQLite(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	ps, err := presets.Open(cfg.Presets.Dir)
	if err != nil {
		db.Close()
		return nil, err
	}
	if cfg.Presets.SeedFile != "" {
		if _, err := ps.LoadFile(cfg.Presets.SeedFile); err != nil {
			ps.Close()
			db.Close()
			return nil, fmt.Errorf("seed presets: %w", err)
		}
	}

	return &Client{
		store:     db,
		nodes:     service.NewNodeService(db, service.WithEdgeStore(db)),
		traversal: graph.NewTraversal(db),
		presets:   ps,
	}, nil
}

// Close releases the underlying stores.
func (c *Client) Close() error {
	perr := c.presets.Close()
	serr := c.store.Close()
	if perr != nil {
		return perr
	}
	return serr
}

// Store exposes the underlying node and edge store.
func (c *Client) Store() store.Store { return c.store }

// Nodes exposes the node service.
func (c *Client) Nodes() *service.NodeService { return c.nodes }

// Traversal exposes the graph traversal engine.
func (c *Client) Traversal() *graph.Traversal { return c.traversal }

// Presets exposes the filter preset store.
func (c *Client) Presets() *presets.Store { return c.presets }

// Query compiles a LATCH expression and runs it against the node store with
// offset-then-limit pagination. An empty expression matches every non-deleted
// node.
func (c *Client) Query(ctx context.Context, expression string, offset, limit int) ([]*types.Node, error) {
	var filter *types.CompiledFilter
	if expression != "" {
		var err error
		filter, err = latch.Compile(expression)
		if err != nil {
			return nil, err
		}
	}
	return latch.Execute(ctx, c.store, filter, offset, limit)
}

// QueryPreset runs a built-in preset by name, anchored at the current time.
func (c *Client) QueryPreset(ctx context.Context, name string, offset, limit int) ([]*types.Node, error) {
	expr, err := latch.PresetExpression(name, time.Now())
	if err != nil {
		return nil, err
	}
	return c.Query(ctx, expr, offset, limit)
}

// QuerySaved runs a preset stored in the preset store.
func (c *Client) QuerySaved(ctx context.Context, name string, offset, limit int) ([]*types.Node, error) {
	preset, err := c.presets.Get(name)
	if err != nil {
		return nil, err
	}
	return latch.Execute(ctx, c.store, &preset.Filter, offset, limit)
}
