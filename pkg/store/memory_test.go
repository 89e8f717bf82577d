package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isometry-app/isometry/pkg/types"
)

func TestMemoryStoreMirrorsSQLiteSemantics(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	node := testNode("m1")
	node.Content = types.StringPtr("remember the Milk")
	require.NoError(t, s.CreateNode(ctx, node))

	t.Run("duplicate create rejected", func(t *testing.T) {
		err := s.CreateNode(ctx, testNode("m1"))
		assert.True(t, types.IsInvalidData(err))
	})

	t.Run("returned nodes are clones", func(t *testing.T) {
		got, err := s.GetNode(ctx, "m1")
		require.NoError(t, err)
		got.Name = "mutated"
		*got.Content = "mutated"

		again, err := s.GetNode(ctx, "m1")
		require.NoError(t, err)
		assert.Equal(t, "node m1", again.Name)
		assert.Equal(t, "remember the Milk", *again.Content)
	})

	t.Run("search is case-insensitive", func(t *testing.T) {
		got, err := s.SearchNodes(ctx, "milk")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "m1", got[0].ID)
	})

	t.Run("update is a compare-and-swap on version", func(t *testing.T) {
		upd := testNode("m1")
		upd.Name = "renamed"
		upd.Version = 2
		require.NoError(t, s.UpdateNode(ctx, upd, 1))

		stale := testNode("m1")
		stale.Name = "stale write"
		stale.Version = 2
		assert.True(t, types.IsConflict(s.UpdateNode(ctx, stale, 1)))

		got, err := s.GetNode(ctx, "m1")
		require.NoError(t, err)
		assert.Equal(t, "renamed", got.Name)
		assert.Equal(t, int64(2), got.Version)
	})

	t.Run("soft delete", func(t *testing.T) {
		require.NoError(t, s.DeleteNode(ctx, "m1"))
		_, err := s.GetNode(ctx, "m1")
		assert.True(t, types.IsNotFound(err))
		assert.True(t, types.IsNotFound(s.DeleteNode(ctx, "m1")))

		upd := testNode("m1")
		upd.Version = 2
		assert.True(t, types.IsNotFound(s.UpdateNode(ctx, upd, 2)))

		all, err := s.GetAllNodes(ctx, 0, 0, true)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

func TestMemoryStoreOrderingAndPagination(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	// Insert out of order; the store must sort by created_at then id.
	for _, spec := range []struct {
		id     string
		offset time.Duration
	}{
		{"c", 2 * time.Minute},
		{"a", 0},
		{"b", 0},
	} {
		n := testNode(spec.id)
		n.CreatedAt = base.Add(spec.offset)
		require.NoError(t, s.CreateNode(ctx, n))
	}

	all, err := s.GetAllNodes(ctx, 0, 0, false)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "b", all[1].ID)
	assert.Equal(t, "c", all[2].ID)

	page, err := s.GetAllNodes(ctx, 1, 1, false)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "b", page[0].ID)

	none, err := s.GetAllNodes(ctx, 10, 99, false)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryStoreDateRange(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	n := testNode("d1")
	n.DueAt = types.TimePtr(time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, s.CreateNode(ctx, n))

	noDue := testNode("d2")
	require.NoError(t, s.CreateNode(ctx, noDue))

	got, err := s.GetNodesByDateRange(ctx, DateDueAt,
		time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 7, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "d1", got[0].ID)

	_, err = s.GetNodesByDateRange(ctx, DateField("bogus"), time.Now(), time.Now())
	assert.True(t, types.IsInvalidData(err))
}

func TestMemoryStoreEdges(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	link := &types.Edge{ID: "e1", EdgeType: types.EdgeTypeLink, SourceID: "a", TargetID: "b"}
	nest := &types.Edge{ID: "e2", EdgeType: types.EdgeTypeNest, SourceID: "a", TargetID: "c"}
	require.NoError(t, s.CreateEdge(ctx, link))
	require.NoError(t, s.CreateEdge(ctx, nest))

	out, err := s.GetOutgoingEdges(ctx, "a", nil)
	require.NoError(t, err)
	assert.Len(t, out, 2)

	lt := types.EdgeTypeLink
	out, err = s.GetOutgoingEdges(ctx, "a", &lt)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "e1", out[0].ID)

	require.NoError(t, s.DeleteEdge(ctx, "e1"))
	assert.True(t, types.IsNotFound(s.DeleteEdge(ctx, "e1")))

	n, err := s.CountEdges(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
