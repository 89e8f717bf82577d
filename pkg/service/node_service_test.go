package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isometry-app/isometry/pkg/store"
	"github.com/isometry-app/isometry/pkg/types"
)

var fixedNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, opts ...Option) (*NodeService, *store.MemoryStore) {
	t.Helper()
	s := store.NewMemoryStore()
	opts = append([]Option{
		WithEdgeStore(s),
		WithClock(func() time.Time { return fixedNow }),
	}, opts...)
	return NewNodeService(s, opts...), s
}

func TestCreateNode(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	t.Run("assigns id, timestamps and versions", func(t *testing.T) {
		created, err := svc.CreateNode(ctx, &types.Node{NodeType: "note", Name: "hello"})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.True(t, fixedNow.Equal(created.CreatedAt))
		assert.True(t, fixedNow.Equal(created.ModifiedAt))
		assert.Equal(t, int64(1), created.Version)
		assert.Equal(t, int64(1), created.SyncVersion)
		assert.Nil(t, created.DeletedAt)
	})

	t.Run("rejects invalid node", func(t *testing.T) {
		_, err := svc.CreateNode(ctx, &types.Node{NodeType: "note"})
		assert.True(t, types.IsInvalidData(err))

		_, err = svc.CreateNode(ctx, &types.Node{NodeType: "note", Name: "x", Priority: 99})
		assert.True(t, types.IsInvalidData(err))
	})

	t.Run("rejects past due date on creation", func(t *testing.T) {
		_, err := svc.CreateNode(ctx, &types.Node{
			NodeType: "task", Name: "late",
			DueAt: types.TimePtr(fixedNow.Add(-time.Hour)),
		})
		assert.True(t, types.IsInvalidData(err))

		created, err := svc.CreateNode(ctx, &types.Node{
			NodeType: "task", Name: "on time",
			DueAt: types.TimePtr(fixedNow.Add(time.Hour)),
		})
		require.NoError(t, err)
		assert.NotNil(t, created.DueAt)
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		input := &types.Node{NodeType: "note", Name: "immutable"}
		_, err := svc.CreateNode(ctx, input)
		require.NoError(t, err)
		assert.Empty(t, input.ID)
		assert.Zero(t, input.Version)
	})
}

func TestUpdateNode(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateNode(ctx, &types.Node{NodeType: "note", Name: "v1"})
	require.NoError(t, err)

	t.Run("version check and increments", func(t *testing.T) {
		update := created.Clone()
		update.Name = "v2"
		updated, err := svc.UpdateNode(ctx, update)
		require.NoError(t, err)
		assert.Equal(t, "v2", updated.Name)
		assert.Equal(t, int64(2), updated.Version)
		assert.Equal(t, int64(2), updated.SyncVersion)
		assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
	})

	t.Run("stale version conflicts", func(t *testing.T) {
		stale := created.Clone() // still version 1
		stale.Name = "stale write"
		_, err := svc.UpdateNode(ctx, stale)
		require.Error(t, err)
		assert.True(t, types.IsConflict(err))
	})

	t.Run("allows past due date on update", func(t *testing.T) {
		current, err := svc.nodes.GetNode(ctx, created.ID)
		require.NoError(t, err)
		current.DueAt = types.TimePtr(fixedNow.Add(-24 * time.Hour))
		updated, err := svc.UpdateNode(ctx, current)
		require.NoError(t, err)
		assert.NotNil(t, updated.DueAt)
	})

	t.Run("missing node", func(t *testing.T) {
		_, err := svc.UpdateNode(ctx, &types.Node{ID: "ghost", NodeType: "note", Name: "x"})
		assert.True(t, types.IsNotFound(err))
	})
}

func TestUpdateNodeConcurrentStaleVersions(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateNode(ctx, &types.Node{NodeType: "note", Name: "contested"})
	require.NoError(t, err)

	// Both writers hold the same snapshot; exactly one may land.
	const writers = 2
	errs := make([]error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			update := created.Clone()
			update.Name = "contested rewrite"
			_, errs[i] = svc.UpdateNode(ctx, update)
		}(i)
	}
	wg.Wait()

	conflicts := 0
	for _, err := range errs {
		if err != nil {
			assert.True(t, types.IsConflict(err), "unexpected error: %v", err)
			conflicts++
		}
	}
	assert.Equal(t, 1, conflicts, "exactly one writer must lose")

	current, err := svc.nodes.GetNode(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), current.Version, "the winner bumps the version once")
}

func TestDeleteNode(t *testing.T) {
	ctx := context.Background()

	t.Run("soft delete without cascade keeps edges", func(t *testing.T) {
		svc, s := newTestService(t)
		created, err := svc.CreateNode(ctx, &types.Node{NodeType: "note", Name: "n"})
		require.NoError(t, err)
		require.NoError(t, s.CreateEdge(ctx, &types.Edge{
			ID: "e1", EdgeType: types.EdgeTypeLink, SourceID: created.ID, TargetID: "other",
		}))

		require.NoError(t, svc.DeleteNode(ctx, created.ID, false))

		_, err = s.GetNode(ctx, created.ID)
		assert.True(t, types.IsNotFound(err))
		n, err := s.CountEdges(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("cascade removes connected edges", func(t *testing.T) {
		svc, s := newTestService(t)
		created, err := svc.CreateNode(ctx, &types.Node{NodeType: "note", Name: "n"})
		require.NoError(t, err)
		require.NoError(t, s.CreateEdge(ctx, &types.Edge{
			ID: "e1", EdgeType: types.EdgeTypeLink, SourceID: created.ID, TargetID: "other",
		}))
		require.NoError(t, s.CreateEdge(ctx, &types.Edge{
			ID: "e2", EdgeType: types.EdgeTypeNest, SourceID: "other", TargetID: created.ID,
		}))
		require.NoError(t, s.CreateEdge(ctx, &types.Edge{
			ID: "e3", EdgeType: types.EdgeTypeLink, SourceID: "x", TargetID: "y",
		}))

		require.NoError(t, svc.DeleteNode(ctx, created.ID, true))

		n, err := s.CountEdges(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n, "only the unrelated edge survives")
	})

	t.Run("cascade without edge store is DependencyMissing", func(t *testing.T) {
		s := store.NewMemoryStore()
		svc := NewNodeService(s, WithClock(func() time.Time { return fixedNow }))
		created, err := svc.CreateNode(ctx, &types.Node{NodeType: "note", Name: "n"})
		require.NoError(t, err)

		err = svc.DeleteNode(ctx, created.ID, true)
		assert.True(t, types.IsDependencyMissing(err))
	})

	t.Run("missing node", func(t *testing.T) {
		svc, _ := newTestService(t)
		assert.True(t, types.IsNotFound(svc.DeleteNode(ctx, "ghost", false)))
	})
}

func TestDuplicateNode(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	original, err := svc.CreateNode(ctx, &types.Node{
		NodeType: "task", Name: "original",
		Tags: []string{"a"},
	})
	require.NoError(t, err)

	// Simulate completion on the original.
	current, err := svc.nodes.GetNode(ctx, original.ID)
	require.NoError(t, err)
	current.CompletedAt = types.TimePtr(fixedNow)
	_, err = svc.UpdateNode(ctx, current)
	require.NoError(t, err)

	dup, err := svc.DuplicateNode(ctx, original.ID)
	require.NoError(t, err)

	assert.NotEqual(t, original.ID, dup.ID)
	assert.Equal(t, "original", dup.Name)
	assert.Equal(t, []string{"a"}, dup.Tags)
	assert.Nil(t, dup.CompletedAt, "completion state is cleared")
	assert.Nil(t, dup.DeletedAt)
	assert.Equal(t, int64(1), dup.Version)
	assert.Equal(t, int64(1), dup.SyncVersion)
	require.NotNil(t, dup.Source)
	assert.Equal(t, "duplicate", *dup.Source)
	require.NotNil(t, dup.SourceID)
	assert.Equal(t, original.ID, *dup.SourceID)

	t.Run("missing original", func(t *testing.T) {
		_, err := svc.DuplicateNode(ctx, "ghost")
		assert.True(t, types.IsNotFound(err))
	})
}

func TestArchiveOldNodes(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()

	mk := func(id, nodeType string, age time.Duration) {
		require.NoError(t, s.CreateNode(ctx, &types.Node{
			ID: id, NodeType: nodeType, Name: id,
			CreatedAt: fixedNow.Add(-age),
		}))
	}
	mk("old-note", "note", 400*24*time.Hour)
	mk("old-task", "task", 400*24*time.Hour)
	mk("new-note", "note", 24*time.Hour)

	cutoff := fixedNow.Add(-30 * 24 * time.Hour)

	t.Run("type filter", func(t *testing.T) {
		archived, err := svc.ArchiveOldNodes(ctx, cutoff, []string{"task"})
		require.NoError(t, err)
		assert.Equal(t, 1, archived)

		_, err = s.GetNode(ctx, "old-task")
		assert.True(t, types.IsNotFound(err))
		_, err = s.GetNode(ctx, "old-note")
		assert.NoError(t, err)
	})

	t.Run("no filter archives all old nodes", func(t *testing.T) {
		archived, err := svc.ArchiveOldNodes(ctx, cutoff, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, archived)

		_, err = s.GetNode(ctx, "new-note")
		assert.NoError(t, err, "recent nodes stay")
	})
}

func TestGetNodesNeedingAttention(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()

	add := func(id string, mutate func(*types.Node)) {
		n := &types.Node{ID: id, NodeType: "task", Name: id}
		mutate(n)
		require.NoError(t, s.CreateNode(ctx, n))
	}
	add("overdue", func(n *types.Node) { n.DueAt = types.TimePtr(fixedNow.Add(-time.Hour)) })
	add("high-priority", func(n *types.Node) { n.Priority = 9 })
	add("important-no-due", func(n *types.Node) { n.Importance = 9 })
	add("important-with-due", func(n *types.Node) {
		n.Importance = 9
		n.DueAt = types.TimePtr(fixedNow.Add(48 * time.Hour))
	})
	add("calm", func(n *types.Node) {})

	got, err := svc.GetNodesNeedingAttention(ctx)
	require.NoError(t, err)

	ids := make([]string, len(got))
	for i, n := range got {
		ids[i] = n.ID
	}
	assert.ElementsMatch(t, []string{"overdue", "high-priority", "important-no-due"}, ids)
}

func TestAdvancedSearch(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()

	add := func(id string, mutate func(*types.Node)) {
		n := &types.Node{ID: id, NodeType: "note", Name: id, CreatedAt: fixedNow}
		mutate(n)
		require.NoError(t, s.CreateNode(ctx, n))
	}
	add("meeting-notes", func(n *types.Node) {
		n.Tags = []string{"work"}
		n.Priority = 6
	})
	add("meeting-agenda", func(n *types.Node) {
		n.NodeType = "task"
		n.Tags = []string{"work", "urgent"}
		n.Priority = 3
	})
	add("recipe", func(n *types.Node) {
		n.Tags = []string{"home"}
		n.CreatedAt = fixedNow.Add(-72 * time.Hour)
	})

	t.Run("text plus type filter", func(t *testing.T) {
		got, err := svc.AdvancedSearch(ctx, SearchOptions{Query: "meeting", NodeTypes: []string{"task"}})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "meeting-agenda", got[0].ID)
	})

	t.Run("tag overlap", func(t *testing.T) {
		got, err := svc.AdvancedSearch(ctx, SearchOptions{Tags: []string{"urgent", "home"}})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("created-after and min priority", func(t *testing.T) {
		after := fixedNow.Add(-time.Hour)
		minPriority := 5
		got, err := svc.AdvancedSearch(ctx, SearchOptions{
			CreatedAfter: &after,
			MinPriority:  &minPriority,
		})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "meeting-notes", got[0].ID)
	})

	t.Run("no filters returns everything", func(t *testing.T) {
		got, err := svc.AdvancedSearch(ctx, SearchOptions{})
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})
}

func TestGetNodeStatistics(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()

	add := func(id, nodeType string, mutate func(*types.Node)) {
		n := &types.Node{ID: id, NodeType: nodeType, Name: id}
		mutate(n)
		require.NoError(t, s.CreateNode(ctx, n))
	}
	add("n1", "note", func(n *types.Node) {})
	add("n2", "note", func(n *types.Node) {
		n.Latitude = types.FloatPtr(1)
		n.Longitude = types.FloatPtr(2)
	})
	add("t1", "task", func(n *types.Node) {
		n.DueAt = types.TimePtr(fixedNow.Add(-time.Hour))
	})
	add("t2", "task", func(n *types.Node) {
		n.CompletedAt = types.TimePtr(fixedNow)
	})
	add("gone", "note", func(n *types.Node) {})
	require.NoError(t, s.DeleteNode(ctx, "gone"))

	stats, err := svc.GetNodeStatistics(ctx)
	require.NoError(t, err)

	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 1, stats.Deleted)
	assert.Equal(t, 1, stats.WithLocation)
	assert.Equal(t, 1, stats.Overdue)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, map[string]int{"note": 2, "task": 2}, stats.ByType)
}
