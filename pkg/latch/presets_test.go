package latch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isometry-app/isometry/pkg/types"
)

func TestPresetExpressions(t *testing.T) {
	now := time.Date(2026, 8, 29, 15, 30, 45, 0, time.UTC)

	t.Run("today spans one day", func(t *testing.T) {
		expr, err := PresetExpression("today", now)
		require.NoError(t, err)
		assert.Equal(t, "due:>=2026-08-29T00:00:00.000Z AND due:<2026-08-30T00:00:00.000Z", expr)
	})

	t.Run("thisWeek spans seven days", func(t *testing.T) {
		expr, err := PresetExpression("thisWeek", now)
		require.NoError(t, err)
		assert.Equal(t, "due:>=2026-08-29T00:00:00.000Z AND due:<2026-09-05T00:00:00.000Z", expr)
	})

	t.Run("overdue anchors at now and excludes completed", func(t *testing.T) {
		expr, err := PresetExpression("overdue", now)
		require.NoError(t, err)
		assert.Equal(t, "due:<2026-08-29T15:30:45.000Z AND completed:null", expr)
	})

	t.Run("scalar presets", func(t *testing.T) {
		for name, want := range map[string]string{
			"highPriority": "priority:>=8",
			"important":    "importance:>=8",
			"incomplete":   "completed:null",
			"hasLocation":  "location",
		} {
			expr, err := PresetExpression(name, now)
			require.NoError(t, err)
			assert.Equal(t, want, expr, name)
		}
	})

	t.Run("recentlyModified looks back seven days", func(t *testing.T) {
		expr, err := PresetExpression("recentlyModified", now)
		require.NoError(t, err)
		assert.Equal(t, "modified:>=2026-08-22T15:30:45.000Z", expr)
	})

	t.Run("unknown preset", func(t *testing.T) {
		_, err := PresetExpression("tomorrow", now)
		require.Error(t, err)
		assert.True(t, types.IsInvalidData(err))
		assert.Contains(t, err.Error(), "tomorrow")
	})
}

func TestEveryPresetCompiles(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	for _, name := range PresetNames() {
		expr, err := PresetExpression(name, now)
		require.NoError(t, err, name)
		filter, err := Compile(expr)
		require.NoError(t, err, name)
		assert.Contains(t, filter.WhereClause, softDeleteFilter, name)
	}
}

func TestPresetDatesCompareLexicographically(t *testing.T) {
	// Stored timestamps use a fixed-width UTC layout, so the generated string
	// comparisons must order the same way the instants do.
	earlier := time.Date(2026, 1, 5, 23, 59, 59, 0, time.UTC)
	later := time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC)
	assert.Less(t, earlier.Format(presetDateLayout), later.Format(presetDateLayout))
}
