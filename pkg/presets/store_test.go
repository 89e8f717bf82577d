package presets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isometry-app/isometry/pkg/latch"
	"github.com/isometry-app/isometry/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func mustPreset(t *testing.T, name, expression string) *types.FilterPreset {
	t.Helper()
	filter, err := latch.Compile(expression)
	require.NoError(t, err)
	return &types.FilterPreset{Name: name, Description: "test preset", Filter: *filter}
}

func TestPresetStoreCRUD(t *testing.T) {
	s := openTestStore(t)

	t.Run("save and get", func(t *testing.T) {
		preset := mustPreset(t, "urgent-work", "priority:>=8 AND folder:'Work'")
		require.NoError(t, s.Save(preset))

		got, err := s.Get("urgent-work")
		require.NoError(t, err)
		assert.Equal(t, preset.Name, got.Name)
		assert.Equal(t, preset.Description, got.Description)
		assert.Equal(t, preset.Filter.WhereClause, got.Filter.WhereClause)
	})

	t.Run("save overwrites", func(t *testing.T) {
		require.NoError(t, s.Save(mustPreset(t, "urgent-work", "priority:>=9")))
		got, err := s.Get("urgent-work")
		require.NoError(t, err)
		assert.Contains(t, got.Filter.WhereClause, "priority >= 9")
	})

	t.Run("empty name rejected", func(t *testing.T) {
		err := s.Save(&types.FilterPreset{})
		assert.True(t, types.IsInvalidData(err))
	})

	t.Run("get missing is NotFound", func(t *testing.T) {
		_, err := s.Get("nope")
		assert.True(t, types.IsNotFound(err))
	})

	t.Run("list is sorted by name", func(t *testing.T) {
		require.NoError(t, s.Save(mustPreset(t, "zebra", "status:open")))
		require.NoError(t, s.Save(mustPreset(t, "alpha", "status:open")))

		all, err := s.List()
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "alpha", all[0].Name)
		assert.Equal(t, "urgent-work", all[1].Name)
		assert.Equal(t, "zebra", all[2].Name)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Delete("zebra"))
		_, err := s.Get("zebra")
		assert.True(t, types.IsNotFound(err))
		assert.True(t, types.IsNotFound(s.Delete("zebra")))
	})
}

func TestPresetStoreInMemory(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save(mustPreset(t, "x", "due:null")))
	got, err := s.Get("x")
	require.NoError(t, err)
	assert.Equal(t, "x", got.Name)
}

func TestLoadFile(t *testing.T) {
	s := openTestStore(t)

	t.Run("loads and compiles entries", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "presets.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`presets:
  - name: deep-work
    description: focused work sessions
    expression: "folder:'Deep Work' AND priority:>=5"
  - name: somewhere
    expression: "location"
`), 0644))

		loaded, err := s.LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, 2, loaded)

		got, err := s.Get("deep-work")
		require.NoError(t, err)
		assert.Equal(t, "focused work sessions", got.Description)
		assert.Contains(t, got.Filter.WhereClause, "folder = 'Deep Work'")
	})

	t.Run("bad expression fails with preset name", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`presets:
  - name: broken
    expression: "bogusfield:1"
`), 0644))

		_, err := s.LoadFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broken")
		assert.True(t, types.IsInvalidData(err))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := s.LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}
