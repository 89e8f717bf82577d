package latch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isometry-app/isometry/pkg/types"
)

func compileClause(t *testing.T, expression string) string {
	t.Helper()
	filter, err := Compile(expression)
	require.NoError(t, err)
	return filter.WhereClause
}

func TestCompileOperators(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		want       string
	}{
		{"equality", "folder:Work", "(folder = 'Work') AND deleted_at IS NULL"},
		{"quoted equality", "folder:'Deep Work'", "(folder = 'Deep Work') AND deleted_at IS NULL"},
		{"numeric bare", "priority:5", "(priority = 5) AND deleted_at IS NULL"},
		{"gte", "priority:>=8", "(priority >= 8) AND deleted_at IS NULL"},
		{"lte", "importance:<=3", "(importance <= 3) AND deleted_at IS NULL"},
		{"gt", "sort:>10", "(sort_order > 10) AND deleted_at IS NULL"},
		{"lt", "lat:<-10.5", "(latitude < -10.5) AND deleted_at IS NULL"},
		{"negation", "status:!open", "(status <> 'open') AND deleted_at IS NULL"},
		{"null", "due:null", "(due_at IS NULL) AND deleted_at IS NULL"},
		{"not null", "completed:!null", "(completed_at IS NOT NULL) AND deleted_at IS NULL"},
		{"contains", "name:contains(milk)", "(name LIKE '%milk%') AND deleted_at IS NULL"},
		{"contains quoted", "name:contains('deep work')", "(name LIKE '%deep work%') AND deleted_at IS NULL"},
		{"tag contains", "tag:contains(urgent)", "(tags LIKE '%urgent%') AND deleted_at IS NULL"},
		{"alias title", "title:Foo", "(name = 'Foo') AND deleted_at IS NULL"},
		{"bare location", "location", "((latitude IS NOT NULL AND longitude IS NOT NULL)) AND deleted_at IS NULL"},
		{"quote doubling", "folder:\"Bob's\"", "(folder = 'Bob''s') AND deleted_at IS NULL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, compileClause(t, tt.expression))
		})
	}
}

func TestCompileBooleanStructure(t *testing.T) {
	t.Run("and", func(t *testing.T) {
		got := compileClause(t, "priority:>=5 AND folder:'Work'")
		assert.Equal(t, "((priority >= 5 AND folder = 'Work')) AND deleted_at IS NULL", got)
	})

	t.Run("and binds tighter than or", func(t *testing.T) {
		got := compileClause(t, "status:open OR status:done AND priority:>=5")
		assert.Equal(t, "((status = 'open' OR (status = 'done' AND priority >= 5))) AND deleted_at IS NULL", got)
	})

	t.Run("parentheses override precedence", func(t *testing.T) {
		got := compileClause(t, "(status:open OR status:done) AND priority:>=5")
		assert.Equal(t, "(((status = 'open' OR status = 'done') AND priority >= 5)) AND deleted_at IS NULL", got)
	})

	t.Run("not", func(t *testing.T) {
		got := compileClause(t, "NOT folder:Work")
		assert.Equal(t, "(NOT (folder = 'Work')) AND deleted_at IS NULL", got)
	})

	t.Run("lowercase keywords", func(t *testing.T) {
		got := compileClause(t, "folder:Work and not due:null")
		assert.Equal(t, "((folder = 'Work' AND NOT (due_at IS NULL))) AND deleted_at IS NULL", got)
	})
}

func TestCompileDeterministic(t *testing.T) {
	const expression = "priority:>=5 AND (folder:'Work' OR tag:contains(urgent))"
	first, err := Compile(expression)
	require.NoError(t, err)
	second, err := Compile(expression)
	require.NoError(t, err)

	assert.Equal(t, first.WhereClause, second.WhereClause)
	assert.Equal(t, expression, first.Expression)
	assert.Empty(t, first.Parameters)
	assert.False(t, first.CompiledAt.IsZero())
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		contains   string
	}{
		{"empty", "", "empty filter expression"},
		{"blank", "   ", "empty filter expression"},
		{"unknown field", "bogusfield:3", "bogusfield"},
		{"bare non-location field", "priority", "requires a value"},
		{"location with value", "location:true", "takes no comparison value"},
		{"missing close paren", "(folder:Work", "missing closing parenthesis"},
		{"trailing token", "folder:Work status:open", "unexpected token"},
		{"empty field name", ":value", "malformed field:value pair"},
		{"unterminated quote", "folder:'Work", "unterminated quoted string"},
		{"unterminated contains", "name:contains(milk", "unterminated contains()"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.expression)
			require.Error(t, err)
			assert.True(t, types.IsInvalidData(err), "expected InvalidData, got %v", err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestResolveFieldAliases(t *testing.T) {
	for alias, column := range map[string]string{
		"lat":      "latitude",
		"lng":      "longitude",
		"place":    "place_name",
		"title":    "name",
		"created":  "created_at",
		"due":      "due_at",
		"tag":      "tags",
		"type":     "node_type",
		"sort":     "sort_order",
		"PRIORITY": "priority",
	} {
		got, err := resolveField(alias)
		require.NoError(t, err, alias)
		assert.Equal(t, column, got, alias)
	}
}
