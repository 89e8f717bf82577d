package latch

import (
	"fmt"
	"time"

	"github.com/isometry-app/isometry/pkg/types"
)

// presetDateLayout matches the stored timestamp text format so generated
// comparisons stay correct under lexicographic ordering.
const presetDateLayout = "2006-01-02T15:04:05.000Z"

// PresetNames lists the closed set of common preset shortcuts.
func PresetNames() []string {
	return []string{
		"today", "thisWeek", "overdue", "highPriority",
		"important", "incomplete", "hasLocation", "recentlyModified",
	}
}

// PresetExpression returns the LATCH expression for a named preset, with date
// boundaries anchored at now.
func PresetExpression(name string, now time.Time) (string, error) {
	day := now.UTC().Truncate(24 * time.Hour)
	fd := func(t time.Time) string { return t.UTC().Format(presetDateLayout) }
	switch name {
	case "today":
		return fmt.Sprintf("due:>=%s AND due:<%s", fd(day), fd(day.Add(24*time.Hour))), nil
	case "thisWeek":
		return fmt.Sprintf("due:>=%s AND due:<%s", fd(day), fd(day.Add(7*24*time.Hour))), nil
	case "overdue":
		return fmt.Sprintf("due:<%s AND completed:null", fd(now)), nil
	case "highPriority":
		return "priority:>=8", nil
	case "important":
		return "importance:>=8", nil
	case "incomplete":
		return "completed:null", nil
	case "hasLocation":
		return "location", nil
	case "recentlyModified":
		return fmt.Sprintf("modified:>=%s", fd(now.Add(-7*24*time.Hour))), nil
	}
	return "", types.Invalidf("unknown preset %q", name)
}

// CompilePreset compiles a named preset anchored at the current time.
func CompilePreset(name string) (*types.CompiledFilter, error) {
	expr, err := PresetExpression(name, time.Now())
	if err != nil {
		return nil, err
	}
	return Compile(expr)
}
