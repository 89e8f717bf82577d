package latch

import (
	"regexp"
	"strings"
	"time"

	"github.com/isometry-app/isometry/pkg/types"
)

// softDeleteFilter is appended to every generated fragment so compiled
// filters never match soft-deleted nodes.
const softDeleteFilter = "deleted_at IS NULL"

// Compile turns LATCH expression text into a reusable CompiledFilter. The
// generated fragment is deterministic: identical input yields byte-identical
// output. Parse and field-resolution failures are InvalidData.
func Compile(expression string) (*types.CompiledFilter, error) {
	expr, err := Parse(expression)
	if err != nil {
		return nil, err
	}
	predicate, err := generate(expr)
	if err != nil {
		return nil, err
	}
	return &types.CompiledFilter{
		Expression:  expression,
		WhereClause: "(" + predicate + ") AND " + softDeleteFilter,
		Parameters:  []any{},
		CompiledAt:  time.Now().UTC(),
	}, nil
}

func generate(expr Expr) (string, error) {
	switch e := expr.(type) {
	case *AndExpr:
		left, err := generate(e.Left)
		if err != nil {
			return "", err
		}
		right, err := generate(e.Right)
		if err != nil {
			return "", err
		}
		return "(" + left + " AND " + right + ")", nil
	case *OrExpr:
		left, err := generate(e.Left)
		if err != nil {
			return "", err
		}
		right, err := generate(e.Right)
		if err != nil {
			return "", err
		}
		return "(" + left + " OR " + right + ")", nil
	case *NotExpr:
		inner, err := generate(e.Expr)
		if err != nil {
			return "", err
		}
		return "NOT (" + inner + ")", nil
	case *FieldValue:
		return generateFieldValue(e)
	}
	return "", types.Invalidf("unsupported expression node")
}

func generateFieldValue(fv *FieldValue) (string, error) {
	column, err := resolveField(fv.Field)
	if err != nil {
		return "", err
	}
	if column == columnLocation {
		if fv.Value != "" {
			return "", types.Invalidf("field %q takes no comparison value", fv.Field)
		}
		return "(latitude IS NOT NULL AND longitude IS NOT NULL)", nil
	}
	if fv.Bare {
		return "", types.Invalidf("field %q requires a value", fv.Field)
	}
	return generateComparison(column, strings.TrimSpace(fv.Value)), nil
}

// generateComparison applies the value-operator rules in priority order:
// >=, <=, >, <, ! (prefix negation), null, contains(...), exact equality.
func generateComparison(column, value string) string {
	switch {
	case strings.HasPrefix(value, ">="):
		return column + " >= " + literal(strings.TrimSpace(value[2:]))
	case strings.HasPrefix(value, "<="):
		return column + " <= " + literal(strings.TrimSpace(value[2:]))
	case strings.HasPrefix(value, ">"):
		return column + " > " + literal(strings.TrimSpace(value[1:]))
	case strings.HasPrefix(value, "<"):
		return column + " < " + literal(strings.TrimSpace(value[1:]))
	case strings.HasPrefix(value, "!"):
		rest := strings.TrimSpace(value[1:])
		if strings.EqualFold(rest, "null") {
			return column + " IS NOT NULL"
		}
		return column + " <> " + literal(rest)
	case strings.EqualFold(value, "null"):
		return column + " IS NULL"
	}
	if inner, ok := containsArg(value); ok {
		return column + " LIKE " + likePattern(inner)
	}
	return column + " = " + literal(value)
}

func containsArg(value string) (string, bool) {
	lower := strings.ToLower(value)
	if strings.HasPrefix(lower, "contains(") && strings.HasSuffix(value, ")") {
		return value[len("contains(") : len(value)-1], true
	}
	return "", false
}

var numericLiteral = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// literal renders a value operand: numeric-looking operands are emitted bare,
// everything else single-quoted with embedded quotes doubled.
func literal(value string) string {
	if numericLiteral.MatchString(value) {
		return value
	}
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

func likePattern(inner string) string {
	return "'%" + strings.ReplaceAll(inner, "'", "''") + "%'"
}
