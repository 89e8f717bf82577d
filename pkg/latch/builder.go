package latch

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/isometry-app/isometry/pkg/types"
)

// LocationCriteria constrains the location dimension by bounding box or by
// center plus radius (approximated as a degree box).
type LocationCriteria struct {
	MinLat, MaxLat *float64
	MinLon, MaxLon *float64

	CenterLat, CenterLon *float64
	RadiusKm             *float64
}

// AlphabetCriteria constrains the alphabet dimension: a name pattern, free
// text matched against name and content, or both.
type AlphabetCriteria struct {
	NamePattern string
	Text        string
}

// TimeCriteria constrains one timestamp field to a half-open range. Field
// accepts any LATCH time alias and defaults to "due".
type TimeCriteria struct {
	Field  string
	After  *time.Time
	Before *time.Time
}

// CategoryCriteria constrains the category dimension. Within each list the
// values are alternatives (OR); the lists themselves are combined with AND.
type CategoryCriteria struct {
	NodeTypes []string
	Tags      []string
	Folders   []string
}

// HierarchyCriteria constrains priority and importance bounds.
type HierarchyCriteria struct {
	MinPriority, MaxPriority     *int
	MinImportance, MaxImportance *int
}

// Criteria carries optional structured constraints, one per LATCH dimension.
// An entirely empty Criteria matches everything.
type Criteria struct {
	Location  *LocationCriteria
	Alphabet  *AlphabetCriteria
	Time      *TimeCriteria
	Category  *CategoryCriteria
	Hierarchy *HierarchyCriteria
}

// Expression assembles one LATCH sub-expression per populated dimension and
// joins them with AND. It returns "" when no dimension is populated.
func (c *Criteria) Expression() (string, error) {
	if c == nil {
		return "", nil
	}
	var parts []string
	if c.Location != nil {
		if sub := c.Location.expression(); sub != "" {
			parts = append(parts, sub)
		}
	}
	if c.Alphabet != nil {
		if sub := c.Alphabet.expression(); sub != "" {
			parts = append(parts, sub)
		}
	}
	if c.Time != nil {
		sub, err := c.Time.expression()
		if err != nil {
			return "", err
		}
		if sub != "" {
			parts = append(parts, sub)
		}
	}
	if c.Category != nil {
		if sub := c.Category.expression(); sub != "" {
			parts = append(parts, sub)
		}
	}
	if c.Hierarchy != nil {
		if sub := c.Hierarchy.expression(); sub != "" {
			parts = append(parts, sub)
		}
	}
	if len(parts) == 0 {
		return "", nil
	}
	return strings.Join(parts, " AND "), nil
}

// Build compiles the criteria. A nil filter with nil error means "match
// everything": no filter should be applied, pagination still respected.
func (c *Criteria) Build() (*types.CompiledFilter, error) {
	expr, err := c.Expression()
	if err != nil {
		return nil, err
	}
	if expr == "" {
		return nil, nil
	}
	return Compile(expr)
}

func (l *LocationCriteria) expression() string {
	minLat, maxLat := l.MinLat, l.MaxLat
	minLon, maxLon := l.MinLon, l.MaxLon
	if l.CenterLat != nil && l.CenterLon != nil && l.RadiusKm != nil {
		latDelta := *l.RadiusKm / 111.0
		lonDelta := *l.RadiusKm / (111.0 * math.Max(0.01, math.Cos(*l.CenterLat*math.Pi/180)))
		lo, hi := *l.CenterLat-latDelta, *l.CenterLat+latDelta
		minLat, maxLat = &lo, &hi
		wlo, whi := *l.CenterLon-lonDelta, *l.CenterLon+lonDelta
		minLon, maxLon = &wlo, &whi
	}
	var parts []string
	if minLat != nil {
		parts = append(parts, "lat:>="+formatFloat(*minLat))
	}
	if maxLat != nil {
		parts = append(parts, "lat:<="+formatFloat(*maxLat))
	}
	if minLon != nil {
		parts = append(parts, "lon:>="+formatFloat(*minLon))
	}
	if maxLon != nil {
		parts = append(parts, "lon:<="+formatFloat(*maxLon))
	}
	return group(parts, " AND ")
}

func (a *AlphabetCriteria) expression() string {
	var parts []string
	if a.NamePattern != "" {
		parts = append(parts, "name:contains("+quoteValue(a.NamePattern)+")")
	}
	if a.Text != "" {
		q := quoteValue(a.Text)
		parts = append(parts, "(name:contains("+q+") OR content:contains("+q+"))")
	}
	return group(parts, " AND ")
}

func (t *TimeCriteria) expression() (string, error) {
	field := t.Field
	if field == "" {
		field = "due"
	}
	if _, err := resolveField(field); err != nil {
		return "", err
	}
	var parts []string
	if t.After != nil {
		parts = append(parts, fmt.Sprintf("%s:>=%s", field, t.After.UTC().Format(presetDateLayout)))
	}
	if t.Before != nil {
		parts = append(parts, fmt.Sprintf("%s:<%s", field, t.Before.UTC().Format(presetDateLayout)))
	}
	return group(parts, " AND "), nil
}

func (c *CategoryCriteria) expression() string {
	var parts []string
	if alt := alternatives("type", c.NodeTypes); alt != "" {
		parts = append(parts, alt)
	}
	if len(c.Tags) > 0 {
		var tags []string
		for _, tag := range c.Tags {
			tags = append(tags, "tags:contains("+quoteValue(tag)+")")
		}
		parts = append(parts, group(tags, " OR "))
	}
	if alt := alternatives("folder", c.Folders); alt != "" {
		parts = append(parts, alt)
	}
	return group(parts, " AND ")
}

func (h *HierarchyCriteria) expression() string {
	var parts []string
	if h.MinPriority != nil {
		parts = append(parts, "priority:>="+strconv.Itoa(*h.MinPriority))
	}
	if h.MaxPriority != nil {
		parts = append(parts, "priority:<="+strconv.Itoa(*h.MaxPriority))
	}
	if h.MinImportance != nil {
		parts = append(parts, "importance:>="+strconv.Itoa(*h.MinImportance))
	}
	if h.MaxImportance != nil {
		parts = append(parts, "importance:<="+strconv.Itoa(*h.MaxImportance))
	}
	return group(parts, " AND ")
}

func alternatives(field string, values []string) string {
	var parts []string
	for _, v := range values {
		parts = append(parts, field+":"+quoteValue(v))
	}
	return group(parts, " OR ")
}

func group(parts []string, sep string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	return "(" + strings.Join(parts, sep) + ")"
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// quoteValue wraps a value so the tokenizer takes it verbatim. Quote
// characters cannot be escaped in the expression language, so the quoting
// character is chosen to avoid the value's own quotes.
func quoteValue(s string) string {
	if strings.Contains(s, "'") {
		return "\"" + s + "\""
	}
	return "'" + s + "'"
}
