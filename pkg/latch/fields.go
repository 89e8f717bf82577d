package latch

import (
	"strings"

	"github.com/isometry-app/isometry/pkg/types"
)

// columnLocation is the pseudo-column for the bare `location` field, which
// expands to a latitude+longitude presence check rather than a comparison.
const columnLocation = "location"

// fieldAliases maps LATCH field names (lowercased) to storage columns. This
// table is a compatibility surface for external expression text and must stay
// stable.
var fieldAliases = map[string]string{
	// Location
	"lat":        "latitude",
	"latitude":   "latitude",
	"lon":        "longitude",
	"lng":        "longitude",
	"longitude":  "longitude",
	"place":      "place_name",
	"place_name": "place_name",
	"address":    "address",
	"location":   columnLocation,

	// Alphabet
	"title":   "name",
	"name":    "name",
	"content": "content",
	"summary": "summary",

	// Time
	"created":      "created_at",
	"created_at":   "created_at",
	"modified":     "modified_at",
	"modified_at":  "modified_at",
	"due":          "due_at",
	"due_at":       "due_at",
	"completed":    "completed_at",
	"completed_at": "completed_at",
	"start":        "event_start",
	"event_start":  "event_start",
	"end":          "event_end",
	"event_end":    "event_end",

	// Category
	"folder": "folder",
	"tag":    "tags",
	"tags":   "tags",
	"status": "status",

	// Hierarchy and typing
	"type":       "node_type",
	"node_type":  "node_type",
	"priority":   "priority",
	"importance": "importance",
	"sort":       "sort_order",
	"sort_order": "sort_order",
}

// resolveField maps a user-facing field name to its storage column, or fails
// with InvalidData naming the offending field.
func resolveField(name string) (string, error) {
	column, ok := fieldAliases[strings.ToLower(name)]
	if !ok {
		return "", types.Invalidf("unknown field %q", name)
	}
	return column, nil
}
