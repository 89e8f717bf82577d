package types

import (
	"time"
)

// Node represents a vertex in the knowledge graph. Optional scalar fields are
// pointers so that absence stays distinguishable from a zero value; the LATCH
// null/!null operators depend on this.
type Node struct {
	ID       string  `json:"id" mapstructure:"id"`
	NodeType string  `json:"node_type" mapstructure:"node_type"`
	Name     string  `json:"name" mapstructure:"name"`
	Content  *string `json:"content,omitempty" mapstructure:"content"`
	Summary  *string `json:"summary,omitempty" mapstructure:"summary"`

	// Location
	Latitude  *float64 `json:"latitude,omitempty" mapstructure:"latitude"`
	Longitude *float64 `json:"longitude,omitempty" mapstructure:"longitude"`
	PlaceName *string  `json:"place_name,omitempty" mapstructure:"place_name"`
	Address   *string  `json:"address,omitempty" mapstructure:"address"`

	// Time
	CreatedAt   time.Time  `json:"created_at" mapstructure:"created_at"`
	ModifiedAt  time.Time  `json:"modified_at" mapstructure:"modified_at"`
	DueAt       *time.Time `json:"due_at,omitempty" mapstructure:"due_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" mapstructure:"completed_at"`
	EventStart  *time.Time `json:"event_start,omitempty" mapstructure:"event_start"`
	EventEnd    *time.Time `json:"event_end,omitempty" mapstructure:"event_end"`

	// Category
	Folder *string  `json:"folder,omitempty" mapstructure:"folder"`
	Tags   []string `json:"tags,omitempty" mapstructure:"tags"`
	Status *string  `json:"status,omitempty" mapstructure:"status"`

	// Hierarchy
	Priority   int `json:"priority" mapstructure:"priority"`
	Importance int `json:"importance" mapstructure:"importance"`
	SortOrder  int `json:"sort_order" mapstructure:"sort_order"`

	// Provenance, written by import/export adapters.
	Source    *string `json:"source,omitempty" mapstructure:"source"`
	SourceID  *string `json:"source_id,omitempty" mapstructure:"source_id"`
	SourceURL *string `json:"source_url,omitempty" mapstructure:"source_url"`

	// Bookkeeping
	DeletedAt          *time.Time `json:"deleted_at,omitempty" mapstructure:"deleted_at"`
	Version            int64      `json:"version" mapstructure:"version"`
	SyncVersion        int64      `json:"sync_version" mapstructure:"sync_version"`
	LastSyncedAt       *time.Time `json:"last_synced_at,omitempty" mapstructure:"last_synced_at"`
	ConflictResolvedAt *time.Time `json:"conflict_resolved_at,omitempty" mapstructure:"conflict_resolved_at"`
}

// Validate checks the Node's intrinsic invariants: required name, coordinate
// ranges, priority/importance bounds, and event ordering.
func (n *Node) Validate() error {
	if n.Name == "" {
		return Invalidf("name cannot be empty")
	}
	if n.Priority < 0 || n.Priority > 10 {
		return Invalidf("priority %d out of range [0,10]", n.Priority)
	}
	if n.Importance < 0 || n.Importance > 10 {
		return Invalidf("importance %d out of range [0,10]", n.Importance)
	}
	if n.Latitude != nil && (*n.Latitude < -90 || *n.Latitude > 90) {
		return Invalidf("latitude %v out of range [-90,90]", *n.Latitude)
	}
	if n.Longitude != nil && (*n.Longitude < -180 || *n.Longitude > 180) {
		return Invalidf("longitude %v out of range [-180,180]", *n.Longitude)
	}
	if n.EventStart != nil && n.EventEnd != nil && n.EventEnd.Before(*n.EventStart) {
		return Invalidf("event_end %v before event_start %v", *n.EventEnd, *n.EventStart)
	}
	return nil
}

// IsDeleted reports whether the node has been soft-deleted.
func (n *Node) IsDeleted() bool { return n.DeletedAt != nil }

// IsOverdue reports whether the node has an uncompleted due date before now.
func (n *Node) IsOverdue(now time.Time) bool {
	return n.DueAt != nil && n.DueAt.Before(now) && n.CompletedAt == nil
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	c := *n
	c.Content = cloneString(n.Content)
	c.Summary = cloneString(n.Summary)
	c.Latitude = cloneFloat(n.Latitude)
	c.Longitude = cloneFloat(n.Longitude)
	c.PlaceName = cloneString(n.PlaceName)
	c.Address = cloneString(n.Address)
	c.DueAt = cloneTime(n.DueAt)
	c.CompletedAt = cloneTime(n.CompletedAt)
	c.EventStart = cloneTime(n.EventStart)
	c.EventEnd = cloneTime(n.EventEnd)
	c.Folder = cloneString(n.Folder)
	if n.Tags != nil {
		c.Tags = append([]string(nil), n.Tags...)
	}
	c.Status = cloneString(n.Status)
	c.Source = cloneString(n.Source)
	c.SourceID = cloneString(n.SourceID)
	c.SourceURL = cloneString(n.SourceURL)
	c.DeletedAt = cloneTime(n.DeletedAt)
	c.LastSyncedAt = cloneTime(n.LastSyncedAt)
	c.ConflictResolvedAt = cloneTime(n.ConflictResolvedAt)
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// StringPtr returns a pointer to s. Convenience for building optional fields.
func StringPtr(s string) *string { return &s }

// FloatPtr returns a pointer to f.
func FloatPtr(f float64) *float64 { return &f }

// IntPtr returns a pointer to i.
func IntPtr(i int) *int { return &i }

// TimePtr returns a pointer to t.
func TimePtr(t time.Time) *time.Time { return &t }
