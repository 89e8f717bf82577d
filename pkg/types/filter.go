package types

import (
	"time"
)

// CompiledFilter is the immutable output of the LATCH compiler: the original
// expression text, the generated query fragment, and an extracted parameter
// list. Compilation is deterministic, so a CompiledFilter is safe to cache and
// re-execute concurrently.
type CompiledFilter struct {
	Expression  string    `json:"expression"`
	WhereClause string    `json:"where_clause"`
	Parameters  []any     `json:"parameters"`
	CompiledAt  time.Time `json:"compiled_at"`
}

// FilterPreset wraps a named, persisted CompiledFilter for reuse.
type FilterPreset struct {
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Filter      CompiledFilter `json:"filter" yaml:"-"`
}
