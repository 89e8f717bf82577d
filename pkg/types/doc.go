// Package types defines the core value types of the Isometry knowledge graph:
// Node and Edge records, compiled LATCH filters, and the error taxonomy shared
// by the store, traversal, and service layers.
//
// Nodes carry the LATCH attribute groups (Location, Alphabet, Time, Category,
// Hierarchy) used by the filter compiler. All JSON field names are stable
// snake_case keys; external consumers rely on this exact naming.
package types
