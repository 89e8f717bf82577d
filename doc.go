// Package isometry is a personal knowledge graph: nodes organized by the
// LATCH dimensions (location, alphabet, time, category, hierarchy) and
// connected by typed edges.
//
// The packages under pkg/ layer as follows: types holds the value types and
// error taxonomy, store persists them in SQLite, graph walks the edge
// structure, latch compiles filter expressions into SQL fragments, service
// adds validated lifecycle operations, and presets keeps named filters in an
// embedded Badger store. The Client in this package wires them together; the
// HTTP server and CLI under pkg/server and cmd/isometry build on the Client.
package isometry
