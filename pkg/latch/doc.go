// Package latch compiles the LATCH filter language (Location, Alphabet, Time,
// Category, Hierarchy) into executable query fragments.
//
// The pipeline is a hand-written tokenizer, a recursive-descent parser over
// the grammar
//
//	expr   := term (OR term)*
//	term   := factor (AND factor)*
//	factor := NOT factor | '(' expr ')' | field ':' value
//
// and a generator that resolves field aliases to storage columns and value
// operators (>=, <=, >, <, !, null, contains) to SQL predicates. Compilation
// is pure and deterministic: identical expression text always yields an
// identical fragment, so compiled filters are safe to cache and to execute
// concurrently.
//
// The package also exposes a schema descriptor for UI consumption, a closed
// set of common presets, and a multi-dimensional builder that assembles
// structured per-dimension criteria into one compiled expression.
package latch
