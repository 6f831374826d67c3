// Package engine implements the rule engine: a pure function from a state
// snapshot to a prioritized, deduplicated set of action calls with an
// overall severity and summary.
//
// EVALUATION:
//
// Rules are evaluated in declaration order against the snapshot's context
// tools. Each rule reads fields through typed accessors that fall back to a
// rule-specific default when a field is missing or has the wrong type, so
// evaluation never fails for a well-formed snapshot.
//
// A triggered rule contributes a severity in 1..3, an event description and
// a bundle of action calls whose priority is that severity. The overall
// severity is the maximum over triggered rules, never the sum.
//
// DEDUPLICATION:
//
// Calls are keyed by tool. A later call replaces an earlier one only when
// its priority is strictly higher; the key keeps its first-insertion
// position. Output is sorted by descending priority, ties in insertion
// order.
//
// The engine holds no mutable state and may be used from many goroutines.
package engine
