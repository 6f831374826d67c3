// Package payload provides the tagged-union value type used for every tool
// payload field in the catalog, the state snapshot and the rule engine.
//
// Value is a sealed interface. Only Null, Bool, Number, String, List and Map
// implement it, so a payload can never carry an arbitrary Go value.
//
// Key constraints:
//   - Map is treated as immutable once stored in a snapshot; use Clone and Merge
//     to derive new maps
//   - Canonical JSON (MarshalCanonical) sorts keys by UTF-16 code units and
//     NFC-normalizes strings so digests are stable
//   - All JSON tags and field names use snake_case
package payload
