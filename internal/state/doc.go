// Package state holds the application snapshot and the store that owns it.
//
// An AppState is an immutable value. Every change goes through
// Store.Replace, which applies a pure transform to the current snapshot and
// publishes the result as a whole. Readers calling Current see either the
// old or the new snapshot, never a mix.
//
// The With* helpers on AppState are copy-on-write: they return a new
// snapshot sharing unchanged parts with the receiver and never write to
// maps or slices reachable from it.
//
// Ordering:
// Each published snapshot carries a Version from a logical clock. Version 0
// is the snapshot the store was built with; each Replace stamps the next
// value. Subscribers are notified in Version order.
package state
