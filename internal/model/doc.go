// Package model defines the data structures shared by the crawler, the
// stores and the report writers.
//
// A Card is the canonical record resolved from one detail page. A Dataset
// partitions cards by tier and is what the dataset stores persist. Both
// types are plain values; persistence and extraction live elsewhere.
//
// Design decision: Unresolved fields carry sentinel strings ("N/A",
// "Unknown", "Anonymous") instead of empty values because the persisted
// file format has always used them, and downstream consumers group on the
// tier string directly.
package model
