// Package histogram implements a zero-configuration log-bucketed histogram
// for latency-style measurements.
//
// Values are mapped to buckets with a single bit-scan and shift, so recording
// costs a handful of nanoseconds and never allocates. Bucket widths grow with
// the value magnitude, which bounds the relative error of percentile queries
// (0.5% or better with the default settings) while keeping memory logarithmic
// in the maximum trackable value.
//
// The package provides:
//   - Scheme: the pure value <-> bucket mapping
//   - Store: a fixed-size array of atomic counters for one histogram
//   - Snapshot: an immutable point-in-time copy used for queries and merging
//
// Stores are cheap to write from many goroutines; for near-zero contention
// use the collector package, which shards writes across private stores and
// merges them at read time.
package histogram
