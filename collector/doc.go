// Package collector coordinates high-frequency concurrent recording into
// log-bucketed histograms.
//
// A Collector owns a set of shard stores. Worker goroutines obtain a Writer
// bound to one shard and record into it with no cross-writer contention at
// all; reads merge every shard into a single immutable snapshot. Many
// writers, rare readers.
package collector
