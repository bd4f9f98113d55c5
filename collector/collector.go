package collector

import (
	"runtime"
	"sync/atomic"

	"github.com/wesleyorama2/histo/histogram"
)

// Option configures a Collector.
type Option func(*options)

type options struct {
	maxValue uint64
	epsilon  float64
	shards   int
}

// WithMaxValue sets the largest sample value the collector can distinguish
// without saturation.
func WithMaxValue(v uint64) Option {
	return func(o *options) { o.maxValue = v }
}

// WithEpsilon sets the desired worst-case relative bucket width.
func WithEpsilon(e float64) Option {
	return func(o *options) { o.epsilon = e }
}

// WithShards sets the number of independent writer shards. Values below 1
// fall back to the default of runtime.GOMAXPROCS(0).
func WithShards(n int) Option {
	return func(o *options) { o.shards = n }
}

// Collector fans concurrent record calls out across writer-private shard
// stores and merges them only at read time. There is no process-wide state:
// every Collector owns its shards, so independently configured histograms
// coexist freely in one process.
type Collector struct {
	scheme histogram.Scheme
	shards []*histogram.Store

	// writer assignment and fallback record distribution cursors
	nextWriter atomic.Uint64
	nextRecord atomic.Uint64
}

// Writer is a handle bound to a single shard. A worker goroutine holding
// its own Writer records with zero cross-writer contention.
type Writer struct {
	store *histogram.Store
}

// Record counts one sample into the writer's shard. It never blocks, never
// allocates, and never fails; out-of-range values saturate.
func (w *Writer) Record(v uint64) {
	w.store.Record(v)
}

// New builds a collector. With no options it covers [0, DefaultMaxValue]
// at the default precision with one shard per logical CPU.
func New(opts ...Option) (*Collector, error) {
	o := options{
		maxValue: histogram.DefaultMaxValue,
		epsilon:  histogram.DefaultEpsilon,
		shards:   runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.shards < 1 {
		o.shards = runtime.GOMAXPROCS(0)
	}

	scheme, err := histogram.NewScheme(o.maxValue, o.epsilon)
	if err != nil {
		return nil, err
	}

	c := &Collector{
		scheme: scheme,
		shards: make([]*histogram.Store, o.shards),
	}
	for i := range c.shards {
		c.shards[i] = histogram.NewStore(scheme)
	}
	return c, nil
}

// Scheme returns the bucket scheme shared by every shard.
func (c *Collector) Scheme() histogram.Scheme { return c.scheme }

// Shards returns the number of writer shards.
func (c *Collector) Shards() int { return len(c.shards) }

// Writer returns a shard-bound handle. Handles are assigned round-robin;
// give each worker goroutine its own.
func (c *Collector) Writer() *Writer {
	idx := (c.nextWriter.Add(1) - 1) % uint64(len(c.shards))
	return &Writer{store: c.shards[idx]}
}

// Record counts one sample without a Writer, distributing across shards
// round-robin. Safe from any goroutine; hot loops should prefer a Writer,
// which skips the shared distribution cursor.
func (c *Collector) Record(v uint64) {
	idx := c.nextRecord.Add(1) % uint64(len(c.shards))
	c.shards[idx].Record(v)
}

// Snapshot merges all shards into one immutable snapshot at a single
// logical instant. Writers are never paused: each shard is copied with
// atomic reads and the copies are reduced through the merge engine.
func (c *Collector) Snapshot() *histogram.Snapshot {
	merged := c.shards[0].Snapshot()
	for _, shard := range c.shards[1:] {
		next, err := histogram.Merge(merged, shard.Snapshot())
		if err != nil {
			// unreachable: every shard is built from the same scheme
			panic(err)
		}
		merged = next
	}
	return merged
}

// Reset zeroes every shard in place, starting a new measurement window.
// Samples racing the reset boundary may land in either window; samples
// recorded strictly after Reset returns are counted in the new one.
func (c *Collector) Reset() {
	for _, shard := range c.shards {
		shard.Reset()
	}
}
