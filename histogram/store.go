package histogram

import (
	"sync/atomic"
)

// Store accumulates per-bucket counts for one histogram.
//
// All counters are plain atomics, so Record is safe from any number of
// goroutines, never allocates, and never blocks. The counter array is sized
// by the scheme at construction and never resized.
//
// Counts, totals, and max are updated independently, so a reader racing
// Record may observe a total that is ahead of the bucket counts by the
// handful of samples in flight. Snapshot documents the same window. Use the
// collector package when queries must be consistent against many writers.
type Store struct {
	scheme Scheme

	counts []atomic.Uint64

	total     atomic.Uint64
	sum       atomic.Uint64
	max       atomic.Uint64
	saturated atomic.Uint64

	// Sticky flag, set when total or sum crosses the high-bit threshold.
	// Counters saturate-and-flag rather than silently wrapping; a flagged
	// histogram's derived statistics are no longer trustworthy.
	overflowed atomic.Bool
}

// BucketCount is one non-zero bucket in a sparse enumeration.
type BucketCount struct {
	Bucket int
	Count  uint64
}

// NewStore allocates a store for the given scheme. This is the only
// allocation the store ever performs.
func NewStore(scheme Scheme) *Store {
	return &Store{
		scheme: scheme,
		counts: make([]atomic.Uint64, scheme.NumBuckets()),
	}
}

// Scheme returns the bucket scheme the store was built with.
func (s *Store) Scheme() Scheme { return s.scheme }

// Record counts one sample. Values above the scheme's max value saturate
// into the highest bucket and bump the saturation counter; Record itself
// never fails and never allocates.
func (s *Store) Record(v uint64) {
	if v > s.scheme.maxValue {
		v = s.scheme.maxValue
		s.saturated.Add(1)
	}

	s.counts[s.scheme.BucketOf(v)].Add(1)
	total := s.total.Add(1)
	sum := s.sum.Add(v)
	if (total|sum)>>63 != 0 {
		s.overflowed.Store(true)
	}

	for {
		cur := s.max.Load()
		if v <= cur || s.max.CompareAndSwap(cur, v) {
			return
		}
	}
}

// Total returns the number of recorded samples.
func (s *Store) Total() uint64 { return s.total.Load() }

// Sum returns the running sum of recorded samples (saturated values
// contribute their clamped magnitude).
func (s *Store) Sum() uint64 { return s.sum.Load() }

// Max returns the largest recorded sample, exactly as recorded rather than
// bucket-approximated. Zero when nothing has been recorded.
func (s *Store) Max() uint64 { return s.max.Load() }

// Saturated returns how many samples exceeded the scheme's max value and
// were clamped into the top bucket.
func (s *Store) Saturated() uint64 { return s.saturated.Load() }

// Overflowed reports whether the total or sum crossed the saturate-and-flag
// threshold.
func (s *Store) Overflowed() bool { return s.overflowed.Load() }

// Counts enumerates the non-zero buckets in index order.
func (s *Store) Counts() []BucketCount {
	var out []BucketCount
	for i := range s.counts {
		if c := s.counts[i].Load(); c != 0 {
			out = append(out, BucketCount{Bucket: i, Count: c})
		}
	}
	return out
}

// Reset zeroes every counter and running aggregate in place. The store's
// identity and scheme are unchanged. Samples racing the reset boundary may
// land in either window.
func (s *Store) Reset() {
	for i := range s.counts {
		s.counts[i].Store(0)
	}
	s.total.Store(0)
	s.sum.Store(0)
	s.max.Store(0)
	s.saturated.Store(0)
	s.overflowed.Store(false)
}

// Snapshot copies the store into an immutable snapshot. The copy shares no
// state with the store; concurrent Records continue unhindered and are
// either fully inside or fully outside the snapshot window only on a
// per-counter basis (see the Store doc comment).
func (s *Store) Snapshot() *Snapshot {
	snap := &Snapshot{
		scheme:     s.scheme,
		counts:     make([]uint64, len(s.counts)),
		max:        s.max.Load(),
		saturated:  s.saturated.Load(),
		overflowed: s.overflowed.Load(),
	}
	var total uint64
	for i := range s.counts {
		snap.counts[i] = s.counts[i].Load()
		total += snap.counts[i]
	}
	// Derive the total from the copied counts so rank math is always
	// internally consistent, even while writers are racing ahead of the
	// copy. The sum may include a few in-flight samples the counts missed;
	// that skews the mean by at most those samples, never a crash.
	snap.total = total
	snap.sum = s.sum.Load()
	return snap
}
