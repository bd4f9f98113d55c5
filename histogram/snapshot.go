package histogram

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrEmptyHistogram is returned by quantile and mean queries against a
// snapshot with no recorded samples.
var ErrEmptyHistogram = errors.New("histogram is empty")

// ErrInvalidQuantile is returned when the requested quantile is outside
// [0, 1].
var ErrInvalidQuantile = errors.New("quantile must be in [0, 1]")

// SchemeMismatchError reports an attempt to merge snapshots built with
// different bucket schemes. Mixing schemes silently would corrupt
// percentile math, so it is always surfaced.
type SchemeMismatchError struct {
	A, B Scheme
}

func (e *SchemeMismatchError) Error() string {
	return fmt.Sprintf("cannot merge histograms with different schemes: %s vs %s", e.A, e.B)
}

// Snapshot is an immutable point-in-time copy of a histogram. It shares no
// mutable state with the store it came from and is freely shareable across
// goroutines.
type Snapshot struct {
	scheme     Scheme
	counts     []uint64
	total      uint64
	sum        uint64
	max        uint64
	saturated  uint64
	overflowed bool
}

// PercentileValue is one entry of a percentile report. P uses the human
// 0-100 convention.
type PercentileValue struct {
	P     float64
	Value uint64
}

// reportPercentiles is the canonical set printed by Summary.
var reportPercentiles = []float64{0, 50, 75, 90, 95, 97.5, 99, 99.9, 99.99, 100}

// Scheme returns the bucket scheme of the snapshot.
func (s *Snapshot) Scheme() Scheme { return s.scheme }

// Total returns the number of samples in the snapshot.
func (s *Snapshot) Total() uint64 { return s.total }

// Sum returns the sum of all samples in the snapshot.
func (s *Snapshot) Sum() uint64 { return s.sum }

// Max returns the largest recorded sample, exact rather than
// bucket-approximated. Zero when the snapshot is empty.
func (s *Snapshot) Max() uint64 { return s.max }

// Saturated returns how many samples were clamped into the top bucket.
func (s *Snapshot) Saturated() uint64 { return s.saturated }

// Overflowed reports whether any counter crossed the saturate-and-flag
// threshold before the snapshot was taken.
func (s *Snapshot) Overflowed() bool { return s.overflowed }

// Counts enumerates the non-zero buckets in index order.
func (s *Snapshot) Counts() []BucketCount {
	var out []BucketCount
	for i, c := range s.counts {
		if c != 0 {
			out = append(out, BucketCount{Bucket: i, Count: c})
		}
	}
	return out
}

// Quantile returns an approximation of the value at quantile p in [0, 1].
// The result is the lower bound of the bucket holding the target rank, so
// it under-estimates by at most the scheme's epsilon: conservative for
// SLA-style reporting. Repeated calls on the same snapshot always return
// the same value.
func (s *Snapshot) Quantile(p float64) (uint64, error) {
	if p < 0 || p > 1 || math.IsNaN(p) {
		return 0, ErrInvalidQuantile
	}
	if s.total == 0 {
		return 0, ErrEmptyHistogram
	}

	rank := uint64(math.Ceil(p * float64(s.total)))
	if rank == 0 {
		rank = 1
	}

	var cum uint64
	for i, c := range s.counts {
		cum += c
		if cum >= rank {
			lo, _ := s.scheme.RangeOf(i)
			return lo, nil
		}
	}
	// Counts always sum to total, so the scan cannot fall through.
	lo, _ := s.scheme.RangeOf(len(s.counts) - 1)
	return lo, nil
}

// Mean returns sum/total.
func (s *Snapshot) Mean() (float64, error) {
	if s.total == 0 {
		return 0, ErrEmptyHistogram
	}
	return float64(s.sum) / float64(s.total), nil
}

// Min returns the lower bound of the first non-empty bucket, i.e. the
// 0th-percentile approximation.
func (s *Snapshot) Min() (uint64, error) {
	return s.Quantile(0)
}

// Percentiles evaluates the snapshot at the given percentiles (0-100).
// With no arguments it reports the canonical set
// 0, 50, 75, 90, 95, 97.5, 99, 99.9, 99.99, 100.
func (s *Snapshot) Percentiles(ps ...float64) ([]PercentileValue, error) {
	if len(ps) == 0 {
		ps = reportPercentiles
	}
	out := make([]PercentileValue, 0, len(ps))
	for _, p := range ps {
		v, err := s.Quantile(p / 100)
		if err != nil {
			return nil, err
		}
		out = append(out, PercentileValue{P: p, Value: v})
	}
	return out, nil
}

// Summary renders the canonical percentiles on one line, in the form
// histogram[(50 -> 1024) (99 -> 4096) ...].
func (s *Snapshot) Summary() string {
	pvs, err := s.Percentiles()
	if err != nil {
		return "histogram[empty]"
	}
	var sb strings.Builder
	sb.WriteString("histogram[")
	for i, pv := range pvs {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "(%g -> %d)", pv.P, pv.Value)
	}
	sb.WriteByte(']')
	return sb.String()
}

// Merge combines two snapshots with identical bucket schemes into a new
// snapshot: counts add index-by-index, totals and sums add, max is the max
// of maxes. Merge is commutative and associative, so shards and workers can
// be reduced in any order or shape.
func Merge(a, b *Snapshot) (*Snapshot, error) {
	if !a.scheme.Equal(b.scheme) {
		return nil, &SchemeMismatchError{A: a.scheme, B: b.scheme}
	}

	out := &Snapshot{
		scheme:     a.scheme,
		counts:     make([]uint64, len(a.counts)),
		total:      a.total + b.total,
		sum:        a.sum + b.sum,
		max:        a.max,
		saturated:  a.saturated + b.saturated,
		overflowed: a.overflowed || b.overflowed,
	}
	if b.max > out.max {
		out.max = b.max
	}
	for i := range a.counts {
		out.counts[i] = a.counts[i] + b.counts[i]
	}
	if (out.total|out.sum)>>63 != 0 {
		out.overflowed = true
	}
	return out, nil
}
