package histogram

import (
	"fmt"
	"math"
	"math/bits"
)

const (
	// DefaultMaxValue is the largest sample the default scheme can
	// distinguish without saturating: about 17 seconds when samples are
	// nanoseconds.
	DefaultMaxValue uint64 = 1 << 34

	// DefaultEpsilon is the default worst-case relative bucket width.
	// The constructor rounds it to the next power-of-two sub-bucket count,
	// so the effective error bound is 1/256 (~0.39%).
	DefaultEpsilon = 0.005
)

// Scheme is the pure mapping between sample values and bucket indices.
//
// The value domain is split into power-of-two magnitude ranges. Range k >= 1
// covers [s*2^(k-1), s*2^k) and is subdivided into s/2 equal sub-buckets,
// where s is the sub-bucket count derived from epsilon. The first range
// [0, s) is linear with width-1 buckets, since relative bounding is
// meaningless near zero.
//
// Scheme is an immutable value type; two schemes built from the same
// parameters are interchangeable and their histograms are mergeable.
type Scheme struct {
	maxValue uint64
	epsilon  float64 // effective bound: 2/subBucketCount

	subBucketCount     int
	subBucketHalfCount int
	subBucketMagnitude uint // log2(subBucketCount)
	subBucketMask      uint64

	numBuckets int
}

// NewScheme builds a bucket scheme covering [0, maxValue] with a worst-case
// relative bucket width of at most epsilon. Epsilon must be in (0, 0.5] and
// maxValue must be at least 1.
func NewScheme(maxValue uint64, epsilon float64) (Scheme, error) {
	if maxValue < 1 {
		return Scheme{}, fmt.Errorf("max value must be at least 1, got %d", maxValue)
	}
	if epsilon <= 0 || epsilon > 0.5 {
		return Scheme{}, fmt.Errorf("epsilon must be in (0, 0.5], got %g", epsilon)
	}

	// The relative width of every bucket above the linear region is
	// exactly 2/s, so the smallest power-of-two s with 2/s <= epsilon
	// meets the requested bound.
	s := nextPowerOfTwo(uint64(math.Ceil(2 / epsilon)))
	if s < 4 {
		s = 4
	}
	if s > 1<<20 {
		return Scheme{}, fmt.Errorf("epsilon %g requires %d sub-buckets per magnitude, refusing to allocate", epsilon, s)
	}

	sc := Scheme{
		maxValue:           maxValue,
		epsilon:            2 / float64(s),
		subBucketCount:     int(s),
		subBucketHalfCount: int(s / 2),
		subBucketMagnitude: uint(bits.TrailingZeros64(s)),
		subBucketMask:      s - 1,
	}
	sc.numBuckets = sc.BucketOf(maxValue) + 1
	return sc, nil
}

// MustScheme is NewScheme for statically known parameters; it panics on
// invalid input.
func MustScheme(maxValue uint64, epsilon float64) Scheme {
	sc, err := NewScheme(maxValue, epsilon)
	if err != nil {
		panic(err)
	}
	return sc
}

// DefaultScheme returns the scheme built from DefaultMaxValue and
// DefaultEpsilon.
func DefaultScheme() Scheme {
	return MustScheme(DefaultMaxValue, DefaultEpsilon)
}

// BucketOf maps a sample to its bucket index. It is total: values above
// MaxValue saturate into the highest bucket.
func (s Scheme) BucketOf(v uint64) int {
	if v > s.maxValue {
		v = s.maxValue
	}
	// ORing the mask in pins bits.Len64 to at least log2(subBucketCount),
	// so the linear region resolves to magnitude 0 without a branch.
	magnitude := bits.Len64(v|s.subBucketMask) - int(s.subBucketMagnitude)
	sub := int(v >> uint(magnitude))
	return ((magnitude + 1) << (s.subBucketMagnitude - 1)) + sub - s.subBucketHalfCount
}

// RangeOf returns the half-open value range [lo, hi) denoted by a bucket.
// lo is the representative value reported by percentile queries, a
// deliberate under-estimate so reported percentiles are conservative.
//
// The one exception to half-openness is the top bucket of a scheme whose
// range reaches the uint64 limit: its hi clamps to math.MaxUint64 and the
// bucket includes that value.
func (s Scheme) RangeOf(b int) (lo, hi uint64) {
	if b < 0 {
		b = 0
	}
	if b < s.subBucketCount {
		return uint64(b), uint64(b) + 1
	}
	magnitude := b/s.subBucketHalfCount - 1
	sub := b - magnitude*s.subBucketHalfCount
	lo = uint64(sub) << uint(magnitude)
	hi = lo + 1<<uint(magnitude)
	if hi < lo {
		// top bucket of a scheme near the uint64 limit
		hi = math.MaxUint64
	}
	return lo, hi
}

// NumBuckets is the number of counters needed to cover [0, MaxValue]. It is
// fixed at construction: logarithmic in MaxValue, independent of the data.
func (s Scheme) NumBuckets() int { return s.numBuckets }

// MaxValue is the largest sample distinguishable without saturation.
func (s Scheme) MaxValue() uint64 { return s.maxValue }

// Epsilon is the effective worst-case relative bucket width, which is at
// most the epsilon the scheme was constructed with.
func (s Scheme) Epsilon() float64 { return s.epsilon }

// Equal reports whether two schemes produce identical bucketings, i.e.
// whether their histograms may be merged.
func (s Scheme) Equal(o Scheme) bool {
	return s.maxValue == o.maxValue && s.subBucketCount == o.subBucketCount
}

func (s Scheme) String() string {
	return fmt.Sprintf("scheme(max=%d epsilon=%g buckets=%d)", s.maxValue, s.epsilon, s.numBuckets)
}

func nextPowerOfTwo(v uint64) uint64 {
	if v <= 1 {
		return 1
	}
	return 1 << uint(bits.Len64(v-1))
}
