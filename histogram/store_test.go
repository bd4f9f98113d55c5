package histogram

import (
	"math"
	"sync"
	"testing"
)

func TestStoreRecord(t *testing.T) {
	st := NewStore(MustScheme(1<<21, 0.005))

	st.Record(100)
	st.Record(200)
	st.Record(100)

	if st.Total() != 3 {
		t.Errorf("Total() = %d, want 3", st.Total())
	}
	if st.Sum() != 400 {
		t.Errorf("Sum() = %d, want 400", st.Sum())
	}
	if st.Max() != 200 {
		t.Errorf("Max() = %d, want 200", st.Max())
	}
	if st.Saturated() != 0 {
		t.Errorf("Saturated() = %d, want 0", st.Saturated())
	}

	counts := st.Counts()
	if len(counts) != 2 {
		t.Fatalf("Counts() returned %d buckets, want 2", len(counts))
	}
	if counts[0].Bucket != 100 || counts[0].Count != 2 {
		t.Errorf("counts[0] = %+v, want bucket 100 count 2", counts[0])
	}
	if counts[1].Bucket != 200 || counts[1].Count != 1 {
		t.Errorf("counts[1] = %+v, want bucket 200 count 1", counts[1])
	}
}

func TestStoreSaturation(t *testing.T) {
	scheme := MustScheme(1 << 21, 0.005)
	st := NewStore(scheme)

	st.Record(1<<21 + 1)

	if st.Saturated() != 1 {
		t.Errorf("Saturated() = %d, want 1", st.Saturated())
	}
	if st.Max() != 1<<21 {
		t.Errorf("Max() = %d, want clamped %d", st.Max(), uint64(1<<21))
	}

	// The sample lands in the same bucket as max value itself.
	top := scheme.BucketOf(1 << 21)
	counts := st.Counts()
	if len(counts) != 1 || counts[0].Bucket != top || counts[0].Count != 1 {
		t.Errorf("Counts() = %+v, want one sample in top bucket %d", counts, top)
	}
}

func TestStoreOverflowFlag(t *testing.T) {
	scheme := MustScheme(math.MaxUint64, 0.005)
	st := NewStore(scheme)

	st.Record(100)
	if st.Overflowed() {
		t.Fatal("Overflowed() = true before any counter crossed the threshold")
	}

	// One sample is enough to push the running sum past the high bit.
	st.Record(1 << 63)
	if !st.Overflowed() {
		t.Fatal("Overflowed() = false after sum crossed the high-bit threshold")
	}

	snap := st.Snapshot()
	if !snap.Overflowed() {
		t.Error("snapshot dropped the overflow flag")
	}

	clean := NewStore(scheme)
	clean.Record(7)
	merged, err := Merge(snap, clean.Snapshot())
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if !merged.Overflowed() {
		t.Error("merge with a clean snapshot dropped the overflow flag")
	}

	st.Reset()
	if st.Overflowed() {
		t.Error("Overflowed() = true after Reset")
	}
}

func TestStoreReset(t *testing.T) {
	st := NewStore(MustScheme(1<<21, 0.005))

	for i := uint64(1); i <= 100; i++ {
		st.Record(i)
	}
	st.Reset()

	if st.Total() != 0 || st.Sum() != 0 || st.Max() != 0 || st.Saturated() != 0 {
		t.Errorf("after Reset: total=%d sum=%d max=%d saturated=%d, want all 0",
			st.Total(), st.Sum(), st.Max(), st.Saturated())
	}
	if len(st.Counts()) != 0 {
		t.Errorf("after Reset: %d non-zero buckets remain", len(st.Counts()))
	}

	// The store keeps its scheme and stays usable.
	st.Record(42)
	if st.Total() != 1 {
		t.Errorf("Total() after reset+record = %d, want 1", st.Total())
	}

	snap := st.Snapshot()
	if _, err := snap.Quantile(0.5); err != nil {
		t.Errorf("Quantile after reset+record failed: %v", err)
	}
}

func TestStoreSnapshotIsolation(t *testing.T) {
	st := NewStore(MustScheme(1<<21, 0.005))
	st.Record(10)

	snap := st.Snapshot()
	st.Record(20)
	st.Record(30)

	if snap.Total() != 1 {
		t.Errorf("snapshot observed later records: total = %d, want 1", snap.Total())
	}
	if st.Total() != 3 {
		t.Errorf("store total = %d, want 3", st.Total())
	}
}

func TestStoreConcurrentRecord(t *testing.T) {
	const goroutines = 8
	const perGoroutine = 10000

	st := NewStore(MustScheme(1<<21, 0.005))

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				st.Record(uint64(g*1000 + i%1000))
			}
		}(g)
	}
	wg.Wait()

	if got := st.Total(); got != goroutines*perGoroutine {
		t.Errorf("Total() = %d, want %d (lost updates)", got, goroutines*perGoroutine)
	}

	var bucketSum uint64
	for _, bc := range st.Counts() {
		bucketSum += bc.Count
	}
	if bucketSum != goroutines*perGoroutine {
		t.Errorf("bucket counts sum to %d, want %d", bucketSum, goroutines*perGoroutine)
	}
}
