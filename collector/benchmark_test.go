package collector

import (
	"runtime"
	"testing"
)

func BenchmarkWriterRecord(b *testing.B) {
	c, err := New()
	if err != nil {
		b.Fatal(err)
	}
	w := c.Writer()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Record(uint64(i) % 1_000_000)
	}
}

func BenchmarkWriterRecordParallel(b *testing.B) {
	c, err := New(WithShards(runtime.GOMAXPROCS(0)))
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		w := c.Writer()
		v := uint64(0)
		for pb.Next() {
			w.Record(v % 1_000_000)
			v += 31
		}
	})
}

// BenchmarkRecordParallel measures the convenience path, which pays for a
// shared distribution cursor on every call.
func BenchmarkRecordParallel(b *testing.B) {
	c, err := New()
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		v := uint64(0)
		for pb.Next() {
			c.Record(v % 1_000_000)
			v += 31
		}
	})
}

func BenchmarkSnapshotManyShards(b *testing.B) {
	c, err := New(WithShards(16))
	if err != nil {
		b.Fatal(err)
	}
	for i := uint64(0); i < 100_000; i++ {
		c.Record(i % 10_000)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Snapshot()
	}
}
