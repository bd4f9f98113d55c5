package histogram

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

func TestSnapshotCodecRoundTrip(t *testing.T) {
	scheme := MustScheme(1<<21, 0.005)
	st := NewStore(scheme)
	for _, v := range []uint64{1, 50, 1024, 99999, 1 << 20, 1<<21 + 5} {
		st.Record(v)
	}
	snap := st.Snapshot()

	var buf bytes.Buffer
	if err := EncodeSnapshot(&buf, snap); err != nil {
		t.Fatalf("EncodeSnapshot failed: %v", err)
	}

	decoded, err := DecodeSnapshot(&buf)
	if err != nil {
		t.Fatalf("DecodeSnapshot failed: %v", err)
	}

	if decoded.Total() != snap.Total() || decoded.Sum() != snap.Sum() || decoded.Max() != snap.Max() {
		t.Errorf("decoded totals (%d, %d, %d) differ from original (%d, %d, %d)",
			decoded.Total(), decoded.Sum(), decoded.Max(), snap.Total(), snap.Sum(), snap.Max())
	}
	if decoded.Saturated() != snap.Saturated() {
		t.Errorf("decoded saturated = %d, want %d", decoded.Saturated(), snap.Saturated())
	}
	if !decoded.Scheme().Equal(snap.Scheme()) {
		t.Errorf("decoded scheme %s differs from original %s", decoded.Scheme(), snap.Scheme())
	}

	for _, p := range []float64{0, 0.5, 0.99, 1} {
		want, _ := snap.Quantile(p)
		got, err := decoded.Quantile(p)
		if err != nil || got != want {
			t.Errorf("decoded Quantile(%g) = %d (err=%v), want %d", p, got, err, want)
		}
	}
}

func TestDecodedSnapshotsMergeable(t *testing.T) {
	scheme := MustScheme(1<<21, 0.005)
	a := snapshotOf(t, scheme, 10, 20, 30)
	b := snapshotOf(t, scheme, 40, 50)

	var bufA, bufB bytes.Buffer
	if err := EncodeSnapshot(&bufA, a); err != nil {
		t.Fatal(err)
	}
	if err := EncodeSnapshot(&bufB, b); err != nil {
		t.Fatal(err)
	}

	decodedA, err := DecodeSnapshot(&bufA)
	if err != nil {
		t.Fatal(err)
	}
	decodedB, err := DecodeSnapshot(&bufB)
	if err != nil {
		t.Fatal(err)
	}

	m, err := Merge(decodedA, decodedB)
	if err != nil {
		t.Fatalf("merging decoded snapshots failed: %v", err)
	}
	if m.Total() != 5 {
		t.Errorf("merged total = %d, want 5", m.Total())
	}
}

func TestDecodeSnapshotRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", "{nope"},
		{"missing fields", `{"total": 3}`},
		{"negative total", `{"maxValue": 1000, "epsilon": 0.01, "total": -1, "sum": 0, "max": 0, "buckets": []}`},
		{"bad epsilon", `{"maxValue": 1000, "epsilon": 2.0, "total": 0, "sum": 0, "max": 0, "buckets": []}`},
		{"ragged bucket pair", `{"maxValue": 1000, "epsilon": 0.01, "total": 1, "sum": 1, "max": 1, "buckets": [[1]]}`},
		{"bucket out of range", `{"maxValue": 1000, "epsilon": 0.01, "total": 1, "sum": 1, "max": 1, "buckets": [[999999, 1]]}`},
		{"total mismatch", `{"maxValue": 1000, "epsilon": 0.01, "total": 5, "sum": 1, "max": 1, "buckets": [[1, 1]]}`},
		{"max above scheme", `{"maxValue": 1000, "epsilon": 0.01, "total": 1, "sum": 1, "max": 2000, "buckets": [[1, 1]]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeSnapshot(strings.NewReader(tt.doc)); err == nil {
				t.Errorf("DecodeSnapshot accepted malformed document %q", tt.doc)
			}
		})
	}
}

func TestSnapshotCodecOverflowFlag(t *testing.T) {
	st := NewStore(MustScheme(math.MaxUint64, 0.005))
	st.Record(1 << 63)
	snap := st.Snapshot()
	if !snap.Overflowed() {
		t.Fatal("snapshot not flagged as overflowed")
	}

	var buf bytes.Buffer
	if err := EncodeSnapshot(&buf, snap); err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeSnapshot(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !decoded.Overflowed() {
		t.Error("overflow flag lost in codec round trip")
	}
}

func TestEncodeSnapshotSparse(t *testing.T) {
	snap := snapshotOf(t, MustScheme(1<<30, 0.005), 7)

	var buf bytes.Buffer
	if err := EncodeSnapshot(&buf, snap); err != nil {
		t.Fatal(err)
	}
	// One recorded value means one bucket pair, regardless of how many
	// buckets the scheme allocates.
	if got := strings.Count(buf.String(), "["); got != 2 {
		t.Errorf("encoded %d array opens, want 2 (outer list plus one pair): %s", got, buf.String())
	}
}
