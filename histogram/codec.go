package histogram

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// snapshotDocument is the serialized form of a Snapshot: the scheme
// parameters needed to rebuild the bucket mapping on the reading side, the
// running aggregates, and the non-zero buckets as [index, count] pairs.
// Two documents written with identical scheme parameters decode into
// directly mergeable snapshots.
type snapshotDocument struct {
	MaxValue   uint64      `json:"maxValue"`
	Epsilon    float64     `json:"epsilon"`
	Total      uint64      `json:"total"`
	Sum        uint64      `json:"sum"`
	Max        uint64      `json:"max"`
	Saturated  uint64      `json:"saturated"`
	Overflowed bool        `json:"overflowed,omitempty"`
	Buckets    [][2]uint64 `json:"buckets"`
}

const snapshotSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["maxValue", "epsilon", "total", "sum", "max", "buckets"],
  "properties": {
    "maxValue":   {"type": "integer", "minimum": 1},
    "epsilon":    {"type": "number", "exclusiveMinimum": 0, "maximum": 0.5},
    "total":      {"type": "integer", "minimum": 0},
    "sum":        {"type": "integer", "minimum": 0},
    "max":        {"type": "integer", "minimum": 0},
    "saturated":  {"type": "integer", "minimum": 0},
    "overflowed": {"type": "boolean"},
    "buckets": {
      "type": "array",
      "items": {
        "type": "array",
        "items": {"type": "integer", "minimum": 0},
        "minItems": 2,
        "maxItems": 2
      }
    }
  }
}`

var compiledSnapshotSchema = jsonschema.MustCompileString("snapshot.schema.json", snapshotSchema)

// EncodeSnapshot writes the snapshot as a JSON document.
func EncodeSnapshot(w io.Writer, s *Snapshot) error {
	doc := snapshotDocument{
		MaxValue:   s.scheme.MaxValue(),
		Epsilon:    s.scheme.Epsilon(),
		Total:      s.total,
		Sum:        s.sum,
		Max:        s.max,
		Saturated:  s.saturated,
		Overflowed: s.overflowed,
		Buckets:    make([][2]uint64, 0, len(s.counts)),
	}
	for _, bc := range s.Counts() {
		doc.Buckets = append(doc.Buckets, [2]uint64{uint64(bc.Bucket), bc.Count})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}

// DecodeSnapshot reads a JSON snapshot document, validates it against the
// snapshot schema, and rebuilds an immutable Snapshot. Malformed documents
// fail with the offending schema path rather than decoding into a
// zero-valued histogram.
func DecodeSnapshot(r io.Reader) (*Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var generic interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("invalid snapshot JSON: %w", err)
	}
	if err := compiledSnapshotSchema.Validate(generic); err != nil {
		return nil, fmt.Errorf("snapshot document failed validation: %w", err)
	}

	var doc snapshotDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid snapshot JSON: %w", err)
	}

	scheme, err := NewScheme(doc.MaxValue, doc.Epsilon)
	if err != nil {
		return nil, fmt.Errorf("invalid snapshot scheme: %w", err)
	}

	// Recording clamps samples to the scheme's max value, so an honest
	// document can never claim a larger max.
	if doc.Max > doc.MaxValue {
		return nil, fmt.Errorf("max %d exceeds the scheme's max value %d", doc.Max, doc.MaxValue)
	}

	snap := &Snapshot{
		scheme:     scheme,
		counts:     make([]uint64, scheme.NumBuckets()),
		sum:        doc.Sum,
		max:        doc.Max,
		saturated:  doc.Saturated,
		overflowed: doc.Overflowed,
	}

	var total uint64
	for _, pair := range doc.Buckets {
		idx := pair[0]
		if idx >= uint64(scheme.NumBuckets()) {
			return nil, fmt.Errorf("bucket index %d out of range for %s", idx, scheme)
		}
		snap.counts[idx] += pair[1]
		total += pair[1]
	}
	if total != doc.Total {
		return nil, fmt.Errorf("bucket counts sum to %d but document claims total %d", total, doc.Total)
	}
	snap.total = total

	return snap, nil
}
