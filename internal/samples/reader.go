// Package samples reads latency samples from line-oriented input: one plain
// non-negative integer per line, or newline-delimited JSON with a field
// extracted by path.
package samples

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// maxLine bounds a single input line; NDJSON latency records are small, but
// leave room for embedded payload fields.
const maxLine = 1 << 20

// Stream reads samples from r and hands each one to fn, returning how many
// samples were read. Blank lines and lines starting with '#' are skipped.
//
// With an empty jsonPath every line is parsed as a number. Otherwise each
// line is treated as a JSON document and jsonPath selects the sample field
// (gjson path syntax, e.g. "latency" or "timings.total").
func Stream(r io.Reader, jsonPath string, fn func(uint64)) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)

	n := 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		v, err := parseSample(line, jsonPath)
		if err != nil {
			return n, fmt.Errorf("line %d: %w", lineNo, err)
		}
		fn(v)
		n++
	}
	if err := scanner.Err(); err != nil {
		return n, fmt.Errorf("failed to read samples: %w", err)
	}
	return n, nil
}

func parseSample(line, jsonPath string) (uint64, error) {
	if jsonPath == "" {
		return parseNumber(line)
	}

	if !gjson.Valid(line) {
		return 0, fmt.Errorf("invalid JSON: %s", truncate(line))
	}
	result := gjson.Get(line, jsonPath)
	if !result.Exists() {
		return 0, fmt.Errorf("path %q not found in: %s", jsonPath, truncate(line))
	}
	if result.Type != gjson.Number {
		return 0, fmt.Errorf("path %q is not a number (got %s)", jsonPath, result.Type)
	}
	return floatToSample(result.Float())
}

func parseNumber(s string) (uint64, error) {
	if v, err := strconv.ParseUint(s, 10, 64); err == nil {
		return v, nil
	}
	// Fall back to float for exporters that write "1234.0".
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return floatToSample(f)
}

func floatToSample(f float64) (uint64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, fmt.Errorf("sample must be a non-negative finite number, got %g", f)
	}
	return uint64(math.Round(f)), nil
}

func truncate(s string) string {
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}
