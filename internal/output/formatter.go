package output

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wesleyorama2/histo/histogram"
)

// Formatter renders histogram snapshots as percentile reports.
type Formatter struct {
	scheme  *ColorScheme
	noColor bool
	unit    string
}

// NewFormatter creates a formatter. unit is one of raw, ns, us, ms and
// controls how sample values are printed.
func NewFormatter(noColor bool, unit string) *Formatter {
	scheme := DefaultColorScheme()
	if noColor {
		scheme = NoColorScheme()
	}
	return &Formatter{scheme: scheme, noColor: noColor, unit: unit}
}

// FormatReport renders a human-readable percentile report.
func (f *Formatter) FormatReport(snap *histogram.Snapshot, percentiles []float64) (string, error) {
	pvs, err := snap.Percentiles(percentiles...)
	if err != nil {
		return "", err
	}
	mean, err := snap.Mean()
	if err != nil {
		return "", err
	}

	var sb strings.Builder

	sb.WriteString(f.scheme.Title.Sprint("Latency distribution"))
	sb.WriteByte('\n')

	fmt.Fprintf(&sb, "  %s %s\n", f.scheme.Label.Sprint("samples:"), f.scheme.Value.Sprintf("%d", snap.Total()))
	fmt.Fprintf(&sb, "  %s %s\n", f.scheme.Label.Sprint("mean:   "), f.scheme.Value.Sprint(f.formatFloat(mean)))
	fmt.Fprintf(&sb, "  %s %s\n", f.scheme.Label.Sprint("max:    "), f.scheme.Value.Sprint(f.formatValue(snap.Max())))

	sb.WriteByte('\n')
	for _, pv := range pvs {
		fmt.Fprintf(&sb, "  %s %s\n",
			f.scheme.Percentile.Sprintf("p%-7g", pv.P),
			f.scheme.Value.Sprint(f.formatValue(pv.Value)))
	}

	if sat := snap.Saturated(); sat > 0 {
		fmt.Fprintf(&sb, "\n%s %d sample(s) exceeded the configured max value and were clamped\n",
			WarningIcon(f.noColor), sat)
	}
	if snap.Overflowed() {
		fmt.Fprintf(&sb, "\n%s counters overflowed; statistics are unreliable\n", WarningIcon(f.noColor))
	}

	return sb.String(), nil
}

// jsonReport is the machine-readable report shape.
type jsonReport struct {
	Total       uint64           `json:"total"`
	Mean        float64          `json:"mean"`
	Max         uint64           `json:"max"`
	Saturated   uint64           `json:"saturated,omitempty"`
	Overflowed  bool             `json:"overflowed,omitempty"`
	Percentiles []jsonPercentile `json:"percentiles"`
}

type jsonPercentile struct {
	P     float64 `json:"p"`
	Value uint64  `json:"value"`
}

// FormatReportJSON renders the report as a JSON document.
func (f *Formatter) FormatReportJSON(snap *histogram.Snapshot, percentiles []float64) (string, error) {
	pvs, err := snap.Percentiles(percentiles...)
	if err != nil {
		return "", err
	}
	mean, err := snap.Mean()
	if err != nil {
		return "", err
	}

	report := jsonReport{
		Total:      snap.Total(),
		Mean:       mean,
		Max:        snap.Max(),
		Saturated:  snap.Saturated(),
		Overflowed: snap.Overflowed(),
	}
	for _, pv := range pvs {
		report.Percentiles = append(report.Percentiles, jsonPercentile{P: pv.P, Value: pv.Value})
	}

	data, err := json.MarshalIndent(&report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}
	return string(data), nil
}

func (f *Formatter) formatValue(v uint64) string {
	switch f.unit {
	case "ns":
		return time.Duration(v).String()
	case "us":
		return (time.Duration(v) * time.Microsecond).String()
	case "ms":
		return (time.Duration(v) * time.Millisecond).String()
	default:
		return strconv.FormatUint(v, 10)
	}
}

func (f *Formatter) formatFloat(v float64) string {
	if f.unit == "raw" {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
	return f.formatValue(uint64(v))
}
