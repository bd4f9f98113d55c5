package cli

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/histo/collector"
	"github.com/wesleyorama2/histo/histogram"
	"github.com/wesleyorama2/histo/internal/config"
	"github.com/wesleyorama2/histo/internal/output"
	"github.com/wesleyorama2/histo/internal/samples"
)

// analyzeOptions carries the analyze flag values.
type analyzeOptions struct {
	configPath  string
	maxValue    uint64
	epsilon     float64
	shards      int
	percentiles []float64
	jsonPath    string
	jsonOut     bool
	noColor     bool
	unit        string
	snapshotOut string
}

func newAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Record samples from a file and print a percentile report",
		Long: `Analyze reads latency samples (one integer per line, or NDJSON with
--json-path) into a histogram and prints a percentile report.

Use "-" or no argument to read from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Config file (YAML or JSON)")
	cmd.Flags().Uint64Var(&opts.maxValue, "max-value", histogram.DefaultMaxValue, "Largest distinguishable sample value")
	cmd.Flags().Float64Var(&opts.epsilon, "epsilon", histogram.DefaultEpsilon, "Worst-case relative bucket width")
	cmd.Flags().IntVar(&opts.shards, "shards", 0, "Writer shards (0 = one per CPU)")
	cmd.Flags().Float64SliceVarP(&opts.percentiles, "percentiles", "p", nil, "Percentiles to report (0-100)")
	cmd.Flags().StringVar(&opts.jsonPath, "json-path", "", "Treat input as NDJSON and extract samples at this path")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Emit the report as JSON")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().StringVar(&opts.unit, "unit", "", "Value unit for display: raw, ns, us, ms")
	cmd.Flags().StringVar(&opts.snapshotOut, "snapshot-out", "", "Also write the snapshot JSON to this file")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, opts *analyzeOptions) error {
	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return err
	}

	in := cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open sample file: %w", err)
		}
		defer f.Close()
		in = f
	}

	c, err := collector.New(
		collector.WithMaxValue(cfg.Histogram.MaxValue),
		collector.WithEpsilon(cfg.Histogram.Epsilon),
		collector.WithShards(cfg.Histogram.Shards),
	)
	if err != nil {
		return err
	}

	w := c.Writer()
	n, err := samples.Stream(in, opts.jsonPath, w.Record)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no samples in input")
	}

	snap := c.Snapshot()

	if opts.snapshotOut != "" {
		if err := writeSnapshotFile(opts.snapshotOut, snap); err != nil {
			return err
		}
	}

	return printReport(cmd, snap, cfg)
}

// resolveConfig layers flag overrides on top of the config file (or the
// defaults when no file is given).
func resolveConfig(cmd *cobra.Command, opts *analyzeOptions) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if opts.configPath != "" {
		loaded, err := config.LoadConfig(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("max-value") {
		cfg.Histogram.MaxValue = opts.maxValue
	}
	if flags.Changed("epsilon") {
		cfg.Histogram.Epsilon = opts.epsilon
	}
	if flags.Changed("shards") {
		cfg.Histogram.Shards = opts.shards
	}
	if flags.Changed("percentiles") {
		cfg.Report.Percentiles = opts.percentiles
	}
	if flags.Changed("unit") {
		cfg.Report.Unit = opts.unit
	}
	if flags.Changed("json") {
		cfg.Report.JSON = opts.jsonOut
	}
	if flags.Changed("no-color") {
		cfg.Report.NoColor = opts.noColor
	}

	if errs := config.ValidateConfig(cfg); len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", errs[0].Error())
	}
	return cfg, nil
}

// printReport renders a snapshot per the report configuration.
func printReport(cmd *cobra.Command, snap *histogram.Snapshot, cfg *config.Config) error {
	noColor := cfg.Report.NoColor || !stdoutIsTerminal()
	f := output.NewFormatter(noColor, cfg.Report.Unit)

	var report string
	var err error
	if cfg.Report.JSON {
		report, err = f.FormatReportJSON(snap, cfg.Report.Percentiles)
	} else {
		report, err = f.FormatReport(snap, cfg.Report.Percentiles)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), report)
	return nil
}

func stdoutIsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func writeSnapshotFile(path string, snap *histogram.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer f.Close()
	if err := histogram.EncodeSnapshot(f, snap); err != nil {
		return err
	}
	return nil
}

func readSnapshotFile(path string) (*histogram.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer f.Close()

	snap, err := histogram.DecodeSnapshot(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}
