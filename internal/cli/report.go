package cli

import (
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/histo/internal/config"
)

func newReportCmd() *cobra.Command {
	var (
		percentiles []float64
		jsonOut     bool
		noColor     bool
		unit        string
	)

	cmd := &cobra.Command{
		Use:   "report <snapshot.json>",
		Short: "Render a stored snapshot as a percentile report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := readSnapshotFile(args[0])
			if err != nil {
				return err
			}

			cfg := config.DefaultConfig()
			flags := cmd.Flags()
			if flags.Changed("percentiles") {
				cfg.Report.Percentiles = percentiles
			}
			if flags.Changed("unit") {
				cfg.Report.Unit = unit
			}
			cfg.Report.JSON = jsonOut
			cfg.Report.NoColor = noColor

			return printReport(cmd, snap, cfg)
		},
	}

	cmd.Flags().Float64SliceVarP(&percentiles, "percentiles", "p", nil, "Percentiles to report (0-100)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the report as JSON")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	cmd.Flags().StringVar(&unit, "unit", "", "Value unit for display: raw, ns, us, ms")

	return cmd
}
