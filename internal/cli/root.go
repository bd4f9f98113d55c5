package cli

import (
	"github.com/spf13/cobra"
)

var version = "0.1.0"

// NewRootCmd builds the base command with all subcommands attached. Each
// call returns a fresh tree with independent flag state.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "histo",
		Short:   "Zero-config latency histogram analysis",
		Version: version,
		Long: `Histo records streams of latency samples into log-bucketed histograms
and answers percentile queries with bounded relative error. It needs no
pre-declared value range or bucket boundaries, records in constant time,
and merges measurement windows from independent workers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// If no subcommand is provided, print help
			return cmd.Help()
		},
	}

	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newMergeCmd())
	root.AddCommand(newReportCmd())
	root.AddCommand(newGenerateCmd())

	return root
}

// Execute runs the CLI. This is called by main.main().
func Execute() error {
	return NewRootCmd().Execute()
}
