package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/histo/histogram"
)

func newMergeCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "merge <snapshot.json> <snapshot.json> [more...]",
		Short: "Merge serialized histogram snapshots",
		Long: `Merge combines two or more snapshot files produced with the same scheme
parameters (max value and epsilon) into one, summing counts bucket by
bucket. Snapshots from different schemes are rejected: mixing them would
silently corrupt percentile math.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			merged, err := readSnapshotFile(args[0])
			if err != nil {
				return err
			}

			for _, path := range args[1:] {
				next, err := readSnapshotFile(path)
				if err != nil {
					return err
				}
				merged, err = histogram.Merge(merged, next)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
			}

			if output != "" {
				return writeSnapshotFile(output, merged)
			}
			return histogram.EncodeSnapshot(cmd.OutOrStdout(), merged)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the merged snapshot to this file instead of stdout")

	return cmd
}
