package cli

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	var (
		count  int
		seed   int64
		median uint64
		sigma  float64
		output string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write synthetic latency samples for demos and testing",
		Long: `Generate writes log-normally distributed samples, one per line, shaped
like real latency data: a tight body with a long upper tail.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var out io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				out = f
			}

			if count < 1 {
				return fmt.Errorf("count must be at least 1")
			}
			if median < 1 {
				return fmt.Errorf("median must be at least 1")
			}

			w := bufio.NewWriter(out)
			r := rand.New(rand.NewSource(seed))
			mu := math.Log(float64(median))

			for i := 0; i < count; i++ {
				v := math.Exp(r.NormFloat64()*sigma + mu)
				if _, err := w.WriteString(strconv.FormatUint(uint64(math.Round(v)), 10) + "\n"); err != nil {
					return fmt.Errorf("failed to write sample: %w", err)
				}
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 10000, "Number of samples to generate")
	cmd.Flags().Int64Var(&seed, "seed", 1, "PRNG seed")
	cmd.Flags().Uint64Var(&median, "median", 1_000_000, "Median sample value")
	cmd.Flags().Float64Var(&sigma, "sigma", 0.5, "Log-normal shape parameter")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write samples to this file instead of stdout")

	return cmd
}
