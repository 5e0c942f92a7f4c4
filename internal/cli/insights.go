package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/xplain/internal/insights"
)

// InsightsResult is the output of the insights command.
type InsightsResult struct {
	Backends []string `json:"backends"`
	Insights []string `json:"insights"`
}

// NewInsightsCommand creates the insights command.
func NewInsightsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "insights <results-file>",
		Short: "Explain benchmark results across FP32 and INT8 backends",
		Long: `Read benchmark results (JSON or YAML, keyed by backend label such as
"FP32-ONNXRuntime" or "INT8-TVM-Ryzen") and summarize what quantization
and compilation changed. Benchmarks are run elsewhere.`,
		Example:       `  xplain insights results.json`,
		Args:          exactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

			data, err := readInput(args[0], "results")
			if err != nil {
				return err
			}
			results, err := insights.ParseResults(data)
			if err != nil {
				return WrapExitError(ExitFailure, "invalid benchmark results", err)
			}

			result := InsightsResult{
				Backends: results.Backends(),
				Insights: insights.Explain(results),
			}
			opts.Logger().Info("insights derived",
				zap.Strings("backends", result.Backends), zap.Int("insights", len(result.Insights)))

			return formatter.Success(result, func(w io.Writer) error {
				for _, line := range result.Insights {
					if _, err := fmt.Fprintln(w, line); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}
