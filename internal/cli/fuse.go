package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/xplain/internal/graph"
	"github.com/roach88/xplain/internal/metrics"
	"github.com/roach88/xplain/internal/store"
)

// FuseResult is the output of the fuse command.
type FuseResult struct {
	Model      string           `json:"model"`
	Nodes      int              `json:"nodes"`
	Edges      int              `json:"edges"`
	Digest     string           `json:"digest,omitempty"`
	Comparison graph.Comparison `json:"comparison"`
	Empty      bool             `json:"empty"`
	Diagnostic string           `json:"diagnostic,omitempty"`
	RunID      string           `json:"run_id,omitempty"`
}

// NewFuseCommand creates the fuse command.
func NewFuseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GraphOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fuse <model-file>",
		Short: "Simulate operator fusion and report the heavy-op reduction",
		Long: `Relabel every Conv and MatMul/Gemm node as FusedOp and compare
category counts before and after.

The fusion reduction is the share of heavy ops (Conv and MatMul/Gemm)
that did not end up fused. It is undefined for models without heavy ops.
The fused categories come from the config (fused: [...]).

Examples:
  xplain fuse resnet.yaml
  xplain fuse resnet.yaml --format json --db xplain.db`,
		Args:          exactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFuse(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ModelName, "model", "", "model name (default: name in the file, else file base name)")
	cmd.Flags().StringVar(&opts.ExportPath, "export", "", "write the fused graph export JSON to this path")

	return cmd
}

func runFuse(opts *GraphOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cfg, err := opts.Config()
	if err != nil {
		return WrapExitError(ExitFailure, "failed to load config", err)
	}
	lg, err := opts.buildGraph(path, opts.ModelName)
	if err != nil {
		return err
	}

	fused := graph.Simulate(lg.g, cfg.Fused...)
	before, after := graph.Counts(lg.g), graph.Counts(fused)

	result := FuseResult{
		Model:      lg.name,
		Nodes:      fused.NodeCount(),
		Edges:      fused.EdgeCount(),
		Comparison: graph.Compare(before, after),
		Empty:      lg.g.IsEmpty(),
	}
	if lg.diag != nil {
		result.Diagnostic = lg.diag.String()
	}

	opts.observe(func(c *metrics.Collector) {
		c.ObserveGraph(lg.name, metrics.StageBefore, lg.g)
		c.ObserveGraph(lg.name, metrics.StageAfter, fused)
		if r := result.Comparison.Reduction; r != nil {
			c.ObserveReduction(lg.name, *r)
		}
	})

	log := opts.Logger().With(zap.String("model", lg.name))
	if r := result.Comparison.Reduction; r != nil {
		log.Info("fusion simulated", zap.Int("heavy_before", result.Comparison.HeavyBefore),
			zap.Int("fused_after", result.Comparison.FusedAfter), zap.Float64("reduction", *r))
	} else {
		log.Info("fusion simulated, no heavy ops")
	}

	if !lg.g.IsEmpty() {
		if result.Digest, err = graph.Digest(fused); err != nil {
			return WrapExitError(ExitFailure, "failed to digest graph", err)
		}
		if err := opts.writeExport(fused); err != nil {
			return err
		}
		run, err := opts.recordRun(cmd.Context(), store.Run{
			Model:       lg.name,
			Kind:        store.RunFuse,
			GraphDigest: result.Digest,
			NodeCount:   result.Nodes,
			EdgeCount:   result.Edges,
			Counts:      before,
			FusedCounts: after,
			Reduction:   result.Comparison.Reduction,
		})
		if err != nil {
			return err
		}
		result.RunID = run.ID
	}

	return formatter.Success(result, func(w io.Writer) error {
		fmt.Fprintf(w, "Model: %s\n", result.Model)
		if result.Empty {
			fmt.Fprintf(w, "Graph is empty: %s\n", emptyReason(result.Diagnostic))
			return nil
		}
		writeFusionSummary(w, result.Comparison)
		if result.RunID != "" {
			fmt.Fprintf(w, "Recorded run %s\n", result.RunID)
		}
		fmt.Fprintln(w)
		return writeComparison(w, result.Comparison)
	})
}

func writeFusionSummary(w io.Writer, cmp graph.Comparison) {
	fmt.Fprintf(w, "Before: %d Conv/MatMul ops → After: %d FusedOps\n", cmp.HeavyBefore, cmp.FusedAfter)
	if cmp.Reduction != nil {
		fmt.Fprintf(w, "That's a %.1f%% reduction in heavy ops.\n", *cmp.Reduction)
	} else {
		fmt.Fprintln(w, "No Conv or MatMul/Gemm ops to fuse; reduction is undefined.")
	}
}

// writeComparison renders the before/after table.
func writeComparison(w io.Writer, cmp graph.Comparison) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tBEFORE\tAFTER")
	for _, row := range cmp.Rows {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", row.Category, row.Before, row.After)
	}
	return tw.Flush()
}
