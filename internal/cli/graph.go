package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/xplain/internal/graph"
	"github.com/roach88/xplain/internal/metrics"
	"github.com/roach88/xplain/internal/model"
	"github.com/roach88/xplain/internal/store"
)

// GraphOptions holds flags for the graph and fuse commands.
type GraphOptions struct {
	*RootOptions
	ModelName  string
	ExportPath string
}

// GraphResult is the output of the graph command.
type GraphResult struct {
	Model      string               `json:"model"`
	Nodes      int                  `json:"nodes"`
	Edges      int                  `json:"edges"`
	Digest     string               `json:"digest,omitempty"`
	Counts     graph.CategoryCounts `json:"counts"`
	Empty      bool                 `json:"empty"`
	Diagnostic string               `json:"diagnostic,omitempty"`
	RunID      string               `json:"run_id,omitempty"`
}

// NewGraphCommand creates the graph command.
func NewGraphCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GraphOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "graph <model-file>",
		Short: "Build the categorized operator graph of a model",
		Long: `Build the operator graph of a model description and count nodes per
category.

Trivial operators (Identity, Dropout, ...) are hidden. If the model cannot
be read the graph is empty and a diagnostic explains why; this is not a
command failure.

With --db the analysis is recorded as a run; with --export the graph is
written as JSON for a visualization frontend.

Examples:
  xplain graph resnet.yaml
  xplain graph resnet.yaml --format json
  xplain graph resnet.yaml --export resnet.graph.json --db xplain.db`,
		Args:          exactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ModelName, "model", "", "model name (default: name in the file, else file base name)")
	cmd.Flags().StringVar(&opts.ExportPath, "export", "", "write the graph export JSON to this path")

	return cmd
}

func runGraph(opts *GraphOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	lg, err := opts.buildGraph(path, opts.ModelName)
	if err != nil {
		return err
	}

	result := GraphResult{
		Model:  lg.name,
		Nodes:  lg.g.NodeCount(),
		Edges:  lg.g.EdgeCount(),
		Counts: graph.Counts(lg.g),
		Empty:  lg.g.IsEmpty(),
	}
	if lg.diag != nil {
		result.Diagnostic = lg.diag.String()
	}

	opts.observe(func(c *metrics.Collector) { c.ObserveGraph(lg.name, metrics.StageBefore, lg.g) })

	if !lg.g.IsEmpty() {
		if result.Digest, err = graph.Digest(lg.g); err != nil {
			return WrapExitError(ExitFailure, "failed to digest graph", err)
		}
		if err := opts.writeExport(lg.g); err != nil {
			return err
		}
		run, err := opts.recordRun(cmd.Context(), store.Run{
			Model:       lg.name,
			Kind:        store.RunGraph,
			GraphDigest: result.Digest,
			NodeCount:   result.Nodes,
			EdgeCount:   result.Edges,
			Counts:      result.Counts,
		})
		if err != nil {
			return err
		}
		result.RunID = run.ID
	}

	formatter.VerboseLog("Graph digest: %s", result.Digest)

	return formatter.Success(result, func(w io.Writer) error {
		fmt.Fprintf(w, "Model: %s\n", result.Model)
		if result.Empty {
			fmt.Fprintf(w, "Graph is empty: %s\n", emptyReason(result.Diagnostic))
			return nil
		}
		fmt.Fprintf(w, "Parsed %d nodes, %d edges\n", result.Nodes, result.Edges)
		if result.RunID != "" {
			fmt.Fprintf(w, "Recorded run %s\n", result.RunID)
		}
		fmt.Fprintln(w)
		return writeCounts(w, result.Counts)
	})
}

// loadedGraph is a model graph plus the name it is reported under.
type loadedGraph struct {
	name string
	g    *graph.Graph
	diag *graph.Diagnostic
}

// buildGraph loads the model at path and builds its graph with the
// configured tables. A model that cannot be read yields an empty graph and
// a diagnostic, not an error; only configuration problems fail.
func (o *RootOptions) buildGraph(path, name string) (loadedGraph, error) {
	cfg, err := o.Config()
	if err != nil {
		return loadedGraph{}, WrapExitError(ExitFailure, "failed to load config", err)
	}

	lg := loadedGraph{name: name}
	src := func() ([]model.OperationRecord, error) {
		desc, err := model.Load(path)
		if err != nil {
			return nil, err
		}
		if lg.name == "" {
			lg.name = desc.Model
		}
		return desc.Ops, nil
	}
	lg.g, lg.diag = cfg.Builder().BuildFrom(src)
	if lg.name == "" {
		lg.name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	log := o.Logger().With(zap.String("model", lg.name), zap.String("path", path))
	if lg.diag != nil {
		log.Warn("graph build failed", zap.String("diagnostic", lg.diag.Message), zap.Error(lg.diag.Err))
	} else {
		log.Info("graph built", zap.Int("nodes", lg.g.NodeCount()), zap.Int("edges", lg.g.EdgeCount()))
	}
	return lg, nil
}

// writeExport writes the visualization export of g to --export, if set.
func (o *GraphOptions) writeExport(g *graph.Graph) error {
	if o.ExportPath == "" {
		return nil
	}
	cfg, err := o.Config()
	if err != nil {
		return WrapExitError(ExitFailure, "failed to load config", err)
	}
	data, err := json.MarshalIndent(graph.NewExport(g, cfg.Palette()), "", "  ")
	if err != nil {
		return WrapExitError(ExitFailure, "failed to encode graph export", err)
	}
	if err := os.WriteFile(o.ExportPath, append(data, '\n'), 0o644); err != nil {
		return WrapExitError(ExitCommandError, "failed to write graph export", withCode(ErrCodeWriteFailed, err))
	}
	o.Logger().Info("graph exported", zap.String("path", o.ExportPath))
	return nil
}

// recordRun stores run when a database is configured. Without --db it
// returns run unchanged.
func (o *RootOptions) recordRun(ctx context.Context, run store.Run) (store.Run, error) {
	if o.Database == "" {
		return run, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := o.openStore()
	if err != nil {
		return store.Run{}, err
	}
	defer st.Close()

	stored, err := st.WriteRun(ctx, run)
	if err != nil {
		return store.Run{}, WrapExitError(ExitCommandError, "failed to record run", withCode(ErrCodeDatabase, err))
	}
	o.Logger().Info("run recorded", zap.String("run_id", stored.ID), zap.Int64("seq", stored.Seq))
	return stored, nil
}

func emptyReason(diagnostic string) string {
	if diagnostic == "" {
		return "the model has no non-trivial operations"
	}
	return diagnostic
}

// writeCounts renders a category count table.
func writeCounts(w io.Writer, counts graph.CategoryCounts) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tCOUNT")
	for _, cat := range counts.Categories() {
		fmt.Fprintf(tw, "%s\t%d\n", cat, counts[cat])
	}
	return tw.Flush()
}
