package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/xplain/internal/irdiff"
	"github.com/roach88/xplain/internal/metrics"
	"github.com/roach88/xplain/internal/store"
)

// SnapshotAddResult is the output of snapshot add.
type SnapshotAddResult struct {
	ID        string `json:"id"`
	Model     string `json:"model"`
	Level     int    `json:"level"`
	LineCount int    `json:"line_count"`
	Created   bool   `json:"created"`
}

// SnapshotSummary is one row of snapshot list.
type SnapshotSummary struct {
	ID        string `json:"id"`
	Level     int    `json:"level"`
	LineCount int    `json:"line_count"`
	Seq       int64  `json:"seq"`
}

// SnapshotListResult is the output of snapshot list.
type SnapshotListResult struct {
	Model     string            `json:"model"`
	Snapshots []SnapshotSummary `json:"snapshots"`
}

// NewSnapshotCommand creates the snapshot command group.
func NewSnapshotCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Store and compare IR snapshots",
		Long: `Manage IR text captured at each optimization level.

Snapshots are content-addressed: storing the same text for the same model
and level twice is a no-op. All snapshot commands need --db.`,
	}

	cmd.AddCommand(newSnapshotAddCommand(rootOpts))
	cmd.AddCommand(newSnapshotListCommand(rootOpts))
	cmd.AddCommand(newSnapshotShowCommand(rootOpts))
	cmd.AddCommand(newSnapshotDiffCommand(rootOpts))

	return cmd
}

func newSnapshotAddCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <model> <level> <ir-file>",
		Short: "Store the IR text of a model at an optimization level",
		Example: `  xplain snapshot add resnet 0 raw.relay --db xplain.db
  xplain snapshot add resnet 3 opt.relay --db xplain.db`,
		Args:          exactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

			model := args[0]
			level, err := parseLevel(args[1])
			if err != nil {
				return err
			}
			data, err := readInput(args[2], "IR")
			if err != nil {
				return err
			}

			st, err := opts.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			id, created, err := st.WriteSnapshot(cmd.Context(), model, level, string(data))
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to store snapshot", withCode(ErrCodeDatabase, err))
			}
			opts.Logger().Info("snapshot stored",
				zap.String("model", model), zap.Int("level", level),
				zap.String("snapshot_id", id), zap.Bool("created", created))

			result := SnapshotAddResult{
				ID:        id,
				Model:     model,
				Level:     level,
				LineCount: len(irdiff.SplitLines(string(data))),
				Created:   created,
			}
			return formatter.Success(result, func(w io.Writer) error {
				verb := "Stored"
				if !created {
					verb = "Already stored"
				}
				_, err := fmt.Fprintf(w, "%s %s@%d (%d lines): %s\n", verb, model, level, result.LineCount, id)
				return err
			})
		},
	}
}

func newSnapshotListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list <model>",
		Short:         "List the stored snapshots of a model",
		Args:          exactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

			st, err := opts.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			snaps, err := st.ListSnapshots(cmd.Context(), args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to list snapshots", withCode(ErrCodeDatabase, err))
			}

			result := SnapshotListResult{Model: args[0], Snapshots: make([]SnapshotSummary, 0, len(snaps))}
			for _, s := range snaps {
				result.Snapshots = append(result.Snapshots, SnapshotSummary{
					ID: s.ID, Level: s.Level, LineCount: s.LineCount, Seq: s.Seq,
				})
			}

			return formatter.Success(result, func(w io.Writer) error {
				if len(result.Snapshots) == 0 {
					_, err := fmt.Fprintf(w, "No snapshots for %s.\n", result.Model)
					return err
				}
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "LEVEL\tLINES\tSEQ\tID")
				for _, s := range result.Snapshots {
					fmt.Fprintf(tw, "%d\t%d\t%d\t%s\n", s.Level, s.LineCount, s.Seq, s.ID)
				}
				return tw.Flush()
			})
		},
	}
}

func newSnapshotShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <model> <level>",
		Short:         "Print the latest stored snapshot of a model at a level",
		Args:          exactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

			level, err := parseLevel(args[1])
			if err != nil {
				return err
			}
			st, err := opts.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			snap, err := readStoredSnapshot(cmd, st, args[0], level)
			if err != nil {
				return err
			}
			return formatter.Success(snap, func(w io.Writer) error {
				_, err := io.WriteString(w, snap.Content)
				return err
			})
		},
	}
}

func newSnapshotDiffCommand(opts *RootOptions) *cobra.Command {
	var context int

	cmd := &cobra.Command{
		Use:   "diff <model> [from-level [to-level]]",
		Short: "Diff two stored snapshots of a model",
		Long: `Diff the latest stored snapshots of a model at two levels.

from-level defaults to 0 (raw IR) and to-level to the configured
optimized level (opt_level).`,
		Example:       `  xplain snapshot diff resnet 0 3 --db xplain.db`,
		Args:          rangeArgs(1, 3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

			cfg, err := opts.Config()
			if err != nil {
				return WrapExitError(ExitFailure, "failed to load config", err)
			}
			from, to := irdiff.RawLevel, cfg.OptLevel
			if len(args) > 1 {
				if from, err = parseLevel(args[1]); err != nil {
					return err
				}
			}
			if len(args) > 2 {
				if to, err = parseLevel(args[2]); err != nil {
					return err
				}
			}
			ctxLines, err := opts.diffContext(context)
			if err != nil {
				return err
			}

			st, err := opts.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			a, err := readStoredSnapshot(cmd, st, args[0], from)
			if err != nil {
				return err
			}
			b, err := readStoredSnapshot(cmd, st, args[0], to)
			if err != nil {
				return err
			}

			fromSnap := irdiff.Snapshot{Level: from, Lines: irdiff.SplitLines(a.Content)}
			toSnap := irdiff.Snapshot{Level: to, Lines: irdiff.SplitLines(b.Content)}
			report := irdiff.DiffLabeled(fromSnap.Label(), toSnap.Label(), fromSnap.Lines, toSnap.Lines, ctxLines)
			result := newDiffResult(report)
			opts.logDiff(result)
			opts.observe(func(c *metrics.Collector) { c.ObserveDiff(report) })

			return formatter.Success(result, func(w io.Writer) error {
				return writeDiff(w, result)
			})
		},
	}

	cmd.Flags().IntVar(&context, "context", -1, "lines of context around each change (default: config diff_context)")
	return cmd
}

// readStoredSnapshot reads a snapshot, mapping a missing row to not-found.
func readStoredSnapshot(cmd *cobra.Command, st *store.Store, model string, level int) (store.Snapshot, error) {
	snap, err := st.ReadSnapshot(cmd.Context(), model, level)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Snapshot{}, WrapExitError(ExitFailure, "snapshot not found",
			withCode(ErrCodeNotFound, fmt.Errorf("no snapshot of %s at level %d", model, level)))
	}
	if err != nil {
		return store.Snapshot{}, WrapExitError(ExitCommandError, "failed to read snapshot", withCode(ErrCodeDatabase, err))
	}
	return snap, nil
}
