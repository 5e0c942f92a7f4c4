package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/xplain/internal/irdiff"
	"github.com/roach88/xplain/internal/metrics"
)

// noDifferences is printed for an empty diff.
const noDifferences = "No differences detected."

// DiffOptions holds flags for the diff command.
type DiffOptions struct {
	*RootOptions
	Context   int
	FromLabel string
	ToLabel   string
}

// DiffResult is the output of a diff between two IR texts.
type DiffResult struct {
	From    string         `json:"from"`
	To      string         `json:"to"`
	Empty   bool           `json:"empty"`
	Hunks   int            `json:"hunks"`
	Removed int            `json:"removed"`
	Added   int            `json:"added"`
	Report  *irdiff.Report `json:"report"`
	Unified string         `json:"unified"`
}

func newDiffResult(r *irdiff.Report) DiffResult {
	removed, added := r.Stats()
	return DiffResult{
		From:    r.FromLabel,
		To:      r.ToLabel,
		Empty:   r.Empty(),
		Hunks:   len(r.Hunks),
		Removed: removed,
		Added:   added,
		Report:  r,
		Unified: r.String(),
	}
}

// NewDiffCommand creates the diff command.
func NewDiffCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DiffOptions{RootOptions: rootOpts, Context: -1}

	cmd := &cobra.Command{
		Use:   "diff <raw-ir-file> <optimized-ir-file>",
		Short: "Show a unified diff between raw and optimized IR",
		Long: `Compare two IR text dumps line by line and print a unified diff.

Identical inputs are not an error: the command prints "No differences
detected." and exits 0.

Examples:
  xplain diff raw.relay opt.relay
  xplain diff raw.relay opt.relay --context 1
  xplain diff raw.relay opt.relay --format json`,
		Args:          exactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Context, "context", -1, "lines of context around each change (default: config diff_context)")
	cmd.Flags().StringVar(&opts.FromLabel, "from-label", irdiff.DefaultFromLabel, "label of the raw side")
	cmd.Flags().StringVar(&opts.ToLabel, "to-label", irdiff.DefaultToLabel, "label of the optimized side")

	return cmd
}

func runDiff(opts *DiffOptions, rawPath, optPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	context, err := opts.diffContext(opts.Context)
	if err != nil {
		return err
	}
	raw, err := readIR(rawPath)
	if err != nil {
		return err
	}
	opt, err := readIR(optPath)
	if err != nil {
		return err
	}

	report := irdiff.DiffLabeled(opts.FromLabel, opts.ToLabel, raw, opt, context)
	result := newDiffResult(report)
	opts.logDiff(result)
	opts.observe(func(c *metrics.Collector) { c.ObserveDiff(report) })

	return formatter.Success(result, func(w io.Writer) error {
		return writeDiff(w, result)
	})
}

// diffContext resolves the --context flag; a negative flag value means the
// configured default.
func (o *RootOptions) diffContext(flag int) (int, error) {
	if flag >= 0 {
		return flag, nil
	}
	cfg, err := o.Config()
	if err != nil {
		return 0, WrapExitError(ExitFailure, "failed to load config", err)
	}
	return cfg.DiffContext, nil
}

func (o *RootOptions) logDiff(r DiffResult) {
	o.Logger().Info("ir diffed",
		zap.String("from", r.From),
		zap.String("to", r.To),
		zap.Int("hunks", r.Hunks),
		zap.Int("removed", r.Removed),
		zap.Int("added", r.Added))
}

// readIR reads an IR text file as lines.
func readIR(path string) ([]string, error) {
	data, err := readInput(path, "IR")
	if err != nil {
		return nil, err
	}
	return irdiff.SplitLines(string(data)), nil
}

// readInput reads an input file, coding a missing file as not-found.
func readInput(path, what string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		code := ErrCodeGeneric
		if errors.Is(err, fs.ErrNotExist) {
			code = ErrCodeNotFound
		}
		return nil, WrapExitError(ExitFailure, "failed to read "+what, withCode(code, err))
	}
	return data, nil
}

func writeDiff(w io.Writer, r DiffResult) error {
	if r.Empty {
		_, err := fmt.Fprintln(w, noDifferences)
		return err
	}
	_, err := fmt.Fprintln(w, r.Unified)
	return err
}

// TimelineOptions holds flags for the timeline command.
type TimelineOptions struct {
	*RootOptions
	Context int
	Snaps   []string
}

// TimelineStep is one consecutive-level diff of a timeline.
type TimelineStep struct {
	FromLevel int `json:"from_level"`
	ToLevel   int `json:"to_level"`
	DiffResult
}

// TimelineResult is the output of the timeline command.
type TimelineResult struct {
	Model  string         `json:"model,omitempty"`
	Levels []int          `json:"levels"`
	Steps  []TimelineStep `json:"steps"`
}

// NewTimelineCommand creates the timeline command.
func NewTimelineCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TimelineOptions{RootOptions: rootOpts, Context: -1}

	cmd := &cobra.Command{
		Use:   "timeline [model]",
		Short: "Diff IR across consecutive optimization levels",
		Long: `Order IR snapshots by optimization level (raw IR is level 0) and
diff each consecutive pair.

Snapshots come from --snap level=path flags, or, given a model name, from
the latest stored snapshots of that model (see "xplain snapshot add")
restricted to the configured timeline levels.

Examples:
  xplain timeline --snap 0=raw.relay --snap 1=o1.relay --snap 3=o3.relay
  xplain timeline resnet --db xplain.db`,
		Args:          rangeArgs(0, 1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			model := ""
			if len(args) == 1 {
				model = args[0]
			}
			return runTimeline(opts, model, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Context, "context", -1, "lines of context around each change (default: config diff_context)")
	cmd.Flags().StringArrayVar(&opts.Snaps, "snap", nil, "IR snapshot as level=path (repeatable)")

	return cmd
}

func runTimeline(opts *TimelineOptions, model string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	context, err := opts.diffContext(opts.Context)
	if err != nil {
		return err
	}

	var snaps []irdiff.Snapshot
	switch {
	case len(opts.Snaps) > 0 && model != "":
		return NewExitError(ExitCommandError, "pass either a model or --snap flags, not both")
	case len(opts.Snaps) > 0:
		snaps, err = snapsFromFlags(opts.Snaps)
	case model != "":
		snaps, err = opts.storedTimeline(cmd, model)
	default:
		return NewExitError(ExitCommandError, "a model or at least one --snap is required")
	}
	if err != nil {
		return err
	}

	result := TimelineResult{Model: model, Levels: []int{}, Steps: []TimelineStep{}}
	for _, s := range snaps {
		result.Levels = append(result.Levels, s.Level)
	}
	for _, step := range irdiff.Timeline(snaps, context) {
		dr := newDiffResult(step.Report)
		opts.logDiff(dr)
		opts.observe(func(c *metrics.Collector) { c.ObserveDiff(step.Report) })
		result.Steps = append(result.Steps, TimelineStep{FromLevel: step.From, ToLevel: step.To, DiffResult: dr})
	}

	return formatter.Success(result, func(w io.Writer) error {
		if len(result.Steps) == 0 {
			_, err := fmt.Fprintln(w, "Need at least two snapshots for a timeline.")
			return err
		}
		for i, step := range result.Steps {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "== level %d → level %d: %d hunks, -%d +%d ==\n",
				step.FromLevel, step.ToLevel, step.Hunks, step.Removed, step.Added)
			if err := writeDiff(w, step.DiffResult); err != nil {
				return err
			}
		}
		return nil
	})
}

// snapsFromFlags parses level=path flags and reads each file.
func snapsFromFlags(flags []string) ([]irdiff.Snapshot, error) {
	snaps := make([]irdiff.Snapshot, 0, len(flags))
	for _, f := range flags {
		levelStr, path, ok := strings.Cut(f, "=")
		if !ok || path == "" {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("invalid --snap %q: want level=path", f))
		}
		level, err := parseLevel(levelStr)
		if err != nil {
			return nil, err
		}
		lines, err := readIR(path)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, irdiff.Snapshot{Level: level, Lines: lines})
	}
	return snaps, nil
}

// storedTimeline loads the latest stored snapshot per configured level.
func (o *RootOptions) storedTimeline(cmd *cobra.Command, model string) ([]irdiff.Snapshot, error) {
	cfg, err := o.Config()
	if err != nil {
		return nil, WrapExitError(ExitFailure, "failed to load config", err)
	}
	st, err := o.openStore()
	if err != nil {
		return nil, err
	}
	defer st.Close()

	stored, err := st.LatestSnapshots(cmd.Context(), model)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to read snapshots", withCode(ErrCodeDatabase, err))
	}

	levels := cfg.TimelineLevels()
	var snaps []irdiff.Snapshot
	for _, s := range stored {
		if !slices.Contains(levels, s.Level) {
			continue
		}
		snaps = append(snaps, irdiff.Snapshot{Level: s.Level, Lines: irdiff.SplitLines(s.Content)})
	}
	if len(snaps) == 0 {
		return nil, WrapExitError(ExitFailure, "no snapshots stored",
			withCode(ErrCodeNotFound, fmt.Errorf("model %q has no snapshots at levels %v", model, levels)))
	}
	return snaps, nil
}

// parseLevel parses a non-negative optimization level.
func parseLevel(s string) (int, error) {
	level, err := strconv.Atoi(s)
	if err != nil || level < 0 {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid level %q: must be a non-negative integer", s))
	}
	return level, nil
}
