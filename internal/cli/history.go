package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/xplain/internal/store"
)

// HistoryResult is the output of the history command.
type HistoryResult struct {
	Model  string      `json:"model,omitempty"`
	Digest string      `json:"digest,omitempty"`
	Runs   []store.Run `json:"runs"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(opts *RootOptions) *cobra.Command {
	var digest string

	cmd := &cobra.Command{
		Use:   "history [model]",
		Short: "List recorded graph and fusion runs",
		Long: `List the analysis runs recorded by "graph" and "fuse" with --db, oldest
first. Without a model, runs of every model are listed. With --digest, only
runs whose graph had that digest are listed, whatever the model.`,
		Example: `  xplain history resnet --db xplain.db
  xplain history --digest 3f1c... --db xplain.db`,
		Args:          rangeArgs(0, 1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

			result := HistoryResult{}
			if len(args) == 1 {
				result.Model = args[0]
			}

			st, err := opts.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			switch {
			case digest != "" && result.Model != "":
				return NewExitError(ExitCommandError, "pass either a model or --digest, not both")
			case digest != "":
				result.Digest = digest
				result.Runs, err = st.RunsByDigest(cmd.Context(), digest)
			default:
				result.Runs, err = st.ListRuns(cmd.Context(), result.Model)
			}
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to list runs", withCode(ErrCodeDatabase, err))
			}

			return formatter.Success(result, func(w io.Writer) error {
				if len(result.Runs) == 0 {
					_, err := fmt.Fprintln(w, "No runs recorded.")
					return err
				}
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "SEQ\tMODEL\tKIND\tNODES\tEDGES\tREDUCTION\tID")
				for _, r := range result.Runs {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%s\t%s\n",
						r.Seq, r.Model, r.Kind, r.NodeCount, r.EdgeCount, formatReduction(r.Reduction), r.ID)
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&digest, "digest", "", "list runs of graphs with this digest")
	return cmd
}

func formatReduction(r *float64) string {
	if r == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", *r)
}
