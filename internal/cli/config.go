package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/roach88/xplain/internal/config"
)

// NewConfigCommand creates the config command.
func NewConfigCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration",
		Long: `Load the configuration (the built-in default, overlaid with --config)
and print it. An invalid config file fails with every validation error.`,
		Example: `  xplain config
  xplain config --config xplain.cue --format json`,
		Args:          exactArgs(0),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

			cfg, err := opts.Config()
			if err != nil {
				return WrapExitError(ExitFailure, "invalid config", err)
			}
			return formatter.Success(cfg, func(w io.Writer) error {
				return writeConfig(w, cfg)
			})
		},
	}
}

func writeConfig(w io.Writer, cfg *config.Config) error {
	source := cfg.Source
	if source == "" {
		source = "(built-in default)"
	}
	fmt.Fprintf(w, "Source: %s\n", source)
	fmt.Fprintf(w, "Trivial ops: %s\n", strings.Join(cfg.Trivial, ", "))
	fmt.Fprintf(w, "Conv prefixes: %s\n", strings.Join(cfg.ConvPrefixes, ", "))
	fmt.Fprintf(w, "Fused categories: %s\n", strings.Join(cfg.Fused, ", "))
	fmt.Fprintf(w, "Diff context: %d\n", cfg.DiffContext)
	fmt.Fprintf(w, "Optimized level: %d\n", cfg.OptLevel)
	fmt.Fprintf(w, "Timeline levels: %s\n", strings.Trim(fmt.Sprint(cfg.Levels), "[]"))
	fmt.Fprintf(w, "Default color: %s\n", cfg.DefaultColor)

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "OPERATOR\tCATEGORY\tCOLOR")
	palette := cfg.Palette()
	ops := lo.Keys(cfg.Categories)
	slices.Sort(ops)
	for _, op := range ops {
		cat := cfg.Categories[op]
		fmt.Fprintf(tw, "%s\t%s\t%s\n", op, cat, palette.ColorOf(cat))
	}
	return tw.Flush()
}
