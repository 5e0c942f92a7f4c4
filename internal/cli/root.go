package cli

import (
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/xplain/internal/config"
	"github.com/roach88/xplain/internal/logging"
	"github.com/roach88/xplain/internal/metrics"
	"github.com/roach88/xplain/internal/store"
)

// RootOptions holds global flags for all commands, plus the lazily built
// config, logger and metrics collector they share.
type RootOptions struct {
	Verbose     bool
	Format      string // "json" | "text"
	ConfigPath  string
	Database    string
	LogLevel    string
	LogFormat   string
	MetricsFile string

	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Collector
	command string
	started time.Time
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the xplain CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "xplain",
		Short: "xplain - explain what the compiler did to your model",
		Long: `Inspect ML model computation graphs and compiler IR.

Builds a categorized operator graph from a model description, simulates
operator fusion and measures how many heavy ops it absorbs, and diffs
compiler IR between optimization levels.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.finish("ok")
		},
	}

	pf := cmd.PersistentFlags()
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	pf.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	pf.StringVar(&opts.ConfigPath, "config", envOr(EnvConfig, ""), "path to a CUE config file (env "+EnvConfig+")")
	pf.StringVar(&opts.Database, "db", envOr(EnvDatabase, ""), "path to the SQLite store (env "+EnvDatabase+")")
	pf.StringVar(&opts.LogLevel, "log-level", envOr(EnvLogLevel, "info"), "log level (debug|info|warn|error)")
	pf.StringVar(&opts.LogFormat, "log-format", logging.FormatConsole, "log format (console|json)")
	pf.StringVar(&opts.MetricsFile, "metrics-file", "", "write Prometheus metrics to this file")

	cmd.AddCommand(NewGraphCommand(opts))
	cmd.AddCommand(NewFuseCommand(opts))
	cmd.AddCommand(NewDiffCommand(opts))
	cmd.AddCommand(NewTimelineCommand(opts))
	cmd.AddCommand(NewSnapshotCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewInsightsCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))

	return cmd
}

// setup validates global flags and builds the logger and metrics collector.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	logger, err := logging.New(o.LogLevel, o.LogFormat)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build logger", err)
	}
	o.logger = logger.With(zap.String("command", cmd.Name()))

	if o.MetricsFile != "" {
		o.metrics = metrics.NewCollector()
	}
	o.command = cmd.CommandPath()
	o.started = time.Now()
	return nil
}

// finish records the command outcome and flushes metrics and logs.
func (o *RootOptions) finish(status string) error {
	defer func() {
		if o.logger != nil {
			_ = o.logger.Sync()
		}
	}()

	if o.metrics == nil {
		return nil
	}
	o.metrics.ObserveCommand(o.command, status, time.Since(o.started))
	if err := o.metrics.Write(o.MetricsFile); err != nil {
		return WrapExitError(ExitCommandError, "failed to write metrics", err)
	}
	o.Logger().Debug("metrics written", zap.String("path", o.MetricsFile))
	return nil
}

// Config returns the resolved configuration, loading it on first use.
func (o *RootOptions) Config() (*config.Config, error) {
	if o.cfg != nil {
		return o.cfg, nil
	}
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, err
	}
	o.cfg = cfg
	return cfg, nil
}

// Logger returns the command logger, or a no-op logger before setup.
func (o *RootOptions) Logger() *zap.Logger {
	if o.logger == nil {
		return zap.NewNop()
	}
	return o.logger
}

// observe runs f against the metrics collector if metrics are enabled.
func (o *RootOptions) observe(f func(c *metrics.Collector)) {
	if o.metrics != nil {
		f(o.metrics)
	}
}

// openStore opens the --db store. It fails if no database was given.
func (o *RootOptions) openStore() (*store.Store, error) {
	if o.Database == "" {
		return nil, NewExitError(ExitCommandError, "a database is required: pass --db or set "+EnvDatabase)
	}
	st, err := store.Open(o.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
