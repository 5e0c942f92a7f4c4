package cli

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/xplain/internal/config"
	"github.com/roach88/xplain/internal/model"
)

// Main runs the CLI with args and returns the process exit code. Command
// output goes to stdout; text-mode errors go to stderr.
func Main(args []string, stdout, stderr io.Writer) int {
	opts := &RootOptions{}
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		// Errors cobra raises itself: unknown commands, bad flags.
		err = WrapExitError(ExitCommandError, "command error", err)
	}
	if !opts.started.IsZero() {
		_ = opts.finish("error")
	}

	errOut := stderr
	if opts.Format == "json" {
		errOut = stdout
	}
	formatter := newFormatter(opts, errOut, stderr)
	code, details := errorCode(err)
	_ = formatter.Error(code, err.Error(), details)

	return GetExitCode(err)
}

// errorCode picks the most specific error code carried by err.
func errorCode(err error) (string, any) {
	var invalid *config.InvalidError
	if errors.As(err, &invalid) {
		return invalid.Errors[0].Code, invalid.Errors
	}
	var cfgErr *config.LoadError
	if errors.As(err, &cfgErr) {
		return cfgErr.Code, nil
	}
	var modelErr *model.LoadError
	if errors.As(err, &modelErr) {
		return modelErr.Code, nil
	}
	var cliErr *codedError
	if errors.As(err, &cliErr) {
		return cliErr.code, nil
	}
	return ErrCodeGeneric, nil
}

// codedError attaches a CLI error code to an error.
type codedError struct {
	code string
	err  error
}

func (e *codedError) Error() string { return e.err.Error() }
func (e *codedError) Unwrap() error { return e.err }

func withCode(code string, err error) error {
	return &codedError{code: code, err: err}
}

// exactArgs is cobra.ExactArgs reporting a command error.
func exactArgs(n int) cobra.PositionalArgs {
	return wrapArgs(cobra.ExactArgs(n))
}

// rangeArgs is cobra.RangeArgs reporting a command error.
func rangeArgs(lo, hi int) cobra.PositionalArgs {
	return wrapArgs(cobra.RangeArgs(lo, hi))
}

func wrapArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return WrapExitError(ExitCommandError, "invalid arguments", err)
		}
		return nil
	}
}
