// Package logging builds the zap loggers used by the xplain CLI.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Formats accepted by New.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New builds a logger writing to stderr. format is "console" (development
// encoder) or "json" (production encoder); level is debug, info, warn or
// error and defaults to info.
func New(level, format string) (*zap.Logger, error) {
	zapCfg, err := Config(level, format)
	if err != nil {
		return nil, err
	}
	return zapCfg.Build()
}

// Config returns the zap configuration New would build.
func Config(level, format string) (zap.Config, error) {
	var zapCfg zap.Config
	switch strings.ToLower(format) {
	case FormatConsole, "":
		zapCfg = zap.NewDevelopmentConfig()
	case FormatJSON:
		zapCfg = zap.NewProductionConfig()
	default:
		return zap.Config{}, fmt.Errorf("unknown log format %q (want console or json)", format)
	}
	zapCfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	zapCfg.OutputPaths = []string{"stderr"}
	zapCfg.ErrorOutputPaths = []string{"stderr"}

	switch strings.ToLower(level) {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	return zapCfg, nil
}
