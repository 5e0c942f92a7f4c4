package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestConfig_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		cfg, err := Config(tt.level, FormatJSON)
		require.NoError(t, err)
		assert.Equal(t, tt.want, cfg.Level.Level(), "level %q", tt.level)
	}
}

func TestConfig_Formats(t *testing.T) {
	console, err := Config("info", FormatConsole)
	require.NoError(t, err)
	assert.Equal(t, "console", console.Encoding)
	assert.True(t, console.Development)

	json, err := Config("info", "JSON")
	require.NoError(t, err)
	assert.Equal(t, "json", json.Encoding)
	assert.False(t, json.Development)
	assert.Equal(t, []string{"stderr"}, json.OutputPaths)

	_, err = Config("info", "xml")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	logger, err := New("warn", FormatJSON)
	require.NoError(t, err)

	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}
