package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/pacelog/pkg/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "pacelog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, int64(50), cfg.Analysis.OutlierThreshold)
	assert.Equal(t, "literal", cfg.Analysis.SpacingMode)
	assert.True(t, cfg.Diagnostics.Enabled)
	assert.Equal(t, config.OutputStderr, cfg.Diagnostics.Output)
}

func TestLoadConfig_FromFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
analysis:
  sanitize: true
  strict: true
  outlier_threshold: 120
  spacing_mode: corrected

diagnostics:
  enabled: false

logging:
  level: debug
  format: json
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.True(t, cfg.Analysis.Sanitize)
	assert.True(t, cfg.Analysis.Strict)
	assert.Equal(t, int64(120), cfg.Analysis.OutlierThreshold)
	assert.Equal(t, "corrected", cfg.Analysis.SpacingMode)
	assert.False(t, cfg.Diagnostics.Enabled)
	assert.Equal(t, "json", cfg.Logging.Format)

	// Unset keys keep their defaults.
	assert.Equal(t, config.OutputStderr, cfg.Diagnostics.Output)
	assert.Empty(t, cfg.Telemetry.OTLPEndpoint)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("PACELOG_ANALYSIS_SANITIZE", "true")
	t.Setenv("PACELOG_ANALYSIS_OUTLIER_THRESHOLD", "75")
	t.Setenv("PACELOG_DIAGNOSTICS_OUTPUT", "log")

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.True(t, cfg.Analysis.Sanitize)
	assert.Equal(t, int64(75), cfg.Analysis.OutlierThreshold)
	assert.Equal(t, config.OutputLog, cfg.Diagnostics.Output)
}

func TestLoadConfig_ExplicitPathNotFound(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(writeConfig(t, "analysis: [unclosed"))
	require.Error(t, err)
}

func TestLoadConfig_ValidationErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    error
	}{
		{name: "negative_threshold", content: "analysis:\n  outlier_threshold: -1\n", want: config.ErrInvalidThreshold},
		{name: "bad_spacing", content: "analysis:\n  spacing_mode: average\n", want: config.ErrInvalidSpacingMode},
		{name: "bad_level", content: "logging:\n  level: loud\n", want: config.ErrInvalidLogLevel},
		{name: "bad_format", content: "logging:\n  format: xml\n", want: config.ErrInvalidLogFormat},
		{name: "empty_output", content: "diagnostics:\n  output: \"\"\n", want: config.ErrEmptyOutput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.LoadConfig(writeConfig(t, tt.content))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	level, err := config.ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	level, err = config.ParseLevel(" WARN ")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = config.ParseLevel("verbose")
	require.ErrorIs(t, err, config.ErrInvalidLogLevel)
}
