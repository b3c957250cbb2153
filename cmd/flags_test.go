package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nethserver/phonehome-widget/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPollFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Bool("debug", false, "")
	addEndpointFlags(fs)
	addPollFlags(fs)
	return fs
}

func TestApplyFlags_OnlyChangedFlagsOverride(t *testing.T) {
	fs := newPollFlagSet()
	require.NoError(t, fs.Parse([]string{"--interval", "10m", "--fail-stop"}))

	cfg := config.Default()
	cfg.Endpoint = "https://example.org/from-file"
	require.NoError(t, applyFlags(fs, &cfg))

	assert.Equal(t, 600000, cfg.IntervalMs)
	assert.True(t, cfg.FailStop)
	assert.Equal(t, "https://example.org/from-file", cfg.Endpoint)
	assert.Equal(t, config.Default().ErrorIntervalMs, cfg.ErrorIntervalMs)
	assert.False(t, cfg.Debug)
}

func TestApplyFlags_AllFlags(t *testing.T) {
	fs := newPollFlagSet()
	require.NoError(t, fs.Parse([]string{
		"--endpoint", "https://example.org/ph",
		"--timeout", "3s",
		"--interval", "2h",
		"--error-interval", "750ms",
		"--debug",
	}))

	cfg := config.Default()
	require.NoError(t, applyFlags(fs, &cfg))

	assert.Equal(t, "https://example.org/ph", cfg.Endpoint)
	assert.Equal(t, 3000, cfg.TimeoutMs)
	assert.Equal(t, 7200000, cfg.IntervalMs)
	assert.Equal(t, 750, cfg.ErrorIntervalMs)
	assert.True(t, cfg.Debug)
}

func TestApplyFlags_SkipsUndefinedFlags(t *testing.T) {
	fs := pflag.NewFlagSet("open", pflag.ContinueOnError)
	cfg := config.Default()
	require.NoError(t, applyFlags(fs, &cfg))
	assert.Equal(t, config.Default(), cfg)
}

func newConfigCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "test"}
	c.Flags().String("config", "", "")
	c.Flags().Bool("debug", false, "")
	addEndpointFlags(c.Flags())
	addPollFlags(c.Flags())
	require.NoError(t, c.Flags().Parse(args))
	return c
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phonehome.yaml")
	require.NoError(t, os.WriteFile(path, []byte("endpoint: https://example.org/file\ninterval_ms: 1000\n"), 0o600))

	c := newConfigCommand(t, "--config", path, "--interval", "5m")
	cfg, err := loadConfig(c)

	require.NoError(t, err)
	assert.Equal(t, "https://example.org/file", cfg.Endpoint)
	assert.Equal(t, 300000, cfg.IntervalMs)
}

func TestLoadConfig_InvalidFlagValue(t *testing.T) {
	c := newConfigCommand(t, "--endpoint", "ftp://example.org/ph")
	_, err := loadConfig(c)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Contains(t, err.Error(), "endpoint must be an http(s) URL")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	c := newConfigCommand(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := loadConfig(c)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
