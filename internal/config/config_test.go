package config

import (
	"path/filepath"
	"testing"

	log "github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("dtv", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newFlags(t))
	require.NoError(t, err)

	assert.Equal(t, log.WarnLevel, cfg.LogLevel)
	assert.Equal(t, "localhost:8080", cfg.Addr)
	assert.Equal(t, 2, cfg.ContextLines)
	assert.Empty(t, cfg.LogFile)
	assert.Empty(t, cfg.UpdateRepo)
}

func TestLoadEnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("DTV_LOG_LEVEL", "debug")
	t.Setenv("DTV_CONTEXT_LINES", "5")
	t.Setenv("DTV_ADDR", ":9000")

	cfg, err := Load(newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, cfg.LogLevel)
	assert.Equal(t, 5, cfg.ContextLines)
	assert.Equal(t, ":9000", cfg.Addr)
}

func TestLoadFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("DTV_LOG_LEVEL", "debug")

	cfg, err := Load(newFlags(t, "--log-level", "error", "--context-lines", "0"))
	require.NoError(t, err)
	assert.Equal(t, log.ErrorLevel, cfg.LogLevel)
	assert.Equal(t, 0, cfg.ContextLines)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "log level", args: []string{"--log-level", "loud"}},
		{name: "negative context", args: []string{"--context-lines", "-1"}},
		{name: "update repo", args: []string{"--update-repo", "just-a-name"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(newFlags(t, tt.args...))
			assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
		})
	}
}

func TestSetupLoggerWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dtv.log")
	closer, err := SetupLogger(Config{LogLevel: log.InfoLevel, LogFile: path}, true)
	require.NoError(t, err)
	t.Cleanup(func() { SetupLogger(Config{LogLevel: log.WarnLevel}, false) })

	log.Info("hello from test")
	require.NoError(t, closer.Close())
	assert.FileExists(t, path)
}
