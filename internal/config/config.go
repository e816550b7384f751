package config

import (
	"strings"

	log "github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. DTV_LOG_LEVEL.
const EnvPrefix = "DTV"

const (
	KeyLogLevel     = "log-level"
	KeyLogFile      = "log-file"
	KeyAddr         = "addr"
	KeyContextLines = "context-lines"
	KeyUpdateRepo   = "update-repo"
)

// ErrInvalidConfig is returned when a setting has an unusable value.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the settings that can come from flags or the environment.
type Config struct {
	LogLevel     log.Level
	LogFile      string
	Addr         string
	ContextLines int
	UpdateRepo   string // "owner/repo" on GitHub, checked by --update
}

// RegisterFlags adds the configurable flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(KeyLogLevel, "warn", "Log level: debug, info, warn or error")
	fs.String(KeyLogFile, "", "Write logs to this file instead of stderr")
	fs.String(KeyAddr, "localhost:8080", "Listen address for --web")
	fs.Int(KeyContextLines, 2, "Lines of context shown around resolved source")
	fs.String(KeyUpdateRepo, "", "GitHub owner/repo checked by --update")
}

// Load merges flags from fs with DTV_* environment variables. Flags that were
// set explicitly win over the environment, which wins over flag defaults.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for _, key := range []string{KeyLogLevel, KeyLogFile, KeyAddr, KeyContextLines, KeyUpdateRepo} {
		if flag := fs.Lookup(key); flag != nil {
			if err := v.BindPFlag(key, flag); err != nil {
				return Config{}, errors.Wrapf(err, "failed to bind %s", key)
			}
		}
	}

	level, err := log.ParseLevel(v.GetString(KeyLogLevel))
	if err != nil {
		return Config{}, errors.Wrapf(ErrInvalidConfig, "%s: %v", KeyLogLevel, err)
	}

	cfg := Config{
		LogLevel:     level,
		LogFile:      v.GetString(KeyLogFile),
		Addr:         v.GetString(KeyAddr),
		ContextLines: v.GetInt(KeyContextLines),
		UpdateRepo:   v.GetString(KeyUpdateRepo),
	}
	if cfg.ContextLines < 0 {
		return Config{}, errors.Wrapf(ErrInvalidConfig, "%s must not be negative", KeyContextLines)
	}
	if cfg.UpdateRepo != "" && strings.Count(cfg.UpdateRepo, "/") != 1 {
		return Config{}, errors.Wrapf(ErrInvalidConfig, "%s must look like owner/repo", KeyUpdateRepo)
	}
	return cfg, nil
}
