package config

import (
	"io"
	"os"

	log "github.com/charmbracelet/log"
	"github.com/pkg/errors"
)

// SetupLogger configures the default charm logger. When quiet is set and no
// log file is configured, output is discarded so it cannot draw over a
// full-screen UI. The returned closer releases the log file, if any.
func SetupLogger(cfg Config, quiet bool) (io.Closer, error) {
	log.SetLevel(cfg.LogLevel)
	log.SetPrefix("dtv")

	switch {
	case cfg.LogFile != "":
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, errors.Wrap(err, "open log file")
		}
		log.SetOutput(f)
		return f, nil
	case quiet:
		log.SetOutput(io.Discard)
	default:
		log.SetOutput(os.Stderr)
	}
	return io.NopCloser(nil), nil
}
