package sundaecli

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

func Logger(service Service) zerolog.Logger {
	return NewLogger(os.Stdout, service, CommonOpts.Debug)
}

// NewLogger writes JSON lines tagged with the service name and version. Debug
// output is suppressed unless debug is set.
func NewLogger(w io.Writer, service Service, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(w).Level(level).With().
		Timestamp().
		Str("service", service.Name).
		Str("version", service.Version).
		Logger()
}
