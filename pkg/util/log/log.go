package log

import (
	"io"
	"os"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	dslog "github.com/grafana/dskit/log"
	"github.com/pkg/errors"
)

// Logger is a shared go-kit logger. Library packages take their logger through options and
// only the CLI reads this one.
var Logger = kitlog.NewNopLogger()

// InitLogger initialises the global gokit logger writing to stderr and returns that logger.
func InitLogger(logFormat, logLevel string) (kitlog.Logger, error) {
	return InitLoggerWithWriter(os.Stderr, logFormat, logLevel)
}

func InitLoggerWithWriter(w io.Writer, logFormat, logLevel string) (kitlog.Logger, error) {
	var lvl dslog.Level
	if err := lvl.Set(logLevel); err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", logLevel)
	}
	if logFormat != "logfmt" && logFormat != "json" {
		return nil, errors.Errorf("invalid log format %q", logFormat)
	}

	logger := dslog.NewGoKitWithWriter(logFormat, kitlog.NewSyncWriter(w))

	// use UTC timestamps and skip 5 stack frames.
	logger = kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC, "caller", kitlog.Caller(5))

	// Must put the level filter last for efficiency.
	logger = level.NewFilter(logger, lvl.Option)

	Logger = logger
	return logger, nil
}
