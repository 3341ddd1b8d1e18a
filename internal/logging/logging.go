// Package logging wires the application and server cores to a shared
// logrus logger, matching the five-level model called out across the
// original standard protocol documentation (Error, Warning, Info, Debug,
// Protocol). Protocol-level wire tracing maps onto logrus's Trace level,
// the most verbose tier logrus ships.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New builds a logger configured from the given level name. An unknown or
// empty level falls back to Info, matching the teacher's EnvOrDefault
// fallback-on-bad-input convention rather than erroring out at startup.
func New(level string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(parseLevel(level))
	return l
}

func parseLevel(level string) logrus.Level {
	switch level {
	case "error":
		return logrus.ErrorLevel
	case "warning", "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	case "protocol":
		return logrus.TraceLevel
	default:
		return logrus.InfoLevel
	}
}

// WithConn returns a logger entry scoped to a connection id, carrying the
// same "conn" field that internal/server attaches to its per-connection
// log lines (internal/server sets that field directly rather than calling
// WithConn).
func WithConn(l *logrus.Logger, connID uint64) *logrus.Entry {
	return l.WithField("conn", connID)
}
