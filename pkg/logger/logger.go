package logger

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

// cronLogger forwards robfig/cron diagnostics to slog.
type cronLogger struct {
	logger *slog.Logger
}

// NewCronLogger returns a cron.Logger backed by the given slog logger. Routine scheduler
// chatter is logged at debug; dropped overlapping runs are logged as warnings.
func NewCronLogger(logger *slog.Logger) cron.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &cronLogger{logger: logger}
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	if msg == "skip" {
		l.logger.Warn("overlapping ingestion trigger dropped", keysAndValues...)
		return
	}
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	args := append([]interface{}{"error", err}, keysAndValues...)
	l.logger.Error("cron: "+msg, args...)
}
