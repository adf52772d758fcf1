package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestCronLoggerLevels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewCronLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))

	l.Info("wake", "now", "x")
	if buf.Len() != 0 {
		t.Fatalf("routine messages must stay at debug, got %q", buf.String())
	}

	l.Info("skip")
	if !strings.Contains(buf.String(), "level=WARN") || !strings.Contains(buf.String(), "overlapping ingestion trigger dropped") {
		t.Fatalf("expected skip warning, got %q", buf.String())
	}

	buf.Reset()
	l.Error(errors.New("boom"), "panic", "stack", "trace")
	out := buf.String()
	if !strings.Contains(out, "level=ERROR") || !strings.Contains(out, "error=boom") || !strings.Contains(out, "stack=trace") {
		t.Fatalf("unexpected error output: %q", out)
	}
}
