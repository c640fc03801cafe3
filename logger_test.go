package maskedit

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerDefaultIsSilent(t *testing.T) {
	SetLogger(nil)
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("default logger should be disabled")
	}
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer SetLogger(nil)

	Logger().Info("hello", "layer", 3)
	if !strings.Contains(buf.String(), "layer=3") {
		t.Errorf("log output = %q, want layer=3", buf.String())
	}
}
