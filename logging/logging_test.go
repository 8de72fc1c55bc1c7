package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestDefaultLoggerIsSilent(t *testing.T) {
	SetLogger(nil)
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Fatal("default logger should not be enabled")
	}
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	defer SetLogger(nil)

	Logger().Info("stream opened", "width", 320)
	if !strings.Contains(buf.String(), "stream opened") {
		t.Fatalf("expected log output, got %q", buf.String())
	}
}

func TestOr(t *testing.T) {
	SetLogger(nil)
	custom := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	if Or(custom) != custom {
		t.Error("Or should return the provided logger")
	}
	if Or(nil) != Logger() {
		t.Error("Or(nil) should return the shared logger")
	}
}
