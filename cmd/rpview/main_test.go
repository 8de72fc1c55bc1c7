//go:build !ios && !android

package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/user-none/retrovideo/logging"
	"github.com/user-none/retrovideo/pixfmt"
)

func TestRecordThenOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pattern")
	if err := recordPattern(logging.Or(nil), path, 4); err != nil {
		t.Fatalf("recordPattern: %v", err)
	}

	src, title, err := openSource(path+".rpfd", false)
	if err != nil {
		t.Fatalf("openSource: %v", err)
	}
	defer src.Close()
	if title != "pattern.rpfd" {
		t.Errorf("title = %q, want pattern.rpfd", title)
	}
	st := src.Stream()
	if st.Format != pixfmt.RGB565 || st.Width != 320 || st.Height != 240 {
		t.Errorf("stream = %+v", st)
	}
	for i := 0; i < 4; i++ {
		if _, err := src.NextFrame(); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
	}
}

func TestOpenSource_Pattern(t *testing.T) {
	src, title, err := openSource("", true)
	if err != nil {
		t.Fatalf("openSource: %v", err)
	}
	if title == "" {
		t.Error("empty title")
	}
	if st := src.Stream(); st.FPS != 60 {
		t.Errorf("fps = %v, want 60", st.FPS)
	}
}

func TestOpenSource_Missing(t *testing.T) {
	if _, _, err := openSource(filepath.Join(t.TempDir(), "nope.rpfd"), false); err == nil {
		t.Fatal("expected error for missing dump")
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"loud", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			l := newLogger(tt.in)
			if !l.Enabled(context.Background(), tt.want) {
				t.Errorf("level %v not enabled", tt.want)
			}
			if tt.want > slog.LevelDebug && l.Enabled(context.Background(), tt.want-1) {
				t.Errorf("level below %v enabled", tt.want)
			}
		})
	}
}
