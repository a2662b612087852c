package main

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/arpwhisper/proxyarp/internal/config"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level config.LogLevel
		on    []slog.Level
		off   []slog.Level
	}{
		{
			level: config.LevelDebug,
			on:    []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError},
		},
		{
			level: config.LevelInfo,
			on:    []slog.Level{slog.LevelInfo, slog.LevelWarn, slog.LevelError},
			off:   []slog.Level{slog.LevelDebug},
		},
		{
			level: config.LevelWarn,
			on:    []slog.Level{slog.LevelWarn, slog.LevelError},
			off:   []slog.Level{slog.LevelDebug, slog.LevelInfo},
		},
		{
			level: config.LevelOff,
			off:   []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError},
		},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		l := newLogger(tt.level, &buf)

		for _, lv := range tt.on {
			if !l.Enabled(context.Background(), lv) {
				t.Fatalf("level %q: %v should be enabled", tt.level, lv)
			}
		}

		for _, lv := range tt.off {
			l.Log(context.Background(), lv, "hidden")
		}
		if tt.level == config.LevelOff {
			l.Error("hidden")
		}
		if buf.Len() != 0 {
			t.Fatalf("level %q: unexpected output: %q", tt.level, buf.String())
		}
	}
}
