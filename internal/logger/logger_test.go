package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestColorHandlerLevelColors(t *testing.T) {
	cases := []struct {
		level slog.Level
		code  string
	}{
		{slog.LevelDebug, "\033[36m"},
		{slog.LevelInfo, "\033[32m"},
		{slog.LevelWarn, "\033[33m"},
		{slog.LevelError, "\033[31m"},
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		log := New(&buf, slog.LevelDebug)
		log.Log(context.Background(), tc.level, "hello")
		out := buf.String()
		if !strings.Contains(out, tc.code) {
			t.Errorf("level %v: missing color code %q in %q", tc.level, tc.code, out)
		}
		if !strings.Contains(out, "hello") {
			t.Errorf("level %v: message lost in %q", tc.level, out)
		}
	}
}

func TestLevelRenderedOnceAsColoredToken(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelDebug)
	log.Warn("careful")
	out := buf.String()
	if strings.Contains(out, "level=") {
		t.Fatalf("level attribute should be replaced by the colored token: %q", out)
	}
	if strings.Count(out, "WARN") != 1 {
		t.Fatalf("level token should appear exactly once: %q", out)
	}
}

func TestNewSuppressesTimeAttr(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelInfo)
	log.Info("no timestamps")
	if strings.Contains(buf.String(), "time=") {
		t.Fatalf("time attribute should be suppressed: %q", buf.String())
	}
}

func TestHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelWarn)
	log.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info record should be dropped below warn level: %q", buf.String())
	}
	log.Warn("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Fatalf("warn record missing: %q", buf.String())
	}
}
