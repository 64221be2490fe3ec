package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewWithWriter_TextFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewWithWriter(&buf, Config{Level: slog.LevelInfo})

	logger.Info("page indexed", "document", "thesis.pdf", "page", 3)

	out := buf.String()
	if !strings.Contains(out, "page indexed") {
		t.Errorf("log output %q missing message", out)
	}
	if !strings.Contains(out, "document=thesis.pdf") {
		t.Errorf("log output %q missing attribute", out)
	}
}

func TestNewWithWriter_JSONFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewWithWriter(&buf, Config{JSON: true})

	logger.Info("hello")

	if !strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Errorf("expected JSON output, got %q", buf.String())
	}
}

func TestNewWithWriter_LevelFiltering(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewWithWriter(&buf, Config{Level: slog.LevelWarn})

	logger.Debug("noise")
	logger.Info("still noise")

	if buf.Len() != 0 {
		t.Errorf("expected no output below warn level, got %q", buf.String())
	}

	logger.Warn("important")
	if !strings.Contains(buf.String(), "important") {
		t.Errorf("warn message missing from output %q", buf.String())
	}
}

func TestNewNop_DiscardsEverything(t *testing.T) {
	t.Parallel()

	logger := NewNop()
	// Must not panic, must not write anywhere observable.
	logger.Error("dropped")
}
