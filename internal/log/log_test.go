package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	if New(Config{}) == nil {
		t.Fatal("New returned nil")
	}
}

func TestNewWithWriter_TextOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, Config{Level: slog.LevelDebug})

	logger.Info("ingested chunks", "collection", "common_knowledge_base", "count", 3)

	out := buf.String()
	if !strings.Contains(out, "ingested chunks") {
		t.Errorf("message missing from output: %s", out)
	}
	if !strings.Contains(out, "collection=common_knowledge_base") || !strings.Contains(out, "count=3") {
		t.Errorf("attributes missing from output: %s", out)
	}
}

func TestNewWithWriter_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, Config{JSON: true})

	logger.Info("answered query", "user_id", "alice")

	out := buf.String()
	if !strings.Contains(out, `"msg":"answered query"`) || !strings.Contains(out, `"user_id":"alice"`) {
		t.Errorf("expected JSON fields, got: %s", out)
	}
}

func TestNewWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, Config{Level: slog.LevelWarn})

	logger.Debug("suppressed")
	logger.Info("also suppressed")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "suppressed") {
		t.Errorf("entries below the configured level leaked: %s", out)
	}
	if !strings.Contains(out, "kept") {
		t.Errorf("entry at the configured level missing: %s", out)
	}
}

func TestNewWithWriter_ComponentContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, Config{})

	logger.With("component", "vectorstore").Info("cleared collection")

	if !strings.Contains(buf.String(), "component=vectorstore") {
		t.Errorf("With attribute missing: %s", buf.String())
	}
}

func TestNewNop(t *testing.T) {
	logger := NewNop()
	if logger == nil {
		t.Fatal("NewNop returned nil")
	}
	// Discards without panicking at any level.
	logger.Debug("dropped")
	logger.Error("dropped too")
}
