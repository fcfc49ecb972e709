package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/nhle/taskly/internal/model"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(model.LogConfig{Level: "warn", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info().Msg("hidden")
	logger.Warn().Str("task_id", "t1").Msg("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected 1 log line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("Expected JSON output: %v", err)
	}
	if entry["message"] != "shown" || entry["task_id"] != "t1" || entry["level"] != "warn" {
		t.Errorf("Unexpected entry: %v", entry)
	}
	if _, ok := entry["time"]; !ok {
		t.Error("Expected timestamp field")
	}
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(model.LogConfig{Level: "debug", Format: "console"}, &buf)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Debug().Msg("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("Expected console output to contain message, got %q", buf.String())
	}
	if strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Error("Expected non-JSON console output")
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(model.LogConfig{Level: "loud"}, nil); err == nil {
		t.Fatal("Expected error for unknown level")
	}
}
