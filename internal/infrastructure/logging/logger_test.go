package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/nerrad567/cloudbridge/internal/infrastructure/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.LoggingConfig
	}{
		{"json to stdout", config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"}},
		{"text to stderr", config.LoggingConfig{Level: "debug", Format: "text", Output: "stderr"}},
		{"unknown format falls back", config.LoggingConfig{Level: "info", Format: "xml", Output: "stdout"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if logger := New(tt.cfg, "1.0.0"); logger == nil {
				t.Fatal("New() returned nil")
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"DEBUG", slog.LevelDebug},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestWith(t *testing.T) {
	logger := New(config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"}, "1.0.0")

	child := logger.With("component", "bridge")
	if child == nil {
		t.Fatal("With() returned nil")
	}
	if child == logger {
		t.Error("With() should return a new logger, not the receiver")
	}
}

func TestDefault(t *testing.T) {
	if Default() == nil {
		t.Fatal("Default() returned nil")
	}
}

func TestOutputCarriesDefaultFields(t *testing.T) {
	var buf bytes.Buffer

	base := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	handler := base.WithAttrs([]slog.Attr{
		slog.String("service", "cloudbridge"),
		slog.String("version", "test"),
	})

	logger := &Logger{Logger: slog.New(handler)}
	logger.Info("poll complete", "devices", "3")

	output := buf.String()
	if !strings.Contains(output, "cloudbridge") {
		t.Error("output missing service field")
	}
	if !strings.Contains(output, "test") {
		t.Error("output missing version field")
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("parsing JSON output: %v", err)
	}
	if entry["msg"] != "poll complete" {
		t.Errorf("msg = %v, want poll complete", entry["msg"])
	}
	if entry["devices"] != "3" {
		t.Errorf("devices = %v, want 3", entry["devices"])
	}
}
