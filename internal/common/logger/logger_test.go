package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoggerWritesKeyValueFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf)

	log.Info("Planning day", "origin", "Budapest", "calls", 3, "error", errors.New("boom"))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "Planning day" {
		t.Errorf("Expected message 'Planning day', got %v", entry["message"])
	}
	if entry["origin"] != "Budapest" {
		t.Errorf("Expected origin field, got %v", entry["origin"])
	}
	if entry["error"] != "boom" {
		t.Errorf("Expected error field 'boom', got %v", entry["error"])
	}
	if entry["level"] != "info" {
		t.Errorf("Expected level info, got %v", entry["level"])
	}
}

func TestLoggerWith(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf).With("date", "2020-07-01")

	log.Warn("Coverage incomplete")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log line: %v", err)
	}
	if entry["date"] != "2020-07-01" {
		t.Errorf("Expected inherited date field, got %v", entry["date"])
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":  zerolog.DebugLevel,
		" WARN ": zerolog.WarnLevel,
		"error":  zerolog.ErrorLevel,
		"":       zerolog.InfoLevel,
		"chatty": zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %s, expected %s", in, got, want)
		}
	}
}

func TestNopDoesNotPanic(t *testing.T) {
	log := Nop()
	log.Debug("nothing", "k", "v")
	log.With("a", 1).Info("still nothing")
}

func TestNewFromConfigWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daytable.log")
	cfg := DefaultLoggerConfig()
	cfg.Console = false
	cfg.File = true
	cfg.FilePath = path
	cfg.Level = zerolog.WarnLevel

	log := NewFromConfig(cfg)
	log.Info("Below level")
	log.Warn("Retrying directions call", "attempt", 2)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected log file: %v", err)
	}
	if strings.Contains(string(data), "Below level") {
		t.Errorf("Expected info message to be filtered, got %q", data)
	}
	if !strings.Contains(string(data), "Retrying directions call") {
		t.Errorf("Expected warn message in file, got %q", data)
	}
}
