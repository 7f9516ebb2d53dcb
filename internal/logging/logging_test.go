package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoggerWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	l, err := New(Config{Level: "debug", File: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer l.Close()

	l.Info("matcher", "matched subtitle", F("video", "Show.S01E01.mkv"), F("score", 1.0))
	l.Debug("scanner", "scan complete")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	content := string(data)

	if !strings.Contains(content, "[INFO] [matcher] matched subtitle") {
		t.Errorf("missing info line in %q", content)
	}
	if !strings.Contains(content, "video=Show.S01E01.mkv") {
		t.Errorf("missing field in %q", content)
	}
	if !strings.Contains(content, "[DEBUG] [scanner]") {
		t.Errorf("missing debug line in %q", content)
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	l, err := New(Config{Level: "warn", File: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer l.Close()

	l.Info("scanner", "should be filtered")
	l.Warn("scanner", "should appear")

	data, _ := os.ReadFile(path)
	content := string(data)

	if strings.Contains(content, "should be filtered") {
		t.Error("info line leaked through warn level")
	}
	if !strings.Contains(content, "should appear") {
		t.Error("warn line missing")
	}
}

func TestLoggerRotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rotate.log")

	l, err := New(Config{Level: "info", File: path, MaxSizeMB: 1, MaxBackups: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer l.Close()

	// Force rotation by shrinking the cap after construction.
	l.maxSize = 128

	for i := 0; i < 50; i++ {
		l.Info("test", strings.Repeat("x", 64))
	}

	if _, err := os.Stat(filepath.Join(dir, "rotate.1.log")); err != nil {
		t.Errorf("expected first backup to exist: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		name := e.Name()
		if name != "rotate.log" && name != "rotate.1.log" && name != "rotate.2.log" {
			t.Errorf("unexpected file after rotation: %s", name)
		}
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	l := Nop()
	// Must not panic without writers.
	l.Error("x", "y", nil)
	l.Info("x", "y")
}
