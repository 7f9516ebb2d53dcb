package ui

import (
	"strings"
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{500 * time.Millisecond, "500ms"},
		{2500 * time.Millisecond, "2.5s"},
		{90 * time.Second, "1.5m"},
		{90 * time.Minute, "1.5h"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	if got := FormatBytes(0); got != "0 B" {
		t.Errorf("FormatBytes(0) = %q", got)
	}
	if got := FormatBytes(1500000); !strings.Contains(got, "MB") {
		t.Errorf("FormatBytes(1500000) = %q, want MB unit", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"a long filename that overflows", 10, "a long ..."},
		{"abc", 2, "ab"},
	}

	for _, tt := range tests {
		if got := truncate(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}

func TestTableRowShaping(t *testing.T) {
	table := NewTable("VIDEO", "SUBTITLE", "SCORE")
	table.AddRow("a.mkv", "a.srt", "1.00")
	table.AddRow("b.mkv") // short row pads out

	if table.Len() != 2 {
		t.Fatalf("Len = %d", table.Len())
	}
	if table.rows[1][1] != "" || table.rows[1][2] != "" {
		t.Errorf("short row not padded: %v", table.rows[1])
	}

	table.AddRow("c.mkv", "c.srt", "0.80", "extra")
	if len(table.rows[2]) != 3 {
		t.Errorf("extra cell not dropped: %v", table.rows[2])
	}
}
