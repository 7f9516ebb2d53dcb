// Package ui holds the terminal output helpers shared by the CLI
// commands.
package ui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
)

var (
	isTerminal   = isatty.IsTerminal(os.Stdout.Fd())
	colorEnabled = true
)

// DisableColors forces plain output.
func DisableColors() {
	colorEnabled = false
	isTerminal = false
	initStyles()
}

// EnableColors re-enables colored output when stdout is a terminal.
func EnableColors() {
	colorEnabled = true
	isTerminal = isatty.IsTerminal(os.Stdout.Fd())
	initStyles()
}

// IsTerminal reports whether styled output should be used.
func IsTerminal() bool {
	return isTerminal && colorEnabled
}

// Section prints a section header.
func Section(title string) {
	fmt.Println()
	if IsTerminal() {
		fmt.Println("━━━ " + strings.ToUpper(title) + " ━━━")
		return
	}
	fmt.Println(strings.ToUpper(title))
	fmt.Println(strings.Repeat("=", len(title)+6))
}

// FormatBytes renders a byte count for display.
func FormatBytes(bytes int64) string {
	return humanize.Bytes(uint64(bytes))
}

// FormatDuration renders an elapsed duration for display.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%.1fm", d.Minutes())
	default:
		return fmt.Sprintf("%.1fh", d.Hours())
	}
}

// Confirm prompts for a yes/no answer, defaulting to no. Non-interactive
// sessions always answer no.
func Confirm(prompt string) bool {
	if !IsTerminal() {
		return false
	}

	fmt.Print(prompt + " (y/N): ")
	var response string
	fmt.Scanln(&response)
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
