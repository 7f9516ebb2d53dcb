package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle  lipgloss.Style
	errorStyle    lipgloss.Style
	warningStyle  lipgloss.Style
	infoStyle     lipgloss.Style
	dimStyle      lipgloss.Style
	videoStyle    lipgloss.Style
	subtitleStyle lipgloss.Style
	scoreStyle    lipgloss.Style
	pathStyle     lipgloss.Style
)

func init() {
	initStyles()
}

func initStyles() {
	if !IsTerminal() {
		plain := lipgloss.NewStyle()
		successStyle = plain
		errorStyle = plain
		warningStyle = plain
		infoStyle = plain
		dimStyle = plain
		videoStyle = plain
		subtitleStyle = plain
		scoreStyle = plain
		pathStyle = plain
		return
	}

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	infoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	videoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	subtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	scoreStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	pathStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
}

// Success styles success text.
func Success(text string) string {
	return successStyle.Render(text)
}

// Error styles error text.
func Error(text string) string {
	return errorStyle.Render(text)
}

// Warning styles warning text.
func Warning(text string) string {
	return warningStyle.Render(text)
}

// Info styles informational text.
func Info(text string) string {
	return infoStyle.Render(text)
}

// Dim styles secondary text.
func Dim(text string) string {
	return dimStyle.Render(text)
}

// Video styles a video filename.
func Video(text string) string {
	return videoStyle.Render(text)
}

// Subtitle styles a subtitle filename.
func Subtitle(text string) string {
	return subtitleStyle.Render(text)
}

// Score styles a similarity score, colored by confidence bucket.
func Score(text, confidence string) string {
	switch confidence {
	case "high":
		return successStyle.Render(text)
	case "medium":
		return warningStyle.Render(text)
	default:
		return scoreStyle.Render(text)
	}
}

// Path styles a filesystem path.
func Path(text string) string {
	return pathStyle.Render(text)
}

// SuccessMsg prints a checkmarked message.
func SuccessMsg(format string, args ...interface{}) {
	fmt.Println(Success("✓") + " " + fmt.Sprintf(format, args...))
}

// ErrorMsg prints a cross-marked message.
func ErrorMsg(format string, args ...interface{}) {
	fmt.Println(Error("✗") + " " + fmt.Sprintf(format, args...))
}

// WarningMsg prints a warning message.
func WarningMsg(format string, args ...interface{}) {
	fmt.Println(Warning("⚠") + " " + fmt.Sprintf(format, args...))
}

// InfoMsg prints an informational message.
func InfoMsg(format string, args ...interface{}) {
	fmt.Println(Info("ℹ") + " " + fmt.Sprintf(format, args...))
}
