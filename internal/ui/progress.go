package ui

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Spinner animates while a long operation (SMB scan, model call) runs.
type Spinner struct {
	chars  []string
	index  int
	done   chan bool
	label  string
	ticker *time.Ticker
}

// NewSpinner creates a spinner with the given label.
func NewSpinner(label string) *Spinner {
	return &Spinner{
		chars: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		done:  make(chan bool),
		label: label,
	}
}

// Start begins the animation. Non-terminal output prints the label once.
func (s *Spinner) Start() {
	if !IsTerminal() {
		fmt.Printf("%s...\n", s.label)
		return
	}

	s.ticker = time.NewTicker(100 * time.Millisecond)
	go func() {
		for {
			select {
			case <-s.done:
				return
			case <-s.ticker.C:
				fmt.Printf("\r%s %s", s.chars[s.index], s.label)
				s.index = (s.index + 1) % len(s.chars)
			}
		}
	}()
}

// Stop ends the animation and clears the line.
func (s *Spinner) Stop() {
	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	s.done <- true
	fmt.Print("\r" + strings.Repeat(" ", len(s.label)+10) + "\r")
}

// ProgressBar tracks progress over a known total, used while probing
// videos with ffprobe.
type ProgressBar struct {
	total   int
	current int
	width   int
	writer  *os.File
	label   string
}

// NewProgressBar creates a bar over total items.
func NewProgressBar(total int, label string) *ProgressBar {
	return &ProgressBar{total: total, width: 40, writer: os.Stdout, label: label}
}

// Increment advances the bar by one item.
func (p *ProgressBar) Increment() {
	p.current++
	if p.current > p.total {
		p.current = p.total
	}
	p.render()
}

func (p *ProgressBar) render() {
	if p.total <= 0 {
		return
	}
	percent := float64(p.current) / float64(p.total) * 100

	if !IsTerminal() {
		fmt.Fprintf(p.writer, "\r%s: %d/%d (%.1f%%)", p.label, p.current, p.total, percent)
		if p.current >= p.total {
			fmt.Fprintln(p.writer)
		}
		return
	}

	filled := p.width * p.current / p.total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", p.width-filled)
	fmt.Fprintf(p.writer, "\r%s [%s] %d/%d (%.1f%%)", p.label, bar, p.current, p.total, percent)
	if p.current >= p.total {
		fmt.Fprintln(p.writer)
	}
}
