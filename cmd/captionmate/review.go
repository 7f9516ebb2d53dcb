package main

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/captionmate/captionmate/internal/matcher"
)

// reviewModel lets the user deselect individual renames before they run.
type reviewModel struct {
	table     table.Model
	plan      []matcher.RenameOperation
	selected  []bool
	confirmed bool
}

var reviewHelpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

func newReviewModel(plan []matcher.RenameOperation) reviewModel {
	selected := make([]bool, len(plan))
	for i := range selected {
		selected[i] = true
	}

	columns := []table.Column{
		{Title: " ", Width: 3},
		{Title: "SUBTITLE", Width: 40},
		{Title: "NEW NAME", Width: 40},
		{Title: "SCORE", Width: 6},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(min(len(plan)+1, 20)),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true)
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("12"))
	t.SetStyles(styles)

	m := reviewModel{table: t, plan: plan, selected: selected}
	m.refreshRows()
	return m
}

func (m *reviewModel) refreshRows() {
	rows := make([]table.Row, len(m.plan))
	for i, op := range m.plan {
		mark := "[ ]"
		if m.selected[i] {
			mark = "[x]"
		}
		rows[i] = table.Row{
			mark,
			op.OldName,
			op.NewName,
			fmt.Sprintf("%.2f", op.Confidence),
		}
	}
	m.table.SetRows(rows)
}

func (m reviewModel) Init() tea.Cmd {
	return nil
}

func (m reviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case " ":
			i := m.table.Cursor()
			if i >= 0 && i < len(m.selected) {
				m.selected[i] = !m.selected[i]
				m.refreshRows()
			}
			return m, nil
		case "a":
			for i := range m.selected {
				m.selected[i] = true
			}
			m.refreshRows()
			return m, nil
		case "enter":
			m.confirmed = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m reviewModel) View() string {
	count := 0
	for _, s := range m.selected {
		if s {
			count++
		}
	}
	help := reviewHelpStyle.Render(
		fmt.Sprintf("%d/%d selected · space toggle · a all · enter rename · q cancel", count, len(m.plan)))
	return m.table.View() + "\n" + help + "\n"
}

// reviewPlan runs the interactive review and returns the operations the
// user kept. confirmed is false when the user backed out.
func reviewPlan(plan []matcher.RenameOperation) ([]matcher.RenameOperation, bool, error) {
	final, err := tea.NewProgram(newReviewModel(plan)).Run()
	if err != nil {
		return nil, false, fmt.Errorf("review failed: %w", err)
	}

	m, ok := final.(reviewModel)
	if !ok || !m.confirmed {
		return nil, false, nil
	}

	var kept []matcher.RenameOperation
	for i, op := range m.plan {
		if m.selected[i] {
			kept = append(kept, op)
		}
	}
	return kept, true, nil
}
