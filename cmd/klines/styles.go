package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/rxtech-lab/kline-downloader/pkg/marketdata"
)

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for secondary text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	// ErrorStyle for error messages.
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))

	completedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	skippedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	failedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// FormatOutcome renders an outcome label in its colour.
func FormatOutcome(outcome marketdata.Outcome) string {
	switch outcome {
	case marketdata.OutcomeCompleted:
		return completedStyle.Render(string(outcome))
	case marketdata.OutcomeSkipped:
		return skippedStyle.Render(string(outcome))
	case marketdata.OutcomeFailed:
		return failedStyle.Render(string(outcome))
	default:
		return string(outcome)
	}
}
