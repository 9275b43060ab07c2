package summary

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title    lipgloss.Style
	header   lipgloss.Style
	label    lipgloss.Style
	count    lipgloss.Style
	ok       lipgloss.Style
	failed   lipgloss.Style
	failedID lipgloss.Style
	empty    lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true),
		header:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		label:    lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		count:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		ok:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("78")),
		failed:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		failedID: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		empty:    lipgloss.NewStyle().Faint(true),
	}
}
