// Package summary renders the terminal report of a finished sync run.
package summary

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/hevytools/notion-sync/internal/domain"
)

func Render(run domain.RunSummary) string {
	return renderView(run, newStyles())
}

func renderView(run domain.RunSummary, s styles) string {
	lines := []string{
		s.title.Render("Sync Summary"),
		s.header.Render(fmt.Sprintf("duration: %s", run.Duration.Round(10*time.Millisecond))),
	}

	if run.Total == 0 {
		lines = append(lines, s.empty.Render("No workouts found to sync."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	lines = append(lines,
		countLine(s, "total", run.Total, s.count),
		countLine(s, "succeeded", run.Succeeded, s.ok),
		countLine(s, "failed", run.Failed, failedStyle(run, s)),
	)

	if run.Failed > 0 {
		lines = append(lines, s.failed.Render("Workouts needing manual reconciliation:"))
		for _, id := range run.FailedIDs {
			lines = append(lines, s.failedID.Render(fmt.Sprintf("  - %s", id)))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func countLine(s styles, label string, value int, valueStyle lipgloss.Style) string {
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.label.Render(fmt.Sprintf("%-10s", label+":")),
		valueStyle.Render(fmt.Sprintf("%d", value)),
	)
}

func failedStyle(run domain.RunSummary, s styles) lipgloss.Style {
	if run.Failed > 0 {
		return s.failed
	}
	return s.count
}
