package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type fetchDoneMsg struct {
	err error
}

type pageFetchedMsg struct {
	page  int
	total int
}

type fetchSpinnerModel struct {
	spinner spinner.Model
	label   string
	fetch   tea.Cmd
	err     error
	done    bool
}

func newFetchSpinnerModel(label string, fetch tea.Cmd) fetchSpinnerModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return fetchSpinnerModel{
		spinner: s,
		label:   label,
		fetch:   fetch,
	}
}

func (m fetchSpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch)
}

func (m fetchSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case pageFetchedMsg:
		m.label = fmt.Sprintf("Fetching workouts... page %d (%d so far)", msg.page, msg.total)
		return m, nil
	case fetchDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m fetchSpinnerModel) View() string {
	if m.done {
		return ""
	}

	return fmt.Sprintf("%s %s", m.spinner.View(), m.label)
}

// runFetchSpinner runs fetch behind an animated spinner. fetch receives a
// notify callback that refreshes the spinner label as pages arrive.
func runFetchSpinner(ctx context.Context, output io.Writer, fetch func(context.Context, func(page, total int)) error) error {
	var p *tea.Program

	notify := func(page, total int) {
		p.Send(pageFetchedMsg{page: page, total: total})
	}
	fetchCmd := func() tea.Msg {
		return fetchDoneMsg{err: fetch(ctx, notify)}
	}

	p = tea.NewProgram(
		newFetchSpinnerModel("Fetching workouts...", fetchCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	result, ok := finalModel.(fetchSpinnerModel)
	if !ok {
		return fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.err
}
