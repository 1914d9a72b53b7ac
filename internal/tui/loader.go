package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jonathan/career-advisor/internal/advisor"
)

// ErrCancelled is returned by RunLoader when the user interrupts the request.
var ErrCancelled = errors.New("cancelled")

type analysisDoneMsg struct {
	state advisor.State
}

type loaderModel struct {
	jobTitle string
	run      func(ctx context.Context) advisor.State
	ctx      context.Context
	spinner  spinner.Model
	state    advisor.State
	err      error
	done     bool
}

func newLoaderModel(ctx context.Context, jobTitle string, run func(ctx context.Context) advisor.State) loaderModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("141"))),
	)
	return loaderModel{jobTitle: jobTitle, run: run, ctx: ctx, spinner: s}
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(m.doAnalyze(), m.spinner.Tick)
}

func (m loaderModel) doAnalyze() tea.Cmd {
	run, ctx := m.run, m.ctx
	return func() tea.Msg {
		return analysisDoneMsg{state: run(ctx)}
	}
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case analysisDoneMsg:
		m.state = msg.state
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			m.err = ErrCancelled
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s Analyzing the future of %s...\n", m.spinner.View(), m.jobTitle)
}

// RunLoader shows a spinner on out while run executes. It renders inline (no alt screen).
// Interrupting cancels the context handed to run and returns ErrCancelled.
func RunLoader(ctx context.Context, out io.Writer, jobTitle string, run func(ctx context.Context) advisor.State) (advisor.State, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newLoaderModel(ctx, jobTitle, run), tea.WithOutput(out), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return advisor.State{}, err
	}
	m := final.(loaderModel)
	return m.state, m.err
}
