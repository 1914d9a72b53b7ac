package tui

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jonathan/career-advisor/internal/advisor"
	"github.com/jonathan/career-advisor/internal/analysis"
	"github.com/jonathan/career-advisor/internal/sharelink"
)

// Header (3) + input (2) + footer (2) lines around the result pane.
const chromeHeight = 7

const welcomeText = "Welcome to Your Career Future\n\n" +
	"Enter a job title or field above. You will get an overview of how AI is " +
	"changing the work, how its skills evolved, and where to learn more."

// AppConfig configures the interactive advisor.
type AppConfig struct {
	Coordinator *advisor.Coordinator
	// ShareBase, when set, shows a share link under each result.
	ShareBase string
	// ShareToken, when set, is decoded before the first frame as if opened from a link.
	ShareToken string
	Output     io.Writer
	Input      io.Reader
}

type appModel struct {
	ctx         context.Context
	coordinator *advisor.Coordinator
	shareBase   string
	printer     *Printer
	styles      styles

	state    advisor.State
	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model
	width    int
	height   int
}

func newAppModel(ctx context.Context, cfg AppConfig) appModel {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	renderer := lipgloss.NewRenderer(out)

	ti := textinput.New()
	ti.Placeholder = "e.g., Software Engineer, Graphic Designer, Nurse"
	ti.Prompt = "Job title: "
	ti.CharLimit = 200
	ti.Focus()

	m := appModel{
		ctx:         ctx,
		coordinator: cfg.Coordinator,
		shareBase:   cfg.ShareBase,
		printer:     NewPrinter(out),
		styles:      newStyles(renderer),
		input:       ti,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(renderer.NewStyle().Foreground(lipgloss.Color("141"))),
		),
		viewport: viewport.New(defaultWidth, 20),
		width:    defaultWidth,
		height:   20 + chromeHeight,
	}

	if cfg.ShareToken != "" {
		m.state, _ = m.coordinator.Load(m.state, url.Values{sharelink.ParamName: {cfg.ShareToken}})
		m.input.SetValue(m.state.JobTitle)
	}
	m.refreshResult()
	return m
}

type analyzedMsg struct {
	state advisor.State
}

func (m appModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chromeHeight, 5)
		m.printer.SetWidth(msg.Width - 2)
		m.refreshResult()
		return m, nil

	case analyzedMsg:
		m.state = msg.state
		m.refreshResult()
		m.viewport.GotoTop()
		return m, nil

	case spinner.TickMsg:
		if !m.state.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m appModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "enter":
		return m.submit()
	case "up", "down", "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	// Input is read-only while a request is in flight.
	if m.state.Loading {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m appModel) submit() (tea.Model, tea.Cmd) {
	if m.state.Loading {
		return m, nil
	}

	raw := m.input.Value()
	title, err := analysis.NormalizeTitle(raw)
	if err != nil {
		m.state = m.state.RejectInput(err)
		return m, nil
	}

	previous := m.state
	m.state = m.state.StartRequest(title)
	m.refreshResult()
	return m, tea.Batch(m.analyzeCmd(previous, raw), m.spinner.Tick)
}

func (m appModel) analyzeCmd(previous advisor.State, raw string) tea.Cmd {
	ctx, coordinator := m.ctx, m.coordinator
	return func() tea.Msg {
		return analyzedMsg{state: coordinator.Analyze(ctx, previous, raw)}
	}
}

// refreshResult re-renders the result pane from the current state.
func (m *appModel) refreshResult() {
	if m.state.Result == nil {
		m.viewport.SetContent("")
		return
	}
	content := m.printer.RenderResult(m.state.Result)
	if shareURL := m.shareURL(); shareURL != "" {
		content += "\n\n" + m.printer.RenderShare(shareURL)
	}
	m.viewport.SetContent(content)
}

func (m appModel) shareURL() string {
	if m.shareBase == "" || m.state.Result == nil {
		return ""
	}
	shareURL, err := m.coordinator.ShareURL(m.shareBase, m.state)
	if err != nil {
		return ""
	}
	return shareURL
}

func (m appModel) View() string {
	s := m.styles
	var b strings.Builder

	b.WriteString(s.title.Render("AI Career Advisor"))
	b.WriteString("\n")
	b.WriteString(s.muted.Render("Understand AI's impact on your career and find resources to stay ahead."))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch m.state.Phase() {
	case advisor.PhaseLoading:
		b.WriteString(fmt.Sprintf("%s Analyzing the future of %s...\n", m.spinner.View(), m.state.JobTitle))
	case advisor.PhaseError:
		b.WriteString(m.printer.RenderError(m.state.ErrorMessage()))
		b.WriteString("\n")
		if m.state.Result != nil {
			b.WriteString(m.viewport.View())
			b.WriteString("\n")
		}
	case advisor.PhaseResult:
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
	default:
		b.WriteString(s.body.Width(m.width).Render(welcomeText))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(s.muted.Render("enter: analyze • ↑/↓ pgup/pgdn: scroll • esc: quit"))
	return b.String()
}

// Run starts the interactive advisor in the alternate screen and returns the
// state it ended in.
func Run(ctx context.Context, cfg AppConfig) (advisor.State, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if cfg.Output != nil {
		opts = append(opts, tea.WithOutput(cfg.Output))
	}
	if cfg.Input != nil {
		opts = append(opts, tea.WithInput(cfg.Input))
	}

	p := tea.NewProgram(newAppModel(ctx, cfg), opts...)
	final, err := p.Run()
	if err != nil {
		return advisor.State{}, err
	}
	return final.(appModel).state, nil
}
