// Package tui renders analyses in the terminal: a plain printer for one-shot
// commands, a spinner while a request is in flight, and an interactive app.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jonathan/career-advisor/internal/types"
)

// defaultWidth is the wrap width used when the terminal size is unknown.
const defaultWidth = 80

// styles holds the lipgloss styles bound to one renderer so colour output
// follows the destination writer, not stdout.
type styles struct {
	title   lipgloss.Style
	section lipgloss.Style
	body    lipgloss.Style
	name    lipgloss.Style
	muted   lipgloss.Style
	link    lipgloss.Style
	free    lipgloss.Style
	paid    lipgloss.Style
	errBox  lipgloss.Style
	share   lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("141")). // purple
			MarginBottom(1),
		section: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			MarginTop(1),
		body: r.NewStyle().
			Foreground(lipgloss.Color("252")),
		name: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("141")),
		muted: r.NewStyle().
			Foreground(lipgloss.Color("245")),
		link: r.NewStyle().
			Foreground(lipgloss.Color("44")). // cyan
			Underline(true),
		free: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("28")).
			Padding(0, 1),
		paid: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("178")).
			Padding(0, 1),
		errBox: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("160")).
			Foreground(lipgloss.Color("217")).
			Padding(0, 1),
		share: r.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true),
	}
}

// Printer writes formatted analyses to a writer.
type Printer struct {
	out    io.Writer
	width  int
	styles styles
}

// NewPrinter creates a Printer that writes to out, with colours only when out is a terminal.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{
		out:    out,
		width:  defaultWidth,
		styles: newStyles(lipgloss.NewRenderer(out)),
	}
}

// SetWidth changes the wrap width. Non-positive values are ignored.
func (p *Printer) SetWidth(width int) {
	if width > 0 {
		p.width = width
	}
}

// PrintResult outputs the full analysis, followed by the share link when one is given.
//
//nolint:errcheck // writing to the terminal; errors are not recoverable
func (p *Printer) PrintResult(result *types.AnalysisResult, shareURL string) {
	if result == nil {
		return
	}
	fmt.Fprintln(p.out, p.RenderResult(result))
	if shareURL != "" {
		fmt.Fprintln(p.out, p.RenderShare(shareURL))
	}
}

// PrintError outputs a user-facing error message in a box.
//
//nolint:errcheck
func (p *Printer) PrintError(message string) {
	fmt.Fprintln(p.out, p.RenderError(message))
}

// RenderError returns the error banner.
func (p *Printer) RenderError(message string) string {
	s := p.styles
	return s.errBox.Width(p.width - 2).Render("An Error Occurred\n" + message)
}

// RenderShare returns the share-link line.
func (p *Printer) RenderShare(shareURL string) string {
	return p.styles.share.Render("Share: ") + p.styles.link.Render(shareURL)
}

// RenderResult returns the analysis as styled text, in the same section order as the web page.
func (p *Printer) RenderResult(result *types.AnalysisResult) string {
	s := p.styles
	wrap := s.body.Width(p.width)
	indent := s.body.Width(p.width - 2).MarginLeft(2)

	var sb strings.Builder
	sb.WriteString(s.title.Render("Analysis for: " + result.JobTitle))
	sb.WriteString("\n")

	section := func(title, text string) {
		sb.WriteString(s.section.Render(title))
		sb.WriteString("\n")
		sb.WriteString(wrap.Render(text))
		sb.WriteString("\n")
	}
	section("AI Impact on Your Field", result.AIImpact)
	section("Evolution of Your Skills", result.SkillHistory)
	section("Current AI Developments & Tools", result.CurrentAIDevelopments)

	sb.WriteString(s.section.Render("Recommended Courses"))
	sb.WriteString("\n")
	for _, c := range result.RecommendedCourses {
		badge := s.paid.Render("Paid")
		if c.IsFree {
			badge = s.free.Render("Free")
		}
		sb.WriteString(fmt.Sprintf("• %s %s\n", s.name.Render(c.Name), badge))
		sb.WriteString(indent.Render(s.muted.Render(c.Platform)))
		sb.WriteString("\n")
		sb.WriteString(indent.Render(s.link.Render(c.URL)))
		sb.WriteString("\n")
	}
	if len(result.RecommendedCourses) == 0 {
		sb.WriteString(s.muted.Render("  (none)") + "\n")
	}

	sb.WriteString(s.section.Render("Relevant APIs to Explore"))
	sb.WriteString("\n")
	for _, a := range result.RelevantAPIs {
		sb.WriteString(fmt.Sprintf("• %s\n", s.name.Render(a.Name)))
		sb.WriteString(indent.Render(a.Description))
		sb.WriteString("\n")
		sb.WriteString(indent.Render(s.link.Render(a.URL)))
		sb.WriteString("\n")
	}
	if len(result.RelevantAPIs) == 0 {
		sb.WriteString(s.muted.Render("  (none)") + "\n")
	}

	sb.WriteString(s.section.Render("Online Communities to Join"))
	sb.WriteString("\n")
	for _, c := range result.OnlineCommunities {
		sb.WriteString(fmt.Sprintf("• %s\n", s.name.Render(c.Name)))
		sb.WriteString(indent.Render(s.muted.Render(c.Platform)))
		sb.WriteString("\n")
		sb.WriteString(indent.Render(s.link.Render(c.URL)))
		sb.WriteString("\n")
	}
	if len(result.OnlineCommunities) == 0 {
		sb.WriteString(s.muted.Render("  (none)") + "\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}
